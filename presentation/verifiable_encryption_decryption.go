// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
	"math/big"
	"sync"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/bulletproofs"
	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/issuer"
	"github.com/luxfi/anoncred/statement"
	"github.com/luxfi/anoncred/transcript"
)

const (
	// vedByteCount decomposes the 32-byte claim scalar.
	vedByteCount = 32
	// vedRangeBits bounds each decomposed byte.
	vedRangeBits = 8
	// vedRangeLabel seeds the byte range proof transcript.
	vedRangeLabel = "verifiable encryption decryption byte range proof"
	// vedKeyLabel seeds the AES key derivation transcript.
	vedKeyLabel = "verifiable encryption decryption derive aes key"
	// vedNonceSize is the AES-GCM nonce length.
	vedNonceSize = 12
)

var (
	vedGensOnce sync.Once
	vedGens     *bulletproofs.BulletproofGens
	vedGensErr  error
)

func vedProofGens() (*bulletproofs.BulletproofGens, error) {
	vedGensOnce.Do(func() {
		vedGens, vedGensErr = bulletproofs.NewBulletproofGens(vedRangeBits, vedByteCount)
	})
	return vedGens, vedGensErr
}

// ByteProof is the Schnorr opening of one byte ciphertext.
type ByteProof struct {
	Message fr.Element
	Blinder fr.Element
}

// ByteCiphertext carries the 32 per-byte El-Gamal pairs.
type ByteCiphertext struct {
	C1 [vedByteCount]bls12381.G1Affine
	C2 [vedByteCount]bls12381.G1Affine
}

// verifiableEncryptionDecryptionBuilder extends verifiable encryption
// with a byte decomposition the authority can decrypt: each scalar byte
// is El-Gamal encrypted with byte blinders summing (base-256 weighted)
// to the overall blinder, an 8-bit range proof bounds every byte, and
// an AES-128-GCM payload carries the claim's text form under a key
// derived from the shared secret.
type verifiableEncryptionDecryptionBuilder struct {
	statement       *statement.VerifiableEncryptionDecryption
	c1              bls12381.G1Affine
	c2              bls12381.G1Affine
	b               fr.Element
	r               fr.Element
	messageBytes    [vedByteCount]byte
	byteBlinders    [vedByteCount]fr.Element
	blinderBlinders [vedByteCount]fr.Element
	byteCiphertext  ByteCiphertext
	payload         []byte
	rng             io.Reader
}

func newVerifiableEncryptionDecryptionBuilder(st *statement.VerifiableEncryptionDecryption, claim claims.ClaimData, message, blinder fr.Element, rng io.Reader, t *transcript.Transcript) (*verifiableEncryptionDecryptionBuilder, error) {
	r, err := randomScalar(rng)
	if err != nil {
		return nil, err
	}

	c1 := curve.G1MulBase(&blinder)
	mm := curve.G1Mul(&st.MessageGenerator, &message)
	kb := curve.G1Mul(&st.EncryptionKey.K, &blinder)
	c2 := curve.G1Add(&mm, &kb)

	r1 := curve.G1MulBase(&r)
	mb := curve.G1Mul(&st.MessageGenerator, &blinder)
	kr := curve.G1Mul(&st.EncryptionKey.K, &r)
	r2 := curve.G1Add(&mb, &kr)

	b := &verifiableEncryptionDecryptionBuilder{
		statement: st,
		c1:        c1,
		c2:        c2,
		b:         blinder,
		r:         r,
		rng:       rng,
	}
	b.messageBytes = curve.ScalarBytes(&message)

	// Byte blinders sum to the overall blinder under base-256 weights:
	// sum(256^(31-i) * b_i) = b, so the weighted ciphertext product
	// reassembles (C1, C2).
	var shift fr.Element
	shift.SetUint64(256)
	var sum fr.Element
	g1 := curve.G1Generator()
	for i := 0; i < vedByteCount-1; i++ {
		byteBlinder, err := randomScalar(rng)
		if err != nil {
			return nil, err
		}
		var weight, weighted fr.Element
		weight.Exp(shift, weightExponent(i))
		weighted.Mul(&byteBlinder, &weight)
		sum.Add(&sum, &weighted)

		if b.blinderBlinders[i], err = randomScalar(rng); err != nil {
			return nil, err
		}
		b.byteBlinders[i] = byteBlinder
		b.byteCiphertext.C1[i] = curve.G1Mul(&g1, &byteBlinder)
		var mByte fr.Element
		mByte.SetUint64(uint64(b.messageBytes[i]))
		gm := curve.G1Mul(&st.MessageGenerator, &mByte)
		kb := curve.G1Mul(&st.EncryptionKey.K, &byteBlinder)
		b.byteCiphertext.C2[i] = curve.G1Add(&gm, &kb)
	}
	last := vedByteCount - 1
	if b.blinderBlinders[last], err = randomScalar(rng); err != nil {
		return nil, err
	}
	b.byteBlinders[last].Sub(&blinder, &sum)
	b.byteCiphertext.C1[last] = curve.G1Mul(&g1, &b.byteBlinders[last])
	var mByte fr.Element
	mByte.SetUint64(uint64(b.messageBytes[last]))
	gm := curve.G1Mul(&st.MessageGenerator, &mByte)
	kbLast := curve.G1Mul(&st.EncryptionKey.K, &b.byteBlinders[last])
	b.byteCiphertext.C2[last] = curve.G1Add(&gm, &kbLast)

	t.AppendMessage("", []byte(st.StatementID))
	t.AppendG1("c1", &c1)
	t.AppendG1("c2", &c2)
	t.AppendG1("r1", &r1)
	t.AppendG1("r2", &r2)

	for i := 0; i < vedByteCount; i++ {
		t.AppendUint64("byte index", uint64(i))
		t.AppendG1("byte_proof_c1", &b.byteCiphertext.C1[i])
		t.AppendG1("byte_proof_c2", &b.byteCiphertext.C2[i])
		innerR1 := curve.G1Mul(&g1, &b.blinderBlinders[i])
		gb := curve.G1Mul(&st.MessageGenerator, &b.byteBlinders[i])
		kr := curve.G1Mul(&st.EncryptionKey.K, &b.blinderBlinders[i])
		innerR2 := curve.G1Add(&gb, &kr)
		t.AppendG1("byte_proof_r1", &innerR1)
		t.AppendG1("byte_proof_r2", &innerR2)
	}

	// Encrypt the claim's text form under a transcript-derived key.
	shared := curve.G1Mul(&st.EncryptionKey.K, &blinder)
	payload, err := vedEncrypt(&shared, &c1, &c2, claim.ToText(), rng)
	if err != nil {
		return nil, err
	}
	b.payload = payload
	t.AppendMessage("arbitrary data ciphertext", payload)

	return b, nil
}

// weightExponent returns 31-i, the base-256 weight exponent of byte i.
func weightExponent(i int) *big.Int {
	return big.NewInt(int64(vedByteCount - 1 - i))
}

// GenProof emits the byte openings, the byte range proof and the
// blinder response.
func (b *verifiableEncryptionDecryptionBuilder) GenProof(challenge fr.Element) (Proof, error) {
	gens, err := vedProofGens()
	if err != nil {
		return nil, err
	}
	pedersen := bulletproofs.PedersenGens{
		B:         b.statement.MessageGenerator,
		BBlinding: b.statement.EncryptionKey.K,
	}

	t := transcript.New(vedRangeLabel)
	t.AppendScalar("challenge", &challenge)

	values := make([]uint64, vedByteCount)
	blinders := make([]fr.Element, vedByteCount)
	for i := 0; i < vedByteCount; i++ {
		values[i] = uint64(b.messageBytes[i])
		blinders[i] = b.byteBlinders[i]
	}
	rangeProof, _, err := bulletproofs.ProveMultiple(gens, pedersen, t, values, blinders, vedRangeBits, b.rng)
	if err != nil {
		return nil, err
	}

	var blinderProof, tmp fr.Element
	tmp.Mul(&challenge, &b.b)
	blinderProof.Add(&b.r, &tmp)

	var byteProofs [vedByteCount]ByteProof
	for i := 0; i < vedByteCount; i++ {
		var mByte fr.Element
		mByte.SetUint64(uint64(b.messageBytes[i]))
		var m, bl fr.Element
		tmp.Mul(&challenge, &mByte)
		m.Add(&b.byteBlinders[i], &tmp)
		tmp.Mul(&challenge, &b.byteBlinders[i])
		bl.Add(&b.blinderBlinders[i], &tmp)
		byteProofs[i] = ByteProof{Message: m, Blinder: bl}
	}

	return &VerifiableEncryptionDecryptionProof{
		ID:               b.statement.StatementID,
		MessageGenerator: b.statement.MessageGenerator,
		C1:               b.c1,
		C2:               b.c2,
		ByteProofs:       byteProofs,
		RangeProof:       *rangeProof,
		BlinderProof:     blinderProof,
		ByteCiphertext:   b.byteCiphertext,
		Ciphertext:       b.payload,
	}, nil
}

// VerifiableEncryptionDecryptionProof is the decryptable verifiable
// encryption proof part.
type VerifiableEncryptionDecryptionProof struct {
	ID               string
	MessageGenerator bls12381.G1Affine
	C1               bls12381.G1Affine
	C2               bls12381.G1Affine
	ByteProofs       [vedByteCount]ByteProof
	RangeProof       bulletproofs.RangeProof
	BlinderProof     fr.Element
	ByteCiphertext   ByteCiphertext
	Ciphertext       []byte
}

// StatementID returns the statement id.
func (p *VerifiableEncryptionDecryptionProof) StatementID() string { return p.ID }

// Kind returns the proof type tag.
func (p *VerifiableEncryptionDecryptionProof) Kind() string {
	return "verifiable-encryption-decryption"
}

// DecryptAndVerify recovers the claim with the authority key and
// confirms the recovered scalar re-encodes to the ciphertext
// commitment. Any byte tampering fails either AEAD opening or the
// commitment equality.
func (p *VerifiableEncryptionDecryptionProof) DecryptAndVerify(dk *issuer.DecryptionKey) (claims.ClaimData, error) {
	if len(p.Ciphertext) < vedNonceSize+16 {
		return nil, statementError(ErrInvalidPresentationData, p.ID, "payload ciphertext too short")
	}

	shared := curve.G1Mul(&p.C1, &dk.K)
	expected := curve.G1Sub(&p.C2, &shared)

	text, err := vedDecrypt(&shared, &p.C1, &p.C2, p.Ciphertext)
	if err != nil {
		return nil, statementError(ErrInvalidPresentationData, p.ID, err.Error())
	}
	claim, err := claims.FromText(text)
	if err != nil {
		return nil, statementError(ErrInvalidPresentationData, p.ID, err.Error())
	}
	scalar := claim.ToScalar()
	computed := curve.G1Mul(&p.MessageGenerator, &scalar)
	if !computed.Equal(&expected) {
		return nil, statementError(ErrInvalidPresentationData, p.ID,
			"decrypted claim does not match the ciphertext commitment")
	}
	return claim, nil
}

// vedEncrypt seals plaintext under a key derived from the shared
// secret; the derivation transcript and the ciphertext components form
// the AAD so any tampering breaks decryption.
func vedEncrypt(shared, c1, c2 *bls12381.G1Affine, plaintext string, rng io.Reader) ([]byte, error) {
	key, aad := vedKeyMaterial(shared, c1, c2)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, vedNonceSize)
	if _, err := io.ReadFull(rng, nonce); err != nil {
		return nil, err
	}
	out := append([]byte{}, nonce...)
	return aead.Seal(out, nonce, []byte(plaintext), aad), nil
}

func vedDecrypt(shared, c1, c2 *bls12381.G1Affine, ciphertext []byte) (string, error) {
	key, aad := vedKeyMaterial(shared, c1, c2)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	plaintext, err := aead.Open(nil, ciphertext[:vedNonceSize], ciphertext[vedNonceSize:], aad)
	if err != nil {
		return "", fmt.Errorf("aes-128-gcm decryption failed: %w", err)
	}
	return string(plaintext), nil
}

func vedKeyMaterial(shared, c1, c2 *bls12381.G1Affine) (key, aad []byte) {
	t := transcript.New(vedKeyLabel)
	t.AppendG1("key ikm", shared)
	okm := t.ChallengeBytes("aes key", 32)
	key = okm[:16]
	aad = append([]byte{}, okm[16:]...)
	c1b := c1.Bytes()
	aad = append(aad, c1b[:]...)
	c2b := c2.Bytes()
	aad = append(aad, c2b[:]...)
	return key, aad
}

// verifiableEncryptionDecryptionVerifier replays the byte Schnorr
// relations and checks the byte range proof, the weighted ciphertext
// reassembly and the signature linkage.
type verifiableEncryptionDecryptionVerifier struct {
	statement    *statement.VerifiableEncryptionDecryption
	proof        *VerifiableEncryptionDecryptionProof
	messageProof fr.Element
}

func (v *verifiableEncryptionDecryptionVerifier) AddChallengeContribution(challenge fr.Element, t *transcript.Transcript) error {
	var negC fr.Element
	negC.Neg(&challenge)
	g1 := curve.G1Generator()

	// The overall relation: r1 and r2 from the blinder response. The
	// message response is not carried separately; the byte responses
	// reassemble it under base-256 weights.
	var weightedMessage fr.Element
	var shift fr.Element
	shift.SetUint64(256)
	for i := 0; i < vedByteCount; i++ {
		var weight, tmp fr.Element
		weight.Exp(shift, weightExponent(i))
		tmp.Mul(&v.proof.ByteProofs[i].Message, &weight)
		weightedMessage.Add(&weightedMessage, &tmp)
	}
	// weightedMessage = sum 256^(31-i)*(b_i + c*m_i) = b + c*m, the
	// same shape as a direct Schnorr response over (m, b).
	r1, err := curve.G1MSM(
		[]bls12381.G1Affine{v.proof.C1, g1},
		[]fr.Element{negC, v.proof.BlinderProof},
	)
	if err != nil {
		return err
	}
	r2, err := curve.G1MSM(
		[]bls12381.G1Affine{v.proof.C2, v.statement.MessageGenerator, v.statement.EncryptionKey.K},
		[]fr.Element{negC, v.messageProof, v.proof.BlinderProof},
	)
	if err != nil {
		return err
	}

	t.AppendMessage("", []byte(v.statement.StatementID))
	t.AppendG1("c1", &v.proof.C1)
	t.AppendG1("c2", &v.proof.C2)
	t.AppendG1("r1", &r1)
	t.AppendG1("r2", &r2)

	for i := 0; i < vedByteCount; i++ {
		t.AppendUint64("byte index", uint64(i))
		t.AppendG1("byte_proof_c1", &v.proof.ByteCiphertext.C1[i])
		t.AppendG1("byte_proof_c2", &v.proof.ByteCiphertext.C2[i])

		// inner r1 = s_b*G1 - c*C1_i
		innerR1, err := curve.G1MSM(
			[]bls12381.G1Affine{g1, v.proof.ByteCiphertext.C1[i]},
			[]fr.Element{v.proof.ByteProofs[i].Blinder, negC},
		)
		if err != nil {
			return err
		}
		// inner r2 = s_m*M + s_b*K - c*C2_i
		innerR2, err := curve.G1MSM(
			[]bls12381.G1Affine{v.statement.MessageGenerator, v.statement.EncryptionKey.K, v.proof.ByteCiphertext.C2[i]},
			[]fr.Element{v.proof.ByteProofs[i].Message, v.proof.ByteProofs[i].Blinder, negC},
		)
		if err != nil {
			return err
		}
		t.AppendG1("byte_proof_r1", &innerR1)
		t.AppendG1("byte_proof_r2", &innerR2)
	}
	t.AppendMessage("arbitrary data ciphertext", v.proof.Ciphertext)
	return nil
}

func (v *verifiableEncryptionDecryptionVerifier) Verify(challenge fr.Element) error {
	if v.proof.C1.IsInfinity() || v.proof.C2.IsInfinity() {
		return statementError(ErrInvalidPresentationData, v.proof.ID, "identity ciphertext component")
	}

	// The weighted byte responses must reassemble the signature PoK's
	// hidden-message response.
	var weightedMessage, shift fr.Element
	shift.SetUint64(256)
	for i := 0; i < vedByteCount; i++ {
		var weight, tmp fr.Element
		weight.Exp(shift, weightExponent(i))
		tmp.Mul(&v.proof.ByteProofs[i].Message, &weight)
		weightedMessage.Add(&weightedMessage, &tmp)
	}
	if !weightedMessage.Equal(&v.messageProof) {
		return statementError(ErrInvalidPresentationData, v.proof.ID,
			"byte decomposition does not bind the signed claim")
	}

	// Byte range proof over the byte ciphertext commitments.
	gens, err := vedProofGens()
	if err != nil {
		return err
	}
	pedersen := bulletproofs.PedersenGens{
		B:         v.statement.MessageGenerator,
		BBlinding: v.statement.EncryptionKey.K,
	}
	t := transcript.New(vedRangeLabel)
	t.AppendScalar("challenge", &challenge)
	commitments := make([]bls12381.G1Affine, vedByteCount)
	for i := 0; i < vedByteCount; i++ {
		commitments[i] = v.proof.ByteCiphertext.C2[i]
	}
	if err := v.proof.RangeProof.VerifyMultiple(gens, pedersen, t, commitments, vedRangeBits); err != nil {
		return statementError(bulletproofs.ErrRangeCheckFailed, v.proof.ID, err.Error())
	}

	// Weighted reassembly: the byte ciphertexts must recompose (C1, C2).
	var c1Points, c2Points []bls12381.G1Affine
	var weights []fr.Element
	for i := 0; i < vedByteCount; i++ {
		var weight fr.Element
		weight.Exp(shift, weightExponent(i))
		weights = append(weights, weight)
		c1Points = append(c1Points, v.proof.ByteCiphertext.C1[i])
		c2Points = append(c2Points, v.proof.ByteCiphertext.C2[i])
	}
	c1Sum, err := curve.G1MSM(c1Points, weights)
	if err != nil {
		return err
	}
	if !c1Sum.Equal(&v.proof.C1) {
		return statementError(ErrInvalidPresentationData, v.proof.ID,
			"byte ciphertexts do not reassemble C1")
	}
	c2Sum, err := curve.G1MSM(c2Points, weights)
	if err != nil {
		return err
	}
	if !c2Sum.Equal(&v.proof.C2) {
		return statementError(ErrInvalidPresentationData, v.proof.ID,
			"byte ciphertexts do not reassemble C2")
	}
	return nil
}
