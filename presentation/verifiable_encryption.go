// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/issuer"
	"github.com/luxfi/anoncred/statement"
	"github.com/luxfi/anoncred/transcript"
)

// verifiableEncryptionBuilder produces an El-Gamal ciphertext
// (C1 = b*G1, C2 = m*M + b*K) of the hidden claim to the authority key
// K, with a Schnorr proof tying m and b to the signature PoK.
type verifiableEncryptionBuilder struct {
	statement *statement.VerifiableEncryption
	c1        bls12381.G1Affine
	c2        bls12381.G1Affine
	message   fr.Element
	b         fr.Element
	r         fr.Element
}

func newVerifiableEncryptionBuilder(st *statement.VerifiableEncryption, message, blinder fr.Element, rng io.Reader, t *transcript.Transcript) (*verifiableEncryptionBuilder, error) {
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

	t.AppendMessage("", []byte(st.StatementID))
	t.AppendG1("c1", &c1)
	t.AppendG1("c2", &c2)
	t.AppendG1("r1", &r1)
	t.AppendG1("r2", &r2)

	return &verifiableEncryptionBuilder{
		statement: st,
		c1:        c1,
		c2:        c2,
		message:   message,
		b:         blinder,
		r:         r,
	}, nil
}

// GenProof emits the Schnorr responses.
func (b *verifiableEncryptionBuilder) GenProof(challenge fr.Element) (Proof, error) {
	var messageProof, blinderProof, t fr.Element
	t.Mul(&challenge, &b.message)
	messageProof.Add(&b.b, &t)
	t.Mul(&challenge, &b.b)
	blinderProof.Add(&b.r, &t)

	return &VerifiableEncryptionProof{
		ID:           b.statement.StatementID,
		C1:           b.c1,
		C2:           b.c2,
		MessageProof: messageProof,
		BlinderProof: blinderProof,
	}, nil
}

// VerifiableEncryptionProof is the verifiable-encryption proof part.
type VerifiableEncryptionProof struct {
	ID           string
	C1           bls12381.G1Affine
	C2           bls12381.G1Affine
	MessageProof fr.Element
	BlinderProof fr.Element
}

// StatementID returns the statement id.
func (p *VerifiableEncryptionProof) StatementID() string { return p.ID }

// Kind returns the proof type tag.
func (p *VerifiableEncryptionProof) Kind() string { return "verifiable-encryption" }

// DecryptCommitment removes the El-Gamal layer with the authority key,
// returning m*M. Recovering m itself needs the decryption statement
// variant; this form supports external equality checks on the
// committed value.
func (p *VerifiableEncryptionProof) DecryptCommitment(dk *issuer.DecryptionKey) bls12381.G1Affine {
	shared := curve.G1Mul(&p.C1, &dk.K)
	return curve.G1Sub(&p.C2, &shared)
}

// verifiableEncryptionVerifier replays the Schnorr commitments and
// cross-checks the message response against the signature PoK.
type verifiableEncryptionVerifier struct {
	statement    *statement.VerifiableEncryption
	proof        *VerifiableEncryptionProof
	messageProof fr.Element
}

func (v *verifiableEncryptionVerifier) AddChallengeContribution(challenge fr.Element, t *transcript.Transcript) error {
	var negC fr.Element
	negC.Neg(&challenge)

	// r1 = -c*C1 + s_b*G1
	g1 := curve.G1Generator()
	r1, err := curve.G1MSM(
		[]bls12381.G1Affine{v.proof.C1, g1},
		[]fr.Element{negC, v.proof.BlinderProof},
	)
	if err != nil {
		return err
	}
	// r2 = -c*C2 + s_m*M + s_b*K
	r2, err := curve.G1MSM(
		[]bls12381.G1Affine{v.proof.C2, v.statement.MessageGenerator, v.statement.EncryptionKey.K},
		[]fr.Element{negC, v.proof.MessageProof, v.proof.BlinderProof},
	)
	if err != nil {
		return err
	}

	t.AppendMessage("", []byte(v.statement.StatementID))
	t.AppendG1("c1", &v.proof.C1)
	t.AppendG1("c2", &v.proof.C2)
	t.AppendG1("r1", &r1)
	t.AppendG1("r2", &r2)
	return nil
}

func (v *verifiableEncryptionVerifier) Verify(fr.Element) error {
	if v.proof.C1.IsInfinity() || v.proof.C2.IsInfinity() {
		return statementError(ErrInvalidPresentationData, v.proof.ID, "identity ciphertext component")
	}
	if !v.proof.MessageProof.Equal(&v.messageProof) {
		return statementError(ErrInvalidPresentationData, v.proof.ID,
			"ciphertext does not bind the signed claim")
	}
	return nil
}
