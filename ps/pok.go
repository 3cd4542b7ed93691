// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ps

import (
	"fmt"
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/transcript"
)

// PoK transcript labels. Byte-exact wire contract.
const (
	pokSigma1Label     = "sigma_1"
	pokSigma2Label     = "sigma_2"
	pokRandomLabel     = "random commitment"
	pokBlindLabel      = "blind commitment"
	pokTranscriptLabel = "signature proof of knowledge"
	pokChallengeLabel  = "signature proof of knowledge"
)

// PoKSignature is the commit phase of the signature proof of knowledge.
// The signature is randomized (sigma_1*r, (sigma_2 + t*sigma_1)*r) and
// the prover commits to t, m' and every hidden message over G2.
type PoKSignature struct {
	secrets    []fr.Element
	builder    sigcore.CommittedBuilderG2
	commitment bls12381.G2Affine
	sigma1     bls12381.G1Affine
	sigma2     bls12381.G1Affine
}

// CommitSignaturePoK randomizes the signature and commits to the hidden
// messages according to the per-message policy.
func CommitSignaturePoK(sig *Signature, pk *PublicKey, messages []sigcore.ProofMessage, rng io.Reader) (*PoKSignature, error) {
	if len(pk.Y) < len(messages) {
		return nil, fmt.Errorf("%w: %d messages for %d generators", sigcore.ErrInvalidSignatureProof, len(messages), len(pk.Y))
	}

	r, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	t, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, err
	}

	sigma1 := curve.G1Mul(&sig.Sigma1, &r)
	tS1 := curve.G1Mul(&sig.Sigma1, &t)
	sigma2 := curve.G1Add(&sig.Sigma2, &tS1)
	sigma2 = curve.G1Mul(&sigma2, &r)

	pok := &PoKSignature{sigma1: sigma1, sigma2: sigma2}
	g2 := curve.G2Generator()

	points := make([]bls12381.G2Affine, 0, len(messages)+2)
	secrets := make([]fr.Element, 0, len(messages)+2)

	if err := pok.builder.CommitRandom(g2, rng); err != nil {
		return nil, err
	}
	points = append(points, g2)
	secrets = append(secrets, t)

	if err := pok.builder.CommitRandom(pk.W, rng); err != nil {
		return nil, err
	}
	points = append(points, pk.W)
	secrets = append(secrets, sig.MTick)

	for i, m := range messages {
		switch m.Kind {
		case sigcore.HiddenProofSpecific:
			if err := pok.builder.CommitRandom(pk.Y[i], rng); err != nil {
				return nil, err
			}
			points = append(points, pk.Y[i])
			secrets = append(secrets, m.Value)
		case sigcore.HiddenExternal:
			pok.builder.Commit(pk.Y[i], m.Blinder)
			points = append(points, pk.Y[i])
			secrets = append(secrets, m.Value)
		case sigcore.Revealed:
		}
	}

	commitment, err := curve.G2MSM(points, secrets)
	if err != nil {
		return nil, err
	}
	pok.commitment = commitment
	pok.secrets = secrets
	return pok, nil
}

// AddProofContribution absorbs the commit-phase values into the transcript.
func (p *PoKSignature) AddProofContribution(t *transcript.Transcript) error {
	t.AppendG1(pokSigma1Label, &p.sigma1)
	t.AppendG1(pokSigma2Label, &p.sigma2)
	t.AppendG2(pokRandomLabel, &p.commitment)
	return p.builder.ChallengeContribution(pokBlindLabel, t)
}

// GenerateProof finalizes the proof with the Fiat-Shamir challenge.
func (p *PoKSignature) GenerateProof(challenge fr.Element) (sigcore.PoKProof, error) {
	proofs, err := p.builder.GenerateProof(challenge, p.secrets)
	if err != nil {
		return nil, err
	}
	return &PoKSignatureProof{
		Sigma1:     p.sigma1,
		Sigma2:     p.sigma2,
		Commitment: p.commitment,
		Proofs:     proofs,
	}, nil
}

// PoKSignatureProof is the finalized proof sent to the verifier.
type PoKSignatureProof struct {
	Sigma1     bls12381.G1Affine
	Sigma2     bls12381.G1Affine
	Commitment bls12381.G2Affine
	Proofs     []fr.Element
}

// Scheme returns the scheme name.
func (p *PoKSignatureProof) Scheme() string { return SchemeName }

// AddProofContribution replays the Schnorr commitment from the responses
// and challenge so the verifier's transcript matches the prover's.
func (p *PoKSignatureProof) AddProofContribution(pk sigcore.PublicKey, revealed []sigcore.IndexedMessage, challenge fr.Element, t *transcript.Transcript) error {
	key, ok := pk.(*PublicKey)
	if !ok {
		return sigcore.ErrUnknownScheme
	}

	t.AppendG1(pokSigma1Label, &p.Sigma1)
	t.AppendG1(pokSigma2Label, &p.Sigma2)
	t.AppendG2(pokRandomLabel, &p.Commitment)

	known := make(map[int]bool, len(revealed))
	for _, m := range revealed {
		known[m.Index] = true
	}

	points := make([]bls12381.G2Affine, 0, len(key.Y)+3)
	points = append(points, curve.G2Generator())
	points = append(points, key.W)
	for i := range key.Y {
		if known[i] {
			continue
		}
		points = append(points, key.Y[i])
	}
	points = append(points, p.Commitment)

	scalars := make([]fr.Element, 0, len(p.Proofs)+1)
	scalars = append(scalars, p.Proofs...)
	var negC fr.Element
	negC.Neg(&challenge)
	scalars = append(scalars, negC)

	if len(points) != len(scalars) {
		return fmt.Errorf("%w: response count mismatch", sigcore.ErrInvalidSignatureProof)
	}
	commitment, err := curve.G2MSM(points, scalars)
	if err != nil {
		return err
	}
	t.AppendG2(pokBlindLabel, &commitment)
	return nil
}

// Verify performs the pairing check
// e(sigma_1', sum m_i*Y_i + X + J) == e(sigma_2', G2)
// where J is the hidden-message commitment.
func (p *PoKSignatureProof) Verify(pk sigcore.PublicKey, revealed []sigcore.IndexedMessage, _ fr.Element) error {
	key, ok := pk.(*PublicKey)
	if !ok {
		return sigcore.ErrUnknownScheme
	}
	if p.Sigma1.IsInfinity() || p.Sigma2.IsInfinity() {
		return fmt.Errorf("%w: identity element in proof", sigcore.ErrInvalidSignatureProof)
	}
	if len(key.Y) < len(revealed) {
		return fmt.Errorf("%w: more revealed messages than generators", sigcore.ErrInvalidSignatureProof)
	}
	if err := key.Validate(); err != nil {
		return err
	}

	var one fr.Element
	one.SetOne()
	points := make([]bls12381.G2Affine, 0, len(revealed)+2)
	scalars := make([]fr.Element, 0, len(revealed)+2)
	for _, m := range revealed {
		if m.Index >= len(key.Y) {
			return fmt.Errorf("%w: revealed index %d out of range", sigcore.ErrInvalidSignatureProof, m.Index)
		}
		points = append(points, key.Y[m.Index])
		scalars = append(scalars, m.Message)
	}
	points = append(points, key.X)
	scalars = append(scalars, one)
	points = append(points, p.Commitment)
	scalars = append(scalars, one)

	j, err := curve.G2MSM(points, scalars)
	if err != nil {
		return err
	}

	g2 := curve.G2Generator()
	negG2 := curve.G2Neg(&g2)
	pass, err := curve.PairingCheck(
		[]bls12381.G1Affine{p.Sigma1, p.Sigma2},
		[]bls12381.G2Affine{j, negG2},
	)
	if err != nil {
		return err
	}
	if !pass {
		return fmt.Errorf("%w: pairing check failed", sigcore.ErrInvalidSignatureProof)
	}
	return nil
}

// HiddenMessageProofs returns the Schnorr responses for every hidden
// message index. Responses start at offset 2: the commit phase adds t
// and m' before the message secrets.
func (p *PoKSignatureProof) HiddenMessageProofs(pk sigcore.PublicKey, revealed []sigcore.IndexedMessage) (map[int]fr.Element, error) {
	key, ok := pk.(*PublicKey)
	if !ok {
		return nil, sigcore.ErrUnknownScheme
	}
	if len(key.Y) < len(revealed) {
		return nil, sigcore.ErrInvalidSignatureProof
	}
	sorted := sigcore.SortedRevealed(revealed)
	hidden := make(map[int]fr.Element)
	j := 0
	for i := 0; i < len(key.Y); i++ {
		if j < len(sorted) && sorted[j].Index == i {
			j++
			continue
		}
		pos := i + 2 - j
		if pos >= len(p.Proofs) {
			return nil, fmt.Errorf("%w: missing hidden message proof for index %d", sigcore.ErrInvalidSignatureProof, i)
		}
		hidden[i] = p.Proofs[pos]
	}
	return hidden, nil
}

// MarshalBinary encodes sigma_1 || sigma_2 || commitment || responses.
func (p *PoKSignatureProof) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 2*curve.G1Size+curve.G2Size+len(p.Proofs)*curve.ScalarSize)
	s1 := p.Sigma1.Bytes()
	out = append(out, s1[:]...)
	s2 := p.Sigma2.Bytes()
	out = append(out, s2[:]...)
	c := p.Commitment.Bytes()
	out = append(out, c[:]...)
	for i := range p.Proofs {
		b := p.Proofs[i].Bytes()
		out = append(out, b[:]...)
	}
	return out, nil
}

// UnmarshalPoKProof decodes a proof produced by MarshalBinary.
func UnmarshalPoKProof(data []byte) (*PoKSignatureProof, error) {
	header := 2*curve.G1Size + curve.G2Size
	if len(data) < header+2*curve.ScalarSize || (len(data)-header)%curve.ScalarSize != 0 {
		return nil, sigcore.ErrInvalidSignatureProof
	}
	var p PoKSignatureProof
	var err error
	if p.Sigma1, err = curve.G1FromBytes(data[:curve.G1Size]); err != nil {
		return nil, err
	}
	if p.Sigma2, err = curve.G1FromBytes(data[curve.G1Size : 2*curve.G1Size]); err != nil {
		return nil, err
	}
	if p.Commitment, err = curve.G2FromBytes(data[2*curve.G1Size : header]); err != nil {
		return nil, err
	}
	count := (len(data) - header) / curve.ScalarSize
	p.Proofs = make([]fr.Element, count)
	for i := 0; i < count; i++ {
		off := header + i*curve.ScalarSize
		if p.Proofs[i], err = curve.ScalarFromBytes(data[off : off+curve.ScalarSize]); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
