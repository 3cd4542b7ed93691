// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bbs

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
	pokABarLabel       = "a_bar"
	pokBBarLabel       = "b_bar"
	pokRandomLabel     = "random commitment"
	pokBlindLabel      = "blind commitment"
	pokTranscriptLabel = "signature proof of knowledge"
	pokChallengeLabel  = "signature proof of knowledge"
)

// PoKSignature is the commit phase of the BBS signature proof of
// knowledge. With randomizer r:
//
//	ABar = A*r
//	BBar = b*r - ABar*e = base*r + sum Y_i*(m_i*r) - ABar*e
//
// where base = G1 + sum over revealed Y_i*m_i. The Schnorr relation is
// proven over bases [hidden Y_i..., base, ABar] with secrets
// [m_i*r..., r, -e].
type PoKSignature struct {
	builder sigcore.CommittedBuilderG1
	aBar    bls12381.G1Affine
	bBar    bls12381.G1Affine
	base    bls12381.G1Affine
	secrets []fr.Element
}

// CommitSignaturePoK randomizes the signature and commits to the hidden
// messages according to the per-message policy.
func CommitSignaturePoK(sig *Signature, pk *PublicKey, messages []sigcore.ProofMessage, rng io.Reader) (*PoKSignature, error) {
	if len(pk.Y) < len(messages) {
		return nil, sigcore.ErrInvalidSignatureProof
	}

	r, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, err
	}

	msgs := make([]fr.Element, len(messages))
	for i, m := range messages {
		msgs[i] = m.Value
	}
	msm, err := curve.G1MSM(pk.Y[:len(msgs)], msgs)
	if err != nil {
		return nil, err
	}
	g1 := curve.G1Generator()
	b := curve.G1Add(&g1, &msm)

	aBar := curve.G1Mul(&sig.A, &r)
	bR := curve.G1Mul(&b, &r)
	eABar := curve.G1Mul(&aBar, &sig.E)
	bBar := curve.G1Sub(&bR, &eABar)

	pok := &PoKSignature{aBar: aBar, bBar: bBar}

	revealedPoints := make([]bls12381.G1Affine, 0, len(messages))
	revealedScalars := make([]fr.Element, 0, len(messages))
	for i, m := range messages {
		switch m.Kind {
		case sigcore.HiddenProofSpecific:
			if err := pok.builder.CommitRandom(pk.Y[i], rng); err != nil {
				return nil, err
			}
			var scaled fr.Element
			scaled.Mul(&m.Value, &r)
			pok.secrets = append(pok.secrets, scaled)
		case sigcore.HiddenExternal:
			pok.builder.Commit(pk.Y[i], m.Blinder)
			var scaled fr.Element
			scaled.Mul(&m.Value, &r)
			pok.secrets = append(pok.secrets, scaled)
		case sigcore.Revealed:
			revealedPoints = append(revealedPoints, pk.Y[i])
			revealedScalars = append(revealedScalars, m.Value)
		}
	}

	revealedMSM, err := curve.G1MSM(revealedPoints, revealedScalars)
	if err != nil {
		return nil, err
	}
	base := curve.G1Add(&g1, &revealedMSM)
	pok.base = base

	if err := pok.builder.CommitRandom(base, rng); err != nil {
		return nil, err
	}
	pok.secrets = append(pok.secrets, r)

	if err := pok.builder.CommitRandom(aBar, rng); err != nil {
		return nil, err
	}
	var negE fr.Element
	negE.Neg(&sig.E)
	pok.secrets = append(pok.secrets, negE)

	return pok, nil
}

// AddProofContribution absorbs the commit-phase values into the transcript.
func (p *PoKSignature) AddProofContribution(t *transcript.Transcript) error {
	t.AppendG1(pokABarLabel, &p.aBar)
	t.AppendG1(pokBBarLabel, &p.bBar)
	t.AppendG1(pokRandomLabel, &p.base)
	return p.builder.ChallengeContribution(pokBlindLabel, t)
}

// GenerateProof finalizes the proof with the Fiat-Shamir challenge.
func (p *PoKSignature) GenerateProof(challenge fr.Element) (sigcore.PoKProof, error) {
	proofs, err := p.builder.GenerateProof(challenge, p.secrets)
	if err != nil {
		return nil, err
	}
	commitment, err := p.builder.RandomCommitment()
	if err != nil {
		return nil, err
	}
	return &PoKSignatureProof{
		ABar:       p.aBar,
		BBar:       p.bBar,
		Commitment: commitment,
		Proofs:     proofs,
	}, nil
}

// PoKSignatureProof is the finalized proof sent to the verifier.
type PoKSignatureProof struct {
	ABar       bls12381.G1Affine
	BBar       bls12381.G1Affine
	Commitment bls12381.G1Affine
	Proofs     []fr.Element
}

// Scheme returns the scheme name.
func (p *PoKSignatureProof) Scheme() string { return SchemeName }

// recomputeBase rebuilds G1 + sum over revealed Y_i*m_i.
func recomputeBase(pk *PublicKey, revealed []sigcore.IndexedMessage) (bls12381.G1Affine, error) {
	points := make([]bls12381.G1Affine, 0, len(revealed))
	scalars := make([]fr.Element, 0, len(revealed))
	for _, m := range revealed {
		if m.Index >= len(pk.Y) {
			return bls12381.G1Affine{}, sigcore.ErrInvalidSignatureProof
		}
		points = append(points, pk.Y[m.Index])
		scalars = append(scalars, m.Message)
	}
	msm, err := curve.G1MSM(points, scalars)
	if err != nil {
		return bls12381.G1Affine{}, err
	}
	g1 := curve.G1Generator()
	return curve.G1Add(&g1, &msm), nil
}

// AddProofContribution replays the transcript appends with the stored
// random commitment; its consistency is checked algebraically in Verify.
func (p *PoKSignatureProof) AddProofContribution(pk sigcore.PublicKey, revealed []sigcore.IndexedMessage, _ fr.Element, t *transcript.Transcript) error {
	key, ok := pk.(*PublicKey)
	if !ok {
		return sigcore.ErrUnknownScheme
	}
	base, err := recomputeBase(key, revealed)
	if err != nil {
		return err
	}
	t.AppendG1(pokABarLabel, &p.ABar)
	t.AppendG1(pokBBarLabel, &p.BBar)
	t.AppendG1(pokRandomLabel, &base)
	t.AppendG1(pokBlindLabel, &p.Commitment)
	return nil
}

// Verify checks the Schnorr relation over the hidden messages and the
// pairing e(ABar, W) == e(BBar, G2).
func (p *PoKSignatureProof) Verify(pk sigcore.PublicKey, revealed []sigcore.IndexedMessage, challenge fr.Element) error {
	key, ok := pk.(*PublicKey)
	if !ok {
		return sigcore.ErrUnknownScheme
	}
	if p.ABar.IsInfinity() || p.BBar.IsInfinity() {
		return fmt.Errorf("%w: identity element in proof", sigcore.ErrInvalidSignatureProof)
	}
	if err := key.Validate(); err != nil {
		return err
	}

	base, err := recomputeBase(key, revealed)
	if err != nil {
		return err
	}
	known := make(map[int]bool, len(revealed))
	for _, m := range revealed {
		known[m.Index] = true
	}

	points := make([]bls12381.G1Affine, 0, len(key.Y)+3)
	for i := range key.Y {
		if known[i] {
			continue
		}
		points = append(points, key.Y[i])
	}
	points = append(points, base)
	points = append(points, p.ABar)
	points = append(points, p.BBar)

	scalars := make([]fr.Element, 0, len(p.Proofs)+1)
	scalars = append(scalars, p.Proofs...)
	var negC fr.Element
	negC.Neg(&challenge)
	scalars = append(scalars, negC)

	if len(points) != len(scalars) {
		return fmt.Errorf("%w: response count mismatch", sigcore.ErrInvalidSignatureProof)
	}
	commitment, err := curve.G1MSM(points, scalars)
	if err != nil {
		return err
	}
	if !commitment.Equal(&p.Commitment) {
		return fmt.Errorf("%w: message relation check failed", sigcore.ErrInvalidSignatureProof)
	}

	g2 := curve.G2Generator()
	negG2 := curve.G2Neg(&g2)
	pass, err := curve.PairingCheck(
		[]bls12381.G1Affine{p.ABar, p.BBar},
		[]bls12381.G2Affine{key.W, negG2},
	)
	if err != nil {
		return err
	}
	if !pass {
		return fmt.Errorf("%w: pairing check failed", sigcore.ErrInvalidSignatureProof)
	}
	return nil
}

// HiddenMessageProofs returns the Schnorr responses for the hidden
// message indices. BBS responses open m_i scaled by the signature
// randomizer, so they bind within this proof only.
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
		pos := i - j
		if pos >= len(p.Proofs) {
			return nil, fmt.Errorf("%w: missing hidden message proof for index %d", sigcore.ErrInvalidSignatureProof, i)
		}
		hidden[i] = p.Proofs[pos]
	}
	return hidden, nil
}

// MarshalBinary encodes a_bar || b_bar || commitment || responses.
func (p *PoKSignatureProof) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 3*curve.G1Size+len(p.Proofs)*curve.ScalarSize)
	a := p.ABar.Bytes()
	out = append(out, a[:]...)
	b := p.BBar.Bytes()
	out = append(out, b[:]...)
	c := p.Commitment.Bytes()
	out = append(out, c[:]...)
	for i := range p.Proofs {
		s := p.Proofs[i].Bytes()
		out = append(out, s[:]...)
	}
	return out, nil
}

// UnmarshalPoKProof decodes a proof produced by MarshalBinary.
func UnmarshalPoKProof(data []byte) (*PoKSignatureProof, error) {
	header := 3 * curve.G1Size
	if len(data) < header+2*curve.ScalarSize || (len(data)-header)%curve.ScalarSize != 0 {
		return nil, sigcore.ErrInvalidSignatureProof
	}
	var p PoKSignatureProof
	var err error
	if p.ABar, err = curve.G1FromBytes(data[:curve.G1Size]); err != nil {
		return nil, err
	}
	if p.BBar, err = curve.G1FromBytes(data[curve.G1Size : 2*curve.G1Size]); err != nil {
		return nil, err
	}
	if p.Commitment, err = curve.G1FromBytes(data[2*curve.G1Size : header]); err != nil {
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
