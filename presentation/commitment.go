// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/statement"
	"github.com/luxfi/anoncred/transcript"
)

// commitmentBuilder publishes C = g*m + h*b and proves knowledge of the
// opening with the blind commitment T = g*b + h*r. The blinder b is the
// external blinder shared with the signature PoK, which is what binds
// the committed value to the signed claim.
type commitmentBuilder struct {
	statement  *statement.Commitment
	commitment bls12381.G1Affine
	message    fr.Element
	b          fr.Element
	r          fr.Element
}

func newCommitmentBuilder(st *statement.Commitment, message, blinder fr.Element, rng io.Reader, t *transcript.Transcript) (*commitmentBuilder, error) {
	r, err := randomScalar(rng)
	if err != nil {
		return nil, err
	}

	gm := curve.G1Mul(&st.MessageGenerator, &message)
	hb := curve.G1Mul(&st.BlinderGenerator, &blinder)
	commitment := curve.G1Add(&gm, &hb)

	gb := curve.G1Mul(&st.MessageGenerator, &blinder)
	hr := curve.G1Mul(&st.BlinderGenerator, &r)
	blindCommitment := curve.G1Add(&gb, &hr)

	t.AppendMessage("", []byte(st.StatementID))
	t.AppendG1("commitment", &commitment)
	t.AppendG1("blind commitment", &blindCommitment)

	return &commitmentBuilder{
		statement:  st,
		commitment: commitment,
		message:    message,
		b:          blinder,
		r:          r,
	}, nil
}

// GenProof emits the Schnorr responses for message and blinder.
func (b *commitmentBuilder) GenProof(challenge fr.Element) (Proof, error) {
	var messageProof, blinderProof, t fr.Element
	t.Mul(&challenge, &b.message)
	messageProof.Add(&b.b, &t)
	t.Mul(&challenge, &b.b)
	blinderProof.Add(&b.r, &t)

	return &CommitmentProof{
		ID:           b.statement.StatementID,
		Commitment:   b.commitment,
		MessageProof: messageProof,
		BlinderProof: blinderProof,
	}, nil
}

// CommitmentProof is the commitment statement's proof part.
type CommitmentProof struct {
	ID           string
	Commitment   bls12381.G1Affine
	MessageProof fr.Element
	BlinderProof fr.Element
}

// StatementID returns the statement id.
func (p *CommitmentProof) StatementID() string { return p.ID }

// Kind returns the proof type tag.
func (p *CommitmentProof) Kind() string { return "commitment" }

// commitmentVerifier replays the blind commitment from the responses
// and cross-checks the message response against the signature PoK.
type commitmentVerifier struct {
	statement *statement.Commitment
	proof     *CommitmentProof
	// messageProof is the signature PoK's hidden-message response for
	// the referenced claim.
	messageProof fr.Element
}

func (v *commitmentVerifier) AddChallengeContribution(challenge fr.Element, t *transcript.Transcript) error {
	// T = g*s_m + h*s_b - c*C
	var negC fr.Element
	negC.Neg(&challenge)
	blind, err := curve.G1MSM(
		[]bls12381.G1Affine{v.statement.MessageGenerator, v.statement.BlinderGenerator, v.proof.Commitment},
		[]fr.Element{v.proof.MessageProof, v.proof.BlinderProof, negC},
	)
	if err != nil {
		return err
	}
	t.AppendMessage("", []byte(v.statement.StatementID))
	t.AppendG1("commitment", &v.proof.Commitment)
	t.AppendG1("blind commitment", &blind)
	return nil
}

func (v *commitmentVerifier) Verify(fr.Element) error {
	if v.proof.Commitment.IsInfinity() {
		return statementError(ErrInvalidPresentationData, v.proof.ID, "identity commitment")
	}
	if !v.proof.MessageProof.Equal(&v.messageProof) {
		return statementError(ErrInvalidPresentationData, v.proof.ID,
			"commitment does not open the signed claim")
	}
	return nil
}
