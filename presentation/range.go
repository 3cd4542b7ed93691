// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"fmt"
	"io"
	"sync"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/bulletproofs"
	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/statement"
	"github.com/luxfi/anoncred/transcript"
)

// rangeTranscriptLabel seeds the dedicated bulletproof transcript; the
// shared presentation challenge is bound into it.
const rangeTranscriptLabel = "credx range proof"

// rangeBits is the bit width every range proof uses.
const rangeBits = 64

var (
	rangeGensOnce sync.Once
	rangeGens     *bulletproofs.BulletproofGens
	rangeGensErr  error
)

func rangeProofGens() (*bulletproofs.BulletproofGens, error) {
	rangeGensOnce.Do(func() {
		rangeGens, rangeGensErr = bulletproofs.NewBulletproofGens(rangeBits, 2)
	})
	return rangeGens, rangeGensErr
}

// rangeBuilder proves lower <= m <= upper over the commitment
// statement's Pedersen commitment. Both bounds use the zero-centered
// shifts: m - lower in [0, 2^64) and m + (2^64-1 - upper) in [0, 2^64).
type rangeBuilder struct {
	statement     *statement.Range
	commitment    *commitmentBuilder
	adjustedLower *uint64
	adjustedUpper *uint64
	rng           io.Reader
}

func newRangeBuilder(st *statement.Range, cb *commitmentBuilder, value int64, rng io.Reader, t *transcript.Transcript) (*rangeBuilder, error) {
	if st.Claim != cb.statement.Claim && st.SignatureID != cb.statement.ReferenceID {
		return nil, statementError(ErrInvalidPresentationData, st.StatementID,
			"range and commitment reference different claims")
	}
	if st.Lower == nil && st.Upper == nil {
		return nil, statementError(ErrInvalidPresentationData, st.StatementID, "no bounds")
	}

	t.AppendMessage("", []byte(st.StatementID))
	commitAff := cb.commitment
	t.AppendG1("used commitment", &commitAff)
	t.AppendUint64("range proof bits", rangeBits)

	b := &rangeBuilder{statement: st, commitment: cb, rng: rng}
	centered := curve.ZeroCenter(value)

	blind := curve.G1Mul(&cb.statement.BlinderGenerator, &cb.b)

	switch {
	case st.Lower != nil && st.Upper != nil:
		lower := curve.ZeroCenter(*st.Lower)
		upper := curve.ZeroCenter(*st.Upper)
		if centered < lower || centered > upper {
			return nil, statementError(bulletproofs.ErrValueOutOfRange, st.StatementID, "claim outside bounds")
		}
		adjLower := centered - lower
		adjUpper := centered + (^uint64(0) - upper)
		b.adjustedLower = &adjLower
		b.adjustedUpper = &adjUpper
		t.AppendMessage("range proof version", []byte{3})
		upperCommit := adjustedCommitment(cb.statement.MessageGenerator, adjUpper, blind)
		lowerCommit := adjustedCommitment(cb.statement.MessageGenerator, adjLower, blind)
		t.AppendG1("adjusted upper commitment", &upperCommit)
		t.AppendG1("adjusted lower commitment", &lowerCommit)
	case st.Upper != nil:
		upper := curve.ZeroCenter(*st.Upper)
		if centered > upper {
			return nil, statementError(bulletproofs.ErrValueOutOfRange, st.StatementID, "claim above bound")
		}
		adjUpper := centered + (^uint64(0) - upper)
		b.adjustedUpper = &adjUpper
		t.AppendMessage("range proof version", []byte{2})
		upperCommit := adjustedCommitment(cb.statement.MessageGenerator, adjUpper, blind)
		t.AppendG1("adjusted upper commitment", &upperCommit)
	default:
		lower := curve.ZeroCenter(*st.Lower)
		if centered < lower {
			return nil, statementError(bulletproofs.ErrValueOutOfRange, st.StatementID, "claim below bound")
		}
		adjLower := centered - lower
		b.adjustedLower = &adjLower
		t.AppendMessage("range proof version", []byte{1})
		lowerCommit := adjustedCommitment(cb.statement.MessageGenerator, adjLower, blind)
		t.AppendG1("adjusted lower commitment", &lowerCommit)
	}
	return b, nil
}

func adjustedCommitment(gen bls12381.G1Affine, value uint64, blind bls12381.G1Affine) bls12381.G1Affine {
	var v fr.Element
	v.SetUint64(value)
	gv := curve.G1Mul(&gen, &v)
	return curve.G1Add(&gv, &blind)
}

// GenProof runs the bulletproof over the adjusted values with the
// shared challenge bound into a dedicated transcript.
func (b *rangeBuilder) GenProof(challenge fr.Element) (Proof, error) {
	gens, err := rangeProofGens()
	if err != nil {
		return nil, err
	}
	pedersen := bulletproofs.PedersenGens{
		B:         b.commitment.statement.MessageGenerator,
		BBlinding: b.commitment.statement.BlinderGenerator,
	}

	t := transcript.New(rangeTranscriptLabel)
	t.AppendScalar("challenge", &challenge)

	blinder := b.commitment.b

	var proof *bulletproofs.RangeProof
	switch {
	case b.adjustedLower != nil && b.adjustedUpper != nil:
		proof, _, err = bulletproofs.ProveMultiple(gens, pedersen, t,
			[]uint64{*b.adjustedUpper, *b.adjustedLower},
			[]fr.Element{blinder, blinder}, rangeBits, b.rng)
	case b.adjustedUpper != nil:
		proof, _, err = bulletproofs.ProveMultiple(gens, pedersen, t,
			[]uint64{*b.adjustedUpper}, []fr.Element{blinder}, rangeBits, b.rng)
	default:
		proof, _, err = bulletproofs.ProveMultiple(gens, pedersen, t,
			[]uint64{*b.adjustedLower}, []fr.Element{blinder}, rangeBits, b.rng)
	}
	if err != nil {
		return nil, statementError(bulletproofs.ErrRangeCheckFailed, b.statement.StatementID, err.Error())
	}
	return &RangeProof{ID: b.statement.StatementID, Proof: *proof}, nil
}

// RangeProof is the range statement's proof part.
type RangeProof struct {
	ID    string
	Proof bulletproofs.RangeProof
}

// StatementID returns the statement id.
func (p *RangeProof) StatementID() string { return p.ID }

// Kind returns the proof type tag.
func (p *RangeProof) Kind() string { return "range" }

// rangeVerifier recomputes the adjusted commitments from the
// commitment proof and verifies the bulletproof.
type rangeVerifier struct {
	statement           *statement.Range
	commitmentStatement *statement.Commitment
	proof               *RangeProof
	commitment          bls12381.G1Affine
}

func (v *rangeVerifier) adjustedCommitments() (upper, lower *bls12381.G1Affine, err error) {
	if v.statement.Lower == nil && v.statement.Upper == nil {
		return nil, nil, statementError(ErrInvalidPresentationData, v.statement.StatementID, "no bounds")
	}
	if v.statement.Upper != nil {
		var shift fr.Element
		shift.SetUint64(^uint64(0) - curve.ZeroCenter(*v.statement.Upper))
		adj := curve.G1Mul(&v.commitmentStatement.MessageGenerator, &shift)
		c := curve.G1Add(&v.commitment, &adj)
		upper = &c
	}
	if v.statement.Lower != nil {
		shift := curve.NumberScalar(*v.statement.Lower)
		adj := curve.G1Mul(&v.commitmentStatement.MessageGenerator, &shift)
		c := curve.G1Sub(&v.commitment, &adj)
		lower = &c
	}
	return upper, lower, nil
}

func (v *rangeVerifier) AddChallengeContribution(_ fr.Element, t *transcript.Transcript) error {
	upper, lower, err := v.adjustedCommitments()
	if err != nil {
		return err
	}
	t.AppendMessage("", []byte(v.statement.StatementID))
	t.AppendG1("used commitment", &v.commitment)
	t.AppendUint64("range proof bits", rangeBits)
	switch {
	case upper != nil && lower != nil:
		t.AppendMessage("range proof version", []byte{3})
		t.AppendG1("adjusted upper commitment", upper)
		t.AppendG1("adjusted lower commitment", lower)
	case upper != nil:
		t.AppendMessage("range proof version", []byte{2})
		t.AppendG1("adjusted upper commitment", upper)
	default:
		t.AppendMessage("range proof version", []byte{1})
		t.AppendG1("adjusted lower commitment", lower)
	}
	return nil
}

func (v *rangeVerifier) Verify(challenge fr.Element) error {
	gens, err := rangeProofGens()
	if err != nil {
		return err
	}
	pedersen := bulletproofs.PedersenGens{
		B:         v.commitmentStatement.MessageGenerator,
		BBlinding: v.commitmentStatement.BlinderGenerator,
	}
	upper, lower, err := v.adjustedCommitments()
	if err != nil {
		return err
	}

	t := transcript.New(rangeTranscriptLabel)
	t.AppendScalar("challenge", &challenge)

	switch {
	case upper != nil && lower != nil:
		err = v.proof.Proof.VerifyMultiple(gens, pedersen, t,
			[]bls12381.G1Affine{*upper, *lower}, rangeBits)
	case upper != nil:
		err = v.proof.Proof.VerifyMultiple(gens, pedersen, t,
			[]bls12381.G1Affine{*upper}, rangeBits)
	default:
		err = v.proof.Proof.VerifyMultiple(gens, pedersen, t,
			[]bls12381.G1Affine{*lower}, rangeBits)
	}
	if err != nil {
		return statementError(bulletproofs.ErrRangeCheckFailed, v.proof.ID,
			fmt.Sprintf("range check failed: %v", err))
	}
	return nil
}
