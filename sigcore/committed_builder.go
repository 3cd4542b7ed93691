// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sigcore

import (
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/transcript"
)

// CommittedBuilderG1 batches Schnorr commitments to a G1
// multi-exponentiation. The builder collects (point, blinder) pairs, the
// sum of products forms the random commitment absorbed into the
// transcript, and GenerateProof later emits the responses
// s_i = r_i + c*x_i for the caller's secrets x_i.
type CommittedBuilderG1 struct {
	points   []bls12381.G1Affine
	blinders []fr.Element
}

// CommitRandom adds a point with a fresh random blinder.
func (b *CommittedBuilderG1) CommitRandom(point bls12381.G1Affine, rng io.Reader) error {
	r, err := curve.RandomScalar(rng)
	if err != nil {
		return err
	}
	b.Commit(point, r)
	return nil
}

// Commit adds a point with the supplied blinder.
func (b *CommittedBuilderG1) Commit(point bls12381.G1Affine, blinder fr.Element) {
	b.points = append(b.points, point)
	b.blinders = append(b.blinders, blinder)
}

// RandomCommitment returns the sum of products of the committed points
// and blinders.
func (b *CommittedBuilderG1) RandomCommitment() (bls12381.G1Affine, error) {
	return curve.G1MSM(b.points, b.blinders)
}

// ChallengeContribution absorbs the random commitment into the transcript.
func (b *CommittedBuilderG1) ChallengeContribution(label string, t *transcript.Transcript) error {
	commitment, err := b.RandomCommitment()
	if err != nil {
		return err
	}
	t.AppendG1(label, &commitment)
	return nil
}

// GenerateProof computes the Schnorr responses s_i = r_i + c*x_i.
func (b *CommittedBuilderG1) GenerateProof(challenge fr.Element, secrets []fr.Element) ([]fr.Element, error) {
	if len(secrets) != len(b.blinders) {
		return nil, ErrMismatchedSecretCount
	}
	out := make([]fr.Element, len(b.blinders))
	for i := range b.blinders {
		var t fr.Element
		t.Mul(&secrets[i], &challenge)
		out[i].Add(&b.blinders[i], &t)
	}
	return out, nil
}

// CommittedBuilderG2 is the G2 counterpart of CommittedBuilderG1.
type CommittedBuilderG2 struct {
	points   []bls12381.G2Affine
	blinders []fr.Element
}

// CommitRandom adds a point with a fresh random blinder.
func (b *CommittedBuilderG2) CommitRandom(point bls12381.G2Affine, rng io.Reader) error {
	r, err := curve.RandomScalar(rng)
	if err != nil {
		return err
	}
	b.Commit(point, r)
	return nil
}

// Commit adds a point with the supplied blinder.
func (b *CommittedBuilderG2) Commit(point bls12381.G2Affine, blinder fr.Element) {
	b.points = append(b.points, point)
	b.blinders = append(b.blinders, blinder)
}

// ChallengeContribution absorbs the random commitment into the transcript.
func (b *CommittedBuilderG2) ChallengeContribution(label string, t *transcript.Transcript) error {
	commitment, err := curve.G2MSM(b.points, b.blinders)
	if err != nil {
		return err
	}
	t.AppendG2(label, &commitment)
	return nil
}

// GenerateProof computes the Schnorr responses s_i = r_i + c*x_i.
func (b *CommittedBuilderG2) GenerateProof(challenge fr.Element, secrets []fr.Element) ([]fr.Element, error) {
	if len(secrets) != len(b.blinders) {
		return nil, ErrMismatchedSecretCount
	}
	out := make([]fr.Element, len(b.blinders))
	for i := range b.blinders {
		var t fr.Element
		t.Mul(&secrets[i], &challenge)
		out[i].Add(&b.blinders[i], &t)
	}
	return out, nil
}
