// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sigcore

import (
	"crypto/rand"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/transcript"
)

// The Schnorr replay property: the verifier recomputes the prover's
// random commitment as sum(s_i*B_i) - c*sum(x_i*B_i).
func TestCommittedBuilderG1Replay(t *testing.T) {
	g := curve.G1Generator()

	secrets := make([]fr.Element, 3)
	points := make([]bls12381.G1Affine, 3)
	for i := range secrets {
		s, err := curve.RandomScalar(rand.Reader)
		require.NoError(t, err)
		secrets[i] = s
		base, err := curve.RandomScalar(rand.Reader)
		require.NoError(t, err)
		points[i] = curve.G1Mul(&g, &base)
	}

	var builder CommittedBuilderG1
	for i := range points {
		require.NoError(t, builder.CommitRandom(points[i], rand.Reader))
	}

	tr := transcript.New("builder test")
	require.NoError(t, builder.ChallengeContribution("random commitment", tr))
	challenge := tr.ChallengeScalar("challenge bytes")

	responses, err := builder.GenerateProof(challenge, secrets)
	require.NoError(t, err)
	require.Len(t, responses, 3)

	// sum(s_i*B_i) - c*sum(x_i*B_i) must equal the prover's commitment.
	lhs, err := curve.G1MSM(points, responses)
	require.NoError(t, err)
	statement, err := curve.G1MSM(points, secrets)
	require.NoError(t, err)
	cStatement := curve.G1Mul(&statement, &challenge)
	recovered := curve.G1Sub(&lhs, &cStatement)

	prover, err := curve.G1MSM(builder.points, builder.blinders)
	require.NoError(t, err)
	require.True(t, prover.Equal(&recovered))
}

func TestCommittedBuilderSecretCountMismatch(t *testing.T) {
	var builder CommittedBuilderG1
	require.NoError(t, builder.CommitRandom(curve.G1Generator(), rand.Reader))

	var c fr.Element
	c.SetUint64(3)
	_, err := builder.GenerateProof(c, nil)
	require.ErrorIs(t, err, ErrMismatchedSecretCount)
}

func TestBlindContextRoundTrip(t *testing.T) {
	s, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	ctx := &BlindSignatureContext{
		Commitment: curve.G1MulBase(&s),
		Challenge:  s,
		Proofs:     []fr.Element{s, s},
	}
	raw, err := ctx.MarshalBinary()
	require.NoError(t, err)

	var back BlindSignatureContext
	require.NoError(t, back.UnmarshalBinary(raw))
	require.True(t, ctx.Commitment.Equal(&back.Commitment))
	require.True(t, ctx.Challenge.Equal(&back.Challenge))
	require.Len(t, back.Proofs, 2)
}
