// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bulletproofs

import (
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/transcript"
)

func testGens(t *testing.T, n, m int) (*BulletproofGens, PedersenGens) {
	t.Helper()
	bg, err := NewBulletproofGens(n, m)
	require.NoError(t, err)

	b, err := curve.HashToG1([]byte("range proof message generator"), []byte(curve.CommitmentGeneratorDst))
	require.NoError(t, err)
	bb, err := curve.HashToG1([]byte("range proof blinder generator"), []byte(curve.CommitmentGeneratorDst))
	require.NoError(t, err)
	return bg, PedersenGens{B: b, BBlinding: bb}
}

func TestRangeProofSingleRoundTrip(t *testing.T) {
	bg, pc := testGens(t, 64, 1)

	for _, value := range []uint64{0, 1, 30303, 1 << 63, ^uint64(0)} {
		blinding, err := curve.RandomScalar(rand.Reader)
		require.NoError(t, err)

		prover := transcript.New("range test")
		proof, commitment, err := ProveSingle(bg, pc, prover, value, blinding, 64, rand.Reader)
		require.NoError(t, err)

		verifier := transcript.New("range test")
		require.NoError(t, proof.VerifySingle(bg, pc, verifier, commitment, 64))
	}
}

func TestRangeProofAggregated(t *testing.T) {
	bg, pc := testGens(t, 64, 2)

	values := []uint64{44829, 12}
	blindings := make([]fr.Element, 2)
	for i := range blindings {
		b, err := curve.RandomScalar(rand.Reader)
		require.NoError(t, err)
		blindings[i] = b
	}

	prover := transcript.New("range test")
	proof, commitments, err := ProveMultiple(bg, pc, prover, values, blindings, 64, rand.Reader)
	require.NoError(t, err)
	require.Len(t, commitments, 2)

	verifier := transcript.New("range test")
	require.NoError(t, proof.VerifyMultiple(bg, pc, verifier, commitments, 64))
}

func TestRangeProofEightBit(t *testing.T) {
	bg, pc := testGens(t, 8, 4)

	values := []uint64{0, 255, 7, 128}
	blindings := make([]fr.Element, 4)
	for i := range blindings {
		b, err := curve.RandomScalar(rand.Reader)
		require.NoError(t, err)
		blindings[i] = b
	}

	prover := transcript.New("byte range test")
	proof, commitments, err := ProveMultiple(bg, pc, prover, values, blindings, 8, rand.Reader)
	require.NoError(t, err)

	verifier := transcript.New("byte range test")
	require.NoError(t, proof.VerifyMultiple(bg, pc, verifier, commitments, 8))
}

// The honest prover refuses values that do not fit the bit size.
func TestRangeProofOutOfRangeRefused(t *testing.T) {
	bg, pc := testGens(t, 8, 1)

	blinding, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	prover := transcript.New("byte range test")
	_, _, err = ProveSingle(bg, pc, prover, 256, blinding, 8, rand.Reader)
	require.ErrorIs(t, err, ErrValueOutOfRange)
}

func TestRangeProofTamperedFails(t *testing.T) {
	bg, pc := testGens(t, 64, 1)

	blinding, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	prover := transcript.New("range test")
	proof, commitment, err := ProveSingle(bg, pc, prover, 30303, blinding, 64, rand.Reader)
	require.NoError(t, err)

	// Tamper with the claimed polynomial evaluation.
	var one fr.Element
	one.SetOne()
	proof.TX.Add(&proof.TX, &one)

	verifier := transcript.New("range test")
	require.Error(t, proof.VerifySingle(bg, pc, verifier, commitment, 64))
}

func TestRangeProofWrongCommitmentFails(t *testing.T) {
	bg, pc := testGens(t, 64, 1)

	blinding, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	prover := transcript.New("range test")
	proof, _, err := ProveSingle(bg, pc, prover, 30303, blinding, 64, rand.Reader)
	require.NoError(t, err)

	other, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	var v fr.Element
	v.SetUint64(999)
	wrong := pc.Commit(v, other)

	verifier := transcript.New("range test")
	require.Error(t, proof.VerifySingle(bg, pc, verifier, wrong, 64))
}

func TestRangeProofSerialization(t *testing.T) {
	bg, pc := testGens(t, 64, 1)

	blinding, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	prover := transcript.New("range test")
	proof, commitment, err := ProveSingle(bg, pc, prover, 30303, blinding, 64, rand.Reader)
	require.NoError(t, err)

	raw, err := proof.MarshalBinary()
	require.NoError(t, err)
	var back RangeProof
	require.NoError(t, back.UnmarshalBinary(raw))

	verifier := transcript.New("range test")
	require.NoError(t, back.VerifySingle(bg, pc, verifier, commitment, 64))
}
