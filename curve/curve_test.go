// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"crypto/rand"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

func TestRandomScalarUnique(t *testing.T) {
	a, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	b, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	require.False(t, a.Equal(&b))
}

func TestZeroCenterOrdering(t *testing.T) {
	// Negative values must sort below positive values after centering.
	require.Less(t, ZeroCenter(-5), ZeroCenter(-1))
	require.Less(t, ZeroCenter(-1), ZeroCenter(0))
	require.Less(t, ZeroCenter(0), ZeroCenter(1))
	require.Less(t, ZeroCenter(1), ZeroCenter(30303))
}

func TestHashToScalarDeterministic(t *testing.T) {
	a := HashToScalar([]byte("credential"), []byte("claim"))
	b := HashToScalar([]byte("credential"), []byte("claim"))
	require.True(t, a.Equal(&b))

	c := HashToScalar([]byte("credential"), []byte("other"))
	require.False(t, a.Equal(&c))
}

func TestGenerateScalarDeterministicWithData(t *testing.T) {
	a, err := GenerateScalar([]byte("salt"), []byte("data"), nil)
	require.NoError(t, err)
	b, err := GenerateScalar([]byte("salt"), []byte("data"), nil)
	require.NoError(t, err)
	require.True(t, a.Equal(&b))

	c, err := GenerateScalar([]byte("salt"), nil, rand.Reader)
	require.NoError(t, err)
	require.False(t, a.Equal(&c))
}

func TestScalarWireRoundTrip(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	wire := ScalarBytes(&s)
	back, err := ScalarFromBytes(wire[:])
	require.NoError(t, err)
	require.True(t, s.Equal(&back))
}

func TestScalarFromBytesRejectsOverflow(t *testing.T) {
	var all [ScalarSize]byte
	for i := range all {
		all[i] = 0xFF
	}
	_, err := ScalarFromBytes(all[:])
	require.ErrorIs(t, err, ErrInvalidScalar)
}

func TestG1PointRoundTrip(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	require.NoError(t, err)
	p := G1MulBase(&s)
	raw := p.Bytes()
	back, err := G1FromBytes(raw[:])
	require.NoError(t, err)
	require.True(t, p.Equal(&back))
}

func TestG1MSMMatchesNaive(t *testing.T) {
	g := G1Generator()
	points := make([]bls12381.G1Affine, 4)
	scalars := make([]fr.Element, 4)
	for i := range points {
		s, err := RandomScalar(rand.Reader)
		require.NoError(t, err)
		base, err := RandomScalar(rand.Reader)
		require.NoError(t, err)
		points[i] = G1Mul(&g, &base)
		scalars[i] = s
	}

	naive := G1Mul(&points[0], &scalars[0])
	for i := 1; i < len(points); i++ {
		term := G1Mul(&points[i], &scalars[i])
		naive = G1Add(&naive, &term)
	}

	msm, err := G1MSM(points, scalars)
	require.NoError(t, err)
	require.True(t, naive.Equal(&msm))
}

func TestPairingBilinearity(t *testing.T) {
	s, err := RandomScalar(rand.Reader)
	require.NoError(t, err)

	g1 := G1Generator()
	g2 := G2Generator()

	// e(s*G1, G2) * e(-G1, s*G2) == 1
	sg1 := G1MulBase(&s)
	sg2 := G2MulBase(&s)
	neg := G1Neg(&g1)
	ok, err := PairingCheck(
		[]bls12381.G1Affine{sg1, neg},
		[]bls12381.G2Affine{g2, sg2},
	)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRandomHexFormat(t *testing.T) {
	id, err := RandomHex(16, rand.Reader)
	require.NoError(t, err)
	require.Len(t, id, 32)
	for _, c := range id {
		require.Contains(t, "0123456789abcdef", string(c))
	}
}
