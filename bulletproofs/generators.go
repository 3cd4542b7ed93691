// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bulletproofs implements aggregated range proofs with the
// inner-product argument over BLS12-381 G1, after Bunz et al.
// "Bulletproofs: Short Proofs for Confidential Transactions and More".
// Pedersen generators are supplied by the caller so proofs bind to the
// same commitments other statements use; the vector generators are
// derived by hash-to-curve from fixed labels.
package bulletproofs

import (
	"encoding/binary"
	"errors"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
)

var (
	ErrInvalidBitSize    = errors.New("bulletproofs: bit size must be 8, 16, 32 or 64")
	ErrInvalidPartyCount = errors.New("bulletproofs: value count must be a power of two within capacity")
	ErrValueOutOfRange   = errors.New("bulletproofs: value does not fit the requested bit size")
	ErrRangeCheckFailed  = errors.New("bulletproofs: range check failed")
	ErrInvalidProof      = errors.New("bulletproofs: malformed proof")
)

// PedersenGens holds the two generators commitments open against:
// Commit(v, b) = v*B + b*BBlinding.
type PedersenGens struct {
	B         bls12381.G1Affine
	BBlinding bls12381.G1Affine
}

// Commit returns value*B + blinding*BBlinding.
func (p PedersenGens) Commit(value, blinding fr.Element) bls12381.G1Affine {
	vB := curve.G1Mul(&p.B, &value)
	bB := curve.G1Mul(&p.BBlinding, &blinding)
	return curve.G1Add(&vB, &bB)
}

// BulletproofGens carries the per-party generator chains.
type BulletproofGens struct {
	GensCapacity  int
	PartyCapacity int
	// g[party][index], h[party][index]
	g [][]bls12381.G1Affine
	h [][]bls12381.G1Affine
}

// NewBulletproofGens derives gensCapacity generators per party for
// partyCapacity parties.
func NewBulletproofGens(gensCapacity, partyCapacity int) (*BulletproofGens, error) {
	bg := &BulletproofGens{
		GensCapacity:  gensCapacity,
		PartyCapacity: partyCapacity,
		g:             make([][]bls12381.G1Affine, partyCapacity),
		h:             make([][]bls12381.G1Affine, partyCapacity),
	}
	for party := 0; party < partyCapacity; party++ {
		bg.g[party] = make([]bls12381.G1Affine, gensCapacity)
		bg.h[party] = make([]bls12381.G1Affine, gensCapacity)
		for i := 0; i < gensCapacity; i++ {
			var err error
			if bg.g[party][i], err = deriveGenerator('G', party, i); err != nil {
				return nil, err
			}
			if bg.h[party][i], err = deriveGenerator('H', party, i); err != nil {
				return nil, err
			}
		}
	}
	return bg, nil
}

func deriveGenerator(kind byte, party, index int) (bls12381.G1Affine, error) {
	seed := make([]byte, 0, 32)
	seed = append(seed, []byte("bulletproof vector generator ")...)
	seed = append(seed, kind)
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], uint32(party))
	binary.BigEndian.PutUint32(buf[4:], uint32(index))
	seed = append(seed, buf[:]...)
	return curve.HashToG1(seed, []byte(curve.CommitmentGeneratorDst))
}

// share returns the first n generators of each of the first m parties,
// concatenated in party order.
func (bg *BulletproofGens) share(n, m int) (gs, hs []bls12381.G1Affine, err error) {
	if m < 1 || m > bg.PartyCapacity || n > bg.GensCapacity {
		return nil, nil, ErrInvalidPartyCount
	}
	gs = make([]bls12381.G1Affine, 0, n*m)
	hs = make([]bls12381.G1Affine, 0, n*m)
	for party := 0; party < m; party++ {
		gs = append(gs, bg.g[party][:n]...)
		hs = append(hs, bg.h[party][:n]...)
	}
	return gs, hs, nil
}

func isPowerOfTwo(v int) bool { return v > 0 && v&(v-1) == 0 }

// powersOf returns [1, x, x^2, ..., x^(n-1)].
func powersOf(x fr.Element, n int) []fr.Element {
	out := make([]fr.Element, n)
	out[0].SetOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], &x)
	}
	return out
}

// innerProduct returns <a, b>.
func innerProduct(a, b []fr.Element) fr.Element {
	var out, t fr.Element
	for i := range a {
		t.Mul(&a[i], &b[i])
		out.Add(&out, &t)
	}
	return out
}

// sumOfPowers returns 1 + x + ... + x^(n-1).
func sumOfPowers(x fr.Element, n int) fr.Element {
	var out fr.Element
	var pow fr.Element
	pow.SetOne()
	for i := 0; i < n; i++ {
		out.Add(&out, &pow)
		pow.Mul(&pow, &x)
	}
	return out
}
