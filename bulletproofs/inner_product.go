// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bulletproofs

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/transcript"
)

// InnerProductProof argues that committed vectors a, b satisfy
// P = <a,G> + <b,H> + <a,b>*Q with log-size communication.
type InnerProductProof struct {
	L []bls12381.G1Affine
	R []bls12381.G1Affine
	A fr.Element
	B fr.Element
}

// proveInnerProduct folds a and b against the (already primed) bases.
// The caller has applied any per-index factors to gs and hs.
func proveInnerProduct(t *transcript.Transcript, q bls12381.G1Affine, gs, hs []bls12381.G1Affine, a, b []fr.Element) (*InnerProductProof, error) {
	n := len(a)
	if n != len(b) || n != len(gs) || n != len(hs) || !isPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: bad inner product lengths", ErrInvalidProof)
	}
	t.AppendUint64("inner product n", uint64(n))

	proof := &InnerProductProof{}

	// Work on copies; folding is destructive.
	a = append([]fr.Element{}, a...)
	b = append([]fr.Element{}, b...)
	gs = append([]bls12381.G1Affine{}, gs...)
	hs = append([]bls12381.G1Affine{}, hs...)

	for n > 1 {
		half := n / 2
		aLo, aHi := a[:half], a[half:]
		bLo, bHi := b[:half], b[half:]
		gLo, gHi := gs[:half], gs[half:]
		hLo, hHi := hs[:half], hs[half:]

		cL := innerProduct(aLo, bHi)
		cR := innerProduct(aHi, bLo)

		lPoints := make([]bls12381.G1Affine, 0, n+1)
		lScalars := make([]fr.Element, 0, n+1)
		lPoints = append(lPoints, gHi...)
		lScalars = append(lScalars, aLo...)
		lPoints = append(lPoints, hLo...)
		lScalars = append(lScalars, bHi...)
		lPoints = append(lPoints, q)
		lScalars = append(lScalars, cL)
		l, err := curve.G1MSM(lPoints, lScalars)
		if err != nil {
			return nil, err
		}

		rPoints := make([]bls12381.G1Affine, 0, n+1)
		rScalars := make([]fr.Element, 0, n+1)
		rPoints = append(rPoints, gLo...)
		rScalars = append(rScalars, aHi...)
		rPoints = append(rPoints, hHi...)
		rScalars = append(rScalars, bLo...)
		rPoints = append(rPoints, q)
		rScalars = append(rScalars, cR)
		r, err := curve.G1MSM(rPoints, rScalars)
		if err != nil {
			return nil, err
		}

		proof.L = append(proof.L, l)
		proof.R = append(proof.R, r)

		t.AppendG1("L", &l)
		t.AppendG1("R", &r)
		u := t.ChallengeScalar("u")
		if u.IsZero() {
			return nil, fmt.Errorf("%w: zero challenge", ErrInvalidProof)
		}
		var uInv fr.Element
		uInv.Inverse(&u)

		for i := 0; i < half; i++ {
			// a' = u*aLo + u^-1*aHi ; b' = u^-1*bLo + u*bHi
			var t1, t2 fr.Element
			t1.Mul(&aLo[i], &u)
			t2.Mul(&aHi[i], &uInv)
			a[i].Add(&t1, &t2)

			t1.Mul(&bLo[i], &uInv)
			t2.Mul(&bHi[i], &u)
			b[i].Add(&t1, &t2)

			// G' = u^-1*gLo + u*gHi ; H' = u*hLo + u^-1*hHi
			gl := curve.G1Mul(&gLo[i], &uInv)
			gh := curve.G1Mul(&gHi[i], &u)
			gs[i] = curve.G1Add(&gl, &gh)

			hl := curve.G1Mul(&hLo[i], &u)
			hh := curve.G1Mul(&hHi[i], &uInv)
			hs[i] = curve.G1Add(&hl, &hh)
		}
		a = a[:half]
		b = b[:half]
		gs = gs[:half]
		hs = hs[:half]
		n = half
	}

	proof.A = a[0]
	proof.B = b[0]
	return proof, nil
}

// verificationScalars recomputes the folding challenges and the s
// vector for one-shot verification.
func (p *InnerProductProof) verificationScalars(n int, t *transcript.Transcript) (u, uInv, s []fr.Element, err error) {
	rounds := len(p.L)
	if len(p.R) != rounds || (1<<rounds) != n {
		return nil, nil, nil, fmt.Errorf("%w: wrong number of rounds", ErrInvalidProof)
	}
	t.AppendUint64("inner product n", uint64(n))

	u = make([]fr.Element, rounds)
	uInv = make([]fr.Element, rounds)
	for k := 0; k < rounds; k++ {
		t.AppendG1("L", &p.L[k])
		t.AppendG1("R", &p.R[k])
		u[k] = t.ChallengeScalar("u")
		if u[k].IsZero() {
			return nil, nil, nil, fmt.Errorf("%w: zero challenge", ErrInvalidProof)
		}
		uInv[k].Inverse(&u[k])
	}

	// s_i = prod over rounds k of u_k^{+1 or -1}: the k-th challenge
	// enters positively when bit (rounds-1-k) of i is set.
	s = make([]fr.Element, n)
	s[0].SetOne()
	for k := 0; k < rounds; k++ {
		s[0].Mul(&s[0], &uInv[k])
	}
	for i := 1; i < n; i++ {
		// lowest set bit of i selects the challenge to square in.
		lg := 0
		for j := i; j&1 == 0; j >>= 1 {
			lg++
		}
		k := rounds - 1 - lg
		var uSq fr.Element
		uSq.Square(&u[k])
		s[i].Mul(&s[i-(1<<lg)], &uSq)
	}
	return u, uInv, s, nil
}

// verifyInnerProduct checks P = <a,G> + <b,H> + <a,b>*Q against the
// folded proof. gs and hs carry the same priming as the prover's.
func (p *InnerProductProof) verifyInnerProduct(t *transcript.Transcript, q, target bls12381.G1Affine, gs, hs []bls12381.G1Affine) error {
	n := len(gs)
	u, uInv, s, err := p.verificationScalars(n, t)
	if err != nil {
		return err
	}

	// target + sum(u_k^2 L_k + u_k^-2 R_k)
	//   == a*<s,G> + b*<s^-1,H> + a*b*Q
	points := make([]bls12381.G1Affine, 0, 2*n+2*len(p.L)+2)
	scalars := make([]fr.Element, 0, 2*n+2*len(p.L)+2)

	var ab fr.Element
	ab.Mul(&p.A, &p.B)
	points = append(points, q)
	scalars = append(scalars, ab)

	for i := 0; i < n; i++ {
		var as fr.Element
		as.Mul(&p.A, &s[i])
		points = append(points, gs[i])
		scalars = append(scalars, as)

		var sInv fr.Element
		sInv.Inverse(&s[i])
		var bs fr.Element
		bs.Mul(&p.B, &sInv)
		points = append(points, hs[i])
		scalars = append(scalars, bs)
	}

	for k := range p.L {
		var uSq, uInvSq fr.Element
		uSq.Square(&u[k])
		uSq.Neg(&uSq)
		uInvSq.Square(&uInv[k])
		uInvSq.Neg(&uInvSq)
		points = append(points, p.L[k])
		scalars = append(scalars, uSq)
		points = append(points, p.R[k])
		scalars = append(scalars, uInvSq)
	}

	rhs, err := curve.G1MSM(points, scalars)
	if err != nil {
		return err
	}
	if !rhs.Equal(&target) {
		return ErrRangeCheckFailed
	}
	return nil
}
