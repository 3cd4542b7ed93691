// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bulletproofs

import (
	"fmt"
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/transcript"
)

// RangeProof shows that each committed value lies in [0, 2^n).
type RangeProof struct {
	A          bls12381.G1Affine
	S          bls12381.G1Affine
	T1         bls12381.G1Affine
	T2         bls12381.G1Affine
	TX         fr.Element
	TXBlinding fr.Element
	EBlinding  fr.Element
	IPP        InnerProductProof
}

func validBitSize(n int) bool {
	switch n {
	case 8, 16, 32, 64:
		return true
	}
	return false
}

// ProveMultiple creates one aggregated proof that every values[j] lies
// in [0, 2^n), committed as values[j]*B + blindings[j]*BBlinding. The
// value count must be a power of two within the generator capacity.
func ProveMultiple(bg *BulletproofGens, pc PedersenGens, t *transcript.Transcript, values []uint64, blindings []fr.Element, n int, rng io.Reader) (*RangeProof, []bls12381.G1Affine, error) {
	if !validBitSize(n) {
		return nil, nil, ErrInvalidBitSize
	}
	m := len(values)
	if m == 0 || !isPowerOfTwo(m) || len(blindings) != m {
		return nil, nil, ErrInvalidPartyCount
	}
	for _, v := range values {
		if n < 64 && v >= (uint64(1)<<uint(n)) {
			return nil, nil, ErrValueOutOfRange
		}
	}
	gs, hs, err := bg.share(n, m)
	if err != nil {
		return nil, nil, err
	}
	nm := n * m

	t.AppendUint64("rangeproof bits", uint64(n))
	t.AppendUint64("rangeproof parties", uint64(m))

	commitments := make([]bls12381.G1Affine, m)
	for j := range values {
		var v fr.Element
		v.SetUint64(values[j])
		commitments[j] = pc.Commit(v, blindings[j])
		t.AppendG1("V", &commitments[j])
	}

	// Bit decomposition: aL holds the bits, aR = aL - 1.
	aL := make([]fr.Element, nm)
	aR := make([]fr.Element, nm)
	one := fr.One()
	for j := 0; j < m; j++ {
		for i := 0; i < n; i++ {
			idx := j*n + i
			if (values[j]>>uint(i))&1 == 1 {
				aL[idx].SetOne()
			} else {
				aR[idx].Sub(&aR[idx], &one)
			}
		}
	}

	aBlinding, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	// A = a_blinding*BB + <aL,G> + <aR,H>; with bit values this is
	// +G_i for set bits and -H_i for clear bits.
	aPoints := make([]bls12381.G1Affine, 0, nm+1)
	aScalars := make([]fr.Element, 0, nm+1)
	aPoints = append(aPoints, pc.BBlinding)
	aScalars = append(aScalars, aBlinding)
	for i := 0; i < nm; i++ {
		if aL[i].IsOne() {
			aPoints = append(aPoints, gs[i])
			aScalars = append(aScalars, one)
		} else {
			var neg fr.Element
			neg.Neg(&one)
			aPoints = append(aPoints, hs[i])
			aScalars = append(aScalars, neg)
		}
	}
	bigA, err := curve.G1MSM(aPoints, aScalars)
	if err != nil {
		return nil, nil, err
	}

	sBlinding, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	sL := make([]fr.Element, nm)
	sR := make([]fr.Element, nm)
	for i := 0; i < nm; i++ {
		if sL[i], err = curve.RandomScalar(rng); err != nil {
			return nil, nil, err
		}
		if sR[i], err = curve.RandomScalar(rng); err != nil {
			return nil, nil, err
		}
	}
	sPoints := make([]bls12381.G1Affine, 0, 2*nm+1)
	sScalars := make([]fr.Element, 0, 2*nm+1)
	sPoints = append(sPoints, pc.BBlinding)
	sScalars = append(sScalars, sBlinding)
	sPoints = append(sPoints, gs...)
	sScalars = append(sScalars, sL...)
	sPoints = append(sPoints, hs...)
	sScalars = append(sScalars, sR...)
	bigS, err := curve.G1MSM(sPoints, sScalars)
	if err != nil {
		return nil, nil, err
	}

	t.AppendG1("A", &bigA)
	t.AppendG1("S", &bigS)
	y := t.ChallengeScalar("y")
	z := t.ChallengeScalar("z")
	if y.IsZero() || z.IsZero() {
		return nil, nil, fmt.Errorf("%w: zero challenge", ErrInvalidProof)
	}

	yPowers := powersOf(y, nm)
	var zz fr.Element
	zz.Square(&z)

	// l0 = aL - z*1, l1 = sL
	// r0 = y^nm o (aR + z*1) + z^2 * concat_j(z^j * 2^n)
	// r1 = y^nm o sR
	l0 := make([]fr.Element, nm)
	r0 := make([]fr.Element, nm)
	r1 := make([]fr.Element, nm)
	var zExp fr.Element
	zExp.Set(&zz)
	for j := 0; j < m; j++ {
		var two, pow2 fr.Element
		two.SetUint64(2)
		pow2.SetOne()
		for i := 0; i < n; i++ {
			idx := j*n + i
			l0[idx].Sub(&aL[idx], &z)

			var tmp fr.Element
			tmp.Add(&aR[idx], &z)
			r0[idx].Mul(&yPowers[idx], &tmp)
			tmp.Mul(&zExp, &pow2)
			r0[idx].Add(&r0[idx], &tmp)
			pow2.Mul(&pow2, &two)

			r1[idx].Mul(&yPowers[idx], &sR[idx])
		}
		zExp.Mul(&zExp, &z)
	}

	t0 := innerProduct(l0, r0)
	t2 := innerProduct(sL, r1)
	// t1 = <l0+l1, r0+r1> - t0 - t2
	l01 := make([]fr.Element, nm)
	r01 := make([]fr.Element, nm)
	for i := 0; i < nm; i++ {
		l01[i].Add(&l0[i], &sL[i])
		r01[i].Add(&r0[i], &r1[i])
	}
	t1 := innerProduct(l01, r01)
	t1.Sub(&t1, &t0)
	t1.Sub(&t1, &t2)

	tau1, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	tau2, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	bigT1 := pc.Commit(t1, tau1)
	bigT2 := pc.Commit(t2, tau2)
	t.AppendG1("T_1", &bigT1)
	t.AppendG1("T_2", &bigT2)
	x := t.ChallengeScalar("x")
	if x.IsZero() {
		return nil, nil, fmt.Errorf("%w: zero challenge", ErrInvalidProof)
	}

	// t_x = t0 + t1*x + t2*x^2
	var tx, tmp, xx fr.Element
	xx.Square(&x)
	tx.Set(&t0)
	tmp.Mul(&t1, &x)
	tx.Add(&tx, &tmp)
	tmp.Mul(&t2, &xx)
	tx.Add(&tx, &tmp)

	// tau_x = tau1*x + tau2*x^2 + z^2 * sum_j z^j * gamma_j
	var taux fr.Element
	taux.Mul(&tau1, &x)
	tmp.Mul(&tau2, &xx)
	taux.Add(&taux, &tmp)
	zExp.Set(&zz)
	for j := 0; j < m; j++ {
		tmp.Mul(&zExp, &blindings[j])
		taux.Add(&taux, &tmp)
		zExp.Mul(&zExp, &z)
	}

	// mu = a_blinding + x*s_blinding
	var mu fr.Element
	mu.Mul(&sBlinding, &x)
	mu.Add(&mu, &aBlinding)

	t.AppendScalar("t_x", &tx)
	t.AppendScalar("t_x_blinding", &taux)
	t.AppendScalar("e_blinding", &mu)
	w := t.ChallengeScalar("w")
	q := curve.G1Mul(&pc.B, &w)

	// l = l0 + x*sL, r = r0 + x*r1
	lVec := make([]fr.Element, nm)
	rVec := make([]fr.Element, nm)
	for i := 0; i < nm; i++ {
		tmp.Mul(&sL[i], &x)
		lVec[i].Add(&l0[i], &tmp)
		tmp.Mul(&r1[i], &x)
		rVec[i].Add(&r0[i], &tmp)
	}

	// Prime the H bases: H'_i = y^-i * H_i.
	var yInv fr.Element
	yInv.Inverse(&y)
	yInvPowers := powersOf(yInv, nm)
	hPrime := make([]bls12381.G1Affine, nm)
	for i := 0; i < nm; i++ {
		hPrime[i] = curve.G1Mul(&hs[i], &yInvPowers[i])
	}

	ipp, err := proveInnerProduct(t, q, gs, hPrime, lVec, rVec)
	if err != nil {
		return nil, nil, err
	}

	return &RangeProof{
		A:          bigA,
		S:          bigS,
		T1:         bigT1,
		T2:         bigT2,
		TX:         tx,
		TXBlinding: taux,
		EBlinding:  mu,
		IPP:        *ipp,
	}, commitments, nil
}

// ProveSingle is ProveMultiple for one value.
func ProveSingle(bg *BulletproofGens, pc PedersenGens, t *transcript.Transcript, value uint64, blinding fr.Element, n int, rng io.Reader) (*RangeProof, bls12381.G1Affine, error) {
	proof, commitments, err := ProveMultiple(bg, pc, t, []uint64{value}, []fr.Element{blinding}, n, rng)
	if err != nil {
		return nil, bls12381.G1Affine{}, err
	}
	return proof, commitments[0], nil
}

// VerifyMultiple checks an aggregated range proof against the value
// commitments.
func (p *RangeProof) VerifyMultiple(bg *BulletproofGens, pc PedersenGens, t *transcript.Transcript, commitments []bls12381.G1Affine, n int) error {
	if !validBitSize(n) {
		return ErrInvalidBitSize
	}
	m := len(commitments)
	if m == 0 || !isPowerOfTwo(m) {
		return ErrInvalidPartyCount
	}
	gs, hs, err := bg.share(n, m)
	if err != nil {
		return err
	}
	nm := n * m

	t.AppendUint64("rangeproof bits", uint64(n))
	t.AppendUint64("rangeproof parties", uint64(m))
	for j := range commitments {
		t.AppendG1("V", &commitments[j])
	}
	t.AppendG1("A", &p.A)
	t.AppendG1("S", &p.S)
	y := t.ChallengeScalar("y")
	z := t.ChallengeScalar("z")
	if y.IsZero() || z.IsZero() {
		return fmt.Errorf("%w: zero challenge", ErrInvalidProof)
	}
	t.AppendG1("T_1", &p.T1)
	t.AppendG1("T_2", &p.T2)
	x := t.ChallengeScalar("x")
	if x.IsZero() {
		return fmt.Errorf("%w: zero challenge", ErrInvalidProof)
	}
	t.AppendScalar("t_x", &p.TX)
	t.AppendScalar("t_x_blinding", &p.TXBlinding)
	t.AppendScalar("e_blinding", &p.EBlinding)
	w := t.ChallengeScalar("w")
	q := curve.G1Mul(&pc.B, &w)

	var zz, xx fr.Element
	zz.Square(&z)
	xx.Square(&x)

	// delta(y,z) = (z - z^2)*<1, y^nm> - sum_j z^(3+j) * <1, 2^n>
	var delta, tmp fr.Element
	sumY := sumOfPowers(y, nm)
	tmp.Sub(&z, &zz)
	delta.Mul(&tmp, &sumY)
	var two fr.Element
	two.SetUint64(2)
	sum2 := sumOfPowers(two, n)
	var zExp fr.Element
	zExp.Mul(&zz, &z)
	for j := 0; j < m; j++ {
		tmp.Mul(&zExp, &sum2)
		delta.Sub(&delta, &tmp)
		zExp.Mul(&zExp, &z)
	}

	// Check 1: t_x*B + tau_x*BB == delta*B + sum_j z^(2+j)*V_j + x*T1 + x^2*T2
	lhsPoints := []bls12381.G1Affine{pc.B, pc.BBlinding}
	lhsScalars := []fr.Element{p.TX, p.TXBlinding}
	lhs, err := curve.G1MSM(lhsPoints, lhsScalars)
	if err != nil {
		return err
	}
	rhsPoints := make([]bls12381.G1Affine, 0, m+3)
	rhsScalars := make([]fr.Element, 0, m+3)
	rhsPoints = append(rhsPoints, pc.B)
	rhsScalars = append(rhsScalars, delta)
	zExp.Set(&zz)
	for j := 0; j < m; j++ {
		rhsPoints = append(rhsPoints, commitments[j])
		rhsScalars = append(rhsScalars, zExp)
		zExp.Mul(&zExp, &z)
	}
	rhsPoints = append(rhsPoints, p.T1)
	rhsScalars = append(rhsScalars, x)
	rhsPoints = append(rhsPoints, p.T2)
	rhsScalars = append(rhsScalars, xx)
	rhs, err := curve.G1MSM(rhsPoints, rhsScalars)
	if err != nil {
		return err
	}
	if !lhs.Equal(&rhs) {
		return ErrRangeCheckFailed
	}

	// Check 2: rebuild the inner-product target
	// P = A + x*S - mu*BB - z*sum G_i
	//   + sum_i (z + z^(2+j)*2^(i mod n)*y^-i)*H_i + t_x*w*B
	var yInv fr.Element
	yInv.Inverse(&y)
	yInvPowers := powersOf(yInv, nm)

	tPoints := make([]bls12381.G1Affine, 0, 2*nm+4)
	tScalars := make([]fr.Element, 0, 2*nm+4)
	one := fr.One()
	tPoints = append(tPoints, p.A)
	tScalars = append(tScalars, one)
	tPoints = append(tPoints, p.S)
	tScalars = append(tScalars, x)
	var negMu fr.Element
	negMu.Neg(&p.EBlinding)
	tPoints = append(tPoints, pc.BBlinding)
	tScalars = append(tScalars, negMu)
	var wtx fr.Element
	wtx.Mul(&w, &p.TX)
	tPoints = append(tPoints, pc.B)
	tScalars = append(tScalars, wtx)

	var negZ fr.Element
	negZ.Neg(&z)
	for i := 0; i < nm; i++ {
		tPoints = append(tPoints, gs[i])
		tScalars = append(tScalars, negZ)
	}
	zExp.Set(&zz)
	for j := 0; j < m; j++ {
		var pow2 fr.Element
		pow2.SetOne()
		for i := 0; i < n; i++ {
			idx := j*n + i
			var coeff fr.Element
			coeff.Mul(&zExp, &pow2)
			coeff.Mul(&coeff, &yInvPowers[idx])
			coeff.Add(&coeff, &z)
			tPoints = append(tPoints, hs[idx])
			tScalars = append(tScalars, coeff)
			pow2.Mul(&pow2, &two)
		}
		zExp.Mul(&zExp, &z)
	}
	target, err := curve.G1MSM(tPoints, tScalars)
	if err != nil {
		return err
	}

	hPrime := make([]bls12381.G1Affine, nm)
	for i := 0; i < nm; i++ {
		hPrime[i] = curve.G1Mul(&hs[i], &yInvPowers[i])
	}
	return p.IPP.verifyInnerProduct(t, q, target, gs, hPrime)
}

// VerifySingle checks a one-value proof.
func (p *RangeProof) VerifySingle(bg *BulletproofGens, pc PedersenGens, t *transcript.Transcript, commitment bls12381.G1Affine, n int) error {
	return p.VerifyMultiple(bg, pc, t, []bls12381.G1Affine{commitment}, n)
}
