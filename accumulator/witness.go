// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accumulator

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
)

// MembershipWitness is C = 1/(alpha + y) * V, verified by
// e(C, y*G2 + Q) == e(V, G2).
type MembershipWitness struct {
	C bls12381.G1Affine
}

// NewMembershipWitness builds a witness with the trapdoor.
func NewMembershipWitness(y Element, acc Accumulator, sk *SecretKey) (MembershipWitness, error) {
	var t fr.Element
	t.Add(&sk.Alpha, &y)
	if t.IsZero() {
		return MembershipWitness{}, ErrInvalidElement
	}
	t.Inverse(&t)
	return MembershipWitness{C: curve.G1Mul(&acc.V, &t)}, nil
}

// Verify checks the witness against the accumulator by pairing.
func (w MembershipWitness) Verify(y Element, pk PublicKey, acc Accumulator) error {
	yG2 := curve.G2MulBase(&y)
	rhs := curve.G2Add(&yG2, &pk.Q)
	negV := curve.G1Neg(&acc.V)
	g2 := curve.G2Generator()

	ok, err := curve.PairingCheck(
		[]bls12381.G1Affine{w.C, negV},
		[]bls12381.G2Affine{rhs, g2},
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidWitness
	}
	return nil
}

// BatchUpdate advances the witness across one accumulator update using
// the published coefficients:
//
//	C' = dA(y)/dD(y) * C + 1/dD(y) * sum(y^i * Omega_i)
//
// When y itself appears in the deletions, dD(y) is zero and the witness
// is returned unchanged; callers detect revocation at proof
// verification, not here.
func (w MembershipWitness) BatchUpdate(y Element, additions, deletions []Element, coefficients []Coefficient) MembershipWitness {
	dA := evaluationAt(additions, y)
	dD := evaluationAt(deletions, y)
	if dD.IsZero() {
		return w
	}
	dD.Inverse(&dD)

	points := make([]bls12381.G1Affine, len(coefficients))
	scalars := make([]fr.Element, len(coefficients))
	var pow fr.Element
	pow.SetOne()
	for i := range coefficients {
		points[i] = coefficients[i].C
		scalars[i] = pow
		pow.Mul(&pow, &y)
	}
	v, err := curve.G1MSM(points, scalars)
	if err != nil {
		return w
	}

	var factor fr.Element
	factor.Mul(&dA, &dD)
	scaled := curve.G1Mul(&w.C, &factor)
	correction := curve.G1Mul(&v, &dD)
	return MembershipWitness{C: curve.G1Add(&scaled, &correction)}
}

// MarshalBinary encodes the compressed witness point.
func (w *MembershipWitness) MarshalBinary() ([]byte, error) {
	b := w.C.Bytes()
	return b[:], nil
}

// UnmarshalBinary decodes a compressed witness point.
func (w *MembershipWitness) UnmarshalBinary(data []byte) error {
	c, err := curve.G1FromBytes(data)
	if err != nil {
		return err
	}
	w.C = c
	return nil
}

// NonMembershipWitness is the pair (C, d) with d != 0 proving y is not
// in the accumulated set: C = (f_V(alpha) - d)/(alpha + y) * P where
// f_V is the accumulator polynomial and d = f_V(-y), the evaluation at
// the negated element. Verified by
// e(C, y*G2 + Q) * e(d*P, G2) == e(V, G2).
type NonMembershipWitness struct {
	C bls12381.G1Affine
	D fr.Element
}

// NewNonMembershipWitness builds a witness with the trapdoor over the
// current element set. Fails when y is a member.
func NewNonMembershipWitness(y Element, elements []Element, sk *SecretKey) (NonMembershipWitness, error) {
	// d = prod(e_i - y); zero exactly when y is in the set.
	d := evaluationAt(elements, y)
	if d.IsZero() {
		return NonMembershipWitness{}, ErrMemberElement
	}

	// f_V(alpha) = prod(alpha + e_i)
	fv := sk.BatchAdditions(elements)

	var num, den fr.Element
	num.Sub(&fv, &d)
	den.Add(&sk.Alpha, &y)
	if den.IsZero() {
		return NonMembershipWitness{}, ErrInvalidElement
	}
	den.Inverse(&den)
	num.Mul(&num, &den)

	return NonMembershipWitness{C: curve.G1MulBase(&num), D: d}, nil
}

// Verify checks the witness against the accumulator by pairing.
func (w NonMembershipWitness) Verify(y Element, pk PublicKey, acc Accumulator) error {
	if w.D.IsZero() {
		return ErrInvalidWitness
	}
	yG2 := curve.G2MulBase(&y)
	rhs := curve.G2Add(&yG2, &pk.Q)

	dP := curve.G1MulBase(&w.D)
	adj := curve.G1Sub(&dP, &acc.V)
	g2 := curve.G2Generator()

	ok, err := curve.PairingCheck(
		[]bls12381.G1Affine{w.C, adj},
		[]bls12381.G2Affine{rhs, g2},
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidWitness
	}
	return nil
}
