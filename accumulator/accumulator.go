// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package accumulator implements the dynamic bilinear accumulator of
// eprint 2020/777 over BLS12-381: batched add/remove with witness-update
// coefficients, membership and non-membership witnesses, and the
// zero-knowledge (non-)membership proofs of section 8.
//
// The accumulator value is V = prod(alpha + y_i) * P over the current
// element set, with public key Q = alpha*G2.
package accumulator

import (
	"errors"
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
)

// salt for deriving random scalars inside proofs.
var proofSalt = []byte("VB20-ACC-SALT-")

var (
	ErrInvalidElement = errors.New("accumulator: element not usable")
	ErrMemberElement  = errors.New("accumulator: element is a member")
	ErrInvalidWitness = errors.New("accumulator: witness verification failed")
	ErrInvalidKey     = errors.New("accumulator: invalid key")
)

// Element is a set member encoded in the scalar field.
type Element = fr.Element

// HashToElement maps arbitrary bytes into the element space with the
// SHAKE-256 XOF, the same encoding revocation claims use.
func HashToElement(data []byte) Element {
	return curve.HashToScalar(data)
}

// SecretKey is the accumulator trapdoor alpha.
type SecretKey struct {
	Alpha fr.Element
}

// NewSecretKey samples a trapdoor from rng.
func NewSecretKey(rng io.Reader) (*SecretKey, error) {
	alpha, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	if alpha.IsZero() {
		return nil, ErrInvalidKey
	}
	return &SecretKey{Alpha: alpha}, nil
}

// NewSecretKeyFromSeed derives a trapdoor deterministically.
func NewSecretKeyFromSeed(seed []byte) *SecretKey {
	return &SecretKey{Alpha: curve.HashToScalar(proofSalt, seed)}
}

// PublicKey returns Q = alpha*G2.
func (sk *SecretKey) PublicKey() PublicKey {
	return PublicKey{Q: curve.G2MulBase(&sk.Alpha)}
}

// Zeroize wipes the trapdoor.
func (sk *SecretKey) Zeroize() { curve.Zeroize(&sk.Alpha) }

// BatchAdditions returns prod(alpha + y) over the additions.
func (sk *SecretKey) BatchAdditions(additions []Element) fr.Element {
	var out fr.Element
	out.SetOne()
	for i := range additions {
		var t fr.Element
		t.Add(&sk.Alpha, &additions[i])
		out.Mul(&out, &t)
	}
	return out
}

// BatchDeletions returns 1/prod(alpha + y) over the deletions.
func (sk *SecretKey) BatchDeletions(deletions []Element) fr.Element {
	out := sk.BatchAdditions(deletions)
	out.Inverse(&out)
	return out
}

// PublicKey is the accumulator verification key.
type PublicKey struct {
	Q bls12381.G2Affine
}

// MarshalBinary encodes the compressed Q point.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	b := pk.Q.Bytes()
	return b[:], nil
}

// UnmarshalBinary decodes a compressed Q point.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	q, err := curve.G2FromBytes(data)
	if err != nil {
		return err
	}
	pk.Q = q
	return nil
}

// Accumulator is the current set commitment.
type Accumulator struct {
	V bls12381.G1Affine
}

// NewAccumulator returns the empty accumulator V = P.
func NewAccumulator() Accumulator {
	return Accumulator{V: curve.G1Generator()}
}

// WithElements builds an accumulator over the given elements.
func WithElements(sk *SecretKey, elements []Element) Accumulator {
	prod := sk.BatchAdditions(elements)
	return Accumulator{V: curve.G1MulBase(&prod)}
}

// AddAssign folds one element in: V' = (alpha + y)*V.
func (a *Accumulator) AddAssign(sk *SecretKey, y Element) {
	var t fr.Element
	t.Add(&sk.Alpha, &y)
	a.V = curve.G1Mul(&a.V, &t)
}

// RemoveAssign removes one element: V' = V / (alpha + y).
func (a *Accumulator) RemoveAssign(sk *SecretKey, y Element) {
	var t fr.Element
	t.Add(&sk.Alpha, &y)
	t.Inverse(&t)
	a.V = curve.G1Mul(&a.V, &t)
}

// Coefficient is one witness-update term published alongside a batch
// update; holders consume them in MembershipWitness.BatchUpdate without
// access to the trapdoor.
type Coefficient struct {
	C bls12381.G1Affine
}

// Update applies a batch of additions and deletions, returning the new
// accumulator value together with the update coefficients.
func (a Accumulator) Update(sk *SecretKey, additions, deletions []Element) (Accumulator, []Coefficient) {
	adds := sk.BatchAdditions(additions)
	dels := sk.BatchDeletions(deletions)

	polyCoeffs := sk.updatePolynomial(additions, deletions)
	coefficients := make([]Coefficient, len(polyCoeffs))
	for i := range polyCoeffs {
		coefficients[i] = Coefficient{C: curve.G1Mul(&a.V, &polyCoeffs[i])}
	}

	var factor fr.Element
	factor.Mul(&adds, &dels)
	return Accumulator{V: curve.G1Mul(&a.V, &factor)}, coefficients
}

// UpdateAssign is Update with in-place assignment.
func (a *Accumulator) UpdateAssign(sk *SecretKey, additions, deletions []Element) []Coefficient {
	next, coefficients := a.Update(sk, additions, deletions)
	a.V = next.V
	return coefficients
}

// AddElements folds a batch of elements in with coefficient output.
func (a *Accumulator) AddElements(sk *SecretKey, additions []Element) []Coefficient {
	return a.UpdateAssign(sk, additions, nil)
}

// RemoveElements removes a batch of elements with coefficient output.
func (a *Accumulator) RemoveElements(sk *SecretKey, deletions []Element) []Coefficient {
	return a.UpdateAssign(sk, nil, deletions)
}

// MarshalBinary encodes the compressed accumulator value.
func (a *Accumulator) MarshalBinary() ([]byte, error) {
	b := a.V.Bytes()
	return b[:], nil
}

// UnmarshalBinary decodes a compressed accumulator value.
func (a *Accumulator) UnmarshalBinary(data []byte) error {
	v, err := curve.G1FromBytes(data)
	if err != nil {
		return err
	}
	a.V = v
	return nil
}

// polynomial is a dense polynomial in ascending coefficient order used
// for the update-coefficient construction.
type polynomial []fr.Element

func (p polynomial) addAssign(q polynomial) polynomial {
	for len(p) < len(q) {
		p = append(p, fr.Element{})
	}
	for i := range q {
		p[i].Add(&p[i], &q[i])
	}
	return p
}

func (p polynomial) subAssign(q polynomial) polynomial {
	for len(p) < len(q) {
		p = append(p, fr.Element{})
	}
	for i := range q {
		p[i].Sub(&p[i], &q[i])
	}
	return p
}

// mulLinear multiplies by (c - x).
func (p polynomial) mulLinear(c fr.Element) polynomial {
	out := make(polynomial, len(p)+1)
	for i := range p {
		var t fr.Element
		t.Mul(&p[i], &c)
		out[i].Add(&out[i], &t)
		out[i+1].Sub(&out[i+1], &p[i])
	}
	return out
}

func (p polynomial) scale(c fr.Element) polynomial {
	for i := range p {
		p[i].Mul(&p[i], &c)
	}
	return p
}

// updatePolynomial builds the coefficient polynomial
// vA(x) - vD(x) from section 4.2 of eprint 2020/777.
func (sk *SecretKey) updatePolynomial(additions, deletions []Element) polynomial {
	one := fr.One()

	// vD(x) = sum_{s=1..m} prod_{i<=s}(yD_i + alpha)^-1 prod_{j<s}(yD_j - x)
	vD := polynomial{}
	for s := 0; s < len(deletions); s++ {
		c := sk.BatchDeletions(deletions[:s+1])
		poly := polynomial{one}
		for j := 0; j < s; j++ {
			poly = poly.mulLinear(deletions[j])
		}
		vD = vD.addAssign(poly.scale(c))
	}
	// vD(x) *= prod(yA_i + alpha)
	vD = vD.scale(sk.BatchAdditions(additions))

	// vA(x) = sum_{s=1..n} prod_{i<s}(yA_i + alpha) prod_{j>s}(yA_j - x)
	vA := polynomial{}
	for s := 0; s < len(additions); s++ {
		c := one
		if s > 0 {
			c = sk.BatchAdditions(additions[:s])
		}
		poly := polynomial{one}
		for j := s + 1; j < len(additions); j++ {
			poly = poly.mulLinear(additions[j])
		}
		vA = vA.addAssign(poly.scale(c))
	}

	return vA.subAssign(vD)
}

// evaluationAt returns prod(values_i - y), the shared factor of witness
// batch updates.
func evaluationAt(values []Element, y Element) fr.Element {
	var out fr.Element
	out.SetOne()
	for i := range values {
		var t fr.Element
		t.Sub(&values[i], &y)
		out.Mul(&out, &t)
	}
	return out
}
