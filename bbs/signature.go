// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bbs

import (
	"encoding/binary"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
)

// SignatureSize is the wire size of a BBS signature.
const SignatureSize = curve.G1Size + curve.ScalarSize

// Signature is a BBS signature (A, e) with
// A = (G1 + sum Y_i*m_i) * 1/(x+e).
type Signature struct {
	A bls12381.G1Affine
	E fr.Element
}

// domainCalculation binds the signature to the expanded public key.
func domainCalculation(pk *PublicKey) (fr.Element, error) {
	buf := make([]byte, 0, curve.G2Size+8+curve.G1Size*(len(pk.Y)+1)+8)
	w := pk.W.Bytes()
	buf = append(buf, w[:]...)
	var cnt [8]byte
	binary.BigEndian.PutUint64(cnt[:], uint64(len(pk.Y)+1))
	buf = append(buf, cnt[:]...)
	g1 := curve.G1Generator()
	gb := g1.Bytes()
	buf = append(buf, gb[:]...)
	for i := range pk.Y {
		yb := pk.Y[i].Bytes()
		buf = append(buf, yb[:]...)
	}
	buf = append(buf, make([]byte, 8)...)
	out, err := curve.HashToScalars(buf, []byte(curve.BbsHashToScalarDst), 1)
	if err != nil {
		return fr.Element{}, err
	}
	return out[0], nil
}

// computeE derives the signature exponent from the secret key, the
// messages and the domain.
func computeE(sk *SecretKey, msgs []fr.Element, domain fr.Element) (fr.Element, error) {
	buf := make([]byte, 0, curve.ScalarSize*(len(msgs)+2)+4)
	skb, _ := sk.MarshalBinary()
	buf = append(buf, skb...)
	for i := range msgs {
		b := msgs[i].Bytes()
		buf = append(buf, b[:]...)
	}
	d := domain.Bytes()
	buf = append(buf, d[:]...)
	out, err := curve.HashToScalars(buf, []byte(curve.BbsHashToScalarDst), 1)
	if err != nil {
		return fr.Element{}, err
	}
	return out[0], nil
}

// Sign creates a signature where all messages are known to the signer.
func Sign(sk *SecretKey, msgs []fr.Element) (*Signature, error) {
	if err := sk.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", sigcore.ErrInvalidSigningOperation, err)
	}
	if len(msgs) > sk.Msgs {
		return nil, ErrTooManyMessages
	}

	pk := sk.PublicKey().(*PublicKey)
	domain, err := domainCalculation(pk)
	if err != nil {
		return nil, err
	}
	e, err := computeE(sk, msgs, domain)
	if err != nil {
		return nil, err
	}

	// 1/(x+e); fails only when x+e = 0.
	var ske fr.Element
	ske.Add(&sk.X, &e)
	if ske.IsZero() {
		return nil, fmt.Errorf("%w: x+e is zero", sigcore.ErrInvalidSigningOperation)
	}
	ske.Inverse(&ske)

	msm, err := curve.G1MSM(pk.Y[:len(msgs)], msgs)
	if err != nil {
		return nil, err
	}
	g1 := curve.G1Generator()
	b := curve.G1Add(&g1, &msm)
	a := curve.G1Mul(&b, &ske)
	return &Signature{A: a, E: e}, nil
}

// Verify checks the signature with a single multi-Miller loop:
// e(A, W + e*G2) == e(G1 + sum Y_i*m_i, G2).
func (s *Signature) Verify(pk *PublicKey, msgs []fr.Element) error {
	if err := pk.Validate(); err != nil {
		return err
	}
	if s.A.IsInfinity() || s.E.IsZero() {
		return ErrInvalidSignature
	}
	if len(msgs) == 0 || len(msgs) > len(pk.Y) {
		return ErrTooManyMessages
	}

	msm, err := curve.G1MSM(pk.Y[:len(msgs)], msgs)
	if err != nil {
		return err
	}
	g1 := curve.G1Generator()
	b := curve.G1Add(&g1, &msm)

	eG2 := curve.G2MulBase(&s.E)
	lhs := curve.G2Add(&pk.W, &eG2)
	g2 := curve.G2Generator()
	negG2 := curve.G2Neg(&g2)

	ok, err := curve.PairingCheck(
		[]bls12381.G1Affine{s.A, b},
		[]bls12381.G2Affine{lhs, negG2},
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}

// Scheme returns the scheme name.
func (s *Signature) Scheme() string { return SchemeName }

// MarshalBinary encodes A || e.
func (s *Signature) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, SignatureSize)
	a := s.A.Bytes()
	out = append(out, a[:]...)
	e := s.E.Bytes()
	out = append(out, e[:]...)
	return out, nil
}

// UnmarshalSignature decodes a signature produced by MarshalBinary.
func UnmarshalSignature(data []byte) (*Signature, error) {
	if len(data) != SignatureSize {
		return nil, ErrInvalidSignature
	}
	var s Signature
	var err error
	if s.A, err = curve.G1FromBytes(data[:curve.G1Size]); err != nil {
		return nil, err
	}
	if s.E, err = curve.ScalarFromBytes(data[curve.G1Size:]); err != nil {
		return nil, err
	}
	return &s, nil
}

// BlindSignature is a signature over known messages plus the holder's
// commitment. BBS hides the committed messages inside A directly, so
// unblinding is the identity.
type BlindSignature struct {
	inner Signature
}

// NewBlindSignature signs the known messages plus the commitment.
func NewBlindSignature(commitment bls12381.G1Affine, sk *SecretKey, known []sigcore.IndexedMessage) (*BlindSignature, error) {
	if err := sk.Validate(); err != nil {
		return nil, sigcore.ErrInvalidSigningOperation
	}
	if len(known) == 0 {
		return nil, fmt.Errorf("%w: no known messages", sigcore.ErrInvalidSigningOperation)
	}
	pk := sk.PublicKey().(*PublicKey)
	points := make([]bls12381.G1Affine, 0, len(known))
	scalars := make([]fr.Element, 0, len(known))
	for _, m := range known {
		if m.Index >= sk.Msgs {
			return nil, fmt.Errorf("%w: message index %d out of range", sigcore.ErrInvalidSigningOperation, m.Index)
		}
		points = append(points, pk.Y[m.Index])
		scalars = append(scalars, m.Message)
	}

	domain, err := domainCalculation(pk)
	if err != nil {
		return nil, err
	}
	e, err := computeE(sk, scalars, domain)
	if err != nil {
		return nil, err
	}

	var ske fr.Element
	ske.Add(&sk.X, &e)
	if ske.IsZero() {
		return nil, fmt.Errorf("%w: x+e is zero", sigcore.ErrInvalidSigningOperation)
	}
	ske.Inverse(&ske)

	msm, err := curve.G1MSM(points, scalars)
	if err != nil {
		return nil, err
	}
	g1 := curve.G1Generator()
	b := curve.G1Add(&g1, &commitment)
	b = curve.G1Add(&b, &msm)
	a := curve.G1Mul(&b, &ske)
	return &BlindSignature{inner: Signature{A: a, E: e}}, nil
}

// Scheme returns the scheme name.
func (b *BlindSignature) Scheme() string { return SchemeName }

// ToUnblinded returns the signature unchanged; BBS blind signatures need
// no unblinding step.
func (b *BlindSignature) ToUnblinded(_ fr.Element) sigcore.Signature {
	sig := b.inner
	return &sig
}
