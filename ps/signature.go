// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ps

import (
	"fmt"

	"github.com/cloudflare/circl/xof"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
)

// SignatureSize is the wire size of a PS signature.
const SignatureSize = 2*curve.G1Size + curve.ScalarSize

// Signature is a PS signature (sigma_1, sigma_2, m') where m' is the
// message digest signed under the w secret.
type Signature struct {
	Sigma1 bls12381.G1Affine
	Sigma2 bls12381.G1Affine
	MTick  fr.Element
}

// computeMTick derives the m' digest from the message vector with
// SHAKE-256: two consecutive 64-byte wide reductions summed.
func computeMTick(msgs []fr.Element) fr.Element {
	x := xof.SHAKE256.New()
	for i := range msgs {
		b := msgs[i].Bytes()
		_, _ = x.Write(b[:])
	}
	var wide [64]byte
	_, _ = x.Read(wide[:])
	a := curve.ScalarFromWide(wide)
	_, _ = x.Read(wide[:])
	b := curve.ScalarFromWide(wide)
	var out fr.Element
	out.Add(&a, &b)
	return out
}

// Sign creates a signature where all messages are known to the signer.
func Sign(sk *SecretKey, msgs []fr.Element) (*Signature, error) {
	if err := sk.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", sigcore.ErrInvalidSigningOperation, err)
	}
	if len(msgs) > len(sk.Y) {
		return nil, fmt.Errorf("%w: %d messages for %d slots", ErrTooManyMessages, len(msgs), len(sk.Y))
	}

	mTick := computeMTick(msgs)
	mb := mTick.Bytes()
	sigma1, err := curve.HashToG1(mb[:], []byte(curve.PsSignatureDst))
	if err != nil {
		return nil, err
	}

	// exp = x + w*m' + sum(y_i * m_i)
	var exp, t fr.Element
	exp.Set(&sk.X)
	t.Mul(&sk.W, &mTick)
	exp.Add(&exp, &t)
	for i := range msgs {
		t.Mul(&sk.Y[i], &msgs[i])
		exp.Add(&exp, &t)
	}
	sigma2 := curve.G1Mul(&sigma1, &exp)
	return &Signature{Sigma1: sigma1, Sigma2: sigma2, MTick: mTick}, nil
}

// Verify checks the signature with a single multi-Miller loop:
// e(sigma_1, X + m'*W + sum m_i*Y_i) == e(sigma_2, G2).
func (s *Signature) Verify(pk *PublicKey, msgs []fr.Element) error {
	if err := pk.Validate(); err != nil {
		return err
	}
	if len(msgs) > len(pk.Y) {
		return ErrTooManyMessages
	}
	if s.Sigma1.IsInfinity() || s.Sigma2.IsInfinity() {
		return ErrInvalidSignature
	}

	points := make([]bls12381.G2Affine, 0, len(msgs)+2)
	scalars := make([]fr.Element, 0, len(msgs)+2)
	var one fr.Element
	one.SetOne()
	points = append(points, pk.X)
	scalars = append(scalars, one)
	points = append(points, pk.W)
	scalars = append(scalars, s.MTick)
	for i := range msgs {
		points = append(points, pk.Y[i])
		scalars = append(scalars, msgs[i])
	}
	ym, err := curve.G2MSM(points, scalars)
	if err != nil {
		return err
	}

	g2 := curve.G2Generator()
	negG2 := curve.G2Neg(&g2)
	ok, err := curve.PairingCheck(
		[]bls12381.G1Affine{s.Sigma1, s.Sigma2},
		[]bls12381.G2Affine{ym, negG2},
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

// MarshalBinary encodes sigma_1 || sigma_2 || m'.
func (s *Signature) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, SignatureSize)
	s1 := s.Sigma1.Bytes()
	out = append(out, s1[:]...)
	s2 := s.Sigma2.Bytes()
	out = append(out, s2[:]...)
	m := s.MTick.Bytes()
	out = append(out, m[:]...)
	return out, nil
}

// UnmarshalSignature decodes a signature produced by MarshalBinary.
func UnmarshalSignature(data []byte) (*Signature, error) {
	if len(data) != SignatureSize {
		return nil, ErrInvalidSignature
	}
	var s Signature
	var err error
	if s.Sigma1, err = curve.G1FromBytes(data[:curve.G1Size]); err != nil {
		return nil, err
	}
	if s.Sigma2, err = curve.G1FromBytes(data[curve.G1Size : 2*curve.G1Size]); err != nil {
		return nil, err
	}
	if s.MTick, err = curve.ScalarFromBytes(data[2*curve.G1Size:]); err != nil {
		return nil, err
	}
	return &s, nil
}

// BlindSignature is structurally a Signature over a partially committed
// message vector; the distinct type guards against misuse before
// unblinding.
type BlindSignature struct {
	inner Signature
}

// NewBlindSignature signs the known messages plus the holder's
// commitment to the hidden ones.
func NewBlindSignature(commitment bls12381.G1Affine, sk *SecretKey, known []sigcore.IndexedMessage) (*BlindSignature, error) {
	if err := sk.Validate(); err != nil {
		return nil, sigcore.ErrInvalidSigningOperation
	}
	if len(known) > len(sk.Y) {
		return nil, sigcore.ErrInvalidSigningOperation
	}

	msgs := make([]fr.Element, len(known))
	for i, m := range known {
		if m.Index >= len(sk.Y) {
			return nil, sigcore.ErrInvalidSigningOperation
		}
		msgs[i] = m.Message
	}
	mTick := computeMTick(msgs)

	// u is derived from the secret key and the known messages so blind
	// signing stays deterministic for a fixed request.
	x := xof.SHAKE256.New()
	skb, _ := sk.MarshalBinary()
	_, _ = x.Write(skb)
	for i := range msgs {
		b := msgs[i].Bytes()
		_, _ = x.Write(b[:])
	}
	var wide [64]byte
	_, _ = x.Read(wide[:])
	u := curve.ScalarFromWide(wide)

	sigma1 := curve.G1MulBase(&u)

	var exp, t fr.Element
	exp.Set(&sk.X)
	t.Mul(&mTick, &sk.W)
	exp.Add(&exp, &t)
	for _, m := range known {
		t.Mul(&sk.Y[m.Index], &m.Message)
		exp.Add(&exp, &t)
	}
	base := curve.G1MulBase(&exp)
	sigma2 := curve.G1Add(&base, &commitment)
	sigma2 = curve.G1Mul(&sigma2, &u)

	return &BlindSignature{inner: Signature{Sigma1: sigma1, Sigma2: sigma2, MTick: mTick}}, nil
}

// Scheme returns the scheme name.
func (b *BlindSignature) Scheme() string { return SchemeName }

// ToUnblinded removes the holder's blinding factor:
// sigma_2' = sigma_2 - blinder*sigma_1.
func (b *BlindSignature) ToUnblinded(blinder fr.Element) sigcore.Signature {
	adj := curve.G1Mul(&b.inner.Sigma1, &blinder)
	sigma2 := curve.G1Sub(&b.inner.Sigma2, &adj)
	return &Signature{Sigma1: b.inner.Sigma1, Sigma2: sigma2, MTick: b.inner.MTick}
}
