// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ps implements Pointcheval-Sanders multi-message signatures
// over BLS12-381 with blind signing and a selective-disclosure proof of
// knowledge. See section 4.2 of eprint 2015/525 and eprint 2017/1197;
// the extra secret w signs a message digest m' for EUF-CMA security.
package ps

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cloudflare/circl/xof"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
)

// SchemeName identifies the PS scheme in serialized material.
const SchemeName = "PS"

var (
	ErrInvalidKey       = errors.New("ps: invalid key")
	ErrTooManyMessages  = errors.New("ps: message count exceeds key capacity")
	ErrInvalidSignature = errors.New("ps: invalid signature")
)

// SecretKey holds one field element per signable message plus the two
// extra secrets w (for m') and x.
type SecretKey struct {
	W fr.Element
	X fr.Element
	Y []fr.Element
}

// PublicKey mirrors SecretKey in G2, plus G1 copies of the y secrets
// used for blind signing commitments.
type PublicKey struct {
	W       bls12381.G2Affine
	X       bls12381.G2Affine
	Y       []bls12381.G2Affine
	YBlinds []bls12381.G1Affine
}

// NewSecretKey generates a key capable of signing count messages.
func NewSecretKey(count int, rng io.Reader) (*SecretKey, error) {
	if count == 0 || count > sigcore.MaxMessages {
		return nil, fmt.Errorf("%w: count %d out of range", sigcore.ErrInvalidKeyGeneration, count)
	}
	w, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	x, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	y := make([]fr.Element, count)
	for i := range y {
		if y[i], err = curve.RandomScalar(rng); err != nil {
			return nil, err
		}
	}
	return &SecretKey{W: w, X: x, Y: y}, nil
}

// HashSecretKey derives a key deterministically from seed data.
func HashSecretKey(count int, seed []byte) (*SecretKey, error) {
	x := xof.SHAKE256.New()
	_, _ = x.Write([]byte(curve.PsKeygenSalt))
	_, _ = x.Write(seed)
	return NewSecretKey(count, xofReader{x})
}

type xofReader struct{ x xof.XOF }

func (r xofReader) Read(p []byte) (int, error) { return r.x.Read(p) }

// PublicKey derives the verification key.
func (sk *SecretKey) PublicKey() sigcore.PublicKey {
	pk := &PublicKey{
		W:       curve.G2MulBase(&sk.W),
		X:       curve.G2MulBase(&sk.X),
		Y:       make([]bls12381.G2Affine, len(sk.Y)),
		YBlinds: make([]bls12381.G1Affine, len(sk.Y)),
	}
	for i := range sk.Y {
		pk.Y[i] = curve.G2MulBase(&sk.Y[i])
		pk.YBlinds[i] = curve.G1MulBase(&sk.Y[i])
	}
	return pk
}

// Scheme returns the scheme name.
func (sk *SecretKey) Scheme() string { return SchemeName }

// MaxMessages returns the number of messages this key can sign.
func (sk *SecretKey) MaxMessages() int { return len(sk.Y) }

// Zeroize wipes the secret scalars.
func (sk *SecretKey) Zeroize() {
	curve.Zeroize(&sk.W)
	curve.Zeroize(&sk.X)
	for i := range sk.Y {
		curve.Zeroize(&sk.Y[i])
	}
}

// Validate reports whether all secrets are non-zero.
func (sk *SecretKey) Validate() error {
	if sk.W.IsZero() || sk.X.IsZero() || len(sk.Y) == 0 {
		return ErrInvalidKey
	}
	for i := range sk.Y {
		if sk.Y[i].IsZero() {
			return ErrInvalidKey
		}
	}
	return nil
}

// MarshalBinary encodes the key as w || x || y_0 || ... in canonical
// scalar form.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, curve.ScalarSize*(2+len(sk.Y)))
	w := sk.W.Bytes()
	out = append(out, w[:]...)
	x := sk.X.Bytes()
	out = append(out, x[:]...)
	for i := range sk.Y {
		y := sk.Y[i].Bytes()
		out = append(out, y[:]...)
	}
	return out, nil
}

// UnmarshalSecretKey decodes a key produced by MarshalBinary.
func UnmarshalSecretKey(data []byte) (*SecretKey, error) {
	if len(data) < 3*curve.ScalarSize || len(data)%curve.ScalarSize != 0 {
		return nil, ErrInvalidKey
	}
	count := len(data)/curve.ScalarSize - 2
	sk := &SecretKey{Y: make([]fr.Element, count)}
	var err error
	if sk.W, err = curve.ScalarFromBytes(data[:curve.ScalarSize]); err != nil {
		return nil, err
	}
	if sk.X, err = curve.ScalarFromBytes(data[curve.ScalarSize : 2*curve.ScalarSize]); err != nil {
		return nil, err
	}
	for i := 0; i < count; i++ {
		off := (2 + i) * curve.ScalarSize
		if sk.Y[i], err = curve.ScalarFromBytes(data[off : off+curve.ScalarSize]); err != nil {
			return nil, err
		}
	}
	return sk, nil
}

// Scheme returns the scheme name.
func (pk *PublicKey) Scheme() string { return SchemeName }

// MaxMessages returns the number of messages this key verifies.
func (pk *PublicKey) MaxMessages() int { return len(pk.Y) }

// Validate rejects keys with identity components.
func (pk *PublicKey) Validate() error {
	if pk.W.IsInfinity() || pk.X.IsInfinity() || len(pk.Y) == 0 || len(pk.Y) != len(pk.YBlinds) {
		return ErrInvalidKey
	}
	for i := range pk.Y {
		if pk.Y[i].IsInfinity() || pk.YBlinds[i].IsInfinity() {
			return ErrInvalidKey
		}
	}
	return nil
}

// MarshalBinary encodes the key as w || x || count || y... || count || y_blinds...
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 2*curve.G2Size+8+len(pk.Y)*curve.G2Size+len(pk.YBlinds)*curve.G1Size)
	w := pk.W.Bytes()
	out = append(out, w[:]...)
	x := pk.X.Bytes()
	out = append(out, x[:]...)
	var cnt [4]byte
	binary.BigEndian.PutUint32(cnt[:], uint32(len(pk.Y)))
	out = append(out, cnt[:]...)
	for i := range pk.Y {
		y := pk.Y[i].Bytes()
		out = append(out, y[:]...)
	}
	binary.BigEndian.PutUint32(cnt[:], uint32(len(pk.YBlinds)))
	out = append(out, cnt[:]...)
	for i := range pk.YBlinds {
		y := pk.YBlinds[i].Bytes()
		out = append(out, y[:]...)
	}
	return out, nil
}

// UnmarshalPublicKey decodes a key produced by MarshalBinary.
func UnmarshalPublicKey(data []byte) (*PublicKey, error) {
	minSize := 2*curve.G2Size + 8 + curve.G2Size + curve.G1Size
	if len(data) < minSize {
		return nil, ErrInvalidKey
	}
	pk := &PublicKey{}
	var err error
	offset := 0
	if pk.W, err = curve.G2FromBytes(data[offset : offset+curve.G2Size]); err != nil {
		return nil, err
	}
	offset += curve.G2Size
	if pk.X, err = curve.G2FromBytes(data[offset : offset+curve.G2Size]); err != nil {
		return nil, err
	}
	offset += curve.G2Size
	yCnt := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if yCnt == 0 || yCnt > sigcore.MaxMessages || len(data) < offset+yCnt*curve.G2Size+4 {
		return nil, ErrInvalidKey
	}
	pk.Y = make([]bls12381.G2Affine, yCnt)
	for i := 0; i < yCnt; i++ {
		if pk.Y[i], err = curve.G2FromBytes(data[offset : offset+curve.G2Size]); err != nil {
			return nil, err
		}
		offset += curve.G2Size
	}
	bCnt := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if bCnt != yCnt || len(data) != offset+bCnt*curve.G1Size {
		return nil, ErrInvalidKey
	}
	pk.YBlinds = make([]bls12381.G1Affine, bCnt)
	for i := 0; i < bCnt; i++ {
		if pk.YBlinds[i], err = curve.G1FromBytes(data[offset : offset+curve.G1Size]); err != nil {
			return nil, err
		}
		offset += curve.G1Size
	}
	return pk, nil
}
