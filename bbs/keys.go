// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bbs implements BBS signatures over BLS12-381 per
// eprint 2023/275, with blind signing and a selective-disclosure proof
// of knowledge. Message generators are derived from the public key by
// hash-to-curve so the verification key stays a single G2 point.
package bbs

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/cloudflare/circl/xof"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
)

// SchemeName identifies the BBS scheme in serialized material.
const SchemeName = "BBS"

// messageGeneratorSalt seeds the per-message generator derivation.
const messageGeneratorSalt = "BBS-MESSAGE-GENERATOR-SEED-"

var (
	ErrInvalidKey       = errors.New("bbs: invalid key")
	ErrTooManyMessages  = errors.New("bbs: message count exceeds key capacity")
	ErrInvalidSignature = errors.New("bbs: invalid signature")
)

// SecretKey is the single BBS signing scalar plus the key capacity.
type SecretKey struct {
	X    fr.Element
	Msgs int
}

// PublicKey is the expanded verification key: W = x*G2 plus the derived
// message generators.
type PublicKey struct {
	W bls12381.G2Affine
	Y []bls12381.G1Affine
}

// NewSecretKey generates a key capable of signing count messages.
func NewSecretKey(count int, rng io.Reader) (*SecretKey, error) {
	if count == 0 || count > sigcore.MaxMessages {
		return nil, sigcore.ErrInvalidKeyGeneration
	}
	x, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	return &SecretKey{X: x, Msgs: count}, nil
}

// HashSecretKey derives a key deterministically from seed data using the
// SHAKE-128 keygen salt.
func HashSecretKey(count int, seed []byte) (*SecretKey, error) {
	if count == 0 || count > sigcore.MaxMessages {
		return nil, sigcore.ErrInvalidKeyGeneration
	}
	h := xof.SHAKE128.New()
	_, _ = h.Write([]byte(curve.BbsKeygenSalt))
	_, _ = h.Write(seed)
	var wide [64]byte
	_, _ = h.Read(wide[:])
	return &SecretKey{X: curve.ScalarFromWide(wide), Msgs: count}, nil
}

// deriveMessageGenerators expands count G1 generators from the W key.
func deriveMessageGenerators(w *bls12381.G2Affine, count int) ([]bls12381.G1Affine, error) {
	wb := w.Bytes()
	gens := make([]bls12381.G1Affine, count)
	for i := 0; i < count; i++ {
		var seed []byte
		seed = append(seed, wb[:]...)
		var buf [8]byte
		binary.BigEndian.PutUint32(buf[:4], uint32(count))
		binary.BigEndian.PutUint32(buf[4:], uint32(i))
		seed = append(seed, buf[:]...)
		p, err := curve.HashToG1(seed, []byte(messageGeneratorSalt))
		if err != nil {
			return nil, err
		}
		gens[i] = p
	}
	return gens, nil
}

// PublicKey derives the expanded verification key.
func (sk *SecretKey) PublicKey() sigcore.PublicKey {
	w := curve.G2MulBase(&sk.X)
	gens, err := deriveMessageGenerators(&w, sk.Msgs)
	if err != nil {
		// Hash-to-curve with a fixed tag cannot fail on valid input.
		panic(err)
	}
	return &PublicKey{W: w, Y: gens}
}

// Scheme returns the scheme name.
func (sk *SecretKey) Scheme() string { return SchemeName }

// MaxMessages returns the number of messages this key can sign.
func (sk *SecretKey) MaxMessages() int { return sk.Msgs }

// Zeroize wipes the secret scalar.
func (sk *SecretKey) Zeroize() { curve.Zeroize(&sk.X) }

// Validate reports whether the secret is usable.
func (sk *SecretKey) Validate() error {
	if sk.X.IsZero() || sk.Msgs == 0 {
		return ErrInvalidKey
	}
	return nil
}

// MarshalBinary encodes x || count.
func (sk *SecretKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, curve.ScalarSize+4)
	x := sk.X.Bytes()
	out = append(out, x[:]...)
	var cnt [4]byte
	binary.BigEndian.PutUint32(cnt[:], uint32(sk.Msgs))
	out = append(out, cnt[:]...)
	return out, nil
}

// UnmarshalSecretKey decodes a key produced by MarshalBinary.
func UnmarshalSecretKey(data []byte) (*SecretKey, error) {
	if len(data) != curve.ScalarSize+4 {
		return nil, ErrInvalidKey
	}
	x, err := curve.ScalarFromBytes(data[:curve.ScalarSize])
	if err != nil {
		return nil, err
	}
	count := int(binary.BigEndian.Uint32(data[curve.ScalarSize:]))
	if count == 0 || count > sigcore.MaxMessages {
		return nil, ErrInvalidKey
	}
	return &SecretKey{X: x, Msgs: count}, nil
}

// Scheme returns the scheme name.
func (pk *PublicKey) Scheme() string { return SchemeName }

// MaxMessages returns the number of messages this key verifies.
func (pk *PublicKey) MaxMessages() int { return len(pk.Y) }

// Validate rejects keys with identity components.
func (pk *PublicKey) Validate() error {
	if pk.W.IsInfinity() || len(pk.Y) == 0 {
		return ErrInvalidKey
	}
	for i := range pk.Y {
		if pk.Y[i].IsInfinity() {
			return ErrInvalidKey
		}
	}
	return nil
}

// MarshalBinary encodes w || count; generators are re-derived on load.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, curve.G2Size+4)
	w := pk.W.Bytes()
	out = append(out, w[:]...)
	var cnt [4]byte
	binary.BigEndian.PutUint32(cnt[:], uint32(len(pk.Y)))
	out = append(out, cnt[:]...)
	return out, nil
}

// UnmarshalPublicKey decodes a key produced by MarshalBinary.
func UnmarshalPublicKey(data []byte) (*PublicKey, error) {
	if len(data) != curve.G2Size+4 {
		return nil, ErrInvalidKey
	}
	w, err := curve.G2FromBytes(data[:curve.G2Size])
	if err != nil {
		return nil, err
	}
	count := int(binary.BigEndian.Uint32(data[curve.G2Size:]))
	if count == 0 || count > sigcore.MaxMessages {
		return nil, ErrInvalidKey
	}
	gens, err := deriveMessageGenerators(&w, count)
	if err != nil {
		return nil, err
	}
	return &PublicKey{W: w, Y: gens}, nil
}
