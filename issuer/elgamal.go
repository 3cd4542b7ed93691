// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package issuer

import (
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
)

// EncryptionPublicKey is the authority key claims are verifiably
// encrypted to: K = k*G1.
type EncryptionPublicKey struct {
	K bls12381.G1Affine
}

// DecryptionKey is the matching El-Gamal secret.
type DecryptionKey struct {
	K fr.Element
}

// NewEncryptionKeys samples an El-Gamal key pair over G1.
func NewEncryptionKeys(rng io.Reader) (EncryptionPublicKey, DecryptionKey, error) {
	k, err := curve.RandomScalar(rng)
	if err != nil {
		return EncryptionPublicKey{}, DecryptionKey{}, err
	}
	return EncryptionPublicKey{K: curve.G1MulBase(&k)}, DecryptionKey{K: k}, nil
}

// PublicKey derives the encryption key.
func (d *DecryptionKey) PublicKey() EncryptionPublicKey {
	return EncryptionPublicKey{K: curve.G1MulBase(&d.K)}
}

// Zeroize wipes the secret.
func (d *DecryptionKey) Zeroize() { curve.Zeroize(&d.K) }

// MarshalBinary encodes the compressed key point.
func (e *EncryptionPublicKey) MarshalBinary() ([]byte, error) {
	b := e.K.Bytes()
	return b[:], nil
}

// UnmarshalBinary decodes a compressed key point.
func (e *EncryptionPublicKey) UnmarshalBinary(data []byte) error {
	k, err := curve.G1FromBytes(data)
	if err != nil {
		return err
	}
	e.K = k
	return nil
}
