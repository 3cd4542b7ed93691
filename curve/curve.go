// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package curve wraps the BLS12-381 pairing-friendly curve from
// gnark-crypto with the helpers the credential engine needs: scalar
// sampling against a caller-supplied random source, wide (64-byte)
// reduction into the scalar field, multi-scalar multiplication over G1
// and G2, pairing product checks, and the XOF-based hash-to-scalar
// routines shared by claims, signatures and the accumulator.
//
// All upper layers operate on gnark's affine representations; Jacobian
// coordinates stay an implementation detail of the helpers here.
package curve

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cloudflare/circl/xof"
	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/zeebo/blake3"
)

// Domain separation tags. These are part of the wire format and must not
// change between releases.
const (
	// PsSignatureDst is the hash-to-curve tag for Pointcheval-Sanders
	// sigma_1 derivation.
	PsSignatureDst = "PS_SIG_BLS12381G1_XMD:BLAKE2B_SSWU_RO_"
	// PsKeygenSalt seeds deterministic PS key generation.
	PsKeygenSalt = "PS-SIG-KEYGEN-SALT-"
	// BbsHashToScalarDst is the BBS hash-to-scalar tag.
	BbsHashToScalarDst = "H2S_"
	// BbsKeygenSalt seeds deterministic BBS key generation.
	BbsKeygenSalt = "BBS-SIG-KEYGEN-SALT-"
	// CommitmentGeneratorDst is the hash-to-curve suite tag used when
	// deriving Pedersen commitment generators.
	CommitmentGeneratorDst = "BLS12381G1_XMD:SHA-256_SSWU_RO_"
)

// Compressed encoding sizes in bytes.
const (
	G1Size     = bls12381.SizeOfG1AffineCompressed
	G2Size     = bls12381.SizeOfG2AffineCompressed
	ScalarSize = fr.Bytes
)

var (
	ErrInvalidPoint  = errors.New("invalid curve point encoding")
	ErrInvalidScalar = errors.New("invalid scalar encoding")
	ErrShortRandom   = errors.New("random source returned short read")
)

var _, _, g1Gen, g2Gen = bls12381.Generators()

// G1Generator returns the fixed G1 group generator.
func G1Generator() bls12381.G1Affine { return g1Gen }

// G2Generator returns the fixed G2 group generator.
func G2Generator() bls12381.G2Affine { return g2Gen }

// RandomScalar samples a uniformly distributed field element from rng by
// wide reduction of 64 bytes.
func RandomScalar(rng io.Reader) (fr.Element, error) {
	var wide [64]byte
	if _, err := io.ReadFull(rng, wide[:]); err != nil {
		return fr.Element{}, fmt.Errorf("%w: %v", ErrShortRandom, err)
	}
	return ScalarFromWide(wide), nil
}

// ScalarFromWide reduces 64 big-endian bytes into the scalar field.
func ScalarFromWide(wide [64]byte) fr.Element {
	var e fr.Element
	e.SetBytes(wide[:])
	return e
}

// GenerateScalar derives a field element from salt, optional data and a
// random source using the BLAKE3 XOF. When data is nil, 48 bytes of
// entropy are drawn from rng so repeated calls yield independent values.
func GenerateScalar(salt []byte, data []byte, rng io.Reader) (fr.Element, error) {
	h := blake3.New()
	_, _ = h.Write(salt)
	if data != nil {
		_, _ = h.Write(data)
	} else {
		var seed [48]byte
		if _, err := io.ReadFull(rng, seed[:]); err != nil {
			return fr.Element{}, fmt.Errorf("%w: %v", ErrShortRandom, err)
		}
		_, _ = h.Write(seed[:])
	}
	var wide [64]byte
	d := h.Digest()
	_, _ = d.Read(wide[:])
	return ScalarFromWide(wide), nil
}

// HashToScalar maps arbitrary bytes to a field element with SHAKE-256,
// reading 64 bytes and reducing wide.
func HashToScalar(data ...[]byte) fr.Element {
	x := xof.SHAKE256.New()
	for _, d := range data {
		_, _ = x.Write(d)
	}
	var wide [64]byte
	_, _ = x.Read(wide[:])
	return ScalarFromWide(wide)
}

// XofDigest fills out with a SHAKE-256 digest of the input.
func XofDigest(input []byte, out []byte) {
	x := xof.SHAKE256.New()
	_, _ = x.Write(input)
	_, _ = x.Read(out)
}

// topBit zero-centers signed 64-bit integers: XOR with 2^63 maps the
// signed range onto the unsigned range preserving order.
const topBit = uint64(1) << 63

// ZeroCenter maps a signed value into the order-preserving unsigned range.
func ZeroCenter(v int64) uint64 { return uint64(v) ^ topBit }

// NumberScalar encodes a signed number as a zero-centered field element.
func NumberScalar(v int64) fr.Element {
	var e fr.Element
	e.SetUint64(ZeroCenter(v))
	return e
}

// RandomHex returns length random bytes from rng as a lower-case hex
// string, the credential-id format.
func RandomHex(length int, rng io.Reader) (string, error) {
	buf := make([]byte, length)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrShortRandom, err)
	}
	return hex.EncodeToString(buf), nil
}

// G1Mul returns s*p.
func G1Mul(p *bls12381.G1Affine, s *fr.Element) bls12381.G1Affine {
	var bi big.Int
	s.BigInt(&bi)
	var r bls12381.G1Affine
	r.ScalarMultiplication(p, &bi)
	return r
}

// G1Add returns a+b.
func G1Add(a, b *bls12381.G1Affine) bls12381.G1Affine {
	var r bls12381.G1Affine
	r.Add(a, b)
	return r
}

// G1Sub returns a-b.
func G1Sub(a, b *bls12381.G1Affine) bls12381.G1Affine {
	var nb bls12381.G1Affine
	nb.Neg(b)
	return G1Add(a, &nb)
}

// G1Neg returns -p.
func G1Neg(p *bls12381.G1Affine) bls12381.G1Affine {
	var r bls12381.G1Affine
	r.Neg(p)
	return r
}

// G1MulBase returns s*G1.
func G1MulBase(s *fr.Element) bls12381.G1Affine {
	return G1Mul(&g1Gen, s)
}

// G1MSM computes the multi-scalar multiplication sum(scalars[i]*points[i]).
func G1MSM(points []bls12381.G1Affine, scalars []fr.Element) (bls12381.G1Affine, error) {
	var r bls12381.G1Affine
	if len(points) == 0 {
		return r, nil
	}
	if len(points) != len(scalars) {
		return r, errors.New("curve: mismatched multi-exp input lengths")
	}
	if _, err := r.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return r, err
	}
	return r, nil
}

// G2Mul returns s*p.
func G2Mul(p *bls12381.G2Affine, s *fr.Element) bls12381.G2Affine {
	var bi big.Int
	s.BigInt(&bi)
	var r bls12381.G2Affine
	r.ScalarMultiplication(p, &bi)
	return r
}

// G2Add returns a+b.
func G2Add(a, b *bls12381.G2Affine) bls12381.G2Affine {
	var r bls12381.G2Affine
	r.Add(a, b)
	return r
}

// G2Neg returns -p.
func G2Neg(p *bls12381.G2Affine) bls12381.G2Affine {
	var r bls12381.G2Affine
	r.Neg(p)
	return r
}

// G2MulBase returns s*G2.
func G2MulBase(s *fr.Element) bls12381.G2Affine {
	return G2Mul(&g2Gen, s)
}

// G2MSM computes the multi-scalar multiplication over G2.
func G2MSM(points []bls12381.G2Affine, scalars []fr.Element) (bls12381.G2Affine, error) {
	var r bls12381.G2Affine
	if len(points) == 0 {
		return r, nil
	}
	if len(points) != len(scalars) {
		return r, errors.New("curve: mismatched multi-exp input lengths")
	}
	if _, err := r.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return r, err
	}
	return r, nil
}

// Pair computes the pairing e(p, q).
func Pair(p *bls12381.G1Affine, q *bls12381.G2Affine) (bls12381.GT, error) {
	return bls12381.Pair([]bls12381.G1Affine{*p}, []bls12381.G2Affine{*q})
}

// PairingCheck reports whether the product of pairings over the given
// pairs equals the identity in GT.
func PairingCheck(ps []bls12381.G1Affine, qs []bls12381.G2Affine) (bool, error) {
	return bls12381.PairingCheck(ps, qs)
}

// GTMul returns a*b in the target group.
func GTMul(a, b *bls12381.GT) bls12381.GT {
	var r bls12381.GT
	r.Mul(a, b)
	return r
}

// GTBytes returns the canonical serialization of a target group element.
func GTBytes(gt *bls12381.GT) []byte { return gt.Marshal() }

// HashToG1 hashes msg to a G1 point with the given domain separation tag.
func HashToG1(msg, dst []byte) (bls12381.G1Affine, error) {
	return bls12381.HashToG1(msg, dst)
}

// HashToScalars derives count scalars from msg via expand_message_xmd
// with SHA-256, the BBS hash-to-scalar primitive.
func HashToScalars(msg, dst []byte, count int) ([]fr.Element, error) {
	return fr.Hash(msg, dst, count)
}

// ScalarBytes returns the canonical big-endian wire encoding of s.
func ScalarBytes(s *fr.Element) [ScalarSize]byte { return s.Bytes() }

// ScalarFromBytes decodes a canonical 32-byte big-endian scalar,
// rejecting out-of-range values.
func ScalarFromBytes(data []byte) (fr.Element, error) {
	var e fr.Element
	if len(data) != ScalarSize {
		return e, ErrInvalidScalar
	}
	var bi big.Int
	bi.SetBytes(data)
	if bi.Cmp(fr.Modulus()) >= 0 {
		return e, ErrInvalidScalar
	}
	e.SetBigInt(&bi)
	return e, nil
}

// G1FromBytes decodes a compressed G1 point with subgroup checking.
func G1FromBytes(data []byte) (bls12381.G1Affine, error) {
	var p bls12381.G1Affine
	if len(data) != G1Size {
		return p, ErrInvalidPoint
	}
	if _, err := p.SetBytes(data); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return p, nil
}

// G2FromBytes decodes a compressed G2 point with subgroup checking.
func G2FromBytes(data []byte) (bls12381.G2Affine, error) {
	var p bls12381.G2Affine
	if len(data) != G2Size {
		return p, ErrInvalidPoint
	}
	if _, err := p.SetBytes(data); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return p, nil
}

// Zeroize clears a scalar in place. Callers invoke this on secret
// material when it goes out of scope.
func Zeroize(s *fr.Element) { s.SetZero() }
