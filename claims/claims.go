// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package claims models the attribute values a credential signs. Every
// claim maps to a scalar-field element; the encodings guarantee that
// distinct claims inside one signature map to distinct scalars with
// overwhelming probability.
package claims

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
)

var ErrInvalidClaimData = errors.New("claims: invalid claim data")

// ClaimType tags the claim variants.
type ClaimType uint8

const (
	// TypeHashed claims are arbitrary bytes mapped to a scalar by XOF.
	TypeHashed ClaimType = iota + 1
	// TypeNumber claims are signed 64-bit values, zero-centered.
	TypeNumber
	// TypeScalar claims carry a pre-encoded field element.
	TypeScalar
	// TypeRevocation claims are ASCII registry identifiers.
	TypeRevocation
	// TypeEnumeration claims select one of a fixed value list.
	TypeEnumeration
)

// String returns the lower-case type name.
func (c ClaimType) String() string {
	switch c {
	case TypeHashed:
		return "hashed"
	case TypeNumber:
		return "number"
	case TypeScalar:
		return "scalar"
	case TypeRevocation:
		return "revocation"
	case TypeEnumeration:
		return "enumeration"
	}
	return "unknown"
}

// ClaimTypeFromString parses a type name.
func ClaimTypeFromString(s string) (ClaimType, error) {
	switch s {
	case "hashed":
		return TypeHashed, nil
	case "number":
		return TypeNumber, nil
	case "scalar":
		return TypeScalar, nil
	case "revocation":
		return TypeRevocation, nil
	case "enumeration":
		return TypeEnumeration, nil
	}
	return 0, fmt.Errorf("%w: unknown claim type %q", ErrInvalidClaimData, s)
}

// ClaimData is one attribute value.
type ClaimData interface {
	Type() ClaimType
	// ToScalar encodes the claim into the scalar field.
	ToScalar() fr.Element
	// ToText renders the claim into the reversible text form used by
	// verifiable decryption.
	ToText() string
}

// HashedClaim is arbitrary bytes hashed to a scalar.
type HashedClaim struct {
	Value         []byte
	PrintFriendly bool
}

// Type returns the claim type.
func (c HashedClaim) Type() ClaimType { return TypeHashed }

// ToScalar maps the value with a 64-byte SHAKE-256 output reduced wide.
func (c HashedClaim) ToScalar() fr.Element {
	return curve.HashToScalar(c.Value)
}

// ToText renders the value as base64url without padding.
func (c HashedClaim) ToText() string {
	return "h:" + base64.RawURLEncoding.EncodeToString(c.Value)
}

func (c HashedClaim) String() string {
	if c.PrintFriendly {
		return string(c.Value)
	}
	return hex.EncodeToString(c.Value)
}

// NumberClaim is a signed 64-bit value.
type NumberClaim struct {
	Value int64
}

// Type returns the claim type.
func (c NumberClaim) Type() ClaimType { return TypeNumber }

// ToScalar zero-centers the value so negatives order correctly.
func (c NumberClaim) ToScalar() fr.Element {
	return curve.NumberScalar(c.Value)
}

// ToText renders the decimal value.
func (c NumberClaim) ToText() string {
	return "n:" + strconv.FormatInt(c.Value, 10)
}

func (c NumberClaim) String() string { return strconv.FormatInt(c.Value, 10) }

// ParseDate converts an RFC-3339 date (YYYY-MM-DD) into a number claim
// holding YYYYMMDD. Impossible dates are rejected.
func ParseDate(date string) (NumberClaim, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return NumberClaim{}, fmt.Errorf("%w: invalid RFC-3339 date %q", ErrInvalidClaimData, date)
	}
	value := int64(d.Year())*10000 + int64(d.Month())*100 + int64(d.Day())
	return NumberClaim{Value: value}, nil
}

// ParseDateTime converts an RFC-3339 datetime into a number claim
// holding the unix timestamp.
func ParseDateTime(datetime string) (NumberClaim, error) {
	d, err := time.Parse(time.RFC3339, datetime)
	if err != nil {
		return NumberClaim{}, fmt.Errorf("%w: invalid RFC-3339 datetime %q", ErrInvalidClaimData, datetime)
	}
	return NumberClaim{Value: d.Unix()}, nil
}

// ScalarClaim carries a pre-encoded field element.
type ScalarClaim struct {
	Value fr.Element
}

// Type returns the claim type.
func (c ScalarClaim) Type() ClaimType { return TypeScalar }

// ToScalar is the identity.
func (c ScalarClaim) ToScalar() fr.Element { return c.Value }

// ToText renders the scalar as hex.
func (c ScalarClaim) ToText() string {
	b := c.Value.Bytes()
	return "s:" + hex.EncodeToString(b[:])
}

func (c ScalarClaim) String() string {
	b := c.Value.Bytes()
	return hex.EncodeToString(b[:])
}

// maxScalarStringLen bounds reversible string packing.
const maxScalarStringLen = 30

// EncodeScalarString packs a string of at most 30 bytes into a scalar:
// big-endian 32 bytes with the length at offset 1 and the data
// right-aligned. The packing is reversible via DecodeScalarString.
func EncodeScalarString(value string) (ScalarClaim, error) {
	return EncodeScalarBytes([]byte(value))
}

// EncodeScalarBytes packs at most 30 bytes into a scalar.
func EncodeScalarBytes(value []byte) (ScalarClaim, error) {
	if len(value) > maxScalarStringLen {
		return ScalarClaim{}, fmt.Errorf("%w: scalar claims store at most %d bytes", ErrInvalidClaimData, maxScalarStringLen)
	}
	var packed [32]byte
	if len(value) > 0 {
		packed[1] = byte(len(value))
		copy(packed[32-len(value):], value)
	}
	s, err := curve.ScalarFromBytes(packed[:])
	if err != nil {
		return ScalarClaim{}, fmt.Errorf("%w: packed string is not a valid scalar", ErrInvalidClaimData)
	}
	return ScalarClaim{Value: s}, nil
}

// DecodeScalarString unpacks a scalar packed by EncodeScalarString.
func (c ScalarClaim) DecodeScalarString() (string, error) {
	data, err := c.DecodeScalarBytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeScalarBytes unpacks a scalar packed by EncodeScalarBytes.
func (c ScalarClaim) DecodeScalarBytes() ([]byte, error) {
	packed := c.Value.Bytes()
	length := int(packed[1])
	if length > maxScalarStringLen {
		return nil, fmt.Errorf("%w: scalar does not carry packed bytes", ErrInvalidClaimData)
	}
	return packed[32-length:], nil
}

// RevocationClaim is an ASCII registry identifier.
type RevocationClaim struct {
	Value string
}

// Type returns the claim type.
func (c RevocationClaim) Type() ClaimType { return TypeRevocation }

// ToScalar hashes the identifier the way accumulator elements are
// hashed, so the claim doubles as the holder's accumulator element.
func (c RevocationClaim) ToScalar() fr.Element {
	return curve.HashToScalar([]byte(c.Value))
}

// ToText renders the raw identifier.
func (c RevocationClaim) ToText() string { return "r:" + c.Value }

func (c RevocationClaim) String() string { return c.Value }

// EnumerationClaim selects index Value out of TotalValues under a
// domain separation tag.
type EnumerationClaim struct {
	DST         string
	Value       uint8
	TotalValues int
}

// Type returns the claim type.
func (c EnumerationClaim) Type() ClaimType { return TypeEnumeration }

// ToScalar hashes dst || len(dst) || LE16(total) || index.
func (c EnumerationClaim) ToScalar() fr.Element {
	data := make([]byte, 0, len(c.DST)+4)
	data = append(data, []byte(c.DST)...)
	data = append(data, byte(len(c.DST)))
	data = append(data, byte(c.TotalValues), byte(c.TotalValues>>8))
	data = append(data, c.Value)
	return curve.HashToScalar(data)
}

// ToText renders dst, total and index.
func (c EnumerationClaim) ToText() string {
	return fmt.Sprintf("e:%s:%d:%d", c.DST, c.TotalValues, c.Value)
}

func (c EnumerationClaim) String() string {
	return fmt.Sprintf("%s[%d/%d]", c.DST, c.Value, c.TotalValues)
}

// FromText reverses ToText for any claim variant.
func FromText(text string) (ClaimData, error) {
	if len(text) < 2 || text[1] != ':' {
		return nil, fmt.Errorf("%w: malformed claim text", ErrInvalidClaimData)
	}
	body := text[2:]
	switch text[0] {
	case 'h':
		raw, err := base64.RawURLEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidClaimData, err)
		}
		return HashedClaim{Value: raw}, nil
	case 'n':
		v, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidClaimData, err)
		}
		return NumberClaim{Value: v}, nil
	case 's':
		raw, err := hex.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidClaimData, err)
		}
		s, err := curve.ScalarFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidClaimData, err)
		}
		return ScalarClaim{Value: s}, nil
	case 'r':
		return RevocationClaim{Value: body}, nil
	case 'e':
		parts := strings.SplitN(body, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("%w: malformed enumeration text", ErrInvalidClaimData)
		}
		total, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidClaimData, err)
		}
		idx, err := strconv.ParseUint(parts[2], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidClaimData, err)
		}
		return EnumerationClaim{DST: parts[0], TotalValues: total, Value: uint8(idx)}, nil
	}
	return nil, fmt.Errorf("%w: unknown claim text tag %q", ErrInvalidClaimData, text[0])
}
