// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package claims

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/curve"
)

func TestHashedClaimDeterministic(t *testing.T) {
	a := HashedClaim{Value: []byte("John Doe")}.ToScalar()
	b := HashedClaim{Value: []byte("John Doe")}.ToScalar()
	require.True(t, a.Equal(&b))

	c := HashedClaim{Value: []byte("Jane Doe")}.ToScalar()
	require.False(t, a.Equal(&c))
}

func TestNumberClaimZeroCentered(t *testing.T) {
	neg := NumberClaim{Value: -1}.ToScalar()
	zero := NumberClaim{Value: 0}.ToScalar()
	pos := NumberClaim{Value: 30303}.ToScalar()

	expectNeg := curve.NumberScalar(-1)
	require.True(t, neg.Equal(&expectNeg))
	require.False(t, neg.Equal(&zero))
	require.False(t, zero.Equal(&pos))
}

func TestScalarStringPacking(t *testing.T) {
	claim, err := EncodeScalarString("alice@example.com")
	require.NoError(t, err)
	back, err := claim.DecodeScalarString()
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", back)

	// 30 bytes is the limit.
	_, err = EncodeScalarString("123456789012345678901234567890")
	require.NoError(t, err)
	_, err = EncodeScalarString("1234567890123456789012345678901")
	require.ErrorIs(t, err, ErrInvalidClaimData)

	// Empty strings round-trip too.
	empty, err := EncodeScalarString("")
	require.NoError(t, err)
	s, err := empty.DecodeScalarString()
	require.NoError(t, err)
	require.Equal(t, "", s)
}

func TestRevocationClaimMatchesElementHash(t *testing.T) {
	claim := RevocationClaim{Value: "cred-1"}.ToScalar()
	element := curve.HashToScalar([]byte("cred-1"))
	require.True(t, claim.Equal(&element))
}

func TestEnumerationClaimDistinct(t *testing.T) {
	a := EnumerationClaim{DST: "phone_number_type", TotalValues: 3, Value: 0}.ToScalar()
	b := EnumerationClaim{DST: "phone_number_type", TotalValues: 3, Value: 1}.ToScalar()
	c := EnumerationClaim{DST: "other", TotalValues: 3, Value: 0}.ToScalar()
	require.False(t, a.Equal(&b))
	require.False(t, a.Equal(&c))
}

func TestParseDate(t *testing.T) {
	claim, err := ParseDate("2021-01-01")
	require.NoError(t, err)
	require.Equal(t, int64(20210101), claim.Value)

	claim, err = ParseDate("1982-12-31")
	require.NoError(t, err)
	require.Equal(t, int64(19821231), claim.Value)

	_, err = ParseDate("2021-02-30")
	require.Error(t, err)
	_, err = ParseDate("not-a-date")
	require.Error(t, err)
}

func TestParseDateTime(t *testing.T) {
	claim, err := ParseDateTime("2021-01-01T00:00:00Z")
	require.NoError(t, err)
	require.Equal(t, int64(1609459200), claim.Value)
}

func TestClaimTextRoundTrip(t *testing.T) {
	cases := []ClaimData{
		HashedClaim{Value: []byte("42 Wallaby Way")},
		NumberClaim{Value: -30303},
		RevocationClaim{Value: "cred-1"},
		EnumerationClaim{DST: "kind", TotalValues: 5, Value: 2},
	}
	for _, c := range cases {
		back, err := FromText(c.ToText())
		require.NoError(t, err)
		orig := c.ToScalar()
		got := back.ToScalar()
		require.True(t, orig.Equal(&got), "claim %v did not round-trip", c)
	}

	sc, err := EncodeScalarString("linked-value")
	require.NoError(t, err)
	back, err := FromText(sc.ToText())
	require.NoError(t, err)
	origScalar := sc.ToScalar()
	gotScalar := back.ToScalar()
	require.True(t, origScalar.Equal(&gotScalar))
}

func TestValidators(t *testing.T) {
	require.NoError(t, LengthValidator{Min: 1, Max: 16}.Validate(HashedClaim{Value: []byte("ok")}))
	require.Error(t, LengthValidator{Min: 3}.Validate(HashedClaim{Value: []byte("no")}))
	require.Error(t, LengthValidator{}.Validate(NumberClaim{Value: 1}))

	require.NoError(t, RangeValidator{Min: 0, Max: 100}.Validate(NumberClaim{Value: 42}))
	require.Error(t, RangeValidator{Min: 0, Max: 10}.Validate(NumberClaim{Value: 42}))

	require.NoError(t, RegexValidator{Pattern: `^\d+$`}.Validate(HashedClaim{Value: []byte("123")}))
	require.Error(t, RegexValidator{Pattern: `^\d+$`}.Validate(HashedClaim{Value: []byte("abc")}))

	allowed := AnyOneValidator{Values: []ClaimData{NumberClaim{Value: 1}, NumberClaim{Value: 2}}}
	require.NoError(t, allowed.Validate(NumberClaim{Value: 2}))
	require.Error(t, allowed.Validate(NumberClaim{Value: 3}))
}
