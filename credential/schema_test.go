// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package credential

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/claims"
)

func testClaimSchemas() []ClaimSchema {
	return []ClaimSchema{
		{ClaimType: claims.TypeRevocation, Label: "identifier"},
		{ClaimType: claims.TypeHashed, Label: "name", PrintFriendly: true},
		{ClaimType: claims.TypeHashed, Label: "address", PrintFriendly: true},
		{ClaimType: claims.TypeNumber, Label: "age"},
	}
}

func TestNewCredentialSchema(t *testing.T) {
	schema, err := NewCredentialSchema("IDENTITY", "basic identity schema", nil, testClaimSchemas())
	require.NoError(t, err)
	require.Len(t, schema.ID, 32)

	idx, ok := schema.ClaimIndex("age")
	require.True(t, ok)
	require.Equal(t, 3, idx)

	label, ok := schema.ClaimLabel(1)
	require.True(t, ok)
	require.Equal(t, "name", label)

	rev, ok := schema.RevocationIndex()
	require.True(t, ok)
	require.Equal(t, 0, rev)
}

func TestSchemaIDDeterministic(t *testing.T) {
	a, err := NewCredentialSchema("IDENTITY", "desc", nil, testClaimSchemas())
	require.NoError(t, err)
	b, err := NewCredentialSchema("IDENTITY", "desc", nil, testClaimSchemas())
	require.NoError(t, err)
	require.Equal(t, a.ID, b.ID)

	c, err := NewCredentialSchema("OTHER", "desc", nil, testClaimSchemas())
	require.NoError(t, err)
	require.NotEqual(t, a.ID, c.ID)
}

func TestSchemaRejectsDuplicateLabels(t *testing.T) {
	bad := testClaimSchemas()
	bad[2].Label = "name"
	_, err := NewCredentialSchema("IDENTITY", "", nil, bad)
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestSchemaRequiresRevocationSlot(t *testing.T) {
	_, err := NewCredentialSchema("IDENTITY", "", nil, []ClaimSchema{
		{ClaimType: claims.TypeHashed, Label: "name"},
	})
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestSchemaRejectsUnknownBlindClaim(t *testing.T) {
	_, err := NewCredentialSchema("IDENTITY", "", []string{"missing"}, testClaimSchemas())
	require.ErrorIs(t, err, ErrInvalidSchema)
}

func TestValidateClaims(t *testing.T) {
	schema, err := NewCredentialSchema("IDENTITY", "", nil, testClaimSchemas())
	require.NoError(t, err)

	good := []claims.ClaimData{
		claims.RevocationClaim{Value: "cred-1"},
		claims.HashedClaim{Value: []byte("John Doe"), PrintFriendly: true},
		claims.HashedClaim{Value: []byte("42 Wallaby Way"), PrintFriendly: true},
		claims.NumberClaim{Value: 30303},
	}
	require.NoError(t, schema.ValidateClaims(good))

	// Wrong type in a slot.
	bad := append([]claims.ClaimData{}, good...)
	bad[3] = claims.HashedClaim{Value: []byte("30303")}
	require.Error(t, schema.ValidateClaims(bad))

	// Wrong count.
	require.Error(t, schema.ValidateClaims(good[:3]))
}

func TestValidatorEnforcement(t *testing.T) {
	schemas := testClaimSchemas()
	schemas[3].Validators = []claims.Validator{claims.RangeValidator{Min: 0, Max: 150}}
	schema, err := NewCredentialSchema("IDENTITY", "", nil, schemas)
	require.NoError(t, err)

	values := []claims.ClaimData{
		claims.RevocationClaim{Value: "cred-1"},
		claims.HashedClaim{Value: []byte("John Doe")},
		claims.HashedClaim{Value: []byte("42 Wallaby Way")},
		claims.NumberClaim{Value: 30303},
	}
	require.Error(t, schema.ValidateClaims(values))

	values[3] = claims.NumberClaim{Value: 42}
	require.NoError(t, schema.ValidateClaims(values))
}
