// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package issuer

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/accumulator"
	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/credential"
	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/ps"
)

func testSchema(t *testing.T) *credential.CredentialSchema {
	t.Helper()
	schema, err := credential.NewCredentialSchema("IDENTITY", "test identity", []string{"link_secret"}, []credential.ClaimSchema{
		{ClaimType: claims.TypeRevocation, Label: "identifier"},
		{ClaimType: claims.TypeHashed, Label: "name", PrintFriendly: true},
		{ClaimType: claims.TypeHashed, Label: "address", PrintFriendly: true},
		{ClaimType: claims.TypeNumber, Label: "age"},
		{ClaimType: claims.TypeScalar, Label: "link_secret"},
	})
	require.NoError(t, err)
	return schema
}

func anyRegistryID(i *Issuer) string {
	for id := range i.RevocationRegistry.Elements {
		return id
	}
	return ""
}

func TestSignCredential(t *testing.T) {
	schema := testSchema(t)
	pub, iss, err := New(ps.Scheme{}, schema, 8, rand.Reader)
	require.NoError(t, err)

	link, err := claims.EncodeScalarString("link")
	require.NoError(t, err)
	values := []claims.ClaimData{
		claims.RevocationClaim{Value: anyRegistryID(iss)},
		claims.HashedClaim{Value: []byte("John Doe"), PrintFriendly: true},
		claims.HashedClaim{Value: []byte("42 Wallaby Way"), PrintFriendly: true},
		claims.NumberClaim{Value: 30303},
		link,
	}

	bundle, err := iss.SignCredential(values)
	require.NoError(t, err)

	scheme, err := pub.Scheme()
	require.NoError(t, err)
	require.NoError(t, scheme.Verify(pub.VerifyingKey, bundle.Credential.ClaimScalars(), bundle.Credential.Signature))

	// The revocation witness verifies against the registry.
	element := accumulator.HashToElement([]byte(values[0].(claims.RevocationClaim).Value))
	require.NoError(t, bundle.Credential.RevocationHandle.Verify(
		element, pub.RevocationVerifyingKey, pub.RevocationRegistry))
}

func TestSignCredentialUnknownRevocationID(t *testing.T) {
	schema := testSchema(t)
	_, iss, err := New(ps.Scheme{}, schema, 2, rand.Reader)
	require.NoError(t, err)

	link, err := claims.EncodeScalarString("link")
	require.NoError(t, err)
	values := []claims.ClaimData{
		claims.RevocationClaim{Value: "ffffffffffffffffffffffffffffffff"},
		claims.HashedClaim{Value: []byte("John Doe")},
		claims.HashedClaim{Value: []byte("42 Wallaby Way")},
		claims.NumberClaim{Value: 30303},
		link,
	}
	_, err = iss.SignCredential(values)
	require.ErrorIs(t, err, ErrInvalidRevocationID)
}

func TestBlindIssuanceFlow(t *testing.T) {
	schema := testSchema(t)
	pub, iss, err := New(ps.Scheme{}, schema, 4, rand.Reader)
	require.NoError(t, err)

	nonce, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	link, err := claims.EncodeScalarString("my-link-secret")
	require.NoError(t, err)
	hidden := map[string]claims.ClaimData{"link_secret": link}

	request, blinder, err := RequestBlindSignature(hidden, pub, nonce, rand.Reader)
	require.NoError(t, err)

	known := map[string]claims.ClaimData{
		"identifier": claims.RevocationClaim{Value: anyRegistryID(iss)},
		"name":       claims.HashedClaim{Value: []byte("John Doe"), PrintFriendly: true},
		"address":    claims.HashedClaim{Value: []byte("42 Wallaby Way"), PrintFriendly: true},
		"age":        claims.NumberClaim{Value: 30303},
	}
	blindBundle, err := iss.BlindSignCredential(request, known, nonce)
	require.NoError(t, err)

	bundle, err := blindBundle.ToUnblinded(hidden, blinder)
	require.NoError(t, err)
	require.Len(t, bundle.Credential.Claims, 5)

	scheme, err := pub.Scheme()
	require.NoError(t, err)
	require.NoError(t, scheme.Verify(pub.VerifyingKey, bundle.Credential.ClaimScalars(), bundle.Credential.Signature))
}

func TestBlindIssuanceRejectsNonBlindable(t *testing.T) {
	schema := testSchema(t)
	pub, _, err := New(ps.Scheme{}, schema, 2, rand.Reader)
	require.NoError(t, err)

	nonce, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	hidden := map[string]claims.ClaimData{
		"age": claims.NumberClaim{Value: 21},
	}
	_, _, err = RequestBlindSignature(hidden, pub, nonce, rand.Reader)
	require.ErrorIs(t, err, claims.ErrInvalidClaimData)
}

func TestRevokeAndGrow(t *testing.T) {
	schema := testSchema(t)
	_, iss, err := New(ps.Scheme{}, schema, 3, rand.Reader)
	require.NoError(t, err)

	victim := anyRegistryID(iss)
	_, err = iss.Revoke([]string{victim})
	require.NoError(t, err)
	require.False(t, iss.RevocationRegistry.Contains(victim))

	ids, coefficients, err := iss.Grow(2, rand.Reader)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.NotEmpty(t, coefficients)
}
