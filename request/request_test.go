// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package request

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/credential"
	"github.com/luxfi/anoncred/issuer"
	"github.com/luxfi/anoncred/presentation"
	"github.com/luxfi/anoncred/ps"
)

func newTestIssuer(t *testing.T) (*issuer.Public, *issuer.Issuer) {
	t.Helper()
	schema, err := credential.NewCredentialSchema("IDENTITY", "identity", nil, []credential.ClaimSchema{
		{ClaimType: claims.TypeRevocation, Label: "identifier"},
		{ClaimType: claims.TypeHashed, Label: "name", PrintFriendly: true},
		{ClaimType: claims.TypeNumber, Label: "age"},
	})
	require.NoError(t, err)
	pub, iss, err := issuer.New(ps.Scheme{}, schema, 4, rand.Reader)
	require.NoError(t, err)
	return pub, iss
}

func TestCompileAndPresent(t *testing.T) {
	pub, iss := newTestIssuer(t)

	var revocationID string
	for id := range iss.RevocationRegistry.Elements {
		revocationID = id
		break
	}
	bundle, err := iss.SignCredential([]claims.ClaimData{
		claims.RevocationClaim{Value: revocationID},
		claims.HashedClaim{Value: []byte("John Doe"), PrintFriendly: true},
		claims.NumberClaim{Value: 30303},
	})
	require.NoError(t, err)

	lower := int64(0)
	upper := int64(44829)
	schema, err := Compile(map[string]*issuer.Public{pub.ID: pub}, []Requirement{
		Reveal{IssuerID: pub.ID, Labels: []string{"name"}},
		InRange{IssuerID: pub.ID, Label: "age", Lower: &lower, Upper: &upper},
		NotRevoked{IssuerID: pub.ID},
	}, rand.Reader)
	require.NoError(t, err)

	sigIDs := SignatureStatementIDs(schema)
	require.Contains(t, sigIDs, pub.ID)

	nonce := make([]byte, 16)
	_, err = rand.Read(nonce)
	require.NoError(t, err)

	pres, err := presentation.Create(map[string]presentation.ProofCredential{
		sigIDs[pub.ID]: presentation.SignatureCredential{Credential: bundle.Credential},
	}, schema, nonce, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, pres.Verify(schema, nonce))
}

func TestCompileRejectsUnknownIssuer(t *testing.T) {
	_, err := Compile(map[string]*issuer.Public{}, []Requirement{
		Reveal{IssuerID: "missing", Labels: []string{"name"}},
	}, rand.Reader)
	require.ErrorIs(t, err, ErrInvalidRequirement)
}

func TestCompileRejectsUnknownClaim(t *testing.T) {
	pub, _ := newTestIssuer(t)
	_, err := Compile(map[string]*issuer.Public{pub.ID: pub}, []Requirement{
		Reveal{IssuerID: pub.ID, Labels: []string{"missing"}},
	}, rand.Reader)
	require.ErrorIs(t, err, ErrInvalidRequirement)
}

func TestCompileLinked(t *testing.T) {
	pubA, _ := newTestIssuer(t)
	pubB, _ := newTestIssuer(t)

	schema, err := Compile(map[string]*issuer.Public{
		pubA.ID: pubA,
		pubB.ID: pubB,
	}, []Requirement{
		Linked{Claims: []LinkedClaim{
			{IssuerID: pubA.ID, Label: "name"},
			{IssuerID: pubB.ID, Label: "name"},
		}},
	}, rand.Reader)
	require.NoError(t, err)
	require.Len(t, schema.StatementIDs(), 3)
}
