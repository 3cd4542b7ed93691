// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/statement"
)

func TestSchemaJSONRoundTrip(t *testing.T) {
	pub, _ := newTestIssuer(t, rand.Reader)

	ageIdx, _ := pub.Schema.ClaimIndex("age")
	revIdx, _ := pub.Schema.RevocationIndex()

	sig := &statement.Signature{
		StatementID: "sig-1",
		Disclosed:   map[string]bool{"name": true},
		Issuer:      pub,
	}
	commitment := newCommitmentStatement(t, "commit-1", "sig-1", ageIdx)
	lower := int64(0)
	upper := int64(44829)
	rangeSt := &statement.Range{
		StatementID: "range-1",
		ReferenceID: "commit-1",
		SignatureID: "sig-1",
		Claim:       ageIdx,
		Lower:       &lower,
		Upper:       &upper,
	}
	rev := &statement.Revocation{
		StatementID:     "rev-1",
		ReferenceID:     "sig-1",
		Accumulator:     pub.RevocationRegistry,
		VerificationKey: pub.RevocationVerifyingKey,
		Claim:           revIdx,
	}
	schema, err := NewSchema(rand.Reader, sig, commitment, rangeSt, rev)
	require.NoError(t, err)

	raw, err := json.Marshal(schema)
	require.NoError(t, err)

	var back Schema
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, schema.ID, back.ID)
	require.Equal(t, schema.StatementIDs(), back.StatementIDs())
}

func TestSchemaJSONVerifiesPresentation(t *testing.T) {
	pub, iss := newTestIssuer(t, rand.Reader)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 30303)

	sig := &statement.Signature{
		StatementID: "sig-1",
		Disclosed:   map[string]bool{"name": true},
		Issuer:      pub,
	}
	schema, err := NewSchema(rand.Reader, sig)
	require.NoError(t, err)

	raw, err := json.Marshal(schema)
	require.NoError(t, err)
	var decoded Schema
	require.NoError(t, json.Unmarshal(raw, &decoded))

	nonce := testNonce(t)
	presentation, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, &decoded, nonce, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, presentation.Verify(&decoded, nonce))
}
