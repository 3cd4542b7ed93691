// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/luxfi/anoncred/accumulator"
	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/credential"
	"github.com/luxfi/anoncred/issuer"
	"github.com/luxfi/anoncred/ps"
	"github.com/luxfi/anoncred/statement"
)

// seededReader is a deterministic random stream for transcript
// determinism tests.
func seededReader(seed string) io.Reader {
	h := blake3.New()
	_, _ = h.Write([]byte(seed))
	return h.Digest()
}

func newTestIssuer(t *testing.T, rng io.Reader) (*issuer.Public, *issuer.Issuer) {
	t.Helper()
	schema, err := credential.NewCredentialSchema("IDENTITY", "identity credential", nil, []credential.ClaimSchema{
		{ClaimType: claims.TypeRevocation, Label: "identifier"},
		{ClaimType: claims.TypeHashed, Label: "name", PrintFriendly: true},
		{ClaimType: claims.TypeHashed, Label: "address", PrintFriendly: true},
		{ClaimType: claims.TypeNumber, Label: "age"},
	})
	require.NoError(t, err)
	pub, iss, err := issuer.New(ps.Scheme{}, schema, 8, rng)
	require.NoError(t, err)
	return pub, iss
}

func issueCredential(t *testing.T, iss *issuer.Issuer, name, address string, age int64) *issuer.CredentialBundle {
	t.Helper()
	var revocationID string
	for id := range iss.RevocationRegistry.Elements {
		revocationID = id
		break
	}
	bundle, err := iss.SignCredential([]claims.ClaimData{
		claims.RevocationClaim{Value: revocationID},
		claims.HashedClaim{Value: []byte(name), PrintFriendly: true},
		claims.HashedClaim{Value: []byte(address), PrintFriendly: true},
		claims.NumberClaim{Value: age},
	})
	require.NoError(t, err)
	return bundle
}

func testNonce(t *testing.T) []byte {
	t.Helper()
	nonce := make([]byte, 16)
	_, err := rand.Read(nonce)
	require.NoError(t, err)
	return nonce
}

// Scenario 1: reveal only "name"; the proof verifies.
func TestPresentationRevealOnly(t *testing.T) {
	pub, iss := newTestIssuer(t, rand.Reader)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 30303)

	sig := &statement.Signature{
		StatementID: "sig-1",
		Disclosed:   map[string]bool{"name": true},
		Issuer:      pub,
	}
	schema, err := NewSchema(rand.Reader, sig)
	require.NoError(t, err)

	nonce := testNonce(t)
	presentation, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, schema, nonce, rand.Reader)
	require.NoError(t, err)

	require.NoError(t, presentation.Verify(schema, nonce))

	// The revealed claim is carried and nothing else.
	require.Len(t, presentation.DisclosedMessages["sig-1"], 1)
	require.Contains(t, presentation.DisclosedMessages["sig-1"], "name")

	// Wrong nonce fails.
	require.Error(t, presentation.Verify(schema, testNonce(t)))
}

// Scenario 2: range statement 0 <= age <= 44829.
func TestPresentationRange(t *testing.T) {
	pub, iss := newTestIssuer(t, rand.Reader)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 30303)

	ageIdx, ok := pub.Schema.ClaimIndex("age")
	require.True(t, ok)

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
	schema, err := NewSchema(rand.Reader, sig, commitment, rangeSt)
	require.NoError(t, err)

	nonce := testNonce(t)
	presentation, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, schema, nonce, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, presentation.Verify(schema, nonce))
}

// The honest prover refuses out-of-range claims.
func TestPresentationRangeOutOfBounds(t *testing.T) {
	pub, iss := newTestIssuer(t, rand.Reader)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 200)

	ageIdx, _ := pub.Schema.ClaimIndex("age")
	sig := &statement.Signature{
		StatementID: "sig-1",
		Disclosed:   map[string]bool{},
		Issuer:      pub,
	}
	commitment := newCommitmentStatement(t, "commit-1", "sig-1", ageIdx)
	lower := int64(0)
	upper := int64(150)
	rangeSt := &statement.Range{
		StatementID: "range-1",
		ReferenceID: "commit-1",
		SignatureID: "sig-1",
		Claim:       ageIdx,
		Lower:       &lower,
		Upper:       &upper,
	}
	schema, err := NewSchema(rand.Reader, sig, commitment, rangeSt)
	require.NoError(t, err)

	_, err = Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, schema, testNonce(t), rand.Reader)
	require.Error(t, err)
}

// Scenario 3: equality of "name" across two issuers.
func TestPresentationEquality(t *testing.T) {
	pubA, issA := newTestIssuer(t, rand.Reader)
	pubB, issB := newTestIssuer(t, rand.Reader)

	matching := issueCredential(t, issA, "John Doe", "42 Wallaby Way", 30303)
	matchingB := issueCredential(t, issB, "John Doe", "1 Other Street", 40)

	nameIdxA, _ := pubA.Schema.ClaimIndex("name")
	nameIdxB, _ := pubB.Schema.ClaimIndex("name")

	sigA := &statement.Signature{StatementID: "sig-a", Disclosed: map[string]bool{}, Issuer: pubA}
	sigB := &statement.Signature{StatementID: "sig-b", Disclosed: map[string]bool{}, Issuer: pubB}
	eq := &statement.Equality{
		StatementID: "eq-1",
		RefIDClaimIndex: map[string]int{
			"sig-a": nameIdxA,
			"sig-b": nameIdxB,
		},
	}
	schema, err := NewSchema(rand.Reader, sigA, sigB, eq)
	require.NoError(t, err)

	nonce := testNonce(t)
	presentation, err := Create(map[string]ProofCredential{
		"sig-a": SignatureCredential{Credential: matching.Credential},
		"sig-b": SignatureCredential{Credential: matchingB.Credential},
	}, schema, nonce, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, presentation.Verify(schema, nonce))

	// Differing names fail at create with a claim-data error.
	different := issueCredential(t, issB, "Jane Doe", "1 Other Street", 40)
	_, err = Create(map[string]ProofCredential{
		"sig-a": SignatureCredential{Credential: matching.Credential},
		"sig-b": SignatureCredential{Credential: different.Credential},
	}, schema, nonce, rand.Reader)
	require.ErrorIs(t, err, claims.ErrInvalidClaimData)
}

// Scenario 4 lives in the accumulator package (batch update); here the
// revocation statement flow: a presentation with a non-revocation
// proof verifies, and fails after the holder is revoked.
func TestPresentationRevocation(t *testing.T) {
	pub, iss := newTestIssuer(t, rand.Reader)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 30303)

	revIdx, _ := pub.Schema.RevocationIndex()
	sig := &statement.Signature{StatementID: "sig-1", Disclosed: map[string]bool{}, Issuer: pub}
	rev := &statement.Revocation{
		StatementID:     "rev-1",
		ReferenceID:     "sig-1",
		Accumulator:     pub.RevocationRegistry,
		VerificationKey: pub.RevocationVerifyingKey,
		Claim:           revIdx,
	}
	schema, err := NewSchema(rand.Reader, sig, rev)
	require.NoError(t, err)

	nonce := testNonce(t)
	presentation, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, schema, nonce, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, presentation.Verify(schema, nonce))

	// Revoke the holder; a schema against the updated registry rejects
	// the stale witness.
	holderID := bundle.Credential.Claims[revIdx].(claims.RevocationClaim).Value
	_, err = iss.Revoke([]string{holderID})
	require.NoError(t, err)

	freshPub := iss.Public()
	revStale := &statement.Revocation{
		StatementID:     "rev-1",
		ReferenceID:     "sig-1",
		Accumulator:     freshPub.RevocationRegistry,
		VerificationKey: freshPub.RevocationVerifyingKey,
		Claim:           revIdx,
	}
	staleSchema, err := NewSchema(rand.Reader, sig, revStale)
	require.NoError(t, err)

	nonce2 := testNonce(t)
	stale, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, staleSchema, nonce2, rand.Reader)
	require.NoError(t, err)
	require.Error(t, stale.Verify(staleSchema, nonce2))
}

// Scenario 5: verifiable encryption of "age" to the authority;
// decryption recovers 30303 and tampering fails.
func TestPresentationVerifiableEncryptionDecryption(t *testing.T) {
	pub, iss := newTestIssuer(t, rand.Reader)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 30303)

	ageIdx, _ := pub.Schema.ClaimIndex("age")
	gen := newCommitmentStatement(t, "unused", "unused", 0).MessageGenerator

	sig := &statement.Signature{StatementID: "sig-1", Disclosed: map[string]bool{}, Issuer: pub}
	ved := &statement.VerifiableEncryptionDecryption{
		StatementID:      "ved-1",
		ReferenceID:      "sig-1",
		Claim:            ageIdx,
		MessageGenerator: gen,
		EncryptionKey:    pub.VerifiableEncryptionKey,
	}
	schema, err := NewSchema(rand.Reader, sig, ved)
	require.NoError(t, err)

	nonce := testNonce(t)
	presentation, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, schema, nonce, rand.Reader)
	require.NoError(t, err)

	recovered, err := presentation.VerifyAndDecrypt(schema, nonce, []DecryptionRequest{
		{StatementID: "ved-1", DecryptionKey: &iss.VerifiableDecryptionKey},
	})
	require.NoError(t, err)
	number, ok := recovered["ved-1"].(claims.NumberClaim)
	require.True(t, ok)
	require.Equal(t, int64(30303), number.Value)

	// Tampering any payload byte breaks decryption verification.
	part := presentation.Proofs["ved-1"].(*VerifiableEncryptionDecryptionProof)
	part.Ciphertext[len(part.Ciphertext)-1] ^= 0x01
	_, err = part.DecryptAndVerify(&iss.VerifiableDecryptionKey)
	require.Error(t, err)
}

// Plain verifiable encryption: ciphertext well-formedness is proven and
// the authority recovers the claim commitment.
func TestPresentationVerifiableEncryption(t *testing.T) {
	pub, iss := newTestIssuer(t, rand.Reader)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 30303)

	ageIdx, _ := pub.Schema.ClaimIndex("age")
	gen := newCommitmentStatement(t, "unused", "unused", 0).MessageGenerator

	sig := &statement.Signature{StatementID: "sig-1", Disclosed: map[string]bool{}, Issuer: pub}
	ve := &statement.VerifiableEncryption{
		StatementID:      "ve-1",
		ReferenceID:      "sig-1",
		Claim:            ageIdx,
		MessageGenerator: gen,
		EncryptionKey:    pub.VerifiableEncryptionKey,
	}
	schema, err := NewSchema(rand.Reader, sig, ve)
	require.NoError(t, err)

	nonce := testNonce(t)
	presentation, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, schema, nonce, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, presentation.Verify(schema, nonce))

	// The decrypted commitment matches age*M.
	part := presentation.Proofs["ve-1"].(*VerifiableEncryptionProof)
	decrypted := part.DecryptCommitment(&iss.VerifiableDecryptionKey)
	ageScalar := claims.NumberClaim{Value: 30303}.ToScalar()
	expected := mulG1(t, gen, ageScalar)
	require.True(t, decrypted.Equal(&expected))
}

// Scenario 6 is covered by the accumulator package's non-membership
// tests; the membership statement path runs here.
func TestPresentationMembership(t *testing.T) {
	pub, iss := newTestIssuer(t, rand.Reader)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 30303)

	// Build a registry whose members include the holder's name claim.
	registryKey, err := accumulator.NewSecretKey(rand.Reader)
	require.NoError(t, err)
	nameElement := claims.HashedClaim{Value: []byte("John Doe"), PrintFriendly: true}.ToScalar()
	others := []accumulator.Element{
		accumulator.HashToElement([]byte("alpha")),
		accumulator.HashToElement([]byte("beta")),
	}
	members := append([]accumulator.Element{nameElement}, others...)
	registry := accumulator.WithElements(registryKey, members)
	witness, err := accumulator.NewMembershipWitness(nameElement, registry, registryKey)
	require.NoError(t, err)

	nameIdx, _ := pub.Schema.ClaimIndex("name")
	sig := &statement.Signature{StatementID: "sig-1", Disclosed: map[string]bool{}, Issuer: pub}
	member := &statement.Membership{
		StatementID:     "member-1",
		ReferenceID:     "sig-1",
		Accumulator:     registry,
		VerificationKey: registryKey.PublicKey(),
		Claim:           nameIdx,
	}
	schema, err := NewSchema(rand.Reader, sig, member)
	require.NoError(t, err)

	nonce := testNonce(t)
	presentation, err := Create(map[string]ProofCredential{
		"sig-1":    SignatureCredential{Credential: bundle.Credential},
		"member-1": MembershipCredential{Witness: witness},
	}, schema, nonce, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, presentation.Verify(schema, nonce))
}

// Transcript determinism: identical inputs and RNG seed produce
// byte-identical serialized proofs.
func TestPresentationDeterminism(t *testing.T) {
	setupRng := seededReader("issuer setup")
	pub, iss := newTestIssuer(t, setupRng)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 30303)
	_ = pub

	sig := &statement.Signature{
		StatementID: "sig-1",
		Disclosed:   map[string]bool{"name": true},
		Issuer:      iss.Public(),
	}
	schema, err := NewSchemaWithID("deterministic-schema", sig)
	require.NoError(t, err)

	nonce := bytes.Repeat([]byte{0xA5}, 16)

	one, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, schema, nonce, seededReader("proof rng"))
	require.NoError(t, err)

	two, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, schema, nonce, seededReader("proof rng"))
	require.NoError(t, err)

	rawOne, err := json.Marshal(one)
	require.NoError(t, err)
	rawTwo, err := json.Marshal(two)
	require.NoError(t, err)
	require.Equal(t, rawOne, rawTwo)
}

// Selective-disclosure soundness: tampering a hidden response breaks
// verification.
func TestPresentationTamperedHiddenMessage(t *testing.T) {
	pub, iss := newTestIssuer(t, rand.Reader)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 30303)

	sig := &statement.Signature{
		StatementID: "sig-1",
		Disclosed:   map[string]bool{"name": true},
		Issuer:      pub,
	}
	schema, err := NewSchema(rand.Reader, sig)
	require.NoError(t, err)

	nonce := testNonce(t)
	presentation, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, schema, nonce, rand.Reader)
	require.NoError(t, err)

	proof := presentation.Proofs["sig-1"].(*SignatureProof).PoK.(*ps.PoKSignatureProof)
	proof.Proofs[2].Add(&proof.Proofs[2], &proof.Proofs[2])
	require.Error(t, presentation.Verify(schema, nonce))
}

// JSON round trip preserves verifiability.
func TestPresentationJSONRoundTrip(t *testing.T) {
	pub, iss := newTestIssuer(t, rand.Reader)
	bundle := issueCredential(t, iss, "John Doe", "42 Wallaby Way", 30303)

	sig := &statement.Signature{
		StatementID: "sig-1",
		Disclosed:   map[string]bool{"name": true},
		Issuer:      pub,
	}
	schema, err := NewSchema(rand.Reader, sig)
	require.NoError(t, err)

	nonce := testNonce(t)
	presentation, err := Create(map[string]ProofCredential{
		"sig-1": SignatureCredential{Credential: bundle.Credential},
	}, schema, nonce, rand.Reader)
	require.NoError(t, err)

	raw, err := json.Marshal(presentation)
	require.NoError(t, err)

	var back Presentation
	require.NoError(t, json.Unmarshal(raw, &back))
	require.NoError(t, back.Verify(schema, nonce))
}
