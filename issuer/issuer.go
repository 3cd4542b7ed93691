// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package issuer binds a signing key, a credential schema, a revocation
// registry and a verifiable-encryption authority key into one
// credential-issuing object.
package issuer

import (
	"errors"
	"fmt"
	"io"

	"github.com/luxfi/anoncred/accumulator"
	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/credential"
	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/revocation"
	"github.com/luxfi/anoncred/sigcore"
)

var (
	ErrInvalidRevocationID = errors.New("issuer: revocation id not in registry")
	ErrSigningFailed       = errors.New("issuer: signing operation failed")
)

// Public is the verifier-facing issuer state.
type Public struct {
	// ID is the issuer's unique identifier (16-byte lower hex).
	ID string
	// Schema is the credential layout this issuer signs.
	Schema *credential.CredentialSchema
	// VerifyingKey checks credential signatures.
	VerifyingKey sigcore.PublicKey
	// RevocationVerifyingKey checks accumulator witnesses.
	RevocationVerifyingKey accumulator.PublicKey
	// VerifiableEncryptionKey is the authority key for claim escrow.
	VerifiableEncryptionKey EncryptionPublicKey
	// RevocationRegistry is the current accumulator value.
	RevocationRegistry accumulator.Accumulator
	// SchemeName selects the signature scheme.
	SchemeName string
}

// Scheme resolves the issuer's signature scheme.
func (p *Public) Scheme() (sigcore.Scheme, error) {
	return sigcore.SchemeByName(p.SchemeName)
}

// Issuer is the secret-holding side. Not safe for concurrent use: Revoke
// and Grow mutate the registry that SignCredential reads.
type Issuer struct {
	ID                      string
	Schema                  *credential.CredentialSchema
	SigningKey              sigcore.SecretKey
	RevocationKey           *accumulator.SecretKey
	VerifiableDecryptionKey DecryptionKey
	RevocationRegistry      *revocation.Registry

	scheme sigcore.Scheme
}

// CredentialBundle pairs a credential with its issuer's public data.
type CredentialBundle struct {
	Issuer     *Public
	Credential *credential.Credential
}

// New creates an issuer over the schema with a registry sized for
// maxIssuance credentials.
func New(scheme sigcore.Scheme, schema *credential.CredentialSchema, maxIssuance int, rng io.Reader) (*Public, *Issuer, error) {
	id, err := curve.RandomHex(16, rng)
	if err != nil {
		return nil, nil, err
	}
	verifyingKey, signingKey, err := scheme.NewKeys(len(schema.Claims), rng)
	if err != nil {
		return nil, nil, err
	}
	revocationKey, err := accumulator.NewSecretKey(rng)
	if err != nil {
		return nil, nil, err
	}
	encryptionKey, decryptionKey, err := NewEncryptionKeys(rng)
	if err != nil {
		return nil, nil, err
	}
	registry, err := revocation.New(revocationKey, maxIssuance, rng)
	if err != nil {
		return nil, nil, err
	}

	iss := &Issuer{
		ID:                      id,
		Schema:                  schema,
		SigningKey:              signingKey,
		RevocationKey:           revocationKey,
		VerifiableDecryptionKey: decryptionKey,
		RevocationRegistry:      registry,
		scheme:                  scheme,
	}
	return iss.Public(), iss, nil
}

// Public projects the issuer's public state at its current registry
// value.
func (i *Issuer) Public() *Public {
	return &Public{
		ID:                      i.ID,
		Schema:                  i.Schema,
		VerifyingKey:            i.SigningKey.PublicKey(),
		RevocationVerifyingKey:  i.RevocationKey.PublicKey(),
		VerifiableEncryptionKey: i.VerifiableDecryptionKey.PublicKey(),
		RevocationRegistry:      i.RevocationRegistry.Value,
		SchemeName:              i.scheme.Name(),
	}
}

// SignCredential signs the claims in schema order. The revocation claim
// must name an active registry identifier; the returned credential
// carries a fresh membership witness for it.
func (i *Issuer) SignCredential(claimValues []claims.ClaimData) (*CredentialBundle, error) {
	if err := i.Schema.ValidateClaims(claimValues); err != nil {
		return nil, err
	}
	revIndex, ok := i.Schema.RevocationIndex()
	if !ok {
		return nil, credential.ErrInvalidSchema
	}
	revClaim, ok := claimValues[revIndex].(claims.RevocationClaim)
	if !ok {
		return nil, fmt.Errorf("%w: revocation slot holds a %s claim",
			claims.ErrInvalidClaimData, claimValues[revIndex].Type())
	}
	if !i.RevocationRegistry.Contains(revClaim.Value) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRevocationID, revClaim.Value)
	}

	element := accumulator.HashToElement([]byte(revClaim.Value))
	witness, err := accumulator.NewMembershipWitness(element, i.RevocationRegistry.Value, i.RevocationKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	attributes := make([]claims.ClaimData, len(claimValues))
	copy(attributes, claimValues)
	msgs := (&credential.Credential{Claims: attributes}).ClaimScalars()
	signature, err := i.scheme.Sign(i.SigningKey, msgs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	return &CredentialBundle{
		Issuer: i.Public(),
		Credential: &credential.Credential{
			Claims:           attributes,
			Signature:        signature,
			RevocationHandle: witness,
			RevocationIndex:  revIndex,
		},
	}, nil
}

// Revoke removes identifiers from the registry, returning the
// witness-update coefficients for surviving holders.
func (i *Issuer) Revoke(ids []string) ([]accumulator.Coefficient, error) {
	return i.RevocationRegistry.Revoke(i.RevocationKey, ids)
}

// Grow mints count fresh identifiers.
func (i *Issuer) Grow(count int, rng io.Reader) ([]string, []accumulator.Coefficient, error) {
	return i.RevocationRegistry.Add(i.RevocationKey, count, rng)
}

// Close zeroizes the issuer's secrets.
func (i *Issuer) Close() {
	i.SigningKey.Zeroize()
	i.RevocationKey.Zeroize()
	i.VerifiableDecryptionKey.Zeroize()
}
