// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package credential

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/accumulator"
	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/sigcore"
)

// Credential is a signed, ordered claim vector plus the holder's
// revocation handle.
type Credential struct {
	// Claims in schema slot order.
	Claims []claims.ClaimData
	// Signature over the claim scalars.
	Signature sigcore.Signature
	// RevocationHandle is the membership witness for the revocation
	// claim in the issuer's registry.
	RevocationHandle accumulator.MembershipWitness
	// RevocationIndex is the slot carrying the revocation claim.
	RevocationIndex int
}

// ClaimScalars encodes the claims in slot order.
func (c *Credential) ClaimScalars() []fr.Element {
	out := make([]fr.Element, len(c.Claims))
	for i := range c.Claims {
		out[i] = c.Claims[i].ToScalar()
	}
	return out
}

// Membership aliases: a membership credential is an accumulator witness
// for a claim in somebody's registry, signature-independent.
type (
	// MembershipSigningKey controls a membership registry.
	MembershipSigningKey = accumulator.SecretKey
	// MembershipVerificationKey verifies membership witnesses.
	MembershipVerificationKey = accumulator.PublicKey
	// MembershipRegistry is the registry accumulator value.
	MembershipRegistry = accumulator.Accumulator
	// MembershipCredential is the holder's witness.
	MembershipCredential = accumulator.MembershipWitness
)

// MembershipClaim wraps a claim as an accumulator element.
type MembershipClaim struct {
	Element accumulator.Element
}

// NewMembershipClaim encodes any claim as a registry element.
func NewMembershipClaim(c claims.ClaimData) MembershipClaim {
	return MembershipClaim{Element: c.ToScalar()}
}
