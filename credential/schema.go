// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package credential defines the credential schema, the signed
// credential and the membership aliases around the accumulator.
package credential

import (
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/luxfi/anoncred/claims"
)

var (
	ErrInvalidSchema = errors.New("credential: invalid credential schema")
)

// ClaimSchema describes one attribute slot.
type ClaimSchema struct {
	ClaimType     claims.ClaimType   `json:"claim_type"`
	Label         string             `json:"label"`
	PrintFriendly bool               `json:"print_friendly"`
	Validators    []claims.Validator `json:"-"`
}

// IsType reports whether a claim fits this slot: the claim's type must
// equal the slot's declared type exactly.
func (c ClaimSchema) IsType(claim claims.ClaimData) bool {
	return claim.Type() == c.ClaimType
}

// CredentialSchema is the ordered attribute layout an issuer signs.
// Exactly one slot carries the revocation identifier.
type CredentialSchema struct {
	ID          string        `json:"id"`
	Label       string        `json:"label,omitempty"`
	Description string        `json:"description,omitempty"`
	BlindClaims []string      `json:"blind_claims"`
	Claims      []ClaimSchema `json:"claims"`

	indices map[string]int
}

// NewCredentialSchema validates the slots and derives the schema id
// from the content so identical schemas share an id.
func NewCredentialSchema(label, description string, blindClaims []string, claimSchemas []ClaimSchema) (*CredentialSchema, error) {
	if len(claimSchemas) == 0 {
		return nil, fmt.Errorf("%w: no claims", ErrInvalidSchema)
	}
	indices := make(map[string]int, len(claimSchemas))
	revocationSlots := 0
	for i, c := range claimSchemas {
		if c.Label == "" {
			return nil, fmt.Errorf("%w: empty claim label at index %d", ErrInvalidSchema, i)
		}
		if _, dup := indices[c.Label]; dup {
			return nil, fmt.Errorf("%w: duplicate claim label %q", ErrInvalidSchema, c.Label)
		}
		indices[c.Label] = i
		if c.ClaimType == claims.TypeRevocation {
			revocationSlots++
		}
	}
	if revocationSlots != 1 {
		return nil, fmt.Errorf("%w: schema needs exactly one revocation slot, has %d", ErrInvalidSchema, revocationSlots)
	}
	for _, label := range blindClaims {
		if _, ok := indices[label]; !ok {
			return nil, fmt.Errorf("%w: blindable claim %q not in schema", ErrInvalidSchema, label)
		}
	}

	h, err := blake2b.New(16, nil)
	if err != nil {
		return nil, err
	}
	_, _ = h.Write([]byte(label))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(description))
	for _, c := range claimSchemas {
		_, _ = h.Write([]byte{0, byte(c.ClaimType)})
		_, _ = h.Write([]byte(c.Label))
	}

	return &CredentialSchema{
		ID:          hex.EncodeToString(h.Sum(nil)),
		Label:       label,
		Description: description,
		BlindClaims: append([]string{}, blindClaims...),
		Claims:      append([]ClaimSchema{}, claimSchemas...),
		indices:     indices,
	}, nil
}

// ClaimIndex resolves a label to its slot index.
func (s *CredentialSchema) ClaimIndex(label string) (int, bool) {
	s.ensureIndices()
	idx, ok := s.indices[label]
	return idx, ok
}

// ClaimLabel returns the label at a slot index.
func (s *CredentialSchema) ClaimLabel(index int) (string, bool) {
	if index < 0 || index >= len(s.Claims) {
		return "", false
	}
	return s.Claims[index].Label, true
}

// RevocationIndex returns the slot of the revocation claim.
func (s *CredentialSchema) RevocationIndex() (int, bool) {
	for i, c := range s.Claims {
		if c.ClaimType == claims.TypeRevocation {
			return i, true
		}
	}
	return 0, false
}

// IsBlindable reports whether the label may be hidden during issuance.
func (s *CredentialSchema) IsBlindable(label string) bool {
	for _, b := range s.BlindClaims {
		if b == label {
			return true
		}
	}
	return false
}

// ValidateClaims checks a full claim vector against the slots and their
// validators.
func (s *CredentialSchema) ValidateClaims(values []claims.ClaimData) error {
	if len(values) != len(s.Claims) {
		return fmt.Errorf("%w: %d claims for %d slots", claims.ErrInvalidClaimData, len(values), len(s.Claims))
	}
	for i, c := range s.Claims {
		if !c.IsType(values[i]) {
			return fmt.Errorf("%w: slot %q expects %s, got %s",
				claims.ErrInvalidClaimData, c.Label, c.ClaimType, values[i].Type())
		}
		for _, v := range c.Validators {
			if err := v.Validate(values[i]); err != nil {
				return fmt.Errorf("slot %q: %w", c.Label, err)
			}
		}
	}
	return nil
}

// ensureIndices rebuilds the label index after deserialization.
func (s *CredentialSchema) ensureIndices() {
	if s.indices != nil {
		return
	}
	s.indices = make(map[string]int, len(s.Claims))
	for i, c := range s.Claims {
		s.indices[c.Label] = i
	}
}
