// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package request converts abstract proof requirements into the
// concrete statements of a presentation schema, wiring the statement
// cross-references (range -> commitment -> signature, revocation ->
// signature, equality -> signatures) for the caller.
package request

import (
	"errors"
	"fmt"
	"io"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/issuer"
	"github.com/luxfi/anoncred/presentation"
	"github.com/luxfi/anoncred/statement"
)

var ErrInvalidRequirement = errors.New("request: invalid proof requirement")

// Requirement is one abstract verifier ask against a named issuer.
type Requirement interface {
	isRequirement()
}

// Reveal discloses the listed claim labels from one issuer's
// credential.
type Reveal struct {
	IssuerID string
	Labels   []string
}

func (Reveal) isRequirement() {}

// InRange bounds a number claim.
type InRange struct {
	IssuerID string
	Label    string
	Lower    *int64
	Upper    *int64
}

func (InRange) isRequirement() {}

// NotRevoked requires a non-revocation proof.
type NotRevoked struct {
	IssuerID string
}

func (NotRevoked) isRequirement() {}

// EncryptTo escrows a hidden claim to the issuer's authority key. With
// Decryptable set the authority can recover the claim itself.
type EncryptTo struct {
	IssuerID    string
	Label       string
	Decryptable bool
}

func (EncryptTo) isRequirement() {}

// Linked requires the named claims to hold one value across issuers.
type Linked struct {
	Claims []LinkedClaim
}

// LinkedClaim names one site of a linked value.
type LinkedClaim struct {
	IssuerID string
	Label    string
}

func (Linked) isRequirement() {}

// Compile translates the requirements into a presentation schema over
// the given issuers. One signature statement is created per issuer
// that any requirement touches; predicate statements reference it.
func Compile(issuers map[string]*issuer.Public, requirements []Requirement, rng io.Reader) (*presentation.Schema, error) {
	sigIDs := make(map[string]string)
	disclosed := make(map[string]map[string]bool)
	var order []string

	touch := func(issuerID string) (string, error) {
		if id, ok := sigIDs[issuerID]; ok {
			return id, nil
		}
		if _, ok := issuers[issuerID]; !ok {
			return "", fmt.Errorf("%w: unknown issuer %q", ErrInvalidRequirement, issuerID)
		}
		id, err := curve.RandomHex(16, rng)
		if err != nil {
			return "", err
		}
		sigIDs[issuerID] = id
		disclosed[issuerID] = make(map[string]bool)
		order = append(order, issuerID)
		return id, nil
	}

	claimIndex := func(issuerID, label string) (int, error) {
		idx, ok := issuers[issuerID].Schema.ClaimIndex(label)
		if !ok {
			return 0, fmt.Errorf("%w: issuer %q has no claim %q", ErrInvalidRequirement, issuerID, label)
		}
		return idx, nil
	}

	var predicates []statement.Statement

	for _, req := range requirements {
		switch r := req.(type) {
		case Reveal:
			if _, err := touch(r.IssuerID); err != nil {
				return nil, err
			}
			for _, label := range r.Labels {
				if _, err := claimIndex(r.IssuerID, label); err != nil {
					return nil, err
				}
				disclosed[r.IssuerID][label] = true
			}

		case InRange:
			sigID, err := touch(r.IssuerID)
			if err != nil {
				return nil, err
			}
			idx, err := claimIndex(r.IssuerID, r.Label)
			if err != nil {
				return nil, err
			}
			if r.Lower == nil && r.Upper == nil {
				return nil, fmt.Errorf("%w: range needs at least one bound", ErrInvalidRequirement)
			}
			commitID, err := curve.RandomHex(16, rng)
			if err != nil {
				return nil, err
			}
			rangeID, err := curve.RandomHex(16, rng)
			if err != nil {
				return nil, err
			}
			mg, err := curve.HashToG1(
				[]byte("commitment message generator "+commitID),
				[]byte(curve.CommitmentGeneratorDst))
			if err != nil {
				return nil, err
			}
			bg, err := curve.HashToG1(
				[]byte("commitment blinder generator "+commitID),
				[]byte(curve.CommitmentGeneratorDst))
			if err != nil {
				return nil, err
			}
			predicates = append(predicates,
				&statement.Commitment{
					StatementID:      commitID,
					ReferenceID:      sigID,
					Claim:            idx,
					MessageGenerator: mg,
					BlinderGenerator: bg,
				},
				&statement.Range{
					StatementID: rangeID,
					ReferenceID: commitID,
					SignatureID: sigID,
					Claim:       idx,
					Lower:       r.Lower,
					Upper:       r.Upper,
				})

		case NotRevoked:
			sigID, err := touch(r.IssuerID)
			if err != nil {
				return nil, err
			}
			pub := issuers[r.IssuerID]
			revIdx, ok := pub.Schema.RevocationIndex()
			if !ok {
				return nil, fmt.Errorf("%w: issuer %q schema has no revocation slot", ErrInvalidRequirement, r.IssuerID)
			}
			revID, err := curve.RandomHex(16, rng)
			if err != nil {
				return nil, err
			}
			predicates = append(predicates, &statement.Revocation{
				StatementID:     revID,
				ReferenceID:     sigID,
				Accumulator:     pub.RevocationRegistry,
				VerificationKey: pub.RevocationVerifyingKey,
				Claim:           revIdx,
			})

		case EncryptTo:
			sigID, err := touch(r.IssuerID)
			if err != nil {
				return nil, err
			}
			idx, err := claimIndex(r.IssuerID, r.Label)
			if err != nil {
				return nil, err
			}
			id, err := curve.RandomHex(16, rng)
			if err != nil {
				return nil, err
			}
			mg, err := curve.HashToG1(
				[]byte("verifiable encryption message generator "+id),
				[]byte(curve.CommitmentGeneratorDst))
			if err != nil {
				return nil, err
			}
			if r.Decryptable {
				predicates = append(predicates, &statement.VerifiableEncryptionDecryption{
					StatementID:      id,
					ReferenceID:      sigID,
					Claim:            idx,
					MessageGenerator: mg,
					EncryptionKey:    issuers[r.IssuerID].VerifiableEncryptionKey,
				})
			} else {
				predicates = append(predicates, &statement.VerifiableEncryption{
					StatementID:      id,
					ReferenceID:      sigID,
					Claim:            idx,
					MessageGenerator: mg,
					EncryptionKey:    issuers[r.IssuerID].VerifiableEncryptionKey,
				})
			}

		case Linked:
			if len(r.Claims) < 2 {
				return nil, fmt.Errorf("%w: linked requirement needs at least two claims", ErrInvalidRequirement)
			}
			refs := make(map[string]int, len(r.Claims))
			for _, lc := range r.Claims {
				sigID, err := touch(lc.IssuerID)
				if err != nil {
					return nil, err
				}
				idx, err := claimIndex(lc.IssuerID, lc.Label)
				if err != nil {
					return nil, err
				}
				refs[sigID] = idx
			}
			id, err := curve.RandomHex(16, rng)
			if err != nil {
				return nil, err
			}
			predicates = append(predicates, &statement.Equality{
				StatementID:     id,
				RefIDClaimIndex: refs,
			})

		default:
			return nil, ErrInvalidRequirement
		}
	}

	statements := make([]statement.Statement, 0, len(order)+len(predicates))
	for _, issuerID := range order {
		statements = append(statements, &statement.Signature{
			StatementID: sigIDs[issuerID],
			Disclosed:   disclosed[issuerID],
			Issuer:      issuers[issuerID],
		})
	}
	statements = append(statements, predicates...)
	return presentation.NewSchema(rng, statements...)
}

// SignatureStatementIDs returns the statement id assigned to each
// issuer in a compiled schema, for keying the holder's credentials.
func SignatureStatementIDs(schema *presentation.Schema) map[string]string {
	out := make(map[string]string)
	for _, id := range schema.StatementIDs() {
		if st, ok := schema.Statement(id); ok {
			if sig, ok := st.(*statement.Signature); ok {
				out[sig.Issuer.ID] = sig.StatementID
			}
		}
	}
	return out
}
