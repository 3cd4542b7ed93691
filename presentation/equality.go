// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/statement"
	"github.com/luxfi/anoncred/transcript"
)

// equalityBuilder validates at build time that all referenced hidden
// claims carry one value. The proof part itself is empty: the equality
// is enforced by the shared external blinder, which makes the Schnorr
// responses for the linked claims identical across signature proofs.
type equalityBuilder struct {
	statement *statement.Equality
}

func newEqualityBuilder(st *statement.Equality, credentials map[string]ProofCredential) (*equalityBuilder, error) {
	if err := equalityClaims(st, credentials); err != nil {
		return nil, err
	}
	return &equalityBuilder{statement: st}, nil
}

// GenProof emits the empty proof part.
func (b *equalityBuilder) GenProof(fr.Element) (Proof, error) {
	return &EqualityProof{ID: b.statement.StatementID}, nil
}

// EqualityProof is the (empty) equality proof part.
type EqualityProof struct {
	ID string
}

// StatementID returns the statement id.
func (p *EqualityProof) StatementID() string { return p.ID }

// Kind returns the proof type tag.
func (p *EqualityProof) Kind() string { return "equality" }

// equalityVerifier checks that the hidden-message responses of every
// referenced signature proof agree.
type equalityVerifier struct {
	statement *statement.Equality
	// responses holds the referenced signature PoK responses, one per
	// referenced statement, in ReferenceIDs order.
	responses []fr.Element
}

func (v *equalityVerifier) AddChallengeContribution(fr.Element, *transcript.Transcript) error {
	return nil
}

func (v *equalityVerifier) Verify(fr.Element) error {
	if len(v.responses) < 2 {
		return statementError(ErrInvalidPresentationData, v.statement.StatementID,
			"equality needs at least two references")
	}
	first := v.responses[0]
	for i := 1; i < len(v.responses); i++ {
		if !first.Equal(&v.responses[i]) {
			return statementError(ErrInvalidPresentationData, v.statement.StatementID,
				"linked claim responses differ")
		}
	}
	return nil
}
