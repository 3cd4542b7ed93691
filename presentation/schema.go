// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package presentation assembles per-statement sub-provers into one
// Fiat-Shamir-challenged transcript producing a single aggregate proof,
// and mirrors the process on the verifier side.
package presentation

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/statement"
	"github.com/luxfi/anoncred/transcript"
)

var (
	ErrInvalidPresentationData = errors.New("presentation: invalid presentation data")
	ErrChallengeMismatch       = errors.New("presentation: challenge mismatch")
)

// logger is a nop unless the embedding application injects one.
var logger = zap.NewNop()

// SetLogger installs a logger for composer debug output.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Schema is the verifier's description of the proofs to create: an
// insertion-ordered set of statements with unique ids. Order is part of
// the wire format; prover and verifier walk it identically.
type Schema struct {
	// ID is the presentation context id (16-byte lower hex).
	ID string

	statements map[string]statement.Statement
	order      []string
}

// NewSchema builds a schema over the statements with a random context
// id.
func NewSchema(rng io.Reader, statements ...statement.Statement) (*Schema, error) {
	id, err := curve.RandomHex(16, rng)
	if err != nil {
		return nil, err
	}
	return NewSchemaWithID(id, statements...)
}

// NewSchemaWithID builds a schema with a fixed context id.
func NewSchemaWithID(id string, statements ...statement.Statement) (*Schema, error) {
	s := &Schema{ID: id, statements: make(map[string]statement.Statement, len(statements))}
	for _, st := range statements {
		if err := s.add(st); err != nil {
			return nil, err
		}
	}
	if err := s.checkReferences(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) add(st statement.Statement) error {
	if _, dup := s.statements[st.ID()]; dup {
		return fmt.Errorf("%w: duplicate statement id %q", ErrInvalidPresentationData, st.ID())
	}
	s.statements[st.ID()] = st
	s.order = append(s.order, st.ID())
	return nil
}

func (s *Schema) checkReferences() error {
	for _, id := range s.order {
		for _, ref := range s.statements[id].ReferenceIDs() {
			if _, ok := s.statements[ref]; !ok {
				return fmt.Errorf("%w: statement %q references unknown statement %q",
					statement.ErrMissingReference, id, ref)
			}
		}
	}
	return nil
}

// Statement resolves a statement by id.
func (s *Schema) Statement(id string) (statement.Statement, bool) {
	st, ok := s.statements[id]
	return st, ok
}

// StatementIDs returns the statement ids in insertion order.
func (s *Schema) StatementIDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// AddChallengeContribution absorbs the schema in insertion order.
func (s *Schema) AddChallengeContribution(t *transcript.Transcript) {
	t.AppendMessage("presentation schema id", []byte(s.ID))
	for _, id := range s.order {
		s.statements[id].AddChallengeContribution(t)
	}
}

// split partitions the statements into signature statements and
// predicate statements, both in schema insertion order.
func (s *Schema) split() (signatures []*statement.Signature, predicates []statement.Statement) {
	for _, id := range s.order {
		if sig, ok := s.statements[id].(*statement.Signature); ok {
			signatures = append(signatures, sig)
		} else {
			predicates = append(predicates, s.statements[id])
		}
	}
	return signatures, predicates
}
