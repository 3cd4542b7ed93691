// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package revocation maintains the issuer-side registry of active
// credential identifiers together with the accumulator over them.
package revocation

import (
	"errors"
	"fmt"
	"io"

	"github.com/luxfi/anoncred/accumulator"
	"github.com/luxfi/anoncred/curve"
)

var ErrInvalidOperation = errors.New("revocation: invalid registry operation")

// idLength is the identifier size in bytes before hex encoding.
const idLength = 16

// Registry pairs the accumulator value with the set of active
// identifiers. Not safe for concurrent use; callers serialize access.
type Registry struct {
	// Value is the current accumulator.
	Value accumulator.Accumulator
	// Elements holds the active identifiers.
	Elements map[string]struct{}
}

// New populates a registry with count random identifiers.
func New(sk *accumulator.SecretKey, count int, rng io.Reader) (*Registry, error) {
	ids := make([]string, count)
	elems := make([]accumulator.Element, count)
	elements := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := curve.RandomHex(idLength, rng)
		if err != nil {
			return nil, err
		}
		ids[i] = id
		elems[i] = accumulator.HashToElement([]byte(id))
		elements[id] = struct{}{}
	}
	return &Registry{
		Value:    accumulator.WithElements(sk, elems),
		Elements: elements,
	}, nil
}

// Contains reports whether the identifier is active.
func (r *Registry) Contains(id string) bool {
	_, ok := r.Elements[id]
	return ok
}

// Revoke removes the identifiers, rejecting the whole batch if any is
// absent. The returned coefficients let surviving holders batch-update
// their witnesses.
func (r *Registry) Revoke(sk *accumulator.SecretKey, ids []string) ([]accumulator.Coefficient, error) {
	removals := make([]accumulator.Element, len(ids))
	for i, id := range ids {
		if !r.Contains(id) {
			return nil, fmt.Errorf("%w: identifier %q not in registry", ErrInvalidOperation, id)
		}
		removals[i] = accumulator.HashToElement([]byte(id))
	}
	for _, id := range ids {
		delete(r.Elements, id)
	}
	coefficients := r.Value.UpdateAssign(sk, nil, removals)
	return coefficients, nil
}

// Add mints count fresh identifiers, folds them into the accumulator
// and returns them with the witness-update coefficients.
func (r *Registry) Add(sk *accumulator.SecretKey, count int, rng io.Reader) ([]string, []accumulator.Coefficient, error) {
	ids := make([]string, count)
	additions := make([]accumulator.Element, count)
	for i := 0; i < count; i++ {
		id, err := curve.RandomHex(idLength, rng)
		if err != nil {
			return nil, nil, err
		}
		ids[i] = id
		additions[i] = accumulator.HashToElement([]byte(id))
	}
	coefficients := r.Value.UpdateAssign(sk, additions, nil)
	for _, id := range ids {
		r.Elements[id] = struct{}{}
	}
	return ids, coefficients, nil
}
