// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package revocation

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/accumulator"
)

func TestNewRegistry(t *testing.T) {
	sk, err := accumulator.NewSecretKey(rand.Reader)
	require.NoError(t, err)

	reg, err := New(sk, 5, rand.Reader)
	require.NoError(t, err)
	require.Len(t, reg.Elements, 5)

	// Every member has a verifiable witness.
	pk := sk.PublicKey()
	for id := range reg.Elements {
		element := accumulator.HashToElement([]byte(id))
		w, err := accumulator.NewMembershipWitness(element, reg.Value, sk)
		require.NoError(t, err)
		require.NoError(t, w.Verify(element, pk, reg.Value))
	}
}

func TestRevoke(t *testing.T) {
	sk, err := accumulator.NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	reg, err := New(sk, 4, rand.Reader)
	require.NoError(t, err)

	var victim, survivor string
	for id := range reg.Elements {
		if victim == "" {
			victim = id
		} else if survivor == "" {
			survivor = id
		}
	}

	survivorElement := accumulator.HashToElement([]byte(survivor))
	w, err := accumulator.NewMembershipWitness(survivorElement, reg.Value, sk)
	require.NoError(t, err)

	coefficients, err := reg.Revoke(sk, []string{victim})
	require.NoError(t, err)
	require.False(t, reg.Contains(victim))
	require.Len(t, reg.Elements, 3)

	// The survivor updates with the coefficients and still verifies.
	victimElement := accumulator.HashToElement([]byte(victim))
	updated := w.BatchUpdate(survivorElement, nil, []accumulator.Element{victimElement}, coefficients)
	require.NoError(t, updated.Verify(survivorElement, pk, reg.Value))

	// The victim's stale witness fails against the new value.
	staleUpdate := w.BatchUpdate(victimElement, nil, []accumulator.Element{victimElement}, coefficients)
	require.Error(t, staleUpdate.Verify(victimElement, pk, reg.Value))
}

func TestRevokeAbsentID(t *testing.T) {
	sk, err := accumulator.NewSecretKey(rand.Reader)
	require.NoError(t, err)

	reg, err := New(sk, 2, rand.Reader)
	require.NoError(t, err)

	_, err = reg.Revoke(sk, []string{"deadbeefdeadbeefdeadbeefdeadbeef"})
	require.ErrorIs(t, err, ErrInvalidOperation)
	require.Len(t, reg.Elements, 2)
}

func TestAdd(t *testing.T) {
	sk, err := accumulator.NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	reg, err := New(sk, 2, rand.Reader)
	require.NoError(t, err)

	var existing string
	for id := range reg.Elements {
		existing = id
		break
	}
	existingElement := accumulator.HashToElement([]byte(existing))
	w, err := accumulator.NewMembershipWitness(existingElement, reg.Value, sk)
	require.NoError(t, err)

	ids, coefficients, err := reg.Add(sk, 3, rand.Reader)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	require.Len(t, reg.Elements, 5)

	additions := make([]accumulator.Element, len(ids))
	for i, id := range ids {
		additions[i] = accumulator.HashToElement([]byte(id))
	}
	updated := w.BatchUpdate(existingElement, additions, nil, coefficients)
	require.NoError(t, updated.Verify(existingElement, pk, reg.Value))
}
