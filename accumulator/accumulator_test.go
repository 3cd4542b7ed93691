// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accumulator

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/transcript"
)

func hashedElements(n int) []Element {
	out := make([]Element, n)
	for i := range out {
		out[i] = HashToElement([]byte(fmt.Sprintf("%d", i+1)))
	}
	return out
}

func TestMembershipWitnessVerify(t *testing.T) {
	sk, err := NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	elements := hashedElements(5)
	acc := WithElements(sk, elements)

	w, err := NewMembershipWitness(elements[2], acc, sk)
	require.NoError(t, err)
	require.NoError(t, w.Verify(elements[2], pk, acc))

	// A non-member's witness does not verify.
	outsider := HashToElement([]byte("outsider"))
	require.Error(t, w.Verify(outsider, pk, acc))
}

func TestAddRemoveAssign(t *testing.T) {
	sk, err := NewSecretKey(rand.Reader)
	require.NoError(t, err)

	elements := hashedElements(3)
	acc := WithElements(sk, elements)

	extra := HashToElement([]byte("extra"))
	acc.AddAssign(sk, extra)
	expanded := WithElements(sk, append(append([]Element{}, elements...), extra))
	require.True(t, acc.V.Equal(&expanded.V))

	acc.RemoveAssign(sk, extra)
	original := WithElements(sk, elements)
	require.True(t, acc.V.Equal(&original.V))
}

// Scenario: accumulator over hash("1")..hash("5"), add hash("6"); the
// holder of hash("3") updates with the returned coefficients and the
// witness still verifies.
func TestBatchUpdateWitnessSurvivesAddition(t *testing.T) {
	sk, err := NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	elements := hashedElements(5)
	acc := WithElements(sk, elements)

	holder := elements[2]
	w, err := NewMembershipWitness(holder, acc, sk)
	require.NoError(t, err)
	require.NoError(t, w.Verify(holder, pk, acc))

	additions := []Element{HashToElement([]byte("6"))}
	coefficients := acc.UpdateAssign(sk, additions, nil)

	updated := w.BatchUpdate(holder, additions, nil, coefficients)
	require.NoError(t, updated.Verify(holder, pk, acc))

	// The stale witness no longer verifies against the new value.
	require.Error(t, w.Verify(holder, pk, acc))
}

func TestBatchUpdateAfterRemoval(t *testing.T) {
	sk, err := NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	elements := hashedElements(5)
	acc := WithElements(sk, elements)

	holder := elements[0]
	w, err := NewMembershipWitness(holder, acc, sk)
	require.NoError(t, err)

	removals := []Element{elements[4]}
	coefficients := acc.UpdateAssign(sk, nil, removals)

	updated := w.BatchUpdate(holder, nil, removals, coefficients)
	require.NoError(t, updated.Verify(holder, pk, acc))
}

// A removed holder's batch update silently returns the unchanged
// witness; the failure surfaces at verification.
func TestBatchUpdateRemovedElementUnchanged(t *testing.T) {
	sk, err := NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	elements := hashedElements(5)
	acc := WithElements(sk, elements)

	revoked := elements[1]
	w, err := NewMembershipWitness(revoked, acc, sk)
	require.NoError(t, err)

	removals := []Element{revoked}
	coefficients := acc.UpdateAssign(sk, nil, removals)

	updated := w.BatchUpdate(revoked, nil, removals, coefficients)
	require.True(t, updated.C.Equal(&w.C))
	require.Error(t, updated.Verify(revoked, pk, acc))
}

func TestMembershipProofChallengeReplay(t *testing.T) {
	sk, err := NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	y := HashToElement([]byte("basic_membership_proof"))
	acc := WithElements(sk, []Element{y})
	params, err := NewProofParams(pk, nil)
	require.NoError(t, err)

	w, err := NewMembershipWitness(y, acc, sk)
	require.NoError(t, err)

	committing, err := NewMembershipProofCommitting(
		sigcore.HiddenMessage(y), w, params, pk, rand.Reader)
	require.NoError(t, err)

	tr := transcript.New("basic membership proof")
	params.AddToTranscript(tr)
	committing.GetBytesForChallenge(tr)
	challenge := tr.ChallengeScalar("challenge bytes")

	proof := committing.GenProof(challenge)
	final, err := proof.Finalize(acc, params, pk, challenge)
	require.NoError(t, err)

	tr2 := transcript.New("basic membership proof")
	params.AddToTranscript(tr2)
	final.GetBytesForChallenge(tr2)
	challenge2 := tr2.ChallengeScalar("challenge bytes")

	require.True(t, challenge.Equal(&challenge2))
}

// A proof created against one accumulator state must not replay against
// a grown accumulator.
func TestMembershipProofStaleAccumulator(t *testing.T) {
	sk, err := NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	elements := hashedElements(5)
	acc := WithElements(sk, elements)
	params, err := NewProofParams(pk, nil)
	require.NoError(t, err)

	w, err := NewMembershipWitness(elements[0], acc, sk)
	require.NoError(t, err)

	committing, err := NewMembershipProofCommitting(
		sigcore.HiddenMessage(elements[0]), w, params, pk, rand.Reader)
	require.NoError(t, err)

	tr := transcript.New("growing accumulator")
	committing.GetBytesForChallenge(tr)
	challenge := tr.ChallengeScalar("challenge bytes")
	proof := committing.GenProof(challenge)

	acc.AddAssign(sk, HashToElement([]byte("6")))

	final, err := proof.Finalize(acc, params, pk, challenge)
	require.NoError(t, err)
	tr2 := transcript.New("growing accumulator")
	final.GetBytesForChallenge(tr2)
	challenge2 := tr2.ChallengeScalar("challenge bytes")

	require.False(t, challenge.Equal(&challenge2))
}

// Scenario: non-membership for hash("xyz") against {hash("1")..hash("5")}
// verifies; witness construction for a member fails.
func TestNonMembershipProof(t *testing.T) {
	sk, err := NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	elements := hashedElements(5)
	acc := WithElements(sk, elements)
	params, err := NewProofParams(pk, nil)
	require.NoError(t, err)

	y := HashToElement([]byte("xyz"))
	w, err := NewNonMembershipWitness(y, elements, sk)
	require.NoError(t, err)
	require.NoError(t, w.Verify(y, pk, acc))

	committing, err := NewNonMembershipProofCommitting(y, w, params, pk, nil, rand.Reader)
	require.NoError(t, err)

	tr := transcript.New("basic nonmembership proof")
	committing.GetBytesForChallenge(acc, tr)
	challenge := tr.ChallengeScalar("challenge bytes")

	proof := committing.GenProof(challenge)
	final, err := proof.Finalize(acc, params, pk, challenge)
	require.NoError(t, err)

	tr2 := transcript.New("basic nonmembership proof")
	final.GetBytesForChallenge(acc, tr2)
	challenge2 := tr2.ChallengeScalar("challenge bytes")
	require.True(t, challenge.Equal(&challenge2))

	// Member elements cannot produce a non-membership witness.
	_, err = NewNonMembershipWitness(elements[3], elements, sk)
	require.ErrorIs(t, err, ErrMemberElement)
}

func TestProofParamsDeterministic(t *testing.T) {
	sk, err := NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	a, err := NewProofParams(pk, []byte("nonce"))
	require.NoError(t, err)
	b, err := NewProofParams(pk, []byte("nonce"))
	require.NoError(t, err)
	require.True(t, a.X.Equal(&b.X))
	require.True(t, a.Y.Equal(&b.Y))
	require.True(t, a.Z.Equal(&b.Z))
	require.True(t, a.K.Equal(&b.K))

	c, err := NewProofParams(pk, []byte("other"))
	require.NoError(t, err)
	require.False(t, a.X.Equal(&c.X))
}

func TestMembershipProofSerialization(t *testing.T) {
	sk, err := NewSecretKey(rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey()

	y := HashToElement([]byte("serialize"))
	acc := WithElements(sk, []Element{y})
	params, err := NewProofParams(pk, nil)
	require.NoError(t, err)
	w, err := NewMembershipWitness(y, acc, sk)
	require.NoError(t, err)

	committing, err := NewMembershipProofCommitting(
		sigcore.HiddenMessage(y), w, params, pk, rand.Reader)
	require.NoError(t, err)
	challenge, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	proof := committing.GenProof(challenge)

	raw, err := proof.MarshalBinary()
	require.NoError(t, err)
	var back MembershipProof
	require.NoError(t, back.UnmarshalBinary(raw))
	require.True(t, proof.EC.Equal(&back.EC))
	require.True(t, proof.SY.Equal(&back.SY))
}
