// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bbs

import (
	"crypto/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/transcript"
)

func randomMessages(t *testing.T, n int) []fr.Element {
	t.Helper()
	msgs := make([]fr.Element, n)
	for i := range msgs {
		m, err := curve.RandomScalar(rand.Reader)
		require.NoError(t, err)
		msgs[i] = m
	}
	return msgs
}

func TestSignVerifyRoundTrip(t *testing.T) {
	for _, n := range []int{1, 4, 16} {
		sk, err := NewSecretKey(n, rand.Reader)
		require.NoError(t, err)
		pk := sk.PublicKey().(*PublicKey)

		msgs := randomMessages(t, n)
		sig, err := Sign(sk, msgs)
		require.NoError(t, err)
		require.NoError(t, sig.Verify(pk, msgs))

		msgs[n-1].Add(&msgs[n-1], &msgs[n-1])
		require.Error(t, sig.Verify(pk, msgs))
	}
}

func TestGeneratorsDeterministic(t *testing.T) {
	sk, err := HashSecretKey(4, []byte("seed"))
	require.NoError(t, err)
	a := sk.PublicKey().(*PublicKey)
	b := sk.PublicKey().(*PublicKey)
	require.Len(t, a.Y, 4)
	for i := range a.Y {
		require.True(t, a.Y[i].Equal(&b.Y[i]))
	}
}

func TestPublicKeyRoundTripRederivesGenerators(t *testing.T) {
	sk, err := NewSecretKey(3, rand.Reader)
	require.NoError(t, err)
	pk := sk.PublicKey().(*PublicKey)

	raw, err := pk.MarshalBinary()
	require.NoError(t, err)
	back, err := UnmarshalPublicKey(raw)
	require.NoError(t, err)
	require.True(t, pk.W.Equal(&back.W))
	require.Len(t, back.Y, 3)
	for i := range pk.Y {
		require.True(t, pk.Y[i].Equal(&back.Y[i]))
	}
}

func TestBlindSignFlow(t *testing.T) {
	var scheme Scheme
	pk, sk, err := scheme.NewKeys(4, rand.Reader)
	require.NoError(t, err)

	nonce, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	all := randomMessages(t, 4)
	hidden := []sigcore.IndexedMessage{{Index: 0, Message: all[0]}}
	known := []sigcore.IndexedMessage{
		{Index: 1, Message: all[1]},
		{Index: 2, Message: all[2]},
		{Index: 3, Message: all[3]},
	}

	ctx, blinder, err := scheme.NewBlindSignatureContext(hidden, pk, nonce, rand.Reader)
	require.NoError(t, err)
	require.True(t, blinder.IsZero())

	blind, err := scheme.BlindSign(ctx, sk, known, nonce)
	require.NoError(t, err)
	sig := blind.ToUnblinded(blinder).(*Signature)

	// The unblinded signature covers the full ordered message vector.
	// Blind signing commits to hidden message 0 against Y[0], so the
	// complete vector verifies.
	require.NoError(t, sig.Verify(pk.(*PublicKey), all))
}

func TestSignaturePoKFlow(t *testing.T) {
	var scheme Scheme
	pk, sk, err := scheme.NewKeys(4, rand.Reader)
	require.NoError(t, err)

	msgs := randomMessages(t, 4)
	sig, err := scheme.Sign(sk, msgs)
	require.NoError(t, err)

	proofMsgs := []sigcore.ProofMessage{
		sigcore.HiddenMessage(msgs[0]),
		sigcore.HiddenMessage(msgs[1]),
		sigcore.RevealedMessage(msgs[2]),
		sigcore.RevealedMessage(msgs[3]),
	}
	pok, err := scheme.CommitSignaturePoK(sig, pk, proofMsgs, rand.Reader)
	require.NoError(t, err)

	nonce, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	tr := transcript.New(pokTranscriptLabel)
	require.NoError(t, pok.AddProofContribution(tr))
	tr.AppendScalar(sigcore.BlindNonceLabel, &nonce)
	challenge := tr.ChallengeScalar(pokChallengeLabel)

	proof, err := pok.GenerateProof(challenge)
	require.NoError(t, err)

	revealed := []sigcore.IndexedMessage{
		{Index: 2, Message: msgs[2]},
		{Index: 3, Message: msgs[3]},
	}
	require.NoError(t, scheme.VerifySignaturePoK(revealed, pk, proof, nonce, challenge))
}

func TestSignaturePoKRejectsTamperedResponses(t *testing.T) {
	var scheme Scheme
	pk, sk, err := scheme.NewKeys(2, rand.Reader)
	require.NoError(t, err)

	msgs := randomMessages(t, 2)
	sig, err := scheme.Sign(sk, msgs)
	require.NoError(t, err)

	proofMsgs := []sigcore.ProofMessage{
		sigcore.HiddenMessage(msgs[0]),
		sigcore.RevealedMessage(msgs[1]),
	}
	pok, err := scheme.CommitSignaturePoK(sig, pk, proofMsgs, rand.Reader)
	require.NoError(t, err)

	nonce, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	tr := transcript.New(pokTranscriptLabel)
	require.NoError(t, pok.AddProofContribution(tr))
	tr.AppendScalar(sigcore.BlindNonceLabel, &nonce)
	challenge := tr.ChallengeScalar(pokChallengeLabel)

	proof, err := pok.GenerateProof(challenge)
	require.NoError(t, err)

	bad := proof.(*PoKSignatureProof)
	bad.Proofs[0].Add(&bad.Proofs[0], &bad.Proofs[0])
	err = bad.Verify(pk, []sigcore.IndexedMessage{{Index: 1, Message: msgs[1]}}, challenge)
	require.Error(t, err)
}

func TestSignatureSerialization(t *testing.T) {
	sk, err := NewSecretKey(2, rand.Reader)
	require.NoError(t, err)
	msgs := randomMessages(t, 2)
	sig, err := Sign(sk, msgs)
	require.NoError(t, err)

	raw, err := sig.MarshalBinary()
	require.NoError(t, err)
	back, err := UnmarshalSignature(raw)
	require.NoError(t, err)
	require.True(t, sig.A.Equal(&back.A))
	require.True(t, sig.E.Equal(&back.E))
}
