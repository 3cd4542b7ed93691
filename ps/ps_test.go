// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ps

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

		// Any mutated message must fail.
		msgs[0].Add(&msgs[0], &msgs[0])
		require.Error(t, sig.Verify(pk, msgs))
	}
}

func TestKeyGenerationBounds(t *testing.T) {
	_, err := NewSecretKey(0, rand.Reader)
	require.Error(t, err)
	_, err = NewSecretKey(sigcore.MaxMessages+1, rand.Reader)
	require.Error(t, err)

	sk, err := NewSecretKey(sigcore.MaxMessages, rand.Reader)
	require.NoError(t, err)
	require.Equal(t, sigcore.MaxMessages, sk.MaxMessages())
}

func TestHashKeysDeterministic(t *testing.T) {
	a, err := HashSecretKey(4, []byte("issuer seed"))
	require.NoError(t, err)
	b, err := HashSecretKey(4, []byte("issuer seed"))
	require.NoError(t, err)
	require.True(t, a.X.Equal(&b.X))
	require.True(t, a.W.Equal(&b.W))

	c, err := HashSecretKey(4, []byte("other seed"))
	require.NoError(t, err)
	require.False(t, a.X.Equal(&c.X))
}

func TestBlindSignUnblindCommutes(t *testing.T) {
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

	blind, err := scheme.BlindSign(ctx, sk, known, nonce)
	require.NoError(t, err)

	sig := blind.ToUnblinded(blinder)
	require.NoError(t, scheme.Verify(pk, all, sig))
}

func TestBlindSignRejectsWrongNonce(t *testing.T) {
	var scheme Scheme
	pk, sk, err := scheme.NewKeys(2, rand.Reader)
	require.NoError(t, err)

	nonce, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)
	wrong, err := curve.RandomScalar(rand.Reader)
	require.NoError(t, err)

	all := randomMessages(t, 2)
	ctx, _, err := scheme.NewBlindSignatureContext(
		[]sigcore.IndexedMessage{{Index: 0, Message: all[0]}}, pk, nonce, rand.Reader)
	require.NoError(t, err)

	_, err = scheme.BlindSign(ctx, sk, []sigcore.IndexedMessage{{Index: 1, Message: all[1]}}, wrong)
	require.Error(t, err)
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

	// Hidden message responses exist exactly for the hidden indices.
	hidden, err := proof.HiddenMessageProofs(pk, revealed)
	require.NoError(t, err)
	require.Len(t, hidden, 2)
	require.Contains(t, hidden, 0)
	require.Contains(t, hidden, 1)
}

func TestSignaturePoKRejectsWrongRevealed(t *testing.T) {
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

	var bogus fr.Element
	bogus.SetUint64(42)
	err = scheme.VerifySignaturePoK(
		[]sigcore.IndexedMessage{{Index: 1, Message: bogus}}, pk, proof, nonce, challenge)
	require.Error(t, err)
}

func TestSignatureSerialization(t *testing.T) {
	sk, err := NewSecretKey(3, rand.Reader)
	require.NoError(t, err)
	msgs := randomMessages(t, 3)
	sig, err := Sign(sk, msgs)
	require.NoError(t, err)

	raw, err := sig.MarshalBinary()
	require.NoError(t, err)
	back, err := UnmarshalSignature(raw)
	require.NoError(t, err)
	require.True(t, sig.Sigma1.Equal(&back.Sigma1))
	require.True(t, sig.Sigma2.Equal(&back.Sigma2))
	require.True(t, sig.MTick.Equal(&back.MTick))

	pk := sk.PublicKey().(*PublicKey)
	pkRaw, err := pk.MarshalBinary()
	require.NoError(t, err)
	pkBack, err := UnmarshalPublicKey(pkRaw)
	require.NoError(t, err)
	require.NoError(t, back.Verify(pkBack, msgs))
}
