// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bbs

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/transcript"
)

// Scheme is the BBS instantiation of the short-group-signature
// capability set.
type Scheme struct{}

func init() { sigcore.Register(Scheme{}) }

// Name returns the scheme identifier.
func (Scheme) Name() string { return SchemeName }

// NewKeys generates a signing key pair for count messages.
func (Scheme) NewKeys(count int, rng io.Reader) (sigcore.PublicKey, sigcore.SecretKey, error) {
	sk, err := NewSecretKey(count, rng)
	if err != nil {
		return nil, nil, err
	}
	return sk.PublicKey(), sk, nil
}

// HashKeys derives a signing key pair deterministically from seed.
func (Scheme) HashKeys(count int, seed []byte) (sigcore.PublicKey, sigcore.SecretKey, error) {
	sk, err := HashSecretKey(count, seed)
	if err != nil {
		return nil, nil, err
	}
	return sk.PublicKey(), sk, nil
}

// Sign signs a message vector.
func (Scheme) Sign(sk sigcore.SecretKey, msgs []fr.Element) (sigcore.Signature, error) {
	key, ok := sk.(*SecretKey)
	if !ok {
		return nil, sigcore.ErrUnknownScheme
	}
	return Sign(key, msgs)
}

// Verify checks a signature.
func (Scheme) Verify(pk sigcore.PublicKey, msgs []fr.Element, sig sigcore.Signature) error {
	key, ok := pk.(*PublicKey)
	if !ok {
		return sigcore.ErrUnknownScheme
	}
	s, ok := sig.(*Signature)
	if !ok {
		return sigcore.ErrUnknownScheme
	}
	return s.Verify(key, msgs)
}

// NewBlindSignatureContext creates the holder's blind-signing request.
func (Scheme) NewBlindSignatureContext(hidden []sigcore.IndexedMessage, pk sigcore.PublicKey, nonce fr.Element, rng io.Reader) (*sigcore.BlindSignatureContext, fr.Element, error) {
	key, ok := pk.(*PublicKey)
	if !ok {
		return nil, fr.Element{}, sigcore.ErrUnknownScheme
	}
	return NewBlindSignatureContext(hidden, key, nonce, rng)
}

// BlindSign verifies the holder's proof against the nonce and issues a
// blind signature over the known messages plus the commitment.
func (Scheme) BlindSign(ctx *sigcore.BlindSignatureContext, sk sigcore.SecretKey, known []sigcore.IndexedMessage, nonce fr.Element) (sigcore.BlindSignature, error) {
	key, ok := sk.(*SecretKey)
	if !ok {
		return nil, sigcore.ErrUnknownScheme
	}
	indices := make([]int, len(known))
	for i, m := range known {
		indices[i] = m.Index
	}
	valid, err := verifyBlindContext(ctx, indices, key, nonce)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, sigcore.ErrInvalidSignatureProof
	}
	return NewBlindSignature(ctx.Commitment, key, known)
}

// CommitSignaturePoK starts a signature proof of knowledge.
func (Scheme) CommitSignaturePoK(sig sigcore.Signature, pk sigcore.PublicKey, msgs []sigcore.ProofMessage, rng io.Reader) (sigcore.PoKCommitment, error) {
	s, ok := sig.(*Signature)
	if !ok {
		return nil, sigcore.ErrUnknownScheme
	}
	key, ok := pk.(*PublicKey)
	if !ok {
		return nil, sigcore.ErrUnknownScheme
	}
	return CommitSignaturePoK(s, key, msgs, rng)
}

// VerifySignaturePoK checks a standalone signature proof of knowledge
// bound to a nonce.
func (Scheme) VerifySignaturePoK(revealed []sigcore.IndexedMessage, pk sigcore.PublicKey, proof sigcore.PoKProof, nonce, challenge fr.Element) error {
	t := transcript.New(pokTranscriptLabel)
	if err := proof.AddProofContribution(pk, revealed, challenge, t); err != nil {
		return err
	}
	t.AppendScalar(sigcore.BlindNonceLabel, &nonce)
	computed := t.ChallengeScalar(pokChallengeLabel)
	if !computed.Equal(&challenge) {
		return sigcore.ErrInvalidSignatureProof
	}
	return proof.Verify(pk, revealed, challenge)
}

// UnmarshalPublicKey decodes a BBS public key.
func (Scheme) UnmarshalPublicKey(data []byte) (sigcore.PublicKey, error) {
	return UnmarshalPublicKey(data)
}

// UnmarshalSecretKey decodes a BBS secret key.
func (Scheme) UnmarshalSecretKey(data []byte) (sigcore.SecretKey, error) {
	return UnmarshalSecretKey(data)
}

// UnmarshalSignature decodes a BBS signature.
func (Scheme) UnmarshalSignature(data []byte) (sigcore.Signature, error) {
	return UnmarshalSignature(data)
}

// UnmarshalPoKProof decodes a BBS proof of knowledge.
func (Scheme) UnmarshalPoKProof(data []byte) (sigcore.PoKProof, error) {
	return UnmarshalPoKProof(data)
}
