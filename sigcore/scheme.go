// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sigcore

import (
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/transcript"
)

// MaxMessages is the largest attribute vector any scheme signs.
const MaxMessages = 128

var (
	ErrInvalidKeyGeneration    = errors.New("sigcore: invalid key generation")
	ErrInvalidSigningOperation = errors.New("sigcore: invalid signing operation")
	ErrInvalidSignatureProof   = errors.New("sigcore: invalid signature proof data")
	ErrMismatchedSecretCount   = errors.New("sigcore: blinder and secret counts differ")
	ErrRevealedMessageBlinder  = errors.New("sigcore: revealed messages have no blinder")
	ErrUnknownScheme           = errors.New("sigcore: unknown signature scheme")
)

// PublicKey is a verification key for one scheme.
type PublicKey interface {
	Scheme() string
	MaxMessages() int
	Validate() error
	MarshalBinary() ([]byte, error)
}

// SecretKey is a signing key for one scheme.
type SecretKey interface {
	Scheme() string
	MaxMessages() int
	PublicKey() PublicKey
	Zeroize()
	MarshalBinary() ([]byte, error)
}

// Signature is a short group signature over a message vector.
type Signature interface {
	Scheme() string
	MarshalBinary() ([]byte, error)
}

// BlindSignature is a signature over a partially committed message
// vector; ToUnblinded removes the holder's blinding factor.
type BlindSignature interface {
	Scheme() string
	ToUnblinded(blinder fr.Element) Signature
}

// PoKCommitment is the prover half of a signature proof of knowledge
// before the Fiat-Shamir challenge: absorb the commitment into the
// transcript, then finalize with the challenge.
type PoKCommitment interface {
	AddProofContribution(t *transcript.Transcript) error
	GenerateProof(challenge fr.Element) (PoKProof, error)
}

// PoKProof is a finalized signature proof of knowledge.
type PoKProof interface {
	Scheme() string
	// AddProofContribution replays the Schnorr commitments from the
	// responses and the challenge so the verifier's transcript matches
	// the prover's.
	AddProofContribution(pk PublicKey, revealed []IndexedMessage, challenge fr.Element, t *transcript.Transcript) error
	// Verify performs the pairing (and algebraic) checks.
	Verify(pk PublicKey, revealed []IndexedMessage, challenge fr.Element) error
	// HiddenMessageProofs returns the Schnorr response for every hidden
	// message index.
	HiddenMessageProofs(pk PublicKey, revealed []IndexedMessage) (map[int]fr.Element, error)
	MarshalBinary() ([]byte, error)
}

// Scheme is the capability set of a short-group-signature scheme. The
// presentation composer is generic over this interface and selects a
// concrete scheme at presentation-schema construction time.
type Scheme interface {
	Name() string
	NewKeys(count int, rng io.Reader) (PublicKey, SecretKey, error)
	HashKeys(count int, seed []byte) (PublicKey, SecretKey, error)
	Sign(sk SecretKey, msgs []fr.Element) (Signature, error)
	Verify(pk PublicKey, msgs []fr.Element, sig Signature) error
	NewBlindSignatureContext(hidden []IndexedMessage, pk PublicKey, nonce fr.Element, rng io.Reader) (*BlindSignatureContext, fr.Element, error)
	BlindSign(ctx *BlindSignatureContext, sk SecretKey, known []IndexedMessage, nonce fr.Element) (BlindSignature, error)
	CommitSignaturePoK(sig Signature, pk PublicKey, msgs []ProofMessage, rng io.Reader) (PoKCommitment, error)
	VerifySignaturePoK(revealed []IndexedMessage, pk PublicKey, proof PoKProof, nonce, challenge fr.Element) error
	UnmarshalPublicKey(data []byte) (PublicKey, error)
	UnmarshalSecretKey(data []byte) (SecretKey, error)
	UnmarshalSignature(data []byte) (Signature, error)
	UnmarshalPoKProof(data []byte) (PoKProof, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Scheme{}
)

// Register makes a scheme available for lookup by name. Schemes register
// themselves from init.
func Register(s Scheme) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Name()] = s
}

// SchemeByName resolves a registered scheme.
func SchemeByName(name string) (Scheme, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	if !ok {
		return nil, ErrUnknownScheme
	}
	return s, nil
}

// SortedRevealed returns the revealed messages ordered by index, the
// canonical order for transcripts and hidden-index skipping.
func SortedRevealed(revealed []IndexedMessage) []IndexedMessage {
	out := make([]IndexedMessage, len(revealed))
	copy(out, revealed)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
