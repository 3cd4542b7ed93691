// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sigcore holds the pieces shared by every short-group-signature
// scheme: the per-message disclosure policy, the batched Schnorr
// commitment builders, the blind-signature context, and the scheme
// interface the presentation layer is generic over.
package sigcore

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
)

// ProofMessageKind classifies how a signed message participates in a
// proof of knowledge.
type ProofMessageKind uint8

const (
	// Revealed messages are disclosed to the verifier.
	Revealed ProofMessageKind = iota
	// HiddenProofSpecific messages stay hidden with a blinding factor
	// generated for this proof only.
	HiddenProofSpecific
	// HiddenExternal messages stay hidden but share their blinding
	// factor with another sub-proof (equality, commitment, range,
	// membership, encryption), which binds the same value across
	// statements.
	HiddenExternal
)

// ProofMessage tags a signed message with its disclosure policy.
type ProofMessage struct {
	Kind    ProofMessageKind
	Value   fr.Element
	Blinder fr.Element // set only for HiddenExternal
}

// RevealedMessage tags a message as disclosed.
func RevealedMessage(v fr.Element) ProofMessage {
	return ProofMessage{Kind: Revealed, Value: v}
}

// HiddenMessage tags a message as hidden with proof-specific blinding.
func HiddenMessage(v fr.Element) ProofMessage {
	return ProofMessage{Kind: HiddenProofSpecific, Value: v}
}

// ExternallyBlindedMessage tags a message as hidden with a blinding
// factor supplied by the caller.
func ExternallyBlindedMessage(v, blinder fr.Element) ProofMessage {
	return ProofMessage{Kind: HiddenExternal, Value: v, Blinder: blinder}
}

// IsHidden reports whether the message stays hidden from the verifier.
func (m ProofMessage) IsHidden() bool { return m.Kind != Revealed }

// BlinderOrRandom returns the external blinder for HiddenExternal
// messages and a fresh random blinder for HiddenProofSpecific ones.
func (m ProofMessage) BlinderOrRandom(rng io.Reader) (fr.Element, error) {
	switch m.Kind {
	case HiddenExternal:
		return m.Blinder, nil
	case HiddenProofSpecific:
		return curve.RandomScalar(rng)
	default:
		return fr.Element{}, ErrRevealedMessageBlinder
	}
}

// IndexedMessage pairs a message index with its scalar value.
type IndexedMessage struct {
	Index   int
	Message fr.Element
}
