// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sigcore

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
)

// Transcript labels for the blind signing protocol. Byte-exact wire
// contract shared by both schemes.
const (
	BlindTranscriptLabel     = "new blind signature"
	BlindRandomCommitment    = "random commitment"
	BlindCommitmentLabel     = "blind commitment"
	BlindNonceLabel          = "nonce"
	BlindChallengeLabel      = "blind signature context challenge"
	BlindPublicKeyLabel      = "public key"
	BlindGeneratorLabel      = "generator"
)

// BlindSignatureContext carries the holder's commitment to hidden
// messages together with the proof of knowledge the issuer verifies
// before blind signing.
type BlindSignatureContext struct {
	// Commitment to the hidden messages.
	Commitment bls12381.G1Affine
	// Challenge of the holder's proof of knowledge.
	Challenge fr.Element
	// Proofs are the Schnorr responses for the hidden messages (and,
	// scheme permitting, the blinding factor).
	Proofs []fr.Element
}

// MarshalBinary encodes the context as commitment || challenge || proofs.
func (c *BlindSignatureContext) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, curve.G1Size+curve.ScalarSize*(1+len(c.Proofs)))
	cb := c.Commitment.Bytes()
	out = append(out, cb[:]...)
	ch := c.Challenge.Bytes()
	out = append(out, ch[:]...)
	for i := range c.Proofs {
		p := c.Proofs[i].Bytes()
		out = append(out, p[:]...)
	}
	return out, nil
}

// UnmarshalBinary decodes a context produced by MarshalBinary.
func (c *BlindSignatureContext) UnmarshalBinary(data []byte) error {
	if len(data) < curve.G1Size+curve.ScalarSize {
		return fmt.Errorf("%w: blind context too short", ErrInvalidSignatureProof)
	}
	if (len(data)-curve.G1Size)%curve.ScalarSize != 0 {
		return fmt.Errorf("%w: blind context truncated", ErrInvalidSignatureProof)
	}
	commitment, err := curve.G1FromBytes(data[:curve.G1Size])
	if err != nil {
		return err
	}
	offset := curve.G1Size
	challenge, err := curve.ScalarFromBytes(data[offset : offset+curve.ScalarSize])
	if err != nil {
		return err
	}
	offset += curve.ScalarSize
	count := (len(data) - offset) / curve.ScalarSize
	proofs := make([]fr.Element, count)
	for i := 0; i < count; i++ {
		proofs[i], err = curve.ScalarFromBytes(data[offset : offset+curve.ScalarSize])
		if err != nil {
			return err
		}
		offset += curve.ScalarSize
	}
	c.Commitment = commitment
	c.Challenge = challenge
	c.Proofs = proofs
	return nil
}
