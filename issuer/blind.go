// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package issuer

import (
	"fmt"
	"io"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/accumulator"
	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/credential"
	"github.com/luxfi/anoncred/sigcore"
)

// BlindCredentialRequest is what the holder sends the issuer: the
// commitment context plus the labels kept hidden.
type BlindCredentialRequest struct {
	Context      *sigcore.BlindSignatureContext
	HiddenLabels []string
}

// BlindCredential is an issued blind credential: the issuer's known
// claims keyed by label plus the blind signature.
type BlindCredential struct {
	Claims           map[string]claims.ClaimData
	Signature        sigcore.BlindSignature
	RevocationHandle accumulator.MembershipWitness
	RevocationLabel  string
}

// BlindCredentialBundle pairs a blind credential with its issuer.
type BlindCredentialBundle struct {
	Issuer     *Public
	Credential *BlindCredential
}

// RequestBlindSignature builds the holder-side commitment to the hidden
// claims. Every hidden label must be blindable in the schema.
func RequestBlindSignature(hidden map[string]claims.ClaimData, pub *Public, nonce fr.Element, rng io.Reader) (*BlindCredentialRequest, fr.Element, error) {
	var zero fr.Element
	scheme, err := pub.Scheme()
	if err != nil {
		return nil, zero, err
	}

	labels := make([]string, 0, len(hidden))
	for label := range hidden {
		if !pub.Schema.IsBlindable(label) {
			return nil, zero, fmt.Errorf("%w: claim %q is not blindable", claims.ErrInvalidClaimData, label)
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)

	messages := make([]sigcore.IndexedMessage, 0, len(labels))
	for _, label := range labels {
		idx, ok := pub.Schema.ClaimIndex(label)
		if !ok {
			return nil, zero, fmt.Errorf("%w: claim %q not in schema", claims.ErrInvalidClaimData, label)
		}
		messages = append(messages, sigcore.IndexedMessage{Index: idx, Message: hidden[label].ToScalar()})
	}

	ctx, blinder, err := scheme.NewBlindSignatureContext(messages, pub.VerifyingKey, nonce, rng)
	if err != nil {
		return nil, zero, err
	}
	return &BlindCredentialRequest{Context: ctx, HiddenLabels: labels}, blinder, nil
}

// BlindSignCredential verifies the request against the nonce and signs
// the known claims plus the hidden commitment. The revocation claim
// must be among the known claims.
func (i *Issuer) BlindSignCredential(request *BlindCredentialRequest, known map[string]claims.ClaimData, nonce fr.Element) (*BlindCredentialBundle, error) {
	hiddenSet := make(map[string]bool, len(request.HiddenLabels))
	for _, label := range request.HiddenLabels {
		hiddenSet[label] = true
	}
	if len(known)+len(request.HiddenLabels) != len(i.Schema.Claims) {
		return nil, fmt.Errorf("%w: hidden + known claims != schema claims", claims.ErrInvalidClaimData)
	}

	revIndex, _ := i.Schema.RevocationIndex()
	revLabel, _ := i.Schema.ClaimLabel(revIndex)
	revClaim, ok := known[revLabel].(claims.RevocationClaim)
	if !ok {
		return nil, fmt.Errorf("%w: revocation claim must be known to the issuer", claims.ErrInvalidClaimData)
	}
	if !i.RevocationRegistry.Contains(revClaim.Value) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRevocationID, revClaim.Value)
	}

	knownMessages := make([]sigcore.IndexedMessage, 0, len(known))
	for label, claim := range known {
		if hiddenSet[label] {
			return nil, fmt.Errorf("%w: claim %q both hidden and known", claims.ErrInvalidClaimData, label)
		}
		idx, ok := i.Schema.ClaimIndex(label)
		if !ok {
			return nil, fmt.Errorf("%w: claim %q not in schema", claims.ErrInvalidClaimData, label)
		}
		if !i.Schema.Claims[idx].IsType(claim) {
			return nil, fmt.Errorf("%w: claim %q has wrong type", claims.ErrInvalidClaimData, label)
		}
		knownMessages = append(knownMessages, sigcore.IndexedMessage{Index: idx, Message: claim.ToScalar()})
	}
	sort.Slice(knownMessages, func(a, b int) bool { return knownMessages[a].Index < knownMessages[b].Index })

	element := accumulator.HashToElement([]byte(revClaim.Value))
	witness, err := accumulator.NewMembershipWitness(element, i.RevocationRegistry.Value, i.RevocationKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}

	blindSig, err := i.scheme.BlindSign(request.Context, i.SigningKey, knownMessages, nonce)
	if err != nil {
		return nil, err
	}

	knownCopy := make(map[string]claims.ClaimData, len(known))
	for label, claim := range known {
		knownCopy[label] = claim
	}
	return &BlindCredentialBundle{
		Issuer: i.Public(),
		Credential: &BlindCredential{
			Claims:           knownCopy,
			Signature:        blindSig,
			RevocationHandle: witness,
			RevocationLabel:  revLabel,
		},
	}, nil
}

// ToUnblinded reassembles the full claim vector in schema order and
// unblinds the signature.
func (b *BlindCredentialBundle) ToUnblinded(blindClaims map[string]claims.ClaimData, blinder fr.Element) (*CredentialBundle, error) {
	for label := range blindClaims {
		if !b.Issuer.Schema.IsBlindable(label) {
			return nil, fmt.Errorf("%w: claim %q is not blindable", claims.ErrInvalidClaimData, label)
		}
		if _, dup := b.Credential.Claims[label]; dup {
			return nil, fmt.Errorf("%w: duplicate claim %q", claims.ErrInvalidClaimData, label)
		}
	}

	combined := make(map[string]claims.ClaimData, len(blindClaims)+len(b.Credential.Claims))
	for label, claim := range b.Credential.Claims {
		combined[label] = claim
	}
	for label, claim := range blindClaims {
		combined[label] = claim
	}

	ordered := make([]claims.ClaimData, 0, len(b.Issuer.Schema.Claims))
	for _, slot := range b.Issuer.Schema.Claims {
		claim, ok := combined[slot.Label]
		if !ok {
			return nil, fmt.Errorf("%w: claim %q missing", claims.ErrInvalidClaimData, slot.Label)
		}
		ordered = append(ordered, claim)
	}

	revIndex, ok := b.Issuer.Schema.ClaimIndex(b.Credential.RevocationLabel)
	if !ok {
		return nil, fmt.Errorf("%w: revocation label %q not in schema", claims.ErrInvalidClaimData, b.Credential.RevocationLabel)
	}

	return &CredentialBundle{
		Issuer: b.Issuer,
		Credential: &credential.Credential{
			Claims:           ordered,
			Signature:        b.Credential.Signature.ToUnblinded(blinder),
			RevocationHandle: b.Credential.RevocationHandle,
			RevocationIndex:  revIndex,
		},
	}, nil
}
