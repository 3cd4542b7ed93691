// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package statement defines the building blocks of a presentation
// schema. Statements reference each other by id (range -> commitment ->
// signature, revocation -> signature, equality -> many signatures) and
// contribute their public parameters to the Fiat-Shamir transcript with
// byte-exact labels.
package statement

import (
	"errors"
	"sort"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/luxfi/anoncred/accumulator"
	"github.com/luxfi/anoncred/issuer"
	"github.com/luxfi/anoncred/transcript"
)

var ErrMissingReference = errors.New("statement: missing statement reference")

// Statement is one requirement inside a presentation schema.
type Statement interface {
	// ID returns the statement's unique identifier.
	ID() string
	// ReferenceIDs lists the statements this one depends on.
	ReferenceIDs() []string
	// AddChallengeContribution absorbs the public statement data.
	AddChallengeContribution(t *transcript.Transcript)
	// ClaimIndex returns the claim slot this statement refers to in
	// the given referenced statement.
	ClaimIndex(referenceID string) int
}

// Signature requires a credential signed by the given issuer and
// discloses the labelled claims.
type Signature struct {
	StatementID string
	// Disclosed holds the labels revealed to the verifier.
	Disclosed map[string]bool
	Issuer    *issuer.Public
}

// ID returns the statement id.
func (s *Signature) ID() string { return s.StatementID }

// ReferenceIDs is empty; signature statements are roots.
func (s *Signature) ReferenceIDs() []string { return nil }

// DisclosedLabels returns the revealed labels sorted for deterministic
// iteration.
func (s *Signature) DisclosedLabels() []string {
	labels := make([]string, 0, len(s.Disclosed))
	for label, on := range s.Disclosed {
		if on {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

// AddChallengeContribution absorbs the statement parameters.
func (s *Signature) AddChallengeContribution(t *transcript.Transcript) {
	t.AppendMessage("statement type", []byte("signature"))
	t.AppendMessage("statement id", []byte(s.StatementID))
	t.AppendMessage("issuer id", []byte(s.Issuer.ID))
	t.AppendMessage("issuer schema id", []byte(s.Issuer.Schema.ID))
	pkb, _ := s.Issuer.VerifyingKey.MarshalBinary()
	t.AppendMessage("verification key", pkb)
	labels := s.DisclosedLabels()
	t.AppendUint64("disclosed claims length", uint64(len(labels)))
	for _, label := range labels {
		t.AppendMessage("disclosed claim label", []byte(label))
	}
}

// ClaimIndex is unused for signature statements.
func (s *Signature) ClaimIndex(string) int { return -1 }

// Revocation requires a non-revocation (accumulator membership) proof
// for the referenced credential's revocation claim.
type Revocation struct {
	StatementID     string
	ReferenceID     string
	Accumulator     accumulator.Accumulator
	VerificationKey accumulator.PublicKey
	Claim           int
}

// ID returns the statement id.
func (s *Revocation) ID() string { return s.StatementID }

// ReferenceIDs names the signature statement.
func (s *Revocation) ReferenceIDs() []string { return []string{s.ReferenceID} }

// AddChallengeContribution absorbs the statement parameters.
func (s *Revocation) AddChallengeContribution(t *transcript.Transcript) {
	t.AppendMessage("statement type", []byte("vb20 set membership revocation"))
	t.AppendMessage("statement id", []byte(s.StatementID))
	t.AppendMessage("reference statement id", []byte(s.ReferenceID))
	t.AppendUint64("claim index", uint64(s.Claim))
	vkb, _ := s.VerificationKey.MarshalBinary()
	t.AppendMessage("verification key", vkb)
	accb, _ := s.Accumulator.MarshalBinary()
	t.AppendMessage("accumulator", accb)
}

// ClaimIndex returns the referenced claim slot.
func (s *Revocation) ClaimIndex(string) int { return s.Claim }

// Membership requires an accumulator membership proof against an
// arbitrary registry (not the issuer's revocation registry). The holder
// supplies the witness as a membership credential keyed by this
// statement's id.
type Membership struct {
	StatementID     string
	ReferenceID     string
	Accumulator     accumulator.Accumulator
	VerificationKey accumulator.PublicKey
	Claim           int
}

// ID returns the statement id.
func (s *Membership) ID() string { return s.StatementID }

// ReferenceIDs names the signature statement.
func (s *Membership) ReferenceIDs() []string { return []string{s.ReferenceID} }

// AddChallengeContribution absorbs the statement parameters.
func (s *Membership) AddChallengeContribution(t *transcript.Transcript) {
	t.AppendMessage("statement type", []byte("vb20 set membership"))
	t.AppendMessage("statement id", []byte(s.StatementID))
	t.AppendMessage("reference statement id", []byte(s.ReferenceID))
	t.AppendUint64("claim index", uint64(s.Claim))
	vkb, _ := s.VerificationKey.MarshalBinary()
	t.AppendMessage("verification key", vkb)
	accb, _ := s.Accumulator.MarshalBinary()
	t.AppendMessage("accumulator", accb)
}

// ClaimIndex returns the referenced claim slot.
func (s *Membership) ClaimIndex(string) int { return s.Claim }

// Equality requires the referenced hidden claims to hold one value
// across statements.
type Equality struct {
	StatementID string
	// RefIDClaimIndex maps referenced statement ids to claim slots.
	RefIDClaimIndex map[string]int
}

// ID returns the statement id.
func (s *Equality) ID() string { return s.StatementID }

// ReferenceIDs lists the referenced statements sorted.
func (s *Equality) ReferenceIDs() []string {
	ids := make([]string, 0, len(s.RefIDClaimIndex))
	for id := range s.RefIDClaimIndex {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddChallengeContribution absorbs the statement parameters.
func (s *Equality) AddChallengeContribution(t *transcript.Transcript) {
	t.AppendMessage("statement type", []byte("equality"))
	t.AppendMessage("statement id", []byte(s.StatementID))
	t.AppendUint64("reference statement ids to claim index length", uint64(len(s.RefIDClaimIndex)))
	for _, id := range s.ReferenceIDs() {
		t.AppendMessage("reference statement id", []byte(id))
		t.AppendUint64("reference statement claim index", uint64(s.RefIDClaimIndex[id]))
	}
}

// ClaimIndex returns the claim slot for one referenced statement.
func (s *Equality) ClaimIndex(referenceID string) int {
	if idx, ok := s.RefIDClaimIndex[referenceID]; ok {
		return idx
	}
	return -1
}

// Commitment requires a Pedersen commitment to a hidden claim. Range
// statements build on it.
type Commitment struct {
	StatementID      string
	ReferenceID      string
	Claim            int
	MessageGenerator bls12381.G1Affine
	BlinderGenerator bls12381.G1Affine
}

// ID returns the statement id.
func (s *Commitment) ID() string { return s.StatementID }

// ReferenceIDs names the signature statement.
func (s *Commitment) ReferenceIDs() []string { return []string{s.ReferenceID} }

// AddChallengeContribution absorbs the statement parameters.
func (s *Commitment) AddChallengeContribution(t *transcript.Transcript) {
	t.AppendMessage("statement type", []byte("commitment"))
	t.AppendMessage("statement id", []byte(s.StatementID))
	t.AppendMessage("reference statement id", []byte(s.ReferenceID))
	t.AppendUint64("claim index", uint64(s.Claim))
	t.AppendG1("message generator", &s.MessageGenerator)
	t.AppendG1("blinder generator", &s.BlinderGenerator)
}

// ClaimIndex returns the referenced claim slot.
func (s *Commitment) ClaimIndex(string) int { return s.Claim }

// VerifiableEncryption requires an El-Gamal encryption of a hidden
// claim to the authority key, proven consistent with the signature.
type VerifiableEncryption struct {
	StatementID      string
	ReferenceID      string
	Claim            int
	MessageGenerator bls12381.G1Affine
	EncryptionKey    issuer.EncryptionPublicKey
}

// ID returns the statement id.
func (s *VerifiableEncryption) ID() string { return s.StatementID }

// ReferenceIDs names the signature statement.
func (s *VerifiableEncryption) ReferenceIDs() []string { return []string{s.ReferenceID} }

// AddChallengeContribution absorbs the statement parameters.
func (s *VerifiableEncryption) AddChallengeContribution(t *transcript.Transcript) {
	t.AppendMessage("statement type", []byte("el-gamal verifiable encryption"))
	t.AppendMessage("statement id", []byte(s.StatementID))
	t.AppendMessage("reference statement id", []byte(s.ReferenceID))
	t.AppendUint64("claim index", uint64(s.Claim))
	t.AppendG1("message generator", &s.MessageGenerator)
	t.AppendG1("encryption key", &s.EncryptionKey.K)
}

// ClaimIndex returns the referenced claim slot.
func (s *VerifiableEncryption) ClaimIndex(string) int { return s.Claim }

// VerifiableEncryptionDecryption is verifiable encryption whose
// ciphertext the authority can fully decrypt: the claim scalar is
// decomposed into 32 byte ciphertexts with a range proof, plus an
// AES-128-GCM payload carrying the claim's text form.
type VerifiableEncryptionDecryption struct {
	StatementID      string
	ReferenceID      string
	Claim            int
	MessageGenerator bls12381.G1Affine
	EncryptionKey    issuer.EncryptionPublicKey
}

// ID returns the statement id.
func (s *VerifiableEncryptionDecryption) ID() string { return s.StatementID }

// ReferenceIDs names the signature statement.
func (s *VerifiableEncryptionDecryption) ReferenceIDs() []string { return []string{s.ReferenceID} }

// AddChallengeContribution absorbs the statement parameters.
func (s *VerifiableEncryptionDecryption) AddChallengeContribution(t *transcript.Transcript) {
	t.AppendMessage("statement type", []byte("el-gamal verifiable encryption w/decryption"))
	t.AppendMessage("statement id", []byte(s.StatementID))
	t.AppendMessage("reference statement id", []byte(s.ReferenceID))
	t.AppendUint64("claim index", uint64(s.Claim))
	t.AppendG1("message generator", &s.MessageGenerator)
	t.AppendG1("encryption key", &s.EncryptionKey.K)
}

// ClaimIndex returns the referenced claim slot.
func (s *VerifiableEncryptionDecryption) ClaimIndex(string) int { return s.Claim }

// Range requires lower <= claim <= upper for a number claim committed
// by the referenced commitment statement.
type Range struct {
	StatementID string
	// ReferenceID names the commitment statement.
	ReferenceID string
	// SignatureID names the signature statement holding the claim.
	SignatureID string
	Claim       int
	Lower       *int64
	Upper       *int64
}

// ID returns the statement id.
func (s *Range) ID() string { return s.StatementID }

// ReferenceIDs names the commitment statement.
func (s *Range) ReferenceIDs() []string { return []string{s.ReferenceID} }

// AddChallengeContribution absorbs the statement parameters.
func (s *Range) AddChallengeContribution(t *transcript.Transcript) {
	t.AppendMessage("statement type", []byte("range proof"))
	t.AppendMessage("statement id", []byte(s.StatementID))
	t.AppendMessage("reference commitment statement id", []byte(s.ReferenceID))
	t.AppendMessage("reference signature statement id", []byte(s.SignatureID))
	t.AppendUint64("claim index", uint64(s.Claim))
	if s.Lower != nil {
		t.AppendMessage("lower version", []byte{1})
		t.AppendUint64("lower", uint64(*s.Lower))
	} else {
		t.AppendMessage("lower version", []byte{0})
	}
	if s.Upper != nil {
		t.AppendMessage("upper version", []byte{1})
		t.AppendUint64("upper", uint64(*s.Upper))
	} else {
		t.AppendMessage("upper version", []byte{0})
	}
}

// ClaimIndex returns the referenced claim slot.
func (s *Range) ClaimIndex(string) int { return s.Claim }
