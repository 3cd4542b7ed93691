// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/credential"
	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/statement"
	"github.com/luxfi/anoncred/transcript"
)

// ProofCredential is the holder-side material backing one statement:
// signature statements take signature credentials, membership
// statements take membership witnesses.
type ProofCredential interface {
	isProofCredential()
}

// SignatureCredential backs a signature statement.
type SignatureCredential struct {
	Credential *credential.Credential
}

func (SignatureCredential) isProofCredential() {}

// MembershipCredential backs a membership statement.
type MembershipCredential struct {
	Witness credential.MembershipCredential
}

func (MembershipCredential) isProofCredential() {}

// Proof is one statement's part of a presentation.
type Proof interface {
	// StatementID names the statement this proof answers.
	StatementID() string
	// Kind tags the proof type for serialization.
	Kind() string
}

// builder is the prover half of one statement: commit first, then
// finalize with the shared challenge. Builders walk
// Commit -> TranscriptDrain -> Respond; GenProof consumes the builder.
type builder interface {
	GenProof(challenge fr.Element) (Proof, error)
}

// verifier is the verifier half: replay the transcript contribution
// from the proof, then run the arithmetic check.
type verifier interface {
	AddChallengeContribution(challenge fr.Element, t *transcript.Transcript) error
	Verify(challenge fr.Element) error
}

// proofMessages computes the per-attribute disclosure policy for every
// signature statement. Claims referenced by predicate statements get
// external blinders so the sub-proofs bind to the signature PoK;
// equality groups share a single blinder across all their sites.
func proofMessages(schema *Schema, credentials map[string]ProofCredential, rng io.Reader) (map[string][]sigcore.ProofMessage, error) {
	signatures, predicates := schema.split()

	// First pass: assign blinders. One fresh blinder per equality
	// group, one per other predicate-referenced claim.
	shared := make(map[string]map[int]fr.Element, len(signatures))
	for _, sig := range signatures {
		shared[sig.StatementID] = make(map[int]fr.Element)
	}

	assign := func(refID string, claimIdx int, blinder fr.Element) {
		if claims, ok := shared[refID]; ok {
			if _, exists := claims[claimIdx]; !exists {
				claims[claimIdx] = blinder
			}
		}
	}

	// Equality groups claim their shared blinder first so a claim that
	// also backs a commitment or encryption keeps one blinder across
	// every site.
	for _, pred := range predicates {
		eq, ok := pred.(*statement.Equality)
		if !ok {
			continue
		}
		blinder, err := randomScalar(rng)
		if err != nil {
			return nil, err
		}
		for _, refID := range eq.ReferenceIDs() {
			assign(refID, eq.RefIDClaimIndex[refID], blinder)
		}
	}
	for _, pred := range predicates {
		if _, ok := pred.(*statement.Equality); ok {
			continue
		}
		for _, refID := range pred.ReferenceIDs() {
			if _, ok := shared[refID]; !ok {
				// References a non-signature statement (range ->
				// commitment); the commitment itself carries the link.
				continue
			}
			blinder, err := randomScalar(rng)
			if err != nil {
				return nil, err
			}
			assign(refID, pred.ClaimIndex(refID), blinder)
		}
	}

	// Second pass: emit the policy vector per signature statement.
	out := make(map[string][]sigcore.ProofMessage, len(signatures))
	for _, sig := range signatures {
		cred, ok := credentials[sig.StatementID].(SignatureCredential)
		if !ok {
			return nil, missingCredential(sig.StatementID)
		}
		if len(cred.Credential.Claims) != len(sig.Issuer.Schema.Claims) {
			return nil, missingCredential(sig.StatementID)
		}
		messages := make([]sigcore.ProofMessage, len(cred.Credential.Claims))
		for idx, claim := range cred.Credential.Claims {
			label, _ := sig.Issuer.Schema.ClaimLabel(idx)
			value := claim.ToScalar()
			switch {
			case sig.Disclosed[label]:
				messages[idx] = sigcore.RevealedMessage(value)
			default:
				if blinder, ok := shared[sig.StatementID][idx]; ok {
					messages[idx] = sigcore.ExternallyBlindedMessage(value, blinder)
				} else {
					messages[idx] = sigcore.HiddenMessage(value)
				}
			}
		}
		out[sig.StatementID] = messages
	}
	return out, nil
}

func missingCredential(id string) error {
	return statementError(ErrInvalidPresentationData, id, "no signature credential supplied")
}

// statementError wraps err with the originating statement id so
// verifiers can attribute failures post-mortem.
func statementError(err error, id, detail string) error {
	return &StatementError{ID: id, Detail: detail, Err: err}
}

// StatementError attributes a failure to one statement.
type StatementError struct {
	ID     string
	Detail string
	Err    error
}

// Error formats the statement id with the detail.
func (e *StatementError) Error() string {
	return "statement '" + e.ID + "': " + e.Detail
}

// Unwrap exposes the underlying sentinel.
func (e *StatementError) Unwrap() error { return e.Err }

// equalityClaims ensures all claims referenced by an equality statement
// hold one value; called at build time so mismatches fail create.
func equalityClaims(eq *statement.Equality, credentials map[string]ProofCredential) error {
	var first *fr.Element
	for _, refID := range eq.ReferenceIDs() {
		cred, ok := credentials[refID].(SignatureCredential)
		if !ok {
			return missingCredential(refID)
		}
		idx := eq.RefIDClaimIndex[refID]
		if idx < 0 || idx >= len(cred.Credential.Claims) {
			return statementError(ErrInvalidPresentationData, eq.StatementID, "claim index out of range")
		}
		value := cred.Credential.Claims[idx].ToScalar()
		if first == nil {
			v := value
			first = &v
		} else if !first.Equal(&value) {
			return statementError(claims.ErrInvalidClaimData, eq.StatementID, "linked claims are not equal")
		}
	}
	return nil
}
