// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"go.uber.org/zap"

	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/issuer"
	"github.com/luxfi/anoncred/statement"
)

// Verify replays the prover's transcript from the proof parts, checks
// the derived challenge against the presentation's and then runs every
// statement's arithmetic check.
func (p *Presentation) Verify(schema *Schema, nonce []byte) error {
	t := newTranscript(schema, nonce)

	signatures, predicates := schema.split()

	var verifiers []verifier

	for _, sig := range signatures {
		proof, ok := p.Proofs[sig.StatementID].(*SignatureProof)
		if !ok {
			return statementError(ErrInvalidPresentationData, sig.StatementID,
				"expected a signature proof but none was found")
		}
		disclosed, err := p.disclosedFor(sig)
		if err != nil {
			return err
		}
		addDisclosedContribution(sig.StatementID, disclosed, t)

		v := &signatureVerifier{
			statement: sig,
			proof:     proof,
			revealed:  revealedMessages(disclosed),
		}
		if err := v.AddChallengeContribution(p.Challenge, t); err != nil {
			return err
		}
		verifiers = append(verifiers, v)
	}

	// Range verifiers run after everything else, matching the prover.
	var rangeVerifiers []verifier

	for _, pred := range predicates {
		part, havePart := p.Proofs[pred.ID()]
		if !havePart {
			return statementError(ErrInvalidPresentationData, pred.ID(), "missing proof part")
		}
		switch st := pred.(type) {
		case *statement.Revocation:
			proof, ok := part.(*RevocationProof)
			if !ok {
				return statementError(ErrInvalidPresentationData, st.StatementID, "wrong proof kind")
			}
			msgProof, err := p.hiddenMessageProof(schema, st.ReferenceID, st.Claim, st.StatementID)
			if err != nil {
				return err
			}
			v := &revocationVerifier{statement: st, proof: proof, nonce: nonce, messageProof: msgProof}
			if err := v.AddChallengeContribution(p.Challenge, t); err != nil {
				return err
			}
			verifiers = append(verifiers, v)

		case *statement.Membership:
			proof, ok := part.(*MembershipProof)
			if !ok {
				return statementError(ErrInvalidPresentationData, st.StatementID, "wrong proof kind")
			}
			msgProof, err := p.hiddenMessageProof(schema, st.ReferenceID, st.Claim, st.StatementID)
			if err != nil {
				return err
			}
			v := &membershipVerifier{statement: st, proof: proof, nonce: nonce, messageProof: msgProof}
			if err := v.AddChallengeContribution(p.Challenge, t); err != nil {
				return err
			}
			verifiers = append(verifiers, v)

		case *statement.Equality:
			if _, ok := part.(*EqualityProof); !ok {
				return statementError(ErrInvalidPresentationData, st.StatementID, "wrong proof kind")
			}
			responses := make([]fr.Element, 0, len(st.RefIDClaimIndex))
			for _, refID := range st.ReferenceIDs() {
				msgProof, err := p.hiddenMessageProof(schema, refID, st.RefIDClaimIndex[refID], st.StatementID)
				if err != nil {
					return err
				}
				responses = append(responses, msgProof)
			}
			verifiers = append(verifiers, &equalityVerifier{statement: st, responses: responses})

		case *statement.Commitment:
			proof, ok := part.(*CommitmentProof)
			if !ok {
				return statementError(ErrInvalidPresentationData, st.StatementID, "wrong proof kind")
			}
			msgProof, err := p.hiddenMessageProof(schema, st.ReferenceID, st.Claim, st.StatementID)
			if err != nil {
				return err
			}
			v := &commitmentVerifier{statement: st, proof: proof, messageProof: msgProof}
			if err := v.AddChallengeContribution(p.Challenge, t); err != nil {
				return err
			}
			verifiers = append(verifiers, v)

		case *statement.VerifiableEncryption:
			proof, ok := part.(*VerifiableEncryptionProof)
			if !ok {
				return statementError(ErrInvalidPresentationData, st.StatementID, "wrong proof kind")
			}
			msgProof, err := p.hiddenMessageProof(schema, st.ReferenceID, st.Claim, st.StatementID)
			if err != nil {
				return err
			}
			v := &verifiableEncryptionVerifier{statement: st, proof: proof, messageProof: msgProof}
			if err := v.AddChallengeContribution(p.Challenge, t); err != nil {
				return err
			}
			verifiers = append(verifiers, v)

		case *statement.VerifiableEncryptionDecryption:
			proof, ok := part.(*VerifiableEncryptionDecryptionProof)
			if !ok {
				return statementError(ErrInvalidPresentationData, st.StatementID, "wrong proof kind")
			}
			msgProof, err := p.hiddenMessageProof(schema, st.ReferenceID, st.Claim, st.StatementID)
			if err != nil {
				return err
			}
			v := &verifiableEncryptionDecryptionVerifier{statement: st, proof: proof, messageProof: msgProof}
			if err := v.AddChallengeContribution(p.Challenge, t); err != nil {
				return err
			}
			verifiers = append(verifiers, v)

		case *statement.Range:
			proof, ok := part.(*RangeProof)
			if !ok {
				return statementError(ErrInvalidPresentationData, st.StatementID, "wrong proof kind")
			}
			commitmentStatement, commitmentProof, err := p.commitmentReference(schema, st)
			if err != nil {
				return err
			}
			rangeVerifiers = append(rangeVerifiers, &rangeVerifier{
				statement:           st,
				commitmentStatement: commitmentStatement,
				proof:               proof,
				commitment:          commitmentProof.Commitment,
			})

		default:
			return statementError(ErrInvalidPresentationData, pred.ID(), "unknown statement kind")
		}
	}

	for _, v := range rangeVerifiers {
		if err := v.AddChallengeContribution(p.Challenge, t); err != nil {
			return err
		}
	}
	verifiers = append(verifiers, rangeVerifiers...)

	challenge := t.ChallengeScalar("challenge bytes")
	if !challenge.Equal(&p.Challenge) {
		return statementError(ErrChallengeMismatch, schema.ID,
			"the recomputed challenge does not match the presentation challenge")
	}

	for _, v := range verifiers {
		if err := v.Verify(p.Challenge); err != nil {
			return err
		}
	}

	logger.Debug("presentation verified", zap.String("schema", schema.ID))
	return nil
}

// DecryptionRequest names a verifiable-encryption-decryption statement
// and supplies the authority key for it.
type DecryptionRequest struct {
	StatementID   string
	DecryptionKey *issuer.DecryptionKey
}

// VerifyAndDecrypt verifies the presentation and then recovers the
// requested encrypted claims with the supplied authority keys.
func (p *Presentation) VerifyAndDecrypt(schema *Schema, nonce []byte, requests []DecryptionRequest) (map[string]claims.ClaimData, error) {
	if err := p.Verify(schema, nonce); err != nil {
		return nil, err
	}
	out := make(map[string]claims.ClaimData, len(requests))
	for _, req := range requests {
		part, ok := p.Proofs[req.StatementID].(*VerifiableEncryptionDecryptionProof)
		if !ok {
			return nil, statementError(ErrInvalidPresentationData, req.StatementID,
				"no decryptable verifiable encryption proof")
		}
		claim, err := part.DecryptAndVerify(req.DecryptionKey)
		if err != nil {
			return nil, err
		}
		out[req.StatementID] = claim
	}
	return out, nil
}

// disclosedFor validates the disclosed claims carried for a signature
// statement against the statement's disclosure policy.
func (p *Presentation) disclosedFor(sig *statement.Signature) (map[string]disclosedClaim, error) {
	carried, ok := p.DisclosedMessages[sig.StatementID]
	if !ok {
		carried = map[string]claims.ClaimData{}
	}
	want := sig.DisclosedLabels()
	if len(carried) != len(want) {
		return nil, statementError(ErrInvalidPresentationData, sig.StatementID,
			"mismatched number of disclosed values")
	}
	out := make(map[string]disclosedClaim, len(carried))
	for _, label := range want {
		claim, ok := carried[label]
		if !ok {
			return nil, statementError(ErrInvalidPresentationData, sig.StatementID,
				"disclosed claim missing: "+label)
		}
		idx, ok := sig.Issuer.Schema.ClaimIndex(label)
		if !ok {
			return nil, statementError(ErrInvalidPresentationData, sig.StatementID,
				"disclosed label not in schema: "+label)
		}
		out[label] = disclosedClaim{Index: idx, Claim: claim}
	}
	return out, nil
}

// hiddenMessageProof resolves the signature PoK response for one hidden
// claim slot of a referenced signature statement.
func (p *Presentation) hiddenMessageProof(schema *Schema, referenceID string, claim int, statementID string) (fr.Element, error) {
	var zero fr.Element
	st, ok := schema.Statement(referenceID)
	if !ok {
		return zero, statementError(statement.ErrMissingReference, statementID,
			"referenced statement not in schema")
	}
	sig, ok := st.(*statement.Signature)
	if !ok {
		return zero, statementError(ErrInvalidPresentationData, statementID,
			"referenced statement is not a signature statement")
	}
	proof, ok := p.Proofs[referenceID].(*SignatureProof)
	if !ok {
		return zero, statementError(ErrInvalidPresentationData, statementID,
			"referenced signature proof missing")
	}
	disclosed, err := p.disclosedFor(sig)
	if err != nil {
		return zero, err
	}
	hidden, err := proof.PoK.HiddenMessageProofs(sig.Issuer.VerifyingKey, revealedMessages(disclosed))
	if err != nil {
		return zero, err
	}
	response, ok := hidden[claim]
	if !ok {
		return zero, statementError(ErrInvalidPresentationData, statementID,
			"no hidden-message proof for the referenced claim")
	}
	return response, nil
}

// commitmentReference resolves a range statement's commitment statement
// and proof.
func (p *Presentation) commitmentReference(schema *Schema, st *statement.Range) (*statement.Commitment, *CommitmentProof, error) {
	ref, ok := schema.Statement(st.ReferenceID)
	if !ok {
		return nil, nil, statementError(statement.ErrMissingReference, st.StatementID,
			"commitment statement not in schema")
	}
	commitmentStatement, ok := ref.(*statement.Commitment)
	if !ok {
		return nil, nil, statementError(ErrInvalidPresentationData, st.StatementID,
			"range references a non-commitment statement")
	}
	proof, ok := p.Proofs[st.ReferenceID].(*CommitmentProof)
	if !ok {
		return nil, nil, statementError(ErrInvalidPresentationData, st.StatementID,
			"commitment proof missing")
	}
	return commitmentStatement, proof, nil
}
