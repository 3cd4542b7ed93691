// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"go.uber.org/zap"

	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/statement"
)

// Presentation is the verifier-nonce-bound aggregate proof: one proof
// part per statement, the shared Fiat-Shamir challenge, and the
// disclosed claims per signature statement.
type Presentation struct {
	// Proofs keyed by statement id.
	Proofs map[string]Proof
	// Challenge shared across all sub-proofs.
	Challenge fr.Element
	// DisclosedMessages maps statement id -> claim label -> claim.
	DisclosedMessages map[string]map[string]claims.ClaimData

	// order preserves proof emission order for serialization.
	order []string
}

// Create builds a presentation over the schema from the holder's
// credentials, bound to the verifier's nonce (16 bytes or larger).
func Create(credentials map[string]ProofCredential, schema *Schema, nonce []byte, rng io.Reader) (*Presentation, error) {
	if len(nonce) < 16 {
		return nil, statementError(ErrInvalidPresentationData, schema.ID, "nonce shorter than 16 bytes")
	}

	t := newTranscript(schema, nonce)

	signatures, predicates := schema.split()
	if len(signatures) > len(credentials) {
		return nil, statementError(ErrInvalidPresentationData, schema.ID, "missing signature credentials")
	}
	for _, sig := range signatures {
		if _, ok := credentials[sig.StatementID]; !ok {
			return nil, missingCredential(sig.StatementID)
		}
	}

	messages, err := proofMessages(schema, credentials, rng)
	if err != nil {
		return nil, err
	}

	var builders []builder
	var order []string
	disclosed := make(map[string]map[string]claims.ClaimData)

	commitmentBuilders := make(map[string]*commitmentBuilder)

	for _, sig := range signatures {
		cred := credentials[sig.StatementID].(SignatureCredential)
		sb, dm, err := newSignatureBuilder(sig, cred, messages[sig.StatementID], rng, t)
		if err != nil {
			return nil, err
		}
		builders = append(builders, sb)
		order = append(order, sig.StatementID)

		labelled := make(map[string]claims.ClaimData, len(dm))
		for label, d := range dm {
			labelled[label] = d.Claim
		}
		disclosed[sig.StatementID] = labelled
	}

	// Range statements wait until their commitment builders exist.
	var rangeStatements []*statement.Range

	for _, pred := range predicates {
		switch st := pred.(type) {
		case *statement.Equality:
			eb, err := newEqualityBuilder(st, credentials)
			if err != nil {
				return nil, err
			}
			builders = append(builders, eb)
			order = append(order, st.StatementID)

		case *statement.Revocation:
			msg, err := hiddenMessageFor(messages, st.ReferenceID, st.Claim, st.StatementID)
			if err != nil {
				return nil, err
			}
			cred, ok := credentials[st.ReferenceID].(SignatureCredential)
			if !ok {
				return nil, missingCredential(st.ReferenceID)
			}
			rb, err := newRevocationBuilder(st, cred, msg, nonce, rng, t)
			if err != nil {
				return nil, err
			}
			builders = append(builders, rb)
			order = append(order, st.StatementID)

		case *statement.Membership:
			msg, err := hiddenMessageFor(messages, st.ReferenceID, st.Claim, st.StatementID)
			if err != nil {
				return nil, err
			}
			cred, ok := credentials[st.StatementID].(MembershipCredential)
			if !ok {
				return nil, statementError(ErrInvalidPresentationData, st.StatementID, "no membership witness supplied")
			}
			mb, err := newMembershipBuilder(st, cred, msg, nonce, rng, t)
			if err != nil {
				return nil, err
			}
			builders = append(builders, mb)
			order = append(order, st.StatementID)

		case *statement.Commitment:
			msg, err := hiddenMessageFor(messages, st.ReferenceID, st.Claim, st.StatementID)
			if err != nil {
				return nil, err
			}
			blinder, err := msg.BlinderOrRandom(rng)
			if err != nil {
				return nil, err
			}
			cb, err := newCommitmentBuilder(st, msg.Value, blinder, rng, t)
			if err != nil {
				return nil, err
			}
			commitmentBuilders[st.StatementID] = cb
			builders = append(builders, cb)
			order = append(order, st.StatementID)

		case *statement.VerifiableEncryption:
			msg, err := hiddenMessageFor(messages, st.ReferenceID, st.Claim, st.StatementID)
			if err != nil {
				return nil, err
			}
			blinder, err := msg.BlinderOrRandom(rng)
			if err != nil {
				return nil, err
			}
			vb, err := newVerifiableEncryptionBuilder(st, msg.Value, blinder, rng, t)
			if err != nil {
				return nil, err
			}
			builders = append(builders, vb)
			order = append(order, st.StatementID)

		case *statement.VerifiableEncryptionDecryption:
			msg, err := hiddenMessageFor(messages, st.ReferenceID, st.Claim, st.StatementID)
			if err != nil {
				return nil, err
			}
			blinder, err := msg.BlinderOrRandom(rng)
			if err != nil {
				return nil, err
			}
			cred, ok := credentials[st.ReferenceID].(SignatureCredential)
			if !ok {
				return nil, missingCredential(st.ReferenceID)
			}
			claim := cred.Credential.Claims[st.Claim]
			vb, err := newVerifiableEncryptionDecryptionBuilder(st, claim, msg.Value, blinder, rng, t)
			if err != nil {
				return nil, err
			}
			builders = append(builders, vb)
			order = append(order, st.StatementID)

		case *statement.Range:
			rangeStatements = append(rangeStatements, st)

		default:
			return nil, statementError(ErrInvalidPresentationData, pred.ID(), "unknown statement kind")
		}
	}

	for _, st := range rangeStatements {
		cb, ok := commitmentBuilders[st.ReferenceID]
		if !ok {
			return nil, statementError(ErrInvalidPresentationData, st.StatementID,
				"range references a missing commitment statement")
		}
		cred, ok := credentials[st.SignatureID].(SignatureCredential)
		if !ok {
			return nil, missingCredential(st.SignatureID)
		}
		if st.Claim < 0 || st.Claim >= len(cred.Credential.Claims) {
			return nil, statementError(ErrInvalidPresentationData, st.StatementID, "claim index out of range")
		}
		number, ok := cred.Credential.Claims[st.Claim].(claims.NumberClaim)
		if !ok {
			return nil, statementError(claims.ErrInvalidClaimData, st.StatementID,
				"range proofs require a number claim")
		}
		rb, err := newRangeBuilder(st, cb, number.Value, rng, t)
		if err != nil {
			return nil, err
		}
		builders = append(builders, rb)
		order = append(order, st.StatementID)
	}

	challenge := t.ChallengeScalar("challenge bytes")

	proofs := make(map[string]Proof, len(builders))
	for i, b := range builders {
		proof, err := b.GenProof(challenge)
		if err != nil {
			return nil, err
		}
		proofs[order[i]] = proof
	}

	presentation := &Presentation{
		Proofs:            proofs,
		Challenge:         challenge,
		DisclosedMessages: disclosed,
		order:             order,
	}
	logger.Debug("presentation created",
		zap.String("schema", schema.ID),
		zap.Int("statements", len(proofs)))
	return presentation, nil
}

// hiddenMessageFor fetches the proof message of one claim slot and
// rejects revealed claims, which cannot back predicate proofs.
func hiddenMessageFor(messages map[string][]sigcore.ProofMessage, referenceID string, claim int, statementID string) (sigcore.ProofMessage, error) {
	msgs, ok := messages[referenceID]
	if !ok {
		return sigcore.ProofMessage{}, statementError(ErrInvalidPresentationData, statementID,
			"reference is not a signature statement")
	}
	if claim < 0 || claim >= len(msgs) {
		return sigcore.ProofMessage{}, statementError(ErrInvalidPresentationData, statementID,
			"claim index out of range")
	}
	msg := msgs[claim]
	if !msg.IsHidden() {
		return sigcore.ProofMessage{}, statementError(claims.ErrInvalidClaimData, statementID,
			"revealed claims cannot back predicate proofs")
	}
	return msg, nil
}
