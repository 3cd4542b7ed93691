// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/statement"
	"github.com/luxfi/anoncred/transcript"
)

// signatureBuilder drives the signature proof of knowledge for one
// signature statement.
type signatureBuilder struct {
	id        string
	disclosed map[string]disclosedClaim
	pok       sigcore.PoKCommitment
}

func newSignatureBuilder(st *statement.Signature, cred SignatureCredential, messages []sigcore.ProofMessage, rng io.Reader, t *transcript.Transcript) (*signatureBuilder, map[string]disclosedClaim, error) {
	scheme, err := st.Issuer.Scheme()
	if err != nil {
		return nil, nil, err
	}

	disclosed := make(map[string]disclosedClaim)
	for idx, m := range messages {
		if m.Kind != sigcore.Revealed {
			continue
		}
		label, ok := st.Issuer.Schema.ClaimLabel(idx)
		if !ok {
			return nil, nil, statementError(ErrInvalidPresentationData, st.StatementID, "claim index outside schema")
		}
		disclosed[label] = disclosedClaim{Index: idx, Claim: cred.Credential.Claims[idx]}
	}
	addDisclosedContribution(st.StatementID, disclosed, t)

	pok, err := scheme.CommitSignaturePoK(cred.Credential.Signature, st.Issuer.VerifyingKey, messages, rng)
	if err != nil {
		return nil, nil, statementError(sigcore.ErrInvalidSignatureProof, st.StatementID, err.Error())
	}
	if err := pok.AddProofContribution(t); err != nil {
		return nil, nil, err
	}

	return &signatureBuilder{id: st.StatementID, disclosed: disclosed, pok: pok}, disclosed, nil
}

// GenProof finalizes the proof of knowledge.
func (b *signatureBuilder) GenProof(challenge fr.Element) (Proof, error) {
	pok, err := b.pok.GenerateProof(challenge)
	if err != nil {
		return nil, err
	}
	return &SignatureProof{
		ID:  b.id,
		PoK: pok,
	}, nil
}

// SignatureProof is the signature statement's proof part.
type SignatureProof struct {
	ID  string
	PoK sigcore.PoKProof
}

// StatementID returns the statement id.
func (p *SignatureProof) StatementID() string { return p.ID }

// Kind returns the proof type tag.
func (p *SignatureProof) Kind() string { return "signature" }

// signatureVerifier replays and checks one signature proof.
type signatureVerifier struct {
	statement *statement.Signature
	proof     *SignatureProof
	revealed  []sigcore.IndexedMessage
}

func (v *signatureVerifier) AddChallengeContribution(challenge fr.Element, t *transcript.Transcript) error {
	return v.proof.PoK.AddProofContribution(v.statement.Issuer.VerifyingKey, v.revealed, challenge, t)
}

func (v *signatureVerifier) Verify(challenge fr.Element) error {
	if err := v.proof.PoK.Verify(v.statement.Issuer.VerifyingKey, v.revealed, challenge); err != nil {
		return statementError(sigcore.ErrInvalidSignatureProof, v.proof.ID, err.Error())
	}
	return nil
}
