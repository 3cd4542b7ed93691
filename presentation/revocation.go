// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/accumulator"
	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/statement"
	"github.com/luxfi/anoncred/transcript"
)

// revocationBuilder proves the credential's revocation claim is still a
// member of the issuer's registry accumulator.
type revocationBuilder struct {
	id         string
	committing *accumulator.MembershipProofCommitting
}

func newRevocationBuilder(st *statement.Revocation, cred SignatureCredential, message sigcore.ProofMessage, nonce []byte, rng io.Reader, t *transcript.Transcript) (*revocationBuilder, error) {
	params, err := accumulator.NewProofParams(st.VerificationKey, nonce)
	if err != nil {
		return nil, err
	}
	committing, err := accumulator.NewMembershipProofCommitting(
		message, cred.Credential.RevocationHandle, params, st.VerificationKey, rng)
	if err != nil {
		return nil, statementError(ErrInvalidPresentationData, st.StatementID, err.Error())
	}
	params.AddToTranscript(t)
	committing.GetBytesForChallenge(t)
	return &revocationBuilder{id: st.StatementID, committing: committing}, nil
}

// GenProof finalizes the membership proof.
func (b *revocationBuilder) GenProof(challenge fr.Element) (Proof, error) {
	proof := b.committing.GenProof(challenge)
	return &RevocationProof{ID: b.id, Proof: proof}, nil
}

// RevocationProof is the non-revocation proof part.
type RevocationProof struct {
	ID    string
	Proof accumulator.MembershipProof
}

// StatementID returns the statement id.
func (p *RevocationProof) StatementID() string { return p.ID }

// Kind returns the proof type tag.
func (p *RevocationProof) Kind() string { return "revocation" }

// revocationVerifier finalizes the membership proof for transcript
// replay and cross-checks the element response against the signature.
type revocationVerifier struct {
	statement    *statement.Revocation
	proof        *RevocationProof
	nonce        []byte
	messageProof fr.Element
}

func (v *revocationVerifier) AddChallengeContribution(challenge fr.Element, t *transcript.Transcript) error {
	params, err := accumulator.NewProofParams(v.statement.VerificationKey, v.nonce)
	if err != nil {
		return err
	}
	final, err := v.proof.Proof.Finalize(v.statement.Accumulator, params, v.statement.VerificationKey, challenge)
	if err != nil {
		return err
	}
	params.AddToTranscript(t)
	final.GetBytesForChallenge(t)
	return nil
}

func (v *revocationVerifier) Verify(fr.Element) error {
	if !v.proof.Proof.SY.Equal(&v.messageProof) {
		return statementError(ErrInvalidPresentationData, v.proof.ID,
			"membership proof does not bind the signed claim")
	}
	return nil
}

// membershipBuilder proves a claim is a member of an arbitrary registry
// accumulator; the holder supplies the witness keyed by this
// statement's id.
type membershipBuilder struct {
	id         string
	committing *accumulator.MembershipProofCommitting
}

func newMembershipBuilder(st *statement.Membership, cred MembershipCredential, message sigcore.ProofMessage, nonce []byte, rng io.Reader, t *transcript.Transcript) (*membershipBuilder, error) {
	params, err := accumulator.NewProofParams(st.VerificationKey, nonce)
	if err != nil {
		return nil, err
	}
	committing, err := accumulator.NewMembershipProofCommitting(
		message, cred.Witness, params, st.VerificationKey, rng)
	if err != nil {
		return nil, statementError(ErrInvalidPresentationData, st.StatementID, err.Error())
	}
	params.AddToTranscript(t)
	committing.GetBytesForChallenge(t)
	return &membershipBuilder{id: st.StatementID, committing: committing}, nil
}

// GenProof finalizes the membership proof.
func (b *membershipBuilder) GenProof(challenge fr.Element) (Proof, error) {
	proof := b.committing.GenProof(challenge)
	return &MembershipProof{ID: b.id, Proof: proof}, nil
}

// MembershipProof is the set-membership proof part.
type MembershipProof struct {
	ID    string
	Proof accumulator.MembershipProof
}

// StatementID returns the statement id.
func (p *MembershipProof) StatementID() string { return p.ID }

// Kind returns the proof type tag.
func (p *MembershipProof) Kind() string { return "membership" }

// membershipVerifier mirrors revocationVerifier for membership
// statements.
type membershipVerifier struct {
	statement    *statement.Membership
	proof        *MembershipProof
	nonce        []byte
	messageProof fr.Element
}

func (v *membershipVerifier) AddChallengeContribution(challenge fr.Element, t *transcript.Transcript) error {
	params, err := accumulator.NewProofParams(v.statement.VerificationKey, v.nonce)
	if err != nil {
		return err
	}
	final, err := v.proof.Proof.Finalize(v.statement.Accumulator, params, v.statement.VerificationKey, challenge)
	if err != nil {
		return err
	}
	params.AddToTranscript(t)
	final.GetBytesForChallenge(t)
	return nil
}

func (v *membershipVerifier) Verify(fr.Element) error {
	if !v.proof.Proof.SY.Equal(&v.messageProof) {
		return statementError(ErrInvalidPresentationData, v.proof.ID,
			"membership proof does not bind the signed claim")
	}
	return nil
}
