// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package statement

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/issuer"
)

var b64 = base64.RawURLEncoding

// Statement kind tags used in JSON.
const (
	KindSignature                      = "signature"
	KindRevocation                     = "revocation"
	KindMembership                     = "membership"
	KindEquality                       = "equality"
	KindCommitment                     = "commitment"
	KindVerifiableEncryption           = "verifiable-encryption"
	KindVerifiableEncryptionDecryption = "verifiable-encryption-decryption"
	KindRange                          = "range"
)

func encodeG1(p *bls12381.G1Affine) string {
	b := p.Bytes()
	return b64.EncodeToString(b[:])
}

func decodeG1(s string) (bls12381.G1Affine, error) {
	raw, err := b64.DecodeString(s)
	if err != nil {
		return bls12381.G1Affine{}, err
	}
	return curve.G1FromBytes(raw)
}

type statementJSON struct {
	Kind string `json:"kind"`

	ID          string `json:"id"`
	ReferenceID string `json:"reference_id,omitempty"`
	SignatureID string `json:"signature_id,omitempty"`
	Claim       int    `json:"claim,omitempty"`

	Disclosed []string       `json:"disclosed,omitempty"`
	Issuer    *issuer.Public `json:"issuer,omitempty"`

	Accumulator     string `json:"accumulator,omitempty"`
	VerificationKey string `json:"verification_key,omitempty"`

	RefIDClaimIndex map[string]int `json:"ref_id_claim_index,omitempty"`

	MessageGenerator string `json:"message_generator,omitempty"`
	BlinderGenerator string `json:"blinder_generator,omitempty"`
	EncryptionKey    string `json:"encryption_key,omitempty"`

	Lower *int64 `json:"lower,omitempty"`
	Upper *int64 `json:"upper,omitempty"`
}

// EncodeJSON renders any statement with its kind tag.
func EncodeJSON(st Statement) ([]byte, error) {
	var out statementJSON
	switch s := st.(type) {
	case *Signature:
		out = statementJSON{
			Kind:      KindSignature,
			ID:        s.StatementID,
			Disclosed: s.DisclosedLabels(),
			Issuer:    s.Issuer,
		}
	case *Revocation:
		accb, _ := s.Accumulator.MarshalBinary()
		vkb, _ := s.VerificationKey.MarshalBinary()
		out = statementJSON{
			Kind:            KindRevocation,
			ID:              s.StatementID,
			ReferenceID:     s.ReferenceID,
			Claim:           s.Claim,
			Accumulator:     b64.EncodeToString(accb),
			VerificationKey: b64.EncodeToString(vkb),
		}
	case *Membership:
		accb, _ := s.Accumulator.MarshalBinary()
		vkb, _ := s.VerificationKey.MarshalBinary()
		out = statementJSON{
			Kind:            KindMembership,
			ID:              s.StatementID,
			ReferenceID:     s.ReferenceID,
			Claim:           s.Claim,
			Accumulator:     b64.EncodeToString(accb),
			VerificationKey: b64.EncodeToString(vkb),
		}
	case *Equality:
		out = statementJSON{
			Kind:            KindEquality,
			ID:              s.StatementID,
			RefIDClaimIndex: s.RefIDClaimIndex,
		}
	case *Commitment:
		out = statementJSON{
			Kind:             KindCommitment,
			ID:               s.StatementID,
			ReferenceID:      s.ReferenceID,
			Claim:            s.Claim,
			MessageGenerator: encodeG1(&s.MessageGenerator),
			BlinderGenerator: encodeG1(&s.BlinderGenerator),
		}
	case *VerifiableEncryption:
		out = statementJSON{
			Kind:             KindVerifiableEncryption,
			ID:               s.StatementID,
			ReferenceID:      s.ReferenceID,
			Claim:            s.Claim,
			MessageGenerator: encodeG1(&s.MessageGenerator),
			EncryptionKey:    encodeG1(&s.EncryptionKey.K),
		}
	case *VerifiableEncryptionDecryption:
		out = statementJSON{
			Kind:             KindVerifiableEncryptionDecryption,
			ID:               s.StatementID,
			ReferenceID:      s.ReferenceID,
			Claim:            s.Claim,
			MessageGenerator: encodeG1(&s.MessageGenerator),
			EncryptionKey:    encodeG1(&s.EncryptionKey.K),
		}
	case *Range:
		out = statementJSON{
			Kind:        KindRange,
			ID:          s.StatementID,
			ReferenceID: s.ReferenceID,
			SignatureID: s.SignatureID,
			Claim:       s.Claim,
			Lower:       s.Lower,
			Upper:       s.Upper,
		}
	default:
		return nil, fmt.Errorf("statement: unknown statement type %T", st)
	}
	return json.Marshal(out)
}

// DecodeJSON reverses EncodeJSON.
func DecodeJSON(data []byte) (Statement, error) {
	var in statementJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	switch in.Kind {
	case KindSignature:
		disclosed := make(map[string]bool, len(in.Disclosed))
		for _, label := range in.Disclosed {
			disclosed[label] = true
		}
		return &Signature{StatementID: in.ID, Disclosed: disclosed, Issuer: in.Issuer}, nil
	case KindRevocation, KindMembership:
		accb, err := b64.DecodeString(in.Accumulator)
		if err != nil {
			return nil, err
		}
		vkb, err := b64.DecodeString(in.VerificationKey)
		if err != nil {
			return nil, err
		}
		if in.Kind == KindRevocation {
			s := &Revocation{StatementID: in.ID, ReferenceID: in.ReferenceID, Claim: in.Claim}
			if err := s.Accumulator.UnmarshalBinary(accb); err != nil {
				return nil, err
			}
			if err := s.VerificationKey.UnmarshalBinary(vkb); err != nil {
				return nil, err
			}
			return s, nil
		}
		s := &Membership{StatementID: in.ID, ReferenceID: in.ReferenceID, Claim: in.Claim}
		if err := s.Accumulator.UnmarshalBinary(accb); err != nil {
			return nil, err
		}
		if err := s.VerificationKey.UnmarshalBinary(vkb); err != nil {
			return nil, err
		}
		return s, nil
	case KindEquality:
		return &Equality{StatementID: in.ID, RefIDClaimIndex: in.RefIDClaimIndex}, nil
	case KindCommitment:
		mg, err := decodeG1(in.MessageGenerator)
		if err != nil {
			return nil, err
		}
		bg, err := decodeG1(in.BlinderGenerator)
		if err != nil {
			return nil, err
		}
		return &Commitment{
			StatementID:      in.ID,
			ReferenceID:      in.ReferenceID,
			Claim:            in.Claim,
			MessageGenerator: mg,
			BlinderGenerator: bg,
		}, nil
	case KindVerifiableEncryption, KindVerifiableEncryptionDecryption:
		mg, err := decodeG1(in.MessageGenerator)
		if err != nil {
			return nil, err
		}
		ek, err := decodeG1(in.EncryptionKey)
		if err != nil {
			return nil, err
		}
		if in.Kind == KindVerifiableEncryption {
			return &VerifiableEncryption{
				StatementID:      in.ID,
				ReferenceID:      in.ReferenceID,
				Claim:            in.Claim,
				MessageGenerator: mg,
				EncryptionKey:    issuer.EncryptionPublicKey{K: ek},
			}, nil
		}
		return &VerifiableEncryptionDecryption{
			StatementID:      in.ID,
			ReferenceID:      in.ReferenceID,
			Claim:            in.Claim,
			MessageGenerator: mg,
			EncryptionKey:    issuer.EncryptionPublicKey{K: ek},
		}, nil
	case KindRange:
		return &Range{
			StatementID: in.ID,
			ReferenceID: in.ReferenceID,
			SignatureID: in.SignatureID,
			Claim:       in.Claim,
			Lower:       in.Lower,
			Upper:       in.Upper,
		}, nil
	}
	return nil, fmt.Errorf("statement: unknown statement kind %q", in.Kind)
}
