// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
)

// b64 is the opaque-binary JSON encoding: base64url without padding.
var b64 = base64.RawURLEncoding

type presentationJSON struct {
	Challenge string                       `json:"challenge"`
	Proofs    []proofJSON                  `json:"proofs"`
	Disclosed map[string]map[string]string `json:"disclosed_messages,omitempty"`
}

type proofJSON struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Scheme string `json:"scheme,omitempty"`
	Data   string `json:"data,omitempty"`
}

// MarshalJSON renders the presentation with base64url opaque values.
func (p *Presentation) MarshalJSON() ([]byte, error) {
	out := presentationJSON{
		Disclosed: make(map[string]map[string]string, len(p.DisclosedMessages)),
	}
	cb := p.Challenge.Bytes()
	out.Challenge = b64.EncodeToString(cb[:])

	ids := p.order
	if len(ids) == 0 {
		for id := range p.Proofs {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		proof, ok := p.Proofs[id]
		if !ok {
			continue
		}
		pj := proofJSON{ID: id, Kind: proof.Kind()}
		switch v := proof.(type) {
		case *SignatureProof:
			pj.Scheme = v.PoK.Scheme()
			raw, err := v.PoK.MarshalBinary()
			if err != nil {
				return nil, err
			}
			pj.Data = b64.EncodeToString(raw)
		case *EqualityProof:
		case *RevocationProof:
			raw, err := v.Proof.MarshalBinary()
			if err != nil {
				return nil, err
			}
			pj.Data = b64.EncodeToString(raw)
		case *MembershipProof:
			raw, err := v.Proof.MarshalBinary()
			if err != nil {
				return nil, err
			}
			pj.Data = b64.EncodeToString(raw)
		case *CommitmentProof:
			pj.Data = b64.EncodeToString(v.marshal())
		case *VerifiableEncryptionProof:
			pj.Data = b64.EncodeToString(v.marshal())
		case *VerifiableEncryptionDecryptionProof:
			raw, err := v.marshal()
			if err != nil {
				return nil, err
			}
			pj.Data = b64.EncodeToString(raw)
		case *RangeProof:
			raw, err := v.Proof.MarshalBinary()
			if err != nil {
				return nil, err
			}
			pj.Data = b64.EncodeToString(raw)
		default:
			return nil, fmt.Errorf("%w: unknown proof kind %q", ErrInvalidPresentationData, proof.Kind())
		}
		out.Proofs = append(out.Proofs, pj)
	}

	for id, labelled := range p.DisclosedMessages {
		m := make(map[string]string, len(labelled))
		for label, claim := range labelled {
			m[label] = claim.ToText()
		}
		out.Disclosed[id] = m
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON. Signature proofs resolve their
// scheme through the registry.
func (p *Presentation) UnmarshalJSON(data []byte) error {
	var in presentationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	challengeRaw, err := b64.DecodeString(in.Challenge)
	if err != nil {
		return err
	}
	if p.Challenge, err = curve.ScalarFromBytes(challengeRaw); err != nil {
		return err
	}

	p.Proofs = make(map[string]Proof, len(in.Proofs))
	p.order = p.order[:0]
	for _, pj := range in.Proofs {
		raw, err := b64.DecodeString(pj.Data)
		if err != nil {
			return err
		}
		var proof Proof
		switch pj.Kind {
		case "signature":
			scheme, err := sigcore.SchemeByName(pj.Scheme)
			if err != nil {
				return err
			}
			pok, err := scheme.UnmarshalPoKProof(raw)
			if err != nil {
				return err
			}
			proof = &SignatureProof{ID: pj.ID, PoK: pok}
		case "equality":
			proof = &EqualityProof{ID: pj.ID}
		case "revocation":
			rp := &RevocationProof{ID: pj.ID}
			if err := rp.Proof.UnmarshalBinary(raw); err != nil {
				return err
			}
			proof = rp
		case "membership":
			mp := &MembershipProof{ID: pj.ID}
			if err := mp.Proof.UnmarshalBinary(raw); err != nil {
				return err
			}
			proof = mp
		case "commitment":
			cp := &CommitmentProof{ID: pj.ID}
			if err := cp.unmarshal(raw); err != nil {
				return err
			}
			proof = cp
		case "verifiable-encryption":
			vp := &VerifiableEncryptionProof{ID: pj.ID}
			if err := vp.unmarshal(raw); err != nil {
				return err
			}
			proof = vp
		case "verifiable-encryption-decryption":
			vp := &VerifiableEncryptionDecryptionProof{ID: pj.ID}
			if err := vp.unmarshal(raw); err != nil {
				return err
			}
			proof = vp
		case "range":
			rp := &RangeProof{ID: pj.ID}
			if err := rp.Proof.UnmarshalBinary(raw); err != nil {
				return err
			}
			proof = rp
		default:
			return fmt.Errorf("%w: unknown proof kind %q", ErrInvalidPresentationData, pj.Kind)
		}
		p.Proofs[pj.ID] = proof
		p.order = append(p.order, pj.ID)
	}

	p.DisclosedMessages = make(map[string]map[string]claims.ClaimData, len(in.Disclosed))
	for id, labelled := range in.Disclosed {
		m := make(map[string]claims.ClaimData, len(labelled))
		for label, text := range labelled {
			claim, err := claims.FromText(text)
			if err != nil {
				return err
			}
			m[label] = claim
		}
		p.DisclosedMessages[id] = m
	}
	return nil
}

func (p *CommitmentProof) marshal() []byte {
	out := make([]byte, 0, curve.G1Size+2*curve.ScalarSize)
	c := p.Commitment.Bytes()
	out = append(out, c[:]...)
	m := p.MessageProof.Bytes()
	out = append(out, m[:]...)
	b := p.BlinderProof.Bytes()
	out = append(out, b[:]...)
	return out
}

func (p *CommitmentProof) unmarshal(data []byte) error {
	if len(data) != curve.G1Size+2*curve.ScalarSize {
		return ErrInvalidPresentationData
	}
	var err error
	if p.Commitment, err = curve.G1FromBytes(data[:curve.G1Size]); err != nil {
		return err
	}
	if p.MessageProof, err = curve.ScalarFromBytes(data[curve.G1Size : curve.G1Size+curve.ScalarSize]); err != nil {
		return err
	}
	p.BlinderProof, err = curve.ScalarFromBytes(data[curve.G1Size+curve.ScalarSize:])
	return err
}

func (p *VerifiableEncryptionProof) marshal() []byte {
	out := make([]byte, 0, 2*curve.G1Size+2*curve.ScalarSize)
	c1 := p.C1.Bytes()
	out = append(out, c1[:]...)
	c2 := p.C2.Bytes()
	out = append(out, c2[:]...)
	m := p.MessageProof.Bytes()
	out = append(out, m[:]...)
	b := p.BlinderProof.Bytes()
	out = append(out, b[:]...)
	return out
}

func (p *VerifiableEncryptionProof) unmarshal(data []byte) error {
	if len(data) != 2*curve.G1Size+2*curve.ScalarSize {
		return ErrInvalidPresentationData
	}
	var err error
	if p.C1, err = curve.G1FromBytes(data[:curve.G1Size]); err != nil {
		return err
	}
	if p.C2, err = curve.G1FromBytes(data[curve.G1Size : 2*curve.G1Size]); err != nil {
		return err
	}
	offset := 2 * curve.G1Size
	if p.MessageProof, err = curve.ScalarFromBytes(data[offset : offset+curve.ScalarSize]); err != nil {
		return err
	}
	p.BlinderProof, err = curve.ScalarFromBytes(data[offset+curve.ScalarSize:])
	return err
}

func (p *VerifiableEncryptionDecryptionProof) marshal() ([]byte, error) {
	rangeRaw, err := p.RangeProof.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 3*curve.G1Size+vedByteCount*(2*curve.G1Size+2*curve.ScalarSize)+
		curve.ScalarSize+8+len(rangeRaw)+len(p.Ciphertext))
	g := p.MessageGenerator.Bytes()
	out = append(out, g[:]...)
	c1 := p.C1.Bytes()
	out = append(out, c1[:]...)
	c2 := p.C2.Bytes()
	out = append(out, c2[:]...)
	for i := 0; i < vedByteCount; i++ {
		m := p.ByteProofs[i].Message.Bytes()
		out = append(out, m[:]...)
		b := p.ByteProofs[i].Blinder.Bytes()
		out = append(out, b[:]...)
	}
	for i := 0; i < vedByteCount; i++ {
		b1 := p.ByteCiphertext.C1[i].Bytes()
		out = append(out, b1[:]...)
		b2 := p.ByteCiphertext.C2[i].Bytes()
		out = append(out, b2[:]...)
	}
	bp := p.BlinderProof.Bytes()
	out = append(out, bp[:]...)
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(rangeRaw)))
	out = append(out, length[:]...)
	out = append(out, rangeRaw...)
	binary.BigEndian.PutUint32(length[:], uint32(len(p.Ciphertext)))
	out = append(out, length[:]...)
	out = append(out, p.Ciphertext...)
	return out, nil
}

func (p *VerifiableEncryptionDecryptionProof) unmarshal(data []byte) error {
	fixed := 3*curve.G1Size + vedByteCount*(2*curve.ScalarSize+2*curve.G1Size) + curve.ScalarSize + 4
	if len(data) < fixed {
		return ErrInvalidPresentationData
	}
	var err error
	offset := 0
	readG1 := func(dst *bls12381.G1Affine) error {
		if err != nil {
			return err
		}
		*dst, err = curve.G1FromBytes(data[offset : offset+curve.G1Size])
		offset += curve.G1Size
		return err
	}
	readScalar := func(dst *fr.Element) error {
		if err != nil {
			return err
		}
		*dst, err = curve.ScalarFromBytes(data[offset : offset+curve.ScalarSize])
		offset += curve.ScalarSize
		return err
	}
	if err = readG1(&p.MessageGenerator); err != nil {
		return err
	}
	if err = readG1(&p.C1); err != nil {
		return err
	}
	if err = readG1(&p.C2); err != nil {
		return err
	}
	for i := 0; i < vedByteCount; i++ {
		if err = readScalar(&p.ByteProofs[i].Message); err != nil {
			return err
		}
		if err = readScalar(&p.ByteProofs[i].Blinder); err != nil {
			return err
		}
	}
	for i := 0; i < vedByteCount; i++ {
		if err = readG1(&p.ByteCiphertext.C1[i]); err != nil {
			return err
		}
		if err = readG1(&p.ByteCiphertext.C2[i]); err != nil {
			return err
		}
	}
	if err = readScalar(&p.BlinderProof); err != nil {
		return err
	}
	if len(data) < offset+4 {
		return ErrInvalidPresentationData
	}
	rangeLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if len(data) < offset+rangeLen+4 {
		return ErrInvalidPresentationData
	}
	if err := p.RangeProof.UnmarshalBinary(data[offset : offset+rangeLen]); err != nil {
		return err
	}
	offset += rangeLen
	payloadLen := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if len(data) != offset+payloadLen {
		return ErrInvalidPresentationData
	}
	p.Ciphertext = append([]byte{}, data[offset:]...)
	return nil
}
