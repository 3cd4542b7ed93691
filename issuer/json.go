// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package issuer

import (
	"encoding/base64"
	"encoding/json"

	"github.com/luxfi/anoncred/credential"
	"github.com/luxfi/anoncred/sigcore"
)

// b64 is the opaque-binary JSON encoding: base64url without padding.
var b64 = base64.RawURLEncoding

type publicJSON struct {
	ID                      string                       `json:"id"`
	Schema                  *credential.CredentialSchema `json:"schema"`
	Scheme                  string                       `json:"scheme"`
	VerifyingKey            string                       `json:"verifying_key"`
	RevocationVerifyingKey  string                       `json:"revocation_verifying_key"`
	VerifiableEncryptionKey string                       `json:"verifiable_encryption_key"`
	RevocationRegistry      string                       `json:"revocation_registry"`
}

// MarshalJSON renders the issuer public data with base64url opaque
// values.
func (p *Public) MarshalJSON() ([]byte, error) {
	vk, err := p.VerifyingKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	rvk, err := p.RevocationVerifyingKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	vek, err := p.VerifiableEncryptionKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	reg, err := p.RevocationRegistry.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return json.Marshal(publicJSON{
		ID:                      p.ID,
		Schema:                  p.Schema,
		Scheme:                  p.SchemeName,
		VerifyingKey:            b64.EncodeToString(vk),
		RevocationVerifyingKey:  b64.EncodeToString(rvk),
		VerifiableEncryptionKey: b64.EncodeToString(vek),
		RevocationRegistry:      b64.EncodeToString(reg),
	})
}

// UnmarshalJSON reverses MarshalJSON, resolving the signature scheme
// through the registry.
func (p *Public) UnmarshalJSON(data []byte) error {
	var in publicJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	scheme, err := sigcore.SchemeByName(in.Scheme)
	if err != nil {
		return err
	}
	vk, err := b64.DecodeString(in.VerifyingKey)
	if err != nil {
		return err
	}
	if p.VerifyingKey, err = scheme.UnmarshalPublicKey(vk); err != nil {
		return err
	}
	rvk, err := b64.DecodeString(in.RevocationVerifyingKey)
	if err != nil {
		return err
	}
	if err := p.RevocationVerifyingKey.UnmarshalBinary(rvk); err != nil {
		return err
	}
	vek, err := b64.DecodeString(in.VerifiableEncryptionKey)
	if err != nil {
		return err
	}
	if err := p.VerifiableEncryptionKey.UnmarshalBinary(vek); err != nil {
		return err
	}
	reg, err := b64.DecodeString(in.RevocationRegistry)
	if err != nil {
		return err
	}
	if err := p.RevocationRegistry.UnmarshalBinary(reg); err != nil {
		return err
	}
	p.ID = in.ID
	p.Schema = in.Schema
	p.SchemeName = in.Scheme
	return nil
}
