// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bulletproofs

import (
	"encoding/binary"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
)

// MarshalBinary encodes the proof as the fixed header points and
// scalars followed by the length-prefixed folding rounds.
func (p *RangeProof) MarshalBinary() ([]byte, error) {
	rounds := len(p.IPP.L)
	out := make([]byte, 0, 4*curve.G1Size+5*curve.ScalarSize+4+2*rounds*curve.G1Size)
	for _, pt := range []*bls12381.G1Affine{&p.A, &p.S, &p.T1, &p.T2} {
		b := pt.Bytes()
		out = append(out, b[:]...)
	}
	for _, s := range []*fr.Element{&p.TX, &p.TXBlinding, &p.EBlinding, &p.IPP.A, &p.IPP.B} {
		b := s.Bytes()
		out = append(out, b[:]...)
	}
	var cnt [4]byte
	binary.BigEndian.PutUint32(cnt[:], uint32(rounds))
	out = append(out, cnt[:]...)
	for k := 0; k < rounds; k++ {
		l := p.IPP.L[k].Bytes()
		out = append(out, l[:]...)
		r := p.IPP.R[k].Bytes()
		out = append(out, r[:]...)
	}
	return out, nil
}

// UnmarshalBinary decodes a proof produced by MarshalBinary.
func (p *RangeProof) UnmarshalBinary(data []byte) error {
	header := 4*curve.G1Size + 5*curve.ScalarSize + 4
	if len(data) < header {
		return ErrInvalidProof
	}
	offset := 0
	for _, pt := range []*bls12381.G1Affine{&p.A, &p.S, &p.T1, &p.T2} {
		v, err := curve.G1FromBytes(data[offset : offset+curve.G1Size])
		if err != nil {
			return err
		}
		*pt = v
		offset += curve.G1Size
	}
	for _, s := range []*fr.Element{&p.TX, &p.TXBlinding, &p.EBlinding, &p.IPP.A, &p.IPP.B} {
		v, err := curve.ScalarFromBytes(data[offset : offset+curve.ScalarSize])
		if err != nil {
			return err
		}
		*s = v
		offset += curve.ScalarSize
	}
	rounds := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if rounds > 16 || len(data) != offset+2*rounds*curve.G1Size {
		return ErrInvalidProof
	}
	p.IPP.L = make([]bls12381.G1Affine, rounds)
	p.IPP.R = make([]bls12381.G1Affine, rounds)
	for k := 0; k < rounds; k++ {
		var err error
		if p.IPP.L[k], err = curve.G1FromBytes(data[offset : offset+curve.G1Size]); err != nil {
			return err
		}
		offset += curve.G1Size
		if p.IPP.R[k], err = curve.G1FromBytes(data[offset : offset+curve.G1Size]); err != nil {
			return err
		}
		offset += curve.G1Size
	}
	return nil
}
