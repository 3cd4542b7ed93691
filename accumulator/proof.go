// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accumulator

import (
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/transcript"
)

// ProofParams are the four independent G1 generators of section 8 of
// eprint 2020/777, derived by hash-to-curve so prover and verifier agree
// deterministically given the public key and optional entropy.
type ProofParams struct {
	X bls12381.G1Affine
	Y bls12381.G1Affine
	Z bls12381.G1Affine
	K bls12381.G1Affine
}

// NewProofParams derives the generators from the accumulator public key
// and an optional entropy string.
func NewProofParams(pk PublicKey, entropy []byte) (ProofParams, error) {
	prefix := make([]byte, 32)
	for i := range prefix {
		prefix[i] = 0xFF
	}
	pkb, _ := pk.MarshalBinary()
	data := make([]byte, 0, len(prefix)+len(entropy)+len(pkb))
	data = append(data, prefix...)
	data = append(data, entropy...)
	data = append(data, pkb...)

	var params ProofParams
	var err error
	if params.Z, err = curve.HashToG1(data, []byte(curve.CommitmentGeneratorDst)); err != nil {
		return params, err
	}
	data[0] = 0xFE
	if params.Y, err = curve.HashToG1(data, []byte(curve.CommitmentGeneratorDst)); err != nil {
		return params, err
	}
	data[0] = 0xFD
	if params.X, err = curve.HashToG1(data, []byte(curve.CommitmentGeneratorDst)); err != nil {
		return params, err
	}
	data[0] = 0xFC
	if params.K, err = curve.HashToG1(data, []byte(curve.CommitmentGeneratorDst)); err != nil {
		return params, err
	}
	return params, nil
}

// AddToTranscript absorbs the generators.
func (p ProofParams) AddToTranscript(t *transcript.Transcript) {
	t.AppendG1("Proof Param K", &p.K)
	t.AppendG1("Proof Param X", &p.X)
	t.AppendG1("Proof Param Y", &p.Y)
	t.AppendG1("Proof Param Z", &p.Z)
}

// schnorr computes the response s = r + c*v.
func schnorr(r, v, challenge fr.Element) fr.Element {
	var out fr.Element
	out.Mul(&v, &challenge)
	out.Add(&out, &r)
	return out
}

func msm2(p1, p2 bls12381.G1Affine, s1, s2 fr.Element) bls12381.G1Affine {
	out, _ := curve.G1MSM([]bls12381.G1Affine{p1, p2}, []fr.Element{s1, s2})
	return out
}

func msm3(p1, p2, p3 bls12381.G1Affine, s1, s2, s3 fr.Element) bls12381.G1Affine {
	out, _ := curve.G1MSM([]bls12381.G1Affine{p1, p2, p3}, []fr.Element{s1, s2, s3})
	return out
}

// MembershipProofCommitting is the commit phase of the membership
// proof. Next comes GetBytesForChallenge, then GenProof.
type MembershipProofCommitting struct {
	eC            bls12381.G1Affine
	tSigma        bls12381.G1Affine
	tRho          bls12381.G1Affine
	deltaSigma    fr.Element
	deltaRho      fr.Element
	blindingR     fr.Element
	rSigma        fr.Element
	rRho          fr.Element
	rDeltaSigma   fr.Element
	rDeltaRho     fr.Element
	sigma         fr.Element
	rho           fr.Element
	capRSigma     bls12381.G1Affine
	capRRho       bls12381.G1Affine
	capRDeltaSig  bls12381.G1Affine
	capRDeltaRho  bls12381.G1Affine
	capRE         bls12381.GT
	witnessValue  fr.Element
}

// NewMembershipProofCommitting samples the blinding material and forms
// the section 8 commitments. y carries the element together with its
// disclosure policy; external blinding binds this proof to another
// sub-proof over the same value.
func NewMembershipProofCommitting(y sigcore.ProofMessage, witness MembershipWitness, params ProofParams, pk PublicKey, rng io.Reader) (*MembershipProofCommitting, error) {
	message := y.Value

	sigma, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}
	rho, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}

	// E_C = C + (sigma + rho)*Z
	var sr fr.Element
	sr.Add(&sigma, &rho)
	srZ := curve.G1Mul(&params.Z, &sr)
	eC := curve.G1Add(&witness.C, &srZ)

	tSigma := curve.G1Mul(&params.X, &sigma)
	tRho := curve.G1Mul(&params.Y, &rho)

	var deltaSigma, deltaRho fr.Element
	deltaSigma.Mul(&message, &sigma)
	deltaRho.Mul(&message, &rho)

	// r_y is random unless this proof binds to an external blinder.
	rY, err := y.BlinderOrRandom(rng)
	if err != nil {
		return nil, err
	}
	rSigma, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}
	rRho, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}
	rDeltaSigma, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}
	rDeltaRho, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}

	capRSigma := curve.G1Mul(&params.X, &rSigma)
	capRRho := curve.G1Mul(&params.Y, &rRho)

	negX := curve.G1Neg(&params.X)
	negY := curve.G1Neg(&params.Y)
	capRDeltaSig := msm2(tSigma, negX, rY, rDeltaSigma)
	capRDeltaRho := msm2(tRho, negY, rY, rDeltaRho)

	// R_E = e(E_C^r_y + Z^{-r_ds - r_dr}, G2) * e(Z^{-r_s - r_r}, Q)
	var exp fr.Element
	exp.Add(&rDeltaSigma, &rDeltaRho)
	exp.Neg(&exp)
	lhs := msm2(eC, params.Z, rY, exp)
	g2 := curve.G2Generator()
	capRE, err := curve.Pair(&lhs, &g2)
	if err != nil {
		return nil, err
	}
	exp.Add(&rSigma, &rRho)
	exp.Neg(&exp)
	zExp := curve.G1Mul(&params.Z, &exp)
	second, err := curve.Pair(&zExp, &pk.Q)
	if err != nil {
		return nil, err
	}
	capRE = curve.GTMul(&capRE, &second)

	return &MembershipProofCommitting{
		eC:           eC,
		tSigma:       tSigma,
		tRho:         tRho,
		deltaSigma:   deltaSigma,
		deltaRho:     deltaRho,
		blindingR:    rY,
		rSigma:       rSigma,
		rRho:         rRho,
		rDeltaSigma:  rDeltaSigma,
		rDeltaRho:    rDeltaRho,
		sigma:        sigma,
		rho:          rho,
		capRSigma:    capRSigma,
		capRRho:      capRRho,
		capRDeltaSig: capRDeltaSig,
		capRDeltaRho: capRDeltaRho,
		capRE:        capRE,
		witnessValue: message,
	}, nil
}

// GetBytesForChallenge absorbs the commitments into the transcript.
func (m *MembershipProofCommitting) GetBytesForChallenge(t *transcript.Transcript) {
	t.AppendG1("Ec", &m.eC)
	t.AppendG1("T_sigma", &m.tSigma)
	t.AppendG1("T_rho", &m.tRho)
	t.AppendGT("R_E", &m.capRE)
	t.AppendG1("R_sigma", &m.capRSigma)
	t.AppendG1("R_rho", &m.capRRho)
	t.AppendG1("R_delta_sigma", &m.capRDeltaSig)
	t.AppendG1("R_delta_rho", &m.capRDeltaRho)
}

// GenProof completes the Schnorr responses for the challenge.
func (m *MembershipProofCommitting) GenProof(challenge fr.Element) MembershipProof {
	return MembershipProof{
		EC:          m.eC,
		TSigma:      m.tSigma,
		TRho:        m.tRho,
		SY:          schnorr(m.blindingR, m.witnessValue, challenge),
		SSigma:      schnorr(m.rSigma, m.sigma, challenge),
		SRho:        schnorr(m.rRho, m.rho, challenge),
		SDeltaSigma: schnorr(m.rDeltaSigma, m.deltaSigma, challenge),
		SDeltaRho:   schnorr(m.rDeltaRho, m.deltaRho, challenge),
	}
}

// MembershipProof is the non-interactive membership proof.
type MembershipProof struct {
	EC          bls12381.G1Affine
	TSigma      bls12381.G1Affine
	TRho        bls12381.G1Affine
	SSigma      fr.Element
	SRho        fr.Element
	SDeltaSigma fr.Element
	SDeltaRho   fr.Element
	SY          fr.Element
}

// Finalize recomputes the commitments from the responses and challenge
// for verifier-side transcript replay.
func (p MembershipProof) Finalize(acc Accumulator, params ProofParams, pk PublicKey, challenge fr.Element) (MembershipProofFinal, error) {
	negTSigma := curve.G1Neg(&p.TSigma)
	negTRho := curve.G1Neg(&p.TRho)
	negX := curve.G1Neg(&params.X)
	negY := curve.G1Neg(&params.Y)

	capRSigma := msm2(params.X, negTSigma, p.SSigma, challenge)
	capRRho := msm2(params.Y, negTRho, p.SRho, challenge)
	capRDeltaSig := msm2(p.TSigma, negX, p.SY, p.SDeltaSigma)
	capRDeltaRho := msm2(p.TRho, negY, p.SY, p.SDeltaRho)

	// R_E = e(E_C^s_y + Z^{-(s_ds+s_dr)} + V^{-c}, G2)
	//     * e(Z^{-(s_s+s_r)} + E_C^c, Q)
	var exp, negC fr.Element
	exp.Add(&p.SDeltaSigma, &p.SDeltaRho)
	exp.Neg(&exp)
	negC.Neg(&challenge)
	lhs := msm3(p.EC, params.Z, acc.V, p.SY, exp, negC)
	g2 := curve.G2Generator()
	capRE, err := curve.Pair(&lhs, &g2)
	if err != nil {
		return MembershipProofFinal{}, err
	}

	exp.Add(&p.SSigma, &p.SRho)
	exp.Neg(&exp)
	rhs := msm2(params.Z, p.EC, exp, challenge)
	second, err := curve.Pair(&rhs, &pk.Q)
	if err != nil {
		return MembershipProofFinal{}, err
	}
	capRE = curve.GTMul(&capRE, &second)

	return MembershipProofFinal{
		EC:           p.EC,
		TSigma:       p.TSigma,
		TRho:         p.TRho,
		CapRE:        capRE,
		CapRSigma:    capRSigma,
		CapRRho:      capRRho,
		CapRDeltaSig: capRDeltaSig,
		CapRDeltaRho: capRDeltaRho,
	}, nil
}

// MembershipProofFinal carries the recomputed commitments.
type MembershipProofFinal struct {
	EC           bls12381.G1Affine
	TSigma       bls12381.G1Affine
	TRho         bls12381.G1Affine
	CapRE        bls12381.GT
	CapRSigma    bls12381.G1Affine
	CapRRho      bls12381.G1Affine
	CapRDeltaSig bls12381.G1Affine
	CapRDeltaRho bls12381.G1Affine
}

// GetBytesForChallenge mirrors the prover-side transcript absorption.
func (f MembershipProofFinal) GetBytesForChallenge(t *transcript.Transcript) {
	t.AppendG1("Ec", &f.EC)
	t.AppendG1("T_sigma", &f.TSigma)
	t.AppendG1("T_rho", &f.TRho)
	t.AppendGT("R_E", &f.CapRE)
	t.AppendG1("R_sigma", &f.CapRSigma)
	t.AppendG1("R_rho", &f.CapRRho)
	t.AppendG1("R_delta_sigma", &f.CapRDeltaSig)
	t.AppendG1("R_delta_rho", &f.CapRDeltaRho)
}

// MarshalBinary encodes the proof points and responses.
func (p *MembershipProof) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, 3*curve.G1Size+5*curve.ScalarSize)
	for _, pt := range []*bls12381.G1Affine{&p.EC, &p.TSigma, &p.TRho} {
		b := pt.Bytes()
		out = append(out, b[:]...)
	}
	for _, s := range []*fr.Element{&p.SSigma, &p.SRho, &p.SDeltaSigma, &p.SDeltaRho, &p.SY} {
		b := s.Bytes()
		out = append(out, b[:]...)
	}
	return out, nil
}

// UnmarshalBinary decodes a proof produced by MarshalBinary.
func (p *MembershipProof) UnmarshalBinary(data []byte) error {
	if len(data) != 3*curve.G1Size+5*curve.ScalarSize {
		return ErrInvalidWitness
	}
	offset := 0
	for _, pt := range []*bls12381.G1Affine{&p.EC, &p.TSigma, &p.TRho} {
		v, err := curve.G1FromBytes(data[offset : offset+curve.G1Size])
		if err != nil {
			return err
		}
		*pt = v
		offset += curve.G1Size
	}
	for _, s := range []*fr.Element{&p.SSigma, &p.SRho, &p.SDeltaSigma, &p.SDeltaRho, &p.SY} {
		v, err := curve.ScalarFromBytes(data[offset : offset+curve.ScalarSize])
		if err != nil {
			return err
		}
		*s = v
		offset += curve.ScalarSize
	}
	return nil
}
