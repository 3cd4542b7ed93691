// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package accumulator

import (
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/transcript"
)

// NonMembershipProofCommitting is the commit phase of the
// non-membership proof. Beyond the membership commitments it introduces
// E_d and E_{d^-1} with two extra Pedersen relations proving d != 0.
type NonMembershipProofCommitting struct {
	eC           bls12381.G1Affine
	eD           bls12381.G1Affine
	eDm1         bls12381.G1Affine
	tSigma       bls12381.G1Affine
	tRho         bls12381.G1Affine
	deltaSigma   fr.Element
	deltaRho     fr.Element
	blindingR    fr.Element
	rU           fr.Element
	rV           fr.Element
	rW           fr.Element
	rSigma       fr.Element
	rRho         fr.Element
	rDeltaSigma  fr.Element
	rDeltaRho    fr.Element
	sigma        fr.Element
	rho          fr.Element
	tau          fr.Element
	pi           fr.Element
	capRA        bls12381.G1Affine
	capRB        bls12381.G1Affine
	capRSigma    bls12381.G1Affine
	capRRho      bls12381.G1Affine
	capRDeltaSig bls12381.G1Affine
	capRDeltaRho bls12381.G1Affine
	capRE        bls12381.GT
	witnessD     fr.Element
	witnessValue fr.Element
}

// NewNonMembershipProofCommitting samples the blinding material and
// forms the commitments. blindingFactor, when non-nil, binds the proven
// element to an external proof.
func NewNonMembershipProofCommitting(y Element, witness NonMembershipWitness, params ProofParams, pk PublicKey, blindingFactor *fr.Element, rng io.Reader) (*NonMembershipProofCommitting, error) {
	sigma, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}
	rho, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}

	var sr fr.Element
	sr.Add(&sigma, &rho)
	srZ := curve.G1Mul(&params.Z, &sr)
	eC := curve.G1Add(&witness.C, &srZ)

	tSigma := curve.G1Mul(&params.X, &sigma)
	tRho := curve.G1Mul(&params.Y, &rho)

	var deltaSigma, deltaRho fr.Element
	deltaSigma.Mul(&y, &sigma)
	deltaRho.Mul(&y, &rho)

	var rY fr.Element
	if blindingFactor != nil {
		rY = *blindingFactor
	} else {
		if rY, err = curve.GenerateScalar(proofSalt, nil, rng); err != nil {
			return nil, err
		}
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

	// E_d = d*P + tau*K and E_{d^-1} = d^-1*P + pi*K
	tau, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}
	pi, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}
	g1 := curve.G1Generator()
	eD := msm2(g1, params.K, witness.D, tau)
	var dInv fr.Element
	dInv.Inverse(&witness.D)
	eDm1 := msm2(g1, params.K, dInv, pi)

	rU, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}
	rV, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}
	rW, err := curve.GenerateScalar(proofSalt, nil, rng)
	if err != nil {
		return nil, err
	}

	// R_A = r_u*P + r_v*K, R_B = r_u*E_{d^-1} + r_w*K
	capRA := msm2(g1, params.K, rU, rV)
	capRB := msm2(eDm1, params.K, rU, rW)

	// R_E = e(E_C^r_y + Z^{-(r_ds+r_dr)} + K^{-r_v}, G2) * e(Z^{-(r_s+r_r)}, Q)
	var exp fr.Element
	exp.Add(&rDeltaSigma, &rDeltaRho)
	exp.Neg(&exp)
	var negRV fr.Element
	negRV.Neg(&rV)
	lhs := msm3(eC, params.Z, params.K, rY, exp, negRV)
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

	return &NonMembershipProofCommitting{
		eC:           eC,
		eD:           eD,
		eDm1:         eDm1,
		tSigma:       tSigma,
		tRho:         tRho,
		deltaSigma:   deltaSigma,
		deltaRho:     deltaRho,
		blindingR:    rY,
		rU:           rU,
		rV:           rV,
		rW:           rW,
		rSigma:       rSigma,
		rRho:         rRho,
		rDeltaSigma:  rDeltaSigma,
		rDeltaRho:    rDeltaRho,
		sigma:        sigma,
		rho:          rho,
		tau:          tau,
		pi:           pi,
		capRA:        capRA,
		capRB:        capRB,
		capRSigma:    capRSigma,
		capRRho:      capRRho,
		capRDeltaSig: capRDeltaSig,
		capRDeltaRho: capRDeltaRho,
		capRE:        capRE,
		witnessD:     witness.D,
		witnessValue: y,
	}, nil
}

// GetBytesForChallenge absorbs the commitments into the transcript.
func (n *NonMembershipProofCommitting) GetBytesForChallenge(acc Accumulator, t *transcript.Transcript) {
	t.AppendG1("Accumulator", &acc.V)
	t.AppendG1("Ec", &n.eC)
	t.AppendG1("Ed", &n.eD)
	t.AppendG1("Edm1", &n.eDm1)
	t.AppendG1("T_sigma", &n.tSigma)
	t.AppendG1("T_rho", &n.tRho)
	t.AppendGT("R_E", &n.capRE)
	t.AppendG1("R_A", &n.capRA)
	t.AppendG1("R_B", &n.capRB)
	t.AppendG1("R_sigma", &n.capRSigma)
	t.AppendG1("R_rho", &n.capRRho)
	t.AppendG1("R_delta_sigma", &n.capRDeltaSig)
	t.AppendG1("R_delta_rho", &n.capRDeltaRho)
}

// GenProof completes the Schnorr responses for the challenge.
func (n *NonMembershipProofCommitting) GenProof(challenge fr.Element) NonMembershipProof {
	// s_w opens the relation R_B with secret -pi*d.
	var piD fr.Element
	piD.Mul(&n.pi, &n.witnessD)
	piD.Neg(&piD)
	return NonMembershipProof{
		EC:          n.eC,
		ED:          n.eD,
		EDm1:        n.eDm1,
		TSigma:      n.tSigma,
		TRho:        n.tRho,
		SSigma:      schnorr(n.rSigma, n.sigma, challenge),
		SRho:        schnorr(n.rRho, n.rho, challenge),
		SDeltaSigma: schnorr(n.rDeltaSigma, n.deltaSigma, challenge),
		SDeltaRho:   schnorr(n.rDeltaRho, n.deltaRho, challenge),
		SU:          schnorr(n.rU, n.witnessD, challenge),
		SV:          schnorr(n.rV, n.tau, challenge),
		SW:          schnorr(n.rW, piD, challenge),
		SY:          schnorr(n.blindingR, n.witnessValue, challenge),
	}
}

// NonMembershipProof is the non-interactive non-membership proof.
type NonMembershipProof struct {
	EC          bls12381.G1Affine
	ED          bls12381.G1Affine
	EDm1        bls12381.G1Affine
	TSigma      bls12381.G1Affine
	TRho        bls12381.G1Affine
	SSigma      fr.Element
	SRho        fr.Element
	SDeltaSigma fr.Element
	SDeltaRho   fr.Element
	SU          fr.Element
	SV          fr.Element
	SW          fr.Element
	SY          fr.Element
}

// Finalize recomputes the commitments from the responses and challenge
// for verifier-side transcript replay.
func (p NonMembershipProof) Finalize(acc Accumulator, params ProofParams, pk PublicKey, challenge fr.Element) (NonMembershipProofFinal, error) {
	negTSigma := curve.G1Neg(&p.TSigma)
	negTRho := curve.G1Neg(&p.TRho)
	negX := curve.G1Neg(&params.X)
	negY := curve.G1Neg(&params.Y)

	capRSigma := msm2(params.X, negTSigma, p.SSigma, challenge)
	capRRho := msm2(params.Y, negTRho, p.SRho, challenge)
	capRDeltaSig := msm2(p.TSigma, negX, p.SY, p.SDeltaSigma)
	capRDeltaRho := msm2(p.TRho, negY, p.SY, p.SDeltaRho)

	// R_E = e(E_C^s_y + Z^{-(s_ds+s_dr)} + V^{-c} + K^{-s_v} + E_d^c, G2)
	//     * e(Z^{-(s_s+s_r)} + E_C^c, Q)
	var exp, negC, negSV fr.Element
	exp.Add(&p.SDeltaSigma, &p.SDeltaRho)
	exp.Neg(&exp)
	negC.Neg(&challenge)
	negSV.Neg(&p.SV)
	lhs, err := curve.G1MSM(
		[]bls12381.G1Affine{p.EC, params.Z, acc.V, params.K, p.ED},
		[]fr.Element{p.SY, exp, negC, negSV, challenge},
	)
	if err != nil {
		return NonMembershipProofFinal{}, err
	}
	g2 := curve.G2Generator()
	capRE, err := curve.Pair(&lhs, &g2)
	if err != nil {
		return NonMembershipProofFinal{}, err
	}
	exp.Add(&p.SSigma, &p.SRho)
	exp.Neg(&exp)
	rhs := msm2(params.Z, p.EC, exp, challenge)
	second, err := curve.Pair(&rhs, &pk.Q)
	if err != nil {
		return NonMembershipProofFinal{}, err
	}
	capRE = curve.GTMul(&capRE, &second)

	g1 := curve.G1Generator()

	// R_A = s_u*P + s_v*K - c*E_d
	capRA := msm3(g1, params.K, p.ED, p.SU, p.SV, negC)
	// R_B = s_w*K + s_u*E_{d^-1} - c*P
	capRB := msm3(params.K, p.EDm1, g1, p.SW, p.SU, negC)

	return NonMembershipProofFinal{
		EC:           p.EC,
		ED:           p.ED,
		EDm1:         p.EDm1,
		TSigma:       p.TSigma,
		TRho:         p.TRho,
		CapRA:        capRA,
		CapRB:        capRB,
		CapRE:        capRE,
		CapRSigma:    capRSigma,
		CapRRho:      capRRho,
		CapRDeltaSig: capRDeltaSig,
		CapRDeltaRho: capRDeltaRho,
	}, nil
}

// NonMembershipProofFinal carries the recomputed commitments.
type NonMembershipProofFinal struct {
	EC           bls12381.G1Affine
	ED           bls12381.G1Affine
	EDm1         bls12381.G1Affine
	TSigma       bls12381.G1Affine
	TRho         bls12381.G1Affine
	CapRA        bls12381.G1Affine
	CapRB        bls12381.G1Affine
	CapRE        bls12381.GT
	CapRSigma    bls12381.G1Affine
	CapRRho      bls12381.G1Affine
	CapRDeltaSig bls12381.G1Affine
	CapRDeltaRho bls12381.G1Affine
}

// GetBytesForChallenge mirrors the prover-side transcript absorption.
func (f NonMembershipProofFinal) GetBytesForChallenge(acc Accumulator, t *transcript.Transcript) {
	t.AppendG1("Accumulator", &acc.V)
	t.AppendG1("Ec", &f.EC)
	t.AppendG1("Ed", &f.ED)
	t.AppendG1("Edm1", &f.EDm1)
	t.AppendG1("T_sigma", &f.TSigma)
	t.AppendG1("T_rho", &f.TRho)
	t.AppendGT("R_E", &f.CapRE)
	t.AppendG1("R_A", &f.CapRA)
	t.AppendG1("R_B", &f.CapRB)
	t.AppendG1("R_sigma", &f.CapRSigma)
	t.AppendG1("R_rho", &f.CapRRho)
	t.AppendG1("R_delta_sigma", &f.CapRDeltaSig)
	t.AppendG1("R_delta_rho", &f.CapRDeltaRho)
}
