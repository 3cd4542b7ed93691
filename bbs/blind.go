// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bbs

import (
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/transcript"
)

// NewBlindSignatureContext commits to the hidden messages against the
// message generators and proves knowledge of the openings. BBS needs no
// unblinding factor, so the returned blinder is zero.
func NewBlindSignatureContext(hidden []sigcore.IndexedMessage, pk *PublicKey, nonce fr.Element, rng io.Reader) (*sigcore.BlindSignatureContext, fr.Element, error) {
	var zero fr.Element

	points := make([]bls12381.G1Affine, 0, len(hidden))
	secrets := make([]fr.Element, 0, len(hidden))
	var committing sigcore.CommittedBuilderG1

	for _, m := range hidden {
		if m.Index >= len(pk.Y) {
			return nil, zero, sigcore.ErrInvalidSigningOperation
		}
		secrets = append(secrets, m.Message)
		points = append(points, pk.Y[m.Index])
		if err := committing.CommitRandom(pk.Y[m.Index], rng); err != nil {
			return nil, zero, err
		}
	}

	commitment, err := curve.G1MSM(points, secrets)
	if err != nil {
		return nil, zero, err
	}

	t := transcript.New(sigcore.BlindTranscriptLabel)
	pkb, _ := pk.MarshalBinary()
	t.AppendMessage(sigcore.BlindPublicKeyLabel, pkb)
	g1 := curve.G1Generator()
	t.AppendG1(sigcore.BlindGeneratorLabel, &g1)
	if err := committing.ChallengeContribution(sigcore.BlindRandomCommitment, t); err != nil {
		return nil, zero, err
	}
	t.AppendG1(sigcore.BlindCommitmentLabel, &commitment)
	t.AppendScalar(sigcore.BlindNonceLabel, &nonce)
	challenge := t.ChallengeScalar(sigcore.BlindChallengeLabel)

	proofs, err := committing.GenerateProof(challenge, secrets)
	if err != nil {
		return nil, zero, err
	}
	return &sigcore.BlindSignatureContext{
		Commitment: commitment,
		Challenge:  challenge,
		Proofs:     proofs,
	}, zero, nil
}

// verifyBlindContext checks the holder's proof of hidden messages
// against the signing nonce.
func verifyBlindContext(ctx *sigcore.BlindSignatureContext, known []int, sk *SecretKey, nonce fr.Element) (bool, error) {
	pk := sk.PublicKey().(*PublicKey)
	knownSet := make(map[int]bool, len(known))
	for _, idx := range known {
		if idx >= len(pk.Y) {
			return false, sigcore.ErrInvalidSignatureProof
		}
		knownSet[idx] = true
	}

	points := make([]bls12381.G1Affine, 0, len(pk.Y)+1)
	for i := range pk.Y {
		if !knownSet[i] {
			points = append(points, pk.Y[i])
		}
	}
	points = append(points, ctx.Commitment)

	scalars := make([]fr.Element, 0, len(ctx.Proofs)+1)
	scalars = append(scalars, ctx.Proofs...)
	var negC fr.Element
	negC.Neg(&ctx.Challenge)
	scalars = append(scalars, negC)

	if len(points) != len(scalars) {
		return false, sigcore.ErrInvalidSignatureProof
	}
	commitment, err := curve.G1MSM(points, scalars)
	if err != nil {
		return false, err
	}

	t := transcript.New(sigcore.BlindTranscriptLabel)
	pkb, _ := pk.MarshalBinary()
	t.AppendMessage(sigcore.BlindPublicKeyLabel, pkb)
	g1 := curve.G1Generator()
	t.AppendG1(sigcore.BlindGeneratorLabel, &g1)
	t.AppendG1(sigcore.BlindRandomCommitment, &commitment)
	t.AppendG1(sigcore.BlindCommitmentLabel, &ctx.Commitment)
	t.AppendScalar(sigcore.BlindNonceLabel, &nonce)
	challenge := t.ChallengeScalar(sigcore.BlindChallengeLabel)

	return challenge.Equal(&ctx.Challenge), nil
}
