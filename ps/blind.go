// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ps

import (
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/transcript"
)

// NewBlindSignatureContext commits to the hidden messages against the
// issuer's blind generators and proves knowledge of the openings. The
// returned blinder must be kept by the holder to unblind the signature.
func NewBlindSignatureContext(hidden []sigcore.IndexedMessage, pk *PublicKey, nonce fr.Element, rng io.Reader) (*sigcore.BlindSignatureContext, fr.Element, error) {
	var zero fr.Element

	points := make([]bls12381.G1Affine, 0, len(hidden)+1)
	secrets := make([]fr.Element, 0, len(hidden)+1)
	var committing sigcore.CommittedBuilderG1

	for _, m := range hidden {
		if m.Index >= len(pk.YBlinds) {
			return nil, zero, sigcore.ErrInvalidSigningOperation
		}
		secrets = append(secrets, m.Message)
		points = append(points, pk.YBlinds[m.Index])
		if err := committing.CommitRandom(pk.YBlinds[m.Index], rng); err != nil {
			return nil, zero, err
		}
	}

	blinder, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, zero, err
	}
	g1 := curve.G1Generator()
	secrets = append(secrets, blinder)
	points = append(points, g1)
	if err := committing.CommitRandom(g1, rng); err != nil {
		return nil, zero, err
	}

	commitment, err := curve.G1MSM(points, secrets)
	if err != nil {
		return nil, zero, err
	}

	t := transcript.New(sigcore.BlindTranscriptLabel)
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
	}, blinder, nil
}

// verifyBlindContext checks the holder's proof of hidden messages
// against the signing nonce. known lists the indices the issuer will
// sign in the clear; every other index is assumed hidden.
func verifyBlindContext(ctx *sigcore.BlindSignatureContext, known []int, sk *SecretKey, nonce fr.Element) (bool, error) {
	knownSet := make(map[int]bool, len(known))
	for _, idx := range known {
		if idx >= len(sk.Y) {
			return false, sigcore.ErrInvalidSignatureProof
		}
		knownSet[idx] = true
	}

	points := make([]bls12381.G1Affine, 0, len(sk.Y)+2)
	for i := range sk.Y {
		if !knownSet[i] {
			points = append(points, curve.G1MulBase(&sk.Y[i]))
		}
	}
	points = append(points, curve.G1Generator())
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
	t.AppendG1(sigcore.BlindRandomCommitment, &commitment)
	t.AppendG1(sigcore.BlindCommitmentLabel, &ctx.Commitment)
	t.AppendScalar(sigcore.BlindNonceLabel, &nonce)
	challenge := t.ChallengeScalar(sigcore.BlindChallengeLabel)

	return challenge.Equal(&ctx.Challenge), nil
}
