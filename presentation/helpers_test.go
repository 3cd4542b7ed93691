// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/statement"
	"github.com/luxfi/anoncred/transcript"
)

// newCommitmentStatement derives deterministic commitment generators
// the way verifiers publish them.
func newCommitmentStatement(t *testing.T, id, refID string, claim int) *statement.Commitment {
	t.Helper()
	mg, err := curve.HashToG1(
		[]byte("presentation commitment message generator"),
		[]byte(curve.CommitmentGeneratorDst))
	require.NoError(t, err)
	bg, err := curve.HashToG1(
		[]byte("presentation commitment blinder generator"),
		[]byte(curve.CommitmentGeneratorDst))
	require.NoError(t, err)
	return &statement.Commitment{
		StatementID:      id,
		ReferenceID:      refID,
		Claim:            claim,
		MessageGenerator: mg,
		BlinderGenerator: bg,
	}
}

func mulG1(t *testing.T, p bls12381.G1Affine, s fr.Element) bls12381.G1Affine {
	t.Helper()
	return curve.G1Mul(&p, &s)
}

// Transcript label change-detector: the labels a reveal-plus-range
// presentation emits are a wire contract. Update the golden list only
// with a deliberate format change.
func TestStatementLabelGolden(t *testing.T) {
	lower := int64(0)
	upper := int64(10)
	st := &statement.Range{
		StatementID: "range-1",
		ReferenceID: "commit-1",
		SignatureID: "sig-1",
		Claim:       3,
		Lower:       &lower,
		Upper:       &upper,
	}
	tr := transcript.New("golden")
	st.AddChallengeContribution(tr)
	require.Equal(t, []string{
		"statement type",
		"statement id",
		"reference commitment statement id",
		"reference signature statement id",
		"claim index",
		"lower version",
		"lower",
		"upper version",
		"upper",
	}, tr.Labels())

	commitment := newCommitmentStatement(t, "commit-1", "sig-1", 3)
	tr = transcript.New("golden")
	commitment.AddChallengeContribution(tr)
	require.Equal(t, []string{
		"statement type",
		"statement id",
		"reference statement id",
		"claim index",
		"message generator",
		"blinder generator",
	}, tr.Labels())
}
