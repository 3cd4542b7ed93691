// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package presentation

import (
	"io"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/luxfi/anoncred/claims"
	"github.com/luxfi/anoncred/curve"
	"github.com/luxfi/anoncred/sigcore"
	"github.com/luxfi/anoncred/transcript"
)

// presentationLabel seeds every presentation transcript.
const presentationLabel = "credx presentation"

func randomScalar(rng io.Reader) (fr.Element, error) {
	return curve.RandomScalar(rng)
}

// newTranscript starts the shared transcript: curve parameters, the
// verifier nonce and the schema contributions in insertion order.
func newTranscript(schema *Schema, nonce []byte) *transcript.Transcript {
	t := transcript.New(presentationLabel)
	t.AppendMessage("curve name", []byte("BLS12-381"))
	g1 := curve.G1Generator()
	g2 := curve.G2Generator()
	t.AppendG1("generator g1", &g1)
	t.AppendG2("generator g2", &g2)
	t.AppendMessage("nonce", nonce)
	schema.AddChallengeContribution(t)
	return t
}

// addDisclosedContribution absorbs the disclosed (index, label, value)
// triples of one signature statement in index order.
func addDisclosedContribution(id string, disclosed map[string]disclosedClaim, t *transcript.Transcript) {
	t.AppendMessage("disclosed statement id", []byte(id))
	t.AppendUint64("disclosed messages length", uint64(len(disclosed)))

	labels := make([]string, 0, len(disclosed))
	for label := range disclosed {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(a, b int) bool {
		return disclosed[labels[a]].Index < disclosed[labels[b]].Index
	})
	for _, label := range labels {
		d := disclosed[label]
		t.AppendUint64("disclosed message index", uint64(d.Index))
		t.AppendMessage("disclosed message label", []byte(label))
		scalar := d.Claim.ToScalar()
		t.AppendScalar("disclosed message value", &scalar)
	}
}

// disclosedClaim pairs a revealed claim with its slot index.
type disclosedClaim struct {
	Index int
	Claim claims.ClaimData
}

// revealedMessages converts a statement's disclosed claims into the
// indexed form the signature PoK verifier consumes.
func revealedMessages(disclosed map[string]disclosedClaim) []sigcore.IndexedMessage {
	out := make([]sigcore.IndexedMessage, 0, len(disclosed))
	for _, d := range disclosed {
		out = append(out, sigcore.IndexedMessage{Index: d.Index, Message: d.Claim.ToScalar()})
	}
	return sigcore.SortedRevealed(out)
}
