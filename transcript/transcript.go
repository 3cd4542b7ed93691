// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transcript provides the Fiat-Shamir transcript used by every
// proof in the engine: an append-only typed byte log backed by a Merlin
// transcript, producing challenge scalars by wide reduction of 64-byte
// outputs.
//
// Transcripts are order-sensitive. Prover and verifier must perform the
// same appends with the same labels in the same order or challenge
// derivation diverges and verification fails.
package transcript

import (
	"encoding/binary"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/gtank/merlin"

	"github.com/luxfi/anoncred/curve"
)

// Transcript is an append-only log of labelled public values.
type Transcript struct {
	inner  *merlin.Transcript
	labels []string
}

// New creates a transcript under the given application label.
func New(label string) *Transcript {
	return &Transcript{inner: merlin.NewTranscript(label)}
}

// AppendMessage appends labelled bytes.
func (t *Transcript) AppendMessage(label string, data []byte) {
	t.labels = append(t.labels, label)
	t.inner.AppendMessage([]byte(label), data)
}

// AppendG1 appends a compressed G1 point.
func (t *Transcript) AppendG1(label string, p *bls12381.G1Affine) {
	b := p.Bytes()
	t.AppendMessage(label, b[:])
}

// AppendG2 appends a compressed G2 point.
func (t *Transcript) AppendG2(label string, p *bls12381.G2Affine) {
	b := p.Bytes()
	t.AppendMessage(label, b[:])
}

// AppendGT appends a target group element.
func (t *Transcript) AppendGT(label string, gt *bls12381.GT) {
	t.AppendMessage(label, curve.GTBytes(gt))
}

// AppendScalar appends a scalar in canonical big-endian form.
func (t *Transcript) AppendScalar(label string, s *fr.Element) {
	b := s.Bytes()
	t.AppendMessage(label, b[:])
}

// AppendUint64 appends a little-endian 64-bit integer.
func (t *Transcript) AppendUint64(label string, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	t.AppendMessage(label, b[:])
}

// ChallengeBytes extracts n challenge bytes under the given label.
func (t *Transcript) ChallengeBytes(label string, n int) []byte {
	t.labels = append(t.labels, label)
	return t.inner.ExtractBytes([]byte(label), n)
}

// ChallengeScalar derives a challenge scalar by wide reduction of 64
// challenge bytes.
func (t *Transcript) ChallengeScalar(label string) fr.Element {
	var wide [64]byte
	copy(wide[:], t.ChallengeBytes(label, 64))
	return curve.ScalarFromWide(wide)
}

// Labels returns every label appended or extracted so far, in order.
// The label sequence is a wire-format contract; the change-detector test
// in the presentation package pins it against a golden list.
func (t *Transcript) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}
