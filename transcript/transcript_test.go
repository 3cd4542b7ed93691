// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChallengeDeterminism(t *testing.T) {
	a := New("test transcript")
	b := New("test transcript")

	a.AppendMessage("nonce", []byte{1, 2, 3})
	b.AppendMessage("nonce", []byte{1, 2, 3})

	ca := a.ChallengeScalar("challenge bytes")
	cb := b.ChallengeScalar("challenge bytes")
	require.True(t, ca.Equal(&cb))
}

func TestChallengeOrderSensitive(t *testing.T) {
	a := New("test transcript")
	b := New("test transcript")

	a.AppendMessage("first", []byte{1})
	a.AppendMessage("second", []byte{2})
	b.AppendMessage("second", []byte{2})
	b.AppendMessage("first", []byte{1})

	ca := a.ChallengeScalar("challenge bytes")
	cb := b.ChallengeScalar("challenge bytes")
	require.False(t, ca.Equal(&cb))
}

func TestChallengeLabelSensitive(t *testing.T) {
	a := New("test transcript")
	b := New("test transcript")

	a.AppendMessage("nonce", []byte{9})
	b.AppendMessage("other", []byte{9})

	ca := a.ChallengeScalar("challenge bytes")
	cb := b.ChallengeScalar("challenge bytes")
	require.False(t, ca.Equal(&cb))
}

func TestLabelsRecorded(t *testing.T) {
	tr := New("test transcript")
	tr.AppendMessage("nonce", []byte{1})
	tr.AppendUint64("count", 7)
	_ = tr.ChallengeScalar("challenge bytes")

	require.Equal(t, []string{"nonce", "count", "challenge bytes"}, tr.Labels())
}
