package undo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyHistory(t *testing.T) {
	m := New(0)
	assert.False(t, m.CanUndo())
	assert.False(t, m.CanRedo())

	_, ok := m.Undo()
	assert.False(t, ok)
	_, ok = m.Redo()
	assert.False(t, ok)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	m := New(0)
	m.SetFirstStep([]byte("s0"))
	for _, s := range []string{"s1", "s2", "s3"} {
		require.True(t, m.AddCommandStep([]byte(s)))
	}

	for _, want := range []string{"s2", "s1", "s0"} {
		got, ok := m.Undo()
		require.True(t, ok)
		assert.Equal(t, want, string(got))
	}
	assert.False(t, m.CanUndo())

	for _, want := range []string{"s1", "s2", "s3"} {
		got, ok := m.Redo()
		require.True(t, ok)
		assert.Equal(t, want, string(got))
	}
	assert.False(t, m.CanRedo())
}

func TestAddCommandStepIsIdempotent(t *testing.T) {
	m := New(0)
	m.SetFirstStep([]byte("a"))
	assert.False(t, m.AddCommandStep([]byte("a")))
	assert.Equal(t, 0, m.Count())

	require.True(t, m.AddCommandStep([]byte("b")))
	assert.False(t, m.AddCommandStep([]byte("b")))
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, 0, m.Position())
}

func TestNewStepTruncatesRedo(t *testing.T) {
	m := New(0)
	m.SetFirstStep([]byte("a"))
	m.AddCommandStep([]byte("b"))
	m.AddCommandStep([]byte("c"))
	m.Undo()
	m.Undo()

	require.True(t, m.AddCommandStep([]byte("x")))
	assert.Equal(t, 1, m.Count())
	assert.False(t, m.CanRedo())
	assert.Equal(t, "x", string(m.Current()))
}

func TestNudgesCoalesce(t *testing.T) {
	m := New(0)
	m.SetFirstStep([]byte("0"))
	m.AddCommandStepNudge([]byte("1"))
	m.AddCommandStepNudge([]byte("2"))
	m.AddCommandStepNudge([]byte("3"))
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, "3", string(m.Current()))

	got, ok := m.Undo()
	require.True(t, ok)
	assert.Equal(t, "0", string(got))
}

func TestNudgeAfterCommandStartsNewStep(t *testing.T) {
	m := New(0)
	m.SetFirstStep([]byte("0"))
	m.AddCommandStepNudge([]byte("n1"))
	m.AddCommandStep([]byte("cmd"))
	m.AddCommandStepNudge([]byte("n2"))
	assert.Equal(t, 3, m.Count())

	m.Undo()
	m.Redo()
	m.AddCommandStepNudge([]byte("n3"))
	assert.Equal(t, 4, m.Count())
}

func TestEndNudgeStartsNewStep(t *testing.T) {
	m := New(0)
	m.SetFirstStep([]byte("0"))
	m.AddCommandStepNudge([]byte("a1"))
	m.AddCommandStepNudge([]byte("a2"))
	m.EndNudge()
	m.AddCommandStepNudge([]byte("b1"))
	m.AddCommandStepNudge([]byte("b2"))
	assert.Equal(t, 2, m.Count())

	got, ok := m.Undo()
	require.True(t, ok)
	assert.Equal(t, "a2", string(got))
}

func TestHistoryLimitFoldsIntoBaseline(t *testing.T) {
	m := New(2)
	m.SetFirstStep([]byte("0"))
	m.AddCommandStep([]byte("1"))
	m.AddCommandStep([]byte("2"))
	m.AddCommandStep([]byte("3"))
	assert.Equal(t, 2, m.Count())

	m.Undo()
	got, ok := m.Undo()
	require.True(t, ok)
	assert.Equal(t, "1", string(got))
	assert.False(t, m.CanUndo())
}

func TestSnapshotsAreCopied(t *testing.T) {
	m := New(0)
	state := []byte("abc")
	m.SetFirstStep([]byte("0"))
	m.AddCommandStep(state)
	state[0] = 'x'
	assert.Equal(t, "abc", string(m.Current()))
}
