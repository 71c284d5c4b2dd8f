// Package undo keeps a linear history of serialized canvas snapshots.
package undo

import (
	"bytes"
	"slices"

	"github.com/inamate/annotate/internal/logging"
)

// Manager is the snapshot history. The baseline is the state before the
// first step; position -1 means the baseline is current.
type Manager struct {
	baseline []byte
	history  [][]byte
	position int
	limit    int

	// nudging is set while consecutive nudge steps coalesce.
	nudging bool
}

// New creates an empty history. A positive limit caps the number of steps;
// the oldest step is folded into the baseline when it is exceeded.
func New(limit int) *Manager {
	return &Manager{position: -1, limit: max(0, limit)}
}

// SetLimit changes the depth cap and trims the history to it.
func (m *Manager) SetLimit(limit int) {
	m.limit = max(0, limit)
	m.trim()
}

// Clear drops every step and the baseline.
func (m *Manager) Clear() {
	m.baseline = nil
	m.history = nil
	m.position = -1
	m.nudging = false
}

// SetFirstStep clears the history and records state as its baseline.
func (m *Manager) SetFirstStep(state []byte) {
	m.Clear()
	m.baseline = slices.Clone(state)
}

// Position is the index of the current step, or -1 at the baseline.
func (m *Manager) Position() int { return m.position }

// Count is the number of steps above the baseline.
func (m *Manager) Count() int { return len(m.history) }

// CanUndo reports whether there is a step to go back from.
func (m *Manager) CanUndo() bool { return m.position >= 0 && len(m.history) > 0 }

// CanRedo reports whether an undone step can be reapplied.
func (m *Manager) CanRedo() bool { return m.position < len(m.history)-1 }

// Current returns the snapshot the canvas should be showing.
func (m *Manager) Current() []byte {
	if m.position < 0 {
		return m.baseline
	}
	return m.history[m.position]
}

// AddCommandStep records state as a new step on top of the current one,
// discarding anything that was undone. A state equal to the current one is
// ignored; the return value reports whether a step was added.
func (m *Manager) AddCommandStep(state []byte) bool {
	m.nudging = false
	return m.push(state)
}

// AddCommandStepNudge records a keyboard nudge. Consecutive nudges replace
// the step the previous nudge added instead of stacking.
func (m *Manager) AddCommandStepNudge(state []byte) bool {
	if m.nudging && m.position >= 0 && m.position == len(m.history)-1 {
		if bytes.Equal(state, m.history[m.position]) {
			return false
		}
		m.history[m.position] = slices.Clone(state)
		return true
	}
	added := m.push(state)
	m.nudging = added
	return added
}

// EndNudge stops coalescing so the next nudge starts its own step.
func (m *Manager) EndNudge() { m.nudging = false }

func (m *Manager) push(state []byte) bool {
	if bytes.Equal(state, m.Current()) {
		logging.Logger().Debug("undo: ignoring unchanged step", "position", m.position)
		return false
	}
	m.history = append(m.history[:m.position+1], slices.Clone(state))
	m.position = len(m.history) - 1
	m.trim()
	return true
}

func (m *Manager) trim() {
	for m.limit > 0 && len(m.history) > m.limit {
		m.baseline = m.history[0]
		m.history = slices.Delete(m.history, 0, 1)
		m.position = max(-1, m.position-1)
	}
}

// Undo steps back and returns the snapshot to restore.
func (m *Manager) Undo() ([]byte, bool) {
	if !m.CanUndo() {
		return nil, false
	}
	m.nudging = false
	m.position--
	return m.Current(), true
}

// Redo steps forward and returns the snapshot to restore.
func (m *Manager) Redo() ([]byte, bool) {
	if !m.CanRedo() {
		return nil, false
	}
	m.nudging = false
	m.position++
	return m.Current(), true
}
