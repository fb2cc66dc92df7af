package service

import (
	"testing"
	"time"

	"decryptrace/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(d time.Duration) time.Time { return testEpoch.Add(d) }

func ptr(t time.Time) *time.Time { return &t }

func running(end time.Time) *model.GameState {
	return &model.GameState{ID: model.GameStateID, Active: true, StartTime: ptr(testEpoch), EndTime: &end}
}

func paused(remaining time.Duration) *model.GameState {
	st := running(at(time.Hour))
	st.IsPaused = true
	st.PausedTimeRemaining = remaining
	return st
}

func TestTransitionRejections(t *testing.T) {
	tests := []struct {
		name string
		cur  *model.GameState
		cmd  command
		want error
	}{
		{"start while active", running(at(time.Minute)), command{kind: model.StateStart, duration: time.Minute}, ErrAlreadyActive},
		{"start without duration", model.DefaultGameState(), command{kind: model.StateStart}, ErrInvalidDuration},
		{"stop while inactive", model.DefaultGameState(), command{kind: model.StateStop}, ErrNotActive},
		{"pause while inactive", model.DefaultGameState(), command{kind: model.StatePause}, ErrNotActive},
		{"pause while paused", paused(time.Minute), command{kind: model.StatePause}, ErrAlreadyPaused},
		{"resume while running", running(at(time.Minute)), command{kind: model.StateResume}, ErrNotPaused},
		{"resume while inactive", model.DefaultGameState(), command{kind: model.StateResume}, ErrNotActive},
		{"timer reset while inactive", model.DefaultGameState(), command{kind: model.StateTimerReset, duration: time.Minute}, ErrNotActive},
		{"timer reset negative", running(at(time.Minute)), command{kind: model.StateTimerReset, duration: -time.Second}, ErrInvalidDuration},
		{"start beyond cap", model.DefaultGameState(), command{kind: model.StateStart, duration: MaxRoundDuration + time.Second}, ErrInvalidDuration},
		{"timer reset beyond cap", running(at(time.Minute)), command{kind: model.StateTimerReset, duration: MaxRoundDuration + time.Second}, ErrInvalidDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.cur.Clone()
			next, err := transition(tt.cur, tt.cmd, testEpoch)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, next)
			assert.Equal(t, before, tt.cur, "rejected transition must not touch the state")
		})
	}
}

func TestTransitionStart(t *testing.T) {
	next, err := transition(model.DefaultGameState(), command{kind: model.StateStart, duration: 10 * time.Minute}, testEpoch)
	require.NoError(t, err)

	assert.True(t, next.Active)
	assert.False(t, next.IsPaused)
	assert.Equal(t, testEpoch, *next.StartTime)
	assert.Equal(t, at(10*time.Minute), *next.EndTime)
	assert.Equal(t, model.PhaseRunning, next.Phase())
}

func TestTransitionStopClearsCountdown(t *testing.T) {
	next, err := transition(paused(3*time.Minute), command{kind: model.StateStop}, testEpoch)
	require.NoError(t, err)

	assert.False(t, next.Active)
	assert.False(t, next.IsPaused)
	assert.Nil(t, next.EndTime)
	assert.Zero(t, next.PausedTimeRemaining)
	assert.Equal(t, model.PhaseInactive, next.Phase())
}

func TestTransitionPauseFloorsAtZero(t *testing.T) {
	next, err := transition(running(at(time.Minute)), command{kind: model.StatePause}, at(2*time.Minute))
	require.NoError(t, err)

	assert.True(t, next.IsPaused)
	assert.Zero(t, next.PausedTimeRemaining)
}

func TestPauseResumeConservesCountdown(t *testing.T) {
	st, err := transition(model.DefaultGameState(), command{kind: model.StateStart, duration: 10 * time.Minute}, testEpoch)
	require.NoError(t, err)

	st, err = transition(st, command{kind: model.StatePause}, at(3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 7*time.Minute, st.PausedTimeRemaining)
	assert.Equal(t, 7*time.Minute, st.Remaining(at(30*time.Minute)), "remaining is frozen while paused")

	st, err = transition(st, command{kind: model.StateResume}, at(8*time.Minute))
	require.NoError(t, err)

	assert.False(t, st.IsPaused)
	assert.Zero(t, st.PausedTimeRemaining)
	// original end was +10m, shifted by the 5m pause
	assert.Equal(t, at(15*time.Minute), *st.EndTime)
	assert.Equal(t, 7*time.Minute, st.Remaining(at(8*time.Minute)))
}

func TestTransitionTimerResetUnpauses(t *testing.T) {
	next, err := transition(paused(time.Minute), command{kind: model.StateTimerReset, duration: 20 * time.Minute}, testEpoch)
	require.NoError(t, err)

	assert.False(t, next.IsPaused)
	assert.Equal(t, at(20*time.Minute), *next.EndTime)
}
