package service

import (
	"time"

	"decryptrace/internal/model"
)

// MaxRoundDuration caps any countdown an admin can set
const MaxRoundDuration = 24 * time.Hour

// command is one admin transition request
type command struct {
	kind     model.StateChangeKind
	duration time.Duration
}

// transition applies cmd to cur at now and returns the next state. It never
// mutates cur. Reset is not a transition: it wipes more than the state.
func transition(cur *model.GameState, cmd command, now time.Time) (*model.GameState, error) {
	next := cur.Clone()

	switch cmd.kind {
	case model.StateStart:
		if cur.Active {
			return nil, ErrAlreadyActive
		}
		if cmd.duration <= 0 || cmd.duration > MaxRoundDuration {
			return nil, ErrInvalidDuration
		}
		end := now.Add(cmd.duration)
		next.Active = true
		next.IsPaused = false
		next.StartTime = &now
		next.EndTime = &end
		next.PausedTimeRemaining = 0

	case model.StateStop:
		if !cur.Active {
			return nil, ErrNotActive
		}
		next.Active = false
		next.IsPaused = false
		next.EndTime = nil
		next.PausedTimeRemaining = 0

	case model.StatePause:
		if !cur.Active {
			return nil, ErrNotActive
		}
		if cur.IsPaused {
			return nil, ErrAlreadyPaused
		}
		next.IsPaused = true
		next.PausedTimeRemaining = cur.Remaining(now)

	case model.StateResume:
		if !cur.Active {
			return nil, ErrNotActive
		}
		if !cur.IsPaused {
			return nil, ErrNotPaused
		}
		end := now.Add(cur.PausedTimeRemaining)
		next.IsPaused = false
		next.EndTime = &end
		next.PausedTimeRemaining = 0

	case model.StateTimerReset:
		if !cur.Active {
			return nil, ErrNotActive
		}
		if cmd.duration <= 0 || cmd.duration > MaxRoundDuration {
			return nil, ErrInvalidDuration
		}
		end := now.Add(cmd.duration)
		next.IsPaused = false
		next.EndTime = &end
		next.PausedTimeRemaining = 0

	default:
		panic("unknown game transition: " + string(cmd.kind))
	}

	return next, nil
}
