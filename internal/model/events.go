package model

import "time"

// Event is the closed set of notifications pushed to connected clients.
// Only types in this file implement it.
type Event interface {
	isEvent()
}

// StateChangeKind names the admin transition behind a StateChanged event
type StateChangeKind string

const (
	StateStart      StateChangeKind = "start"
	StateStop       StateChangeKind = "stop"
	StatePause      StateChangeKind = "pause"
	StateResume     StateChangeKind = "resume"
	StateTimerReset StateChangeKind = "timer_reset"
	StateReset      StateChangeKind = "reset"
)

// StateChanged carries the game state after a transition
type StateChanged struct {
	Kind          StateChangeKind `json:"type"`
	Active        bool            `json:"active"`
	EndTime       *time.Time      `json:"endTime"`
	IsPaused      bool            `json:"isPaused"`
	RemainingTime int64           `json:"remainingTime"`
}

// NewStateChanged builds a StateChanged event from a state at now
func NewStateChanged(kind StateChangeKind, st *GameState, now time.Time) StateChanged {
	return StateChanged{
		Kind:          kind,
		Active:        st.Active,
		EndTime:       st.EndTime,
		IsPaused:      st.IsPaused,
		RemainingTime: st.Remaining(now).Milliseconds(),
	}
}

// WinnerAdmitted is emitted once per roster entry
type WinnerAdmitted struct {
	TeamName  string `json:"teamName"`
	IsCorrect bool   `json:"isCorrect"`
	Position  int    `json:"position"`
}

// GameComplete is emitted when the last roster slot is filled
type GameComplete struct {
	Winners []*Winner `json:"winners"`
}

// TeamAssigned is sent to a team room when it receives its message
type TeamAssigned struct {
	TeamName  string    `json:"teamName"`
	MessageID string    `json:"messageId"`
	Timestamp time.Time `json:"timestamp"`
}

// TeamBlocked reports a block or unblock of a team
type TeamBlocked struct {
	TeamName  string `json:"teamName"`
	IsBlocked bool   `json:"isBlocked"`
	Message   string `json:"message"`
}

// ActiveMessageChanged reports a change of the legacy global message flag
type ActiveMessageChanged struct {
	MessageID string `json:"messageId"`
}

func (StateChanged) isEvent()         {}
func (WinnerAdmitted) isEvent()       {}
func (GameComplete) isEvent()         {}
func (TeamAssigned) isEvent()         {}
func (TeamBlocked) isEvent()          {}
func (ActiveMessageChanged) isEvent() {}
