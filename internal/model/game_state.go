package model

import "time"

const (
	// GameStateID is the key of the single game state document
	GameStateID = "global"
	// MaxWinners caps the winner roster
	MaxWinners = 3
)

// Phase is the derived game phase. Ended is not a phase: it is signalled by a full roster.
type Phase string

const (
	PhaseInactive Phase = "inactive"
	PhaseRunning  Phase = "running"
	PhasePaused   Phase = "paused"
)

// GameState is the shared round state mutated only by admin commands
type GameState struct {
	ID                  string        `json:"-" bson:"_id"`
	Active              bool          `json:"active" bson:"active"`
	IsPaused            bool          `json:"isPaused" bson:"isPaused"`
	StartTime           *time.Time    `json:"startTime" bson:"startTime"`
	EndTime             *time.Time    `json:"endTime" bson:"endTime"`
	PausedTimeRemaining time.Duration `json:"pausedTimeRemaining" bson:"pausedTimeRemaining"`
	Version             int64         `json:"version" bson:"version"`
	UpdatedAt           time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// DefaultGameState returns the inactive state used on first access and after reset
func DefaultGameState() *GameState {
	return &GameState{ID: GameStateID}
}

// Phase derives the current phase from the stored flags
func (g *GameState) Phase() Phase {
	switch {
	case !g.Active:
		return PhaseInactive
	case g.IsPaused:
		return PhasePaused
	default:
		return PhaseRunning
	}
}

// Remaining returns the countdown left at now, floored at zero
func (g *GameState) Remaining(now time.Time) time.Duration {
	if !g.Active {
		return 0
	}
	if g.IsPaused {
		return g.PausedTimeRemaining
	}
	if g.EndTime == nil {
		return 0
	}
	if d := g.EndTime.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Clone returns a deep copy so transitions never alias the caller's timestamps
func (g *GameState) Clone() *GameState {
	c := *g
	if g.StartTime != nil {
		t := *g.StartTime
		c.StartTime = &t
	}
	if g.EndTime != nil {
		t := *g.EndTime
		c.EndTime = &t
	}
	return &c
}

// GameSnapshot is what clients receive when they ask for the current state
type GameSnapshot struct {
	Active        bool       `json:"active"`
	IsPaused      bool       `json:"isPaused"`
	StartTime     *time.Time `json:"startTime"`
	EndTime       *time.Time `json:"endTime"`
	RemainingTime int64      `json:"remainingTime"` // milliseconds
	WinnersCount  int        `json:"winnersCount"`
	MaxWinners    int        `json:"maxWinners"`
	GameIsFull    bool       `json:"gameIsFull"`
	ServerTime    time.Time  `json:"serverTime"`
}

// NewGameSnapshot derives a client snapshot at now
func NewGameSnapshot(st *GameState, winnersCount int, now time.Time) *GameSnapshot {
	return &GameSnapshot{
		Active:        st.Active,
		IsPaused:      st.IsPaused,
		StartTime:     st.StartTime,
		EndTime:       st.EndTime,
		RemainingTime: st.Remaining(now).Milliseconds(),
		WinnersCount:  winnersCount,
		MaxWinners:    MaxWinners,
		GameIsFull:    winnersCount >= MaxWinners,
		ServerTime:    now,
	}
}
