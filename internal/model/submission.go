package model

import "time"

// DecryptionSubmission is an append-only audit record of one guess
type DecryptionSubmission struct {
	ID        string    `json:"id" bson:"_id"`
	TeamName  string    `json:"teamName" bson:"teamName"`
	MessageID string    `json:"messageId" bson:"messageId"`
	Solution  string    `json:"solution" bson:"solution"`
	IsCorrect bool      `json:"isCorrect" bson:"isCorrect"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// SubmitRequest is the body of POST /v1/encryption/submit
type SubmitRequest struct {
	MessageID string `json:"messageId"`
	Solution  string `json:"solution"`
}

// Outcome classifies a submission result
type Outcome string

const (
	OutcomeAccepted      Outcome = "accepted"
	OutcomeIncorrect     Outcome = "incorrect"
	OutcomeMissingFields Outcome = "missing_fields"
	OutcomeGameNotActive Outcome = "game_not_active"
	OutcomeGamePaused    Outcome = "game_paused"
	OutcomeAlreadySolved Outcome = "already_solved"
	// OutcomeBeaten is the already-solved class for teams that lost the last roster slot
	OutcomeBeaten       Outcome = "beaten"
	OutcomeTeamBlocked  Outcome = "team_blocked"
	OutcomeTeamNotFound Outcome = "team_not_found"
)

// SubmissionResult is the user-facing answer to a guess
type SubmissionResult struct {
	Success   bool    `json:"success"`
	Outcome   Outcome `json:"outcome"`
	Message   string  `json:"message"`
	IsCorrect bool    `json:"isCorrect"`
	Position  int     `json:"position,omitempty"`
}
