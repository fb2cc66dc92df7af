package handler

import (
	"context"
	"time"

	"decryptrace/internal/model"
)

// GameService is the game state surface used by the handlers
type GameService interface {
	Snapshot(ctx context.Context) (*model.GameSnapshot, error)
	Winners(ctx context.Context) ([]*model.Winner, error)
	Start(ctx context.Context) (*model.GameState, error)
	StartWithTimer(ctx context.Context, d time.Duration) (*model.GameState, error)
	Stop(ctx context.Context) (*model.GameState, error)
	Pause(ctx context.Context) (*model.GameState, error)
	Resume(ctx context.Context) (*model.GameState, error)
	ResetTimer(ctx context.Context, d time.Duration) (*model.GameState, error)
	Reset(ctx context.Context) (*model.GameState, error)
}

// AssignmentService resolves and manages pool messages
type AssignmentService interface {
	Resolve(ctx context.Context, teamName string) *model.EncryptedMessage
	Messages(ctx context.Context) ([]*model.EncryptedMessage, error)
	ActivateMessage(ctx context.Context, id string) error
}

// SubmissionService checks guesses
type SubmissionService interface {
	Submit(ctx context.Context, teamName, messageID, solution string) (*model.SubmissionResult, error)
}

// TeamService enrolls and moderates teams
type TeamService interface {
	Enroll(ctx context.Context, teamName, email string) (*model.EnrollResponse, error)
	Check(ctx context.Context, teamName string) (*model.TeamStatus, error)
	List(ctx context.Context) ([]*model.Team, error)
	Block(ctx context.Context, teamName, reason string) (*model.Team, error)
	Unblock(ctx context.Context, teamName string) (*model.Team, error)
	Delete(ctx context.Context, teamName string) error
}

// Authenticator issues admin tokens
type Authenticator interface {
	Login(username, password string) (*model.LoginResponse, error)
}
