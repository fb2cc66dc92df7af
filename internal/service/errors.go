package service

import "errors"

// Game transition rejections
var (
	ErrAlreadyActive   = errors.New("game is already active")
	ErrNotActive       = errors.New("game is not active")
	ErrAlreadyPaused   = errors.New("game is already paused")
	ErrNotPaused       = errors.New("game is not paused")
	ErrInvalidDuration = errors.New("duration must be positive and at most 24h")
)

// Team and message management
var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrTeamNotFound     = errors.New("team not found")
	ErrCannotBlockAdmin = errors.New("admin teams cannot be blocked")
	ErrMessageNotFound  = errors.New("message not found")
)
