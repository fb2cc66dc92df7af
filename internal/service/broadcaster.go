package service

import "decryptrace/internal/model"

// Broadcaster pushes events to connected clients (avoids import cycle with ws).
// Implementations must not block the caller.
type Broadcaster interface {
	BroadcastAll(event model.Event)
	BroadcastToTeam(teamName string, event model.Event)
}
