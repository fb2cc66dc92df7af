package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"decryptrace/internal/cache"
	"decryptrace/internal/model"

	"github.com/google/uuid"
)

const publishTimeout = 2 * time.Second

// Relay delivers events to this instance's hub and forwards them to every
// other instance over the event bus. It implements service.Broadcaster.
type Relay struct {
	hub    *Hub
	bus    cache.EventBus
	origin string
}

type relayEnvelope struct {
	Origin   string          `json:"origin"`
	TeamName string          `json:"teamName,omitempty"`
	Data     json.RawMessage `json:"data"`
}

// NewRelay creates a relay with a fresh instance origin ID
func NewRelay(hub *Hub, bus cache.EventBus) *Relay {
	return &Relay{
		hub:    hub,
		bus:    bus,
		origin: uuid.NewString(),
	}
}

// BroadcastAll sends an event to every client on every instance
func (r *Relay) BroadcastAll(event model.Event) {
	r.dispatch("", event)
}

// BroadcastToTeam sends an event to one team room on every instance
func (r *Relay) BroadcastToTeam(teamName string, event model.Event) {
	r.dispatch(teamName, event)
}

func (r *Relay) dispatch(teamName string, event model.Event) {
	data, err := encodeEvent(event)
	if err != nil {
		log.Printf("failed to encode event: %v", err)
		return
	}
	r.hub.deliver(&BroadcastMessage{TeamName: teamName, Data: data})

	payload, err := json.Marshal(&relayEnvelope{Origin: r.origin, TeamName: teamName, Data: data})
	if err != nil {
		log.Printf("failed to encode relay envelope: %v", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := r.bus.Publish(ctx, payload); err != nil {
			log.Printf("failed to publish event to peers: %v", err)
		}
	}()
}

// Run delivers events published by other instances until ctx is done
func (r *Relay) Run(ctx context.Context) {
	events, closeSub := r.bus.Subscribe(ctx)
	defer closeSub()

	for payload := range events {
		var env relayEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			log.Printf("dropping malformed relay envelope: %v", err)
			continue
		}
		if env.Origin == r.origin {
			continue
		}
		r.hub.deliver(&BroadcastMessage{TeamName: env.TeamName, Data: env.Data})
	}
}
