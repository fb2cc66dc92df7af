package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"decryptrace/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	published chan []byte
	incoming  chan []byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		published: make(chan []byte, 16),
		incoming:  make(chan []byte, 16),
	}
}

func (b *fakeBus) Publish(ctx context.Context, payload []byte) error {
	b.published <- payload
	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context) (<-chan []byte, func() error) {
	return b.incoming, func() error { return nil }
}

func envelope(t *testing.T, origin, teamName string, event model.Event) []byte {
	t.Helper()
	data, err := encodeEvent(event)
	require.NoError(t, err)
	payload, err := json.Marshal(&relayEnvelope{Origin: origin, TeamName: teamName, Data: data})
	require.NoError(t, err)
	return payload
}

func TestRelayDeliversLocallyAndPublishes(t *testing.T) {
	hub := newTestHub(t)
	bus := newFakeBus()
	relay := NewRelay(hub, bus)
	alpha := connect(hub, "alpha", "Alpha")
	beta := connect(hub, "beta", "Beta")

	relay.BroadcastToTeam("Alpha", model.TeamAssigned{TeamName: "Alpha", MessageID: "m1"})

	assert.Equal(t, MsgTeamAssigned, recv(t, alpha).Type)
	expectNone(t, beta)

	select {
	case payload := <-bus.published:
		var env relayEnvelope
		require.NoError(t, json.Unmarshal(payload, &env))
		assert.Equal(t, relay.origin, env.Origin)
		assert.Equal(t, "Alpha", env.TeamName)
	case <-time.After(time.Second):
		t.Fatal("event was not published")
	}
}

func TestRelayRunSkipsOwnEvents(t *testing.T) {
	hub := newTestHub(t)
	bus := newFakeBus()
	relay := NewRelay(hub, bus)
	spectator := connect(hub, "spectator", "")

	done := make(chan struct{})
	go func() {
		relay.Run(context.Background())
		close(done)
	}()

	bus.incoming <- envelope(t, relay.origin, "", model.ActiveMessageChanged{MessageID: "own"})
	bus.incoming <- []byte("not json")
	bus.incoming <- envelope(t, "peer", "", model.ActiveMessageChanged{MessageID: "peer"})
	close(bus.incoming)

	msg := recv(t, spectator)
	assert.JSONEq(t, `{"messageId":"peer"}`, string(msg.Payload))
	expectNone(t, spectator)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after the subscription closed")
	}
}

func TestRelayRunHonorsTeamRooms(t *testing.T) {
	hub := newTestHub(t)
	bus := newFakeBus()
	relay := NewRelay(hub, bus)
	alpha := connect(hub, "alpha", "Alpha")
	beta := connect(hub, "beta", "Beta")

	go relay.Run(context.Background())
	bus.incoming <- envelope(t, "peer", "Beta", model.TeamAssigned{TeamName: "Beta", MessageID: "m2"})

	assert.Equal(t, MsgTeamAssigned, recv(t, beta).Type)
	expectNone(t, alpha)
	close(bus.incoming)
}
