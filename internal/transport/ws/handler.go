package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"decryptrace/internal/model"
	"decryptrace/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	statusTimeout  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; browsers connect from the game frontend
	},
}

// StateProvider supplies the snapshot sent on get_game_status
type StateProvider interface {
	Snapshot(ctx context.Context) (*model.GameSnapshot, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub     *Hub
	authSvc *service.AuthService
	game    StateProvider
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, game StateProvider) *Handler {
	return &Handler{
		hub:     hub,
		authSvc: authSvc,
		game:    game,
	}
}

// Connect handles GET /v1/ws
// The token query parameter is optional: spectators connect without one,
// a team token joins the team's room and an admin token is accepted as a spectator.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	conn := h.hub.NewConnection(uuid.NewString())

	if token := r.URL.Query().Get("token"); token != "" {
		if claims, err := h.authSvc.ValidateTeamToken(token); err == nil {
			conn.TeamName = claims.TeamName
		} else if _, err := h.authSvc.ValidateAdminToken(token); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		h.handleMessage(conn, data)
	}
}

func (h *Handler) handleMessage(conn *Connection, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.sendError(conn, "malformed message")
		return
	}

	switch msg.Type {
	case MsgGetGameStatus:
		h.sendGameStatus(conn)
	default:
		h.sendError(conn, "unknown message type")
	}
}

// sendGameStatus replies to the requesting client only
func (h *Handler) sendGameStatus(conn *Connection) {
	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	snap, err := h.game.Snapshot(ctx)
	if err != nil {
		log.Printf("failed to load game status for %s: %v", conn.ID, err)
		h.sendError(conn, "failed to load game status")
		return
	}

	data, err := encode(MsgGameStatus, snap)
	if err != nil {
		log.Printf("failed to encode game status: %v", err)
		return
	}
	conn.trySend(data)
}

func (h *Handler) sendError(conn *Connection, message string) {
	data, err := encode(MsgError, map[string]string{"error": message})
	if err != nil {
		return
	}
	conn.trySend(data)
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
