package handler

import (
	"log"
	"net/http"
	"time"

	"decryptrace/internal/model"
	"decryptrace/internal/service"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// AdminHandler handles the game operator endpoints
type AdminHandler struct {
	gameSvc       GameService
	teamSvc       TeamService
	assignmentSvc AssignmentService
	publicURL     string
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(gameSvc GameService, teamSvc TeamService, assignmentSvc AssignmentService, publicURL string) *AdminHandler {
	return &AdminHandler{
		gameSvc:       gameSvc,
		teamSvc:       teamSvc,
		assignmentSvc: assignmentSvc,
		publicURL:     publicURL,
	}
}

// DurationRequest is the optional body of the timer endpoints
type DurationRequest struct {
	DurationSeconds int `json:"durationSeconds"`
}

func (h *AdminHandler) duration(w http.ResponseWriter, r *http.Request) (time.Duration, bool) {
	var req DurationRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return 0, false
	}
	// checked before scaling so huge values cannot wrap
	if int64(req.DurationSeconds) > int64(service.MaxRoundDuration/time.Second) {
		writeServiceError(w, service.ErrInvalidDuration)
		return 0, false
	}
	return time.Duration(req.DurationSeconds) * time.Second, true
}

func (h *AdminHandler) writeState(w http.ResponseWriter, state *model.GameState, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Start handles POST /v1/admin/game/start
func (h *AdminHandler) Start(w http.ResponseWriter, r *http.Request) {
	state, err := h.gameSvc.Start(r.Context())
	h.writeState(w, state, err)
}

// StartWithTimer handles POST /v1/admin/game/start-timer
func (h *AdminHandler) StartWithTimer(w http.ResponseWriter, r *http.Request) {
	d, ok := h.duration(w, r)
	if !ok {
		return
	}
	state, err := h.gameSvc.StartWithTimer(r.Context(), d)
	h.writeState(w, state, err)
}

// Stop handles POST /v1/admin/game/stop
func (h *AdminHandler) Stop(w http.ResponseWriter, r *http.Request) {
	state, err := h.gameSvc.Stop(r.Context())
	h.writeState(w, state, err)
}

// Pause handles POST /v1/admin/game/pause
func (h *AdminHandler) Pause(w http.ResponseWriter, r *http.Request) {
	state, err := h.gameSvc.Pause(r.Context())
	h.writeState(w, state, err)
}

// Resume handles POST /v1/admin/game/resume
func (h *AdminHandler) Resume(w http.ResponseWriter, r *http.Request) {
	state, err := h.gameSvc.Resume(r.Context())
	h.writeState(w, state, err)
}

// ResetTimer handles POST /v1/admin/game/reset-timer
func (h *AdminHandler) ResetTimer(w http.ResponseWriter, r *http.Request) {
	d, ok := h.duration(w, r)
	if !ok {
		return
	}
	state, err := h.gameSvc.ResetTimer(r.Context(), d)
	h.writeState(w, state, err)
}

// Reset handles POST /v1/admin/game/reset
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	state, err := h.gameSvc.Reset(r.Context())
	h.writeState(w, state, err)
}

// Teams handles GET /v1/admin/teams
func (h *AdminHandler) Teams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
	})
}

// Block handles POST /v1/admin/teams/{teamName}/block
func (h *AdminHandler) Block(w http.ResponseWriter, r *http.Request) {
	teamName := mux.Vars(r)["teamName"]

	var req model.BlockRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	team, err := h.teamSvc.Block(r.Context(), teamName, req.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, team)
}

// Unblock handles POST /v1/admin/teams/{teamName}/unblock
func (h *AdminHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	teamName := mux.Vars(r)["teamName"]

	team, err := h.teamSvc.Unblock(r.Context(), teamName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, team)
}

// DeleteTeam handles DELETE /v1/admin/teams/{teamName}
func (h *AdminHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamName := mux.Vars(r)["teamName"]

	if err := h.teamSvc.Delete(r.Context(), teamName); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Messages handles GET /v1/admin/messages
func (h *AdminHandler) Messages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.assignmentSvc.Messages(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": msgs,
	})
}

// ActivateMessage handles POST /v1/admin/messages/{id}/activate
func (h *AdminHandler) ActivateMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.assignmentSvc.ActivateMessage(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"activeMessageId": id})
}

// JoinQR handles GET /v1/admin/join-qr
// Renders the public game URL as a PNG for the projector screen.
func (h *AdminHandler) JoinQR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(h.publicURL, qrcode.Medium, qrSize)
	if err != nil {
		log.Printf("failed to render join QR: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
