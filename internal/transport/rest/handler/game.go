package handler

import (
	"encoding/json"
	"net/http"

	"decryptrace/internal/catalog"
	"decryptrace/internal/model"
	"decryptrace/internal/transport/rest/middleware"
)

// GameHandler serves the public game reads and the team challenge endpoints
type GameHandler struct {
	gameSvc       GameService
	assignmentSvc AssignmentService
	submissionSvc SubmissionService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc GameService, assignmentSvc AssignmentService, submissionSvc SubmissionService) *GameHandler {
	return &GameHandler{
		gameSvc:       gameSvc,
		assignmentSvc: assignmentSvc,
		submissionSvc: submissionSvc,
	}
}

// State handles GET /v1/game-state
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	snap, err := h.gameSvc.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// Winners handles GET /v1/winners
func (h *GameHandler) Winners(w http.ResponseWriter, r *http.Request) {
	winners, err := h.gameSvc.Winners(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"winners": winners,
	})
}

// Challenge handles GET /v1/encryption
// The message is only handed out while a round is active.
func (h *GameHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	teamName := middleware.GetTeamName(r.Context())

	snap, err := h.gameSvc.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := &model.ChallengeResponse{Game: snap}
	if snap.Active {
		msg := h.assignmentSvc.Resolve(r.Context(), teamName)
		view := msg.View()
		view.Hint = catalog.HintFor(msg)
		resp.Message = view
	}

	writeJSON(w, http.StatusOK, resp)
}

// Submit handles POST /v1/encryption/submit
func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	teamName := middleware.GetTeamName(r.Context())

	var req model.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.submissionSvc.Submit(r.Context(), teamName, req.MessageID, req.Solution)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, submitStatus(result.Outcome), result)
}

// submitStatus keeps expected rejections distinguishable at the HTTP level
func submitStatus(outcome model.Outcome) int {
	switch outcome {
	case model.OutcomeMissingFields:
		return http.StatusBadRequest
	case model.OutcomeTeamBlocked:
		return http.StatusForbidden
	case model.OutcomeTeamNotFound:
		return http.StatusNotFound
	default:
		return http.StatusOK
	}
}
