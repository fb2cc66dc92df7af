package handler

import (
	"encoding/json"
	"net/http"

	"decryptrace/internal/model"

	"github.com/gorilla/mux"
)

// TeamHandler handles enrollment endpoints
type TeamHandler struct {
	teamSvc TeamService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamSvc TeamService) *TeamHandler {
	return &TeamHandler{teamSvc: teamSvc}
}

// Enroll handles POST /v1/teams/enroll
func (h *TeamHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req model.EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.teamSvc.Enroll(r.Context(), req.TeamName, req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Status handles GET /v1/teams/{teamName}/status
func (h *TeamHandler) Status(w http.ResponseWriter, r *http.Request) {
	teamName := mux.Vars(r)["teamName"]

	status, err := h.teamSvc.Check(r.Context(), teamName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
