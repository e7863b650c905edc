// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strings"
)

// TeamsHandler handles team lifecycle and token requests.
type TeamsHandler struct {
	deps Dependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps Dependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// HandleCreateTeam handles POST /create_team?team_name=X&member_name=Y
// requests. A created team gets its token in the response body and its
// name in a cookie.
func (h *TeamsHandler) HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_team"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	teamName := strings.TrimSpace(r.URL.Query().Get("team_name"))
	memberName := strings.TrimSpace(r.URL.Query().Get("member_name"))
	if teamName == "" || memberName == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: team_name and member_name are required", op, ErrBadRequest))
		return
	}
	res, err := h.deps.CreateTeam(r.Context(), teamName, memberName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if res.Status == http.StatusOK {
		setTeamCookie(w, res.TeamName)
	}
	writeJSON(w, res.Status, res)
}

// HandleChangeTeamName handles POST
// /change_team_name?team_name=X&new_name=Y requests. Tokens issued
// under the old name keep resolving to it.
func (h *TeamsHandler) HandleChangeTeamName(w http.ResponseWriter, r *http.Request) {
	const op = "api.change_team_name"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	teamName := strings.TrimSpace(r.URL.Query().Get("team_name"))
	newName := strings.TrimSpace(r.URL.Query().Get("new_name"))
	if teamName == "" || newName == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: team_name and new_name are required", op, ErrBadRequest))
		return
	}
	msg, err := h.deps.ChangeTeamName(r.Context(), teamName, newName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// HandleTokenLookup handles GET /token_lookup?token=T requests.
func (h *TeamsHandler) HandleTokenLookup(w http.ResponseWriter, r *http.Request) {
	const op = "api.token_lookup"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	tok := strings.TrimSpace(r.URL.Query().Get("token"))
	if tok == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: token is required", op, ErrBadRequest))
		return
	}
	team, err := h.deps.TeamFromToken(r.Context(), tok)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	setTeamCookie(w, team)
	writeJSON(w, http.StatusOK, map[string]string{"team": team})
}
