// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ScoresHandler handles score reads and writes.
type ScoresHandler struct {
	deps Dependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps Dependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

type scoresResponse struct {
	Team   string         `json:"team"`
	Scores map[string]int `json:"scores"`
}

type scoreResponse struct {
	Team  string `json:"team"`
	Event string `json:"event"`
	Score int    `json:"score"`
}

// HandleGetScores handles GET /scores/{team} and
// GET /scores/{team}/{event} requests. Names are case-sensitive.
func (h *ScoresHandler) HandleGetScores(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_scores"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/scores/")
	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		scores, _, err := h.deps.Scores(r.Context(), parts[0])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scoresResponse{Team: parts[0], Scores: scores})
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		score, err := h.deps.Score(r.Context(), parts[0], parts[1])
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scoreResponse{Team: parts[0], Event: parts[1], Score: score})
	default:
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: expected /scores/{team} or /scores/{team}/{event}", op, ErrBadRequest))
	}
}

// HandleSetScore handles POST
// /set_score?event_name=E&team_name=T&score=N requests.
func (h *ScoresHandler) HandleSetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.set_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	eventName, teamName, n, err := scoreArgs(r, "score")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
		return
	}
	if err := h.deps.SetScore(r.Context(), eventName, teamName, n); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Team: teamName, Event: eventName, Score: n})
}

// HandleAdjustScore handles POST
// /adjust_score?event_name=E&team_name=T&delta=N requests.
func (h *ScoresHandler) HandleAdjustScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.adjust_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	eventName, teamName, delta, err := scoreArgs(r, "delta")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w", op, err))
		return
	}
	next, err := h.deps.AdjustScore(r.Context(), eventName, teamName, delta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoreResponse{Team: teamName, Event: eventName, Score: next})
}

// HandleScoreboard handles GET /scoreboard requests. The response may
// trail writes by up to the cache window.
func (h *ScoresHandler) HandleScoreboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	board, err := h.deps.Scoreboard(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// HandleTimeSeries handles GET /timeseries requests.
func (h *ScoresHandler) HandleTimeSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	series, err := h.deps.TimeSeries(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func scoreArgs(r *http.Request, valueKey string) (eventName, teamName string, n int, err error) {
	q := r.URL.Query()
	eventName = strings.TrimSpace(q.Get("event_name"))
	teamName = strings.TrimSpace(q.Get("team_name"))
	if eventName == "" || teamName == "" {
		return "", "", 0, fmt.Errorf("%w: event_name and team_name are required", ErrBadRequest)
	}
	n, err = strconv.Atoi(q.Get(valueKey))
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, valueKey)
	}
	return eventName, teamName, n, nil
}
