// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/acmx/sheetboard/internal/domain/token"
)

// SubmitHandler handles problem and flag submissions. Callers identify
// themselves by token; the team is resolved server-side.
type SubmitHandler struct {
	deps Dependencies
}

// NewSubmitHandler creates a new submit handler.
func NewSubmitHandler(deps Dependencies) *SubmitHandler {
	return &SubmitHandler{deps: deps}
}

type judgementResponse struct {
	Team    string `json:"team"`
	Correct bool   `json:"correct"`
}

// HandleSubmit handles POST
// /submit?token=T&problem=1a&input_index=N&output=X requests.
func (h *SubmitHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	problem := strings.TrimSpace(q.Get("problem"))
	output := q.Get("output")
	if problem == "" || output == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: problem and output are required", op, ErrBadRequest))
		return
	}
	inputIndex, err := strconv.Atoi(q.Get("input_index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: input_index must be an integer", op, ErrBadRequest))
		return
	}
	team, ok := h.resolveTeam(w, r)
	if !ok {
		return
	}
	correct, err := h.deps.SubmitAnswer(r.Context(), team, problem, inputIndex, output)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, judgementResponse{Team: team, Correct: correct})
}

// HandleFlag handles POST
// /flag?token=T&category=web&problem_index=N&flag=F requests.
func (h *SubmitHandler) HandleFlag(w http.ResponseWriter, r *http.Request) {
	const op = "api.flag"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	flag := q.Get("flag")
	if category == "" || flag == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: category and flag are required", op, ErrBadRequest))
		return
	}
	problemIdx, err := strconv.Atoi(q.Get("problem_index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: problem_index must be an integer", op, ErrBadRequest))
		return
	}
	team, ok := h.resolveTeam(w, r)
	if !ok {
		return
	}
	correct, err := h.deps.SubmitFlag(r.Context(), team, category, problemIdx, flag)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, judgementResponse{Team: team, Correct: correct})
}

// HandleSolved handles GET /solved?token=T&category=web requests.
func (h *SubmitHandler) HandleSolved(w http.ResponseWriter, r *http.Request) {
	const op = "api.solved"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: category is required", op, ErrBadRequest))
		return
	}
	team, ok := h.resolveTeam(w, r)
	if !ok {
		return
	}
	solved, err := h.deps.SolvedFlags(r.Context(), team, category)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if solved == nil {
		solved = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"team": team, "category": category, "solved": solved})
}

// resolveTeam maps the token query parameter to a team, writing the
// error response itself when resolution fails.
func (h *SubmitHandler) resolveTeam(w http.ResponseWriter, r *http.Request) (string, bool) {
	tok := strings.TrimSpace(r.URL.Query().Get("token"))
	if tok == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: token is required", ErrBadRequest))
		return "", false
	}
	team, err := h.deps.TeamFromToken(r.Context(), tok)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			writeError(w, http.StatusForbidden, "bad_token", err)
			return "", false
		}
		writeDomainError(w, err)
		return "", false
	}
	return team, true
}
