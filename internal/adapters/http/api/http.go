// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/internal/adapters/scorestore"
	"github.com/acmx/sheetboard/internal/domain/judge"
	"github.com/acmx/sheetboard/internal/domain/model"
	"github.com/acmx/sheetboard/internal/domain/token"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	CreateTeam(ctx context.Context, teamName, memberName string) (model.CreateResult, error)
	CreateEvent(ctx context.Context, eventName string) (model.CreateResult, error)
	Scores(ctx context.Context, teamName string) (map[string]int, map[string]int, error)
	Score(ctx context.Context, teamName, eventName string) (int, error)
	Scoreboard(ctx context.Context) (model.Scoreboard, error)
	SetScore(ctx context.Context, eventName, teamName string, score int) error
	AdjustScore(ctx context.Context, eventName, teamName string, delta int) (int, error)
	ChangeTeamName(ctx context.Context, oldName, newName string) (string, error)
	TeamFromToken(ctx context.Context, tok string) (string, error)
	SubmitAnswer(ctx context.Context, teamName, problemID string, inputIndex int, output string) (bool, error)
	SubmitFlag(ctx context.Context, teamName, category string, problemIdx int, flag string) (bool, error)
	SolvedFlags(ctx context.Context, teamName, category string) ([]int, error)
	TimeSeries(ctx context.Context) (model.TimeSeries, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	homeHandler   *HomeHandler
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	teamsHandler  *TeamsHandler
	eventsHandler *EventsHandler
	scoresHandler *ScoresHandler
	submitHandler *SubmitHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		homeHandler:   NewHomeHandler(),
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		teamsHandler:  NewTeamsHandler(deps),
		eventsHandler: NewEventsHandler(deps),
		scoresHandler: NewScoresHandler(deps),
		submitHandler: NewSubmitHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/", MetricsMiddleware(s.homeHandler.HandleHome, "home"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/create_team", MetricsMiddleware(s.teamsHandler.HandleCreateTeam, "create_team"))
	mux.HandleFunc("/change_team_name", MetricsMiddleware(s.teamsHandler.HandleChangeTeamName, "change_team_name"))
	mux.HandleFunc("/token_lookup", MetricsMiddleware(s.teamsHandler.HandleTokenLookup, "token_lookup"))
	mux.HandleFunc("/create_event", MetricsMiddleware(s.eventsHandler.HandleCreateEvent, "create_event"))
	mux.HandleFunc("/scores/", MetricsMiddleware(s.scoresHandler.HandleGetScores, "scores"))
	mux.HandleFunc("/set_score", MetricsMiddleware(s.scoresHandler.HandleSetScore, "set_score"))
	mux.HandleFunc("/adjust_score", MetricsMiddleware(s.scoresHandler.HandleAdjustScore, "adjust_score"))
	mux.HandleFunc("/scoreboard", MetricsMiddleware(s.scoresHandler.HandleScoreboard, "scoreboard"))
	mux.HandleFunc("/timeseries", MetricsMiddleware(s.scoresHandler.HandleTimeSeries, "timeseries"))
	mux.HandleFunc("/submit", MetricsMiddleware(s.submitHandler.HandleSubmit, "submit"))
	mux.HandleFunc("/flag", MetricsMiddleware(s.submitHandler.HandleFlag, "flag"))
	mux.HandleFunc("/solved", MetricsMiddleware(s.submitHandler.HandleSolved, "solved"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	// net/http suppresses bodies on 304 responses; send header only.
	if status == http.StatusNotModified {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps domain sentinels onto the API status contract:
// 304 conflict, 403 validation, 404 not found, 502 backend, 500
// otherwise.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scorestore.ErrNotFound), errors.Is(err, token.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, scorestore.ErrConflict):
		writeError(w, http.StatusNotModified, "conflict", err)
	case errors.Is(err, scorestore.ErrValidation), errors.Is(err, judge.ErrBadProblem):
		writeError(w, http.StatusForbidden, "validation", err)
	case errors.Is(err, grid.ErrBackendUnavailable):
		writeError(w, http.StatusBadGateway, "backend_unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// setTeamCookie mirrors the original API convenience of remembering
// the caller's team.
func setTeamCookie(w http.ResponseWriter, teamName string) {
	http.SetCookie(w, &http.Cookie{
		Name:  "team",
		Value: teamName,
		Path:  "/",
	})
}
