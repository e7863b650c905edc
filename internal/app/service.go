// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/acmx/sheetboard/internal/adapters/activity"
	"github.com/acmx/sheetboard/internal/adapters/grid"
	"github.com/acmx/sheetboard/internal/adapters/scorestore"
	"github.com/acmx/sheetboard/internal/domain/ctf"
	"github.com/acmx/sheetboard/internal/domain/judge"
	"github.com/acmx/sheetboard/internal/domain/model"
	"github.com/acmx/sheetboard/internal/domain/token"
	"github.com/acmx/sheetboard/pkg/logger"
	"github.com/acmx/sheetboard/pkg/metrics"
)

// Service implements the API dependencies for the scoreboard system.
// All state lives in the workbook; the service wires the domain
// components over it and owns their lifecycle.
type Service struct {
	mu sync.RWMutex

	// Core components
	workbook *grid.Workbook
	store    *scorestore.Store
	tokens   *token.Issuer
	judge    *judge.Judge
	flags    *ctf.Validator
	activity *activity.Log

	// Configuration
	cacheTTL        time.Duration
	tokenSalt       string
	tokenMaxRetries int
	maxMembers      int
	minNameLen      int
	maxNameLen      int
	pointValues     map[string]int
	bucketPrefix    string
	flagCategories  []string
	location        *time.Location
	clock           func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service over a workbook with default
// configuration.
func New(workbook *grid.Workbook, opts ...Option) *Service {
	s := &Service{
		workbook:        workbook,
		cacheTTL:        10 * time.Second,
		tokenMaxRetries: 8,
		maxMembers:      4,
		minNameLen:      2,
		maxNameLen:      32,
		pointValues:     map[string]int{},
		bucketPrefix:    "woc",
		flagCategories:  []string{"web", "rev", "forensics", "osint", "crypto", "linux"},
		location:        time.UTC,
		clock:           time.Now,
		logger:          nil, // Will be replaced when the service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start wires the domain components over the workbook and prepares
// the scoreboard sheet.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scoreboard service...")

	s.tokens = token.New(s.workbook.Tokens,
		token.WithSalt(s.tokenSalt),
		token.WithMaxRetries(s.tokenMaxRetries),
	)
	s.activity = activity.New(s.workbook.Log,
		activity.WithClock(s.clock),
		activity.WithLocation(s.location),
	)
	s.store = scorestore.New(s.workbook.Scoreboard, s.workbook.Roster, s.tokens, s.activity,
		scorestore.WithClock(s.clock),
		scorestore.WithCacheTTL(s.cacheTTL),
		scorestore.WithNameBounds(s.minNameLen, s.maxNameLen),
		scorestore.WithMaxMembers(s.maxMembers),
		scorestore.WithLogger(s.logger),
	)
	if err := s.store.Init(ctx); err != nil {
		return fmt.Errorf("prepare scoreboard sheet: %w", err)
	}
	s.judge = judge.New(s.workbook.Problems, s.workbook.Submissions,
		judge.WithClock(s.clock),
	)
	s.flags = ctf.New(s.workbook.CTF, s.workbook.Flags, s.flagCategories,
		ctf.WithClock(s.clock),
		ctf.WithLogger(s.logger),
	)

	s.started = true
	s.logger.Info(ctx, "scoreboard service started",
		logger.String("cacheTTL", s.cacheTTL.String()),
		logger.Int("answerSheets", len(s.workbook.Problems)),
		logger.Int("flagCategories", len(s.flagCategories)),
	)

	return nil
}

// Stop shuts down the service. The workbook itself is closed by its
// owner.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.started = false
	s.logger.Info(context.Background(), "scoreboard service stopped")
}

// CreateTeam registers a team with its first member and returns the
// team's access token.
func (s *Service) CreateTeam(ctx context.Context, teamName, memberName string) (model.CreateResult, error) {
	return s.store.CreateTeam(ctx, teamName, memberName)
}

// CreateEvent registers a scoring event.
func (s *Service) CreateEvent(ctx context.Context, eventName string) (model.CreateResult, error) {
	return s.store.CreateEvent(ctx, eventName)
}

// Scores returns a team's event score map plus the event index map.
func (s *Service) Scores(ctx context.Context, teamName string) (map[string]int, map[string]int, error) {
	return s.store.Scores(ctx, teamName)
}

// Score returns one team's score for one event.
func (s *Service) Score(ctx context.Context, teamName, eventName string) (int, error) {
	return s.store.Score(ctx, teamName, eventName)
}

// Scoreboard returns the full matrix.
func (s *Service) Scoreboard(ctx context.Context) (model.Scoreboard, error) {
	return s.store.Scoreboard(ctx)
}

// SetScore writes an absolute score.
func (s *Service) SetScore(ctx context.Context, eventName, teamName string, score int) error {
	return s.store.SetScore(ctx, eventName, teamName, score)
}

// AdjustScore applies a score delta and returns the new value.
func (s *Service) AdjustScore(ctx context.Context, eventName, teamName string, delta int) (int, error) {
	return s.store.AdjustScore(ctx, eventName, teamName, delta)
}

// ChangeTeamName renames a team header.
func (s *Service) ChangeTeamName(ctx context.Context, oldName, newName string) (string, error) {
	return s.store.ChangeTeamName(ctx, oldName, newName)
}

// AddMember records a new roster member.
func (s *Service) AddMember(ctx context.Context, teamName, memberName string) error {
	return s.store.AddMember(ctx, teamName, memberName)
}

// RemoveMember marks a roster member as departed.
func (s *Service) RemoveMember(ctx context.Context, teamName, memberName string) error {
	return s.store.RemoveMember(ctx, teamName, memberName)
}

// Members lists a team's active roster.
func (s *Service) Members(ctx context.Context, teamName string) ([]string, error) {
	return s.store.Members(ctx, teamName)
}

// TeamFromToken resolves an access token to the team name it was
// issued for.
func (s *Service) TeamFromToken(ctx context.Context, tok string) (string, error) {
	return s.tokens.TeamFromToken(ctx, tok)
}

// SubmitAnswer judges a problem submission and credits the score
// bucket on a team's first correct solve. The returned bool reports
// whether the submission counts: a correct answer whose award cannot
// be applied reports false.
func (s *Service) SubmitAnswer(ctx context.Context, teamName, problemID string, inputIndex int, output string) (bool, error) {
	// Prior solves must be read before judging records this attempt.
	prior, err := s.judge.HasPriorSolve(ctx, teamName, problemID)
	if err != nil {
		return false, err
	}

	correct, err := s.judge.Judge(ctx, problemID, inputIndex, output, teamName)
	if err != nil {
		return false, err
	}
	if !correct {
		return false, nil
	}
	if prior {
		metrics.RecordAwardSkipped()
		return true, nil
	}
	return s.award(ctx, teamName, problemID)
}

// award applies the one-time score credit for a first solve.
func (s *Service) award(ctx context.Context, teamName, problemID string) (bool, error) {
	points, ok := s.pointValues[problemID]
	if !ok {
		metrics.RecordAwardSkipped()
		s.logger.Warn(ctx, "no point value configured, withholding award",
			logger.String("problem", problemID),
			logger.String("team", teamName),
		)
		return false, nil
	}

	p, err := judge.ParseProblem(problemID)
	if err != nil {
		return false, err
	}
	bucket := s.bucketPrefix + strconv.Itoa(p.Number-1)

	if _, err := s.store.AdjustScore(ctx, bucket, teamName, points); err != nil {
		metrics.RecordAwardSkipped()
		s.logger.Warn(ctx, "award failed, submission not counted",
			logger.String("problem", problemID),
			logger.String("team", teamName),
			logger.String("bucket", bucket),
			logger.Error(err),
		)
		return false, nil
	}
	metrics.RecordAwardGranted()
	s.logger.Info(ctx, "first solve awarded",
		logger.String("problem", problemID),
		logger.String("team", teamName),
		logger.String("bucket", bucket),
		logger.Int("points", points),
	)
	return true, nil
}

// PastSubmissions lists a team's recorded attempts for one problem.
func (s *Service) PastSubmissions(ctx context.Context, teamName, problemID string) ([]model.SubmissionRecord, error) {
	return s.judge.PastSubmissions(ctx, teamName, problemID)
}

// SubmitFlag validates a CTF flag submission.
func (s *Service) SubmitFlag(ctx context.Context, teamName, category string, problemIdx int, flag string) (bool, error) {
	return s.flags.Submit(ctx, category, problemIdx, flag, teamName)
}

// SolvedFlags lists the problem indexes a team has solved in a
// category.
func (s *Service) SolvedFlags(ctx context.Context, teamName, category string) ([]int, error) {
	return s.flags.SolvedFlags(ctx, teamName, category)
}

// TimeSeries reconstructs per-team score history from the activity
// log.
func (s *Service) TimeSeries(ctx context.Context) (model.TimeSeries, error) {
	return s.activity.TimeSeries(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"cacheTTL":     s.cacheTTL.String(),
		"answerSheets": len(s.workbook.Problems),
	}

	if s.started {
		board, err := s.store.Scoreboard(context.Background())
		if err == nil {
			stats["totalTeams"] = len(board.Teams)
			stats["totalEvents"] = len(board.Events)
			metrics.UpdateTeamsTotal(len(board.Teams))
			metrics.UpdateEventsTotal(len(board.Events))
		}
	}

	return stats
}
