package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
	"github.com/arindamb69/AI-ML-Quiz/internal/errors"
	"github.com/arindamb69/AI-ML-Quiz/internal/event"
	"github.com/arindamb69/AI-ML-Quiz/internal/question"
)

const (
	DefaultQuestionsPerTeam    = 5
	DefaultAnswerTimeout       = 30 * time.Second
	DefaultRecentQuestionLimit = 20
)

type Config struct {
	EventBus *event.Bus
	Source   question.Source

	// QuestionsPerTeam is the regular-round quota, fixed for the lifetime
	// of every game the service creates. Defaults to 5.
	QuestionsPerTeam int
	// AnswerTimeout is the countdown per issued question; when it expires
	// the open question is scored as a timeout. 0 uses the default,
	// negative disables the countdown.
	AnswerTimeout time.Duration
	// RecentQuestionLimit bounds the per-game queue of question texts
	// handed back to the question source.
	RecentQuestionLimit int
}

// Service hosts independent games in memory and drives each one through the
// turn state machine. Every mutation publishes the post-mutation snapshot on
// the event bus.
type Service struct {
	eb     *event.Bus
	source question.Source

	questionsPerTeam int
	answerTimeout    time.Duration
	recentLimit      int

	mu    sync.RWMutex
	games map[string]*game
}

// game pairs one state aggregate with its lock and per-game collaborators.
type game struct {
	mu         sync.Mutex
	state      *domain.Game
	recent     *question.History
	timer      *time.Timer
	generating bool
	// completed guards the one-shot completion event.
	completed bool
}

func NewService(c Config) *Service {
	s := &Service{
		eb:               c.EventBus,
		source:           c.Source,
		questionsPerTeam: c.QuestionsPerTeam,
		answerTimeout:    c.AnswerTimeout,
		recentLimit:      c.RecentQuestionLimit,
		games:            make(map[string]*game),
	}

	if s.questionsPerTeam <= 0 {
		s.questionsPerTeam = DefaultQuestionsPerTeam
	}
	if s.answerTimeout == 0 {
		s.answerTimeout = DefaultAnswerTimeout
	}
	if s.answerTimeout < 0 {
		s.answerTimeout = 0
	}
	if s.recentLimit <= 0 {
		s.recentLimit = DefaultRecentQuestionLimit
	}

	return s
}

type CreateGameRequest struct {
	// TeamNames are the submitted entry-form rows, in turn order. Blank
	// names default to "Team N" by position and still count toward the
	// two-team minimum.
	TeamNames []string
}

// CreateGame validates the team list and registers a fresh game.
func (s *Service) CreateGame(ctx context.Context, req CreateGameRequest) (*domain.Game, error) {
	if len(req.TeamNames) < 2 {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("game: at least 2 teams are required, got %d", len(req.TeamNames)))
	}

	teams := make([]domain.Team, 0, len(req.TeamNames))
	for i, name := range req.TeamNames {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Team %d", i+1)
		}

		id, err := uuid.NewV7()
		if err != nil {
			return nil, errors.Internal(fmt.Errorf("generate team ID: %w", err))
		}
		teams = append(teams, domain.Team{TeamID: id.String(), Name: name})
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Internal(fmt.Errorf("generate game ID: %w", err))
	}

	g := &game{
		state:  newState(id.String(), teams, s.questionsPerTeam),
		recent: question.NewHistory(s.recentLimit),
	}

	s.mu.Lock()
	s.games[g.state.GameID] = g
	s.mu.Unlock()

	slog.InfoContext(ctx, "game: created", "game", g.state.GameID, "teams", len(teams))

	snap := snapshot(g.state)
	s.eb.Publish(ctx, domain.EventGameUpdated{Game: snap})
	return &snap, nil
}

type GetGameRequest struct {
	GameID string
}

func (s *Service) GetGame(_ context.Context, req GetGameRequest) (*domain.Game, error) {
	g, err := s.get(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	snap := snapshot(g.state)
	return &snap, nil
}

type BeginQuestionRequest struct {
	GameID     string
	Difficulty domain.Difficulty
}

// BeginQuestion asks the question source for a question at the chosen
// difficulty and, on success, moves the game into the question-active phase.
// Any failure leaves the game exactly as it was; the user retries manually.
func (s *Service) BeginQuestion(ctx context.Context, req BeginQuestionRequest) (*domain.Game, error) {
	if !req.Difficulty.Valid() {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("game: unknown difficulty %q", req.Difficulty))
	}

	g, err := s.get(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	switch {
	case g.state.IsGameComplete:
		g.mu.Unlock()
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game: game is complete"))
	case g.state.WaitingForNext:
		g.mu.Unlock()
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game: advance the turn before the next question"))
	case !g.state.IsSelectingDifficulty:
		g.mu.Unlock()
		return nil, errors.New(errors.CodeAlreadyExists,
			errors.WithMessagef("game: a question is already active"))
	case g.generating:
		g.mu.Unlock()
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game: question generation already in progress"))
	}

	bonus := isBonusTurn(g.state)
	prior := g.recent.Items()
	g.generating = true
	g.mu.Unlock()

	// The source call runs outside the game lock; the generating flag keeps
	// a second call from being issued for the same game meanwhile.
	q, err := s.source.Generate(ctx, question.Request{
		Difficulty:     req.Difficulty,
		PriorQuestions: prior,
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	g.generating = false

	if err != nil {
		slog.ErrorContext(ctx, "game: question generation failed",
			"game", req.GameID,
			"difficulty", req.Difficulty,
			"error", err,
		)
		return nil, err
	}

	if g.state.IsGameComplete || !g.state.IsSelectingDifficulty {
		// The game moved on while the source was in flight (ended early or
		// reset); the late question is abandoned.
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game: state changed during question generation"))
	}

	q.IsBonus = bonus
	setQuestion(g.state, *q)
	g.recent.Add(q.Text)
	s.armAnswerTimer(g, req.GameID, q.QuestionID)

	snap := snapshot(g.state)
	s.eb.Publish(ctx, domain.EventGameUpdated{Game: snap})
	return &snap, nil
}

type SubmitAnswerRequest struct {
	GameID string
	// Option is the chosen option text; nil is the timeout signal, scored
	// as an incorrect answer worth 0 points.
	Option *string
}

// SubmitAnswer scores the active question for the current team and reveals
// the answer.
func (s *Service) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*domain.Game, error) {
	g, err := s.get(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.state.IsGameComplete:
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game: game is complete"))
	case g.state.CurrentQuestion == nil:
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game: no active question"))
	case g.state.WaitingForNext:
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game: answer already submitted"))
	}

	s.stopAnswerTimer(g)
	applyAnswer(g.state, req.Option)

	snap := snapshot(g.state)
	s.eb.Publish(ctx, domain.EventGameUpdated{Game: snap})
	return &snap, nil
}

type AdvanceTurnRequest struct {
	GameID string
}

// AdvanceTurn runs the end-of-question step: quota bookkeeping, bonus
// eligibility, completion detection, team rotation.
func (s *Service) AdvanceTurn(ctx context.Context, req AdvanceTurnRequest) (*domain.Game, error) {
	g, err := s.get(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case g.state.IsGameComplete:
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game: game is complete"))
	case !g.state.WaitingForNext:
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("game: no answered question to advance from"))
	}

	advanceTurn(g.state)

	snap := snapshot(g.state)
	s.eb.Publish(ctx, domain.EventGameUpdated{Game: snap})
	if g.state.IsGameComplete {
		s.publishCompletedLocked(ctx, g)
	}
	return &snap, nil
}

type EndGameRequest struct {
	GameID string
}

// EndGame forces completion regardless of remaining quotas. Ending an
// already complete game is a no-op.
func (s *Service) EndGame(ctx context.Context, req EndGameRequest) (*domain.Game, error) {
	g, err := s.get(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.state.IsGameComplete {
		s.stopAnswerTimer(g)
		forceComplete(g.state)

		snap := snapshot(g.state)
		s.eb.Publish(ctx, domain.EventGameUpdated{Game: snap})
		s.publishCompletedLocked(ctx, g)
	}

	snap := snapshot(g.state)
	return &snap, nil
}

type ResetGameRequest struct {
	GameID string
}

// ResetGame returns the game to its initial state, clearing every team's
// progress and the recent-question memory while keeping team identities and
// turn order.
func (s *Service) ResetGame(ctx context.Context, req ResetGameRequest) (*domain.Game, error) {
	g, err := s.get(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	s.stopAnswerTimer(g)
	resetState(g.state)
	g.recent.Clear()
	g.completed = false

	slog.InfoContext(ctx, "game: reset", "game", req.GameID)

	snap := snapshot(g.state)
	s.eb.Publish(ctx, domain.EventGameUpdated{Game: snap})
	return &snap, nil
}

type RankTeamsRequest struct {
	GameID string
}

// RankTeams returns the current standings; it never mutates the game.
func (s *Service) RankTeams(_ context.Context, req RankTeamsRequest) (*domain.Ranking, error) {
	g, err := s.get(req.GameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	r := rank(g.state)
	return &r, nil
}

type DeleteGameRequest struct {
	GameID string
}

// DeleteGame discards a game entirely; used when the results screen starts
// a brand-new game.
func (s *Service) DeleteGame(ctx context.Context, req DeleteGameRequest) error {
	s.mu.Lock()
	g, ok := s.games[req.GameID]
	delete(s.games, req.GameID)
	s.mu.Unlock()

	if !ok {
		return errors.New(errors.CodeNotFound,
			errors.WithMessagef("game: not found: %s", req.GameID))
	}

	g.mu.Lock()
	s.stopAnswerTimer(g)
	g.mu.Unlock()

	slog.InfoContext(ctx, "game: deleted", "game", req.GameID)
	return nil
}

// Stop cancels every pending answer countdown; used on server shutdown.
func (s *Service) Stop() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.games {
		g.mu.Lock()
		s.stopAnswerTimer(g)
		g.mu.Unlock()
	}
}

func (s *Service) get(id string) (*game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("game: not found: %s", id))
	}
	return g, nil
}

func (s *Service) armAnswerTimer(g *game, gameID, questionID string) {
	if s.answerTimeout <= 0 {
		return
	}

	s.stopAnswerTimer(g)
	g.timer = time.AfterFunc(s.answerTimeout, func() {
		s.expireQuestion(gameID, questionID)
	})
}

func (s *Service) stopAnswerTimer(g *game) {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// expireQuestion synthesizes a timeout submission when the countdown fires
// while the identified question is still open. This is the only transition
// not triggered by a caller.
func (s *Service) expireQuestion(gameID, questionID string) {
	g, err := s.get(gameID)
	if err != nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	st := g.state
	if st.IsGameComplete || st.WaitingForNext ||
		st.CurrentQuestion == nil || st.CurrentQuestion.QuestionID != questionID {
		return
	}

	ctx := context.Background()
	applyAnswer(st, nil)
	slog.InfoContext(ctx, "game: answer timed out", "game", gameID, "question", questionID)

	s.eb.Publish(ctx, domain.EventGameUpdated{Game: snapshot(st)})
}

func (s *Service) publishCompletedLocked(ctx context.Context, g *game) {
	if g.completed {
		return
	}
	g.completed = true

	slog.InfoContext(ctx, "game: complete", "game", g.state.GameID)
	s.eb.Publish(ctx, domain.EventGameCompleted{
		Game:    snapshot(g.state),
		Ranking: rank(g.state),
	})
}

// snapshot deep-copies the state so published and returned views never alias
// the live aggregate.
func snapshot(g *domain.Game) domain.Game {
	out := *g

	out.Teams = make([]domain.Team, len(g.Teams))
	for i, t := range g.Teams {
		out.Teams[i] = cloneTeam(t)
	}

	if g.CurrentQuestion != nil {
		q := *g.CurrentQuestion
		q.Options = append([]string(nil), q.Options...)
		out.CurrentQuestion = &q
	}

	return out
}
