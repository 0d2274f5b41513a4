package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/arindamb69/AI-ML-Quiz/internal/api"
	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
	"github.com/arindamb69/AI-ML-Quiz/internal/event"
	"github.com/arindamb69/AI-ML-Quiz/internal/game"
	"github.com/arindamb69/AI-ML-Quiz/internal/question"
	"github.com/arindamb69/AI-ML-Quiz/internal/telemetry"
)

type Config struct {
	HTTP struct {
		Port int32
	}

	Game struct {
		QuestionsPerTeam int
		// AnswerTimeoutSeconds is the per-question countdown; 0 uses the
		// default, negative disables it.
		AnswerTimeoutSeconds int
		RecentQuestionLimit  int
	}

	LLM struct {
		// Provider selects the question backend: ollama, openai, gemini
		// or groq.
		Provider string
		APIKey   string
		Model    string
		BaseURL  string
		// TimeoutSeconds bounds one generation call.
		TimeoutSeconds int
	}
}

type Server struct {
	c Config

	eb *event.Bus

	service struct {
		game *game.Service
	}

	http *http.Server
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	s.eb = event.NewBus()

	s.initService()
	s.initAPI()
	return s, nil
}

func (s *Server) initService() {
	src := question.New(question.Config{
		Provider: s.c.LLM.Provider,
		APIKey:   s.c.LLM.APIKey,
		Model:    s.c.LLM.Model,
		BaseURL:  s.c.LLM.BaseURL,
		Timeout:  time.Duration(s.c.LLM.TimeoutSeconds) * time.Second,
	})
	src = telemetry.InstrumentSource(s.c.LLM.Provider, src)

	s.service.game = game.NewService(game.Config{
		EventBus:            s.eb,
		Source:              src,
		QuestionsPerTeam:    s.c.Game.QuestionsPerTeam,
		AnswerTimeout:       time.Duration(s.c.Game.AnswerTimeoutSeconds) * time.Second,
		RecentQuestionLimit: s.c.Game.RecentQuestionLimit,
	})

	s.eb.Subscribe(domain.EventNameGameCompleted, func(context.Context, event.Event) error {
		telemetry.ObserveGameCompleted()
		return nil
	})
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery())

	api.New(api.Config{
		Router:   e,
		EventBus: s.eb,
		Game:     s.service.game,
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	var eg errgroup.Group
	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	s.service.game.Stop()
	s.eb.Stop()

	slog.InfoContext(ctx, "server: shutdown completed")
}
