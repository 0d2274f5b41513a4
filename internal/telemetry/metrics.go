package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc/codes"

	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
	"github.com/arindamb69/AI-ML-Quiz/internal/errors"
	"github.com/arindamb69/AI-ML-Quiz/internal/question"
)

var (
	generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aiquiz",
		Subsystem: "question",
		Name:      "generations_total",
		Help:      "Question generation attempts by provider, difficulty and outcome.",
	}, []string{"provider", "difficulty", "outcome"})

	generationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aiquiz",
		Subsystem: "question",
		Name:      "generation_seconds",
		Help:      "Question generation latency by provider.",
	}, []string{"provider"})

	gamesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aiquiz",
		Subsystem: "game",
		Name:      "completed_total",
		Help:      "Games that reached the results screen.",
	})
)

// ObserveGameCompleted counts one finished game.
func ObserveGameCompleted() {
	gamesCompleted.Inc()
}

// InstrumentSource wraps a question source with generation metrics. The
// outcome label is "OK" or the error code name.
func InstrumentSource(provider string, next question.Source) question.Source {
	return &instrumentedSource{provider: provider, next: next}
}

type instrumentedSource struct {
	provider string
	next     question.Source
}

func (s *instrumentedSource) Generate(ctx context.Context, req question.Request) (*domain.Question, error) {
	start := time.Now()
	q, err := s.next.Generate(ctx, req)
	generationSeconds.WithLabelValues(s.provider).Observe(time.Since(start).Seconds())

	outcome := "OK"
	if err != nil {
		outcome = codes.Code(errors.Convert(err).Code).String()
	}
	generations.WithLabelValues(s.provider, string(req.Difficulty), outcome).Inc()

	return q, err
}
