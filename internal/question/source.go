package question

import (
	"context"
	"net/http"
	"time"

	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
	"github.com/arindamb69/AI-ML-Quiz/internal/errors"
)

const defaultTimeout = 60 * time.Second

// Request asks for one freshly generated question.
type Request struct {
	Difficulty domain.Difficulty
	// PriorQuestions lists recently asked question texts, oldest first, so
	// the backend can avoid repeating itself.
	PriorQuestions []string
}

// Source generates a multiple-choice question at the requested difficulty.
// Implementations return coded errors: CodeFailedPrecondition when the
// backend is not configured, CodeUnauthenticated when it rejects the
// credential, CodeUnavailable when it cannot be reached, and
// CodeInvalidArgument when its payload violates the question contract.
type Source interface {
	Generate(ctx context.Context, req Request) (*domain.Question, error)
}

// Config selects and parameterizes the LLM backend.
type Config struct {
	// Provider is one of "ollama", "openai", "gemini", "groq".
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider's default endpoint, mainly for tests.
	BaseURL string
	Timeout time.Duration
}

// New builds the Source for the configured provider. Configuration problems
// are not reported here; they surface as CodeFailedPrecondition errors from
// Generate so that a user can fix the settings and retry the same question.
func New(c Config) Source {
	hc := &http.Client{Timeout: c.Timeout}
	if c.Timeout <= 0 {
		hc.Timeout = defaultTimeout
	}

	switch c.Provider {
	case "ollama":
		return newOllamaSource(c, hc)
	case "openai":
		return newOpenAISource(c, hc)
	case "gemini":
		return newGeminiSource(c, hc)
	case "groq":
		return newGroqSource(c, hc)
	}

	return unsupportedSource{provider: c.Provider}
}

type unsupportedSource struct {
	provider string
}

func (s unsupportedSource) Generate(context.Context, Request) (*domain.Question, error) {
	return nil, errors.New(errors.CodeFailedPrecondition,
		errors.WithMessagef("question: unsupported LLM provider %q", s.provider))
}
