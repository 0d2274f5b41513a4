package question

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
	"github.com/arindamb69/AI-ML-Quiz/internal/errors"
)

// payload is the JSON object the system prompt asks the model to emit.
type payload struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// parsePayload extracts the question object from raw model output and
// enforces the question contract: non-empty text, exactly 4 distinct
// non-empty options, and a correct answer that is one of them. A violating
// payload is rejected, never coerced.
func parsePayload(provider, raw string, difficulty domain.Difficulty) (*domain.Question, error) {
	obj := extractJSON(raw)
	if obj == "" {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: no JSON object in %s response", provider))
	}

	var p payload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: invalid response format from %s", provider),
			errors.WithCause(err))
	}

	if strings.TrimSpace(p.Text) == "" {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: %s returned an empty question text", provider))
	}
	if len(p.Options) != 4 {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: %s returned %d options, want exactly 4", provider, len(p.Options)))
	}

	seen := make(map[string]bool, len(p.Options))
	for _, o := range p.Options {
		if strings.TrimSpace(o) == "" {
			return nil, errors.New(errors.CodeInvalidArgument,
				errors.WithMessagef("question: %s returned an empty option", provider))
		}
		if seen[o] {
			return nil, errors.New(errors.CodeInvalidArgument,
				errors.WithMessagef("question: %s returned duplicate option %q", provider, o))
		}
		seen[o] = true
	}

	if !seen[p.CorrectAnswer] {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: correct answer from %s is not one of the options", provider))
	}

	return &domain.Question{
		QuestionID:    uuid.NewString(),
		Text:          p.Text,
		Options:       p.Options,
		CorrectAnswer: p.CorrectAnswer,
		Difficulty:    difficulty,
	}, nil
}

// extractJSON returns the outermost JSON object in raw, tolerating prose or
// markdown fences around it. Models frequently wrap the object despite the
// JSON-only instruction.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
