package question

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
	"github.com/arindamb69/AI-ML-Quiz/internal/errors"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// ollamaSource talks to a local Ollama daemon via its generate API.
type ollamaSource struct {
	baseURL string
	model   string
	hc      *http.Client
}

func newOllamaSource(c Config, hc *http.Client) *ollamaSource {
	s := &ollamaSource{
		baseURL: c.BaseURL,
		model:   c.Model,
		hc:      hc,
	}
	if s.baseURL == "" {
		s.baseURL = defaultOllamaBaseURL
	}
	return s
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (s *ollamaSource) Generate(ctx context.Context, req Request) (*domain.Question, error) {
	if s.model == "" {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("question: no Ollama model selected"))
	}

	body, err := json.Marshal(ollamaRequest{
		Model:  s.model,
		Prompt: systemPrompt + "\n\n" + userPrompt(req),
		Stream: false,
	})
	if err != nil {
		return nil, errors.Internal(err)
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal(err)
	}
	hr.Header.Set("Content-Type", "application/json")

	resp, err := s.hc.Do(hr)
	if err != nil {
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("question: could not connect to Ollama at %s, make sure it is running", s.baseURL),
			errors.WithCause(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("question: Ollama API returned status %d", resp.StatusCode))
	}

	var or ollamaResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&or); err != nil {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: invalid response format from Ollama"),
			errors.WithCause(err))
	}
	if or.Response == "" {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: no response from Ollama"))
	}

	return parsePayload("Ollama", or.Response, req.Difficulty)
}

// maxResponseBytes bounds how much of a provider response body is read.
const maxResponseBytes = 1 << 20

// String identifies the backend in logs.
func (s *ollamaSource) String() string {
	return fmt.Sprintf("ollama(%s)", s.model)
}
