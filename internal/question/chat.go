package question

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
	"github.com/arindamb69/AI-ML-Quiz/internal/errors"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-3.5-turbo"

	defaultGroqBaseURL = "https://api.groq.com/openai"
	defaultGroqModel   = "llama-3.3-70b-versatile"
)

// chatSource speaks the OpenAI chat-completions dialect, shared verbatim by
// OpenAI and Groq.
type chatSource struct {
	provider string
	baseURL  string
	model    string
	apiKey   string
	hc       *http.Client
}

func newOpenAISource(c Config, hc *http.Client) *chatSource {
	return newChatSource("OpenAI", defaultOpenAIBaseURL, defaultOpenAIModel, c, hc)
}

func newGroqSource(c Config, hc *http.Client) *chatSource {
	return newChatSource("Groq", defaultGroqBaseURL, defaultGroqModel, c, hc)
}

func newChatSource(provider, baseURL, model string, c Config, hc *http.Client) *chatSource {
	s := &chatSource{
		provider: provider,
		baseURL:  baseURL,
		model:    model,
		apiKey:   c.APIKey,
		hc:       hc,
	}
	if c.BaseURL != "" {
		s.baseURL = c.BaseURL
	}
	if c.Model != "" {
		s.model = c.Model
	}
	return s
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *chatSource) Generate(ctx context.Context, req Request) (*domain.Question, error) {
	if s.apiKey == "" {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("question: %s API key is missing", s.provider))
	}

	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(req)},
		},
	})
	if err != nil {
		return nil, errors.Internal(err)
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal(err)
	}
	hr.Header.Set("Content-Type", "application/json")
	hr.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.hc.Do(hr)
	if err != nil {
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("question: %s API unreachable", s.provider),
			errors.WithCause(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("question: invalid %s API key", s.provider))
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("question: %s API returned status %d", s.provider, resp.StatusCode))
	}

	var cr chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&cr); err != nil {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: invalid response format from %s", s.provider),
			errors.WithCause(err))
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: no response from %s", s.provider))
	}

	return parsePayload(s.provider, cr.Choices[0].Message.Content, req.Difficulty)
}
