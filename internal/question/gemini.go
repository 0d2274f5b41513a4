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

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-1.5-flash"
)

// geminiSource talks to the Google Generative Language API.
type geminiSource struct {
	baseURL string
	model   string
	apiKey  string
	hc      *http.Client
}

func newGeminiSource(c Config, hc *http.Client) *geminiSource {
	s := &geminiSource{
		baseURL: c.BaseURL,
		model:   c.Model,
		apiKey:  c.APIKey,
		hc:      hc,
	}
	if s.baseURL == "" {
		s.baseURL = defaultGeminiBaseURL
	}
	if s.model == "" {
		s.model = defaultGeminiModel
	}
	return s
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (s *geminiSource) Generate(ctx context.Context, req Request) (*domain.Question, error) {
	if s.apiKey == "" {
		return nil, errors.New(errors.CodeFailedPrecondition,
			errors.WithMessagef("question: Gemini API key is missing"))
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: systemPrompt + "\n\n" + userPrompt(req)}}},
		},
	})
	if err != nil {
		return nil, errors.Internal(err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal(err)
	}
	hr.Header.Set("Content-Type", "application/json")

	resp, err := s.hc.Do(hr)
	if err != nil {
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("question: Gemini API unreachable"),
			errors.WithCause(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.New(errors.CodeUnauthenticated,
			errors.WithMessagef("question: invalid Gemini API key"))
	case resp.StatusCode != http.StatusOK:
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("question: Gemini API returned status %d", resp.StatusCode))
	}

	var gr geminiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&gr); err != nil {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: invalid response format from Gemini"),
			errors.WithCause(err))
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("question: no response from Gemini"))
	}

	return parsePayload("Gemini", gr.Candidates[0].Content.Parts[0].Text, req.Difficulty)
}
