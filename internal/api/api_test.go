package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/arindamb69/AI-ML-Quiz/internal/api"
	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
	"github.com/arindamb69/AI-ML-Quiz/internal/event"
	"github.com/arindamb69/AI-ML-Quiz/internal/game"
	"github.com/arindamb69/AI-ML-Quiz/internal/question"
)

// stubSource serves a fixed question; "Right" is always the correct option.
type stubSource struct{}

func (stubSource) Generate(_ context.Context, req question.Request) (*domain.Question, error) {
	return &domain.Question{
		QuestionID:    "q-1",
		Text:          "What is gradient descent?",
		Options:       []string{"Right", "Wrong 1", "Wrong 2", "Wrong 3"},
		CorrectAnswer: "Right",
		Difficulty:    req.Difficulty,
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	e := gin.New()

	eb := event.NewBus()
	svc := game.NewService(game.Config{
		EventBus:         eb,
		Source:           stubSource{},
		QuestionsPerTeam: 1,
		AnswerTimeout:    -1,
	})
	api.New(api.Config{Router: e, EventBus: eb, Game: svc})

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
		eb.Stop()
	})
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func decodeGame(t *testing.T, body []byte) domain.Game {
	t.Helper()

	var g domain.Game
	require.NoError(t, json.Unmarshal(body, &g))
	return g
}

func TestAPI_GameFlow(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/v1/games", map[string]any{
		"teamNames": []string{"Red", "Blue"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	g := decodeGame(t, body)
	require.Len(t, g.Teams, 2)
	require.True(t, g.IsSelectingDifficulty)
	base := "/v1/games/" + g.GameID

	resp, body = do(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, g.GameID, decodeGame(t, body).GameID)

	// Red answers its single question correctly at hard: 3 points and a
	// bonus turn.
	resp, body = do(t, srv, http.MethodPost, base+"/question", map[string]any{"difficulty": "hard"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	g = decodeGame(t, body)
	require.NotNil(t, g.CurrentQuestion)
	require.False(t, g.CurrentQuestion.IsBonus)

	// A second question while one is active is a conflict.
	resp, _ = do(t, srv, http.MethodPost, base+"/question", map[string]any{"difficulty": "easy"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, srv, http.MethodPost, base+"/answer", map[string]any{"option": "Right"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	g = decodeGame(t, body)
	require.True(t, g.ShowAnswer)
	require.Equal(t, 3, g.Teams[0].Score)

	resp, body = do(t, srv, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	g = decodeGame(t, body)
	require.True(t, g.Teams[0].BonusEligible)
	require.Zero(t, g.CurrentTeamIndex, "a perfect team stays up for its bonus")

	// The bonus question times out.
	resp, body = do(t, srv, http.MethodPost, base+"/question", map[string]any{"difficulty": "easy"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, decodeGame(t, body).CurrentQuestion.IsBonus)

	resp, body = do(t, srv, http.MethodPost, base+"/answer", map[string]any{"timeout": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 3, decodeGame(t, body).Teams[0].Score)

	resp, body = do(t, srv, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, decodeGame(t, body).CurrentTeamIndex)

	// Blue misses its question; the game completes.
	do(t, srv, http.MethodPost, base+"/question", map[string]any{"difficulty": "easy"})
	do(t, srv, http.MethodPost, base+"/answer", map[string]any{"option": "Wrong 1"})
	resp, body = do(t, srv, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, decodeGame(t, body).IsGameComplete)

	resp, body = do(t, srv, http.MethodGet, base+"/rankings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var r domain.Ranking
	require.NoError(t, json.Unmarshal(body, &r))
	require.Equal(t, "Red", r.Teams[0].Name)
	require.Equal(t, []string{g.Teams[0].TeamID}, r.Winners)
	require.False(t, r.IsTie)

	// Reset and play again from scratch.
	resp, body = do(t, srv, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	g = decodeGame(t, body)
	require.False(t, g.IsGameComplete)
	require.Zero(t, g.Teams[0].Score)

	resp, _ = do(t, srv, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, srv, http.MethodGet, base, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ErrorMapping(t *testing.T) {
	srv := newTestServer(t)

	tests := map[string]struct {
		method     string
		path       string
		body       any
		wantStatus int
	}{
		"create with one team": {
			method:     http.MethodPost,
			path:       "/v1/games",
			body:       map[string]any{"teamNames": []string{"Solo"}},
			wantStatus: http.StatusBadRequest,
		},
		"create with malformed body": {
			method:     http.MethodPost,
			path:       "/v1/games",
			body:       "not-an-object",
			wantStatus: http.StatusBadRequest,
		},
		"unknown game": {
			method:     http.MethodGet,
			path:       "/v1/games/unknown",
			wantStatus: http.StatusNotFound,
		},
		"delete unknown game": {
			method:     http.MethodDelete,
			path:       "/v1/games/unknown",
			wantStatus: http.StatusNotFound,
		},
		"answer with neither option nor timeout": {
			method:     http.MethodPost,
			path:       "/v1/games/unknown/answer",
			body:       map[string]any{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			resp, body := do(t, srv, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode)

			var e struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(body, &e))
			require.NotEmpty(t, e.Message)
		})
	}

	// Advancing with nothing answered is a precondition failure.
	_, body := do(t, srv, http.MethodPost, "/v1/games", map[string]any{"teamNames": []string{"A", "B"}})
	g := decodeGame(t, body)
	resp, _ := do(t, srv, http.MethodPost, "/v1/games/"+g.GameID+"/next", nil)
	require.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
}

func TestAPI_WebSocket(t *testing.T) {
	srv := newTestServer(t)

	_, body := do(t, srv, http.MethodPost, "/v1/games", map[string]any{
		"teamNames": []string{"Red", "Blue"},
	})
	g := decodeGame(t, body)
	wsBase := "ws" + strings.TrimPrefix(srv.URL, "http")

	t.Run("unknown game rejected before upgrade", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsBase+"/v1/games/unknown/ws", nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("streams state changes", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s/v1/games/%s/ws", wsBase, g.GameID), nil)
		require.NoError(t, err)
		defer conn.Close()

		var env struct {
			Event string      `json:"event"`
			Data  domain.Game `json:"data"`
		}

		// The initial snapshot arrives right after the upgrade.
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&env))
		require.Equal(t, domain.EventNameGameUpdated, env.Event)
		require.Equal(t, g.GameID, env.Data.GameID)
		require.True(t, env.Data.IsSelectingDifficulty)

		// A mutation is pushed to the watcher.
		resp, _ := do(t, srv, http.MethodPost, "/v1/games/"+g.GameID+"/question", map[string]any{"difficulty": "medium"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&env))
		require.Equal(t, domain.EventNameGameUpdated, env.Event)
		require.NotNil(t, env.Data.CurrentQuestion)
		require.Equal(t, domain.DifficultyMedium, env.Data.CurrentQuestion.Difficulty)
	})
}
