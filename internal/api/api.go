package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
	"github.com/arindamb69/AI-ML-Quiz/internal/errors"
	"github.com/arindamb69/AI-ML-Quiz/internal/event"
	"github.com/arindamb69/AI-ML-Quiz/internal/game"
)

type Config struct {
	Router   *gin.Engine
	EventBus *event.Bus
	Game     *game.Service
}

// API exposes the game entry points to the browser UI: JSON over HTTP for
// actions, a websocket stream for state updates.
type API struct {
	game *game.Service
	hub  *hub
}

func New(c Config) *API {
	a := &API{
		game: c.Game,
		hub:  newHub(),
	}

	// Every mutation publishes a snapshot; the hub fans it out to the
	// game's websocket watchers.
	c.EventBus.Subscribe(domain.EventNameGameUpdated, func(ctx context.Context, e event.Event) error {
		return a.hub.broadcast(ctx, e.(domain.EventGameUpdated).Game)
	})

	v1 := c.Router.Group("/v1")
	v1.POST("/games", a.createGame)
	v1.GET("/games/:id", a.getGame)
	v1.DELETE("/games/:id", a.deleteGame)
	v1.POST("/games/:id/question", a.beginQuestion)
	v1.POST("/games/:id/answer", a.submitAnswer)
	v1.POST("/games/:id/next", a.advanceTurn)
	v1.POST("/games/:id/end", a.endGame)
	v1.POST("/games/:id/reset", a.resetGame)
	v1.GET("/games/:id/rankings", a.rankTeams)
	v1.GET("/games/:id/ws", a.serveWS)

	return a
}

type createGameRequest struct {
	TeamNames []string `json:"teamNames"`
}

func (a *API) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid request body"),
			errors.WithCause(err)))
		return
	}

	g, err := a.game.CreateGame(c.Request.Context(), game.CreateGameRequest{
		TeamNames: req.TeamNames,
	})
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusCreated, g)
}

func (a *API) getGame(c *gin.Context) {
	g, err := a.game.GetGame(c.Request.Context(), game.GetGameRequest{
		GameID: c.Param("id"),
	})
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (a *API) deleteGame(c *gin.Context) {
	err := a.game.DeleteGame(c.Request.Context(), game.DeleteGameRequest{
		GameID: c.Param("id"),
	})
	if err != nil {
		abortError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type beginQuestionRequest struct {
	Difficulty domain.Difficulty `json:"difficulty"`
}

func (a *API) beginQuestion(c *gin.Context) {
	var req beginQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid request body"),
			errors.WithCause(err)))
		return
	}

	g, err := a.game.BeginQuestion(c.Request.Context(), game.BeginQuestionRequest{
		GameID:     c.Param("id"),
		Difficulty: req.Difficulty,
	})
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

type submitAnswerRequest struct {
	// Option is the chosen option text. Omit it and set Timeout instead to
	// report that the countdown ran out.
	Option  *string `json:"option"`
	Timeout bool    `json:"timeout"`
}

func (a *API) submitAnswer(c *gin.Context) {
	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid request body"),
			errors.WithCause(err)))
		return
	}

	if req.Option == nil && !req.Timeout {
		abortError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("either option or timeout is required")))
		return
	}

	option := req.Option
	if req.Timeout {
		option = nil
	}

	g, err := a.game.SubmitAnswer(c.Request.Context(), game.SubmitAnswerRequest{
		GameID: c.Param("id"),
		Option: option,
	})
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (a *API) advanceTurn(c *gin.Context) {
	g, err := a.game.AdvanceTurn(c.Request.Context(), game.AdvanceTurnRequest{
		GameID: c.Param("id"),
	})
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (a *API) endGame(c *gin.Context) {
	g, err := a.game.EndGame(c.Request.Context(), game.EndGameRequest{
		GameID: c.Param("id"),
	})
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (a *API) resetGame(c *gin.Context) {
	g, err := a.game.ResetGame(c.Request.Context(), game.ResetGameRequest{
		GameID: c.Param("id"),
	})
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, g)
}

func (a *API) rankTeams(c *gin.Context) {
	r, err := a.game.RankTeams(c.Request.Context(), game.RankTeamsRequest{
		GameID: c.Param("id"),
	})
	if err != nil {
		abortError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

func abortError(c *gin.Context, err error) {
	e := errors.Convert(err)
	c.AbortWithStatusJSON(e.HTTPStatusCode(), e)
}
