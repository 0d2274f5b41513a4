package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/arindamb69/AI-ML-Quiz/internal/domain"
	"github.com/arindamb69/AI-ML-Quiz/internal/game"
)

const maxConcurrentWrites = 100

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type wsEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// hub tracks websocket watchers per game.
type hub struct {
	mu      sync.RWMutex
	watchers map[string]map[*wsClient]struct{}
}

func newHub() *hub {
	return &hub{
		watchers: make(map[string]map[*wsClient]struct{}),
	}
}

// wsClient serializes writes to one connection; broadcasts and the initial
// snapshot may race otherwise.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// serveWS upgrades the request and streams every state change of the game
// until the client disconnects.
func (a *API) serveWS(c *gin.Context) {
	gameID := c.Param("id")

	g, err := a.game.GetGame(c.Request.Context(), game.GetGameRequest{GameID: gameID})
	if err != nil {
		abortError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "api: ws upgrade failed", "error", err)
		return
	}

	cl := &wsClient{conn: conn}
	a.hub.add(gameID, cl)
	defer func() {
		a.hub.remove(gameID, cl)
		conn.Close()
	}()

	if err := cl.writeJSON(wsEnvelope{Event: domain.EventNameGameUpdated, Data: g}); err != nil {
		return
	}

	// The socket is a one-way state stream; reads only drive close and
	// control-frame handling.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) add(gameID string, cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.watchers[gameID] == nil {
		h.watchers[gameID] = make(map[*wsClient]struct{})
	}
	h.watchers[gameID][cl] = struct{}{}
}

func (h *hub) remove(gameID string, cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.watchers[gameID], cl)
	if len(h.watchers[gameID]) == 0 {
		delete(h.watchers, gameID)
	}
}

// broadcast pushes a snapshot to every watcher of the game. A failing
// connection is dropped; it never fails the publishing operation.
func (h *hub) broadcast(_ context.Context, g domain.Game) error {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.watchers[g.GameID]))
	for cl := range h.watchers[g.GameID] {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()

	var eg errgroup.Group
	eg.SetLimit(maxConcurrentWrites)

	for _, cl := range clients {
		cl := cl
		eg.Go(func() error {
			if err := cl.writeJSON(wsEnvelope{Event: domain.EventNameGameUpdated, Data: g}); err != nil {
				h.remove(g.GameID, cl)
				cl.conn.Close()
			}
			return nil
		})
	}

	return eg.Wait()
}
