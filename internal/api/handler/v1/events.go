package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ingetuto/ingetuto-api/internal/api/handler/v1/response"
	"github.com/ingetuto/ingetuto-api/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type eventClient struct {
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

// EventHub pushes session status changes to the connected parties of each session.
type EventHub struct {
	uSvc     CurrentUserService
	upgrader websocket.Upgrader

	clients      map[uint]map[*eventClient]struct{}
	clientsMutex sync.RWMutex
	events       chan domain.SessionEvent
	register     chan *eventClient
	unregister   chan *eventClient
	done         chan struct{}
}

func NewEventHub(uSvc CurrentUserService, allowedOrigins []string) *EventHub {
	h := &EventHub{
		uSvc:       uSvc,
		clients:    make(map[uint]map[*eventClient]struct{}),
		events:     make(chan domain.SessionEvent, 256),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Non-browser clients send no Origin.
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}

		return false
	}
}

// Publish never blocks the caller; events are dropped when the hub falls behind.
func (h *EventHub) Publish(e domain.SessionEvent) {
	select {
	case h.events <- e:
	default:
		zap.L().Warn("session event dropped", zap.Uint("session_id", e.SessionID), zap.String("type", e.Type))
	}
}

func (h *EventHub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.clientsMutex.Lock()
			for _, conns := range h.clients {
				for c := range conns {
					close(c.send)
				}
			}
			h.clients = make(map[uint]map[*eventClient]struct{})
			h.clientsMutex.Unlock()
			return nil
		case client := <-h.register:
			h.clientsMutex.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*eventClient]struct{})
			}
			h.clients[client.userID][client] = struct{}{}
			h.clientsMutex.Unlock()
		case client := <-h.unregister:
			h.clientsMutex.Lock()
			h.remove(client)
			h.clientsMutex.Unlock()
		case e := <-h.events:
			h.deliver(e)
		}
	}
}

// remove must be called with clientsMutex held.
func (h *EventHub) remove(client *eventClient) {
	conns, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok = conns[client]; !ok {
		return
	}

	delete(conns, client)
	close(client.send)
	if len(conns) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *EventHub) deliver(e domain.SessionEvent) {
	message, err := json.Marshal(e)
	if err != nil {
		zap.L().Error("json.Marshal session event", zap.Error(err))
		return
	}

	h.clientsMutex.Lock()
	defer h.clientsMutex.Unlock()

	for _, userID := range []uint{e.StudentID, e.TutorID} {
		for client := range h.clients[userID] {
			select {
			case client.send <- message:
			default:
				h.remove(client)
			}
		}
	}
}

// Connected reports how many sockets a user has open.
func (h *EventHub) Connected(userID uint) int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()

	return len(h.clients[userID])
}

// HandleWebSocket godoc
// @Summary      Stream session events
// @Description  Upgrades to a WebSocket that receives {type, idTutoria, estado} for every change to the caller's sessions. Browsers pass the token as the token query parameter.
// @Tags         events
// @Param        token  query  string  false  "bearer token for browsers"
// @Success      101    {string}  string  "Switching Protocols"
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events/ws [get]
// @Security BearerAuth
func (h *EventHub) HandleWebSocket(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// The upgrader already replied to the client.
		zap.L().Debug("h.upgrader.Upgrade", zap.Error(err))
		return
	}

	client := &eventClient{
		conn:   conn,
		send:   make(chan []byte, 32),
		userID: user.ID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)
}

func (c *eventClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; clients have nothing to say.
func (c *eventClient) readPump(h *EventHub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("websocket closed", zap.Uint("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}
