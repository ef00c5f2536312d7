package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/playsignal/feedback-api/internal/api/dto"
	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/internal/service/pubsub"
	"github.com/playsignal/feedback-api/internal/utils"
	"github.com/playsignal/feedback-api/pkg/logger"
)

const (
	websocketReadBufferSize        = 1024
	websocketWriteBufferSize       = 1024
	websocketSendChannelBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  websocketReadBufferSize,
	WriteBufferSize: websocketWriteBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	conn   *websocket.Conn
	gameID string
	send   chan []byte
}

// WebSocketHandler streams newly submitted feedback to dashboard clients.
// With Redis configured, fan-out goes through per-game pub/sub channels so
// every process sees every submission; without it, delivery is in-process
// only.
type WebSocketHandler struct {
	*BaseHandler
	games       GameService
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	logger      *logger.Logger
	pubsub      *pubsub.RedisPubSub // nil in the single-process posture
	ctx         context.Context
	cancel      context.CancelFunc
	gameClients map[string]int
}

func NewWebSocketHandler(games GameService, logger *logger.Logger, pubsub *pubsub.RedisPubSub) *WebSocketHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &WebSocketHandler{
		games:       games,
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
		pubsub:      pubsub,
		ctx:         ctx,
		cancel:      cancel,
		gameClients: make(map[string]int),
	}
}

// HandleFeedbackStream upgrades a dashboard connection scoped to one owned
// game. Ownership failures read as 404, like the other game routes.
func (h *WebSocketHandler) HandleFeedbackStream(c *gin.Context) {
	accountID, err := utils.GetAccountIDFromContext(h.RequestCtx(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error{Code: dto.CodeUnauthorized})
		return
	}

	game, err := h.games.GetByIDAndAccount(c.Request.Context(), c.Param("gameId"), accountID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return
	}
	if game == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, dto.Error{Code: dto.CodeGameNotFound})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return
	}

	client := &Client{
		conn:   conn,
		gameID: game.ID,
		send:   make(chan []byte, websocketSendChannelBufferSize),
	}
	h.register <- client

	go h.writePump(client)
	go h.readPump(client)
}

func (h *WebSocketHandler) Start() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.gameClients[client.gameID]++

			// First listener for this game opens the shared channel.
			if h.pubsub != nil && h.gameClients[client.gameID] == 1 {
				if err := h.pubsub.Subscribe(h.ctx, client.gameID, h.deliver); err != nil {
					h.logger.Errorf("failed to subscribe to game %s: %v", client.gameID, err)
				}
			}
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				h.gameClients[client.gameID]--
				if h.gameClients[client.gameID] == 0 {
					if h.pubsub != nil {
						h.pubsub.Unsubscribe(client.gameID)
					}
					delete(h.gameClients, client.gameID)
				}
			}
			h.mutex.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

func (h *WebSocketHandler) Stop() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}

// BroadcastFeedback implements service.FeedbackBroadcaster.
func (h *WebSocketHandler) BroadcastFeedback(feedback *domain.Feedback) {
	if h.pubsub != nil {
		if err := h.pubsub.Publish(h.ctx, feedback); err != nil {
			h.logger.Errorf("failed to publish feedback: %v", err)
		}
		return
	}
	h.deliver(feedback)
}

// deliver fans one feedback item out to the connected clients of its game.
// A client with a full send buffer misses the message rather than blocking
// the hub.
func (h *WebSocketHandler) deliver(feedback *domain.Feedback) {
	message, err := json.Marshal(feedback)
	if err != nil {
		h.logger.Errorf("error marshaling feedback: %v", err)
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if client.gameID != feedback.GameID {
			continue
		}
		select {
		case client.send <- message:
		default:
		}
	}
}

func (h *WebSocketHandler) writePump(client *Client) {
	defer client.conn.Close()

	for message := range client.send {
		w, err := client.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}

	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (h *WebSocketHandler) readPump(client *Client) {
	defer func() {
		h.unregister <- client
		client.conn.Close()
	}()

	for {
		_, _, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warnf("unexpected close for game %s stream: %v", client.gameID, err)
			}
			break
		}
		// Dashboard clients only listen; inbound frames are ignored.
	}
}
