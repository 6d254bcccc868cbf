// Package ws pushes live order updates to connected buyers and sellers.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/auth"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/gorilla/websocket"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 32
)

// Message is the frame written to clients.
type Message struct {
	Type  string             `json:"type"`
	Order service.OrderEvent `json:"order"`
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

type delivery struct {
	userIDs []string
	data    []byte
}

// Hub tracks connections by user ID. Run must be started before HandleOrders
// accepts connections.
type Hub struct {
	clients    map[string]map[*client]struct{}
	register   chan *client
	unregister chan *client
	deliver    chan delivery
	done       chan struct{}
	mu         sync.RWMutex

	tokens   *auth.TokenManager
	upgrader websocket.Upgrader
	log      logger.Logger
}

func NewHub(tokens *auth.TokenManager, allowedOrigins []string, log logger.Logger) *Hub {
	h := &Hub{
		clients:    make(map[string]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		tokens:     tokens,
		log:        log.Named("WSHub"),
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
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// Run is the hub's event loop; it returns when ctx is done and closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = make(map[string]map[*client]struct{})
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			h.mu.Unlock()
			h.log.Debugf("ws client connected for user %s", c.userID)

		case c := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[c.userID]; ok {
				if _, ok := set[c]; ok {
					delete(set, c)
					close(c.send)
				}
				if len(set) == 0 {
					delete(h.clients, c.userID)
				}
			}
			h.mu.Unlock()

		case d := <-h.deliver:
			h.mu.Lock()
			for _, userID := range d.userIDs {
				for c := range h.clients[userID] {
					select {
					case c.send <- d.data:
					default:
						// slow consumer
						delete(h.clients[userID], c)
						close(c.send)
					}
				}
				if set, ok := h.clients[userID]; ok && len(set) == 0 {
					delete(h.clients, userID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Connected returns the number of open sessions for userID.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendOrderEvent routes an order event to the buyer and the seller user.
func (h *Hub) SendOrderEvent(subject string, event service.OrderEvent) {
	data, err := json.Marshal(Message{Type: subject, Order: event})
	if err != nil {
		h.log.Errorf("failed to encode %s for order %s: %v", subject, event.OrderID, err)
		return
	}
	userIDs := []string{event.BuyerID}
	if event.SellerUserID != "" && event.SellerUserID != event.BuyerID {
		userIDs = append(userIDs, event.SellerUserID)
	}
	select {
	case h.deliver <- delivery{userIDs: userIDs, data: data}:
	default:
		h.log.Warnf("ws delivery buffer full, dropping %s for order %s", subject, event.OrderID)
	}
}

// HandleOrderMessage decodes an order event received from the broker. Its
// signature matches the NATS subscriber callback.
func (h *Hub) HandleOrderMessage(_ context.Context, subject string, data []byte) {
	var event service.OrderEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.log.Warnf("malformed %s message: %v", subject, err)
		return
	}
	if event.BuyerID == "" {
		return
	}
	h.SendOrderEvent(subject, event)
}

// HandleOrders upgrades GET /ws/orders. Browsers cannot set headers on a
// websocket handshake, so the token may come from the query string.
func (h *Hub) HandleOrders(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = middleware.BearerToken(r)
	}
	claims, err := h.tokens.Parse(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("ws upgrade failed: %v", err)
		return
	}
	c := &client{userID: claims.UserID, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// readPump only watches for disconnects and pongs.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
