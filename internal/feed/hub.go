// Package feed broadcasts executed trades and book depth to websocket
// subscribers. It is purely observational: the engine has committed by
// the time anything reaches the hub, and a slow client is dropped
// rather than allowed to block publication.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/veloxchange/velox/internal/domain"
	"github.com/veloxchange/velox/internal/engine"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod sends pings at this interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize is the channel buffer for outgoing messages per client.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins. In production, restrict this to known origins.
		return true
	},
}

// client represents a single websocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// message is the envelope every feed message is wrapped in.
type message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// tradeMessage is the payload for executed trades.
type tradeMessage struct {
	TradeID     string `json:"trade_id"`
	Symbol      string `json:"symbol"`
	Price       int    `json:"price"`
	Quantity    int    `json:"quantity"`
	BuyOrderID  int64  `json:"buy_order_id"`
	SellOrderID int64  `json:"sell_order_id"`
	ExecutedAt  string `json:"executed_at"`
}

// depthLevel mirrors an aggregated price level; iceberg orders
// contribute only their displayed quantity.
type depthLevel struct {
	Price      int `json:"price"`
	Quantity   int `json:"quantity"`
	OrderCount int `json:"order_count"`
}

// depthMessage is the payload for top-of-book snapshots.
type depthMessage struct {
	Symbol string       `json:"symbol"`
	Bids   []depthLevel `json:"bids"`
	Asks   []depthLevel `json:"asks"`
}

// Hub manages connected websocket clients and fans published messages
// out to all of them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	logger     *slog.Logger
}

// NewHub creates a new feed hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, sendBufferSize),
		register:   make(chan *client),
		unregister: make(chan *client),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until the context is
// cancelled. Start it in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client: drop it rather than block the feed.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// PublishTrade broadcasts an executed trade.
func (h *Hub) PublishTrade(t *domain.Trade) {
	h.publish(message{Type: "trade", Data: tradeMessage{
		TradeID:     t.TradeID,
		Symbol:      t.Symbol,
		Price:       t.Price,
		Quantity:    t.Quantity,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		ExecutedAt:  t.ExecutedAt.UTC().Format(time.RFC3339Nano),
	}})
}

// PublishDepth broadcasts an aggregated book snapshot.
func (h *Hub) PublishDepth(symbol string, bids, asks []engine.PriceLevel) {
	h.publish(message{Type: "depth", Data: depthMessage{
		Symbol: symbol,
		Bids:   toDepthLevels(bids),
		Asks:   toDepthLevels(asks),
	}})
}

func toDepthLevels(levels []engine.PriceLevel) []depthLevel {
	out := make([]depthLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, depthLevel{Price: l.Price, Quantity: l.Quantity, OrderCount: l.OrderCount})
	}
	return out
}

func (h *Hub) publish(msg message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("feed marshal failed", slog.String("error", err.Error()))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		// Feed backlog full; market data is best-effort.
	}
}

// ServeWS upgrades an HTTP request to a websocket subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump discards inbound messages and watches for disconnect. The
// feed is one-way; clients only receive.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
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

// writePump flushes the send channel to the connection and keeps the
// connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
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
