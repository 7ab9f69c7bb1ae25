// Package ticker pushes live sale updates to websocket subscribers.
// Storefronts use it to move the progress bar and the current price
// without polling.
package ticker

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"presale-backend/internal/domain"
)

// Update is one ticker frame. Sent on every committed purchase and to
// each subscriber right after it connects.
type Update struct {
	UnitPrice     string `json:"unit_price"`
	TotalCoins    string `json:"total_coins_sold"`
	TotalRaised   string `json:"total_raised_eur"`
	PurchaseCount int64  `json:"purchase_count"`
	Currency      string `json:"currency"`
}

// Broadcaster fans sale updates out to connected websocket clients.
type Broadcaster struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	last     *Update
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// NewBroadcaster creates a Broadcaster. A nil logger falls back to the
// standard logger.
func NewBroadcaster(logger *log.Logger) *Broadcaster {
	if logger == nil {
		logger = log.Default()
	}
	return &Broadcaster{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   logger,
	}
}

// Publish sends an update to every connected client. Clients whose
// writes fail are dropped.
func (b *Broadcaster) Publish(unitPrice decimal.Decimal, stats *domain.SaleStats, currency string) {
	update := &Update{
		UnitPrice:     unitPrice.String(),
		TotalCoins:    stats.TotalCoinsSold.String(),
		TotalRaised:   stats.TotalRaisedEur.String(),
		PurchaseCount: stats.TotalPurchaseCount,
		Currency:      currency,
	}

	msg, err := json.Marshal(update)
	if err != nil {
		b.logger.Printf("marshal ticker update: %v", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = update
	for c := range b.clients {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			b.logger.Printf("ticker write error, dropping client: %v", err)
			c.Close()
			delete(b.clients, c)
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Handler accepts websocket subscriptions. New clients immediately
// receive the last published update, if any.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			b.logger.Printf("ticker upgrade error: %v", err)
			return
		}

		b.mu.Lock()
		b.clients[conn] = struct{}{}
		if b.last != nil {
			if msg, err := json.Marshal(b.last); err == nil {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					delete(b.clients, conn)
					b.mu.Unlock()
					conn.Close()
					return
				}
			}
		}
		b.mu.Unlock()

		// Read loop: drains client frames and detects disconnects.
		go func() {
			defer func() {
				b.mu.Lock()
				delete(b.clients, conn)
				b.mu.Unlock()
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		c.Close()
		delete(b.clients, c)
	}
}
