// Package ws fans live KPI value events out to connected portal clients,
// filtered by the same sector scope that gates dashboard reads.
package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pedago-dev/portal/internal/access"
)

const writeWait = 10 * time.Second

// Client is one connected viewer together with the sector scope captured at
// connect time. Clients reconnect after an assignment change; the scope is
// not refreshed mid-connection.
//
// All writes go through WriteJSON/Ping: gorilla connections support only one
// concurrent writer, and broadcasts, pings and the welcome message come from
// different goroutines.
type Client struct {
	admin     bool
	sectorIDs map[uint]bool

	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (c *Client) covers(sectorID uint) bool {
	if c.admin {
		return true
	}
	return c.sectorIDs[sectorID]
}

// WriteJSON sends payload on the connection under the write lock.
func (c *Client) WriteJSON(payload interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn == nil {
		return nil
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(payload)
}

// Ping sends a ping control frame under the write lock.
func (c *Client) Ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.conn == nil {
		return nil
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *Client) close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

func (h *Hub) Register(conn *websocket.Conn, actor access.Actor) *Client {
	client := &Client{
		conn:      conn,
		admin:     actor.IsAdmin(),
		sectorIDs: make(map[uint]bool, len(actor.SectorIDs)),
	}

	for _, id := range actor.SectorIDs {
		client.sectorIDs[id] = true
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Broadcast pushes payload to every client whose scope covers the given
// sector. Connections that fail to write are dropped.
func (h *Hub) Broadcast(sectorID uint, payload interface{}) {
	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client.covers(sectorID) {
			recipients = append(recipients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range recipients {
		if err := client.WriteJSON(payload); err != nil {
			log.Printf("Failed to broadcast to client: %v", err)
			h.Unregister(client)
			client.close()
		}
	}
}
