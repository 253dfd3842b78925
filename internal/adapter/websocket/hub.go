// Package websocket bridges the chat server and the browser: it rooms
// clients per chat, pushes transcript entries and playback status frames,
// and relays the browser's voice and media events back into the services.
package websocket

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/ports"
)

// Hub keeps the registered clients grouped by chat id. Frames pushed to a
// chat fan out to every client attached to it.
type Hub struct {
	rooms map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	outbound   chan outboundFrame

	mu  sync.RWMutex
	log *zap.Logger
}

type outboundFrame struct {
	chatID  string
	payload []byte
}

type Client struct {
	hub *Hub
	// The websocket connection.
	conn *websocket.Conn
	// Buffered channel of outbound messages.
	send   chan []byte
	chatID string
	userID string
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan outboundFrame, 64),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			room := h.rooms[client.chatID]
			if room == nil {
				room = make(map[*Client]bool)
				h.rooms[client.chatID] = room
			}
			room[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.chatID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.chatID)
					}
				}
			}
			h.mu.Unlock()
		case frame := <-h.outbound:
			// Slow clients get dropped here, which mutates the room map,
			// so the fan-out needs the write lock.
			h.mu.Lock()
			for client := range h.rooms[frame.chatID] {
				select {
				case client.send <- frame.payload:
				default:
					close(client.send)
					delete(h.rooms[frame.chatID], client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Push marshals frame and fans it out to every client in the chat's room.
func (h *Hub) Push(chatID string, frame interface{}) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.log.Error("Failed to marshal websocket frame", zap.Error(err))
		return
	}
	h.outbound <- outboundFrame{chatID: chatID, payload: payload}
}

// Broadcast implements ports.TranscriptBroadcaster.
func (h *Hub) Broadcast(chatID string, entry ports.TranscriptEntry) {
	h.Push(chatID, chatMessageFrame{
		Type:    frameChatMessage,
		Author:  entry.Author,
		Content: entry.Content,
	})
}

func (h *Hub) attach(conn *websocket.Conn, chatID, userID string) *Client {
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		chatID: chatID,
		userID: userID,
	}
	h.register <- client
	go client.writePump()
	return client
}

func (h *Hub) detach(client *Client) {
	h.unregister <- client
}

// sendDirect bypasses the room and targets one client. Voice directives are
// per-connection: only the browser that toggled should start its engine.
func (c *Client) sendDirect(frame interface{}) {
	payload, err := json.Marshal(frame)
	if err != nil {
		c.hub.log.Error("Failed to marshal websocket frame", zap.Error(err))
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		// Drain queued frames into the same websocket message.
		n := len(c.send)
		for i := 0; i < n; i++ {
			w.Write([]byte{'\n'})
			w.Write(<-c.send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
