package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quiz-player/internal/models"
	"quiz-player/internal/quiz"
)

// Message represents the standard message format exchanged over WebSocket.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	MessageState  = "state"
	MessageResult = "result"
	MessageError  = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	commandTimeout = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The CORS layer in front of the API decides which origins may talk to us.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionController is the part of the quiz session the hub drives.
type SessionController interface {
	Snapshot() models.Snapshot
	NavigateTo(ctx context.Context, index int) bool
	NavigateRelative(ctx context.Context, delta int) bool
	JumpToQuestionByID(ctx context.Context, questionID int) bool
	SetAnswer(ctx context.Context, questionID int, value models.AnswerValue) bool
	Submit(ctx context.Context, confirm quiz.ConfirmFunc) (models.Result, bool)
	Reset(ctx context.Context, confirm quiz.ConfirmFunc) (bool, error)
}

// Hub fans session updates out to every open player connection (one player
// may have several tabs) and feeds their commands back into the session.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	session    SessionController
	// latest is the last state message, handed to clients as they register
	latest []byte
}

type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetSession attaches the session. Its current state seeds new connections until
// the first broadcast.
func (h *Hub) SetSession(session SessionController) {
	var seed []byte
	if session != nil {
		data, err := json.Marshal(Message{Type: MessageState, Data: session.Snapshot()})
		if err != nil {
			log.Printf("Error marshaling state message: %v", err)
		}
		seed = data
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = session
	if h.latest == nil {
		h.latest = seed
	}
}

func (h *Hub) controller() SessionController {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run listens on the register and unregister channels and updates the hub state accordingly.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			if h.latest != nil {
				client.send <- h.latest
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("Client %s connected. Total: %d", client.id, count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("Client %s disconnected. Remaining: %d", client.id, len(h.clients))
			}
			h.mu.Unlock()
		}
	}
}

// StateChanged, Submitted and Failed make the hub a quiz.Notifier.
func (h *Hub) StateChanged(snapshot models.Snapshot) {
	h.BroadcastMessage(MessageState, snapshot)
}

func (h *Hub) Submitted(result models.Result) {
	h.BroadcastMessage(MessageResult, result)
}

func (h *Hub) Failed(err error) {
	h.BroadcastMessage(MessageError, errorPayload(err))
}

// BroadcastMessage marshals the message and queues it on every client. Clients
// whose queue is full are dropped.
func (h *Hub) BroadcastMessage(messageType string, data interface{}) {
	messageBytes, err := json.Marshal(Message{Type: messageType, Data: data})
	if err != nil {
		log.Printf("Error marshaling %s message: %v", messageType, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if messageType == MessageState {
		h.latest = messageBytes
	}
	for client := range h.clients {
		select {
		case client.send <- messageBytes:
		default:
			log.Printf("Send channel full for client %s; unregistering client", client.id)
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// HandleWebSocket upgrades the HTTP connection, registers the client and starts
// its pumps. Registration queues the latest state first.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) sendMessage(messageType string, data interface{}) {
	messageBytes, err := json.Marshal(Message{Type: messageType, Data: data})
	if err != nil {
		log.Printf("Error marshaling message for client %s: %v", c.id, err)
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- messageBytes:
	default:
		log.Printf("Send channel full for client %s", c.id)
	}
}

// readPump continuously reads commands from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Unexpected close: %v", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

type indexData struct {
	Index int `json:"index"`
}

type questionData struct {
	QuestionID int `json:"questionId"`
}

type answerData struct {
	QuestionID int                `json:"questionId"`
	Value      models.AnswerValue `json:"value"`
}

type confirmData struct {
	Confirm bool `json:"confirm"`
}

func (c *Client) handleMessage(message []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		c.sendMessage(MessageError, errorPayload(errors.New("invalid message")))
		return
	}

	session := c.hub.controller()
	if session == nil {
		log.Printf("Quiz session not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var applied bool
	var err error
	switch msg.Type {
	case "state":
	case "navigate":
		var data indexData
		if err = decodeData(msg.Data, &data); err == nil {
			applied = session.NavigateTo(ctx, data.Index)
		}
	case "next":
		applied = session.NavigateRelative(ctx, 1)
	case "previous":
		applied = session.NavigateRelative(ctx, -1)
	case "jump":
		var data questionData
		if err = decodeData(msg.Data, &data); err == nil {
			applied = session.JumpToQuestionByID(ctx, data.QuestionID)
		}
	case "answer":
		var data answerData
		if err = decodeData(msg.Data, &data); err == nil {
			applied = session.SetAnswer(ctx, data.QuestionID, data.Value)
		}
	case "submit":
		var data confirmData
		if err = decodeData(msg.Data, &data); err == nil {
			_, applied = session.Submit(ctx, quiz.Confirmed(data.Confirm))
		}
	case "reset":
		var data confirmData
		if err = decodeData(msg.Data, &data); err == nil {
			applied, err = session.Reset(ctx, quiz.Confirmed(data.Confirm))
			if err != nil && !errors.Is(err, quiz.ErrInitializing) {
				// the session already broadcast the failure
				return
			}
		}
	default:
		err = errors.New("unknown message type " + msg.Type)
	}

	if err != nil {
		log.Printf("Client %s command %q failed: %v", c.id, msg.Type, err)
		c.sendMessage(MessageError, errorPayload(err))
		return
	}
	if !applied {
		// resync the sender; applied commands were already broadcast
		c.sendMessage(MessageState, session.Snapshot())
	}
}

func decodeData(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errors.New("missing message data")
	}
	return json.Unmarshal(raw, v)
}

func errorPayload(err error) map[string]string {
	return map[string]string{"message": err.Error()}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("Error writing message to client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
