package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/witsml-explorer/backend/internal/logging"
	"github.com/witsml-explorer/backend/internal/models"
)

// WebSocket message types for the job stream
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected   = "connected"
	MsgTypeJobSnapshot = "jobs:snapshot"
	MsgTypeJobUpdate   = "job:update"
	MsgTypeError       = "error"
	MsgTypePong        = "pong"
)

// writeWait bounds a single frame write
const writeWait = 10 * time.Second

// WebSocket message structure
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WebSocket error response
type WSErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// JobStreamHandlerImpl pushes every job status change to connected clients
type JobStreamHandlerImpl struct {
	jobs           JobService
	upgrader       websocket.Upgrader
	maxMessageSize int64
	logger         *log.Logger
}

// NewJobStreamHandler creates a new job stream handler. A maxMessageSize of zero leaves
// inbound frames unlimited.
func NewJobStreamHandler(jobs JobService, maxMessageSize int64) JobStreamHandler {
	return &JobStreamHandlerImpl{
		jobs: jobs,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		maxMessageSize: maxMessageSize,
		logger:         logging.New("websocket"),
	}
}

// HandleJobStream upgrades the connection, sends a snapshot of all jobs and then one
// message per status change until the client disconnects
func (h *JobStreamHandlerImpl) HandleJobStream(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	if h.maxMessageSize > 0 {
		ws.SetReadLimit(h.maxMessageSize)
	}

	// Subscribe before the snapshot so no change falls between the two
	updates, unsubscribe := h.jobs.Subscribe()
	defer unsubscribe()

	h.logger.Debugf("client connected from %s", c.RealIP())

	if err := sendMessage(ws, WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()}); err != nil {
		return nil
	}
	if err := sendMessage(ws, WSMessage{
		Type:      MsgTypeJobSnapshot,
		Payload:   mustJSON(h.jobs.List()),
		Timestamp: time.Now().UnixMilli(),
	}); err != nil {
		return nil
	}

	incoming := make(chan WSMessage, 8)
	quit := make(chan struct{})
	defer close(quit)
	go h.readLoop(ws, incoming, quit)

	// All writes happen on this goroutine
	for {
		select {
		case job, ok := <-updates:
			if !ok {
				return nil
			}
			if err := sendJobUpdate(ws, job); err != nil {
				return nil
			}
		case msg, ok := <-incoming:
			if !ok {
				h.logger.Debugf("client disconnected")
				return nil
			}
			var err error
			switch msg.Type {
			case MsgTypePing:
				err = sendMessage(ws, WSMessage{Type: MsgTypePong, ID: msg.ID, Timestamp: time.Now().UnixMilli()})
			default:
				err = sendError(ws, "Unknown message type: "+msg.Type, "INVALID_TYPE")
			}
			if err != nil {
				return nil
			}
		}
	}
}

// readLoop forwards client messages until the connection fails, then closes incoming
func (h *JobStreamHandlerImpl) readLoop(ws *websocket.Conn, incoming chan<- WSMessage, quit <-chan struct{}) {
	defer close(incoming)
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warnf("connection error: %v", err)
			}
			return
		}
		select {
		case incoming <- msg:
		case <-quit:
			return
		}
	}
}

func sendJobUpdate(ws *websocket.Conn, job models.JobInfo) error {
	return sendMessage(ws, WSMessage{
		Type:      MsgTypeJobUpdate,
		ID:        job.ID,
		Payload:   mustJSON(job),
		Timestamp: time.Now().UnixMilli(),
	})
}

// sendMessage sends a JSON message over WebSocket
func sendMessage(ws *websocket.Conn, msg WSMessage) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteJSON(msg)
}

// sendError sends an error message over WebSocket
func sendError(ws *websocket.Conn, message, code string) error {
	return sendMessage(ws, WSMessage{
		Type:      MsgTypeError,
		Timestamp: time.Now().UnixMilli(),
		Payload: mustJSON(WSErrorResponse{
			Type:    MsgTypeError,
			Message: message,
			Code:    code,
		}),
	})
}

// mustJSON marshals to JSON or returns nil
func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
