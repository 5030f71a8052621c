package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/framemend/backend/internal/models"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WebSocket message types for the repair progress protocol
const (
	// Client -> Server messages
	MsgTypeWatch = "watch"
	MsgTypePing  = "ping"

	// Server -> Client messages
	MsgTypeProgress = "progress"
	MsgTypeComplete = "complete"
	MsgTypeError    = "error"
	MsgTypePong     = "pong"
)

// WSMessage is the envelope for all WebSocket traffic.
type WSMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WatchPayload subscribes the client to a repair session.
type WatchPayload struct {
	SessionID string `json:"sessionId"`
}

// WSProgressResponse carries a repair progress update.
type WSProgressResponse struct {
	SessionID      string  `json:"sessionId"`
	Status         string  `json:"status"`
	Progress       float64 `json:"progress"`
	NodeCount      int     `json:"nodeCount,omitempty"`
	LineCount      int     `json:"lineCount,omitempty"`
	SplitMothers   int     `json:"splitMothers,omitempty"`
	SyntheticNodes int     `json:"syntheticNodes,omitempty"`
}

// WSErrorResponse carries an error to the client.
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WebSocketHandler streams repair progress over a WebSocket connection.
type WebSocketHandler struct {
	handler  *Handler
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new repair progress WebSocket handler
func NewWebSocketHandler(h *Handler) *WebSocketHandler {
	return &WebSocketHandler{
		handler: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

// HandleWebSocket upgrades the connection and serves the watch protocol.
// A client sends {"type":"watch","payload":{"sessionId":...}} and receives
// progress updates until the session reaches a terminal status.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	fmt.Println("[WebSocket] Client connected for repair progress")

	wsh.sendMessage(ws, WSMessage{
		Type:      "connected",
		Timestamp: time.Now().UnixMilli(),
	})

	for {
		var msg WSMessage
		err := ws.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("[WebSocket] Connection error: %v\n", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			wsh.sendMessage(ws, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		case MsgTypeWatch:
			wsh.handleWatch(ws, msg)
		default:
			wsh.sendError(ws, "Unknown message type: "+msg.Type, "INVALID_TYPE")
		}
	}

	fmt.Println("[WebSocket] Client disconnected")
	return nil
}

// handleWatch streams progress for one session until it completes.
func (wsh *WebSocketHandler) handleWatch(ws *websocket.Conn, msg WSMessage) {
	var payload WatchPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		wsh.sendError(ws, "Invalid watch payload: "+err.Error(), "INVALID_PAYLOAD")
		return
	}
	if payload.SessionID == "" {
		wsh.sendError(ws, "sessionId is required", "INVALID_PAYLOAD")
		return
	}

	sess, ok := wsh.handler.session.GetSession(payload.SessionID)
	if !ok {
		wsh.sendError(ws, "Session not found: "+payload.SessionID, "SESSION_NOT_FOUND")
		return
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	lastProgress := -1.0
	for {
		<-ticker.C

		sess, ok = wsh.handler.session.GetSession(payload.SessionID)
		if !ok {
			wsh.sendError(ws, "Session not found: "+payload.SessionID, "SESSION_NOT_FOUND")
			return
		}
		wsh.handler.session.TouchSession(payload.SessionID)

		if sess.Progress != lastProgress {
			lastProgress = sess.Progress
			wsh.sendMessage(ws, WSMessage{
				Type:      MsgTypeProgress,
				Timestamp: time.Now().UnixMilli(),
				Payload:   mustJSON(progressOf(sess)),
			})
		}

		switch sess.Status {
		case models.SessionStatusComplete:
			wsh.sendMessage(ws, WSMessage{
				Type:      MsgTypeComplete,
				Timestamp: time.Now().UnixMilli(),
				Payload:   mustJSON(progressOf(sess)),
			})
			return
		case models.SessionStatusError:
			wsh.sendError(ws, sess.Error, "REPAIR_ERROR")
			return
		}
	}
}

func progressOf(sess *models.RepairSession) WSProgressResponse {
	return WSProgressResponse{
		SessionID:      sess.ID,
		Status:         string(sess.Status),
		Progress:       sess.Progress,
		NodeCount:      sess.NodeCount,
		LineCount:      sess.LineCount,
		SplitMothers:   sess.SplitMothers,
		SyntheticNodes: sess.SyntheticNodes,
	}
}

// Helper methods

func (wsh *WebSocketHandler) sendMessage(ws *websocket.Conn, msg WSMessage) {
	if err := ws.WriteJSON(msg); err != nil {
		fmt.Printf("[WebSocket] Failed to send message: %v\n", err)
	}
}

func (wsh *WebSocketHandler) sendError(ws *websocket.Conn, message, code string) {
	wsh.sendMessage(ws, WSMessage{
		Type:      MsgTypeError,
		Timestamp: time.Now().UnixMilli(),
		Payload: mustJSON(WSErrorResponse{
			Message: message,
			Code:    code,
		}),
	})
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
