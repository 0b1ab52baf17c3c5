package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/giygas/prescription-assistant/assistant"
	"github.com/giygas/prescription-assistant/data"
	"github.com/giygas/prescription-assistant/logging"
	"github.com/giygas/prescription-assistant/metrics"
	"github.com/gorilla/websocket"
)

const (
	chatIdleTimeout  = 10 * time.Minute
	chatWriteTimeout = 10 * time.Second
	chatMaxFrameSize = 64 * 1024

	// chatFrameCost is charged per question, the same as POST .../ask
	chatFrameCost = 10
)

// chatMessage is one inbound chat frame
type chatMessage struct {
	Message string `json:"message"`
}

// chatError is sent instead of an answer when a frame cannot be answered
type chatError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Chat upgrades to a websocket and answers every {"message": ...} frame with
// the same JSON as Ask. The prescription is read again for every frame so
// edits made between questions are picked up.
func (h *HTTPHandlerImpl) Chat(w http.ResponseWriter, r *http.Request) {
	id, ok := h.prescriptionID(w, r)
	if !ok {
		return
	}

	// Fail before the upgrade so the client gets a normal 404
	if _, err := h.store.Get(id); err != nil {
		h.respondWithStoreError(w, id, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		logging.Warn("WebSocket upgrade failed", "id", id, "error", err)
		return
	}
	defer conn.Close()

	metrics.ChatConnections.Inc()
	defer metrics.ChatConnections.Dec()

	conn.SetReadLimit(chatMaxFrameSize)
	logging.Info("Chat session opened", "id", id, "remote_addr", r.RemoteAddr)

	clientIP := r.RemoteAddr
	if host, _, err := net.SplitHostPort(clientIP); err == nil {
		clientIP = host
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(chatIdleTimeout))

		// Only transport errors end the session, a bad frame gets an error frame
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Warn("Chat read error", "id", id, "error", err)
			}
			break
		}

		var msg chatMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logging.Debug("Chat frame is not JSON", "id", id, "error", err)
			if !h.writeFrame(conn, id, chatError{Error: "invalid_message", Message: `Frames must be JSON objects like {"message": "..."}`}) {
				break
			}
			continue
		}

		// Every frame costs as much as a single ask, the upgrade only pays for the connection
		if h.chatLimiter != nil && !h.chatLimiter.Allow(clientIP, chatFrameCost) {
			logging.Warn("Chat rate limit exceeded", "id", id, "client_ip", clientIP)
			if !h.writeFrame(conn, id, chatError{Error: "rate_limited", Message: "Rate limit exceeded. Please try again later."}) {
				break
			}
			continue
		}

		if !h.answerFrame(conn, id, msg.Message) {
			break
		}
	}

	logging.Info("Chat session closed", "id", id)
}

// answerFrame writes the reply to one message. It returns false when the
// session must end.
func (h *HTTPHandlerImpl) answerFrame(conn *websocket.Conn, id, message string) bool {
	if err := h.validator.ValidateMessage(message); err != nil {
		return h.writeFrame(conn, id, chatError{Error: "invalid_message", Message: err.Error()})
	}

	p, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, data.ErrPrescriptionNotFound) {
			h.writeFrame(conn, id, chatError{Error: "not_found", Message: "Prescription not found"})
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "prescription not found"),
				time.Now().Add(chatWriteTimeout))
			return false
		}
		logging.Error("Prescription store failure", "id", id, "error", err)
		return false
	}

	answer, err := h.resolver.Resolve(message, p.Medicines)
	if err != nil {
		if errors.Is(err, assistant.ErrInvalidRecord) {
			return h.writeFrame(conn, id, chatError{Error: "invalid_record", Message: err.Error()})
		}
		logging.Error("Failed to resolve question", "id", id, "error", err)
		return false
	}

	return h.writeFrame(conn, id, answer)
}

func (h *HTTPHandlerImpl) writeFrame(conn *websocket.Conn, id string, payload any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(chatWriteTimeout))
	if err := conn.WriteJSON(payload); err != nil {
		logging.Warn("Chat write error", "id", id, "error", err)
		return false
	}
	return true
}
