package interview

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	interviewService "github.com/prepview/backend/internal/service/interview"
)

// WebSocketHandler carries interview turns over a persistent connection so
// the realtime voice UI avoids per-turn HTTP overhead. Utterances come in as
// JSON frames, turn results go out the same way.
type WebSocketHandler struct {
	orchestrator *interviewService.Orchestrator
	upgrader     websocket.Upgrader
}

// NewWebSocketHandler creates the websocket turn transport.
func NewWebSocketHandler(orchestrator *interviewService.Orchestrator) *WebSocketHandler {
	return &WebSocketHandler{
		orchestrator: orchestrator,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts the websocket endpoint.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundTurn struct {
	Message string `json:"message"`
}

type outboundFrame struct {
	Kind        string  `json:"kind"`
	Text        string  `json:"text,omitempty"`
	Question    string  `json:"question,omitempty"`
	Explanation *string `json:"explanation,omitempty"`
	Code        string  `json:"code,omitempty"`
	Error       string  `json:"error,omitempty"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connection opened for session=%s", sessionID)

	for {
		var inbound inboundTurn
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error for session=%s: %v", sessionID, err)
			}
			return
		}

		result, err := h.orchestrator.ProcessTurn(r.Context(), sessionID, userID, inbound.Message)
		if err != nil {
			frame := outboundFrame{Kind: "error", Code: errorCode(err), Error: err.Error()}
			if writeErr := conn.WriteJSON(frame); writeErr != nil {
				log.Printf("[ws] write error for session=%s: %v", sessionID, writeErr)
				return
			}
			continue
		}

		frame := outboundFrame{
			Kind:        string(result.Kind),
			Text:        result.Text,
			Question:    result.Question,
			Explanation: result.Explanation,
		}
		if err := conn.WriteJSON(frame); err != nil {
			log.Printf("[ws] write error for session=%s: %v", sessionID, err)
			return
		}

		if result.Kind == interviewService.KindClosing {
			log.Printf("[ws] interview closed, ending connection for session=%s", sessionID)
			return
		}
	}
}
