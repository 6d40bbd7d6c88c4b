package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/germain250/quizly/internal/app"
	"github.com/germain250/quizly/internal/domain"
)

// WSHandler upgrades connections and dispatches inbound client actions to
// the room service. Outbound traffic flows through the hub.
type WSHandler struct {
	service  *app.RoomService
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoomService, hub *Hub, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		hub:     hub,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type createRoomPayload struct {
	Username      string `json:"username"`
	Category      string `json:"category,omitempty"`
	QuestionCount int    `json:"questionCount,omitempty"`
}

type joinRoomPayload struct {
	Code     string `json:"code"`
	Username string `json:"username"`
}

type readyStatusPayload struct {
	RoomCode string `json:"roomCode"`
	Ready    bool   `json:"ready"`
}

type chatMessagePayload struct {
	RoomCode string `json:"roomCode"`
	Text     string `json:"text"`
}

type emojiReactionPayload struct {
	RoomCode string `json:"roomCode"`
	Emoji    string `json:"emoji"`
}

type startGamePayload struct {
	RoomCode string `json:"roomCode"`
}

type submitAnswerPayload struct {
	RoomCode   string `json:"roomCode"`
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// ServeWS upgrades the request and pumps inbound messages into the room
// service until the connection drops, which doubles as the disconnect
// signal for the player.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	c := h.hub.register(conn)
	h.logger.Debug("client connected", "conn", c.id)
	defer func() {
		h.service.Disconnect(c.id)
		h.hub.unregister(c.id)
		h.logger.Debug("client disconnected", "conn", c.id)
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		h.dispatch(r, c.id, inbound)
	}
}

func (h *WSHandler) dispatch(r *http.Request, connID string, inbound inboundMessage) {
	switch inbound.Type {
	case "createRoom":
		var p createRoomPayload
		if !h.decode(connID, inbound.Payload, &p) {
			return
		}
		h.service.CreateRoom(connID, p.Username, p.Category, p.QuestionCount)
	case "joinRoom":
		var p joinRoomPayload
		if !h.decode(connID, inbound.Payload, &p) {
			return
		}
		h.service.JoinRoom(connID, p.Code, p.Username)
	case "readyStatus":
		var p readyStatusPayload
		if !h.decode(connID, inbound.Payload, &p) {
			return
		}
		h.service.SetReady(connID, p.RoomCode, p.Ready)
	case "chatMessage":
		var p chatMessagePayload
		if !h.decode(connID, inbound.Payload, &p) {
			return
		}
		h.service.Chat(connID, p.RoomCode, p.Text)
	case "emojiReaction":
		var p emojiReactionPayload
		if !h.decode(connID, inbound.Payload, &p) {
			return
		}
		h.service.React(connID, p.RoomCode, p.Emoji)
	case "startGame":
		var p startGamePayload
		if !h.decode(connID, inbound.Payload, &p) {
			return
		}
		h.service.StartGame(r.Context(), connID, p.RoomCode)
	case "submitAnswer":
		var p submitAnswerPayload
		if !h.decode(connID, inbound.Payload, &p) {
			return
		}
		h.service.SubmitAnswer(connID, p.RoomCode, p.QuestionID, p.Answer)
	default:
		h.hub.Send(connID, domain.Event{Type: domain.EventError, Payload: domain.ErrorPayload{Message: "unsupported message type"}})
	}
}

func (h *WSHandler) decode(connID string, raw json.RawMessage, into any) bool {
	if err := json.Unmarshal(raw, into); err != nil {
		h.hub.Send(connID, domain.Event{Type: domain.EventError, Payload: domain.ErrorPayload{Message: "invalid payload"}})
		return false
	}
	return true
}
