package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/germain250/quizly/internal/app"
	"github.com/germain250/quizly/internal/domain"
	"github.com/germain250/quizly/internal/infra/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bank := memory.NewBankRepository(memory.NewStaticBankLoader(sampleBank()), time.Minute)
	settings := app.Settings{
		QuestionSeconds:      2,
		Intermission:         10 * time.Millisecond,
		Tick:                 100 * time.Millisecond,
		DefaultCategory:      "general-knowledge",
		DefaultQuestionCount: 10,
	}
	registry := app.NewRegistry()
	hub := NewHub(logger)
	service := app.NewRoomService(registry, bank, hub, settings, logger)
	wsHandler := NewWSHandler(service, hub, logger)

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/ws", wsHandler.ServeWS)
	router.GET("/rooms/:code/qr", NewQRHandler(service, "http://quiz.local"))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readUntil drains events on the connection until one of the wanted type
// arrives, returning its payload. Payloads are objects, arrays, or bare
// numbers depending on the event type.
func readUntil(t *testing.T, conn *websocket.Conn, want string) any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg struct {
			Type    string `json:"type"`
			Payload any    `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read while waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg.Payload
		}
	}
}

// readObject is readUntil for events whose payload is a JSON object.
func readObject(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	payload, ok := readUntil(t, conn, want).(map[string]any)
	if !ok {
		t.Fatalf("expected object payload for %s", want)
	}
	return payload
}

func TestWebSocketGameFlow(t *testing.T) {
	server := newTestServer(t)

	alice := dial(t, server)
	send(t, alice, "createRoom", map[string]any{"username": "Alice", "questionCount": 1})
	code, _ := readObject(t, alice, "roomCreated")["code"].(string)
	if len(code) != 6 {
		t.Fatalf("expected 6-char room code, got %q", code)
	}

	// The join QR is served while the room is live, and only then.
	resp, err := http.Get(server.URL + "/rooms/" + code + "/qr")
	if err != nil {
		t.Fatalf("get qr: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Fatalf("expected png qr code, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	resp, err = http.Get(server.URL + "/rooms/ZZZZZZ/qr")
	if err != nil {
		t.Fatalf("get unknown qr: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown room, got %d", resp.StatusCode)
	}

	bob := dial(t, server)
	send(t, bob, "joinRoom", map[string]any{"code": code, "username": "Bob"})
	readUntil(t, bob, "roomCreated")

	send(t, bob, "chatMessage", map[string]any{"roomCode": code, "text": "hi"})
	chat := readObject(t, alice, "chatMessage")
	for chat["username"] != "Bob" {
		chat = readObject(t, alice, "chatMessage")
	}
	if chat["text"] != "hi" {
		t.Fatalf("expected Bob's chat line, got %+v", chat)
	}

	send(t, bob, "readyStatus", map[string]any{"roomCode": code, "ready": true})
	notice := readObject(t, alice, "chatMessage")
	for notice["text"] != "Bob is ready" {
		notice = readObject(t, alice, "chatMessage")
	}

	send(t, alice, "startGame", map[string]any{"roomCode": code})
	readUntil(t, alice, "gameStarted")

	question := readObject(t, alice, "questionUpdate")
	q, _ := question["question"].(map[string]any)
	if q == nil || q["prompt"] != "What is 2 + 2?" {
		t.Fatalf("unexpected question payload: %+v", question)
	}
	if _, leaked := q["answer"]; leaked {
		t.Fatalf("correct answer must not be broadcast: %+v", q)
	}

	send(t, alice, "submitAnswer", map[string]any{
		"roomCode":   code,
		"questionId": q["id"],
		"answer":     "4",
	})
	board, _ := readUntil(t, alice, "scoreboardUpdate").([]any)
	if len(board) != 2 {
		t.Fatalf("expected scoreboard with both players, got %+v", board)
	}

	ended := readObject(t, bob, "gameEnded")
	scores, _ := ended["scores"].([]any)
	if len(scores) != 2 {
		t.Fatalf("expected both players in final scores, got %+v", ended)
	}
	byName := make(map[string]float64, 2)
	for _, raw := range scores {
		entry := raw.(map[string]any)
		byName[entry["username"].(string)] = entry["score"].(float64)
	}
	if byName["Alice"] != 100 || byName["Bob"] != 0 {
		t.Fatalf("expected Alice 100 / Bob 0, got %+v", byName)
	}
}

func TestWebSocketRejectsUnknownType(t *testing.T) {
	server := newTestServer(t)

	conn := dial(t, server)
	if err := conn.WriteJSON(map[string]any{"type": "bogus"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	payload := readObject(t, conn, "error")
	if payload["message"] != "unsupported message type" {
		t.Fatalf("unexpected error payload: %+v", payload)
	}
}

func sampleBank() map[string]domain.Category {
	return map[string]domain.Category{
		"general-knowledge": {
			ID: "general-knowledge",
			Questions: []domain.Question{
				{
					ID:      "q1",
					Prompt:  "What is 2 + 2?",
					Options: []string{"3", "4", "5"},
					Answer:  "4",
				},
			},
		},
	}
}
