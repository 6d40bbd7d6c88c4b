package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/germain250/quizly/internal/domain"
)

// Gateway is the messaging boundary between the coordinator and connected
// clients: a publish/subscribe channel keyed by room code plus direct
// per-connection addressing.
type Gateway interface {
	Join(code, connID string)
	Leave(code, connID string)
	Drop(code string)
	Send(connID string, ev domain.Event)
	Broadcast(code string, ev domain.Event)
}

// BankRepository loads category question banks (from cache/backing store).
type BankRepository interface {
	GetCategory(ctx context.Context, id string) (domain.Category, error)
}

// RoomService contains the room coordination use cases. Every client action
// serializes on the target room's lock, so handling of each inbound event
// is atomic per room; rooms share no mutable state.
type RoomService struct {
	registry *Registry
	bank     BankRepository
	gateway  Gateway
	settings Settings
	logger   *slog.Logger
}

func NewRoomService(registry *Registry, bank BankRepository, gateway Gateway, settings Settings, logger *slog.Logger) *RoomService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomService{
		registry: registry,
		bank:     bank,
		gateway:  gateway,
		settings: settings,
		logger:   logger,
	}
}

// RoomExists reports whether a room with the given code is live.
func (s *RoomService) RoomExists(code string) bool {
	return s.registry.Contains(code)
}

// CreateRoom opens a new room with the creator as host and sole, ready
// player. Zero/empty settings fall back to the configured defaults.
func (s *RoomService) CreateRoom(connID, username, category string, questionCount int) {
	if category == "" {
		category = s.settings.DefaultCategory
	}
	if questionCount <= 0 {
		questionCount = s.settings.DefaultQuestionCount
	}

	room, err := s.registry.create(func(code string) *Room {
		return &Room{
			Code:          code,
			HostID:        connID,
			Players:       []*Player{{ConnID: connID, Username: username, Ready: true}},
			Category:      category,
			QuestionCount: questionCount,
		}
	})
	if err != nil {
		s.logger.Error("create room failed", "err", err)
		s.sendError(connID, err.Error())
		return
	}

	s.gateway.Join(room.Code, connID)
	s.gateway.Send(connID, domain.Event{Type: domain.EventRoomCreated, Payload: domain.RoomCreatedPayload{Code: room.Code}})
	s.broadcastRoster(room)
	s.systemNotice(room.Code, fmt.Sprintf("%s created the room", username))
	s.logger.Info("room created", "room", room.Code, "host", username)
}

// JoinRoom adds a player to an open room. Failures are reported to the
// joining connection only.
func (s *RoomService) JoinRoom(connID, code, username string) {
	room, ok := s.registry.get(code)
	if !ok {
		s.sendError(connID, domain.ErrRoomNotFound.Error())
		return
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		s.sendError(connID, domain.ErrRoomNotFound.Error())
		return
	}
	if room.Locked || room.Game.Started {
		room.mu.Unlock()
		s.sendError(connID, domain.ErrRoomLocked.Error())
		return
	}
	if room.nameInUseLocked(username) {
		room.mu.Unlock()
		s.sendError(connID, domain.ErrNameTaken.Error())
		return
	}
	room.Players = append(room.Players, &Player{ConnID: connID, Username: username})
	roster := room.rosterLocked()
	room.mu.Unlock()

	s.gateway.Join(code, connID)
	s.gateway.Broadcast(code, domain.Event{Type: domain.EventPlayerList, Payload: roster})
	s.systemNotice(code, fmt.Sprintf("%s joined the room", username))
	s.gateway.Send(connID, domain.Event{Type: domain.EventRoomCreated, Payload: domain.RoomCreatedPayload{Code: code}})
}

// SetReady toggles a player's ready flag. Stale rooms or non-members are
// silently ignored.
func (s *RoomService) SetReady(connID, code string, ready bool) {
	room, ok := s.registry.get(code)
	if !ok {
		return
	}

	room.mu.Lock()
	player := room.playerLocked(connID)
	if room.closed || player == nil {
		room.mu.Unlock()
		return
	}
	player.Ready = ready
	username := player.Username
	roster := room.rosterLocked()
	room.mu.Unlock()

	s.gateway.Broadcast(code, domain.Event{Type: domain.EventPlayerList, Payload: roster})
	state := "not ready"
	if ready {
		state = "ready"
	}
	s.systemNotice(code, fmt.Sprintf("%s is %s", username, state))
}

// Chat relays a chat line from a room member. Non-members are ignored.
func (s *RoomService) Chat(connID, code, text string) {
	username, ok := s.memberName(connID, code)
	if !ok {
		return
	}
	s.gateway.Broadcast(code, domain.Event{Type: domain.EventChatMessage, Payload: domain.ChatPayload{Username: username, Text: text}})
}

// React relays an emoji reaction from a room member.
func (s *RoomService) React(connID, code, emoji string) {
	username, ok := s.memberName(connID, code)
	if !ok {
		return
	}
	s.gateway.Broadcast(code, domain.Event{Type: domain.EventReaction, Payload: domain.ReactionPayload{Emoji: emoji, From: username}})
}

// StartGame moves a room from lobby to in-progress. Only the host may
// start, and only once every player is ready. A bank load failure leaves
// the room in the lobby with an error notice to the host.
func (s *RoomService) StartGame(ctx context.Context, connID, code string) {
	room, ok := s.registry.get(code)
	if !ok {
		return
	}

	room.mu.Lock()
	if room.closed || room.HostID != connID || room.Game.Started {
		room.mu.Unlock()
		return
	}
	if !room.allReadyLocked() {
		room.mu.Unlock()
		s.sendError(connID, domain.ErrNotAllReady.Error())
		return
	}
	category := room.Category
	count := room.QuestionCount
	room.mu.Unlock()

	// Bank loading is the only blocking I/O; the room lock is released
	// while it runs and preconditions are re-checked afterwards.
	bank, err := s.bank.GetCategory(ctx, category)
	if err != nil {
		s.logger.Warn("question bank load failed", "room", code, "category", category, "err", err)
		s.sendError(connID, "could not load questions for "+category)
		return
	}
	questions := drawQuestions(bank.Questions, count)

	room.mu.Lock()
	if room.closed || room.Game.Started {
		room.mu.Unlock()
		return
	}
	room.Game.Started = true
	room.Locked = true
	room.Game.Questions = questions
	room.Game.Index = 0
	room.Game.Current = nil
	room.Game.Tallies = make(map[string]*domain.Tally)
	gameCtx, cancel := context.WithCancel(context.Background())
	room.cancel = cancel
	room.mu.Unlock()

	s.gateway.Broadcast(code, domain.Event{Type: domain.EventGameStarted, Payload: struct{}{}})
	s.logger.Info("game started", "room", code, "category", category, "questions", len(questions))
	go s.runGame(gameCtx, room)
}

// SubmitAnswer scores a submission against the currently active question.
// Anything out of sync (no room, no active question, non-member, stale
// question id, repeat submission) is silently ignored.
func (s *RoomService) SubmitAnswer(connID, code, questionID, answer string) {
	room, ok := s.registry.get(code)
	if !ok {
		return
	}

	room.mu.Lock()
	current := room.Game.Current
	if room.closed || current == nil {
		room.mu.Unlock()
		return
	}
	player := room.playerLocked(connID)
	if player == nil || current.question.ID != questionID || room.Game.answered[connID] {
		room.mu.Unlock()
		return
	}
	room.Game.answered[connID] = true

	correct := answer == current.question.Answer
	award := 0
	if correct {
		award = scoreAward(s.settings.QuestionSeconds, current.remaining)
	}
	player.Score += award

	tally, ok := room.Game.Tallies[connID]
	if !ok {
		tally = &domain.Tally{}
		room.Game.Tallies[connID] = tally
	}
	if correct {
		tally.Correct++
	} else {
		tally.Incorrect++
	}
	board := room.scoreboardLocked()
	room.mu.Unlock()

	s.gateway.Broadcast(code, domain.Event{Type: domain.EventScoreboardUpdate, Payload: board})
}

// Disconnect removes the connection's player from whichever room holds it.
// Host loss tears the whole room down; remaining members get a terminal
// error notice.
func (s *RoomService) Disconnect(connID string) {
	room, ok := s.registry.findByConn(connID)
	if !ok {
		return
	}

	room.mu.Lock()
	player, ok := room.removeLocked(connID)
	if room.closed || !ok {
		room.mu.Unlock()
		return
	}
	code := room.Code
	isHost := room.HostID == connID
	roster := room.rosterLocked()
	room.mu.Unlock()

	s.gateway.Leave(code, connID)
	s.gateway.Broadcast(code, domain.Event{Type: domain.EventPlayerList, Payload: roster})
	s.systemNotice(code, fmt.Sprintf("%s left the room", player.Username))

	if isHost {
		s.gateway.Broadcast(code, domain.Event{Type: domain.EventError, Payload: domain.ErrorPayload{Message: "Host left, room closed"}})
		s.destroyRoom(room)
		s.logger.Info("host left, room closed", "room", code)
	}
}

// destroyRoom marks the room closed, cancels its progression goroutine,
// and releases the code and gateway subscriptions. Idempotent.
func (s *RoomService) destroyRoom(room *Room) {
	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return
	}
	room.closed = true
	if room.cancel != nil {
		room.cancel()
	}
	code := room.Code
	room.mu.Unlock()

	s.registry.remove(code)
	s.gateway.Drop(code)
}

func (s *RoomService) broadcastRoster(room *Room) {
	room.mu.Lock()
	code := room.Code
	roster := room.rosterLocked()
	room.mu.Unlock()
	s.gateway.Broadcast(code, domain.Event{Type: domain.EventPlayerList, Payload: roster})
}

func (s *RoomService) memberName(connID, code string) (string, bool) {
	room, ok := s.registry.get(code)
	if !ok {
		return "", false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	player := room.playerLocked(connID)
	if room.closed || player == nil {
		return "", false
	}
	return player.Username, true
}

func (s *RoomService) systemNotice(code, text string) {
	s.gateway.Broadcast(code, domain.Event{Type: domain.EventChatMessage, Payload: domain.ChatPayload{System: true, Text: text}})
}

func (s *RoomService) sendError(connID, message string) {
	s.gateway.Send(connID, domain.Event{Type: domain.EventError, Payload: domain.ErrorPayload{Message: message}})
}
