package app

import (
	"context"
	"time"

	"github.com/germain250/quizly/internal/domain"
)

// runGame drives a room's question progression: activate, count down,
// pause, advance, until the question list is exhausted. It owns the room's
// only timer and stops as soon as the room context is cancelled. Every
// iteration re-checks room liveness under the lock so a tick can never act
// on a destroyed room.
func (s *RoomService) runGame(ctx context.Context, room *Room) {
	for {
		room.mu.Lock()
		if room.closed {
			room.mu.Unlock()
			return
		}
		if room.Game.Index >= len(room.Game.Questions) {
			room.mu.Unlock()
			s.endGame(room)
			return
		}

		question := room.Game.Questions[room.Game.Index]
		room.Game.Current = &activeQuestion{
			question:  question,
			options:   shuffledOptions(question),
			remaining: s.settings.QuestionSeconds,
		}
		room.Game.answered = make(map[string]bool)
		payload := domain.QuestionPayload{
			Category: room.Category,
			Index:    room.Game.Index,
			Total:    len(room.Game.Questions),
			Question: domain.QuestionView{
				ID:      question.ID,
				Prompt:  question.Prompt,
				Options: room.Game.Current.options,
			},
		}
		code := room.Code
		room.mu.Unlock()

		s.gateway.Broadcast(code, domain.Event{Type: domain.EventQuestionUpdate, Payload: payload})

		if !s.countdown(ctx, room) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.settings.Intermission):
		}
	}
}

// countdown ticks the active question to zero, broadcasting each new value.
// It returns false when the room was destroyed or the context cancelled
// mid-count, and true once the countdown completed and the index advanced.
func (s *RoomService) countdown(ctx context.Context, room *Room) bool {
	ticker := time.NewTicker(s.settings.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}

		room.mu.Lock()
		if room.closed || room.Game.Current == nil {
			room.mu.Unlock()
			return false
		}
		room.Game.Current.remaining--
		remaining := room.Game.Current.remaining
		code := room.Code
		if remaining <= 0 {
			// Countdown over: clear the question so late answers are
			// treated as stale, and advance to the next index.
			room.Game.Current = nil
			room.Game.Index++
		}
		room.mu.Unlock()

		s.gateway.Broadcast(code, domain.Event{Type: domain.EventTimerUpdate, Payload: remaining})
		if remaining <= 0 {
			return true
		}
	}
}

// endGame broadcasts the final scores and destroys the room; there is no
// post-game lobby.
func (s *RoomService) endGame(room *Room) {
	room.mu.Lock()
	code := room.Code
	scores := room.finalScoresLocked()
	room.mu.Unlock()

	s.gateway.Broadcast(code, domain.Event{Type: domain.EventGameEnded, Payload: domain.GameEndedPayload{Scores: scores}})
	s.logger.Info("game ended", "room", code, "players", len(scores))
	s.destroyRoom(room)
}
