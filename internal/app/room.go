package app

import (
	"context"
	"sync"

	"github.com/germain250/quizly/internal/domain"
)

// Player is a participant's in-room identity, keyed by its gateway
// connection id. Usernames are unique within a room, case-sensitive.
type Player struct {
	ConnID   string
	Username string
	Ready    bool
	Score    int
}

// activeQuestion is the currently presented question together with its
// per-presentation option shuffle and the remaining countdown units.
type activeQuestion struct {
	question  domain.Question
	options   []string
	remaining int
}

// GameState holds the in-progress data of a room's quiz. Current is non-nil
// only while a question countdown is running.
type GameState struct {
	Started   bool
	Questions []domain.Question
	Index     int
	Current   *activeQuestion
	Tallies   map[string]*domain.Tally

	// answered tracks which connections already submitted for the current
	// question; only the first submission per player counts. Reset on every
	// question activation.
	answered map[string]bool
}

// Room is an isolated quiz session. The mutex guards the roster and game
// state; the registry mutex is never acquired while a room lock is held.
type Room struct {
	mu sync.Mutex

	Code          string
	HostID        string
	Players       []*Player
	Category      string
	QuestionCount int
	Locked        bool
	Game          GameState

	closed bool
	cancel context.CancelFunc
}

func (r *Room) playerLocked(connID string) *Player {
	for _, p := range r.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) nameInUseLocked(username string) bool {
	for _, p := range r.Players {
		if p.Username == username {
			return true
		}
	}
	return false
}

func (r *Room) allReadyLocked() bool {
	for _, p := range r.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// removeLocked drops the player for connID, preserving roster order.
func (r *Room) removeLocked(connID string) (*Player, bool) {
	for i, p := range r.Players {
		if p.ConnID == connID {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

func (r *Room) rosterLocked() []domain.PlayerInfo {
	roster := make([]domain.PlayerInfo, 0, len(r.Players))
	for _, p := range r.Players {
		roster = append(roster, domain.PlayerInfo{
			Username: p.Username,
			Ready:    p.Ready,
			Score:    p.Score,
		})
	}
	return roster
}

func (r *Room) scoreboardLocked() []domain.ScoreEntry {
	board := make([]domain.ScoreEntry, 0, len(r.Players))
	for _, p := range r.Players {
		board = append(board, domain.ScoreEntry{Username: p.Username, Score: p.Score})
	}
	return board
}

func (r *Room) finalScoresLocked() []domain.FinalScore {
	scores := make([]domain.FinalScore, 0, len(r.Players))
	for _, p := range r.Players {
		entry := domain.FinalScore{Username: p.Username, Score: p.Score}
		if tally, ok := r.Game.Tallies[p.ConnID]; ok {
			entry.Correct = tally.Correct
			entry.Incorrect = tally.Incorrect
		}
		scores = append(scores, entry)
	}
	return scores
}

func (r *Room) hasConn(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerLocked(connID) != nil
}
