package app

import (
	"math/rand"
	"sync"
	"time"

	"github.com/germain250/quizly/internal/domain"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// maxCodeAttempts bounds the collision retry loop. With 36^6 possible
	// codes and ephemeral rooms this is unreachable in practice.
	maxCodeAttempts = 64
)

// Registry owns every live room, keyed by code. It is constructed
// explicitly and injected into the service so tests get isolated instances.
// The registry mutex guards only the map and the code generator; per-room
// state is guarded by each room's own lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	rnd   *rand.Rand
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// create generates a code unique among live rooms, builds the room under
// that code, and registers it.
func (g *Registry) create(build func(code string) *Room) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := 0; i < maxCodeAttempts; i++ {
		code := g.randomCodeLocked()
		if _, taken := g.rooms[code]; taken {
			continue
		}
		room := build(code)
		g.rooms[code] = room
		return room, nil
	}
	return nil, domain.ErrCodesExhausted
}

func (g *Registry) randomCodeLocked() string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[g.rnd.Intn(len(codeAlphabet))]
	}
	return string(code)
}

func (g *Registry) get(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[code]
	return room, ok
}

func (g *Registry) remove(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, code)
}

// findByConn scans live rooms for the one holding connID. A connection
// belongs to at most one room, so the scan stops at the first match.
func (g *Registry) findByConn(connID string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, room := range g.rooms {
		if room.hasConn(connID) {
			return room, true
		}
	}
	return nil, false
}

// Contains reports whether a room with the given code is live.
func (g *Registry) Contains(code string) bool {
	_, ok := g.get(code)
	return ok
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
