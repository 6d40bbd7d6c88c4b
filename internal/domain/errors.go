package domain

import "errors"

var (
	// ErrRoomNotFound is returned when no room exists for a given code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomLocked is returned when joining a locked or started room.
	ErrRoomLocked = errors.New("room is locked or game has started")
	// ErrNameTaken is returned when a display name is already in use in the room.
	ErrNameTaken = errors.New("username already taken")
	// ErrNotAllReady rejects a start while any player is not ready.
	ErrNotAllReady = errors.New("not all players are ready")
	// ErrCategoryNotFound indicates the question bank has no such category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCodesExhausted is returned when room code generation keeps colliding.
	ErrCodesExhausted = errors.New("room code space exhausted")
)
