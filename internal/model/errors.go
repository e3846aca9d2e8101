package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNotInRoom          = errors.New("player is not in room")
	ErrNotHost            = errors.New("player is not the host")

	// Round errors
	ErrGameNotActive      = errors.New("no round is active")
	ErrInvalidGuess       = errors.New("guess must contain only letters")
	ErrContentUnavailable = errors.New("round content unavailable")

	// Persistence errors
	ErrPersistenceFailure = errors.New("failed to persist match stats")
)
