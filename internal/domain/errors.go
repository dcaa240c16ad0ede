package domain

import "errors"

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current session phase.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrUnknownMode indicates a game mode tag outside the supported set.
	ErrUnknownMode = errors.New("unknown game mode")
	// ErrInvalidQuestion indicates a question record violates the schema invariants.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrEmptyQuestionSet is returned when no usable question survived validation.
	ErrEmptyQuestionSet = errors.New("empty question set")
	// ErrSessionNotFound is returned when a game session is not registered.
	ErrSessionNotFound = errors.New("game session not found")
)
