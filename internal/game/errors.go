package game

import "errors"

var (
	ErrWrongPhase     = errors.New("action not allowed in the current phase")
	ErrNotYourTurn    = errors.New("it is not this player's turn")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrInvalidTarget  = errors.New("invalid vote target")
	ErrAlreadyVoted   = errors.New("player has already voted")
	ErrCorruptSession = errors.New("session invariants violated")
	ErrEmptyWordList  = errors.New("word list is empty")
)
