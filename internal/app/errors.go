package app

import (
	"errors"

	"fivehundred/internal/rules"
)

var (
	ErrNoSuchSession      = errors.New("no such session")
	ErrSessionFull        = errors.New("session is full")
	ErrUsernameTaken      = errors.New("username already taken in session")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrUnknownPlayer      = errors.New("player not found")
	ErrGameOver           = errors.New("game is over")
	ErrCodeSpaceExhausted = errors.New("could not allocate a free session code")

	// ErrIllegalAction is the rules package sentinel so errors.Is works on engine rejections.
	ErrIllegalAction = rules.ErrIllegalAction
)
