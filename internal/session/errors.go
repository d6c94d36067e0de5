package session

import "errors"

var (
	ErrInvalidName   = errors.New("name must be between 1 and 50 characters")
	ErrNameTaken     = errors.New("name already taken")
	ErrPollActive    = errors.New("a poll is already active")
	ErrNoActivePoll  = errors.New("no active poll")
	ErrNotRegistered = errors.New("not registered")
)
