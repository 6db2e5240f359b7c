package assessment

import "errors"

var (
	ErrNotStarted      = errors.New("assessment not started")
	ErrAlreadyStarted  = errors.New("assessment already in progress")
	ErrCompleted       = errors.New("assessment already completed")
	ErrNotCompleted    = errors.New("assessment not completed")
	ErrUnknownStream   = errors.New("unknown stream")
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownOption   = errors.New("unknown option")
	ErrInvalidName     = errors.New("invalid name")
)
