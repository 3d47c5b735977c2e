package core

import (
	"errors"
)

var (
	ErrAlreadyRunning = errors.New("loop already running")
	ErrNotInitialized = errors.New("engine not initialized")
	ErrInvalidConfig  = errors.New("invalid application config")
)
