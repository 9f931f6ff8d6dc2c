package core

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrNotInitialized = errors.New("system used before initialization")
	ErrShuttingDown   = errors.New("engine is shutting down")
)
