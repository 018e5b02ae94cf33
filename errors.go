package coordinator

import "errors"

const Namespace = "coordinator"

var (
	ErrInvalidConfig   = errors.New(Namespace + ": invalid configuration")
	ErrAlreadyStarted  = errors.New(Namespace + ": already started")
	ErrShutdown        = errors.New(Namespace + ": coordinator is shut down")
	ErrTaskPanicked    = errors.New(Namespace + ": task execution panicked")
	ErrDrainIncomplete = errors.New(Namespace + ": queue not drained before shutdown deadline")
)
