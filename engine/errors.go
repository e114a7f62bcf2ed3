package engine

import "fmt"

// InvariantError reports a broken ownership invariant inside the engine.
// It is a programming error; executors panic with it.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "engine: invariant violated: " + e.Msg
}

// WorkerError reports a worker goroutine that stopped because its kernel
// panicked.
type WorkerError struct {
	Worker int
	Cause  any
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("engine: worker %d failed: %v", e.Worker, e.Cause)
}
