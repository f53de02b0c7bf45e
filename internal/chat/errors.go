package chat

// InferenceError wraps any provider-side failure (network, auth, quota,
// malformed response). It is produced at the gateway boundary and never
// propagated as a turn failure: the orchestrator renders its text as the
// assistant reply.
type InferenceError struct {
	Provider string
	Err      error
}

// Error returns the human-readable description that ends up on screen.
func (e *InferenceError) Error() string { return e.Err.Error() }

func (e *InferenceError) Unwrap() error { return e.Err }
