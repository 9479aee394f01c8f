package model

// HandlingResult is the outcome of dispatching one webhook event. Failures
// that were handled inside the dispatcher still produce a result; only faults
// outside the dispatcher surface as HTTP errors.
type HandlingResult struct {
	Success bool
}
