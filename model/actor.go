package model

// Actor identifies the authenticated user performing a service call.
// Passed explicitly instead of living in ambient session state so the
// services stay testable without any HTTP plumbing.
type Actor struct {
	ID       int64
	Username string
}
