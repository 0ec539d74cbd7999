package domain

import "time"

// ErrorRecord is an unhandled-error report kept by an error journal.
type ErrorRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	InvocationID string    `json:"invocation_id"`
	Page         string    `json:"page"`
	Route        string    `json:"route"`
	Method       string    `json:"method,omitempty"`
	Path         string    `json:"path,omitempty"`
	Error        string    `json:"error"`
	Panic        bool      `json:"panic,omitempty"`
	Stack        string    `json:"stack,omitempty"`
}
