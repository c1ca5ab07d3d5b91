package domain

import "strings"

// Run lifecycle statuses.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

var runStatusCodes = map[string]int{
	RunStatusPending:   0,
	RunStatusRunning:   1,
	RunStatusCompleted: 2,
	RunStatusFailed:    3,
}

// ValidRunStatus reports whether the given label (case-insensitive) is a
// known run status.
func ValidRunStatus(label string) bool {
	_, ok := runStatusCodes[strings.ToLower(label)]
	return ok
}

// RunFinished reports whether a run has reached a terminal status.
func RunFinished(status string) bool {
	return status == RunStatusCompleted || status == RunStatusFailed
}
