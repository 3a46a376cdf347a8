// Package queue defines task event payloads and publishes them to the
// message broker.
package queue

import "time"

// Event types published after a task mutation commits.
const (
	TaskCreated   = "task.created"
	TaskUpdated   = "task.updated"
	TaskCompleted = "task.completed"
	TaskDeleted   = "task.deleted"
)

// TaskEvent describes a committed change to a task.  It carries ids and the
// resulting status only; consumers that need more read it from the API.
type TaskEvent struct {
	Type       string    `json:"type"`
	TaskID     uint64    `json:"task_id"`
	UserID     uint64    `json:"user_id"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
