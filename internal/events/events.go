// Package events defines the task lifecycle notifications and the sinks
// that deliver them.
package events

import (
	"prodtrack/internal/model"
)

// Event names
const (
	TaskStart    = "task:start"
	TaskToReview = "task:to-review"
	TaskAssign   = "task:assign"
	TaskUnassign = "task:unassign"
)

// Sink receives lifecycle events. Publish is called synchronously, once per
// qualifying mutation; delivery problems are the sink's own business.
type Sink interface {
	Publish(name string, payload any)
}

// StatusChange is the payload of task:start.
type StatusChange struct {
	TaskBefore model.TaskSnapshot `json:"task_before"`
	TaskAfter  model.TaskSnapshot `json:"task_after"`
}

// ReviewRequest is the payload of task:to-review.
type ReviewRequest struct {
	TaskBefore model.TaskSnapshot   `json:"task_before"`
	TaskAfter  model.ReviewSnapshot `json:"task_after"`
}

// Assignment is the payload of task:assign and task:unassign.
type Assignment struct {
	Task   model.TaskSnapshot `json:"task"`
	Person model.Person       `json:"person"`
}

// Discard drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(string, any) {}

// Fanout publishes each event to every sink in order.
type Fanout []Sink

func (f Fanout) Publish(name string, payload any) {
	for _, s := range f {
		s.Publish(name, payload)
	}
}
