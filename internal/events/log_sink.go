package events

import (
	"github.com/sirupsen/logrus"
)

// LogSink writes every event to a logrus logger.
type LogSink struct {
	Logger *logrus.Logger
}

func (s LogSink) Publish(name string, payload any) {
	fields := logrus.Fields{"event": name}
	switch p := payload.(type) {
	case StatusChange:
		fields["task_id"] = p.TaskAfter.ID
	case ReviewRequest:
		fields["task_id"] = p.TaskAfter.ID
		fields["person_id"] = p.TaskAfter.Person.ID
	case Assignment:
		fields["task_id"] = p.Task.ID
		fields["person_id"] = p.Person.ID
	}
	s.Logger.WithFields(fields).Info("task event emitted")
}
