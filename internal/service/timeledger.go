package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"prodtrack/internal/model"
	"prodtrack/internal/repository"
)

// DateLayout is the accepted format of time entry dates.
const DateLayout = "2006-01-02"

// TimeMode says how a recorded duration combines with an existing entry.
type TimeMode int

const (
	// Replace overwrites the stored duration.
	Replace TimeMode = iota
	// Accumulate adds to the stored duration.
	Accumulate
)

// TimeLedger records time spent per task, person and day.
type TimeLedger struct {
	entries *repository.TimeSpentRepository
	tasks   *repository.TaskRepository
	persons *repository.PersonRepository
}

func NewTimeLedger(entries *repository.TimeSpentRepository, tasks *repository.TaskRepository, persons *repository.PersonRepository) *TimeLedger {
	return &TimeLedger{entries: entries, tasks: tasks, persons: persons}
}

// ParseDate reads a YYYY-MM-DD date, failing with ErrWrongDateFormat.
func ParseDate(raw string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return datatypes.Date{}, repository.ErrWrongDateFormat
	}
	return datatypes.Date(t), nil
}

// Record stores duration for the person on the task at date.
func (l *TimeLedger) Record(ctx context.Context, taskID, personID, date string, duration float64, mode TimeMode) (*model.TimeSpent, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	if duration < 0 {
		return nil, repository.ErrNegativeDuration
	}
	tid, err := repository.ParseID(taskID, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	pid, err := repository.ParseID(personID, repository.ErrPersonNotFound)
	if err != nil {
		return nil, err
	}
	if _, err := l.tasks.GetByID(ctx, tid); err != nil {
		return nil, err
	}
	if _, err := l.persons.GetByID(ctx, pid); err != nil {
		return nil, err
	}
	return l.entries.Upsert(ctx, tid, pid, day, duration, mode == Accumulate)
}

// Totals returns every entry of the task keyed by person, plus their sum.
func (l *TimeLedger) Totals(ctx context.Context, taskID string) (*model.TimeSpentTotals, error) {
	tid, err := repository.ParseID(taskID, repository.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	entries, err := l.entries.ListForTask(ctx, tid)
	if err != nil {
		return nil, err
	}
	totals := &model.TimeSpentTotals{Entries: make(map[uuid.UUID]model.TimeSpent, len(entries))}
	for _, e := range entries {
		totals.Entries[e.PersonID] = e
		totals.Total += e.Duration
	}
	return totals, nil
}
