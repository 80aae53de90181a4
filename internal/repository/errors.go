package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds. Every lookup failure wraps ErrNotFound and every rejected input
// wraps ErrBadValue, so callers can branch with errors.Is on the kind alone.
var (
	ErrNotFound = errors.New("not found")
	ErrBadValue = errors.New("bad value")
)

// Common repository errors
var (
	ErrTaskNotFound        = fmt.Errorf("task %w", ErrNotFound)
	ErrTaskStatusNotFound  = fmt.Errorf("task status %w", ErrNotFound)
	ErrTaskTypeNotFound    = fmt.Errorf("task type %w", ErrNotFound)
	ErrDepartmentNotFound  = fmt.Errorf("department %w", ErrNotFound)
	ErrCommentNotFound     = fmt.Errorf("comment %w", ErrNotFound)
	ErrEntityNotFound      = fmt.Errorf("entity %w", ErrNotFound)
	ErrEntityTypeNotFound  = fmt.Errorf("entity type %w", ErrNotFound)
	ErrPersonNotFound      = fmt.Errorf("person %w", ErrNotFound)
	ErrProjectNotFound     = fmt.Errorf("project %w", ErrNotFound)
	ErrPreviewFileNotFound = fmt.Errorf("preview file %w", ErrNotFound)
	ErrShotNotFound        = fmt.Errorf("shot %w", ErrNotFound)
	ErrSceneNotFound       = fmt.Errorf("scene %w", ErrNotFound)
	ErrSequenceNotFound    = fmt.Errorf("sequence %w", ErrNotFound)
	ErrEpisodeNotFound     = fmt.Errorf("episode %w", ErrNotFound)
	ErrAssetNotFound       = fmt.Errorf("asset %w", ErrNotFound)

	ErrWrongDateFormat  = fmt.Errorf("wrong date format: %w", ErrBadValue)
	ErrNegativeDuration = fmt.Errorf("negative duration: %w", ErrBadValue)
	ErrCommentTarget    = fmt.Errorf("unsupported comment target: %w", ErrBadValue)
)

// ParseID parses a textual id. A malformed id is reported as notFound, the
// same as a missing row.
func ParseID(raw string, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// IsUniqueViolation reports whether err comes from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(err error, kind error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return kind
	}
	return err
}
