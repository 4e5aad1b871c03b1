package progress

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

var (
	ErrTaskNotFound = errors.New("task not found")

	// ErrTerminal is returned for updates to a COMPLETED or FAILED task.
	ErrTerminal = domain.ErrTaskTerminal
)

// Store persists task snapshots. Update runs fn against the current
// snapshot and saves the result atomically; when fn returns an error
// nothing is written.
type Store interface {
	Create(ctx context.Context, task *domain.ProgressTask) error
	Get(ctx context.Context, id string) (*domain.ProgressTask, error)
	Update(ctx context.Context, id string, fn func(*domain.ProgressTask) error) (*domain.ProgressTask, error)
	ListByUser(ctx context.Context, userID, taskType string) ([]*domain.ProgressTask, error)
	DeleteExpired(ctx context.Context, now time.Time, expiry time.Duration) (int, error)
}
