package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/progress"
)

// SQLiteTaskStore is a progress.Store that survives restarts of a single
// process. Snapshots are stored as JSON documents.
type SQLiteTaskStore struct {
	db  db.DBTX
	uow db.UnitOfWork
}

var _ progress.Store = (*SQLiteTaskStore)(nil)

// NewSQLiteTaskStore reads through conn and runs updates inside uow.
func NewSQLiteTaskStore(conn db.DBTX, uow db.UnitOfWork) *SQLiteTaskStore {
	return &SQLiteTaskStore{db: conn, uow: uow}
}

func (s *SQLiteTaskStore) Create(ctx context.Context, t *domain.ProgressTask) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO progress_tasks (id, user_id, task_type, status, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TaskType, string(t.Status), string(doc),
		t.CreatedAt.UTC().Format(timeLayout), t.UpdatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting task %s: %w", t.ID, err)
	}
	return nil
}

func (s *SQLiteTaskStore) Get(ctx context.Context, id string) (*domain.ProgressTask, error) {
	return getTask(ctx, s.db, id)
}

func (s *SQLiteTaskStore) Update(ctx context.Context, id string, fn func(*domain.ProgressTask) error) (*domain.ProgressTask, error) {
	var updated *domain.ProgressTask
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		t, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		doc, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encoding task: %w", err)
		}
		_, err = tx.ExecContext(ctx, `UPDATE progress_tasks SET status = ?, document = ?, updated_at = ? WHERE id = ?`,
			string(t.Status), string(doc), t.UpdatedAt.UTC().Format(timeLayout), t.ID)
		if err != nil {
			return fmt.Errorf("updating task %s: %w", t.ID, err)
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *SQLiteTaskStore) ListByUser(ctx context.Context, userID, taskType string) ([]*domain.ProgressTask, error) {
	query := `SELECT document FROM progress_tasks WHERE user_id = ?`
	args := []any{userID}
	if taskType != "" {
		query += ` AND task_type = ?`
		args = append(args, taskType)
	}
	query += ` ORDER BY created_at DESC, id`
	return queryTasks(ctx, s.db, query, args...)
}

func (s *SQLiteTaskStore) DeleteExpired(ctx context.Context, now time.Time, expiry time.Duration) (int, error) {
	tasks, err := queryTasks(ctx, s.db, `SELECT document FROM progress_tasks`)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range tasks {
		if !t.Expired(now, expiry) {
			continue
		}
		if _, err := s.db.ExecContext(ctx, `DELETE FROM progress_tasks WHERE id = ?`, t.ID); err != nil {
			return n, fmt.Errorf("deleting task %s: %w", t.ID, err)
		}
		n++
	}
	return n, nil
}

func getTask(ctx context.Context, conn db.DBTX, id string) (*domain.ProgressTask, error) {
	var doc string
	err := conn.QueryRowContext(ctx, `SELECT document FROM progress_tasks WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, progress.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	return decodeTaskDoc(doc)
}

func queryTasks(ctx context.Context, conn db.DBTX, query string, args ...any) ([]*domain.ProgressTask, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var out []*domain.ProgressTask
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t, err := decodeTaskDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func decodeTaskDoc(doc string) (*domain.ProgressTask, error) {
	var t domain.ProgressTask
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, fmt.Errorf("decoding task: %w", err)
	}
	if t.Steps == nil {
		t.Steps = []string{}
	}
	return &t, nil
}
