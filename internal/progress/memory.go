package progress

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// MemoryStore keeps tasks in a map owned by the store value. Snapshots
// handed out are copies.
type MemoryStore struct {
	mu    sync.Mutex
	tasks map[string]*domain.ProgressTask
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*domain.ProgressTask)}
}

func (s *MemoryStore) Create(_ context.Context, task *domain.ProgressTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; ok {
		return fmt.Errorf("task %s already exists", task.ID)
	}
	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.ProgressTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
	}
	return t.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(*domain.ProgressTask) error) (*domain.ProgressTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
	}
	next := t.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.tasks[id] = next
	return next.Clone(), nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID, taskType string) ([]*domain.ProgressTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ProgressTask
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if taskType != "" && t.TaskType != taskType {
			continue
		}
		out = append(out, t.Clone())
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context, now time.Time, expiry time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, t := range s.tasks {
		if t.Expired(now, expiry) {
			delete(s.tasks, id)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored tasks.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func sortNewestFirst(tasks []*domain.ProgressTask) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
