package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/alexanderramin/studyplan/internal/domain"
)

const maxWatchRetries = 5

// RedisOptions configures key layout and update fan-out.
type RedisOptions struct {
	Prefix  string        // key prefix, default "studyplan"
	Channel string        // pub/sub channel for snapshots, empty disables publishing
	TTL     time.Duration // snapshot lifetime, refreshed on every write
}

// RedisStore keeps each task as a JSON snapshot so several API processes
// can serve the same task, and publishes every write for pollers.
type RedisStore struct {
	rdb  *goredis.Client
	opts RedisOptions
}

// DialRedis connects and pings the server.
func DialRedis(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewRedisStore(rdb *goredis.Client, opts RedisOptions) *RedisStore {
	if opts.Prefix == "" {
		opts.Prefix = "studyplan"
	}
	if opts.TTL <= 0 {
		opts.TTL = 2 * DefaultExpiry
	}
	return &RedisStore{rdb: rdb, opts: opts}
}

func (s *RedisStore) taskKey(id string) string { return s.opts.Prefix + ":task:" + id }
func (s *RedisStore) userKey(id string) string { return s.opts.Prefix + ":user_tasks:" + id }
func (s *RedisStore) allKey() string           { return s.opts.Prefix + ":tasks" }

func (s *RedisStore) Create(ctx context.Context, task *domain.ProgressTask) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encoding task: %w", err)
	}
	ok, err := s.rdb.SetNX(ctx, s.taskKey(task.ID), raw, s.opts.TTL).Result()
	if err != nil {
		return fmt.Errorf("creating task %s: %w", task.ID, err)
	}
	if !ok {
		return fmt.Errorf("task %s already exists", task.ID)
	}
	pipe := s.rdb.TxPipeline()
	pipe.SAdd(ctx, s.userKey(task.UserID), task.ID)
	pipe.SAdd(ctx, s.allKey(), task.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("indexing task %s: %w", task.ID, err)
	}
	s.publish(ctx, raw)
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.ProgressTask, error) {
	raw, err := s.rdb.Get(ctx, s.taskKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return decodeTask(raw)
}

// Update uses WATCH so concurrent writers never interleave a
// read-modify-write of the same snapshot.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*domain.ProgressTask) error) (*domain.ProgressTask, error) {
	key := s.taskKey(id)
	var updated *domain.ProgressTask
	var raw []byte

	txf := func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, goredis.Nil) {
			return fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
		}
		if err != nil {
			return err
		}
		task, err := decodeTask(cur)
		if err != nil {
			return err
		}
		if err := fn(task); err != nil {
			return err
		}
		raw, err = json.Marshal(task)
		if err != nil {
			return fmt.Errorf("encoding task: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, raw, s.opts.TTL)
			return nil
		})
		updated = task
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.publish(ctx, raw)
		return updated, nil
	}
	return nil, fmt.Errorf("updating task %s: too much contention", id)
}

func (s *RedisStore) ListByUser(ctx context.Context, userID, taskType string) ([]*domain.ProgressTask, error) {
	ids, err := s.rdb.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing tasks for %s: %w", userID, err)
	}
	tasks, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	var out []*domain.ProgressTask
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if taskType != "" && t.TaskType != taskType {
			continue
		}
		out = append(out, t)
	}
	sortNewestFirst(out)
	return out, nil
}

// DeleteExpired removes expired snapshots and drops index entries whose
// snapshot already lapsed through its TTL.
func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time, expiry time.Duration) (int, error) {
	ids, err := s.rdb.SMembers(ctx, s.allKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("listing tasks: %w", err)
	}
	tasks, err := s.load(ctx, ids)
	if err != nil {
		return 0, err
	}

	n := 0
	pipe := s.rdb.TxPipeline()
	for i, t := range tasks {
		switch {
		case t == nil:
			pipe.SRem(ctx, s.allKey(), ids[i])
		case t.Expired(now, expiry):
			pipe.Del(ctx, s.taskKey(t.ID))
			pipe.SRem(ctx, s.allKey(), t.ID)
			pipe.SRem(ctx, s.userKey(t.UserID), t.ID)
			n++
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("deleting expired tasks: %w", err)
	}
	return n, nil
}

func (s *RedisStore) load(ctx context.Context, ids []string) ([]*domain.ProgressTask, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.taskKey(id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	out := make([]*domain.ProgressTask, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		t, err := decodeTask([]byte(str))
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (s *RedisStore) publish(ctx context.Context, raw []byte) {
	if s.opts.Channel == "" || raw == nil {
		return
	}
	// Publishing is best effort; the snapshot is already stored.
	_ = s.rdb.Publish(ctx, s.opts.Channel, raw).Err()
}

// Subscribe delivers every published snapshot until ctx ends.
func (s *RedisStore) Subscribe(ctx context.Context, onTask func(*domain.ProgressTask)) error {
	if s.opts.Channel == "" {
		return errors.New("redis store has no channel configured")
	}
	sub := s.rdb.Subscribe(ctx, s.opts.Channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", s.opts.Channel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			t, err := decodeTask([]byte(msg.Payload))
			if err != nil {
				continue
			}
			onTask(t)
		}
	}
}

func decodeTask(raw []byte) (*domain.ProgressTask, error) {
	var t domain.ProgressTask
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decoding task: %w", err)
	}
	if t.Steps == nil {
		t.Steps = []string{}
	}
	return &t, nil
}
