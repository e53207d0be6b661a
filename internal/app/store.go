package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/workflow"
	"github.com/redis/go-redis/v9"
)

const (
	submissionLockTTL = 2 * time.Minute
	maxWatchRetries   = 3
)

var ErrWorkflowNotFound = errors.New("no active booking workflow")

// Redis Lua script to release a submission lock only if it is still owned by
// the caller.
var releaseLock = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// WorkflowStore keeps one workflow snapshot per browser session.
type WorkflowStore interface {
	Load(ctx context.Context, sessionToken string) (*workflow.Snapshot, error)
	Save(ctx context.Context, sessionToken string, snap workflow.Snapshot) error
	// SaveIfCurrent stores snap only while the session still holds the same
	// workflow, otherwise it fails with domain.ErrWorkflowClosed.
	SaveIfCurrent(ctx context.Context, sessionToken string, snap workflow.Snapshot) error
	Delete(ctx context.Context, sessionToken string) error
	// Lock claims the right to submit payment for a workflow. It fails with
	// domain.ErrSubmissionInProgress while another submission holds it.
	Lock(ctx context.Context, workflowID string) (func(context.Context) error, error)
	// Locked reports whether a submission currently holds the lock.
	Locked(ctx context.Context, workflowID string) (bool, error)
	Migrate(ctx context.Context, oldToken, newToken string) error
}

type RedisWorkflowStore struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

func NewRedisWorkflowStore(client redis.UniversalClient, ttl time.Duration) *RedisWorkflowStore {
	return &RedisWorkflowStore{
		redis: client,
		ttl:   ttl,
	}
}

func workflowKey(sessionToken string) string {
	return fmt.Sprintf("workflow:%s", sessionToken)
}

func workflowLockKey(workflowID string) string {
	return fmt.Sprintf("workflow_lock:%s", workflowID)
}

func (s *RedisWorkflowStore) Load(ctx context.Context, sessionToken string) (*workflow.Snapshot, error) {
	data, err := s.redis.Get(ctx, workflowKey(sessionToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrWorkflowNotFound
		}
		return nil, err
	}

	var snap workflow.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", workflow.ErrCorruptSnapshot, err)
	}

	return &snap, nil
}

func (s *RedisWorkflowStore) Save(ctx context.Context, sessionToken string, snap workflow.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return s.redis.Set(ctx, workflowKey(sessionToken), data, s.ttl).Err()
}

func (s *RedisWorkflowStore) SaveIfCurrent(ctx context.Context, sessionToken string, snap workflow.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	key := workflowKey(sessionToken)

	txf := func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return domain.ErrWorkflowClosed
			}
			return err
		}

		var current struct {
			ID string `json:"id"`
		}

		if err := json.Unmarshal(stored, &current); err != nil || current.ID != snap.ID {
			return domain.ErrWorkflowClosed
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})

		return err
	}

	for range maxWatchRetries {
		err = s.redis.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}

	return domain.ErrWorkflowClosed
}

func (s *RedisWorkflowStore) Delete(ctx context.Context, sessionToken string) error {
	return s.redis.Del(ctx, workflowKey(sessionToken)).Err()
}

func (s *RedisWorkflowStore) Lock(ctx context.Context, workflowID string) (func(context.Context) error, error) {
	key := workflowLockKey(workflowID)
	owner := uuid.NewString()

	ok, err := s.redis.SetNX(ctx, key, owner, submissionLockTTL).Result()
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, domain.ErrSubmissionInProgress
	}

	unlock := func(ctx context.Context) error {
		return releaseLock.Run(ctx, s.redis, []string{key}, owner).Err()
	}

	return unlock, nil
}

func (s *RedisWorkflowStore) Locked(ctx context.Context, workflowID string) (bool, error) {
	n, err := s.redis.Exists(ctx, workflowLockKey(workflowID)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// Migrate moves the workflow of a session to its renewed token, e.g. after
// the user signed in.
func (s *RedisWorkflowStore) Migrate(ctx context.Context, oldToken, newToken string) error {
	if oldToken == "" || oldToken == newToken {
		return nil
	}

	data, err := s.redis.Get(ctx, workflowKey(oldToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to get workflow for session %s: %w", oldToken, err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, workflowKey(newToken), data, s.ttl)
	pipe.Del(ctx, workflowKey(oldToken))

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate workflow to session %s: %w", newToken, err)
	}

	return nil
}
