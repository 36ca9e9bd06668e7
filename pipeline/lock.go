package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasuganosora/contentbackport/cache"
	"go.uber.org/zap"
)

// ErrLockLost is returned when the merge lock expired or changed owner before
// the host catalog was modified.
var ErrLockLost = errors.New("pipeline: merge lock lost")

// Running reports whether some run currently holds the merge lock.
func Running(ctx context.Context, c cache.Cache) (bool, error) {
	return c.Exists(ctx, LockKey)
}

// lockOwner returns the run ID holding the lock, or "" when it is free.
func (p *Pipeline) lockOwner(ctx context.Context) (string, error) {
	owner, err := p.deps.Cache.Get(ctx, LockKey)
	if cache.IsNotFound(err) {
		return "", nil
	}
	return owner, err
}

// extendLock renews the lock TTL for runID, failing when runID no longer owns it.
func (p *Pipeline) extendLock(ctx context.Context, runID string) error {
	owner, err := p.lockOwner(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: read lock: %w", err)
	}
	if owner != runID {
		return ErrLockLost
	}
	if err := p.deps.Cache.Expire(ctx, LockKey, p.opts.LockTTL); err != nil {
		return fmt.Errorf("pipeline: extend lock: %w", err)
	}
	return nil
}

// releaseLock deletes the lock only while runID still owns it.
func (p *Pipeline) releaseLock(ctx context.Context, runID string) {
	logger := p.deps.Logger.With(zap.String("run_id", runID))
	owner, err := p.lockOwner(ctx)
	if err != nil {
		logger.Warn("merge lock not released", zap.Error(err))
		return
	}
	if owner != runID {
		logger.Warn("merge lock held by another run", zap.String("owner", owner))
		return
	}
	if err := p.deps.Cache.Del(ctx, LockKey); err != nil {
		logger.Warn("merge lock not released", zap.Error(err))
	}
}
