package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock taken by DistributedLocker.Lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes turns of the same chat session across server replicas
// that share a session store.
type DistributedLocker interface {
	// Lock blocks until the lock for key (a session ID) is held or ctx is done.
	// The lock expires after ttl if the holder dies. The returned UnlockFunc must be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
