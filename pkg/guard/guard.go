package guard

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL bounds how long a shared redis marker can outlive a crashed instance.
const DefaultTTL = 10 * time.Minute

// ErrConcurrencyRejected is returned by Run when the user already has an upload in progress.
var ErrConcurrencyRejected = errors.New("upload already in progress")

// UploadGuard allows at most one in-flight ingestion per user.
type UploadGuard interface {
	// TryAcquire atomically marks userId busy and returns the token that owns
	// the marker. It reports false if the user is already marked.
	TryAcquire(ctx context.Context, userId string) (token string, ok bool, err error)
	// Release clears the marker only while it is still owned by token.
	Release(ctx context.Context, userId, token string) error
}

// Run executes fn while holding the guard for userId. The marker is released
// on every exit path, including a panic in fn.
func Run(ctx context.Context, g UploadGuard, userId string, fn func(ctx context.Context) error) error {
	token, ok, err := g.TryAcquire(ctx, userId)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConcurrencyRejected
	}
	defer g.Release(context.WithoutCancel(ctx), userId, token)

	return fn(ctx)
}
