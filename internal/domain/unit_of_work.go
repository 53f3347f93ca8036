package domain

import (
	"context"
	"sync"
)

// UnitOfWork runs fn inside a transaction carried by ctx. Nested calls join
// the outer transaction; only the outermost call commits or rolls back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type commitHooksKey struct{}

// CommitHooks collects callbacks to run once the outermost transaction has
// committed. Hooks are dropped on rollback.
type CommitHooks struct {
	mu    sync.Mutex
	hooks []func(ctx context.Context)
}

func WithCommitHooks(ctx context.Context) (context.Context, *CommitHooks) {
	h := &CommitHooks{}
	return context.WithValue(ctx, commitHooksKey{}, h), h
}

// Run calls the registered hooks in order.
func (h *CommitHooks) Run(ctx context.Context) {
	h.mu.Lock()
	hooks := h.hooks
	h.hooks = nil
	h.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}
}

// AfterCommit defers fn until the transaction in ctx commits. Outside a
// transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func(ctx context.Context)) {
	h, ok := ctx.Value(commitHooksKey{}).(*CommitHooks)
	if !ok || h == nil {
		fn(ctx)
		return
	}
	h.mu.Lock()
	h.hooks = append(h.hooks, fn)
	h.mu.Unlock()
}
