package discussion

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled is the cause of a stream context cancelled by the user.
var ErrCancelled = errors.New("discussion cancelled by user")

// Gate holds the cancellation token of the currently open stream. Only one
// token exists at a time: arming the gate for a new stream makes the previous
// token unreachable without cancelling it.
type Gate struct {
	mu      sync.Mutex
	current *Token
}

// Token is the cancellation handle of one stream.
type Token struct {
	cancel context.CancelCauseFunc
}

// DefaultGate is the process-wide gate.
var DefaultGate = &Gate{}

// Arm derives a cancellable context for a new stream and makes it the current
// token.
func (g *Gate) Arm(ctx context.Context) (context.Context, *Token) {
	ctx, cancel := context.WithCancelCause(ctx)
	token := &Token{cancel: cancel}

	g.mu.Lock()
	g.current = token
	g.mu.Unlock()

	return ctx, token
}

// Cancel cancels the current stream with ErrCancelled. Calling it again, or
// when no stream is open, does nothing.
func (g *Gate) Cancel() {
	g.mu.Lock()
	token := g.current
	g.current = nil
	g.mu.Unlock()

	if token != nil {
		token.cancel(ErrCancelled)
	}
}

// Release clears token if it is still current and frees its context. It does
// not count as a cancellation.
func (g *Gate) Release(token *Token) {
	if token == nil {
		return
	}

	g.mu.Lock()
	if g.current == token {
		g.current = nil
	}
	g.mu.Unlock()

	token.cancel(context.Canceled)
}

// Armed reports whether a stream can currently be cancelled.
func (g *Gate) Armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current != nil
}

// cancelled reports whether ctx was cancelled, either through the gate or by
// the owner of a parent context. Deadlines do not count.
func cancelled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}
