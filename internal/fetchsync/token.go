package fetchsync

import (
	"context"

	"github.com/google/uuid"
)

type attemptKey struct{}

// Token identifies one read or write attempt. A response is applied only while
// the token that issued it is still the engine's current, uncancelled token.
type Token struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
}

func newToken(parent context.Context) *Token {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.WithValue(parent, attemptKey{}, id))
	return &Token{id: id, ctx: ctx, cancel: cancel}
}

// ID returns the attempt id.
func (t *Token) ID() string { return t.id }

// Context returns the context the attempt's request runs under.
func (t *Token) Context() context.Context { return t.ctx }

// Cancel marks the attempt obsolete and aborts its request.
func (t *Token) Cancel() { t.cancel() }

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool { return t.ctx.Err() != nil }

// AttemptID returns the id of the attempt ctx belongs to, or "" outside an
// engine request. Transports forward it as a request id.
func AttemptID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(attemptKey{}).(string)
	return id
}
