package done

import "context"

// ContextFlag is a Flag backed by context cancellation.
//
// Useful when other code already waits on a context: Context() is cancelled
// the moment Finish is called.
type ContextFlag struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewContext creates a ContextFlag derived from parent.
// Cancelling parent also marks the flag finished.
func NewContext(parent context.Context) *ContextFlag {
	ctx, cancel := context.WithCancel(parent)
	return &ContextFlag{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Finished performs a non-blocking select on ctx.Done().
func (f *ContextFlag) Finished() bool {
	select {
	case <-f.ctx.Done():
		return true
	default:
		return false
	}
}

// Finish cancels the underlying context.
func (f *ContextFlag) Finish() {
	f.cancel()
}

// Context returns the underlying context.Context.
func (f *ContextFlag) Context() context.Context {
	return f.ctx
}
