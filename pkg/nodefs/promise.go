package nodefs

import "context"

// Promise is the pending result of a promise-form operation. It settles
// exactly once, on the loop goroutine.
//
// Await blocks the calling goroutine; calling it from a callback running on
// the same FS deadlocks, because the loop cannot run the operation while it
// waits.
type Promise[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newPromise[T any]() *Promise[T] {
	return &Promise[T]{done: make(chan struct{})}
}

// promise runs body on the loop and settles with its outcome.
func promise[T any](f *FS, body func() (T, error)) *Promise[T] {
	p := newPromise[T]()

	if !f.loop.Post(func() { p.settle(body()) }) {
		var zero T

		p.settle(zero, errFSClosed())
	}

	return p
}

// rejected returns a promise already settled with err.
func rejected[T any](err error) *Promise[T] {
	p := newPromise[T]()

	var zero T

	p.settle(zero, err)

	return p
}

func (p *Promise[T]) settle(v T, err error) {
	p.val, p.err = v, err
	close(p.done)
}

// Await waits for the promise to settle or ctx to end.
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// Done is closed once the promise settles.
func (p *Promise[T]) Done() <-chan struct{} { return p.done }

// Err returns the rejection reason, or nil while pending or fulfilled.
func (p *Promise[T]) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}
