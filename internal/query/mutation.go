// ABOUTME: Generic mutation runner with success and error callbacks
// ABOUTME: Used by hooks to attach session side effects to API calls

package query

import "context"

// Mutation wraps a single remote operation. Fn performs the call; exactly one
// of OnSuccess or OnError runs afterwards. An error returned by OnSuccess
// becomes the result of the mutation. OnError only observes.
type Mutation[Req, Resp any] struct {
	Fn        func(ctx context.Context, req Req) (Resp, error)
	OnSuccess func(ctx context.Context, req Req, resp Resp) error
	OnError   func(req Req, err error)
}

// Mutate runs the mutation synchronously.
func (m *Mutation[Req, Resp]) Mutate(ctx context.Context, req Req) (Resp, error) {
	resp, err := m.Fn(ctx, req)
	if err != nil {
		if m.OnError != nil {
			m.OnError(req, err)
		}
		var zero Resp
		return zero, err
	}

	if m.OnSuccess != nil {
		if err := m.OnSuccess(ctx, req, resp); err != nil {
			var zero Resp
			return zero, err
		}
	}
	return resp, nil
}
