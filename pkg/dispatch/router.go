package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/botarmy/switchboard/internal/logging"
	"github.com/botarmy/switchboard/pkg/domain"
)

// ErrRouterClosed is returned by Route after Close.
var ErrRouterClosed = errors.New("router is closed")

// Handler processes one update. *Dispatcher implements it.
type Handler interface {
	Dispatch(ctx context.Context, u domain.Update) (domain.Result, error)
}

// Router serializes updates per party.
// Each party with pending updates has exactly one worker; it exits once its queue drains.
type Router struct {
	handler Handler
	logger  *slog.Logger

	mu     sync.Mutex
	queues map[string][]domain.Update
	closed bool
	wg     sync.WaitGroup
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets the logger.
func WithRouterLogger(l *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// NewRouter creates a router in front of h.
func NewRouter(h Handler, opts ...RouterOption) *Router {
	r := &Router{
		handler: h,
		logger:  logging.NewNop(),
		queues:  make(map[string][]domain.Update),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route enqueues u behind the party's pending updates. It does not block on processing.
// Work continues after ctx is cancelled; use Close to wait for it.
func (r *Router) Route(ctx context.Context, u domain.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRouterClosed
	}

	q, running := r.queues[u.Party]
	r.queues[u.Party] = append(q, u)
	if !running {
		r.wg.Add(1)
		go r.work(context.WithoutCancel(ctx), u.Party)
	}
	return nil
}

func (r *Router) work(ctx context.Context, party string) {
	defer r.wg.Done()
	for {
		u, ok := r.next(party)
		if !ok {
			return
		}
		if _, err := r.handler.Dispatch(ctx, u); err != nil {
			r.logger.Error("Update failed", "party_id", party, "err", err)
		}
	}
}

func (r *Router) next(party string) (domain.Update, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := r.queues[party]
	if len(q) == 0 {
		delete(r.queues, party)
		return domain.Update{}, false
	}
	r.queues[party] = q[1:]
	return q[0], true
}

// Close stops accepting updates and waits for queued ones to finish, or for ctx.
func (r *Router) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
