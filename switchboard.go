package switchboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/botarmy/switchboard/internal/logging"
	"github.com/botarmy/switchboard/internal/runtime"
	"github.com/botarmy/switchboard/pkg/adapters/memory"
	"github.com/botarmy/switchboard/pkg/content"
	"github.com/botarmy/switchboard/pkg/dispatch"
	"github.com/botarmy/switchboard/pkg/domain"
	"github.com/botarmy/switchboard/pkg/frame"
	"github.com/botarmy/switchboard/pkg/identity"
	"github.com/botarmy/switchboard/pkg/ports"
	"github.com/botarmy/switchboard/pkg/session"
)

// Bot is the high-level entry point: one identity flow, its session store
// and the transport renders are delivered to.
type Bot struct {
	content   *content.Content
	store     ports.SessionStore
	transport ports.Transport
	exporter  ports.Exporter
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	flowOpts  []identity.Option

	flow       *identity.Flow
	engine     *runtime.Engine
	sessions   *session.Manager
	dispatcher *dispatch.Dispatcher
	router     *dispatch.Router
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithContent sets the texts, menus and fields. The built-in content is used otherwise.
func WithContent(c *content.Content) Option {
	return func(b *Bot) {
		b.content = c
	}
}

// WithStore sets the session store. Sessions are kept in memory otherwise.
func WithStore(s ports.SessionStore) Option {
	return func(b *Bot) {
		b.store = s
	}
}

// WithTransport sets where renders are delivered. Required.
func WithTransport(t ports.Transport) Option {
	return func(b *Bot) {
		b.transport = t
	}
}

// WithExporter sets the sink for submitted records.
func WithExporter(e ports.Exporter) Option {
	return func(b *Bot) {
		b.exporter = e
	}
}

// WithLocker serializes sessions across processes.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(b *Bot) {
		b.locker = l
		b.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks. Hooks from repeated calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithFlowOptions passes options to the identity flow.
func WithFlowOptions(opts ...identity.Option) Option {
	return func(b *Bot) {
		b.flowOpts = append(b.flowOpts, opts...)
	}
}

// New composes a Bot.
func New(opts ...Option) (*Bot, error) {
	b := &Bot{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	if b.transport == nil {
		return nil, errors.New("a transport is required")
	}

	if b.content == nil {
		c, err := content.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load default content: %w", err)
		}
		b.content = c
	}
	if b.store == nil {
		b.store = memory.NewStore()
	}

	flow, err := identity.New(b.content, b.flowOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to compose flow: %w", err)
	}
	b.flow = flow

	b.engine = runtime.NewEngine(flow.Frames(),
		runtime.WithLifecycleHooks(b.hooks),
		runtime.WithLogger(b.logger),
	)

	sessOpts := []session.Option{session.WithLogger(b.logger)}
	if b.locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(b.locker))
		if b.lockTTL > 0 {
			sessOpts = append(sessOpts, session.WithLockTTL(b.lockTTL))
		}
	}
	b.sessions = session.NewManager(b.store, sessOpts...)

	dispOpts := []dispatch.Option{
		dispatch.WithLogger(b.logger),
		dispatch.WithLifecycleHooks(b.hooks),
	}
	if b.exporter != nil {
		dispOpts = append(dispOpts, dispatch.WithExporter(b.exporter))
	}
	b.dispatcher = dispatch.NewDispatcher(b.engine, b.sessions, b.transport, dispOpts...)
	b.router = dispatch.NewRouter(b.dispatcher, dispatch.WithRouterLogger(b.logger))

	return b, nil
}

// Handle processes u and waits for its renders to be delivered.
func (b *Bot) Handle(ctx context.Context, u domain.Update) (domain.Result, error) {
	return b.dispatcher.Dispatch(ctx, u)
}

// Route queues u behind the party's pending updates and returns immediately.
func (b *Bot) Route(ctx context.Context, u domain.Update) error {
	return b.router.Route(ctx, u)
}

// Close stops accepting routed updates and waits for queued ones.
func (b *Bot) Close(ctx context.Context) error {
	return b.router.Close(ctx)
}

// Frames returns the composed frame set.
func (b *Bot) Frames() *frame.Set {
	return b.flow.Frames()
}

// Content returns the texts, menus and fields in use.
func (b *Bot) Content() *content.Content {
	return b.content
}

// Sessions returns the session manager.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}
