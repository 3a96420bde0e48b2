package optimistic

import (
	"context"
	"sync"

	"gameshelf/backend/pkg/failure"

	"go.uber.org/zap"
)

// Status is how an operation settled.
type Status int

const (
	// Confirmed: the request succeeded and the store holds the server's value.
	Confirmed Status = iota + 1
	// RolledBack: the request failed and the store holds the prior value again.
	RolledBack
	// Rejected: validation failed; nothing was written and nothing was sent.
	Rejected
	// Ignored: another operation on the same key was still pending.
	Ignored
	// Discarded: the store was Reset while the request was in flight; the answer was dropped.
	Discarded
)

func (s Status) String() string {
	switch s {
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	case Rejected:
		return "rejected"
	case Ignored:
		return "ignored"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Notice is delivered to the Notifier for every operation that settles while
// its caller is still interested.
type Notice struct {
	Key     Key
	Status  Status
	Kind    failure.Kind
	Message string
}

// Notifier receives settled operations, typically to re-render or show an error.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a func to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Controller runs optimistic operations against a Store, allowing at most one
// pending operation per key.
type Controller struct {
	store    *Store
	notifier Notifier
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[Key]struct{}
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithNotifier sets where notices are delivered.
func WithNotifier(n Notifier) ControllerOption {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller writing to store.
func NewController(store *Store, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:   store,
		logger:  zap.NewNop(),
		pending: make(map[Key]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the store the controller writes to.
func (c *Controller) Store() *Store { return c.store }

// Pending reports whether an operation on key is in flight.
func (c *Controller) Pending(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[key]
	return ok
}

func (c *Controller) acquire(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.pending[key]; busy {
		return false
	}
	c.pending[key] = struct{}{}
	return true
}

func (c *Controller) release(key Key) {
	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
}

func (c *Controller) notify(ctx context.Context, n Notice) {
	if c.notifier == nil {
		return
	}
	if ctx.Err() != nil {
		c.logger.Debug("caller gone, notice dropped", zap.String("key", string(n.Key)), zap.Stringer("status", n.Status))
		return
	}
	c.notifier.Notify(n)
}

// Op describes one optimistic operation on a single key.
type Op[V any] struct {
	Key Key
	// Validate checks the operation against the current value. A non-nil error
	// rejects it before the store or the network is touched.
	Validate func(current V, ok bool) error
	// Apply computes the optimistic value from the current one.
	Apply func(current V, ok bool) V
	// Request sends the mutation and returns the canonical value to confirm.
	Request func(ctx context.Context, optimistic V) (V, error)
}

// Result is the outcome of Perform. Value is what the store holds for the key
// once the operation settled (unchanged for Rejected and Ignored).
type Result[V any] struct {
	Status Status
	Value  V
	Err    error
}

// Perform validates op, writes its optimistic value, sends the request and then
// confirms the server's value or rolls back.
//
// The request is not cancelled when ctx is; ctx only signals whether the caller
// still wants to hear about the outcome. The store is reconciled either way,
// unless it was Reset in the meantime.
func Perform[V any](ctx context.Context, c *Controller, op Op[V]) Result[V] {
	log := c.logger.With(zap.String("key", string(op.Key)))

	if !c.acquire(op.Key) {
		current, _ := Value[V](c.store, op.Key)
		log.Debug("operation ignored, key pending")
		return Result[V]{Status: Ignored, Value: current}
	}
	defer c.release(op.Key)

	current, ok := Value[V](c.store, op.Key)
	if op.Validate != nil {
		if err := op.Validate(current, ok); err != nil {
			c.notify(ctx, Notice{Key: op.Key, Status: Rejected, Kind: failure.KindOf(err), Message: failure.UserMessage(err)})
			return Result[V]{Status: Rejected, Value: current, Err: err}
		}
	}

	next := op.Apply(current, ok)
	snap := c.store.Update(op.Key, next)

	canonical, err := op.Request(context.WithoutCancel(ctx), next)

	if !c.store.Live(snap) {
		log.Debug("store reset while pending, response discarded")
		var zero V
		return Result[V]{Status: Discarded, Value: zero, Err: err}
	}

	if err != nil {
		c.store.Rollback(snap)
		kind := failure.KindOf(err)
		log.Warn("optimistic update rolled back", zap.String("kind", string(kind)), zap.Error(err))
		c.notify(ctx, Notice{Key: op.Key, Status: RolledBack, Kind: kind, Message: failure.UserMessage(err)})
		return Result[V]{Status: RolledBack, Value: current, Err: err}
	}

	if !c.store.confirmSnapshot(snap, canonical) {
		var zero V
		return Result[V]{Status: Discarded, Value: zero}
	}
	c.notify(ctx, Notice{Key: op.Key, Status: Confirmed})
	return Result[V]{Status: Confirmed, Value: canonical}
}
