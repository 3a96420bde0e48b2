// Package shelf implements the user-facing relation flows of the GameShelf
// client: status toggles, review likes, lists and the Hall of Fame. Each flow
// is guarded locally, applied optimistically and reconciled with the server.
package shelf

import (
	"context"
	"sync"

	"gameshelf/backend/pkg/apiclient"
	"gameshelf/backend/pkg/failure"
	"gameshelf/backend/pkg/optimistic"

	"go.uber.org/zap"
)

// Remote is the server the session mutates. *apiclient.Client satisfies it.
type Remote interface {
	SetStatus(ctx context.Context, user string, kind apiclient.StatusKind, gameID uint, active bool) (bool, error)
	ToggleReviewLike(ctx context.Context, reviewID uint) (apiclient.LikeState, error)
	GetGameReviews(ctx context.Context, gameID uint) ([]apiclient.Review, error)
	GetGame(ctx context.Context, gameID uint) (apiclient.GameDetail, error)
	GetUserLists(ctx context.Context, user string) ([]apiclient.List, error)
	CreateList(ctx context.Context, name string) (apiclient.List, error)
	RenameList(ctx context.Context, listID uint, name string) (apiclient.List, error)
	DeleteList(ctx context.Context, listID uint) error
	AddGameToList(ctx context.Context, listID, gameID uint) error
	RemoveGameFromList(ctx context.Context, listID, gameID uint) error
	GetHallOfFame(ctx context.Context, user string) ([]*apiclient.Game, error)
	UpdateHallOfFame(ctx context.Context, user string, entries []apiclient.HallOfFameEntry) (apiclient.HallOfFameResult, error)
}

var _ Remote = (*apiclient.Client)(nil)

// User is the signed-in account. Name addresses the user's shelf on the server.
type User struct {
	ID   uint
	Name string
}

// Session binds a signed-in user to a store and a controller.
type Session struct {
	remote Remote
	store  *optimistic.Store
	ctrl   *optimistic.Controller
	logger *zap.Logger

	mu   sync.RWMutex
	user *User
}

type options struct {
	notifier optimistic.Notifier
	logger   *zap.Logger
}

// Option configures a Session.
type Option func(*options)

// WithNotifier sets where settled operations are reported.
func WithNotifier(n optimistic.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithLogger sets the session's logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewSession creates a signed-out session talking to remote.
func NewSession(remote Remote, opts ...Option) *Session {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	store := optimistic.NewStore()
	ctrlOpts := []optimistic.ControllerOption{optimistic.WithLogger(o.logger.Named("optimistic"))}
	if o.notifier != nil {
		ctrlOpts = append(ctrlOpts, optimistic.WithNotifier(o.notifier))
	}

	return &Session{
		remote: remote,
		store:  store,
		ctrl:   optimistic.NewController(store, ctrlOpts...),
		logger: o.logger,
	}
}

// SignIn makes u the acting user and clears state cached for anyone else.
func (s *Session) SignIn(u User) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.store.Reset()
	s.logger.Debug("signed in", zap.Uint("user_id", u.ID), zap.String("user", u.Name))
}

// SignOut clears the user and every cached value. Responses still in flight are discarded.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.store.Reset()
}

// User returns the signed-in user.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Store exposes the session's state, e.g. to Subscribe for re-rendering.
func (s *Session) Store() *optimistic.Store { return s.store }

// Pending reports whether an operation on key is in flight.
func (s *Session) Pending(key optimistic.Key) bool { return s.ctrl.Pending(key) }

func (s *Session) currentUser() (User, error) {
	u, ok := s.User()
	if !ok {
		return User{}, failure.New(failure.Unauthenticated, "not signed in")
	}
	return u, nil
}

// seed stores a loaded value unless an operation on the key is pending, or the
// key was written or the session changed since mark was taken.
func (s *Session) seed(mark optimistic.Mark, key optimistic.Key, value any) {
	if s.ctrl.Pending(key) {
		return
	}
	s.store.SeedSince(mark, key, value)
}
