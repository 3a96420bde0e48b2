package shelf

import (
	"context"
	"slices"

	"gameshelf/backend/pkg/optimistic"
)

// List is a displayed list. ID is 0 while the list's creation is pending.
type List struct {
	ID   uint
	Name string
}

func (s *Session) listsOp(ctx context.Context, validate func(User) error, apply func([]List) []List,
	request func(ctx context.Context, user User, next []List) ([]List, error)) optimistic.Result[[]List] {
	user, authErr := s.currentUser()
	return optimistic.Perform(ctx, s.ctrl, optimistic.Op[[]List]{
		Key: ListsKey(user.ID),
		Validate: func([]List, bool) error {
			if authErr != nil {
				return authErr
			}
			return validate(user)
		},
		Apply: func(cur []List, _ bool) []List { return apply(slices.Clone(cur)) },
		Request: func(ctx context.Context, next []List) ([]List, error) {
			return request(ctx, user, next)
		},
	})
}

// CreateList adds a named list. It shows up immediately with ID 0 and gets its
// server ID once confirmed.
func (s *Session) CreateList(ctx context.Context, name string) optimistic.Result[[]List] {
	trimmed, nameErr := requireListName(name)
	return s.listsOp(ctx,
		func(User) error { return nameErr },
		func(lists []List) []List { return append(lists, List{Name: trimmed}) },
		func(ctx context.Context, _ User, next []List) ([]List, error) {
			created, err := s.remote.CreateList(ctx, trimmed)
			if err != nil {
				return nil, err
			}
			next = slices.Clone(next)
			next[len(next)-1] = List{ID: created.ID, Name: created.Name}
			return next, nil
		})
}

// RenameList renames one of the user's lists.
func (s *Session) RenameList(ctx context.Context, listID uint, name string) optimistic.Result[[]List] {
	trimmed, nameErr := requireListName(name)
	rename := func(lists []List, to string) []List {
		for i := range lists {
			if lists[i].ID == listID {
				lists[i].Name = to
			}
		}
		return lists
	}
	return s.listsOp(ctx,
		func(User) error { return firstErr(requireID("list_id", listID), nameErr) },
		func(lists []List) []List { return rename(lists, trimmed) },
		func(ctx context.Context, _ User, next []List) ([]List, error) {
			renamed, err := s.remote.RenameList(ctx, listID, trimmed)
			if err != nil {
				return nil, err
			}
			return rename(slices.Clone(next), renamed.Name), nil
		})
}

// DeleteList removes one of the user's lists.
func (s *Session) DeleteList(ctx context.Context, listID uint) optimistic.Result[[]List] {
	return s.listsOp(ctx,
		func(User) error { return requireID("list_id", listID) },
		func(lists []List) []List {
			return slices.DeleteFunc(lists, func(l List) bool { return l.ID == listID })
		},
		func(ctx context.Context, _ User, next []List) ([]List, error) {
			if err := s.remote.DeleteList(ctx, listID); err != nil {
				return nil, err
			}
			return next, nil
		})
}

// Lists returns the displayed lists of the signed-in user.
func (s *Session) Lists() []List {
	user, _ := s.User()
	lists, _ := optimistic.Value[[]List](s.store, ListsKey(user.ID))
	return slices.Clone(lists)
}

func (s *Session) setMembership(ctx context.Context, listID, gameID uint, member bool) optimistic.Result[bool] {
	_, authErr := s.currentUser()
	return optimistic.Perform(ctx, s.ctrl, optimistic.Op[bool]{
		Key: MembershipKey(listID, gameID),
		Validate: func(bool, bool) error {
			return firstErr(authErr, requireID("list_id", listID), requireID("game_id", gameID))
		},
		Apply: func(bool, bool) bool { return member },
		Request: func(ctx context.Context, _ bool) (bool, error) {
			var err error
			if member {
				err = s.remote.AddGameToList(ctx, listID, gameID)
			} else {
				err = s.remote.RemoveGameFromList(ctx, listID, gameID)
			}
			return member, err
		},
	})
}

// AddToList adds a game to a list. The server decides whether it is already there.
func (s *Session) AddToList(ctx context.Context, listID, gameID uint) optimistic.Result[bool] {
	return s.setMembership(ctx, listID, gameID, true)
}

// RemoveFromList removes a game from a list.
func (s *Session) RemoveFromList(ctx context.Context, listID, gameID uint) optimistic.Result[bool] {
	return s.setMembership(ctx, listID, gameID, false)
}

// InList reports the displayed membership of a game in a list.
func (s *Session) InList(listID, gameID uint) bool {
	member, _ := optimistic.Value[bool](s.store, MembershipKey(listID, gameID))
	return member
}

// LoadLists fetches the signed-in user's lists and seeds lists and memberships.
func (s *Session) LoadLists(ctx context.Context) ([]List, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	mark := s.store.Mark()
	remote, err := s.remote.GetUserLists(ctx, user.Name)
	if err != nil {
		return nil, err
	}

	lists := make([]List, 0, len(remote))
	for _, l := range remote {
		lists = append(lists, List{ID: l.ID, Name: l.Name})
		for _, g := range l.Games {
			s.seed(mark, MembershipKey(l.ID, g.ID), true)
		}
	}
	s.seed(mark, ListsKey(user.ID), lists)
	return lists, nil
}
