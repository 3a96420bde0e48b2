package shelf

import (
	"context"

	"gameshelf/backend/pkg/failure"
	"gameshelf/backend/pkg/optimistic"
)

func (s *Session) hallOfFameOp(ctx context.Context, validate func(Slots) error, apply func(Slots) Slots) optimistic.Result[Slots] {
	user, authErr := s.currentUser()
	return optimistic.Perform(ctx, s.ctrl, optimistic.Op[Slots]{
		Key: HallOfFameKey(user.ID),
		Validate: func(cur Slots, _ bool) error {
			if authErr != nil {
				return authErr
			}
			return validate(cur)
		},
		Apply: func(cur Slots, _ bool) Slots { return apply(cur) },
		Request: func(ctx context.Context, next Slots) (Slots, error) {
			return s.saveHallOfFame(ctx, user, next)
		},
	})
}

// saveHallOfFame sends the whole showcase. The server's array is adopted when it
// sends one; otherwise the locally computed array stands.
func (s *Session) saveHallOfFame(ctx context.Context, user User, next Slots) (Slots, error) {
	res, err := s.remote.UpdateHallOfFame(ctx, user.Name, next.Entries())
	if err != nil {
		return Slots{}, err
	}
	if !res.Success {
		return Slots{}, failure.New(failure.ServerError, "Hall of Fame update not accepted")
	}
	if res.UpdatedFavorites == nil {
		return next, nil
	}
	return slotsFromGames(res.UpdatedFavorites), nil
}

// DropHallOfFame handles dragging the game at position from onto position to.
// A game already at to takes the dragged game's place.
func (s *Session) DropHallOfFame(ctx context.Context, from, to int) optimistic.Result[Slots] {
	return s.hallOfFameOp(ctx,
		func(cur Slots) error {
			if err := firstErr(requirePosition("from", from), requirePosition("to", to)); err != nil {
				return err
			}
			if from == to {
				return invalid("to", "must differ from the dragged slot")
			}
			if cur.At(from) == 0 {
				return invalid("from", "slot is empty")
			}
			return nil
		},
		func(cur Slots) Slots { return cur.Swap(from, to) })
}

// PlaceInHallOfFame puts a game at a position, replacing whatever was there.
// A game already shown anywhere in the showcase is rejected with DuplicateEntry.
func (s *Session) PlaceInHallOfFame(ctx context.Context, pos int, gameID uint) optimistic.Result[Slots] {
	return s.hallOfFameOp(ctx,
		func(cur Slots) error {
			if err := firstErr(requirePosition("position", pos), requireID("game_id", gameID)); err != nil {
				return err
			}
			if cur.Position(gameID) != 0 {
				return failure.New(failure.DuplicateEntry, "game already in Hall of Fame")
			}
			return nil
		},
		func(cur Slots) Slots { return cur.Place(pos, gameID) })
}

// RemoveFromHallOfFame empties a position.
func (s *Session) RemoveFromHallOfFame(ctx context.Context, pos int) optimistic.Result[Slots] {
	return s.hallOfFameOp(ctx,
		func(Slots) error { return requirePosition("position", pos) },
		func(cur Slots) Slots { return cur.Place(pos, 0) })
}

// HallOfFame returns the displayed showcase of the signed-in user.
func (s *Session) HallOfFame() Slots {
	user, _ := s.User()
	slots, _ := optimistic.Value[Slots](s.store, HallOfFameKey(user.ID))
	return slots
}

// LoadHallOfFame fetches and seeds the signed-in user's showcase.
func (s *Session) LoadHallOfFame(ctx context.Context) (Slots, error) {
	user, err := s.currentUser()
	if err != nil {
		return Slots{}, err
	}
	mark := s.store.Mark()
	games, err := s.remote.GetHallOfFame(ctx, user.Name)
	if err != nil {
		return Slots{}, err
	}
	slots := slotsFromGames(games)
	s.seed(mark, HallOfFameKey(user.ID), slots)
	return slots, nil
}
