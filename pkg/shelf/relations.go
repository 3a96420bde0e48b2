package shelf

import (
	"context"

	"gameshelf/backend/pkg/apiclient"
	"gameshelf/backend/pkg/failure"
	"gameshelf/backend/pkg/optimistic"
)

// ToggleStatus flips a favorite, wishlist or completed mark on a game.
func (s *Session) ToggleStatus(ctx context.Context, status Status, gameID uint) optimistic.Result[bool] {
	user, authErr := s.currentUser()
	return optimistic.Perform(ctx, s.ctrl, optimistic.Op[bool]{
		Key: StatusKey(status, user.ID, gameID),
		Validate: func(bool, bool) error {
			var statusErr error
			switch status {
			case Favorite, Wishlist, Completed:
			default:
				statusErr = invalid("status", "must be favorite, wishlist or completed")
			}
			return firstErr(authErr, statusErr, requireID("game_id", gameID))
		},
		Apply: func(active, _ bool) bool { return !active },
		Request: func(ctx context.Context, active bool) (bool, error) {
			return s.remote.SetStatus(ctx, user.Name, status.segment(), gameID, active)
		},
	})
}

// ToggleFavorite flips the favorite mark on a game.
func (s *Session) ToggleFavorite(ctx context.Context, gameID uint) optimistic.Result[bool] {
	return s.ToggleStatus(ctx, Favorite, gameID)
}

// ToggleWishlist flips the wishlist mark on a game.
func (s *Session) ToggleWishlist(ctx context.Context, gameID uint) optimistic.Result[bool] {
	return s.ToggleStatus(ctx, Wishlist, gameID)
}

// ToggleCompleted flips the completed mark on a game.
func (s *Session) ToggleCompleted(ctx context.Context, gameID uint) optimistic.Result[bool] {
	return s.ToggleStatus(ctx, Completed, gameID)
}

// HasStatus reports the displayed state of a status mark.
func (s *Session) HasStatus(status Status, gameID uint) bool {
	user, _ := s.User()
	active, _ := optimistic.Value[bool](s.store, StatusKey(status, user.ID, gameID))
	return active
}

// Like is the displayed like state of a review.
type Like struct {
	Count int64
	Liked bool
}

// ReviewRef identifies a review and its author.
type ReviewRef struct {
	ID       uint
	AuthorID uint
}

// ToggleReviewLike likes or unlikes a review. The server's count replaces the
// local guess, since other users may have liked it meanwhile.
func (s *Session) ToggleReviewLike(ctx context.Context, review ReviewRef) optimistic.Result[Like] {
	user, authErr := s.currentUser()
	return optimistic.Perform(ctx, s.ctrl, optimistic.Op[Like]{
		Key: LikeKey(review.ID),
		Validate: func(Like, bool) error {
			if err := firstErr(authErr, requireID("review_id", review.ID)); err != nil {
				return err
			}
			if review.AuthorID == user.ID {
				return failure.New(failure.SelfLike, "cannot like own review")
			}
			return nil
		},
		Apply: func(cur Like, _ bool) Like {
			if cur.Liked {
				return Like{Count: max(cur.Count-1, 0), Liked: false}
			}
			return Like{Count: cur.Count + 1, Liked: true}
		},
		Request: func(ctx context.Context, _ Like) (Like, error) {
			state, err := s.remote.ToggleReviewLike(ctx, review.ID)
			if err != nil {
				return Like{}, err
			}
			return Like{Count: state.Likes, Liked: state.IsLiked}, nil
		},
	})
}

// ReviewLike returns the displayed like state of a review.
func (s *Session) ReviewLike(reviewID uint) (Like, bool) {
	return optimistic.Value[Like](s.store, LikeKey(reviewID))
}

// LoadGame fetches a game and, when signed in, seeds its status marks.
func (s *Session) LoadGame(ctx context.Context, gameID uint) (apiclient.GameDetail, error) {
	mark := s.store.Mark()
	detail, err := s.remote.GetGame(ctx, gameID)
	if err != nil {
		return detail, err
	}
	if user, ok := s.User(); ok {
		s.seed(mark, StatusKey(Favorite, user.ID, gameID), detail.IsFavorite)
		s.seed(mark, StatusKey(Wishlist, user.ID, gameID), detail.IsInWishlist)
		s.seed(mark, StatusKey(Completed, user.ID, gameID), detail.IsCompleted)
	}
	return detail, nil
}

// LoadReviews fetches a game's reviews and seeds their like state.
func (s *Session) LoadReviews(ctx context.Context, gameID uint) ([]apiclient.Review, error) {
	mark := s.store.Mark()
	reviews, err := s.remote.GetGameReviews(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for _, r := range reviews {
		s.seed(mark, LikeKey(r.ID), Like{Count: r.Likes, Liked: r.IsLiked})
	}
	return reviews, nil
}
