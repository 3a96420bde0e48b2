package shelf

import (
	"fmt"

	"gameshelf/backend/pkg/apiclient"
	"gameshelf/backend/pkg/optimistic"
)

// Status is one of the boolean facts a user holds about a game.
type Status string

const (
	Favorite  Status = "favorite"
	Wishlist  Status = "wishlist"
	Completed Status = "completed"
)

func (s Status) segment() apiclient.StatusKind {
	switch s {
	case Favorite:
		return apiclient.Favorites
	case Wishlist:
		return apiclient.Wishlist
	default:
		return apiclient.Completed
	}
}

// StatusKey names a status fact, e.g. "favorite:user42:game7".
func StatusKey(status Status, userID, gameID uint) optimistic.Key {
	return optimistic.Key(fmt.Sprintf("%s:user%d:game%d", status, userID, gameID))
}

// MembershipKey names a game's membership in a list, e.g. "list:3:game:7".
func MembershipKey(listID, gameID uint) optimistic.Key {
	return optimistic.Key(fmt.Sprintf("list:%d:game:%d", listID, gameID))
}

// ListsKey names the collection of a user's lists.
func ListsKey(userID uint) optimistic.Key {
	return optimistic.Key(fmt.Sprintf("lists:user%d", userID))
}

// HallOfFameKey names a user's showcase.
func HallOfFameKey(userID uint) optimistic.Key {
	return optimistic.Key(fmt.Sprintf("halloffame:user%d", userID))
}

// LikeKey names the viewer's like state of a review.
func LikeKey(reviewID uint) optimistic.Key {
	return optimistic.Key(fmt.Sprintf("like:review%d", reviewID))
}
