package apiclient

import (
	"context"
	"net/http"
)

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, name, email, password string) (TokenResponse, error) {
	var out TokenResponse
	in := map[string]string{"name": name, "email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/register", in, &out)
	return out, err
}

// Login exchanges credentials for a token. The token is not installed on the client.
func (c *Client) Login(ctx context.Context, login, password string) (TokenResponse, error) {
	var out TokenResponse
	in := map[string]string{"login": login, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/login", in, &out)
	return out, err
}

// SetStatus adds (active) or removes a favorite, wishlist or completed mark and
// returns the state the server reports.
func (c *Client) SetStatus(ctx context.Context, user string, kind StatusKind, gameID uint, active bool) (bool, error) {
	var out struct {
		Active bool `json:"active"`
	}
	var err error
	if active {
		in := map[string]uint{"game_id": gameID}
		err = c.do(ctx, http.MethodPost, pathf("/users/%s/%s", user, string(kind)), in, &out)
	} else {
		err = c.do(ctx, http.MethodDelete, pathf("/users/%s/%s/%d", user, string(kind), gameID), nil, &out)
	}
	return out.Active, err
}

// ToggleReviewLike flips the caller's like on a review.
func (c *Client) ToggleReviewLike(ctx context.Context, reviewID uint) (LikeState, error) {
	var out LikeState
	err := c.do(ctx, http.MethodPost, pathf("/reviews/%d/toggle-like", reviewID), nil, &out)
	return out, err
}

// GetGameReviews returns the first page of a game's reviews.
func (c *Client) GetGameReviews(ctx context.Context, gameID uint) ([]Review, error) {
	var out page[Review]
	err := c.do(ctx, http.MethodGet, pathf("/games/%d/reviews?limit=100", gameID), nil, &out)
	return out.Data, err
}

// GetGame returns a game with the caller's shelf flags.
func (c *Client) GetGame(ctx context.Context, gameID uint) (GameDetail, error) {
	var out GameDetail
	err := c.do(ctx, http.MethodGet, pathf("/games/%d", gameID), nil, &out)
	return out, err
}

// GetUserLists returns every list owned by user.
func (c *Client) GetUserLists(ctx context.Context, user string) ([]List, error) {
	var out []List
	err := c.do(ctx, http.MethodGet, pathf("/users/%s/lists", user), nil, &out)
	return out, err
}

// CreateList creates an empty list owned by the caller.
func (c *Client) CreateList(ctx context.Context, name string) (List, error) {
	var out List
	err := c.do(ctx, http.MethodPost, "/lists", map[string]string{"name": name}, &out)
	return out, err
}

// RenameList renames one of the caller's lists.
func (c *Client) RenameList(ctx context.Context, listID uint, name string) (List, error) {
	var out List
	err := c.do(ctx, http.MethodPut, pathf("/lists/%d", listID), map[string]string{"name": name}, &out)
	return out, err
}

// DeleteList deletes one of the caller's lists.
func (c *Client) DeleteList(ctx context.Context, listID uint) error {
	return c.do(ctx, http.MethodDelete, pathf("/lists/%d", listID), nil, nil)
}

// AddGameToList adds a game to a list. A game already in the list is a Conflict.
func (c *Client) AddGameToList(ctx context.Context, listID, gameID uint) error {
	return c.do(ctx, http.MethodPost, pathf("/lists/%d/games", listID), map[string]uint{"game_id": gameID}, nil)
}

// RemoveGameFromList removes a game from a list.
func (c *Client) RemoveGameFromList(ctx context.Context, listID, gameID uint) error {
	return c.do(ctx, http.MethodDelete, pathf("/lists/%d/games/%d", listID, gameID), nil, nil)
}

// GetHallOfFame returns user's showcase, one entry per position, nil when empty.
func (c *Client) GetHallOfFame(ctx context.Context, user string) ([]*Game, error) {
	var out struct {
		Slots []*Game `json:"slots"`
	}
	err := c.do(ctx, http.MethodGet, pathf("/users/%s/hall-of-fame", user), nil, &out)
	return out.Slots, err
}

// UpdateHallOfFame replaces user's showcase with the occupied entries given.
func (c *Client) UpdateHallOfFame(ctx context.Context, user string, entries []HallOfFameEntry) (HallOfFameResult, error) {
	if entries == nil {
		entries = []HallOfFameEntry{}
	}
	var out HallOfFameResult
	in := map[string][]HallOfFameEntry{"games": entries}
	err := c.do(ctx, http.MethodPut, pathf("/users/%s/hall-of-fame", user), in, &out)
	return out, err
}
