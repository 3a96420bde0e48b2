package apiclient

import "time"

// StatusKind is the path segment of a shelf status.
type StatusKind string

const (
	Favorites StatusKind = "favorites"
	Wishlist  StatusKind = "wishlist"
	Completed StatusKind = "completed"
)

type Genre struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Game struct {
	ID          uint    `json:"id"`
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Released    string  `json:"released,omitempty"`
	Genres      []Genre `json:"genres,omitempty"`
}

// GameDetail is a game with the signed-in viewer's shelf flags.
type GameDetail struct {
	Game
	AverageRating *float64 `json:"average_rating"`
	ReviewCount   int64    `json:"review_count"`
	IsFavorite    bool     `json:"is_favorite"`
	IsInWishlist  bool     `json:"is_in_wishlist"`
	IsCompleted   bool     `json:"is_completed"`
}

type List struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Games     []Game    `json:"games"`
}

// LikeState is the server's like count of a review and whether the caller likes it.
type LikeState struct {
	Likes   int64 `json:"likes"`
	IsLiked bool  `json:"is_liked"`
}

type ReviewAuthor struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Review struct {
	ID         uint         `json:"id"`
	GameID     uint         `json:"game_id"`
	User       ReviewAuthor `json:"user"`
	StarRating int          `json:"star_rating"`
	Text       string       `json:"text"`
	Likes      int64        `json:"likes"`
	IsLiked    bool         `json:"is_liked"`
	CreatedAt  time.Time    `json:"created_at"`
}

// HallOfFameEntry places a game at a 1-based position.
type HallOfFameEntry struct {
	ID       uint `json:"id"`
	Position int  `json:"position"`
}

// HallOfFameResult is the answer to a Hall of Fame replacement.
// UpdatedFavorites is nil when the server did not send it.
type HallOfFameResult struct {
	Success          bool    `json:"success"`
	UpdatedFavorites []*Game `json:"updatedFavorites"`
}

type Account struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type TokenResponse struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

type pagination struct {
	TotalItems int64 `json:"total_items"`
}

type page[T any] struct {
	Data []T        `json:"data"`
	Meta pagination `json:"meta"`
}
