package models

import "time"

// StatusKind names one of the boolean facts a user can hold about a game.
type StatusKind string

const (
	StatusFavorite  StatusKind = "favorite"
	StatusWishlist  StatusKind = "wishlist"
	StatusCompleted StatusKind = "completed"
)

// Valid reports whether k is one of the known status kinds.
func (k StatusKind) Valid() bool {
	switch k {
	case StatusFavorite, StatusWishlist, StatusCompleted:
		return true
	}
	return false
}

// GameStatus records that a user marked a game with a status.
// The primary key is a composite of (UserID, GameID, Kind), so a fact exists at most once;
// removing the status deletes the row.
type GameStatus struct {
	UserID    uint       `gorm:"primaryKey"`
	GameID    uint       `gorm:"primaryKey"`
	Kind      StatusKind `gorm:"primaryKey;type:varchar(20)"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Game Game `gorm:"foreignKey:GameID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
