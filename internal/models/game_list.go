package models

import (
	"time"

	"gorm.io/gorm"
)

// GameList is a named collection of games owned by a user.
type GameList struct {
	gorm.Model
	UserID uint   `gorm:"not null;index"`
	Name   string `gorm:"size:255;not null"`

	User  User       `gorm:"foreignKey:UserID"`
	Games []ListGame `gorm:"foreignKey:ListID"`
}

// ListGame is a game's membership in a list. The composite key keeps a game
// from appearing twice in the same list.
type ListGame struct {
	ListID    uint `gorm:"primaryKey"`
	GameID    uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Game Game `gorm:"foreignKey:GameID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
