package models

import "gorm.io/gorm"

// Game represents a catalogued video game. RawgID links it back to the
// external catalog it was imported from.
type Game struct {
	gorm.Model
	RawgID      *uint  `gorm:"uniqueIndex"`
	Slug        string `gorm:"size:255;uniqueIndex;not null"`
	Name        string `gorm:"size:255;not null"`
	Description string
	ImageURL    string   `gorm:"size:512"`
	Released    string   `gorm:"size:32"`
	Genres      []*Genre `gorm:"many2many:game_genres;"`
}
