package models

import "gorm.io/gorm"

// Genre represents a game genre (e.g., "RPG", "Shooter", "Indie").
type Genre struct {
	gorm.Model
	Name string `gorm:"size:100;uniqueIndex;not null"`
}
