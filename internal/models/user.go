package models

import "gorm.io/gorm"

// Account roles. Catalog admins may edit games and genres.
const (
	RoleUser         = "user"
	RoleCatalogAdmin = "admin"
)

// User represents a user in the system.
type User struct {
	gorm.Model
	Name         string `gorm:"size:255;uniqueIndex;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`
	Bio          string
	ProfilePic   string `gorm:"size:512"`

	Lists        []GameList       `gorm:"foreignKey:UserID"`
	HallOfFame   []HallOfFameSlot `gorm:"foreignKey:UserID"`
	GameStatuses []GameStatus     `gorm:"foreignKey:UserID"`
}
