package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is a star rating with optional text left by a user on a game.
// LikesCount mirrors the number of ReviewLike rows and is recounted whenever
// a like is toggled.
type Review struct {
	gorm.Model
	UserID     uint   `gorm:"not null;uniqueIndex:idx_review_user_game"`
	GameID     uint   `gorm:"not null;uniqueIndex:idx_review_user_game;index"`
	StarRating int    `gorm:"not null"`
	Text       string `gorm:"type:text"`
	LikesCount int64  `gorm:"not null;default:0"`

	User User `gorm:"foreignKey:UserID"`
	Game Game `gorm:"foreignKey:GameID"`
}

// ReviewLike records that a user liked a review.
type ReviewLike struct {
	ReviewID  uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Review Review `gorm:"foreignKey:ReviewID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
