// Package testutil wires an in-memory database and signed tokens for handler tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"gameshelf/backend/internal/config"
	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"
	"gameshelf/backend/pkg/jwt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestSecret signs every token produced by this package.
const TestSecret = "test-secret"

// NewDB opens a migrated in-memory sqlite database, installs it as database.DB
// and installs a test config as config.AppConfig. Both are restored on cleanup.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prevDB, prevCfg := database.DB, config.AppConfig
	cfg := config.Defaults()
	cfg.DatabaseDriver = "sqlite"
	cfg.DatabaseURL = ":memory:"
	cfg.JWTSecret = TestSecret
	database.DB, config.AppConfig = db, cfg

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		database.DB, config.AppConfig = prevDB, prevCfg
	})
	return db
}

// CreateUser inserts a user with the given name.
func CreateUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: name + "@example.com", PasswordHash: "-"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return user
}

// CreateGame inserts a game with the given name.
func CreateGame(t *testing.T, db *gorm.DB, name string) models.Game {
	t.Helper()
	game := models.Game{Name: name, Slug: fmt.Sprintf("%s-%d", name, time.Now().UnixNano())}
	if err := db.Create(&game).Error; err != nil {
		t.Fatalf("create game %s: %v", name, err)
	}
	return game
}

// CreateReview inserts a four-star review of game by author.
func CreateReview(t *testing.T, db *gorm.DB, author models.User, game models.Game) models.Review {
	t.Helper()
	review := models.Review{UserID: author.ID, GameID: game.ID, StarRating: 4, Text: "Solid"}
	if err := db.Create(&review).Error; err != nil {
		t.Fatalf("create review: %v", err)
	}
	return review
}

// Token signs a token for user with TestSecret.
func Token(t *testing.T, user models.User) string {
	t.Helper()
	token, err := jwt.GenerateToken(TestSecret, time.Hour, user.ID, user.Name, user.Role)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// Bearer returns an Authorization header value for user.
func Bearer(t *testing.T, user models.User) string {
	t.Helper()
	return "Bearer " + Token(t, user)
}
