package database

import (
	"testing"

	"gameshelf/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestConnect_SQLiteMigratesSchema(t *testing.T) {
	prev := DB
	t.Cleanup(func() { DB = prev })

	require.NoError(t, Connect("sqlite", ":memory:", zap.NewNop()))
	require.NotNil(t, DB)

	for _, model := range []any{
		&models.User{}, &models.Game{}, &models.GameStatus{}, &models.GameList{},
		&models.ListGame{}, &models.Review{}, &models.ReviewLike{}, &models.HallOfFameSlot{},
	} {
		assert.True(t, DB.Migrator().HasTable(model), "missing table for %T", model)
	}

	user := models.User{Name: "ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, DB.Create(&user).Error)
	game := models.Game{Slug: "celeste", Name: "Celeste"}
	require.NoError(t, DB.Create(&game).Error)

	status := models.GameStatus{UserID: user.ID, GameID: game.ID, Kind: models.StatusFavorite}
	require.NoError(t, DB.Create(&status).Error)
	dup := models.GameStatus{UserID: user.ID, GameID: game.ID, Kind: models.StatusFavorite}
	assert.Error(t, DB.Create(&dup).Error, "a status fact exists at most once")
}
