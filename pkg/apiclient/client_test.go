package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gameshelf/backend/internal/handler"
	"gameshelf/backend/internal/testutil"
	"gameshelf/backend/pkg/failure"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	srv := httptest.NewServer(handler.NewRouter(zap.NewNop(), nil))
	t.Cleanup(srv.Close)
	return srv, db
}

func TestAuthFlow(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	client := New(srv.URL + "/api/v1")

	registered, err := client.Register(ctx, "ada", "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "ada", registered.User.Name)

	logged, err := client.Login(ctx, "ada", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, logged.Token)

	_, err = client.Login(ctx, "ada", "wrong-password")
	assert.ErrorIs(t, err, failure.ErrUnauthenticated)
}

func TestRelationEndpoints(t *testing.T) {
	srv, db := newServer(t)
	ctx := context.Background()
	ada := testutil.CreateUser(t, db, "ada")
	game := testutil.CreateGame(t, db, "Celeste")
	client := New(srv.URL+"/api/v1", WithToken(testutil.Token(t, ada)))

	t.Run("status", func(t *testing.T) {
		active, err := client.SetStatus(ctx, "ada", Favorites, game.ID, true)
		require.NoError(t, err)
		assert.True(t, active)

		detail, err := client.GetGame(ctx, game.ID)
		require.NoError(t, err)
		assert.True(t, detail.IsFavorite)

		active, err = client.SetStatus(ctx, "ada", Favorites, game.ID, false)
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("lists", func(t *testing.T) {
		list, err := client.CreateList(ctx, "Backlog")
		require.NoError(t, err)

		require.NoError(t, client.AddGameToList(ctx, list.ID, game.ID))
		err = client.AddGameToList(ctx, list.ID, game.ID)
		require.ErrorIs(t, err, failure.ErrConflict)
		assert.Equal(t, "Game already in list", failure.UserMessage(err))

		renamed, err := client.RenameList(ctx, list.ID, "Later")
		require.NoError(t, err)
		assert.Equal(t, "Later", renamed.Name)

		_, err = client.CreateList(ctx, "  ")
		require.ErrorIs(t, err, failure.ErrValidation)
		assert.Equal(t, "name: is required", failure.UserMessage(err))

		lists, err := client.GetUserLists(ctx, "ada")
		require.NoError(t, err)
		require.Len(t, lists, 1)
		require.Len(t, lists[0].Games, 1)

		require.NoError(t, client.RemoveGameFromList(ctx, list.ID, game.ID))
		require.NoError(t, client.DeleteList(ctx, list.ID))

		err = client.AddGameToList(ctx, list.ID, game.ID)
		require.ErrorIs(t, err, failure.ErrNotFound)
		assert.Equal(t, "List not found", failure.UserMessage(err))
	})

	t.Run("hall of fame", func(t *testing.T) {
		result, err := client.UpdateHallOfFame(ctx, "ada", []HallOfFameEntry{{ID: game.ID, Position: 2}, {ID: 999, Position: 3}})
		require.NoError(t, err)
		assert.True(t, result.Success)
		require.Len(t, result.UpdatedFavorites, 5)
		assert.Nil(t, result.UpdatedFavorites[0])
		require.NotNil(t, result.UpdatedFavorites[1])
		assert.Equal(t, game.ID, result.UpdatedFavorites[1].ID)
		assert.Nil(t, result.UpdatedFavorites[2])

		slots, err := client.GetHallOfFame(ctx, "ada")
		require.NoError(t, err)
		require.Len(t, slots, 5)
		assert.Equal(t, game.ID, slots[1].ID)

		result, err = client.UpdateHallOfFame(ctx, "ada", nil)
		require.NoError(t, err)
		assert.Equal(t, make([]*Game, 5), result.UpdatedFavorites)
	})
}

func TestReviewLikes(t *testing.T) {
	srv, db := newServer(t)
	ctx := context.Background()
	ada := testutil.CreateUser(t, db, "ada")
	bob := testutil.CreateUser(t, db, "bob")
	game := testutil.CreateGame(t, db, "Tunic")
	review := testutil.CreateReview(t, db, ada, game)

	bobClient := New(srv.URL+"/api/v1", WithToken(testutil.Token(t, bob)))
	state, err := bobClient.ToggleReviewLike(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, LikeState{Likes: 1, IsLiked: true}, state)

	reviews, err := bobClient.GetGameReviews(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.True(t, reviews[0].IsLiked)

	adaClient := New(srv.URL+"/api/v1", WithToken(testutil.Token(t, ada)))
	_, err = adaClient.ToggleReviewLike(ctx, review.ID)
	assert.ErrorIs(t, err, failure.ErrValidation)
}

func TestTransportFailures(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer slow.Close()
		defer close(release)

		client := New(slow.URL, WithTimeout(50*time.Millisecond))
		_, err := client.ToggleReviewLike(context.Background(), 1)
		assert.Equal(t, failure.Timeout, failure.KindOf(err))
	})

	t.Run("connection refused", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		url := dead.URL
		dead.Close()

		_, err := New(url).ToggleReviewLike(context.Background(), 1)
		assert.Equal(t, failure.NetworkError, failure.KindOf(err))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		srv, _ := newServer(t)
		_, err := New(srv.URL+"/api/v1").CreateList(context.Background(), "Backlog")
		require.ErrorIs(t, err, failure.ErrUnauthenticated)

		var fe *failure.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, http.StatusUnauthorized, fe.Status)
		assert.Equal(t, "Authentication required", fe.Message)
	})

	t.Run("non-json error body", func(t *testing.T) {
		broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer broken.Close()

		err := New(broken.URL).DeleteList(context.Background(), 1)
		assert.ErrorIs(t, err, failure.ErrServer)
	})
}
