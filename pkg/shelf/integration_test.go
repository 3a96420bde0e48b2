package shelf

import (
	"context"
	"net/http/httptest"
	"testing"

	"gameshelf/backend/internal/handler"
	"gameshelf/backend/internal/testutil"
	"gameshelf/backend/pkg/apiclient"
	"gameshelf/backend/pkg/failure"
	"gameshelf/backend/pkg/optimistic"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionAgainstServer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	srv := httptest.NewServer(handler.NewRouter(zap.NewNop(), nil))
	t.Cleanup(srv.Close)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "ada")
	other := testutil.CreateUser(t, db, "grace")
	celeste := testutil.CreateGame(t, db, "Celeste")
	hades := testutil.CreateGame(t, db, "Hades")
	review := testutil.CreateReview(t, db, other, celeste)
	own := testutil.CreateReview(t, db, user, hades)

	client := apiclient.New(srv.URL+"/api/v1",
		apiclient.WithHTTPClient(srv.Client()),
		apiclient.WithToken(testutil.Token(t, user)))
	rec := &notices{}
	s := NewSession(client, WithNotifier(rec))
	s.SignIn(User{ID: user.ID, Name: user.Name})

	t.Run("status round trip", func(t *testing.T) {
		res := s.ToggleFavorite(ctx, celeste.ID)
		require.Equal(t, optimistic.Confirmed, res.Status, res.Err)

		s.SignIn(User{ID: user.ID, Name: user.Name})
		detail, err := s.LoadGame(ctx, celeste.ID)
		require.NoError(t, err)
		assert.True(t, detail.IsFavorite)
		assert.True(t, s.HasStatus(Favorite, celeste.ID))
	})

	t.Run("unknown game rolls back", func(t *testing.T) {
		res := s.ToggleWishlist(ctx, 9999)
		assert.Equal(t, optimistic.RolledBack, res.Status)
		assert.ErrorIs(t, res.Err, failure.ErrNotFound)
		assert.False(t, s.HasStatus(Wishlist, 9999))
	})

	t.Run("lists and duplicate membership", func(t *testing.T) {
		res := s.CreateList(ctx, " Backlog ")
		require.Equal(t, optimistic.Confirmed, res.Status, res.Err)
		lists := s.Lists()
		require.Len(t, lists, 1)
		listID := lists[0].ID
		assert.NotZero(t, listID)

		assert.Equal(t, optimistic.Confirmed, s.AddToList(ctx, listID, celeste.ID).Status)
		dup := s.AddToList(ctx, listID, celeste.ID)
		assert.ErrorIs(t, dup.Err, failure.ErrConflict)
		assert.True(t, s.InList(listID, celeste.ID))
		assert.Equal(t, "Game already in list", rec.last().Message)

		loaded, err := s.LoadLists(ctx)
		require.NoError(t, err)
		assert.Equal(t, []List{{ID: listID, Name: "Backlog"}}, loaded)
	})

	t.Run("hall of fame drag", func(t *testing.T) {
		require.Equal(t, optimistic.Confirmed, s.PlaceInHallOfFame(ctx, 1, celeste.ID).Status)
		require.Equal(t, optimistic.Confirmed, s.PlaceInHallOfFame(ctx, 3, hades.ID).Status)

		res := s.DropHallOfFame(ctx, 1, 3)
		require.Equal(t, optimistic.Confirmed, res.Status, res.Err)
		assert.Equal(t, Slots{hades.ID, 0, celeste.ID, 0, 0}, s.HallOfFame())

		loaded, err := s.LoadHallOfFame(ctx)
		require.NoError(t, err)
		assert.Equal(t, Slots{hades.ID, 0, celeste.ID, 0, 0}, loaded)
	})

	t.Run("review likes", func(t *testing.T) {
		_, err := s.LoadReviews(ctx, celeste.ID)
		require.NoError(t, err)

		res := s.ToggleReviewLike(ctx, ReviewRef{ID: review.ID, AuthorID: other.ID})
		require.Equal(t, optimistic.Confirmed, res.Status, res.Err)
		assert.Equal(t, Like{Count: 1, Liked: true}, res.Value)

		self := s.ToggleReviewLike(ctx, ReviewRef{ID: own.ID, AuthorID: user.ID})
		assert.Equal(t, optimistic.Rejected, self.Status)
	})
}
