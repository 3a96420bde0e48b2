package shelf

import (
	"context"
	"math/rand/v2"
	"net/http"
	"slices"
	"sync"
	"testing"

	"gameshelf/backend/pkg/apiclient"
	"gameshelf/backend/pkg/failure"
	"gameshelf/backend/pkg/optimistic"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type notices struct {
	mu  sync.Mutex
	all []optimistic.Notice
}

func (n *notices) Notify(notice optimistic.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.all = append(n.all, notice)
}

func (n *notices) last() optimistic.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.all) == 0 {
		return optimistic.Notice{}
	}
	return n.all[len(n.all)-1]
}

var ada = User{ID: 42, Name: "ada"}

func newSession(t *testing.T) (*Session, *fakeRemote, *notices) {
	t.Helper()
	remote := newFakeRemote()
	rec := &notices{}
	s := NewSession(remote, WithNotifier(rec))
	s.SignIn(ada)
	return s, remote, rec
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed", func(t *testing.T) {
		s, remote, rec := newSession(t)
		res := s.ToggleFavorite(ctx, 42)
		assert.Equal(t, optimistic.Confirmed, res.Status)
		assert.True(t, res.Value)
		assert.True(t, s.HasStatus(Favorite, 42))
		assert.False(t, s.HasStatus(Wishlist, 42), "statuses are independent")
		assert.Equal(t, optimistic.Confirmed, rec.last().Status)
		assert.Equal(t, 1, remote.count("SetStatus"))
	})

	t.Run("visible before the response", func(t *testing.T) {
		s, remote, _ := newSession(t)
		entered, release := remote.hold()
		done := make(chan optimistic.Result[bool])
		go func() { done <- s.ToggleFavorite(ctx, 42) }()

		<-entered
		assert.True(t, s.HasStatus(Favorite, 42))
		assert.True(t, s.Pending(StatusKey(Favorite, ada.ID, 42)))
		release()
		assert.Equal(t, optimistic.Confirmed, (<-done).Status)
	})

	t.Run("network failure reverts", func(t *testing.T) {
		s, remote, rec := newSession(t)
		remote.failWith("SetStatus", failure.New(failure.NetworkError, "connection refused"))

		res := s.ToggleFavorite(ctx, 42)
		assert.Equal(t, optimistic.RolledBack, res.Status)
		assert.False(t, res.Value)
		assert.False(t, s.HasStatus(Favorite, 42))
		assert.Equal(t, failure.NetworkError, rec.last().Kind)
		assert.Equal(t, "Something went wrong. Please try again.", rec.last().Message)
	})

	t.Run("expired session reverts with login message", func(t *testing.T) {
		s, remote, rec := newSession(t)
		remote.failWith("SetStatus", failure.FromStatus(http.StatusUnauthorized, "Invalid token", nil))

		res := s.ToggleWishlist(ctx, 5)
		assert.Equal(t, optimistic.RolledBack, res.Status)
		assert.ErrorIs(t, res.Err, failure.ErrUnauthenticated)
		assert.Equal(t, "Your session has expired. Please log in again.", rec.last().Message)
	})

	t.Run("double toggle restores", func(t *testing.T) {
		s, _, _ := newSession(t)
		s.ToggleCompleted(ctx, 9)
		s.ToggleCompleted(ctx, 9)
		assert.False(t, s.HasStatus(Completed, 9))
	})

	t.Run("signed out is rejected locally", func(t *testing.T) {
		s, remote, _ := newSession(t)
		s.SignOut()
		res := s.ToggleFavorite(ctx, 42)
		assert.Equal(t, optimistic.Rejected, res.Status)
		assert.ErrorIs(t, res.Err, failure.ErrUnauthenticated)
		assert.Zero(t, remote.count("SetStatus"))
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		s, remote, _ := newSession(t)
		res := s.ToggleStatus(ctx, Status("played"), 42)
		assert.Equal(t, optimistic.Rejected, res.Status)
		assert.ErrorIs(t, res.Err, failure.ErrValidation)
		assert.Zero(t, remote.count("SetStatus"))
	})
}

func TestSingleOperationPerKey(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := newSession(t)
	entered, release := remote.hold()
	defer release()

	done := make(chan optimistic.Result[bool])
	go func() { done <- s.ToggleFavorite(ctx, 42) }()
	<-entered

	second := s.ToggleFavorite(ctx, 42)
	assert.Equal(t, optimistic.Ignored, second.Status)
	assert.True(t, second.Value, "ignored gesture reports the pending optimistic value")
	assert.Equal(t, 1, remote.count("SetStatus"))

	release()
	assert.Equal(t, optimistic.Confirmed, (<-done).Status)
	assert.True(t, s.HasStatus(Favorite, 42))
}

func TestSignOutDiscardsInFlight(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := newSession(t)
	entered, release := remote.hold()

	done := make(chan optimistic.Result[bool])
	go func() { done <- s.ToggleFavorite(ctx, 42) }()
	<-entered
	s.SignOut()
	release()

	assert.Equal(t, optimistic.Discarded, (<-done).Status)
	assert.Empty(t, s.Store().Keys())
}

func TestToggleReviewLike(t *testing.T) {
	ctx := context.Background()

	t.Run("server count wins", func(t *testing.T) {
		s, remote, _ := newSession(t)
		remote.likes[9] = apiclientLike(3, false)
		s.Store().Seed(LikeKey(9), Like{Count: 1})

		res := s.ToggleReviewLike(ctx, ReviewRef{ID: 9, AuthorID: 7})
		assert.Equal(t, optimistic.Confirmed, res.Status)
		assert.Equal(t, Like{Count: 4, Liked: true}, res.Value)

		res = s.ToggleReviewLike(ctx, ReviewRef{ID: 9, AuthorID: 7})
		assert.Equal(t, Like{Count: 3, Liked: false}, res.Value)
	})

	t.Run("own review is rejected", func(t *testing.T) {
		s, remote, rec := newSession(t)
		res := s.ToggleReviewLike(ctx, ReviewRef{ID: 9, AuthorID: ada.ID})
		assert.Equal(t, optimistic.Rejected, res.Status)
		assert.ErrorIs(t, res.Err, failure.ErrSelfLike)
		assert.Equal(t, "You cannot like your own review", rec.last().Message)
		assert.Zero(t, remote.count("ToggleReviewLike"))
		_, ok := s.ReviewLike(9)
		assert.False(t, ok)
	})

	t.Run("failure restores count", func(t *testing.T) {
		s, remote, _ := newSession(t)
		s.Store().Seed(LikeKey(9), Like{Count: 5, Liked: true})
		remote.failWith("ToggleReviewLike", failure.FromStatus(http.StatusInternalServerError, "", nil))

		res := s.ToggleReviewLike(ctx, ReviewRef{ID: 9, AuthorID: 7})
		assert.Equal(t, optimistic.RolledBack, res.Status)
		like, _ := s.ReviewLike(9)
		assert.Equal(t, Like{Count: 5, Liked: true}, like)
	})

	t.Run("optimistic unlike never goes negative", func(t *testing.T) {
		s, remote, _ := newSession(t)
		s.Store().Seed(LikeKey(9), Like{Count: 0, Liked: true})
		entered, release := remote.hold()
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.ToggleReviewLike(ctx, ReviewRef{ID: 9, AuthorID: 7})
		}()
		<-entered
		like, _ := s.ReviewLike(9)
		assert.Equal(t, Like{Count: 0, Liked: false}, like)
		release()
		<-done
	})
}

func TestLists(t *testing.T) {
	ctx := context.Background()

	t.Run("blank name rejected without a request", func(t *testing.T) {
		s, remote, rec := newSession(t)
		res := s.CreateList(ctx, "   ")
		assert.Equal(t, optimistic.Rejected, res.Status)
		assert.ErrorIs(t, res.Err, failure.ErrEmptyName)
		assert.Equal(t, "List name cannot be empty", rec.last().Message)
		assert.Zero(t, remote.count("CreateList"))
		assert.Empty(t, s.Lists())
	})

	t.Run("create shows provisional entry then server id", func(t *testing.T) {
		s, remote, _ := newSession(t)
		entered, release := remote.hold()
		done := make(chan optimistic.Result[[]List])
		go func() { done <- s.CreateList(ctx, "  Backlog ") }()

		<-entered
		assert.Equal(t, []List{{Name: "Backlog"}}, s.Lists())
		release()

		res := <-done
		assert.Equal(t, optimistic.Confirmed, res.Status)
		assert.Equal(t, []List{{ID: 1, Name: "Backlog"}}, s.Lists())
	})

	t.Run("rename and delete", func(t *testing.T) {
		s, _, _ := newSession(t)
		s.CreateList(ctx, "Backlog")
		s.CreateList(ctx, "Done")

		res := s.RenameList(ctx, 1, "Queue")
		assert.Equal(t, optimistic.Confirmed, res.Status)
		assert.Equal(t, []List{{ID: 1, Name: "Queue"}, {ID: 2, Name: "Done"}}, s.Lists())

		res = s.DeleteList(ctx, 2)
		assert.Equal(t, optimistic.Confirmed, res.Status)
		assert.Equal(t, []List{{ID: 1, Name: "Queue"}}, s.Lists())
	})

	t.Run("failed delete restores the list", func(t *testing.T) {
		s, _, rec := newSession(t)
		s.CreateList(ctx, "Backlog")

		res := s.DeleteList(ctx, 99)
		assert.Equal(t, optimistic.RolledBack, res.Status)
		assert.Equal(t, []List{{ID: 1, Name: "Backlog"}}, s.Lists())
		assert.Equal(t, "List not found", rec.last().Message)
	})

	t.Run("rename to blank rejected", func(t *testing.T) {
		s, remote, _ := newSession(t)
		res := s.RenameList(ctx, 1, "\t")
		assert.ErrorIs(t, res.Err, failure.ErrEmptyName)
		assert.Zero(t, remote.count("RenameList"))
	})
}

func TestListMembership(t *testing.T) {
	ctx := context.Background()

	t.Run("adding twice conflicts and keeps membership", func(t *testing.T) {
		s, remote, rec := newSession(t)

		first := s.AddToList(ctx, 3, 7)
		assert.Equal(t, optimistic.Confirmed, first.Status)
		assert.True(t, s.InList(3, 7))

		second := s.AddToList(ctx, 3, 7)
		assert.Equal(t, optimistic.RolledBack, second.Status)
		assert.ErrorIs(t, second.Err, failure.ErrConflict)
		assert.Equal(t, "Game already in list", rec.last().Message)
		assert.True(t, s.InList(3, 7))
		assert.Equal(t, 2, remote.count("AddGameToList"))
	})

	t.Run("remove", func(t *testing.T) {
		s, _, _ := newSession(t)
		s.AddToList(ctx, 3, 7)
		res := s.RemoveFromList(ctx, 3, 7)
		assert.Equal(t, optimistic.Confirmed, res.Status)
		assert.False(t, s.InList(3, 7))

		res = s.RemoveFromList(ctx, 3, 7)
		assert.Equal(t, optimistic.RolledBack, res.Status)
		assert.ErrorIs(t, res.Err, failure.ErrNotFound)
		assert.False(t, s.InList(3, 7))
	})

	t.Run("load seeds lists and memberships", func(t *testing.T) {
		s, remote, _ := newSession(t)
		_, _ = remote.CreateList(ctx, "Backlog")
		_ = remote.AddGameToList(ctx, 1, 7)

		lists, err := s.LoadLists(ctx)
		require.NoError(t, err)
		assert.Equal(t, []List{{ID: 1, Name: "Backlog"}}, lists)
		assert.Equal(t, lists, s.Lists())
		assert.True(t, s.InList(1, 7))
		assert.False(t, s.InList(1, 8))
	})
}

func TestHallOfFame(t *testing.T) {
	ctx := context.Background()
	const a, b = 11, 22

	load := func(t *testing.T, ids ...uint) (*Session, *fakeRemote, *notices) {
		t.Helper()
		s, remote, rec := newSession(t)
		remote.setHallOfFame(ids...)
		_, err := s.LoadHallOfFame(ctx)
		require.NoError(t, err)
		return s, remote, rec
	}

	t.Run("drop onto occupied slot swaps", func(t *testing.T) {
		s, _, _ := load(t, a, 0, b)
		res := s.DropHallOfFame(ctx, 1, 3)
		assert.Equal(t, optimistic.Confirmed, res.Status)
		if diff := cmp.Diff(Slots{b, 0, a, 0, 0}, s.HallOfFame()); diff != "" {
			t.Errorf("slots mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejected drop restores order", func(t *testing.T) {
		s, remote, rec := load(t, a, 0, b)
		remote.failWith("UpdateHallOfFame", failure.FromStatus(http.StatusUnprocessableEntity, "Validation failed",
			map[string]string{"games[1].position": "is duplicated"}))

		res := s.DropHallOfFame(ctx, 1, 3)
		assert.Equal(t, optimistic.RolledBack, res.Status)
		if diff := cmp.Diff(Slots{a, 0, b, 0, 0}, s.HallOfFame()); diff != "" {
			t.Errorf("slots mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, "games[1].position: is duplicated", rec.last().Message)
	})

	t.Run("server array wins when sent", func(t *testing.T) {
		s, remote, _ := load(t, a, 0, b)
		remote.hofEcho = true
		res := s.DropHallOfFame(ctx, 3, 2)
		assert.Equal(t, Slots{a, b, 0, 0, 0}, res.Value)
	})

	t.Run("invalid drops are rejected locally", func(t *testing.T) {
		s, remote, _ := load(t, a, 0, b)
		for _, tc := range []struct{ from, to int }{{0, 1}, {1, 6}, {2, 1}, {3, 3}} {
			res := s.DropHallOfFame(ctx, tc.from, tc.to)
			assert.Equal(t, optimistic.Rejected, res.Status, "drop %d->%d", tc.from, tc.to)
			assert.ErrorIs(t, res.Err, failure.ErrValidation)
		}
		assert.Zero(t, remote.count("UpdateHallOfFame"))
	})

	t.Run("placing a shown game elsewhere is a duplicate", func(t *testing.T) {
		s, remote, rec := load(t, a, 0, b)
		res := s.PlaceInHallOfFame(ctx, 2, a)
		assert.Equal(t, optimistic.Rejected, res.Status)
		assert.ErrorIs(t, res.Err, failure.ErrDuplicateEntry)
		assert.Equal(t, "This game is already in your Hall of Fame", rec.last().Message)
		assert.Zero(t, remote.count("UpdateHallOfFame"))
	})

	t.Run("placing a shown game at its own position is a duplicate", func(t *testing.T) {
		s, remote, _ := load(t, a, 0, b)
		res := s.PlaceInHallOfFame(ctx, 1, a)
		assert.Equal(t, optimistic.Rejected, res.Status)
		assert.ErrorIs(t, res.Err, failure.ErrDuplicateEntry)
		assert.Zero(t, remote.count("UpdateHallOfFame"))
		assert.Equal(t, Slots{a, 0, b, 0, 0}, s.HallOfFame())
	})

	t.Run("place and remove", func(t *testing.T) {
		s, _, _ := load(t, a)
		s.PlaceInHallOfFame(ctx, 5, b)
		assert.Equal(t, Slots{a, 0, 0, 0, b}, s.HallOfFame())
		s.RemoveFromHallOfFame(ctx, 1)
		assert.Equal(t, Slots{0, 0, 0, 0, b}, s.HallOfFame())
	})

	t.Run("unsuccessful update rolls back", func(t *testing.T) {
		s, remote, _ := load(t, a)
		s.remote = successless{remote}
		res := s.PlaceInHallOfFame(ctx, 2, b)
		assert.Equal(t, optimistic.RolledBack, res.Status)
		assert.ErrorIs(t, res.Err, failure.ErrServer)
		assert.Equal(t, Slots{a}, s.HallOfFame())
	})
}

func TestSwapPreservesGames(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		var s Slots
		for i := range s {
			if rng.IntN(3) > 0 {
				s[i] = uint(i + 1)
			}
		}
		from, to := rng.IntN(HallOfFameSize)+1, rng.IntN(HallOfFameSize)+1
		got := s.Swap(from, to)

		want := s.Games()
		have := got.Games()
		slices.Sort(want)
		slices.Sort(have)
		if diff := cmp.Diff(want, have); diff != "" {
			t.Fatalf("swap %d->%d of %v changed games (-want +got):\n%s", from, to, s, diff)
		}
		assert.Equal(t, s.At(from), got.At(to))
	}
}

func TestSeedSkipsPendingAndStaleLoads(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := newSession(t)
	key := StatusKey(Favorite, ada.ID, 42)
	entered, release := remote.hold()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.ToggleFavorite(ctx, 42)
	}()
	<-entered
	s.seed(s.Store().Mark(), key, false)
	assert.True(t, s.HasStatus(Favorite, 42), "load result must not overwrite a pending value")
	release()
	<-done

	stale := s.Store().Mark()
	s.SignIn(ada)
	s.seed(stale, key, true)
	_, ok := s.Store().Get(key)
	assert.False(t, ok, "load begun before sign-in is dropped")
}

// slowGame reads the server state, then waits before answering GetGame.
type slowGame struct {
	*fakeRemote
	read   chan struct{}
	resume chan struct{}
}

func (r slowGame) GetGame(ctx context.Context, gameID uint) (apiclient.GameDetail, error) {
	detail, err := r.fakeRemote.GetGame(ctx, gameID)
	close(r.read)
	<-r.resume
	return detail, err
}

func TestLoadDoesNotRevertConfirmedToggle(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := newSession(t)
	slow := slowGame{fakeRemote: remote, read: make(chan struct{}), resume: make(chan struct{})}
	s.remote = slow

	loaded := make(chan error)
	go func() {
		_, err := s.LoadGame(ctx, 42)
		loaded <- err
	}()
	<-slow.read

	res := s.ToggleFavorite(ctx, 42)
	require.Equal(t, optimistic.Confirmed, res.Status)
	close(slow.resume)
	require.NoError(t, <-loaded)

	assert.True(t, s.HasStatus(Favorite, 42), "load read before the toggle must not revert it")
	assert.True(t, remote.statuses[statusFact{apiclient.Favorites, 42}])

	s.remote = remote
	_, err := s.LoadGame(ctx, 42)
	require.NoError(t, err)
	assert.True(t, s.HasStatus(Favorite, 42))
}

func TestLoadGameSeedsStatuses(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := newSession(t)
	remote.statuses[statusFact{"wishlist", 42}] = true

	detail, err := s.LoadGame(ctx, 42)
	require.NoError(t, err)
	assert.True(t, detail.IsInWishlist)
	assert.True(t, s.HasStatus(Wishlist, 42))
	assert.False(t, s.HasStatus(Favorite, 42))

	res := s.ToggleWishlist(ctx, 42)
	assert.False(t, res.Value)
}

func TestLoadReviewsSeedsLikes(t *testing.T) {
	ctx := context.Background()
	s, remote, _ := newSession(t)
	remote.reviews = append(remote.reviews, reviewWithLikes(9, 3, true))

	_, err := s.LoadReviews(ctx, 1)
	require.NoError(t, err)
	like, ok := s.ReviewLike(9)
	require.True(t, ok)
	assert.Equal(t, Like{Count: 3, Liked: true}, like)
}
