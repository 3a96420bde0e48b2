package shelf

import (
	"context"
	"net/http"
	"sync"

	"gameshelf/backend/pkg/apiclient"
	"gameshelf/backend/pkg/failure"
)

type statusFact struct {
	kind   apiclient.StatusKind
	gameID uint
}

type membership struct {
	listID, gameID uint
}

// fakeRemote keeps server state in memory. Errors can be injected per method,
// and requests can be held until release is called.
type fakeRemote struct {
	mu      sync.Mutex
	calls   map[string]int
	fail    map[string]error
	gate    chan struct{}
	entered chan string

	statuses   map[statusFact]bool
	likes      map[uint]apiclient.LikeState
	lists      []apiclient.List
	nextListID uint
	members    map[membership]bool
	hof        []*apiclient.Game
	hofEcho    bool
	reviews    []apiclient.Review
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		calls:      map[string]int{},
		fail:       map[string]error{},
		statuses:   map[statusFact]bool{},
		likes:      map[uint]apiclient.LikeState{},
		nextListID: 1,
		members:    map[membership]bool{},
		hof:        make([]*apiclient.Game, HallOfFameSize),
	}
}

func (r *fakeRemote) failWith(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[method] = err
}

// hold makes subsequent requests block after announcing themselves on entered.
func (r *fakeRemote) hold() (entered <-chan string, release func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gate = make(chan struct{})
	r.entered = make(chan string, 16)
	gate := r.gate
	var once sync.Once
	return r.entered, func() { once.Do(func() { close(gate) }) }
}

func (r *fakeRemote) count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

func (r *fakeRemote) enter(method string) error {
	r.mu.Lock()
	r.calls[method]++
	err, gate, entered := r.fail[method], r.gate, r.entered
	r.mu.Unlock()

	if entered != nil {
		entered <- method
	}
	if gate != nil {
		<-gate
	}
	return err
}

func (r *fakeRemote) SetStatus(_ context.Context, _ string, kind apiclient.StatusKind, gameID uint, active bool) (bool, error) {
	if err := r.enter("SetStatus"); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[statusFact{kind, gameID}] = active
	return active, nil
}

func (r *fakeRemote) ToggleReviewLike(_ context.Context, reviewID uint) (apiclient.LikeState, error) {
	if err := r.enter("ToggleReviewLike"); err != nil {
		return apiclient.LikeState{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.likes[reviewID]
	if state.IsLiked {
		state = apiclient.LikeState{Likes: state.Likes - 1}
	} else {
		state = apiclient.LikeState{Likes: state.Likes + 1, IsLiked: true}
	}
	r.likes[reviewID] = state
	return state, nil
}

func (r *fakeRemote) GetGameReviews(context.Context, uint) ([]apiclient.Review, error) {
	if err := r.enter("GetGameReviews"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]apiclient.Review(nil), r.reviews...), nil
}

func (r *fakeRemote) GetGame(_ context.Context, gameID uint) (apiclient.GameDetail, error) {
	if err := r.enter("GetGame"); err != nil {
		return apiclient.GameDetail{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return apiclient.GameDetail{
		Game:         apiclient.Game{ID: gameID},
		IsFavorite:   r.statuses[statusFact{apiclient.Favorites, gameID}],
		IsInWishlist: r.statuses[statusFact{apiclient.Wishlist, gameID}],
		IsCompleted:  r.statuses[statusFact{apiclient.Completed, gameID}],
	}, nil
}

func (r *fakeRemote) GetUserLists(context.Context, string) ([]apiclient.List, error) {
	if err := r.enter("GetUserLists"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]apiclient.List, 0, len(r.lists))
	for _, l := range r.lists {
		for m := range r.members {
			if m.listID == l.ID {
				l.Games = append(l.Games, apiclient.Game{ID: m.gameID})
			}
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeRemote) CreateList(_ context.Context, name string) (apiclient.List, error) {
	if err := r.enter("CreateList"); err != nil {
		return apiclient.List{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	l := apiclient.List{ID: r.nextListID, Name: name}
	r.nextListID++
	r.lists = append(r.lists, l)
	return l, nil
}

func (r *fakeRemote) RenameList(_ context.Context, listID uint, name string) (apiclient.List, error) {
	if err := r.enter("RenameList"); err != nil {
		return apiclient.List{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lists {
		if r.lists[i].ID == listID {
			r.lists[i].Name = name
			return r.lists[i], nil
		}
	}
	return apiclient.List{}, failure.FromStatus(http.StatusNotFound, "List not found", nil)
}

func (r *fakeRemote) DeleteList(_ context.Context, listID uint) error {
	if err := r.enter("DeleteList"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lists {
		if r.lists[i].ID == listID {
			r.lists = append(r.lists[:i], r.lists[i+1:]...)
			return nil
		}
	}
	return failure.FromStatus(http.StatusNotFound, "List not found", nil)
}

func (r *fakeRemote) AddGameToList(_ context.Context, listID, gameID uint) error {
	if err := r.enter("AddGameToList"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m := membership{listID, gameID}
	if r.members[m] {
		return failure.FromStatus(http.StatusConflict, "Game already in list", nil)
	}
	r.members[m] = true
	return nil
}

func (r *fakeRemote) RemoveGameFromList(_ context.Context, listID, gameID uint) error {
	if err := r.enter("RemoveGameFromList"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m := membership{listID, gameID}
	if !r.members[m] {
		return failure.FromStatus(http.StatusNotFound, "Game not in list", nil)
	}
	delete(r.members, m)
	return nil
}

func (r *fakeRemote) GetHallOfFame(context.Context, string) ([]*apiclient.Game, error) {
	if err := r.enter("GetHallOfFame"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*apiclient.Game(nil), r.hof...), nil
}

func (r *fakeRemote) UpdateHallOfFame(_ context.Context, _ string, entries []apiclient.HallOfFameEntry) (apiclient.HallOfFameResult, error) {
	if err := r.enter("UpdateHallOfFame"); err != nil {
		return apiclient.HallOfFameResult{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hof = make([]*apiclient.Game, HallOfFameSize)
	for _, e := range entries {
		r.hof[e.Position-1] = &apiclient.Game{ID: e.ID}
	}
	res := apiclient.HallOfFameResult{Success: true}
	if r.hofEcho {
		res.UpdatedFavorites = append([]*apiclient.Game(nil), r.hof...)
	}
	return res, nil
}

func (r *fakeRemote) setHallOfFame(ids ...uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hof = make([]*apiclient.Game, HallOfFameSize)
	for i, id := range ids {
		if id != 0 {
			r.hof[i] = &apiclient.Game{ID: id}
		}
	}
}

// successless answers every Hall of Fame update with success false.
type successless struct {
	*fakeRemote
}

func (successless) UpdateHallOfFame(context.Context, string, []apiclient.HallOfFameEntry) (apiclient.HallOfFameResult, error) {
	return apiclient.HallOfFameResult{Success: false}, nil
}

func apiclientLike(likes int64, liked bool) apiclient.LikeState {
	return apiclient.LikeState{Likes: likes, IsLiked: liked}
}

func reviewWithLikes(id uint, likes int64, liked bool) apiclient.Review {
	return apiclient.Review{ID: id, Likes: likes, IsLiked: liked}
}
