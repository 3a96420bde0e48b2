package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gameshelf/backend/internal/models"
	"gameshelf/backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	return &testEnv{t: t, db: db, router: NewRouter(zap.NewNop(), nil)}
}

// do sends a request as user (nil for anonymous) and returns the recorder.
func (e *testEnv) do(method, path string, user *models.User, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(e.t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", testutil.Bearer(e.t, *user))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/ping", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestStorageFailuresAnswer500(t *testing.T) {
	t.Run("list membership check", func(t *testing.T) {
		env := newTestEnv(t)
		ada := testutil.CreateUser(t, env.db, "ada")
		celeste := testutil.CreateGame(t, env.db, "Celeste")
		list := models.GameList{UserID: ada.ID, Name: "Backlog"}
		require.NoError(t, env.db.Create(&list).Error)
		require.NoError(t, env.db.Migrator().DropTable(&models.ListGame{}))

		w := env.do(http.MethodPost, fmt.Sprintf("/api/v1/lists/%d/games", list.ID), &ada, ListGameInput{GameID: celeste.ID})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to check list"}`, w.Body.String())
	})

	t.Run("review uniqueness check", func(t *testing.T) {
		env := newTestEnv(t)
		ada := testutil.CreateUser(t, env.db, "ada")
		tunic := testutil.CreateGame(t, env.db, "Tunic")
		require.NoError(t, env.db.Migrator().DropTable(&models.ReviewLike{}, &models.Review{}))

		w := env.do(http.MethodPost, fmt.Sprintf("/api/v1/games/%d/reviews", tunic.ID), &ada, ReviewInput{Rating: 4})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to check reviews"}`, w.Body.String())
	})

	t.Run("viewer likes lookup", func(t *testing.T) {
		env := newTestEnv(t)
		ada := testutil.CreateUser(t, env.db, "ada")
		grace := testutil.CreateUser(t, env.db, "grace")
		tunic := testutil.CreateGame(t, env.db, "Tunic")
		testutil.CreateReview(t, env.db, grace, tunic)
		require.NoError(t, env.db.Migrator().DropTable(&models.ReviewLike{}))

		path := fmt.Sprintf("/api/v1/games/%d/reviews", tunic.ID)
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, nil, nil).Code)
		w := env.do(http.MethodGet, path, &ada, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to load likes"}`, w.Body.String())
	})

	t.Run("closed database", func(t *testing.T) {
		env := newTestEnv(t)
		ada := testutil.CreateUser(t, env.db, "ada")
		list := models.GameList{UserID: ada.ID, Name: "Backlog"}
		require.NoError(t, env.db.Create(&list).Error)
		sqlDB, err := env.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		w := env.do(http.MethodGet, fmt.Sprintf("/api/v1/lists/%d", list.ID), nil, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		w = env.do(http.MethodGet, "/api/v1/games/1", nil, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
