package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, Unauthenticated},
		{http.StatusNotFound, NotFound},
		{http.StatusConflict, Conflict},
		{http.StatusUnprocessableEntity, ValidationFailure},
		{http.StatusBadRequest, ValidationFailure},
		{http.StatusGatewayTimeout, Timeout},
		{http.StatusForbidden, ServerError},
		{http.StatusTooManyRequests, ServerError},
		{http.StatusInternalServerError, ServerError},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "", nil)
			assert.Equal(t, tt.want, err.Kind)
			assert.Equal(t, tt.status, err.Status)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, Conflict, KindOf(fmt.Errorf("add: %w", New(Conflict, "Game already in list"))))
	assert.Equal(t, Timeout, KindOf(fmt.Errorf("post: %w", context.DeadlineExceeded)))
	assert.Equal(t, Timeout, KindOf(&net.OpError{Op: "dial", Err: timeoutErr{}}))
	assert.Equal(t, NetworkError, KindOf(errors.New("connection refused")))
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", FromStatus(http.StatusConflict, "Game already in list", nil))
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusConflict, fe.Status)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	original := New(EmptyName, "")
	assert.Same(t, original, Classify(original))

	cause := errors.New("dial tcp: connection refused")
	classified := Classify(cause)
	assert.Equal(t, NetworkError, classified.Kind)
	assert.ErrorIs(t, classified, cause)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"expired session", FromStatus(http.StatusUnauthorized, "Authentication required", nil), "Your session has expired. Please log in again."},
		{"conflict keeps server text", FromStatus(http.StatusConflict, "Game already in list", nil), "Game already in list"},
		{"conflict fallback", New(Conflict, ""), "Game already in list"},
		{"not found keeps server text", FromStatus(http.StatusNotFound, "List not found", nil), "List not found"},
		{
			"fields verbatim",
			FromStatus(http.StatusUnprocessableEntity, "Validation failed", map[string]string{"name": "is required", "games[1].id": "game is already in your Hall of Fame"}),
			"games[1].id: game is already in your Hall of Fame; name: is required",
		},
		{"duplicate", New(DuplicateEntry, ""), "This game is already in your Hall of Fame"},
		{"empty name", New(EmptyName, ""), "List name cannot be empty"},
		{"self like", New(SelfLike, ""), "You cannot like your own review"},
		{"server", FromStatus(http.StatusInternalServerError, "Failed to toggle like", nil), genericMessage},
		{"network", errors.New("connection reset"), genericMessage},
		{"timeout", context.DeadlineExceeded, genericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
