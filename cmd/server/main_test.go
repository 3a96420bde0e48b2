package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"gameshelf/backend/internal/handler"
	"gameshelf/backend/internal/hub"
	"gameshelf/backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServeShutsDownWithOpenEventStream(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	author := testutil.CreateUser(t, db, "grace")
	review := testutil.CreateReview(t, db, author, testutil.CreateGame(t, db, "Tunic"))

	events := hub.GlobalHub
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: handler.NewRouter(zap.NewNop(), nil), ReadHeaderTimeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, ln, events, zap.NewNop()) }()

	url := fmt.Sprintf("http://%s/api/v1/reviews/%d/events", ln.Addr(), review.ID)
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "event:"), line)
	require.Eventually(t, func() bool { return events.Subscribers(review.ID) == 1 },
		time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownTimeout / 2):
		t.Fatal("shutdown waited on the event stream")
	}

	_, err = io.Copy(io.Discard, resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, 0, events.Subscribers(review.ID))
}
