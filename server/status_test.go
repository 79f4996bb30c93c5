package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	utils "drawpoker/internal"
)

func TestStatusEndpoint(t *testing.T) {
	t.Run("serves the latest snapshot", func(t *testing.T) {
		feed := NewFeed()
		feed.Publish(Status{Phase: "bidding", Seats: 3, Seated: 3, Pot: 60})

		response := httptest.NewRecorder()
		request, _ := http.NewRequest(http.MethodGet, "/status", nil)

		feed.Handler().ServeHTTP(response, request)

		assert.Equal(t, http.StatusOK, response.Code)

		var got Status
		utils.AssertNoError(t, json.NewDecoder(response.Body).Decode(&got))
		utils.AssertEqual(t, got.Phase, "bidding")
		utils.AssertEqual(t, got.Pot, 60)
	})

	t.Run("does not match on POST", func(t *testing.T) {
		response := httptest.NewRecorder()
		request, _ := http.NewRequest(http.MethodPost, "/status", nil)

		NewFeed().Handler().ServeHTTP(response, request)

		assert.Equal(t, http.StatusNotFound, response.Code)
	})
}

func TestFeedPushesSnapshots(t *testing.T) {
	feed := NewFeed()
	server := httptest.NewServer(feed.Handler())
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		feed.mu.Lock()
		defer feed.mu.Unlock()
		return len(feed.conns) == 1
	}, time.Second, 10*time.Millisecond)

	feed.Publish(Status{Phase: "showdown", Pot: 90})

	var got Status
	utils.AssertNoError(t, conn.ReadJSON(&got))
	utils.AssertEqual(t, got.Phase, "showdown")
	utils.AssertEqual(t, got.Pot, 90)
}
