package broadcast

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kamalbuilds/pizza-panic-sub000/services/game"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(nil)
	router := gin.New()
	router.GET("/games/:id/events", hub.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialGame(t *testing.T, srv *httptest.Server, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/games/" + gameID + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesRoomSubscribers(t *testing.T) {
	hub, srv := wsTestServer(t)
	conn := dialGame(t, srv, "g1")

	require.Eventually(t, func() bool { return hub.RoomSize("g1") == 1 },
		time.Second, 10*time.Millisecond)

	hub.BroadcastEvent(game.Event{
		Type:      game.EventMessage,
		GameID:    "g1",
		Timestamp: time.Now(),
		Payload:   game.MessagePayload{Message: game.Message{Address: "0xa", Content: "hello", Round: 1}},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, game.EventMessage, env.Event.Type)
	assert.Equal(t, "g1", env.Event.GameID)
	assert.NotEmpty(t, env.Origin)
}

func TestBroadcastIsScopedToGameRoom(t *testing.T) {
	hub, srv := wsTestServer(t)
	other := dialGame(t, srv, "g2")

	require.Eventually(t, func() bool { return hub.RoomSize("g2") == 1 },
		time.Second, 10*time.Millisecond)

	hub.BroadcastEvent(game.Event{Type: game.EventPhaseChange, GameID: "g1", Timestamp: time.Now()})

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "subscriber of another game must receive nothing")
}

func TestDisconnectEmptiesRoom(t *testing.T) {
	hub, srv := wsTestServer(t)
	conn := dialGame(t, srv, "g1")

	require.Eventually(t, func() bool { return hub.RoomSize("g1") == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.RoomSize("g1") == 0 },
		time.Second, 10*time.Millisecond)
}
