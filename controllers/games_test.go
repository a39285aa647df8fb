package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kamalbuilds/pizza-panic-sub000/config"
	game_constants "github.com/kamalbuilds/pizza-panic-sub000/constants/game"
	"github.com/kamalbuilds/pizza-panic-sub000/middleware"
	"github.com/kamalbuilds/pizza-panic-sub000/services/registry"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGameConfig() *config.GameConfig {
	return &config.GameConfig{
		MinPlayers:            5,
		MaxPlayers:            10,
		MaxRounds:             10,
		DiscussionDuration:    3 * time.Minute,
		VotingDuration:        90 * time.Second,
		AutoStartDelay:        time.Hour, // never fires inside a test
		InvestigationAccuracy: 1.0,
		ImpostorBrackets: []game_constants.ImpostorBracket{
			{MaxPlayers: 6, Count: 1},
			{MaxPlayers: 9, Count: 2},
			{MaxPlayers: 10, Count: 3},
		},
	}
}

func setupTestRouter(t *testing.T) (*gin.Engine, *registry.GameRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	reg, err := registry.NewGameRegistry(registry.Options{Config: testGameConfig()})
	require.NoError(t, err)

	router := gin.New()
	router.GET("/ping", Ping)
	router.POST("/register", Register())

	public := router.Group("/")
	public.Use(middleware.AuthOptional)
	{
		public.GET("/games", ListGames(reg))
		public.GET("/games/:id", GetGameState(reg))
		public.GET("/games/:id/verify", VerifyReveal())
	}

	auth := router.Group("/auth")
	auth.Use(middleware.AuthRequired)
	{
		auth.POST("/games", CreateGame(reg))
		auth.POST("/games/:id/join", JoinGame(reg))
		auth.POST("/games/:id/leave", LeaveGame(reg))
		auth.POST("/games/:id/start", StartGame(reg))
		auth.POST("/games/:id/message", PostMessage(reg))
		auth.POST("/games/:id/vote", CastVote(reg))
	}
	return router, reg
}

func doJSON(t *testing.T, router *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, address, name string) string {
	t.Helper()
	token, err := middleware.IssueToken(address, name)
	require.NoError(t, err)
	return token
}

func TestPing(t *testing.T) {
	router, _ := setupTestRouter(t)
	w := doJSON(t, router, "GET", "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestRegisterIssuesToken(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/register", "", gin.H{"address": "0xabc", "name": "alice"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])

	claims, err := middleware.DecodeToken(resp["token"])
	require.NoError(t, err)
	assert.Equal(t, "0xabc", claims.Address)
	assert.Equal(t, "alice", claims.Name)
}

func TestRegisterRequiresAddress(t *testing.T) {
	router, _ := setupTestRouter(t)
	w := doJSON(t, router, "POST", "/register", "", gin.H{"name": "anon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doJSON(t, router, "POST", "/auth/games", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, "POST", "/auth/games", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateJoinAndState(t *testing.T) {
	router, _ := setupTestRouter(t)
	alice := tokenFor(t, "0xa", "alice")

	w := doJSON(t, router, "POST", "/auth/games", alice, gin.H{"stakes": "50 tokens"})
	require.Equal(t, http.StatusOK, w.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	gameID := created["game_id"]
	require.NotEmpty(t, gameID)

	w = doJSON(t, router, "POST", "/auth/games/"+gameID+"/join", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Duplicate join rejected.
	w = doJSON(t, router, "POST", "/auth/games/"+gameID+"/join", alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, "GET", "/games/"+gameID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state struct {
		Phase   string `json:"phase"`
		Stakes  string `json:"stakes"`
		Players []struct {
			Address string `json:"address"`
			Name    string `json:"name"`
		} `json:"players"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "lobby", state.Phase)
	assert.Equal(t, "50 tokens", state.Stakes)
	require.Len(t, state.Players, 1)
	assert.Equal(t, "0xa", state.Players[0].Address)
	assert.Equal(t, "alice", state.Players[0].Name)
}

func TestStartRejectsNonPlayersAndShortLobbies(t *testing.T) {
	router, reg := setupTestRouter(t)
	alice := tokenFor(t, "0xa", "alice")
	outsider := tokenFor(t, "0xz", "mallory")

	g, err := reg.CreateGame("", nil)
	require.NoError(t, err)
	require.True(t, reg.JoinGame(g.ID, "0xa", "alice"))

	w := doJSON(t, router, "POST", "/auth/games/"+g.ID+"/start", outsider, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, "POST", "/auth/games/"+g.ID+"/start", alice, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "below minimum players")
}

func TestMessageEndpoint(t *testing.T) {
	router, reg := setupTestRouter(t)
	alice := tokenFor(t, "0xa", "alice")

	g, err := reg.CreateGame("", nil)
	require.NoError(t, err)
	for i, a := range []string{"0xa", "0xb", "0xc", "0xd", "0xe"} {
		require.True(t, reg.JoinGame(g.ID, a, ""), "join %d", i)
	}
	require.NoError(t, reg.StartGame(g.ID))

	w := doJSON(t, router, "POST", "/auth/games/"+g.ID+"/message", alice, gin.H{"content": "order up"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", "/auth/games/"+g.ID+"/message", alice, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Voting is closed during discussion.
	w = doJSON(t, router, "POST", "/auth/games/"+g.ID+"/vote", alice, gin.H{"target": "0xb"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGameNotFound(t *testing.T) {
	router, _ := setupTestRouter(t)
	alice := tokenFor(t, "0xa", "alice")

	w := doJSON(t, router, "GET", "/games/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, "POST", "/auth/games/nope/message", alice, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyRevealEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := doJSON(t, router, "GET", "/games/g1/verify", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "GET", "/games/g1/verify?address=0xa&role=chef&salt=00&commitment=beef", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
}
