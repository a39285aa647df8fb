package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kamalbuilds/pizza-panic-sub000/services/game"
	"github.com/kamalbuilds/pizza-panic-sub000/services/registry"

	"github.com/gin-gonic/gin"
)

type createGameRequest struct {
	Stakes       string          `json:"stakes"`
	ChainOptions json.RawMessage `json:"chain_options"`
}

// CreateGame opens a new lobby. Stakes and chain options are recorded opaque.
func CreateGame(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		// An empty body is a legal zero-stakes game.
		var req createGameRequest
		_ = c.ShouldBindJSON(&req)

		g, err := r.CreateGame(req.Stakes, req.ChainOptions)
		if err != nil {
			log.Printf("[API-ERROR] creating game: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error creating game"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"game_id": g.ID, "message": "Game created successfully"})
	}
}

// ListGames returns every live game as a spectator snapshot, merged with the
// most recent archived games when persistence is wired.
func ListGames(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		games := r.GetAllGames()
		views := make([]game.StateView, 0, len(games))
		for _, g := range games {
			views = append(views, g.GetState(""))
		}

		resp := gin.H{"games": views}
		if store := r.Store(); store != nil {
			if archived, err := store.ListCompletedGames(20); err != nil {
				log.Printf("[API-ERROR] listing archived games: %v", err)
			} else {
				resp["completed"] = archived
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetGameState returns the requester-tailored snapshot of one game. The
// caller's token, when present, widens visibility to their own role and
// investigation reports.
func GetGameState(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := r.GetGame(c.Param("id"))
		if !ok {
			// Evicted games fall through to the archive.
			if store := r.Store(); store != nil {
				if record, err := store.GetCompletedGame(c.Param("id")); err == nil {
					c.JSON(http.StatusOK, record)
					return
				}
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		c.JSON(http.StatusOK, g.GetState(c.GetString("address")))
	}
}

// MyGames returns the live games the authenticated agent participates in.
func MyGames(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.GetString("address")
		games := r.GetGamesByPlayer(address)
		views := make([]game.StateView, 0, len(games))
		for _, g := range games {
			views = append(views, g.GetState(address))
		}
		c.JSON(http.StatusOK, gin.H{"games": views})
	}
}

// JoinGame admits the authenticated agent to the lobby.
func JoinGame(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		address := c.GetString("address")
		if !r.JoinGame(gameID, address, c.GetString("name")) {
			c.JSON(http.StatusConflict, gin.H{"error": "cannot join game"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Joined game", "game_id": gameID})
	}
}

// LeaveGame withdraws the authenticated agent from a lobby.
func LeaveGame(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.LeaveGame(c.Param("id"), c.GetString("address")) {
			c.JSON(http.StatusConflict, gin.H{"error": "cannot leave game"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Left game"})
	}
}

// StartGame begins the match immediately instead of waiting for auto-start.
func StartGame(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		g, ok := r.GetGame(gameID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		if !g.HasPlayer(c.GetString("address")) {
			c.JSON(http.StatusForbidden, gin.H{"error": "only players can start the game"})
			return
		}

		if err := r.StartGame(gameID); err != nil {
			if errors.Is(err, game.ErrInsufficientPlayers) {
				c.JSON(http.StatusConflict, gin.H{"error": "not enough players"})
				return
			}
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Game started"})
	}
}

type messageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostMessage appends a discussion message from the authenticated agent.
func PostMessage(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := r.GetGame(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}

		var req messageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
			return
		}

		if !g.SubmitMessage(c.GetString("address"), req.Content) {
			c.JSON(http.StatusConflict, gin.H{"error": "message rejected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Message posted"})
	}
}

type targetRequest struct {
	Target string `json:"target" binding:"required"`
}

// Investigate runs the authenticated agent's once-per-round scan.
func Investigate(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := r.GetGame(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}

		var req targetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target is required"})
			return
		}

		result, accepted := g.Investigate(c.GetString("address"), req.Target)
		if !accepted {
			c.JSON(http.StatusConflict, gin.H{"error": "investigation rejected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"target": req.Target, "result": result})
	}
}

// CastVote records (or replaces) the authenticated agent's ballot.
func CastVote(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := r.GetGame(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}

		var req targetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target is required"})
			return
		}

		if !g.SubmitVote(c.GetString("address"), req.Target) {
			c.JSON(http.StatusConflict, gin.H{"error": "vote rejected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Vote recorded", "target": req.Target})
	}
}

// ForceEndPhase ends the current timed phase early. Players only.
func ForceEndPhase(r *registry.GameRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, ok := r.GetGame(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		if !g.HasPlayer(c.GetString("address")) {
			c.JSON(http.StatusForbidden, gin.H{"error": "only players can end a phase"})
			return
		}

		if !g.ForceEndPhase() {
			c.JSON(http.StatusConflict, gin.H{"error": "no timed phase in progress"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Phase ended"})
	}
}

// VerifyReveal re-checks a revealed (address, role, salt) tuple against the
// published commitment, so third parties can audit fairness.
func VerifyReveal() gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Param("id")
		address := c.Query("address")
		role := c.Query("role")
		salt := c.Query("salt")
		commitment := c.Query("commitment")
		if address == "" || role == "" || salt == "" || commitment == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address, role, salt and commitment are required"})
			return
		}

		valid := game.VerifyCommitment(gameID, address, game.Role(role), salt, commitment)
		c.JSON(http.StatusOK, gin.H{"valid": valid})
	}
}
