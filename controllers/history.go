package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/kamalbuilds/pizza-panic-sub000/services/persistence"
	"github.com/kamalbuilds/pizza-panic-sub000/services/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListCompletedGames returns finished matches from Postgres, newest first.
func ListCompletedGames(store *persistence.GameStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history not available"})
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		records, err := store.ListCompletedGames(limit)
		if err != nil {
			log.Printf("[API-ERROR] listing completed games: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error listing games"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"games": records})
	}
}

// GetCompletedGame returns one finished match with its full audit trail.
func GetCompletedGame(store *persistence.GameStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history not available"})
			return
		}

		record, err := store.GetCompletedGame(c.Param("id"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
			return
		}
		if err != nil {
			log.Printf("[API-ERROR] loading completed game %s: %v", c.Param("id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error loading game"})
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

// RecentGames serves the Redis-cached summaries of the latest finished games.
func RecentGames(cache *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cache == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cache not available"})
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		summaries, err := cache.GetRecentGames(limit)
		if err != nil {
			log.Printf("[API-ERROR] reading recent games: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error reading recent games"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"games": summaries})
	}
}

// GetAgentProfile returns one agent's lifetime record.
func GetAgentProfile(store *persistence.GameStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profiles not available"})
			return
		}

		profile, err := store.GetAgentProfile(c.Param("address"))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
			return
		}
		if err != nil {
			log.Printf("[API-ERROR] loading profile %s: %v", c.Param("address"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error loading profile"})
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}
