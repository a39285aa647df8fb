package controllers

import (
	"net/http"

	"github.com/kamalbuilds/pizza-panic-sub000/middleware"

	"github.com/gin-gonic/gin"
)

// Ping is the health check endpoint.
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

type registerRequest struct {
	Address string `json:"address" binding:"required"`
	Name    string `json:"name"`
}

// Register issues a bearer token for the agent address. There is no password:
// an address is an identity claim the settlement layer verifies elsewhere.
func Register() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
			return
		}

		token, err := middleware.IssueToken(req.Address, req.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error issuing token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token, "address": req.Address})
	}
}
