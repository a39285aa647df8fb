package routes

import (
	"github.com/kamalbuilds/pizza-panic-sub000/controllers"
	"github.com/kamalbuilds/pizza-panic-sub000/middleware"
	"github.com/kamalbuilds/pizza-panic-sub000/services/broadcast"
	"github.com/kamalbuilds/pizza-panic-sub000/services/registry"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, reg *registry.GameRegistry, hub *broadcast.Hub) {
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/register", controllers.Register())

	// Public reads: a bearer token only widens visibility.
	public := api.Group("/")
	public.Use(middleware.AuthOptional)
	{
		public.GET("/games", controllers.ListGames(reg))

		public.GET("/games/:id", controllers.GetGameState(reg))

		public.GET("/games/:id/verify", controllers.VerifyReveal())

		public.GET("/games/:id/events", hub.HandleConnection)

		public.GET("/history", controllers.ListCompletedGames(reg.Store()))

		public.GET("/history/:id", controllers.GetCompletedGame(reg.Store()))

		public.GET("/recent", controllers.RecentGames(reg.Cache()))

		public.GET("/agents/:address", controllers.GetAgentProfile(reg.Store()))
	}

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.POST("/games", controllers.CreateGame(reg))

		authentication.GET("/games", controllers.MyGames(reg))

		authentication.POST("/games/:id/join", controllers.JoinGame(reg))

		authentication.POST("/games/:id/leave", controllers.LeaveGame(reg))

		authentication.POST("/games/:id/start", controllers.StartGame(reg))

		authentication.POST("/games/:id/message", controllers.PostMessage(reg))

		authentication.POST("/games/:id/investigate", controllers.Investigate(reg))

		authentication.POST("/games/:id/vote", controllers.CastVote(reg))

		authentication.POST("/games/:id/end-phase", controllers.ForceEndPhase(reg))
	}
}
