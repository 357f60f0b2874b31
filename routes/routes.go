package routes

import (
	"net/http"

	"github.com/Regan831/five-crowns-scoreboard/handlers"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	gameHandler *handlers.GameHandler,
	playerHandler *handlers.PlayerHandler,
) {
	// API routes
	api := router.Group("/api")
	{
		games := api.Group("/games")
		{
			games.POST("", gameHandler.CreateGame)
			games.GET("", gameHandler.ListGames)
			games.GET("/:id", gameHandler.GetGame)
			games.POST("/:id/rounds/:roundId", gameHandler.SaveRoundScores)
			games.POST("/:id/complete", gameHandler.CompleteGame)
		}

		players := api.Group("/players")
		{
			players.GET("", playerHandler.ListPlayers)
			players.GET("/stats", playerHandler.GetPlayerStats)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
