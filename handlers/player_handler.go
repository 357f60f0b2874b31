package handlers

import (
	"net/http"

	"github.com/Regan831/five-crowns-scoreboard/services"

	"github.com/gin-gonic/gin"
)

type PlayerHandler struct {
	playerService *services.PlayerService
}

func NewPlayerHandler(playerService *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	players, err := h.playerService.ListPlayers()
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, players)
}

func (h *PlayerHandler) GetPlayerStats(c *gin.Context) {
	stats, err := h.playerService.PlayerStats()
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
