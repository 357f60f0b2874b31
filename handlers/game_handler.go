package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Regan831/five-crowns-scoreboard/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GameHandler struct {
	gameService *services.GameService
}

func NewGameHandler(gameService *services.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

type createGameRequest struct {
	Players         string   `json:"players"`
	ExistingPlayers []string `json:"existing_players"`
}

type saveRoundRequest struct {
	SecretKey       string            `json:"secret_key"`
	WentOutPlayerID string            `json:"went_out_player_id"`
	Scores          map[string]string `json:"scores"`
}

type completeGameRequest struct {
	SecretKey string `json:"secret_key"`
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.gameService.CreateGame(req.Players, req.ExistingPlayers)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *GameHandler) GetGame(c *gin.Context) {
	gameID := c.Param("id")

	game, err := h.gameService.GetGame(gameID)
	if err != nil {
		renderError(c, err)
		return
	}

	canEdit := h.gameService.CheckKey(gameID, c.Query("key"))
	c.JSON(http.StatusOK, gin.H{"game": game, "can_edit": canEdit})
}

func (h *GameHandler) ListGames(c *gin.Context) {
	games, err := h.gameService.ListGames(c.Query("status"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, games)
}

func (h *GameHandler) SaveRoundScores(c *gin.Context) {
	var req saveRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := req.SecretKey
	if key == "" {
		key = c.Query("key")
	}

	err := h.gameService.SaveRoundScores(c.Param("id"), c.Param("roundId"), key, req.WentOutPlayerID, req.Scores)
	if err != nil {
		renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GameHandler) CompleteGame(c *gin.Context) {
	var req completeGameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	key := req.SecretKey
	if key == "" {
		key = c.Query("key")
	}

	if err := h.gameService.CompleteGame(c.Param("id"), key); err != nil {
		renderError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// renderError maps service errors to HTTP statuses: validation to
// 400, key mismatch to 403, unknown ids on reads to 404.
func renderError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var authErr *services.AuthorizationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authErr.Message})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
