package handler

import (
	"errors"
	"net/http"

	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusInput names the game a status is added for.
type StatusInput struct {
	GameID uint `json:"game_id" binding:"required,min=1"`
}

// StatusResponse reports the state of one (user, game, status) fact after a change.
type StatusResponse struct {
	GameID uint              `json:"game_id"`
	Status models.StatusKind `json:"status"`
	Active bool              `json:"active"`
}

// AddStatus godoc
// @Summary      Mark a game as favorite, wishlisted or completed
// @Description  Adds the status for the authenticated user. Adding a status that is already present succeeds without change.
// @Tags         shelf
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name   path string      true "User name (must be the caller)"
// @Param        status path string      true "favorites, wishlist or completed"
// @Param        input  body StatusInput true "Game"
// @Success      200 {object} StatusResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "User or game not found"
// @Router       /users/{name}/{status} [post]
func AddStatus(kind models.StatusKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := ownedUser(c)
		if !ok {
			return
		}

		var input StatusInput
		if !bindJSON(c, &input) {
			return
		}

		var game models.Game
		if err := database.DB.First(&game, input.GameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
				return
			}
			internalError(c, "Failed to load game", err)
			return
		}

		status := models.GameStatus{UserID: user.ID, GameID: game.ID, Kind: kind}
		if err := database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&status).Error; err != nil {
			internalError(c, "Failed to update "+string(kind), err)
			return
		}

		c.JSON(http.StatusOK, StatusResponse{GameID: game.ID, Status: kind, Active: true})
	}
}

// RemoveStatus godoc
// @Summary      Remove a favorite, wishlist or completed mark
// @Description  Removes the status for the authenticated user. Removing an absent status succeeds without change.
// @Tags         shelf
// @Produce      json
// @Security     BearerAuth
// @Param        name   path string true "User name (must be the caller)"
// @Param        status path string true "favorites, wishlist or completed"
// @Param        gameId path int    true "Game ID"
// @Success      200 {object} StatusResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /users/{name}/{status}/{gameId} [delete]
func RemoveStatus(kind models.StatusKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := ownedUser(c)
		if !ok {
			return
		}
		gameID, ok := uintParam(c, "gameId")
		if !ok {
			return
		}

		err := database.DB.
			Where("user_id = ? AND game_id = ? AND kind = ?", user.ID, gameID, kind).
			Delete(&models.GameStatus{}).Error
		if err != nil {
			internalError(c, "Failed to update "+string(kind), err)
			return
		}

		c.JSON(http.StatusOK, StatusResponse{GameID: gameID, Status: kind, Active: false})
	}
}

// ListStatus godoc
// @Summary      List the games a user marked with a status
// @Tags         shelf
// @Produce      json
// @Param        name   path  string true  "User name"
// @Param        status path  string true  "favorites, wishlist or completed"
// @Param        page   query int    false "Page number" default(1)
// @Param        limit  query int    false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[GameResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /users/{name}/{status} [get]
func ListStatus(kind models.StatusKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := namedUser(c)
		if !ok {
			return
		}
		page, limit := pageParams(c)

		sub := database.DB.Model(&models.GameStatus{}).Select("game_id").Where("user_id = ? AND kind = ?", user.ID, kind)
		games, total, err := Paginate[models.Game](database.DB.Where("id IN (?)", sub).Order("name"), page, limit, "Genres")
		if err != nil {
			internalError(c, "Failed to load "+string(kind), err)
			return
		}

		response := make([]GameResponse, 0, len(games))
		for _, g := range games {
			response = append(response, newGameResponse(g))
		}
		c.JSON(http.StatusOK, NewPaginatedResponse(response, total, page, limit))
	}
}
