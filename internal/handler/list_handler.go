package handler

import (
	"net/http"
	"strings"
	"time"

	"gameshelf/backend/internal/auth"
	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

type ListInput struct {
	Name string `json:"name" binding:"required,notblank,max=100"`
}

type ListGameInput struct {
	GameID uint `json:"game_id" binding:"required,min=1"`
}

type ListResponse struct {
	ID        uint           `json:"id"`
	UserID    uint           `json:"user_id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	Games     []GameResponse `json:"games"`
}

func newListResponse(list models.GameList) ListResponse {
	games := make([]GameResponse, 0, len(list.Games))
	for _, member := range list.Games {
		games = append(games, newGameResponse(member.Game))
	}
	return ListResponse{
		ID:        list.ID,
		UserID:    list.UserID,
		Name:      list.Name,
		CreatedAt: list.CreatedAt,
		Games:     games,
	}
}

// endregion

// loadOwnedList fetches the list in the :id path parameter and checks the caller owns it.
func loadOwnedList(c *gin.Context) (models.GameList, bool) {
	var list models.GameList
	id, ok := uintParam(c, "id")
	if !ok {
		return list, false
	}

	if err := database.DB.First(&list, id).Error; err != nil {
		lookupFailed(c, "List not found", err)
		return list, false
	}

	viewerID, _ := auth.CurrentUserID(c)
	if list.UserID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can change this list"})
		return list, false
	}
	return list, true
}

// GetUserLists godoc
// @Summary      Get a user's lists
// @Tags         lists
// @Produce      json
// @Param        name path string true "User name"
// @Success      200 {array}  ListResponse
// @Failure      404 {object} ErrorResponse "User not found"
// @Router       /users/{name}/lists [get]
func GetUserLists(c *gin.Context) {
	user, ok := namedUser(c)
	if !ok {
		return
	}

	var lists []models.GameList
	err := database.DB.Preload("Games.Game").Where("user_id = ?", user.ID).Order("created_at").Find(&lists).Error
	if err != nil {
		internalError(c, "Failed to load lists", err)
		return
	}

	response := make([]ListResponse, 0, len(lists))
	for _, list := range lists {
		response = append(response, newListResponse(list))
	}
	c.JSON(http.StatusOK, response)
}

// GetList godoc
// @Summary      Get a list by ID
// @Tags         lists
// @Produce      json
// @Param        id path int true "List ID"
// @Success      200 {object} ListResponse
// @Failure      404 {object} ErrorResponse "List not found"
// @Router       /lists/{id} [get]
func GetList(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var list models.GameList
	if err := database.DB.Preload("Games.Game").First(&list, id).Error; err != nil {
		lookupFailed(c, "List not found", err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(list))
}

// CreateList godoc
// @Summary      Create a new list
// @Description  Creates an empty, named list owned by the caller.
// @Tags         lists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ListInput true "List Info"
// @Success      201  {object}  ListResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      422  {object}  ValidationErrorResponse
// @Router       /lists [post]
func CreateList(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)

	var input ListInput
	if !bindJSON(c, &input) {
		return
	}

	list := models.GameList{UserID: userID, Name: strings.TrimSpace(input.Name)}
	if err := database.DB.Create(&list).Error; err != nil {
		internalError(c, "Failed to create list", err)
		return
	}

	c.JSON(http.StatusCreated, newListResponse(list))
}

// UpdateList godoc
// @Summary      Rename a list (owner only)
// @Tags         lists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int       true "List ID"
// @Param        input body ListInput true "New List Info"
// @Success      200 {object} ListResponse
// @Failure      403 {object} ErrorResponse "Only the owner can change this list"
// @Failure      404 {object} ErrorResponse "List not found"
// @Failure      422 {object} ValidationErrorResponse
// @Router       /lists/{id} [put]
func UpdateList(c *gin.Context) {
	list, ok := loadOwnedList(c)
	if !ok {
		return
	}

	var input ListInput
	if !bindJSON(c, &input) {
		return
	}

	if err := database.DB.Model(&list).Update("name", strings.TrimSpace(input.Name)).Error; err != nil {
		internalError(c, "Failed to update list", err)
		return
	}

	if err := database.DB.Preload("Games.Game").First(&list, list.ID).Error; err != nil {
		internalError(c, "Failed to reload list", err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(list))
}

// DeleteList godoc
// @Summary      Delete a list (owner only)
// @Tags         lists
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "List ID"
// @Success      200 {object} map[string]string "{"message": "List deleted"}"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "List not found"
// @Router       /lists/{id} [delete]
func DeleteList(c *gin.Context) {
	list, ok := loadOwnedList(c)
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", list.ID).Delete(&models.ListGame{}).Error; err != nil {
			return err
		}
		return tx.Delete(&list).Error
	})
	if err != nil {
		internalError(c, "Failed to delete list", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "List deleted"})
}

// AddGameToList godoc
// @Summary      Add a game to a list (owner only)
// @Tags         lists
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int           true "List ID"
// @Param        input body ListGameInput true "Game"
// @Success      201 {object} map[string]string "{"message": "Game added to list"}"
// @Failure      404 {object} ErrorResponse "List or game not found"
// @Failure      409 {object} ErrorResponse "Game already in list"
// @Router       /lists/{id}/games [post]
func AddGameToList(c *gin.Context) {
	list, ok := loadOwnedList(c)
	if !ok {
		return
	}

	var input ListGameInput
	if !bindJSON(c, &input) {
		return
	}

	var game models.Game
	if err := database.DB.First(&game, input.GameID).Error; err != nil {
		lookupFailed(c, "Game not found", err)
		return
	}

	var existing int64
	err := database.DB.Model(&models.ListGame{}).Where("list_id = ? AND game_id = ?", list.ID, game.ID).Count(&existing).Error
	if err != nil {
		internalError(c, "Failed to check list", err)
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Game already in list"})
		return
	}

	// The composite key still catches a concurrent insert of the same pair.
	if err := database.DB.Create(&models.ListGame{ListID: list.ID, GameID: game.ID}).Error; err != nil {
		writeFailed(c, "Game already in list", "Failed to add game to list", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Game added to list"})
}

// RemoveGameFromList godoc
// @Summary      Remove a game from a list (owner only)
// @Tags         lists
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "List ID"
// @Param        gameId path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game removed from list"}"
// @Failure      404 {object} ErrorResponse "List not found or game not in list"
// @Router       /lists/{id}/games/{gameId} [delete]
func RemoveGameFromList(c *gin.Context) {
	list, ok := loadOwnedList(c)
	if !ok {
		return
	}
	gameID, ok := uintParam(c, "gameId")
	if !ok {
		return
	}

	result := database.DB.Where("list_id = ? AND game_id = ?", list.ID, gameID).Delete(&models.ListGame{})
	if result.Error != nil {
		internalError(c, "Failed to remove game from list", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not in list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game removed from list"})
}
