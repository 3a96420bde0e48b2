package handler

import (
	"net/http"
	"time"

	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type GenreInput struct {
	Name string `json:"name" binding:"required,notblank"`
}

type GenreResponse struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
}

func newGenreResponse(genre models.Genre) GenreResponse {
	return GenreResponse{
		ID:        genre.ID,
		CreatedAt: genre.CreatedAt,
		Name:      genre.Name,
	}
}

// CreateGenre godoc
// @Summary      Create a new genre
// @Tags         admin-genres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GenreInput true "Genre Info"
// @Success      201  {object}  GenreResponse
// @Failure      409  {object}  ErrorResponse "Genre already exists"
// @Router       /admin/genres [post]
func CreateGenre(c *gin.Context) {
	var input GenreInput
	if !bindJSON(c, &input) {
		return
	}

	genre := models.Genre{Name: input.Name}
	if err := database.DB.Create(&genre).Error; err != nil {
		writeFailed(c, "Genre already exists", "Failed to create genre", err)
		return
	}

	c.JSON(http.StatusCreated, newGenreResponse(genre))
}

// GetGenres godoc
// @Summary      Get all genres
// @Tags         genres
// @Produce      json
// @Success      200  {array}   GenreResponse
// @Router       /genres [get]
func GetGenres(c *gin.Context) {
	var genres []models.Genre
	if err := database.DB.Order("name").Find(&genres).Error; err != nil {
		internalError(c, "Failed to load genres", err)
		return
	}

	response := make([]GenreResponse, 0, len(genres))
	for _, genre := range genres {
		response = append(response, newGenreResponse(genre))
	}
	c.JSON(http.StatusOK, response)
}

// UpdateGenre godoc
// @Summary      Rename a genre
// @Tags         admin-genres
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int        true "Genre ID"
// @Param        input body GenreInput true "New Genre Info"
// @Success      200  {object}  GenreResponse
// @Failure      404  {object}  ErrorResponse "Genre not found"
// @Router       /admin/genres/{id} [put]
func UpdateGenre(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var input GenreInput
	if !bindJSON(c, &input) {
		return
	}

	var genre models.Genre
	if err := database.DB.First(&genre, id).Error; err != nil {
		lookupFailed(c, "Genre not found", err)
		return
	}

	if err := database.DB.Model(&genre).Update("name", input.Name).Error; err != nil {
		writeFailed(c, "Genre already exists", "Failed to update genre", err)
		return
	}
	c.JSON(http.StatusOK, newGenreResponse(genre))
}

// DeleteGenre godoc
// @Summary      Delete a genre
// @Tags         admin-genres
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Genre ID"
// @Success      200  {object}  map[string]string "{"message": "Genre deleted"}"
// @Failure      404  {object}  ErrorResponse "Genre not found"
// @Router       /admin/genres/{id} [delete]
func DeleteGenre(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	result := database.DB.Delete(&models.Genre{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Genre not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Genre deleted"})
}
