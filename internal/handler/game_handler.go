package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"gameshelf/backend/internal/auth"
	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// region --- DTOs ---

type GameInput struct {
	Name        string `json:"name" binding:"required,notblank"`
	Slug        string `json:"slug" binding:"required,notblank"`
	RawgID      *uint  `json:"rawg_id"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Released    string `json:"released"`
	GenreIDs    []uint `json:"genre_ids"` // IDs of the genres to associate with the game
}

type GameResponse struct {
	ID          uint            `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Released    string          `json:"released,omitempty"`
	Genres      []GenreResponse `json:"genres,omitempty"`
}

// GameDetailResponse adds the rating summary and the viewer's shelf flags to a
// game. AverageRating is null until the game has a review.
type GameDetailResponse struct {
	GameResponse
	AverageRating *float64 `json:"average_rating"`
	ReviewCount   int64    `json:"review_count"`
	IsFavorite    bool     `json:"is_favorite"`
	IsInWishlist  bool     `json:"is_in_wishlist"`
	IsCompleted   bool     `json:"is_completed"`
}

// TopGameResponse is a game ranked by its reviews.
type TopGameResponse struct {
	GameResponse
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int64   `json:"review_count"`
}

// ratingStats is one row of the per-game review aggregate.
type ratingStats struct {
	GameID      uint
	Average     float64
	ReviewCount int64
}

// ratingQuery aggregates live reviews of live games.
func ratingQuery() *gorm.DB {
	return database.DB.Table("reviews").
		Select("reviews.game_id, AVG(reviews.star_rating) AS average, COUNT(*) AS review_count").
		Joins("JOIN games ON games.id = reviews.game_id AND games.deleted_at IS NULL").
		Where("reviews.deleted_at IS NULL").
		Group("reviews.game_id")
}

// roundRating keeps one decimal, the precision ratings are shown with.
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func newGameResponse(game models.Game) GameResponse {
	var genreResponses []GenreResponse
	for _, genre := range game.Genres {
		if genre != nil {
			genreResponses = append(genreResponses, newGenreResponse(*genre))
		}
	}

	return GameResponse{
		ID:          game.ID,
		Slug:        game.Slug,
		Name:        game.Name,
		Description: game.Description,
		ImageURL:    game.ImageURL,
		Released:    game.Released,
		Genres:      genreResponses,
	}
}

// endregion

// region --- Admin Handlers ---

// CreateGame godoc
// @Summary      Create a new game
// @Description  Adds a game to the catalog and associates it with given genres.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  GameResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Catalog admin access required"
// @Failure      409  {object}  ErrorResponse "Slug already used"
// @Router       /admin/games [post]
func CreateGame(c *gin.Context) {
	var input GameInput
	if !bindJSON(c, &input) {
		return
	}

	var genres []*models.Genre
	if len(input.GenreIDs) > 0 {
		if err := database.DB.Find(&genres, input.GenreIDs).Error; err != nil {
			internalError(c, "Failed to load genres", err)
			return
		}
	}

	game := models.Game{
		Name:        input.Name,
		Slug:        input.Slug,
		RawgID:      input.RawgID,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Released:    input.Released,
		Genres:      genres,
	}

	if err := database.DB.Create(&game).Error; err != nil {
		writeFailed(c, "Game slug or RAWG id already exists", "Failed to create game", err)
		return
	}

	c.JSON(http.StatusCreated, newGameResponse(game))
}

// UpdateGame godoc
// @Summary      Update a game
// @Description  Updates a game's details and replaces its genres.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int       true  "Game ID"
// @Param        input body      GameInput true  "New Game Info"
// @Success      200   {object}  GameResponse
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Router       /admin/games/{id} [put]
func UpdateGame(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var game models.Game
	if err := database.DB.First(&game, id).Error; err != nil {
		lookupFailed(c, "Game not found", err)
		return
	}

	var input GameInput
	if !bindJSON(c, &input) {
		return
	}

	var genres []*models.Genre
	if len(input.GenreIDs) > 0 {
		if err := database.DB.Find(&genres, input.GenreIDs).Error; err != nil {
			internalError(c, "Failed to load genres", err)
			return
		}
	}

	game.Name = input.Name
	game.Slug = input.Slug
	game.RawgID = input.RawgID
	game.Description = input.Description
	game.ImageURL = input.ImageURL
	game.Released = input.Released

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&game).Association("Genres").Replace(genres); err != nil {
			return err
		}
		return tx.Save(&game).Error
	})
	if err != nil {
		internalError(c, "Failed to update game", err)
		return
	}

	if err := database.DB.Preload("Genres").First(&game, id).Error; err != nil {
		internalError(c, "Failed to reload game", err)
		return
	}
	c.JSON(http.StatusOK, newGameResponse(game))
}

// DeleteGame godoc
// @Summary      Delete a game
// @Description  Removes a game from the catalog.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game deleted"}"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/games/{id} [delete]
func DeleteGame(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	result := database.DB.Select("Genres").Delete(&models.Game{Model: gorm.Model{ID: id}})
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
}

// endregion

// region --- Public Handlers ---

// GetGameByID godoc
// @Summary      Get a single game by ID
// @Description  Retrieves a game with its genres and, for signed-in viewers, their favorite/wishlist/completed flags.
// @Tags         games
// @Produce      json
// @Param        id path int true "Game ID"
// @Success      200 {object} GameDetailResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func GetGameByID(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var game models.Game
	if err := database.DB.Preload("Genres").First(&game, id).Error; err != nil {
		lookupFailed(c, "Game not found", err)
		return
	}

	response := GameDetailResponse{GameResponse: newGameResponse(game)}

	var stats ratingStats
	if err := ratingQuery().Where("reviews.game_id = ?", game.ID).Scan(&stats).Error; err != nil {
		internalError(c, "Failed to load rating", err)
		return
	}
	if stats.ReviewCount > 0 {
		avg := roundRating(stats.Average)
		response.AverageRating = &avg
		response.ReviewCount = stats.ReviewCount
	}

	if viewerID, ok := auth.CurrentUserID(c); ok {
		var statuses []models.GameStatus
		if err := database.DB.Where("user_id = ? AND game_id = ?", viewerID, id).Find(&statuses).Error; err != nil {
			internalError(c, "Failed to load shelf flags", err)
			return
		}
		for _, s := range statuses {
			switch s.Kind {
			case models.StatusFavorite:
				response.IsFavorite = true
			case models.StatusWishlist:
				response.IsInWishlist = true
			case models.StatusCompleted:
				response.IsCompleted = true
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetTopGames godoc
// @Summary      Highest rated games
// @Description  Games ranked by average star rating, then by number of reviews. Unreviewed games are left out.
// @Tags         games
// @Produce      json
// @Param        limit query int false "Number of games" default(10)
// @Success      200 {array} TopGameResponse
// @Router       /top-games [get]
func GetTopGames(c *gin.Context) {
	limit := limitParam(c, 10, 50)

	var ranked []ratingStats
	err := ratingQuery().
		Order("average DESC, review_count DESC, reviews.game_id").
		Limit(limit).
		Scan(&ranked).Error
	if err != nil {
		internalError(c, "Failed to rank games", err)
		return
	}

	ids := make([]uint, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.GameID)
	}
	var games []models.Game
	if len(ids) > 0 {
		if err := database.DB.Preload("Genres").Find(&games, ids).Error; err != nil {
			internalError(c, "Failed to load games", err)
			return
		}
	}
	byID := make(map[uint]models.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}

	response := make([]TopGameResponse, 0, len(ranked))
	for _, r := range ranked {
		game, ok := byID[r.GameID]
		if !ok {
			continue
		}
		response = append(response, TopGameResponse{
			GameResponse:  newGameResponse(game),
			AverageRating: roundRating(r.Average),
			ReviewCount:   r.ReviewCount,
		})
	}
	c.JSON(http.StatusOK, response)
}

// GetGames godoc
// @Summary      Get a list of games
// @Description  Retrieves a paginated list of games, with optional filtering by name and genres.
// @Tags         games
// @Produce      json
// @Param        q         query     string  false  "Search query for game name"
// @Param        genre_ids query     string  false  "Comma-separated list of Genre IDs"
// @Param        page      query     int     false  "Page number" default(1)
// @Param        limit     query     int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[GameResponse]
// @Router       /games [get]
func GetGames(c *gin.Context) {
	page, limit := pageParams(c)
	searchQuery := strings.ToLower(strings.TrimSpace(c.Query("q")))

	query := database.DB.Model(&models.Game{})
	if searchQuery != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+searchQuery+"%")
	}

	var genreIDs []uint
	for _, s := range splitCommaSeparated(c.Query("genre_ids")) {
		if id, err := strconv.ParseUint(s, 10, 32); err == nil {
			genreIDs = append(genreIDs, uint(id))
		}
	}
	if len(genreIDs) > 0 {
		sub := database.DB.Table("game_genres").Select("game_id").Where("genre_id IN ?", genreIDs)
		query = query.Where("id IN (?)", sub)
	}

	games, total, err := Paginate[models.Game](query.Order("name"), page, limit, "Genres")
	if err != nil {
		internalError(c, "Failed to retrieve games", err)
		return
	}

	response := make([]GameResponse, 0, len(games))
	for _, game := range games {
		response = append(response, newGameResponse(game))
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(response, total, page, limit))
}

// Helper to split comma-separated strings
func splitCommaSeparated(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// endregion
