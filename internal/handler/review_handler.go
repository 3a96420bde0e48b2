package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"gameshelf/backend/internal/auth"
	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/hub"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// region --- DTOs ---

type ReviewInput struct {
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Text   string `json:"text" binding:"max=5000"`
}

type ReviewAuthor struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

type ReviewResponse struct {
	ID         uint         `json:"id"`
	GameID     uint         `json:"game_id"`
	User       ReviewAuthor `json:"user"`
	StarRating int          `json:"star_rating"`
	Text       string       `json:"text"`
	Likes      int64        `json:"likes"`
	IsLiked    bool         `json:"is_liked"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ReviewGame names the game a review was left on.
type ReviewGame struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url,omitempty"`
}

// RecentReviewResponse is a review shown away from its game's page.
type RecentReviewResponse struct {
	ReviewResponse
	Game ReviewGame `json:"game"`
}

// LikeResponse is the authoritative like state of a review after a toggle.
type LikeResponse struct {
	Likes   int64 `json:"likes"`
	IsLiked bool  `json:"is_liked"`
}

func newReviewResponse(review models.Review, liked bool) ReviewResponse {
	return ReviewResponse{
		ID:     review.ID,
		GameID: review.GameID,
		User: ReviewAuthor{
			ID:         review.User.ID,
			Name:       review.User.Name,
			ProfilePic: review.User.ProfilePic,
		},
		StarRating: review.StarRating,
		Text:       review.Text,
		Likes:      review.LikesCount,
		IsLiked:    liked,
		CreatedAt:  review.CreatedAt,
	}
}

// endregion

// CreateReview godoc
// @Summary      Rate and review a game
// @Description  Stores the caller's star rating (1-5) and optional text. One review per user and game.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int         true "Game ID"
// @Param        input body ReviewInput true "Review"
// @Success      201 {object} ReviewResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Failure      409 {object} ErrorResponse "Game already reviewed"
// @Failure      422 {object} ValidationErrorResponse
// @Router       /games/{id}/reviews [post]
func CreateReview(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	gameID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var input ReviewInput
	if !bindJSON(c, &input) {
		return
	}

	var game models.Game
	if err := database.DB.First(&game, gameID).Error; err != nil {
		lookupFailed(c, "Game not found", err)
		return
	}

	var existing int64
	err := database.DB.Model(&models.Review{}).Where("user_id = ? AND game_id = ?", userID, gameID).Count(&existing).Error
	if err != nil {
		internalError(c, "Failed to check reviews", err)
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "You already reviewed this game"})
		return
	}

	review := models.Review{UserID: userID, GameID: gameID, StarRating: input.Rating, Text: input.Text}
	if err := database.DB.Create(&review).Error; err != nil {
		writeFailed(c, "You already reviewed this game", "Failed to create review", err)
		return
	}

	if err := database.DB.Preload("User").First(&review, review.ID).Error; err != nil {
		internalError(c, "Failed to reload review", err)
		return
	}
	c.JSON(http.StatusCreated, newReviewResponse(review, false))
}

// GetGameReviews godoc
// @Summary      List a game's reviews
// @Description  Newest first. Signed-in viewers get their is_liked flag per review.
// @Tags         reviews
// @Produce      json
// @Param        id    path  int true  "Game ID"
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[ReviewResponse]
// @Router       /games/{id}/reviews [get]
func GetGameReviews(c *gin.Context) {
	gameID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	page, limit := pageParams(c)

	query := database.DB.Where("game_id = ?", gameID).Order("created_at DESC")
	reviews, total, err := Paginate[models.Review](query, page, limit, "User")
	if err != nil {
		internalError(c, "Failed to load reviews", err)
		return
	}

	liked := map[uint]bool{}
	if viewerID, ok := auth.CurrentUserID(c); ok && len(reviews) > 0 {
		ids := make([]uint, 0, len(reviews))
		for _, r := range reviews {
			ids = append(ids, r.ID)
		}
		var likes []models.ReviewLike
		if err := database.DB.Where("user_id = ? AND review_id IN ?", viewerID, ids).Find(&likes).Error; err != nil {
			internalError(c, "Failed to load likes", err)
			return
		}
		for _, l := range likes {
			liked[l.ReviewID] = true
		}
	}

	response := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		response = append(response, newReviewResponse(r, liked[r.ID]))
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(response, total, page, limit))
}

// GetRecentReviews godoc
// @Summary      Latest reviews across the catalog
// @Description  Newest first, each with its author and game.
// @Tags         reviews
// @Produce      json
// @Param        limit query int false "Number of reviews" default(12)
// @Success      200 {array} RecentReviewResponse
// @Router       /reviews/recent [get]
func GetRecentReviews(c *gin.Context) {
	limit := limitParam(c, 12, 50)

	var reviews []models.Review
	err := database.DB.InnerJoins("Game").Preload("User").
		Order("reviews.created_at DESC, reviews.id DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		internalError(c, "Failed to load reviews", err)
		return
	}

	response := make([]RecentReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		response = append(response, RecentReviewResponse{
			ReviewResponse: newReviewResponse(r, false),
			Game:           ReviewGame{ID: r.Game.ID, Name: r.Game.Name, Slug: r.Game.Slug, ImageURL: r.Game.ImageURL},
		})
	}
	c.JSON(http.StatusOK, response)
}

// DeleteReview godoc
// @Summary      Delete a review (author only)
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Review ID"
// @Success      200 {object} map[string]string "{"message": "Review deleted"}"
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Review not found"
// @Router       /reviews/{id} [delete]
func DeleteReview(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var review models.Review
	if err := database.DB.First(&review, id).Error; err != nil {
		lookupFailed(c, "Review not found", err)
		return
	}
	if review.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete this review"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", review.ID).Delete(&models.ReviewLike{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&review).Error
	})
	if err != nil {
		internalError(c, "Failed to delete review", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// ToggleReviewLike godoc
// @Summary      Like or unlike a review
// @Description  Flips the caller's like and returns the recounted total. Authors cannot like their own review.
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Review ID"
// @Success      200 {object} LikeResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse "Review not found"
// @Failure      422 {object} ErrorResponse "Cannot like your own review"
// @Router       /reviews/{id}/toggle-like [post]
func ToggleReviewLike(c *gin.Context) {
	userID, _ := auth.CurrentUserID(c)
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var review models.Review
	if err := database.DB.First(&review, id).Error; err != nil {
		lookupFailed(c, "Review not found", err)
		return
	}
	if review.UserID == userID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot like your own review"})
		return
	}

	var response LikeResponse
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var like models.ReviewLike
		err := tx.Where("review_id = ? AND user_id = ?", review.ID, userID).First(&like).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.ReviewLike{ReviewID: review.ID, UserID: userID}).Error; err != nil {
				return err
			}
			response.IsLiked = true
		case err != nil:
			return err
		default:
			if err := tx.Where("review_id = ? AND user_id = ?", review.ID, userID).Delete(&models.ReviewLike{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.ReviewLike{}).Where("review_id = ?", review.ID).Count(&response.Likes).Error; err != nil {
			return err
		}
		return tx.Model(&review).Update("likes_count", response.Likes).Error
	})
	if err != nil {
		internalError(c, "Failed to toggle like", err)
		return
	}

	event := hub.Event{Type: hub.EventReviewLikes, Payload: hub.LikesPayload{ReviewID: review.ID, Likes: response.Likes}}
	if err := hub.GlobalHub.Broadcast(review.ID, event); err != nil {
		logger.Warn("broadcast like count", zap.Uint("review_id", review.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, response)
}

// StreamReviewEvents godoc
// @Summary      Stream like-count changes of a review
// @Description  Server-sent events. The first event carries the current count; one follows every committed toggle.
// @Tags         reviews
// @Produce      text/event-stream
// @Param        id path int true "Review ID"
// @Success      200 {object} hub.Event
// @Failure      404 {object} ErrorResponse "Review not found"
// @Router       /reviews/{id}/events [get]
func StreamReviewEvents(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var review models.Review
	if err := database.DB.First(&review, id).Error; err != nil {
		lookupFailed(c, "Review not found", err)
		return
	}

	client := make(hub.Client, 16)
	hub.GlobalHub.Subscribe(review.ID, client)
	defer hub.GlobalHub.Unsubscribe(review.ID, client)

	initial, err := json.Marshal(hub.Event{
		Type:    hub.EventReviewLikes,
		Payload: hub.LikesPayload{ReviewID: review.ID, Likes: review.LikesCount},
	})
	if err != nil {
		internalError(c, "Failed to encode event", err)
		return
	}
	c.SSEvent("message", string(initial))
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-client:
			if !ok {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
