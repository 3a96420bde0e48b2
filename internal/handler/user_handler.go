package handler

import (
	"errors"
	"net/http"
	"strings"

	"gameshelf/backend/internal/auth"
	"gameshelf/backend/internal/config"
	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"
	"gameshelf/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Name     string `json:"name" binding:"required,notblank,max=50" example:"testuser"`
	Email    string `json:"email" binding:"required,email" example:"test@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// ProfileInput is the editable part of the caller's account.
type ProfileInput struct {
	Name       string `json:"name" binding:"required,notblank,max=50" example:"testuser"`
	Email      string `json:"email" binding:"required,email" example:"test@example.com"`
	Bio        string `json:"bio" binding:"max=1000"`
	ProfilePic string `json:"profile_pic" binding:"omitempty,url,max=512"`
}

// PasswordInput changes the caller's password.
type PasswordInput struct {
	CurrentPassword      string `json:"current_password" binding:"required"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

// DeleteAccountInput must spell out DELETE.
type DeleteAccountInput struct {
	Confirmation string `json:"confirmation" binding:"required,eq=DELETE" example:"DELETE"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	Token string              `json:"token"`
	User  PrivateUserResponse `json:"user"`
}

// PublicUserResponse defines the structure for a user's public profile.
type PublicUserResponse struct {
	ID             uint   `json:"id" example:"1"`
	Name           string `json:"name" example:"testuser"`
	Bio            string `json:"bio,omitempty"`
	ProfilePic     string `json:"profile_pic,omitempty"`
	ReviewsCount   int64  `json:"reviews_count"`
	FavoritesCount int64  `json:"favorites_count"`
	CompletedCount int64  `json:"completed_count"`
	ListsCount     int64  `json:"lists_count"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID         uint   `json:"id" example:"1"`
	Name       string `json:"name" example:"testuser"`
	Email      string `json:"email" example:"test@example.com"`
	Role       string `json:"role" example:"user"`
	Bio        string `json:"bio,omitempty"`
	ProfilePic string `json:"profile_pic,omitempty"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      422  {object}  ValidationErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	var existingUser models.User
	if err := database.DB.Where("name = ? OR email = ?", input.Name, input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Name or email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(c, "Failed to hash password", err)
		return
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		writeFailed(c, "Name or email already exists", "Failed to create user", err)
		return
	}

	respondWithToken(c, http.StatusCreated, user)
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with name/email and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  TokenResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}

	var user models.User
	if err := database.DB.Where("name = ? OR email = ?", input.Login, input.Login).First(&user).Error; err != nil {
		// Same answer as a bad password so names cannot be enumerated.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	respondWithToken(c, http.StatusOK, user)
}

func respondWithToken(c *gin.Context, status int, user models.User) {
	token, err := jwt.GenerateToken(config.AppConfig.JWTSecret, config.AppConfig.TokenTTL, user.ID, user.Name, user.Role)
	if err != nil {
		internalError(c, "Failed to generate token", err)
		return
	}
	c.JSON(status, TokenResponse{Token: token, User: buildPrivateUserResponse(user)})
}

// endregion

// region --- User Handlers ---

// GetUserByName godoc
// @Summary      Get user by name
// @Description  Retrieves the public profile of a user together with shelf counters.
// @Tags         users
// @Produce      json
// @Param        name path      string  true  "User name"
// @Success      200  {object}  PublicUserResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{name} [get]
func GetUserByName(c *gin.Context) {
	user, ok := namedUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildPublicUserResponse(user))
}

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, viewerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		internalError(c, "Failed to load user", err)
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// endregion

// region --- Account Settings ---

// currentAccount loads the caller's own row.
func currentAccount(c *gin.Context) (models.User, bool) {
	viewerID, _ := auth.CurrentUserID(c)
	var user models.User
	if err := database.DB.First(&user, viewerID).Error; err != nil {
		lookupFailed(c, "User not found", err)
		return user, false
	}
	return user, true
}

// UpdateProfile godoc
// @Summary      Edit the caller's profile
// @Description  Replaces name, email, bio and picture. A fresh token is returned since the name is one of its claims.
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ProfileInput true "Profile"
// @Success      200 {object} TokenResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Name or email already exists"
// @Failure      422 {object} ValidationErrorResponse
// @Router       /user/profile [put]
func UpdateProfile(c *gin.Context) {
	user, ok := currentAccount(c)
	if !ok {
		return
	}

	var input ProfileInput
	if !bindJSON(c, &input) {
		return
	}
	name := strings.TrimSpace(input.Name)

	var taken int64
	err := database.DB.Model(&models.User{}).
		Where("(name = ? OR email = ?) AND id <> ?", name, input.Email, user.ID).
		Count(&taken).Error
	if err != nil {
		internalError(c, "Failed to check profile", err)
		return
	}
	if taken > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Name or email already exists"})
		return
	}

	user.Name, user.Email, user.Bio, user.ProfilePic = name, input.Email, input.Bio, input.ProfilePic
	if err := database.DB.Model(&user).Select("name", "email", "bio", "profile_pic").Updates(&user).Error; err != nil {
		writeFailed(c, "Name or email already exists", "Failed to update profile", err)
		return
	}

	respondWithToken(c, http.StatusOK, user)
}

// ChangePassword godoc
// @Summary      Change the caller's password
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body PasswordInput true "Passwords"
// @Success      200 {object} map[string]string "{"message": "Password updated"}"
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ValidationErrorResponse "Wrong current password or mismatched confirmation"
// @Router       /user/password [put]
func ChangePassword(c *gin.Context) {
	user, ok := currentAccount(c)
	if !ok {
		return
	}

	var input PasswordInput
	if !bindJSON(c, &input) {
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "Validation failed",
			Fields: map[string]string{"current_password": "is incorrect"},
		})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		internalError(c, "Failed to hash password", err)
		return
	}
	if err := database.DB.Model(&user).Update("password_hash", string(hashed)).Error; err != nil {
		internalError(c, "Failed to update password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// DeleteAccount godoc
// @Summary      Permanently delete the caller's account
// @Description  Removes the account with its reviews, likes, lists, shelf marks and Hall of Fame. Like counts of reviews the caller liked are recounted.
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body DeleteAccountInput true "Confirmation"
// @Success      200 {object} map[string]any "{"success": true, "message": "Account deleted"}"
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ValidationErrorResponse
// @Router       /user [delete]
func DeleteAccount(c *gin.Context) {
	user, ok := currentAccount(c)
	if !ok {
		return
	}

	var input DeleteAccountInput
	if !bindJSON(c, &input) {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var liked []uint
		if err := tx.Model(&models.ReviewLike{}).Where("user_id = ?", user.ID).Pluck("review_id", &liked).Error; err != nil {
			return err
		}

		ownReviews := tx.Model(&models.Review{}).Unscoped().Select("id").Where("user_id = ?", user.ID)
		ownLists := tx.Model(&models.GameList{}).Unscoped().Select("id").Where("user_id = ?", user.ID)
		steps := []func() error{
			func() error {
				return tx.Where("user_id = ? OR review_id IN (?)", user.ID, ownReviews).Delete(&models.ReviewLike{}).Error
			},
			func() error { return tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Review{}).Error },
			func() error { return tx.Where("list_id IN (?)", ownLists).Delete(&models.ListGame{}).Error },
			func() error { return tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.GameList{}).Error },
			func() error { return tx.Where("user_id = ?", user.ID).Delete(&models.GameStatus{}).Error },
			func() error { return tx.Where("user_id = ?", user.ID).Delete(&models.HallOfFameSlot{}).Error },
			func() error { return tx.Unscoped().Delete(&models.User{}, user.ID).Error },
		}
		for _, step := range steps {
			if err := step(); err != nil {
				return err
			}
		}

		for _, reviewID := range liked {
			var count int64
			if err := tx.Model(&models.ReviewLike{}).Where("review_id = ?", reviewID).Count(&count).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Review{}).Where("id = ?", reviewID).Update("likes_count", count).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		internalError(c, "Failed to delete account", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account deleted"})
}

// endregion

// region --- Helpers ---

func buildPublicUserResponse(user models.User) PublicUserResponse {
	// These counts can be optimized later if performance is an issue
	var reviews, favorites, completed, lists int64
	database.DB.Model(&models.Review{}).Where("user_id = ?", user.ID).Count(&reviews)
	database.DB.Model(&models.GameStatus{}).Where("user_id = ? AND kind = ?", user.ID, models.StatusFavorite).Count(&favorites)
	database.DB.Model(&models.GameStatus{}).Where("user_id = ? AND kind = ?", user.ID, models.StatusCompleted).Count(&completed)
	database.DB.Model(&models.GameList{}).Where("user_id = ?", user.ID).Count(&lists)

	return PublicUserResponse{
		ID:             user.ID,
		Name:           user.Name,
		Bio:            user.Bio,
		ProfilePic:     user.ProfilePic,
		ReviewsCount:   reviews,
		FavoritesCount: favorites,
		CompletedCount: completed,
		ListsCount:     lists,
	}
}

func buildPrivateUserResponse(user models.User) PrivateUserResponse {
	return PrivateUserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Bio:        user.Bio,
		ProfilePic: user.ProfilePic,
	}
}

// endregion
