package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"gameshelf/backend/internal/auth"
	"gameshelf/backend/internal/database"
	"gameshelf/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// ValidationErrorResponse is returned with 422 when request fields fail validation.
type ValidationErrorResponse struct {
	Error  string            `json:"error" example:"Validation failed"`
	Fields map[string]string `json:"fields"`
}

var logger = zap.NewNop()

// SetLogger replaces the logger handlers report storage failures to.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// RegisterValidators installs the custom binding rules used by the DTOs and
// reports fields by their JSON names.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// bindJSON decodes the request body into dst. It answers 400 for malformed JSON
// and 422 with per-field messages when validation fails.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{Error: "Validation failed", Fields: fields})
		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "eq":
		return "must be " + fe.Param()
	case "eqfield":
		return "does not match"
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// internalError logs err and answers 500 with a generic message.
func internalError(c *gin.Context, msg string, err error) {
	logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// lookupFailed answers 404 with notFound when the row does not exist and 500
// for any other storage failure.
func lookupFailed(c *gin.Context, notFound string, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}
	internalError(c, "Failed to load data", err)
}

// writeFailed answers 409 with conflict when err is a unique key violation and
// 500 otherwise.
func writeFailed(c *gin.Context, conflict, msg string, err error) {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusConflict, gin.H{"error": conflict})
		return
	}
	internalError(c, msg, err)
}

// uintParam parses a positive integer path parameter.
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// pageParams reads page/limit query parameters with the usual defaults and caps.
func pageParams(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Max limit
	}
	return page, limit
}

// limitParam reads the limit query parameter of an unpaginated listing.
func limitParam(c *gin.Context, def, maxLimit int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit < 1 {
		return def
	}
	return min(limit, maxLimit)
}

// ownedUser loads the user named in the path and makes sure it is the caller.
// Mutations on somebody else's shelf answer 403.
func ownedUser(c *gin.Context) (models.User, bool) {
	var user models.User
	if err := database.DB.Where("name = ?", c.Param("name")).First(&user).Error; err != nil {
		lookupFailed(c, "User not found", err)
		return user, false
	}

	viewerID, _ := auth.CurrentUserID(c)
	if user.ID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only change your own shelf"})
		return user, false
	}
	return user, true
}

// namedUser loads the user named in the path.
func namedUser(c *gin.Context) (models.User, bool) {
	var user models.User
	if err := database.DB.Where("name = ?", c.Param("name")).First(&user).Error; err != nil {
		lookupFailed(c, "User not found", err)
		return user, false
	}
	return user, true
}
