package handler

import (
	"net/http"

	_ "gameshelf/backend/docs" // registers the OpenAPI document with swag

	"gameshelf/backend/internal/auth"
	"gameshelf/backend/internal/logging"
	"gameshelf/backend/internal/models"
	"gameshelf/backend/internal/ratelimit"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// statusRoutes maps the path segment of each shelf status to its kind.
var statusRoutes = map[string]models.StatusKind{
	"favorites": models.StatusFavorite,
	"wishlist":  models.StatusWishlist,
	"completed": models.StatusCompleted,
}

// NewRouter builds the gin engine serving the GameShelf API.
// Mutating routes pass through limiter when it is non-nil.
func NewRouter(log *zap.Logger, limiter *ratelimit.KeyedLimiter) *gin.Engine {
	SetLogger(log)
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), logging.GinMiddleware(log))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	requireAuth := auth.AuthMiddleware()
	optionalAuth := auth.OptionalAuthMiddleware()
	throttle := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		throttle = ratelimit.Middleware(limiter)
	}
	mutating := []gin.HandlerFunc{requireAuth, throttle}

	apiV1 := router.Group("/api/v1")
	{
		authRoutes := apiV1.Group("/auth")
		authRoutes.Use(throttle)
		{
			authRoutes.POST("/register", RegisterUser)
			authRoutes.POST("/login", LoginUser)
		}

		userRoutes := apiV1.Group("/users")
		{
			userRoutes.GET("/me", requireAuth, GetMe)
			userRoutes.GET("/:name", GetUserByName)
			userRoutes.GET("/:name/lists", GetUserLists)
			userRoutes.GET("/:name/hall-of-fame", GetHallOfFame)
			userRoutes.PUT("/:name/hall-of-fame", append(mutating, UpdateHallOfFame)...)

			for segment, kind := range statusRoutes {
				userRoutes.GET("/:name/"+segment, ListStatus(kind))
				userRoutes.POST("/:name/"+segment, append(mutating, AddStatus(kind))...)
				userRoutes.DELETE("/:name/"+segment+"/:gameId", append(mutating, RemoveStatus(kind))...)
			}
		}

		accountRoutes := apiV1.Group("/user")
		accountRoutes.Use(mutating...)
		{
			accountRoutes.PUT("/profile", UpdateProfile)
			accountRoutes.PUT("/password", ChangePassword)
			accountRoutes.DELETE("", DeleteAccount)
		}

		gameRoutes := apiV1.Group("/games")
		{
			gameRoutes.GET("", GetGames)
			gameRoutes.GET("/:id", optionalAuth, GetGameByID)
			gameRoutes.GET("/:id/reviews", optionalAuth, GetGameReviews)
			gameRoutes.POST("/:id/reviews", append(mutating, CreateReview)...)
		}

		apiV1.GET("/top-games", GetTopGames)
		apiV1.GET("/genres", GetGenres)

		listRoutes := apiV1.Group("/lists")
		{
			listRoutes.POST("", append(mutating, CreateList)...)
			listRoutes.GET("/:id", GetList)
			listRoutes.PUT("/:id", append(mutating, UpdateList)...)
			listRoutes.DELETE("/:id", append(mutating, DeleteList)...)
			listRoutes.POST("/:id/games", append(mutating, AddGameToList)...)
			listRoutes.DELETE("/:id/games/:gameId", append(mutating, RemoveGameFromList)...)
		}

		reviewRoutes := apiV1.Group("/reviews")
		{
			reviewRoutes.GET("/recent", GetRecentReviews)
			reviewRoutes.DELETE("/:id", append(mutating, DeleteReview)...)
			reviewRoutes.POST("/:id/toggle-like", append(mutating, ToggleReviewLike)...)
			reviewRoutes.GET("/:id/events", StreamReviewEvents)
		}

		// Catalog maintenance
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(requireAuth, auth.CatalogAdminMiddleware())
		{
			genres := adminRoutes.Group("/genres")
			{
				genres.POST("", CreateGenre)
				genres.PUT("/:id", UpdateGenre)
				genres.DELETE("/:id", DeleteGenre)
			}

			adminGameRoutes := adminRoutes.Group("/games")
			{
				adminGameRoutes.POST("", CreateGame)
				adminGameRoutes.PUT("/:id", UpdateGame)
				adminGameRoutes.DELETE("/:id", DeleteGame)
			}
		}
	}

	return router
}
