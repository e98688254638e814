package api

import (
	"go-catalog/internal/auth"
	"go-catalog/internal/config"
	"go-catalog/internal/mail"
	"go-catalog/internal/permissions"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func SetupRouter(cfg *config.Config, rdb *redis.Client, mailer mail.Mailer) *gin.Engine {
	r := gin.Default()

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthHandler)

		// Auth: open endpoints, no actor required
		v1.POST("/auth/signup", SignupHandler(cfg, mailer))
		v1.POST("/auth/token", TokenHandler(cfg))
	}

	// Resource endpoints resolve an optional bearer token; the permission
	// compositions decide what an anonymous actor may do.
	resources := v1.Group("", auth.Middleware(cfg))
	{
		catalogGate := Require(permissions.Catalog)
		feedbackGate := Require(permissions.Feedback)
		adminGate := Require(permissions.AdminOnly)
		selfGate := Require(permissions.SelfProfile)

		// Catalog: categories, genres, titles
		resources.GET("/categories", catalogGate, ListCategoriesHandler())
		resources.POST("/categories", catalogGate, CreateCategoryHandler())
		resources.DELETE("/categories/:slug", catalogGate, DeleteCategoryHandler())

		resources.GET("/genres", catalogGate, ListGenresHandler())
		resources.POST("/genres", catalogGate, CreateGenreHandler())
		resources.DELETE("/genres/:slug", catalogGate, DeleteGenreHandler())

		resources.GET("/titles", catalogGate, ListTitlesHandler(rdb))
		resources.POST("/titles", catalogGate, CreateTitleHandler(rdb))
		resources.GET("/titles/:title_id", catalogGate, GetTitleHandler(rdb))
		resources.PATCH("/titles/:title_id", catalogGate, UpdateTitleHandler(rdb))
		resources.DELETE("/titles/:title_id", catalogGate, DeleteTitleHandler(rdb))

		// Reviews nested under titles
		resources.GET("/titles/:title_id/reviews", feedbackGate, ListReviewsHandler())
		resources.POST("/titles/:title_id/reviews", feedbackGate, CreateReviewHandler(rdb))
		resources.GET("/titles/:title_id/reviews/:review_id", feedbackGate, GetReviewHandler())
		resources.PATCH("/titles/:title_id/reviews/:review_id", feedbackGate, UpdateReviewHandler(rdb))
		resources.DELETE("/titles/:title_id/reviews/:review_id", feedbackGate, DeleteReviewHandler(rdb))

		// Comments nested under reviews
		resources.GET("/titles/:title_id/reviews/:review_id/comments", feedbackGate, ListCommentsHandler())
		resources.POST("/titles/:title_id/reviews/:review_id/comments", feedbackGate, CreateCommentHandler())
		resources.GET("/titles/:title_id/reviews/:review_id/comments/:comment_id", feedbackGate, GetCommentHandler())
		resources.PATCH("/titles/:title_id/reviews/:review_id/comments/:comment_id", feedbackGate, UpdateCommentHandler())
		resources.DELETE("/titles/:title_id/reviews/:review_id/comments/:comment_id", feedbackGate, DeleteCommentHandler())

		// Self profile before the admin lookup so "me" never matches :username
		resources.GET("/users/me", selfGate, GetMeHandler())
		resources.PATCH("/users/me", selfGate, UpdateMeHandler(cfg))

		// Admin: users
		resources.GET("/users", adminGate, ListUsersHandler())
		resources.POST("/users", adminGate, CreateUserHandler(cfg))
		resources.GET("/users/:username", adminGate, GetUserHandler())
		resources.PATCH("/users/:username", adminGate, UpdateUserHandler(cfg))
		resources.DELETE("/users/:username", adminGate, DeleteUserHandler())
	}
	return r
}
