// Package rest exposes the blog services over the JSON REST surface the
// browser client consumes.
package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avasquez/inkwell/api"
	"github.com/avasquez/inkwell/auth"
	"github.com/avasquez/inkwell/authors"
	"github.com/avasquez/inkwell/blog"
	"github.com/avasquez/inkwell/newsletter"
)

type API struct {
	blogSvc   *blog.Service
	authorSvc *authors.Service
	newsSvc   *newsletter.Service
	authSvc   *auth.Service
}

func NewAPI(
	router *gin.Engine,
	blogSvc *blog.Service,
	authorSvc *authors.Service,
	newsSvc *newsletter.Service,
	authSvc *auth.Service,
) *API {
	a := &API{
		blogSvc:   blogSvc,
		authorSvc: authorSvc,
		newsSvc:   newsSvc,
		authSvc:   authSvc,
	}

	root := router.Group("/api")
	root.Use(Identity(authSvc))
	{
		root.GET("/ping", a.Ping)
		root.GET("/tags", a.GetTags)
		root.POST("/subscribe", a.Subscribe)
		root.GET("/authors/:id", a.GetAuthor)
	}

	posts := root.Group("/posts")
	{
		posts.GET("", a.ListPosts)
		posts.POST("", a.CreatePost)
		posts.GET("/:id", a.GetPost)
		posts.PUT("/:id", a.UpdatePost)
		posts.DELETE("/:id", a.DeletePost)
		posts.POST("/:id/like", a.ToggleLike)
		posts.POST("/:id/bookmark", a.ToggleBookmark)
		posts.POST("/:id/comments", a.AddComment)
	}

	authGroup := root.Group("/auth")
	{
		authGroup.POST("/register", a.Register)
		authGroup.POST("/login", a.Login)
		authGroup.POST("/refresh", a.Refresh)
		authGroup.POST("/logout", a.Logout)
		authGroup.GET("/me", a.Me)
	}

	return a
}

func (a *API) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "ping"})
}

// writeError translates domain errors into the response contract. Every
// failure is deterministic, so nothing is retried here.
func writeError(c *gin.Context, err error) {
	var (
		validationErr   blog.ValidationError
		notFoundErr     blog.PostNotFoundError
		notAuthorErr    blog.NotPostAuthorError
		invalidEmailErr newsletter.InvalidEmailError
		authorNotFound  authors.AuthorNotFoundError
		userNotFound    auth.UserNotFoundError
		userExists      auth.UserAlreadyExistsError
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &invalidEmailErr),
		errors.Is(err, auth.ErrMissingRegisterFields):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: messageOf(err)})
	case errors.As(err, &notFoundErr),
		errors.As(err, &authorNotFound),
		errors.As(err, &userNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "Not Found"})
	case errors.As(err, &notAuthorErr):
		c.JSON(http.StatusForbidden, api.ErrorResponse{Message: "Forbidden"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "Invalid credentials"})
	case errors.As(err, &userExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Message: messageOf(err)})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "Internal Server Error"})
	}
}

// messageOf unwraps to the innermost error so the client sees the domain
// message, not the wrap chain.
func messageOf(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err.Error()
		}

		err = inner
	}
}
