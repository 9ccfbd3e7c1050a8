package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avasquez/inkwell/api"
	"github.com/avasquez/inkwell/blog"
)

func (a *API) ListPosts(c *gin.Context) {
	params := blog.ListPostsParams{
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
		Author: c.Query("author"),
		Page:   intQuery(c, "page", blog.DefaultPage),
		Limit:  intQuery(c, "limit", blog.DefaultLimit),
	}

	page, err := a.blogSvc.ListPosts(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)

		return
	}

	items := make([]api.Post, 0, len(page.Items))
	for _, post := range page.Items {
		items = append(items, toAPIPost(post))
	}

	c.JSON(http.StatusOK, api.PostPage{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

func (a *API) GetPost(c *gin.Context) {
	post, err := a.blogSvc.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, toAPIPost(post))
}

func (a *API) CreatePost(c *gin.Context) {
	var req api.CreatePostRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})

		return
	}

	userID := currentUserID(c)

	userName := c.GetHeader(headerUserName)
	if userName == "" {
		if name, _, ok := a.authorSvc.ResolveIdentity(c.Request.Context(), userID); ok {
			userName = name
		} else {
			userName = "User"
		}
	}

	post, err := a.blogSvc.CreatePost(c.Request.Context(), userID, userName, blog.CreatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
		State:    req.State,
	})
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusCreated, toAPIPost(post))
}

func (a *API) UpdatePost(c *gin.Context) {
	var req api.UpdatePostRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})

		return
	}

	post, err := a.blogSvc.UpdatePost(c.Request.Context(), c.Param("id"), currentUserID(c), blog.UpdatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
		State:    req.State,
	})
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, toAPIPost(post))
}

func (a *API) DeletePost(c *gin.Context) {
	post, err := a.blogSvc.DeletePost(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, toAPIPost(post))
}

func (a *API) ToggleLike(c *gin.Context) {
	post, err := a.blogSvc.ToggleLike(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, toAPIPost(post))
}

func (a *API) ToggleBookmark(c *gin.Context) {
	post, err := a.blogSvc.ToggleBookmark(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, toAPIPost(post))
}

func (a *API) AddComment(c *gin.Context) {
	var req api.AddCommentRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})

		return
	}

	comment, err := a.blogSvc.AddComment(c.Request.Context(), c.Param("id"), currentUserID(c), req.Text)
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusCreated, toAPIComment(comment))
}

func (a *API) GetTags(c *gin.Context) {
	counts, err := a.blogSvc.TagCounts(c.Request.Context())
	if err != nil {
		writeError(c, err)

		return
	}

	items := make([]api.TagCount, 0, len(counts))
	for _, count := range counts {
		items = append(items, api.TagCount{Tag: count.Tag, Count: count.Count})
	}

	c.JSON(http.StatusOK, api.TagCountList{Items: items})
}

func (a *API) GetAuthor(c *gin.Context) {
	profile, err := a.authorSvc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, api.Author{
		ID:         profile.ID,
		Name:       profile.Name,
		AvatarURL:  profile.AvatarURL,
		Bio:        profile.Bio,
		PostsCount: profile.PostsCount,
	})
}

func (a *API) Subscribe(c *gin.Context) {
	var req api.SubscribeRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})

		return
	}

	err = a.newsSvc.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusCreated, api.OKResponse{OK: true})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}

	return value
}

func toAPIPost(post *blog.Post) api.Post {
	comments := make([]api.Comment, 0, len(post.Comments))
	for i := range post.Comments {
		comments = append(comments, toAPIComment(&post.Comments[i]))
	}

	return api.Post{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		Tags:       emptyIfNil(post.Tags),
		ImageURL:   post.ImageURL,
		AuthorID:   post.AuthorID,
		AuthorName: post.AuthorName,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
		State:      string(post.State),
		Likes:      emptyIfNil(post.Likes),
		Bookmarks:  emptyIfNil(post.Bookmarks),
		Comments:   comments,
	}
}

func toAPIComment(comment *blog.Comment) api.Comment {
	return api.Comment{
		ID:         comment.ID,
		UserID:     comment.UserID,
		UserName:   comment.UserName,
		UserAvatar: comment.UserAvatar,
		Text:       comment.Text,
		CreatedAt:  comment.CreatedAt,
	}
}

// emptyIfNil keeps empty collections marshaling as [] instead of null.
func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
