package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasquez/inkwell/api"
	"github.com/avasquez/inkwell/auth"
	"github.com/avasquez/inkwell/authors"
	"github.com/avasquez/inkwell/blog"
	"github.com/avasquez/inkwell/db/memory"
	"github.com/avasquez/inkwell/internal/rest"
	"github.com/avasquez/inkwell/newsletter"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	directory := authors.NewDirectory()
	blogSvc := blog.NewService(memory.NewPostRepository(), directory)
	authorSvc := authors.NewService(directory, blogSvc)
	newsSvc := newsletter.NewService(memory.NewSubscriptionRepository())

	userRepo := memory.NewUserRepository()
	require.NoError(t, auth.SeedDemoUser(context.Background(), userRepo))

	authSvc := auth.NewService(userRepo, auth.NewOpaqueTokenIssuer())

	router := gin.New()
	rest.NewAPI(router, blogSvc, authorSvc, newsSvc, authSvc)

	return router
}

func doRequest(
	t *testing.T,
	router *gin.Engine,
	method, path string,
	body any,
	headers map[string]string,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return out
}

func TestPing(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/ping", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndListPosts(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{
		Title:   "First",
		Content: "Body",
		Tags:    api.TagList{"go"},
	}, map[string]string{"x-user-id": "u9", "x-user-name": "Visiting Writer"})

	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[api.Post](t, rec)
	assert.Equal(t, "u9", created.AuthorID)
	assert.Equal(t, "Visiting Writer", created.AuthorName)
	assert.Equal(t, "published", created.State)
	assert.Equal(t, []string{}, created.Likes)
	assert.Equal(t, []string{}, created.Bookmarks)
	assert.Equal(t, []api.Comment{}, created.Comments)

	rec = doRequest(t, router, http.MethodGet, "/api/posts", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[api.PostPage](t, rec)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 9, page.Limit, "default page size")
}

func TestCreatePostAcceptsCommaSeparatedTags(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", map[string]any{
		"title":   "T",
		"content": "C",
		"tags":    "go, web ,",
	}, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[api.Post](t, rec)
	assert.Equal(t, []string{"go", "web"}, created.Tags)
}

func TestCreatePostValidation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{Title: "only"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "title and content required", resp.Message)
}

func TestGetPostNotFound(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/posts/ghost", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "Not Found", resp.Message)
}

func TestUpdatePostForbidden(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{
		Title: "Mine", Content: "Body",
	}, map[string]string{"x-user-id": "u1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[api.Post](t, rec)

	rec = doRequest(t, router, http.MethodPut, "/api/posts/"+created.ID, api.UpdatePostRequest{
		Title: "Stolen",
	}, map[string]string{"x-user-id": "u2"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	resp := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "Forbidden", resp.Message)

	rec = doRequest(t, router, http.MethodGet, "/api/posts/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mine", decode[api.Post](t, rec).Title)
}

func TestUpdatePostTagSemantics(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{
		Title: "T", Content: "C", Tags: api.TagList{"go", "web"},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[api.Post](t, rec)

	t.Run("absent tags key keeps the prior tags", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPut, "/api/posts/"+created.ID,
			map[string]any{"title": "Renamed"}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		updated := decode[api.Post](t, rec)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, []string{"go", "web"}, updated.Tags)
	})

	t.Run("explicit empty array clears the tags", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPut, "/api/posts/"+created.ID,
			map[string]any{"tags": []string{}}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		assert.Equal(t, []string{}, decode[api.Post](t, rec).Tags)
	})
}

func TestDeletePost(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{
		Title: "Gone", Content: "Soon",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[api.Post](t, rec)

	// identity defaults to the demo user on both requests
	rec = doRequest(t, router, http.MethodDelete, "/api/posts/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[api.Post](t, rec).ID)

	rec = doRequest(t, router, http.MethodGet, "/api/posts/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleLike(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{
		Title: "T", Content: "C",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[api.Post](t, rec)

	rec = doRequest(t, router, http.MethodPost, "/api/posts/"+created.ID+"/like", nil,
		map[string]string{"x-user-id": "u2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u2"}, decode[api.Post](t, rec).Likes)

	rec = doRequest(t, router, http.MethodPost, "/api/posts/"+created.ID+"/like", nil,
		map[string]string{"x-user-id": "u2"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{}, decode[api.Post](t, rec).Likes)
}

func TestAddComment(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{
		Title: "T", Content: "C",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[api.Post](t, rec)

	rec = doRequest(t, router, http.MethodPost, "/api/posts/"+created.ID+"/comments",
		api.AddCommentRequest{Text: "  nice  "}, map[string]string{"x-user-id": "u2"})
	require.Equal(t, http.StatusCreated, rec.Code)

	comment := decode[api.Comment](t, rec)
	assert.Equal(t, "nice", comment.Text)
	assert.Equal(t, "Morgan Lee", comment.UserName)

	rec = doRequest(t, router, http.MethodPost, "/api/posts/"+created.ID+"/comments",
		api.AddCommentRequest{Text: "   "}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text required", decode[api.ErrorResponse](t, rec).Message)
}

func TestGetTags(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{
		Title: "T", Content: "C", Tags: api.TagList{"go", "web"},
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/tags", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	tags := decode[api.TagCountList](t, rec)
	assert.Equal(t, []api.TagCount{{Tag: "go", Count: 1}, {Tag: "web", Count: 1}}, tags.Items)
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/subscribe",
		api.SubscribeRequest{Email: "reader@example.com"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decode[api.OKResponse](t, rec).OK)

	rec = doRequest(t, router, http.MethodPost, "/api/subscribe",
		api.SubscribeRequest{Email: "not-an-email"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid email", decode[api.ErrorResponse](t, rec).Message)
}

func TestGetAuthor(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{
		Title: "T", Content: "C",
	}, map[string]string{"x-user-id": "u1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/authors/u1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	author := decode[api.Author](t, rec)
	assert.Equal(t, "Alex Rivera", author.Name)
	assert.Equal(t, 1, author.PostsCount)

	rec = doRequest(t, router, http.MethodGet, "/api/authors/u99", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode[api.ErrorResponse](t, rec).Message)
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	t.Run("register", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/auth/register", api.RegisterRequest{
			Name: "Sam Park", Email: "sam@example.com", Password: "hunter2",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[api.AuthResponse](t, rec)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "sam@example.com", resp.User.Email)
	})

	t.Run("register duplicate email", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/auth/register", api.RegisterRequest{
			Name: "Sam Again", Email: "sam@example.com", Password: "other",
		}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("register missing fields", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/auth/register", api.RegisterRequest{
			Name: "No Password", Email: "np@example.com",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "name, email, password required", decode[api.ErrorResponse](t, rec).Message)
	})

	t.Run("login and authenticated me", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/auth/login", api.LoginRequest{
			Email: "alex@example.com", Password: "password",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[api.AuthResponse](t, rec)
		require.NotEmpty(t, resp.AccessToken)

		rec = doRequest(t, router, http.MethodGet, "/api/auth/me", nil,
			map[string]string{"Authorization": "Bearer " + resp.AccessToken})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", decode[api.User](t, rec).ID)
	})

	t.Run("login wrong password", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/auth/login", api.LoginRequest{
			Email: "alex@example.com", Password: "wrong",
		}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decode[api.ErrorResponse](t, rec).Message)
	})

	t.Run("me defaults to the demo user", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodGet, "/api/auth/me", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		user := decode[api.User](t, rec)
		assert.Equal(t, "u1", user.ID)
		assert.Equal(t, "Alex Rivera", user.Name)
	})

	t.Run("refresh issues a token for the current identity", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/auth/refresh", nil,
			map[string]string{"x-user-id": "u7"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decode[api.RefreshResponse](t, rec).AccessToken)
	})

	t.Run("logout", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/auth/logout", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[api.OKResponse](t, rec).OK)
	})
}

func TestIdentityPrecedence(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	issuer := auth.NewOpaqueTokenIssuer()
	token, err := issuer.Issue("u3")
	require.NoError(t, err)

	t.Run("bearer token wins over the header", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{
			Title: "T", Content: "C",
		}, map[string]string{
			"Authorization": "Bearer " + token,
			"x-user-id":     "u2",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "u3", decode[api.Post](t, rec).AuthorID)
	})

	t.Run("malformed token falls back to the header", func(t *testing.T) {
		rec := doRequest(t, router, http.MethodPost, "/api/posts", api.CreatePostRequest{
			Title: "T", Content: "C",
		}, map[string]string{
			"Authorization": "Bearer %%%",
			"x-user-id":     "u2",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "u2", decode[api.Post](t, rec).AuthorID)
	})
}
