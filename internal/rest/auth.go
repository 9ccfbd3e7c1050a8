package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avasquez/inkwell/api"
	"github.com/avasquez/inkwell/auth"
)

func (a *API) Register(c *gin.Context) {
	var req api.RegisterRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})

		return
	}

	token, user, err := a.authSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, api.AuthResponse{
		AccessToken: token,
		User:        toAPIUser(user),
	})
}

func (a *API) Login(c *gin.Context) {
	var req api.LoginRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid request body"})

		return
	}

	token, user, err := a.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, api.AuthResponse{
		AccessToken: token,
		User:        toAPIUser(user),
	})
}

func (a *API) Refresh(c *gin.Context) {
	token, err := a.authSvc.Refresh(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, api.RefreshResponse{AccessToken: token})
}

// Logout has no server-side state to clear; the token simply stops being
// sent by the client.
func (a *API) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, api.OKResponse{OK: true})
}

func (a *API) Me(c *gin.Context) {
	user, err := a.authSvc.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)

		return
	}

	c.JSON(http.StatusOK, toAPIUser(user))
}

func toAPIUser(user *auth.User) api.User {
	return api.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
}
