package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/bodega/app/resources"
	"github.com/shashiranjanraj/bodega/app/services"
	"github.com/shashiranjanraj/bodega/pkg/ctx"
	"github.com/shashiranjanraj/bodega/pkg/middleware"
	"github.com/shashiranjanraj/bodega/pkg/resource"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController() *AuthController {
	return &AuthController{service: services.NewAuthService()}
}

func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	pair, err := ac.service.Login(c.Context(), in)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.Error(http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(pair)
}

func (ac *AuthController) Refresh(c *ctx.Context) {
	var in services.RefreshInput
	if !c.BindJSON(&in) {
		return
	}
	pair, err := ac.service.Refresh(c.Context(), in)
	if errors.Is(err, services.ErrInvalidCredentials) {
		c.Error(http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(pair)
}

// Me returns the operator the access token belongs to.
func (ac *AuthController) Me(c *ctx.Context) {
	id, ok := middleware.UserIDFromCtx(c.R)
	if !ok {
		c.Unauthorized()
		return
	}
	u, err := ac.service.Me(c.Context(), id)
	if errors.Is(err, services.ErrNotFound) {
		c.Unauthorized()
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.One(resources.User, u))
}
