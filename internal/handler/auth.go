package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-booking/internal/service"
)

// AuthHandler serves the token endpoint and the caller's profile.
type AuthHandler struct {
	Auth  *service.AuthService
	Users *service.UserService
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService) *AuthHandler {
	if auth == nil || users == nil {
		panic("nil service passed to NewAuthHandler")
	}
	return &AuthHandler{Auth: auth, Users: users}
}

// tokenReq accepts the employee number either as employee_number or as the
// OAuth2 password-grant field username.
type tokenReq struct {
	EmployeeNumber string `json:"employee_number" form:"employee_number"`
	Username       string `json:"username" form:"username"`
	Password       string `json:"password" form:"password"`
}

type tokenResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Token exchanges an employee number and password for a bearer token.
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	number := req.EmployeeNumber
	if number == "" {
		number = req.Username
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tok, _, err := h.Auth.Login(ctx, number, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResp{AccessToken: tok.Token, TokenType: "bearer", ExpiresAt: tok.Exp})
}

// Me returns the stored user behind the bearer token.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	u, err := h.Users.Get(c.Request().Context(), uid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}
