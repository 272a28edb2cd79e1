package auth

import (
	"net/http"

	"CareerConnect/internal/access"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthHandler struct {
	service *UserService
}

func NewAuthHandler(service *UserService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid Request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.RegisterUser(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var cred Credential
	if err := c.Bind(&cred); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&cred); err != nil {
		return err
	}

	resp, err := h.service.AuthenticateUser(c.Request().Context(), cred)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.service.Me(c.Request().Context(), access.FromEcho(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), access.FromEcho(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context(), access.FromEcho(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AuthHandler) BlockUser(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}
	if err := h.service.BlockUser(c.Request().Context(), access.FromEcho(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User blocked"})
}
