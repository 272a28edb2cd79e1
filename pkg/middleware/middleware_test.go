package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CareerConnect/internal/access"
	"CareerConnect/internal/apperr"
	"CareerConnect/internal/auth"
	"CareerConnect/internal/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler(zap.NewNop(), true)
	return e
}

func TestJWTMiddlewareSetsIdentity(t *testing.T) {
	tokens := auth.NewTokens(&config.AuthConfig{JWTKey: []byte("k"), TokenTTL: time.Hour})
	user := &auth.User{ID: primitive.NewObjectID(), Role: access.RoleRecruiter}
	token, err := tokens.Generate(user)
	require.NoError(t, err)

	e := newEcho()
	var got access.Identity
	e.GET("/me", func(c echo.Context) error {
		got = access.FromEcho(c)
		return c.NoContent(http.StatusNoContent)
	}, JWTMiddleware(tokens, zap.NewNop()))

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer garbage", http.StatusUnauthorized},
		{"Bearer " + token, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set(echo.HeaderAuthorization, tc.header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, tc.status, rec.Code, tc.header)
	}
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, access.RoleRecruiter, got.Role)
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	e := newEcho()
	cases := map[string]struct {
		err    error
		status int
		body   string
	}{
		"/forbidden": {apperr.Forbidden("nope"), http.StatusForbidden, `{"error":"nope"}`},
		"/window":    {apperr.New(apperr.KindWindowClosed, "closed"), http.StatusUnprocessableEntity, `{"error":"closed"}`},
		"/dup":       {apperr.New(apperr.KindDuplicateApplication, "dup"), http.StatusConflict, `{"error":"dup"}`},
		"/internal":  {apperr.Internal(errors.New("mongo: socket closed")), http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
		"/untyped":   {errors.New("boom"), http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
		"/echo":      {echo.NewHTTPError(http.StatusMethodNotAllowed, "not here"), http.StatusMethodNotAllowed, `{"error":"not here"}`},
	}
	for path, tc := range cases {
		err := tc.err
		e.GET(path, func(echo.Context) error { return err })
	}
	for path, tc := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, tc.status, rec.Code, path)
		require.JSONEq(t, tc.body, rec.Body.String(), path)
	}
}

func TestValidatorReturnsValidationError(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}
	err := NewValidator().Validate(&payload{Email: "nope"})
	require.True(t, apperr.Is(err, apperr.KindValidation))
	require.Contains(t, apperr.Message(err), "Email")
	require.NoError(t, NewValidator().Validate(&payload{Email: "a@b.co"}))
}
