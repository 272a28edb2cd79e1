package middleware

import (
	"errors"
	"net/http"

	"CareerConnect/internal/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as {"error": message}. Internal errors are logged with their
// stack. Outside production the cause is added as "detail".
func ErrorHandler(logger *zap.Logger, production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := apperr.HTTPStatus(err)
		body := map[string]string{"error": apperr.Message(err)}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			body["error"] = http.StatusText(he.Code)
			if m, ok := he.Message.(string); ok {
				body["error"] = m
			}
		} else if status == http.StatusInternalServerError {
			logger.Error("internal error",
				zap.String("path", c.Path()),
				zap.Error(err),
				zap.String("stack", apperr.Stack(err)))
			if !production {
				body["detail"] = err.Error()
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Warn("failed to write error response", zap.Error(err))
		}
	}
}
