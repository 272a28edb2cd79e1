package stats

import (
	"net/http"

	"CareerConnect/internal/access"

	"github.com/labstack/echo/v4"
)

type StatsHandler struct {
	service *StatsService
}

func NewStatsHandler(service *StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) Admin(c echo.Context) error {
	out, err := h.service.Admin(c.Request().Context(), access.FromEcho(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHandler) Recruiter(c echo.Context) error {
	out, err := h.service.Recruiter(c.Request().Context(), access.FromEcho(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatsHandler) Student(c echo.Context) error {
	out, err := h.service.Student(c.Request().Context(), access.FromEcho(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}
