package application

import (
	"net/http"

	"CareerConnect/internal/access"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationHandler struct {
	service *LedgerService
}

func NewApplicationHandler(service *LedgerService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

func objectID(c echo.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	return id, err == nil
}

func (h *ApplicationHandler) Apply(c echo.Context) error {
	jobID, ok := objectID(c, "jobId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job ID"})
	}
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	app, err := h.service.Submit(c.Request().Context(), access.FromEcho(c), jobID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) MyApplications(c echo.Context) error {
	entries, err := h.service.ListForStudent(c.Request().Context(), access.FromEcho(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *ApplicationHandler) JobApplicants(c echo.Context) error {
	jobID, ok := objectID(c, "jobId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job ID"})
	}
	entries, err := h.service.ListForJob(c.Request().Context(), access.FromEcho(c), jobID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *ApplicationHandler) UpdateStatus(c echo.Context) error {
	id, ok := objectID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid application ID"})
	}
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	app, err := h.service.UpdateStatus(c.Request().Context(), access.FromEcho(c), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, app)
}
