package job

import (
	"net/http"

	"CareerConnect/internal/access"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobHandler struct {
	service *JobService
}

func NewJobHandler(service *JobService) *JobHandler {
	return &JobHandler{service: service}
}

func jobID(c echo.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	return id, err == nil
}

// ListJobs returns active jobs matching the search, location, category and type query parameters.
func (h *JobHandler) ListJobs(c echo.Context) error {
	var f Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid filter"})
	}
	jobs, err := h.service.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(c echo.Context) error {
	id, ok := jobID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job ID"})
	}
	job, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

func (h *JobHandler) MyJobs(c echo.Context) error {
	jobs, err := h.service.ListMine(c.Request().Context(), access.FromEcho(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) CreateJob(c echo.Context) error {
	var req JobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	job, err := h.service.Create(c.Request().Context(), access.FromEcho(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) UpdateJob(c echo.Context) error {
	id, ok := jobID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job ID"})
	}
	var req JobRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	job, err := h.service.Update(c.Request().Context(), access.FromEcho(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c echo.Context) error {
	id, ok := jobID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job ID"})
	}
	if err := h.service.Delete(c.Request().Context(), access.FromEcho(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Job deleted successfully"})
}
