package profile

import (
	"net/http"

	"CareerConnect/internal/access"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxUploadBytes bounds avatar and resume uploads.
const MaxUploadBytes = 5 << 20

type ProfileHandler struct {
	service *ProfileService
}

func NewProfileHandler(service *ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func userID(c echo.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	return id, err == nil
}

func (h *ProfileHandler) GetStudentProfile(c echo.Context) error {
	id, ok := userID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}
	p, err := h.service.GetStudent(c.Request().Context(), access.FromEcho(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) UpdateStudentProfile(c echo.Context) error {
	id, ok := userID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}
	var req StudentProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.UpdateStudent(c.Request().Context(), access.FromEcho(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// uploadHandler reads the multipart field named after kind and hands it to the service.
func (h *ProfileHandler) uploadHandler(kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := userID(c, "userId")
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
		}
		file, err := c.FormFile(kind)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "No file uploaded"})
		}
		if file.Size > MaxUploadBytes {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "File too large"})
		}
		src, err := file.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		p, err := h.service.Upload(c.Request().Context(), access.FromEcho(c), id, kind,
			file.Filename, file.Header.Get(echo.HeaderContentType), src)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, p)
	}
}

func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	return h.uploadHandler(UploadAvatar)(c)
}

func (h *ProfileHandler) UploadResume(c echo.Context) error {
	return h.uploadHandler(UploadResume)(c)
}

func (h *ProfileHandler) UpdateRecruiterProfile(c echo.Context) error {
	id, ok := userID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}
	var req RecruiterProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.UpdateRecruiter(c.Request().Context(), access.FromEcho(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) ApproveRecruiter(c echo.Context) error {
	id, ok := userID(c, "recruiterId")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid recruiter ID"})
	}
	p, err := h.service.ApproveRecruiter(c.Request().Context(), access.FromEcho(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
