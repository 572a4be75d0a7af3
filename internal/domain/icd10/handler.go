package icd10

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthtrio/codelib/internal/platform/auth"
)

// Handler provides the upload and search endpoints for the code library.
type Handler struct {
	svc *Service
}

// NewHandler creates a new ICD-10 handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the library routes. Uploads mutate reference
// data and require the admin role; search keeps the reference API path
// and stays open to downstream consumers.
func (h *Handler) RegisterRoutes(api *echo.Group, public *echo.Group) {
	uploads := api.Group("/icd10", auth.RequireRole("admin"))
	uploads.POST("/upload", h.Upload)

	public.GET("/icd10/search", h.Search)
}

// Upload handles POST /api/v1/icd10/upload.
//
// Multipart form fields: file (.xml), library_year (4-digit), and
// library_type (CM or PCS). The whole document is reconciled in one
// transaction; the response reports new/updated/skipped counts.
func (h *Handler) Upload(c echo.Context) error {
	year, err := strconv.Atoi(strings.TrimSpace(c.FormValue("library_year")))
	if err != nil || year < 1000 || year > 9999 {
		return echo.NewHTTPError(http.StatusBadRequest, "library_year must be a 4-digit year")
	}

	typ, err := ParseLibraryType(c.FormValue("library_type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "upload file is required")
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xml") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file type: only .xml uploads are accepted")
	}

	actorID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid user identity")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read upload file")
	}
	defer file.Close()

	summary, err := h.svc.Ingest(c.Request().Context(), NewParser(file), year, typ, actorID)
	if err != nil {
		var parseErr *ParseError
		var recErr *MalformedRecordError
		var conflictErr *ConflictError
		switch {
		case errors.As(err, &parseErr), errors.As(err, &recErr):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.As(err, &conflictErr):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "upload could not be processed")
		}
	}

	return c.JSON(http.StatusOK, summary)
}

// Search handles GET /api/icd10/search.
//
// Query params: date_of_service (required, YYYY-MM-DD), code,
// description, and library_type (optional). The date of service selects
// the applicable annual library; October through December roll over to
// the next year's edition.
func (h *Handler) Search(c echo.Context) error {
	dos := c.QueryParam("date_of_service")
	if dos == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date_of_service is required (YYYY-MM-DD)")
	}
	serviceDate, err := time.Parse("2006-01-02", dos)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_of_service must be formatted YYYY-MM-DD")
	}

	var typ *LibraryType
	if raw := c.QueryParam("library_type"); raw != "" {
		parsed, err := ParseLibraryType(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		typ = &parsed
	}

	results, err := h.svc.Search(c.Request().Context(), serviceDate,
		c.QueryParam("code"), c.QueryParam("description"), typ)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search could not be completed")
	}
	if results == nil {
		results = []*DiagnosisRecord{}
	}
	return c.JSON(http.StatusOK, results)
}
