package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/moviehall/cinema-booking/internal/repository"
)

// ReportHandler serves the admin reporting endpoints.
type ReportHandler struct {
	Reports *repository.ReportRepo
}

func NewReportHandler(reports *repository.ReportRepo) *ReportHandler {
	return &ReportHandler{Reports: reports}
}

// MoviesRevenue handles GET /v1/reports/movies/revenue.
func (h *ReportHandler) MoviesRevenue(c echo.Context) error {
	items, err := h.Reports.MoviesByRevenue(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// MoviesAttendance handles GET /v1/reports/movies/attendance.
func (h *ReportHandler) MoviesAttendance(c echo.Context) error {
	items, err := h.Reports.MoviesByAttendance(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// UsersSpending handles GET /v1/reports/users/spending.  The optional
// limit query parameter caps the number of rows, default 10.
func (h *ReportHandler) UsersSpending(c echo.Context) error {
	limit := 10
	if n, err := strconv.Atoi(c.QueryParam("limit")); err == nil && n > 0 && n <= 100 {
		limit = n
	}
	items, err := h.Reports.TopSpenders(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}
