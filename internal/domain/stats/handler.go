package stats

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/healthtime/healthtime/internal/platform/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/stats/overview", h.overview)
	g.GET("/stats/consultation-surgery-discrepancy", h.discrepancy)
}

func (h *Handler) overview(c echo.Context) error {
	o, err := h.svc.Overview(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": o})
}

func (h *Handler) discrepancy(c echo.Context) error {
	yearParam := c.QueryParam("year")
	if yearParam == "" {
		return httpx.Validation("query parameter 'year' is required")
	}
	year, err := strconv.Atoi(yearParam)
	if err != nil {
		return httpx.Validation("query parameter 'year' must be an integer")
	}
	grouping, ok := ParseGrouping(c.QueryParam("period"))
	if !ok {
		return httpx.Validation("period must be one of day, week, month")
	}

	p := DiscrepancyParams{
		Year:       year,
		Grouping:   grouping,
		Month:      c.QueryParam("month"),
		Speciality: c.QueryParam("speciality"),
	}
	if raw := c.QueryParam("hospitalId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return httpx.Validation(fmt.Sprintf("query parameter 'hospitalId' must be an integer, got %q", raw))
		}
		p.HospitalID = &id
	}

	rows, err := h.svc.Discrepancy(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(rows), "data": rows})
}
