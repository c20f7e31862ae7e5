package consultation

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/healthtime/healthtime/internal/platform/httpx"
	"github.com/healthtime/healthtime/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/consultations", h.list)
	g.GET("/consultations/oncology-gap", h.oncologyGap)
}

func (h *Handler) list(c echo.Context) error {
	pg := pagination.FromContext(c)
	p := ListParams{
		HospitalName: c.QueryParam("hospitalName"),
		Month:        c.QueryParam("month"),
		Speciality:   c.QueryParam("speciality"),
	}
	var err error
	if p.HospitalID, err = intQueryParam(c, "hospitalId"); err != nil {
		return err
	}
	if p.Year, err = intQueryParam(c, "year"); err != nil {
		return err
	}

	records, total, err := h.svc.List(c.Request().Context(), p, pg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(records, len(records), total, pg))
}

func (h *Handler) oncologyGap(c echo.Context) error {
	p := GapParams{Speciality: c.QueryParam("speciality")}
	var err error
	if p.HospitalID, err = intQueryParam(c, "hospitalId"); err != nil {
		return err
	}
	if p.Year, err = intQueryParam(c, "year"); err != nil {
		return err
	}

	rows, err := h.svc.OncologyGap(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(rows), "data": rows})
}

func intQueryParam(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, httpx.Validation(fmt.Sprintf("query parameter '%s' must be an integer", name))
	}
	return &v, nil
}
