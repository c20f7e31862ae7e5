package emergency

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthtime/healthtime/internal/aggregate"
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
	g.GET("/emergencies", h.list)
	g.GET("/emergencies/average-wait", h.averageWait)
	g.GET("/emergencies/triage-percentages", h.triagePercentages)
	g.GET("/emergencies/pediatric-average-wait", h.pediatricAverageWait)
	g.GET("/emergencies/top-hospitals-pediatric", h.topPediatric)
	g.GET("/emergencies/time-evolution", h.timeEvolution)
	g.GET("/emergencies/:id", h.get)
}

func (h *Handler) list(c echo.Context) error {
	p := pagination.FromContext(c)
	f := Filter{
		TypeCode: c.QueryParam("type"),
		Status:   c.QueryParam("status"),
	}
	var err error
	if f.HospitalID, err = optionalIntParam(c, "hospitalId"); err != nil {
		return err
	}
	if f.From, err = optionalTimeParam(c, "from"); err != nil {
		return err
	}
	if f.To, err = optionalTimeParam(c, "to"); err != nil {
		return err
	}

	snapshots, total, err := h.svc.List(c.Request().Context(), f, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(snapshots, len(snapshots), total, p))
}

func (h *Handler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return httpx.Validation("emergency id must be a UUID")
	}
	detail, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": detail})
}

func (h *Handler) averageWait(c echo.Context) error {
	p := AverageWaitParams{
		TypeCode: c.QueryParam("type"),
		Category: c.QueryParam("category"),
		Period:   aggregate.ParsePeriod(c.QueryParam("period"), aggregate.ByMonth),
	}
	var err error
	if p.From, err = optionalTimeParam(c, "from"); err != nil {
		return err
	}
	if p.To, err = optionalTimeParam(c, "to"); err != nil {
		return err
	}

	rows, err := h.svc.AverageWait(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(rows), "data": rows})
}

func (h *Handler) triagePercentages(c echo.Context) error {
	hospitalID, err := optionalIntParam(c, "hospitalId")
	if err != nil {
		return err
	}
	if hospitalID == nil {
		return httpx.Validation("query parameter 'hospitalId' is required")
	}
	p := TriageDistributionParams{
		HospitalID: *hospitalID,
		Period:     aggregate.ParsePeriod(c.QueryParam("period"), aggregate.Overall),
		TimeOfDay:  c.QueryParam("timeOfDay"),
	}
	if p.From, err = optionalTimeParam(c, "from"); err != nil {
		return err
	}
	if p.To, err = optionalTimeParam(c, "to"); err != nil {
		return err
	}

	rows, err := h.svc.TriagePercentages(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(rows), "data": rows})
}

func (h *Handler) pediatricAverageWait(c echo.Context) error {
	window := aggregate.ByMonth
	switch c.QueryParam("window") {
	case "", "month":
	case "week":
		window = aggregate.ByWeek
	case "quarter":
		window = aggregate.ByQuarter
	default:
		return httpx.Validation("window must be one of week, month, quarter")
	}

	rows, err := h.svc.PediatricAverageWait(c.Request().Context(), PediatricParams{
		Window: window,
		Region: c.QueryParam("region"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(rows), "data": rows})
}

func (h *Handler) topPediatric(c echo.Context) error {
	p := TopPediatricParams{}
	var err error
	if p.From, err = optionalTimeParam(c, "from"); err != nil {
		return err
	}
	if p.To, err = optionalTimeParam(c, "to"); err != nil {
		return err
	}
	if raw := c.QueryParam("limit"); raw != "" {
		p.Limit, err = strconv.Atoi(raw)
		if err != nil || p.Limit <= 0 {
			return httpx.Validation("limit must be a positive integer")
		}
	}

	rows, err := h.svc.TopPediatric(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(rows), "data": rows})
}

func (h *Handler) timeEvolution(c echo.Context) error {
	dateParam := c.QueryParam("date")
	if dateParam == "" {
		return httpx.Validation("query parameter 'date' is required (YYYY-MM-DD)")
	}
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		return httpx.Validation("date must be formatted YYYY-MM-DD")
	}
	p := EvolutionParams{
		Date:       date,
		TypeSearch: c.QueryParam("type"),
	}
	if p.HospitalID, err = optionalIntParam(c, "hospitalId"); err != nil {
		return err
	}

	report, err := h.svc.TimeEvolution(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": report})
}

func optionalIntParam(c echo.Context, name string) (*int, error) {
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

// optionalTimeParam accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func optionalTimeParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, httpx.Validation(fmt.Sprintf("query parameter '%s' must be an RFC 3339 timestamp or YYYY-MM-DD date", name))
}
