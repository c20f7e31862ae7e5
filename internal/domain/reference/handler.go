package reference

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/healthtime/healthtime/internal/platform/httpx"
	"github.com/healthtime/healthtime/pkg/pagination"
)

type Handler struct {
	dir *Directory
}

func NewHandler(dir *Directory) *Handler {
	return &Handler{dir: dir}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/hospitals", h.listHospitals)
	g.GET("/hospitals/nearby", h.nearbyHospitals)
	g.GET("/hospitals/:id", h.getHospital)
	g.GET("/services", h.listServices)
	g.GET("/services/:id", h.getService)
}

func (h *Handler) listHospitals(c echo.Context) error {
	p := pagination.FromContext(c)
	f := HospitalFilter{
		District: c.QueryParam("district"),
		Region:   c.QueryParam("region"),
		Typology: c.QueryParam("typology"),
		Search:   c.QueryParam("search"),
	}
	hospitals, total, err := h.dir.Hospitals(c.Request().Context(), f, p.Limit, p.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(hospitals, len(hospitals), total, p))
}

func (h *Handler) getHospital(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return httpx.Validation("hospital id must be an integer")
	}
	hospital, err := h.dir.Hospital(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": hospital})
}

// nearbyHospitals resolves the search origin from either a registry hospital
// id or a raw lat/lng pair.
func (h *Handler) nearbyHospitals(c echo.Context) error {
	radius := 0.0
	if raw := c.QueryParam("radiusKm"); raw != "" {
		var err error
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return httpx.Validation("query parameter 'radiusKm' must be a positive number of kilometers")
		}
	}

	var (
		nearby []*NearbyHospital
		err    error
	)
	switch {
	case c.QueryParam("hospitalId") != "":
		id, convErr := strconv.Atoi(c.QueryParam("hospitalId"))
		if convErr != nil {
			return httpx.Validation("query parameter 'hospitalId' must be an integer")
		}
		nearby, err = h.dir.Nearby(c.Request().Context(), id, radius)
	case c.QueryParam("lat") != "" && c.QueryParam("lng") != "":
		lat, latErr := strconv.ParseFloat(c.QueryParam("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.QueryParam("lng"), 64)
		if latErr != nil || lngErr != nil {
			return httpx.Validation("query parameters 'lat' and 'lng' must be numbers")
		}
		nearby, err = h.dir.NearbyPoint(c.Request().Context(), lat, lng, radius)
	default:
		return httpx.Validation("provide either 'hospitalId' or both 'lat' and 'lng'")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "count": len(nearby), "data": nearby})
}

func (h *Handler) listServices(c echo.Context) error {
	p := pagination.FromContext(c)
	f := ServiceFilter{
		TypeCode:   c.QueryParam("type"),
		Speciality: c.QueryParam("speciality"),
		Search:     c.QueryParam("search"),
	}
	services, total, err := h.dir.Services(c.Request().Context(), f, p.Limit, p.Offset())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewListResponse(services, len(services), total, p))
}

func (h *Handler) getService(c echo.Context) error {
	key, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return httpx.Validation("service key must be an integer")
	}
	service, err := h.dir.Service(c.Request().Context(), key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": service})
}
