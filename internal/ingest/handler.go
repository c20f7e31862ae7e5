package ingest

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/healthtime/healthtime/internal/domain/emergency"
	"github.com/healthtime/healthtime/internal/platform/httpx"
	"github.com/healthtime/healthtime/internal/platform/xmlreport"
)

// maxBodyBytes bounds submission size; the largest real monthly extracts are
// well under a megabyte.
const maxBodyBytes = 8 << 20

// Handler exposes the XML submission endpoints.
type Handler struct {
	normalizer *Normalizer
}

func NewHandler(normalizer *Normalizer) *Handler {
	return &Handler{normalizer: normalizer}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/emergencies/submit", h.submitEmergencies)
	g.POST("/consultations/submit", h.submitConsultations)
	g.POST("/surgeries/submit", h.submitSurgeries)
}

func (h *Handler) submitEmergencies(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	report, err := xmlreport.ParseEmergency(body)
	if err != nil {
		return httpx.Validation(err.Error())
	}
	submittedAt, err := xmlreport.ParseTime(report.Header.SubmissionTimestamp)
	if err != nil {
		return httpx.Validation("invalid submission timestamp: " + err.Error())
	}

	header := EmergencyHeader{
		HospitalID:      report.Header.HospitalID,
		HospitalName:    report.Header.HospitalName,
		HospitalAddress: report.Header.HospitalAddress,
		SubmittedAt:     submittedAt,
	}
	items := make([]EmergencyItem, 0, len(report.List.Items))
	for _, entry := range report.List.Items {
		item := EmergencyItem{
			TypeCode:        entry.Type.Code,
			TypeDescription: entry.Type.Description,
			Status:          entry.Status,
			Triage:          triageSet(entry.Triage),
			Observation:     triageSet(entry.Observation),
		}
		// Unparseable timestamps stay zero; the normalizer records the
		// item error.
		if entry.LastUpdate != "" {
			if t, err := xmlreport.ParseTime(entry.LastUpdate); err == nil {
				item.LastUpdate = t
			}
		}
		if entry.ExtractionTimestamp != "" {
			if t, err := xmlreport.ParseTime(entry.ExtractionTimestamp); err == nil {
				item.ExtractedAt = t
			}
		}
		items = append(items, item)
	}

	result, err := h.normalizer.IngestEmergencies(c.Request().Context(), header, items)
	if err != nil {
		return err
	}
	return respond(c, result)
}

func (h *Handler) submitConsultations(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	report, err := xmlreport.ParseConsultation(body)
	if err != nil {
		return httpx.Validation(err.Error())
	}

	items := make([]ConsultationItem, 0, len(report.List.Items))
	for _, entry := range report.List.Items {
		items = append(items, ConsultationItem{
			ServiceKey:          entry.ServiceKey,
			Day:                 entry.Day,
			WaitNormal:          entry.Wait.Normal,
			WaitPriority:        entry.Wait.Priority,
			WaitHighPriority:    entry.Wait.HighPriority,
			NumberOfPeople:      entry.NumberOfPeople,
			PriorityDescription: entry.PriorityDescription,
			Speciality:          entry.Speciality,
		})
	}

	result, err := h.normalizer.IngestConsultations(c.Request().Context(), periodHeader(report.Header), items)
	if err != nil {
		return err
	}
	return respond(c, result)
}

func (h *Handler) submitSurgeries(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	report, err := xmlreport.ParseSurgery(body)
	if err != nil {
		return httpx.Validation(err.Error())
	}

	items := make([]SurgeryItem, 0, len(report.List.Items))
	for _, entry := range report.List.Items {
		items = append(items, SurgeryItem{
			ServiceKey:          entry.ServiceKey,
			WaitingListType:     entry.WaitingListType,
			AverageWaitingTime:  entry.AverageWaitingTime,
			Day:                 entry.Day,
			NumberOfPeople:      entry.NumberOfPeople,
			PriorityDescription: entry.PriorityDescription,
			Speciality:          entry.Speciality,
		})
	}

	result, err := h.normalizer.IngestSurgeries(c.Request().Context(), periodHeader(report.Header), items)
	if err != nil {
		return err
	}
	return respond(c, result)
}

func periodHeader(h xmlreport.PeriodHeader) PeriodHeader {
	return PeriodHeader{
		HospitalID:   h.HospitalID,
		HospitalName: h.HospitalName,
		Year:         h.Period.Year,
		Month:        h.Period.Month,
	}
}

func triageSet(block xmlreport.TriageBlock) emergency.TriageSet {
	bucket := func(p xmlreport.Pair) emergency.Bucket {
		return emergency.Bucket{Time: p.Time, Length: p.Length}
	}
	return emergency.TriageSet{
		Red:    bucket(block.Red),
		Orange: bucket(block.Orange),
		Yellow: bucket(block.Yellow),
		Green:  bucket(block.Green),
		Blue:   bucket(block.Blue),
	}
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return nil, httpx.Validation("failed to read request body")
	}
	if len(body) == 0 {
		return nil, httpx.Validation("request body is empty")
	}
	return body, nil
}

func respond(c echo.Context, result *Result) error {
	body := echo.Map{"success": true, "stats": result.Stats}
	if len(result.Errors) > 0 {
		body["errors"] = result.Errors
	}
	return c.JSON(http.StatusOK, body)
}
