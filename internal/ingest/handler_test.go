package ingest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/healthtime/healthtime/internal/platform/httpx"
)

const emergencySubmission = `<?xml version="1.0" encoding="UTF-8"?>
<RelatorioUrgencia>
  <Cabecalho>
    <HospitalId>1</HospitalId>
    <HospitalName>Hospital de Santa Maria</HospitalName>
    <SubmissionTimestamp>2024-05-10T14:30:00Z</SubmissionTimestamp>
  </Cabecalho>
  <ListaUrgencias>
    <Urgencia>
      <EmergencyType><Code>SU01</Code><Description>Urgência Geral</Description></EmergencyType>
      <EmergencyStatus>Aberta</EmergencyStatus>
      <LastUpdate>2024-05-10T14:15:00Z</LastUpdate>
      <Triage>
        <Yellow><Time>90</Time><Length>12</Length></Yellow>
      </Triage>
    </Urgencia>
  </ListaUrgencias>
</RelatorioUrgencia>`

func postXML(t *testing.T, handler echo.HandlerFunc, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationXML)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, handler(c)
}

func TestSubmitEmergencies(t *testing.T) {
	n, store, _, _ := newTestNormalizer()
	h := NewHandler(n)

	rec, err := postXML(t, h.submitEmergencies, emergencySubmission)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Success bool  `json:"success"`
		Stats   Stats `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !body.Success || body.Stats.Inserted != 1 {
		t.Errorf("body = %+v, want success with one insert", body)
	}

	if len(store.got) != 1 {
		t.Fatalf("stored %d snapshots, want 1", len(store.got))
	}
	snap := store.got[0]
	if snap.Triage.Yellow.Time != 90 || snap.Triage.Yellow.Length != 12 {
		t.Errorf("stored triage = %+v", snap.Triage.Yellow)
	}
	if snap.SubmittedAt.IsZero() || !snap.ExtractedAt.Equal(snap.SubmittedAt) {
		t.Errorf("timestamps = submitted %v, extracted %v, want extraction defaulted to submission",
			snap.SubmittedAt, snap.ExtractedAt)
	}
}

func TestSubmitEmergenciesMalformedXML(t *testing.T) {
	n, _, _, _ := newTestNormalizer()
	h := NewHandler(n)

	_, err := postXML(t, h.submitEmergencies, "not xml at all")
	var apiErr *httpx.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != httpx.KindValidation {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestSubmitEmergenciesEmptyBody(t *testing.T) {
	n, _, _, _ := newTestNormalizer()
	h := NewHandler(n)

	_, err := postXML(t, h.submitEmergencies, "")
	var apiErr *httpx.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != httpx.KindValidation {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestSubmitConsultations(t *testing.T) {
	n, _, store, _ := newTestNormalizer()
	h := NewHandler(n)

	doc := `<?xml version="1.0" encoding="UTF-8"?>
<RelatorioConsultas>
  <Cabecalho>
    <HospitalID>1</HospitalID>
    <HospitalName>Hospital de Santa Maria</HospitalName>
    <Periodo><Ano>2024</Ano><Mes>Maio</Mes></Periodo>
  </Cabecalho>
  <ListaConsultas>
    <Consulta>
      <ServiceSK>100</ServiceSK>
      <Day>15</Day>
      <AverageWaitingTime>
        <Normal>120</Normal><Prioritario>45</Prioritario><MuitoPrioritario>10</MuitoPrioritario>
      </AverageWaitingTime>
      <NumberOfPeople>37</NumberOfPeople>
    </Consulta>
  </ListaConsultas>
</RelatorioConsultas>`

	rec, err := postXML(t, h.submitConsultations, doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(store.got) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.got))
	}
	rec0 := store.got[0]
	if rec0.WaitNormal != 120 || rec0.Month != "Maio" || rec0.Year != 2024 {
		t.Errorf("stored record = %+v", rec0)
	}
}

func TestSubmitSurgeriesUnknownHospital(t *testing.T) {
	n, _, _, store := newTestNormalizer()
	h := NewHandler(n)

	doc := `<?xml version="1.0" encoding="UTF-8"?>
<RelatorioCirurgias>
  <Cabecalho>
    <HospitalID>77</HospitalID>
    <HospitalName>Hospital Desconhecido</HospitalName>
    <Periodo><Ano>2024</Ano><Mes>Maio</Mes></Periodo>
  </Cabecalho>
  <ListaCirurgias>
    <Cirurgia>
      <ServiceSK>100</ServiceSK>
      <WaitingListType>Geral</WaitingListType>
      <AverageWaitingTime>62</AverageWaitingTime>
      <Day>15</Day>
    </Cirurgia>
  </ListaCirurgias>
</RelatorioCirurgias>`

	_, err := postXML(t, h.submitSurgeries, doc)
	var apiErr *httpx.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != httpx.KindReferenceMismatch {
		t.Errorf("err = %v, want reference mismatch", err)
	}
	if store.got != nil {
		t.Error("nothing should be written for an unknown hospital")
	}
}
