package reference

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/healthtime/healthtime/internal/platform/httpx"
)

func getNearby(t *testing.T, query string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	h := NewHandler(testDirectory())
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/hospitals/nearby?"+query, nil)
	rec := httptest.NewRecorder()
	return rec, h.nearbyHospitals(e.NewContext(req, rec))
}

func TestNearbyHandlerByHospitalID(t *testing.T) {
	rec, err := getNearby(t, "hospitalId=1&radiusKm=500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !body.Success || body.Count != 2 {
		t.Errorf("body = %+v, want 2 hospitals within 500 km of hospital 1", body)
	}
}

func TestNearbyHandlerByCoordinates(t *testing.T) {
	rec, err := getNearby(t, "lat=38.72&lng=-9.14")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d, want 2 within the default radius of central Lisboa", body.Count)
	}
}

func TestNearbyHandlerRejectsMissingOrigin(t *testing.T) {
	cases := []string{"", "lat=38.72", "hospitalId=abc", "hospitalId=1&radiusKm=-5"}
	for _, query := range cases {
		_, err := getNearby(t, query)
		var apiErr *httpx.Error
		if !errors.As(err, &apiErr) || apiErr.Kind != httpx.KindValidation {
			t.Errorf("query %q: err = %v, want validation error", query, err)
		}
	}
}
