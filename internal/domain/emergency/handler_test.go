package emergency

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestAverageWaitHandlerDefaultsToMonthlyGrouping(t *testing.T) {
	ts := time.Now().UTC()
	repo := &mockRepository{snapshots: []*Snapshot{
		snapshotAt(1, "SU01", ts, TriageSet{Red: Bucket{Length: 2}}),
	}}
	h := NewHandler(NewService(repo, &mockDirectory{}))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/emergencies/average-wait", nil)
	rec := httptest.NewRecorder()
	if err := h.averageWait(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body struct {
		Data []struct {
			Period struct {
				Year  int `json:"year"`
				Month int `json:"month"`
				Day   int `json:"day"`
			} `json:"period"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("got %d rows, want 1", len(body.Data))
	}
	p := body.Data[0].Period
	if p.Year != ts.Year() || p.Month != int(ts.Month()) {
		t.Errorf("period = %+v, want grouping keyed by the snapshot's month", p)
	}
	if p.Day != 0 {
		t.Errorf("period = %+v, monthly grouping must not carry a day", p)
	}
}
