package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return FromContext(e.NewContext(req, httptest.NewRecorder()))
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, Limit: DefaultLimit}},
		{"page=3&limit=25", Params{Page: 3, Limit: 25}},
		{"page=0&limit=-1", Params{Page: 1, Limit: DefaultLimit}},
		{"page=abc", Params{Page: 1, Limit: DefaultLimit}},
		{"limit=9999", Params{Page: 1, Limit: MaxLimit}},
	}
	for _, c := range cases {
		if got := paramsFor(t, c.query); got != c.want {
			t.Errorf("FromContext(%q) = %+v, want %+v", c.query, got, c.want)
		}
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 20}
	if got := p.Offset(); got != 40 {
		t.Errorf("Offset() = %d, want 40", got)
	}
}

func TestPages(t *testing.T) {
	p := Params{Page: 1, Limit: 20}
	cases := map[int]int{0: 0, 1: 1, 20: 1, 21: 2, 40: 2, 41: 3}
	for total, want := range cases {
		if got := p.Pages(total); got != want {
			t.Errorf("Pages(%d) = %d, want %d", total, got, want)
		}
	}
}

func TestNewListResponse(t *testing.T) {
	p := Params{Page: 2, Limit: 10}
	resp := NewListResponse([]int{1, 2, 3}, 3, 23, p)
	if !resp.Success || resp.Count != 3 || resp.Total != 23 || resp.Page != 2 || resp.Pages != 3 {
		t.Errorf("response = %+v", resp)
	}
}
