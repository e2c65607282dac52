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
	c := e.NewContext(req, httptest.NewRecorder())
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", DefaultLimit, 0},
		{"explicit", "limit=50&offset=10", 50, 10},
		{"limit clamped", "limit=5000", MaxLimit, 0},
		{"negative ignored", "limit=-1&offset=-5", DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paramsFor(t, tt.query)
			if p.Limit != tt.wantLimit || p.Offset != tt.wantOffset {
				t.Errorf("params = %+v, want limit %d offset %d", p, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestNewResponseHasMore(t *testing.T) {
	resp := NewResponse([]int{1, 2, 3}, 10, 3, 0)
	if !resp.HasMore {
		t.Error("expected HasMore with 10 total and page of 3")
	}
	resp = NewResponse([]int{1}, 1, 20, 0)
	if resp.HasMore {
		t.Error("HasMore should be false when everything fits one page")
	}
}

func TestOffsetNavigation(t *testing.T) {
	p := Params{Limit: 20, Offset: 20}
	if !p.HasPrevious() {
		t.Error("offset 20 should have a previous page")
	}
	if p.PreviousOffset() != 0 {
		t.Errorf("PreviousOffset() = %d, want 0", p.PreviousOffset())
	}
	if p.NextOffset() != 40 {
		t.Errorf("NextOffset() = %d, want 40", p.NextOffset())
	}
	if p.HasNext(30) {
		t.Error("offset 20 + limit 20 exceeds total 30, HasNext should be false")
	}
}
