package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestIDGenerated(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		rid, _ := c.Get("request_id").(string)
		if rid == "" {
			t.Error("request_id not set on context")
		}
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("response missing X-Request-ID header")
	}
}

func TestRequestIDHonorsClientValue(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "client-supplied-id" {
		t.Errorf("request id = %q, want client-supplied-id", got)
	}
}

func TestRecoveryConvertsPanic(t *testing.T) {
	e := echo.New()
	e.Use(Recovery(zerolog.Nop()))
	e.GET("/boom", func(c echo.Context) error { panic("kaboom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
}

func TestRateLimitConcurrentAccess(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 1000}))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
		}()
	}
	wg.Wait()
}

func TestRequestTimeout(t *testing.T) {
	e := echo.New()
	e.Use(RequestTimeout(50 * time.Millisecond))
	e.GET("/slow", func(c echo.Context) error {
		select {
		case <-time.After(time.Second):
			return c.NoContent(http.StatusOK)
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		}
	})
	e.GET("/fast", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("slow handler: status = %d, want 504", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/fast", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("fast handler: status = %d, want 200", rec.Code)
	}
}

func TestAuditRecordsAPIAccess(t *testing.T) {
	var mu sync.Mutex
	var entries []AuditEntry
	recorder := AuditRecorderFunc(func(entry AuditEntry) error {
		mu.Lock()
		defer mu.Unlock()
		entries = append(entries, entry)
		return nil
	})

	e := echo.New()
	e.Use(RequestID())
	e.Use(Audit(zerolog.Nop(), recorder))
	e.GET("/api/v1/appointments", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.POST("/api/v1/appointments", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/appointments"},
		{http.MethodPost, "/api/v1/appointments"},
		{http.MethodGet, "/health"},
	} {
		req := httptest.NewRequest(r.method, r.path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(entries) != 2 {
		t.Fatalf("recorded %d entries, want 2 (health endpoint is not audited)", len(entries))
	}
	if entries[0].Action != "read" || entries[0].Resource != "appointments" {
		t.Errorf("entry[0] = %s %s, want read appointments", entries[0].Action, entries[0].Resource)
	}
	if entries[1].Action != "create" {
		t.Errorf("entry[1].Action = %s, want create", entries[1].Action)
	}
	if entries[1].StatusCode != http.StatusCreated {
		t.Errorf("entry[1].StatusCode = %d, want 201", entries[1].StatusCode)
	}
	if entries[0].RequestID == "" {
		t.Error("audit entry missing request id")
	}
}
