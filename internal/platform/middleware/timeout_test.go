package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func serveWithTimeout(path string, timeout time.Duration, handler echo.HandlerFunc, skip ...string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-42")
	return rec, RequestTimeout(timeout, skip...)(handler)(c)
}

func TestRequestTimeout_FastHandlerHasDeadline(t *testing.T) {
	rec, err := serveWithTimeout("/api/v1/patients/p-1/crrs", 5*time.Second, func(c echo.Context) error {
		if _, ok := c.Request().Context().Deadline(); !ok {
			t.Error("expected context to have a deadline")
		}
		return c.NoContent(http.StatusCreated)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
}

func TestRequestTimeout_SlowHandlerGets504(t *testing.T) {
	rec, err := serveWithTimeout("/api/v1/patients/p-1/agent/run", 50*time.Millisecond, func(c echo.Context) error {
		<-c.Request().Context().Done()
		return c.Request().Context().Err()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] == "" || body["request_id"] != "req-42" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestRequestTimeout_SkipsPrefixes(t *testing.T) {
	called := false
	_, err := serveWithTimeout("/metrics", 50*time.Millisecond, func(c echo.Context) error {
		called = true
		if _, ok := c.Request().Context().Deadline(); ok {
			t.Error("expected no deadline for a skipped path")
		}
		return nil
	}, "/health", "/metrics")
	if err != nil || !called {
		t.Errorf("expected handler to run, err=%v called=%v", err, called)
	}
}

func TestRequestTimeout_PropagatesHandlerError(t *testing.T) {
	_, err := serveWithTimeout("/api/v1/notifications/n-1", time.Second, func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	})
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404 HTTP error, got %v", err)
	}
}
