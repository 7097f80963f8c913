package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadiness(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	broken := pingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name string
		deps map[string]Pinger
		want int
	}{
		{"all up", map[string]Pinger{"postgres": healthy, "redis": healthy}, http.StatusOK},
		{"optional redis absent", map[string]Pinger{"postgres": healthy, "redis": nil}, http.StatusOK},
		{"postgres down", map[string]Pinger{"postgres": broken}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			h := NewHealthHandler("complaint-service", "test", tt.deps)
			app.Get("/health/ready", h.Ready)
			app.Get("/health/live", h.Live)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}

			resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
			if err != nil || resp.StatusCode != http.StatusOK {
				t.Fatalf("live = %v, %v", resp, err)
			}
		})
	}
}
