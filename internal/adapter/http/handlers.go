package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"studentloan-backend/internal/domain/clock"
)

// Probe is a named dependency check run on every health request.
type Probe struct {
	Name string
	Ping func(ctx context.Context) error
}

type Handler struct {
	clock  clock.Clock
	store  string
	probes []Probe
}

// NewHandler reports liveness for the given store driver plus one entry per probe.
func NewHandler(clk clock.Clock, store string, probes ...Probe) *Handler {
	if clk == nil {
		clk = clock.System{}
	}
	return &Handler{clock: clk, store: store, probes: probes}
}

const probeTimeout = 2 * time.Second

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(h.probes))
	for _, p := range h.probes {
		if err := p.Ping(ctx); err != nil {
			checks[p.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[p.Name] = "ok"
	}

	return c.JSON(code, map[string]any{
		"status": status,
		"store":  h.store,
		"checks": checks,
		"time":   h.clock.Now().UTC().Format(time.RFC3339Nano),
	})
}
