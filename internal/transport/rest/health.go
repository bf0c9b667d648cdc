package rest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const probeTimeout = 3 * time.Second

const (
	statusOK       = "ok"
	statusDown     = "down"
	statusDegraded = "degraded"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Check is a dependency probed by /ready and /health. An Optional check
// (the list cache) degrades health without failing readiness.
type Check struct {
	Name     string
	Pinger   pinger
	Optional bool
}

// HealthHandler serves the probe endpoints. In memory mode there are no
// checks and the service is always ready.
type HealthHandler struct {
	backend string
	version string
	checks  []Check
}

func NewHealthHandler(backend, version string, checks ...Check) *HealthHandler {
	return &HealthHandler{backend: backend, version: version, checks: checks}
}

// HealthResponse is the body of every probe endpoint.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Backend    string                `json:"backend,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

type CompStatus struct {
	Status   string `json:"status"`
	Latency  string `json:"latency,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// Live reports that the process is serving. It never touches dependencies.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK, Timestamp: time.Now()})
}

// Ready answers 503 when a required dependency does not ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	overall, _ := h.probe(r.Context())
	code := http.StatusOK
	if overall == statusDown {
		code = http.StatusServiceUnavailable
	} else {
		overall = statusOK
	}
	writeJSON(w, code, HealthResponse{Status: overall, Timestamp: time.Now()})
}

// Health reports every component with its latency, plus the backend and
// build version. A failed optional component yields "degraded" with 200.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	overall, components := h.probe(r.Context())
	code := http.StatusOK
	if overall == statusDown {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Backend:    h.backend,
		Components: components,
		Timestamp:  time.Now(),
	})
}

// probe pings all checks concurrently under one deadline.
func (h *HealthHandler) probe(ctx context.Context) (string, map[string]CompStatus) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var (
		mu         sync.Mutex
		components = make(map[string]CompStatus, len(h.checks))
		overall    = statusOK
	)

	var g errgroup.Group
	for _, c := range h.checks {
		c := c
		g.Go(func() error {
			start := time.Now()
			err := c.Pinger.Ping(ctx)
			comp := CompStatus{Status: statusOK, Optional: c.Optional}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				comp.Latency = time.Since(start).String()
			case c.Optional:
				comp.Status = statusDown
				if overall == statusOK {
					overall = statusDegraded
				}
			default:
				comp.Status = statusDown
				overall = statusDown
			}
			components[c.Name] = comp
			return nil
		})
	}
	_ = g.Wait()

	return overall, components
}
