package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/response"
)

// HealthCheck pings one backing dependency.
type HealthCheck func(ctx context.Context) error

type healthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type HealthHandler struct {
	service string
	checks  map[string]HealthCheck
	timeout time.Duration
	out     *response.Writer
}

func NewHealthHandler(service string, checks map[string]HealthCheck, out *response.Writer) *HealthHandler {
	return &HealthHandler{service: service, checks: checks, timeout: 2 * time.Second, out: out}
}

// Health answers 200 when every dependency responds and 503 otherwise.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	report := healthReport{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			report.Status = "degraded"
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	h.out.JSON(w, status, h.service, report)
}
