// Package response writes the JSON envelope shared by every endpoint.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
)

type Envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Meta      *Meta             `json:"meta,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewMeta(page, limit int, total int64) *Meta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Meta{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindConflict, apperror.KindPaymentVerification:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type Writer struct {
	log            logger.Logger
	metrics        *metrics.MetricsManager
	exposeInternal bool
}

// NewWriter builds a Writer. Internal error details reach clients only when
// exposeInternal is set.
func NewWriter(log logger.Logger, metricsManager *metrics.MetricsManager, exposeInternal bool) *Writer {
	return &Writer{log: log.Named("HTTP"), metrics: metricsManager, exposeInternal: exposeInternal}
}

func (w *Writer) write(rw http.ResponseWriter, status int, env Envelope) {
	env.Timestamp = time.Now().UTC()
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(env); err != nil {
		w.log.Errorf("Failed to encode response: %v", err)
	}
}

func (w *Writer) JSON(rw http.ResponseWriter, status int, message string, data interface{}) {
	w.write(rw, status, Envelope{Success: true, Message: message, Data: data})
}

func (w *Writer) Page(rw http.ResponseWriter, data interface{}, meta *Meta) {
	w.write(rw, http.StatusOK, Envelope{Success: true, Data: data, Meta: meta})
}

func (w *Writer) Error(rw http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status := StatusFor(kind)
	if w.metrics != nil {
		w.metrics.APIErrorsTotal.WithLabelValues(kind.String()).Inc()
	}

	env := Envelope{Success: false, Error: kind.String()}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		env.Message = appErr.Message
		env.Fields = appErr.Fields
	}

	if kind == apperror.KindInternal || kind == apperror.KindGateway {
		w.log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
		if kind == apperror.KindInternal {
			if w.exposeInternal {
				env.Message = err.Error()
			} else {
				env.Message = "internal server error"
			}
		}
	}
	w.write(rw, status, env)
}
