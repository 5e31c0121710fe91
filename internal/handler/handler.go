package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/hiroki-koketsu/tasklists/internal/model"
	"github.com/hiroki-koketsu/tasklists/internal/telemetry"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/tasklists/internal/handler")

// responder carries what every handler needs to answer a request.
type responder struct {
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

func (h *responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (h *responder) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// fail writes the response for err and returns the status it used.
func (h *responder) fail(ctx context.Context, w http.ResponseWriter, err error) int {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		h.logger.WarnContext(ctx, "validation failed",
			slog.String("field", verr.Field),
			slog.String("error", verr.Message),
		)
		h.respondError(w, http.StatusBadRequest, verr.Error())
		return http.StatusBadRequest

	case errors.Is(err, model.ErrTaskListNotFound), errors.Is(err, model.ErrTaskNotFound):
		h.logger.WarnContext(ctx, err.Error())
		h.respondError(w, http.StatusNotFound, err.Error())
		return http.StatusNotFound
	}

	errorID := uuid.NewString()
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.id", errorID))

	h.logger.ErrorContext(ctx, "request failed",
		slog.String("error_id", errorID),
		slog.Any("error", err),
	)
	h.respondJSON(w, http.StatusInternalServerError, map[string]string{
		"error":    "internal server error",
		"error_id": errorID,
	})
	return http.StatusInternalServerError
}

// decode reads a JSON body into dst. On failure it answers 400 itself.
func (h *responder) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pathID parses an integer URL parameter. On failure it answers 400 itself.
func (h *responder) pathID(ctx context.Context, w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid id", slog.String(name, raw))
		h.respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *responder) recordMetrics(ctx context.Context, method, route string, status int, start time.Time) {
	duration := time.Since(start).Seconds()

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)

	h.metrics.RequestCounter.Add(ctx, 1, attrs)
	h.metrics.RequestDuration.Record(ctx, duration, attrs)
}
