package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner/internal/api/plan"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// GenerateItinerary handles POST /plans/{planID}/itinerary. Generation is
// synchronous; the annotated document comes back in the response.
func (h *Handler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/plans/{planID}/itinerary"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GenerateItinerary"))

	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	span.SetAttributes(semconv.EnduserIDKey.String(userIDStr))

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	saved, err := h.service.GenerateItinerary(ctx, planID)
	if err != nil {
		if errors.Is(err, plan.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Plan not found")
			return
		}
		l.ErrorContext(ctx, "Itinerary generation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Itinerary generation failed")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, saved)
}

// GetItinerary handles GET /plans/{planID}/itinerary.
func (h *Handler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/plans/{planID}/itinerary"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetItinerary"))

	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid plan ID")
		return
	}

	saved, err := h.service.GetItinerary(ctx, planID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "No itinerary for this plan yet")
			return
		}
		l.ErrorContext(ctx, "Failed to load itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, saved)
}
