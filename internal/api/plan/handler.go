package plan

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
	"github.com/FACorreiaa/go-trip-planner/internal/types"
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

// CreatePlan handles POST /plans.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "CreatePlan", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/plans"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreatePlan"))

	userID, ok := requireUserID(w, r, l)
	if !ok {
		return
	}
	span.SetAttributes(semconv.EnduserIDKey.String(userID.String()))

	var req types.CreatePlanRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.Destination == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "name and destination are required")
		return
	}

	p, err := h.service.CreatePlan(ctx, userID, req)
	if err != nil {
		if errors.Is(err, ErrBadDateRange) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to create plan", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create plan")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, p)
}

// GetPlan handles GET /plans/{planID}.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "GetPlan", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/plans/{planID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPlan"))

	planID, ok := planIDParam(w, r, l)
	if !ok {
		return
	}

	p, err := h.service.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Plan not found")
			return
		}
		l.ErrorContext(ctx, "Failed to load plan", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to load plan")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// JoinPlan handles POST /plans/join.
func (h *Handler) JoinPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "JoinPlan", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/plans/join"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "JoinPlan"))

	userID, ok := requireUserID(w, r, l)
	if !ok {
		return
	}

	var req types.JoinPlanRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.InviteCode == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "invite_code is required")
		return
	}

	p, err := h.service.JoinPlan(ctx, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "No plan with that invite code")
		case errors.Is(err, ErrWrongPasscode):
			api.ErrorResponse(w, r, http.StatusForbidden, "Wrong passcode")
		default:
			l.ErrorContext(ctx, "Failed to join plan", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to join plan")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// DeletePlan handles DELETE /plans/{planID}. Owner only.
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "DeletePlan", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/plans/{planID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "DeletePlan"))

	userID, ok := requireUserID(w, r, l)
	if !ok {
		return
	}
	planID, ok := planIDParam(w, r, l)
	if !ok {
		return
	}

	if err := h.service.DeletePlan(ctx, userID, planID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Plan not found")
		case errors.Is(err, ErrForbidden):
			api.ErrorResponse(w, r, http.StatusForbidden, "Only the plan owner may delete it")
		default:
			l.ErrorContext(ctx, "Failed to delete plan", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete plan")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// UpsertPreferences handles PUT /plans/{planID}/preferences.
func (h *Handler) UpsertPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "UpsertPreferences", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/plans/{planID}/preferences"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UpsertPreferences"))

	userID, ok := requireUserID(w, r, l)
	if !ok {
		return
	}
	planID, ok := planIDParam(w, r, l)
	if !ok {
		return
	}

	var req types.UpsertPreferencesRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpsertPreferences(ctx, planID, userID, req); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Plan not found")
			return
		}
		l.ErrorContext(ctx, "Failed to save preferences", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save preferences")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// ListPreferences handles GET /plans/{planID}/preferences.
func (h *Handler) ListPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlanHandler").Start(r.Context(), "ListPreferences", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/plans/{planID}/preferences"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListPreferences"))

	planID, ok := planIDParam(w, r, l)
	if !ok {
		return
	}

	prefs, err := h.service.ListPreferences(ctx, planID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list preferences", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list preferences")
		return
	}
	if prefs == nil {
		prefs = []types.TravelerPreferences{}
	}
	api.WriteJSONResponse(w, r, http.StatusOK, prefs)
}

func requireUserID(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		l.ErrorContext(r.Context(), "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.ErrorContext(r.Context(), "Invalid user ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}

func planIDParam(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	planID, err := uuid.Parse(chi.URLParam(r, "planID"))
	if err != nil {
		l.ErrorContext(r.Context(), "Invalid plan ID", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid plan ID")
		return uuid.Nil, false
	}
	return planID, true
}
