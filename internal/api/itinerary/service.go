package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner/internal/api/plan"
	"github.com/FACorreiaa/go-trip-planner/internal/api/resolve"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const generationGuardTTL = 2 * time.Minute

// Generator is the slice of the AI client this service needs; the real
// implementation lives in the generative_ai package.
type Generator interface {
	GenerateGrounded(ctx context.Context, prompt string) (string, []types.GroundingChunk, error)
}

var _ Service = (*ServiceImpl)(nil)

// Service defines the business logic contract for itinerary generation.
type Service interface {
	GenerateItinerary(ctx context.Context, planID uuid.UUID) (*types.SavedItinerary, error)
	GetItinerary(ctx context.Context, planID uuid.UUID) (*types.SavedItinerary, error)
}

type ServiceImpl struct {
	logger     *slog.Logger
	repo       Repository
	plans      plan.Repository
	generator  Generator
	annotator  *resolve.Annotator
	inProgress *cache.Cache
}

func NewServiceImpl(repo Repository, plans plan.Repository, generator Generator, annotator *resolve.Annotator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		repo:       repo,
		plans:      plans,
		generator:  generator,
		annotator:  annotator,
		inProgress: cache.New(generationGuardTTL, generationGuardTTL),
	}
}

// GenerateItinerary runs the full pipeline for a plan: aggregate the
// group's preferences, generate a grounded document, annotate it with map
// links from the citations, and persist the result. Resolution failures
// never abort generation; unmatched places simply keep nil links.
func (s *ServiceImpl) GenerateItinerary(ctx context.Context, planID uuid.UUID) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("itinerary").Start(ctx, "GenerateItinerary")
	defer span.End()
	span.SetAttributes(attribute.String("plan.id", planID.String()))

	start := time.Now()
	outcome := "error"
	defer func() {
		m := metrics.Get()
		m.GenerationRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		m.GenerationDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	// One generation per plan at a time; a duplicate click returns an
	// error rather than a second model call.
	if _, running := s.inProgress.Get(planID.String()); running {
		return nil, fmt.Errorf("generation already in progress for plan %s", planID)
	}
	s.inProgress.Set(planID.String(), struct{}{}, cache.DefaultExpiration)
	defer s.inProgress.Delete(planID.String())

	p, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		span.SetStatus(codes.Error, "plan lookup failed")
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	prefs, err := s.plans.ListPreferences(ctx, planID)
	if err != nil {
		span.SetStatus(codes.Error, "preferences lookup failed")
		return nil, fmt.Errorf("failed to load traveler preferences: %w", err)
	}

	prompt := buildItineraryPrompt(p, prefs)
	raw, chunks, err := s.generator.GenerateGrounded(ctx, prompt)
	if err != nil {
		span.SetStatus(codes.Error, "generation failed")
		return nil, fmt.Errorf("itinerary generation failed: %w", err)
	}

	doc, err := parseItinerary(raw)
	if err != nil {
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}

	annotated := s.annotator.Annotate(ctx, doc, chunks)

	saved, err := s.repo.SaveItinerary(ctx, planID, annotated, chunks)
	if err != nil {
		span.SetStatus(codes.Error, "persist failed")
		return nil, err
	}

	outcome = "success"
	s.logger.InfoContext(ctx, "itinerary generated",
		slog.String("plan_id", planID.String()),
		slog.Int("days", len(annotated.Days)),
		slog.Int("citations", len(chunks)),
	)
	return saved, nil
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, planID uuid.UUID) (*types.SavedItinerary, error) {
	saved, err := s.repo.GetItineraryByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return saved, nil
}
