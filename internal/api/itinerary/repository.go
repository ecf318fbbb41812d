package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var ErrNotFound = errors.New("itinerary not found")

var _ Repository = (*PostgresRepository)(nil)

// Repository persists one itinerary document per plan; regeneration
// replaces the previous document.
type Repository interface {
	SaveItinerary(ctx context.Context, planID uuid.UUID, doc types.Itinerary, citations []types.GroundingChunk) (*types.SavedItinerary, error)
	GetItineraryByPlan(ctx context.Context, planID uuid.UUID) (*types.SavedItinerary, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	pgpool api.DB
}

func NewPostgresRepository(pgpool api.DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresRepository) SaveItinerary(ctx context.Context, planID uuid.UUID, doc types.Itinerary, citations []types.GroundingChunk) (*types.SavedItinerary, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal itinerary document: %w", err)
	}
	citJSON, err := json.Marshal(citations)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal citations: %w", err)
	}

	saved := &types.SavedItinerary{PlanID: planID, Document: doc, Citations: citations}
	err = r.pgpool.QueryRow(ctx,
		`INSERT INTO itineraries (plan_id, document, citations)
         VALUES ($1, $2, $3)
         ON CONFLICT (plan_id) DO UPDATE
             SET document = EXCLUDED.document,
                 citations = EXCLUDED.citations,
                 created_at = now()
         RETURNING id, created_at`,
		planID, docJSON, citJSON).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save itinerary: %w", err)
	}
	return saved, nil
}

func (r *PostgresRepository) GetItineraryByPlan(ctx context.Context, planID uuid.UUID) (*types.SavedItinerary, error) {
	var (
		saved   types.SavedItinerary
		docJSON []byte
		citJSON []byte
	)
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, plan_id, document, citations, created_at
         FROM itineraries WHERE plan_id = $1`,
		planID).Scan(&saved.ID, &saved.PlanID, &docJSON, &citJSON, &saved.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load itinerary: %w", err)
	}

	if err := json.Unmarshal(docJSON, &saved.Document); err != nil {
		return nil, fmt.Errorf("failed to unmarshal itinerary document: %w", err)
	}
	if len(citJSON) > 0 {
		if err := json.Unmarshal(citJSON, &saved.Citations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal citations: %w", err)
		}
	}
	return &saved, nil
}
