package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/go-trip-planner/internal/api"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var (
	ErrNotFound = errors.New("plan not found")
	ErrConflict = errors.New("plan already exists or conflict")
)

var _ Repository = (*PostgresRepository)(nil)

// Repository is the persistence contract for plans and the per-traveler
// preferences hanging off them.
type Repository interface {
	CreatePlan(ctx context.Context, p *types.Plan) (*types.Plan, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*types.Plan, error)
	GetPlanByInviteCode(ctx context.Context, code string) (*types.Plan, error)
	DeletePlan(ctx context.Context, planID uuid.UUID) error
	UpsertPreferences(ctx context.Context, prefs types.TravelerPreferences) error
	ListPreferences(ctx context.Context, planID uuid.UUID) ([]types.TravelerPreferences, error)
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

func (r *PostgresRepository) CreatePlan(ctx context.Context, p *types.Plan) (*types.Plan, error) {
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO plans (owner_id, name, destination, start_date, end_date, invite_code, passcode_hash)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		p.OwnerID, p.Name, p.Destination, p.StartDate, p.EndDate, p.InviteCode, p.Passcode,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) GetPlan(ctx context.Context, planID uuid.UUID) (*types.Plan, error) {
	return r.scanPlan(ctx,
		`SELECT id, owner_id, name, destination, start_date, end_date, invite_code, passcode_hash, created_at, updated_at
         FROM plans WHERE id = $1`, planID)
}

func (r *PostgresRepository) GetPlanByInviteCode(ctx context.Context, code string) (*types.Plan, error) {
	return r.scanPlan(ctx,
		`SELECT id, owner_id, name, destination, start_date, end_date, invite_code, passcode_hash, created_at, updated_at
         FROM plans WHERE invite_code = $1`, code)
}

func (r *PostgresRepository) scanPlan(ctx context.Context, query string, arg any) (*types.Plan, error) {
	var p types.Plan
	err := r.pgpool.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Destination, &p.StartDate, &p.EndDate,
		&p.InviteCode, &p.Passcode, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM plans WHERE id = $1`, planID)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpsertPreferences(ctx context.Context, prefs types.TravelerPreferences) error {
	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO traveler_preferences (plan_id, user_id, display_name, budget, travel_style, must_dos, dietary_notes, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, now())
         ON CONFLICT (plan_id, user_id) DO UPDATE
             SET display_name = EXCLUDED.display_name,
                 budget = EXCLUDED.budget,
                 travel_style = EXCLUDED.travel_style,
                 must_dos = EXCLUDED.must_dos,
                 dietary_notes = EXCLUDED.dietary_notes,
                 updated_at = now()`,
		prefs.PlanID, prefs.UserID, prefs.DisplayName, prefs.Budget, prefs.TravelStyle, prefs.MustDos, prefs.DietaryNotes)
	if err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListPreferences(ctx context.Context, planID uuid.UUID) ([]types.TravelerPreferences, error) {
	rows, err := r.pgpool.Query(ctx,
		`SELECT plan_id, user_id, display_name, budget, travel_style, must_dos, dietary_notes, updated_at
         FROM traveler_preferences WHERE plan_id = $1
         ORDER BY updated_at`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	var prefs []types.TravelerPreferences
	for rows.Next() {
		var p types.TravelerPreferences
		if err := rows.Scan(&p.PlanID, &p.UserID, &p.DisplayName, &p.Budget, &p.TravelStyle, &p.MustDos, &p.DietaryNotes, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preferences row: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("preferences rows error: %w", err)
	}
	return prefs, nil
}
