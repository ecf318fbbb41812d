package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var (
	ErrWrongPasscode = errors.New("wrong passcode")
	ErrForbidden     = errors.New("only the plan owner may do that")
	ErrBadDateRange  = errors.New("end date must not be before start date")
)

// uniqueViolation is the Postgres error code for a unique constraint hit,
// used to retry invite code generation on the rare collision.
const uniqueViolation = "23505"

const createCodeAttempts = 5

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreatePlan(ctx context.Context, ownerID uuid.UUID, req types.CreatePlanRequest) (*types.Plan, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*types.Plan, error)
	JoinPlan(ctx context.Context, userID uuid.UUID, req types.JoinPlanRequest) (*types.Plan, error)
	DeletePlan(ctx context.Context, userID, planID uuid.UUID) error
	UpsertPreferences(ctx context.Context, planID, userID uuid.UUID, req types.UpsertPreferencesRequest) error
	ListPreferences(ctx context.Context, planID uuid.UUID) ([]types.TravelerPreferences, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) CreatePlan(ctx context.Context, ownerID uuid.UUID, req types.CreatePlanRequest) (*types.Plan, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "CreatePlan")
	defer span.End()

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		span.SetStatus(codes.Error, "invalid date range")
		return nil, err
	}

	var passcodeHash string
	if req.Passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Passcode), bcrypt.DefaultCost)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to hash passcode: %w", err)
		}
		passcodeHash = string(hash)
	}

	// Invite codes are short, so collisions are possible. Regenerate on a
	// unique violation instead of surfacing it.
	for attempt := 0; attempt < createCodeAttempts; attempt++ {
		code, err := generateInviteCode()
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		p := &types.Plan{
			OwnerID:     ownerID,
			Name:        req.Name,
			Destination: req.Destination,
			StartDate:   start,
			EndDate:     end,
			InviteCode:  code,
			Passcode:    passcodeHash,
		}
		created, err := s.repo.CreatePlan(ctx, p)
		if err == nil {
			span.SetAttributes(attribute.String("plan.id", created.ID.String()))
			s.logger.InfoContext(ctx, "plan created",
				slog.String("plan_id", created.ID.String()),
				slog.String("destination", created.Destination))
			return created, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			continue
		}
		span.RecordError(err)
		return nil, err
	}
	err = errors.New("could not allocate a unique invite code")
	span.RecordError(err)
	return nil, err
}

func (s *ServiceImpl) GetPlan(ctx context.Context, planID uuid.UUID) (*types.Plan, error) {
	return s.repo.GetPlan(ctx, planID)
}

// JoinPlan resolves an invite code to its plan, checking the passcode when
// the plan carries one. Joining is idempotent, membership materializes when
// the traveler first saves preferences.
func (s *ServiceImpl) JoinPlan(ctx context.Context, userID uuid.UUID, req types.JoinPlanRequest) (*types.Plan, error) {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "JoinPlan")
	defer span.End()

	p, err := s.repo.GetPlanByInviteCode(ctx, req.InviteCode)
	if err != nil {
		span.SetStatus(codes.Error, "invite code lookup failed")
		return nil, err
	}
	if p.Passcode != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(p.Passcode), []byte(req.Passcode)); err != nil {
			span.SetStatus(codes.Error, "wrong passcode")
			return nil, ErrWrongPasscode
		}
	}
	s.logger.InfoContext(ctx, "traveler joined plan",
		slog.String("plan_id", p.ID.String()),
		slog.String("user_id", userID.String()))
	return p, nil
}

func (s *ServiceImpl) DeletePlan(ctx context.Context, userID, planID uuid.UUID) error {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "DeletePlan")
	defer span.End()

	p, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return err
	}
	if p.OwnerID != userID {
		span.SetStatus(codes.Error, "not the owner")
		return ErrForbidden
	}
	return s.repo.DeletePlan(ctx, planID)
}

func (s *ServiceImpl) UpsertPreferences(ctx context.Context, planID, userID uuid.UUID, req types.UpsertPreferencesRequest) error {
	ctx, span := otel.Tracer("PlanService").Start(ctx, "UpsertPreferences")
	defer span.End()

	if _, err := s.repo.GetPlan(ctx, planID); err != nil {
		return err
	}
	return s.repo.UpsertPreferences(ctx, types.TravelerPreferences{
		PlanID:       planID,
		UserID:       userID,
		DisplayName:  req.DisplayName,
		Budget:       req.Budget,
		TravelStyle:  req.TravelStyle,
		MustDos:      req.MustDos,
		DietaryNotes: req.DietaryNotes,
	})
}

func (s *ServiceImpl) ListPreferences(ctx context.Context, planID uuid.UUID) ([]types.TravelerPreferences, error) {
	return s.repo.ListPreferences(ctx, planID)
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrBadDateRange
	}
	return start, end, nil
}
