package plan

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewPostgresRepository(mockPool, testLogger()), mockPool
}

func TestPostgresRepository_CreatePlan(t *testing.T) {
	repo, mockPool := newMockRepo(t)

	ownerID := uuid.New()
	planID := uuid.New()
	now := time.Now()

	mockPool.ExpectQuery(`INSERT INTO plans`).
		WithArgs(ownerID, "Kyoto trip", "Kyoto, Japan",
			pgxmock.AnyArg(), pgxmock.AnyArg(), "ABC234", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(planID, now, now))

	p := &types.Plan{
		OwnerID:     ownerID,
		Name:        "Kyoto trip",
		Destination: "Kyoto, Japan",
		InviteCode:  "ABC234",
	}
	created, err := repo.CreatePlan(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, planID, created.ID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_GetPlanByInviteCode(t *testing.T) {
	repo, mockPool := newMockRepo(t)

	planID := uuid.New()
	ownerID := uuid.New()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT (.+) FROM plans WHERE invite_code`).
			WithArgs("ABC234").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "owner_id", "name", "destination", "start_date", "end_date",
				"invite_code", "passcode_hash", "created_at", "updated_at",
			}).AddRow(planID, ownerID, "Kyoto trip", "Kyoto, Japan", now, now.Add(96*time.Hour), "ABC234", "", now, now))

		p, err := repo.GetPlanByInviteCode(context.Background(), "ABC234")
		require.NoError(t, err)
		assert.Equal(t, planID, p.ID)
		assert.Equal(t, "Kyoto trip", p.Name)
	})

	t.Run("missing maps to ErrNotFound", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT (.+) FROM plans WHERE invite_code`).
			WithArgs("ZZZZZZ").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetPlanByInviteCode(context.Background(), "ZZZZZZ")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_DeletePlan(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	planID := uuid.New()

	t.Run("deletes the row", func(t *testing.T) {
		mockPool.ExpectExec(`DELETE FROM plans`).
			WithArgs(planID).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		require.NoError(t, repo.DeletePlan(context.Background(), planID))
	})

	t.Run("zero rows maps to ErrNotFound", func(t *testing.T) {
		mockPool.ExpectExec(`DELETE FROM plans`).
			WithArgs(planID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		assert.ErrorIs(t, repo.DeletePlan(context.Background(), planID), ErrNotFound)
	})

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_ListPreferences(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	planID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	mockPool.ExpectQuery(`SELECT (.+) FROM traveler_preferences`).
		WithArgs(planID).
		WillReturnRows(pgxmock.NewRows([]string{
			"plan_id", "user_id", "display_name", "budget", "travel_style",
			"must_dos", "dietary_notes", "updated_at",
		}).AddRow(planID, userID, "Alex", "mid-range", "relaxed", []string{"Fushimi Inari"}, "vegetarian", now))

	prefs, err := repo.ListPreferences(context.Background(), planID)
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	assert.Equal(t, "Alex", prefs[0].DisplayName)
	assert.Equal(t, []string{"Fushimi Inari"}, prefs[0].MustDos)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
