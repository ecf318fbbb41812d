package api

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMeteredDBRecordsQueryMetrics(t *testing.T) {
	// The instrument registry binds to the global provider on first use, so
	// the manual reader must be installed before any metered call.
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	db := NewMeteredDB(mock)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO plans").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	_, err = db.Exec(ctx, "INSERT INTO plans DEFAULT VALUES")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO plans").WillReturnError(errors.New("connection reset"))
	_, err = db.Exec(ctx, "INSERT INTO plans DEFAULT VALUES")
	require.Error(t, err)

	// A miss on QueryRow is an outcome, not a query failure.
	mock.ExpectQuery("SELECT id FROM plans").WithArgs("x").WillReturnError(pgx.ErrNoRows)
	var id string
	err = db.QueryRow(ctx, "SELECT id FROM plans WHERE id = $1", "x").Scan(&id)
	require.ErrorIs(t, err, pgx.ErrNoRows)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	durations, errorsTotal := findDBInstruments(t, rm)
	assert.Equal(t, uint64(3), durations)
	assert.Equal(t, int64(1), errorsTotal)

	require.NoError(t, mock.ExpectationsWereMet())
}

// findDBInstruments digs the two DB instruments out of a collected batch
// and returns the duration sample count and the error counter value.
func findDBInstruments(t *testing.T, rm metricdata.ResourceMetrics) (uint64, int64) {
	t.Helper()

	var durationCount uint64
	var errorCount int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch m.Name {
			case "db_query_duration_seconds":
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				for _, dp := range hist.DataPoints {
					durationCount += dp.Count
				}
			case "db_query_errors_total":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					errorCount += dp.Value
				}
			}
		}
	}
	return durationCount, errorCount
}
