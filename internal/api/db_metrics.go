package api

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/FACorreiaa/go-trip-planner/app/observability/metrics"
)

// MeteredDB wraps a DB and feeds the query duration and error instruments.
// main wires the live pool through it; the repositories stay unaware.
type MeteredDB struct {
	inner DB
}

var _ DB = (*MeteredDB)(nil)

func NewMeteredDB(inner DB) *MeteredDB {
	return &MeteredDB{inner: inner}
}

func (d *MeteredDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	start := time.Now()
	tag, err := d.inner.Exec(ctx, sql, arguments...)
	recordQuery(ctx, start, err)
	return tag, err
}

func (d *MeteredDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	start := time.Now()
	rows, err := d.inner.Query(ctx, sql, args...)
	recordQuery(ctx, start, err)
	return rows, err
}

func (d *MeteredDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &meteredRow{ctx: ctx, start: time.Now(), inner: d.inner.QueryRow(ctx, sql, args...)}
}

// meteredRow defers recording until Scan, where pgx surfaces row errors.
type meteredRow struct {
	ctx   context.Context
	start time.Time
	inner pgx.Row
}

func (r *meteredRow) Scan(dest ...any) error {
	err := r.inner.Scan(dest...)
	// A missing row is an outcome, not a query failure.
	if errors.Is(err, pgx.ErrNoRows) {
		recordQuery(r.ctx, r.start, nil)
		return err
	}
	recordQuery(r.ctx, r.start, err)
	return err
}

func recordQuery(ctx context.Context, start time.Time, err error) {
	m := metrics.Get()
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1)
	}
}
