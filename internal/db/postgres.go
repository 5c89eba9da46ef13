package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spacesedan/sentiserve/internal/ml"
	"github.com/spacesedan/sentiserve/internal/models"
)

const DEFAULT_RECORDS_QUERY = `
        SELECT COALESCE(text, ''), label::int
        FROM sentiment_records
        ORDER BY id
    `

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("[DB] failed to create PostgreSQL pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[DB] failed to ping PostgreSQL: %w", err)
	}

	slog.Info("[DB] Connected to PostgreSQL successfully")
	return pool, nil
}

// PostgresLoader reads labeled examples from the sentiment_records table.
// It satisfies sentiment.Loader.
type PostgresLoader struct {
	DB    Querier
	Query string
}

func NewPostgresLoader(db Querier) *PostgresLoader {
	return &PostgresLoader{DB: db, Query: DEFAULT_RECORDS_QUERY}
}

func (l *PostgresLoader) Source() string { return "postgres:sentiment_records" }

func (l *PostgresLoader) Load(ctx context.Context) ([]models.SentimentRecord, error) {
	rows, err := l.DB.Query(ctx, l.Query)
	if err != nil {
		return nil, &ml.DataLoadError{Path: l.Source(), Err: err}
	}
	defer rows.Close()

	return ScanRecords(rows, l.Source())
}

// ScanRecords converts (text, label) rows into records. Labels must be 0 or 1.
func ScanRecords(rows pgx.Rows, source string) ([]models.SentimentRecord, error) {
	var records []models.SentimentRecord
	rowNo := 0
	for rows.Next() {
		rowNo++
		var text string
		var label int
		if err := rows.Scan(&text, &label); err != nil {
			return nil, &ml.DataLoadError{Path: source, Line: rowNo, Err: err}
		}
		if label != 0 && label != 1 {
			return nil, &ml.DataLoadError{Path: source, Line: rowNo, Err: fmt.Errorf("invalid label %d", label)}
		}
		records = append(records, models.SentimentRecord{Text: text, Label: label == 1})
	}
	if err := rows.Err(); err != nil {
		return nil, &ml.DataLoadError{Path: source, Err: err}
	}

	if len(records) == 0 {
		return nil, &ml.DataLoadError{Path: source, Err: errors.New("no records found")}
	}
	slog.Info("[DB] Loaded training records", slog.Int("count", len(records)))
	return records, nil
}
