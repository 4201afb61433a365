package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fare-insight-api/pkg/models"
)

// InsightRepository handles database operations for market insights
type InsightRepository struct {
	db *sql.DB
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(db *sql.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// SaveInsights stores insights in a single transaction.
func (r *InsightRepository) SaveInsights(ctx context.Context, insights []models.MarketInsight) error {
	return transaction(r.db, func(tx *sql.Tx) error {
		for _, in := range insights {
			_, err := tx.ExecContext(ctx, `INSERT INTO market_insights
				(id, insight_type, content, generated_at, data_period_start, data_period_end)
				VALUES (?, ?, ?, ?, ?, ?)`,
				in.ID, string(in.InsightType), in.Content, formatTime(in.GeneratedAt),
				formatTime(in.DataPeriodStart), formatTime(in.DataPeriodEnd))
			if err != nil {
				return fmt.Errorf("failed to insert insight %s: %w", in.InsightType, err)
			}
		}
		return nil
	})
}

// LatestByType returns the most recently generated insight of kind.
func (r *InsightRepository) LatestByType(ctx context.Context, kind models.InsightKind) (models.MarketInsight, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, insight_type, content, generated_at, data_period_start, data_period_end
		FROM market_insights WHERE insight_type = ? ORDER BY generated_at DESC LIMIT 1`, string(kind))

	insight, err := scanInsight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MarketInsight{}, false, nil
	}
	if err != nil {
		return models.MarketInsight{}, false, err
	}
	return insight, true, nil
}

// Latest returns up to limit insights, newest first.
func (r *InsightRepository) Latest(ctx context.Context, limit int) ([]models.MarketInsight, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, insight_type, content, generated_at, data_period_start, data_period_end
		FROM market_insights ORDER BY generated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	insights := make([]models.MarketInsight, 0)
	for rows.Next() {
		insight, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, insight)
	}
	return insights, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInsight(row rowScanner) (models.MarketInsight, error) {
	var in models.MarketInsight
	var kind, generatedAt, start, end string
	if err := row.Scan(&in.ID, &kind, &in.Content, &generatedAt, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return in, err
		}
		return in, fmt.Errorf("failed to scan insight: %w", err)
	}
	in.InsightType = models.InsightKind(kind)

	var err error
	if in.GeneratedAt, err = parseTime(generatedAt); err != nil {
		return in, err
	}
	if in.DataPeriodStart, err = parseTime(start); err != nil {
		return in, err
	}
	if in.DataPeriodEnd, err = parseTime(end); err != nil {
		return in, err
	}
	return in, nil
}
