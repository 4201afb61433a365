package repository

import (
	"context"
	"database/sql"
	"fmt"

	"fare-insight-api/pkg/models"
)

// ScrapingLogRepository handles database operations for acquisition logs
type ScrapingLogRepository struct {
	db *sql.DB
}

// NewScrapingLogRepository creates a new scraping log repository
func NewScrapingLogRepository(db *sql.DB) *ScrapingLogRepository {
	return &ScrapingLogRepository{db: db}
}

// SaveLog stores one acquisition run and returns its id.
func (r *ScrapingLogRepository) SaveLog(ctx context.Context, entry models.ScrapingLog) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO scraping_logs
		(source, status, records_scraped, error_message, scraped_at) VALUES (?, ?, ?, ?, ?)`,
		entry.Source, string(entry.Status), entry.RecordsScraped, entry.ErrorMessage, formatTime(entry.ScrapedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert scraping log: %w", err)
	}
	return res.LastInsertId()
}

// RecentLogs returns up to limit logs, newest first.
func (r *ScrapingLogRepository) RecentLogs(ctx context.Context, limit int) ([]models.ScrapingLog, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, source, status, records_scraped, error_message, scraped_at
		FROM scraping_logs ORDER BY scraped_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scraping logs: %w", err)
	}
	defer rows.Close()

	logs := make([]models.ScrapingLog, 0)
	for rows.Next() {
		var entry models.ScrapingLog
		var status, scrapedAt string
		if err := rows.Scan(&entry.ID, &entry.Source, &status, &entry.RecordsScraped, &entry.ErrorMessage, &scrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scraping log: %w", err)
		}
		entry.Status = models.ScrapingStatus(status)
		if entry.ScrapedAt, err = parseTime(scrapedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
