package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"fare-insight-api/pkg/models"
)

// FlightRepository handles database operations for flight records
type FlightRepository struct {
	db *sql.DB
}

// NewFlightRepository creates a new flight repository
func NewFlightRepository(db *sql.DB) *FlightRepository {
	return &FlightRepository{db: db}
}

// InsertFlights stores records in a single transaction and returns how many were written.
// A zero ScrapedAt is stamped with the insertion time.
func (r *FlightRepository) InsertFlights(ctx context.Context, records []models.FlightRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()

	err := transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO airline_data
			(route, origin, destination, price, airline, departure_date, scraped_at, source_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			scrapedAt := rec.ScrapedAt
			if scrapedAt.IsZero() {
				scrapedAt = now
			}
			if _, err := stmt.ExecContext(ctx, rec.Route, rec.Origin, rec.Destination, rec.Price,
				rec.Airline, rec.DepartureDate, formatTime(scrapedAt), rec.SourceURL); err != nil {
				return fmt.Errorf("failed to insert flight %s: %w", rec.Route, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// ListFlights retrieves flights matching filter, newest departure first.
// filter.Limit <= 0 returns every matching row.
func (r *FlightRepository) ListFlights(ctx context.Context, filter models.FlightFilter) ([]models.FlightRecord, error) {
	query := `SELECT id, route, origin, destination, price, airline, departure_date, scraped_at, source_url
		FROM airline_data`

	var conditions []string
	var args []interface{}

	// LIKE はASCIIの大文字小文字を区別しない
	if filter.Origin != "" {
		conditions = append(conditions, "origin LIKE ?")
		args = append(args, "%"+filter.Origin+"%")
	}
	if filter.Destination != "" {
		conditions = append(conditions, "destination LIKE ?")
		args = append(args, "%"+filter.Destination+"%")
	}
	if filter.Airline != "" {
		conditions = append(conditions, "airline LIKE ?")
		args = append(args, "%"+filter.Airline+"%")
	}
	if filter.MinPrice > 0 {
		conditions = append(conditions, "price >= ?")
		args = append(args, filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		conditions = append(conditions, "price <= ?")
		args = append(args, filter.MaxPrice)
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, "departure_date >= ?")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, "substr(departure_date, 1, 10) <= ?")
		args = append(args, filter.DateTo)
	}
	if !filter.ScrapedSince.IsZero() {
		conditions = append(conditions, "scraped_at >= ?")
		args = append(args, formatTime(filter.ScrapedSince))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY departure_date DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]models.FlightRecord, 0)
	for rows.Next() {
		var f models.FlightRecord
		var scrapedAt string
		if err := rows.Scan(&f.ID, &f.Route, &f.Origin, &f.Destination, &f.Price,
			&f.Airline, &f.DepartureDate, &scrapedAt, &f.SourceURL); err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		if f.ScrapedAt, err = parseTime(scrapedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flights: %w", err)
	}
	return flights, nil
}

// CountFlights counts records scraped at or after since. A zero since counts every record.
func (r *FlightRepository) CountFlights(ctx context.Context, since time.Time) (int, error) {
	query := "SELECT COUNT(*) FROM airline_data"
	var args []interface{}
	if !since.IsZero() {
		query += " WHERE scraped_at >= ?"
		args = append(args, formatTime(since))
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count flights: %w", err)
	}
	return count, nil
}

// DeleteAll removes every flight record.
func (r *FlightRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM airline_data"); err != nil {
		return fmt.Errorf("failed to delete flights: %w", err)
	}
	return nil
}
