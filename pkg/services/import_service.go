package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"fare-insight-api/pkg/logger"
	"fare-insight-api/pkg/metrics"
	"fare-insight-api/pkg/models"
)

var (
	// ErrUnsupportedFormat is returned for uploads that are neither .xlsx nor .csv.
	ErrUnsupportedFormat = errors.New("unsupported file format: upload .xlsx or .csv")
	// ErrMissingColumns is returned when required headers cannot be found.
	ErrMissingColumns = errors.New("required columns not found")
	// ErrEmptyFile is returned when the file has no data rows.
	ErrEmptyFile = errors.New("file needs a header row and at least one data row")
)

var dateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006", "2006-01-02 15:04:05", time.RFC3339}

// ImportResult 取り込み結果
type ImportResult struct {
	BatchID     string `json:"batch_id"`
	Imported    int    `json:"imported"`
	SkippedRows []int  `json:"skipped_rows"` // 1始まりのシート行番号
}

// ImportService はスプレッドシートからフライトレコードを取り込みます。
type ImportService struct {
	flights FlightStore
	logger  logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewImportService 新しい取り込みサービスを作成
func NewImportService(flights FlightStore, log logger.Logger, m *metrics.Metrics) *ImportService {
	return &ImportService{flights: flights, logger: log, metrics: m, now: time.Now}
}

// Import はfilenameの拡張子に応じて.xlsxまたは.csvを読み込み、保存します。
// 値が不正な行はスキップし、行番号をSkippedRowsに記録します。
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) (ImportResult, error) {
	rows, err := readRows(filename, r)
	if err != nil {
		return ImportResult{}, err
	}
	if len(rows) < 2 {
		return ImportResult{}, ErrEmptyFile
	}

	cols, err := detectColumns(rows[0])
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{BatchID: uuid.New().String(), SkippedRows: make([]int, 0)}
	sourceURL := fmt.Sprintf("import://%s/%s", result.BatchID, filepath.Base(filename))
	now := s.now().UTC()

	records := make([]models.FlightRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, ok := cols.parse(row, now, sourceURL)
		if !ok {
			result.SkippedRows = append(result.SkippedRows, i+2)
			continue
		}
		records = append(records, rec)
	}

	n, err := s.flights.InsertFlights(ctx, records)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to store imported flights: %w", err)
	}
	result.Imported = n

	if s.metrics != nil {
		s.metrics.RecordsIngested.WithLabelValues("import").Add(float64(n))
	}
	s.logger.Info("spreadsheet imported", "file", filename, "batch_id", result.BatchID,
		"imported", n, "skipped", len(result.SkippedRows))
	return result, nil
}

func readRows(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel file: %w", err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel rows: %w", err)
		}
		return rows, nil
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV file: %w", err)
		}
		return rows, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

type columnMap struct {
	route, origin, destination, price, airline, departure, scrapedAt, source int
}

func detectColumns(header []string) (columnMap, error) {
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	cols := columnMap{
		route:       findIndex(header, "route", "ルート"),
		origin:      findIndex(header, "origin", "from", "出発地"),
		destination: findIndex(header, "destination", "to", "到着地"),
		price:       findIndex(header, "price", "fare", "運賃", "価格"),
		airline:     findIndex(header, "airline", "carrier", "航空会社"),
		departure:   findIndex(header, "departure_date", "departure", "date", "出発日"),
		scrapedAt:   findIndex(header, "scraped_at", "collected_at", "取得日時"),
		source:      findIndex(header, "source_url", "source"),
	}

	var missing []string
	if cols.origin == -1 {
		missing = append(missing, "origin")
	}
	if cols.destination == -1 {
		missing = append(missing, "destination")
	}
	if cols.price == -1 {
		missing = append(missing, "price")
	}
	if cols.airline == -1 {
		missing = append(missing, "airline")
	}
	if cols.departure == -1 {
		missing = append(missing, "departure_date")
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("%w: %s (header: %v)", ErrMissingColumns, strings.Join(missing, ", "), header)
	}
	return cols, nil
}

func (c columnMap) parse(row []string, now time.Time, defaultSource string) (models.FlightRecord, bool) {
	origin := strings.ToUpper(cell(row, c.origin))
	destination := strings.ToUpper(cell(row, c.destination))
	airline := cell(row, c.airline)
	if origin == "" || destination == "" || airline == "" {
		return models.FlightRecord{}, false
	}

	price, err := strconv.ParseFloat(strings.TrimPrefix(cell(row, c.price), "$"), 64)
	if err != nil || price <= 0 {
		return models.FlightRecord{}, false
	}

	departure, ok := parseFlexibleTime(cell(row, c.departure))
	if !ok {
		return models.FlightRecord{}, false
	}

	scrapedAt := now
	if t, ok := parseFlexibleTime(cell(row, c.scrapedAt)); ok {
		scrapedAt = t
	}

	route := cell(row, c.route)
	if route == "" {
		route = RouteLabel(origin, destination)
	}
	source := cell(row, c.source)
	if source == "" {
		source = defaultSource
	}

	return models.FlightRecord{
		Route:         route,
		Origin:        origin,
		Destination:   destination,
		Price:         price,
		Airline:       airline,
		DepartureDate: departure.Format("2006-01-02"),
		ScrapedAt:     scrapedAt,
		SourceURL:     source,
	}, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFlexibleTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// findIndex finds the index of the first candidate in a slice
func findIndex(slice []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range slice {
			if strings.EqualFold(item, candidate) {
				return i
			}
		}
	}
	return -1
}
