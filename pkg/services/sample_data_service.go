package services

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"fare-insight-api/pkg/models"
)

type routeBand struct {
	origin, destination string
	minPrice, maxPrice  float64
}

var sampleAirlines = []string{"United", "American", "Delta", "Southwest", "JetBlue", "Alaska", "Spirit", "Frontier"}

var sampleRoutes = []routeBand{
	{"LAX", "JFK", 300, 600},
	{"SFO", "BOS", 350, 650},
	{"CHI", "MIA", 250, 500},
	{"DEN", "SEA", 200, 450},
	{"ATL", "LAS", 180, 400},
	{"DFW", "PHX", 150, 350},
	{"MSP", "PDX", 300, 550},
	{"DTW", "SAN", 350, 650},
	{"PHL", "SLC", 400, 700},
	{"IAH", "MCO", 200, 450},
	{"BOS", "LAX", 350, 650},
	{"MIA", "SFO", 400, 750},
	{"LAS", "JFK", 250, 500},
	{"PHX", "CHI", 200, 450},
	{"SEA", "ATL", 300, 550},
}

// sourceRouteCount 取得シミュレーションで使うルート数（先頭から）
const sourceRouteCount = 10

// SampleDataService はサンプル運賃データを生成します。
// 乱数源を固定すれば結果は決定的です。
type SampleDataService struct {
	rng *rand.Rand
}

// NewSampleDataService 新しいサンプルデータサービスを作成
func NewSampleDataService(seed int64) *SampleDataService {
	return &SampleDataService{rng: rand.New(rand.NewSource(seed))}
}

// RouteLabel returns the normalized "ORIG → DEST" label.
func RouteLabel(origin, destination string) string {
	return fmt.Sprintf("%s → %s", origin, destination)
}

// Generate はcount件のレコードを生成します。
// 出発日は now の1〜90日後、取得日時は過去60日以内に分散します。
func (s *SampleDataService) Generate(count int, now time.Time) []models.FlightRecord {
	records := make([]models.FlightRecord, 0, count)
	for i := 0; i < count; i++ {
		band := sampleRoutes[s.rng.Intn(len(sampleRoutes))]
		departure := now.AddDate(0, 0, 1+s.rng.Intn(90))
		scrapedAt := now.Add(-time.Duration(s.rng.Int63n(int64(60 * 24 * time.Hour))))

		records = append(records, models.FlightRecord{
			Route:         RouteLabel(band.origin, band.destination),
			Origin:        band.origin,
			Destination:   band.destination,
			Price:         s.price(band),
			Airline:       sampleAirlines[s.rng.Intn(len(sampleAirlines))],
			DepartureDate: departure.UTC().Format("2006-01-02"),
			ScrapedAt:     scrapedAt.UTC(),
			SourceURL:     fmt.Sprintf("https://example-travel-site.com/flights/%s-%s", band.origin, band.destination),
		})
	}
	return records
}

// SimulateSource はソース1回分の取得結果（10〜25件）を生成します。
func (s *SampleDataService) SimulateSource(sourceURL string, now time.Time) []models.FlightRecord {
	n := 10 + s.rng.Intn(16)
	records := make([]models.FlightRecord, 0, n)
	for i := 0; i < n; i++ {
		band := sampleRoutes[s.rng.Intn(sourceRouteCount)]
		departure := now.AddDate(0, 0, 1+s.rng.Intn(120))

		records = append(records, models.FlightRecord{
			Route:         RouteLabel(band.origin, band.destination),
			Origin:        band.origin,
			Destination:   band.destination,
			Price:         s.price(band),
			Airline:       sampleAirlines[s.rng.Intn(len(sampleAirlines))],
			DepartureDate: departure.UTC().Format("2006-01-02"),
			ScrapedAt:     now.UTC(),
			SourceURL:     sourceURL,
		})
	}
	return records
}

func (s *SampleDataService) price(band routeBand) float64 {
	p := band.minPrice + s.rng.Float64()*(band.maxPrice-band.minPrice)
	return math.Round(p*100) / 100
}

// sourceName はURLから既知のソース名を返します。
func sourceName(sourceURL string) (string, bool) {
	lower := strings.ToLower(sourceURL)
	for _, name := range []string{"kayak", "expedia", "skyscanner"} {
		if strings.Contains(lower, name) {
			return name, true
		}
	}
	return "", false
}
