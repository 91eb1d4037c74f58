package watervalue

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LevelValue is one water value estimate for a production interval.
// Value is nil when the method produced no estimate for the interval.
type LevelValue struct {
	Level int      `json:"level"`
	Value *float64 `json:"valueEURPerMWh"`
}

// PlantEstimate is one estimation run for one plant.
type PlantEstimate struct {
	PlantID          string       `json:"plantId"`
	PlantName        string       `json:"plantName"`
	Area             string       `json:"area"`
	Method           string       `json:"method"`
	WaterValues      []LevelValue `json:"waterValues,omitempty"`
	ValidBreakpoints int          `json:"validBreakpoints"`
	Observations     int          `json:"observations"`
	Error            string       `json:"error,omitempty"`
}

// Service runs the water value estimator over the configured plants, reading
// price and production series from CSV files under a series directory.
type Service struct {
	plants    []Plant
	seriesDir string
	logger    *slog.Logger
}

// NewService creates a water value service over the given plants. Series
// files are resolved relative to seriesDir: price_<AREA>.csv per price area
// and <unit>_production.csv per unit.
func NewService(plants []Plant, seriesDir string, logger *slog.Logger) *Service {
	return &Service{plants: plants, seriesDir: seriesDir, logger: logger}
}

// Estimates runs both estimation methods for every configured plant. A
// per-plant failure is reported in the result entry, not as an error.
func (s *Service) Estimates(ctx context.Context) ([]PlantEstimate, error) {
	prices := map[string][]Point{}

	out := make([]PlantEstimate, 0, 2*len(s.plants))
	for _, plant := range s.plants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		price, ok := prices[plant.PriceArea]
		if !ok {
			var err error
			price, err = s.readSeries(filepath.Join(s.seriesDir, "price_"+plant.PriceArea+".csv"), "price_eur_per_mwh")
			if err != nil {
				out = append(out, s.failedRuns(plant, fmt.Sprintf("load price series: %v", err))...)
				continue
			}
			prices[plant.PriceArea] = price
		}

		production, err := s.plantProduction(plant)
		if err != nil {
			out = append(out, s.failedRuns(plant, err.Error())...)
			continue
		}

		samples, err := Align(price, production, DefaultStep)
		if err != nil {
			out = append(out, s.failedRuns(plant, fmt.Sprintf("align series: %v", err))...)
			continue
		}

		for _, method := range []string{MethodMinimum, MethodJump} {
			entry := PlantEstimate{
				PlantID:   plant.ID,
				PlantName: plant.Name,
				Area:      plant.PriceArea,
				Method:    method,
			}
			result, err := Estimate(samples, Options{
				Limits:       plant.Limits(),
				MaxInstalled: plant.MaxInstalled,
				Method:       method,
			})
			if err != nil {
				entry.Error = err.Error()
				s.logger.Warn("water value estimation failed",
					"plant", plant.ID, "method", method, "error", err)
			} else {
				entry.WaterValues = levelValues(result.WaterValues)
				entry.ValidBreakpoints = result.ValidBreakpoints
				entry.Observations = len(samples)
			}
			out = append(out, entry)
		}
	}
	return out, nil
}

// plantProduction sums the plant's unit series into a total production
// series. All unit files must be present.
func (s *Service) plantProduction(plant Plant) ([]Point, error) {
	totals := map[int64]float64{}
	for _, unit := range plant.Units {
		points, err := s.readSeries(filepath.Join(s.seriesDir, unit+"_production.csv"), "production_mw")
		if err != nil {
			return nil, fmt.Errorf("load unit series %s: %w", unit, err)
		}
		for _, p := range points {
			totals[p.Time.Unix()] += p.Value
		}
	}

	out := make([]Point, 0, len(totals))
	for ts, v := range totals {
		out = append(out, Point{Time: time.Unix(ts, 0).UTC(), Value: v})
	}
	return out, nil
}

// readSeries parses a two-column timestamp/value CSV. Rows with an
// unparseable timestamp or value are skipped and counted.
func (s *Service) readSeries(path, valueColumn string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read series header: %w", err)
	}
	timeIdx, valueIdx := -1, -1
	for i, name := range header {
		switch name {
		case "timestamp":
			timeIdx = i
		case valueColumn:
			valueIdx = i
		}
	}
	if timeIdx < 0 || valueIdx < 0 {
		return nil, fmt.Errorf("series %s is missing timestamp or %s column", filepath.Base(path), valueColumn)
	}

	var points []Point
	skipped := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if timeIdx >= len(row) || valueIdx >= len(row) {
			skipped++
			continue
		}
		ts, err := time.Parse(time.RFC3339, row[timeIdx])
		if err != nil {
			skipped++
			continue
		}
		v, err := strconv.ParseFloat(row[valueIdx], 64)
		if err != nil {
			skipped++
			continue
		}
		points = append(points, Point{Time: ts.UTC(), Value: v})
	}
	if skipped > 0 {
		s.logger.Warn("skipped malformed series rows", "path", path, "rows", skipped)
	}
	return points, nil
}

func (s *Service) failedRuns(plant Plant, msg string) []PlantEstimate {
	s.logger.Warn("water value plant skipped", "plant", plant.ID, "error", msg)
	runs := make([]PlantEstimate, 0, 2)
	for _, method := range []string{MethodMinimum, MethodJump} {
		runs = append(runs, PlantEstimate{
			PlantID:   plant.ID,
			PlantName: plant.Name,
			Area:      plant.PriceArea,
			Method:    method,
			Error:     msg,
		})
	}
	return runs
}

func levelValues(values []float64) []LevelValue {
	out := make([]LevelValue, len(values))
	for i, v := range values {
		out[i] = LevelValue{Level: i + 1}
		if !math.IsNaN(v) {
			value := v
			out[i].Value = &value
		}
	}
	return out
}
