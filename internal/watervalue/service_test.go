package watervalue

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plantsYAML = `plants:
  - id: kvilldal
    name: Kvilldal
    price_area: NO2
    max_installed: 1240
    prod_limits: [0, 250, 500, 750, 1000]
    units: [kvilldal_g1, kvilldal_g2]
`

func writePlants(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPlants(t *testing.T) {
	plants, err := LoadPlants(writePlants(t, plantsYAML))
	require.NoError(t, err)
	require.Len(t, plants, 1)

	assert.Equal(t, "kvilldal", plants[0].ID)
	assert.Equal(t, "NO2", plants[0].PriceArea)
	assert.Equal(t, []string{"kvilldal_g1", "kvilldal_g2"}, plants[0].Units)
	assert.Equal(t, []float64{0, 250, 500, 750, 1000}, plants[0].Limits())
}

func TestLoadPlants_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing file":      filepath.Join(t.TempDir(), "absent.yaml"),
		"no plants":         writePlants(t, "plants: []\n"),
		"missing id":        writePlants(t, "plants:\n  - name: X\n    price_area: NO2\n    units: [a]\n"),
		"missing area":      writePlants(t, "plants:\n  - id: x\n    units: [a]\n"),
		"no units":          writePlants(t, "plants:\n  - id: x\n    price_area: NO2\n"),
		"decreasing limits": writePlants(t, "plants:\n  - id: x\n    price_area: NO2\n    prod_limits: [10, 5]\n    units: [a]\n"),
		"duplicate id":      writePlants(t, "plants:\n  - id: x\n    price_area: NO2\n    units: [a]\n  - id: x\n    price_area: NO2\n    units: [a]\n"),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadPlants(path)
			require.Error(t, err)
		})
	}
}

func TestPlant_DerivedLimits(t *testing.T) {
	p := Plant{MaxInstalled: 800}
	assert.Equal(t, []float64{0, 200, 400, 600, 800}, p.Limits())
}

func writeSeries(t *testing.T, dir, name, valueColumn string, points []Point) {
	t.Helper()
	content := "timestamp," + valueColumn + "\n"
	for _, p := range points {
		content += fmt.Sprintf("%s,%g\n", p.Time.Format(time.RFC3339), p.Value)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestService_Estimates(t *testing.T) {
	dir := t.TempDir()

	var price, unit1, unit2 []Point
	for i := 0; i <= 8; i++ {
		at := seriesStart.Add(time.Duration(i) * time.Hour)
		if i < 4 {
			price = append(price, Point{Time: at, Value: 70})
			unit1 = append(unit1, Point{Time: at, Value: 400})
			unit2 = append(unit2, Point{Time: at, Value: 200})
		} else {
			price = append(price, Point{Time: at, Value: 35})
			unit1 = append(unit1, Point{Time: at, Value: 100})
			unit2 = append(unit2, Point{Time: at, Value: 50})
		}
	}
	writeSeries(t, dir, "price_NO2.csv", "price_eur_per_mwh", price)
	writeSeries(t, dir, "kvilldal_g1_production.csv", "production_mw", unit1)
	writeSeries(t, dir, "kvilldal_g2_production.csv", "production_mw", unit2)

	plants, err := LoadPlants(writePlants(t, plantsYAML))
	require.NoError(t, err)

	svc := NewService(plants, dir, slog.Default())
	estimates, err := svc.Estimates(context.Background())
	require.NoError(t, err)
	require.Len(t, estimates, 2)

	byMethod := map[string]PlantEstimate{}
	for _, e := range estimates {
		byMethod[e.Method] = e
	}
	minimum := byMethod[MethodMinimum]
	require.Empty(t, minimum.Error)
	assert.Equal(t, "kvilldal", minimum.PlantID)
	assert.Equal(t, "NO2", minimum.Area)
	assert.Positive(t, minimum.Observations)
	require.Len(t, minimum.WaterValues, 5)

	// Unit series sum to 600 MW then 150 MW; the price floor of the lower
	// level is an estimate for its interval.
	found := false
	for _, lv := range minimum.WaterValues {
		if lv.Value != nil {
			found = true
		}
	}
	assert.True(t, found)

	jump := byMethod[MethodJump]
	require.Empty(t, jump.Error)
}

func TestService_MissingPriceSeries(t *testing.T) {
	plants, err := LoadPlants(writePlants(t, plantsYAML))
	require.NoError(t, err)

	svc := NewService(plants, t.TempDir(), slog.Default())
	estimates, err := svc.Estimates(context.Background())
	require.NoError(t, err)
	require.Len(t, estimates, 2)
	for _, e := range estimates {
		assert.Contains(t, e.Error, "load price series")
	}
}

func TestService_CancelledContext(t *testing.T) {
	svc := NewService([]Plant{{ID: "x", PriceArea: "NO2", Units: []string{"a"}}}, t.TempDir(), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Estimates(ctx)
	require.Error(t, err)
}
