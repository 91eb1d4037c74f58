// Command validate runs integrity and consistency checks over a UMM dataset
// file: normalization health, outage counts per type, and area statistics.
// The area occurrence count intentionally counts one message affecting three
// areas as three outage events, matching how the per-area summaries report.
//
// Usage:
//
//	go run ./cmd/validate -data data/umm_messages.csv
//	go run ./cmd/validate -data data/umm_messages.db -format sqlite
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/floratiew/ummdashboard/internal/cache"
	"github.com/floratiew/ummdashboard/internal/domain"
	"github.com/floratiew/ummdashboard/internal/store"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "", "path to the dataset file")
	format := flag.String("format", "csv", "dataset format: csv or sqlite")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var loader cache.Loader
	switch *format {
	case "csv":
		loader = store.NewCSVSource(*dataPath, logger)
	case "sqlite":
		loader = store.NewSQLiteSource(*dataPath, logger)
	default:
		fmt.Fprintf(os.Stderr, "FATAL: unknown format %q (want csv or sqlite)\n", *format)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	msgs, err := loader.LoadMessages(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== UMM Dataset Validation ===")
	fmt.Println()

	phases := []*phase{
		validateNormalization(msgs),
		validateClassification(msgs),
	}

	printOutageAnalysis(msgs)

	allPassed := true
	fmt.Println()
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return
	}
	fmt.Println("\nValidation FAILED.")
	os.Exit(1)
}

// validateNormalization checks the structural guarantees of the normalizer.
func validateNormalization(msgs []domain.Message) *phase {
	p := &phase{name: "Phase 1: Normalization guarantees"}

	seen := map[string]int{}
	for i, m := range msgs {
		if m.ID == "" {
			p.errorf("message %d: empty id", i)
		}
		seen[m.ID]++
		if m.Areas == nil {
			p.errorf("message %s: nil areas slice", m.ID)
		}
		for _, a := range m.Areas {
			if a == domain.UnknownArea {
				p.errorf("message %s: sentinel area inside areas list", m.ID)
			}
		}
		if m.CapacityMW < 0 {
			p.errorf("message %s: negative capacity %.1f", m.ID, m.CapacityMW)
		}
	}
	for id, n := range seen {
		if n > 1 {
			p.errorf("duplicate message id %s (%d rows)", id, n)
		}
	}
	return p
}

// validateClassification checks that every message lands in a known bucket.
func validateClassification(msgs []domain.Message) *phase {
	p := &phase{name: "Phase 2: Classification coverage"}

	for _, m := range msgs {
		switch domain.ClassifyStatus(m) {
		case domain.StatusPlanned, domain.StatusUnplanned, domain.StatusUnknown:
		default:
			p.errorf("message %s: unclassifiable status", m.ID)
		}
	}
	return p
}

type areaCount struct {
	area  string
	count int
}

// printOutageAnalysis reports the per-area outage accounting: a message
// affecting N areas counts as N outage events.
func printOutageAnalysis(msgs []domain.Message) {
	outageMessages := 0
	areaOccurrences := 0
	perArea := map[string]int{}
	typeCounts := map[int]int{}

	for _, m := range msgs {
		typeCounts[m.OutageTypeCode]++
		if !domain.IsOutageType(m.OutageTypeCode) {
			continue
		}
		outageMessages++
		areaOccurrences += len(m.Areas)
		for _, a := range m.Areas {
			perArea[a]++
		}
	}

	avgAreas := 0.0
	if outageMessages > 0 {
		avgAreas = float64(areaOccurrences) / float64(outageMessages)
	}

	fmt.Println("Outage count analysis")
	fmt.Printf("  Total messages:                      %d\n", len(msgs))
	fmt.Printf("  Outage messages (types 1,2,3):       %d\n", outageMessages)
	fmt.Printf("  Total area occurrences:              %d\n", areaOccurrences)
	fmt.Printf("  Average areas per outage message:    %.2f\n", avgAreas)

	fmt.Println("\nMessages per type")
	for code := domain.TypeProductionUnavailability; code <= domain.TypeOtherMarketInformation; code++ {
		fmt.Printf("  %d %-28s %d\n", code, domain.OutageTypeLabel(code), typeCounts[code])
	}

	ranked := make([]areaCount, 0, len(perArea))
	for a, c := range perArea {
		ranked = append(ranked, areaCount{a, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].area < ranked[j].area
	})

	fmt.Println("\nOutage events per area")
	for _, ac := range ranked {
		fmt.Printf("  %-8s %d\n", ac.area, ac.count)
	}
}
