// Command genmock generates a synthetic umm_messages.csv fixture for local
// development and load testing. It runs the generated rows through the
// actual normalizer so the printed stats match real service behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out data/umm_messages.csv -rows 500 -seed 1
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/floratiew/ummdashboard/internal/domain"
)

// The fixed clock pins the publication window so fixtures regenerate
// byte-for-byte for a given seed.
var clock = clockwork.NewFakeClockAt(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))

var header = []string{
	"message_id", "version", "message_type", "event_status",
	"publication_date", "event_start", "event_stop",
	"publisher_id", "publisher_name", "unavailability_type", "remarks",
	"areas_json", "market_participants_json",
	"production_units_json", "generation_units_json", "transmission_units_json",
}

var (
	areas      = []string{"NO1", "NO2", "NO3", "NO4", "NO5", "SE1", "SE2", "SE3", "SE4", "DK1", "DK2", "FI"}
	publishers = []string{"Statkraft Energi AS", "Statnett SF", "Vattenfall AB", "Fortum Power and Heat Oy", "Svenska kraftnät", "Energinet", "Hafslund Eco"}
	resources  = []string{"Tonstad", "Kvilldal", "Sima G2", "Aurland I", "Oskarshamn 3", "Ringhals 4", "Olkiluoto 2", "Skagerrak 4"}
	remarks    = map[string][]string{
		"planned":   {"Planned maintenance", "Annual revision, scheduled", "Scheduled inspection of unit"},
		"unplanned": {"Unplanned outage after fault", "Unexpected trip of generator", "Failure in auxiliary systems"},
		"neutral":   {"Capacity restriction", "Outage window extended", ""},
	}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/umm_messages.csv", "output CSV path")
	rows := flag.Int("rows", 500, "number of messages to generate")
	seed := flag.Int64("seed", 1, "PRNG seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create fixture: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	msgs := make([]domain.Message, 0, *rows)
	for i := 0; i < *rows; i++ {
		raw := randomRecord(rng, i)
		if err := w.Write(recordRow(raw)); err != nil {
			return err
		}
		msgs = append(msgs, domain.Normalize(raw))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	log.Printf("wrote %d messages to %s", *rows, *out)
	printStats(msgs)
	return nil
}

func randomRecord(rng *rand.Rand, i int) domain.RawMessageRecord {
	published := clock.Now().Add(-time.Duration(rng.Intn(3*365*24)) * time.Hour)
	start := published.Add(time.Duration(rng.Intn(72)) * time.Hour)
	stop := start.Add(time.Duration(1+rng.Intn(240)) * time.Hour)

	// Mostly production unavailability, with the remaining codes mixed in.
	msgType := 1
	switch roll := rng.Intn(10); {
	case roll >= 8:
		msgType = 3
	case roll >= 6:
		msgType = 2 + rng.Intn(4) // 2..5
	}

	rec := domain.RawMessageRecord{
		MessageID:       fmt.Sprintf("umm-%06d", i+1),
		Version:         strconv.Itoa(1 + rng.Intn(3)),
		MessageType:     strconv.Itoa(msgType),
		EventStatus:     pick(rng, []string{"1", "1", "1", "3"}),
		PublicationDate: published.Format(time.RFC3339),
		EventStart:      start.Format(time.RFC3339),
		EventStop:       stop.Format(time.RFC3339),
		PublisherID:     fmt.Sprintf("pub-%02d", rng.Intn(len(publishers))),
		PublisherName:   pick(rng, publishers),
	}

	switch rng.Intn(3) {
	case 0:
		rec.UnavailabilityType = pick(rng, []string{"1", "2"})
		rec.Remarks = pick(rng, remarks["neutral"])
	case 1:
		rec.Remarks = pick(rng, remarks["planned"])
	default:
		rec.Remarks = pick(rng, remarks["unplanned"])
	}

	if msgType == 3 {
		in, out := pick(rng, areas), pick(rng, areas)
		units := []domain.TransmissionUnit{{
			Name:        in + "-" + out,
			InAreaName:  in,
			OutAreaName: out,
			TimePeriods: periods(rng),
		}}
		rec.TransmissionUnitsJSON = mustJSON(units)
		return rec
	}

	area := pick(rng, areas)
	rec.AreasJSON = mustJSON([]map[string]string{{"name": area}})
	units := []domain.ProductionUnit{{
		Name:        pick(rng, resources),
		AreaName:    area,
		TimePeriods: periods(rng),
	}}
	if rng.Intn(2) == 0 {
		rec.ProductionUnitsJSON = mustJSON(units)
	} else {
		units[0].GenerationUnitName = units[0].Name
		units[0].Name = ""
		rec.GenerationUnitsJSON = mustJSON(units)
	}
	return rec
}

func periods(rng *rand.Rand) []domain.TimePeriod {
	n := 1 + rng.Intn(2)
	out := make([]domain.TimePeriod, n)
	for i := range out {
		capacity := float64(10+rng.Intn(120)) * 2.5
		out[i] = domain.TimePeriod{UnavailableCapacity: &capacity}
	}
	return out
}

func recordRow(r domain.RawMessageRecord) []string {
	return []string{
		r.MessageID, r.Version, r.MessageType, r.EventStatus,
		r.PublicationDate, r.EventStart, r.EventStop,
		r.PublisherID, r.PublisherName, r.UnavailabilityType, r.Remarks,
		r.AreasJSON, r.MarketParticipantsJSON,
		r.ProductionUnitsJSON, r.GenerationUnitsJSON, r.TransmissionUnitsJSON,
	}
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("marshal fixture sub-document: %v", err)
	}
	return string(data)
}

type areaCount struct {
	area  string
	count int
}

func printStats(msgs []domain.Message) {
	typeCounts := map[int]int{}
	statusCounts := map[domain.Status]int{}
	areaCounts := map[string]int{}
	outages := 0
	for _, m := range msgs {
		typeCounts[m.OutageTypeCode]++
		statusCounts[domain.ClassifyStatus(m)]++
		if domain.IsOutageType(m.OutageTypeCode) {
			outages++
		}
		for _, a := range m.Areas {
			areaCounts[a]++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d (outage types 1-3: %d)\n", len(msgs), outages)
	for code := domain.TypeProductionUnavailability; code <= domain.TypeOtherMarketInformation; code++ {
		fmt.Printf("  type %d (%s): %d\n", code, domain.OutageTypeLabel(code), typeCounts[code])
	}
	fmt.Printf("By status: planned=%d, unplanned=%d, unknown=%d\n",
		statusCounts[domain.StatusPlanned], statusCounts[domain.StatusUnplanned], statusCounts[domain.StatusUnknown])

	ranked := make([]areaCount, 0, len(areaCounts))
	for a, c := range areaCounts {
		ranked = append(ranked, areaCount{a, c})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].count > ranked[j].count })
	fmt.Printf("Areas (%d): ", len(ranked))
	for _, ac := range ranked {
		fmt.Printf("%s=%d ", ac.area, ac.count)
	}
	fmt.Println()
}
