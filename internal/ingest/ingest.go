// Package ingest loads dealership inventory snapshots produced by the
// acquisition side of the system. Acquisition itself (scraping,
// anti-bot handling, pagination) lives elsewhere; this package only
// understands the snapshot files it leaves behind: plain JSON,
// brotli-compressed JSON, and saved inventory HTML pages.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"github.com/rs/zerolog"

	"github.com/dealerscope/dealerscope/internal/model"
)

// Snapshot is one dealership's inventory at a point in time.
type Snapshot struct {
	DealerName string                `json:"dealer_name"`
	Vehicles   []model.VehicleRecord `json:"vehicles"`
	CapturedAt time.Time             `json:"captured_at,omitempty"`
}

// Loader reads snapshot files into typed vehicle records, tolerating
// missing attributes per the engine's contract.
type Loader struct {
	logger zerolog.Logger
}

// NewLoader creates a snapshot loader.
func NewLoader(logger zerolog.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadDir reads every snapshot in dir (one file per dealership) and
// returns inventories keyed by dealer name. Unreadable files are
// logged and skipped so one bad export never blocks a run.
func (l *Loader) LoadDir(dir string) (map[string][]model.VehicleRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot dir: %w", err)
	}

	inventories := make(map[string][]model.VehicleRecord)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		snapshot, err := l.LoadFile(path)
		if err != nil {
			l.logger.Warn().Err(err).Str("file", path).Msg("skipping unreadable snapshot")
			continue
		}
		inventories[snapshot.DealerName] = append(inventories[snapshot.DealerName], snapshot.Vehicles...)
	}
	return inventories, nil
}

// LoadFile reads one snapshot, dispatching on extension.
func (l *Loader) LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".json.br"):
		return l.parseJSON(brotli.NewReader(f), dealerFromPath(path, ".json.br"))
	case strings.HasSuffix(path, ".json"):
		return l.parseJSON(f, dealerFromPath(path, ".json"))
	case strings.HasSuffix(path, ".html"):
		return l.parseHTML(f, dealerFromPath(path, ".html"))
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", filepath.Base(path))
	}
}

// rawSnapshot mirrors the loose attribute maps the acquisition side
// emits: every key optional, numbers sometimes strings.
type rawSnapshot struct {
	DealerName string           `json:"dealer_name"`
	CapturedAt time.Time        `json:"captured_at"`
	Vehicles   []map[string]any `json:"vehicles"`
}

func (l *Loader) parseJSON(r io.Reader, fallbackDealer string) (*Snapshot, error) {
	var raw rawSnapshot
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding snapshot JSON: %w", err)
	}

	dealer := raw.DealerName
	if dealer == "" {
		dealer = fallbackDealer
	}

	snapshot := &Snapshot{DealerName: dealer, CapturedAt: raw.CapturedAt}
	for _, attrs := range raw.Vehicles {
		snapshot.Vehicles = append(snapshot.Vehicles, vehicleFromAttrs(attrs, dealer))
	}
	return snapshot, nil
}

// parseHTML extracts vehicles from a saved inventory page: the first
// table whose header row names a vin column, columns mapped by header
// text.
func (l *Loader) parseHTML(r io.Reader, fallbackDealer string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot HTML: %w", err)
	}

	dealer := strings.TrimSpace(doc.Find("[data-dealer-name]").First().AttrOr("data-dealer-name", ""))
	if dealer == "" {
		dealer = fallbackDealer
	}

	snapshot := &Snapshot{DealerName: dealer}
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var columns []string
		table.Find("tr").First().Find("th").Each(func(_ int, th *goquery.Selection) {
			columns = append(columns, normalizeHeader(th.Text()))
		})
		if !contains(columns, "vin") {
			return true // not an inventory table, keep looking
		}

		table.Find("tr").Each(func(i int, tr *goquery.Selection) {
			if i == 0 {
				return
			}
			attrs := make(map[string]any)
			tr.Find("td").Each(func(j int, td *goquery.Selection) {
				if j < len(columns) {
					attrs[columns[j]] = strings.TrimSpace(td.Text())
				}
			})
			if len(attrs) > 0 {
				snapshot.Vehicles = append(snapshot.Vehicles, vehicleFromAttrs(attrs, dealer))
			}
		})
		return false
	})

	return snapshot, nil
}

// vehicleFromAttrs converts a loose attribute map into a typed record.
// Missing or unparseable attributes are left at their zero values; the
// engine decides downstream what is usable.
func vehicleFromAttrs(attrs map[string]any, dealer string) model.VehicleRecord {
	v := model.VehicleRecord{
		VIN:        attrString(attrs, "vin"),
		DealerName: attrString(attrs, "dealer_name"),
		Make:       attrString(attrs, "make"),
		Model:      attrString(attrs, "model"),
		Trim:       attrString(attrs, "trim"),
		Year:       attrInt(attrs, "year"),
		Mileage:    attrInt(attrs, "mileage"),
		Condition:  attrString(attrs, "condition"),
		Price:      attrFloat(attrs, "price"),
	}
	if v.DealerName == "" {
		v.DealerName = dealer
	}
	if v.Condition == "" {
		v.Condition = model.ConditionUnknown
	}
	if msrp := attrFloat(attrs, "msrp"); msrp > 0 {
		v.MSRP = &msrp
	}
	return v
}

func attrString(attrs map[string]any, key string) string {
	if raw, ok := attrs[key]; ok {
		if s, ok := raw.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func attrFloat(attrs map[string]any, key string) float64 {
	switch raw := attrs[key].(type) {
	case float64:
		return raw
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
		if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return parsed
		}
	}
	return 0
}

func attrInt(attrs map[string]any, key string) int {
	return int(attrFloat(attrs, key))
}

func normalizeHeader(text string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "_")
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func dealerFromPath(path, ext string) string {
	return strings.TrimSuffix(filepath.Base(path), ext)
}
