package competitor

import (
	"math"
	"testing"

	"github.com/dealerscope/dealerscope/internal/model"
)

func inventory(dealer, brand, vehicleModel string, year int, prices ...float64) []model.VehicleRecord {
	out := make([]model.VehicleRecord, 0, len(prices))
	for i, p := range prices {
		out = append(out, model.VehicleRecord{
			VIN:        dealer + "-" + vehicleModel + string(rune('A'+i)),
			DealerName: dealer,
			Make:       brand,
			Model:      vehicleModel,
			Year:       year,
			Price:      p,
		})
	}
	return out
}

func TestClassifyStrategy(t *testing.T) {
	tests := []struct {
		name string
		s    model.MarketStatistics
		want string
	}{
		{"premium consistent", model.MarketStatistics{Mean: 60000, Median: 58000}, "premium_consistent"},
		{"premium mixed", model.MarketStatistics{Mean: 60000, Median: 40000}, "premium_mixed"},
		{"mid market", model.MarketStatistics{Mean: 30000, Median: 29000}, "mid_market"},
		{"value focused", model.MarketStatistics{Mean: 18000, Median: 17500}, "value_focused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStrategy(tt.s); got != tt.want {
				t.Errorf("classifyStrategy = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBrandFocus_PrimaryBrands(t *testing.T) {
	var inv []model.VehicleRecord
	inv = append(inv, inventory("X", "Toyota", "Camry", 2021, 1, 1, 1, 1, 1)...) // 50%
	inv = append(inv, inventory("X", "Honda", "Civic", 2021, 1, 1, 1)...)        // 30%
	inv = append(inv, inventory("X", "Ford", "F-150", 2021, 1)...)               // 10%
	inv = append(inv, inventory("X", "Kia", "Soul", 2021, 1)...)                 // 10%

	focus := brandFocus(inv)
	if focus.Distribution["toyota"] != 5 || focus.Distribution["honda"] != 3 {
		t.Errorf("unexpected distribution: %v", focus.Distribution)
	}
	if len(focus.PrimaryBrands) != 2 || focus.PrimaryBrands[0] != "honda" || focus.PrimaryBrands[1] != "toyota" {
		t.Errorf("primary brands = %v, want [honda toyota]", focus.PrimaryBrands)
	}
}

func TestAnalyze_ThreatScoring(t *testing.T) {
	g := NewGenerator()

	ours := inventory("Us", "Toyota", "Camry", 2021, 30000, 31000, 32000)
	// Same size, identical vehicles, 10% cheaper on average.
	rival := inventory("Rival", "Toyota", "Camry", 2021, 27000, 27900, 28800)

	insights := g.Analyze(ours, map[string][]model.VehicleRecord{"Rival": rival})
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}

	// Size term: 3/3 x 0.2 = 0.2. Price term: (31000-27900)/31000 x 0.4 = 0.04.
	// Overlap: full signature overlap x 0.3 = 0.3.
	want := 0.2 + 0.04 + 0.3
	if got := insights[0].ThreatLevel; math.Abs(got-want) > 1e-9 {
		t.Errorf("threat level = %.4f, want %.4f", got, want)
	}
}

func TestAnalyze_ThreatClampedToOne(t *testing.T) {
	g := NewGenerator()

	ours := inventory("Us", "Toyota", "Camry", 2021, 50000)
	var rival []model.VehicleRecord
	// Huge, much cheaper, fully overlapping inventory.
	for i := 0; i < 40; i++ {
		v := inventory("Rival", "Toyota", "Camry", 2021, 20000)[0]
		v.VIN = v.VIN + string(rune('a'+i%26))
		rival = append(rival, v)
	}

	insights := g.Analyze(ours, map[string][]model.VehicleRecord{"Rival": rival})
	got := insights[0].ThreatLevel
	if got < 0 || got > 1 {
		t.Errorf("threat level = %.4f, outside [0,1]", got)
	}
	// Size and price terms hit their caps, overlap is full.
	want := 0.3 + 0.24 + 0.3
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("threat level = %.4f, want %.4f", got, want)
	}
}

func TestAnalyze_SortedByThreat(t *testing.T) {
	g := NewGenerator()
	ours := inventory("Us", "Toyota", "Camry", 2021, 30000, 31000)

	competitors := map[string][]model.VehicleRecord{
		"Cheap Twin":  inventory("Cheap Twin", "Toyota", "Camry", 2021, 25000, 26000),
		"Unrelated":   inventory("Unrelated", "Porsche", "911", 2024, 150000),
		"Pricey Twin": inventory("Pricey Twin", "Toyota", "Camry", 2021, 40000, 41000),
	}

	insights := g.Analyze(ours, competitors)
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(insights))
	}
	for i := 1; i < len(insights); i++ {
		if insights[i].ThreatLevel > insights[i-1].ThreatLevel {
			t.Errorf("insights not sorted by threat: %s (%.3f) after %s (%.3f)",
				insights[i].DealerName, insights[i].ThreatLevel,
				insights[i-1].DealerName, insights[i-1].ThreatLevel)
		}
	}
	if insights[0].DealerName != "Cheap Twin" {
		t.Errorf("most threatening = %s, want Cheap Twin", insights[0].DealerName)
	}
}
