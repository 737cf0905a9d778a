package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/dealerscope/dealerscope/internal/model"
)

// TestDataFactory generates deterministic-but-varied vehicle records
// for tests.
type TestDataFactory struct {
	rand *rand.Rand
	seq  int
}

// NewTestDataFactory creates a factory with a seeded random generator.
func NewTestDataFactory(seed int64) *TestDataFactory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TestDataFactory{rand: rand.New(rand.NewSource(seed))}
}

// Vehicle builds a complete used-vehicle record at the given dealer and
// price. VINs are sequential, attributes are sensible defaults tests
// can override.
func (f *TestDataFactory) Vehicle(dealer string, price float64) model.VehicleRecord {
	f.seq++
	return model.VehicleRecord{
		VIN:        fmt.Sprintf("TESTVIN%011d", f.seq),
		DealerName: dealer,
		Make:       "Toyota",
		Model:      "Camry",
		Trim:       "SE",
		Year:       2021,
		Mileage:    30000,
		Condition:  model.ConditionUsed,
		Price:      price,
	}
}

// Inventory builds one vehicle per price, all at the same dealer.
func (f *TestDataFactory) Inventory(dealer string, prices ...float64) []model.VehicleRecord {
	vehicles := make([]model.VehicleRecord, 0, len(prices))
	for _, p := range prices {
		vehicles = append(vehicles, f.Vehicle(dealer, p))
	}
	return vehicles
}

// RandomPrice returns a price between $5,000 and $80,000.
func (f *TestDataFactory) RandomPrice() float64 {
	return float64(f.rand.Intn(75000) + 5000)
}
