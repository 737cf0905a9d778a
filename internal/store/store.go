package store

import (
	"sync"
	"time"

	"github.com/dealerscope/dealerscope/internal/model"
)

// Store is the long-lived working set of vehicles seen across analysis
// runs, keyed by (dealership, VIN). It is created once at process
// start, updated per run, and never implicitly reset. Updates are
// serialized by an internal mutex so independent dealership analyses
// can run concurrently.
type Store struct {
	mu      sync.RWMutex
	records map[string]*model.VehicleRecord
}

// New creates an empty vehicle store.
func New() *Store {
	return &Store{
		records: make(map[string]*model.VehicleRecord),
	}
}

func key(dealer, vin string) string {
	return dealer + "|" + vin
}

// Upsert records the latest sighting of a vehicle. A new price is
// appended to the history only when it differs from the most recent
// observation; attribute fields are overwritten in place. Stale
// entries persist until overwritten.
func (s *Store) Upsert(v model.VehicleRecord, seenAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(v.DealerName, v.VIN)
	existing, ok := s.records[k]
	if !ok {
		rec := v
		rec.LastUpdated = seenAt
		if rec.HasPrice() {
			rec.History = []model.PriceObservation{{Price: rec.Price, Timestamp: seenAt}}
		}
		s.records[k] = &rec
		return
	}

	history := existing.History
	if v.HasPrice() {
		if len(history) == 0 || history[len(history)-1].Price != v.Price {
			history = append(history, model.PriceObservation{Price: v.Price, Timestamp: seenAt})
		}
	}

	updated := v
	updated.LastUpdated = seenAt
	updated.History = history
	s.records[k] = &updated
}

// Get returns a copy of the stored record for a (dealership, VIN) pair.
func (s *Store) Get(dealer, vin string) (model.VehicleRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key(dealer, vin)]
	if !ok {
		return model.VehicleRecord{}, false
	}

	out := *rec
	out.History = append([]model.PriceObservation(nil), rec.History...)
	return out, true
}

// History returns the price history for a (dealership, VIN) pair.
func (s *Store) History(dealer, vin string) []model.PriceObservation {
	rec, ok := s.Get(dealer, vin)
	if !ok {
		return nil
	}
	return rec.History
}

// Len reports the number of tracked vehicles across all dealerships.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
