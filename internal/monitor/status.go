package monitor

import (
	"sync"
	"time"

	"github.com/agrisense/agri-market-data/internal/market"
)

// DatasetStatus is the outcome of the most recent audit of one commodity
// table. Only audit metadata is kept; table contents are never cached.
type DatasetStatus struct {
	Commodity market.Commodity `json:"commodity"`
	Rows      int              `json:"rows"`
	Error     string           `json:"error,omitempty"`
	CheckedAt time.Time        `json:"checkedAt"`
}

// StatusStore is a concurrency-safe record of the last audit per commodity.
type StatusStore struct {
	mu   sync.RWMutex
	data map[market.Commodity]DatasetStatus
}

func NewStatusStore() *StatusStore {
	return &StatusStore{
		data: make(map[market.Commodity]DatasetStatus),
	}
}

// Record overwrites the stored status for a commodity.
func (s *StatusStore) Record(status DatasetStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[status.Commodity] = status
}

// Snapshot returns the last recorded status per commodity, ordered by the
// allow-list. Commodities never audited are skipped.
func (s *StatusStore) Snapshot() []DatasetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]DatasetStatus, 0, len(s.data))
	for _, c := range market.Commodities {
		if status, ok := s.data[c]; ok {
			out = append(out, status)
		}
	}
	return out
}
