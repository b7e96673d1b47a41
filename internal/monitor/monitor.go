// Package monitor periodically audits the commodity tables so /health can
// report dataset availability without touching the request path.
package monitor

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/agrisense/agri-market-data/internal/market"
)

// Monitor runs the dataset audit on a fixed interval.
type Monitor struct {
	scheduler *gocron.Scheduler
	store     *StatusStore
	dataDir   string
	interval  time.Duration
}

// New creates a Monitor auditing the tables under dataDir.
func New(dataDir string, interval time.Duration, store *StatusStore) *Monitor {
	s := gocron.NewScheduler(time.UTC)
	return &Monitor{
		scheduler: s,
		store:     store,
		dataDir:   dataDir,
		interval:  interval,
	}
}

// Start runs one audit immediately, then schedules the periodic job.
func (m *Monitor) Start() error {
	m.audit()

	minutes := int(m.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := m.scheduler.Every(minutes).Minutes().Do(m.audit)
	if err != nil {
		return err
	}

	m.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

// audit loads every commodity table and records row counts or failures. The
// rows themselves are discarded; requests always re-read from disk.
func (m *Monitor) audit() {
	for _, c := range market.Commodities {
		status := DatasetStatus{
			Commodity: c,
			CheckedAt: time.Now().UTC(),
		}

		lines, err := market.LoadTable(m.dataDir, c)
		if err != nil {
			status.Error = err.Error()
			log.Printf("monitor: dataset audit failed for %s: %v", c, err)
		} else {
			status.Rows = len(lines) - 1 // exclude header
		}

		m.store.Record(status)
	}
}
