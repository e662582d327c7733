package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleOff disables store maintenance.
const ScheduleOff = "off"

// RecordCounter reports the number of persisted hash records.
type RecordCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Maintenance periodically checkpoints the mapping store and logs its size.
// It never deletes records.
type Maintenance struct {
	cron     *cron.Cron
	store    *Store
	counter  RecordCounter
	schedule string
	logger   *slog.Logger
}

// NewMaintenance creates a maintenance job running on the given cron
// schedule. A schedule of ScheduleOff or "" yields a job whose Start and
// Stop do nothing.
func NewMaintenance(store *Store, counter RecordCounter, schedule string, logger *slog.Logger) (*Maintenance, error) {
	m := &Maintenance{
		store:    store,
		counter:  counter,
		schedule: strings.TrimSpace(schedule),
		logger:   logger,
	}
	if m.disabled() {
		return m, nil
	}

	m.cron = cron.New()
	if _, err := m.cron.AddFunc(m.schedule, m.run); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", schedule, err)
	}
	return m, nil
}

func (m *Maintenance) disabled() bool {
	return m.schedule == "" || strings.EqualFold(m.schedule, ScheduleOff)
}

// Start begins running the schedule in the background.
func (m *Maintenance) Start() {
	if m.cron == nil {
		m.logger.Info("store maintenance disabled")
		return
	}
	m.cron.Start()
	m.logger.Info("store maintenance started", "schedule", m.schedule)
}

// Stop halts the schedule and waits for a running pass to finish or ctx to
// end.
func (m *Maintenance) Stop(ctx context.Context) {
	if m.cron == nil {
		return
	}
	select {
	case <-m.cron.Stop().Done():
	case <-ctx.Done():
	}
	m.logger.Info("store maintenance stopped")
}

// RunOnce checkpoints the store and logs the record count.
func (m *Maintenance) RunOnce(ctx context.Context) error {
	start := time.Now()
	if err := m.store.Checkpoint(ctx); err != nil {
		return err
	}
	count, err := m.counter.Count(ctx)
	if err != nil {
		return fmt.Errorf("count hash records: %w", err)
	}
	m.logger.Info("store maintenance complete",
		"driver", m.store.Driver,
		"records", count,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (m *Maintenance) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := m.RunOnce(ctx); err != nil {
		m.logger.Warn("store maintenance failed", "error", err)
	}
}
