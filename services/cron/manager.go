package cron

import (
	"time"

	"github.com/doctorvirtual/api/services/assistant"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Manager schedules the background maintenance jobs.
type Manager struct {
	cron      *cron.Cron
	client    *assistant.Client
	retention time.Duration
	log       *zap.Logger
}

// NewManager creates a new cron manager
func NewManager(client *assistant.Client, retention time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		cron:      cron.New(cron.WithSeconds()),
		client:    client,
		retention: retention,
		log:       log,
	}
}

// Start registers and starts all jobs.
func (m *Manager) Start() error {
	// 03:00 daily: reap remote files past retention
	if _, err := m.cron.AddFunc("0 0 3 * * *", func() {
		m.log.Info("cron job starting", zap.String("job", "file_retention_sweep"))
		m.SweepExpiredFiles()
	}); err != nil {
		return err
	}

	m.cron.Start()
	m.log.Info("cron jobs started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (m *Manager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("cron jobs stopped")
}
