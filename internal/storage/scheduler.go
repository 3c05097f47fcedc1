package storage

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// SchedulerConfig holds configuration for scheduled backups.
type SchedulerConfig struct {
	// Interval between backups. Must be positive.
	Interval time.Duration

	// Backup options applied to every run. Name is ignored.
	Backup BackupOptions

	// Keep prunes all but the newest Keep backups after each run (0 = keep all).
	Keep int

	// StartImmediately runs a backup as soon as the scheduler starts.
	StartImmediately bool

	// OnBackupComplete is called after each attempt.
	OnBackupComplete func(path string, err error)
}

// SchedulerStatus is a snapshot of the scheduler's counters.
type SchedulerStatus struct {
	Running      bool          `json:"running"`
	Interval     time.Duration `json:"interval"`
	LastBackup   time.Time     `json:"lastBackup"`
	LastPath     string        `json:"lastPath,omitempty"`
	LastError    string        `json:"lastError,omitempty"`
	BackupCount  int           `json:"backupCount"`
	FailureCount int           `json:"failureCount"`
}

// BackupScheduler takes periodic backups while the server runs.
type BackupScheduler struct {
	manager *BackupManager
	config  SchedulerConfig

	mu     sync.RWMutex
	status SchedulerStatus
}

// NewBackupScheduler creates a scheduler for manager.
func NewBackupScheduler(manager *BackupManager, config SchedulerConfig) (*BackupScheduler, error) {
	if manager == nil {
		return nil, fmt.Errorf("backup manager cannot be nil")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("backup interval must be positive: %v", config.Interval)
	}
	config.Backup.Name = ""
	return &BackupScheduler{
		manager: manager,
		config:  config,
		status:  SchedulerStatus{Interval: config.Interval},
	}, nil
}

// Run takes backups every interval until ctx is cancelled.
func (s *BackupScheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.status.Running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.status.Running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.status.Running = false
		s.mu.Unlock()
	}()

	if s.config.StartImmediately {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce takes one backup, prunes old ones and records the outcome.
func (s *BackupScheduler) RunOnce(ctx context.Context) {
	path, err := s.manager.Backup(ctx, s.config.Backup)
	if err == nil && s.config.Keep > 0 {
		if removed, pruneErr := s.manager.Prune(s.config.Backup.Dir, s.config.Keep); pruneErr != nil {
			log.Printf("Warning: failed to prune backups: %v", pruneErr)
		} else if removed > 0 {
			log.Printf("Pruned %d old backup(s)", removed)
		}
	}

	s.mu.Lock()
	s.status.LastBackup = time.Now()
	if err != nil {
		s.status.FailureCount++
		s.status.LastError = err.Error()
	} else {
		s.status.BackupCount++
		s.status.LastPath = path
		s.status.LastError = ""
	}
	s.mu.Unlock()

	if s.config.OnBackupComplete != nil {
		s.config.OnBackupComplete(path, err)
	}
}

// Status returns a copy of the current counters.
func (s *BackupScheduler) Status() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// String renders the status for the command line.
func (st SchedulerStatus) String() string {
	if !st.Running {
		return "Scheduler: stopped"
	}
	out := fmt.Sprintf("Scheduler: running every %s, %d backup(s), %d failure(s)", st.Interval, st.BackupCount, st.FailureCount)
	if !st.LastBackup.IsZero() {
		out += fmt.Sprintf(", last at %s", st.LastBackup.Format(time.RFC3339))
	}
	if st.LastError != "" {
		out += fmt.Sprintf(" (last error: %s)", st.LastError)
	}
	return out
}
