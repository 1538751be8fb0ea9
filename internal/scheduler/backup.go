package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linkvault/internal/logger"
	"github.com/MrSnakeDoc/linkvault/internal/vault"
)

// Exporter produces the full snapshot written by each backup.
type Exporter interface {
	Export(ctx context.Context) (vault.Snapshot, error)
}

// Destination stores one encoded snapshot.
type Destination interface {
	Write(ctx context.Context, data []byte) error
	String() string
}

// Backup periodically writes a JSON export to a destination
type Backup struct {
	exporter Exporter
	dest     Destination
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewBackup creates a new backup job
func NewBackup(
	exporter Exporter,
	dest Destination,
	log logger.Logger,
	interval time.Duration,
) *Backup {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Backup{
		exporter: exporter,
		dest:     dest,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic backup process
func (b *Backup) Start(ctx context.Context) error {
	// Run immediately on start
	if err := b.Run(ctx); err != nil {
		b.logger.Warn("initial backup failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(b.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := b.Run(ctx); err != nil {
					b.logger.Error("backup failed",
						logger.Error(err))
				}
			case <-b.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the backup job
func (b *Backup) Stop() {
	close(b.stopCh)
}

// Run exports the vault and writes it once.
func (b *Backup) Run(ctx context.Context) error {
	snap, err := b.exporter.Export(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	if err := b.dest.Write(ctx, data); err != nil {
		return fmt.Errorf("failed to write backup to %s: %w", b.dest, err)
	}

	b.logger.Info("backup completed",
		logger.String("destination", b.dest.String()),
		logger.Int("bookmarks", len(snap.Bookmarks)),
		logger.Int("categories", len(snap.Categories)),
		logger.Int("bytes", len(data)))

	return nil
}
