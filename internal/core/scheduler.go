package core

// scheduler.go runs background maintenance for the service. Currently it
// prunes spawn history entries older than the retention window.

import (
	"context"
	"log/slog"
	"time"
)

// PruneConfig controls the history pruner.
type PruneConfig struct {
	MaxAge        time.Duration // Entries older than this are dropped (default: 24h)
	CheckInterval time.Duration // How often to run (default: 1h)
}

func (c PruneConfig) withDefaults() PruneConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = 24 * time.Hour
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Hour
	}
	return c
}

// StartHistoryPruner prunes the history immediately and then every
// CheckInterval until ctx is cancelled. It blocks; run it in a goroutine.
func (s *Service) StartHistoryPruner(ctx context.Context, cfg PruneConfig) {
	cfg = cfg.withDefaults()
	s.logger.Info("history pruner started",
		"max_age", cfg.MaxAge.String(),
		"interval", cfg.CheckInterval.String(),
	)

	s.pruneHistory(cfg.MaxAge)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("history pruner stopped")
			return
		case <-ticker.C:
			s.pruneHistory(cfg.MaxAge)
		}
	}
}

func (s *Service) pruneHistory(maxAge time.Duration) {
	removed := s.history.Prune(time.Now().Add(-maxAge))
	if removed > 0 {
		s.logger.Debug("pruned spawn history", slog.Int("removed", removed))
	}
}
