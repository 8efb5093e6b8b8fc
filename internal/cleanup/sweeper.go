// Package cleanup removes aged working files (uploads, temp artifacts,
// rendered clips) on a schedule and at shutdown.
package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"clipforge/log"
)

// Target is one directory the sweeper maintains.
type Target struct {
	Dir     string
	MaxAge  time.Duration
	Pattern string // optional glob over base names, e.g. "*.gif"
}

// Sweeper periodically prunes its targets. Zero interval falls back to
// 30 minutes.
type Sweeper struct {
	targets  []Target
	interval time.Duration
}

func NewSweeper(targets []Target, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Sweeper{targets: targets, interval: interval}
}

// Sweep removes regular files in the target dir whose modification time
// is strictly older than now minus MaxAge, returning how many were
// removed. A missing directory is not an error. Subdirectories are left
// alone. Per-file failures are logged and skipped so one bad file never
// aborts the pass.
func Sweep(target Target) (int, error) {
	entries, err := os.ReadDir(target.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-target.MaxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if target.Pattern != "" {
			matched, err := filepath.Match(target.Pattern, entry.Name())
			if err != nil || !matched {
				continue
			}
		}

		info, err := entry.Info()
		if err != nil {
			log.GetLogger().Warn("sweep: cannot stat file",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(target.Dir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.GetLogger().Warn("sweep: cannot remove file",
				zap.String("file", path), zap.Error(err))
			continue
		}
		removed++
	}

	return removed, nil
}

// Run sweeps all targets on the configured interval until the context
// is cancelled. One pass runs immediately on start.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweepAll()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepAll()
		}
	}
}

func (s *Sweeper) sweepAll() {
	for _, target := range s.targets {
		removed, err := Sweep(target)
		if err != nil {
			log.GetLogger().Error("sweep pass failed",
				zap.String("dir", target.Dir), zap.Error(err))
			continue
		}
		if removed > 0 {
			log.GetLogger().Info("sweep pass removed files",
				zap.String("dir", target.Dir), zap.Int("removed", removed))
		}
	}
}

// FinalSweep clears every target regardless of age. Called on shutdown.
func (s *Sweeper) FinalSweep() {
	for _, target := range s.targets {
		target.MaxAge = 0
		if _, err := Sweep(target); err != nil {
			log.GetLogger().Error("final sweep failed",
				zap.String("dir", target.Dir), zap.Error(err))
		}
	}
}

// EnsureDirs creates the target directories. Safe to call repeatedly.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
