// Package janitor removes temporary export workbooks left behind by
// interrupted downloads or crashed writers.
package janitor

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Reporter receives the number of files removed by each sweep.
type Reporter interface {
	ObserveSweep(removed int)
}

// Janitor sweeps dir for files ending in suffix that are older than maxAge.
type Janitor struct {
	dir      string
	suffix   string
	maxAge   time.Duration
	schedule string
	reporter Reporter
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func New(dir, suffix, schedule string, maxAge time.Duration, reporter Reporter) *Janitor {
	return &Janitor{
		dir:      dir,
		suffix:   suffix,
		maxAge:   maxAge,
		schedule: schedule,
		reporter: reporter,
		now:      time.Now,
		cron:     cron.New(),
	}
}

// Sweep deletes stale temp files once and returns how many were removed.
// A missing directory is not an error: nothing has been exported yet.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", j.dir, err)
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), j.suffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Renamed or removed by its writer since ReadDir.
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.dir, e.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: janitor: remove %s: %v", path, err)
			continue
		}
		removed++
	}

	if j.reporter != nil {
		j.reporter.ObserveSweep(removed)
	}
	return removed, nil
}

// Start schedules Sweep on the configured cron expression. An empty
// schedule leaves the janitor idle. The janitor stops when ctx is done.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.schedule == "" {
		log.Printf("Janitor: no sweep schedule configured, disabled")
		return nil
	}
	if _, err := cron.ParseStandard(j.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", j.schedule, err)
	}
	if _, err := j.cron.AddFunc(j.schedule, func() { j.run(ctx) }); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	j.cron.Start()
	j.running = true
	log.Printf("Janitor: sweeping %s every %q (max age %s)", j.dir, j.schedule, j.maxAge)

	go func() {
		<-ctx.Done()
		j.Stop()
	}()
	return nil
}

func (j *Janitor) run(ctx context.Context) {
	n, err := j.Sweep(ctx)
	if err != nil {
		log.Printf("Warning: janitor sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Janitor: removed %d stale export file(s)", n)
	}
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}
	<-j.cron.Stop().Done()
	j.running = false
	log.Printf("Janitor: stopped")
}

func (j *Janitor) Running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
