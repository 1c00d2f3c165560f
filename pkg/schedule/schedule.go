// Package schedule runs recurring background tasks.
//
//	s := schedule.New()
//	s.Interval(2 * time.Second).Name("promotions:expire").WithoutOverlapping().Run(sweeper.Run)
//	s.Cron("0 3 * * *").Name("reports:daily").Run(report)
//	s.Start(ctx) // blocks until ctx is cancelled and in-flight runs finish
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nuber-eats/nuber/pkg/logger"
)

// Task is one run of a scheduled job. ctx is cancelled at shutdown.
type Task func(ctx context.Context)

type entry struct {
	id        string
	interval  time.Duration
	cronExpr  string
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler holds registered entries and dispatches them from Start.
type Scheduler struct {
	tick time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
}

// New returns a scheduler that checks for due entries every 500ms.
func New() *Scheduler {
	return &Scheduler{tick: 500 * time.Millisecond, now: time.Now}
}

// Schedule configures one entry before Run registers it.
type Schedule struct {
	s *Scheduler
	e *entry
}

// Interval runs the task every d, starting on the first tick.
func (s *Scheduler) Interval(d time.Duration) *Schedule {
	return &Schedule{s: s, e: &entry{interval: d}}
}

// Cron runs the task once in every minute matching a 5-field expression
// (minute hour day-of-month month day-of-week).
func (s *Scheduler) Cron(expr string) *Schedule {
	return &Schedule{s: s, e: &entry{cronExpr: expr}}
}

// WithoutOverlapping skips a due run while the previous one is still going.
func (sc *Schedule) WithoutOverlapping() *Schedule {
	sc.e.noOverlap = true
	return sc
}

func (sc *Schedule) Name(id string) *Schedule {
	sc.e.id = id
	return sc
}

// Run registers the entry.
func (sc *Schedule) Run(fn Task) {
	sc.e.task = fn
	sc.s.mu.Lock()
	defer sc.s.mu.Unlock()
	if sc.e.id == "" {
		sc.e.id = fmt.Sprintf("task-%d", len(sc.s.entries)+1)
	}
	sc.s.entries = append(sc.s.entries, sc.e)
}

// Start dispatches due entries until ctx is cancelled, then waits for
// running tasks to return.
func (s *Scheduler) Start(ctx context.Context) {
	logger.Info("schedule: scheduler started", "entries", len(s.List()))
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.RunDue(ctx)
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			logger.Info("schedule: scheduler stopped")
			return
		case <-ticker.C:
			s.RunDue(ctx)
		}
	}
}

// RunDue dispatches every entry that is due now and returns without waiting
// for them.
func (s *Scheduler) RunDue(ctx context.Context) {
	now := s.now()
	s.mu.Lock()
	current := make([]*entry, len(s.entries))
	copy(current, s.entries)
	s.mu.Unlock()

	for _, e := range current {
		if e.due(now) {
			s.dispatch(ctx, e, now)
		}
	}
}

// Wait blocks until every dispatched run has returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (e *entry) due(now time.Time) bool {
	e.mu.Lock()
	last := e.lastRun
	e.mu.Unlock()

	if e.cronExpr != "" {
		return matchCron(e.cronExpr, now) && now.Truncate(time.Minute).After(last)
	}
	return last.IsZero() || now.Sub(last) >= e.interval
}

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping run", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()
		e.task(ctx)
	}()
}

func matchCron(expr string, t time.Time) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	values := []int{t.Minute(), t.Hour(), t.Day(), int(t.Month()), int(t.Weekday())}
	for i, f := range fields {
		if !matchField(f, values[i]) {
			return false
		}
	}
	return true
}

// matchField supports "*", "*/step", "a-b", "n" and comma lists of those.
func matchField(field string, val int) bool {
	for _, part := range strings.Split(field, ",") {
		switch {
		case part == "*":
			return true
		case strings.HasPrefix(part, "*/"):
			step, err := strconv.Atoi(part[2:])
			if err == nil && step > 0 && val%step == 0 {
				return true
			}
		case strings.Contains(part, "-"):
			lo, hi, _ := strings.Cut(part, "-")
			a, err1 := strconv.Atoi(lo)
			b, err2 := strconv.Atoi(hi)
			if err1 == nil && err2 == nil && val >= a && val <= b {
				return true
			}
		default:
			if n, err := strconv.Atoi(part); err == nil && n == val {
				return true
			}
		}
	}
	return false
}

// List describes the registered entries, one "id  [frequency]" per line.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		freq := e.cronExpr
		if freq == "" {
			freq = e.interval.String()
		}
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, freq))
	}
	return out
}
