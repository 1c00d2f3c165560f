// Package migration applies and rolls back schema migrations in batches,
// recording what ran in the schema_migrations table.
//
//	func init() {
//	    migration.Register("20240101000000_create_users_table", migration.Func(up, down))
//	}
package migration

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"gorm.io/gorm"

	"github.com/nuber-eats/nuber/pkg/logger"
)

// Migration is one reversible schema step.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type funcMigration struct{ up, down func(*gorm.DB) error }

func (f funcMigration) Up(db *gorm.DB) error   { return f.up(db) }
func (f funcMigration) Down(db *gorm.DB) error { return f.down(db) }

// Func adapts a pair of functions to Migration.
func Func(up, down func(*gorm.DB) error) Migration { return funcMigration{up, down} }

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "schema_migrations" }

type named struct {
	name string
	m    Migration
}

var (
	regMu    sync.Mutex
	registry []named
)

// Register adds m to the package registry. Names are timestamp-prefixed and
// run in name order.
func Register(name string, m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, named{name: name, m: m})
}

// Runner executes migrations against one database.
type Runner struct {
	db         *gorm.DB
	out        io.Writer
	migrations []named
}

// New returns a runner over every registered migration, printing progress to out.
func New(db *gorm.DB, out io.Writer) *Runner {
	regMu.Lock()
	ms := make([]named, len(registry))
	copy(ms, registry)
	regMu.Unlock()

	sort.SliceStable(ms, func(i, j int) bool { return ms[i].name < ms[j].name })
	return &Runner{db: db, out: out, migrations: ms}
}

func (r *Runner) ensureTable() error {
	if err := r.db.AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: load history: %w", err)
	}
	out := make(map[string]record, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

func (r *Runner) lastBatch() (int, error) {
	var batch struct{ Max int }
	err := r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&batch).Error
	return batch.Max, err
}

// Run applies every pending migration as one new batch. Each migration and
// its history row commit together.
func (r *Runner) Run() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	done, err := r.ran()
	if err != nil {
		return 0, err
	}
	last, err := r.lastBatch()
	if err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	batch := last + 1

	applied := 0
	for _, n := range r.migrations {
		if _, ok := done[n.name]; ok {
			continue
		}
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := n.m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&record{Name: n.name, Batch: batch}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration: %s up: %w", n.name, err)
		}
		applied++
		logger.Info("migration: applied", "name", n.name, "batch", batch)
		fmt.Fprintf(r.out, "Migrated: %s\n", n.name)
	}

	if applied == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
	}
	return applied, nil
}

// Rollback reverses the most recent batch, newest first.
func (r *Runner) Rollback() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, err
	}
	last, err := r.lastBatch()
	if err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	if last == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	var rows []record
	if err := r.db.Where("batch = ?", last).Order("id DESC").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("migration: load batch %d: %w", last, err)
	}

	known := make(map[string]Migration, len(r.migrations))
	for _, n := range r.migrations {
		known[n.name] = n.m
	}

	reverted := 0
	for _, row := range rows {
		m, ok := known[row.Name]
		if !ok {
			return reverted, fmt.Errorf("migration: cannot roll back %s: not registered", row.Name)
		}
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&record{}, row.ID).Error
		})
		if err != nil {
			return reverted, fmt.Errorf("migration: %s down: %w", row.Name, err)
		}
		reverted++
		logger.Info("migration: rolled back", "name", row.Name)
		fmt.Fprintf(r.out, "Rolled back: %s\n", row.Name)
	}
	return reverted, nil
}

// Status prints every migration with its batch, or Pending.
func (r *Runner) Status() error {
	if err := r.ensureTable(); err != nil {
		return err
	}
	done, err := r.ran()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MIGRATION\tSTATUS\tBATCH")
	for _, n := range r.migrations {
		if row, ok := done[n.name]; ok {
			fmt.Fprintf(tw, "%s\tRan\t%d\n", n.name, row.Batch)
		} else {
			fmt.Fprintf(tw, "%s\tPending\t-\n", n.name)
		}
	}
	return tw.Flush()
}
