// Package orm is a small chainable wrapper over gorm used by the
// repositories. Like gorm itself, a chain is single-use: start a new one
// from DB or Use for every statement.
package orm

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/nuber-eats/nuber/pkg/cache"
	"github.com/nuber-eats/nuber/pkg/database"
	"gorm.io/gorm"
)

// ErrNotFound is returned by First when no row matches.
var ErrNotFound = gorm.ErrRecordNotFound

// IsNotFound reports whether err means "no such row".
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

type Query struct {
	db *gorm.DB
}

// DB wraps the global connection opened by database.Connect.
func DB() *Query {
	return &Query{db: database.DB}
}

// Use wraps an explicit connection or transaction.
func Use(db *gorm.DB) *Query {
	return &Query{db: db}
}

// Gorm exposes the underlying handle for anything the wrapper does not cover.
func (q *Query) Gorm() *gorm.DB { return q.db }

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Preload(assoc string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(assoc, args...)}
}

func (q *Query) Order(value interface{}) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Offset(n int) *Query {
	return &Query{db: q.db.Offset(n)}
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	return q.db.Save(v).Error
}

// Updates writes the given columns on the model's row.
func (q *Query) Updates(values interface{}) error {
	return q.db.Updates(values).Error
}

// UpdatesAffected is Updates that also reports how many rows matched the
// conditions, for compare-and-set writes.
func (q *Query) UpdatesAffected(values interface{}) (int64, error) {
	res := q.db.Updates(values)
	return res.RowsAffected, res.Error
}

func (q *Query) Delete(v interface{}, conds ...interface{}) error {
	return q.db.Delete(v, conds...).Error
}

func (q *Query) Count() (int64, error) {
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

// Transaction runs fn inside a database transaction. fn's query is bound to
// the transaction; returning an error (or panicking) rolls everything back.
func (q *Query) Transaction(ctx context.Context, fn func(tx *Query) error) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Query{db: tx})
	})
}

// Pagination describes one page of a larger result.
type Pagination struct {
	Page         int   `json:"page"`
	PerPage      int   `json:"per_page"`
	TotalResults int64 `json:"total_results"`
	TotalPages   int   `json:"total_pages"`
}

// Paginate loads page (1-based) into dest. The count ignores ordering and
// limits already on the query.
func (q *Query) Paginate(dest interface{}, page, perPage int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}

	var total int64
	// Initialized copies the statement so the count does not strip the
	// preloads of the page query.
	counter := q.db.Session(&gorm.Session{Initialized: true})
	counter.Statement.Preloads = nil
	if err := counter.Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	err := q.db.Offset((page - 1) * perPage).Limit(perPage).Find(dest).Error
	if err != nil {
		return Pagination{}, err
	}

	return Pagination{
		Page:         page,
		PerPage:      perPage,
		TotalResults: total,
		TotalPages:   int(math.Ceil(float64(total) / float64(perPage))),
	}, nil
}

// Cache loads the query into dest through the Redis cache.
func (q *Query) Cache(ctx context.Context, key string, ttl time.Duration, dest interface{}) error {
	return cache.Remember(ctx, key, ttl, dest, func() (interface{}, error) {
		if err := q.db.WithContext(ctx).Find(dest).Error; err != nil {
			return nil, err
		}
		return dest, nil
	})
}
