package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("not found")

// Store is the gorm-backed data access layer. A Store obtained inside
// Transaction is bound to that transaction.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for queries not covered here.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn inside a database transaction. Returning an error
// from fn rolls back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// ListOptions narrows a list query. Filter keys and SearchColumns are
// column names and must never come straight from user input.
type ListOptions struct {
	Limit   int
	Offset  int
	Filters map[string]any
	Search  string
	Preload []string
	Order   string
}

// Repo is a generic CRUD repository over one model type.
type Repo[T any] struct {
	db            *gorm.DB
	searchColumns []string
	order         string
}

func NewRepo[T any](s *Store) *Repo[T] {
	return &Repo[T]{db: s.db, order: "id"}
}

// WithSearch sets the columns a ListOptions.Search term is matched against.
func (r *Repo[T]) WithSearch(columns ...string) *Repo[T] {
	r.searchColumns = columns
	return r
}

// WithOrder sets the default ordering, e.g. "created_at DESC".
func (r *Repo[T]) WithOrder(order string) *Repo[T] {
	r.order = order
	return r
}

func (r *Repo[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	q := r.db.WithContext(ctx).Model(new(T))

	for column, value := range opts.Filters {
		q = q.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}

	if term := strings.TrimSpace(opts.Search); term != "" && len(r.searchColumns) > 0 {
		pattern := "%" + strings.ToLower(term) + "%"
		var exprs []clause.Expression
		for _, column := range r.searchColumns {
			exprs = append(exprs, clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{clause.Column{Name: column}, pattern}})
		}
		q = q.Where(clause.Or(exprs...))
	}

	for _, rel := range opts.Preload {
		q = q.Preload(rel)
	}

	order := r.order
	if opts.Order != "" {
		order = opts.Order
	}
	q = q.Order(order)

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	items := []T{}
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list %T: %w", *new(T), err)
	}
	return items, nil
}

func (r *Repo[T]) Get(ctx context.Context, id int64, preload ...string) (*T, error) {
	q := r.db.WithContext(ctx)
	for _, rel := range preload {
		q = q.Preload(rel)
	}

	var item T
	if err := q.First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *Repo[T]) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts item without touching its associations.
func (r *Repo[T]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// Save writes every column of an already loaded item.
func (r *Repo[T]) Save(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *Repo[T]) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
