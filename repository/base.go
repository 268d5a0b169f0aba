package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type txContextKey string

// TxContextKey is the context key under which an in-flight transaction is
// carried so nested repository calls join the same transaction.
const TxContextKey txContextKey = "tx"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDatabaseError  = errors.New("database error")
)

// BaseRepository provides common CRUD operations shared by all repositories.
// F is the model's filter struct; applyFilter maps its pointer fields onto
// WHERE clauses.
type BaseRepository[T any, F any] struct {
	db          *gorm.DB
	applyFilter func(q *gorm.DB, filter F) *gorm.DB
}

func NewBaseRepository[T any, F any](db *gorm.DB, applyFilter func(q *gorm.DB, filter F) *gorm.DB) *BaseRepository[T, F] {
	return &BaseRepository[T, F]{db: db, applyFilter: applyFilter}
}

// getDB returns the transaction from context when one is present, otherwise
// the base connection.
func (r *BaseRepository[T, F]) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *BaseRepository[T, F]) Save(ctx context.Context, entity *T) error {
	if err := r.getDB(ctx).Create(entity).Error; err != nil {
		return err
	}
	return nil
}

func (r *BaseRepository[T, F]) Update(ctx context.Context, entity *T) error {
	if err := r.getDB(ctx).Save(entity).Error; err != nil {
		return err
	}
	return nil
}

func (r *BaseRepository[T, F]) ByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := r.getDB(ctx).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// ByFilter returns entities matching filter. orderBy may be empty; limit <= 0
// means no limit.
func (r *BaseRepository[T, F]) ByFilter(ctx context.Context, filter F, orderBy string, limit int, offset int) ([]*T, error) {
	q := r.getDB(ctx).Model(new(T))
	q = r.applyFilter(q, filter)
	if orderBy != "" {
		q = q.Order(orderBy)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var entities []*T
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *BaseRepository[T, F]) Count(ctx context.Context, filter F) (int64, error) {
	q := r.getDB(ctx).Model(new(T))
	q = r.applyFilter(q, filter)
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *BaseRepository[T, F]) Exists(ctx context.Context, filter F) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// WithTransaction runs fn inside a database transaction. The transaction is
// injected into the context so repository calls made by fn participate in it.
// A nil db runs fn directly, outside any transaction.
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	if db == nil {
		return fn(ctx)
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, TxContextKey, tx)
		return fn(txCtx)
	})
}
