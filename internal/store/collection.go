package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Model is implemented by pointers to persisted records.
type Model interface {
	GetID() uuid.UUID
	SetID(uuid.UUID)
	Touch(time.Time)
	SetHidden(bool)
}

// Collection stores one record type. Reads and inserts go through a
// go-repository-bun repository; field updates run as a locked
// read-modify-write inside a transaction so array set operations stay atomic
// per record.
type Collection[T Model] struct {
	db        *DB
	repo      repository.Repository[T]
	newRecord func() T
	now       func() time.Time
}

// NewCollection builds a collection over db. newRecord returns an empty
// record of the collection's table.
func NewCollection[T Model](db *DB, newRecord func() T) *Collection[T] {
	handlers := repository.ModelHandlers[T]{
		NewRecord: newRecord,
		GetID: func(record T) uuid.UUID {
			return record.GetID()
		},
		SetID: func(record T, id uuid.UUID) {
			record.SetID(id)
		},
		GetIdentifier: func() string {
			return "id"
		},
	}
	return &Collection[T]{
		db:        db,
		repo:      repository.NewRepository[T](db.bun, handlers),
		newRecord: newRecord,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Find returns the records matching criteria and the total count ignoring
// paging.
func (c *Collection[T]) Find(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	ctx, cancel := c.db.queryContext(ctx)
	defer cancel()

	records, total, err := c.repo.List(ctx, criteria...)
	if err != nil {
		return nil, 0, translate(err)
	}
	if records == nil {
		records = []T{}
	}
	return records, total, nil
}

// FindOne returns the first record matching criteria. found is false when
// nothing matches.
func (c *Collection[T]) FindOne(ctx context.Context, criteria ...repository.SelectCriteria) (T, bool, error) {
	var zero T
	records, _, err := c.Find(ctx, append(criteria, Limit(1))...)
	if err != nil {
		return zero, false, err
	}
	if len(records) == 0 {
		return zero, false, nil
	}
	return records[0], true, nil
}

// Create inserts record. A unique violation is reported as
// domain.ErrDuplicate.
func (c *Collection[T]) Create(ctx context.Context, record T) (T, error) {
	ctx, cancel := c.db.queryContext(ctx)
	defer cancel()

	if record.GetID() == uuid.Nil {
		record.SetID(uuid.New())
	}
	created, err := c.repo.Create(ctx, record)
	if err != nil {
		var zero T
		return zero, translate(err)
	}
	return created, nil
}

// UpdateOne locks the visible record with id, applies mutate and writes every
// column back. found is false when no visible record has that id. An error
// from mutate aborts the transaction and is returned unchanged.
func (c *Collection[T]) UpdateOne(ctx context.Context, id uuid.UUID, mutate func(T) error) (T, bool, error) {
	var zero T
	ctx, cancel := c.db.queryContext(ctx)
	defer cancel()

	record := c.newRecord()
	found := true
	errMutate := errors.New("mutate")
	var mutateErr error

	err := c.db.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(record).Where("id = ?", id).Where("hidden = ?", false)
		if c.db.driver == DriverPostgres {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				found = false
				return nil
			}
			return err
		}

		if err := mutate(record); err != nil {
			mutateErr = err
			return errMutate
		}
		record.Touch(c.now())

		if _, err := tx.NewUpdate().Model(record).WherePK().Exec(ctx); err != nil {
			return err
		}
		return nil
	})
	switch {
	case mutateErr != nil:
		return zero, true, mutateErr
	case err != nil:
		return zero, found, translate(err)
	case !found:
		return zero, false, nil
	}
	return record, true, nil
}

// AddToSet unions values into the array field selected by field.
func (c *Collection[T]) AddToSet(ctx context.Context, id uuid.UUID, field func(T) *[]string, values ...string) (T, bool, error) {
	return c.UpdateOne(ctx, id, func(record T) error {
		f := field(record)
		*f = Union(*f, values...)
		return nil
	})
}

// Pull removes values from the array field selected by field.
func (c *Collection[T]) Pull(ctx context.Context, id uuid.UUID, field func(T) *[]string, values ...string) (T, bool, error) {
	return c.UpdateOne(ctx, id, func(record T) error {
		f := field(record)
		*f = Difference(*f, values...)
		return nil
	})
}

// Hide soft-deletes the visible record with id.
func (c *Collection[T]) Hide(ctx context.Context, id uuid.UUID) (T, bool, error) {
	return c.UpdateOne(ctx, id, func(record T) error {
		record.SetHidden(true)
		return nil
	})
}
