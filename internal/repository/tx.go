package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// conn returns the transaction carried by ctx, or db bound to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func inTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// Transactor runs a unit of work in one database transaction. Repositories called
// with the ctx handed to fn join it; a nested call becomes a savepoint.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise. fn's error
// is returned unchanged.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return conn(ctx, t.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// insertIsolated runs the insert in its own savepoint when inside a transaction, so a
// unique violation does not abort the surrounding transaction (PostgreSQL).
func insertIsolated(ctx context.Context, db *gorm.DB, insert func(tx *gorm.DB) error) error {
	return conn(ctx, db).Transaction(insert)
}

// latestCommitted makes a read inside a MySQL transaction see rows committed after
// the transaction's snapshot was taken. Other drivers already read committed data.
func latestCommitted(ctx context.Context, q *gorm.DB) *gorm.DB {
	if inTransaction(ctx) && q.Dialector.Name() == "mysql" {
		return q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	return q
}
