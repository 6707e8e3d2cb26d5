package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/supplier-service/internal/platform/db"
)

// Schema creates the suppliers table. Every statement is idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS suppliers (
		id       BIGSERIAL PRIMARY KEY,
		name     VARCHAR(63) NOT NULL,
		email    VARCHAR(63),
		address  VARCHAR(63),
		products BIGINT[] NOT NULL DEFAULT '{}',
		CONSTRAINT suppliers_contact_method CHECK (
			NOT ((email IS NULL OR email = '') AND (address IS NULL OR address = ''))
		)
	)`,
	`CREATE INDEX IF NOT EXISTS suppliers_name_idx ON suppliers (name)`,
}

const (
	tableName = "suppliers"

	pgCheckViolation = "23514"
)

var selectColumns = []string{"id", "name", "email", "address", "products"}

// Repository persists suppliers.
type Repository interface {
	Insert(ctx context.Context, s *Supplier) (int64, error)
	Find(ctx context.Context, f Filter) ([]Supplier, error)
	Delete(ctx context.Context, id int64) error
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the row-locking operations used by read-modify-write flows.
type TxRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*Supplier, error)
	Update(ctx context.Context, s *Supplier) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// PGRepository is the PostgreSQL implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
	db   dbtx
}

// NewRepository constructs a repository on top of pool.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool, db: pool}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// WithTx runs fn in a read-committed transaction. Rows read through
// GetForUpdate stay locked until fn returns.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	err := db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &PGRepository{pool: r.pool, db: tx})
	})
	return classify("transaction", err)
}

// Insert stores s and returns the generated id.
func (r *PGRepository) Insert(ctx context.Context, s *Supplier) (int64, error) {
	sql, args, err := insertQuery(s).ToSql()
	if err != nil {
		return 0, persistenceError("build insert", err)
	}
	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, classify("insert", err)
	}
	return id, nil
}

// Find returns every supplier matching f ordered by id.
func (r *PGRepository) Find(ctx context.Context, f Filter) ([]Supplier, error) {
	sql, args, err := selectQuery(f).ToSql()
	if err != nil {
		return nil, persistenceError("build select", err)
	}
	var rows []Supplier
	if err := pgxscan.Select(ctx, r.db, &rows, sql, args...); err != nil {
		return nil, classify("select", err)
	}
	return rows, nil
}

// GetForUpdate loads one supplier and locks its row.
func (r *PGRepository) GetForUpdate(ctx context.Context, id int64) (*Supplier, error) {
	sql, args, err := selectQuery(ByID(id)).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, persistenceError("build select", err)
	}
	var s Supplier
	if err := pgxscan.Get(ctx, r.db, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, notFound(id)
		}
		return nil, classify("select for update", err)
	}
	return &s, nil
}

// Update overwrites the stored row with s.
func (r *PGRepository) Update(ctx context.Context, s *Supplier) error {
	sql, args, err := updateQuery(s).ToSql()
	if err != nil {
		return persistenceError("build update", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return classify("update", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(s.ID)
	}
	return nil
}

// Delete removes the supplier with id.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := builder().Delete(tableName).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return persistenceError("build delete", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return classify("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func selectQuery(f Filter) squirrel.SelectBuilder {
	q := builder().Select(selectColumns...).From(tableName)
	for _, pred := range f.normalized().where() {
		q = q.Where(pred)
	}
	return q.OrderBy("id ASC")
}

func insertQuery(s *Supplier) squirrel.InsertBuilder {
	return builder().
		Insert(tableName).
		Columns("name", "email", "address", "products").
		Values(s.Name, s.Email, s.Address, s.Products.values()).
		Suffix("RETURNING id")
}

func updateQuery(s *Supplier) squirrel.UpdateBuilder {
	return builder().
		Update(tableName).
		SetMap(map[string]any{
			"name":     s.Name,
			"email":    s.Email,
			"address":  s.Address,
			"products": s.Products.values(),
		}).
		Where(squirrel.Eq{"id": s.ID})
}

func notFound(id int64) *Error {
	return newError(CodeNotFound, "supplier %d not found", id)
}

// classify maps driver errors onto supplier errors. Errors that already carry
// a supplier code pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
		return &Error{
			Code:    CodeMissingInfo,
			Message: "at least one contact method (email or address) is required",
			Err:     err,
		}
	}
	return persistenceError(op, fmt.Errorf("%s: %w", tableName, err))
}
