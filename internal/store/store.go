package store // import "github.com/shelfdesk/shelfdesk/internal/store"

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shelfdesk/shelfdesk/internal/log"
)

var dialect = goqu.Dialect("sqlite3")

type Store struct {
	db  *sqlx.DB
	ext sqlx.ExtContext // ext is db, or tx inside Transact
	tx  *sqlx.Tx
	// afterCommit runs once the outermost transaction has committed.
	afterCommit []func()

	BorrowerTypeCache *sync.Map // map[string]*model.BorrowerType
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:                db,
		ext:               db,
		BorrowerTypeCache: &sync.Map{},
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStorageUnavailableError("ping", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// InTx reports whether s is bound to a transaction.
func (s *Store) InTx() bool {
	return s.tx != nil
}

// Transact runs fn against a transaction scoped Store. Everything fn writes is
// committed when it returns nil and rolled back otherwise. Nested calls join
// the outer transaction.
func (s *Store) Transact(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return wrapWrite("begin transaction", err)
	}
	txStore := &Store{
		db:                s.db,
		ext:               tx,
		tx:                tx,
		BorrowerTypeCache: s.BorrowerTypeCache,
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error(fmt.Sprintf("rollback failed: %v", rbErr))
			return NewStorageUnavailableError("rollback", errors.Wrapf(rbErr, "after %v", err))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapWrite("commit", err)
	}
	for _, fn := range txStore.afterCommit {
		fn()
	}
	return nil
}

// onCommit defers fn until the surrounding transaction commits. Outside a
// transaction fn runs right away.
func (s *Store) onCommit(fn func()) {
	if s.tx == nil {
		fn()
		return
	}
	s.afterCommit = append(s.afterCommit, fn)
}

// write runs one write statement group as its own transaction, or as part of
// the surrounding one.
func (s *Store) write(ctx context.Context, op string, fn func(ext sqlx.ExtContext) error) error {
	return s.Transact(ctx, func(tx *Store) error {
		if err := fn(tx.ext); err != nil {
			return wrapWrite(op, err)
		}
		return nil
	})
}

func (s *Store) get(ctx context.Context, dest any, query string, args ...any) error {
	traceQuery(query, args)
	return sqlx.GetContext(ctx, s.ext, dest, query, args...)
}

func (s *Store) list(ctx context.Context, dest any, query string, args ...any) error {
	traceQuery(query, args)
	return sqlx.SelectContext(ctx, s.ext, dest, query, args...)
}

func traceQuery(query string, args []any) {
	log.Debug("SQL query and args:")
	log.Fallback("Debug", fmt.Sprintf("query: %s\nargs: %v\n", query, args))
}

// exec runs an UPDATE or DELETE and reports ErrNotFound when no row matched.
func execAffecting(ctx context.Context, ext sqlx.ExtContext, what string, query string, args ...any) error {
	traceQuery(query, args)
	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrap(ErrNotFound, what)
	}
	return nil
}

// readErr maps a single row read error to the error taxonomy.
func readErr(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrapf(ErrNotFound, format, args...)
	}
	return &PersistenceError{Op: "read " + fmt.Sprintf(format, args...), Err: err}
}

func listErr(err error, what string) error {
	return &PersistenceError{Op: "list " + what, Err: err}
}
