package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/shelfdesk/shelfdesk/internal/model"
)

func (s *Store) AddBorrowerType(ctx context.Context, bt *model.BorrowerType) (*model.BorrowerType, error) {
	stmt := `
		INSERT INTO borrower_type (type, book_time_limit)
		VALUES (?, ?)
		RETURNING type, book_time_limit
	`
	var created model.BorrowerType
	if err := s.write(ctx, "add borrower type", func(ext sqlx.ExtContext) error {
		args := []any{bt.Type, bt.BookTimeLimit}
		traceQuery(stmt, args)
		return sqlx.GetContext(ctx, ext, &created, stmt, args...)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetBorrowerType serves from the cache outside transactions. Inside one it
// always reads the row, which may hold uncommitted changes.
func (s *Store) GetBorrowerType(ctx context.Context, typ string) (*model.BorrowerType, error) {
	if !s.InTx() {
		if cache, ok := s.BorrowerTypeCache.Load(typ); ok {
			return cache.(*model.BorrowerType), nil
		}
	}

	var bt model.BorrowerType
	if err := s.get(ctx, &bt, "SELECT type, book_time_limit FROM borrower_type WHERE type = ?", typ); err != nil {
		return nil, readErr(err, "borrower type %q", typ)
	}
	// Rows read inside a transaction may still roll back.
	if !s.InTx() {
		s.BorrowerTypeCache.Store(bt.Type, &bt)
	}
	return &bt, nil
}

func (s *Store) ListBorrowerTypes(ctx context.Context) ([]*model.BorrowerType, error) {
	list := make([]*model.BorrowerType, 0)
	if err := s.list(ctx, &list, "SELECT type, book_time_limit FROM borrower_type ORDER BY type"); err != nil {
		return nil, listErr(err, "borrower types")
	}
	return list, nil
}

func (s *Store) UpdateBorrowerType(ctx context.Context, update *model.UpdateBorrowerType) (*model.BorrowerType, error) {
	if update.BookTimeLimit == nil {
		return s.GetBorrowerType(ctx, update.Type)
	}

	var bt *model.BorrowerType
	err := s.Transact(ctx, func(tx *Store) error {
		set := goqu.Record{"book_time_limit": *update.BookTimeLimit}
		if err := tx.patch(ctx, "update borrower type", "borrower_type", set, goqu.Ex{"type": update.Type}); err != nil {
			return err
		}
		tx.onCommit(func() { s.BorrowerTypeCache.Delete(update.Type) })
		var err error
		bt, err = tx.GetBorrowerType(ctx, update.Type)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bt, nil
}

func (s *Store) DeleteBorrowerType(ctx context.Context, typ string) error {
	return s.Transact(ctx, func(tx *Store) error {
		if err := tx.write(ctx, "delete borrower type", func(ext sqlx.ExtContext) error {
			return execAffecting(ctx, ext, "borrower type", "DELETE FROM borrower_type WHERE type = ?", typ)
		}); err != nil {
			return err
		}
		tx.onCommit(func() { s.BorrowerTypeCache.Delete(typ) })
		return nil
	})
}
