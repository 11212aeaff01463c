package store

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shelfdesk/shelfdesk/internal/model"
)

var ErrNoAvailableCopy = errors.New("no copy of the book is available")

// AddBookCopy adds the next copy of a book. Copy numbers start at 1 per book.
func (s *Store) AddBookCopy(ctx context.Context, callNumber int64, status model.CopyStatus) (*model.BookCopy, error) {
	if status == "" {
		status = model.CopyIn
	}
	if !status.IsValid() {
		return nil, errors.Errorf("invalid copy status %q", status)
	}

	stmt := `
		INSERT INTO book_copy (call_number, copy_no, status)
		SELECT ?, COALESCE(MAX(copy_no), 0) + 1, ? FROM book_copy WHERE call_number = ?
		RETURNING call_number, copy_no, status
	`
	var created model.BookCopy
	err := s.Transact(ctx, func(tx *Store) error {
		if _, err := tx.GetBook(ctx, callNumber); err != nil {
			return err
		}
		return tx.write(ctx, "add book copy", func(ext sqlx.ExtContext) error {
			args := []any{callNumber, status, callNumber}
			traceQuery(stmt, args)
			return sqlx.GetContext(ctx, ext, &created, stmt, args...)
		})
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) GetBookCopy(ctx context.Context, callNumber, copyNo int64) (*model.BookCopy, error) {
	var bc model.BookCopy
	stmt := "SELECT call_number, copy_no, status FROM book_copy WHERE call_number = ? AND copy_no = ?"
	if err := s.get(ctx, &bc, stmt, callNumber, copyNo); err != nil {
		return nil, readErr(err, "copy %d of book %d", copyNo, callNumber)
	}
	return &bc, nil
}

func (s *Store) ListBookCopies(ctx context.Context, find *model.FindBookCopy) ([]*model.BookCopy, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.CallNumber; v != nil {
		where, args = append(where, "call_number = ?"), append(args, *v)
	}
	if v := find.CopyNo; v != nil {
		where, args = append(where, "copy_no = ?"), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "status = ?"), append(args, *v)
	}

	query := `
		SELECT call_number, copy_no, status
		FROM book_copy
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY call_number, copy_no`

	list := make([]*model.BookCopy, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "book copies")
	}
	return list, nil
}

// FindAvailableCopy returns the lowest numbered copy of a book that is in.
func (s *Store) FindAvailableCopy(ctx context.Context, callNumber int64) (*model.BookCopy, error) {
	var bc model.BookCopy
	stmt := `
		SELECT call_number, copy_no, status
		FROM book_copy
		WHERE call_number = ? AND status = ?
		ORDER BY copy_no
		LIMIT 1`
	if err := s.get(ctx, &bc, stmt, callNumber, model.CopyIn); err != nil {
		err = readErr(err, "book %d", callNumber)
		if errors.Is(err, ErrNotFound) {
			return nil, errors.Wrapf(ErrNoAvailableCopy, "book %d", callNumber)
		}
		return nil, err
	}
	return &bc, nil
}

// ListCheckedOutCopies returns every copy that is out, ordered by call number then copy.
func (s *Store) ListCheckedOutCopies(ctx context.Context) ([]*model.BookCopy, error) {
	status := model.CopyOut
	return s.ListBookCopies(ctx, &model.FindBookCopy{Status: &status})
}

func (s *Store) UpdateBookCopy(ctx context.Context, update *model.UpdateBookCopy) (*model.BookCopy, error) {
	if update.Status == nil {
		return s.GetBookCopy(ctx, update.CallNumber, update.CopyNo)
	}
	if !update.Status.IsValid() {
		return nil, errors.Errorf("invalid copy status %q", *update.Status)
	}

	var bc *model.BookCopy
	err := s.Transact(ctx, func(tx *Store) error {
		where := goqu.Ex{"call_number": update.CallNumber, "copy_no": update.CopyNo}
		if err := tx.patch(ctx, "update book copy", "book_copy", goqu.Record{"status": string(*update.Status)}, where); err != nil {
			return err
		}
		var err error
		bc, err = tx.GetBookCopy(ctx, update.CallNumber, update.CopyNo)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bc, nil
}

// SetCopyStatus is UpdateBookCopy for the common status only change.
func (s *Store) SetCopyStatus(ctx context.Context, callNumber, copyNo int64, status model.CopyStatus) (*model.BookCopy, error) {
	return s.UpdateBookCopy(ctx, &model.UpdateBookCopy{CallNumber: callNumber, CopyNo: copyNo, Status: &status})
}

func (s *Store) DeleteBookCopy(ctx context.Context, callNumber, copyNo int64) error {
	return s.write(ctx, "delete book copy", func(ext sqlx.ExtContext) error {
		return execAffecting(ctx, ext, "book copy", "DELETE FROM book_copy WHERE call_number = ? AND copy_no = ?", callNumber, copyNo)
	})
}
