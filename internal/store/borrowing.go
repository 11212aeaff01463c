package store

import (
	"context"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

const borrowingColumns = "borid, bid, call_number, copy_no, out_date, in_date"

func (s *Store) AddBorrowing(ctx context.Context, b *model.Borrowing) (*model.Borrowing, error) {
	stmt := `
		INSERT INTO borrowing (bid, call_number, copy_no, out_date, in_date)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + borrowingColumns

	var created model.Borrowing
	if err := s.write(ctx, "add borrowing", func(ext sqlx.ExtContext) error {
		args := []any{b.BID, b.CallNumber, b.CopyNo, b.OutDate.String(), b.InDate.String()}
		traceQuery(stmt, args)
		return sqlx.GetContext(ctx, ext, &created, stmt, args...)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) GetBorrowing(ctx context.Context, borid int64) (*model.Borrowing, error) {
	var b model.Borrowing
	if err := s.get(ctx, &b, "SELECT "+borrowingColumns+" FROM borrowing WHERE borid = ?", borid); err != nil {
		return nil, readErr(err, "borrowing %d", borid)
	}
	return &b, nil
}

func (s *Store) ListBorrowings(ctx context.Context, find *model.FindBorrowing) ([]*model.Borrowing, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.BorID; v != nil {
		where, args = append(where, "borid = ?"), append(args, *v)
	}
	if v := find.BID; v != nil {
		where, args = append(where, "bid = ?"), append(args, *v)
	}
	if v := find.CallNumber; v != nil {
		where, args = append(where, "call_number = ?"), append(args, *v)
	}
	if v := find.CopyNo; v != nil {
		where, args = append(where, "copy_no = ?"), append(args, *v)
	}

	query := "SELECT " + borrowingColumns + " FROM borrowing WHERE " + strings.Join(where, " AND ") + " ORDER BY borid"
	list := make([]*model.Borrowing, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "borrowings")
	}
	return list, nil
}

// GetLastBorrowing returns the borrowing of a copy with the latest out date.
// Borrowings made on the same day are ordered by borid.
func (s *Store) GetLastBorrowing(ctx context.Context, callNumber, copyNo int64) (*model.Borrowing, error) {
	stmt := `
		SELECT ` + borrowingColumns + `
		FROM borrowing
		WHERE call_number = ? AND copy_no = ?
		ORDER BY out_date DESC, borid DESC
		LIMIT 1`
	var b model.Borrowing
	if err := s.get(ctx, &b, stmt, callNumber, copyNo); err != nil {
		return nil, readErr(err, "borrowing of copy %d of book %d", copyNo, callNumber)
	}
	return &b, nil
}

func (s *Store) UpdateBorrowing(ctx context.Context, update *model.UpdateBorrowing) (*model.Borrowing, error) {
	set := goqu.Record{}
	if v := update.OutDate; v != nil {
		set["out_date"] = v.String()
	}
	if v := update.InDate; v != nil {
		set["in_date"] = v.String()
	}
	if len(set) == 0 {
		return s.GetBorrowing(ctx, update.BorID)
	}

	var b *model.Borrowing
	err := s.Transact(ctx, func(tx *Store) error {
		if err := tx.patch(ctx, "update borrowing", "borrowing", set, goqu.Ex{"borid": update.BorID}); err != nil {
			return err
		}
		var err error
		b, err = tx.GetBorrowing(ctx, update.BorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) DeleteBorrowing(ctx context.Context, borid int64) error {
	return s.write(ctx, "delete borrowing", func(ext sqlx.ExtContext) error {
		return execAffecting(ctx, ext, "borrowing", "DELETE FROM borrowing WHERE borid = ?", borid)
	})
}

type FindCurrentBorrowing struct {
	BID *int64
	// DueBefore keeps only borrowings whose due date is before this day.
	DueBefore *time.Time
}

// ListCurrentBorrowings joins every copy that is out with its latest borrowing,
// the book title and the borrower name, ordered by call number then copy.
func (s *Store) ListCurrentBorrowings(ctx context.Context, find *FindCurrentBorrowing) ([]*model.CurrentBorrowing, error) {
	where, args := []string{"c.status = ?"}, []any{model.CopyOut}

	if v := find.BID; v != nil {
		where, args = append(where, "br.bid = ?"), append(args, *v)
	}
	if v := find.DueBefore; v != nil {
		where, args = append(where, "br.in_date < ?"), append(args, util.FormatISODate(*v))
	}

	query := `
		SELECT
			br.borid, br.bid, br.call_number, br.copy_no, br.out_date, br.in_date,
			b.title, bo.name AS borrower_name
		FROM book_copy c
		JOIN borrowing br ON br.call_number = c.call_number AND br.copy_no = c.copy_no
		JOIN book b ON b.call_number = c.call_number
		JOIN borrower bo ON bo.bid = br.bid
		WHERE br.borid = (
			SELECT lb.borid FROM borrowing lb
			WHERE lb.call_number = c.call_number AND lb.copy_no = c.copy_no
			ORDER BY lb.out_date DESC, lb.borid DESC
			LIMIT 1
		) AND ` + strings.Join(where, " AND ") + `
		ORDER BY c.call_number, c.copy_no`

	list := make([]*model.CurrentBorrowing, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "current borrowings")
	}
	return list, nil
}

// ListOverdueBorrowings is ListCurrentBorrowings limited to due dates before today.
func (s *Store) ListOverdueBorrowings(ctx context.Context, today time.Time) ([]*model.CurrentBorrowing, error) {
	return s.ListCurrentBorrowings(ctx, &FindCurrentBorrowing{DueBefore: &today})
}
