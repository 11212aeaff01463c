package store

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/shelfdesk/shelfdesk/internal/model"
)

const fineColumns = "fid, amount, issued_date, paid_date, borid"

func (s *Store) AddFine(ctx context.Context, f *model.Fine) (*model.Fine, error) {
	stmt := `
		INSERT INTO fine (amount, issued_date, paid_date, borid)
		VALUES (?, ?, ?, ?)
		RETURNING ` + fineColumns

	var created model.Fine
	if err := s.write(ctx, "add fine", func(ext sqlx.ExtContext) error {
		args := []any{f.Amount, f.IssuedDate.String(), dateArg(f.PaidDate), f.BorID}
		traceQuery(stmt, args)
		return sqlx.GetContext(ctx, ext, &created, stmt, args...)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) GetFine(ctx context.Context, fid int64) (*model.Fine, error) {
	var f model.Fine
	if err := s.get(ctx, &f, "SELECT "+fineColumns+" FROM fine WHERE fid = ?", fid); err != nil {
		return nil, readErr(err, "fine %d", fid)
	}
	return &f, nil
}

func (s *Store) ListFines(ctx context.Context, find *model.FindFine) ([]*model.Fine, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.FID; v != nil {
		where, args = append(where, "f.fid = ?"), append(args, *v)
	}
	if v := find.BorID; v != nil {
		where, args = append(where, "f.borid = ?"), append(args, *v)
	}
	if v := find.BID; v != nil {
		where, args = append(where, "br.bid = ?"), append(args, *v)
	}
	if find.Unpaid {
		where = append(where, "f.paid_date IS NULL")
	}

	query := `
		SELECT f.fid, f.amount, f.issued_date, f.paid_date, f.borid
		FROM fine f
		JOIN borrowing br ON br.borid = f.borid
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY f.fid`

	list := make([]*model.Fine, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "fines")
	}
	return list, nil
}

// ListBorrowerFines returns the fines charged to a borrower with the book
// each one was charged for.
func (s *Store) ListBorrowerFines(ctx context.Context, bid int64, unpaidOnly bool) ([]*model.BorrowerFine, error) {
	query := `
		SELECT f.fid, f.amount, f.issued_date, f.paid_date, f.borid,
			br.call_number, br.copy_no, b.title
		FROM fine f
		JOIN borrowing br ON br.borid = f.borid
		JOIN book b ON b.call_number = br.call_number
		WHERE br.bid = ?`
	if unpaidOnly {
		query += " AND f.paid_date IS NULL"
	}
	query += " ORDER BY f.fid"

	list := make([]*model.BorrowerFine, 0)
	if err := s.list(ctx, &list, query, bid); err != nil {
		return nil, listErr(err, "borrower fines")
	}
	return list, nil
}

func (s *Store) UpdateFine(ctx context.Context, update *model.UpdateFine) (*model.Fine, error) {
	set := goqu.Record{}
	if v := update.Amount; v != nil {
		set["amount"] = *v
	}
	if v := update.IssuedDate; v != nil {
		set["issued_date"] = v.String()
	}
	if v := update.PaidDate; v != nil {
		set["paid_date"] = v.String()
	}
	if len(set) == 0 {
		return s.GetFine(ctx, update.FID)
	}

	var f *model.Fine
	err := s.Transact(ctx, func(tx *Store) error {
		if err := tx.patch(ctx, "update fine", "fine", set, goqu.Ex{"fid": update.FID}); err != nil {
			return err
		}
		var err error
		f, err = tx.GetFine(ctx, update.FID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Store) DeleteFine(ctx context.Context, fid int64) error {
	return s.write(ctx, "delete fine", func(ext sqlx.ExtContext) error {
		return execAffecting(ctx, ext, "fine", "DELETE FROM fine WHERE fid = ?", fid)
	})
}
