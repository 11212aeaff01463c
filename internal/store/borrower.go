package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shelfdesk/shelfdesk/internal/model"
)

var borrowerColumns = []any{
	goqu.C("bid"), goqu.C("password"), goqu.C("name"), goqu.C("address"), goqu.C("phone"),
	goqu.C("email_address"), goqu.C("sin_or_st_no"), goqu.C("expiry_date"), goqu.C("type"),
}

// AddBorrower inserts b as is. Password must already be hashed.
func (s *Store) AddBorrower(ctx context.Context, b *model.Borrower) (*model.Borrower, error) {
	stmt := `
		INSERT INTO borrower (password, name, address, phone, email_address, sin_or_st_no, expiry_date, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING bid, password, name, address, phone, email_address, sin_or_st_no, expiry_date, type
	`
	var created model.Borrower
	if err := s.write(ctx, "add borrower", func(ext sqlx.ExtContext) error {
		args := []any{b.Password, b.Name, b.Address, b.Phone, b.EmailAddress, b.SinOrStNo, dateArg(b.ExpiryDate), b.Type}
		traceQuery(stmt, args)
		return sqlx.GetContext(ctx, ext, &created, stmt, args...)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) GetBorrower(ctx context.Context, bid int64) (*model.Borrower, error) {
	query, args, err := dialect.From("borrower").Prepared(true).
		Select(borrowerColumns...).
		Where(goqu.C("bid").Eq(bid)).
		ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build borrower query")
	}
	var b model.Borrower
	if err := s.get(ctx, &b, query, args...); err != nil {
		return nil, readErr(err, "borrower %d", bid)
	}
	return &b, nil
}

func (s *Store) ListBorrowers(ctx context.Context, find *model.FindBorrower) ([]*model.Borrower, error) {
	ds := dialect.From("borrower").Prepared(true).
		Select(borrowerColumns...).
		Order(goqu.C("bid").Asc())

	if v := find.BID; v != nil {
		ds = ds.Where(goqu.C("bid").Eq(*v))
	}
	if v := find.Name; v != nil {
		ds = ds.Where(goqu.C("name").Eq(*v))
	}
	if v := find.SinOrStNo; v != nil {
		ds = ds.Where(goqu.C("sin_or_st_no").Eq(*v))
	}
	if v := find.Type; v != nil {
		ds = ds.Where(goqu.C("type").Eq(*v))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build borrower query")
	}
	list := make([]*model.Borrower, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "borrowers")
	}
	return list, nil
}

func (s *Store) UpdateBorrower(ctx context.Context, update *model.UpdateBorrower) (*model.Borrower, error) {
	set := goqu.Record{}
	if v := update.Password; v != nil {
		set["password"] = *v
	}
	if v := update.Name; v != nil {
		set["name"] = *v
	}
	if v := update.Address; v != nil {
		set["address"] = *v
	}
	if v := update.Phone; v != nil {
		set["phone"] = *v
	}
	if v := update.EmailAddress; v != nil {
		set["email_address"] = *v
	}
	if v := update.SinOrStNo; v != nil {
		set["sin_or_st_no"] = *v
	}
	if v := update.ExpiryDate; v != nil {
		set["expiry_date"] = v.String()
	}
	if v := update.Type; v != nil {
		set["type"] = *v
	}
	if len(set) == 0 {
		return s.GetBorrower(ctx, update.BID)
	}

	var b *model.Borrower
	err := s.Transact(ctx, func(tx *Store) error {
		if err := tx.patch(ctx, "update borrower", "borrower", set, goqu.Ex{"bid": update.BID}); err != nil {
			return err
		}
		var err error
		b, err = tx.GetBorrower(ctx, update.BID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) DeleteBorrower(ctx context.Context, bid int64) error {
	return s.write(ctx, "delete borrower", func(ext sqlx.ExtContext) error {
		return execAffecting(ctx, ext, "borrower", "DELETE FROM borrower WHERE bid = ?", bid)
	})
}

// dateArg turns an optional date into a query argument, NULL when unset.
func dateArg(d *model.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}
