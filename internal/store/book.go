package store

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/shelfdesk/shelfdesk/internal/model"
)

const bookColumns = "call_number, isbn, title, main_author, publisher, year"

func (s *Store) AddBook(ctx context.Context, book *model.Book) (*model.Book, error) {
	stmt := `
		INSERT INTO book (isbn, title, main_author, publisher, year)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + bookColumns

	var created model.Book
	if err := s.write(ctx, "add book", func(ext sqlx.ExtContext) error {
		args := []any{book.ISBN, book.Title, book.MainAuthor, book.Publisher, book.Year}
		traceQuery(stmt, args)
		return sqlx.GetContext(ctx, ext, &created, stmt, args...)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) GetBook(ctx context.Context, callNumber int64) (*model.Book, error) {
	var book model.Book
	if err := s.get(ctx, &book, "SELECT "+bookColumns+" FROM book WHERE call_number = ?", callNumber); err != nil {
		return nil, readErr(err, "book %d", callNumber)
	}
	return &book, nil
}

func (s *Store) ListBooks(ctx context.Context, find *model.FindBook) ([]*model.Book, error) {
	ds := dialect.From("book").Prepared(true).
		Select(goqu.C("call_number"), goqu.C("isbn"), goqu.C("title"), goqu.C("main_author"), goqu.C("publisher"), goqu.C("year")).
		Order(goqu.C("call_number").Asc())

	if v := find.CallNumber; v != nil {
		ds = ds.Where(goqu.C("call_number").Eq(*v))
	}
	if v := find.ISBN; v != nil {
		ds = ds.Where(goqu.C("isbn").Eq(*v))
	}
	if v := find.Title; v != nil {
		ds = ds.Where(goqu.C("title").Eq(*v))
	}
	if v := find.MainAuthor; v != nil {
		ds = ds.Where(goqu.C("main_author").Eq(*v))
	}
	if v := find.Limit; v != nil && *v > 0 {
		ds = ds.Limit(uint(*v))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build book query")
	}
	list := make([]*model.Book, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "books")
	}
	return list, nil
}

// FindBookByISBN returns the first book with isbn, or nil.
func (s *Store) FindBookByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	limit := 1
	list, err := s.ListBooks(ctx, &model.FindBook{ISBN: &isbn, Limit: &limit})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateBook(ctx context.Context, update *model.UpdateBook) (*model.Book, error) {
	set := goqu.Record{}
	if v := update.ISBN; v != nil {
		set["isbn"] = *v
	}
	if v := update.Title; v != nil {
		set["title"] = *v
	}
	if v := update.MainAuthor; v != nil {
		set["main_author"] = *v
	}
	if v := update.Publisher; v != nil {
		set["publisher"] = *v
	}
	if v := update.Year; v != nil {
		set["year"] = *v
	}
	if len(set) == 0 {
		return s.GetBook(ctx, update.CallNumber)
	}

	var book *model.Book
	err := s.Transact(ctx, func(tx *Store) error {
		if err := tx.patch(ctx, "update book", "book", set, goqu.Ex{"call_number": update.CallNumber}); err != nil {
			return err
		}
		var err error
		book, err = tx.GetBook(ctx, update.CallNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *Store) DeleteBook(ctx context.Context, callNumber int64) error {
	return s.write(ctx, "delete book", func(ext sqlx.ExtContext) error {
		return execAffecting(ctx, ext, "book", "DELETE FROM book WHERE call_number = ?", callNumber)
	})
}

// patch writes only the columns in set for the rows matching where.
func (s *Store) patch(ctx context.Context, op, table string, set goqu.Record, where goqu.Ex) error {
	query, args, err := dialect.Update(table).Prepared(true).Set(set).Where(where).ToSQL()
	if err != nil {
		return errors.Wrapf(err, "failed to build %s", op)
	}
	return s.write(ctx, op, func(ext sqlx.ExtContext) error {
		return execAffecting(ctx, ext, table, query, args...)
	})
}
