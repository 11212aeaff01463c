package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/pkg/errors"

	"github.com/shelfdesk/shelfdesk/internal/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func copyCount(status model.CopyStatus, alias string) any {
	return goqu.L("(SELECT COUNT(*) FROM book_copy c WHERE c.call_number = b.call_number AND c.status = ?)", string(status)).As(alias)
}

// SearchBooks matches keyword as a case insensitive substring of the title,
// the main author, any author or any subject.
func (s *Store) SearchBooks(ctx context.Context, keyword string) ([]*model.SearchHit, error) {
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(keyword)) + "%"

	ds := dialect.From(goqu.T("book").As("b")).Prepared(true).
		Select(
			goqu.I("b.call_number"), goqu.I("b.isbn"), goqu.I("b.title"),
			goqu.I("b.main_author"), goqu.I("b.publisher"), goqu.I("b.year"),
			goqu.L("COALESCE((SELECT namelist(a.name) FROM has_author a WHERE a.call_number = b.call_number), '')").As("authors"),
			goqu.L("COALESCE((SELECT namelist(hs.subject) FROM has_subject hs WHERE hs.call_number = b.call_number), '')").As("subjects"),
			copyCount(model.CopyIn, "copies_in"),
			copyCount(model.CopyOut, "copies_out"),
			copyCount(model.CopyOnHold, "copies_on_hold"),
		).
		Where(goqu.Or(
			goqu.L(`b.title LIKE ? ESCAPE '\'`, pattern),
			goqu.L(`b.main_author LIKE ? ESCAPE '\'`, pattern),
			goqu.L(`EXISTS (SELECT 1 FROM has_author a WHERE a.call_number = b.call_number AND a.name LIKE ? ESCAPE '\')`, pattern),
			goqu.L(`EXISTS (SELECT 1 FROM has_subject hs WHERE hs.call_number = b.call_number AND hs.subject LIKE ? ESCAPE '\')`, pattern),
		)).
		Order(goqu.I("b.call_number").Asc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build search query")
	}
	list := make([]*model.SearchHit, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "search")
	}
	return list, nil
}

// ListPopularBooks ranks books by the number of borrowings that went out in year.
func (s *Store) ListPopularBooks(ctx context.Context, year, limit int) ([]*model.PopularBook, error) {
	ds := dialect.From(goqu.T("borrowing").As("br")).Prepared(true).
		Join(goqu.T("book").As("b"), goqu.On(goqu.I("b.call_number").Eq(goqu.I("br.call_number")))).
		Select(
			goqu.I("b.call_number"), goqu.I("b.title"), goqu.I("b.main_author"),
			goqu.COUNT(goqu.I("br.borid")).As("borrowings"),
		).
		Where(
			goqu.I("br.out_date").Gte(fmt.Sprintf("%04d-01-01", year)),
			goqu.I("br.out_date").Lt(fmt.Sprintf("%04d-01-01", year+1)),
		).
		GroupBy(goqu.I("b.call_number"), goqu.I("b.title"), goqu.I("b.main_author")).
		Order(goqu.I("borrowings").Desc(), goqu.I("b.call_number").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build popular books query")
	}
	list := make([]*model.PopularBook, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "popular books")
	}
	return list, nil
}
