package store

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/shelfdesk/shelfdesk/internal/model"
)

// Author and subject links are keyed by all of their columns, so they are
// added and deleted but never updated.

func (s *Store) AddHasAuthor(ctx context.Context, link *model.HasAuthor) (*model.HasAuthor, error) {
	stmt := "INSERT INTO has_author (call_number, name) VALUES (?, ?) RETURNING call_number, name"
	var created model.HasAuthor
	if err := s.write(ctx, "add author", func(ext sqlx.ExtContext) error {
		traceQuery(stmt, []any{link.CallNumber, link.Name})
		return sqlx.GetContext(ctx, ext, &created, stmt, link.CallNumber, link.Name)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) ListHasAuthors(ctx context.Context, find *model.FindHasAuthor) ([]*model.HasAuthor, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.CallNumber; v != nil {
		where, args = append(where, "call_number = ?"), append(args, *v)
	}
	if v := find.Name; v != nil {
		where, args = append(where, "name = ?"), append(args, *v)
	}

	query := "SELECT call_number, name FROM has_author WHERE " + strings.Join(where, " AND ") + " ORDER BY call_number, name"
	list := make([]*model.HasAuthor, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "authors")
	}
	return list, nil
}

func (s *Store) DeleteHasAuthor(ctx context.Context, link *model.HasAuthor) error {
	return s.write(ctx, "delete author", func(ext sqlx.ExtContext) error {
		return execAffecting(ctx, ext, "author", "DELETE FROM has_author WHERE call_number = ? AND name = ?", link.CallNumber, link.Name)
	})
}

func (s *Store) AddHasSubject(ctx context.Context, link *model.HasSubject) (*model.HasSubject, error) {
	stmt := "INSERT INTO has_subject (call_number, subject) VALUES (?, ?) RETURNING call_number, subject"
	var created model.HasSubject
	if err := s.write(ctx, "add subject", func(ext sqlx.ExtContext) error {
		traceQuery(stmt, []any{link.CallNumber, link.Subject})
		return sqlx.GetContext(ctx, ext, &created, stmt, link.CallNumber, link.Subject)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) ListHasSubjects(ctx context.Context, find *model.FindHasSubject) ([]*model.HasSubject, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.CallNumber; v != nil {
		where, args = append(where, "call_number = ?"), append(args, *v)
	}
	if v := find.Subject; v != nil {
		where, args = append(where, "subject = ?"), append(args, *v)
	}

	query := "SELECT call_number, subject FROM has_subject WHERE " + strings.Join(where, " AND ") + " ORDER BY call_number, subject"
	list := make([]*model.HasSubject, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "subjects")
	}
	return list, nil
}

func (s *Store) DeleteHasSubject(ctx context.Context, link *model.HasSubject) error {
	return s.write(ctx, "delete subject", func(ext sqlx.ExtContext) error {
		return execAffecting(ctx, ext, "subject", "DELETE FROM has_subject WHERE call_number = ? AND subject = ?", link.CallNumber, link.Subject)
	})
}
