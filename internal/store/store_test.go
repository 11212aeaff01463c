package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/store/db"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	d, err := db.NewDB(filepath.Join(t.TempDir(), "shelfdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(context.Background()))
	return store.NewStore(d.DB)
}

func strPtr(s string) *string { return &s }

func addBook(t *testing.T, s *store.Store, isbn, title, author string) *model.Book {
	t.Helper()
	b, err := s.AddBook(context.Background(), &model.Book{ISBN: isbn, Title: title, MainAuthor: author, Year: 1990})
	require.NoError(t, err)
	return b
}

func addBorrower(t *testing.T, s *store.Store, name, typ string, expiry time.Time) *model.Borrower {
	t.Helper()
	ctx := context.Background()
	if _, err := s.GetBorrowerType(ctx, typ); err != nil {
		_, err := s.AddBorrowerType(ctx, &model.BorrowerType{Type: typ, BookTimeLimit: 14})
		require.NoError(t, err)
	}
	b, err := s.AddBorrower(ctx, &model.Borrower{
		Password:   "hash",
		Name:       name,
		SinOrStNo:  "S-" + name,
		ExpiryDate: model.DatePtr(expiry),
		Type:       typ,
	})
	require.NoError(t, err)
	return b
}
