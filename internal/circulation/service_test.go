package circulation_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/store/db"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)

type fixture struct {
	db      *db.DB
	store   *store.Store
	service *circulation.Service
	now     time.Time
}

func (f *fixture) clock() time.Time { return f.now }

func newFixture(t *testing.T, opts ...circulation.Option) *fixture {
	t.Helper()
	d, err := db.NewDB(filepath.Join(t.TempDir(), "shelfdesk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Migrate(context.Background()))

	f := &fixture{db: d, store: store.NewStore(d.DB), now: day}
	opts = append([]circulation.Option{
		circulation.WithClock(f.clock),
		circulation.WithPasswordCost(bcrypt.MinCost),
	}, opts...)
	f.service = circulation.NewService(f.store, opts...)

	_, err = f.store.AddBorrowerType(context.Background(), &model.BorrowerType{Type: "student", BookTimeLimit: 14})
	require.NoError(t, err)
	_, err = f.store.AddBorrowerType(context.Background(), &model.BorrowerType{Type: "faculty", BookTimeLimit: 84})
	require.NoError(t, err)
	return f
}

// borrower registers a student whose card runs for a year.
func (f *fixture) borrower(t *testing.T, name string) *model.Borrower {
	t.Helper()
	b, err := f.service.RegisterBorrower(context.Background(), &model.CreateBorrower{
		Password:   "secret1",
		Name:       name,
		SinOrStNo:  "S-" + name,
		ExpiryDate: model.DatePtr(day.AddDate(1, 0, 0)),
		Type:       "student",
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) book(t *testing.T, isbn, title string) *model.Book {
	t.Helper()
	res, err := f.service.AddBook(context.Background(), &model.CreateBook{
		ISBN: isbn, Title: title, MainAuthor: "Knuth", Year: 1968,
		Authors: []string{"Knuth"}, Subjects: []string{"Algorithms"},
	})
	require.NoError(t, err)
	return res.Book
}

func (f *fixture) books(t *testing.T, n int) []*model.Book {
	list := make([]*model.Book, 0, n)
	for i := 1; i <= n; i++ {
		list = append(list, f.book(t, fmt.Sprintf("978-%d", i), fmt.Sprintf("Volume %d", i)))
	}
	return list
}
