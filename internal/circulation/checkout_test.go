package circulation_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
)

func TestCheckoutScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var borrower *model.Borrower
	for i := 1; i <= 7; i++ {
		borrower = f.borrower(t, fmt.Sprintf("reader%d", i))
	}
	require.Equal(t, int64(7), borrower.BID)
	books := f.books(t, 3)
	require.Equal(t, int64(3), books[2].CallNumber)

	b, err := f.service.Checkout(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.BID)
	assert.Equal(t, int64(3), b.CallNumber)
	assert.Equal(t, int64(1), b.CopyNo)
	assert.Equal(t, "2024-03-01", b.OutDate.String())
	assert.Equal(t, "2024-03-15", b.InDate.String())

	bc, err := f.store.GetBookCopy(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, model.CopyOut, bc.Status)

	_, err = f.service.Checkout(ctx, 7, 3)
	assert.ErrorIs(t, err, circulation.ErrNoAvailableCopy)
	assert.ErrorIs(t, err, circulation.ErrBusinessRule)
}

func TestCheckoutRejectsExpiredBorrower(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	book := f.book(t, "111", "Compilers")
	b, err := f.service.RegisterBorrower(ctx, &model.CreateBorrower{
		Password: "secret1", Name: "Old", SinOrStNo: "S-1",
		ExpiryDate: model.DatePtr(day), Type: "student",
	})
	require.NoError(t, err)

	_, err = f.service.Checkout(ctx, b.BID, book.CallNumber)
	assert.ErrorIs(t, err, circulation.ErrBorrowerExpired)

	_, err = f.service.Checkout(ctx, 404, book.CallNumber)
	assert.ErrorIs(t, err, store.ErrNotFound)

	bc, err := f.store.GetBookCopy(ctx, book.CallNumber, 1)
	require.NoError(t, err)
	assert.Equal(t, model.CopyIn, bc.Status)
}

func TestCheckoutUnknownBook(t *testing.T) {
	f := newFixture(t)
	b := f.borrower(t, "Ada")
	_, err := f.service.Checkout(context.Background(), b.BID, 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCheckoutCopyRequiresIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ada, grace := f.borrower(t, "Ada"), f.borrower(t, "Grace")
	book := f.book(t, "111", "Compilers")

	_, err := f.service.CheckoutCopy(ctx, ada.BID, book.CallNumber, 1)
	require.NoError(t, err)
	_, err = f.service.CheckoutCopy(ctx, grace.BID, book.CallNumber, 1)
	assert.ErrorIs(t, err, circulation.ErrCopyNotAvailable)
}

func TestCheckoutIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.borrower(t, "Ada")
	book := f.book(t, "111", "Compilers")

	_, err := f.db.ExecContext(ctx, `
		CREATE TRIGGER refuse_checkout BEFORE UPDATE ON book_copy
		BEGIN SELECT RAISE(ABORT, 'status update refused'); END`)
	require.NoError(t, err)

	_, err = f.service.Checkout(ctx, b.BID, book.CallNumber)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrPersistence)

	list, err := f.store.ListBorrowings(ctx, &model.FindBorrowing{})
	require.NoError(t, err)
	assert.Empty(t, list)
	bc, err := f.store.GetBookCopy(ctx, book.CallNumber, 1)
	require.NoError(t, err)
	assert.Equal(t, model.CopyIn, bc.Status)
}

func TestCheckoutBooksReceipt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.borrower(t, "Ada")
	books := f.books(t, 2)

	receipt, err := f.service.CheckoutBooks(ctx, b.BID, books[0].CallNumber, 99, books[1].CallNumber)
	require.NoError(t, err)
	require.Len(t, receipt.Items, 3)
	assert.Equal(t, 2, receipt.Borrowed())
	assert.ErrorIs(t, receipt.Items[1].Err, store.ErrNotFound)
	assert.NotEmpty(t, receipt.Items[1].Error)
	require.NotNil(t, receipt.DueDate)
	assert.Equal(t, "2024-03-15", receipt.DueDate.String())
	assert.Contains(t, receipt.Message(), "To be returned on or before: 2024-03-15")

	_, err = f.service.CheckoutBooks(ctx, b.BID, 1, 2, 3, 4, 5, 6)
	assert.ErrorIs(t, err, circulation.ErrTooManyItems)
}

func TestCheckoutBooksNothingBorrowed(t *testing.T) {
	f := newFixture(t)
	b := f.borrower(t, "Ada")
	receipt, err := f.service.CheckoutBooks(context.Background(), b.BID, 42)
	require.NoError(t, err)
	assert.Zero(t, receipt.Borrowed())
	assert.Nil(t, receipt.DueDate)
	assert.Contains(t, receipt.Message(), "Nothing was checked out")
}
