package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
)

func lend(t *testing.T, s *store.Store, bid, callNumber, copyNo int64, out model.Date, limit int) *model.Borrowing {
	t.Helper()
	ctx := context.Background()
	b, err := s.AddBorrowing(ctx, &model.Borrowing{
		BID: bid, CallNumber: callNumber, CopyNo: copyNo,
		OutDate: out, InDate: model.NewDate(out.AddDate(0, 0, limit)),
	})
	require.NoError(t, err)
	_, err = s.SetCopyStatus(ctx, callNumber, copyNo, model.CopyOut)
	require.NoError(t, err)
	return b
}

func TestBorrowingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := addBook(t, s, "111", "Compilers", "Aho")
	_, err := s.AddBookCopy(ctx, book.CallNumber, model.CopyIn)
	require.NoError(t, err)
	borrower := addBorrower(t, s, "Grace", "student", day.AddDate(1, 0, 0))

	b := lend(t, s, borrower.BID, book.CallNumber, 1, model.NewDate(day), 14)
	assert.Equal(t, int64(1), b.BorID)
	assert.Equal(t, "2024-03-01", b.OutDate.String())
	assert.Equal(t, "2024-03-15", b.InDate.String())

	got, err := s.GetBorrowing(ctx, b.BorID)
	require.NoError(t, err)
	assert.Equal(t, b.InDate.String(), got.InDate.String())

	due := model.NewDate(day.AddDate(0, 0, 21))
	updated, err := s.UpdateBorrowing(ctx, &model.UpdateBorrowing{BorID: b.BorID, InDate: &due})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-22", updated.InDate.String())

	list, err := s.ListBorrowings(ctx, &model.FindBorrowing{BID: &borrower.BID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetLastBorrowing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := addBook(t, s, "111", "Compilers", "Aho")
	_, err := s.AddBookCopy(ctx, book.CallNumber, model.CopyIn)
	require.NoError(t, err)
	grace := addBorrower(t, s, "Grace", "student", day.AddDate(1, 0, 0))
	alan := addBorrower(t, s, "Alan", "student", day.AddDate(1, 0, 0))

	lend(t, s, grace.BID, book.CallNumber, 1, model.NewDate(day.AddDate(0, 0, 5)), 14)
	lend(t, s, alan.BID, book.CallNumber, 1, model.NewDate(day), 14)

	last, err := s.GetLastBorrowing(ctx, book.CallNumber, 1)
	require.NoError(t, err)
	assert.Equal(t, grace.BID, last.BID)

	// Same out date: the later borid wins.
	lend(t, s, alan.BID, book.CallNumber, 1, model.NewDate(day.AddDate(0, 0, 5)), 14)
	last, err = s.GetLastBorrowing(ctx, book.CallNumber, 1)
	require.NoError(t, err)
	assert.Equal(t, alan.BID, last.BID)

	_, err = s.GetLastBorrowing(ctx, book.CallNumber, 7)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCurrentAndOverdueBorrowings(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	compilers := addBook(t, s, "111", "Compilers", "Aho")
	taocp := addBook(t, s, "222", "TAOCP", "Knuth")
	for _, b := range []*model.Book{compilers, compilers, taocp} {
		_, err := s.AddBookCopy(ctx, b.CallNumber, model.CopyIn)
		require.NoError(t, err)
	}
	grace := addBorrower(t, s, "Grace", "student", day.AddDate(1, 0, 0))
	alan := addBorrower(t, s, "Alan", "student", day.AddDate(1, 0, 0))

	// taocp#1 went out long ago, came back, then went out again recently.
	old := lend(t, s, alan.BID, taocp.CallNumber, 1, model.NewDate(day.AddDate(0, 0, -60)), 14)
	_, err := s.SetCopyStatus(ctx, taocp.CallNumber, 1, model.CopyIn)
	require.NoError(t, err)
	lend(t, s, grace.BID, taocp.CallNumber, 1, model.NewDate(day.AddDate(0, 0, -3)), 14)

	lend(t, s, grace.BID, compilers.CallNumber, 2, model.NewDate(day.AddDate(0, 0, -20)), 14)
	lend(t, s, alan.BID, compilers.CallNumber, 1, model.NewDate(day.AddDate(0, 0, -30)), 14)

	current, err := s.ListCurrentBorrowings(ctx, &store.FindCurrentBorrowing{})
	require.NoError(t, err)
	require.Len(t, current, 3)
	assert.Equal(t, [2]int64{compilers.CallNumber, 1}, [2]int64{current[0].CallNumber, current[0].CopyNo})
	assert.Equal(t, [2]int64{compilers.CallNumber, 2}, [2]int64{current[1].CallNumber, current[1].CopyNo})
	assert.Equal(t, "Grace", current[2].BorrowerName)
	assert.Equal(t, "TAOCP", current[2].Title)
	assert.NotEqual(t, old.BorID, current[2].BorID)

	overdue, err := s.ListOverdueBorrowings(ctx, day)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, alan.BID, overdue[0].BID)
	assert.Equal(t, grace.BID, overdue[1].BID)

	mine, err := s.ListCurrentBorrowings(ctx, &store.FindCurrentBorrowing{BID: &grace.BID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestFinesAndHolds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := addBook(t, s, "111", "Compilers", "Aho")
	_, err := s.AddBookCopy(ctx, book.CallNumber, model.CopyIn)
	require.NoError(t, err)
	grace := addBorrower(t, s, "Grace", "student", day.AddDate(1, 0, 0))
	alan := addBorrower(t, s, "Alan", "student", day.AddDate(1, 0, 0))
	b := lend(t, s, grace.BID, book.CallNumber, 1, model.NewDate(day), 14)

	fine, err := s.AddFine(ctx, &model.Fine{Amount: 200, IssuedDate: model.NewDate(day), BorID: b.BorID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), fine.FID)
	assert.Nil(t, fine.PaidDate)

	unpaid, err := s.ListFines(ctx, &model.FindFine{BID: &grace.BID, Unpaid: true})
	require.NoError(t, err)
	assert.Len(t, unpaid, 1)

	withBook, err := s.ListBorrowerFines(ctx, grace.BID, true)
	require.NoError(t, err)
	require.Len(t, withBook, 1)
	assert.Equal(t, "Compilers", withBook[0].Title)

	paid := model.NewDate(day.AddDate(0, 0, 1))
	fine, err = s.UpdateFine(ctx, &model.UpdateFine{FID: fine.FID, PaidDate: &paid})
	require.NoError(t, err)
	assert.True(t, fine.IsPaid())

	unpaid, err = s.ListFines(ctx, &model.FindFine{BID: &grace.BID, Unpaid: true})
	require.NoError(t, err)
	assert.Empty(t, unpaid)

	none, err := s.GetActiveHold(ctx, book.CallNumber)
	require.NoError(t, err)
	assert.Nil(t, none)

	later, err := s.AddHoldRequest(ctx, &model.HoldRequest{BID: grace.BID, CallNumber: book.CallNumber, IssuedDate: model.NewDate(day.AddDate(0, 0, 2))})
	require.NoError(t, err)
	earlier, err := s.AddHoldRequest(ctx, &model.HoldRequest{BID: alan.BID, CallNumber: book.CallNumber, IssuedDate: model.NewDate(day)})
	require.NoError(t, err)
	assert.Equal(t, later.HID+1, earlier.HID)

	active, err := s.GetActiveHold(ctx, book.CallNumber)
	require.NoError(t, err)
	assert.Equal(t, earlier.HID, active.HID)

	require.NoError(t, s.DeleteHoldRequest(ctx, earlier.HID))
	active, err = s.GetActiveHold(ctx, book.CallNumber)
	require.NoError(t, err)
	assert.Equal(t, grace.BID, active.BID)
	assert.ErrorIs(t, s.DeleteHoldRequest(ctx, earlier.HID), store.ErrNotFound)
}

func TestRescheduleHoldRequest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := addBook(t, s, "111", "Compilers", "Aho")
	grace := addBorrower(t, s, "Grace", "student", day.AddDate(1, 0, 0))
	alan := addBorrower(t, s, "Alan", "student", day.AddDate(1, 0, 0))

	first, err := s.AddHoldRequest(ctx, &model.HoldRequest{BID: grace.BID, CallNumber: book.CallNumber, IssuedDate: model.NewDate(day)})
	require.NoError(t, err)
	second, err := s.AddHoldRequest(ctx, &model.HoldRequest{BID: alan.BID, CallNumber: book.CallNumber, IssuedDate: model.NewDate(day.AddDate(0, 0, 1))})
	require.NoError(t, err)

	later := model.NewDate(day.AddDate(0, 0, 5))
	h, err := s.UpdateHoldRequest(ctx, &model.UpdateHoldRequest{HID: first.HID, IssuedDate: &later})
	require.NoError(t, err)
	assert.Equal(t, later.String(), h.IssuedDate.String())
	assert.Equal(t, grace.BID, h.BID)

	got, err := s.GetHoldRequest(ctx, first.HID)
	require.NoError(t, err)
	assert.Equal(t, later.String(), got.IssuedDate.String())

	// The earliest hold now belongs to the other borrower.
	active, err := s.GetActiveHold(ctx, book.CallNumber)
	require.NoError(t, err)
	assert.Equal(t, second.HID, active.HID)

	unchanged, err := s.UpdateHoldRequest(ctx, &model.UpdateHoldRequest{HID: second.HID})
	require.NoError(t, err)
	assert.Equal(t, second.IssuedDate.String(), unchanged.IssuedDate.String())

	_, err = s.UpdateHoldRequest(ctx, &model.UpdateHoldRequest{HID: 99, IssuedDate: &later})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteFineAndBorrowing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	book := addBook(t, s, "111", "Compilers", "Aho")
	_, err := s.AddBookCopy(ctx, book.CallNumber, model.CopyIn)
	require.NoError(t, err)
	grace := addBorrower(t, s, "Grace", "student", day.AddDate(1, 0, 0))
	b := lend(t, s, grace.BID, book.CallNumber, 1, model.NewDate(day), 14)

	fine, err := s.AddFine(ctx, &model.Fine{Amount: 150, IssuedDate: model.NewDate(day.AddDate(0, 0, 20)), BorID: b.BorID})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFine(ctx, fine.FID))
	_, err = s.GetFine(ctx, fine.FID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteFine(ctx, fine.FID), store.ErrNotFound)

	fines, err := s.ListFines(ctx, &model.FindFine{BID: &grace.BID})
	require.NoError(t, err)
	assert.Empty(t, fines)

	require.NoError(t, s.DeleteBorrowing(ctx, b.BorID))
	_, err = s.GetBorrowing(ctx, b.BorID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBorrowing(ctx, b.BorID), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBorrowing(ctx, 99), store.ErrNotFound)
}
