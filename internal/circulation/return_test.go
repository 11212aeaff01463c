package circulation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdesk/shelfdesk/internal/circulation"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

func TestReturnOnTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.borrower(t, "Ada")
	book := f.book(t, "111", "Compilers")
	_, err := f.service.Checkout(ctx, b.BID, book.CallNumber)
	require.NoError(t, err)

	f.now = day.AddDate(0, 0, 14)
	res, err := f.service.Return(ctx, book.CallNumber, 1)
	require.NoError(t, err)
	assert.Equal(t, model.CopyIn, res.Copy.Status)
	assert.Zero(t, res.DaysLate)
	assert.Nil(t, res.Fine)
	assert.Nil(t, res.Hold)

	fines, err := f.store.ListFines(ctx, &model.FindFine{})
	require.NoError(t, err)
	assert.Empty(t, fines)
}

func TestReturnLateIssuesFine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.borrower(t, "Ada")
	book := f.book(t, "111", "Compilers")
	borrowing, err := f.service.Checkout(ctx, b.BID, book.CallNumber)
	require.NoError(t, err)

	f.now = borrowing.InDate.AddDate(0, 0, 20)
	res, err := f.service.Return(ctx, book.CallNumber, 1)
	require.NoError(t, err)
	assert.Equal(t, 20, res.DaysLate)
	require.NotNil(t, res.Fine)
	assert.Equal(t, int64(20*circulation.DefaultFeePerDayCents), res.Fine.Amount)
	assert.Equal(t, util.FormatISODate(f.now), res.Fine.IssuedDate.String())
	assert.False(t, res.Fine.IsPaid())
	assert.Equal(t, model.CopyIn, res.Copy.Status)
	assert.Contains(t, res.Message(), "20 days late, fine of $2.00 issued")

	fines, err := f.store.ListFines(ctx, &model.FindFine{BID: &b.BID})
	require.NoError(t, err)
	require.Len(t, fines, 1)
	assert.Equal(t, borrowing.BorID, fines[0].BorID)

	_, err = f.service.Return(ctx, book.CallNumber, 1)
	assert.ErrorIs(t, err, circulation.ErrNotCheckedOut)
}

func TestReturnFeeAndDayCounter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, circulation.WithFeePerDay(25), circulation.WithDayCounter(util.DaysBetween))
	b := f.borrower(t, "Ada")
	book := f.book(t, "111", "Compilers")

	f.now = time.Date(2024, 12, 11, 0, 0, 0, 0, time.Local)
	borrowing, err := f.service.Checkout(ctx, b.BID, book.CallNumber)
	require.NoError(t, err)
	require.Equal(t, "2024-12-25", borrowing.InDate.String())

	f.now = time.Date(2025, 1, 4, 0, 0, 0, 0, time.Local)
	res, err := f.service.Return(ctx, book.CallNumber, 1)
	require.NoError(t, err)
	// The legacy count misses the leap day.
	assert.Equal(t, 9, res.DaysLate)
	assert.Equal(t, int64(9*25), res.Fine.Amount)
}

func TestReturnWithHoldNotifiesInline(t *testing.T) {
	ctx := context.Background()
	var notified []int64
	f := newFixture(t, circulation.WithNotifier(circulation.NotifierFunc(func(ctx context.Context, job *model.Job) error {
		notified = append(notified, job.BID)
		return nil
	})))
	ada, grace := f.borrower(t, "Ada"), f.borrower(t, "Grace")
	book := f.book(t, "111", "Compilers")
	_, err := f.service.Checkout(ctx, ada.BID, book.CallNumber)
	require.NoError(t, err)
	hold, err := f.service.PlaceHold(ctx, grace.BID, book.CallNumber)
	require.NoError(t, err)

	res, err := f.service.Return(ctx, book.CallNumber, 1)
	require.NoError(t, err)
	assert.Equal(t, model.CopyOnHold, res.Copy.Status)
	require.NotNil(t, res.Hold)
	assert.Equal(t, hold.HID, res.Hold.HID)
	assert.Contains(t, res.Message(), "Notify borrower #2")
	assert.Equal(t, []int64{grace.BID}, notified)

	job, err := f.store.GetJob(ctx, res.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobTypeHoldReady, job.Type)
	assert.Equal(t, model.JobStatusDone, job.Status)

	// A copy on hold cannot go out again.
	_, err = f.service.Checkout(ctx, grace.BID, book.CallNumber)
	assert.ErrorIs(t, err, circulation.ErrNoAvailableCopy)
}

func TestReturnFailedNotificationIsRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, circulation.WithNotifier(circulation.NotifierFunc(func(context.Context, *model.Job) error {
		return errors.New("mail server down")
	})))
	ada, grace := f.borrower(t, "Ada"), f.borrower(t, "Grace")
	book := f.book(t, "111", "Compilers")
	_, err := f.service.Checkout(ctx, ada.BID, book.CallNumber)
	require.NoError(t, err)
	_, err = f.service.PlaceHold(ctx, grace.BID, book.CallNumber)
	require.NoError(t, err)

	res, err := f.service.Return(ctx, book.CallNumber, 1)
	require.NoError(t, err)
	job, err := f.store.GetJob(ctx, res.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, job.Status)
	assert.Equal(t, "mail server down", job.Message)
}

type capturePool struct {
	mu   sync.Mutex
	jobs []model.Job
}

func (p *capturePool) Push(job model.Job) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
}

func TestReturnWithHoldQueuesJob(t *testing.T) {
	ctx := context.Background()
	pool := &capturePool{}
	f := newFixture(t, circulation.WithQueue(pool))
	ada, grace := f.borrower(t, "Ada"), f.borrower(t, "Grace")
	book := f.book(t, "111", "Compilers")
	_, err := f.service.Checkout(ctx, ada.BID, book.CallNumber)
	require.NoError(t, err)
	_, err = f.service.PlaceHold(ctx, grace.BID, book.CallNumber)
	require.NoError(t, err)

	_, err = f.service.Return(ctx, book.CallNumber, 1)
	require.NoError(t, err)
	require.Len(t, pool.jobs, 1)
	assert.Equal(t, grace.BID, pool.jobs[0].BID)
	assert.Equal(t, model.JobStatusPending, pool.jobs[0].Status)

	// Pending jobs are picked up again on the next start.
	resumed := &capturePool{}
	n, err := circulation.NewNotifications(f.store, nil).ResumePending(ctx, resumed)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, pool.jobs[0].ID, resumed.jobs[0].ID)
}
