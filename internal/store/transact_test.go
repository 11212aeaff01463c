package store_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
)

func TestTransactCommitsAndRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.Transact(ctx, func(tx *store.Store) error {
		assert.True(t, tx.InTx())
		if _, err := tx.AddBook(ctx, &model.Book{ISBN: "1", Title: "Lost", MainAuthor: "X"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	books, err := s.ListBooks(ctx, &model.FindBook{})
	require.NoError(t, err)
	assert.Empty(t, books)

	err = s.Transact(ctx, func(tx *store.Store) error {
		b, err := tx.AddBook(ctx, &model.Book{ISBN: "2", Title: "Kept", MainAuthor: "Y"})
		if err != nil {
			return err
		}
		// Nested writes join the outer transaction.
		return tx.Transact(ctx, func(inner *store.Store) error {
			_, err := inner.AddBookCopy(ctx, b.CallNumber, model.CopyIn)
			return err
		})
	})
	require.NoError(t, err)
	copies, err := s.ListBookCopies(ctx, &model.FindBookCopy{})
	require.NoError(t, err)
	assert.Len(t, copies, 1)
}

func TestJobs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	job, err := s.AddJob(ctx, &model.Job{Type: model.JobTypeHoldReady, BID: 7, CallNumber: 3, CopyNo: 1, Message: "notify borrower #7"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), job.ID)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.NotZero(t, job.CreatedTs)

	status := model.JobStatusPending
	pending, err := s.ListJobs(ctx, &model.FindJob{Status: &status})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	done := model.JobStatusDone
	job, err = s.UpdateJob(ctx, &model.UpdateJob{ID: job.ID, Status: &done})
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusDone, job.Status)

	_, err = s.UpdateJob(ctx, &model.UpdateJob{ID: 99, Status: &done})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteJob(ctx, job.ID))
	_, err = s.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Close())

	err := s.Ping(context.Background())
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, store.ErrPersistence)
}
