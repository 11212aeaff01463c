package circulation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

type ReturnResult struct {
	Copy      *model.BookCopy    `json:"copy"`
	Borrowing *model.Borrowing   `json:"borrowing"`
	DaysLate  int                `json:"days_late"`
	Fine      *model.Fine        `json:"fine,omitempty"`
	Hold      *model.HoldRequest `json:"hold,omitempty"`
	Job       *model.Job         `json:"-"`
}

func (r *ReturnResult) Message() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Copy %d of book %d returned by borrower #%d", r.Copy.CopyNo, r.Copy.CallNumber, r.Borrowing.BID)
	if r.Fine != nil {
		fmt.Fprintf(&sb, "\n%d days late, fine of %s issued", r.DaysLate, util.FormatCents(r.Fine.Amount))
	}
	if r.Hold != nil {
		fmt.Fprintf(&sb, "\nCopy placed on hold. Notify borrower #%d", r.Hold.BID)
	}
	return sb.String()
}

// Return checks a copy back in. A late return is fined per day late. When a
// borrower holds the book the copy goes on hold and a notice is queued for
// them, otherwise it goes back on the shelf.
func (s *Service) Return(ctx context.Context, callNumber, copyNo int64) (*ReturnResult, error) {
	result := &ReturnResult{}
	err := s.store.Transact(ctx, func(tx *store.Store) error {
		bc, err := tx.GetBookCopy(ctx, callNumber, copyNo)
		if err != nil {
			return err
		}
		if bc.Status != model.CopyOut {
			return violation(ErrNotCheckedOut, "copy %d of book %d is %s", copyNo, callNumber, bc.Status)
		}

		borrowing, err := tx.GetLastBorrowing(ctx, callNumber, copyNo)
		if err != nil {
			return err
		}
		result.Borrowing = borrowing

		today := s.Today()
		result.DaysLate = s.dayCounter(today, borrowing.InDate.Time)
		if result.DaysLate > 0 {
			fine, err := tx.AddFine(ctx, &model.Fine{
				Amount:     int64(result.DaysLate) * s.feePerDayCents,
				IssuedDate: model.NewDate(today),
				BorID:      borrowing.BorID,
			})
			if err != nil {
				return err
			}
			result.Fine = fine
		}

		hold, err := tx.GetActiveHold(ctx, callNumber)
		if err != nil {
			return err
		}
		status := model.CopyIn
		if hold != nil {
			status = model.CopyOnHold
			result.Hold = hold
			job, err := tx.AddJob(ctx, &model.Job{
				Type:       model.JobTypeHoldReady,
				BID:        hold.BID,
				CallNumber: callNumber,
				CopyNo:     copyNo,
				Message:    fmt.Sprintf("notify borrower #%d: copy %d of book %d is on hold for you", hold.BID, copyNo, callNumber),
			})
			if err != nil {
				return err
			}
			result.Job = job
		}

		result.Copy, err = tx.SetCopyStatus(ctx, callNumber, copyNo, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("Copy returned",
		zap.Int64("call_number", callNumber),
		zap.Int64("copy_no", copyNo),
		zap.Int("days_late", result.DaysLate),
		zap.String("status", string(result.Copy.Status)))

	if result.Job != nil {
		s.dispatch(ctx, result.Job)
	}
	return result, nil
}

// dispatch hands a committed notification job to the queue, or delivers it
// right away when the service has no queue.
func (s *Service) dispatch(ctx context.Context, job *model.Job) {
	if s.queue != nil {
		s.queue.Push(*job)
		return
	}
	if err := s.notifications.Deliver(ctx, job); err != nil {
		log.Warn("Hold notice not delivered", zap.Int64("job_id", job.ID), zap.Error(err))
	}
}
