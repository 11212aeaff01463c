package circulation

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/worker"
)

// Notifier tells a borrower that a book they hold is waiting for them.
type Notifier interface {
	Notify(ctx context.Context, job *model.Job) error
}

// LogNotifier writes the notice to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, job *model.Job) error {
	log.Info("Notify borrower",
		zap.Int64("bid", job.BID),
		zap.Int64("call_number", job.CallNumber),
		zap.Int64("copy_no", job.CopyNo),
		zap.String("message", job.Message))
	return nil
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, job *model.Job) error

func (f NotifierFunc) Notify(ctx context.Context, job *model.Job) error {
	return f(ctx, job)
}

// Notifications delivers queued notification jobs and records the outcome.
type Notifications struct {
	store    *store.Store
	notifier Notifier
}

func NewNotifications(st *store.Store, n Notifier) *Notifications {
	if n == nil {
		n = LogNotifier{}
	}
	return &Notifications{store: st, notifier: n}
}

// Deliver sends one job and marks it done, or failed with the error message.
// It has the worker.Handler signature.
func (n *Notifications) Deliver(ctx context.Context, job *model.Job) error {
	status, message := model.JobStatusDone, job.Message
	notifyErr := n.notifier.Notify(ctx, job)
	if notifyErr != nil {
		status, message = model.JobStatusFailed, notifyErr.Error()
	}
	if _, err := n.store.UpdateJob(ctx, &model.UpdateJob{ID: job.ID, Status: &status, Message: &message}); err != nil {
		return errors.Wrapf(err, "failed to record job %d", job.ID)
	}
	return notifyErr
}

// ResumePending pushes jobs left pending by an earlier run onto pool.
func (n *Notifications) ResumePending(ctx context.Context, pool worker.WorkPool) (int, error) {
	status := model.JobStatusPending
	jobs, err := n.store.ListJobs(ctx, &model.FindJob{Status: &status})
	if err != nil {
		return 0, err
	}
	for _, job := range jobs {
		pool.Push(*job)
	}
	return len(jobs), nil
}
