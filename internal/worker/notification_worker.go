package worker // import "github.com/shelfdesk/shelfdesk/internal/worker"

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/model"
)

const queueSize = 64

// Handler delivers one job. Errors are logged, the handler records the outcome.
type Handler func(ctx context.Context, job *model.Job) error

type NotificationPool struct {
	queue  chan model.Job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewNotificationPool(size int, handle Handler) *NotificationPool {
	if size < 1 {
		size = 1
	}
	pool := &NotificationPool{
		queue: make(chan model.Job, queueSize),
	}

	for i := 0; i < size; i++ {
		worker := &NotificationWorker{id: i, handle: handle}
		pool.wg.Add(1)
		go func() {
			defer pool.wg.Done()
			worker.Run(pool.queue)
		}()
	}

	return pool
}

// Implement WorkPool interface
func (p *NotificationPool) Push(job model.Job) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		log.Warn("Notification pool closed, job left pending", zap.Int64("job_id", job.ID))
		return
	}
	p.queue <- job
}

// Close stops accepting jobs and waits for queued ones to finish.
func (p *NotificationPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

type NotificationWorker struct {
	id     int
	handle Handler
}

// Run handles jobs until the channel is closed.
func (w *NotificationWorker) Run(c <-chan model.Job) {
	log.Debug("NotificationWorker is running", zap.Int("worker_id", w.id))

	for job := range c {
		log.Debug("Job received by worker",
			zap.Int("worker_id", w.id),
			zap.Int64("job_id", job.ID),
			zap.Int64("bid", job.BID))

		if err := w.handle(context.Background(), &job); err != nil {
			log.Error("Failed to handle job",
				zap.Int64("job_id", job.ID),
				zap.String("type", job.Type),
				zap.Error(err))
		}
	}
}
