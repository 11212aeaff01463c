package worker

import (
	"github.com/shelfdesk/shelfdesk/internal/model"
)

type WorkPool interface {
	Push(job model.Job)
}
