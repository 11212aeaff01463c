package worker

import (
	"github.com/shelfdesk/shelfdesk/internal/model"
)

type Worker interface {
	Run(c <-chan model.Job)
}
