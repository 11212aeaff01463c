package model

const (
	JobStatusPending = "pending"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

const (
	// JobTypeHoldReady tells a borrower that a held book is waiting at the desk.
	JobTypeHoldReady = "HOLD_READY"
)

type Job struct {
	ID         int64  `json:"id" db:"id"`
	Type       string `json:"type" db:"type"`
	BID        int64  `json:"bid" db:"bid"`
	CallNumber int64  `json:"call_number" db:"call_number"`
	CopyNo     int64  `json:"copy_no" db:"copy_no"`
	Status     string `json:"status" db:"status"`
	Message    string `json:"message" db:"message"`
	CreatedTs  int64  `json:"created_ts" db:"created_ts"`
	UpdatedTs  int64  `json:"updated_ts" db:"updated_ts"`
}

type FindJob struct {
	ID     *int64
	Type   *string
	Status *string
}

type UpdateJob struct {
	ID      int64
	Status  *string
	Message *string
}
