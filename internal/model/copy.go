package model

type CopyStatus string

const (
	CopyIn     CopyStatus = "in"
	CopyOut    CopyStatus = "out"
	CopyOnHold CopyStatus = "on-hold"
)

func (s CopyStatus) IsValid() bool {
	switch s {
	case CopyIn, CopyOut, CopyOnHold:
		return true
	}
	return false
}

type BookCopy struct {
	CallNumber int64      `json:"call_number" db:"call_number"`
	CopyNo     int64      `json:"copy_no" db:"copy_no"`
	Status     CopyStatus `json:"status" db:"status"`
}

type FindBookCopy struct {
	CallNumber *int64
	CopyNo     *int64
	Status     *CopyStatus
}

type UpdateBookCopy struct {
	CallNumber int64
	CopyNo     int64
	Status     *CopyStatus
}
