package model

type Borrowing struct {
	BorID      int64 `json:"borid" db:"borid"`
	BID        int64 `json:"bid" db:"bid"`
	CallNumber int64 `json:"call_number" db:"call_number"`
	CopyNo     int64 `json:"copy_no" db:"copy_no"`
	OutDate    Date  `json:"out_date" db:"out_date"`
	// InDate is the due date.
	InDate Date `json:"in_date" db:"in_date"`
}

type FindBorrowing struct {
	BorID      *int64
	BID        *int64
	CallNumber *int64
	CopyNo     *int64
}

type UpdateBorrowing struct {
	BorID   int64
	OutDate *Date
	InDate  *Date
}
