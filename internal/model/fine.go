package model

type Fine struct {
	FID        int64 `json:"fid" db:"fid"`
	Amount     int64 `json:"amount" db:"amount"` // cents
	IssuedDate Date  `json:"issued_date" db:"issued_date"`
	PaidDate   *Date `json:"paid_date,omitempty" db:"paid_date"`
	BorID      int64 `json:"borid" db:"borid"`
}

func (f *Fine) IsPaid() bool {
	return f.PaidDate != nil && !f.PaidDate.IsZero()
}

type FindFine struct {
	FID   *int64
	BorID *int64
	// BID matches fines through the borrowing they were issued for.
	BID    *int64
	Unpaid bool
}

type UpdateFine struct {
	FID        int64
	Amount     *int64
	IssuedDate *Date
	PaidDate   *Date
}
