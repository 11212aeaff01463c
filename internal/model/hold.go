package model

type HoldRequest struct {
	HID        int64 `json:"hid" db:"hid"`
	BID        int64 `json:"bid" db:"bid"`
	CallNumber int64 `json:"call_number" db:"call_number"`
	IssuedDate Date  `json:"issued_date" db:"issued_date"`
}

type FindHoldRequest struct {
	HID        *int64
	BID        *int64
	CallNumber *int64
}

type UpdateHoldRequest struct {
	HID        int64
	IssuedDate *Date
}
