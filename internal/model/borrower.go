package model

import "time"

type BorrowerType struct {
	Type          string `json:"type" db:"type"`
	BookTimeLimit int    `json:"book_time_limit" db:"book_time_limit"`
}

type UpdateBorrowerType struct {
	Type          string
	BookTimeLimit *int
}

type Borrower struct {
	BID          int64   `json:"bid" db:"bid"`
	Password     string  `json:"-" db:"password"`
	Name         string  `json:"name" db:"name"`
	Address      *string `json:"address,omitempty" db:"address"`
	Phone        *string `json:"phone,omitempty" db:"phone"`
	EmailAddress *string `json:"email_address,omitempty" db:"email_address"`
	SinOrStNo    string  `json:"sin_or_st_no" db:"sin_or_st_no"`
	ExpiryDate   *Date   `json:"expiry_date,omitempty" db:"expiry_date"`
	Type         string  `json:"type" db:"type"`
}

// IsValid reports whether the card is still usable on today. A borrower
// without an expiry date is never valid.
func (b *Borrower) IsValid(today time.Time) bool {
	if b.ExpiryDate == nil || b.ExpiryDate.IsZero() {
		return false
	}
	return b.ExpiryDate.After(today)
}

type FindBorrower struct {
	BID       *int64
	Name      *string
	SinOrStNo *string
	Type      *string
}

type UpdateBorrower struct {
	BID          int64
	Password     *string
	Name         *string
	Address      *string
	Phone        *string
	EmailAddress *string
	SinOrStNo    *string
	ExpiryDate   *Date
	Type         *string
}

// CreateBorrower is the clerk's new borrower form. Password is plain text.
type CreateBorrower struct {
	Password     string  `json:"password"`
	Name         string  `json:"name"`
	Address      *string `json:"address"`
	Phone        *string `json:"phone"`
	EmailAddress *string `json:"email_address"`
	SinOrStNo    string  `json:"sin_or_st_no"`
	ExpiryDate   *Date   `json:"expiry_date"`
	Type         string  `json:"type"`
}
