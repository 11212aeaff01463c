package model

// CurrentBorrowing is the latest borrowing of a copy that is still out.
type CurrentBorrowing struct {
	Borrowing
	Title        string `json:"title" db:"title"`
	BorrowerName string `json:"borrower_name" db:"borrower_name"`
}

type SearchHit struct {
	Book
	Authors      string `json:"authors" db:"authors"`
	Subjects     string `json:"subjects" db:"subjects"`
	CopiesIn     int    `json:"copies_in" db:"copies_in"`
	CopiesOut    int    `json:"copies_out" db:"copies_out"`
	CopiesOnHold int    `json:"copies_on_hold" db:"copies_on_hold"`
}

type PopularBook struct {
	CallNumber int64  `json:"call_number" db:"call_number"`
	Title      string `json:"title" db:"title"`
	MainAuthor string `json:"main_author" db:"main_author"`
	Borrowings int    `json:"borrowings" db:"borrowings"`
}

// BorrowerFine is a fine with the book it was charged for.
type BorrowerFine struct {
	Fine
	CallNumber int64  `json:"call_number" db:"call_number"`
	CopyNo     int64  `json:"copy_no" db:"copy_no"`
	Title      string `json:"title" db:"title"`
}
