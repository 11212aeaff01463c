package model

type Book struct {
	CallNumber int64   `json:"call_number" db:"call_number"`
	ISBN       string  `json:"isbn" db:"isbn"`
	Title      string  `json:"title" db:"title"`
	MainAuthor string  `json:"main_author" db:"main_author"`
	Publisher  *string `json:"publisher,omitempty" db:"publisher"`
	Year       int     `json:"year" db:"year"`
}

type FindBook struct {
	CallNumber *int64  `json:"call_number"`
	ISBN       *string `json:"isbn"`
	Title      *string `json:"title"`
	MainAuthor *string `json:"main_author"`

	// The maximum number of books to return.
	Limit *int `json:"limit"`
}

type UpdateBook struct {
	CallNumber int64   `json:"call_number"`
	ISBN       *string `json:"isbn"`
	Title      *string `json:"title"`
	MainAuthor *string `json:"main_author"`
	Publisher  *string `json:"publisher"`
	Year       *int    `json:"year"`
}

// CreateBook is the librarian's new book form.
type CreateBook struct {
	ISBN       string   `json:"isbn"`
	Title      string   `json:"title"`
	MainAuthor string   `json:"main_author"`
	Publisher  *string  `json:"publisher"`
	Year       int      `json:"year"`
	Authors    []string `json:"authors"`
	Subjects   []string `json:"subjects"`
}

type HasAuthor struct {
	CallNumber int64  `json:"call_number" db:"call_number"`
	Name       string `json:"name" db:"name"`
}

type FindHasAuthor struct {
	CallNumber *int64
	Name       *string
}

type HasSubject struct {
	CallNumber int64  `json:"call_number" db:"call_number"`
	Subject    string `json:"subject" db:"subject"`
}

type FindHasSubject struct {
	CallNumber *int64
	Subject    *string
}
