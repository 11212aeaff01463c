package validator // import "github.com/shelfdesk/shelfdesk/internal/validator"

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError names the form field that could not be used.
type InvalidInputError struct {
	Field  string
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// ParseID parses a positive integer key such as a bid or call number.
func ParseID(field, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, invalid(field, "is required")
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &InvalidInputError{Field: field, Reason: "must be a whole number", Err: err}
	}
	if id <= 0 {
		return 0, invalid(field, "must be positive")
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD field.
func ParseDate(field, value string) (time.Time, error) {
	d, err := util.ParseISODate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &InvalidInputError{Field: field, Reason: "must be a date in YYYY-MM-DD format", Err: util.ErrInvalidDateFormat}
	}
	return d, nil
}

// ParseYear accepts four digit years.
func ParseYear(field, value string) (int, error) {
	value = strings.TrimSpace(value)
	year, err := strconv.Atoi(value)
	if err != nil || len(value) != 4 {
		return 0, invalid(field, "must be a four digit year")
	}
	return year, nil
}

// RequireText trims value and rejects it when empty.
func RequireText(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(field, "is required")
	}
	return value, nil
}

// OptionalText returns nil for blank input.
func OptionalText(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// ParseCallNumbers parses the call number fields of a checkout form. Blank
// fields are skipped, at least one and at most max numbers are required.
func ParseCallNumbers(values []string, max int) ([]int64, error) {
	list := make([]int64, 0, len(values))
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		id, err := ParseID(fmt.Sprintf("call_number[%d]", i+1), v)
		if err != nil {
			return nil, err
		}
		list = append(list, id)
	}
	if len(list) == 0 {
		return nil, invalid("call_number", "at least one book is required")
	}
	if max > 0 && len(list) > max {
		return nil, invalid("call_number", fmt.Sprintf("at most %d books per checkout", max))
	}
	return list, nil
}

func ValidateBorrowerType(bt *model.BorrowerType) error {
	if bt == nil {
		return errors.New("borrower type is nil")
	}
	if strings.TrimSpace(bt.Type) == "" {
		return invalid("type", "is required")
	}
	if bt.BookTimeLimit <= 0 {
		return invalid("book_time_limit", "must be a positive number of days")
	}
	return nil
}

func ValidateCreateBorrower(create *model.CreateBorrower) error {
	if create == nil {
		return errors.New("borrower is nil")
	}
	if strings.TrimSpace(create.Name) == "" {
		return invalid("name", "is required")
	}
	if strings.TrimSpace(create.SinOrStNo) == "" {
		return invalid("sin_or_st_no", "is required")
	}
	if strings.TrimSpace(create.Type) == "" {
		return invalid("type", "is required")
	}
	if err := validatePassword(create.Password); err != nil {
		return err
	}
	if v := create.EmailAddress; v != nil && *v != "" {
		if _, err := mail.ParseAddress(*v); err != nil {
			return &InvalidInputError{Field: "email_address", Reason: "is not a valid address", Err: err}
		}
	}
	return nil
}

func ValidateCreateBook(create *model.CreateBook) error {
	if create == nil {
		return errors.New("book is nil")
	}
	if strings.TrimSpace(create.ISBN) == "" {
		return invalid("isbn", "is required")
	}
	if strings.TrimSpace(create.Title) == "" {
		return invalid("title", "is required")
	}
	if strings.TrimSpace(create.MainAuthor) == "" {
		return invalid("main_author", "is required")
	}
	if create.Year < 0 || create.Year > 9999 {
		return invalid("year", "must be a four digit year")
	}
	return nil
}

const maxPasswordBytes = 72

func validatePassword(password string) error {
	if len(password) < 6 {
		return invalid("password", "is too short")
	}
	// bcrypt refuses longer input.
	if len(password) > maxPasswordBytes {
		return invalid("password", "is too long")
	}
	return nil
}
