package circulation

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrBusinessRule matches every RuleViolation.
var ErrBusinessRule = errors.New("business rule violation")

var (
	ErrBorrowerExpired     = errors.New("borrower card is not valid")
	ErrNoAvailableCopy     = errors.New("no copy of the book is available")
	ErrCopyNotAvailable    = errors.New("copy is not available for checkout")
	ErrNotCheckedOut       = errors.New("copy is not checked out")
	ErrFineAlreadyPaid     = errors.New("fine is already paid")
	ErrDuplicateHold       = errors.New("borrower already holds this book")
	ErrUnknownBorrowerType = errors.New("unknown borrower type")
	ErrTooManyItems        = errors.New("too many books in one checkout")
)

// ErrInvalidCredentials is returned by Authenticate for an unknown borrower or a wrong password.
var ErrInvalidCredentials = errors.New("invalid borrower id or password")

// RuleViolation is a request the circulation rules refuse. Rule is one of the
// sentinels above.
type RuleViolation struct {
	Rule   error
	Detail string
}

func (e *RuleViolation) Error() string {
	if e.Detail == "" {
		return e.Rule.Error()
	}
	return e.Rule.Error() + ": " + e.Detail
}

func (e *RuleViolation) Unwrap() error { return e.Rule }

func (e *RuleViolation) Is(target error) bool { return target == ErrBusinessRule }

func violation(rule error, format string, args ...any) error {
	return &RuleViolation{Rule: rule, Detail: fmt.Sprintf(format, args...)}
}
