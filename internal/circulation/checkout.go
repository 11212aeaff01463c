package circulation

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shelfdesk/shelfdesk/internal/log"
	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
)

// FindAvailableCopy returns a copy of the book that is in.
func (s *Service) FindAvailableCopy(ctx context.Context, callNumber int64) (*model.BookCopy, error) {
	return s.findAvailableCopy(ctx, s.store, callNumber)
}

func (s *Service) findAvailableCopy(ctx context.Context, st *store.Store, callNumber int64) (*model.BookCopy, error) {
	bc, err := st.FindAvailableCopy(ctx, callNumber)
	if err == nil {
		return bc, nil
	}
	if !errors.Is(err, store.ErrNoAvailableCopy) {
		return nil, err
	}
	if _, err := st.GetBook(ctx, callNumber); err != nil {
		return nil, err
	}
	return nil, violation(ErrNoAvailableCopy, "book %d", callNumber)
}

// Checkout lends any available copy of a book to a borrower.
func (s *Service) Checkout(ctx context.Context, bid, callNumber int64) (*model.Borrowing, error) {
	var borrowing *model.Borrowing
	err := s.store.Transact(ctx, func(tx *store.Store) error {
		borrower, limit, err := s.validBorrower(ctx, tx, bid)
		if err != nil {
			return err
		}
		bc, err := s.findAvailableCopy(ctx, tx, callNumber)
		if err != nil {
			return err
		}
		borrowing, err = s.lend(ctx, tx, borrower, bc, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return borrowing, nil
}

// CheckoutCopy lends one specific copy. The copy must be in.
func (s *Service) CheckoutCopy(ctx context.Context, bid, callNumber, copyNo int64) (*model.Borrowing, error) {
	var borrowing *model.Borrowing
	err := s.store.Transact(ctx, func(tx *store.Store) error {
		borrower, limit, err := s.validBorrower(ctx, tx, bid)
		if err != nil {
			return err
		}
		bc, err := tx.GetBookCopy(ctx, callNumber, copyNo)
		if err != nil {
			return err
		}
		if bc.Status != model.CopyIn {
			return violation(ErrCopyNotAvailable, "copy %d of book %d is %s", copyNo, callNumber, bc.Status)
		}
		borrowing, err = s.lend(ctx, tx, borrower, bc, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return borrowing, nil
}

// validBorrower loads a borrower whose card is valid today and the loan
// period of their type.
func (s *Service) validBorrower(ctx context.Context, st *store.Store, bid int64) (*model.Borrower, int, error) {
	borrower, err := st.GetBorrower(ctx, bid)
	if err != nil {
		return nil, 0, err
	}
	if !borrower.IsValid(s.Today()) {
		return nil, 0, violation(ErrBorrowerExpired, "borrower #%d expired on %s", bid, model.DateString(borrower.ExpiryDate))
	}
	bt, err := st.GetBorrowerType(ctx, borrower.Type)
	if err != nil {
		return nil, 0, err
	}
	return borrower, bt.BookTimeLimit, nil
}

func (s *Service) lend(ctx context.Context, tx *store.Store, borrower *model.Borrower, bc *model.BookCopy, limit int) (*model.Borrowing, error) {
	today := s.Today()
	borrowing, err := tx.AddBorrowing(ctx, &model.Borrowing{
		BID:        borrower.BID,
		CallNumber: bc.CallNumber,
		CopyNo:     bc.CopyNo,
		OutDate:    model.NewDate(today),
		InDate:     model.NewDate(today.AddDate(0, 0, limit)),
	})
	if err != nil {
		return nil, err
	}
	if _, err := tx.SetCopyStatus(ctx, bc.CallNumber, bc.CopyNo, model.CopyOut); err != nil {
		return nil, err
	}

	log.Info("Copy checked out",
		zap.Int64("bid", borrower.BID),
		zap.Int64("call_number", bc.CallNumber),
		zap.Int64("copy_no", bc.CopyNo),
		zap.String("due", borrowing.InDate.String()))
	return borrowing, nil
}

type ReceiptItem struct {
	CallNumber int64            `json:"call_number"`
	Borrowing  *model.Borrowing `json:"borrowing,omitempty"`
	Err        error            `json:"-"`
	Error      string           `json:"error,omitempty"`
}

// Receipt is the outcome of a multi book checkout.
type Receipt struct {
	BID   int64          `json:"bid"`
	Items []*ReceiptItem `json:"items"`
	// DueDate is the earliest due date of the borrowed items.
	DueDate *model.Date `json:"due_date,omitempty"`
}

func (r *Receipt) Borrowed() int {
	n := 0
	for _, item := range r.Items {
		if item.Err == nil {
			n++
		}
	}
	return n
}

// Message renders the receipt the way the desk reads it out.
func (r *Receipt) Message() string {
	var sb strings.Builder
	for _, item := range r.Items {
		if item.Err != nil {
			fmt.Fprintf(&sb, "Book %d: not checked out (%s)\n", item.CallNumber, item.Err)
			continue
		}
		fmt.Fprintf(&sb, "Book %d copy %d checked out to borrower #%d\n", item.CallNumber, item.Borrowing.CopyNo, item.Borrowing.BID)
	}
	if r.DueDate != nil {
		fmt.Fprintf(&sb, "To be returned on or before: %s", r.DueDate)
	} else {
		sb.WriteString("Nothing was checked out")
	}
	return sb.String()
}

// CheckoutBooks checks out several books for one borrower. Each book is its
// own transaction; a failing book is reported on the receipt and does not undo
// the others. A storage failure stops the loop and is returned; books already
// checked out stay checked out.
func (s *Service) CheckoutBooks(ctx context.Context, bid int64, callNumbers ...int64) (*Receipt, error) {
	if s.maxCheckoutItems > 0 && len(callNumbers) > s.maxCheckoutItems {
		return nil, violation(ErrTooManyItems, "%d books, at most %d", len(callNumbers), s.maxCheckoutItems)
	}
	// An invalid borrower fails every item, report it once.
	if _, _, err := s.validBorrower(ctx, s.store, bid); err != nil {
		return nil, err
	}

	receipt := &Receipt{BID: bid, Items: make([]*ReceiptItem, 0, len(callNumbers))}
	for _, callNumber := range callNumbers {
		item := &ReceiptItem{CallNumber: callNumber}
		borrowing, err := s.Checkout(ctx, bid, callNumber)
		if err != nil {
			if !errors.Is(err, ErrBusinessRule) && !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			item.Err = err
			item.Error = err.Error()
		} else {
			item.Borrowing = borrowing
			if receipt.DueDate == nil || borrowing.InDate.Before(receipt.DueDate.Time) {
				due := borrowing.InDate
				receipt.DueDate = &due
			}
		}
		receipt.Items = append(receipt.Items, item)
	}
	return receipt, nil
}
