package circulation

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

// PayFine marks a borrower's fine paid today.
func (s *Service) PayFine(ctx context.Context, bid, fid int64) (*model.Fine, error) {
	var fine *model.Fine
	err := s.store.Transact(ctx, func(tx *store.Store) error {
		f, err := tx.GetFine(ctx, fid)
		if err != nil {
			return err
		}
		borrowing, err := tx.GetBorrowing(ctx, f.BorID)
		if err != nil {
			return err
		}
		if borrowing.BID != bid {
			return errors.Wrapf(store.ErrNotFound, "fine %d of borrower #%d", fid, bid)
		}
		if f.IsPaid() {
			return violation(ErrFineAlreadyPaid, "fine %d paid on %s", fid, f.PaidDate)
		}
		paid := s.today()
		fine, err = tx.UpdateFine(ctx, &model.UpdateFine{FID: fid, PaidDate: &paid})
		return err
	})
	if err != nil {
		return nil, err
	}
	return fine, nil
}

// Account is what a borrower sees on the account status form.
type Account struct {
	Borrower   *model.Borrower           `json:"borrower"`
	Borrowings []*model.CurrentBorrowing `json:"borrowings"`
	Fines      []*model.BorrowerFine     `json:"fines"`
	FinesTotal int64                     `json:"fines_total"`
	Holds      []*model.HoldRequest      `json:"holds"`
}

func (a *Account) Message() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Borrower #%d %s (%s), card valid until %s\n", a.Borrower.BID, a.Borrower.Name, a.Borrower.Type, model.DateString(a.Borrower.ExpiryDate))
	fmt.Fprintf(&sb, "Books out: %d\n", len(a.Borrowings))
	for _, b := range a.Borrowings {
		fmt.Fprintf(&sb, "  %d-%d %s, due %s\n", b.CallNumber, b.CopyNo, b.Title, b.InDate)
	}
	fmt.Fprintf(&sb, "Outstanding fines: %s\n", util.FormatCents(a.FinesTotal))
	for _, f := range a.Fines {
		fmt.Fprintf(&sb, "  fine %d: %s for %s, issued %s\n", f.FID, util.FormatCents(f.Amount), f.Title, f.IssuedDate)
	}
	fmt.Fprintf(&sb, "Holds: %d", len(a.Holds))
	for _, h := range a.Holds {
		fmt.Fprintf(&sb, "\n  hold %d on book %d since %s", h.HID, h.CallNumber, h.IssuedDate)
	}
	return sb.String()
}

// Account reads a borrower's loans, unpaid fines and holds in one snapshot.
func (s *Service) Account(ctx context.Context, bid int64) (*Account, error) {
	account := &Account{}
	err := s.store.Transact(ctx, func(tx *store.Store) error {
		var err error
		if account.Borrower, err = tx.GetBorrower(ctx, bid); err != nil {
			return err
		}
		if account.Borrowings, err = tx.ListCurrentBorrowings(ctx, &store.FindCurrentBorrowing{BID: &bid}); err != nil {
			return err
		}
		if account.Fines, err = tx.ListBorrowerFines(ctx, bid, true); err != nil {
			return err
		}
		if account.Holds, err = tx.ListHoldRequests(ctx, &model.FindHoldRequest{BID: &bid}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, f := range account.Fines {
		account.FinesTotal += f.Amount
	}
	return account, nil
}
