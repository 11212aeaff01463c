package circulation

import (
	"context"

	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
)

// PlaceHold records a borrower's request for the next copy of a book.
func (s *Service) PlaceHold(ctx context.Context, bid, callNumber int64) (*model.HoldRequest, error) {
	var hold *model.HoldRequest
	err := s.store.Transact(ctx, func(tx *store.Store) error {
		if _, _, err := s.validBorrower(ctx, tx, bid); err != nil {
			return err
		}
		if _, err := tx.GetBook(ctx, callNumber); err != nil {
			return err
		}
		existing, err := tx.ListHoldRequests(ctx, &model.FindHoldRequest{BID: &bid, CallNumber: &callNumber})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return violation(ErrDuplicateHold, "borrower #%d, book %d, hold %d", bid, callNumber, existing[0].HID)
		}
		hold, err = tx.AddHoldRequest(ctx, &model.HoldRequest{BID: bid, CallNumber: callNumber, IssuedDate: s.today()})
		return err
	})
	if err != nil {
		return nil, err
	}
	return hold, nil
}

// ActiveHold is the hold that decides where a returned copy goes, the
// earliest one on the book. It is nil when nobody waits for the book.
func (s *Service) ActiveHold(ctx context.Context, callNumber int64) (*model.HoldRequest, error) {
	return s.store.GetActiveHold(ctx, callNumber)
}

func (s *Service) Hold(ctx context.Context, hid int64) (*model.HoldRequest, error) {
	return s.store.GetHoldRequest(ctx, hid)
}

func (s *Service) CancelHold(ctx context.Context, hid int64) error {
	return s.store.DeleteHoldRequest(ctx, hid)
}
