package store

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/shelfdesk/shelfdesk/internal/model"
)

const holdColumns = "hid, bid, call_number, issued_date"

func (s *Store) AddHoldRequest(ctx context.Context, h *model.HoldRequest) (*model.HoldRequest, error) {
	stmt := `
		INSERT INTO hold_request (bid, call_number, issued_date)
		VALUES (?, ?, ?)
		RETURNING ` + holdColumns

	var created model.HoldRequest
	if err := s.write(ctx, "add hold request", func(ext sqlx.ExtContext) error {
		args := []any{h.BID, h.CallNumber, h.IssuedDate.String()}
		traceQuery(stmt, args)
		return sqlx.GetContext(ctx, ext, &created, stmt, args...)
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) GetHoldRequest(ctx context.Context, hid int64) (*model.HoldRequest, error) {
	var h model.HoldRequest
	if err := s.get(ctx, &h, "SELECT "+holdColumns+" FROM hold_request WHERE hid = ?", hid); err != nil {
		return nil, readErr(err, "hold request %d", hid)
	}
	return &h, nil
}

// ListHoldRequests orders holds by issued date, then hid, so the first one is
// the next in line.
func (s *Store) ListHoldRequests(ctx context.Context, find *model.FindHoldRequest) ([]*model.HoldRequest, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.HID; v != nil {
		where, args = append(where, "hid = ?"), append(args, *v)
	}
	if v := find.BID; v != nil {
		where, args = append(where, "bid = ?"), append(args, *v)
	}
	if v := find.CallNumber; v != nil {
		where, args = append(where, "call_number = ?"), append(args, *v)
	}

	query := "SELECT " + holdColumns + " FROM hold_request WHERE " + strings.Join(where, " AND ") + " ORDER BY issued_date, hid"
	list := make([]*model.HoldRequest, 0)
	if err := s.list(ctx, &list, query, args...); err != nil {
		return nil, listErr(err, "hold requests")
	}
	return list, nil
}

// GetActiveHold returns the earliest hold on a book, or nil when nobody waits for it.
func (s *Store) GetActiveHold(ctx context.Context, callNumber int64) (*model.HoldRequest, error) {
	list, err := s.ListHoldRequests(ctx, &model.FindHoldRequest{CallNumber: &callNumber})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateHoldRequest(ctx context.Context, update *model.UpdateHoldRequest) (*model.HoldRequest, error) {
	if update.IssuedDate == nil {
		return s.GetHoldRequest(ctx, update.HID)
	}

	var h *model.HoldRequest
	err := s.Transact(ctx, func(tx *Store) error {
		set := goqu.Record{"issued_date": update.IssuedDate.String()}
		if err := tx.patch(ctx, "update hold request", "hold_request", set, goqu.Ex{"hid": update.HID}); err != nil {
			return err
		}
		var err error
		h, err = tx.GetHoldRequest(ctx, update.HID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Store) DeleteHoldRequest(ctx context.Context, hid int64) error {
	return s.write(ctx, "delete hold request", func(ext sqlx.ExtContext) error {
		return execAffecting(ctx, ext, "hold request", "DELETE FROM hold_request WHERE hid = ?", hid)
	})
}
