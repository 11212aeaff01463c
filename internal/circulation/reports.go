package circulation

import (
	"context"

	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/util"
)

// OverdueItem is a current loan with how late it is today.
type OverdueItem struct {
	*model.CurrentBorrowing
	DaysOverdue int  `json:"days_overdue"`
	Overdue     bool `json:"overdue"`
}

// Overdue lists every copy still out whose due date is before today.
func (s *Service) Overdue(ctx context.Context) ([]*OverdueItem, error) {
	today := s.Today()
	list, err := s.store.ListOverdueBorrowings(ctx, today)
	if err != nil {
		return nil, err
	}
	return s.annotate(list), nil
}

// CheckedOut lists the current loan of every copy that is out.
func (s *Service) CheckedOut(ctx context.Context) ([]*OverdueItem, error) {
	list, err := s.store.ListCurrentBorrowings(ctx, &store.FindCurrentBorrowing{})
	if err != nil {
		return nil, err
	}
	return s.annotate(list), nil
}

// annotate counts calendar days past due, matching the due date filter of the
// overdue query. The configured day counter only prices fines.
func (s *Service) annotate(list []*model.CurrentBorrowing) []*OverdueItem {
	today := s.Today()
	items := make([]*OverdueItem, 0, len(list))
	for _, b := range list {
		days := util.CalendarDaysBetween(today, b.InDate.Time)
		items = append(items, &OverdueItem{CurrentBorrowing: b, DaysOverdue: max(days, 0), Overdue: days > 0})
	}
	return items
}
