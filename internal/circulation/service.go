package circulation // import "github.com/shelfdesk/shelfdesk/internal/circulation"

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shelfdesk/shelfdesk/internal/model"
	"github.com/shelfdesk/shelfdesk/internal/store"
	"github.com/shelfdesk/shelfdesk/internal/util"
	"github.com/shelfdesk/shelfdesk/internal/worker"
)

const (
	DefaultFeePerDayCents   = 10
	DefaultMaxCheckoutItems = 5
)

// Service runs the clerk, borrower and librarian workflows. Every workflow
// that writes more than one row does so in a single transaction.
type Service struct {
	store            *store.Store
	clock            util.Clock
	dayCounter       util.DayCounter
	feePerDayCents   int64
	maxCheckoutItems int
	passwordCost     int
	notifications    *Notifications
	queue            worker.WorkPool
}

type Option func(*Service)

func WithClock(clock util.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

func WithDayCounter(counter util.DayCounter) Option {
	return func(s *Service) { s.dayCounter = counter }
}

func WithFeePerDay(cents int64) Option {
	return func(s *Service) { s.feePerDayCents = cents }
}

func WithMaxCheckoutItems(n int) Option {
	return func(s *Service) { s.maxCheckoutItems = n }
}

func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

// WithNotifier replaces the log notifier used when hold notices are delivered inline.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifications = NewNotifications(s.store, n) }
}

// WithQueue hands hold notices to a worker pool instead of delivering them
// before the workflow returns.
func WithQueue(queue worker.WorkPool) Option {
	return func(s *Service) { s.queue = queue }
}

func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:            st,
		clock:            util.SystemClock,
		dayCounter:       util.CalendarDaysBetween,
		feePerDayCents:   DefaultFeePerDayCents,
		maxCheckoutItems: DefaultMaxCheckoutItems,
		passwordCost:     bcrypt.DefaultCost,
	}
	s.notifications = NewNotifications(st, LogNotifier{})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() *store.Store {
	return s.store
}

// Today is the service clock's current day.
func (s *Service) Today() time.Time {
	return util.Today(s.clock)
}

func (s *Service) FeePerDayCents() int64 {
	return s.feePerDayCents
}

func (s *Service) MaxCheckoutItems() int {
	return s.maxCheckoutItems
}

func (s *Service) today() model.Date {
	return model.NewDate(s.Today())
}
