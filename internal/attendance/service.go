package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventKind names a session transition.
type EventKind string

const (
	EventCheckIn  EventKind = "checkin"
	EventCheckOut EventKind = "checkout"
)

// Event describes a session transition for downstream consumers.
type Event struct {
	Kind     EventKind `json:"kind"`
	RecordID string    `json:"recordId"`
	UserID   string    `json:"userId"`
	At       time.Time `json:"at"`
	Address  string    `json:"address"`
	Duration *int      `json:"duration,omitempty"`
}

// Notifier receives session transitions after they are persisted.
// Delivery failures must not fail the transition.
type Notifier interface {
	Notify(ctx context.Context, evt Event)
}

// Recorder collects session metrics.
type Recorder interface {
	RecordCheckIn()
	RecordCheckOut(minutes int)
	RecordDurationClamped()
}

// Summary is the personal dashboard of one volunteer.
type Summary struct {
	Total        int    `json:"total"`
	ThisMonth    int    `json:"thisMonth"`
	TotalMinutes int    `json:"totalMinutes"`
	TotalHours   string `json:"totalHours"`
	AvgHours     string `json:"avgHours"`
}

// Service owns the check-in/check-out state machine of every account.
type Service struct {
	repo     Repository
	logger   *zap.Logger
	now      func() time.Time
	loc      *time.Location
	notifier Notifier
	metrics  Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone used for "this month" in summaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithNotifier publishes session transitions.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithRecorder reports session metrics.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// NewService creates a service backed by a repository.
func NewService(repo Repository, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// clock returns the current instant at the millisecond precision the ledger keeps.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// CheckIn opens a session for userID at loc.
func (s *Service) CheckIn(ctx context.Context, userID string, loc Location) (Record, error) {
	if err := loc.Validate(); err != nil {
		return Record{}, err
	}
	active, err := s.repo.Active(ctx, userID)
	if err != nil {
		return Record{}, err
	}
	if active != nil {
		return Record{}, ErrSessionAlreadyActive
	}

	rec, err := s.repo.Insert(ctx, Record{
		ID:         uuid.NewString(),
		UserID:     userID,
		CheckIn:    s.clock(),
		LocationIn: loc,
	})
	if err != nil {
		if errors.Is(err, ErrSessionAlreadyActive) {
			s.logger.Info("concurrent check-in rejected", zap.String("user_id", userID))
		}
		return Record{}, err
	}

	s.logger.Info("checked in",
		zap.String("user_id", userID),
		zap.String("record_id", rec.ID),
	)
	if s.metrics != nil {
		s.metrics.RecordCheckIn()
	}
	s.notify(ctx, Event{Kind: EventCheckIn, RecordID: rec.ID, UserID: userID, At: rec.CheckIn, Address: loc.Address})
	return rec, nil
}

// CheckOut closes the open session recordID of userID. Records owned by
// someone else are reported as not found.
func (s *Service) CheckOut(ctx context.Context, userID, recordID string, loc Location) (Record, error) {
	if err := loc.Validate(); err != nil {
		return Record{}, err
	}
	rec, err := s.repo.GetForOwner(ctx, recordID, userID)
	if err != nil {
		return Record{}, err
	}
	if !rec.Active() {
		return Record{}, ErrSessionAlreadyClosed
	}

	at := s.clock()
	minutes, clamped := SessionMinutes(rec.CheckIn, at)
	if clamped {
		s.logger.Warn("check-out precedes check-in, duration clamped to zero",
			zap.String("record_id", rec.ID),
			zap.Time("check_in", rec.CheckIn),
			zap.Time("check_out", at),
		)
		if s.metrics != nil {
			s.metrics.RecordDurationClamped()
		}
	}

	closed, err := s.repo.Close(ctx, rec.ID, userID, at, loc, minutes)
	if err != nil {
		return Record{}, err
	}

	s.logger.Info("checked out",
		zap.String("user_id", userID),
		zap.String("record_id", closed.ID),
		zap.Int("duration_minutes", minutes),
	)
	if s.metrics != nil {
		s.metrics.RecordCheckOut(minutes)
	}
	s.notify(ctx, Event{Kind: EventCheckOut, RecordID: closed.ID, UserID: userID, At: at, Address: loc.Address, Duration: closed.Duration})
	return closed, nil
}

// Active returns the open session of userID, or nil.
func (s *Service) Active(ctx context.Context, userID string) (*Record, error) {
	return s.repo.Active(ctx, userID)
}

// ListOwn returns every record of userID, most recent check-in first.
func (s *Service) ListOwn(ctx context.Context, userID string) ([]Record, error) {
	return s.repo.List(ctx, Filter{UserID: userID})
}

// Summary aggregates the records of userID for the personal dashboard.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	records, err := s.ListOwn(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	now := s.now().In(s.loc)
	month, err := MonthWindow(now.Year(), now.Month(), s.loc)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Total: len(records)}
	for _, rec := range records {
		sum.TotalMinutes += rec.Minutes()
		if month.Contains(rec.CheckIn) {
			sum.ThisMonth++
		}
	}
	sum.TotalHours = FormatHours(sum.TotalMinutes, 1)
	avg := 0.0
	if sum.Total > 0 {
		avg = float64(sum.TotalMinutes) / 60 / float64(sum.Total)
	}
	sum.AvgHours = FormatFixed(avg, 1)
	return sum, nil
}

// notifyTimeout bounds delivery independently of the request context.
const notifyTimeout = 2 * time.Second

func (s *Service) notify(ctx context.Context, evt Event) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	s.notifier.Notify(ctx, evt)
}
