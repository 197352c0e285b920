// Package report aggregates the attendance ledger for administrators:
// owner-joined listings, per-volunteer totals, dashboard counters and
// spreadsheet exports.
package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/attendance"
)

// Ledger is the read side of the attendance store.
type Ledger interface {
	List(ctx context.Context, f attendance.Filter) ([]attendance.Record, error)
	Count(ctx context.Context, since time.Time) (int, error)
}

// Directory is the read side of the account store.
type Directory interface {
	GetMany(ctx context.Context, ids []string) (map[string]account.Account, error)
	CountByRole(ctx context.Context, role account.Role, activeOnly bool) (int, error)
}

// Entry is an attendance record joined with its owner.
type Entry struct {
	attendance.Record
	User account.Owner `json:"user"`
}

// UserReport totals the records of one account.
type UserReport struct {
	User            account.Owner `json:"user"`
	AttendanceCount int           `json:"attendanceCount"`
	TotalMinutes    int           `json:"totalMinutes"`
	TotalHours      string        `json:"totalHours"`
}

// Stats are the admin dashboard counters.
type Stats struct {
	TotalVolunteers  int `json:"totalVolunteers"`
	ActiveVolunteers int `json:"activeVolunteers"`
	TotalAttendances int `json:"totalAttendances"`
	TodayAttendances int `json:"todayAttendances"`
}

// Service answers the admin reporting queries.
type Service struct {
	ledger    Ledger
	directory Directory
	logger    *zap.Logger
	now       func() time.Time
	loc       *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone of local day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// NewService creates a reporting service.
func NewService(ledger Ledger, directory Directory, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		ledger:    ledger,
		directory: directory,
		logger:    logger,
		now:       time.Now,
		loc:       time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the zone used for local day and month boundaries.
func (s *Service) Location() *time.Location { return s.loc }

// Owners resolves account ids to their display projection. Unknown ids map
// to an Owner carrying only the id.
func (s *Service) Owners(ctx context.Context, ids []string) (map[string]account.Owner, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	accounts, err := s.directory.GetMany(ctx, unique)
	if err != nil {
		return nil, err
	}
	owners := make(map[string]account.Owner, len(unique))
	for _, id := range unique {
		acc, ok := accounts[id]
		if !ok {
			s.logger.Warn("attendance owner missing from directory", zap.String("user_id", id))
			owners[id] = account.Owner{ID: id}
			continue
		}
		owners[id] = acc.Owner()
	}
	return owners, nil
}

// ListAll returns the records matching f joined with their owners, most
// recent check-in first.
func (s *Service) ListAll(ctx context.Context, f attendance.Filter) ([]Entry, error) {
	records, err := s.ledger.List(ctx, f)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.UserID)
	}
	owners, err := s.Owners(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{Record: rec, User: owners[rec.UserID]})
	}
	return entries, nil
}

// Report lists the records matching f and totals them per account.
func (s *Service) Report(ctx context.Context, f attendance.Filter) ([]UserReport, error) {
	entries, err := s.ListAll(ctx, f)
	if err != nil {
		return nil, err
	}
	return Build(entries), nil
}

// Build groups entries by owner in order of first appearance. Accounts
// without entries are not reported. Open sessions count as attendances but
// add no minutes.
func Build(entries []Entry) []UserReport {
	index := make(map[string]int)
	reports := []UserReport{}
	for _, e := range entries {
		i, ok := index[e.User.ID]
		if !ok {
			i = len(reports)
			index[e.User.ID] = i
			reports = append(reports, UserReport{User: e.User})
		}
		reports[i].AttendanceCount++
		reports[i].TotalMinutes += e.Minutes()
	}
	for i := range reports {
		reports[i].TotalHours = attendance.FormatHours(reports[i].TotalMinutes, 2)
	}
	return reports
}

// Stats counts volunteers and attendances. Today starts at local midnight.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.TotalVolunteers, err = s.directory.CountByRole(ctx, account.RoleVolunteer, false); err != nil {
		return Stats{}, err
	}
	if st.ActiveVolunteers, err = s.directory.CountByRole(ctx, account.RoleVolunteer, true); err != nil {
		return Stats{}, err
	}
	if st.TotalAttendances, err = s.ledger.Count(ctx, time.Time{}); err != nil {
		return Stats{}, err
	}
	today := attendance.StartOfDay(s.now(), s.loc)
	if st.TodayAttendances, err = s.ledger.Count(ctx, today); err != nil {
		return Stats{}, err
	}
	return st, nil
}
