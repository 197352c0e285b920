package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/attendance"
)

var site = attendance.Location{Lat: 4.6, Lng: -74.08, Address: "Sede"}

func minutes(n int) *int { return &n }

func TestBuild_GroupsByOwner(t *testing.T) {
	u1 := account.Owner{ID: "U1", Name: "Ana", Email: "ana@example.com", Active: true}
	u2 := account.Owner{ID: "U2", Name: "Luis", Email: "luis@example.com", Active: true}
	entries := []Entry{
		{Record: attendance.Record{ID: "a", UserID: "U1", Duration: minutes(60)}, User: u1},
		{Record: attendance.Record{ID: "b", UserID: "U1"}, User: u1},
		{Record: attendance.Record{ID: "c", UserID: "U2", Duration: minutes(30)}, User: u2},
	}

	got := Build(entries)
	want := []UserReport{
		{User: u1, AttendanceCount: 2, TotalMinutes: 60, TotalHours: "1.00"},
		{User: u2, AttendanceCount: 1, TotalMinutes: 30, TotalHours: "0.50"},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("report[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBuild_Empty(t *testing.T) {
	got := Build(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("Build(nil) = %#v, want empty slice", got)
	}
}

type fixture struct {
	svc      *Service
	accounts *account.MemoryRepository
	ledger   *attendance.MemoryRepository
	now      time.Time
	loc      *time.Location
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	loc := time.FixedZone("COT", -5*3600)
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, loc)
	accounts := account.NewMemoryRepository()
	ledger := attendance.NewMemoryRepository()
	svc := NewService(ledger, accounts, nil,
		WithClock(func() time.Time { return now }),
		WithLocation(loc),
	)
	return fixture{svc: svc, accounts: accounts, ledger: ledger, now: now, loc: loc}
}

func (f fixture) volunteer(t *testing.T, name string, active bool) account.Account {
	t.Helper()
	acc, err := f.accounts.Create(context.Background(), account.Account{
		Name:   name,
		Email:  name + "@example.com",
		Role:   account.RoleVolunteer,
		Active: active,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return acc
}

// session stores a closed record for userID.
func (f fixture) session(t *testing.T, userID string, in time.Time, d time.Duration) attendance.Record {
	t.Helper()
	ctx := context.Background()
	rec, err := f.ledger.Insert(ctx, attendance.Record{UserID: userID, CheckIn: in, LocationIn: site})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	closed, err := f.ledger.Close(ctx, rec.ID, userID, in.Add(d), site, int(d/time.Minute))
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	return closed
}

func TestListAll_JoinsOwnersNewestFirst(t *testing.T) {
	f := newFixture(t)
	ana := f.volunteer(t, "ana", true)
	luis := f.volunteer(t, "luis", false)
	older := f.session(t, ana.ID, f.now.Add(-48*time.Hour), time.Hour)
	newer := f.session(t, luis.ID, f.now.Add(-24*time.Hour), time.Hour)

	entries, err := f.svc.ListAll(context.Background(), attendance.Filter{})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[0].ID != newer.ID || entries[1].ID != older.ID {
		t.Fatalf("order = %s, %s", entries[0].ID, entries[1].ID)
	}
	if entries[0].User != luis.Owner() || entries[1].User != ana.Owner() {
		t.Fatalf("owners = %+v, %+v", entries[0].User, entries[1].User)
	}
}

func TestListAll_MonthFilterBoundaries(t *testing.T) {
	f := newFixture(t)
	ana := f.volunteer(t, "ana", true)
	f.session(t, ana.ID, time.Date(2025, 2, 28, 23, 59, 59, 0, f.loc), time.Minute)
	march := f.session(t, ana.ID, time.Date(2025, 3, 1, 0, 0, 0, 0, f.loc), time.Minute)

	w, err := attendance.MonthWindow(2025, time.March, f.loc)
	if err != nil {
		t.Fatalf("MonthWindow: %v", err)
	}
	entries, err := f.svc.ListAll(context.Background(), attendance.Filter{Window: w})
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != march.ID {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestReport_ExcludesIdleAccounts(t *testing.T) {
	f := newFixture(t)
	ana := f.volunteer(t, "ana", true)
	f.volunteer(t, "idle", true)
	f.session(t, ana.ID, f.now.Add(-time.Hour), 45*time.Minute)

	reports, err := f.svc.Report(context.Background(), attendance.Filter{})
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(reports) != 1 || reports[0].User.ID != ana.ID || reports[0].TotalHours != "0.75" {
		t.Fatalf("reports = %+v", reports)
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st != (Stats{}) {
		t.Fatalf("empty stats = %+v", st)
	}

	ana := f.volunteer(t, "ana", true)
	f.volunteer(t, "off", false)
	if _, err := f.accounts.Create(ctx, account.Account{Name: "root", Email: "root@example.com", Role: account.RoleAdmin, Active: true}); err != nil {
		t.Fatalf("Create admin: %v", err)
	}
	f.session(t, ana.ID, f.now.Add(-30*time.Hour), time.Hour)

	before, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := Stats{TotalVolunteers: 2, ActiveVolunteers: 1, TotalAttendances: 1, TodayAttendances: 0}
	if before != want {
		t.Fatalf("stats = %+v, want %+v", before, want)
	}

	// today in local time, even though it is still yesterday in some zones
	f.session(t, ana.ID, time.Date(2025, 3, 12, 0, 30, 0, 0, f.loc), time.Hour)
	after, err := f.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if after.TotalAttendances != before.TotalAttendances+1 || after.TodayAttendances != before.TodayAttendances+1 {
		t.Fatalf("after = %+v, before = %+v", after, before)
	}
	if after.TotalVolunteers != before.TotalVolunteers || after.ActiveVolunteers != before.ActiveVolunteers {
		t.Fatalf("volunteer counts changed: %+v", after)
	}
}

type failingLedger struct{ err error }

func (l failingLedger) List(context.Context, attendance.Filter) ([]attendance.Record, error) {
	return nil, l.err
}

func (l failingLedger) Count(context.Context, time.Time) (int, error) { return 0, l.err }

func TestListAll_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(failingLedger{err: boom}, account.NewMemoryRepository(), nil)
	if _, err := svc.ListAll(context.Background(), attendance.Filter{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, err := svc.Stats(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
