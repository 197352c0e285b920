package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Filter narrows ledger listings. Zero values mean "no constraint".
type Filter struct {
	UserID string
	Window Window
	Limit  int
	Offset int
}

// Repository persists attendance records.
type Repository interface {
	// Insert stores a new open record. It fails with ErrSessionAlreadyActive
	// when the owner already has an open record.
	Insert(ctx context.Context, rec Record) (Record, error)
	Active(ctx context.Context, userID string) (*Record, error)
	GetForOwner(ctx context.Context, id, userID string) (Record, error)
	// Close sets the check-out fields of an open record owned by userID. It
	// fails with ErrSessionAlreadyClosed when the record was closed meanwhile.
	Close(ctx context.Context, id, userID string, at time.Time, loc Location, minutes int) (Record, error)
	List(ctx context.Context, f Filter) ([]Record, error)
	Count(ctx context.Context, since time.Time) (int, error)
}

const (
	uniqueViolation    = "23505"
	activeSessionIndex = "attendance_one_active_per_user"
)

const recordColumns = `id, user_id, check_in, lat_in, lng_in, address_in,
	check_out, lat_out, lng_out, address_out, duration_minutes, created_at, updated_at`

// PostgresRepository persists attendance data in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a repo.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert writes a new open record. The partial unique index on
// (user_id) WHERE check_out IS NULL rejects a second open record.
func (r *PostgresRepository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CheckIn.IsZero() {
		rec.CheckIn = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, user_id, check_in, lat_in, lng_in, address_in)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+recordColumns,
		rec.ID, rec.UserID, rec.CheckIn, rec.LocationIn.Lat, rec.LocationIn.Lng, rec.LocationIn.Address)
	created, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == activeSessionIndex {
			return Record{}, ErrSessionAlreadyActive
		}
		return Record{}, err
	}
	return created, nil
}

// Active returns the open record of userID, or nil.
func (r *PostgresRepository) Active(ctx context.Context, userID string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE user_id = $1 AND check_out IS NULL
	`, userID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// GetForOwner returns record id when it belongs to userID.
func (r *PostgresRepository) GetForOwner(ctx context.Context, id, userID string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	return scanRecord(row)
}

// Close records the check-out only while the record is still open.
func (r *PostgresRepository) Close(ctx context.Context, id, userID string, at time.Time, loc Location, minutes int) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_records
		SET check_out = $3, lat_out = $4, lng_out = $5, address_out = $6,
			duration_minutes = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND check_out IS NULL
		RETURNING `+recordColumns,
		id, userID, at, loc.Lat, loc.Lng, loc.Address, minutes)
	rec, err := scanRecord(row)
	if errors.Is(err, ErrNotFound) {
		if _, getErr := r.GetForOwner(ctx, id, userID); getErr != nil {
			return Record{}, getErr
		}
		return Record{}, ErrSessionAlreadyClosed
	}
	return rec, err
}

// List returns records matching f, most recent check-in first.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Record, error) {
	if f.UserID != "" {
		if _, err := uuid.Parse(f.UserID); err != nil {
			return []Record{}, nil
		}
	}
	query := `SELECT ` + recordColumns + ` FROM attendance_records`
	args := []any{}
	clauses := []string{}
	if f.UserID != "" {
		args = append(args, f.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if !f.Window.From.IsZero() {
		args = append(args, f.Window.From)
		clauses = append(clauses, fmt.Sprintf("check_in >= $%d", len(args)))
	}
	if !f.Window.To.IsZero() {
		args = append(args, f.Window.To)
		clauses = append(clauses, fmt.Sprintf("check_in <= $%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY check_in DESC, id"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// Count returns the number of records with check-in at or after since.
// A zero since counts the whole ledger.
func (r *PostgresRepository) Count(ctx context.Context, since time.Time) (int, error) {
	var n int
	var err error
	if since.IsZero() {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_records`).Scan(&n)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance_records WHERE check_in >= $1`, since).Scan(&n)
	}
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec        Record
		checkOut   sql.NullTime
		latOut     sql.NullFloat64
		lngOut     sql.NullFloat64
		addressOut sql.NullString
		duration   sql.NullInt64
	)
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.CheckIn, &rec.LocationIn.Lat, &rec.LocationIn.Lng, &rec.LocationIn.Address,
		&checkOut, &latOut, &lngOut, &addressOut, &duration, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.CheckIn = rec.CheckIn.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	if checkOut.Valid {
		t := checkOut.Time.UTC()
		rec.CheckOut = &t
		rec.LocationOut = &Location{Lat: latOut.Float64, Lng: lngOut.Float64, Address: addressOut.String}
	}
	if duration.Valid {
		d := int(duration.Int64)
		rec.Duration = &d
	}
	return rec, nil
}
