package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, acc Account) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetMany(ctx context.Context, ids []string) (map[string]Account, error)
	ListByRole(ctx context.Context, role Role) ([]Account, error)
	CountByRole(ctx context.Context, role Role, activeOnly bool) (int, error)
	ToggleActive(ctx context.Context, id string) (Account, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

const (
	uniqueViolation  = "23505"
	emailUniqueIndex = "users_email_unique"
)

const accountColumns = `id, name, email, password_hash, role, active, created_at, updated_at`

// PostgresRepository stores accounts in the users table.
type PostgresRepository struct {
	db *sql.DB
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a repo.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account, assigning an id when missing.
func (r *PostgresRepository) Create(ctx context.Context, acc Account) (Account, error) {
	if acc.ID == "" {
		acc.ID = uuid.NewString()
	}
	if acc.Role == "" {
		acc.Role = RoleVolunteer
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+accountColumns,
		acc.ID, acc.Name, acc.Email, acc.PasswordHash, string(acc.Role), acc.Active)
	created, err := scanAccount(row)
	if err != nil {
		return Account{}, translateCreateErr(err)
	}
	return created, nil
}

// translateCreateErr maps a duplicate email to ErrEmailTaken; other
// violations pass through unchanged.
func translateCreateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == emailUniqueIndex {
		return ErrEmailTaken
	}
	return err
}

// GetByID returns a single account by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Account{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	return scanAccount(row)
}

// GetByEmail returns the account registered under a normalized email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM users WHERE email = $1`, email)
	return scanAccount(row)
}

// GetMany returns the accounts among ids keyed by id. Unknown ids are skipped.
func (r *PostgresRepository) GetMany(ctx context.Context, ids []string) (map[string]Account, error) {
	out := make(map[string]Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM users WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out[acc.ID] = acc
	}
	return out, rows.Err()
}

// ListByRole returns accounts with role, newest first.
func (r *PostgresRepository) ListByRole(ctx context.Context, role Role) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM users
		WHERE role = $1
		ORDER BY created_at DESC
	`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	accounts := []Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// CountByRole counts accounts with role, optionally only active ones.
func (r *PostgresRepository) CountByRole(ctx context.Context, role Role, activeOnly bool) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE role = $1 AND ($2 = FALSE OR active = TRUE)
	`, string(role), activeOnly).Scan(&n)
	return n, err
}

// ToggleActive flips the active flag of a volunteer in one statement.
// Admin rows never match, so callers see ErrNotFound for them.
func (r *PostgresRepository) ToggleActive(ctx context.Context, id string) (Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Account{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET active = NOT active, updated_at = NOW()
		WHERE id = $1 AND role = $2
		RETURNING `+accountColumns, id, string(RoleVolunteer))
	return scanAccount(row)
}

// UpdatePassword replaces the stored hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, id, hash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (Account, error) {
	var acc Account
	var role string
	if err := row.Scan(&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &role, &acc.Active, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	acc.Role = Role(role)
	acc.CreatedAt = acc.CreatedAt.UTC()
	acc.UpdatedAt = acc.UpdatedAt.UTC()
	return acc, nil
}
