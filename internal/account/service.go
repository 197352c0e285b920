package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/apperr"
)

// Hasher derives and checks password digests.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenIssuer signs bearer credentials for an account.
type TokenIssuer interface {
	Issue(accountID string, role Role) (token string, expiresAt time.Time, err error)
}

// Session is the result of a successful register or login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Account   `json:"user"`
}

// Service implements registration, login and the admin roster operations.
type Service struct {
	repo   Repository
	hasher Hasher
	tokens TokenIssuer
	logger *zap.Logger
}

// NewService creates a service backed by a repository.
func NewService(repo Repository, hasher Hasher, tokens TokenIssuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, hasher: hasher, tokens: tokens, logger: logger}
}

// Register creates a volunteer account and signs a token for it.
func (s *Service) Register(ctx context.Context, in Registration) (Session, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Session{}, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	acc, err := s.repo.Create(ctx, Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         RoleVolunteer,
		Active:       true,
	})
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("account registered", zap.String("account_id", acc.ID))
	return s.session(acc)
}

// Login checks credentials and signs a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, apperr.Validation("email and password are required")
	}
	acc, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !s.hasher.Verify(password, acc.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}
	if !acc.Active {
		return Session{}, ErrDisabled
	}
	return s.session(acc)
}

// Get returns an account by id.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.repo.GetByID(ctx, id)
}

// ChangePassword replaces the password of the calling account.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	if err := ValidatePassword(next); err != nil {
		return err
	}
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, acc.PasswordHash) {
		return ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	s.logger.Info("password changed", zap.String("account_id", id))
	return nil
}

// ListVolunteers returns volunteer accounts, newest first.
func (s *Service) ListVolunteers(ctx context.Context) ([]Account, error) {
	return s.repo.ListByRole(ctx, RoleVolunteer)
}

// ToggleActive flips the active flag of a volunteer. Admin targets are refused.
func (s *Service) ToggleActive(ctx context.Context, id string) (Account, error) {
	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if target.Role == RoleAdmin {
		return Account{}, ErrCannotDisableAdmin
	}
	acc, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return Account{}, err
	}
	s.logger.Info("volunteer active flag toggled",
		zap.String("account_id", acc.ID),
		zap.Bool("active", acc.Active),
	)
	return acc, nil
}

// EnsureAdmin creates an administrator unless the email is already registered.
// created is false when an account with that email exists.
func (s *Service) EnsureAdmin(ctx context.Context, in Registration) (acc Account, created bool, err error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Account{}, false, err
	}
	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Account{}, false, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Account{}, false, fmt.Errorf("hash password: %w", err)
	}
	acc, err = s.repo.Create(ctx, Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         RoleAdmin,
		Active:       true,
	})
	if errors.Is(err, ErrEmailTaken) {
		existing, getErr := s.repo.GetByEmail(ctx, in.Email)
		return existing, false, getErr
	}
	if err != nil {
		return Account{}, false, err
	}
	return acc, true, nil
}

func (s *Service) session(acc Account) (Session, error) {
	token, exp, err := s.tokens.Issue(acc.ID, acc.Role)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: token, ExpiresAt: exp, User: acc}, nil
}
