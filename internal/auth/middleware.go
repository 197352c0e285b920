package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/apperr"
)

var (
	ErrUnauthenticated = apperr.New(apperr.KindUnauthenticated, "UNAUTHENTICATED", "not authorized, no token")
	ErrInvalidToken    = apperr.New(apperr.KindUnauthenticated, "INVALID_TOKEN", "not authorized, invalid token")
	ErrAccountNotFound = apperr.New(apperr.KindUnauthenticated, "USER_NOT_FOUND", "user not found")
	ErrAccountDisabled = account.ErrDisabled
	ErrForbidden       = apperr.New(apperr.KindForbidden, "FORBIDDEN", "not authorized for this action")
)

const (
	accountKey = "auth.account"
	claimsKey  = "auth.claims"
)

// Directory resolves token subjects to accounts.
type Directory interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// ErrorWriter renders an authentication failure and aborts the request.
type ErrorWriter func(c *gin.Context, err error)

// Gate resolves bearer credentials to accounts.
type Gate struct {
	tokens    *TokenManager
	denylist  Denylist
	directory Directory
	logger    *zap.Logger
	writeErr  ErrorWriter
}

// NewGate builds the access gate. A nil denylist disables revocation checks;
// a nil writer renders errors as {success:false, message}.
func NewGate(tokens *TokenManager, denylist Denylist, directory Directory, logger *zap.Logger, writeErr ErrorWriter) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writeErr == nil {
		writeErr = defaultErrorWriter
	}
	return &Gate{tokens: tokens, denylist: denylist, directory: directory, logger: logger, writeErr: writeErr}
}

func defaultErrorWriter(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Wrap(ErrInvalidToken, err)
	}
	c.AbortWithStatusJSON(e.Kind.Status(), gin.H{"success": false, "message": e.Message})
}

// Authenticate resolves a raw bearer token to its account.
func (g *Gate) Authenticate(ctx context.Context, token string) (account.Account, Claims, error) {
	if token == "" {
		return account.Account{}, Claims{}, ErrUnauthenticated
	}
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return account.Account{}, Claims{}, apperr.Wrap(ErrInvalidToken, err)
	}
	if g.denylist != nil && claims.ID != "" {
		revoked, err := g.denylist.Revoked(ctx, claims.ID)
		if err != nil {
			return account.Account{}, Claims{}, err
		}
		if revoked {
			return account.Account{}, Claims{}, ErrInvalidToken
		}
	}
	acc, err := g.directory.GetByID(ctx, claims.AccountID())
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Account{}, Claims{}, ErrAccountNotFound
		}
		return account.Account{}, Claims{}, err
	}
	if !acc.Active {
		return account.Account{}, Claims{}, ErrAccountDisabled
	}
	return acc, claims, nil
}

// Revoke denylists the token described by claims until it expires.
func (g *Gate) Revoke(ctx context.Context, claims Claims) error {
	if g.denylist == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return g.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Middleware enforces bearer JWT tokens and stores the account on the context.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, claims, err := g.Authenticate(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				g.logger.Error("authenticate", zap.Error(err))
			}
			g.writeErr(c, err)
			c.Abort()
			return
		}
		c.Set(accountKey, acc)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole lets the request through only for accounts holding role.
func (g *Gate) RequireRole(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := CheckRole(CurrentAccount(c), role); err != nil {
			g.writeErr(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CheckRole fails with ErrForbidden unless acc holds role.
func CheckRole(acc account.Account, role account.Role) error {
	if acc.Role != role {
		return ErrForbidden
	}
	return nil
}

// CurrentAccount returns the account stored by Middleware.
func CurrentAccount(c *gin.Context) account.Account {
	v, _ := c.Get(accountKey)
	acc, _ := v.(account.Account)
	return acc
}

// CurrentClaims returns the token claims stored by Middleware.
func CurrentClaims(c *gin.Context) Claims {
	v, _ := c.Get(claimsKey)
	claims, _ := v.(Claims)
	return claims
}

func bearerToken(header string) string {
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("bearer "):])
}
