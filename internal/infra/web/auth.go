package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/adapter"
	"corporate-gifting/internal/infra/logging"
)

// ===== Staff bearer tokens =====

type AuthConfig struct {
	HMACSecret []byte
	Issuer     string
	TTL        time.Duration
}

type AuthManager struct{ cfg AuthConfig }

func NewAuthManager(secret, issuer string, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthManager{cfg: AuthConfig{
		HMACSecret: []byte(secret),
		Issuer:     issuer,
		TTL:        ttl,
	}}
}

// StaffClaims carries only the subject; role and organization are always
// resolved from the store so revocations take effect immediately.
type StaffClaims struct {
	jwt.RegisteredClaims
}

// Mint signs a token for userID. Used by seeding and tests.
func (a *AuthManager) Mint(userID string) (string, error) {
	now := time.Now()
	claims := StaffClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.HMACSecret)
}

// ParseFromRequest reads "Authorization: Bearer <jwt>" and returns the subject.
func (a *AuthManager) ParseFromRequest(r *http.Request) (string, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return "", errors.New("missing token")
	}
	if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
		return "", errors.New("malformed authorization header")
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *AuthManager) parse(tok string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.cfg.Issuer))
	}
	claims := &StaffClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.cfg.HMACSecret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// ===== Caller context =====

type callerKey struct{}

func WithCaller(ctx context.Context, c *model.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns nil for unauthenticated requests.
func CallerFrom(ctx context.Context) *model.Caller {
	c, _ := ctx.Value(callerKey{}).(*model.Caller)
	return c
}

// ErrorWriter renders a domain error; supplied by the API layer so auth failures
// share its response format.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RequireStaff authenticates the bearer token, resolves the caller's role and
// organization, and stores the caller in the request context.
func RequireStaff(auth *AuthManager, identities adapter.IdentityResolver, writeErr ErrorWriter, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logging.With(r.Context(), logger)

			userID, err := auth.ParseFromRequest(r)
			if err != nil {
				l.Debug().Err(err).Msg("rejecting unauthenticated request")
				writeErr(w, r, domain.ErrUnauthorized)
				return
			}
			caller, err := identities.Resolve(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, domain.ErrForbidden) {
					l.Error().Err(err).Str("user_id", userID).Msg("identity lookup failed")
				}
				writeErr(w, r, err)
				return
			}

			ctx := logging.WithCallerID(r.Context(), caller.UserID)
			if caller.OrganizationID != "" {
				ctx = logging.WithOrgID(ctx, caller.OrganizationID)
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(ctx, caller)))
		})
	}
}
