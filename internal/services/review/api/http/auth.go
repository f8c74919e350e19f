package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/ftcplatform/platform/internal/platform/errors"
	"github.com/ftcplatform/platform/internal/platform/requestctx"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// callerClaims is the bearer token payload. Role resolution happens upstream;
// roles arrive as claims.
type callerClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HMAC-signed bearer tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenVerifier builds a verifier. An empty issuer accepts any issuer.
func NewTokenVerifier(secret string, issuer string) (*TokenVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	return &TokenVerifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer), now: time.Now}, nil
}

// Verify parses a raw token into the caller it names.
func (v *TokenVerifier) Verify(raw string) (requestctx.Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return requestctx.Principal{}, apperrors.New(apperrors.CodeUnauthenticated, "bearer token is required")
	}
	if v == nil || len(v.secret) == 0 {
		return requestctx.Principal{}, errors.New("token verifier is not configured")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	var parsed callerClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, options...)
	if err != nil {
		return requestctx.Principal{}, mapJWTError(err)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return requestctx.Principal{}, apperrors.New(apperrors.CodeUnauthenticated, "token subject is required")
	}
	return requestctx.Principal{UserID: parsed.Subject, Roles: parsed.Roles}, nil
}

// Issue signs a token for subject. It backs local tooling and tests.
func (v *TokenVerifier) Issue(subject string, roles []string, ttl time.Duration) (string, error) {
	if v == nil || len(v.secret) == 0 {
		return "", errors.New("token verifier is not configured")
	}
	now := v.now().UTC()
	claims := callerClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "bearer token is expired", err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "bearer token signature is invalid", err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "bearer token issuer mismatch", err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "bearer token alg is invalid", err)
	default:
		return apperrors.Wrap(apperrors.CodeUnauthenticated, "bearer token is invalid", err)
	}
}

// authenticate resolves the bearer token into a principal on the request
// context. /healthz stays public.
func authenticate(verifier *TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			writeError(w, r, apperrors.New(apperrors.CodeUnauthenticated, "bearer token is required"))
			return
		}
		principal, err := verifier.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(requestctx.WithPrincipal(r.Context(), principal)))
	})
}

func callerFrom(r *http.Request) requestctx.Principal {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	return principal
}

func permissionDenied(action string) error {
	return apperrors.New(apperrors.CodePermissionDenied, action+" requires additional permissions")
}

// requireAdmin reports false after writing a 403 when the caller is not an admin.
func requireAdmin(w http.ResponseWriter, r *http.Request, action string) bool {
	if callerFrom(r).IsAdmin() {
		return true
	}
	writeError(w, r, permissionDenied(action))
	return false
}

func isStaff(caller requestctx.Principal) bool {
	return caller.IsAdmin() || caller.HasRole(requestctx.RoleReviewer)
}

// requireStaff admits admins and reviewers.
func requireStaff(w http.ResponseWriter, r *http.Request, action string) bool {
	if isStaff(callerFrom(r)) {
		return true
	}
	writeError(w, r, permissionDenied(action))
	return false
}
