package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "vocabquiz"

// Claims are the bearer token claims. The subject is the learner id.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 bearer tokens.
type Authenticator struct {
	hmac []byte
	ttl  time.Duration
	now  func() time.Time
}

// NewAuthenticator returns an Authenticator signing with secret.
func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{hmac: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for learner.
func (a *Authenticator) Issue(learner string) (string, error) {
	if learner == "" {
		return "", errors.New("issue token: empty learner")
	}
	now := a.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   learner,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(a.hmac)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenStr and returns its claims.
func (a *Authenticator) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (any, error) {
		return a.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return c, nil
}

type learnerKey struct{}

// WithLearner returns a context carrying the learner id.
func WithLearner(ctx context.Context, learner string) context.Context {
	return context.WithValue(ctx, learnerKey{}, learner)
}

// LearnerFrom returns the learner id stored by the auth middleware.
func LearnerFrom(ctx context.Context) (string, bool) {
	l, ok := ctx.Value(learnerKey{}).(string)
	return l, ok && l != ""
}

// Middleware rejects requests without a valid bearer token and stores the
// token subject as the learner id.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer")
			return
		}
		claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "bad token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithLearner(r.Context(), claims.Subject)))
	})
}
