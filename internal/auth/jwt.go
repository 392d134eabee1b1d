package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers bad signatures, malformed tokens and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// ClaimIsAdmin is the extra claim carrying the admin flag.
const ClaimIsAdmin = "is_admin"

// Manager encapsulates JWT generation and validation.
type Manager struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a new JWT manager for an HMAC algorithm (HS256, HS384, HS512).
func NewManager(secret, algorithm string, ttl time.Duration) (*Manager, error) {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	alg := strings.TrimSpace(algorithm)
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{
		secret: []byte(trimmed),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for subject with the configured default ttl.
func (m *Manager) Issue(subject string, extra map[string]any) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	return m.IssueWithTTL(subject, extra, m.ttl)
}

// IssueWithTTL signs a token that expires ttl from now. A negative ttl
// produces a token that is already expired.
func (m *Manager) IssueWithTTL(subject string, extra map[string]any, ttl time.Duration) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("jwt manager is nil")
	}
	if strings.TrimSpace(subject) == "" {
		return "", time.Time{}, errors.New("token subject must not be empty")
	}
	now := m.now().UTC()
	expiry := now.Add(ttl)

	claims := jwt.MapClaims{}
	for k, v := range extra {
		claims[k] = v
	}
	// registered claims always win over extras
	claims["sub"] = subject
	claims["iat"] = now.Unix()
	claims["exp"] = expiry.Unix()

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, time.Unix(expiry.Unix(), 0).UTC(), nil
}

// Verify validates signature, algorithm and expiry and returns the claims.
func (m *Manager) Verify(tokenString string) (jwt.MapClaims, error) {
	if m == nil {
		return nil, errors.New("jwt manager is nil")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Subject extracts the sub claim, failing with ErrInvalidToken when absent.
func Subject(claims jwt.MapClaims) (string, error) {
	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return sub, nil
}
