package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"rocket-admin/internal/config"
)

const (
	SessionCookie = "rocket_session"
	CSRFCookie    = "rocket_csrf"
	CSRFField     = "_csrf"

	purposeSession = "session"
	purposeCSRF    = "csrf"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrTokenMismatch = errors.New("form token does not match cookie")
)

// Claims represents the JWT claims of both session and CSRF tokens. Purpose
// keeps one kind from being accepted as the other.
type Claims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
}

// Manager issues and verifies signed session and CSRF tokens. Tokens are
// stateless; rotating the secret is the only way to revoke them.
type Manager struct {
	secret     []byte
	sessionTTL time.Duration
	csrfTTL    time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(cfg config.AuthConfig) *Manager {
	return &Manager{
		secret:     []byte(cfg.Secret),
		sessionTTL: cfg.SessionTTL,
		csrfTTL:    cfg.CSRFTTL,
		secure:     cfg.SecureCookies,
		now:        time.Now,
	}
}

// IssueSession creates a signed session token for an admin user.
func (m *Manager) IssueSession(userID, email string) (string, error) {
	return m.sign(userID, email, purposeSession, m.sessionTTL)
}

// VerifySession validates a session token, returning its claims.
func (m *Manager) VerifySession(token string) (*Claims, error) {
	return m.parse(token, purposeSession)
}

// IssueCSRF creates a CSRF token bound to subject, the session's user id or
// "" before login.
func (m *Manager) IssueCSRF(subject string) (string, error) {
	return m.sign(subject, "", purposeCSRF, m.csrfTTL)
}

// VerifyCSRF requires the cookie and form tokens to be equal and the token to
// be a valid, unexpired CSRF token for subject.
func (m *Manager) VerifyCSRF(cookieToken, fieldToken, subject string) error {
	if cookieToken == "" || fieldToken == "" {
		return ErrTokenMismatch
	}
	if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(fieldToken)) != 1 {
		return ErrTokenMismatch
	}
	claims, err := m.parse(cookieToken, purposeCSRF)
	if err != nil {
		return err
	}
	if claims.Subject != subject {
		return ErrInvalidToken
	}
	return nil
}

func (m *Manager) sign(subject, email, purpose string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:   email,
		Purpose: purpose,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", purpose, err)
	}
	return signed, nil
}

func (m *Manager) parse(tokenStr, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Purpose != purpose {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword hashes a plaintext password with bcrypt. Passwords over 72
// bytes are rejected rather than silently truncated.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
