// Package auth issues and validates browser session tokens.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName carries the session token between browser and server.
const CookieName = "fitclass_session"

// Roles granted to a session.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Config holds signing parameters for session tokens.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims represents the authenticated account bound to a browsing session.
type Claims struct {
	AccountID string
	Email     string
	FirstName string
	Role      string
	ExpiresAt time.Time
}

// IsAdmin reports whether the session carries the admin role.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// ErrNoSession is returned when the session cookie is absent.
var ErrNoSession = errors.New("no active session")

// ErrInvalidSession wraps parsing/validation errors.
var ErrInvalidSession = errors.New("invalid session token")

// Manager signs and verifies session tokens.
type Manager struct {
	cfg Config
}

// NewManager constructs a Manager.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// Issue signs a token for the account and sets it as an HttpOnly cookie.
func (m *Manager) Issue(w http.ResponseWriter, claims Claims) error {
	expires := time.Now().Add(m.cfg.TTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        claims.AccountID,
		"email":      claims.Email,
		"first_name": claims.FirstName,
		"role":       claims.Role,
		"iss":        m.cfg.Issuer,
		"exp":        expires.Unix(),
		"iat":        time.Now().Unix(),
	})

	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie, ending the session.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest extracts and validates the session claims from the cookie.
func (m *Manager) FromRequest(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	return m.parse(cookie.Value)
}

func (m *Manager) parse(token string) (*Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	}, jwt.WithIssuer(m.cfg.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	accountID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if accountID == "" || email == "" {
		return nil, ErrInvalidSession
	}

	firstName, _ := claims["first_name"].(string)
	role, _ := claims["role"].(string)
	if role == "" {
		role = RoleMember
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidSession
	}

	return &Claims{
		AccountID: accountID,
		Email:     email,
		FirstName: firstName,
		Role:      role,
		ExpiresAt: exp.Time,
	}, nil
}
