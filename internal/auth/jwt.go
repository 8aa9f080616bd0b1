package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/td-airways/flightdesk/internal/domain"
)

// Claims carries the contact snapshot bookings are created from.
type Claims struct {
	UserID    string      `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	PhoneNo   string      `json:"phone_no"`
	Role      domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Snapshot() domain.ContactSnapshot {
	return domain.ContactSnapshot{
		UserID:    c.UserID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		PhoneNo:   c.PhoneNo,
	}
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Issue(user *domain.User) (string, error) {
	claims := Claims{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		PhoneNo:   user.PhoneNo,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	return claims, nil
}
