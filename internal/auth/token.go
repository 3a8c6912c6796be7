package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/liAmirali/UIFP-final-project/internal/models"
	"github.com/liAmirali/UIFP-final-project/internal/services"
)

const devSecret = "ems-dev-secret"

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Signer issues and checks the session tokens handed out at login.
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	if secret == "" {
		secret = devSecret
	}
	return &Signer{secret: []byte(secret), now: time.Now}
}

func (s *Signer) Sign(username string, role models.Role, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Username: username,
		Role:     string(rune(role)),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Signer) Parse(tok string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tok, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, ErrInvalidToken
}

// Identity parses tok and returns the caller it was issued to.
func (s *Signer) Identity(tok string) (services.Identity, error) {
	c, err := s.Parse(tok)
	if err != nil {
		return services.Identity{}, err
	}
	if len(c.Role) != 1 || !models.Role(c.Role[0]).Valid() || c.Username == "" {
		return services.Identity{}, ErrInvalidToken
	}
	return services.Identity{Username: c.Username, Role: models.Role(c.Role[0])}, nil
}

// Expired reports whether err came from an expired token.
func Expired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
