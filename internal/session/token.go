package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var ErrInvalidToken = errors.New("token inválido ou expirado")

// Claims are embedded in every access and refresh token. ID (jti) is what
// logout revokes.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// Subject is the identity a token is issued for.
type Subject struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Issue signs a fresh access/refresh pair for sub.
func (i *Issuer) Issue(sub Subject) (*TokenPair, error) {
	access, err := i.sign(sub, TokenAccess, i.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(sub, TokenRefresh, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: i.accessTTL}, nil
}

func (i *Issuer) sign(sub Subject, typ string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Email: sub.Email,
		Name:  sub.Name,
		Role:  sub.Role,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies tokenStr and requires it to be of type typ.
func (i *Issuer) Parse(tokenStr, typ string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Type != typ {
		return nil, fmt.Errorf("%w: tipo %q", ErrInvalidToken, claims.Type)
	}
	return claims, nil
}

// FromClaims builds the request session from verified claims.
func FromClaims(c *Claims) (*Session, error) {
	uid, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject", ErrInvalidToken)
	}
	s := &Session{
		userID:  uid,
		email:   c.Email,
		name:    c.Name,
		role:    c.Role,
		tokenID: c.ID,
	}
	if c.ExpiresAt != nil {
		s.expiresAt = c.ExpiresAt.Time
	}
	return s, nil
}
