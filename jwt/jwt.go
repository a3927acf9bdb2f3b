package jwt

import (
	"errors"
	"strconv"
	"time"

	"KinderTube/apperrors"
	"KinderTube/models"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 7 * 24 * time.Hour

type Claims struct {
	ParentID uint            `json:"parent_id"`
	Email    string          `json:"email"`
	UserType models.UserType `json:"user_type"`
	Role     models.Role     `json:"role"`
	jwtv5.RegisteredClaims
}

// Caller converts the claims into the identity carried through the request.
func (c *Claims) Caller() models.Caller {
	return models.Caller{ParentID: c.ParentID, UserType: c.UserType, Role: c.Role}
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for parent in the given session mode.
func (m *Manager) Issue(parent models.Parent, userType models.UserType) (string, error) {
	now := m.now()
	claims := Claims{
		ParentID: parent.ID,
		Email:    parent.Email,
		UserType: userType,
		Role:     parent.Role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(parent.ID), 10),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", apperrors.Internal("failed to sign token", err)
	}
	return token, nil
}

func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwtv5.ParseWithClaims(tokenString, claims, func(t *jwtv5.Token) (interface{}, error) {
		return m.secret, nil
	}, jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}), jwtv5.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, apperrors.Unauthorized("token expired")
		}
		return nil, apperrors.Unauthorized("invalid token")
	}
	if !token.Valid || claims.ParentID == 0 || !claims.UserType.Valid() {
		return nil, apperrors.Unauthorized("invalid token")
	}
	return claims, nil
}
