package auth

import (
	"errors"
	"strconv"
	"time"

	"folioauth/model"
	"github.com/golang-jwt/jwt/v5"
)

type AccessClaims struct {
	Email    string `json:"email"`
	FullName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies the signed access tokens that represent an
// admin session after the login flow (password plus any second factor) has
// fully succeeded.
type TokenService struct {
	issuer string
	secret []byte
	maxAge time.Duration
}

func (s *TokenService) IssueAccessToken(user *model.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	var claims AccessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}

func NewTokenService(issuer string, secret string, maxAge time.Duration) *TokenService {
	return &TokenService{
		issuer: issuer,
		secret: []byte(secret),
		maxAge: maxAge,
	}
}
