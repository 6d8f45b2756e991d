package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ProfileTokens signs the cookie that identifies a browser profile.
type ProfileTokens interface {
	Issue() (profileID string, token string, err error)
	Parse(token string) (string, error)
}

type profileTokens struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

// NewProfileTokens returns HS256 tokens. A zero duration issues tokens without expiry.
func NewProfileTokens(secret string, duration time.Duration) ProfileTokens {
	return &profileTokens{
		secret:   []byte(secret),
		duration: duration,
		now:      time.Now,
	}
}

func (t *profileTokens) Issue() (string, string, error) {
	profileID := uuid.New().String()
	now := t.now()

	claims := jwt.RegisteredClaims{
		Subject:  profileID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if t.duration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.duration))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return profileID, token, nil
}

func (t *profileTokens) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", fmt.Errorf("ошибка парсинга токена: %w", err)
	}

	if !token.Valid {
		return "", errors.New("недействительный токен")
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("неверный идентификатор профиля: %w", err)
	}

	return claims.Subject, nil
}
