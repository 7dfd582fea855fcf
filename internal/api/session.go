package api

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookieName = "driplog_session"
	sessionSubject    = "owner"
	sessionTTL        = 7 * 24 * time.Hour
)

var errInvalidSession = errors.New("invalid session token")

func (handler *Handler) issueSessionToken(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sessionSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.secretKey)
}

func (handler *Handler) parseSessionToken(raw string) error {
	if raw == "" {
		return errInvalidSession
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidSession
		}
		return handler.secretKey, nil
	})
	if err != nil || !token.Valid || claims.Subject != sessionSubject {
		return errInvalidSession
	}
	return nil
}
