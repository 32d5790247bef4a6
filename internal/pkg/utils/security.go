package utils

import (
	"errors"
	"koppeltaal-service/internal/pkg/exceptions"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type LaunchStateClaims struct {
	SessionID string `json:"sid"`
	Issuer    string `json:"iss_server"`
	Launch    string `json:"launch"`
	jwt.RegisteredClaims
}

// GenerateLaunchStateJWT signs the OAuth state carried through the authorize
// redirect, binding it to a launch session.
func GenerateLaunchStateJWT(sessionID, issuer, launch, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := LaunchStateClaims{
		SessionID: sessionID,
		Issuer:    issuer,
		Launch:    launch,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", exceptions.ErrStateInvalid(err)
	}
	return tokenString, nil
}

func ParseLaunchStateJWT(tokenString, secret string) (*LaunchStateClaims, error) {
	claims := new(LaunchStateClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, exceptions.ErrStateInvalid(err)
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, exceptions.ErrStateInvalid(errors.New("invalid state token"))
	}
	return claims, nil
}

// ReadUnverifiedExpiry returns the exp claim of a JWT access token without
// checking its signature. Opaque tokens report false.
func ReadUnverifiedExpiry(tokenString string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	_, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims)
	if err != nil {
		return time.Time{}, false
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(int64(exp), 0), true
}
