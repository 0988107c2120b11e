package main

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const tokenIssuer = "fertadvisor"

// signJWT creates an HS256 token for userID valid for ttl.
func signJWT(secret string, userID primitive.ObjectID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// parseJWT validates the token and returns its subject as an ObjectID.
func parseJWT(secret, tokenStr string) (primitive.ObjectID, error) {
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return primitive.NilObjectID, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return primitive.NilObjectID, errors.New("no subject")
	}
	return primitive.ObjectIDFromHex(claims.Subject)
}
