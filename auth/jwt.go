package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTTokenIssuer signs HS256 tokens. A drop-in replacement for the opaque
// mock scheme when a verifiable credential is wanted.
type JWTTokenIssuer struct {
	signingKey []byte
	now        func() time.Time
}

var _ TokenIssuer = (*JWTTokenIssuer)(nil)

func NewJWTTokenIssuer(signingKey []byte) *JWTTokenIssuer {
	return &JWTTokenIssuer{
		signingKey: signingKey,
		now:        time.Now,
	}
}

func (iss *JWTTokenIssuer) Issue(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:   "inkwell",
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(iss.now()),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(iss.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}

func (iss *JWTTokenIssuer) Subject(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(_ *jwt.Token) (any, error) { return iss.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return "", InvalidTokenError{Token: token}
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", InvalidTokenError{Token: token}
	}

	return subject, nil
}
