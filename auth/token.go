package auth

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TokenIssuer mints access tokens and resolves them back to a user id.
type TokenIssuer interface {
	Issue(userID string) (token string, err error)
	Subject(token string) (userID string, err error)
}

type InvalidTokenError struct {
	Token string
}

func (err InvalidTokenError) Error() string {
	return "invalid token"
}

// OpaqueTokenIssuer is the mock scheme: base64 of "userID:issueMillis", no
// signature and no expiry. Anyone can mint a valid-looking token for any id;
// it exists only to move an identity between client and server.
type OpaqueTokenIssuer struct {
	now func() time.Time
}

var _ TokenIssuer = (*OpaqueTokenIssuer)(nil)

func NewOpaqueTokenIssuer() *OpaqueTokenIssuer {
	return &OpaqueTokenIssuer{now: time.Now}
}

func (iss *OpaqueTokenIssuer) Issue(userID string) (string, error) {
	raw := fmt.Sprintf("%s:%d", userID, iss.now().UnixMilli())

	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

func (iss *OpaqueTokenIssuer) Subject(token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", InvalidTokenError{Token: token}
	}

	// the user id may itself contain colons, the issue time cannot
	idx := strings.LastIndex(string(raw), ":")
	if idx <= 0 {
		return "", InvalidTokenError{Token: token}
	}

	userID := string(raw[:idx])

	_, err = strconv.ParseInt(string(raw[idx+1:]), 10, 64)
	if err != nil {
		return "", InvalidTokenError{Token: token}
	}

	return userID, nil
}
