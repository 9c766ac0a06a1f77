package utils // package utils provides helpers for token creation

import (
    "time" // time utilities for computing expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its
// expiry.  The Token field contains the serialized JWT string.
// Access tokens are sent in the Authorization header when calling
// protected endpoints; kiosk logins receive the same shape of token
// over the notification channel.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The
// claims carry the subject (sub), the role and, for employees, the
// sub-role driving the payment policy.  ttlMin controls the token
// lifetime in minutes.
func NewAccessToken(secret string, userID uint64, role string, subRole *string, ttlMin int) (AccessToken, error) {
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    if subRole != nil {
        claims["sub_role"] = *subRole
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
