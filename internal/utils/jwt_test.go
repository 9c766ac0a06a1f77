package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
    sub := "casual"
    tok, err := NewAccessToken("secret", 42, "employee", &sub, 15)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), tok.Exp, 5*time.Second)

    parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (any, error) {
        return []byte("secret"), nil
    }, jwt.WithValidMethods([]string{"HS256"}))
    require.NoError(t, err)
    claims := parsed.Claims.(jwt.MapClaims)
    assert.Equal(t, float64(42), claims["sub"])
    assert.Equal(t, "employee", claims["role"])
    assert.Equal(t, "casual", claims["sub_role"])
}

func TestNewAccessTokenOmitsSubRoleForStaff(t *testing.T) {
    tok, err := NewAccessToken("secret", 7, "canteen", nil, 15)
    require.NoError(t, err)

    parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (any, error) {
        return []byte("secret"), nil
    }, jwt.WithValidMethods([]string{"HS256"}))
    require.NoError(t, err)
    claims := parsed.Claims.(jwt.MapClaims)
    _, ok := claims["sub_role"]
    assert.False(t, ok)
}

func TestWrongSecretRejected(t *testing.T) {
    tok, err := NewAccessToken("secret", 7, "canteen", nil, 15)
    require.NoError(t, err)

    _, err = jwt.Parse(tok.Token, func(tk *jwt.Token) (any, error) {
        return []byte("other"), nil
    }, jwt.WithValidMethods([]string{"HS256"}))
    assert.Error(t, err)
}
