package utils

import (
	"testing"
	"time"

	"koppeltaal-service/internal/pkg/exceptions"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchState(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		state, err := GenerateLaunchStateJWT("session-1", "https://kt.example", "launch-abc", "secret", time.Minute)
		require.NoError(t, err)

		claims, err := ParseLaunchStateJWT(state, "secret")
		require.NoError(t, err)
		assert.Equal(t, "session-1", claims.SessionID)
		assert.Equal(t, "https://kt.example", claims.Issuer)
		assert.Equal(t, "launch-abc", claims.Launch)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		state, err := GenerateLaunchStateJWT("session-1", "https://kt.example", "l", "secret", time.Minute)
		require.NoError(t, err)

		_, err = ParseLaunchStateJWT(state, "other")
		require.Error(t, err)
		assert.True(t, exceptions.IsKind(err, exceptions.KindAuthenticationFailure))
	})

	t.Run("Expired", func(t *testing.T) {
		state, err := GenerateLaunchStateJWT("session-1", "https://kt.example", "l", "secret", -time.Minute)
		require.NoError(t, err)

		_, err = ParseLaunchStateJWT(state, "secret")
		assert.Error(t, err)
	})
}

func TestReadUnverifiedExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	signed, err := token.SignedString([]byte("unknown to the client"))
	require.NoError(t, err)

	got, ok := ReadUnverifiedExpiry(signed)
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = ReadUnverifiedExpiry("opaque-token")
	assert.False(t, ok)
}

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "KT_SVC_")
}
