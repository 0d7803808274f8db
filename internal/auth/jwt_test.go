package auth

import (
	"testing"
	"time"

	"github.com/fekuna/omnipos-trace-service/internal/model"
	"github.com/fekuna/omnipos-trace-service/internal/role"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *model.User {
	u := &model.User{Email: "retail@example.com", Name: "North Market", Role: "retailer"}
	u.ID = "u-1"
	return u
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour)

	token, expires, err := issuer.Issue(testUser(), role.Retailer)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "North Market", claims.Name)
	assert.Equal(t, role.Retailer, claims.Role)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour)
	good, _, err := issuer.Issue(testUser(), role.Retailer)
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		_, err := NewTokenIssuer("other", time.Hour).Parse(good)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenIssuer("s3cret", time.Hour)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(good)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1", Role: role.Admin}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		forged, _, err := issuer.Issue(testUser(), role.Role("root"))
		require.NoError(t, err)
		_, err = issuer.Parse(forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct-horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "correct-horse"))
}
