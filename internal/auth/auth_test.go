package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	a := New("s3cret", time.Hour)
	require.True(t, a.Enabled())

	token, exp, err := a.Issue()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := a.Verify("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, SubjectAdmin, claims.Subject)
	assert.Equal(t, SubjectAdmin, claims.Role)
}

func TestVerify_Rejects(t *testing.T) {
	a := New("s3cret", time.Hour)
	good, _, err := a.Issue()
	require.NoError(t, err)

	other, _, err := New("different", time.Hour).Issue()
	require.NoError(t, err)

	expiredAuth := New("s3cret", time.Minute)
	expiredAuth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredAuth.Issue()
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: SubjectAdmin,
		Issuer:  issuer,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		want   error
	}{
		"missing header": {"", ErrMissingToken},
		"no bearer":      {good, ErrInvalidToken},
		"empty bearer":   {"Bearer ", ErrInvalidToken},
		"wrong secret":   {"Bearer " + other, ErrInvalidToken},
		"expired":        {"Bearer " + expired, ErrInvalidToken},
		"alg none":       {"Bearer " + none, ErrInvalidToken},
		"garbage":        {"Bearer not.a.jwt", ErrInvalidToken},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.Verify(tc.header)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDisabled(t *testing.T) {
	a := New("", 0)
	assert.False(t, a.Enabled())
	_, _, err := a.Issue()
	assert.Error(t, err)

	var nilAuth *Authenticator
	assert.False(t, nilAuth.Enabled())
}
