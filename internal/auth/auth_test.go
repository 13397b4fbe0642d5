package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPasswordPlain(t *testing.T) {
	m := NewManager(Config{Password: "kmou2025admin"})

	assert.NoError(t, m.CheckPassword("kmou2025admin"))
	assert.ErrorIs(t, m.CheckPassword("wrong"), ErrInvalidPassword)
	assert.ErrorIs(t, m.CheckPassword(""), ErrInvalidPassword)
}

func TestCheckPasswordEmptyConfigRejectsAll(t *testing.T) {
	m := NewManager(Config{})
	assert.ErrorIs(t, m.CheckPassword(""), ErrInvalidPassword)
}

func TestCheckPasswordHashWins(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	m := NewManager(Config{Password: "plain", PasswordHash: hash})
	assert.NoError(t, m.CheckPassword("s3cret"))
	assert.ErrorIs(t, m.CheckPassword("plain"), ErrInvalidPassword)
}

func TestLoginIssuesParsableToken(t *testing.T) {
	m := NewManager(Config{Password: "pw", Secret: "test-secret", TTL: time.Hour})

	token, expiresAt, err := m.Login("pw")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
	assert.Equal(t, "admin", claims.Subject)

	_, _, err = m.Login("nope")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewManager(Config{Password: "pw", Secret: "one", TTL: time.Minute})
	other := NewManager(Config{Password: "pw", Secret: "two"})

	token, _, err := other.Issue()
	require.NoError(t, err)
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, _, err = m.Issue()
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
