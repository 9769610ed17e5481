package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfportal/internal/app/apperr"
)

func TestSessionIssueAndParse(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	tok, exp, err := s.Issue("abc123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	sub, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc123", sub)
}

func TestSessionTokensAreUnique(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	a, _, err := s.Issue("abc123")
	require.NoError(t, err)
	b, _, err := s.Issue("abc123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSessionRejects(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	tok, _, err := s.Issue("abc123")
	require.NoError(t, err)

	_, err = NewSessions("other-secret", time.Hour).Parse(tok)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = s.Parse(tok + "x")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = s.Parse("")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	expired := NewSessions("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("abc123")
	require.NoError(t, err)
	_, err = s.Parse(old)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}
