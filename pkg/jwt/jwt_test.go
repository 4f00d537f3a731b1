package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(Config{AccessSecret: "a-secret", RefreshSecret: "r-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour})
}

func TestAccessRoundTrip(t *testing.T) {
	m := newTestManager()
	subject := Subject{AccountID: uuid.New(), Email: "ann@example.com", Name: "Ann", Role: "user", TokenVersion: "v1"}

	token, err := m.GenerateAccess(subject)
	require.NoError(t, err)

	claims, err := m.ValidateAccess(token)
	require.NoError(t, err)
	assert.Equal(t, subject.AccountID, claims.AccountID)
	assert.Equal(t, "v1", claims.TokenVersion)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.Equal(t, "go-storefront", claims.Issuer)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	m := newTestManager()
	subject := Subject{AccountID: uuid.New()}

	access, err := m.GenerateAccess(subject)
	require.NoError(t, err)
	refresh, err := m.GenerateRefresh(subject)
	require.NoError(t, err)

	_, err = m.ValidateRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ValidateAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// same secret on both sides still fails on the kind claim
	same := NewManager(Config{AccessSecret: "s", RefreshSecret: "s"})
	refresh, err = same.GenerateRefresh(subject)
	require.NoError(t, err)
	_, err = same.ValidateAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	m := newTestManager()
	issued := time.Now().Add(-2 * time.Minute)
	m.now = func() time.Time { return issued }
	token, err := m.GenerateAccess(Subject{AccountID: uuid.New()})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingToken(t *testing.T) {
	_, err := newTestManager().ValidateAccess("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestDefaults(t *testing.T) {
	m := NewManager(Config{AccessSecret: "a", RefreshSecret: "b"})
	assert.Equal(t, 30*time.Minute, m.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, m.RefreshTTL())
}
