package services

import (
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestTokens_RoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	tokens := NewTokens("secret", time.Hour, clock)

	token, err := tokens.Issue("user-1")
	require.NoError(t, err)

	userID, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	clock.Advance(2 * time.Hour)
	_, err = tokens.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsForeignSignature(t *testing.T) {
	token, err := NewTokens("other", time.Hour, nil).Issue("user-1")
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour, nil).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokens("secret", time.Hour, nil).Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
