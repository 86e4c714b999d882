package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sereska7/Project-Shop/internal/shop"
)

func TestTokensRoundTrip(t *testing.T) {
	tk := &Tokens{Secret: []byte("s"), TTL: time.Minute}
	token, err := tk.Issue(12)
	require.NoError(t, err)

	id, err := tk.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestTokensExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tk := &Tokens{Secret: []byte("s"), TTL: time.Minute, Now: func() time.Time { return now }}
	token, err := tk.Issue(1)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = tk.Parse(token)
	require.ErrorIs(t, err, shop.ErrTokenExpired)
}

func TestTokensWrongSecret(t *testing.T) {
	token, err := (&Tokens{Secret: []byte("a"), TTL: time.Minute}).Issue(1)
	require.NoError(t, err)

	_, err = (&Tokens{Secret: []byte("b"), TTL: time.Minute}).Parse(token)
	require.ErrorIs(t, err, shop.ErrTokenInvalid)
}
