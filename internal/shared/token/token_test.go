package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("s3cret", time.Hour)

	signed, exp, err := m.Issue("u-1", "asha@example.com", "user")
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(signed)
	assert.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestManager_Parse_Errors(t *testing.T) {
	m := NewManager("s3cret", time.Hour)

	t.Run("expired", func(t *testing.T) {
		issued := time.Now().Add(-2 * time.Hour)
		old := NewManager("s3cret", time.Hour)
		old.now = func() time.Time { return issued }
		signed, _, err := old.Issue("u-1", "a@b.co", "user")
		assert.NoError(t, err)

		_, err = m.Parse(signed)
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager("other", time.Hour)
		signed, _, _ := other.Issue("u-1", "a@b.co", "user")

		_, err := m.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Parse("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalid)
	})
}
