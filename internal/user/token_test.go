package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensRoundTrip(t *testing.T) {
	tk := NewTokens("0123456789abcdef-secret", "vnb-test", time.Hour)
	raw, exp, err := tk.Issue(&User{ID: "u-1", IsStaff: true})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tk.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.True(t, claims.Staff)
}

func TestTokensRejectForeignAndExpired(t *testing.T) {
	tk := NewTokens("0123456789abcdef-secret", "vnb-test", time.Minute)
	other := NewTokens("another-secret-0123456", "vnb-test", time.Minute)

	raw, _, err := other.Issue(&User{ID: "u-1"})
	require.NoError(t, err)
	_, err = tk.Parse(raw)
	assert.Error(t, err)

	past := time.Now().Add(-2 * time.Hour)
	tk.now = func() time.Time { return past }
	raw, _, err = tk.Issue(&User{ID: "u-1"})
	require.NoError(t, err)
	tk.now = time.Now
	_, err = tk.Parse(raw)
	assert.Error(t, err)

	_, err = tk.Parse("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "correct-horse-battery"))
	assert.False(t, CheckPassword(h, "wrong-horse-battery"))
}

func TestProfileInputApply(t *testing.T) {
	p := DefaultProfile("u-1")
	city := "Napa"
	yes := true
	ProfileInput{City: &city, NewsletterSubscribed: &yes}.Apply(&p)
	assert.Equal(t, "Napa", p.City)
	assert.True(t, p.NewsletterSubscribed)
	assert.Equal(t, "+1", p.AreaCode)
	assert.Equal(t, "United States", p.Location)
}
