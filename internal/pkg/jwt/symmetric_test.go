package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type staticID struct{}

func (staticID) Generate() string { return "jti-1" }

func newTestJWT(t *testing.T, clk *fixedClock) *Symmetric {
	t.Helper()
	j, err := NewHS512(Config{
		Secret:     []byte(strings.Repeat("s", 64)),
		Issuer:     "coursebite",
		Audiences:  []string{"coursebite-web"},
		TTLMinutes: 15 * time.Minute,
		Clock:      clk,
		UUID:       staticID{},
	})
	require.NoError(t, err)
	return j
}

func TestNewHS512_ShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestSymmetric_GenerateVerify(t *testing.T) {
	clk := &fixedClock{now: time.Now()}
	j := newTestJWT(t, clk)

	token, err := j.Generate(Subject{UserID: 42, Phone: "09123456789", Roles: []string{"student"}})
	require.NoError(t, err)

	claims, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "09123456789", claims.Phone)
	assert.Equal(t, []string{"student"}, claims.Roles)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "jti-1", claims.ID)
}

func TestSymmetric_VerifyExpired(t *testing.T) {
	clk := &fixedClock{now: time.Now()}
	j := newTestJWT(t, clk)

	token, err := j.Generate(Subject{UserID: 1})
	require.NoError(t, err)

	clk.now = clk.now.Add(16 * time.Minute)
	_, err = j.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSymmetric_VerifyTampered(t *testing.T) {
	j := newTestJWT(t, &fixedClock{now: time.Now()})

	token, err := j.Generate(Subject{UserID: 1})
	require.NoError(t, err)

	_, err = j.Verify(token + "x")
	assert.Error(t, err)
}

func TestAuthContext(t *testing.T) {
	assert.Nil(t, GetAuth(context.Background()))

	ctx := SetAuth(context.Background(), Claims{UserID: 7})
	clm := GetAuth(ctx)
	require.NotNil(t, clm)
	assert.Equal(t, int64(7), clm.UserID)
}
