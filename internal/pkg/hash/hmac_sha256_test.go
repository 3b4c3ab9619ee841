package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("secret")

	got, err := h.Hash("123456")
	require.NoError(t, err)
	assert.Len(t, got, 64)

	assert.True(t, h.Verify(string(got), "123456"))
	assert.False(t, h.Verify(string(got), "123457"))

	other, err := NewHMACSHA256("other").Hash("123456")
	require.NoError(t, err)
	assert.NotEqual(t, got, other)
}
