package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBounds(t *testing.T) {
	b, err := ParseBounds("1920x1080")
	require.NoError(t, err)
	assert.Equal(t, Bounds{Width: 1920, Height: 1080}, b)
	assert.Equal(t, "1920x1080", b.String())

	b, err = ParseBounds(" 800X600 ")
	require.NoError(t, err)
	assert.Equal(t, Bounds{Width: 800, Height: 600}, b)

	for _, bad := range []string{"", "1920", "x1080", "1920x", "0x10", "10x-1", "axb"} {
		_, err := ParseBounds(bad)
		assert.ErrorIs(t, err, ErrInvalidBounds, bad)
	}
}

func TestBoundsClamp(t *testing.T) {
	b := Bounds{Width: 100, Height: 50}

	x, y := b.Clamp(-5, 20)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 20.0, y)

	x, y = b.Clamp(250, 49.5)
	assert.Equal(t, 99.0, x)
	assert.Equal(t, 49.0, y)

	assert.False(t, Bounds{}.Valid())
	assert.True(t, DefaultBounds.Valid())
}
