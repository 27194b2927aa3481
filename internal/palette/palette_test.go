package palette

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := New(5)
	assert.Equal(t, color.RGBA{255, 255, 0, 255}, p.Color(1))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, p.Color(2))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, p.Color(3))
	assert.Equal(t, color.RGBA{192, 192, 192, 255}, p.Color(4))
	assert.Equal(t, color.RGBA{0, 255, 255, 255}, p.Color(5))
	assert.Equal(t, color.RGBA{}, p.Color(0))
}

func TestSet(t *testing.T) {
	p := New(5)
	require.NoError(t, p.Set(2, "#336699"))
	assert.Equal(t, color.RGBA{0x33, 0x66, 0x99, 255}, p.Color(2))

	assert.Error(t, p.Set(3, "blue"))
	assert.Equal(t, Defaults[3], p.Color(3))
}

func TestHueFallback(t *testing.T) {
	p := New(4)
	// 7 wraps to the third of four hues, 180 degrees
	assert.Equal(t, color.RGBA{0, 255, 255, 255}, p.Color(7))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, p.Color(9))
	assert.Equal(t, uint8(255), New(0).Color(6).A)
}
