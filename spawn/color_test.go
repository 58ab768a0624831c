package spawn

import (
	"image/color"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3, msg string) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-3, "%s[%d]", msg, i)
	}
}

func TestConstant(t *testing.T) {
	c := Constant(mgl32.Vec3{0.1, 0.2, 0.3})
	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, c(1, 2))
	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, c(-5, 100))
}

func TestNamed(t *testing.T) {
	red, err := Named("Red")
	require.NoError(t, err)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, red(0, 0), "red")

	orange, err := Named("orange")
	require.NoError(t, err)
	assertVec3(t, mgl32.Vec3{1, 165.0 / 255, 0}, orange(0, 0), "orange")

	_, err = Named("not-a-color")
	assert.Error(t, err)
}

func TestFromColor(t *testing.T) {
	c := FromColor(color.RGBA{R: 0, G: 0xff, B: 0, A: 0xff})
	assertVec3(t, mgl32.Vec3{0, 1, 0}, c(0, 0), "green")

	transparent := FromColor(color.RGBA{})
	assert.Equal(t, mgl32.Vec3{}, transparent(0, 0))
}

func TestHueByAngle(t *testing.T) {
	hue := HueByAngle(1, 1)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, hue(0, 1), "0 deg")
	assertVec3(t, mgl32.Vec3{0, 1, 0}, hue(2*math.Pi/3, 1), "120 deg")
	assertVec3(t, mgl32.Vec3{0, 0, 1}, hue(-2*math.Pi/3, 1), "-120 deg wraps to 240")
}

func TestSpeedGradient(t *testing.T) {
	g := SpeedGradient(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, 10, 20)
	assertVec3(t, mgl32.Vec3{0, 0, 0}, g(0, 10), "slow end")
	assertVec3(t, mgl32.Vec3{1, 1, 1}, g(0, 20), "fast end")
	assertVec3(t, mgl32.Vec3{1, 1, 1}, g(0, 50), "clamped above")
	assertVec3(t, mgl32.Vec3{0, 0, 0}, g(0, 0), "clamped below")

	mid := g(0, 15)
	assert.Greater(t, mid.X(), float32(0.1))
	assert.Less(t, mid.X(), float32(0.9))

	flat := SpeedGradient(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, 5, 5)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, flat(0, 5), "degenerate range uses slow color")
}
