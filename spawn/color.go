package spawn

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ColorFunc maps the emission angle (radians) and speed of a particle to its RGB color.
type ColorFunc func(angle, speed float32) mgl32.Vec3

// Constant colors every particle c.
func Constant(c mgl32.Vec3) ColorFunc {
	return func(float32, float32) mgl32.Vec3 { return c }
}

// FromColor converts any image/color value into a constant strategy.
func FromColor(c color.Color) ColorFunc {
	return Constant(vec3(colorfulOf(c)))
}

// Named looks up an SVG 1.1 color name such as "orange" or "steelblue".
func Named(name string) (ColorFunc, error) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("spawn: unknown color name %q", name)
	}
	return FromColor(c), nil
}

// HueByAngle maps the emission angle onto the HSV hue circle.
func HueByAngle(saturation, value float64) ColorFunc {
	return func(angle, _ float32) mgl32.Vec3 {
		deg := math32.Mod(angle*180/math32.Pi, 360)
		if deg < 0 {
			deg += 360
		}
		return vec3(colorful.Hsv(float64(deg), saturation, value))
	}
}

// SpeedGradient blends from slow to fast in Lab space as speed goes from
// minSpeed to maxSpeed.
func SpeedGradient(slow, fast mgl32.Vec3, minSpeed, maxSpeed float32) ColorFunc {
	a := colorful.Color{R: float64(slow[0]), G: float64(slow[1]), B: float64(slow[2])}
	b := colorful.Color{R: float64(fast[0]), G: float64(fast[1]), B: float64(fast[2])}
	return func(_, speed float32) mgl32.Vec3 {
		t := float32(0)
		if maxSpeed > minSpeed {
			t = (speed - minSpeed) / (maxSpeed - minSpeed)
		}
		t = mgl32.Clamp(t, 0, 1)
		return vec3(a.BlendLab(b, float64(t)).Clamped())
	}
}

func colorfulOf(c color.Color) colorful.Color {
	if cf, ok := colorful.MakeColor(c); ok {
		return cf
	}
	// Fully transparent colors cannot be un-premultiplied.
	return colorful.Color{}
}

func vec3(c colorful.Color) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
}
