package soft

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	frenzy "github.com/leod/particle-frenzy"
)

// maxQuadPixels bounds the screen-space extent of a single quad.
const maxQuadPixels = 4096

// toScreen maps clip space to pixel coordinates with y pointing down.
func toScreen(clip mgl32.Vec4, w, h float32) mgl32.Vec2 {
	return mgl32.Vec2{
		(clip.X()/clip.W()*0.5 + 0.5) * w,
		(0.5 - clip.Y()/clip.W()*0.5) * h,
	}
}

// axis maps a world-space offset to a pixel-space offset.
func axis(m mgl32.Mat4, v mgl32.Vec2, w, h float32) mgl32.Vec2 {
	c := m.Mul4x1(mgl32.Vec4{v.X(), v.Y(), 0, 0})
	return mgl32.Vec2{c.X() * 0.5 * w, -c.Y() * 0.5 * h}
}

// rasterize draws one particle as a rotated quad with a radial fade,
// composited over img.
func rasterize(img *image.RGBA, p frenzy.Particle, g frenzy.Globals) {
	st := p.At(g.Time)
	if !st.Alive || st.Alpha <= 0 {
		return
	}

	w, h := float32(img.Rect.Dx()), float32(img.Rect.Dy())
	clip := g.Transform.Mul4x1(mgl32.Vec4{st.Position.X(), st.Position.Y(), 0, 1})
	if clip.W() == 0 {
		return
	}
	center := toScreen(clip, w, h)

	sin, cos := math32.Sincos(st.Angle)
	ax := axis(g.Transform, mgl32.Vec2{cos * p.Size.X(), sin * p.Size.X()}, w, h)
	ay := axis(g.Transform, mgl32.Vec2{-sin * p.Size.Y(), cos * p.Size.Y()}, w, h)

	det := ax.X()*ay.Y() - ay.X()*ax.Y()
	if math32.Abs(det) < 1e-6 {
		return
	}

	ex := math32.Min(math32.Abs(ax.X())+math32.Abs(ay.X()), maxQuadPixels)
	ey := math32.Min(math32.Abs(ax.Y())+math32.Abs(ay.Y()), maxQuadPixels)
	x0 := max(int(math32.Floor(center.X()-ex)), img.Rect.Min.X)
	x1 := min(int(math32.Ceil(center.X()+ex)), img.Rect.Max.X)
	y0 := max(int(math32.Floor(center.Y()-ey)), img.Rect.Min.Y)
	y1 := min(int(math32.Ceil(center.Y()+ey)), img.Rect.Max.Y)

	sr, sg, sb := p.Color.X(), p.Color.Y(), p.Color.Z()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float32(x) + 0.5 - center.X()
			dy := float32(y) + 0.5 - center.Y()
			// Solve [ax ay] * uv = d for the quad coordinates of the pixel.
			u := (dx*ay.Y() - dy*ay.X()) / det
			v := (ax.X()*dy - ax.Y()*dx) / det
			radial := 1 - (u*u + v*v)
			if radial <= 0 {
				continue
			}
			a := mgl32.Clamp(st.Alpha*radial, 0, 1)
			blend(img, x, y, sr, sg, sb, a)
		}
	}
}

// blend composites a straight-alpha color over the pixel at (x, y),
// matching the SrcAlpha / OneMinusSrcAlpha blend state of the GPU pipeline.
func blend(img *image.RGBA, x, y int, r, g, b, a float32) {
	i := img.PixOffset(x, y)
	px := img.Pix[i : i+4 : i+4]
	mix := func(dst uint8, src float32) uint8 {
		d := float32(dst) / 255
		return uint8(mgl32.Clamp(src*a+d*(1-a), 0, 1)*255 + 0.5)
	}
	px[0] = mix(px[0], r)
	px[1] = mix(px[1], g)
	px[2] = mix(px[2], b)
	alpha := float32(px[3])/255*(1-a) + a
	px[3] = uint8(mgl32.Clamp(alpha, 0, 1)*255 + 0.5)
}
