package main

import (
	"flag"
	"runtime"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	frenzy "github.com/leod/particle-frenzy"
	"github.com/leod/particle-frenzy/gpu"
	"github.com/leod/particle-frenzy/spawn"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	capacity := flag.Int("capacity", 1000, "Particles per buffer")
	buffers := flag.Int("buffers", 10, "Number of buffers allocated up front")
	overflow := flag.String("overflow", "overwrite", "Overflow policy: overwrite, grow or drop")
	deathTime := flag.String("deathtime", "accumulate", "Death time policy: accumulate or generation")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log := frenzy.NewDefaultLogger("frenzy", *debug)

	cfg := frenzy.DefaultConfig()
	cfg.BufferCapacity = *capacity
	cfg.InitialBuffers = *buffers
	cfg.Logger = log
	var err error
	if cfg.Overflow, err = frenzy.ParseOverflowPolicy(*overflow); err != nil {
		panic(err)
	}
	if cfg.DeathTime, err = frenzy.ParseDeathTimePolicy(*deathTime); err != nil {
		panic(err)
	}
	if cfg.Overflow == frenzy.OverflowDrop {
		cfg.MaxPending = cfg.BufferCapacity * cfg.InitialBuffers
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(1280, 720, "frenzy", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	ctx, err := gpu.NewContext(window, wgpu.Color{R: 0.02, G: 0.02, B: 0.04, A: 1})
	if err != nil {
		panic(err)
	}
	defer ctx.Release()

	system, err := frenzy.New(ctx.Particles, ctx.Target(), cfg)
	if err != nil {
		panic(err)
	}
	defer system.Release()

	projection := func(w, h int) mgl32.Mat4 {
		return mgl32.Ortho2D(0, float32(w), float32(h), 0)
	}
	system.SetTransform(projection(window.GetSize()))

	clock := frenzy.NewClock()
	hue := spawn.HueByAngle(0.8, 1)
	fire := spawn.SpeedGradient(mgl32.Vec3{1, 0.9, 0.3}, mgl32.Vec3{0.8, 0.1, 0}, 100, 400)

	// Held middle button sprays from the cursor.
	spray := spawn.NewEmitter(spawn.Cone{
		Orientation: -math32.Pi / 2,
		Spread:      0.6,
		MinSpeed:    80,
		MaxSpeed:    200,
		Friction:    100,
		Size:        mgl32.Vec2{4, 4},
		Color:       hue,
	}, 2000)
	spray.Enabled = false

	var lastX, lastY float64
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		ctx.Resize(width, height)
		system.SetTransform(projection(w.GetSize()))
	})

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		dx, dy := float32(xpos-lastX), float32(ypos-lastY)
		lastX, lastY = xpos, ypos
		spray.MoveTo(mgl32.Vec2{float32(xpos), float32(ypos)})

		trail := spawn.Cone{
			SpawnTime:       clock.Seconds(),
			Position:        mgl32.Vec2{float32(xpos), float32(ypos)},
			Orientation:     math32.Atan2(-dy, -dx),
			Spread:          0.3,
			MinSpeed:        20,
			MaxSpeed:        60,
			AngularVelocity: 1,
			Friction:        30,
			Size:            mgl32.Vec2{20, 20},
			Color:           spawn.Constant(mgl32.Vec3{1, 0, 0}),
		}
		trail.Spawn(system, 10)
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonMiddle {
			spray.Enabled = action == glfw.Press
			spray.Reset()
			return
		}
		if action != glfw.Press {
			return
		}
		x, y := w.GetCursorPos()
		pos := mgl32.Vec2{float32(x), float32(y)}
		now := clock.Seconds()

		switch button {
		case glfw.MouseButtonLeft:
			cone := spawn.Cone{
				SpawnTime:     now,
				Position:      pos,
				Orientation:   -math32.Pi / 2,
				Spread:        0.4,
				MinSpeed:      100,
				MaxSpeed:      400,
				Friction:      150,
				Size:          mgl32.Vec2{6, 6},
				AlphaExponent: 2,
				Color:         fire,
			}
			cone.Spawn(system, 500)
		case glfw.MouseButtonRight:
			spawn.Burst(now, pos, 50, 300, 120, mgl32.Vec2{8, 8}, hue).Spawn(system, 1000)
		}
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
		if key == glfw.KeyD && action == glfw.Press {
			log.SetDebug(!log.DebugEnabled())
		}
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		clock.Tick()
		spray.Update(system, nil, clock.Seconds(), float32(clock.Dt.Seconds()))

		rec, err := ctx.BeginFrame()
		if err != nil {
			log.Warnf("skipping frame: %v", err)
			continue
		}
		// A rejected buffer write leaves the ring inconsistent with the device.
		if err := system.Render(rec, clock.Seconds()); err != nil {
			panic(err)
		}
		if err := ctx.EndFrame(rec); err != nil {
			panic(err)
		}
	}

	st := system.Stats()
	log.Infof("spawned=%d written=%d overwritten=%d dropped=%d grown=%d buffers=%d",
		st.Spawned, st.Written, st.Overwritten, st.Dropped, st.Grown, len(system.Buffers()))
}
