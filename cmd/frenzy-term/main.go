package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"

	frenzy "github.com/leod/particle-frenzy"
	"github.com/leod/particle-frenzy/soft"
	"github.com/leod/particle-frenzy/spawn"
)

const (
	frameTime     = 33 * time.Millisecond
	fountainEvery = 400 * time.Millisecond
)

type demo struct {
	screen tcell.Screen
	device *soft.Device
	system *frenzy.System
	clock  *frenzy.Clock
	rng    *rand.Rand
	colors []spawn.ColorFunc
	geyser *spawn.Emitter

	lastFountain time.Time
	stats        bool
}

func newDemo(cfg frenzy.Config) (*demo, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	d := &demo{
		screen: screen,
		clock:  frenzy.NewClock(),
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		stats:  true,
	}
	for _, name := range []string{"orange", "deepskyblue", "gold", "orchid", "springgreen"} {
		c, err := spawn.Named(name)
		if err != nil {
			screen.Fini()
			return nil, err
		}
		d.colors = append(d.colors, c)
	}
	d.colors = append(d.colors, spawn.HueByAngle(1, 1))

	w, h := d.pixelSize()
	d.device = soft.NewDevice(w, h)
	d.system, err = frenzy.New(d.device, nil, cfg)
	if err != nil {
		screen.Fini()
		return nil, err
	}
	d.geyser = spawn.NewEmitter(spawn.Cone{
		Orientation: -math32.Pi / 2,
		Spread:      0.1,
		Size:        mgl32.Vec2{1, 1},
		Color:       spawn.SpeedGradient(mgl32.Vec3{0.2, 0.4, 1}, mgl32.Vec3{0.9, 0.95, 1}, 0, float32(h)),
	}, 400)
	d.geyser.MaxPerUpdate = 100
	d.resize()
	return d, nil
}

// pixelSize is the image size backing the screen; every cell shows two
// vertically stacked pixels.
func (d *demo) pixelSize() (int, int) {
	cols, rows := d.screen.Size()
	return max(cols, 1), max(rows*2, 1)
}

func (d *demo) resize() {
	w, h := d.pixelSize()
	d.device.Resize(w, h)
	d.system.SetTransform(mgl32.Ortho2D(0, float32(w), float32(h), 0))

	d.geyser.MoveTo(mgl32.Vec2{float32(w) / 2, float32(h)})
	d.geyser.Cone.MinSpeed = float32(h) * 0.5
	d.geyser.Cone.MaxSpeed = float32(h) * 0.9
	d.geyser.Cone.Friction = float32(h) * 0.45
}

func (d *demo) fountain(now float32) {
	w, h := d.pixelSize()
	cone := spawn.Cone{
		SpawnTime:       now,
		Position:        mgl32.Vec2{d.rng.Float32() * float32(w), float32(h)},
		Orientation:     -math32.Pi / 2,
		Spread:          0.35,
		MinSpeed:        float32(h) * 0.6,
		MaxSpeed:        float32(h) * 1.2,
		AngularVelocity: 2,
		Friction:        float32(h) * 0.5,
		Size:            mgl32.Vec2{1.5, 1.5},
		Color:           d.colors[d.rng.IntN(len(d.colors))],
	}
	cone.SpawnRand(d.system, d.rng, 150)
}

func (d *demo) burst(now float32) {
	w, h := d.pixelSize()
	pos := mgl32.Vec2{float32(w) / 2, float32(h) / 2}
	spawn.Burst(now, pos, 5, float32(h)*0.8, float32(h)*0.4, mgl32.Vec2{1.5, 1.5}, spawn.HueByAngle(1, 1)).
		SpawnRand(d.system, d.rng, 600)
}

func (d *demo) draw() error {
	now := d.clock.Seconds()
	rec := d.device.NewRecorder()
	if err := d.system.Render(rec, now); err != nil {
		return err
	}
	if err := rec.Flush(); err != nil {
		return err
	}

	img := d.device.Image()
	cols, rows := d.screen.Size()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := img.RGBAAt(x, 2*y)
			bottom := img.RGBAAt(x, 2*y+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			d.screen.SetContent(x, y, '▀', nil, style)
		}
	}

	if d.stats {
		st := d.system.Stats()
		line := fmt.Sprintf(" buffers %d  written %d  overwritten %d  draws %d  [space] burst [g] geyser [s] stats [q] quit ",
			len(d.system.Buffers()), st.Written, st.Overwritten, st.Draws)
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
		for i, r := range line {
			if i >= cols {
				break
			}
			d.screen.SetContent(i, 0, r, nil, style)
		}
	}

	d.screen.Show()
	return nil
}

// handleInput reports whether the demo keeps running.
func (d *demo) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				d.burst(d.clock.Seconds())
			case 's':
				d.stats = !d.stats
			case 'g':
				d.geyser.Enabled = !d.geyser.Enabled
				d.geyser.Reset()
			}
		}
	case *tcell.EventResize:
		d.resize()
		d.screen.Sync()
	}
	return true
}

func (d *demo) run() error {
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			events <- d.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-events:
			if !d.handleInput(ev) {
				return nil
			}
		case <-ticker.C:
			d.clock.Tick()
			d.geyser.Update(d.system, d.rng, d.clock.Seconds(), float32(d.clock.Dt.Seconds()))
			if time.Since(d.lastFountain) >= fountainEvery {
				d.fountain(d.clock.Seconds())
				d.lastFountain = time.Now()
			}
			if err := d.draw(); err != nil {
				return err
			}
		}
	}
}

func (d *demo) cleanup() {
	d.system.Release()
	d.screen.Fini()
}

func main() {
	capacity := flag.Int("capacity", 500, "Particles per buffer")
	buffers := flag.Int("buffers", 8, "Number of buffers allocated up front")
	overflow := flag.String("overflow", "overwrite", "Overflow policy: overwrite, grow or drop")
	flag.Parse()

	cfg := frenzy.DefaultConfig()
	cfg.BufferCapacity = *capacity
	cfg.InitialBuffers = *buffers
	cfg.Label = "frenzy-term"
	var err error
	if cfg.Overflow, err = frenzy.ParseOverflowPolicy(*overflow); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	if cfg.Overflow == frenzy.OverflowDrop {
		cfg.MaxPending = cfg.BufferCapacity
	}

	d, err := newDemo(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	err = d.run()
	d.cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
}
