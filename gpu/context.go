package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Context owns the WebGPU surface of a glfw window and hands out one
// Recorder per frame.
type Context struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration

	Particles *Device

	target  *Target
	texture *wgpu.Texture
}

// NewContext initializes WebGPU against window. The window must be created
// with glfw.ClientAPI set to glfw.NoAPI.
func NewContext(window *glfw.Window, clear wgpu.Color) (*Context, error) {
	c := &Context{
		Window: window,
		target: &Target{Clear: &clear},
	}

	c.Instance = wgpu.CreateInstance(nil)
	// wraps GLFW window into a wgpu surface.
	c.Surface = c.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := c.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: c.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}
	c.Adapter = adapter

	c.Device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Particle Device",
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}
	c.Queue = c.Device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := c.Surface.GetCapabilities(adapter)
	c.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	c.Surface.Configure(adapter, c.Device, c.Config)

	c.Particles = NewDevice(c.Device, c.Config.Format)
	return c, nil
}

// Target is the swapchain attachment. Its View is replaced by every BeginFrame.
func (c *Context) Target() *Target { return c.target }

// Resize reconfigures the surface, e.g. from a framebuffer size callback.
func (c *Context) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Config.Width = uint32(width)
	c.Config.Height = uint32(height)
	c.Surface.Configure(c.Adapter, c.Device, c.Config)
}

// BeginFrame acquires the next swapchain texture and returns a recorder that
// targets it.
func (c *Context) BeginFrame() (*Recorder, error) {
	texture, err := c.Surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("gpu: get current texture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return nil, fmt.Errorf("gpu: create view: %w", err)
	}
	c.texture = texture
	c.target.View = view
	return NewRecorder(c.Particles, c.target), nil
}

// EndFrame submits rec and presents the frame.
func (c *Context) EndFrame(rec *Recorder) error {
	defer c.releaseFrame()
	if err := rec.Flush(); err != nil {
		return err
	}
	c.Surface.Present()
	return nil
}

func (c *Context) releaseFrame() {
	if c.target.View != nil {
		c.target.View.Release()
		c.target.View = nil
	}
	if c.texture != nil {
		c.texture.Release()
		c.texture = nil
	}
}

func (c *Context) Release() {
	c.releaseFrame()
	if c.Particles != nil {
		c.Particles.Release()
	}
	if c.Device != nil {
		c.Device.Release()
	}
	if c.Adapter != nil {
		c.Adapter.Release()
	}
	if c.Surface != nil {
		c.Surface.Release()
	}
	if c.Instance != nil {
		c.Instance.Release()
	}
}
