// Package core wraps the glfw window that presents the engine's frames.
package core

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"vk-engine/vulkan"
)

func init() {
	runtime.LockOSThread()
}

var ErrVulkanUnsupported = errors.New("core: glfw reports no Vulkan loader")

var _ vulkan.SurfaceProvider = (*Window)(nil)

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	resized bool
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	Fullscreen bool
}

// NewWindow opens a window without a client API and points the Vulkan
// loader at glfw's vkGetInstanceProcAddr.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, ErrVulkanUnsupported
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}

	handle.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
		window.resized = true
	})

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// WaitEvents blocks until at least one event arrives. The renderer uses it
// to sleep while the window is minimized.
func (w *Window) WaitEvents() {
	glfw.WaitEvents()
}

func (w *Window) FramebufferExtent() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) WasResized() bool {
	return w.resized
}

func (w *Window) ResetResized() {
	w.resized = false
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.Handle.GetRequiredInstanceExtensions()
}

func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.Handle.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, fmt.Errorf("failed to create window surface: %w", err)
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) IsMouseButtonPressed(button int) bool {
	return w.Handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

// SetCursorCaptured hides and locks the cursor for mouse look, or releases
// it.
func (w *Window) SetCursorCaptured(captured bool) {
	mode := glfw.CursorNormal
	if captured {
		mode = glfw.CursorDisabled
	}
	w.Handle.SetInputMode(glfw.CursorMode, mode)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	KeySpace      = int(glfw.KeySpace)
	KeyA          = int(glfw.KeyA)
	KeyD          = int(glfw.KeyD)
	KeyS          = int(glfw.KeyS)
	KeyW          = int(glfw.KeyW)
	KeyEscape     = int(glfw.KeyEscape)
	KeyLeftShift  = int(glfw.KeyLeftShift)
	KeyRightShift = int(glfw.KeyRightShift)

	MouseLeft  = int(glfw.MouseButtonLeft)
	MouseRight = int(glfw.MouseButtonRight)
)
