// Package renderer drives frames through a swap chain and records the scene
// draw pass into them.
package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"

	"vk-engine/vulkan"
)

var (
	ErrFrameInProgress        = errors.New("renderer: frame already in progress")
	ErrFrameNotStarted        = errors.New("renderer: no frame in progress")
	ErrForeignCommandBuffer   = errors.New("renderer: command buffer does not belong to the current frame")
	ErrSwapChainFormatChanged = errors.New("renderer: swap chain image or depth format changed")
	ErrSurfaceClosed          = errors.New("renderer: surface closed while minimized")
)

// Surface is the window side of presentation.
type Surface interface {
	FramebufferExtent() (width, height int)
	WaitEvents()
	ShouldClose() bool
	WasResized() bool
	ResetResized()
}

// SwapChain is the presentation engine the renderer drives. *vulkan.SwapChain
// implements it.
type SwapChain interface {
	AcquireNextImage() (uint32, error)
	SubmitCommandBuffers(buffers []vk.CommandBuffer, imageIndex uint32) error
	RenderPass() vk.RenderPass
	Framebuffer(i int) vk.Framebuffer
	Extent() vk.Extent2D
	ExtentAspectRatio() float32
	ImageFormat() vk.Format
	DepthFormat() vk.Format
	CompareSwapFormats(other vulkan.SwapFormats) bool
	// CurrentFrame is the frame slot the next submission uses. It starts at
	// zero and advances on every present.
	CurrentFrame() int
	Destroy()
}

// SwapChainFactory builds a swap chain for extent. previous is nil on first
// use and otherwise the chain being replaced; the factory must not destroy it.
type SwapChainFactory func(extent vk.Extent2D, previous SwapChain) (SwapChain, error)

// FrameCommands is a primary command buffer owned by one frame slot.
type FrameCommands interface {
	vulkan.Recorder
	Begin() error
	End() error
	Reset() error
	Buffer() vk.CommandBuffer
}

type CommandDevice interface {
	WaitIdle() error
	AllocateFrameCommands(count int) ([]FrameCommands, error)
	FreeFrameCommands(commands []FrameCommands)
}

type Options struct {
	FramesInFlight int
	ClearColor     [4]float32
}

func DefaultOptions() Options {
	return Options{
		FramesInFlight: vulkan.MaxFramesInFlight,
		ClearColor:     [4]float32{0.01, 0.01, 0.01, 1},
	}
}

// Stats counts what the renderer has done since it was created.
type Stats struct {
	FramesPresented uint64
	FramesSkipped   uint64
	Recreations     uint64
}

// Renderer owns the swap chain and one command buffer per frame in flight.
// It is not safe for concurrent use.
type Renderer struct {
	surface      Surface
	device       CommandDevice
	newSwapChain SwapChainFactory
	opts         Options
	logger       *slog.Logger

	swapChain SwapChain
	commands  []FrameCommands

	currentImage uint32
	frameIndex   int
	frameStarted bool
	stats        Stats
}

func New(surface Surface, device CommandDevice, factory SwapChainFactory, opts Options, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.FramesInFlight <= 0 {
		opts.FramesInFlight = vulkan.MaxFramesInFlight
	}

	r := &Renderer{
		surface:      surface,
		device:       device,
		newSwapChain: factory,
		opts:         opts,
		logger:       logger,
	}

	if err := r.recreateSwapChain(); err != nil {
		return nil, err
	}

	commands, err := device.AllocateFrameCommands(opts.FramesInFlight)
	if err != nil {
		r.swapChain.Destroy()
		return nil, fmt.Errorf("failed to allocate frame command buffers: %w", err)
	}
	r.commands = commands

	return r, nil
}

func (r *Renderer) recreateSwapChain() error {
	width, height := r.surface.FramebufferExtent()
	for width <= 0 || height <= 0 {
		if r.surface.ShouldClose() {
			return ErrSurfaceClosed
		}
		r.surface.WaitEvents()
		width, height = r.surface.FramebufferExtent()
	}
	r.surface.ResetResized()

	if err := r.device.WaitIdle(); err != nil {
		return fmt.Errorf("failed to wait for device idle: %w", err)
	}

	extent := vk.Extent2D{Width: uint32(width), Height: uint32(height)}
	old := r.swapChain
	next, err := r.newSwapChain(extent, old)
	if err != nil {
		return fmt.Errorf("failed to create swap chain: %w", err)
	}
	r.swapChain = next

	if old == nil {
		r.logger.Info("swap chain created", "width", extent.Width, "height", extent.Height)
		return nil
	}

	old.Destroy()
	r.stats.Recreations++

	if !next.CompareSwapFormats(old) {
		return ErrSwapChainFormatChanged
	}

	got := next.Extent()
	r.logger.Debug("swap chain recreated", "width", got.Width, "height", got.Height)
	return nil
}

// BeginFrame acquires the next image and starts recording the current frame
// slot. It returns nil commands and nil error when the surface was out of
// date; the swap chain has then been rebuilt and the caller skips the frame.
func (r *Renderer) BeginFrame() (FrameCommands, error) {
	if r.frameStarted {
		return nil, ErrFrameInProgress
	}

	imageIndex, err := r.swapChain.AcquireNextImage()
	if errors.Is(err, vulkan.ErrSurfaceOutOfDate) {
		r.stats.FramesSkipped++
		return nil, r.recreateSwapChain()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire swap chain image: %w", err)
	}
	r.currentImage = imageIndex
	r.frameIndex = r.swapChain.CurrentFrame()
	if r.frameIndex < 0 || r.frameIndex >= len(r.commands) {
		return nil, fmt.Errorf("swap chain frame slot %d outside %d command buffers", r.frameIndex, len(r.commands))
	}

	cmd := r.commands[r.frameIndex]
	if err := cmd.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset command buffer: %w", err)
	}
	if err := cmd.Begin(); err != nil {
		return nil, err
	}

	r.frameStarted = true
	return cmd, nil
}

// EndFrame finishes recording, submits and presents. A stale surface or a
// pending resize rebuilds the swap chain.
func (r *Renderer) EndFrame() error {
	if !r.frameStarted {
		return ErrFrameNotStarted
	}
	r.frameStarted = false

	cmd := r.commands[r.frameIndex]
	if err := cmd.End(); err != nil {
		return err
	}

	err := r.swapChain.SubmitCommandBuffers([]vk.CommandBuffer{cmd.Buffer()}, r.currentImage)
	stale := errors.Is(err, vulkan.ErrSurfaceOutOfDate) || errors.Is(err, vulkan.ErrSurfaceSuboptimal)
	if err != nil && !stale {
		return fmt.Errorf("failed to present swap chain image: %w", err)
	}
	r.stats.FramesPresented++

	if stale || r.surface.WasResized() {
		return r.recreateSwapChain()
	}
	return nil
}

// BeginSwapChainRenderPass begins the render pass on the acquired image and
// covers the whole extent with the viewport and scissor.
func (r *Renderer) BeginSwapChainRenderPass(cmd FrameCommands) error {
	if err := r.checkCommands(cmd); err != nil {
		return err
	}

	extent := r.swapChain.Extent()
	clearValues := []vk.ClearValue{
		vk.NewClearValue(r.opts.ClearColor[:]),
		vk.NewClearDepthStencil(1.0, 0),
	}
	cmd.BeginRenderPass(r.swapChain.RenderPass(), r.swapChain.Framebuffer(int(r.currentImage)), extent, clearValues)

	cmd.SetViewport(vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	})
	cmd.SetScissor(vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	})
	return nil
}

func (r *Renderer) EndSwapChainRenderPass(cmd FrameCommands) error {
	if err := r.checkCommands(cmd); err != nil {
		return err
	}
	cmd.EndRenderPass()
	return nil
}

func (r *Renderer) checkCommands(cmd FrameCommands) error {
	if !r.frameStarted {
		return ErrFrameNotStarted
	}
	if cmd != r.commands[r.frameIndex] {
		return ErrForeignCommandBuffer
	}
	return nil
}

// CurrentCommandBuffer returns the buffer of the frame being recorded.
func (r *Renderer) CurrentCommandBuffer() (FrameCommands, error) {
	if !r.frameStarted {
		return nil, ErrFrameNotStarted
	}
	return r.commands[r.frameIndex], nil
}

func (r *Renderer) AspectRatio() float32 { return r.swapChain.ExtentAspectRatio() }
func (r *Renderer) SwapChainRenderPass() vk.RenderPass { return r.swapChain.RenderPass() }
func (r *Renderer) Extent() vk.Extent2D { return r.swapChain.Extent() }
func (r *Renderer) IsFrameInProgress() bool { return r.frameStarted }
func (r *Renderer) Stats() Stats { return r.stats }

// FrameIndex is the slot of the frame being recorded or, between frames, the
// slot the next frame will use.
func (r *Renderer) FrameIndex() int {
	if r.frameStarted || r.swapChain == nil {
		return r.frameIndex
	}
	return r.swapChain.CurrentFrame()
}

// Close waits for the device to go idle and releases the command buffers
// and the swap chain.
func (r *Renderer) Close() error {
	err := r.device.WaitIdle()
	if r.commands != nil {
		r.device.FreeFrameCommands(r.commands)
		r.commands = nil
	}
	if r.swapChain != nil {
		r.swapChain.Destroy()
		r.swapChain = nil
	}
	r.frameStarted = false
	return err
}
