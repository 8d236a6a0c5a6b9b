package renderer

import (
	"errors"

	vk "github.com/vulkan-go/vulkan"

	"vk-engine/vulkan"
)

type fakeSurface struct {
	width, height int
	resized       bool
	closed        bool

	// zeroForWaits reports a zero extent until WaitEvents has been called
	// this many more times.
	zeroForWaits int
	waits        int
}

func newFakeSurface(w, h int) *fakeSurface {
	return &fakeSurface{width: w, height: h}
}

func (s *fakeSurface) FramebufferExtent() (int, int) {
	if s.zeroForWaits > 0 {
		return 0, 0
	}
	return s.width, s.height
}

func (s *fakeSurface) WaitEvents() {
	s.waits++
	if s.zeroForWaits > 0 {
		s.zeroForWaits--
	}
}

func (s *fakeSurface) ShouldClose() bool { return s.closed }
func (s *fakeSurface) WasResized() bool  { return s.resized }
func (s *fakeSurface) ResetResized()     { s.resized = false }

func (s *fakeSurface) resize(w, h int) {
	s.width, s.height = w, h
	s.resized = true
}

type fakeSwapChain struct {
	id          int
	extent      vk.Extent2D
	imageFormat vk.Format
	depthFormat vk.Format
	imageCount  uint32

	nextImage      uint32
	frame          int
	framesInFlight int
	acquireErr     []error
	submitErr      []error
	submitted      int
	destroyed      int
	// destroyed count of the previous chain when this one was built
	previousDestroyedAtCreation int
}

func (sc *fakeSwapChain) AcquireNextImage() (uint32, error) {
	if len(sc.acquireErr) > 0 {
		err := sc.acquireErr[0]
		sc.acquireErr = sc.acquireErr[1:]
		if err != nil {
			return 0, err
		}
	}
	i := sc.nextImage
	sc.nextImage = (sc.nextImage + 1) % sc.imageCount
	return i, nil
}

func (sc *fakeSwapChain) SubmitCommandBuffers(buffers []vk.CommandBuffer, imageIndex uint32) error {
	sc.submitted++
	var err error
	if len(sc.submitErr) > 0 {
		err = sc.submitErr[0]
		sc.submitErr = sc.submitErr[1:]
	}
	// a failed queue submit does not reach present and keeps the slot
	if !errors.Is(err, vulkan.ErrSubmission) {
		sc.frame = (sc.frame + 1) % sc.framesInFlight
	}
	return err
}

func (sc *fakeSwapChain) RenderPass() vk.RenderPass { return vk.NullRenderPass }
func (sc *fakeSwapChain) Framebuffer(i int) vk.Framebuffer {
	return vk.NullFramebuffer
}
func (sc *fakeSwapChain) Extent() vk.Extent2D    { return sc.extent }
func (sc *fakeSwapChain) ImageFormat() vk.Format { return sc.imageFormat }
func (sc *fakeSwapChain) DepthFormat() vk.Format { return sc.depthFormat }
func (sc *fakeSwapChain) CurrentFrame() int     { return sc.frame }
func (sc *fakeSwapChain) Destroy()               { sc.destroyed++ }

func (sc *fakeSwapChain) CompareSwapFormats(other vulkan.SwapFormats) bool {
	return sc.imageFormat == other.ImageFormat() && sc.depthFormat == other.DepthFormat()
}

func (sc *fakeSwapChain) ExtentAspectRatio() float32 {
	return float32(sc.extent.Width) / float32(sc.extent.Height)
}

// fakeSwapChains records every chain it builds.
type fakeSwapChains struct {
	chains      []*fakeSwapChain
	imageFormat vk.Format
	err         error
}

func newFakeSwapChains() *fakeSwapChains {
	return &fakeSwapChains{imageFormat: vk.FormatB8g8r8a8Srgb}
}

func (f *fakeSwapChains) factory() SwapChainFactory {
	return func(extent vk.Extent2D, previous SwapChain) (SwapChain, error) {
		if f.err != nil {
			return nil, f.err
		}
		sc := &fakeSwapChain{
			id:          len(f.chains),
			extent:      extent,
			imageFormat: f.imageFormat,
			depthFormat: vk.FormatD32Sfloat,
			imageCount:  3,

			framesInFlight: vulkan.MaxFramesInFlight,
		}
		if previous != nil {
			sc.previousDestroyedAtCreation = previous.(*fakeSwapChain).destroyed
		}
		f.chains = append(f.chains, sc)
		return sc, nil
	}
}

func (f *fakeSwapChains) current() *fakeSwapChain {
	return f.chains[len(f.chains)-1]
}

type fakeDevice struct {
	waitIdle  int
	allocated []*fakeCommands
	freed     int
}

func (d *fakeDevice) WaitIdle() error {
	d.waitIdle++
	return nil
}

func (d *fakeDevice) AllocateFrameCommands(count int) ([]FrameCommands, error) {
	commands := make([]FrameCommands, count)
	for i := range commands {
		c := &fakeCommands{}
		d.allocated = append(d.allocated, c)
		commands[i] = c
	}
	return commands, nil
}

func (d *fakeDevice) FreeFrameCommands(commands []FrameCommands) {
	d.freed += len(commands)
}

type pushCall struct {
	layout vk.PipelineLayout
	stages vk.ShaderStageFlagBits
	offset uint32
	data   []byte
}

// fakeCommands records what is written into it.
type fakeCommands struct {
	begun, ended, resets int

	renderPasses int
	clearValues  []vk.ClearValue
	viewport     vk.Viewport
	scissor      vk.Rect2D

	pipelines []vk.Pipeline
	pushes    []pushCall
	draws     int
	binds     int
	calls     []string
}

func (c *fakeCommands) Begin() error             { c.begun++; return nil }
func (c *fakeCommands) End() error               { c.ended++; return nil }
func (c *fakeCommands) Reset() error             { c.resets++; return nil }
func (c *fakeCommands) Buffer() vk.CommandBuffer { return vk.CommandBuffer(vk.NullHandle) }

func (c *fakeCommands) BeginRenderPass(renderPass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clearValues []vk.ClearValue) {
	c.renderPasses++
	c.clearValues = clearValues
	c.calls = append(c.calls, "beginRenderPass")
}

func (c *fakeCommands) EndRenderPass() {
	c.calls = append(c.calls, "endRenderPass")
}

func (c *fakeCommands) SetViewport(viewport vk.Viewport) {
	c.viewport = viewport
	c.calls = append(c.calls, "viewport")
}

func (c *fakeCommands) SetScissor(scissor vk.Rect2D) {
	c.scissor = scissor
	c.calls = append(c.calls, "scissor")
}

func (c *fakeCommands) BindPipeline(pipeline vk.Pipeline) {
	c.pipelines = append(c.pipelines, pipeline)
	c.calls = append(c.calls, "bindPipeline")
}

func (c *fakeCommands) PushConstants(layout vk.PipelineLayout, stages vk.ShaderStageFlagBits, offset uint32, data []byte) {
	c.pushes = append(c.pushes, pushCall{layout: layout, stages: stages, offset: offset, data: data})
	c.calls = append(c.calls, "push")
}

func (c *fakeCommands) BindVertexBuffers(buffers []vk.Buffer, offsets []vk.DeviceSize) {
	c.binds++
	c.calls = append(c.calls, "bindVertices")
}

func (c *fakeCommands) BindIndexBuffer(buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	c.calls = append(c.calls, "bindIndices")
}

func (c *fakeCommands) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	c.draws++
	c.calls = append(c.calls, "draw")
}

func (c *fakeCommands) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	c.draws++
	c.calls = append(c.calls, "drawIndexed")
}
