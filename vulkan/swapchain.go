package vulkan

import (
	"errors"
	"fmt"
	"log/slog"

	vk "github.com/vulkan-go/vulkan"
)

type SwapChainConfig struct {
	Extent         vk.Extent2D
	FramesInFlight int
	VSync          bool
}

// SwapChain owns the presentable images and everything sized by them: image
// views, depth images, framebuffers and the render pass, plus the per-frame
// semaphores and fences.
type SwapChain struct {
	Handle       vk.Swapchain
	Images       []vk.Image
	ImageViews   []vk.ImageView
	DepthImages  []*Image
	Framebuffers []vk.Framebuffer
	PresentMode  vk.PresentMode

	device      *Device
	renderPass  vk.RenderPass
	imageFormat vk.Format
	depthFormat vk.Format
	extent      vk.Extent2D

	imageAvailable []*Semaphore
	renderFinished []*Semaphore
	inFlight       []*Fence
	frames         *frameTracker

	logger    *slog.Logger
	destroyed bool
}

// NewSwapChain builds a swapchain for the device surface. When previous is
// not nil it is handed to the driver as the old swapchain; the caller still
// owns it and destroys it once the new one is ready.
func NewSwapChain(device *Device, config SwapChainConfig, previous *SwapChain, logger *slog.Logger) (*SwapChain, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.FramesInFlight <= 0 {
		config.FramesInFlight = MaxFramesInFlight
	}

	sc := &SwapChain{
		device: device,
		logger: logger,
	}

	steps := []func() error{
		func() error { return sc.createSwapChain(config, previous) },
		sc.createImageViews,
		sc.createRenderPass,
		sc.createDepthResources,
		sc.createFramebuffers,
		func() error { return sc.createSyncObjects(config.FramesInFlight) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			sc.Destroy()
			return nil, err
		}
	}

	logger.Debug("swapchain created",
		"width", sc.extent.Width,
		"height", sc.extent.Height,
		"images", len(sc.Images),
		"format", sc.imageFormat,
		"present_mode", sc.PresentMode)
	return sc, nil
}

func (sc *SwapChain) createSwapChain(config SwapChainConfig, previous *SwapChain) error {
	support, err := sc.device.SwapChainSupport()
	if err != nil {
		return fmt.Errorf("failed to query swapchain support: %w", err)
	}
	if !support.Adequate() {
		return fmt.Errorf("%w: surface has no formats or present modes", ErrNoSupportedFormat)
	}

	surfaceFormat := chooseSurfaceFormat(support.Formats)
	presentMode := choosePresentMode(support.PresentModes, config.VSync)
	extent := chooseExtent(support.Capabilities, config.Extent)

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          sc.device.Surface,
		MinImageCount:    imageCount(support.Capabilities),
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if previous != nil {
		createInfo.OldSwapchain = previous.Handle
	}

	families := sc.device.Families
	if families.Graphics != families.Present {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{families.Graphics, families.Present}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(sc.device.Device, &createInfo, nil, &handle)); err != nil {
		return fmt.Errorf("failed to create swap chain: %w", err)
	}
	sc.Handle = handle

	var count uint32
	vk.GetSwapchainImages(sc.device.Device, sc.Handle, &count, nil)
	images := make([]vk.Image, count)
	vk.GetSwapchainImages(sc.device.Device, sc.Handle, &count, images)

	sc.Images = images
	sc.imageFormat = surfaceFormat.Format
	sc.extent = extent
	sc.PresentMode = presentMode
	return nil
}

func (sc *SwapChain) createImageViews() error {
	sc.ImageViews = make([]vk.ImageView, 0, len(sc.Images))
	for i, image := range sc.Images {
		view, err := CreateImageView(sc.device, image, sc.imageFormat, vk.ImageAspectColorBit)
		if err != nil {
			return fmt.Errorf("image view %d: %w", i, err)
		}
		sc.ImageViews = append(sc.ImageViews, view)
	}
	return nil
}

func (sc *SwapChain) createDepthResources() error {
	sc.DepthImages = make([]*Image, 0, len(sc.Images))
	for i := range sc.Images {
		depth, err := CreateDepthImage(sc.device, sc.depthFormat, sc.extent)
		if err != nil {
			return fmt.Errorf("depth image %d: %w", i, err)
		}
		sc.DepthImages = append(sc.DepthImages, depth)
	}
	return nil
}

func (sc *SwapChain) createRenderPass() error {
	depthFormat, err := sc.device.FindDepthFormat()
	if err != nil {
		return fmt.Errorf("depth format: %w", err)
	}
	sc.depthFormat = depthFormat

	renderPass, err := CreateRenderPass(sc.device, sc.imageFormat, sc.depthFormat)
	if err != nil {
		return err
	}
	sc.renderPass = renderPass
	return nil
}

func (sc *SwapChain) createFramebuffers() error {
	sc.Framebuffers = make([]vk.Framebuffer, 0, len(sc.ImageViews))
	for i, view := range sc.ImageViews {
		attachments := []vk.ImageView{view, sc.DepthImages[i].View}
		framebufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      sc.renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           sc.extent.Width,
			Height:          sc.extent.Height,
			Layers:          1,
		}

		var framebuffer vk.Framebuffer
		if err := vk.Error(vk.CreateFramebuffer(sc.device.Device, &framebufferInfo, nil, &framebuffer)); err != nil {
			return fmt.Errorf("failed to create framebuffer %d: %w", i, err)
		}
		sc.Framebuffers = append(sc.Framebuffers, framebuffer)
	}
	return nil
}

func (sc *SwapChain) createSyncObjects(framesInFlight int) error {
	for i := 0; i < framesInFlight; i++ {
		available, err := CreateSemaphore(sc.device)
		if err != nil {
			return err
		}
		sc.imageAvailable = append(sc.imageAvailable, available)

		finished, err := CreateSemaphore(sc.device)
		if err != nil {
			return err
		}
		sc.renderFinished = append(sc.renderFinished, finished)

		fence, err := CreateFence(sc.device, true)
		if err != nil {
			return err
		}
		sc.inFlight = append(sc.inFlight, fence)
	}
	sc.frames = newFrameTracker(framesInFlight, len(sc.Images))
	return nil
}

// AcquireNextImage waits for the current frame slot to retire and then
// acquires the next presentable image. A suboptimal surface still yields a
// usable image and is not reported.
func (sc *SwapChain) AcquireNextImage() (uint32, error) {
	current := sc.frames.current
	if err := sc.inFlight[current].Wait(sc.device, vk.MaxUint64); err != nil {
		return 0, err
	}

	var imageIndex uint32
	ret := vk.AcquireNextImage(sc.device.Device, sc.Handle, vk.MaxUint64,
		sc.imageAvailable[current].Handle, vk.NullFence, &imageIndex)
	err := presentResult(ret)
	if errors.Is(err, ErrSurfaceSuboptimal) {
		err = nil
	}
	return imageIndex, err
}

// SubmitCommandBuffers submits the recorded frame and presents imageIndex.
// The frame slot advances whether or not presentation reports an out of
// date surface.
func (sc *SwapChain) SubmitCommandBuffers(buffers []vk.CommandBuffer, imageIndex uint32) error {
	if previous, mustWait := sc.frames.claim(imageIndex); mustWait {
		if err := sc.inFlight[previous].Wait(sc.device, vk.MaxUint64); err != nil {
			return err
		}
	}

	current := sc.frames.current
	if err := sc.inFlight[current].Reset(sc.device); err != nil {
		return err
	}

	waitSemaphores := []vk.Semaphore{sc.imageAvailable[current].Handle}
	signalSemaphores := []vk.Semaphore{sc.renderFinished[current].Handle}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   uint32(len(waitSemaphores)),
		PWaitSemaphores:      waitSemaphores,
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   uint32(len(buffers)),
		PCommandBuffers:      buffers,
		SignalSemaphoreCount: uint32(len(signalSemaphores)),
		PSignalSemaphores:    signalSemaphores,
	}
	if err := vk.Error(vk.QueueSubmit(sc.device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, sc.inFlight[current].Handle)); err != nil {
		return fmt.Errorf("%w: %w", ErrSubmission, err)
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(signalSemaphores)),
		PWaitSemaphores:    signalSemaphores,
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.Handle},
		PImageIndices:      []uint32{imageIndex},
	}
	ret := vk.QueuePresent(sc.device.PresentQueue, &presentInfo)

	sc.frames.advance()
	return presentResult(ret)
}

func (sc *SwapChain) RenderPass() vk.RenderPass         { return sc.renderPass }
func (sc *SwapChain) Framebuffer(i int) vk.Framebuffer { return sc.Framebuffers[i] }
func (sc *SwapChain) ImageCount() int                  { return len(sc.Images) }
func (sc *SwapChain) ImageFormat() vk.Format           { return sc.imageFormat }
func (sc *SwapChain) DepthFormat() vk.Format           { return sc.depthFormat }
func (sc *SwapChain) Extent() vk.Extent2D              { return sc.extent }
func (sc *SwapChain) Width() uint32                    { return sc.extent.Width }
func (sc *SwapChain) Height() uint32                   { return sc.extent.Height }
func (sc *SwapChain) CurrentFrame() int                { return sc.frames.current }

func (sc *SwapChain) ExtentAspectRatio() float32 {
	if sc.extent.Height == 0 {
		return 1
	}
	return float32(sc.extent.Width) / float32(sc.extent.Height)
}

// SwapFormats is what CompareSwapFormats looks at.
type SwapFormats interface {
	ImageFormat() vk.Format
	DepthFormat() vk.Format
}

// CompareSwapFormats reports whether other renders to the same colour and
// depth formats, so pipelines built against this render pass stay valid.
func (sc *SwapChain) CompareSwapFormats(other SwapFormats) bool {
	return sc.imageFormat == other.ImageFormat() && sc.depthFormat == other.DepthFormat()
}

// Destroy releases everything the swapchain owns. It is safe to call more
// than once and on a partially built swapchain.
func (sc *SwapChain) Destroy() {
	if sc == nil || sc.destroyed {
		return
	}
	sc.destroyed = true
	device := sc.device

	for _, view := range sc.ImageViews {
		vk.DestroyImageView(device.Device, view, nil)
	}
	sc.ImageViews = nil

	if sc.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(device.Device, sc.Handle, nil)
		sc.Handle = vk.NullSwapchain
	}

	for _, depth := range sc.DepthImages {
		depth.Destroy(device)
	}
	sc.DepthImages = nil

	for _, framebuffer := range sc.Framebuffers {
		vk.DestroyFramebuffer(device.Device, framebuffer, nil)
	}
	sc.Framebuffers = nil

	if sc.renderPass != vk.NullRenderPass {
		DestroyRenderPass(device, sc.renderPass)
		sc.renderPass = vk.NullRenderPass
	}

	for i := range sc.inFlight {
		sc.inFlight[i].Destroy(device)
	}
	for i := range sc.imageAvailable {
		sc.imageAvailable[i].Destroy(device)
	}
	for i := range sc.renderFinished {
		sc.renderFinished[i].Destroy(device)
	}
	sc.inFlight, sc.imageAvailable, sc.renderFinished = nil, nil, nil
}
