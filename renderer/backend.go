package renderer

import (
	"log/slog"

	vk "github.com/vulkan-go/vulkan"

	"vk-engine/vulkan"
)

var (
	_ SwapChain     = (*vulkan.SwapChain)(nil)
	_ FrameCommands = (*vulkan.CommandBuffer)(nil)
	_ CommandDevice = deviceCommands{}
)

// deviceCommands hands out frame command buffers from the device pool.
type deviceCommands struct {
	device *vulkan.Device
}

func (d deviceCommands) WaitIdle() error {
	return d.device.WaitIdle()
}

func (d deviceCommands) AllocateFrameCommands(count int) ([]FrameCommands, error) {
	buffers, err := vulkan.AllocateCommandBuffers(d.device, uint32(count))
	if err != nil {
		return nil, err
	}
	commands := make([]FrameCommands, len(buffers))
	for i, b := range buffers {
		commands[i] = b
	}
	return commands, nil
}

func (d deviceCommands) FreeFrameCommands(commands []FrameCommands) {
	buffers := make([]*vulkan.CommandBuffer, 0, len(commands))
	for _, c := range commands {
		if b, ok := c.(*vulkan.CommandBuffer); ok {
			buffers = append(buffers, b)
		}
	}
	vulkan.FreeCommandBuffers(d.device, buffers)
}

// SwapChains returns a factory building vulkan swap chains on device.
func SwapChains(device *vulkan.Device, framesInFlight int, vsync bool, logger *slog.Logger) SwapChainFactory {
	return func(extent vk.Extent2D, previous SwapChain) (SwapChain, error) {
		var old *vulkan.SwapChain
		if previous != nil {
			old, _ = previous.(*vulkan.SwapChain)
		}
		sc, err := vulkan.NewSwapChain(device, vulkan.SwapChainConfig{
			Extent:         extent,
			FramesInFlight: framesInFlight,
			VSync:          vsync,
		}, old, logger)
		if err != nil {
			return nil, err
		}
		return sc, nil
	}
}

// NewVulkan wires a Renderer to a vulkan device.
func NewVulkan(surface Surface, device *vulkan.Device, opts Options, logger *slog.Logger) (*Renderer, error) {
	if opts.FramesInFlight <= 0 {
		opts.FramesInFlight = vulkan.MaxFramesInFlight
	}
	factory := SwapChains(device, opts.FramesInFlight, device.Config.VSync, logger)
	return New(surface, deviceCommands{device: device}, factory, opts, logger)
}
