package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// oneShotCommands is the device work behind a single-submission command
// buffer.
type oneShotCommands interface {
	allocate() (vk.CommandBuffer, error)
	begin(cmd vk.CommandBuffer) error
	end(cmd vk.CommandBuffer) error
	submit(cmd vk.CommandBuffer) error
	waitIdle() error
	free(cmd vk.CommandBuffer)
}

// graphicsQueueCommands runs one-shot buffers from the device pool on the
// graphics queue.
type graphicsQueueCommands struct {
	device *Device
}

func (g graphicsQueueCommands) allocate() (vk.CommandBuffer, error) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		Level:              vk.CommandBufferLevelPrimary,
		CommandPool:        g.device.CommandPool,
		CommandBufferCount: 1,
	}

	buffers := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(g.device.Device, &allocInfo, buffers)); err != nil {
		return nil, err
	}
	return buffers[0], nil
}

func (g graphicsQueueCommands) begin(cmd vk.CommandBuffer) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	return vk.Error(vk.BeginCommandBuffer(cmd, &beginInfo))
}

func (g graphicsQueueCommands) end(cmd vk.CommandBuffer) error {
	return vk.Error(vk.EndCommandBuffer(cmd))
}

func (g graphicsQueueCommands) submit(cmd vk.CommandBuffer) error {
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}
	return vk.Error(vk.QueueSubmit(g.device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence))
}

func (g graphicsQueueCommands) waitIdle() error {
	return vk.Error(vk.QueueWaitIdle(g.device.GraphicsQueue))
}

func (g graphicsQueueCommands) free(cmd vk.CommandBuffer) {
	vk.FreeCommandBuffers(g.device.Device, g.device.CommandPool, 1, []vk.CommandBuffer{cmd})
}

// BeginSingleTimeCommands allocates a primary command buffer from the device
// pool and starts recording it for one submission.
func BeginSingleTimeCommands(device *Device) (vk.CommandBuffer, error) {
	return beginSingleTime(graphicsQueueCommands{device: device})
}

// EndSingleTimeCommands submits cmd to the graphics queue, waits for the
// queue to drain and frees the buffer whatever the outcome.
func EndSingleTimeCommands(device *Device, cmd vk.CommandBuffer) error {
	return endSingleTime(graphicsQueueCommands{device: device}, cmd)
}

// ExecuteSingleTimeCommands records fn into a one-shot command buffer and
// runs it to completion.
func ExecuteSingleTimeCommands(device *Device, fn func(cmd vk.CommandBuffer)) error {
	return executeSingleTime(graphicsQueueCommands{device: device}, fn)
}

func beginSingleTime(q oneShotCommands) (vk.CommandBuffer, error) {
	cmd, err := q.allocate()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate command buffer: %w", err)
	}
	if err := q.begin(cmd); err != nil {
		q.free(cmd)
		return nil, fmt.Errorf("failed to begin command buffer: %w", err)
	}
	return cmd, nil
}

func endSingleTime(q oneShotCommands, cmd vk.CommandBuffer) error {
	defer q.free(cmd)

	if err := q.end(cmd); err != nil {
		return fmt.Errorf("failed to end command buffer: %w", err)
	}
	if err := q.submit(cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrSubmission, err)
	}
	if err := q.waitIdle(); err != nil {
		return fmt.Errorf("failed to wait for graphics queue: %w", err)
	}
	return nil
}

func executeSingleTime(q oneShotCommands, fn func(cmd vk.CommandBuffer)) error {
	cmd, err := beginSingleTime(q)
	if err != nil {
		return err
	}
	fn(cmd)
	return endSingleTime(q, cmd)
}

func CopyBuffer(device *Device, src, dst vk.Buffer, size vk.DeviceSize) error {
	return ExecuteSingleTimeCommands(device, func(cmd vk.CommandBuffer) {
		region := vk.BufferCopy{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		}
		vk.CmdCopyBuffer(cmd, src, dst, 1, []vk.BufferCopy{region})
	})
}

// CopyBufferToImage copies tightly packed pixel data into an image that is
// already in the transfer-destination layout.
func CopyBufferToImage(device *Device, buffer vk.Buffer, image vk.Image, width, height, layerCount uint32) error {
	region := bufferImageRegion(width, height, layerCount)
	return ExecuteSingleTimeCommands(device, func(cmd vk.CommandBuffer) {
		vk.CmdCopyBufferToImage(cmd, buffer, image, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
	})
}

// bufferImageRegion covers a whole width x height image from offset zero of a
// tightly packed buffer.
func bufferImageRegion(width, height, layerCount uint32) vk.BufferImageCopy {
	return vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     layerCount,
		},
		ImageOffset: vk.Offset3D{X: 0, Y: 0, Z: 0},
		ImageExtent: vk.Extent3D{Width: width, Height: height, Depth: 1},
	}
}
