package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Recorder is the set of commands the draw pass records. CommandBuffer
// implements it against a real vk.CommandBuffer.
type Recorder interface {
	BeginRenderPass(renderPass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clearValues []vk.ClearValue)
	EndRenderPass()
	SetViewport(viewport vk.Viewport)
	SetScissor(scissor vk.Rect2D)
	BindPipeline(pipeline vk.Pipeline)
	PushConstants(layout vk.PipelineLayout, stages vk.ShaderStageFlagBits, offset uint32, data []byte)
	BindVertexBuffers(buffers []vk.Buffer, offsets []vk.DeviceSize)
	BindIndexBuffer(buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32)
}

type CommandBuffer struct {
	Handle vk.CommandBuffer
}

var _ Recorder = (*CommandBuffer)(nil)

func AllocateCommandBuffers(device *Device, count uint32) ([]*CommandBuffer, error) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        device.CommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}

	handles := make([]vk.CommandBuffer, count)
	if err := vk.Error(vk.AllocateCommandBuffers(device.Device, &allocInfo, handles)); err != nil {
		return nil, fmt.Errorf("failed to allocate command buffers: %w", err)
	}

	buffers := make([]*CommandBuffer, count)
	for i, h := range handles {
		buffers[i] = &CommandBuffer{Handle: h}
	}
	return buffers, nil
}

func FreeCommandBuffers(device *Device, buffers []*CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	handles := make([]vk.CommandBuffer, len(buffers))
	for i, b := range buffers {
		handles[i] = b.Handle
	}
	vk.FreeCommandBuffers(device.Device, device.CommandPool, uint32(len(handles)), handles)
}

func (cb *CommandBuffer) Begin() error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if err := vk.Error(vk.BeginCommandBuffer(cb.Handle, &beginInfo)); err != nil {
		return fmt.Errorf("failed to begin recording command buffer: %w", err)
	}
	return nil
}

func (cb *CommandBuffer) End() error {
	if err := vk.Error(vk.EndCommandBuffer(cb.Handle)); err != nil {
		return fmt.Errorf("failed to record command buffer: %w", err)
	}
	return nil
}

func (cb *CommandBuffer) Reset() error {
	return vk.Error(vk.ResetCommandBuffer(cb.Handle, 0))
}

func (cb *CommandBuffer) BeginRenderPass(renderPass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clearValues []vk.ClearValue) {
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(cb.Handle, &renderPassInfo, vk.SubpassContentsInline)
}

func (cb *CommandBuffer) EndRenderPass() {
	vk.CmdEndRenderPass(cb.Handle)
}

func (cb *CommandBuffer) SetViewport(viewport vk.Viewport) {
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewport})
}

func (cb *CommandBuffer) SetScissor(scissor vk.Rect2D) {
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissor})
}

func (cb *CommandBuffer) BindPipeline(pipeline vk.Pipeline) {
	vk.CmdBindPipeline(cb.Handle, vk.PipelineBindPointGraphics, pipeline)
}

func (cb *CommandBuffer) PushConstants(layout vk.PipelineLayout, stages vk.ShaderStageFlagBits, offset uint32, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(cb.Handle, layout, vk.ShaderStageFlags(stages), offset, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (cb *CommandBuffer) BindVertexBuffers(buffers []vk.Buffer, offsets []vk.DeviceSize) {
	vk.CmdBindVertexBuffers(cb.Handle, 0, uint32(len(buffers)), buffers, offsets)
}

func (cb *CommandBuffer) BindIndexBuffer(buffer vk.Buffer, offset vk.DeviceSize, indexType vk.IndexType) {
	vk.CmdBindIndexBuffer(cb.Handle, buffer, offset, indexType)
}

func (cb *CommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(cb.Handle, vertexCount, instanceCount, firstVertex, firstInstance)
}

func (cb *CommandBuffer) DrawIndexed(indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) {
	vk.CmdDrawIndexed(cb.Handle, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

// Buffer returns the raw handle for queue submission.
func (cb *CommandBuffer) Buffer() vk.CommandBuffer {
	return cb.Handle
}
