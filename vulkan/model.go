package vulkan

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// Vertex is the layout consumed by the scene shaders.
type Vertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

const vertexSize = uint32(unsafe.Sizeof(Vertex{}))

// VertexDescription returns the binding and attribute layout of Vertex.
func VertexDescription() VertexInputDescription {
	return VertexInputDescription{
		BindingDescriptions: []vk.VertexInputBindingDescription{{
			Binding:   0,
			Stride:    vertexSize,
			InputRate: vk.VertexInputRateVertex,
		}},
		AttributeDescriptions: []vk.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Position))},
			{Location: 1, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Color))},
			{Location: 2, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.Normal))},
			{Location: 3, Binding: 0, Format: vk.FormatR32g32Sfloat, Offset: uint32(unsafe.Offsetof(Vertex{}.UV))},
		},
	}
}

// Model holds device-local vertex and optional index buffers. One model is
// usually shared by many scene entries.
type Model struct {
	vertexBuffer *Buffer
	vertexCount  uint32
	indexBuffer  *Buffer
	indexCount   uint32
}

// NewModel uploads vertices, and indices when given, through host-visible
// staging buffers.
func NewModel(device *Device, vertices []Vertex, indices []uint32) (*Model, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("model needs at least 3 vertices, got %d", len(vertices))
	}

	m := &Model{vertexCount: uint32(len(vertices))}

	vertexBytes := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(vertexSize))
	vb, err := uploadDeviceLocal(device, vertexBytes, vk.BufferUsageVertexBufferBit)
	if err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}
	m.vertexBuffer = vb

	if len(indices) > 0 {
		indexBytes := unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
		ib, err := uploadDeviceLocal(device, indexBytes, vk.BufferUsageIndexBufferBit)
		if err != nil {
			m.Destroy(device)
			return nil, fmt.Errorf("index buffer: %w", err)
		}
		m.indexBuffer = ib
		m.indexCount = uint32(len(indices))
	}
	return m, nil
}

func uploadDeviceLocal(device *Device, data []byte, usage vk.BufferUsageFlagBits) (*Buffer, error) {
	size := vk.DeviceSize(len(data))

	staging, err := CreateBuffer(device, size, vk.BufferUsageTransferSrcBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, fmt.Errorf("staging buffer: %w", err)
	}
	defer staging.Destroy(device)

	if err := staging.Map(device); err != nil {
		return nil, err
	}
	if err := staging.WriteToBuffer(data); err != nil {
		return nil, err
	}
	staging.Unmap(device)

	buffer, err := CreateBuffer(device, size, usage|vk.BufferUsageTransferDstBit, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}
	if err := CopyBuffer(device, staging.Handle, buffer.Handle, size); err != nil {
		buffer.Destroy(device)
		return nil, err
	}
	return buffer, nil
}

func (m *Model) Bind(cmd Recorder) {
	cmd.BindVertexBuffers([]vk.Buffer{m.vertexBuffer.Handle}, []vk.DeviceSize{0})
	if m.indexBuffer != nil {
		cmd.BindIndexBuffer(m.indexBuffer.Handle, 0, vk.IndexTypeUint32)
	}
}

func (m *Model) Draw(cmd Recorder) {
	if m.indexBuffer != nil {
		cmd.DrawIndexed(m.indexCount, 1, 0, 0, 0)
		return
	}
	cmd.Draw(m.vertexCount, 1, 0, 0)
}

func (m *Model) VertexCount() uint32 { return m.vertexCount }
func (m *Model) IndexCount() uint32  { return m.indexCount }

func (m *Model) Destroy(device *Device) {
	if m == nil {
		return
	}
	m.vertexBuffer.Destroy(device)
	m.indexBuffer.Destroy(device)
}
