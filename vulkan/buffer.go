package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a VkBuffer together with the memory bound to it.
type Buffer struct {
	Handle     vk.Buffer
	Memory     vk.DeviceMemory
	Size       vk.DeviceSize
	MappedData unsafe.Pointer
}

// Image is a 2D image with bound memory and an optional view.
type Image struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Format vk.Format
	Width  uint32
	Height uint32
}

// CreateBuffer creates a buffer and binds freshly allocated memory of the
// requested kind to it. On failure nothing is left allocated.
func CreateBuffer(device *Device, size vk.DeviceSize, usage vk.BufferUsageFlagBits, properties vk.MemoryPropertyFlagBits) (*Buffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}

	var handle vk.Buffer
	if err := vk.Error(vk.CreateBuffer(device.Device, &bufferInfo, nil, &handle)); err != nil {
		return nil, fmt.Errorf("failed to create buffer: %w", err)
	}

	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device.Device, handle, &memRequirements)
	memRequirements.Deref()

	memType, err := device.FindMemoryType(memRequirements.MemoryTypeBits, properties)
	if err != nil {
		vk.DestroyBuffer(device.Device, handle, nil)
		return nil, fmt.Errorf("buffer memory: %w", err)
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memType,
	}

	var memory vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(device.Device, &allocInfo, nil, &memory)); err != nil {
		vk.DestroyBuffer(device.Device, handle, nil)
		return nil, fmt.Errorf("failed to allocate buffer memory: %w", err)
	}

	if err := vk.Error(vk.BindBufferMemory(device.Device, handle, memory, 0)); err != nil {
		vk.FreeMemory(device.Device, memory, nil)
		vk.DestroyBuffer(device.Device, handle, nil)
		return nil, fmt.Errorf("failed to bind buffer memory: %w", err)
	}

	return &Buffer{
		Handle: handle,
		Memory: memory,
		Size:   size,
	}, nil
}

// Map maps the whole buffer. The memory must be host visible.
func (b *Buffer) Map(device *Device) error {
	if b.MappedData != nil {
		return nil
	}
	var data unsafe.Pointer
	if err := vk.Error(vk.MapMemory(device.Device, b.Memory, 0, b.Size, 0, &data)); err != nil {
		return fmt.Errorf("failed to map buffer memory: %w", err)
	}
	b.MappedData = data
	return nil
}

func (b *Buffer) Unmap(device *Device) {
	if b.MappedData == nil {
		return
	}
	vk.UnmapMemory(device.Device, b.Memory)
	b.MappedData = nil
}

// WriteToBuffer copies data into the mapped range starting at offset zero.
func (b *Buffer) WriteToBuffer(data []byte) error {
	if b.MappedData == nil {
		return fmt.Errorf("buffer is not mapped")
	}
	if vk.DeviceSize(len(data)) > b.Size {
		return fmt.Errorf("write of %d bytes exceeds buffer size %d", len(data), b.Size)
	}
	copy(unsafe.Slice((*byte)(b.MappedData), int(b.Size)), data)
	return nil
}

func (b *Buffer) Destroy(device *Device) {
	if b == nil || b.Handle == vk.NullBuffer {
		return
	}
	b.Unmap(device)
	vk.DestroyBuffer(device.Device, b.Handle, nil)
	vk.FreeMemory(device.Device, b.Memory, nil)
	b.Handle = vk.NullBuffer
	b.Memory = vk.NullDeviceMemory
}

// CreateImageWithInfo creates an image from info and binds memory with the
// requested properties to it.
func CreateImageWithInfo(device *Device, info vk.ImageCreateInfo, properties vk.MemoryPropertyFlagBits) (vk.Image, vk.DeviceMemory, error) {
	info.SType = vk.StructureTypeImageCreateInfo

	var image vk.Image
	if err := vk.Error(vk.CreateImage(device.Device, &info, nil, &image)); err != nil {
		return vk.NullImage, vk.NullDeviceMemory, fmt.Errorf("failed to create image: %w", err)
	}

	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device.Device, image, &memRequirements)
	memRequirements.Deref()

	memType, err := device.FindMemoryType(memRequirements.MemoryTypeBits, properties)
	if err != nil {
		vk.DestroyImage(device.Device, image, nil)
		return vk.NullImage, vk.NullDeviceMemory, fmt.Errorf("image memory: %w", err)
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memType,
	}

	var memory vk.DeviceMemory
	if err := vk.Error(vk.AllocateMemory(device.Device, &allocInfo, nil, &memory)); err != nil {
		vk.DestroyImage(device.Device, image, nil)
		return vk.NullImage, vk.NullDeviceMemory, fmt.Errorf("failed to allocate image memory: %w", err)
	}

	if err := vk.Error(vk.BindImageMemory(device.Device, image, memory, 0)); err != nil {
		vk.FreeMemory(device.Device, memory, nil)
		vk.DestroyImage(device.Device, image, nil)
		return vk.NullImage, vk.NullDeviceMemory, fmt.Errorf("failed to bind image memory: %w", err)
	}

	return image, memory, nil
}

func CreateImageView(device *Device, image vk.Image, format vk.Format, aspectFlags vk.ImageAspectFlagBits) (vk.ImageView, error) {
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(aspectFlags),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(device.Device, &viewInfo, nil, &view)); err != nil {
		return vk.NullImageView, fmt.Errorf("failed to create image view: %w", err)
	}
	return view, nil
}

// CreateDepthImage creates a device-local depth attachment with its view.
func CreateDepthImage(device *Device, format vk.Format, extent vk.Extent2D) (*Image, error) {
	info := vk.ImageCreateInfo{
		ImageType: vk.ImageType2d,
		Extent: vk.Extent3D{
			Width:  extent.Width,
			Height: extent.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        vk.ImageTilingOptimal,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}

	handle, memory, err := CreateImageWithInfo(device, info, vk.MemoryPropertyDeviceLocalBit)
	if err != nil {
		return nil, err
	}

	img := &Image{
		Handle: handle,
		Memory: memory,
		Format: format,
		Width:  extent.Width,
		Height: extent.Height,
	}

	view, err := CreateImageView(device, handle, format, vk.ImageAspectDepthBit)
	if err != nil {
		img.Destroy(device)
		return nil, err
	}
	img.View = view
	return img, nil
}

func (img *Image) Destroy(device *Device) {
	if img == nil {
		return
	}
	if img.View != vk.NullImageView {
		vk.DestroyImageView(device.Device, img.View, nil)
		img.View = vk.NullImageView
	}
	if img.Handle != vk.NullImage {
		vk.DestroyImage(device.Device, img.Handle, nil)
		img.Handle = vk.NullImage
	}
	if img.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device.Device, img.Memory, nil)
		img.Memory = vk.NullDeviceMemory
	}
}
