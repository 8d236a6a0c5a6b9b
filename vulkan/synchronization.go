package vulkan

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type Semaphore struct {
	Handle vk.Semaphore
}

type Fence struct {
	Handle vk.Fence
}

func CreateSemaphore(device *Device) (*Semaphore, error) {
	semaphoreInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var semaphore vk.Semaphore
	if err := vk.Error(vk.CreateSemaphore(device.Device, &semaphoreInfo, nil, &semaphore)); err != nil {
		return nil, fmt.Errorf("failed to create semaphore: %w", err)
	}
	return &Semaphore{Handle: semaphore}, nil
}

func (s *Semaphore) Destroy(device *Device) {
	if s == nil || s.Handle == vk.NullSemaphore {
		return
	}
	vk.DestroySemaphore(device.Device, s.Handle, nil)
	s.Handle = vk.NullSemaphore
}

func CreateFence(device *Device, signaled bool) (*Fence, error) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	fenceInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: flags,
	}

	var fence vk.Fence
	if err := vk.Error(vk.CreateFence(device.Device, &fenceInfo, nil, &fence)); err != nil {
		return nil, fmt.Errorf("failed to create fence: %w", err)
	}
	return &Fence{Handle: fence}, nil
}

func (f *Fence) Destroy(device *Device) {
	if f == nil || f.Handle == vk.NullFence {
		return
	}
	vk.DestroyFence(device.Device, f.Handle, nil)
	f.Handle = vk.NullFence
}

func (f *Fence) Wait(device *Device, timeout uint64) error {
	if err := vk.Error(vk.WaitForFences(device.Device, 1, []vk.Fence{f.Handle}, vk.True, timeout)); err != nil {
		return fmt.Errorf("failed to wait for fence: %w", err)
	}
	return nil
}

func (f *Fence) Reset(device *Device) error {
	if err := vk.Error(vk.ResetFences(device.Device, 1, []vk.Fence{f.Handle})); err != nil {
		return fmt.Errorf("failed to reset fence: %w", err)
	}
	return nil
}

// frameTracker owns the frame-slot arithmetic of the swapchain. It knows the
// current in-flight slot and, for every presentable image, which slot last
// submitted work targeting it.
type frameTracker struct {
	framesInFlight int
	current        int
	imageOwner     []int
}

const noOwner = -1

func newFrameTracker(framesInFlight, images int) *frameTracker {
	owners := make([]int, images)
	for i := range owners {
		owners[i] = noOwner
	}
	return &frameTracker{
		framesInFlight: framesInFlight,
		imageOwner:     owners,
	}
}

// claim records the current slot as the owner of image. It returns the
// slot that owned the image before, and whether that slot's fence must be
// waited on before the image can be reused.
func (t *frameTracker) claim(image uint32) (previous int, mustWait bool) {
	previous = t.imageOwner[image]
	t.imageOwner[image] = t.current
	return previous, previous != noOwner && previous != t.current
}

func (t *frameTracker) advance() {
	t.current = (t.current + 1) % t.framesInFlight
}
