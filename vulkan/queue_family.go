package vulkan

import vk "github.com/vulkan-go/vulkan"

// QueueFamilyIndices holds the queue families the engine submits to. The
// graphics and present families may be the same.
type QueueFamilyIndices struct {
	Graphics    uint32
	Present     uint32
	HasGraphics bool
	HasPresent  bool
}

// IsComplete reports whether both families have been found.
func (q QueueFamilyIndices) IsComplete() bool {
	return q.HasGraphics && q.HasPresent
}

// UniqueFamilies returns the distinct family indices, graphics first.
func (q QueueFamilyIndices) UniqueFamilies() []uint32 {
	if !q.IsComplete() {
		return nil
	}
	if q.Graphics == q.Present {
		return []uint32{q.Graphics}
	}
	return []uint32{q.Graphics, q.Present}
}

// findQueueFamilies walks the families in enumeration order. The first family
// satisfying each requirement wins and the walk stops once both are found.
func findQueueFamilies(families []vk.QueueFamilyProperties, presentSupport func(index uint32) bool) QueueFamilyIndices {
	var indices QueueFamilyIndices
	for i := range families {
		family := families[i]
		family.Deref()
		index := uint32(i)

		if family.QueueCount > 0 && !indices.HasGraphics &&
			family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			indices.Graphics = index
			indices.HasGraphics = true
		}
		if family.QueueCount > 0 && !indices.HasPresent && presentSupport(index) {
			indices.Present = index
			indices.HasPresent = true
		}

		if indices.IsComplete() {
			break
		}
	}
	return indices
}
