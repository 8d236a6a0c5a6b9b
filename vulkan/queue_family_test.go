package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func family(flags vk.QueueFlagBits, count uint32) vk.QueueFamilyProperties {
	return vk.QueueFamilyProperties{QueueFlags: vk.QueueFlags(flags), QueueCount: count}
}

func presentOn(indices ...uint32) func(uint32) bool {
	return func(i uint32) bool {
		for _, idx := range indices {
			if idx == i {
				return true
			}
		}
		return false
	}
}

func TestFindQueueFamiliesSameFamily(t *testing.T) {
	families := []vk.QueueFamilyProperties{
		family(vk.QueueGraphicsBit|vk.QueueComputeBit, 16),
		family(vk.QueueTransferBit, 2),
	}
	got := findQueueFamilies(families, presentOn(0, 1))

	assert.True(t, got.IsComplete())
	assert.Equal(t, uint32(0), got.Graphics)
	assert.Equal(t, uint32(0), got.Present)
	assert.Equal(t, []uint32{0}, got.UniqueFamilies())
}

func TestFindQueueFamiliesSplitFamilies(t *testing.T) {
	families := []vk.QueueFamilyProperties{
		family(vk.QueueComputeBit, 4),
		family(vk.QueueGraphicsBit, 1),
		family(vk.QueueGraphicsBit, 1),
		family(vk.QueueTransferBit, 1),
	}
	got := findQueueFamilies(families, presentOn(3))

	assert.True(t, got.IsComplete())
	assert.Equal(t, uint32(1), got.Graphics, "first graphics family wins")
	assert.Equal(t, uint32(3), got.Present)
	assert.Equal(t, []uint32{1, 3}, got.UniqueFamilies())
}

func TestFindQueueFamiliesIgnoresEmptyFamilies(t *testing.T) {
	families := []vk.QueueFamilyProperties{
		family(vk.QueueGraphicsBit, 0),
		family(vk.QueueGraphicsBit, 1),
	}
	got := findQueueFamilies(families, presentOn(0, 1))

	assert.Equal(t, uint32(1), got.Graphics)
	assert.Equal(t, uint32(1), got.Present)
}

func TestFindQueueFamiliesIncomplete(t *testing.T) {
	families := []vk.QueueFamilyProperties{
		family(vk.QueueComputeBit, 1),
	}
	got := findQueueFamilies(families, presentOn(0))

	assert.False(t, got.IsComplete())
	assert.True(t, got.HasPresent)
	assert.False(t, got.HasGraphics)
	assert.Nil(t, got.UniqueFamilies())
}

func TestFindQueueFamiliesStopsWhenComplete(t *testing.T) {
	var asked []uint32
	families := []vk.QueueFamilyProperties{
		family(vk.QueueGraphicsBit, 1),
		family(vk.QueueGraphicsBit, 1),
		family(vk.QueueGraphicsBit, 1),
	}
	findQueueFamilies(families, func(i uint32) bool {
		asked = append(asked, i)
		return true
	})

	assert.Equal(t, []uint32{0}, asked)
}
