package vulkan

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestImageCount(t *testing.T) {
	tests := []struct {
		min, max uint32
		want     uint32
	}{
		{min: 1, max: 0, want: 2},
		{min: 2, max: 0, want: 3},
		{min: 2, max: 3, want: 3},
		{min: 2, max: 2, want: 2},
		{min: 3, max: 8, want: 4},
		{min: 1, max: 1, want: 1},
	}
	for _, tt := range tests {
		caps := vk.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
		assert.Equal(t, tt.want, imageCount(caps), "min=%d max=%d", tt.min, tt.max)
	}
}

func TestImageCountStaysWithinBounds(t *testing.T) {
	for lo := uint32(1); lo <= 8; lo++ {
		for hi := uint32(0); hi <= 10; hi++ {
			if hi != 0 && hi < lo {
				continue
			}
			caps := vk.SurfaceCapabilities{MinImageCount: lo, MaxImageCount: hi}
			got := imageCount(caps)
			assert.GreaterOrEqual(t, got, lo)
			if hi > 0 {
				assert.LessOrEqual(t, got, hi)
			}
		}
	}
}

func TestChooseExtent(t *testing.T) {
	fixed := vk.SurfaceCapabilities{
		CurrentExtent: vk.Extent2D{Width: 800, Height: 600},
	}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600},
		chooseExtent(fixed, vk.Extent2D{Width: 1920, Height: 1080}))

	free := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: vk.Extent2D{Width: 1000, Height: 1000},
	}
	assert.Equal(t, vk.Extent2D{Width: 400, Height: 300},
		chooseExtent(free, vk.Extent2D{Width: 400, Height: 300}))
	assert.Equal(t, vk.Extent2D{Width: 1000, Height: 100},
		chooseExtent(free, vk.Extent2D{Width: 4000, Height: 10}))
}

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	other := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	assert.Equal(t, preferred, chooseSurfaceFormat([]vk.SurfaceFormat{other, preferred}))
	assert.Equal(t, other, chooseSurfaceFormat([]vk.SurfaceFormat{other}))
}

func TestChoosePresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}

	assert.Equal(t, vk.PresentModeMailbox, choosePresentMode(modes, false))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode(modes, true))
	assert.Equal(t, vk.PresentModeFifo, choosePresentMode([]vk.PresentMode{vk.PresentModeImmediate}, false))
}

func TestMissingNames(t *testing.T) {
	available := []string{"VK_KHR_surface", "VK_KHR_xcb_surface\x00"}

	assert.Empty(t, missingNames([]string{"VK_KHR_surface\x00", "VK_KHR_xcb_surface"}, available))
	assert.Equal(t, []string{DebugReportExtension},
		missingNames([]string{"VK_KHR_surface", DebugReportExtension}, available))
}

func TestSwapChainSupportAdequate(t *testing.T) {
	assert.False(t, SwapChainSupport{}.Adequate())
	assert.False(t, SwapChainSupport{Formats: []vk.SurfaceFormat{{}}}.Adequate())
	assert.True(t, SwapChainSupport{
		Formats:      []vk.SurfaceFormat{{}},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo},
	}.Adequate())
}
