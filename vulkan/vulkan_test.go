package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestPresentResult(t *testing.T) {
	assert.NoError(t, presentResult(vk.Success))
	assert.ErrorIs(t, presentResult(vk.ErrorOutOfDate), ErrSurfaceOutOfDate)
	assert.ErrorIs(t, presentResult(vk.Suboptimal), ErrSurfaceSuboptimal)

	err := presentResult(vk.ErrorDeviceLost)
	assert.ErrorIs(t, err, ErrSubmission)
	assert.NotErrorIs(t, err, ErrSurfaceOutOfDate)
}

func TestCStrings(t *testing.T) {
	assert.Equal(t, "VK_KHR_swapchain\x00", cString("VK_KHR_swapchain"))
	assert.Equal(t, "a\x00", cString("a\x00"))
	assert.Equal(t, "a", goString(cString("a")))
	assert.Equal(t, []string{"x\x00", "y\x00"}, cStrings([]string{"x", "y\x00"}))
}

func TestRequiredInstanceExtensions(t *testing.T) {
	window := []string{"VK_KHR_surface\x00", "VK_KHR_xcb_surface"}

	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}, requiredInstanceExtensions(window, false))
	assert.Equal(t, []string{"VK_KHR_surface", "VK_KHR_xcb_surface", DebugReportExtension}, requiredInstanceExtensions(window, true))
}
