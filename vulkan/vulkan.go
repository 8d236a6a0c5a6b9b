// Package vulkan wraps the Vulkan objects the engine needs to put pixels on
// screen: the device context, memory allocation, the swapchain, command
// recording and the graphics pipeline. It is built on github.com/vulkan-go/vulkan.
package vulkan

import (
	"errors"
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// VulkanVersion10 is the API version the engine targets.
var VulkanVersion10 = vk.MakeVersion(1, 0, 0)

const (
	// KhronosValidationLayer is the layer enabled when validation is on.
	KhronosValidationLayer = "VK_LAYER_KHRONOS_validation"

	// DebugReportExtension is appended to the instance extensions when
	// validation is on.
	DebugReportExtension = "VK_EXT_debug_report"

	// MaxFramesInFlight is the default number of frames the CPU may record
	// ahead of the GPU.
	MaxFramesInFlight = 2
)

// RequiredDeviceExtensions must be supported by a physical device for it to
// be selected.
var RequiredDeviceExtensions = []string{vk.KhrSwapchainExtensionName}

// DefaultValidationLayers lists the layers checked and enabled when
// validation is requested.
var DefaultValidationLayers = []string{KhronosValidationLayer}

var (
	ErrInitialization           = errors.New("vulkan: initialization failed")
	ErrMissingValidationLayer   = errors.New("vulkan: validation layer not available")
	ErrMissingRequiredExtension = errors.New("vulkan: required extension not available")
	ErrNoSuitableAdapter        = errors.New("vulkan: no suitable physical device")
	ErrDeviceCreationFailed     = errors.New("vulkan: logical device creation failed")
	ErrNoSupportedFormat        = errors.New("vulkan: no supported format")
	ErrNoSuitableMemoryType     = errors.New("vulkan: no suitable memory type")
	ErrSurfaceOutOfDate         = errors.New("vulkan: surface out of date")
	ErrSurfaceSuboptimal        = errors.New("vulkan: surface suboptimal")
	ErrSubmission               = errors.New("vulkan: queue submission failed")
)

// presentResult maps the result of an acquire or present call onto the
// package errors. Out-of-date and suboptimal results are reported with their
// own sentinels so callers can recreate the swapchain.
func presentResult(ret vk.Result) error {
	switch ret {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate:
		return ErrSurfaceOutOfDate
	case vk.Suboptimal:
		return ErrSurfaceSuboptimal
	default:
		return fmt.Errorf("%w: %w", ErrSubmission, vk.Error(ret))
	}
}

// cString returns s terminated with a NUL byte, as the Vulkan bindings expect.
func cString(s string) string {
	if len(s) > 0 && s[len(s)-1] == 0 {
		return s
	}
	return s + "\x00"
}

func cStrings(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = cString(n)
	}
	return out
}

// goString strips a trailing NUL added by cString.
func goString(s string) string {
	if len(s) > 0 && s[len(s)-1] == 0 {
		return s[:len(s)-1]
	}
	return s
}
