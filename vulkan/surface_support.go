package vulkan

import (
	"math"

	vk "github.com/vulkan-go/vulkan"
)

// SwapChainSupport describes what a surface supports on the selected device.
type SwapChainSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// Adequate reports whether a swapchain can be built at all.
func (s SwapChainSupport) Adequate() bool {
	return len(s.Formats) > 0 && len(s.PresentModes) > 0
}

func querySwapChainSupport(gpu vk.PhysicalDevice, surface vk.Surface) (SwapChainSupport, error) {
	var support SwapChainSupport

	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &caps)); err != nil {
		return support, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	support.Capabilities = caps

	var formatCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)); err != nil {
		return support, err
	}
	if formatCount > 0 {
		formats := make([]vk.SurfaceFormat, formatCount)
		vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, formats)
		for i := range formats {
			formats[i].Deref()
		}
		support.Formats = formats
	}

	var modeCount uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, nil)); err != nil {
		return support, err
	}
	if modeCount > 0 {
		modes := make([]vk.PresentMode, modeCount)
		vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, modes)
		support.PresentModes = modes
	}

	return support, nil
}

// chooseSurfaceFormat prefers 8-bit BGRA sRGB with the sRGB non-linear colour
// space and falls back to the first format offered.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return formats[0]
}

// choosePresentMode prefers mailbox unless vsync is forced. FIFO is always
// available.
func choosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if !vsync {
		for _, m := range modes {
			if m == vk.PresentModeMailbox {
				return m
			}
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's current extent unless the surface leaves
// the size to the application, in which case the requested size is clamped.
func chooseExtent(caps vk.SurfaceCapabilities, requested vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clamp(requested.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(requested.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// imageCount asks for one image more than the minimum. A maximum of zero
// means the surface imposes no upper bound.
func imageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clamp(v, lo, hi uint32) uint32 {
	return max(lo, min(v, hi))
}

// missingNames returns the entries of required not present in available, in
// the order they were required.
func missingNames(required, available []string) []string {
	have := make(map[string]struct{}, len(available))
	for _, name := range available {
		have[goString(name)] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := have[goString(name)]; !ok {
			missing = append(missing, goString(name))
		}
	}
	return missing
}
