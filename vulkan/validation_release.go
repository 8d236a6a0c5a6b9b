//go:build release

package vulkan

const ValidationEnabledByDefault = false
