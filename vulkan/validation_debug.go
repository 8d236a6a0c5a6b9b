//go:build !release

package vulkan

// ValidationEnabledByDefault is true in development builds. Build with the
// release tag to turn it off.
const ValidationEnabledByDefault = true
