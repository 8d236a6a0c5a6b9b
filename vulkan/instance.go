package vulkan

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

type Instance struct {
	Handle           vk.Instance
	DebugCallback    vk.DebugReportCallback
	EnableValidation bool
}

type InstanceConfig struct {
	AppName            string
	EngineName         string
	AppVersion         uint32
	EngineVersion      uint32
	EnableValidation   bool
	ValidationLayers   []string
	RequiredExtensions []string
}

func DefaultInstanceConfig() InstanceConfig {
	return InstanceConfig{
		AppName:          "Vulkan Engine App",
		EngineName:       "vk-engine",
		AppVersion:       VulkanVersion10,
		EngineVersion:    VulkanVersion10,
		EnableValidation: ValidationEnabledByDefault,
		ValidationLayers: DefaultValidationLayers,
	}
}

// NewInstance checks layer and extension availability, creates the instance
// and, with validation on, routes debug reports to logger.
func NewInstance(config InstanceConfig, logger *slog.Logger) (*Instance, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if config.EnableValidation {
		available, err := instanceLayers()
		if err != nil {
			return nil, fmt.Errorf("%w: enumerate layers: %w", ErrInitialization, err)
		}
		if missing := missingNames(config.ValidationLayers, available); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %v", ErrMissingValidationLayer, missing)
		}
	}

	extensions := requiredInstanceExtensions(config.RequiredExtensions, config.EnableValidation)
	available, err := instanceExtensions()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate extensions: %w", ErrInitialization, err)
	}
	logger.Debug("instance extensions", "available", available, "required", extensions)
	if missing := missingNames(extensions, available); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingRequiredExtension, missing)
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   cString(config.AppName),
		ApplicationVersion: config.AppVersion,
		PEngineName:        cString(config.EngineName),
		EngineVersion:      config.EngineVersion,
		ApiVersion:         vk.ApiVersion10,
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: cStrings(extensions),
	}
	if config.EnableValidation {
		createInfo.EnabledLayerCount = uint32(len(config.ValidationLayers))
		createInfo.PpEnabledLayerNames = cStrings(config.ValidationLayers)
	}

	var handle vk.Instance
	if err := vk.Error(vk.CreateInstance(&createInfo, nil, &handle)); err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrInitialization, err)
	}
	if err := vk.InitInstance(handle); err != nil {
		vk.DestroyInstance(handle, nil)
		return nil, fmt.Errorf("%w: load instance functions: %w", ErrInitialization, err)
	}

	inst := &Instance{
		Handle:           handle,
		EnableValidation: config.EnableValidation,
	}

	// Setup debug callback
	if config.EnableValidation {
		if err := inst.setupDebugCallback(logger); err != nil {
			inst.Destroy()
			return nil, err
		}
	}

	return inst, nil
}

func (i *Instance) setupDebugCallback(logger *slog.Logger) error {
	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64,
			location uint, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vk.Bool32 {
			level := slog.LevelWarn
			if flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0 {
				level = slog.LevelError
			}
			logger.Log(context.Background(), level, message, "layer", layerPrefix, "code", messageCode, "object_type", objectType)
			return vk.False
		},
	}

	var callback vk.DebugReportCallback
	if err := vk.Error(vk.CreateDebugReportCallback(i.Handle, &createInfo, nil, &callback)); err != nil {
		return fmt.Errorf("%w: create debug callback: %w", ErrInitialization, err)
	}
	i.DebugCallback = callback
	return nil
}

// Destroy releases the debug callback and then the instance.
func (i *Instance) Destroy() {
	if i == nil || i.Handle == vk.Instance(vk.NullHandle) {
		return
	}
	if i.DebugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(i.Handle, i.DebugCallback, nil)
		i.DebugCallback = vk.NullDebugReportCallback
	}
	vk.DestroyInstance(i.Handle, nil)
	i.Handle = vk.Instance(vk.NullHandle)
}

func requiredInstanceExtensions(window []string, validation bool) []string {
	exts := make([]string, 0, len(window)+1)
	for _, e := range window {
		exts = append(exts, goString(e))
	}
	if validation {
		exts = append(exts, DebugReportExtension)
	}
	return exts
}

func instanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := range props {
		props[i].Deref()
		names = append(names, vk.ToString(props[i].LayerName[:]))
	}
	return names, nil
}

func instanceExtensions() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, props)); err != nil {
		return nil, err
	}
	return extensionNames(props), nil
}

func extensionNames(props []vk.ExtensionProperties) []string {
	names := make([]string, 0, len(props))
	for i := range props {
		props[i].Deref()
		names = append(names, vk.ToString(props[i].ExtensionName[:]))
	}
	return names
}
