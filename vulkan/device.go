package vulkan

import (
	"fmt"
	"log/slog"
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

// SurfaceProvider is implemented by the window system. It supplies the
// instance extensions it needs and creates the presentation surface.
type SurfaceProvider interface {
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	FramebufferExtent() (width, height int)
}

type DeviceConfig struct {
	AppName          string
	EnableValidation bool
	ValidationLayers []string
	DeviceExtensions []string
	VSync            bool
}

func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		AppName:          "Vulkan Engine App",
		EnableValidation: ValidationEnabledByDefault,
		ValidationLayers: DefaultValidationLayers,
		DeviceExtensions: RequiredDeviceExtensions,
	}
}

// Device is the GPU context: instance, surface, selected adapter, logical
// device, queues and the graphics command pool.
type Device struct {
	Instance       *Instance
	Surface        vk.Surface
	PhysicalDevice vk.PhysicalDevice
	Device         vk.Device
	GraphicsQueue  vk.Queue
	PresentQueue   vk.Queue
	CommandPool    vk.CommandPool

	Families    QueueFamilyIndices
	Properties  vk.PhysicalDeviceProperties
	MemoryProps vk.PhysicalDeviceMemoryProperties
	Config      DeviceConfig

	logger    *slog.Logger
	destroyed bool
}

// NewDevice brings up the whole device context. Anything created before a
// failure is released before returning.
func NewDevice(surfaces SurfaceProvider, config DeviceConfig, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(config.DeviceExtensions) == 0 {
		config.DeviceExtensions = RequiredDeviceExtensions
	}
	if len(config.ValidationLayers) == 0 {
		config.ValidationLayers = DefaultValidationLayers
	}

	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("%w: load vulkan: %w", ErrInitialization, err)
	}

	instanceConfig := DefaultInstanceConfig()
	instanceConfig.AppName = config.AppName
	instanceConfig.EnableValidation = config.EnableValidation
	instanceConfig.ValidationLayers = config.ValidationLayers
	instanceConfig.RequiredExtensions = surfaces.RequiredInstanceExtensions()

	instance, err := NewInstance(instanceConfig, logger)
	if err != nil {
		return nil, err
	}

	d := &Device{
		Instance: instance,
		Config:   config,
		logger:   logger,
	}

	surface, err := surfaces.CreateSurface(instance.Handle)
	if err != nil {
		d.Destroy()
		return nil, fmt.Errorf("%w: create surface: %w", ErrInitialization, err)
	}
	d.Surface = surface

	if err := d.pickPhysicalDevice(); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := d.createLogicalDevice(); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := d.createCommandPool(); err != nil {
		d.Destroy()
		return nil, err
	}

	logger.Info("vulkan device ready",
		"gpu", d.GPUName(),
		"graphics_family", d.Families.Graphics,
		"present_family", d.Families.Present,
		"validation", config.EnableValidation)
	return d, nil
}

// adapterReport is what the selection policy knows about one physical device.
type adapterReport struct {
	Name              string
	Families          QueueFamilyIndices
	MissingExtensions []string
	SwapChainAdequate bool
	SamplerAnisotropy bool
}

func (r adapterReport) rejection() string {
	switch {
	case !r.Families.HasGraphics:
		return "no graphics queue family"
	case !r.Families.HasPresent:
		return "no present queue family"
	case len(r.MissingExtensions) > 0:
		return "missing extensions: " + strings.Join(r.MissingExtensions, ", ")
	case !r.SwapChainAdequate:
		return "no surface formats or present modes"
	case !r.SamplerAnisotropy:
		return "sampler anisotropy not supported"
	}
	return ""
}

// selectAdapter returns the index of the first suitable adapter, or -1.
func selectAdapter(reports []adapterReport) int {
	for i, r := range reports {
		if r.rejection() == "" {
			return i
		}
	}
	return -1
}

func (d *Device) pickPhysicalDevice() error {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(d.Instance.Handle, &count, nil)); err != nil {
		return fmt.Errorf("%w: enumerate physical devices: %w", ErrInitialization, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: no GPUs with Vulkan support", ErrNoSuitableAdapter)
	}
	gpus := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(d.Instance.Handle, &count, gpus)); err != nil {
		return fmt.Errorf("%w: enumerate physical devices: %w", ErrInitialization, err)
	}

	reports := make([]adapterReport, len(gpus))
	for i, gpu := range gpus {
		reports[i] = d.inspectAdapter(gpu)
		if reason := reports[i].rejection(); reason != "" {
			d.logger.Info("skipping physical device", "gpu", reports[i].Name, "reason", reason)
		}
	}

	index := selectAdapter(reports)
	if index < 0 {
		return ErrNoSuitableAdapter
	}

	d.PhysicalDevice = gpus[index]
	d.Families = reports[index].Families

	vk.GetPhysicalDeviceProperties(d.PhysicalDevice, &d.Properties)
	d.Properties.Deref()
	d.Properties.Limits.Deref()
	vk.GetPhysicalDeviceMemoryProperties(d.PhysicalDevice, &d.MemoryProps)
	d.MemoryProps.Deref()

	d.logger.Info("selected physical device", "gpu", reports[index].Name, "type", d.Properties.DeviceType)
	return nil
}

func (d *Device) inspectAdapter(gpu vk.PhysicalDevice) adapterReport {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()

	report := adapterReport{Name: vk.ToString(props.DeviceName[:])}

	var familyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &familyCount, nil)
	families := make([]vk.QueueFamilyProperties, familyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &familyCount, families)
	report.Families = findQueueFamilies(families, func(index uint32) bool {
		var supported vk.Bool32
		if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(gpu, index, d.Surface, &supported)); err != nil {
			d.logger.Warn("query surface support", "gpu", report.Name, "family", index, "error", err)
			return false
		}
		return supported.B()
	})

	available, err := deviceExtensions(gpu)
	if err != nil {
		d.logger.Warn("enumerate device extensions", "gpu", report.Name, "error", err)
	}
	report.MissingExtensions = missingNames(d.Config.DeviceExtensions, available)

	if len(report.MissingExtensions) == 0 {
		support, err := querySwapChainSupport(gpu, d.Surface)
		report.SwapChainAdequate = err == nil && support.Adequate()
	}

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(gpu, &features)
	features.Deref()
	report.SamplerAnisotropy = features.SamplerAnisotropy.B()

	return report
}

func deviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(gpu, "", &count, props)); err != nil {
		return nil, err
	}
	return extensionNames(props), nil
}

func (d *Device) createLogicalDevice() error {
	families := d.Families.UniqueFamilies()
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(d.Config.DeviceExtensions)),
		PpEnabledExtensionNames: cStrings(d.Config.DeviceExtensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{SamplerAnisotropy: vk.True}},
	}
	if d.Config.EnableValidation {
		createInfo.EnabledLayerCount = uint32(len(d.Config.ValidationLayers))
		createInfo.PpEnabledLayerNames = cStrings(d.Config.ValidationLayers)
	}

	var device vk.Device
	if err := vk.Error(vk.CreateDevice(d.PhysicalDevice, &createInfo, nil, &device)); err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceCreationFailed, err)
	}
	d.Device = device

	var graphics, present vk.Queue
	vk.GetDeviceQueue(d.Device, d.Families.Graphics, 0, &graphics)
	vk.GetDeviceQueue(d.Device, d.Families.Present, 0, &present)
	d.GraphicsQueue = graphics
	d.PresentQueue = present
	return nil
}

func (d *Device) createCommandPool() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit | vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: d.Families.Graphics,
	}

	var pool vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(d.Device, &poolInfo, nil, &pool)); err != nil {
		return fmt.Errorf("failed to create command pool: %w", err)
	}
	d.CommandPool = pool
	return nil
}

// Destroy waits for the device to go idle and releases everything in
// reverse creation order. It is safe to call more than once.
func (d *Device) Destroy() {
	if d == nil || d.destroyed {
		return
	}
	d.destroyed = true

	if d.Device != vk.Device(vk.NullHandle) {
		vk.DeviceWaitIdle(d.Device)
		if d.CommandPool != vk.NullCommandPool {
			vk.DestroyCommandPool(d.Device, d.CommandPool, nil)
			d.CommandPool = vk.NullCommandPool
		}
		vk.DestroyDevice(d.Device, nil)
		d.Device = vk.Device(vk.NullHandle)
	}
	if d.Surface != vk.NullSurface {
		vk.DestroySurface(d.Instance.Handle, d.Surface, nil)
		d.Surface = vk.NullSurface
	}
	d.Instance.Destroy()
}

func (d *Device) WaitIdle() error {
	return vk.Error(vk.DeviceWaitIdle(d.Device))
}

func (d *Device) GPUName() string {
	return vk.ToString(d.Properties.DeviceName[:])
}

// SwapChainSupport queries the surface capabilities of the selected adapter.
func (d *Device) SwapChainSupport() (SwapChainSupport, error) {
	return querySwapChainSupport(d.PhysicalDevice, d.Surface)
}

func (d *Device) FindMemoryType(typeFilter uint32, properties vk.MemoryPropertyFlagBits) (uint32, error) {
	return findMemoryType(d.MemoryProps, typeFilter, vk.MemoryPropertyFlags(properties))
}

func findMemoryType(memProps vk.PhysicalDeviceMemoryProperties, typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memType := memProps.MemoryTypes[i]
		memType.Deref()
		if typeFilter&(1<<i) != 0 && memType.PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, ErrNoSuitableMemoryType
}

func (d *Device) FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlagBits) (vk.Format, error) {
	return findSupportedFormat(candidates, tiling, vk.FormatFeatureFlags(features), func(format vk.Format) vk.FormatProperties {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(d.PhysicalDevice, format, &props)
		props.Deref()
		return props
	})
}

func findSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags, query func(vk.Format) vk.FormatProperties) (vk.Format, error) {
	for _, format := range candidates {
		props := query(format)
		switch {
		case tiling == vk.ImageTilingLinear && props.LinearTilingFeatures&features == features:
			return format, nil
		case tiling == vk.ImageTilingOptimal && props.OptimalTilingFeatures&features == features:
			return format, nil
		}
	}
	return vk.FormatUndefined, ErrNoSupportedFormat
}

// DepthFormatCandidates are tried in order by FindDepthFormat.
var DepthFormatCandidates = []vk.Format{
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
	vk.FormatD32Sfloat,
}

func (d *Device) FindDepthFormat() (vk.Format, error) {
	return d.FindSupportedFormat(DepthFormatCandidates, vk.ImageTilingOptimal, vk.FormatFeatureDepthStencilAttachmentBit)
}
