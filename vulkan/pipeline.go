package vulkan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	vk "github.com/vulkan-go/vulkan"
)

const spirvMagic = 0x07230203

var ErrInvalidShader = errors.New("vulkan: invalid SPIR-V module")

type Pipeline struct {
	Handle vk.Pipeline
	Layout vk.PipelineLayout
}

type VertexInputDescription struct {
	BindingDescriptions   []vk.VertexInputBindingDescription
	AttributeDescriptions []vk.VertexInputAttributeDescription
}

type PipelineConfig struct {
	VertexShaderCode   []uint32
	FragmentShaderCode []uint32
	VertexDescription  VertexInputDescription
	RenderPass         vk.RenderPass
	Subpass            uint32
	Topology           vk.PrimitiveTopology
	PolygonMode        vk.PolygonMode
	CullMode           vk.CullModeFlagBits
	FrontFace          vk.FrontFace
	DepthTestEnable    bool
	DepthWriteEnable   bool
	BlendEnable        bool
	PushConstantSize   uint32
	PushConstantStages vk.ShaderStageFlagBits
}

// DefaultPipelineConfig describes opaque triangle lists with depth testing
// and a dynamic viewport and scissor.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		VertexDescription:  VertexDescription(),
		Topology:           vk.PrimitiveTopologyTriangleList,
		PolygonMode:        vk.PolygonModeFill,
		CullMode:           vk.CullModeNone,
		FrontFace:          vk.FrontFaceClockwise,
		DepthTestEnable:    true,
		DepthWriteEnable:   true,
		BlendEnable:        false,
		PushConstantStages: vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit,
	}
}

func CreateGraphicsPipeline(device *Device, config PipelineConfig) (*Pipeline, error) {
	if config.RenderPass == vk.NullRenderPass {
		return nil, fmt.Errorf("cannot create pipeline: no render pass in config")
	}

	vertModule, err := createShaderModule(device, config.VertexShaderCode)
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	defer vk.DestroyShaderModule(device.Device, vertModule, nil)

	fragModule, err := createShaderModule(device, config.FragmentShaderCode)
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}
	defer vk.DestroyShaderModule(device.Device, fragModule, nil)

	shaderStages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vertModule,
			PName:  "main\x00",
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: fragModule,
			PName:  "main\x00",
		},
	}

	bindings := config.VertexDescription.BindingDescriptions
	attributes := config.VertexDescription.AttributeDescriptions
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               config.Topology,
		PrimitiveRestartEnable: vk.False,
	}

	// Viewport and scissor are set per frame
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             config.PolygonMode,
		LineWidth:               1.0,
		CullMode:                vk.CullModeFlags(config.CullMode),
		FrontFace:               config.FrontFace,
		DepthBiasEnable:         vk.False,
	}

	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vk.False,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       boolToVk(config.DepthTestEnable),
		DepthWriteEnable:      boolToVk(config.DepthWriteEnable),
		DepthCompareOp:        vk.CompareOpLess,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		MinDepthBounds:        0.0,
		MaxDepthBounds:        1.0,
	}

	colorBlendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable:         boolToVk(config.BlendEnable),
		SrcColorBlendFactor: vk.BlendFactorSrcAlpha,
		DstColorBlendFactor: vk.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vk.BlendOpAdd,
		SrcAlphaBlendFactor: vk.BlendFactorOne,
		DstAlphaBlendFactor: vk.BlendFactorZero,
		AlphaBlendOp:        vk.BlendOpAdd,
	}

	colorBlending := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachment},
	}

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	if config.PushConstantSize > 0 {
		layoutInfo.PushConstantRangeCount = 1
		layoutInfo.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(config.PushConstantStages),
			Offset:     0,
			Size:       config.PushConstantSize,
		}}
	}

	var layout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(device.Device, &layoutInfo, nil, &layout)); err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout: %w", err)
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlending,
		PDynamicState:       &dynamicState,
		Layout:              layout,
		RenderPass:          config.RenderPass,
		Subpass:             config.Subpass,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	if err := vk.Error(vk.CreateGraphicsPipelines(device.Device, vk.PipelineCache(vk.NullHandle), 1,
		[]vk.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines)); err != nil {
		vk.DestroyPipelineLayout(device.Device, layout, nil)
		return nil, fmt.Errorf("failed to create graphics pipeline: %w", err)
	}

	return &Pipeline{Handle: pipelines[0], Layout: layout}, nil
}

func (p *Pipeline) Bind(cmd Recorder) {
	cmd.BindPipeline(p.Handle)
}

func (p *Pipeline) PipelineLayout() vk.PipelineLayout {
	return p.Layout
}

func (p *Pipeline) Destroy(device *Device) {
	if p == nil {
		return
	}
	if p.Handle != vk.NullPipeline {
		vk.DestroyPipeline(device.Device, p.Handle, nil)
		p.Handle = vk.NullPipeline
	}
	if p.Layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(device.Device, p.Layout, nil)
		p.Layout = vk.NullPipelineLayout
	}
}

func createShaderModule(device *Device, code []uint32) (vk.ShaderModule, error) {
	if len(code) == 0 {
		return vk.NullShaderModule, ErrInvalidShader
	}
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}

	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(device.Device, &createInfo, nil, &module)); err != nil {
		return vk.NullShaderModule, fmt.Errorf("failed to create shader module: %w", err)
	}
	return module, nil
}

// LoadShaderFile reads a compiled SPIR-V module from disk.
func LoadShaderFile(path string) ([]uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader %s: %w", path, err)
	}
	code, err := ParseSPIRV(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return code, nil
}

// ParseSPIRV converts little-endian SPIR-V bytes into words after checking
// the module size and magic number.
func ParseSPIRV(data []byte) ([]uint32, error) {
	if len(data) < 4 || len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: size %d is not a positive multiple of 4", ErrInvalidShader, len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("%w: bad magic 0x%08x", ErrInvalidShader, words[0])
	}
	return words, nil
}

// CreateRenderPass builds the single-subpass colour and depth render pass
// used for presentation.
func CreateRenderPass(device *Device, colorFormat, depthFormat vk.Format) (vk.RenderPass, error) {
	colorAttachment := vk.AttachmentDescription{
		Format:         colorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}

	depthAttachment := vk.AttachmentDescription{
		Format:         depthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	colorRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	depthRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorRef},
		PDepthStencilAttachment: &depthRef,
	}

	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit)
	dependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  stages,
		SrcAccessMask: 0,
		DstStageMask:  stages,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}

	attachments := []vk.AttachmentDescription{colorAttachment, depthAttachment}
	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(device.Device, &renderPassInfo, nil, &renderPass)); err != nil {
		return vk.NullRenderPass, fmt.Errorf("failed to create render pass: %w", err)
	}
	return renderPass, nil
}

func DestroyRenderPass(device *Device, renderPass vk.RenderPass) {
	vk.DestroyRenderPass(device.Device, renderPass, nil)
}

func boolToVk(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}
