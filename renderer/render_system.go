package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"

	"vk-engine/scene"
	"vk-engine/vulkan"
)

const pushConstantStages = vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit

// PushConstantData mirrors the push constant block of the scene shaders.
type PushConstantData struct {
	Transform    mgl32.Mat4
	NormalMatrix mgl32.Mat4
}

const pushConstantSize = uint32(unsafe.Sizeof(PushConstantData{}))

func (p *PushConstantData) Bytes() []byte {
	out := make([]byte, pushConstantSize)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(p)), pushConstantSize))
	return out
}

// GraphicsPipeline is the part of *vulkan.Pipeline the draw pass uses.
type GraphicsPipeline interface {
	Bind(cmd vulkan.Recorder)
	PipelineLayout() vk.PipelineLayout
}

type ShaderPaths struct {
	Vertex   string
	Fragment string
}

type DrawStats struct {
	Draws int
	Binds int
}

// RenderSystem records the scene into the swap chain render pass with one
// fixed pipeline.
type RenderSystem struct {
	pipeline GraphicsPipeline
	release  func()
}

// NewRenderSystem builds the scene pipeline against renderPass. Missing
// SPIR-V files are compiled from the built-in shaders. The render pass only
// has to be compatible, so the pipeline survives swap chain recreation as
// long as the formats stay the same.
func NewRenderSystem(device *vulkan.Device, renderPass vk.RenderPass, shaders ShaderPaths) (*RenderSystem, error) {
	vertCode, err := loadShader(shaders.Vertex, DefaultVertexShaderGLSL, "vert")
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	fragCode, err := loadShader(shaders.Fragment, DefaultFragmentShaderGLSL, "frag")
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}

	config := vulkan.DefaultPipelineConfig()
	config.VertexShaderCode = vertCode
	config.FragmentShaderCode = fragCode
	config.RenderPass = renderPass
	config.PushConstantSize = pushConstantSize
	config.PushConstantStages = pushConstantStages

	pipeline, err := vulkan.CreateGraphicsPipeline(device, config)
	if err != nil {
		return nil, err
	}

	return &RenderSystem{
		pipeline: pipeline,
		release:  func() { pipeline.Destroy(device) },
	}, nil
}

// RenderGameObjects draws entries in order. Entries without a model are
// skipped and consecutive entries sharing a model bind its buffers once.
// Models are compared by identity, so they should be pointers.
func (rs *RenderSystem) RenderGameObjects(cmd vulkan.Recorder, entries []scene.Entry, camera *scene.Camera) DrawStats {
	rs.pipeline.Bind(cmd)

	projectionView := camera.ProjectionView()
	layout := rs.pipeline.PipelineLayout()

	var stats DrawStats
	var bound scene.Drawable
	for i := range entries {
		entry := &entries[i]
		if entry.Model == nil {
			continue
		}

		push := PushConstantData{
			Transform:    projectionView.Mul4(entry.Transform.Mat4()),
			NormalMatrix: entry.Transform.NormalMatrix(),
		}
		cmd.PushConstants(layout, pushConstantStages, 0, push.Bytes())

		if entry.Model != bound {
			entry.Model.Bind(cmd)
			bound = entry.Model
			stats.Binds++
		}
		entry.Model.Draw(cmd)
		stats.Draws++
	}
	return stats
}

func (rs *RenderSystem) Close() {
	if rs.release != nil {
		rs.release()
		rs.release = nil
	}
}
