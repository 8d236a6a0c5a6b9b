package renderer

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"vk-engine/vulkan"
)

var ErrNoShaderCompiler = errors.New("renderer: no shader compiler found (glslc or glslangValidator)")

// DefaultVertexShaderGLSL lights each vertex with one fixed directional
// light. The push constant block matches PushConstantData.
const DefaultVertexShaderGLSL = `#version 450

layout(location = 0) in vec3 position;
layout(location = 1) in vec3 color;
layout(location = 2) in vec3 normal;
layout(location = 3) in vec2 uv;

layout(location = 0) out vec3 fragColor;

layout(push_constant) uniform Push {
    mat4 transform;
    mat4 normalMatrix;
} push;

const vec3 DIRECTION_TO_LIGHT = normalize(vec3(1.0, -3.0, -1.0));
const float AMBIENT = 0.02;

void main() {
    gl_Position = push.transform * vec4(position, 1.0);

    vec3 normalWorldSpace = normalize(mat3(push.normalMatrix) * normal);
    float lightIntensity = AMBIENT + max(dot(normalWorldSpace, DIRECTION_TO_LIGHT), 0.0);
    fragColor = lightIntensity * color;
}
`

const DefaultFragmentShaderGLSL = `#version 450

layout(location = 0) in vec3 fragColor;

layout(location = 0) out vec4 outColor;

layout(push_constant) uniform Push {
    mat4 transform;
    mat4 normalMatrix;
} push;

void main() {
    outColor = vec4(fragColor, 1.0);
}
`

// compilerCommand picks glslc, then glslangValidator.
func compilerCommand(lookPath func(string) (string, error), stage, src, out string) (*exec.Cmd, error) {
	if path, err := lookPath("glslc"); err == nil {
		return exec.Command(path, "-fshader-stage="+stage, src, "-o", out, "-O"), nil
	}
	if path, err := lookPath("glslangValidator"); err == nil {
		return exec.Command(path, "-V", "-S", stage, src, "-o", out), nil
	}
	return nil, ErrNoShaderCompiler
}

// CompileShaderGLSL compiles source for stage ("vert" or "frag") into a
// SPIR-V file at outputPath and returns its words.
func CompileShaderGLSL(source, stage, outputPath string) ([]uint32, error) {
	tmp, err := os.CreateTemp("", "shader-*."+stage)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(source); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, err
	}

	cmd, err := compilerCommand(exec.LookPath, stage, tmp.Name(), outputPath)
	if err != nil {
		return nil, err
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("shader compilation failed: %w\n%s", err, output)
	}

	return vulkan.LoadShaderFile(outputPath)
}

// loadShader reads the SPIR-V at path. When the file does not exist the
// built-in source is compiled to path first.
func loadShader(path, source, stage string) ([]uint32, error) {
	code, err := vulkan.LoadShaderFile(path)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return code, err
	}
	return CompileShaderGLSL(source, stage, path)
}
