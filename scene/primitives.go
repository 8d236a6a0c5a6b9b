package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"vk-engine/vulkan"
)

type cubeFace struct {
	normal  mgl32.Vec3
	color   mgl32.Vec3
	corners [6]mgl32.Vec3
}

// Y points down, so the "top" face sits at y = -0.5.
var cubeFaces = []cubeFace{
	{ // left, white
		normal: mgl32.Vec3{-1, 0, 0}, color: mgl32.Vec3{.9, .9, .9},
		corners: [6]mgl32.Vec3{{-.5, -.5, -.5}, {-.5, .5, .5}, {-.5, -.5, .5}, {-.5, -.5, -.5}, {-.5, .5, -.5}, {-.5, .5, .5}},
	},
	{ // right, yellow
		normal: mgl32.Vec3{1, 0, 0}, color: mgl32.Vec3{.8, .8, .1},
		corners: [6]mgl32.Vec3{{.5, -.5, -.5}, {.5, .5, .5}, {.5, -.5, .5}, {.5, -.5, -.5}, {.5, .5, -.5}, {.5, .5, .5}},
	},
	{ // top, orange
		normal: mgl32.Vec3{0, -1, 0}, color: mgl32.Vec3{.9, .6, .1},
		corners: [6]mgl32.Vec3{{-.5, -.5, -.5}, {.5, -.5, .5}, {-.5, -.5, .5}, {-.5, -.5, -.5}, {.5, -.5, -.5}, {.5, -.5, .5}},
	},
	{ // bottom, red
		normal: mgl32.Vec3{0, 1, 0}, color: mgl32.Vec3{.8, .1, .1},
		corners: [6]mgl32.Vec3{{-.5, .5, -.5}, {.5, .5, .5}, {-.5, .5, .5}, {-.5, .5, -.5}, {.5, .5, -.5}, {.5, .5, .5}},
	},
	{ // nose, blue
		normal: mgl32.Vec3{0, 0, 1}, color: mgl32.Vec3{.1, .1, .8},
		corners: [6]mgl32.Vec3{{-.5, -.5, .5}, {.5, .5, .5}, {-.5, .5, .5}, {-.5, -.5, .5}, {.5, -.5, .5}, {.5, .5, .5}},
	},
	{ // tail, green
		normal: mgl32.Vec3{0, 0, -1}, color: mgl32.Vec3{.1, .8, .1},
		corners: [6]mgl32.Vec3{{-.5, -.5, -.5}, {.5, .5, -.5}, {-.5, .5, -.5}, {-.5, -.5, -.5}, {.5, -.5, -.5}, {.5, .5, -.5}},
	},
}

// CreateCube returns the 36 vertices of a unit cube centred at offset with
// one solid colour per face.
func CreateCube(offset mgl32.Vec3) []vulkan.Vertex {
	vertices := make([]vulkan.Vertex, 0, len(cubeFaces)*6)
	for _, face := range cubeFaces {
		for _, corner := range face.corners {
			vertices = append(vertices, vulkan.Vertex{
				Position: corner.Add(offset),
				Color:    face.color,
				Normal:   face.normal,
				UV:       mgl32.Vec2{corner.X() + .5, corner.Y() + .5},
			})
		}
	}
	return vertices
}

// CubeGrid returns the transforms of a size x size staircase of cubes
// centred on the origin.
func CubeGrid(size int) []Transform {
	half := size / 2
	transforms := make([]Transform, 0, size*size)
	for x := -half; x < size-half; x++ {
		for i := -half; i < size-half; i++ {
			t := NewTransform()
			t.Translation = mgl32.Vec3{float32(i), float32(i+x) * 0.2, float32(x)}
			transforms = append(transforms, t)
		}
	}
	return transforms
}
