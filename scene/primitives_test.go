package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCreateCube(t *testing.T) {
	vertices := CreateCube(mgl32.Vec3{1, 0, 0})
	assert.Len(t, vertices, 36)

	for _, v := range vertices {
		local := v.Position.Sub(mgl32.Vec3{1, 0, 0})
		for i := 0; i < 3; i++ {
			assert.LessOrEqual(t, abs(local[i]), float32(0.5+eps))
		}
		// every vertex lies on the face its normal points out of
		assert.InDelta(t, 0.5, local.Dot(v.Normal), eps)
	}
}

func TestCubeGrid(t *testing.T) {
	grid := CubeGrid(20)
	assert.Len(t, grid, 400)

	first := grid[0]
	assert.Equal(t, mgl32.Vec3{-10, -4, -10}, first.Translation)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, first.Scale)

	last := grid[len(grid)-1]
	assert.InDelta(t, 9, last.Translation.X(), eps)
	assert.InDelta(t, 3.6, last.Translation.Y(), eps)
	assert.InDelta(t, 9, last.Translation.Z(), eps)
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
