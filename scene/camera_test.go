package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPerspectiveProjectionLayout(t *testing.T) {
	cam := NewCamera(mgl32.DegToRad(50), 0.1, 100)
	cam.SetPerspectiveProjection(mgl32.DegToRad(90), 2, 1, 11)
	p := cam.Projection()

	assert.InDelta(t, 0.5, p[0], eps)
	assert.InDelta(t, 1.0, p[5], eps)
	assert.InDelta(t, 1.1, p[10], eps)
	assert.InDelta(t, 1.0, p[11], eps)
	assert.InDelta(t, -1.1, p[14], eps)
	assert.InDelta(t, 0.0, p[15], eps)
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(0.1), float32(100)
	cam := NewCamera(mgl32.DegToRad(50), near, far)
	cam.SetPerspectiveProjection(cam.FOV, 1, near, far)

	depth := func(z float32) float32 {
		clip := cam.Projection().Mul4x1(mgl32.Vec4{0, 0, z, 1})
		return clip.Z() / clip.W()
	}
	assert.InDelta(t, 0.0, depth(near), eps)
	assert.InDelta(t, 1.0, depth(far), 1e-4)
	assert.Less(t, depth(1), depth(10))
}

func TestOrthographicProjection(t *testing.T) {
	cam := NewCamera(0, 0, 0)
	cam.SetOrthographicProjection(-2, 2, -1, 1, 0, 10)

	got := cam.Projection().Mul4x1(mgl32.Vec4{2, 1, 10, 1})
	assertVec3Near(t, mgl32.Vec3{1, 1, 1}, got.Vec3())
	assert.InDelta(t, 1.0, got.W(), eps)
}

func TestViewYXZMatchesInverseTransform(t *testing.T) {
	pos := mgl32.Vec3{1, -2, 3}
	rot := mgl32.Vec3{0.4, 1.2, -0.3}

	cam := NewCamera(1, 0.1, 10)
	cam.SetViewYXZ(pos, rot)

	world := Transform{Translation: pos, Rotation: rot, Scale: mgl32.Vec3{1, 1, 1}}.Mat4()
	assertMat4Near(t, mgl32.Ident4(), cam.View().Mul4(world), 1e-4)
}

func TestViewTargetLooksAlongPositiveZ(t *testing.T) {
	cam := NewCamera(1, 0.1, 10)
	cam.SetViewTarget(mgl32.Vec3{0, 0, -3}, mgl32.Vec3{}, mgl32.Vec3{0, -1, 0})

	origin := cam.View().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 3.0, origin.Z(), eps)
	assert.InDelta(t, 0.0, origin.X(), eps)
	assert.InDelta(t, 0.0, origin.Y(), eps)
}

func TestUpdateAspectRatioOnlyOnChange(t *testing.T) {
	cam := NewCamera(mgl32.DegToRad(50), 0.1, 100)

	assert.True(t, cam.UpdateAspectRatio(1.5))
	assert.False(t, cam.UpdateAspectRatio(1.5))
	assert.False(t, cam.UpdateAspectRatio(0))
	assert.True(t, cam.UpdateAspectRatio(4.0/3.0))
	assert.InDelta(t, 1/(4.0/3.0*math32.Tan(mgl32.DegToRad(25))), cam.Projection()[0], eps)
}

func TestForwardAndRightFollowYaw(t *testing.T) {
	cam := NewCamera(1, 0.1, 10)
	assertVec3Near(t, mgl32.Vec3{0, 0, 1}, cam.Forward())
	assertVec3Near(t, mgl32.Vec3{1, 0, 0}, cam.Right())

	cam.Rotation = mgl32.Vec3{0.7, math32.Pi / 2, 0}
	assertVec3Near(t, mgl32.Vec3{1, 0, 0}, cam.Forward())
	assertVec3Near(t, mgl32.Vec3{0, 0, -1}, cam.Right())
}
