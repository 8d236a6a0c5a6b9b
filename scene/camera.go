package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera holds a view and a projection matrix. Projections map depth to the
// Vulkan [0, 1] range and the world Y axis points down.
type Camera struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3

	FOV       float32
	NearPlane float32
	FarPlane  float32

	projection mgl32.Mat4
	view       mgl32.Mat4
	aspect     float32
}

func NewCamera(fov, nearPlane, farPlane float32) *Camera {
	return &Camera{
		FOV:        fov,
		NearPlane:  nearPlane,
		FarPlane:   farPlane,
		projection: mgl32.Ident4(),
		view:       mgl32.Ident4(),
	}
}

func (c *Camera) SetOrthographicProjection(left, right, top, bottom, near, far float32) {
	p := mgl32.Ident4()
	p[0] = 2 / (right - left)
	p[5] = 2 / (bottom - top)
	p[10] = 1 / (far - near)
	p[12] = -(right + left) / (right - left)
	p[13] = -(bottom + top) / (bottom - top)
	p[14] = -near / (far - near)
	c.projection = p
}

func (c *Camera) SetPerspectiveProjection(fovy, aspect, near, far float32) {
	tanHalfFovy := math32.Tan(fovy / 2)
	var p mgl32.Mat4
	p[0] = 1 / (aspect * tanHalfFovy)
	p[5] = 1 / tanHalfFovy
	p[10] = far / (far - near)
	p[11] = 1
	p[14] = -(far * near) / (far - near)
	c.projection = p
	c.aspect = aspect
}

// UpdateAspectRatio rebuilds the perspective projection from the camera's
// own FOV and clip planes, but only when aspect differs from the last one.
// It reports whether the projection changed.
func (c *Camera) UpdateAspectRatio(aspect float32) bool {
	if aspect <= 0 || aspect == c.aspect {
		return false
	}
	c.SetPerspectiveProjection(c.FOV, aspect, c.NearPlane, c.FarPlane)
	return true
}

func (c *Camera) SetViewDirection(position, direction, up mgl32.Vec3) {
	w := direction.Normalize()
	u := w.Cross(up).Normalize()
	v := w.Cross(u)
	c.setViewBasis(position, u, v, w)
}

func (c *Camera) SetViewTarget(position, target, up mgl32.Vec3) {
	c.SetViewDirection(position, target.Sub(position), up)
}

// SetViewYXZ builds the view from a position and Y, X, Z rotation angles,
// the inverse of Transform.Mat4 for the same values.
func (c *Camera) SetViewYXZ(position, rotation mgl32.Vec3) {
	c3, s3 := math32.Cos(rotation.Z()), math32.Sin(rotation.Z())
	c2, s2 := math32.Cos(rotation.X()), math32.Sin(rotation.X())
	c1, s1 := math32.Cos(rotation.Y()), math32.Sin(rotation.Y())

	u := mgl32.Vec3{c1*c3 + s1*s2*s3, c2 * s3, c1*s2*s3 - c3*s1}
	v := mgl32.Vec3{c3*s1*s2 - c1*s3, c2 * c3, c1*c3*s2 + s1*s3}
	w := mgl32.Vec3{c2 * s1, -s2, c1 * c2}
	c.setViewBasis(position, u, v, w)
}

// SetView applies the camera's own Position and Rotation.
func (c *Camera) SetView() {
	c.SetViewYXZ(c.Position, c.Rotation)
}

func (c *Camera) setViewBasis(position, u, v, w mgl32.Vec3) {
	view := mgl32.Ident4()
	view[0], view[4], view[8] = u.X(), u.Y(), u.Z()
	view[1], view[5], view[9] = v.X(), v.Y(), v.Z()
	view[2], view[6], view[10] = w.X(), w.Y(), w.Z()
	view[12] = -u.Dot(position)
	view[13] = -v.Dot(position)
	view[14] = -w.Dot(position)
	c.view = view
}

func (c *Camera) Projection() mgl32.Mat4 { return c.projection }
func (c *Camera) View() mgl32.Mat4       { return c.view }

func (c *Camera) ProjectionView() mgl32.Mat4 {
	return c.projection.Mul4(c.view)
}

// Forward is the horizontal direction the camera faces, ignoring pitch.
func (c *Camera) Forward() mgl32.Vec3 {
	yaw := c.Rotation.Y()
	return mgl32.Vec3{math32.Sin(yaw), 0, math32.Cos(yaw)}
}

func (c *Camera) Right() mgl32.Vec3 {
	f := c.Forward()
	return mgl32.Vec3{f.Z(), 0, -f.X()}
}
