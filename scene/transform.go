package scene

import "github.com/go-gl/mathgl/mgl32"

// Transform places an entry in the world. Rotation holds Tait-Bryan angles
// in radians applied in Y, X, Z order.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Vec3
	Scale       mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// Mat4 returns translate * Ry * Rx * Rz * scale.
func (t Transform) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(mgl32.HomogRotate3DY(t.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DX(t.Rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z())).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// NormalMatrix is the inverse transpose of the upper 3x3 of Mat4, widened to
// a 4x4 so it matches the push constant layout.
func (t Transform) NormalMatrix() mgl32.Mat4 {
	return t.Mat4().Mat3().Inv().Transpose().Mat4()
}
