package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Input is one tick of player intent. Move.X strafes right, Move.Y moves
// forward, Vertical moves along world Y (positive is down) and Look is the
// cursor delta in screen pixels, right and down positive.
type Input struct {
	Move     mgl32.Vec2
	Vertical float32
	Look     mgl32.Vec2
}

// CameraController flies a camera on the horizontal plane with mouse look.
type CameraController struct {
	MoveSpeed float32
	LookSpeed float32
}

func NewCameraController() *CameraController {
	return &CameraController{
		MoveSpeed: 3.0,
		LookSpeed: 0.00045,
	}
}

// Update moves and turns cam for a tick of dt seconds, clamps pitch to a
// quarter turn either way and refreshes the view matrix.
func (cc *CameraController) Update(in Input, dt float32, cam *Camera) {
	step := cc.MoveSpeed * dt
	move := cam.Right().Mul(in.Move.X() * step).
		Add(mgl32.Vec3{0, in.Vertical * step, 0}).
		Add(cam.Forward().Mul(in.Move.Y() * step))

	look := in.Look.Mul(cc.LookSpeed)

	cam.Position = cam.Position.Add(move)
	cam.Rotation = cam.Rotation.Add(mgl32.Vec3{-look.Y(), look.X(), 0})
	cam.Rotation[0] = mgl32.Clamp(cam.Rotation[0], -math32.Pi/2, math32.Pi/2)

	cam.SetView()
}
