package core

import (
	"github.com/go-gl/mathgl/mgl32"

	"vk-engine/scene"
)

// inputSource is the part of Window the input manager polls.
type inputSource interface {
	IsKeyPressed(key int) bool
	IsMouseButtonPressed(button int) bool
	GetCursorPos() (float64, float64)
	SetCursorCaptured(captured bool)
}

// InputManager turns polled keyboard and mouse state into camera input.
// Clicking into the window captures the cursor for mouse look and Escape
// releases it.
type InputManager struct {
	source inputSource

	lastMouseX, lastMouseY float64
	firstFrame             bool
	captured               bool
}

func NewInputManager(window *Window) *InputManager {
	return newInputManager(window)
}

func newInputManager(source inputSource) *InputManager {
	return &InputManager{
		source:     source,
		firstFrame: true,
	}
}

// SetPlayMode captures or releases the cursor.
func (im *InputManager) SetPlayMode(play bool) {
	if im.captured == play {
		return
	}
	im.captured = play
	im.firstFrame = true
	im.source.SetCursorCaptured(play)
}

func (im *InputManager) Captured() bool {
	return im.captured
}

// Update polls the devices once and returns this tick's input.
func (im *InputManager) Update() scene.Input {
	if im.captured && im.source.IsKeyPressed(KeyEscape) {
		im.SetPlayMode(false)
	} else if !im.captured && im.source.IsMouseButtonPressed(MouseLeft) {
		im.SetPlayMode(true)
	}

	var in scene.Input

	x, y := im.source.GetCursorPos()
	if im.firstFrame {
		im.lastMouseX = x
		im.lastMouseY = y
		im.firstFrame = false
	}
	if im.captured {
		in.Look = mgl32.Vec2{float32(x - im.lastMouseX), float32(y - im.lastMouseY)}
	}
	im.lastMouseX = x
	im.lastMouseY = y

	in.Move = mgl32.Vec2{
		im.axis(KeyD, KeyA),
		im.axis(KeyW, KeyS),
	}
	if in.Move.Len() > 1 {
		in.Move = in.Move.Normalize()
	}

	// world Y points down, so rising is negative
	in.Vertical = im.axis(KeyLeftShift, KeySpace)
	if im.source.IsKeyPressed(KeyRightShift) && in.Vertical == 0 {
		in.Vertical = 1
	}

	return in
}

func (im *InputManager) axis(positive, negative int) float32 {
	var v float32
	if im.source.IsKeyPressed(positive) {
		v++
	}
	if im.source.IsKeyPressed(negative) {
		v--
	}
	return v
}
