package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type fakeInput struct {
	keys     map[int]bool
	buttons  map[int]bool
	x, y     float64
	captured []bool
}

func newFakeInput() *fakeInput {
	return &fakeInput{keys: map[int]bool{}, buttons: map[int]bool{}}
}

func (f *fakeInput) IsKeyPressed(key int) bool            { return f.keys[key] }
func (f *fakeInput) IsMouseButtonPressed(button int) bool { return f.buttons[button] }
func (f *fakeInput) GetCursorPos() (float64, float64)     { return f.x, f.y }
func (f *fakeInput) SetCursorCaptured(captured bool)      { f.captured = append(f.captured, captured) }

func TestMovementKeys(t *testing.T) {
	src := newFakeInput()
	im := newInputManager(src)

	src.keys[KeyW] = true
	assert.Equal(t, mgl32.Vec2{0, 1}, im.Update().Move)

	src.keys[KeyS] = true
	assert.Equal(t, mgl32.Vec2{0, 0}, im.Update().Move)

	src.keys[KeyS] = false
	src.keys[KeyD] = true
	move := im.Update().Move
	assert.InDelta(t, 1, move.Len(), 1e-6)
	assert.InDelta(t, move.X(), move.Y(), 1e-6)

	src.keys = map[int]bool{KeySpace: true}
	assert.Equal(t, float32(-1), im.Update().Vertical)

	src.keys = map[int]bool{KeyLeftShift: true}
	assert.Equal(t, float32(1), im.Update().Vertical)
}

func TestMouseLookOnlyWhileCaptured(t *testing.T) {
	src := newFakeInput()
	im := newInputManager(src)

	src.x, src.y = 100, 100
	im.Update()
	src.x, src.y = 150, 90
	assert.Equal(t, mgl32.Vec2{}, im.Update().Look)

	src.buttons[MouseLeft] = true
	in := im.Update()
	assert.True(t, im.Captured())
	assert.Equal(t, []bool{true}, src.captured)
	assert.Equal(t, mgl32.Vec2{}, in.Look, "capturing resets the cursor origin")

	src.buttons[MouseLeft] = false
	src.x, src.y = 160, 70
	assert.Equal(t, mgl32.Vec2{10, -20}, im.Update().Look)

	src.keys[KeyEscape] = true
	src.x, src.y = 200, 200
	assert.Equal(t, mgl32.Vec2{}, im.Update().Look)
	assert.False(t, im.Captured())
	assert.Equal(t, []bool{true, false}, src.captured)
}
