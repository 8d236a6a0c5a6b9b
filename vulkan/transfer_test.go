package vulkan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

// fakeOneShot fails the named step and records every step it runs.
type fakeOneShot struct {
	failAt string
	steps  []string
	freed  int
}

var errStep = errors.New("step failed")

func (f *fakeOneShot) step(name string) error {
	f.steps = append(f.steps, name)
	if f.failAt == name {
		return errStep
	}
	return nil
}

func (f *fakeOneShot) allocate() (vk.CommandBuffer, error) {
	return vk.CommandBuffer(vk.NullHandle), f.step("allocate")
}

func (f *fakeOneShot) begin(vk.CommandBuffer) error  { return f.step("begin") }
func (f *fakeOneShot) end(vk.CommandBuffer) error    { return f.step("end") }
func (f *fakeOneShot) submit(vk.CommandBuffer) error { return f.step("submit") }
func (f *fakeOneShot) waitIdle() error               { return f.step("wait") }
func (f *fakeOneShot) free(vk.CommandBuffer)         { f.freed++ }

func TestSingleTimeCommandsRunInOrder(t *testing.T) {
	q := &fakeOneShot{}
	recorded := 0

	require.NoError(t, executeSingleTime(q, func(vk.CommandBuffer) { recorded++ }))
	assert.Equal(t, 1, recorded)
	assert.Equal(t, []string{"allocate", "begin", "end", "submit", "wait"}, q.steps)
	assert.Equal(t, 1, q.freed)
}

func TestSingleTimeCommandsFreeOnEveryFailure(t *testing.T) {
	for _, step := range []string{"begin", "end", "submit", "wait"} {
		t.Run(step, func(t *testing.T) {
			q := &fakeOneShot{failAt: step}

			err := executeSingleTime(q, func(vk.CommandBuffer) {})
			assert.ErrorIs(t, err, errStep)
			assert.Equal(t, 1, q.freed)
		})
	}
}

func TestSingleTimeSubmitFailureIsSubmissionError(t *testing.T) {
	q := &fakeOneShot{failAt: "submit"}

	err := endSingleTime(q, vk.CommandBuffer(vk.NullHandle))
	assert.ErrorIs(t, err, ErrSubmission)
	assert.NotContains(t, q.steps, "wait")
}

func TestSingleTimeAllocationFailureSkipsRecording(t *testing.T) {
	q := &fakeOneShot{failAt: "allocate"}
	recorded := false

	err := executeSingleTime(q, func(vk.CommandBuffer) { recorded = true })
	assert.ErrorIs(t, err, errStep)
	assert.False(t, recorded)
	assert.Zero(t, q.freed)
}

func TestBufferImageRegion(t *testing.T) {
	region := bufferImageRegion(64, 32, 6)

	assert.Equal(t, vk.DeviceSize(0), region.BufferOffset)
	assert.Zero(t, region.BufferRowLength)
	assert.Equal(t, vk.ImageAspectFlags(vk.ImageAspectColorBit), region.ImageSubresource.AspectMask)
	assert.Equal(t, uint32(6), region.ImageSubresource.LayerCount)
	assert.Equal(t, vk.Extent3D{Width: 64, Height: 32, Depth: 1}, region.ImageExtent)
}
