// Package app runs the per-tick loop: read input, move the camera, render.
package app

import (
	"errors"
	"log/slog"
	"time"

	"vk-engine/renderer"
	"vk-engine/scene"
	"vk-engine/vulkan"
)

type Window interface {
	ShouldClose() bool
	PollEvents()
}

type InputSource interface {
	Update() scene.Input
}

// FrameRenderer is the frame protocol of *renderer.Renderer.
type FrameRenderer interface {
	BeginFrame() (renderer.FrameCommands, error)
	BeginSwapChainRenderPass(cmd renderer.FrameCommands) error
	EndSwapChainRenderPass(cmd renderer.FrameCommands) error
	EndFrame() error
	AspectRatio() float32
}

type SceneRenderer interface {
	RenderGameObjects(cmd vulkan.Recorder, entries []scene.Entry, camera *scene.Camera) renderer.DrawStats
}

// App owns the camera and the scene and drives one frame per tick.
type App struct {
	window   Window
	input    InputSource
	frames   FrameRenderer
	system   SceneRenderer
	logger   *slog.Logger
	now      func() time.Time
	waitIdle func() error
	closers  []func()
	rendered uint64
	draws    uint64

	Camera     *scene.Camera
	Controller *scene.CameraController
	Objects    *scene.Collection
}

func New(window Window, input InputSource, frames FrameRenderer, system SceneRenderer, camera *scene.Camera, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		window:     window,
		input:      input,
		frames:     frames,
		system:     system,
		logger:     logger,
		now:        time.Now,
		Camera:     camera,
		Controller: scene.NewCameraController(),
		Objects:    scene.NewCollection(),
	}
}

func (a *App) UpdateInput() scene.Input {
	return a.input.Update()
}

// UpdateCamera applies input for a tick of dt seconds. The projection is
// rebuilt only when the swap chain aspect ratio has changed.
func (a *App) UpdateCamera(in scene.Input, dt float32) *scene.Camera {
	if a.Camera.UpdateAspectRatio(a.frames.AspectRatio()) {
		a.logger.Debug("projection updated", "aspect", a.frames.AspectRatio())
	}
	a.Controller.Update(in, dt, a.Camera)
	return a.Camera
}

// RenderFrame records and presents one frame. A frame skipped for swap
// chain recreation is not an error.
func (a *App) RenderFrame(camera *scene.Camera, entries []scene.Entry) error {
	cmd, err := a.frames.BeginFrame()
	if err != nil || cmd == nil {
		return err
	}

	if err := a.frames.BeginSwapChainRenderPass(cmd); err != nil {
		return err
	}
	stats := a.system.RenderGameObjects(cmd, entries, camera)
	if err := a.frames.EndSwapChainRenderPass(cmd); err != nil {
		return err
	}
	if err := a.frames.EndFrame(); err != nil {
		return err
	}

	a.rendered++
	a.draws += uint64(stats.Draws)
	return nil
}

// Run ticks until the window closes or maxFrames ticks have run. A
// non-positive maxFrames runs until the window closes. Closing the window
// while it is minimized ends the run without an error.
func (a *App) Run(maxFrames int) error {
	start := a.now()
	last := start
	ticks := 0
	for maxFrames <= 0 || ticks < maxFrames {
		if a.window.ShouldClose() {
			break
		}
		a.window.PollEvents()

		current := a.now()
		dt := float32(current.Sub(last).Seconds())
		last = current

		in := a.UpdateInput()
		camera := a.UpdateCamera(in, dt)
		err := a.RenderFrame(camera, a.Objects.Entries())
		if errors.Is(err, renderer.ErrSurfaceClosed) {
			a.logger.Info("window closed while minimized")
			break
		}
		if err != nil {
			return err
		}
		ticks++
	}

	elapsed := a.now().Sub(start)
	a.logger.Info("run finished", "ticks", ticks, "frames", a.rendered, "draws", a.draws, "elapsed", elapsed)
	return nil
}

// FramesRendered counts frames that reached EndFrame.
func (a *App) FramesRendered() uint64 { return a.rendered }

// Close waits for the GPU to finish and then releases everything Build
// created, newest first.
func (a *App) Close() {
	if a.waitIdle != nil {
		if err := a.waitIdle(); err != nil {
			a.logger.Error("wait idle", "error", err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
