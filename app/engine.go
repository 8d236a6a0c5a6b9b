package app

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"vk-engine/config"
	"vk-engine/core"
	"vk-engine/renderer"
	"vk-engine/scene"
	"vk-engine/vulkan"
)

// Build opens the window, brings up the device and renderer and fills the
// scene with the cube grid. Close releases everything in reverse order
// after the device has gone idle.
func Build(cfg config.Config, logger *slog.Logger) (a *App, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	window, err := core.NewWindow(core.WindowConfig{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Resizable:  cfg.Window.Resizable,
		Fullscreen: cfg.Window.Fullscreen,
	})
	if err != nil {
		return nil, err
	}
	closers = append(closers, window.Destroy)

	deviceConfig := vulkan.DefaultDeviceConfig()
	deviceConfig.AppName = cfg.Window.Title
	deviceConfig.EnableValidation = cfg.Vulkan.Validation
	deviceConfig.VSync = cfg.Vulkan.VSync

	device, err := vulkan.NewDevice(window, deviceConfig, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, device.Destroy)
	logger.Info("device ready", "gpu", device.GPUName())

	frames, err := renderer.NewVulkan(window, device, renderer.Options{
		FramesInFlight: cfg.Vulkan.FramesInFlight,
		ClearColor:     cfg.Render.ClearColor,
	}, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, func() {
		if err := frames.Close(); err != nil {
			logger.Error("renderer shutdown", "error", err)
		}
	})

	system, err := renderer.NewRenderSystem(device, frames.SwapChainRenderPass(), renderer.ShaderPaths{
		Vertex:   cfg.Render.VertexShader,
		Fragment: cfg.Render.FragmentShader,
	})
	if err != nil {
		return nil, err
	}
	closers = append(closers, system.Close)

	cube, err := vulkan.NewModel(device, scene.CreateCube(mgl32.Vec3{}), nil)
	if err != nil {
		return nil, fmt.Errorf("cube model: %w", err)
	}
	closers = append(closers, func() { cube.Destroy(device) })

	camera := scene.NewCamera(mgl32.DegToRad(cfg.Camera.FOV), cfg.Camera.Near, cfg.Camera.Far)
	camera.Position = mgl32.Vec3{0, -2, -12}
	camera.SetView()

	input := core.NewInputManager(window)
	input.SetPlayMode(true)

	a = New(window, input, frames, system, camera, logger)
	a.Controller.MoveSpeed = cfg.Camera.MoveSpeed
	a.Controller.LookSpeed = cfg.Camera.LookSpeed
	for _, t := range scene.CubeGrid(cfg.Render.GridSize) {
		a.Objects.Add(cube, t)
	}
	logger.Info("scene ready", "entries", a.Objects.Len())

	a.waitIdle = device.WaitIdle
	a.closers = closers
	return a, nil
}
