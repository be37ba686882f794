// Package window provides a GLFW window that a vkpresent.Context can present to.
//
// GLFW must only be used from the main thread; callers should lock it with
// runtime.LockOSThread in an init function.
package window

import (
	"sync/atomic"
	"unsafe"

	"github.com/celer/vkpresent"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var _ vkpresent.Window = (*Window)(nil)

// Window is a GLFW window without a client API, suitable for Vulkan.
type Window struct {
	GLFW *glfw.Window

	resized atomic.Bool
}

// New initializes GLFW and opens a resizable window.
func New(width, height int, title string) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "initializing glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("glfw: vulkan is not supported")
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	gw, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "creating window")
	}

	w := &Window{GLFW: gw}
	gw.SetFramebufferSizeCallback(func(_ *glfw.Window, _, _ int) {
		w.resized.Store(true)
	})
	return w, nil
}

// ProcAddr returns vkGetInstanceProcAddr as resolved by GLFW, for use with
// vkpresent.NewVulkanLoader.
func (w *Window) ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

func (w *Window) RequiredInstanceExtensions() ([]string, error) {
	exts := w.GLFW.GetRequiredInstanceExtensions()
	if len(exts) == 0 {
		return nil, errors.New("glfw: no instance extensions for window surfaces")
	}
	return exts, nil
}

func (w *Window) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.GLFW.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, err
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (w *Window) FramebufferSize() (width, height int) {
	return w.GLFW.GetFramebufferSize()
}

func (w *Window) ShouldClose() bool {
	return w.GLFW.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// WaitEvents blocks until at least one event arrives. Use it instead of
// PollEvents while the window is minimized.
func (w *Window) WaitEvents() {
	glfw.WaitEvents()
}

// TakeResized reports whether the framebuffer was resized since the last call.
func (w *Window) TakeResized() bool {
	return w.resized.Swap(false)
}

func (w *Window) Destroy() {
	w.GLFW.Destroy()
}

// Terminate shuts GLFW down. Call it last, after Destroy.
func Terminate() {
	glfw.Terminate()
}
