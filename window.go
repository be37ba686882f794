package vkpresent

import (
	vk "github.com/vulkan-go/vulkan"
)

// Window is the window-system capability the presentation core consumes.
// See the window package for a GLFW implementation.
type Window interface {
	// RequiredInstanceExtensions lists the instance extensions the window
	// system needs to create a surface.
	RequiredInstanceExtensions() ([]string, error)
	// CreateSurface creates a presentation surface bound to instance.
	CreateSurface(instance vk.Instance) (vk.Surface, error)
	// FramebufferSize returns the current drawable size in pixels.
	FramebufferSize() (width, height int)
}

// FramebufferExtent returns the window's framebuffer size as an extent,
// suitable as the desired extent of NewSwapchain and Recreate.
func FramebufferExtent(w Window) vk.Extent2D {
	width, height := w.FramebufferSize()
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return vk.Extent2D{Width: uint32(width), Height: uint32(height)}
}
