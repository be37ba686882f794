/*
Package vkpresent gets pixels from a Vulkan device onto a window. It selects a physical device that
can present to the window's surface, creates the logical device with a graphics and a present queue,
and keeps a swapchain whose images the application renders into one frame at a time.

Everything else a renderer needs, the render pass, pipelines, buffers and the commands that draw,
stays with the application. Native Vulkan handles are exposed on every object, in fields prefixed
with 'VK' or through accessors, so applications are not limited by what this package wraps.

Native Vulkan terms
	Instance	the vulkan runtime instance
	Surface		the window system's drawable, as seen by vulkan
	PhysicalDevice	the physical hardware device
	Device		the logical device, the target of most of the vulkan apis
	Queue		a queue which work (command buffers) may be submitted to
	Swapchain	a ring of images the presentation engine displays in turn
	Semaphore	orders work between queues on the device
	Fence		tells the host that submitted work has completed

Setup

A Window supplies the instance extensions the surface needs and creates the surface once the
instance exists. The window subpackage implements it with GLFW.

	ctx, err := vkpresent.Initialize("app", win, &vkpresent.Options{EnableValidation: true})
	...
	sc, err := vkpresent.NewSwapchain(ctx, vk.Extent2D{Width: 800, Height: 600})

Frames

After construction the swapchain always holds one acquired image. The application records commands
that render into it (see CurrentImageIndex and Images) and hands them to Present, which waits for
the image's previous frame to finish, submits, queues the image for display and acquires the next.

	for !win.ShouldClose() {
		cmd := commands[sc.CurrentImageIndex()]
		state, err := sc.Present(cmd)
		switch {
		case vkpresent.IsOutOfDate(err), state == vkpresent.Suboptimal:
			err = sc.Recreate(size())
		}
		...
	}

Recreate builds the new swapchain before it releases the old one, so a failed recreation leaves
the swapchain as it was. While a window is minimized the surface has no size and Recreate returns
ErrInvalidSurfaceDimensions; skip frames until the size is non-zero again.

Teardown is the reverse of setup: WaitForAllFences, application objects, Swapchain.Destroy and
finally Context.Deinitialize.

Drivers

Vulkan entry points come in three tiers: those callable before an instance exists (Loader), those
bound to an instance (InstanceDispatch) and those bound to a logical device (DeviceDispatch).
NewVulkanLoader implements all three on github.com/vulkan-go/vulkan; any other implementation can
be supplied through Options.Loader.
*/
package vkpresent
