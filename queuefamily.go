package vkpresent

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type QueueFamilySlice []*QueueFamily

func (ql QueueFamilySlice) Filter(f func(q *QueueFamily) bool) QueueFamilySlice {
	ret := make([]*QueueFamily, 0)
	for _, q := range ql {
		if f(q) {
			ret = append(ret, q)
		}
	}
	return ret
}

func (ql QueueFamilySlice) FilterGraphics() QueueFamilySlice {
	return ql.Filter(func(q *QueueFamily) bool {
		return q.IsGraphics()
	})
}

// QueueFamily is one queue family of a physical device, identified by its index.
type QueueFamily struct {
	Index                   uint32
	PhysicalDevice          *PhysicalDevice
	VKQueueFamilyProperties vk.QueueFamilyProperties
}

func (q *QueueFamily) IsGraphics() bool {
	return q.VKQueueFamilyProperties.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) == vk.QueueFlags(vk.QueueGraphicsBit)
}

// SupportsPresent asks the driver whether queues of this family can present to surface.
func (q *QueueFamily) SupportsPresent(surface vk.Surface) (bool, error) {
	return q.PhysicalDevice.vki.GetPhysicalDeviceSurfaceSupport(q.PhysicalDevice.VKPhysicalDevice, q.Index, surface)
}

func (q *QueueFamily) String() string {
	return fmt.Sprintf("{ Index: %d Graphics: %v Queues: %d }", q.Index, q.IsGraphics(), q.VKQueueFamilyProperties.QueueCount)
}

// QueueAllocation names the queue families the graphics and present queues come from.
type QueueAllocation struct {
	GraphicsFamily uint32
	PresentFamily  uint32
}

// Shared reports whether both queues come from the same family, in which case
// swapchain images can be owned exclusively.
func (a QueueAllocation) Shared() bool {
	return a.GraphicsFamily == a.PresentFamily
}

// Families returns the distinct family indices, graphics first.
func (a QueueAllocation) Families() []uint32 {
	if a.Shared() {
		return []uint32{a.GraphicsFamily}
	}
	return []uint32{a.GraphicsFamily, a.PresentFamily}
}
