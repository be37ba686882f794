package vkpresent

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

type PresentModes []vk.PresentMode

// Contains reports whether m is one of the modes.
func (v PresentModes) Contains(m vk.PresentMode) bool {
	for _, s := range v {
		if s == m {
			return true
		}
	}
	return false
}

type SurfaceFormats []vk.SurfaceFormat

func (v SurfaceFormats) Filter(f func(f vk.SurfaceFormat) bool) SurfaceFormats {
	ret := make(SurfaceFormats, 0)
	for _, s := range v {
		if f(s) {
			ret = append(ret, s)
		}
	}
	return ret
}

// PhysicalDevice is a GPU as enumerated by the instance.
type PhysicalDevice struct {
	DeviceName                 string
	VKPhysicalDevice           vk.PhysicalDevice
	VKPhysicalDeviceProperties vk.PhysicalDeviceProperties

	vki InstanceDispatch
}

func newPhysicalDevice(vki InstanceDispatch, handle vk.PhysicalDevice) *PhysicalDevice {
	props := vki.GetPhysicalDeviceProperties(handle)
	return &PhysicalDevice{
		DeviceName:                 vk.ToString(props.DeviceName[:]),
		VKPhysicalDevice:           handle,
		VKPhysicalDeviceProperties: props,
		vki:                        vki,
	}
}

func (p *PhysicalDevice) String() string {
	return p.DeviceName
}

func (p *PhysicalDevice) SupportedExtensions() ([]string, error) {
	return p.vki.EnumerateDeviceExtensions(p.VKPhysicalDevice)
}

// MissingExtensions returns the names in required the device does not support.
func (p *PhysicalDevice) MissingExtensions(required []string) ([]string, error) {
	supported, err := p.SupportedExtensions()
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range required {
		if !containsString(supported, name) {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func (p *PhysicalDevice) SurfacePresentModes(surface vk.Surface) (PresentModes, error) {
	return p.vki.GetPhysicalDeviceSurfacePresentModes(p.VKPhysicalDevice, surface)
}

func (p *PhysicalDevice) SurfaceFormats(surface vk.Surface) (SurfaceFormats, error) {
	return p.vki.GetPhysicalDeviceSurfaceFormats(p.VKPhysicalDevice, surface)
}

func (p *PhysicalDevice) SurfaceCapabilities(surface vk.Surface) (vk.SurfaceCapabilities, error) {
	return p.vki.GetPhysicalDeviceSurfaceCapabilities(p.VKPhysicalDevice, surface)
}

func (p *PhysicalDevice) MemoryProperties() vk.PhysicalDeviceMemoryProperties {
	return p.vki.GetPhysicalDeviceMemoryProperties(p.VKPhysicalDevice)
}

func (p *PhysicalDevice) QueueFamilies() QueueFamilySlice {
	props := p.vki.GetPhysicalDeviceQueueFamilyProperties(p.VKPhysicalDevice)
	ret := make(QueueFamilySlice, len(props))
	for i := range props {
		ret[i] = &QueueFamily{Index: uint32(i), PhysicalDevice: p, VKQueueFamilyProperties: props[i]}
	}
	return ret
}

// AllocateQueues picks the first graphics capable family and, independently,
// the first family that can present to surface. ok is false when either is missing.
func (p *PhysicalDevice) AllocateQueues(surface vk.Surface) (alloc QueueAllocation, ok bool, err error) {
	families := p.QueueFamilies()

	graphics := families.FilterGraphics()
	if len(graphics) == 0 {
		return alloc, false, nil
	}
	alloc.GraphicsFamily = graphics[0].Index

	for _, q := range families {
		supported, err := q.SupportsPresent(surface)
		if err != nil {
			return alloc, false, err
		}
		if supported {
			alloc.PresentFamily = q.Index
			return alloc, true, nil
		}
	}
	return alloc, false, nil
}

// checkSuitable tests whether the device can drive a swapchain on surface.
// A non-empty reason explains a rejection; err is reserved for driver failures.
func (p *PhysicalDevice) checkSuitable(surface vk.Surface, requiredExtensions []string) (alloc QueueAllocation, reason string, err error) {
	missing, err := p.MissingExtensions(requiredExtensions)
	if err != nil {
		return alloc, "", err
	}
	if len(missing) > 0 {
		return alloc, fmt.Sprintf("missing device extensions %v", missing), nil
	}

	formats, err := p.SurfaceFormats(surface)
	if err != nil {
		return alloc, "", err
	}
	if len(formats) == 0 {
		return alloc, "surface reports no formats", nil
	}
	modes, err := p.SurfacePresentModes(surface)
	if err != nil {
		return alloc, "", err
	}
	if len(modes) == 0 {
		return alloc, "surface reports no present modes", nil
	}

	alloc, ok, err := p.AllocateQueues(surface)
	if err != nil {
		return alloc, "", err
	}
	if !ok {
		return alloc, "no graphics and present queue families", nil
	}
	return alloc, "", nil
}

// FindMemoryType returns the first memory type allowed by memoryTypeBits whose
// property flags include all of properties.
func FindMemoryType(mp vk.PhysicalDeviceMemoryProperties, memoryTypeBits uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < mp.MemoryTypeCount && int(i) < len(mp.MemoryTypes); i++ {
		mt := mp.MemoryTypes[i]
		if memoryTypeBits&(1<<i) != 0 && mt.PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, ErrNoSuitableMemoryType
}
