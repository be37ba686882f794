package vkpresent

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Loader is the entry-point tier of the Vulkan API: the calls that are valid
// before any instance exists. It holds no state of its own.
type Loader interface {
	// Load resolves the base entry points. It must be called before any other method.
	Load() error
	InstanceExtensions() ([]string, error)
	InstanceLayers() ([]string, error)
	CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error)
	// LoadInstance resolves the instance-level entry points for instance.
	LoadInstance(instance vk.Instance) (InstanceDispatch, error)
}

// InstanceDispatch issues instance-level calls against a single instance.
type InstanceDispatch interface {
	DestroyInstance()
	DestroySurface(surface vk.Surface)

	CreateDebugReportCallback(info *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, error)
	DestroyDebugReportCallback(callback vk.DebugReportCallback)

	EnumeratePhysicalDevices() ([]vk.PhysicalDevice, error)
	GetPhysicalDeviceProperties(pdev vk.PhysicalDevice) vk.PhysicalDeviceProperties
	GetPhysicalDeviceMemoryProperties(pdev vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties
	GetPhysicalDeviceQueueFamilyProperties(pdev vk.PhysicalDevice) []vk.QueueFamilyProperties
	EnumerateDeviceExtensions(pdev vk.PhysicalDevice) ([]string, error)

	GetPhysicalDeviceSurfaceSupport(pdev vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error)
	GetPhysicalDeviceSurfaceCapabilities(pdev vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error)
	GetPhysicalDeviceSurfaceFormats(pdev vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error)
	GetPhysicalDeviceSurfacePresentModes(pdev vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error)

	CreateDevice(pdev vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error)
	// LoadDevice resolves the device-level entry points for device.
	LoadDevice(device vk.Device) (DeviceDispatch, error)
}

// DeviceDispatch issues device-level calls against a single logical device.
//
// AcquireNextImage and QueuePresent return the raw result because success,
// suboptimal and out-of-date are all meaningful to the caller.
type DeviceDispatch interface {
	DestroyDevice()
	DeviceWaitIdle() error
	GetDeviceQueue(family, index uint32) vk.Queue

	AllocateMemory(info *vk.MemoryAllocateInfo) (vk.DeviceMemory, error)
	FreeMemory(mem vk.DeviceMemory)
	MapMemory(mem vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, error)
	UnmapMemory(mem vk.DeviceMemory)

	CreateBuffer(info *vk.BufferCreateInfo) (vk.Buffer, error)
	DestroyBuffer(buffer vk.Buffer)
	GetBufferMemoryRequirements(buffer vk.Buffer) vk.MemoryRequirements
	BindBufferMemory(buffer vk.Buffer, mem vk.DeviceMemory, offset vk.DeviceSize) error

	CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error)
	DestroySwapchain(swapchain vk.Swapchain)
	GetSwapchainImages(swapchain vk.Swapchain) ([]vk.Image, error)
	AcquireNextImage(swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore, fence vk.Fence) (uint32, vk.Result)
	QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result

	CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(view vk.ImageView)

	CreateSemaphore() (vk.Semaphore, error)
	DestroySemaphore(semaphore vk.Semaphore)
	CreateFence(signaled bool) (vk.Fence, error)
	DestroyFence(fence vk.Fence)
	WaitForFences(fences []vk.Fence, waitAll bool, timeout uint64) error
	ResetFences(fences []vk.Fence) error

	QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) error

	CreateCommandPool(info *vk.CommandPoolCreateInfo) (vk.CommandPool, error)
	DestroyCommandPool(pool vk.CommandPool)
	AllocateCommandBuffers(info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error)
	FreeCommandBuffers(pool vk.CommandPool, buffers []vk.CommandBuffer)
	ResetCommandBuffer(buffer vk.CommandBuffer, flags vk.CommandBufferResetFlags) error
	BeginCommandBuffer(buffer vk.CommandBuffer, info *vk.CommandBufferBeginInfo) error
	EndCommandBuffer(buffer vk.CommandBuffer) error

	CreateShaderModule(info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error)
	DestroyShaderModule(module vk.ShaderModule)
}
