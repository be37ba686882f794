package vkpresent

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// NewVulkanLoader returns the Loader backed by github.com/vulkan-go/vulkan.
// procAddr is a vkGetInstanceProcAddr pointer, typically obtained from the
// window system; nil selects the default system loader.
//
// vulkan-go keeps its function pointers process-wide, so only one instance
// and device should be driven through it at a time.
func NewVulkanLoader(procAddr unsafe.Pointer) Loader {
	return &vulkanLoader{procAddr: procAddr}
}

type vulkanLoader struct {
	procAddr unsafe.Pointer
}

func (l *vulkanLoader) Load() error {
	if l.procAddr != nil {
		vk.SetGetInstanceProcAddr(l.procAddr)
	} else if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return errors.Wrap(err, "loading vulkan library")
	}
	return errors.Wrap(vk.Init(), "loading vulkan entry points")
}

func (l *vulkanLoader) InstanceExtensions() ([]string, error) {
	var count uint32
	if err := NewError("vkEnumerateInstanceExtensionProperties", vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := NewError("vkEnumerateInstanceExtensionProperties", vk.EnumerateInstanceExtensionProperties("", &count, props)); err != nil {
		return nil, err
	}
	return extensionNames(props[:count]), nil
}

func (l *vulkanLoader) InstanceLayers() ([]string, error) {
	var count uint32
	if err := NewError("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.LayerProperties, count)
	if err := NewError("vkEnumerateInstanceLayerProperties", vk.EnumerateInstanceLayerProperties(&count, props)); err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for _, layer := range props[:count] {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

func (l *vulkanLoader) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	var instance vk.Instance
	if err := NewError("vkCreateInstance", vk.CreateInstance(info, nil, &instance)); err != nil {
		return nil, err
	}
	return instance, nil
}

func (l *vulkanLoader) LoadInstance(instance vk.Instance) (InstanceDispatch, error) {
	if err := vk.InitInstance(instance); err != nil {
		return nil, errors.Wrap(err, "loading instance entry points")
	}
	return &vulkanInstance{instance: instance}, nil
}

func extensionNames(props []vk.ExtensionProperties) []string {
	names := make([]string, 0, len(props))
	for _, ext := range props {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names
}

type vulkanInstance struct {
	instance vk.Instance
}

func (i *vulkanInstance) DestroyInstance() {
	vk.DestroyInstance(i.instance, nil)
}

func (i *vulkanInstance) DestroySurface(surface vk.Surface) {
	vk.DestroySurface(i.instance, surface, nil)
}

func (i *vulkanInstance) CreateDebugReportCallback(info *vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, error) {
	var callback vk.DebugReportCallback
	if err := NewError("vkCreateDebugReportCallbackEXT", vk.CreateDebugReportCallback(i.instance, info, nil, &callback)); err != nil {
		return vk.NullDebugReportCallback, err
	}
	return callback, nil
}

func (i *vulkanInstance) DestroyDebugReportCallback(callback vk.DebugReportCallback) {
	vk.DestroyDebugReportCallback(i.instance, callback, nil)
}

func (i *vulkanInstance) EnumeratePhysicalDevices() ([]vk.PhysicalDevice, error) {
	var count uint32
	if err := NewError("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(i.instance, &count, nil)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	devices := make([]vk.PhysicalDevice, count)
	if err := NewError("vkEnumeratePhysicalDevices", vk.EnumeratePhysicalDevices(i.instance, &count, devices)); err != nil {
		return nil, err
	}
	return devices[:count], nil
}

func (i *vulkanInstance) GetPhysicalDeviceProperties(pdev vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pdev, &props)
	props.Deref()
	props.Limits.Deref()
	return props
}

func (i *vulkanInstance) GetPhysicalDeviceMemoryProperties(pdev vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pdev, &props)
	props.Deref()
	for j := uint32(0); j < props.MemoryTypeCount; j++ {
		props.MemoryTypes[j].Deref()
	}
	for j := uint32(0); j < props.MemoryHeapCount; j++ {
		props.MemoryHeaps[j].Deref()
	}
	return props
}

func (i *vulkanInstance) GetPhysicalDeviceQueueFamilyProperties(pdev vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pdev, &count, nil)
	if count == 0 {
		return nil
	}
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pdev, &count, props)
	for j := range props {
		props[j].Deref()
	}
	return props[:count]
}

func (i *vulkanInstance) EnumerateDeviceExtensions(pdev vk.PhysicalDevice) ([]string, error) {
	var count uint32
	if err := NewError("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(pdev, "", &count, nil)); err != nil {
		return nil, err
	}
	props := make([]vk.ExtensionProperties, count)
	if err := NewError("vkEnumerateDeviceExtensionProperties", vk.EnumerateDeviceExtensionProperties(pdev, "", &count, props)); err != nil {
		return nil, err
	}
	return extensionNames(props[:count]), nil
}

func (i *vulkanInstance) GetPhysicalDeviceSurfaceSupport(pdev vk.PhysicalDevice, family uint32, surface vk.Surface) (bool, error) {
	var supported vk.Bool32
	if err := NewError("vkGetPhysicalDeviceSurfaceSupportKHR", vk.GetPhysicalDeviceSurfaceSupport(pdev, family, surface, &supported)); err != nil {
		return false, err
	}
	return supported == vk.True, nil
}

func (i *vulkanInstance) GetPhysicalDeviceSurfaceCapabilities(pdev vk.PhysicalDevice, surface vk.Surface) (vk.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := NewError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", vk.GetPhysicalDeviceSurfaceCapabilities(pdev, surface, &caps)); err != nil {
		return caps, err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return caps, nil
}

func (i *vulkanInstance) GetPhysicalDeviceSurfaceFormats(pdev vk.PhysicalDevice, surface vk.Surface) ([]vk.SurfaceFormat, error) {
	var count uint32
	if err := NewError("vkGetPhysicalDeviceSurfaceFormatsKHR", vk.GetPhysicalDeviceSurfaceFormats(pdev, surface, &count, nil)); err != nil {
		return nil, err
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := NewError("vkGetPhysicalDeviceSurfaceFormatsKHR", vk.GetPhysicalDeviceSurfaceFormats(pdev, surface, &count, formats)); err != nil {
		return nil, err
	}
	for j := range formats {
		formats[j].Deref()
	}
	return formats[:count], nil
}

func (i *vulkanInstance) GetPhysicalDeviceSurfacePresentModes(pdev vk.PhysicalDevice, surface vk.Surface) ([]vk.PresentMode, error) {
	var count uint32
	if err := NewError("vkGetPhysicalDeviceSurfacePresentModesKHR", vk.GetPhysicalDeviceSurfacePresentModes(pdev, surface, &count, nil)); err != nil {
		return nil, err
	}
	modes := make([]vk.PresentMode, count)
	if err := NewError("vkGetPhysicalDeviceSurfacePresentModesKHR", vk.GetPhysicalDeviceSurfacePresentModes(pdev, surface, &count, modes)); err != nil {
		return nil, err
	}
	return modes[:count], nil
}

func (i *vulkanInstance) CreateDevice(pdev vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	var device vk.Device
	if err := NewError("vkCreateDevice", vk.CreateDevice(pdev, info, nil, &device)); err != nil {
		return nil, err
	}
	return device, nil
}

func (i *vulkanInstance) LoadDevice(device vk.Device) (DeviceDispatch, error) {
	return &vulkanDevice{device: device}, nil
}

type vulkanDevice struct {
	device vk.Device
}

func (d *vulkanDevice) DestroyDevice() {
	vk.DestroyDevice(d.device, nil)
}

func (d *vulkanDevice) DeviceWaitIdle() error {
	return NewError("vkDeviceWaitIdle", vk.DeviceWaitIdle(d.device))
}

func (d *vulkanDevice) GetDeviceQueue(family, index uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(d.device, family, index, &queue)
	return queue
}

func (d *vulkanDevice) AllocateMemory(info *vk.MemoryAllocateInfo) (vk.DeviceMemory, error) {
	var mem vk.DeviceMemory
	if err := NewError("vkAllocateMemory", vk.AllocateMemory(d.device, info, nil, &mem)); err != nil {
		return vk.NullDeviceMemory, err
	}
	return mem, nil
}

func (d *vulkanDevice) FreeMemory(mem vk.DeviceMemory) {
	vk.FreeMemory(d.device, mem, nil)
}

func (d *vulkanDevice) MapMemory(mem vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, error) {
	var ptr unsafe.Pointer
	if err := NewError("vkMapMemory", vk.MapMemory(d.device, mem, offset, size, 0, &ptr)); err != nil {
		return nil, err
	}
	return ptr, nil
}

func (d *vulkanDevice) UnmapMemory(mem vk.DeviceMemory) {
	vk.UnmapMemory(d.device, mem)
}

func (d *vulkanDevice) CreateBuffer(info *vk.BufferCreateInfo) (vk.Buffer, error) {
	var buffer vk.Buffer
	if err := NewError("vkCreateBuffer", vk.CreateBuffer(d.device, info, nil, &buffer)); err != nil {
		return vk.NullBuffer, err
	}
	return buffer, nil
}

func (d *vulkanDevice) DestroyBuffer(buffer vk.Buffer) {
	vk.DestroyBuffer(d.device, buffer, nil)
}

func (d *vulkanDevice) GetBufferMemoryRequirements(buffer vk.Buffer) vk.MemoryRequirements {
	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, buffer, &req)
	req.Deref()
	return req
}

func (d *vulkanDevice) BindBufferMemory(buffer vk.Buffer, mem vk.DeviceMemory, offset vk.DeviceSize) error {
	return NewError("vkBindBufferMemory", vk.BindBufferMemory(d.device, buffer, mem, offset))
}

func (d *vulkanDevice) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	if err := NewError("vkCreateSwapchainKHR", vk.CreateSwapchain(d.device, info, nil, &swapchain)); err != nil {
		return vk.NullSwapchain, err
	}
	return swapchain, nil
}

func (d *vulkanDevice) DestroySwapchain(swapchain vk.Swapchain) {
	vk.DestroySwapchain(d.device, swapchain, nil)
}

func (d *vulkanDevice) GetSwapchainImages(swapchain vk.Swapchain) ([]vk.Image, error) {
	var count uint32
	if err := NewError("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(d.device, swapchain, &count, nil)); err != nil {
		return nil, err
	}
	images := make([]vk.Image, count)
	if err := NewError("vkGetSwapchainImagesKHR", vk.GetSwapchainImages(d.device, swapchain, &count, images)); err != nil {
		return nil, err
	}
	return images[:count], nil
}

func (d *vulkanDevice) AcquireNextImage(swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore, fence vk.Fence) (uint32, vk.Result) {
	var index uint32
	res := vk.AcquireNextImage(d.device, swapchain, timeout, semaphore, fence, &index)
	return index, res
}

func (d *vulkanDevice) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	return vk.QueuePresent(queue, info)
}

func (d *vulkanDevice) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	if err := NewError("vkCreateImageView", vk.CreateImageView(d.device, info, nil, &view)); err != nil {
		return vk.NullImageView, err
	}
	return view, nil
}

func (d *vulkanDevice) DestroyImageView(view vk.ImageView) {
	vk.DestroyImageView(d.device, view, nil)
}

func (d *vulkanDevice) CreateSemaphore() (vk.Semaphore, error) {
	info := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	if err := NewError("vkCreateSemaphore", vk.CreateSemaphore(d.device, &info, nil, &semaphore)); err != nil {
		return vk.NullSemaphore, err
	}
	return semaphore, nil
}

func (d *vulkanDevice) DestroySemaphore(semaphore vk.Semaphore) {
	vk.DestroySemaphore(d.device, semaphore, nil)
}

func (d *vulkanDevice) CreateFence(signaled bool) (vk.Fence, error) {
	info := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if signaled {
		info.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	if err := NewError("vkCreateFence", vk.CreateFence(d.device, &info, nil, &fence)); err != nil {
		return vk.NullFence, err
	}
	return fence, nil
}

func (d *vulkanDevice) DestroyFence(fence vk.Fence) {
	vk.DestroyFence(d.device, fence, nil)
}

func (d *vulkanDevice) WaitForFences(fences []vk.Fence, waitAll bool, timeout uint64) error {
	wait := vk.Bool32(vk.False)
	if waitAll {
		wait = vk.True
	}
	return NewError("vkWaitForFences", vk.WaitForFences(d.device, uint32(len(fences)), fences, wait, timeout))
}

func (d *vulkanDevice) ResetFences(fences []vk.Fence) error {
	return NewError("vkResetFences", vk.ResetFences(d.device, uint32(len(fences)), fences))
}

func (d *vulkanDevice) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) error {
	return NewError("vkQueueSubmit", vk.QueueSubmit(queue, uint32(len(submits)), submits, fence))
}

func (d *vulkanDevice) CreateCommandPool(info *vk.CommandPoolCreateInfo) (vk.CommandPool, error) {
	var pool vk.CommandPool
	if err := NewError("vkCreateCommandPool", vk.CreateCommandPool(d.device, info, nil, &pool)); err != nil {
		return pool, err
	}
	return pool, nil
}

func (d *vulkanDevice) DestroyCommandPool(pool vk.CommandPool) {
	vk.DestroyCommandPool(d.device, pool, nil)
}

func (d *vulkanDevice) AllocateCommandBuffers(info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	if err := NewError("vkAllocateCommandBuffers", vk.AllocateCommandBuffers(d.device, info, buffers)); err != nil {
		return nil, err
	}
	return buffers, nil
}

func (d *vulkanDevice) FreeCommandBuffers(pool vk.CommandPool, buffers []vk.CommandBuffer) {
	vk.FreeCommandBuffers(d.device, pool, uint32(len(buffers)), buffers)
}

func (d *vulkanDevice) ResetCommandBuffer(buffer vk.CommandBuffer, flags vk.CommandBufferResetFlags) error {
	return NewError("vkResetCommandBuffer", vk.ResetCommandBuffer(buffer, flags))
}

func (d *vulkanDevice) BeginCommandBuffer(buffer vk.CommandBuffer, info *vk.CommandBufferBeginInfo) error {
	return NewError("vkBeginCommandBuffer", vk.BeginCommandBuffer(buffer, info))
}

func (d *vulkanDevice) EndCommandBuffer(buffer vk.CommandBuffer) error {
	return NewError("vkEndCommandBuffer", vk.EndCommandBuffer(buffer))
}

func (d *vulkanDevice) CreateShaderModule(info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	var module vk.ShaderModule
	if err := NewError("vkCreateShaderModule", vk.CreateShaderModule(d.device, info, nil, &module)); err != nil {
		return module, err
	}
	return module, nil
}

func (d *vulkanDevice) DestroyShaderModule(module vk.ShaderModule) {
	vk.DestroyShaderModule(d.device, module, nil)
}
