package vkpresent

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

// fakeGPU describes one physical device exposed by fakeDriver.
type fakeGPU struct {
	name            string
	handle          vk.PhysicalDevice
	extensions      []string
	families        []vk.QueueFamilyProperties
	presentFamilies map[uint32]bool
	formats         []vk.SurfaceFormat
	modes           []vk.PresentMode
	caps            vk.SurfaceCapabilities
	memProps        vk.PhysicalDeviceMemoryProperties
}

type fakeSubmit struct {
	queue   vk.Queue
	waits   []vk.Semaphore
	stages  []vk.PipelineStageFlags
	cmds    []vk.CommandBuffer
	signals []vk.Semaphore
	fence   vk.Fence
}

type fakePresent struct {
	queue     vk.Queue
	waits     []vk.Semaphore
	swapchain vk.Swapchain
	index     uint32
}

type fakeInjection struct {
	countdown int
	res       vk.Result
}

// fakeDriver implements all three dispatch tiers in memory. Every object gets
// a distinct handle from ptr.
type fakeDriver struct {
	instanceExtensions []string
	layers             []string
	gpus               []*fakeGPU

	// completeSubmits signals a submission's fence as soon as it is queued.
	completeSubmits bool

	acquireResults []vk.Result
	acquireIndices []uint32
	presentResults []vk.Result
	failures       map[string]*fakeInjection

	// recorded state
	calls          []string
	problems       []string
	live           map[any]string
	fences         map[vk.Fence]bool
	semaphores     map[vk.Semaphore]bool
	images         map[vk.Swapchain][]vk.Image
	nextImage      map[vk.Swapchain]uint32
	memory         map[vk.DeviceMemory][]byte
	queues         map[uint32]vk.Queue
	instanceInfo   *vk.InstanceCreateInfo
	deviceInfo     *vk.DeviceCreateInfo
	deviceGPU      *fakeGPU
	swapchainInfos []vk.SwapchainCreateInfo
	submits        []fakeSubmit
	presents       []fakePresent
	acquires       []vk.Semaphore
	blockedWaits   int
	allocations    []vk.MemoryAllocateInfo
	shaderCode     [][]uint32
	bufferInfos    []vk.BufferCreateInfo
	bufferSizes    map[vk.Buffer]vk.DeviceSize
	bindings       map[vk.Buffer]vk.DeviceMemory
	began          map[vk.CommandBuffer]vk.CommandBufferUsageFlags
}

func newFakeGPU(name string) *fakeGPU {
	g := &fakeGPU{
		name:       name,
		extensions: []string{SwapchainExtension},
		families: []vk.QueueFamilyProperties{{
			QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueComputeBit | vk.QueueTransferBit),
			QueueCount: 1,
		}},
		presentFamilies: map[uint32]bool{0: true},
		formats: []vk.SurfaceFormat{
			{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		modes: []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox},
		caps: vk.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           vk.Extent2D{Width: 800, Height: 600},
			MinImageExtent:          vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          vk.Extent2D{Width: 4096, Height: 4096},
			MaxImageArrayLayers:     1,
			SupportedTransforms:     vk.SurfaceTransformFlags(vk.SurfaceTransformIdentityBit),
			CurrentTransform:        vk.SurfaceTransformIdentityBit,
			SupportedCompositeAlpha: vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit),
			SupportedUsageFlags:     vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit | vk.ImageUsageTransferDstBit),
		},
	}
	g.memProps.MemoryTypeCount = 2
	g.memProps.MemoryTypes[0] = vk.MemoryType{PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit)}
	g.memProps.MemoryTypes[1] = vk.MemoryType{PropertyFlags: vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)}
	g.memProps.MemoryHeapCount = 1
	return g
}

func newFakeDriver(gpus ...*fakeGPU) *fakeDriver {
	f := &fakeDriver{
		instanceExtensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface", debugReportExtension},
		layers:             []string{validationLayer},
		completeSubmits:    true,
		failures:           map[string]*fakeInjection{},
		live:               map[any]string{},
		fences:             map[vk.Fence]bool{},
		semaphores:         map[vk.Semaphore]bool{},
		images:             map[vk.Swapchain][]vk.Image{},
		nextImage:          map[vk.Swapchain]uint32{},
		memory:             map[vk.DeviceMemory][]byte{},
		queues:             map[uint32]vk.Queue{},
		began:              map[vk.CommandBuffer]vk.CommandBufferUsageFlags{},
		bufferSizes:        map[vk.Buffer]vk.DeviceSize{},
		bindings:           map[vk.Buffer]vk.DeviceMemory{},
	}
	if len(gpus) == 0 {
		gpus = []*fakeGPU{newFakeGPU("Fake GPU")}
	}
	for _, g := range gpus {
		g.handle = vk.PhysicalDevice(f.ptr())
	}
	f.gpus = gpus
	return f
}

// handleSpace backs fake handles. vulkan-go handles point to C types that
// must never address the Go heap, and reflect (so testify) panics on such a
// value. A package-level array lives in the data segment instead.
var (
	handleSpace [1 << 16]uint64
	nextHandle  int
)

// id is the address behind a handle. testify compares pointers by the values
// they point to, which for opaque C handles are all alike, so assertions about
// handle identity compare ids.
func id(h any) uintptr {
	return reflect.ValueOf(h).Pointer()
}

func ids[H any](hs []H) []uintptr {
	ret := make([]uintptr, len(hs))
	for i, h := range hs {
		ret[i] = id(h)
	}
	return ret
}

// ptr returns a fresh non-nil handle address. Addresses are reused only after
// the whole space has been handed out.
func (f *fakeDriver) ptr() unsafe.Pointer {
	nextHandle = (nextHandle + 1) % len(handleSpace)
	return unsafe.Pointer(&handleSpace[nextHandle])
}

// failAt makes the nth next call of op return res.
func (f *fakeDriver) failAt(op string, nth int, res vk.Result) {
	f.failures[op] = &fakeInjection{countdown: nth, res: res}
}

func (f *fakeDriver) check(op string) error {
	inj, ok := f.failures[op]
	if !ok {
		return nil
	}
	inj.countdown--
	if inj.countdown > 0 {
		return nil
	}
	delete(f.failures, op)
	return NewError(op, inj.res)
}

func (f *fakeDriver) track(h any, kind string) {
	f.live[h] = kind
}

func (f *fakeDriver) release(h any, kind string) {
	if got, ok := f.live[h]; !ok || got != kind {
		f.problems = append(f.problems, fmt.Sprintf("destroying unknown %s %v", kind, h))
		return
	}
	delete(f.live, h)
}

func (f *fakeDriver) liveCount(kind string) int {
	n := 0
	for _, k := range f.live {
		if k == kind {
			n++
		}
	}
	return n
}

func (f *fakeDriver) callIndex(name string) int {
	for i, c := range f.calls {
		if c == name {
			return i
		}
	}
	return -1
}

func (f *fakeDriver) lastCallIndex(name string) int {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i] == name {
			return i
		}
	}
	return -1
}

func (f *fakeDriver) gpu(h vk.PhysicalDevice) *fakeGPU {
	for _, g := range f.gpus {
		if g.handle == h {
			return g
		}
	}
	panic("unknown physical device")
}

// Loader

func (f *fakeDriver) Load() error {
	return f.check("load")
}

func (f *fakeDriver) InstanceExtensions() ([]string, error) {
	if err := f.check("vkEnumerateInstanceExtensionProperties"); err != nil {
		return nil, err
	}
	return f.instanceExtensions, nil
}

func (f *fakeDriver) InstanceLayers() ([]string, error) {
	if err := f.check("vkEnumerateInstanceLayerProperties"); err != nil {
		return nil, err
	}
	return f.layers, nil
}

func (f *fakeDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	if err := f.check("vkCreateInstance"); err != nil {
		return nil, err
	}
	cp := *info
	f.instanceInfo = &cp
	h := vk.Instance(f.ptr())
	f.track(h, "instance")
	f.calls = append(f.calls, "CreateInstance")
	return h, nil
}

func (f *fakeDriver) LoadInstance(vk.Instance) (InstanceDispatch, error) {
	return f, nil
}

// InstanceDispatch

func (f *fakeDriver) DestroyInstance() {
	for h, kind := range f.live {
		if kind == "instance" {
			f.release(h, kind)
		}
	}
	f.calls = append(f.calls, "DestroyInstance")
}

func (f *fakeDriver) createSurface() (vk.Surface, error) {
	if err := f.check("createSurface"); err != nil {
		return vk.NullSurface, err
	}
	h := vk.Surface(f.ptr())
	f.track(h, "surface")
	f.calls = append(f.calls, "CreateSurface")
	return h, nil
}

func (f *fakeDriver) DestroySurface(s vk.Surface) {
	f.release(s, "surface")
	f.calls = append(f.calls, "DestroySurface")
}

func (f *fakeDriver) CreateDebugReportCallback(*vk.DebugReportCallbackCreateInfo) (vk.DebugReportCallback, error) {
	if err := f.check("vkCreateDebugReportCallbackEXT"); err != nil {
		return vk.NullDebugReportCallback, err
	}
	h := vk.DebugReportCallback(f.ptr())
	f.track(h, "debugCallback")
	f.calls = append(f.calls, "CreateDebugReportCallback")
	return h, nil
}

func (f *fakeDriver) DestroyDebugReportCallback(cb vk.DebugReportCallback) {
	f.release(cb, "debugCallback")
	f.calls = append(f.calls, "DestroyDebugReportCallback")
}

func (f *fakeDriver) EnumeratePhysicalDevices() ([]vk.PhysicalDevice, error) {
	if err := f.check("vkEnumeratePhysicalDevices"); err != nil {
		return nil, err
	}
	ret := make([]vk.PhysicalDevice, len(f.gpus))
	for i, g := range f.gpus {
		ret[i] = g.handle
	}
	return ret, nil
}

func (f *fakeDriver) GetPhysicalDeviceProperties(pdev vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	copy(props.DeviceName[:], f.gpu(pdev).name)
	return props
}

func (f *fakeDriver) GetPhysicalDeviceMemoryProperties(pdev vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	return f.gpu(pdev).memProps
}

func (f *fakeDriver) GetPhysicalDeviceQueueFamilyProperties(pdev vk.PhysicalDevice) []vk.QueueFamilyProperties {
	return f.gpu(pdev).families
}

func (f *fakeDriver) EnumerateDeviceExtensions(pdev vk.PhysicalDevice) ([]string, error) {
	if err := f.check("vkEnumerateDeviceExtensionProperties"); err != nil {
		return nil, err
	}
	return f.gpu(pdev).extensions, nil
}

func (f *fakeDriver) GetPhysicalDeviceSurfaceSupport(pdev vk.PhysicalDevice, family uint32, _ vk.Surface) (bool, error) {
	if err := f.check("vkGetPhysicalDeviceSurfaceSupportKHR"); err != nil {
		return false, err
	}
	return f.gpu(pdev).presentFamilies[family], nil
}

func (f *fakeDriver) GetPhysicalDeviceSurfaceCapabilities(pdev vk.PhysicalDevice, _ vk.Surface) (vk.SurfaceCapabilities, error) {
	if err := f.check("vkGetPhysicalDeviceSurfaceCapabilitiesKHR"); err != nil {
		return vk.SurfaceCapabilities{}, err
	}
	return f.gpu(pdev).caps, nil
}

func (f *fakeDriver) GetPhysicalDeviceSurfaceFormats(pdev vk.PhysicalDevice, _ vk.Surface) ([]vk.SurfaceFormat, error) {
	if err := f.check("vkGetPhysicalDeviceSurfaceFormatsKHR"); err != nil {
		return nil, err
	}
	return f.gpu(pdev).formats, nil
}

func (f *fakeDriver) GetPhysicalDeviceSurfacePresentModes(pdev vk.PhysicalDevice, _ vk.Surface) ([]vk.PresentMode, error) {
	if err := f.check("vkGetPhysicalDeviceSurfacePresentModesKHR"); err != nil {
		return nil, err
	}
	return f.gpu(pdev).modes, nil
}

func (f *fakeDriver) CreateDevice(pdev vk.PhysicalDevice, info *vk.DeviceCreateInfo) (vk.Device, error) {
	if err := f.check("vkCreateDevice"); err != nil {
		return nil, err
	}
	cp := *info
	f.deviceInfo = &cp
	f.deviceGPU = f.gpu(pdev)
	h := vk.Device(f.ptr())
	f.track(h, "device")
	f.calls = append(f.calls, "CreateDevice")
	return h, nil
}

func (f *fakeDriver) LoadDevice(vk.Device) (DeviceDispatch, error) {
	return f, nil
}

// DeviceDispatch

func (f *fakeDriver) DestroyDevice() {
	for h, kind := range f.live {
		if kind == "device" {
			f.release(h, kind)
		}
	}
	f.calls = append(f.calls, "DestroyDevice")
}

func (f *fakeDriver) DeviceWaitIdle() error {
	f.calls = append(f.calls, "DeviceWaitIdle")
	return f.check("vkDeviceWaitIdle")
}

func (f *fakeDriver) GetDeviceQueue(family, _ uint32) vk.Queue {
	q, ok := f.queues[family]
	if !ok {
		q = vk.Queue(f.ptr())
		f.queues[family] = q
	}
	return q
}

func (f *fakeDriver) AllocateMemory(info *vk.MemoryAllocateInfo) (vk.DeviceMemory, error) {
	if err := f.check("vkAllocateMemory"); err != nil {
		return vk.NullDeviceMemory, err
	}
	f.allocations = append(f.allocations, *info)
	h := vk.DeviceMemory(f.ptr())
	f.memory[h] = make([]byte, info.AllocationSize)
	f.track(h, "memory")
	return h, nil
}

func (f *fakeDriver) FreeMemory(mem vk.DeviceMemory) {
	f.release(mem, "memory")
	delete(f.memory, mem)
}

func (f *fakeDriver) MapMemory(mem vk.DeviceMemory, offset, size vk.DeviceSize) (unsafe.Pointer, error) {
	if err := f.check("vkMapMemory"); err != nil {
		return nil, err
	}
	buf := f.memory[mem]
	if uint64(offset+size) > uint64(len(buf)) {
		f.problems = append(f.problems, "mapping past the end of an allocation")
		return nil, NewError("vkMapMemory", vk.ErrorMemoryMapFailed)
	}
	return unsafe.Pointer(&buf[offset]), nil
}

func (f *fakeDriver) UnmapMemory(vk.DeviceMemory) {
	f.calls = append(f.calls, "UnmapMemory")
}

func (f *fakeDriver) CreateBuffer(info *vk.BufferCreateInfo) (vk.Buffer, error) {
	if err := f.check("vkCreateBuffer"); err != nil {
		return vk.NullBuffer, err
	}
	f.bufferInfos = append(f.bufferInfos, *info)
	h := vk.Buffer(f.ptr())
	f.bufferSizes[h] = info.Size
	f.track(h, "buffer")
	return h, nil
}

func (f *fakeDriver) DestroyBuffer(b vk.Buffer) {
	f.release(b, "buffer")
	delete(f.bufferSizes, b)
	delete(f.bindings, b)
}

// GetBufferMemoryRequirements rounds sizes up to 256 bytes and allows every memory type.
func (f *fakeDriver) GetBufferMemoryRequirements(b vk.Buffer) vk.MemoryRequirements {
	size := (f.bufferSizes[b] + 255) &^ 255
	return vk.MemoryRequirements{Size: size, Alignment: 256, MemoryTypeBits: 0b11}
}

func (f *fakeDriver) BindBufferMemory(b vk.Buffer, mem vk.DeviceMemory, offset vk.DeviceSize) error {
	if err := f.check("vkBindBufferMemory"); err != nil {
		return err
	}
	if _, ok := f.bindings[b]; ok {
		f.problems = append(f.problems, "buffer bound twice")
	}
	if f.live[mem] != "memory" {
		f.problems = append(f.problems, "binding unknown memory")
	}
	f.bindings[b] = mem
	return nil
}

func (f *fakeDriver) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	if err := f.check("vkCreateSwapchainKHR"); err != nil {
		return vk.NullSwapchain, err
	}
	if info.OldSwapchain != vk.NullSwapchain && f.live[info.OldSwapchain] != "swapchain" {
		f.problems = append(f.problems, "old swapchain is not alive")
	}
	f.swapchainInfos = append(f.swapchainInfos, *info)
	h := vk.Swapchain(f.ptr())
	images := make([]vk.Image, info.MinImageCount)
	for i := range images {
		images[i] = vk.Image(f.ptr())
	}
	f.images[h] = images
	f.track(h, "swapchain")
	f.calls = append(f.calls, "CreateSwapchain")
	return h, nil
}

func (f *fakeDriver) DestroySwapchain(sc vk.Swapchain) {
	f.release(sc, "swapchain")
	delete(f.images, sc)
	f.calls = append(f.calls, "DestroySwapchain")
}

func (f *fakeDriver) GetSwapchainImages(sc vk.Swapchain) ([]vk.Image, error) {
	if err := f.check("vkGetSwapchainImagesKHR"); err != nil {
		return nil, err
	}
	return append([]vk.Image(nil), f.images[sc]...), nil
}

func (f *fakeDriver) AcquireNextImage(sc vk.Swapchain, timeout uint64, sem vk.Semaphore, fence vk.Fence) (uint32, vk.Result) {
	res := vk.Success
	if len(f.acquireResults) > 0 {
		res, f.acquireResults = f.acquireResults[0], f.acquireResults[1:]
	}
	if res != vk.Success && res != vk.Suboptimal {
		return 0, res
	}
	if timeout != vk.MaxUint64 {
		f.problems = append(f.problems, "acquire with a bounded timeout")
	}
	if fence != vk.NullFence {
		f.problems = append(f.problems, "acquire with a fence")
	}
	if f.live[sem] != "semaphore" {
		f.problems = append(f.problems, "acquire with unknown semaphore")
	}
	if f.semaphores[sem] {
		f.problems = append(f.problems, "acquire with a pending semaphore")
	}
	f.semaphores[sem] = true
	f.acquires = append(f.acquires, sem)

	var index uint32
	if len(f.acquireIndices) > 0 {
		index, f.acquireIndices = f.acquireIndices[0], f.acquireIndices[1:]
	} else {
		index = f.nextImage[sc]
		f.nextImage[sc] = (index + 1) % uint32(len(f.images[sc]))
	}
	return index, res
}

func (f *fakeDriver) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	for _, s := range info.PWaitSemaphores {
		if !f.semaphores[s] {
			f.problems = append(f.problems, "present waits on an unsignaled semaphore")
		}
		f.semaphores[s] = false
	}
	f.presents = append(f.presents, fakePresent{
		queue:     queue,
		waits:     append([]vk.Semaphore(nil), info.PWaitSemaphores...),
		swapchain: info.PSwapchains[0],
		index:     info.PImageIndices[0],
	})
	if len(f.presentResults) > 0 {
		var res vk.Result
		res, f.presentResults = f.presentResults[0], f.presentResults[1:]
		return res
	}
	return vk.Success
}

func (f *fakeDriver) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	if err := f.check("vkCreateImageView"); err != nil {
		return vk.NullImageView, err
	}
	h := vk.ImageView(f.ptr())
	f.track(h, "imageView")
	f.calls = append(f.calls, "CreateImageView")
	return h, nil
}

func (f *fakeDriver) DestroyImageView(v vk.ImageView) {
	f.release(v, "imageView")
	f.calls = append(f.calls, "DestroyImageView")
}

func (f *fakeDriver) CreateSemaphore() (vk.Semaphore, error) {
	if err := f.check("vkCreateSemaphore"); err != nil {
		return vk.NullSemaphore, err
	}
	h := vk.Semaphore(f.ptr())
	f.track(h, "semaphore")
	f.semaphores[h] = false
	return h, nil
}

func (f *fakeDriver) DestroySemaphore(s vk.Semaphore) {
	f.release(s, "semaphore")
	delete(f.semaphores, s)
	f.calls = append(f.calls, "DestroySemaphore")
}

func (f *fakeDriver) CreateFence(signaled bool) (vk.Fence, error) {
	if err := f.check("vkCreateFence"); err != nil {
		return vk.NullFence, err
	}
	h := vk.Fence(f.ptr())
	f.track(h, "fence")
	f.fences[h] = signaled
	return h, nil
}

func (f *fakeDriver) DestroyFence(fence vk.Fence) {
	f.release(fence, "fence")
	delete(f.fences, fence)
	f.calls = append(f.calls, "DestroyFence")
}

func (f *fakeDriver) WaitForFences(fences []vk.Fence, _ bool, timeout uint64) error {
	f.calls = append(f.calls, "WaitForFences")
	if err := f.check("vkWaitForFences"); err != nil {
		return err
	}
	for _, fence := range fences {
		if !f.fences[fence] {
			// A real device would block here until the work completes.
			f.blockedWaits++
			f.fences[fence] = true
		}
	}
	return nil
}

func (f *fakeDriver) ResetFences(fences []vk.Fence) error {
	if err := f.check("vkResetFences"); err != nil {
		return err
	}
	for _, fence := range fences {
		f.fences[fence] = false
	}
	return nil
}

func (f *fakeDriver) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) error {
	if err := f.check("vkQueueSubmit"); err != nil {
		return err
	}
	if f.fences[fence] {
		f.problems = append(f.problems, "submit with a signaled fence")
	}
	for _, s := range submits {
		for _, w := range s.PWaitSemaphores {
			if !f.semaphores[w] {
				f.problems = append(f.problems, "submit waits on an unsignaled semaphore")
			}
			f.semaphores[w] = false
		}
		for _, sig := range s.PSignalSemaphores {
			f.semaphores[sig] = true
		}
		f.submits = append(f.submits, fakeSubmit{
			queue:   queue,
			waits:   append([]vk.Semaphore(nil), s.PWaitSemaphores...),
			stages:  append([]vk.PipelineStageFlags(nil), s.PWaitDstStageMask...),
			cmds:    append([]vk.CommandBuffer(nil), s.PCommandBuffers...),
			signals: append([]vk.Semaphore(nil), s.PSignalSemaphores...),
			fence:   fence,
		})
	}
	if f.completeSubmits {
		f.fences[fence] = true
	}
	return nil
}

func (f *fakeDriver) CreateCommandPool(*vk.CommandPoolCreateInfo) (vk.CommandPool, error) {
	if err := f.check("vkCreateCommandPool"); err != nil {
		return vk.CommandPool(nil), err
	}
	h := vk.CommandPool(f.ptr())
	f.track(h, "commandPool")
	return h, nil
}

func (f *fakeDriver) DestroyCommandPool(pool vk.CommandPool) {
	f.release(pool, "commandPool")
}

func (f *fakeDriver) AllocateCommandBuffers(info *vk.CommandBufferAllocateInfo) ([]vk.CommandBuffer, error) {
	if err := f.check("vkAllocateCommandBuffers"); err != nil {
		return nil, err
	}
	ret := make([]vk.CommandBuffer, info.CommandBufferCount)
	for i := range ret {
		ret[i] = vk.CommandBuffer(f.ptr())
		f.track(ret[i], "commandBuffer")
	}
	return ret, nil
}

func (f *fakeDriver) FreeCommandBuffers(_ vk.CommandPool, buffers []vk.CommandBuffer) {
	for _, b := range buffers {
		f.release(b, "commandBuffer")
	}
}

func (f *fakeDriver) ResetCommandBuffer(buf vk.CommandBuffer, _ vk.CommandBufferResetFlags) error {
	delete(f.began, buf)
	return f.check("vkResetCommandBuffer")
}

func (f *fakeDriver) BeginCommandBuffer(buf vk.CommandBuffer, info *vk.CommandBufferBeginInfo) error {
	if err := f.check("vkBeginCommandBuffer"); err != nil {
		return err
	}
	f.began[buf] = info.Flags
	return nil
}

func (f *fakeDriver) EndCommandBuffer(buf vk.CommandBuffer) error {
	if _, ok := f.began[buf]; !ok {
		f.problems = append(f.problems, "ending a command buffer that was not begun")
	}
	return f.check("vkEndCommandBuffer")
}

func (f *fakeDriver) CreateShaderModule(info *vk.ShaderModuleCreateInfo) (vk.ShaderModule, error) {
	if err := f.check("vkCreateShaderModule"); err != nil {
		return vk.ShaderModule(nil), err
	}
	if uint(len(info.PCode)*4) != info.CodeSize {
		f.problems = append(f.problems, "shader code size mismatch")
	}
	f.shaderCode = append(f.shaderCode, info.PCode)
	h := vk.ShaderModule(f.ptr())
	f.track(h, "shaderModule")
	return h, nil
}

func (f *fakeDriver) DestroyShaderModule(m vk.ShaderModule) {
	f.release(m, "shaderModule")
}

// fakeWindow is a Window whose surface comes from a fakeDriver.
type fakeWindow struct {
	driver        *fakeDriver
	extensions    []string
	extensionsErr error
	width, height int
}

func newFakeWindow(f *fakeDriver) *fakeWindow {
	return &fakeWindow{
		driver:     f,
		extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
		width:      800,
		height:     600,
	}
}

func (w *fakeWindow) RequiredInstanceExtensions() ([]string, error) {
	return w.extensions, w.extensionsErr
}

func (w *fakeWindow) CreateSurface(vk.Instance) (vk.Surface, error) {
	return w.driver.createSurface()
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

var errFakeWindow = errors.New("window system unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions(f *fakeDriver) *Options {
	return &Options{Loader: f, Logger: discardLogger()}
}

// newTestContext initializes a Context on f and registers its teardown.
func newTestContext(t *testing.T, f *fakeDriver) *Context {
	t.Helper()
	ctx, err := Initialize("test", newFakeWindow(f), testOptions(f))
	require.NoError(t, err)
	t.Cleanup(ctx.Deinitialize)
	return ctx
}

// newTestSwapchain builds a swapchain on a fresh context and registers its teardown.
func newTestSwapchain(t *testing.T, f *fakeDriver, opts *SwapchainOptions) (*Context, *Swapchain) {
	t.Helper()
	ctx := newTestContext(t, f)
	sc, err := NewSwapchainWithOptions(ctx, vk.Extent2D{Width: 800, Height: 600}, opts)
	require.NoError(t, err)
	t.Cleanup(sc.Destroy)
	return ctx, sc
}
