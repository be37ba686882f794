package vkpresent

import (
	"log/slog"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Queue is a device queue and the family it was taken from.
type Queue struct {
	Handle vk.Queue
	Family uint32
}

// Context owns the instance, the presentation surface, the selected physical
// device and the logical device with its graphics and present queues.
//
// A Context is created once with Initialize and destroyed once with
// Deinitialize, after every Swapchain built on it has been destroyed.
type Context struct {
	vkb Loader
	vki InstanceDispatch
	vkd DeviceDispatch
	log *slog.Logger

	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	surface       vk.Surface

	pdev     *PhysicalDevice
	memProps vk.PhysicalDeviceMemoryProperties
	device   vk.Device

	graphicsQueue Queue
	presentQueue  Queue
}

// Initialize sets up Vulkan for presenting to win: it creates the instance
// and surface, selects the first suitable physical device and creates the
// logical device with a graphics and a present queue.
//
// On failure every object created so far is released before returning.
func Initialize(appName string, win Window, opts *Options) (ctx *Context, err error) {
	o := opts.withDefaults()

	c := &Context{vkb: o.Loader, log: o.Logger}
	defer func() {
		if err != nil {
			c.release()
		}
	}()

	if err := c.vkb.Load(); err != nil {
		return nil, err
	}

	required, err := win.RequiredInstanceExtensions()
	if err != nil {
		return nil, errors.Wrap(ErrExtensionsUnavailable, err.Error())
	}
	if len(required) == 0 {
		return nil, ErrExtensionsUnavailable
	}
	required = appendUnique(required, o.InstanceExtensions...)

	setup, err := probeInstance(c.vkb, required, &o, c.log)
	if err != nil {
		return nil, err
	}

	c.instance, err = createInstance(c.vkb, appName, setup, &o)
	if err != nil {
		return nil, err
	}
	c.vki, err = c.vkb.LoadInstance(c.instance)
	if err != nil {
		return nil, err
	}

	if setup.debug {
		c.debugCallback, err = c.vki.CreateDebugReportCallback(debugReportCreateInfo(c.log))
		if err != nil {
			return nil, errors.Wrap(err, "installing debug report callback")
		}
	}

	c.surface, err = win.CreateSurface(c.instance)
	if err != nil {
		return nil, errors.Wrap(err, "creating surface")
	}

	pdev, alloc, err := c.selectPhysicalDevice(append([]string{SwapchainExtension}, o.DeviceExtensions...))
	if err != nil {
		return nil, err
	}
	c.pdev = pdev
	c.memProps = pdev.MemoryProperties()

	if err := c.createDevice(alloc, o.DeviceExtensions, setup.layers); err != nil {
		return nil, err
	}

	c.log.Info("selected physical device",
		"device", pdev.DeviceName,
		"graphicsFamily", alloc.GraphicsFamily,
		"presentFamily", alloc.PresentFamily)
	return c, nil
}

// selectPhysicalDevice returns the first enumerated device that is suitable.
func (c *Context) selectPhysicalDevice(requiredExtensions []string) (*PhysicalDevice, QueueAllocation, error) {
	handles, err := c.vki.EnumeratePhysicalDevices()
	if err != nil {
		return nil, QueueAllocation{}, errors.Wrap(err, "enumerating physical devices")
	}

	for _, handle := range handles {
		pdev := newPhysicalDevice(c.vki, handle)
		alloc, reason, err := pdev.checkSuitable(c.surface, requiredExtensions)
		if err != nil {
			return nil, QueueAllocation{}, errors.Wrapf(err, "checking device %q", pdev.DeviceName)
		}
		if reason != "" {
			c.log.Debug("rejected physical device", "device", pdev.DeviceName, "reason", reason)
			continue
		}
		return pdev, alloc, nil
	}
	return nil, QueueAllocation{}, ErrNoSuitableDevice
}

func (c *Context) createDevice(alloc QueueAllocation, extraExtensions []string, layers []string) error {
	families := alloc.Families()
	queueInfos := make([]vk.DeviceQueueCreateInfo, len(families))
	for i, family := range families {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}

	extensions := appendUnique([]string{SwapchainExtension}, extraExtensions...)
	supported, err := c.pdev.SupportedExtensions()
	if err != nil {
		return errors.Wrap(err, "enumerating device extensions")
	}
	// Portability implementations must have the subset extension enabled.
	if containsString(supported, portabilitySubsetExtension) {
		extensions = appendUnique(extensions, portabilitySubsetExtension)
	}
	extensions = safeStrings(extensions)
	layers = safeStrings(layers)

	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	c.device, err = c.vki.CreateDevice(c.pdev.VKPhysicalDevice, &createInfo)
	if err != nil {
		return errors.Wrap(err, "creating logical device")
	}
	c.vkd, err = c.vki.LoadDevice(c.device)
	if err != nil {
		return err
	}

	c.graphicsQueue = Queue{
		Handle: c.vkd.GetDeviceQueue(alloc.GraphicsFamily, 0),
		Family: alloc.GraphicsFamily,
	}
	c.presentQueue = Queue{
		Handle: c.vkd.GetDeviceQueue(alloc.PresentFamily, 0),
		Family: alloc.PresentFamily,
	}
	return nil
}

// release destroys whatever has been created, in reverse order of creation.
func (c *Context) release() {
	if c.vkd != nil {
		c.vkd.DestroyDevice()
		c.vkd = nil
	}
	c.device = nil
	if c.vki != nil {
		if c.debugCallback != vk.NullDebugReportCallback {
			c.vki.DestroyDebugReportCallback(c.debugCallback)
			c.debugCallback = vk.NullDebugReportCallback
		}
		if c.surface != vk.NullSurface {
			c.vki.DestroySurface(c.surface)
			c.surface = vk.NullSurface
		}
		c.vki.DestroyInstance()
		c.vki = nil
	}
	c.instance = nil
}

// Deinitialize destroys the device, the surface and the instance, in that
// order. It must be called exactly once, after every Swapchain built on this
// Context has been destroyed.
func (c *Context) Deinitialize() {
	c.release()
}

// WaitIdle blocks until the device has finished all submitted work.
func (c *Context) WaitIdle() error {
	return c.vkd.DeviceWaitIdle()
}

// FindMemoryTypeIndex returns the first memory type whose bit is set in
// typeBits and whose property flags include flags.
func (c *Context) FindMemoryTypeIndex(typeBits uint32, flags vk.MemoryPropertyFlags) (uint32, error) {
	return FindMemoryType(c.memProps, typeBits, flags)
}

// Allocate allocates req.Size bytes of device memory from the first memory
// type allowed by req that has flags.
func (c *Context) Allocate(req vk.MemoryRequirements, flags vk.MemoryPropertyFlags) (*DeviceMemory, error) {
	index, err := c.FindMemoryTypeIndex(req.MemoryTypeBits, flags)
	if err != nil {
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: index,
	}
	mem, err := c.vkd.AllocateMemory(&allocateInfo)
	if err != nil {
		return nil, err
	}
	return &DeviceMemory{vkd: c.vkd, VKDeviceMemory: mem, Size: uint64(req.Size)}, nil
}

// Native handles and the objects Initialize created. All are owned by the
// Context and are invalid after Deinitialize.

func (c *Context) Instance() vk.Instance { return c.instance }
func (c *Context) Surface() vk.Surface { return c.surface }
func (c *Context) PhysicalDevice() *PhysicalDevice { return c.pdev }
func (c *Context) DeviceName() string { return c.pdev.DeviceName }
func (c *Context) Device() vk.Device { return c.device }
func (c *Context) GraphicsQueue() Queue { return c.graphicsQueue }
func (c *Context) PresentQueue() Queue { return c.presentQueue }
func (c *Context) InstanceDispatch() InstanceDispatch { return c.vki }

// Dispatch is the device-level entry point table, for recording and
// submitting the application's own commands.
func (c *Context) Dispatch() DeviceDispatch { return c.vkd }
func (c *Context) Logger() *slog.Logger { return c.log }
func (c *Context) MemoryProperties() vk.PhysicalDeviceMemoryProperties { return c.memProps }

// QueueAllocation returns the families of the graphics and present queues.
func (c *Context) QueueAllocation() QueueAllocation {
	return QueueAllocation{GraphicsFamily: c.graphicsQueue.Family, PresentFamily: c.presentQueue.Family}
}
