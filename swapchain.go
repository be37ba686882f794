package vkpresent

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SwapImage is one presentable image together with the objects that guard
// its use within a frame. Image is owned by the swapchain; the rest is owned
// by the Swapchain that created it.
type SwapImage struct {
	Image          vk.Image
	View           vk.ImageView
	ImageAcquired  vk.Semaphore
	RenderFinished vk.Semaphore
	FrameFence     vk.Fence
}

// chooseSurfaceFormat returns preferred if the surface lists it, otherwise
// the first listed format.
func chooseSurfaceFormat(formats SurfaceFormats, preferred vk.SurfaceFormat) (vk.SurfaceFormat, error) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, errors.New("surface reports no formats")
	}
	m := formats.Filter(func(f vk.SurfaceFormat) bool {
		return f.Format == preferred.Format && f.ColorSpace == preferred.ColorSpace
	})
	if len(m) > 0 {
		return m[0], nil
	}
	return formats[0], nil
}

// choosePresentMode returns the first mode of preference the surface
// supports, falling back to FIFO.
func choosePresentMode(modes PresentModes, preference []vk.PresentMode) vk.PresentMode {
	for _, m := range preference {
		if modes.Contains(m) {
			return m
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's current extent unless the surface lets the
// swapchain decide, in which case desired is clamped into the allowed range.
// A zero dimension on either side is ErrInvalidSurfaceDimensions.
func chooseExtent(caps vk.SurfaceCapabilities, desired vk.Extent2D) (vk.Extent2D, error) {
	extent := caps.CurrentExtent
	if extent.Width == vk.MaxUint32 {
		if desired.Width == 0 || desired.Height == 0 {
			return desired, errors.Wrapf(ErrInvalidSurfaceDimensions, "requested extent %dx%d", desired.Width, desired.Height)
		}
		extent = vk.Extent2D{
			Width:  clamp(desired.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
			Height: clamp(desired.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
		}
	}
	if extent.Width == 0 || extent.Height == 0 {
		return extent, errors.Wrapf(ErrInvalidSurfaceDimensions, "extent %dx%d", extent.Width, extent.Height)
	}
	return extent, nil
}

// chooseImageCount asks for one image more than the minimum so a frame can be
// recorded while the driver holds the others. A MaxImageCount of 0 means no limit.
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func choosePreTransform(caps vk.SurfaceCapabilities) vk.SurfaceTransformFlagBits {
	if vk.SurfaceTransformFlagBits(caps.SupportedTransforms)&vk.SurfaceTransformIdentityBit != 0 {
		return vk.SurfaceTransformIdentityBit
	}
	return caps.CurrentTransform
}

func clamp(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// swapchainState is everything that is rebuilt when the swapchain is recreated.
type swapchainState struct {
	handle      vk.Swapchain
	format      vk.SurfaceFormat
	presentMode vk.PresentMode
	extent      vk.Extent2D
	images      []SwapImage
	current     uint32
	// spare is a semaphore not referenced by any SwapImage, handed to the next acquire.
	spare vk.Semaphore
}

// buildSwapchainState negotiates the surface parameters, creates a swapchain
// (retiring old if non-null) with its per-image objects and acquires the first
// image. Everything created is released if any step fails; old is left alone.
func buildSwapchainState(ctx *Context, desired vk.Extent2D, opts *SwapchainOptions, old vk.Swapchain) (_ *swapchainState, err error) {
	vkd := ctx.vkd
	surface := ctx.surface

	caps, err := ctx.pdev.SurfaceCapabilities(surface)
	if err != nil {
		return nil, errors.Wrap(err, "querying surface capabilities")
	}
	extent, err := chooseExtent(caps, desired)
	if err != nil {
		return nil, err
	}
	formats, err := ctx.pdev.SurfaceFormats(surface)
	if err != nil {
		return nil, errors.Wrap(err, "querying surface formats")
	}
	format, err := chooseSurfaceFormat(formats, opts.SurfaceFormat)
	if err != nil {
		return nil, err
	}
	modes, err := ctx.pdev.SurfacePresentModes(surface)
	if err != nil {
		return nil, errors.Wrap(err, "querying present modes")
	}

	st := &swapchainState{
		format:      format,
		presentMode: choosePresentMode(modes, opts.PresentModes),
		extent:      extent,
	}
	defer func() {
		if err != nil {
			st.destroy(vkd)
		}
	}()

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    chooseImageCount(caps),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit|vk.ImageUsageTransferDstBit) | opts.ImageUsage,
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     choosePreTransform(caps),
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      st.presentMode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}
	if alloc := ctx.QueueAllocation(); !alloc.Shared() {
		families := alloc.Families()
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = uint32(len(families))
		createInfo.PQueueFamilyIndices = families
	}

	st.handle, err = vkd.CreateSwapchain(&createInfo)
	if err != nil {
		return nil, errors.Wrap(err, "creating swapchain")
	}

	images, err := vkd.GetSwapchainImages(st.handle)
	if err != nil {
		return nil, errors.Wrap(err, "getting swapchain images")
	}
	st.images = make([]SwapImage, 0, len(images))
	for _, image := range images {
		si, err := newSwapImage(vkd, image, format.Format)
		if err != nil {
			return nil, err
		}
		st.images = append(st.images, si)
	}

	st.spare, err = vkd.CreateSemaphore()
	if err != nil {
		return nil, err
	}
	if _, err := st.acquireNext(vkd); err != nil {
		return nil, err
	}
	return st, nil
}

// newSwapImage creates the view, semaphores and signaled fence for image.
func newSwapImage(vkd DeviceDispatch, image vk.Image, format vk.Format) (si SwapImage, err error) {
	si.Image = image
	defer func() {
		if err != nil {
			si.destroy(vkd)
		}
	}()

	si.View, err = createColorView(vkd, image, format)
	if err != nil {
		return si, errors.Wrap(err, "creating swapchain image view")
	}
	sems, err := createSemaphores(vkd, 2)
	if err != nil {
		return si, err
	}
	si.ImageAcquired, si.RenderFinished = sems[0], sems[1]
	// Signaled so the first wait on every image returns immediately.
	si.FrameFence, err = vkd.CreateFence(true)
	if err != nil {
		return si, err
	}
	return si, nil
}

func (si *SwapImage) destroy(vkd DeviceDispatch) {
	if si.FrameFence != vk.NullFence {
		vkd.DestroyFence(si.FrameFence)
		si.FrameFence = vk.NullFence
	}
	destroySemaphores(vkd, si.ImageAcquired, si.RenderFinished)
	si.ImageAcquired, si.RenderFinished = vk.NullSemaphore, vk.NullSemaphore
	if si.View != vk.NullImageView {
		vkd.DestroyImageView(si.View)
		si.View = vk.NullImageView
	}
}

// acquireNext takes the next image using the spare semaphore, then swaps the
// spare with that image's acquisition semaphore so the one just signaled is
// the one waited on for the image. It reports whether the swapchain is suboptimal.
func (st *swapchainState) acquireNext(vkd DeviceDispatch) (suboptimal bool, err error) {
	index, res := vkd.AcquireNextImage(st.handle, vk.MaxUint64, st.spare, vk.NullFence)
	switch res {
	case vk.Success:
	case vk.Suboptimal:
		suboptimal = true
	default:
		return false, acquireError(res)
	}
	if int(index) >= len(st.images) {
		return false, errors.Errorf("driver returned image index %d of %d", index, len(st.images))
	}
	img := &st.images[index]
	st.spare, img.ImageAcquired = img.ImageAcquired, st.spare
	st.current = index
	return suboptimal, nil
}

// waitForFences waits on every frame fence, ignoring failures.
func (st *swapchainState) waitForFences(vkd DeviceDispatch) {
	for i := range st.images {
		drainFence(vkd, st.images[i].FrameFence)
	}
}

// destroy waits for each image's fence and releases its objects, then the
// spare semaphore and finally the swapchain handle.
func (st *swapchainState) destroy(vkd DeviceDispatch) {
	for i := range st.images {
		drainFence(vkd, st.images[i].FrameFence)
		st.images[i].destroy(vkd)
	}
	st.images = nil
	destroySemaphores(vkd, st.spare)
	st.spare = vk.NullSemaphore
	if st.handle != vk.NullSwapchain {
		vkd.DestroySwapchain(st.handle)
		st.handle = vk.NullSwapchain
	}
}
