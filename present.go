package vkpresent

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// PresentState tells the caller whether the swapchain still matches the surface.
type PresentState int

const (
	// Optimal means the swapchain matches the surface exactly.
	Optimal PresentState = iota
	// Suboptimal means presentation still works but the swapchain should be
	// recreated at the caller's convenience.
	Suboptimal
)

func (s PresentState) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Suboptimal:
		return "suboptimal"
	}
	return "unknown"
}

// Swapchain manages the presentable images of a Context's surface and the
// per-frame synchronization around them.
//
// After construction one image is always acquired: CurrentImage is the image
// to render into, and Present submits the caller's commands for it, queues it
// for display and acquires the next one.
//
// A Swapchain is not safe for concurrent use.
type Swapchain struct {
	ctx   *Context
	opts  SwapchainOptions
	state *swapchainState
}

// NewSwapchain creates a swapchain for ctx's surface with default options.
// extent is used when the surface lets the swapchain choose its size.
func NewSwapchain(ctx *Context, extent vk.Extent2D) (*Swapchain, error) {
	return NewSwapchainWithOptions(ctx, extent, nil)
}

func NewSwapchainWithOptions(ctx *Context, extent vk.Extent2D, opts *SwapchainOptions) (*Swapchain, error) {
	s := &Swapchain{ctx: ctx, opts: opts.withDefaults()}
	st, err := buildSwapchainState(ctx, extent, &s.opts, vk.NullSwapchain)
	if err != nil {
		return nil, err
	}
	s.state = st
	s.logState("created swapchain")
	return s, nil
}

// Recreate rebuilds the swapchain for a new surface size. The device is
// drained first and the new swapchain is fully built before anything of the
// old one is released, so on error the Swapchain keeps its current images.
func (s *Swapchain) Recreate(extent vk.Extent2D) error {
	vkd := s.ctx.vkd
	if err := s.ctx.WaitIdle(); err != nil {
		return errors.Wrap(err, "waiting for device idle")
	}

	st, err := buildSwapchainState(s.ctx, extent, &s.opts, s.state.handle)
	if err != nil {
		return err
	}
	s.state.destroy(vkd)
	s.state = st
	s.logState("recreated swapchain")
	return nil
}

// Present submits cmd for the current image, queues the image for display
// and acquires the next image.
//
// The submission waits for the image to be acquired and signals the image's
// render-finished semaphore and frame fence; presentation waits for that
// semaphore. Before submitting, Present blocks until the previous submission
// for the same image has completed.
//
// An out-of-date swapchain is reported as an error matching IsOutOfDate; the
// caller should Recreate. Suboptimal is not an error.
func (s *Swapchain) Present(cmd vk.CommandBuffer) (PresentState, error) {
	vkd := s.ctx.vkd
	st := s.state
	img := &st.images[st.current]

	if img.FrameFence == vk.NullFence {
		fence, err := vkd.CreateFence(false)
		if err != nil {
			return Optimal, errors.Wrap(err, "creating frame fence")
		}
		img.FrameFence = fence
	} else if err := waitAndResetFence(vkd, img.FrameFence); err != nil {
		return Optimal, err
	}

	submit := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{img.ImageAcquired},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{img.RenderFinished},
	}
	if err := vkd.QueueSubmit(s.ctx.graphicsQueue.Handle, []vk.SubmitInfo{submit}, img.FrameFence); err != nil {
		if ferr := replaceFence(vkd, &img.FrameFence); ferr != nil {
			s.ctx.log.Warn("frame fence lost after failed submit", "error", ferr)
		}
		return Optimal, errors.Wrap(err, "submitting frame")
	}

	state := Optimal
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{img.RenderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{st.handle},
		PImageIndices:      []uint32{st.current},
	}
	switch res := vkd.QueuePresent(s.ctx.presentQueue.Handle, &presentInfo); res {
	case vk.Success:
	case vk.Suboptimal:
		state = Suboptimal
	default:
		return state, NewError("vkQueuePresentKHR", res)
	}

	suboptimal, err := st.acquireNext(vkd)
	if err != nil {
		return state, err
	}
	if suboptimal {
		state = Suboptimal
	}
	return state, nil
}

// CurrentImage is the acquired image the next Present will display.
func (s *Swapchain) CurrentImage() vk.Image {
	return s.state.images[s.state.current].Image
}

// CurrentImageIndex is the index into Images of the acquired image.
func (s *Swapchain) CurrentImageIndex() uint32 {
	return s.state.current
}

// CurrentSwapImage returns a copy of the acquired image's objects. The
// handles stay valid until the next Present or Recreate; its ImageAcquired
// semaphore changes with every acquire, so do not keep it across frames.
func (s *Swapchain) CurrentSwapImage() SwapImage {
	return s.state.images[s.state.current]
}

// Images returns a copy of the per-image objects in swapchain order. Image
// and View handles may be kept until the next Recreate or Destroy, for example
// in framebuffers; the semaphores are swapped between frames and must be read
// again from CurrentSwapImage.
func (s *Swapchain) Images() []SwapImage {
	ret := make([]SwapImage, len(s.state.images))
	copy(ret, s.state.images)
	return ret
}

// Extent is the size of the swapchain images.
func (s *Swapchain) Extent() vk.Extent2D {
	return s.state.extent
}

func (s *Swapchain) SurfaceFormat() vk.SurfaceFormat {
	return s.state.format
}

func (s *Swapchain) PresentMode() vk.PresentMode {
	return s.state.presentMode
}

func (s *Swapchain) Handle() vk.Swapchain {
	return s.state.handle
}

// WaitForAllFences blocks until every submitted frame has completed. Errors
// are ignored; use it before destroying resources the frames reference.
func (s *Swapchain) WaitForAllFences() {
	s.state.waitForFences(s.ctx.vkd)
}

// Destroy releases the swapchain and everything it created. The Context must
// still be alive.
func (s *Swapchain) Destroy() {
	if s.state == nil {
		return
	}
	s.state.destroy(s.ctx.vkd)
	s.state = nil
}

func (s *Swapchain) logState(msg string) {
	st := s.state
	s.ctx.log.Info(msg,
		"width", st.extent.Width,
		"height", st.extent.Height,
		"images", len(st.images),
		"format", st.format.Format,
		"presentMode", st.presentMode)
}
