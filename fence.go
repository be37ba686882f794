package vkpresent

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// waitAndResetFence blocks until fence is signaled and returns it to the
// unsignaled state so it can guard the next submission.
func waitAndResetFence(vkd DeviceDispatch, fence vk.Fence) error {
	fences := []vk.Fence{fence}
	if err := vkd.WaitForFences(fences, true, vk.MaxUint64); err != nil {
		return errors.Wrap(err, "waiting for frame fence")
	}
	if err := vkd.ResetFences(fences); err != nil {
		return errors.Wrap(err, "resetting frame fence")
	}
	return nil
}

// drainFence waits for fence ignoring failures. Used on teardown paths where
// nothing can be done about a lost device anyway.
func drainFence(vkd DeviceDispatch, fence vk.Fence) {
	if fence == vk.NullFence {
		return
	}
	_ = vkd.WaitForFences([]vk.Fence{fence}, true, vk.MaxUint64)
}

// replaceFence destroys *fence and stores a new signaled fence in its place.
// A submit that fails after the fence was reset leaves nothing to ever signal
// it. If creation fails *fence is left null.
func replaceFence(vkd DeviceDispatch, fence *vk.Fence) error {
	next, err := vkd.CreateFence(true)
	if *fence != vk.NullFence {
		vkd.DestroyFence(*fence)
	}
	*fence = next
	if err != nil {
		*fence = vk.NullFence
		return errors.Wrap(err, "replacing frame fence")
	}
	return nil
}
