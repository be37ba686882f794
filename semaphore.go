package vkpresent

import (
	vk "github.com/vulkan-go/vulkan"
)

// createSemaphores creates n binary semaphores. Nothing is leaked on failure.
func createSemaphores(vkd DeviceDispatch, n int) ([]vk.Semaphore, error) {
	ret := make([]vk.Semaphore, 0, n)
	for i := 0; i < n; i++ {
		s, err := vkd.CreateSemaphore()
		if err != nil {
			destroySemaphores(vkd, ret...)
			return nil, err
		}
		ret = append(ret, s)
	}
	return ret, nil
}

func destroySemaphores(vkd DeviceDispatch, sems ...vk.Semaphore) {
	for _, s := range sems {
		if s != vk.NullSemaphore {
			vkd.DestroySemaphore(s)
		}
	}
}
