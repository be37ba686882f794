package vkpresent

import (
	vk "github.com/vulkan-go/vulkan"
)

// CommandPool allocates command buffers for queues of a single family.
type CommandPool struct {
	QueueFamily   uint32
	VKCommandPool vk.CommandPool

	vkd DeviceDispatch
}

// CreateCommandPool creates a pool whose buffers can be reset individually.
func (c *Context) CreateCommandPool(family uint32) (*CommandPool, error) {
	pool, err := c.vkd.CreateCommandPool(&vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	})
	if err != nil {
		return nil, err
	}
	return &CommandPool{QueueFamily: family, VKCommandPool: pool, vkd: c.vkd}, nil
}

func (c *CommandPool) Destroy() {
	c.vkd.DestroyCommandPool(c.VKCommandPool)
}

// AllocateBuffers allocates count primary command buffers.
func (c *CommandPool) AllocateBuffers(count int) ([]*CommandBuffer, error) {
	cmdBuffers, err := c.vkd.AllocateCommandBuffers(&vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.VKCommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	})
	if err != nil {
		return nil, err
	}

	ret := make([]*CommandBuffer, len(cmdBuffers))
	for i := range cmdBuffers {
		ret[i] = &CommandBuffer{VKCommandBuffer: cmdBuffers[i], vkd: c.vkd}
	}
	return ret, nil
}

func (c *CommandPool) AllocateBuffer() (*CommandBuffer, error) {
	ret, err := c.AllocateBuffers(1)
	if err != nil {
		return nil, err
	}
	return ret[0], nil
}

func (c *CommandPool) FreeBuffers(bs []*CommandBuffer) {
	if len(bs) == 0 {
		return
	}
	b := make([]vk.CommandBuffer, len(bs))
	for i := range bs {
		b[i] = bs[i].VKCommandBuffer
	}
	c.vkd.FreeCommandBuffers(c.VKCommandPool, b)
}
