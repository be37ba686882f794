package vkpresent

import (
	vk "github.com/vulkan-go/vulkan"
)

// CommandBuffer records work for a device queue. Only the lifecycle is
// wrapped here; commands are recorded with the native vk.Cmd* functions on VK().
type CommandBuffer struct {
	VKCommandBuffer vk.CommandBuffer

	vkd DeviceDispatch
}

// Reset this command buffer
func (c *CommandBuffer) Reset() error {
	return c.vkd.ResetCommandBuffer(c.VKCommandBuffer, 0)
}

// ResetAndRelease will reset this command buffer and release the associated resources
func (c *CommandBuffer) ResetAndRelease() error {
	return c.vkd.ResetCommandBuffer(c.VKCommandBuffer, vk.CommandBufferResetFlags(vk.CommandBufferResetReleaseResourcesBit))
}

// VK is a utility function for accessing the native vulkan command buffer
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

// Begin capturing work for this command buffer
func (c *CommandBuffer) Begin() error {
	return c.begin(0)
}

// BeginOneTime begins capturing work that will be submitted only once
func (c *CommandBuffer) BeginOneTime() error {
	return c.begin(vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit))
}

func (c *CommandBuffer) begin(flags vk.CommandBufferUsageFlags) error {
	return c.vkd.BeginCommandBuffer(c.VKCommandBuffer, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: flags,
	})
}

// End finishes recording.
func (c *CommandBuffer) End() error {
	return c.vkd.EndCommandBuffer(c.VKCommandBuffer)
}
