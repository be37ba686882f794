package vkpresent

import (
	vk "github.com/vulkan-go/vulkan"
)

// BufferObject is anything that can be copied into a buffer.
type BufferObject interface {
	Bytes() []byte
}

// VertexSource is vertex data together with the layout the pipeline reads it with.
type VertexSource interface {
	BufferObject
	BindingDescription() vk.VertexInputBindingDescription
	AttributeDescriptions() []vk.VertexInputAttributeDescription
}
