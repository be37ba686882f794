package vkpresent

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// HostBoundBuffer is a buffer backed by host visible, coherent memory of its
// own, so its contents can be rewritten from the CPU without staging.
type HostBoundBuffer struct {
	Buffer       *Buffer
	Memory       *DeviceMemory
	BufferObject BufferObject
}

// CreateHostVertexBuffer creates a vertex buffer sized for src and copies
// src into it.
func (c *Context) CreateHostVertexBuffer(src VertexSource) (*HostBoundBuffer, error) {
	h, err := c.CreateHostBoundBuffer(src, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return nil, err
	}
	if err := h.Update(); err != nil {
		h.Destroy()
		return nil, err
	}
	return h, nil
}

// CreateAndBindBufferAndMemory creates a buffer, allocates memory with mprops
// for it and binds the two. Nothing is leaked on failure.
func (c *Context) CreateAndBindBufferAndMemory(size uint64, usage vk.BufferUsageFlags, mprops vk.MemoryPropertyFlags) (*Buffer, *DeviceMemory, error) {
	buffer, err := c.CreateBuffer(size, usage)
	if err != nil {
		return nil, nil, err
	}
	memory, err := c.Allocate(buffer.MemoryRequirements(), mprops)
	if err != nil {
		buffer.Destroy()
		return nil, nil, errors.Wrap(err, "allocating buffer memory")
	}
	if err := buffer.Bind(memory, 0); err != nil {
		buffer.Destroy()
		memory.Free()
		return nil, nil, err
	}
	return buffer, memory, nil
}

// CreateHostBoundBuffer creates an empty buffer sized for bo with the given usage.
func (c *Context) CreateHostBoundBuffer(bo BufferObject, usage vk.BufferUsageFlags) (*HostBoundBuffer, error) {
	buffer, memory, err := c.CreateAndBindBufferAndMemory(uint64(len(bo.Bytes())), usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	return &HostBoundBuffer{Buffer: buffer, Memory: memory, BufferObject: bo}, nil
}

// Update copies the current contents of the buffer object into the buffer.
// The buffer must not be in use by the device.
func (h *HostBoundBuffer) Update() error {
	data := h.BufferObject.Bytes()
	if uint64(len(data)) > h.Buffer.Size {
		return errors.Errorf("buffer object grew to %d bytes, buffer holds %d", len(data), h.Buffer.Size)
	}
	return h.Memory.MapCopyUnmap(data)
}

func (h *HostBoundBuffer) Destroy() {
	if h.Buffer != nil {
		h.Buffer.Destroy()
	}
	if h.Memory != nil {
		h.Memory.Free()
	}
}
