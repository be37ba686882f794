package vkpresent

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Buffer is a linear array of data used by the pipeline, such as vertices.
type Buffer struct {
	VKBuffer vk.Buffer
	Size     uint64

	vkd DeviceDispatch
}

// CreateBuffer creates an unbound buffer of the given size and usage, owned
// exclusively by one queue family.
func (c *Context) CreateBuffer(sizeInBytes uint64, usage vk.BufferUsageFlags) (*Buffer, error) {
	if sizeInBytes == 0 {
		return nil, errors.New("buffer size must be non-zero")
	}
	buffer, err := c.vkd.CreateBuffer(&vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(sizeInBytes),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	})
	if err != nil {
		return nil, err
	}
	return &Buffer{VKBuffer: buffer, Size: sizeInBytes, vkd: c.vkd}, nil
}

func (b *Buffer) MemoryRequirements() vk.MemoryRequirements {
	return b.vkd.GetBufferMemoryRequirements(b.VKBuffer)
}

// Bind attaches memory to the buffer at offset. A buffer can be bound once.
func (b *Buffer) Bind(memory *DeviceMemory, offset uint64) error {
	return b.vkd.BindBufferMemory(b.VKBuffer, memory.VKDeviceMemory, vk.DeviceSize(offset))
}

func (b *Buffer) Destroy() {
	if b.VKBuffer == vk.NullBuffer {
		return
	}
	b.vkd.DestroyBuffer(b.VKBuffer)
	b.VKBuffer = vk.NullBuffer
}
