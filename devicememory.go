package vkpresent

import (
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory is a single allocation made through Context.Allocate. It can
// live on the host or on the device depending on the flags it was allocated with.
type DeviceMemory struct {
	VKDeviceMemory vk.DeviceMemory
	Size           uint64
	Ptr            unsafe.Pointer

	vkd      DeviceDispatch
	mapCount int32
}

// IsMapped returns true if the memory is currently mapped
func (d *DeviceMemory) IsMapped() bool {
	return atomic.LoadInt32(&d.mapCount) > 0
}

// Free releases the allocation. The memory must not be in use by the device.
func (d *DeviceMemory) Free() {
	if d.VKDeviceMemory == vk.NullDeviceMemory {
		return
	}
	d.vkd.FreeMemory(d.VKDeviceMemory)
	d.VKDeviceMemory = vk.NullDeviceMemory
	d.Ptr = nil
}

// MapCopyUnmap will map this memory, copy data to it and unmap
func (d *DeviceMemory) MapCopyUnmap(data []byte) error {
	if uint64(len(data)) > d.Size {
		return errors.Errorf("copying %d bytes into %d byte allocation", len(data), d.Size)
	}
	if len(data) == 0 {
		return nil
	}
	pm, err := d.MapWithOffset(uint64(len(data)), 0)
	if err != nil {
		return err
	}
	copy(ToBytes(pm, len(data)), data)
	d.Unmap()
	return nil
}

// MapWithOffset maps size bytes starting at offset
func (d *DeviceMemory) MapWithOffset(size uint64, offset uint64) (unsafe.Pointer, error) {
	res, err := d.vkd.MapMemory(d.VKDeviceMemory, vk.DeviceSize(offset), vk.DeviceSize(size))
	if err != nil {
		return nil, err
	}
	atomic.AddInt32(&d.mapCount, 1)
	return res, nil
}

// Map will map the entirety of this memory
func (d *DeviceMemory) Map() (unsafe.Pointer, error) {
	res, err := d.MapWithOffset(d.Size, 0)
	if err != nil {
		return nil, err
	}
	d.Ptr = res
	return res, nil
}

// Unmap this memory
func (d *DeviceMemory) Unmap() {
	d.Ptr = nil
	d.vkd.UnmapMemory(d.VKDeviceMemory)
	atomic.AddInt32(&d.mapCount, -1)
}
