package vkpresent

import (
	vk "github.com/vulkan-go/vulkan"
)

// createColorView creates a 2D view over the single colour mip level and
// array layer of image.
func createColorView(vkd DeviceDispatch, image vk.Image, format vk.Format) (vk.ImageView, error) {
	return vkd.CreateImageView(&vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	})
}
