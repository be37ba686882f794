package vkpresent

import (
	"log/slog"

	vk "github.com/vulkan-go/vulkan"
)

// Version is used to specify versions of components
type Version struct {
	Major int
	Minor int
	Patch int
}

// VKVersion returns a Vulkan compatible version representation
func (v Version) VKVersion() uint32 {
	return vk.MakeVersion(v.Major, v.Minor, v.Patch)
}

// Options configures Initialize. A nil *Options selects the defaults.
type Options struct {
	// EngineName is reported to the driver alongside the application name.
	EngineName string
	// Version is the application version.
	Version Version
	// APIVersion is the minimum Vulkan API version, 1.0.0 when unset.
	APIVersion Version

	// EnableValidation enables VK_LAYER_KHRONOS_validation and routes its
	// reports to Logger, when the layer is installed.
	EnableValidation bool

	// InstanceExtensions are required in addition to the window system's.
	InstanceExtensions []string
	// DeviceExtensions are required in addition to VK_KHR_swapchain.
	DeviceExtensions []string

	// Loader overrides the entry-point tier, NewVulkanLoader(nil) when unset.
	Loader Loader
	// Logger receives setup and presentation events, slog.Default() when unset.
	Logger *slog.Logger
}

func (o *Options) withDefaults() Options {
	var ret Options
	if o != nil {
		ret = *o
	}
	if ret.APIVersion.Major < 1 {
		ret.APIVersion = Version{Major: 1}
	}
	if ret.Loader == nil {
		ret.Loader = NewVulkanLoader(nil)
	}
	if ret.Logger == nil {
		ret.Logger = slog.Default()
	}
	return ret
}

// SwapchainOptions configures NewSwapchainWithOptions. A nil *SwapchainOptions
// selects the defaults.
type SwapchainOptions struct {
	// SurfaceFormat is used when the surface lists it; otherwise the first
	// supported format is used. Defaults to B8G8R8A8_SRGB / SRGB_NONLINEAR.
	SurfaceFormat vk.SurfaceFormat
	// PresentModes lists present modes in order of preference. FIFO, which
	// every surface supports, is used when none of them is available.
	// Defaults to mailbox, then immediate.
	PresentModes []vk.PresentMode
	// ImageUsage is added to the color attachment and transfer destination usage.
	ImageUsage vk.ImageUsageFlags
}

// DefaultSurfaceFormat is the preferred swapchain format.
var DefaultSurfaceFormat = vk.SurfaceFormat{
	Format:     vk.FormatB8g8r8a8Srgb,
	ColorSpace: vk.ColorSpaceSrgbNonlinear,
}

// DefaultPresentModes is the default present mode preference: low-latency
// triple buffering first, then immediate.
var DefaultPresentModes = []vk.PresentMode{
	vk.PresentModeMailbox,
	vk.PresentModeImmediate,
}

func (o *SwapchainOptions) withDefaults() SwapchainOptions {
	var ret SwapchainOptions
	if o != nil {
		ret = *o
	}
	if ret.SurfaceFormat.Format == vk.FormatUndefined {
		ret.SurfaceFormat = DefaultSurfaceFormat
	}
	if ret.PresentModes == nil {
		ret.PresentModes = DefaultPresentModes
	}
	return ret
}
