package vkpresent

import (
	"context"
	"log/slog"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const (
	// SwapchainExtension is the device extension every selected device must support.
	SwapchainExtension = "VK_KHR_swapchain"

	getPhysicalDeviceProperties2Extension = "VK_KHR_get_physical_device_properties2"
	portabilityEnumerationExtension       = "VK_KHR_portability_enumeration"
	portabilitySubsetExtension            = "VK_KHR_portability_subset"
	debugReportExtension                  = "VK_EXT_debug_report"

	validationLayer = "VK_LAYER_KHRONOS_validation"

	// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	instanceCreateEnumeratePortabilityBit vk.InstanceCreateFlags = 0x00000001
)

// instanceSetup is what probing the loader decided to enable.
type instanceSetup struct {
	extensions []string
	layers     []string
	flags      vk.InstanceCreateFlags
	debug      bool
}

// probeInstance checks the required extensions against what the loader offers
// and enables the optional ones that are present.
func probeInstance(loader Loader, required []string, opts *Options, log *slog.Logger) (instanceSetup, error) {
	var setup instanceSetup

	available, err := loader.InstanceExtensions()
	if err != nil {
		return setup, errors.Wrap(err, "enumerating instance extensions")
	}

	var missing []string
	for _, ext := range required {
		if !containsString(available, ext) {
			missing = append(missing, ext)
		}
	}
	if len(missing) > 0 {
		return setup, errors.Wrapf(ErrExtensionsUnavailable, "loader does not support %v", missing)
	}
	setup.extensions = appendUnique(setup.extensions, required...)

	optional := []string{getPhysicalDeviceProperties2Extension, portabilityEnumerationExtension}
	if opts.EnableValidation {
		optional = append(optional, debugReportExtension)
	}
	for _, ext := range optional {
		if !containsString(available, ext) {
			continue
		}
		setup.extensions = appendUnique(setup.extensions, ext)
		switch ext {
		case portabilityEnumerationExtension:
			setup.flags |= instanceCreateEnumeratePortabilityBit
		case debugReportExtension:
			setup.debug = true
		}
	}

	if opts.EnableValidation {
		layers, err := loader.InstanceLayers()
		if err != nil {
			return setup, errors.Wrap(err, "enumerating instance layers")
		}
		if containsString(layers, validationLayer) {
			setup.layers = append(setup.layers, validationLayer)
		} else {
			log.Warn("validation requested but layer is not installed", "layer", validationLayer)
		}
	}

	log.Debug("instance configuration", "extensions", setup.extensions, "layers", setup.layers)
	return setup, nil
}

// applicationInfo describes the application to the driver.
func applicationInfo(appName string, opts *Options) vk.ApplicationInfo {
	return vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         opts.APIVersion.VKVersion(),
		ApplicationVersion: opts.Version.VKVersion(),
		PApplicationName:   safeString(appName),
		EngineVersion:      opts.Version.VKVersion(),
		PEngineName:        safeString(opts.EngineName),
	}
}

func createInstance(loader Loader, appName string, setup instanceSetup, opts *Options) (vk.Instance, error) {
	appInfo := applicationInfo(appName, opts)

	extensions := safeStrings(setup.extensions)
	layers := safeStrings(setup.layers)

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		Flags:                   setup.flags,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
	}

	instance, err := loader.CreateInstance(&createInfo)
	if err != nil {
		return nil, errors.Wrap(err, "creating instance")
	}
	return instance, nil
}

// debugReportCallback forwards validation messages to log.
func debugReportCallback(log *slog.Logger) vk.DebugReportCallbackFunc {
	return func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
		object uint64, location uint, messageCode int32, pLayerPrefix string,
		pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

		level := slog.LevelInfo
		switch {
		case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
			level = slog.LevelError
		case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
			level = slog.LevelWarn
		case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
			level = slog.LevelDebug
		}
		log.Log(context.Background(), level, pMessage, "layer", pLayerPrefix, "code", messageCode)
		return vk.Bool32(vk.False)
	}
}

func debugReportCreateInfo(log *slog.Logger) *vk.DebugReportCallbackCreateInfo {
	return &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: debugReportCallback(log),
	}
}
