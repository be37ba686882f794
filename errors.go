package vkpresent

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var (
	// ErrExtensionsUnavailable is returned when the window system cannot report
	// the instance extensions it needs for presentation.
	ErrExtensionsUnavailable = errors.New("vkpresent: required instance extensions unavailable")

	// ErrNoSuitableDevice is returned when no physical device can present to the surface.
	ErrNoSuitableDevice = errors.New("vkpresent: no suitable physical device")

	// ErrNoSuitableMemoryType is returned by FindMemoryTypeIndex when no memory type matches.
	ErrNoSuitableMemoryType = errors.New("vkpresent: no suitable memory type")

	// ErrInvalidSurfaceDimensions is returned when the negotiated swapchain extent
	// has a zero width or height, e.g. while the window is minimized. It is
	// recoverable: skip the frame and retry once the size is non-zero again.
	ErrInvalidSurfaceDimensions = errors.New("vkpresent: invalid surface dimensions")

	// ErrImageAcquireFailed is matched by errors from acquiring a swapchain image
	// that returned neither success nor suboptimal.
	ErrImageAcquireFailed = errors.New("vkpresent: image acquire failed")
)

// ResultError is a driver result code other than success returned by a Vulkan call.
type ResultError struct {
	Op     string
	Result vk.Result

	kind error
}

func (e *ResultError) Error() string {
	if err := vk.Error(e.Result); err != nil {
		return fmt.Sprintf("vulkan: %s: %v (%d)", e.Op, err, e.Result)
	}
	return fmt.Sprintf("vulkan: %s: result %d", e.Op, e.Result)
}

// Unwrap returns the sentinel the result was classified as, if any.
func (e *ResultError) Unwrap() error {
	return e.kind
}

// NewError returns nil for vk.Success and a *ResultError otherwise.
func NewError(op string, res vk.Result) error {
	if res == vk.Success {
		return nil
	}
	return &ResultError{Op: op, Result: res}
}

func acquireError(res vk.Result) error {
	return &ResultError{Op: "vkAcquireNextImageKHR", Result: res, kind: ErrImageAcquireFailed}
}

// IsResult reports whether err carries the given driver result.
func IsResult(err error, res vk.Result) bool {
	var re *ResultError
	if errors.As(err, &re) {
		return re.Result == res
	}
	return false
}

// IsOutOfDate reports whether err means the surface changed and the swapchain
// must be recreated before it can be presented to again.
func IsOutOfDate(err error) bool {
	return IsResult(err, vk.ErrorOutOfDate)
}

// IsSurfaceLost reports whether the window surface is no longer usable.
func IsSurfaceLost(err error) bool {
	return IsResult(err, vk.ErrorSurfaceLost)
}
