package vkpresent

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// ShaderModule is a compiled SPIR-V module.
type ShaderModule struct {
	Description    string
	VKShaderModule vk.ShaderModule

	vkd DeviceDispatch
}

// CreateShaderModule creates a module from SPIR-V code. The code is passed to
// the driver as is; it must be non-empty and a whole number of 32-bit words.
func (c *Context) CreateShaderModule(code []byte) (*ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("invalid SPIR-V code size %d", len(code))
	}
	module, err := c.vkd.CreateShaderModule(&vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	})
	if err != nil {
		return nil, err
	}
	return &ShaderModule{VKShaderModule: module, vkd: c.vkd}, nil
}

// LoadShaderModuleFromFile reads a SPIR-V file and creates a module from it.
func (c *Context) LoadShaderModuleFromFile(file string) (*ShaderModule, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	ret, err := c.CreateShaderModule(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", file)
	}
	ret.Description = file
	return ret, nil
}

func (s *ShaderModule) VKPipelineShaderStageCreateInfo(stage vk.ShaderStageFlagBits, entryPoint string) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: s.VKShaderModule,
		PName:  safeString(entryPoint),
	}
}

func (s *ShaderModule) Destroy() {
	s.vkd.DestroyShaderModule(s.VKShaderModule)
}

// sliceUint32 copies data into a word-aligned slice.
func sliceUint32(data []byte) []uint32 {
	ret := make([]uint32, len(data)/4)
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&ret[0])), len(ret)*4), data)
	return ret
}
