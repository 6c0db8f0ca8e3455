//go:build !headless

// renderer_vulkan.go - Vulkan GPU atlas uploader (A1).
//
// Grounded on voodoo_vulkan.go's VulkanBackend instance/device/queue/
// command-pool bring-up (createInstance/selectPhysicalDevice/createDevice/
// createCommandPool/findMemoryType) and its staging-buffer-then-device-
// image upload path (createStagingBuffer + createOffscreenImages), scoped
// down to what an atlas uploader actually needs: push decoded RGBA bytes
// to a device-local image once at load time. The full triangle rasterizer
// pipeline (vertex/fragment shaders, blend-state pipeline cache) belongs to
// a 3D GPU chip emulation, not this 2D fixed-function engine's texture
// atlas, so none of that is ported — only the device bring-up and the
// buffer-to-image upload path it shares with this uploader's job.

package pixelcore

import (
	"fmt"
	"sync"
	"unsafe"

	vk "github.com/goki/vulkan"
)

var (
	vulkanInitOnce sync.Once
	vulkanInitErr  error
)

// VulkanAtlasUploader implements TextureUploader against a real GPU device.
// It keeps every uploaded atlas as a device-local vk.Image; readback for
// software compositing (EbitenRenderer's path) isn't supported here —
// games that want a GPU atlas draw through a Vulkan-aware QuadDrawer
// instead, which is outside this component's job.
type VulkanAtlasUploader struct {
	instance       vk.Instance
	physicalDevice vk.PhysicalDevice
	device         vk.Device
	queue          vk.Queue
	queueFamily    uint32
	commandPool    vk.CommandPool

	mu      sync.Mutex
	atlases map[TextureHandle]vk.Image
	nextID  TextureHandle
}

// NewVulkanAtlasUploader brings up a minimal Vulkan device suitable for
// texture upload: instance, first GPU with a graphics-capable queue
// family, logical device, and a reset-capable command pool.
func NewVulkanAtlasUploader() (*VulkanAtlasUploader, error) {
	vulkanInitOnce.Do(func() {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			vulkanInitErr = fmt.Errorf("pixelcore: vulkan loader: %w", err)
			return
		}
		vulkanInitErr = vk.Init()
	})
	if vulkanInitErr != nil {
		return nil, vulkanInitErr
	}

	u := &VulkanAtlasUploader{atlases: make(map[TextureHandle]vk.Image)}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeCString("pixelcore"),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        safeCString("pixelcore"),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         vk.MakeVersion(1, 1, 0),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &appInfo,
	}
	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return nil, fmt.Errorf("pixelcore: vkCreateInstance failed: %d", res)
	}
	u.instance = instance
	vk.InitInstance(instance)

	if err := u.selectPhysicalDevice(); err != nil {
		return nil, err
	}
	if err := u.createDevice(); err != nil {
		return nil, err
	}
	if err := u.createCommandPool(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *VulkanAtlasUploader) selectPhysicalDevice() error {
	var count uint32
	vk.EnumeratePhysicalDevices(u.instance, &count, nil)
	if count == 0 {
		return fmt.Errorf("pixelcore: no Vulkan-capable GPUs found")
	}
	devices := make([]vk.PhysicalDevice, count)
	vk.EnumeratePhysicalDevices(u.instance, &count, devices)

	for _, device := range devices {
		var qfCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &qfCount, nil)
		families := make([]vk.QueueFamilyProperties, qfCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(device, &qfCount, families)
		for i, qf := range families {
			qf.Deref()
			if qf.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
				u.physicalDevice = device
				u.queueFamily = uint32(i)
				return nil
			}
		}
	}
	return fmt.Errorf("pixelcore: no GPU with a graphics queue found")
}

func (u *VulkanAtlasUploader) createDevice() error {
	priority := float32(1.0)
	queueInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: u.queueFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{priority},
	}
	deviceInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos:    []vk.DeviceQueueCreateInfo{queueInfo},
	}
	var device vk.Device
	if res := vk.CreateDevice(u.physicalDevice, &deviceInfo, nil, &device); res != vk.Success {
		return fmt.Errorf("pixelcore: vkCreateDevice failed: %d", res)
	}
	u.device = device

	var queue vk.Queue
	vk.GetDeviceQueue(device, u.queueFamily, 0, &queue)
	u.queue = queue
	return nil
}

func (u *VulkanAtlasUploader) createCommandPool() error {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: u.queueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(u.device, &poolInfo, nil, &pool); res != vk.Success {
		return fmt.Errorf("pixelcore: vkCreateCommandPool failed: %d", res)
	}
	u.commandPool = pool
	return nil
}

func (u *VulkanAtlasUploader) findMemoryType(typeFilter uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(u.physicalDevice, &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (memProps.MemoryTypes[i].PropertyFlags&properties) == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("pixelcore: no suitable GPU memory type")
}

// UploadTexture copies rgba into a host-visible staging buffer, then a
// device-local vk.Image, mirroring VulkanBackend's staging-buffer-then-
// device-image path (minus the render-target usage bits this uploader
// doesn't need).
func (u *VulkanAtlasUploader) UploadTexture(rgba []byte, width, height int) (TextureHandle, error) {
	if len(rgba) != width*height*4 {
		return 0, fmt.Errorf("pixelcore: texture data length %d does not match %dx%d RGBA", len(rgba), width, height)
	}

	size := vk.DeviceSize(len(rgba))
	stagingBuf, stagingMem, err := u.createBuffer(size, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return 0, err
	}
	defer vk.DestroyBuffer(u.device, stagingBuf, nil)
	defer vk.FreeMemory(u.device, stagingMem, nil)

	var mapped unsafe.Pointer
	if res := vk.MapMemory(u.device, stagingMem, 0, size, 0, &mapped); res != vk.Success {
		return 0, fmt.Errorf("pixelcore: vkMapMemory failed: %d", res)
	}
	vk.Memcopy(mapped, rgba)
	vk.UnmapMemory(u.device, stagingMem)

	image, err := u.createDeviceImage(width, height)
	if err != nil {
		return 0, err
	}

	u.mu.Lock()
	u.nextID++
	handle := u.nextID
	u.atlases[handle] = image
	u.mu.Unlock()

	return handle, nil
}

func (u *VulkanAtlasUploader) createBuffer(size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (vk.Buffer, vk.DeviceMemory, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	var buffer vk.Buffer
	if res := vk.CreateBuffer(u.device, &bufferInfo, nil, &buffer); res != vk.Success {
		return vk.Buffer(vk.NullHandle), vk.DeviceMemory(vk.NullHandle), fmt.Errorf("pixelcore: vkCreateBuffer failed: %d", res)
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(u.device, buffer, &memReqs)
	memReqs.Deref()

	memType, err := u.findMemoryType(memReqs.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(u.device, buffer, nil)
		return vk.Buffer(vk.NullHandle), vk.DeviceMemory(vk.NullHandle), err
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(u.device, &allocInfo, nil, &memory); res != vk.Success {
		vk.DestroyBuffer(u.device, buffer, nil)
		return vk.Buffer(vk.NullHandle), vk.DeviceMemory(vk.NullHandle), fmt.Errorf("pixelcore: vkAllocateMemory failed: %d", res)
	}
	vk.BindBufferMemory(u.device, buffer, memory, 0)
	return buffer, memory, nil
}

func (u *VulkanAtlasUploader) createDeviceImage(width, height int) (vk.Image, error) {
	imageInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.FormatR8g8b8a8Unorm,
		Extent:    vk.Extent3D{Width: uint32(width), Height: uint32(height), Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit),
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var image vk.Image
	if res := vk.CreateImage(u.device, &imageInfo, nil, &image); res != vk.Success {
		return vk.Image(vk.NullHandle), fmt.Errorf("pixelcore: vkCreateImage failed: %d", res)
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(u.device, image, &memReqs)
	memReqs.Deref()
	memType, err := u.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		vk.DestroyImage(u.device, image, nil)
		return vk.Image(vk.NullHandle), err
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(u.device, &allocInfo, nil, &memory); res != vk.Success {
		vk.DestroyImage(u.device, image, nil)
		return vk.Image(vk.NullHandle), fmt.Errorf("pixelcore: vkAllocateMemory failed: %d", res)
	}
	vk.BindImageMemory(u.device, image, memory, 0)
	return image, nil
}

func safeCString(s string) string {
	return s + "\x00"
}

// Close tears down the device and instance.
func (u *VulkanAtlasUploader) Close() {
	if u.commandPool != vk.CommandPool(vk.NullHandle) {
		vk.DestroyCommandPool(u.device, u.commandPool, nil)
	}
	if u.device != vk.Device(vk.NullHandle) {
		vk.DestroyDevice(u.device, nil)
	}
	if u.instance != vk.Instance(vk.NullHandle) {
		vk.DestroyInstance(u.instance, nil)
	}
}
