package spray

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// GpuContext bundles the wgpu objects the simulation core needs. Rendering
// surfaces are a downstream concern; a headless context is enough to run
// the full spawn/update pipeline.
type GpuContext struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
}

// NewHeadlessGpu acquires an adapter, device and queue without a surface.
func NewHeadlessGpu() (*GpuContext, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Spray Device",
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}

	return &GpuContext{
		Instance: instance,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
	}, nil
}

// Release frees the context in reverse acquisition order.
func (g *GpuContext) Release() {
	if g == nil {
		return
	}
	if g.Device != nil {
		g.Device.Release()
	}
	if g.Adapter != nil {
		g.Adapter.Release()
	}
	if g.Instance != nil {
		g.Instance.Release()
	}
}
