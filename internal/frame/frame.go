// Package frame drives the runtime frame state machine of spec.md
// §4.9: Idle -> Recording -> Culling -> HwRaster -> SwRaster ->
// Resolve -> Present -> Idle. Adapted from voxelrt/rt/app/app.go's
// Render() (acquire surface texture, build one command encoder,
// record passes in sequence, finish, submit, present), generalized
// from its fixed compute/render pass list to Adaptrix's indirect
// cull/raster/resolve pipeline.
package frame

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/gekko/internal/adaptrixerr"
	"github.com/gekko3d/gekko/internal/asset"
	"github.com/gekko3d/gekko/internal/gpu"
	"github.com/gekko3d/gekko/internal/logging"
)

// State names the runtime frame state machine's nodes.
type State int

const (
	Idle State = iota
	Recording
	Culling
	HwRaster
	SwRaster
	Resolve
	Present
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Recording:
		return "Recording"
	case Culling:
		return "Culling"
	case HwRaster:
		return "HwRaster"
	case SwRaster:
		return "SwRaster"
	case Resolve:
		return "Resolve"
	case Present:
		return "Present"
	default:
		return "Unknown"
	}
}

// Host owns one surface's worth of frame state: the device, the
// resource binder, the compiled pipelines, and the state machine's
// current node. A failed frame is fatal only for that frame; the next
// call to RunFrame starts over from Idle with freshly reset indirect
// args (spec.md §4.9) — unless the failure is a lost device, in which
// case Device/Surface/Binder/Pipelines are all stale and the caller
// must rebuild this Host before calling RunFrame again.
type Host struct {
	Device    *wgpu.Device
	Surface   *wgpu.Surface
	Binder    *gpu.Binder
	Pipelines *gpu.Pipelines
	Log       logging.Logger

	state State
}

func NewHost(device *wgpu.Device, surface *wgpu.Surface, binder *gpu.Binder, pipelines *gpu.Pipelines, log logging.Logger) *Host {
	return &Host{Device: device, Surface: surface, Binder: binder, Pipelines: pipelines, Log: log, state: Idle}
}

// State reports the state machine's current node, mainly useful for
// tests and for a viewer's debug overlay.
func (h *Host) State() State { return h.state }

// RunFrame advances Idle through Present and back to Idle, recording
// and submitting exactly one command buffer. view is the frame's
// ViewUniform, already computed by the caller (cmd/ladview owns the
// camera).
//
// Runtime errors other than DeviceLost are non-fatal: the frame is
// dropped and the state machine resets to Idle so the next call
// starts clean. A lost device surfaces as *adaptrixerr.Error with
// Kind adaptrixerr.DeviceLost instead, since the device, binder and
// pipelines this Host holds are no longer usable and the caller must
// rebuild them; RunFrame does not attempt that itself since it does
// not own the adapter the device came from.
func (h *Host) RunFrame(view asset.ViewUniform) error {
	h.state = Recording

	next, err := h.Surface.GetCurrentTexture()
	if err != nil {
		h.state = Idle
		if isDeviceLost(err) {
			return adaptrixerr.New(adaptrixerr.DeviceLost, "acquire surface texture", err)
		}
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	defer next.Release()

	colorView, err := next.CreateView(nil)
	if err != nil {
		h.state = Idle
		return fmt.Errorf("create surface view: %w", err)
	}
	defer colorView.Release()

	h.Binder.ResetFrame(uint32(view.ViewportW) * uint32(view.ViewportH))
	h.Binder.WriteViewUniform(view)

	encoder, err := h.Device.CreateCommandEncoder(nil)
	if err != nil {
		h.state = Idle
		if isDeviceLost(err) {
			return adaptrixerr.New(adaptrixerr.DeviceLost, "create command encoder", err)
		}
		return fmt.Errorf("create command encoder: %w", err)
	}

	h.state = Culling
	h.Pipelines.RunCull(encoder, h.Binder)

	h.state = HwRaster
	if err := h.Pipelines.RunHWRaster(encoder, h.Binder, h.Binder.VisibilityView); err != nil {
		h.state = Idle
		return fmt.Errorf("hw raster pass: %w", err)
	}

	h.state = SwRaster
	if err := h.Pipelines.RunSWRaster(encoder, h.Binder); err != nil {
		h.state = Idle
		return fmt.Errorf("sw raster pass: %w", err)
	}

	h.state = Resolve
	h.Pipelines.RunResolve(encoder, h.Binder, colorView)

	h.state = Present
	cmd, err := encoder.Finish(nil)
	if err != nil {
		h.state = Idle
		if isDeviceLost(err) {
			return adaptrixerr.New(adaptrixerr.DeviceLost, "finish command encoder", err)
		}
		return fmt.Errorf("finish command encoder: %w", err)
	}
	h.Device.GetQueue().Submit(cmd)
	h.Surface.Present()

	h.state = Idle
	return nil
}

// isDeviceLost reports whether err originates from wgpu's device-lost
// condition rather than an ordinary validation failure. The webgpu
// binding surfaces this as a plain error whose message echoes the
// underlying wgpu-native status string, so detection matches on that
// text instead of a typed status enum (the same convention the status
// string carries in wgpu's own DeviceLostReason naming).
func isDeviceLost(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "lost")
}
