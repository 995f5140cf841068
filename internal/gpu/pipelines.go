package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/gekko/internal/shaders"
)

// DepthFormat is the HW rasterizer's depth attachment format, shared
// with Binder.EnsureVisibilityImage so the depth texture it allocates
// matches what HWRasterPipeline was built against.
const DepthFormat = wgpu.TextureFormatDepth24Plus

// Pipelines owns the four compute/render pipelines of the runtime
// frame: cull (compute), HW rasterize (render), SW rasterize
// (compute), resolve (render). Built once per output format and
// shared across every bound asset, mirroring how the teacher's
// GizmoRenderPass and GpuBufferManager each build their pipeline once
// in a constructor and reuse it every frame.
type Pipelines struct {
	Device *wgpu.Device

	CullPipeline     *wgpu.ComputePipeline
	HWRasterPipeline *wgpu.RenderPipeline
	SWRasterPipeline *wgpu.ComputePipeline
	ResolvePipeline  *wgpu.RenderPipeline
}

// NewPipelines compiles the four WGSL modules of internal/shaders and
// builds their pipelines against the binder's three bind group
// layouts. swapchainFormat is the format the resolve pass's color
// target must match.
func NewPipelines(device *wgpu.Device, b *Binder, swapchainFormat wgpu.TextureFormat) (*Pipelines, error) {
	p := &Pipelines{Device: device}

	cullModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "adaptrix.cull",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.CullWGSL},
	})
	if err != nil {
		return nil, err
	}
	cullLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.Group0Layout, b.Group1Layout, b.Group2Layout},
	})
	if err != nil {
		return nil, err
	}
	p.CullPipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   "adaptrix.cull.pipeline",
		Layout:  cullLayout,
		Compute: wgpu.ProgrammableStageDescriptor{Module: cullModule, EntryPoint: "main"},
	})
	if err != nil {
		return nil, err
	}

	hwModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "adaptrix.hwraster",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.HWRasterWGSL},
	})
	if err != nil {
		return nil, err
	}
	hwLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.Group0Layout, b.Group1Layout, b.Group2Layout},
	})
	if err != nil {
		return nil, err
	}
	p.HWRasterPipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "adaptrix.hwraster.pipeline",
		Layout: hwLayout,
		Vertex: wgpu.VertexState{Module: hwModule, EntryPoint: "vs_main"},
		Fragment: &wgpu.FragmentState{
			Module:     hwModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: wgpu.TextureFormatRG32Uint, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, err
	}

	swModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "adaptrix.swraster",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.SWRasterWGSL},
	})
	if err != nil {
		return nil, err
	}
	swLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.Group0Layout, b.Group1Layout, b.Group2Layout},
	})
	if err != nil {
		return nil, err
	}
	p.SWRasterPipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   "adaptrix.swraster.pipeline",
		Layout:  swLayout,
		Compute: wgpu.ProgrammableStageDescriptor{Module: swModule, EntryPoint: "main"},
	})
	if err != nil {
		return nil, err
	}

	resolveModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "adaptrix.resolve",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ResolveWGSL},
	})
	if err != nil {
		return nil, err
	}
	resolveLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.Group0Layout, b.Group1Layout},
	})
	if err != nil {
		return nil, err
	}
	p.ResolvePipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "adaptrix.resolve.pipeline",
		Layout: resolveLayout,
		Vertex: wgpu.VertexState{Module: resolveModule, EntryPoint: "vs_main"},
		Fragment: &wgpu.FragmentState{
			Module:     resolveModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{Format: swapchainFormat, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, err
	}

	return p, nil
}

const workgroupSize = 64

// ceilDiv mirrors the teacher's (w+7)/8 workgroup-count rounding in
// manager_hiz.go's DispatchHiZ, generalized to any group size.
func ceilDiv(n, groupSize uint32) uint32 {
	return (n + groupSize - 1) / groupSize
}

// RunCull dispatches the culling compute pass over every cluster in
// the bound asset, writing visible cluster indices and indirect
// draw/dispatch args into group 2's buffers and the group 0 indirect
// buffers respectively.
func (p *Pipelines) RunCull(encoder *wgpu.CommandEncoder, b *Binder) {
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.CullPipeline)
	pass.SetBindGroup(0, b.Group0, nil)
	pass.SetBindGroup(1, b.Group1, nil)
	pass.SetBindGroup(2, b.Group2, nil)
	pass.DispatchWorkgroups(ceilDiv(b.ClusterCount(), workgroupSize), 1, 1)
	pass.End()
}

// RunHWRaster issues the indirect draw built by the culler: the
// instance count living in hw_draw_args is read by the GPU itself, so
// the host never needs to know how many clusters were visible.
func (p *Pipelines) RunHWRaster(encoder *wgpu.CommandEncoder, b *Binder, colorView *wgpu.TextureView) error {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "adaptrix.hwraster.pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       colorView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})
	pass.SetPipeline(p.HWRasterPipeline)
	pass.SetBindGroup(0, b.Group0, nil)
	pass.SetBindGroup(1, b.Group1, nil)
	pass.SetBindGroup(2, b.Group2, nil)
	pass.DrawIndirect(b.HWDrawArgsBuf, 0)
	pass.End()
	return nil
}

// RunSWRaster issues the indirect dispatch built by the culler for
// small clusters: sw_dispatch_args.x holds the workgroup count, one
// workgroup per cluster, set by the culler's atomicAdd.
func (p *Pipelines) RunSWRaster(encoder *wgpu.CommandEncoder, b *Binder) error {
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.SWRasterPipeline)
	pass.SetBindGroup(0, b.Group0, nil)
	pass.SetBindGroup(1, b.Group1, nil)
	pass.SetBindGroup(2, b.Group2, nil)
	pass.DispatchWorkgroupsIndirect(b.SWDispatchArgsBuf, 0)
	pass.End()
	return nil
}

// RunResolve draws the full-screen triangle that decodes the
// visibility buffer and SW id buffer into shaded color output.
func (p *Pipelines) RunResolve(encoder *wgpu.CommandEncoder, b *Binder, colorView *wgpu.TextureView) {
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "adaptrix.resolve.pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       colorView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	pass.SetPipeline(p.ResolvePipeline)
	pass.SetBindGroup(0, b.Group0, nil)
	pass.SetBindGroup(1, b.Group1, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
}
