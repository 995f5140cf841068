// Package gpu owns the GPU-side resource binder of spec.md §4.6/§6: it
// uploads an LLAD asset's typed spans as storage buffers and builds
// the bindless-style group 0 (static, per asset) and group 1
// (per-frame) bind groups the culler, rasterizers and resolver read
// from. Adapted from voxelrt/rt/gpu/manager.go's ensureBuffer
// grow-or-reuse pattern, generalized from the teacher's per-feature
// buffer fields to Adaptrix's fixed binding contract.
package gpu

import (
	"encoding/binary"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gekko3d/gekko/internal/asset"
	"github.com/gekko3d/gekko/internal/llad"
)

// HeadroomPayload matches the teacher's over-allocation strategy so a
// buffer can grow in place across a handful of frames before the
// asset changes (e.g. during LOD debugging / asset hot-reload).
const HeadroomPayload = 1 * 1024 * 1024

// IndirectDrawArgsSize is the 16-byte struct of spec.md §6: u32
// vertex_count, atomic<u32> instance_count (offset 4), u32
// first_vertex, u32 first_instance.
const IndirectDrawArgsSize = 16

// IndirectDispatchArgsSize is sw_dispatch_args: atomic<u32> x, u32 y, u32 z.
const IndirectDispatchArgsSize = 12

// Binder owns the device handles for one loaded LLAD asset: group 0's
// static storage buffers plus the per-frame group 1 resources. The
// culler and rasterizers only borrow these (spec.md §3's lifecycle
// note); the binder is the sole owner and release point.
type Binder struct {
	Device *wgpu.Device

	ClustersBuf             *wgpu.Buffer
	VerticesBuf             *wgpu.Buffer
	MeshletVertexIndicesBuf *wgpu.Buffer
	PrimitiveIndicesBuf     *wgpu.Buffer
	SWIDBuf                 *wgpu.Buffer
	HWVisibleBuf            *wgpu.Buffer
	SWVisibleBuf            *wgpu.Buffer
	HWDrawArgsBuf           *wgpu.Buffer
	SWDispatchArgsBuf       *wgpu.Buffer

	ViewUniformBuf    *wgpu.Buffer
	VisibilityTexture *wgpu.Texture
	VisibilityView    *wgpu.TextureView
	DepthTexture      *wgpu.Texture
	DepthView         *wgpu.TextureView

	Group0Layout *wgpu.BindGroupLayout
	Group0       *wgpu.BindGroup
	Group1Layout *wgpu.BindGroupLayout
	Group1       *wgpu.BindGroup
	// Group2 holds the culler's own per-frame write targets
	// (hw_visible_clusters, sw_visible_clusters): spec.md §6 lists
	// Group 0 as static-per-asset and Group 1 as the resolver's
	// per-frame inputs, leaving no slot for the culler's own output
	// lists, so they get a third group.
	Group2Layout *wgpu.BindGroupLayout
	Group2       *wgpu.BindGroup

	clusterCount uint32
}

func New(device *wgpu.Device) *Binder {
	return &Binder{Device: device}
}

func (b *Binder) ensureBuffer(buf **wgpu.Buffer, label string, data []byte, usage wgpu.BufferUsage, headroom int) {
	needed := uint64(len(data) + headroom)
	if rem := needed % 4; rem != 0 {
		needed += 4 - rem
	}
	current := *buf
	if current == nil || current.GetSize() < needed {
		if current != nil {
			current.Release()
		}
		newBuf, err := b.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label,
			Size:  needed,
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		*buf = newBuf
	}
	if len(data) > 0 {
		b.Device.GetQueue().WriteBuffer(*buf, 0, data)
	}
}

// BindAsset uploads a decoded LLAD asset's four blobs plus freshly
// sized visible-cluster/indirect-arg/SW-id buffers, then (re)creates
// group 0. viewportW/H size the SW id buffer (spec.md §4.8's
// viewport_w*viewport_h storage buffer).
func (b *Binder) BindAsset(a llad.Asset, capacity, viewportW, viewportH uint32) error {
	b.clusterCount = uint32(len(a.Clusters))

	clusterBytes := make([]byte, 0, len(a.Clusters)*asset.ClusterSize)
	for _, c := range a.Clusters {
		clusterBytes = append(clusterBytes, c.ToBytes()...)
	}
	vertexBytes := make([]byte, 0, len(a.Vertices)*asset.VertexSize)
	for _, v := range a.Vertices {
		vertexBytes = append(vertexBytes, v.ToBytes()...)
	}
	meshletBytes := make([]byte, len(a.MeshletVertexIndices)*4)
	for i, v := range a.MeshletVertexIndices {
		binary.LittleEndian.PutUint32(meshletBytes[i*4:i*4+4], v)
	}

	b.ensureBuffer(&b.ClustersBuf, "adaptrix.clusters", clusterBytes, wgpu.BufferUsageStorage, HeadroomPayload)
	b.ensureBuffer(&b.VerticesBuf, "adaptrix.vertices", vertexBytes, wgpu.BufferUsageStorage, HeadroomPayload)
	b.ensureBuffer(&b.MeshletVertexIndicesBuf, "adaptrix.meshlet_vertex_indices", meshletBytes, wgpu.BufferUsageStorage, HeadroomPayload)
	b.ensureBuffer(&b.PrimitiveIndicesBuf, "adaptrix.primitive_indices", a.PrimitiveIndices, wgpu.BufferUsageStorage, HeadroomPayload)

	b.ensureBuffer(&b.SWIDBuf, "adaptrix.sw_id_buffer", nil, wgpu.BufferUsageStorage, int(viewportW)*int(viewportH)*4)
	b.ensureBuffer(&b.HWVisibleBuf, "adaptrix.hw_visible_clusters", nil, wgpu.BufferUsageStorage, int(capacity)*4)
	b.ensureBuffer(&b.SWVisibleBuf, "adaptrix.sw_visible_clusters", nil, wgpu.BufferUsageStorage, int(capacity)*4)
	b.ensureBuffer(&b.HWDrawArgsBuf, "adaptrix.hw_draw_args", nil, wgpu.BufferUsageStorage|wgpu.BufferUsageIndirect, IndirectDrawArgsSize)
	b.ensureBuffer(&b.SWDispatchArgsBuf, "adaptrix.sw_dispatch_args", nil, wgpu.BufferUsageStorage|wgpu.BufferUsageIndirect, IndirectDispatchArgsSize)

	return b.buildGroup0()
}

func (b *Binder) buildGroup0() error {
	layout, err := b.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "adaptrix.group0.layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			storageEntry(0), storageEntry(1), storageEntry(2), storageEntry(3),
			storageEntry(4), storageEntry(5), storageEntry(6),
		},
	})
	if err != nil {
		return err
	}
	b.Group0Layout = layout

	group, err := b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "adaptrix.group0",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.ClustersBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.VerticesBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: b.MeshletVertexIndicesBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: b.PrimitiveIndicesBuf, Size: wgpu.WholeSize},
			{Binding: 4, Buffer: b.SWIDBuf, Size: wgpu.WholeSize},
			{Binding: 5, Buffer: b.HWDrawArgsBuf, Size: wgpu.WholeSize},
			{Binding: 6, Buffer: b.SWDispatchArgsBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}
	b.Group0 = group
	return nil
}

func storageEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute | wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage},
	}
}

// EnsureVisibilityImage (re)allocates the RG32_UINT visibility image
// and its depth attachment at the given viewport size. The depth
// texture backs the HW rasterizer's standard depth test (spec.md
// line 85/109): both images always share the same size, so they are
// (re)created together rather than tracked by two separate calls.
func (b *Binder) EnsureVisibilityImage(width, height uint32) error {
	if b.VisibilityTexture != nil && b.VisibilityTexture.GetWidth() == width && b.VisibilityTexture.GetHeight() == height {
		return nil
	}
	if b.VisibilityTexture != nil {
		b.VisibilityTexture.Release()
	}
	tex, err := b.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "adaptrix.visibility",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRG32Uint,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return err
	}
	b.VisibilityTexture = tex
	view, err := tex.CreateView(nil)
	if err != nil {
		return err
	}
	b.VisibilityView = view

	if b.DepthTexture != nil {
		b.DepthTexture.Release()
	}
	depthTex, err := b.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "adaptrix.depth",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return err
	}
	b.DepthTexture = depthTex
	depthView, err := depthTex.CreateView(nil)
	if err != nil {
		return err
	}
	b.DepthView = depthView
	return nil
}

// WriteViewUniform uploads a fresh ViewUniform, (re)creating
// ViewUniformBuf on first use or size change.
func (b *Binder) WriteViewUniform(v asset.ViewUniform) {
	b.ensureBuffer(&b.ViewUniformBuf, "adaptrix.view_uniform", v.ToBytes(), wgpu.BufferUsageUniform, 0)
}

// BuildGroup1 (re)creates the per-frame bind group of spec.md §6:
// binding 0 = ViewUniform, binding 1 = visibility image, binding 2 =
// SW id buffer (read-only in the resolver).
func (b *Binder) BuildGroup1() error {
	layout, err := b.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "adaptrix.group1.layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageCompute | wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture:    wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeUint, ViewDimension: wgpu.TextureViewDimension2D},
			},
			storageEntry(2),
		},
	})
	if err != nil {
		return err
	}
	b.Group1Layout = layout

	group, err := b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "adaptrix.group1",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.ViewUniformBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: b.VisibilityView},
			{Binding: 2, Buffer: b.SWIDBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}
	b.Group1 = group
	return nil
}

// BuildGroup2 (re)creates the culler's private per-frame bind group:
// the two atomically-appended visible-cluster lists.
func (b *Binder) BuildGroup2() error {
	layout, err := b.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "adaptrix.group2.layout",
		Entries: []wgpu.BindGroupLayoutEntry{storageEntry(0), storageEntry(1)},
	})
	if err != nil {
		return err
	}
	b.Group2Layout = layout

	group, err := b.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "adaptrix.group2",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.HWVisibleBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.SWVisibleBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return err
	}
	b.Group2 = group
	return nil
}

// ResetFrame clears the per-frame indirect args and SW id buffer,
// per spec.md §3's "cleared at the start of every frame" lifecycle.
func (b *Binder) ResetFrame(swIDBufferLen uint32) {
	zeroDraw := make([]byte, IndirectDrawArgsSize)
	binary.LittleEndian.PutUint32(zeroDraw[0:4], 3*256) // vertex_count = 3*MAX_TRIANGLES_PER_CLUSTER
	b.Device.GetQueue().WriteBuffer(b.HWDrawArgsBuf, 0, zeroDraw)

	zeroDispatch := make([]byte, IndirectDispatchArgsSize)
	binary.LittleEndian.PutUint32(zeroDispatch[4:8], 1)
	binary.LittleEndian.PutUint32(zeroDispatch[8:12], 1)
	b.Device.GetQueue().WriteBuffer(b.SWDispatchArgsBuf, 0, zeroDispatch)

	if b.SWIDBuf != nil {
		zeros := make([]byte, minU64(b.SWIDBuf.GetSize(), uint64(swIDBufferLen)*4))
		b.Device.GetQueue().WriteBuffer(b.SWIDBuf, 0, zeros)
	}
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// ClusterCount is the number of clusters in the currently bound asset.
func (b *Binder) ClusterCount() uint32 { return b.clusterCount }
