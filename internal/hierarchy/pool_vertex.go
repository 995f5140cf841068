package hierarchy

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// vertexPool is the builder's single growing vertex array. Level 0
// seeds it with the original mesh; every simplified group appends the
// new vertices it produced. append is the only mutation workers make
// to shared state and serializes itself on the pool's own mutex.
type vertexPool struct {
	mu        sync.Mutex
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
}

func newVertexPool(positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) *vertexPool {
	return &vertexPool{
		positions: append([]mgl32.Vec3{}, positions...),
		normals:   append([]mgl32.Vec3{}, normals...),
		uvs:       append([]mgl32.Vec2{}, uvs...),
	}
}

func (p *vertexPool) position(idx uint32) mgl32.Vec3 { return p.positions[idx] }

func (p *vertexPool) append(pos, normal mgl32.Vec3, uv mgl32.Vec2) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := uint32(len(p.positions))
	p.positions = append(p.positions, pos)
	p.normals = append(p.normals, normal)
	p.uvs = append(p.uvs, uv)
	return idx
}
