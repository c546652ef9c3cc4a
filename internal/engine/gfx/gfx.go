// Package gfx narrows the OpenGL surface the VR bridge touches to an
// interface, with a go-gl backed implementation in Native. Framebuffer and
// render-model logic program against GL so their state machines run without
// a live context in tests.
package gfx

import "github.com/openviz/vrbridge/pkg/math"

// FramebufferTarget selects which framebuffer binding point to use.
type FramebufferTarget int

const (
	FramebufferBoth FramebufferTarget = iota
	FramebufferRead
	FramebufferDraw
)

// GL is the set of graphics operations the bridge performs. All calls
// require the owning context to be current on the calling thread.
type GL interface {
	// Framebuffers.
	NewFramebuffer() uint32
	BindFramebuffer(target FramebufferTarget, id uint32)
	NewDepthRenderbuffer(width, height, samples int32) uint32
	AttachDepthRenderbuffer(id uint32)
	// NewColorTexture allocates a color texture; samples > 0 makes it
	// multisampled.
	NewColorTexture(width, height, samples int32) uint32
	AttachColorTexture(id uint32, multisampled bool)
	// FramebufferComplete reports completeness of the currently bound
	// framebuffer.
	FramebufferComplete() bool
	// BlitFramebuffer copies the bound read framebuffer's color into the
	// bound draw framebuffer, flattening multisampling.
	BlitFramebuffer(srcWidth, srcHeight, dstWidth, dstHeight int32)
	DisableMultisample()
	Viewport(x, y, width, height int32)
	DeleteFramebuffer(id uint32)
	DeleteRenderbuffer(id uint32)
	DeleteTexture(id uint32)

	// Geometry.
	NewVertexArray() uint32
	BindVertexArray(id uint32)
	NewArrayBuffer(data []float32) uint32
	NewElementBuffer(data []uint16) uint32
	// VertexAttrib enables a float attribute on the bound vertex array.
	VertexAttrib(index uint32, size, strideBytes, offsetBytes int32)
	DeleteVertexArray(id uint32)
	DeleteBuffer(id uint32)

	// Shaders.
	NewProgram(vertexSrc, fragmentSrc string) (uint32, error)
	UseProgram(id uint32)
	DeleteProgram(id uint32)
	SetUniformMatrix(program uint32, name string, m *math.Mat4)
	SetUniformInt(program uint32, name string, value int32)

	// Textures.
	NewTexture2D(width, height int32, rgba []byte) uint32
	BindTexture2D(unit uint32, id uint32)

	// Drawing.
	DrawIndexedTriangles(indexCount int32)
	Clear(r, g, b, a float32)
}
