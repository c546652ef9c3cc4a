// Package gfxtest provides a recording gfx.GL fake for tests that must run
// without a live OpenGL context.
package gfxtest

import (
	"errors"

	"github.com/openviz/vrbridge/internal/engine/gfx"
	"github.com/openviz/vrbridge/pkg/math"
)

// Blit records one blit call and the framebuffer bindings it ran under.
type Blit struct {
	ReadFramebuffer uint32
	DrawFramebuffer uint32
	SrcWidth        int32
	SrcHeight       int32
	DstWidth        int32
	DstHeight       int32
}

// Fake implements gfx.GL, handing out sequential IDs and recording calls.
type Fake struct {
	// CompleteResults is consumed one entry per FramebufferComplete call;
	// when exhausted the check reports true.
	CompleteResults []bool

	// ProgramErr, when set, fails NewProgram.
	ProgramErr bool

	NextID uint32

	Framebuffers  []uint32
	Renderbuffers []uint32
	Textures      []uint32
	Buffers       []uint32
	VertexArrays  []uint32
	Programs      []uint32

	Deleted []uint32

	BoundRead uint32
	BoundDraw uint32

	Blits     []Blit
	DrawCalls []int32
	Uniforms  map[string]math.Mat4

	ArrayBufferData   [][]float32
	ElementBufferData [][]uint16
	TextureUploads    []struct{ Width, Height int32 }

	MultisampleDisabled int
	Clears              int
}

// New returns an empty fake.
func New() *Fake {
	return &Fake{Uniforms: make(map[string]math.Mat4)}
}

func (f *Fake) nextID() uint32 {
	f.NextID++
	return f.NextID
}

func (f *Fake) NewFramebuffer() uint32 {
	id := f.nextID()
	f.Framebuffers = append(f.Framebuffers, id)
	return id
}

func (f *Fake) BindFramebuffer(target gfx.FramebufferTarget, id uint32) {
	switch target {
	case gfx.FramebufferRead:
		f.BoundRead = id
	case gfx.FramebufferDraw:
		f.BoundDraw = id
	default:
		f.BoundRead = id
		f.BoundDraw = id
	}
}

func (f *Fake) NewDepthRenderbuffer(width, height, samples int32) uint32 {
	id := f.nextID()
	f.Renderbuffers = append(f.Renderbuffers, id)
	return id
}

func (f *Fake) AttachDepthRenderbuffer(id uint32) {}

func (f *Fake) NewColorTexture(width, height, samples int32) uint32 {
	id := f.nextID()
	f.Textures = append(f.Textures, id)
	return id
}

func (f *Fake) AttachColorTexture(id uint32, multisampled bool) {}

func (f *Fake) FramebufferComplete() bool {
	if len(f.CompleteResults) == 0 {
		return true
	}
	result := f.CompleteResults[0]
	f.CompleteResults = f.CompleteResults[1:]
	return result
}

func (f *Fake) BlitFramebuffer(srcWidth, srcHeight, dstWidth, dstHeight int32) {
	f.Blits = append(f.Blits, Blit{
		ReadFramebuffer: f.BoundRead,
		DrawFramebuffer: f.BoundDraw,
		SrcWidth:        srcWidth,
		SrcHeight:       srcHeight,
		DstWidth:        dstWidth,
		DstHeight:       dstHeight,
	})
}

func (f *Fake) DisableMultisample() { f.MultisampleDisabled++ }

func (f *Fake) Viewport(x, y, width, height int32) {}

func (f *Fake) DeleteFramebuffer(id uint32)  { f.Deleted = append(f.Deleted, id) }
func (f *Fake) DeleteRenderbuffer(id uint32) { f.Deleted = append(f.Deleted, id) }
func (f *Fake) DeleteTexture(id uint32)      { f.Deleted = append(f.Deleted, id) }
func (f *Fake) DeleteVertexArray(id uint32)  { f.Deleted = append(f.Deleted, id) }
func (f *Fake) DeleteBuffer(id uint32)       { f.Deleted = append(f.Deleted, id) }
func (f *Fake) DeleteProgram(id uint32)      { f.Deleted = append(f.Deleted, id) }

func (f *Fake) NewVertexArray() uint32 {
	id := f.nextID()
	f.VertexArrays = append(f.VertexArrays, id)
	return id
}

func (f *Fake) BindVertexArray(id uint32) {}

func (f *Fake) NewArrayBuffer(data []float32) uint32 {
	id := f.nextID()
	f.Buffers = append(f.Buffers, id)
	f.ArrayBufferData = append(f.ArrayBufferData, data)
	return id
}

func (f *Fake) NewElementBuffer(data []uint16) uint32 {
	id := f.nextID()
	f.Buffers = append(f.Buffers, id)
	f.ElementBufferData = append(f.ElementBufferData, data)
	return id
}

func (f *Fake) VertexAttrib(index uint32, size, strideBytes, offsetBytes int32) {}

func (f *Fake) NewProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	if f.ProgramErr {
		return 0, errors.New("program compile failed")
	}
	id := f.nextID()
	f.Programs = append(f.Programs, id)
	return id, nil
}

func (f *Fake) UseProgram(id uint32) {}

func (f *Fake) SetUniformMatrix(program uint32, name string, m *math.Mat4) {
	f.Uniforms[name] = *m
}

func (f *Fake) SetUniformInt(program uint32, name string, value int32) {}

func (f *Fake) NewTexture2D(width, height int32, rgba []byte) uint32 {
	id := f.nextID()
	f.Textures = append(f.Textures, id)
	f.TextureUploads = append(f.TextureUploads, struct{ Width, Height int32 }{width, height})
	return id
}

func (f *Fake) BindTexture2D(unit uint32, id uint32) {}

func (f *Fake) DrawIndexedTriangles(indexCount int32) {
	f.DrawCalls = append(f.DrawCalls, indexCount)
}

func (f *Fake) Clear(r, g, b, a float32) { f.Clears++ }
