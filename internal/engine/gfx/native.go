package gfx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/openviz/vrbridge/internal/logger"
	"github.com/openviz/vrbridge/pkg/math"
)

// Native implements GL on top of go-gl.
type Native struct{}

// NewNative loads the OpenGL function pointers for the current context.
// Must be called after the context exists and is current.
func NewNative() (*Native, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.DepthRange(0, 1)

	return &Native{}, nil
}

func (*Native) NewFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (*Native) BindFramebuffer(target FramebufferTarget, id uint32) {
	switch target {
	case FramebufferRead:
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, id)
	case FramebufferDraw:
		gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, id)
	default:
		gl.BindFramebuffer(gl.FRAMEBUFFER, id)
	}
}

func (*Native) NewDepthRenderbuffer(width, height, samples int32) uint32 {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	gl.BindRenderbuffer(gl.RENDERBUFFER, id)
	if samples > 0 {
		gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, samples, gl.DEPTH_COMPONENT24, width, height)
	} else {
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
	}
	return id
}

func (*Native) AttachDepthRenderbuffer(id uint32) {
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, id)
}

func (*Native) NewColorTexture(width, height, samples int32) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	if samples > 0 {
		gl.BindTexture(gl.TEXTURE_2D_MULTISAMPLE, id)
		gl.TexImage2DMultisample(gl.TEXTURE_2D_MULTISAMPLE, samples, gl.RGBA8, width, height, true)
	} else {
		gl.BindTexture(gl.TEXTURE_2D, id)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	}
	return id
}

func (*Native) AttachColorTexture(id uint32, multisampled bool) {
	if multisampled {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D_MULTISAMPLE, id, 0)
	} else {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, id, 0)
	}
}

func (*Native) FramebufferComplete() bool {
	return gl.CheckFramebufferStatus(gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
}

func (*Native) BlitFramebuffer(srcWidth, srcHeight, dstWidth, dstHeight int32) {
	gl.BlitFramebuffer(0, 0, srcWidth, srcHeight, 0, 0, dstWidth, dstHeight,
		gl.COLOR_BUFFER_BIT, gl.LINEAR)
}

func (*Native) DisableMultisample() {
	gl.Disable(gl.MULTISAMPLE)
}

func (*Native) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (*Native) DeleteFramebuffer(id uint32) {
	gl.DeleteFramebuffers(1, &id)
}

func (*Native) DeleteRenderbuffer(id uint32) {
	gl.DeleteRenderbuffers(1, &id)
}

func (*Native) DeleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
}

func (*Native) NewVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (*Native) BindVertexArray(id uint32) {
	gl.BindVertexArray(id)
}

func (*Native) NewArrayBuffer(data []float32) uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.ARRAY_BUFFER, id)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	return id
}

func (*Native) NewElementBuffer(data []uint16) uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, id)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*2, gl.Ptr(data), gl.STATIC_DRAW)
	return id
}

func (*Native) VertexAttrib(index uint32, size, strideBytes, offsetBytes int32) {
	gl.EnableVertexAttribArray(index)
	gl.VertexAttribPointerWithOffset(index, size, gl.FLOAT, false, strideBytes, uintptr(offsetBytes))
}

func (*Native) DeleteVertexArray(id uint32) {
	gl.DeleteVertexArrays(1, &id)
}

func (*Native) DeleteBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (*Native) UseProgram(id uint32) {
	gl.UseProgram(id)
}

func (*Native) DeleteProgram(id uint32) {
	gl.DeleteProgram(id)
}

func (*Native) SetUniformMatrix(program uint32, name string, m *math.Mat4) {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	gl.UniformMatrix4fv(loc, 1, false, m.Ptr())
}

func (*Native) SetUniformInt(program uint32, name string, value int32) {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	gl.Uniform1i(loc, value)
}

func (*Native) NewTexture2D(width, height int32, rgba []byte) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return id
}

func (*Native) BindTexture2D(unit uint32, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, id)
}

func (*Native) DrawIndexedTriangles(indexCount int32) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, indexCount, gl.UNSIGNED_SHORT, 0)
}

func (*Native) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}
