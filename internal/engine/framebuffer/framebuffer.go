// Package framebuffer manages the per-eye offscreen render targets: a
// multisample-capable render framebuffer paired with a single-sampled
// resolve framebuffer used for compositor submission.
package framebuffer

import (
	"fmt"

	"github.com/openviz/vrbridge/internal/engine/gfx"
)

// EyeTargets holds one eye's GPU handles. Handles are valid only between
// New and Destroy.
type EyeTargets struct {
	RenderFramebuffer  uint32
	RenderTexture      uint32
	DepthBuffer        uint32
	ResolveFramebuffer uint32
	ResolveTexture     uint32

	width, height int32
	multisampled  bool
}

// New allocates the render and resolve targets at the given pixel size.
// samples > 0 makes the render target multisampled; the resolve target is
// always single-sampled. An incomplete framebuffer is returned as an error
// and the caller treats it as fatal to initialization.
func New(g gfx.GL, width, height, samples int32) (*EyeTargets, error) {
	t := &EyeTargets{
		width:        width,
		height:       height,
		multisampled: samples > 0,
	}

	t.RenderFramebuffer = g.NewFramebuffer()
	g.BindFramebuffer(gfx.FramebufferBoth, t.RenderFramebuffer)

	t.DepthBuffer = g.NewDepthRenderbuffer(width, height, samples)
	g.AttachDepthRenderbuffer(t.DepthBuffer)

	t.RenderTexture = g.NewColorTexture(width, height, samples)
	g.AttachColorTexture(t.RenderTexture, t.multisampled)

	if !g.FramebufferComplete() {
		t.Destroy(g)
		return nil, fmt.Errorf("render framebuffer %dx%d incomplete", width, height)
	}

	t.ResolveFramebuffer = g.NewFramebuffer()
	g.BindFramebuffer(gfx.FramebufferBoth, t.ResolveFramebuffer)

	t.ResolveTexture = g.NewColorTexture(width, height, 0)
	g.AttachColorTexture(t.ResolveTexture, false)

	if !g.FramebufferComplete() {
		t.Destroy(g)
		return nil, fmt.Errorf("resolve framebuffer %dx%d incomplete", width, height)
	}

	g.BindFramebuffer(gfx.FramebufferBoth, 0)

	return t, nil
}

// Size returns the target dimensions in pixels.
func (t *EyeTargets) Size() (width, height int32) {
	return t.width, t.height
}

// Bind makes the render framebuffer the active target for scene drawing.
func (t *EyeTargets) Bind(g gfx.GL) {
	g.BindFramebuffer(gfx.FramebufferBoth, t.RenderFramebuffer)
	g.Viewport(0, 0, t.width, t.height)
}

// Resolve flattens the multisampled render target into the resolve target.
func (t *EyeTargets) Resolve(g gfx.GL) {
	g.BindFramebuffer(gfx.FramebufferBoth, 0)
	g.DisableMultisample()

	g.BindFramebuffer(gfx.FramebufferRead, t.RenderFramebuffer)
	g.BindFramebuffer(gfx.FramebufferDraw, t.ResolveFramebuffer)

	g.BlitFramebuffer(t.width, t.height, t.width, t.height)

	g.BindFramebuffer(gfx.FramebufferRead, 0)
	g.BindFramebuffer(gfx.FramebufferDraw, 0)
}

// PresentTo blits the resolve target onto the window surface (the default
// framebuffer), scaling to the given size.
func (t *EyeTargets) PresentTo(g gfx.GL, dstWidth, dstHeight int32) {
	g.BindFramebuffer(gfx.FramebufferRead, t.ResolveFramebuffer)
	g.BindFramebuffer(gfx.FramebufferDraw, 0)
	g.BlitFramebuffer(t.width, t.height, dstWidth, dstHeight)
	g.BindFramebuffer(gfx.FramebufferRead, 0)
}

// Destroy releases all handles.
func (t *EyeTargets) Destroy(g gfx.GL) {
	if t.RenderFramebuffer != 0 {
		g.DeleteFramebuffer(t.RenderFramebuffer)
		t.RenderFramebuffer = 0
	}
	if t.ResolveFramebuffer != 0 {
		g.DeleteFramebuffer(t.ResolveFramebuffer)
		t.ResolveFramebuffer = 0
	}
	if t.DepthBuffer != 0 {
		g.DeleteRenderbuffer(t.DepthBuffer)
		t.DepthBuffer = 0
	}
	if t.RenderTexture != 0 {
		g.DeleteTexture(t.RenderTexture)
		t.RenderTexture = 0
	}
	if t.ResolveTexture != 0 {
		g.DeleteTexture(t.ResolveTexture)
		t.ResolveTexture = 0
	}
}
