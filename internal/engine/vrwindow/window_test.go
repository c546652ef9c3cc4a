package vrwindow

import (
	"errors"
	"strings"
	"testing"

	"github.com/openviz/vrbridge/internal/engine/camera"
	"github.com/openviz/vrbridge/internal/engine/gfx"
	"github.com/openviz/vrbridge/internal/engine/gfx/gfxtest"
	"github.com/openviz/vrbridge/internal/engine/scene"
	"github.com/openviz/vrbridge/internal/engine/window"
	"github.com/openviz/vrbridge/internal/vr"
	"github.com/openviz/vrbridge/pkg/math"
)

type fakeSurface struct {
	current   bool
	title     string
	width     int
	height    int
	x, y      int
	sizeCalls int
	posCalls  int
	onSetSize func(width, height int)
	swaps     int
	destroyed bool
}

func (s *fakeSurface) MakeCurrent() error { s.current = true; return nil }
func (s *fakeSurface) IsCurrent() bool    { return s.current }
func (s *fakeSurface) SwapBuffers()       { s.swaps++ }

func (s *fakeSurface) SetSize(width, height int) {
	s.sizeCalls++
	s.width, s.height = width, height
	if s.onSetSize != nil {
		s.onSetSize(width, height)
	}
}

func (s *fakeSurface) SetPosition(x, y int)  { s.posCalls++; s.x, s.y = x, y }
func (s *fakeSurface) SetTitle(title string) { s.title = title }
func (s *fakeSurface) Size() (int, int)      { return s.width, s.height }
func (s *fakeSurface) Destroy()              { s.destroyed = true }

type fakeSystem struct{}

func (fakeSystem) RecommendedRenderTargetSize() (uint32, uint32) { return 1920, 1080 }
func (fakeSystem) DeviceConnected(vr.DeviceIndex) bool           { return false }
func (fakeSystem) DeviceClass(vr.DeviceIndex) vr.DeviceClass     { return vr.ClassInvalid }
func (fakeSystem) InputFocusCapturedByAnotherProcess() bool      { return false }

func (fakeSystem) DeviceString(i vr.DeviceIndex, p vr.DeviceProperty) (string, error) {
	switch p {
	case vr.PropTrackingSystemName:
		return "testhmd", nil
	case vr.PropSerialNumber:
		return "SN-1234", nil
	}
	return "", errors.New("no model")
}

type fakeModels struct{}

func (fakeModels) LoadRenderModelAsync(string) (*vr.RenderModel, error) {
	return nil, vr.ErrLoading
}
func (fakeModels) LoadTextureAsync(int32) (*vr.TextureMap, error) { return nil, vr.ErrLoading }
func (fakeModels) FreeRenderModel(*vr.RenderModel)                {}
func (fakeModels) FreeTexture(*vr.TextureMap)                     {}

type submission struct {
	eye     vr.Eye
	texture uint32
}

type fakeCompositor struct {
	waitErr     error
	waits       int
	submissions []submission
}

func (c *fakeCompositor) WaitGetPoses(poses []vr.DevicePose) error {
	c.waits++
	if c.waitErr != nil {
		return c.waitErr
	}
	poses[vr.DeviceHMD] = vr.DevicePose{
		DeviceToTracking: math.Identity(),
		Valid:            true,
		Connected:        true,
	}
	return nil
}

func (c *fakeCompositor) Submit(eye vr.Eye, texture uint32) error {
	c.submissions = append(c.submissions, submission{eye, texture})
	return nil
}

type fakeRuntime struct {
	modelsErr error
	compErr   error
	comp      *fakeCompositor
	shutdowns int
}

func (r *fakeRuntime) System() vr.System { return fakeSystem{} }

func (r *fakeRuntime) RenderModels() (vr.RenderModels, error) {
	if r.modelsErr != nil {
		return nil, r.modelsErr
	}
	return fakeModels{}, nil
}

func (r *fakeRuntime) Compositor() (vr.Compositor, error) {
	if r.compErr != nil {
		return nil, r.compErr
	}
	return r.comp, nil
}

func (r *fakeRuntime) Shutdown() { r.shutdowns++ }

// newTestWindow wires a window to in-memory fakes via the construction seams.
func newTestWindow(rt *fakeRuntime) (*Window, *fakeSurface, *gfxtest.Fake) {
	surface := &fakeSurface{}
	g := gfxtest.New()

	w := New(rt, Options{MultiSamples: 4})
	w.newSurface = func(cfg window.Config) (window.Surface, error) {
		surface.width, surface.height = cfg.Width, cfg.Height
		surface.title = cfg.Title
		return surface, nil
	}
	w.newGL = func() (gfx.GL, error) { return g, nil }
	return w, surface, g
}

func TestInitializeSetsUpEyesAndTitle(t *testing.T) {
	rt := &fakeRuntime{comp: &fakeCompositor{}}
	w, surface, g := newTestWindow(rt)

	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !w.Ready() {
		t.Fatal("window not ready after Initialize")
	}

	// One render + one resolve framebuffer per eye.
	if len(g.Framebuffers) != 4 {
		t.Errorf("expected 4 framebuffers, got %d", len(g.Framebuffers))
	}

	width, height := w.RenderTargetSize()
	if width != 1920 || height != 1080 {
		t.Errorf("render target size: got %dx%d, want 1920x1080", width, height)
	}

	// Companion window mirrors one eye at half resolution.
	if sw, sh := w.Size(); sw != 960 || sh != 540 {
		t.Errorf("companion size: got %dx%d, want 960x540", sw, sh)
	}

	if !strings.Contains(surface.title, "testhmd") ||
		!strings.Contains(surface.title, "SN-1234") {
		t.Errorf("title %q should carry the headset name and serial", surface.title)
	}
}

func TestInitializeFailureLeavesNotReady(t *testing.T) {
	rt := &fakeRuntime{modelsErr: errors.New("runtime refused")}
	w, _, _ := newTestWindow(rt)

	if err := w.Initialize(); err == nil {
		t.Fatal("Initialize should fail when the runtime has no render models")
	}
	if w.Ready() {
		t.Error("window ready after failed Initialize")
	}
	if err := w.Render(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Render on unready window: got %v, want ErrNotReady", err)
	}
}

func TestInitializeIncompleteFramebufferAborts(t *testing.T) {
	rt := &fakeRuntime{comp: &fakeCompositor{}}
	w, surface, g := newTestWindow(rt)
	g.CompleteResults = []bool{false}

	if err := w.Initialize(); err == nil {
		t.Fatal("Initialize should fail on an incomplete framebuffer")
	}
	if w.Ready() {
		t.Error("window ready after framebuffer failure")
	}
	if !surface.destroyed {
		t.Error("companion window should be torn down on abort")
	}
}

func TestRenderSubmitsBothEyes(t *testing.T) {
	comp := &fakeCompositor{}
	rt := &fakeRuntime{comp: comp}
	w, surface, g := newTestWindow(rt)

	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	w.AddRenderer(scene.NewBasicRenderer())

	if err := w.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if comp.waits != 1 {
		t.Errorf("pose waits: got %d, want 1", comp.waits)
	}
	if len(comp.submissions) != 2 {
		t.Fatalf("submissions: got %d, want 2", len(comp.submissions))
	}
	if comp.submissions[0].eye != vr.EyeLeft || comp.submissions[1].eye != vr.EyeRight {
		t.Error("eyes submitted out of order")
	}
	if comp.submissions[0].texture != w.leftEye.ResolveTexture {
		t.Error("left submission is not the left resolve texture")
	}
	if comp.submissions[1].texture != w.rightEye.ResolveTexture {
		t.Error("right submission is not the right resolve texture")
	}

	// Left resolve, right resolve, companion mirror.
	if len(g.Blits) != 3 {
		t.Fatalf("blits: got %d, want 3", len(g.Blits))
	}
	mirror := g.Blits[2]
	if mirror.DrawFramebuffer != 0 {
		t.Error("mirror blit must target the default framebuffer")
	}
	if mirror.ReadFramebuffer != w.rightEye.ResolveFramebuffer {
		t.Error("mirror blit must read the right eye's resolve target")
	}
	sw, sh := w.Size()
	if mirror.DstWidth != int32(sw) || mirror.DstHeight != int32(sh) {
		t.Errorf("mirror blit scaled to %dx%d, want %dx%d",
			mirror.DstWidth, mirror.DstHeight, sw, sh)
	}
	if surface.swaps != 1 {
		t.Errorf("buffer swaps: got %d, want 1", surface.swaps)
	}
}

func TestRenderResetsEyePose(t *testing.T) {
	rt := &fakeRuntime{comp: &fakeCompositor{}}
	w, _, _ := newTestWindow(rt)

	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	r := scene.NewBasicRenderer()
	w.AddRenderer(r)

	if err := w.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	// After the frame the camera is back at the cyclopean viewpoint: the
	// view direction crossed with up has no residual sideways offset.
	cam := r.ActiveCamera()
	right := cam.DirectionOfProjection().Cross(cam.ViewUp).Normalize()
	if off := cam.Position.Dot(right); off != 0 {
		t.Errorf("residual eye shift %v after frame", off)
	}
}

func TestRenderPoseWaitFailure(t *testing.T) {
	comp := &fakeCompositor{waitErr: errors.New("compositor gone")}
	rt := &fakeRuntime{comp: comp}
	w, _, _ := newTestWindow(rt)

	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := w.Render(); err == nil {
		t.Fatal("Render should surface the pose wait failure")
	}
	if len(comp.submissions) != 0 {
		t.Error("frame submitted despite pose wait failure")
	}
}

func TestSetSizeReentrancy(t *testing.T) {
	rt := &fakeRuntime{comp: &fakeCompositor{}}
	w, surface, _ := newTestWindow(rt)
	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	surface.sizeCalls = 0

	// The windowing system echoes a resize event back during SetSize.
	surface.onSetSize = func(int, int) { w.SetSize(100, 50) }

	w.SetSize(200, 300)

	if surface.sizeCalls != 1 {
		t.Errorf("OS resize calls: got %d, want 1", surface.sizeCalls)
	}
	if sw, sh := w.Size(); sw != 100 || sh != 50 {
		t.Errorf("recorded size: got %dx%d, want the echoed 100x50", sw, sh)
	}
}

func TestSetSizeUnchangedIsNoOp(t *testing.T) {
	rt := &fakeRuntime{comp: &fakeCompositor{}}
	w, surface, _ := newTestWindow(rt)
	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	surface.sizeCalls = 0

	sw, sh := w.Size()
	w.SetSize(sw, sh)

	if surface.sizeCalls != 0 {
		t.Errorf("OS resize calls for unchanged size: got %d, want 0", surface.sizeCalls)
	}
}

func TestInitializeViewFromCamera(t *testing.T) {
	rt := &fakeRuntime{comp: &fakeCompositor{}}
	w, _, _ := newTestWindow(rt)
	r := scene.NewBasicRenderer()
	w.AddRenderer(r)

	// Same view angle as the headset camera, so the scale equals the
	// source camera's focal distance.
	src := camera.New()
	src.Position = math.Vec3{Z: 5}
	src.FocalPoint = math.Vec3{}
	src.ViewUp = math.Vec3{X: 0.1, Y: 0.9, Z: 0}

	w.InitializeViewFromCamera(src)

	cam := r.ActiveCamera()
	if cam.Distance != 5 {
		t.Errorf("distance: got %v, want 5", cam.Distance)
	}
	if w.Synchronizer().ViewUp != (math.Vec3{Y: 1}) {
		t.Errorf("view up not snapped to +Y: %v", w.Synchronizer().ViewUp)
	}
	if w.Synchronizer().ViewDirection != (math.Vec3{Z: -1}) {
		t.Errorf("view direction not snapped to -Z: %v", w.Synchronizer().ViewDirection)
	}
	if cam.Position != (math.Vec3{Z: 5}) {
		t.Errorf("position: got %v, want (0, 0, 5)", cam.Position)
	}
	if cam.Translation != (math.Vec3{Y: 5}) {
		t.Errorf("translation: got %v, want (0, 5, 0)", cam.Translation)
	}
}

type countingOverlay struct {
	created int
	renders int
	err     error
}

func (o *countingOverlay) Create(*Window) error { o.created++; return o.err }
func (o *countingOverlay) Render()              { o.renders++ }

func TestDashboardOverlayLifecycle(t *testing.T) {
	rt := &fakeRuntime{comp: &fakeCompositor{}}
	w, _, _ := newTestWindow(rt)
	overlay := &countingOverlay{}
	w.SetDashboardOverlay(overlay)

	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if overlay.created != 1 {
		t.Errorf("overlay created %d times, want 1", overlay.created)
	}

	w.AddRenderer(scene.NewBasicRenderer())
	if err := w.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if overlay.renders != 1 {
		t.Errorf("overlay rendered %d times, want 1", overlay.renders)
	}
}

func TestFinalizeShutsDownOnce(t *testing.T) {
	rt := &fakeRuntime{comp: &fakeCompositor{}}
	w, surface, g := newTestWindow(rt)
	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	w.Finalize()
	w.Finalize()

	if rt.shutdowns != 1 {
		t.Errorf("runtime shutdowns: got %d, want 1", rt.shutdowns)
	}
	if !surface.destroyed {
		t.Error("companion window not destroyed")
	}
	if w.Ready() {
		t.Error("window still ready after Finalize")
	}

	// Both eyes release framebuffers, depth buffers, and textures.
	if len(g.Deleted) != 10 {
		t.Errorf("deleted GPU objects: got %d, want 10", len(g.Deleted))
	}
}
