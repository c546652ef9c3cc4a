// Package vrwindow drives the headset render loop: per-eye framebuffers,
// pose-paced stereo rendering, device model drawing, and compositor
// submission, mirrored into a companion desktop window.
package vrwindow

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/openviz/vrbridge/internal/engine/camera"
	"github.com/openviz/vrbridge/internal/engine/framebuffer"
	"github.com/openviz/vrbridge/internal/engine/gfx"
	"github.com/openviz/vrbridge/internal/engine/rendermodel"
	"github.com/openviz/vrbridge/internal/engine/scene"
	"github.com/openviz/vrbridge/internal/engine/tracking"
	"github.com/openviz/vrbridge/internal/engine/window"
	"github.com/openviz/vrbridge/internal/logger"
	"github.com/openviz/vrbridge/internal/vr"
)

// ErrNotReady is returned by Render before a successful Initialize.
var ErrNotReady = errors.New("vrwindow: not initialized")

// Overlay hooks a dashboard overlay into the frame cycle.
type Overlay interface {
	Create(w *Window) error
	Render()
}

// DefaultOverlay is the stock dashboard overlay. The simulated runtime has
// no dashboard surface to draw into, so it only marks its presence.
type DefaultOverlay struct{}

func (DefaultOverlay) Create(w *Window) error {
	logger.Debug("dashboard overlay created")
	return nil
}

func (DefaultOverlay) Render() {}

// Options configures a stereo window.
type Options struct {
	// MultiSamples sets the sample count of the per-eye render targets;
	// 0 disables multisampling.
	MultiSamples int32
	// ShowDeviceModels draws tracked-device models into the scene.
	ShowDeviceModels bool
	// EyeSeparation overrides the camera interpupillary distance in
	// meters when > 0.
	EyeSeparation float32
}

// Window owns the VR runtime session and the per-frame stereo cycle.
// All methods must be called from the thread that owns the GL context.
type Window struct {
	runtime    vr.Runtime
	system     vr.System
	models     vr.RenderModels
	compositor vr.Compositor

	surface window.Surface
	gl      gfx.GL

	sync      *tracking.Synchronizer
	cache     *rendermodel.Cache
	renderers []scene.Renderer

	leftEye  *framebuffer.EyeTargets
	rightEye *framebuffer.EyeTargets

	renderWidth  uint32
	renderHeight uint32

	overlay Overlay

	multiSamples int32
	showModels   bool
	eyeSep       float32

	size     [2]int
	position [2]int
	resizing bool
	ready    bool

	// Construction seams for tests.
	newSurface func(window.Config) (window.Surface, error)
	newGL      func() (gfx.GL, error)
}

// New returns an uninitialized stereo window over the given runtime.
func New(rt vr.Runtime, opts Options) *Window {
	return &Window{
		runtime:      rt,
		sync:         tracking.New(),
		cache:        rendermodel.NewCache(),
		multiSamples: opts.MultiSamples,
		showModels:   opts.ShowDeviceModels,
		eyeSep:       opts.EyeSeparation,
		size:         [2]int{640, 720},
		newSurface: func(cfg window.Config) (window.Surface, error) {
			return window.New(cfg)
		},
		newGL: func() (gfx.GL, error) {
			return gfx.NewNative()
		},
	}
}

// AddRenderer appends a scene view to the frame cycle.
func (w *Window) AddRenderer(r scene.Renderer) {
	w.renderers = append(w.renderers, r)
	if cam := r.ActiveCamera(); cam != nil && w.eyeSep > 0 {
		cam.EyeSeparation = w.eyeSep
	}
}

// SetDashboardOverlay installs an overlay; it is created during Initialize.
func (w *Window) SetDashboardOverlay(o Overlay) {
	w.overlay = o
}

// Ready reports whether Initialize completed.
func (w *Window) Ready() bool { return w.ready }

// Synchronizer exposes the pose synchronizer for view configuration.
func (w *Window) Synchronizer() *tracking.Synchronizer { return w.sync }

// RenderTargetSize returns the per-eye resolution chosen at Initialize.
func (w *Window) RenderTargetSize() (width, height uint32) {
	return w.renderWidth, w.renderHeight
}

// Initialize brings up the runtime session, the companion window with its
// GL context, and both eye targets. Any failure aborts initialization and
// leaves the window not ready.
func (w *Window) Initialize() error {
	if w.ready {
		return nil
	}
	if w.runtime == nil {
		return errors.New("vrwindow: no runtime")
	}

	w.system = w.runtime.System()

	models, err := w.runtime.RenderModels()
	if err != nil {
		return fmt.Errorf("render models interface: %w", err)
	}
	w.models = models

	w.renderWidth, w.renderHeight = w.system.RecommendedRenderTargetSize()
	logger.Info("render target size",
		zap.Uint32("width", w.renderWidth), zap.Uint32("height", w.renderHeight))

	// The companion window mirrors one eye at half resolution.
	w.size = [2]int{int(w.renderWidth / 2), int(w.renderHeight / 2)}

	surface, err := w.newSurface(window.Config{
		Title:  "VR Bridge",
		Width:  w.size[0],
		Height: w.size[1],
		X:      w.position[0],
		Y:      w.position[1],
	})
	if err != nil {
		return fmt.Errorf("companion window: %w", err)
	}
	w.surface = surface

	g, err := w.newGL()
	if err != nil {
		w.surface.Destroy()
		w.surface = nil
		return fmt.Errorf("OpenGL init: %w", err)
	}
	w.gl = g

	if name, err := w.system.DeviceString(vr.DeviceHMD, vr.PropTrackingSystemName); err == nil {
		serial, _ := w.system.DeviceString(vr.DeviceHMD, vr.PropSerialNumber)
		w.surface.SetTitle(fmt.Sprintf("VR Bridge - %s %s", name, serial))
	}

	w.leftEye, err = framebuffer.New(w.gl,
		int32(w.renderWidth), int32(w.renderHeight), w.multiSamples)
	if err != nil {
		w.teardownSurface()
		return fmt.Errorf("left eye targets: %w", err)
	}
	w.rightEye, err = framebuffer.New(w.gl,
		int32(w.renderWidth), int32(w.renderHeight), w.multiSamples)
	if err != nil {
		w.leftEye.Destroy(w.gl)
		w.leftEye = nil
		w.teardownSurface()
		return fmt.Errorf("right eye targets: %w", err)
	}

	compositor, err := w.runtime.Compositor()
	if err != nil {
		w.destroyEyes()
		w.teardownSurface()
		return fmt.Errorf("compositor: %w", err)
	}
	w.compositor = compositor

	if w.overlay != nil {
		if err := w.overlay.Create(w); err != nil {
			w.destroyEyes()
			w.teardownSurface()
			return fmt.Errorf("dashboard overlay: %w", err)
		}
	}

	w.ready = true
	logger.Info("stereo window initialized", zap.Int32("samples", w.multiSamples))
	return nil
}

func (w *Window) teardownSurface() {
	if w.surface != nil {
		w.surface.Destroy()
		w.surface = nil
	}
	w.gl = nil
}

func (w *Window) destroyEyes() {
	if w.leftEye != nil {
		w.leftEye.Destroy(w.gl)
		w.leftEye = nil
	}
	if w.rightEye != nil {
		w.rightEye.Destroy(w.gl)
		w.rightEye = nil
	}
}

// MakeCurrent binds the window's GL context to the calling thread.
func (w *Window) MakeCurrent() error {
	if w.surface == nil {
		return ErrNotReady
	}
	return w.surface.MakeCurrent()
}

// IsCurrent reports whether the window's GL context is current.
func (w *Window) IsCurrent() bool {
	return w.surface != nil && w.surface.IsCurrent()
}

// activeCamera returns the first renderer camera, the one eye poses and
// device models are composed against.
func (w *Window) activeCamera() *camera.Camera {
	for _, r := range w.renderers {
		if cam := r.ActiveCamera(); cam != nil {
			return cam
		}
	}
	return nil
}

// Render runs one full frame: wait for fresh poses (this paces the loop to
// the headset), sync cameras, draw both eyes, and present.
func (w *Window) Render() error {
	if !w.ready {
		return ErrNotReady
	}
	if err := w.MakeCurrent(); err != nil {
		return err
	}

	if err := w.sync.WaitPoses(w.compositor); err != nil {
		logger.Error("pose wait failed", zap.Error(err))
		return err
	}
	w.sync.Apply(w.renderers)

	w.renderStereoPass()
	return w.Frame()
}

func (w *Window) renderStereoPass() {
	cam := w.activeCamera()

	w.leftEye.Bind(w.gl)
	w.gl.Clear(0, 0, 0, 1)
	if cam != nil {
		cam.ApplyEyePose(vr.EyeLeft)
	}
	for _, r := range w.renderers {
		r.Render(vr.EyeLeft)
	}
	w.StereoMidpoint()

	w.rightEye.Bind(w.gl)
	w.gl.Clear(0, 0, 0, 1)
	if cam != nil {
		cam.ApplyEyePose(vr.EyeRight)
	}
	for _, r := range w.renderers {
		r.Render(vr.EyeRight)
	}
	w.StereoRenderComplete()
}

// StereoMidpoint finishes the left eye: device models are drawn on top of
// the scene, then the render target is resolved for submission.
func (w *Window) StereoMidpoint() {
	w.renderDeviceModels()
	w.leftEye.Resolve(w.gl)
}

// StereoRenderComplete finishes the right eye and restores the camera to
// its neutral viewpoint for the next frame's pose update.
func (w *Window) StereoRenderComplete() {
	w.renderDeviceModels()
	w.rightEye.Resolve(w.gl)
	if cam := w.activeCamera(); cam != nil {
		cam.ResetEyePose()
	}
}

func (w *Window) renderDeviceModels() {
	if !w.showModels {
		return
	}
	w.cache.RenderAll(w.gl, w.system, w.models, w.activeCamera(), w.sync.Poses())
}

// Frame submits both resolved eye textures to the compositor and mirrors
// the right eye into the companion window.
func (w *Window) Frame() error {
	if err := w.MakeCurrent(); err != nil {
		return err
	}

	if w.overlay != nil {
		w.overlay.Render()
	}

	if err := w.compositor.Submit(vr.EyeLeft, w.leftEye.ResolveTexture); err != nil {
		return fmt.Errorf("submit left eye: %w", err)
	}
	if err := w.compositor.Submit(vr.EyeRight, w.rightEye.ResolveTexture); err != nil {
		return fmt.Errorf("submit right eye: %w", err)
	}

	w.rightEye.PresentTo(w.gl, int32(w.size[0]), int32(w.size[1]))
	w.surface.SwapBuffers()
	return nil
}

// SetShowDeviceModels toggles tracked-device model drawing.
func (w *Window) SetShowDeviceModels(show bool) {
	w.showModels = show
	w.cache.SetShowAll(show)
}

// SetSize records the companion window size and pushes it to the OS window.
// Re-entrant calls from the windowing system's resize event are absorbed
// without a second OS call.
func (w *Window) SetSize(width, height int) {
	if w.size[0] == width && w.size[1] == height {
		return
	}
	w.size = [2]int{width, height}

	if w.resizing {
		return
	}
	w.resizing = true
	if w.surface != nil {
		w.surface.SetSize(width, height)
	}
	w.resizing = false
}

// Size returns the companion window size.
func (w *Window) Size() (width, height int) {
	return w.size[0], w.size[1]
}

// SetPosition records the companion window position with the same
// re-entrancy guard as SetSize.
func (w *Window) SetPosition(x, y int) {
	if w.position[0] == x && w.position[1] == y {
		return
	}
	w.position = [2]int{x, y}

	if w.resizing {
		return
	}
	w.resizing = true
	if w.surface != nil {
		w.surface.SetPosition(x, y)
	}
	w.resizing = false
}

// InitializeViewFromCamera adopts a desktop camera's viewpoint: the scene
// scale is chosen so the source view angle fills the headset's, the view
// up and direction are snapped to world axes, and the tracking-space
// translation re-centers the source focal point.
func (w *Window) InitializeViewFromCamera(src *camera.Camera) {
	cam := w.activeCamera()
	if cam == nil {
		logger.Warn("cannot initialize view: no renderer camera")
		return
	}

	d := math32.Sin(radians(src.ViewAngle)/2) * src.DistanceToFocal() /
		math32.Sin(radians(cam.ViewAngle)/2)

	vup := src.ViewUp.DominantAxis()
	dir := src.DirectionOfProjection().DominantAxis()
	w.sync.ViewUp = vup
	w.sync.ViewDirection = dir

	cam.Distance = d
	cam.Translation = vup.Scale(d).Sub(src.FocalPoint)
	cam.FocalPoint = src.FocalPoint
	cam.Position = src.FocalPoint.Sub(dir.Scale(d))
	cam.ViewUp = vup
}

func radians(degrees float32) float32 {
	return degrees * math32.Pi / 180
}

// Finalize tears down GPU resources, the eye targets, the runtime session,
// and the companion window. Safe to call more than once.
func (w *Window) Finalize() {
	if w.gl != nil {
		if err := w.MakeCurrent(); err == nil {
			w.cache.ReleaseGraphicsResources(w.gl)
			w.destroyEyes()
		}
	}
	w.cache.Clear()

	if w.runtime != nil {
		w.runtime.Shutdown()
		w.runtime = nil
	}

	w.teardownSurface()
	w.ready = false
}
