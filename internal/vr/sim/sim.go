// Package sim is an in-process VR runtime: a headset that slowly sweeps its
// gaze, a configurable number of controllers, and async model loading with
// configurable delivery delays. It exists so the render loop can run and be
// exercised without headset hardware.
package sim

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/openviz/vrbridge/internal/vr"
	"github.com/openviz/vrbridge/pkg/math"
)

// ControllerModelName is the render-model name every simulated controller
// reports.
const ControllerModelName = "sim_controller"

const standingHeight = 1.6

// Config tunes the simulated runtime.
type Config struct {
	// Controllers is the number of connected controllers.
	Controllers int
	// MeshDelayFrames is how many frames a mesh load stays in flight.
	MeshDelayFrames int
	// TextureDelayFrames is how many frames a texture load stays in flight.
	TextureDelayFrames int
}

// Simulator implements vr.Runtime and its sub-interfaces in one object.
type Simulator struct {
	cfg   Config
	frame int

	meshRequested map[string]int
	texRequested  map[int32]int

	// Submitted records the last texture handed over per eye.
	Submitted map[vr.Eye]uint32

	shutdowns int
}

// New returns a simulator with the given configuration.
func New(cfg Config) *Simulator {
	return &Simulator{
		cfg:           cfg,
		meshRequested: make(map[string]int),
		texRequested:  make(map[int32]int),
		Submitted:     make(map[vr.Eye]uint32),
	}
}

// Frame returns the number of pose waits served so far.
func (s *Simulator) Frame() int { return s.frame }

// Shutdowns returns how many times Shutdown was called.
func (s *Simulator) Shutdowns() int { return s.shutdowns }

// vr.Runtime

func (s *Simulator) System() vr.System                      { return s }
func (s *Simulator) RenderModels() (vr.RenderModels, error) { return s, nil }
func (s *Simulator) Compositor() (vr.Compositor, error)     { return s, nil }
func (s *Simulator) Shutdown()                              { s.shutdowns++ }

// vr.System

func (s *Simulator) RecommendedRenderTargetSize() (uint32, uint32) {
	return 1080, 1200
}

func (s *Simulator) DeviceConnected(i vr.DeviceIndex) bool {
	return i == vr.DeviceHMD || (i >= 1 && int(i) <= s.cfg.Controllers)
}

func (s *Simulator) DeviceClass(i vr.DeviceIndex) vr.DeviceClass {
	switch {
	case i == vr.DeviceHMD:
		return vr.ClassHMD
	case s.DeviceConnected(i):
		return vr.ClassController
	default:
		return vr.ClassInvalid
	}
}

func (s *Simulator) DeviceString(i vr.DeviceIndex, p vr.DeviceProperty) (string, error) {
	if !s.DeviceConnected(i) {
		return "", fmt.Errorf("device %d not connected", i)
	}
	switch p {
	case vr.PropTrackingSystemName:
		return "vrbridge-sim", nil
	case vr.PropSerialNumber:
		return fmt.Sprintf("SIM-%03d", i), nil
	case vr.PropRenderModelName:
		if i == vr.DeviceHMD {
			return "", fmt.Errorf("headset has no render model")
		}
		return ControllerModelName, nil
	}
	return "", fmt.Errorf("unknown property %d", p)
}

func (s *Simulator) InputFocusCapturedByAnotherProcess() bool { return false }

// vr.Compositor

// WaitGetPoses advances the simulation one frame and writes the current
// device poses. There is no real display to pace against, so it returns
// immediately.
func (s *Simulator) WaitGetPoses(poses []vr.DevicePose) error {
	s.frame++

	for i := range poses {
		poses[i] = vr.DevicePose{}
	}

	poses[vr.DeviceHMD] = vr.DevicePose{
		DeviceToTracking: s.hmdTransform(),
		Valid:            true,
		Connected:        true,
	}

	for c := 0; c < s.cfg.Controllers; c++ {
		side := float32(1)
		if c%2 == 0 {
			side = -1
		}
		m := math.Translate(side*0.2, standingHeight-0.5, -0.3)
		poses[1+c] = vr.DevicePose{
			DeviceToTracking: m,
			Valid:            true,
			Connected:        true,
		}
	}

	return nil
}

// hmdTransform sweeps the headset's yaw back and forth over a 90 degree
// arc, interpolating between the arc's endpoints so the motion eases at
// the turnaround.
func (s *Simulator) hmdTransform() math.Mat4 {
	// Triangle wave over a 240-frame period.
	const period = 240
	phase := float32(s.frame%period) / float32(period)
	t := 2 * phase
	if t > 1 {
		t = 2 - t
	}

	up := math.Vec3{Y: 1}
	left := math.QuatFromAxisAngle(up, -math32.Pi/4)
	right := math.QuatFromAxisAngle(up, math32.Pi/4)

	m := left.Slerp(right, t).ToMat4()
	m[13] = standingHeight
	return m
}

// Submit records the texture for the eye. The simulator has no display;
// recording is the whole presentation.
func (s *Simulator) Submit(eye vr.Eye, textureID uint32) error {
	s.Submitted[eye] = textureID
	return nil
}

// vr.RenderModels

// LoadRenderModelAsync serves the controller cube mesh after the
// configured number of frames has passed since the first request.
func (s *Simulator) LoadRenderModelAsync(name string) (*vr.RenderModel, error) {
	if name != ControllerModelName {
		return nil, &vr.LoadError{Code: vr.LoadErrInvalidModel, Name: name}
	}

	first, ok := s.meshRequested[name]
	if !ok {
		s.meshRequested[name] = s.frame
		first = s.frame
	}
	if s.frame-first < s.cfg.MeshDelayFrames {
		return nil, vr.ErrLoading
	}

	return controllerMesh(), nil
}

// LoadTextureAsync serves the checkerboard diffuse texture with its own
// delay, counted from the texture's first request.
func (s *Simulator) LoadTextureAsync(textureID int32) (*vr.TextureMap, error) {
	first, ok := s.texRequested[textureID]
	if !ok {
		s.texRequested[textureID] = s.frame
		first = s.frame
	}
	if s.frame-first < s.cfg.TextureDelayFrames {
		return nil, vr.ErrLoading
	}

	return checkerTexture(), nil
}

func (s *Simulator) FreeRenderModel(*vr.RenderModel) {}
func (s *Simulator) FreeTexture(*vr.TextureMap)      {}

// controllerMesh is a 10cm cube with per-face texture coordinates.
func controllerMesh() *vr.RenderModel {
	const h = 0.05

	faces := [6]struct {
		normal math.Vec3
		axisU  math.Vec3
		axisV  math.Vec3
	}{
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{X: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: 1}, math.Vec3{Z: -1}, math.Vec3{Y: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{X: 1}, math.Vec3{Z: -1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
	}

	m := &vr.RenderModel{DiffuseTextureID: 1}
	for _, f := range faces {
		base := uint16(len(m.Vertices))
		for _, uv := range [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
			u := 2*uv[0] - 1
			v := 2*uv[1] - 1
			pos := f.normal.Add(f.axisU.Scale(u)).Add(f.axisV.Scale(v)).Scale(h)
			m.Vertices = append(m.Vertices, vr.ModelVertex{
				Position: pos,
				Normal:   f.normal,
				TexCoord: uv,
			})
		}
		m.Indices = append(m.Indices,
			base, base+1, base+2,
			base, base+2, base+3)
	}
	return m
}

// checkerTexture is an 8x8 light/dark gray checkerboard.
func checkerTexture() *vr.TextureMap {
	const size = 8
	data := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			var shade byte = 0x30
			if (x+y)%2 == 0 {
				shade = 0xd0
			}
			i := (y*size + x) * 4
			data[i] = shade
			data[i+1] = shade
			data[i+2] = shade
			data[i+3] = 0xff
		}
	}
	return &vr.TextureMap{Width: size, Height: size, Data: data}
}
