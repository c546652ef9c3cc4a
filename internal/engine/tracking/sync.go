// Package tracking synchronizes HMD pose data into scene cameras. The
// per-frame pose fetch is the render loop's only blocking point; the
// camera update itself is pure math.
package tracking

import (
	"github.com/openviz/vrbridge/internal/engine/camera"
	"github.com/openviz/vrbridge/internal/engine/scene"
	"github.com/openviz/vrbridge/internal/vr"
	"github.com/openviz/vrbridge/pkg/math"
)

// Synchronizer owns the per-frame tracked-device pose array and the
// convention mapping tracking axes into the scene.
type Synchronizer struct {
	// ViewUp and ViewDirection define how the tracking space's Y-up,
	// -Z-forward convention is oriented in the scene.
	ViewUp        math.Vec3
	ViewDirection math.Vec3

	poses [vr.MaxDeviceCount]vr.DevicePose
}

// New returns a synchronizer with the default view convention: scene up is
// +Y, scene forward is -Z.
func New() *Synchronizer {
	return &Synchronizer{
		ViewUp:        math.Vec3{Y: 1},
		ViewDirection: math.Vec3{Z: -1},
	}
}

// WaitPoses blocks until the compositor delivers a fresh pose set for the
// coming frame, then stores it. This paces the render loop to the headset's
// refresh.
func (s *Synchronizer) WaitPoses(c vr.Compositor) error {
	return c.WaitGetPoses(s.poses[:])
}

// Poses returns the current frame's pose array, indexed by device slot.
func (s *Synchronizer) Poses() []vr.DevicePose {
	return s.poses[:]
}

// SetPose overwrites one slot's pose. Intended for tests and tools; the
// render loop populates poses through WaitPoses.
func (s *Synchronizer) SetPose(i vr.DeviceIndex, p vr.DevicePose) {
	s.poses[i] = p
}

// HMDPose returns the headset's pose for the current frame.
func (s *Synchronizer) HMDPose() vr.DevicePose {
	return s.poses[vr.DeviceHMD]
}

// UpdateCamera rewrites the camera from the headset pose. When the pose is
// invalid this frame the camera is left exactly as it was: no jump, no
// error. Reports whether the camera was updated.
func (s *Synchronizer) UpdateCamera(cam *camera.Camera) bool {
	hmd := s.HMDPose()
	if !hmd.Valid {
		return false
	}

	vup := s.ViewUp
	vdir := s.ViewDirection
	vright := vdir.Cross(vup)

	// Headset-local axes and position in tracking space.
	hright := hmd.DeviceToTracking.Right()
	hup := hmd.DeviceToTracking.Up()
	hpos := hmd.DeviceToTracking.Position()

	// Tracking space to world: x along view-right, y along view-up,
	// z against the view direction.
	toWorld := func(v math.Vec3) math.Vec3 {
		return vright.Scale(v.X).Add(vup.Scale(v.Y)).Sub(vdir.Scale(v.Z))
	}

	pos := toWorld(hpos).Scale(cam.Distance).Sub(cam.Translation)

	fright := toWorld(hright)
	fup := toWorld(hup)
	fdir := fup.Cross(fright)

	cam.Position = pos
	cam.FocalPoint = pos.Add(fdir.Scale(cam.Distance))
	cam.ViewUp = fup

	return true
}

// Apply updates every renderer's active camera from the headset pose and
// re-derives its light rig. Renderers without a camera are skipped.
func (s *Synchronizer) Apply(renderers []scene.Renderer) {
	if !s.HMDPose().Valid {
		return
	}
	for _, r := range renderers {
		cam := r.ActiveCamera()
		if cam == nil {
			continue
		}
		if s.UpdateCamera(cam) {
			r.UpdateLightsToFollowCamera()
		}
	}
}
