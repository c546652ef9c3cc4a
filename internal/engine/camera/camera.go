// Package camera provides the HMD-driven camera used by the stereo window.
package camera

import (
	"github.com/openviz/vrbridge/internal/vr"
	"github.com/openviz/vrbridge/pkg/math"
)

// Camera holds the view state the pose synchronizer rewrites every frame,
// plus the user-applied scale and translation that map physical tracking
// space into the scene.
type Camera struct {
	Position   math.Vec3
	FocalPoint math.Vec3
	ViewUp     math.Vec3

	// ViewAngle is the vertical field of view in degrees.
	ViewAngle float32

	// Distance scales physical (meter) tracking coordinates into world
	// units.
	Distance float32

	// Translation offsets the scaled tracking position into the scene.
	Translation math.Vec3

	// EyeSeparation is the interpupillary distance in physical meters.
	EyeSeparation float32

	trackingToDC math.Mat4
	eyeShift     math.Vec3
}

// New returns a camera with HMD-appropriate defaults.
func New() *Camera {
	return &Camera{
		FocalPoint:    math.Vec3{Z: -1},
		ViewUp:        math.Vec3{Y: 1},
		ViewAngle:     110,
		Distance:      1,
		EyeSeparation: 0.065,
		trackingToDC:  math.Identity(),
	}
}

// TrackingToDC returns the matrix mapping tracking space into device
// coordinates; device render models compose their pose with it.
func (c *Camera) TrackingToDC() math.Mat4 {
	return c.trackingToDC
}

// SetTrackingToDC replaces the tracking-to-device-coordinates matrix.
func (c *Camera) SetTrackingToDC(m math.Mat4) {
	c.trackingToDC = m
}

// DirectionOfProjection returns the normalized view direction.
func (c *Camera) DirectionOfProjection() math.Vec3 {
	return c.FocalPoint.Sub(c.Position).Normalize()
}

// DistanceToFocal returns the distance from position to focal point.
func (c *Camera) DistanceToFocal() float32 {
	return c.Position.Distance(c.FocalPoint)
}

// ApplyEyePose shifts the viewpoint sideways for the given eye. The shift
// replaces any previously applied eye offset.
func (c *Camera) ApplyEyePose(eye vr.Eye) {
	c.ResetEyePose()

	right := c.DirectionOfProjection().Cross(c.ViewUp).Normalize()
	half := c.EyeSeparation / 2 * c.Distance
	if eye == vr.EyeLeft {
		half = -half
	}

	c.eyeShift = right.Scale(half)
	c.Position = c.Position.Add(c.eyeShift)
	c.FocalPoint = c.FocalPoint.Add(c.eyeShift)
}

// ResetEyePose restores the neutral (cyclopean) viewpoint.
func (c *Camera) ResetEyePose() {
	if c.eyeShift == (math.Vec3{}) {
		return
	}
	c.Position = c.Position.Sub(c.eyeShift)
	c.FocalPoint = c.FocalPoint.Sub(c.eyeShift)
	c.eyeShift = math.Vec3{}
}
