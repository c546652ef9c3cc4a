package camera

import (
	"testing"

	"github.com/openviz/vrbridge/internal/vr"
	"github.com/openviz/vrbridge/pkg/math"
)

func TestApplyEyePoseShiftsAlongRight(t *testing.T) {
	c := New()
	c.Position = math.Vec3{}
	c.FocalPoint = math.Vec3{Z: -1}
	c.ViewUp = math.Vec3{Y: 1}
	c.EyeSeparation = 0.06
	c.Distance = 1

	// Looking down -Z with +Y up, right is +X.
	c.ApplyEyePose(vr.EyeRight)
	if got, want := c.Position.X, float32(0.03); abs(got-want) > 1e-6 {
		t.Errorf("right eye X: got %f, want %f", got, want)
	}

	// Applying the other eye replaces the shift, it does not stack.
	c.ApplyEyePose(vr.EyeLeft)
	if got, want := c.Position.X, float32(-0.03); abs(got-want) > 1e-6 {
		t.Errorf("left eye X: got %f, want %f", got, want)
	}
}

func TestResetEyePoseRestoresNeutral(t *testing.T) {
	c := New()
	c.Position = math.Vec3{X: 1, Y: 2, Z: 3}
	c.FocalPoint = math.Vec3{X: 1, Y: 2, Z: 2}
	before := c.Position
	beforeFocal := c.FocalPoint

	c.ApplyEyePose(vr.EyeLeft)
	c.ResetEyePose()

	if c.Position != before {
		t.Errorf("position after reset: got %v, want %v", c.Position, before)
	}
	if c.FocalPoint != beforeFocal {
		t.Errorf("focal point after reset: got %v, want %v", c.FocalPoint, beforeFocal)
	}

	// Reset with no applied pose is a no-op.
	c.ResetEyePose()
	if c.Position != before {
		t.Error("double reset moved the camera")
	}
}

func TestEyeShiftScalesWithDistance(t *testing.T) {
	c := New()
	c.Position = math.Vec3{}
	c.FocalPoint = math.Vec3{Z: -1}
	c.EyeSeparation = 0.06
	c.Distance = 100

	c.ApplyEyePose(vr.EyeRight)
	if got, want := c.Position.X, float32(3); abs(got-want) > 1e-4 {
		t.Errorf("scaled eye shift: got %f, want %f", got, want)
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
