// Package scene defines the narrow contract the stereo window drives each
// frame, replacing any dependence on a particular scene-graph class
// hierarchy with composition.
package scene

import (
	"github.com/openviz/vrbridge/internal/engine/camera"
	"github.com/openviz/vrbridge/internal/vr"
)

// Renderer is one view into the scene. The window binds an eye framebuffer,
// then asks the renderer to draw; the pose synchronizer rewrites the active
// camera before each frame.
type Renderer interface {
	ActiveCamera() *camera.Camera
	// Render draws the scene for the given eye into the currently bound
	// framebuffer.
	Render(eye vr.Eye)
	// UpdateLightsToFollowCamera re-derives the light rig after the camera
	// moved.
	UpdateLightsToFollowCamera()
}

// Headlight is a directional light kept aligned with the camera.
type Headlight struct {
	Position  [3]float32
	Direction [3]float32
	Intensity float32
}

// BasicRenderer is a minimal Renderer: one camera, one headlight, and a
// caller-supplied draw function for scene content.
type BasicRenderer struct {
	Light Headlight

	// Draw, when set, renders the scene content for an eye.
	Draw func(eye vr.Eye)

	cam *camera.Camera
}

// NewBasicRenderer returns a renderer with a fresh camera and a full
// intensity headlight.
func NewBasicRenderer() *BasicRenderer {
	return &BasicRenderer{
		Light: Headlight{Intensity: 1},
		cam:   camera.New(),
	}
}

// ActiveCamera returns the renderer's camera.
func (r *BasicRenderer) ActiveCamera() *camera.Camera {
	return r.cam
}

// Render draws the scene content for the given eye.
func (r *BasicRenderer) Render(eye vr.Eye) {
	if r.Draw != nil {
		r.Draw(eye)
	}
}

// UpdateLightsToFollowCamera moves the headlight to the camera position,
// pointing along the view direction.
func (r *BasicRenderer) UpdateLightsToFollowCamera() {
	pos := r.cam.Position
	dir := r.cam.DirectionOfProjection()
	r.Light.Position = [3]float32{pos.X, pos.Y, pos.Z}
	r.Light.Direction = [3]float32{dir.X, dir.Y, dir.Z}
}
