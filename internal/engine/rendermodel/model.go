// Package rendermodel loads and draws the 3D models of tracked VR devices.
// Loading is asynchronous at the runtime level: requests are issued once and
// polled across frames from the render thread, never blocking it.
package rendermodel

import (
	"go.uber.org/zap"

	"github.com/openviz/vrbridge/internal/engine/camera"
	"github.com/openviz/vrbridge/internal/engine/gfx"
	"github.com/openviz/vrbridge/internal/logger"
	"github.com/openviz/vrbridge/internal/vr"
)

// State tracks a model's progress through its async load.
type State int

const (
	StateUnrequested State = iota
	StateMeshPending
	StateTexturePending
	StateBuilt
	// StateFailed is terminal: a failed device is never retried.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnrequested:
		return "unrequested"
	case StateMeshPending:
		return "mesh pending"
	case StateTexturePending:
		return "texture pending"
	case StateBuilt:
		return "built"
	default:
		return "failed"
	}
}

const modelVertexShader = `#version 410
uniform mat4 matrix;
layout(location = 0) in vec3 position;
layout(location = 1) in vec2 texCoordIn;
out vec2 texCoord;
void main() {
	texCoord = texCoordIn;
	gl_Position = matrix * vec4(position, 1.0);
}
`

const modelFragmentShader = `#version 410
uniform sampler2D diffuse;
in vec2 texCoord;
out vec4 outputColor;
void main() {
	outputColor = texture(diffuse, texCoord);
}
`

// Model is one device's visual representation. Raw mesh/texture data is
// owned by the runtime until consumed; the GPU objects are owned by the
// model once built.
type Model struct {
	name  string
	state State
	show  bool

	rawModel   *vr.RenderModel
	rawTexture *vr.TextureMap

	vao        uint32
	vbo        uint32
	ibo        uint32
	program    uint32
	texture    uint32
	indexCount int32
}

func newModel(name string) *Model {
	return &Model{name: name, state: StateUnrequested}
}

// Name returns the model's runtime name (the cache key).
func (m *Model) Name() string { return m.name }

// State returns the load state.
func (m *Model) State() State { return m.state }

// Show reports whether the model should be drawn when its pose is valid.
func (m *Model) Show() bool { return m.show }

// SetShow sets the show flag.
func (m *Model) SetShow(v bool) { m.show = v }

func (m *Model) fail(code vr.LoadErrorCode, context string) {
	m.state = StateFailed
	m.rawModel = nil
	m.rawTexture = nil
	if code.Silent() {
		return
	}
	logger.Error("render model load failed",
		zap.String("model", m.name),
		zap.String("stage", context),
		zap.Stringer("code", code),
	)
}

// poll advances the async load without blocking. Transient "still loading"
// results leave the state unchanged for the next frame's poll.
func (m *Model) poll(loader vr.RenderModels) {
	if m.state == StateUnrequested || m.state == StateMeshPending {
		raw, err := loader.LoadRenderModelAsync(m.name)
		if err != nil {
			if code := vr.CodeOf(err); !code.Transient() {
				m.fail(code, "mesh")
			} else {
				m.state = StateMeshPending
			}
			return
		}
		m.rawModel = raw
		m.state = StateTexturePending
	}

	if m.state == StateTexturePending && m.rawTexture == nil {
		tex, err := loader.LoadTextureAsync(m.rawModel.DiffuseTextureID)
		if err != nil {
			if code := vr.CodeOf(err); !code.Transient() {
				m.fail(code, "texture")
			}
			return
		}
		m.rawTexture = tex
	}
}

// build uploads the mesh and texture into GPU objects. Vertex layout is
// interleaved position (3 floats) + texcoord (2 floats).
func (m *Model) build(g gfx.GL) error {
	raw := m.rawModel

	verts := make([]float32, 0, len(raw.Vertices)*5)
	for _, v := range raw.Vertices {
		verts = append(verts,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.TexCoord[0], v.TexCoord[1])
	}

	m.vao = g.NewVertexArray()
	g.BindVertexArray(m.vao)
	m.vbo = g.NewArrayBuffer(verts)
	m.ibo = g.NewElementBuffer(raw.Indices)
	g.VertexAttrib(0, 3, 5*4, 0)
	g.VertexAttrib(1, 2, 5*4, 3*4)
	g.BindVertexArray(0)

	program, err := g.NewProgram(modelVertexShader, modelFragmentShader)
	if err != nil {
		return err
	}
	m.program = program

	m.texture = g.NewTexture2D(m.rawTexture.Width, m.rawTexture.Height, m.rawTexture.Data)
	m.indexCount = int32(len(raw.Indices))

	return nil
}

// Render advances the load state machine and, once the model is built,
// draws it with the device pose composed through the camera's
// tracking-to-device-coordinates matrix. Failed models are a permanent
// no-op.
func (m *Model) Render(g gfx.GL, loader vr.RenderModels, cam *camera.Camera, pose vr.DevicePose) {
	switch m.state {
	case StateFailed:
		return
	case StateBuilt:
		m.draw(g, cam, pose)
		return
	}

	m.poll(loader)

	// Mesh and texture both arrived this frame: build and draw now.
	if m.state == StateTexturePending && m.rawTexture != nil {
		if err := m.build(g); err != nil {
			logger.Error("render model GPU build failed",
				zap.String("model", m.name), zap.Error(err))
			m.state = StateFailed
			return
		}
		loader.FreeRenderModel(m.rawModel)
		loader.FreeTexture(m.rawTexture)
		m.rawModel = nil
		m.rawTexture = nil
		m.state = StateBuilt

		logger.Debug("render model built", zap.String("model", m.name))
		m.draw(g, cam, pose)
	}
}

func (m *Model) draw(g gfx.GL, cam *camera.Camera, pose vr.DevicePose) {
	g.UseProgram(m.program)
	g.BindVertexArray(m.vao)
	g.BindTexture2D(0, m.texture)
	g.SetUniformInt(m.program, "diffuse", 0)

	matrix := pose.DeviceToTracking
	if cam != nil {
		matrix = cam.TrackingToDC().Mul(pose.DeviceToTracking)
	}
	g.SetUniformMatrix(m.program, "matrix", &matrix)

	g.DrawIndexedTriangles(m.indexCount)
	g.BindVertexArray(0)
}

// ReleaseGraphicsResources deletes the model's GPU objects. The owning
// context must be current.
func (m *Model) ReleaseGraphicsResources(g gfx.GL) {
	if m.vao != 0 {
		g.DeleteVertexArray(m.vao)
		m.vao = 0
	}
	if m.vbo != 0 {
		g.DeleteBuffer(m.vbo)
		m.vbo = 0
	}
	if m.ibo != 0 {
		g.DeleteBuffer(m.ibo)
		m.ibo = 0
	}
	if m.program != 0 {
		g.DeleteProgram(m.program)
		m.program = 0
	}
	if m.texture != 0 {
		g.DeleteTexture(m.texture)
		m.texture = 0
	}
}
