package rendermodel

import (
	"testing"

	"github.com/openviz/vrbridge/internal/engine/gfx/gfxtest"
	"github.com/openviz/vrbridge/internal/vr"
	"github.com/openviz/vrbridge/pkg/math"
)

// fakeLoader implements vr.RenderModels with frame-counted async delivery.
type fakeLoader struct {
	meshDelay int
	texDelay  int
	meshErr   error
	texErr    error

	meshCalls int
	texCalls  int

	freedModels   int
	freedTextures int
}

func testMesh() *vr.RenderModel {
	return &vr.RenderModel{
		Vertices: []vr.ModelVertex{
			{Position: math.Vec3{X: 0, Y: 0, Z: 0}, TexCoord: [2]float32{0, 0}},
			{Position: math.Vec3{X: 1, Y: 0, Z: 0}, TexCoord: [2]float32{1, 0}},
			{Position: math.Vec3{X: 0, Y: 1, Z: 0}, TexCoord: [2]float32{0, 1}},
		},
		Indices:          []uint16{0, 1, 2},
		DiffuseTextureID: 7,
	}
}

func testTexture() *vr.TextureMap {
	return &vr.TextureMap{Width: 2, Height: 2, Data: make([]byte, 16)}
}

func (f *fakeLoader) LoadRenderModelAsync(name string) (*vr.RenderModel, error) {
	f.meshCalls++
	if f.meshErr != nil {
		return nil, f.meshErr
	}
	if f.meshCalls <= f.meshDelay {
		return nil, vr.ErrLoading
	}
	return testMesh(), nil
}

func (f *fakeLoader) LoadTextureAsync(textureID int32) (*vr.TextureMap, error) {
	f.texCalls++
	if f.texErr != nil {
		return nil, f.texErr
	}
	if f.texCalls <= f.texDelay {
		return nil, vr.ErrLoading
	}
	return testTexture(), nil
}

func (f *fakeLoader) FreeRenderModel(*vr.RenderModel) { f.freedModels++ }
func (f *fakeLoader) FreeTexture(*vr.TextureMap)      { f.freedTextures++ }

func validPose() vr.DevicePose {
	return vr.DevicePose{DeviceToTracking: math.Identity(), Valid: true, Connected: true}
}

func TestSlowLoadScenario(t *testing.T) {
	// Mesh arrives on the third poll, texture on the second after that.
	loader := &fakeLoader{meshDelay: 2, texDelay: 1}
	g := gfxtest.New()
	cache := NewCache()

	m := cache.FindOrLoad(loader, "tracker_1")
	if m.State() != StateMeshPending {
		t.Fatalf("state after request: got %v, want mesh pending", m.State())
	}

	// Mesh still loading: renders are no-ops.
	m.Render(g, loader, nil, validPose())
	if len(g.DrawCalls) != 0 {
		t.Error("render drew before mesh arrived")
	}

	// Mesh arrives, texture still loading.
	m.Render(g, loader, nil, validPose())
	if m.State() != StateTexturePending {
		t.Fatalf("state after mesh: got %v, want texture pending", m.State())
	}
	if len(g.DrawCalls) != 0 {
		t.Error("render drew with only the mesh present")
	}

	// Texture arrives: build then draw in the same call.
	m.Render(g, loader, nil, validPose())
	if m.State() != StateBuilt {
		t.Fatalf("state after texture: got %v, want built", m.State())
	}
	if len(g.DrawCalls) != 1 {
		t.Fatalf("expected 1 draw after build, got %d", len(g.DrawCalls))
	}
	if len(g.Programs) != 1 {
		t.Fatalf("expected 1 program, got %d", len(g.Programs))
	}
	if loader.freedModels != 1 || loader.freedTextures != 1 {
		t.Error("raw mesh/texture handles should be freed after the GPU build")
	}

	// Subsequent renders draw without rebuilding.
	m.Render(g, loader, nil, validPose())
	m.Render(g, loader, nil, validPose())
	if len(g.DrawCalls) != 3 {
		t.Errorf("expected 3 draws total, got %d", len(g.DrawCalls))
	}
	if len(g.Programs) != 1 || len(g.VertexArrays) != 1 {
		t.Error("built model must not rebuild GPU objects")
	}
}

func TestBuiltOnlyWithBothMeshAndTexture(t *testing.T) {
	loader := &fakeLoader{texDelay: 1000}
	g := gfxtest.New()
	cache := NewCache()

	m := cache.FindOrLoad(loader, "controller")
	for i := 0; i < 10; i++ {
		m.Render(g, loader, nil, validPose())
	}

	if m.State() == StateBuilt {
		t.Error("model built without a texture")
	}
	if len(g.DrawCalls) != 0 {
		t.Error("model drew without a texture")
	}
}

func TestFailedIsTerminal(t *testing.T) {
	loader := &fakeLoader{
		meshErr: &vr.LoadError{Code: vr.LoadErrInvalidModel, Name: "broken"},
	}
	g := gfxtest.New()
	cache := NewCache()

	m := cache.FindOrLoad(loader, "broken")
	if m.State() != StateFailed {
		t.Fatalf("state: got %v, want failed", m.State())
	}

	calls := loader.meshCalls
	for i := 0; i < 5; i++ {
		m.Render(g, loader, nil, validPose())
	}

	if m.State() != StateFailed {
		t.Error("model left the failed state")
	}
	if loader.meshCalls != calls {
		t.Error("failed model issued further load requests")
	}
	if len(g.DrawCalls) != 0 {
		t.Error("failed model drew")
	}
}

func TestTextureLoadFailureFailsModel(t *testing.T) {
	loader := &fakeLoader{
		texErr: &vr.LoadError{Code: vr.LoadErrInvalidTexture, Name: "controller"},
	}
	g := gfxtest.New()
	cache := NewCache()

	m := cache.FindOrLoad(loader, "controller")
	m.Render(g, loader, nil, validPose())

	if m.State() != StateFailed {
		t.Errorf("state: got %v, want failed", m.State())
	}
}

func TestNotEnoughTexCoordsFailsSilently(t *testing.T) {
	loader := &fakeLoader{
		meshErr: &vr.LoadError{Code: vr.LoadErrNotEnoughTexCoords, Name: "base_station"},
	}
	cache := NewCache()

	m := cache.FindOrLoad(loader, "base_station")
	if m.State() != StateFailed {
		t.Errorf("state: got %v, want failed", m.State())
	}
}

func TestBuildFailureFailsModel(t *testing.T) {
	loader := &fakeLoader{}
	g := gfxtest.New()
	g.ProgramErr = true
	cache := NewCache()

	m := cache.FindOrLoad(loader, "controller")
	m.Render(g, loader, nil, validPose())

	if m.State() != StateFailed {
		t.Errorf("state after GPU build failure: got %v, want failed", m.State())
	}
}

func TestDrawUniformComposesTrackingToDC(t *testing.T) {
	loader := &fakeLoader{}
	g := gfxtest.New()
	cache := NewCache()

	m := cache.FindOrLoad(loader, "controller")

	pose := validPose()
	pose.DeviceToTracking = math.Translate(1, 2, 3)
	m.Render(g, loader, nil, pose)

	got, ok := g.Uniforms["matrix"]
	if !ok {
		t.Fatal("draw did not set the pose matrix uniform")
	}
	if got != math.Translate(1, 2, 3) {
		t.Errorf("pose uniform without camera: got %v", got)
	}
}

func TestReleaseGraphicsResources(t *testing.T) {
	loader := &fakeLoader{}
	g := gfxtest.New()
	cache := NewCache()

	m := cache.FindOrLoad(loader, "controller")
	m.Render(g, loader, nil, validPose())
	if m.State() != StateBuilt {
		t.Fatalf("state: got %v, want built", m.State())
	}

	cache.ReleaseGraphicsResources(g)

	// VAO, VBO, IBO, program, texture.
	if len(g.Deleted) != 5 {
		t.Errorf("expected 5 deleted GPU objects, got %d", len(g.Deleted))
	}
}
