// Package vr declares the surface this bridge consumes from a VR runtime:
// device poses, async render-model loading, and the presentation compositor.
// Implementations wrap a real runtime binding or, for development and tests,
// the in-process simulator under vr/sim.
package vr

import "github.com/openviz/vrbridge/pkg/math"

// MaxDeviceCount is the size of the tracked-device slot table. Runtimes
// index poses and devices by slot; slot 0 is always the headset.
const MaxDeviceCount = 64

// DeviceIndex identifies a tracked-device slot.
type DeviceIndex uint32

// DeviceHMD is the slot reserved for the headset.
const DeviceHMD DeviceIndex = 0

// DeviceClass categorizes a tracked device.
type DeviceClass int

const (
	ClassInvalid DeviceClass = iota
	ClassHMD
	ClassController
	ClassGenericTracker
	ClassTrackingReference
)

// Eye selects a stereo viewpoint.
type Eye int

const (
	EyeLeft Eye = iota
	EyeRight
)

// DeviceProperty keys the string properties queried per device.
type DeviceProperty int

const (
	PropTrackingSystemName DeviceProperty = iota
	PropSerialNumber
	PropRenderModelName
)

// DevicePose is one tracked device's transform for the current frame.
// Produced by the runtime each frame and read-only to the bridge.
type DevicePose struct {
	// DeviceToTracking maps device-local coordinates into the runtime's
	// tracking space.
	DeviceToTracking math.Mat4
	Valid            bool
	Connected        bool
}

// ModelVertex is one vertex of a device render model.
type ModelVertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord [2]float32
}

// RenderModel is the raw mesh delivered by the runtime. The runtime owns
// the data until the caller frees it via RenderModels.FreeRenderModel.
type RenderModel struct {
	Vertices         []ModelVertex
	Indices          []uint16
	DiffuseTextureID int32
}

// TextureMap is the raw RGBA8 diffuse texture delivered by the runtime.
type TextureMap struct {
	Width, Height int32
	Data          []byte
}

// System answers per-device queries.
type System interface {
	// RecommendedRenderTargetSize is the per-eye resolution the headset
	// wants rendered.
	RecommendedRenderTargetSize() (width, height uint32)
	DeviceConnected(DeviceIndex) bool
	DeviceClass(DeviceIndex) DeviceClass
	DeviceString(DeviceIndex, DeviceProperty) (string, error)
	// InputFocusCapturedByAnotherProcess reports whether another scene
	// application holds input focus; controllers are hidden while it does.
	InputFocusCapturedByAnotherProcess() bool
}

// RenderModels loads device meshes and textures asynchronously. Load calls
// never block: while a load is in flight they return ErrLoading and the
// caller polls again on a later frame.
type RenderModels interface {
	LoadRenderModelAsync(name string) (*RenderModel, error)
	LoadTextureAsync(textureID int32) (*TextureMap, error)
	FreeRenderModel(*RenderModel)
	FreeTexture(*TextureMap)
}

// Compositor owns frame timing and presentation.
type Compositor interface {
	// WaitGetPoses blocks until the runtime has a fresh pose set for the
	// coming frame, then fills poses. This is the render loop's pacing point.
	WaitGetPoses(poses []DevicePose) error
	// Submit hands one eye's resolved texture to the compositor.
	Submit(eye Eye, textureID uint32) error
}

// Runtime bundles the runtime interfaces plus shutdown.
type Runtime interface {
	System() System
	RenderModels() (RenderModels, error)
	Compositor() (Compositor, error)
	Shutdown()
}
