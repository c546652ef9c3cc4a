package rendermodel

import (
	"strings"

	"go.uber.org/zap"

	"github.com/openviz/vrbridge/internal/engine/camera"
	"github.com/openviz/vrbridge/internal/engine/gfx"
	"github.com/openviz/vrbridge/internal/logger"
	"github.com/openviz/vrbridge/internal/vr"
)

// Cache owns every device model by name and keeps a lookup-only table from
// device slot to model name. Many slots may share one cached model; the
// name-keyed map is the single owner.
type Cache struct {
	models map[string]*Model
	slots  [vr.MaxDeviceCount]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{models: make(map[string]*Model)}
}

// key normalizes model names; runtimes report them case-insensitively.
func key(name string) string { return strings.ToLower(name) }

// FindOrLoad returns the cached model for name, creating it and issuing
// the first async mesh request on first sighting. Repeat requests for the
// same name return the identical instance.
func (c *Cache) FindOrLoad(loader vr.RenderModels, name string) *Model {
	if m, ok := c.models[key(name)]; ok {
		return m
	}

	m := newModel(name)
	m.SetShow(true)
	c.models[key(name)] = m

	// Issue the initial mesh request. A fatal answer fails the model
	// permanently; it stays cached so the device is never retried.
	m.poll(loader)

	logger.Debug("render model requested",
		zap.String("model", name), zap.Stringer("state", m.state))

	return m
}

// Model returns the cached model for name, or nil.
func (c *Cache) Model(name string) *Model {
	return c.models[key(name)]
}

// Len returns the number of cached models.
func (c *Cache) Len() int { return len(c.models) }

// SlotModel returns the model bound to a device slot, or nil.
func (c *Cache) SlotModel(i vr.DeviceIndex) *Model {
	if c.slots[i] == "" {
		return nil
	}
	return c.models[c.slots[i]]
}

// RenderAll draws the models of all connected non-headset devices whose
// poses are valid. Slots without a bound model resolve their render-model
// name lazily. While another process holds input focus, controllers are
// skipped.
func (c *Cache) RenderAll(g gfx.GL, sys vr.System, loader vr.RenderModels,
	cam *camera.Camera, poses []vr.DevicePose) {

	captured := sys.InputFocusCapturedByAnotherProcess()

	for i := vr.DeviceHMD + 1; i < vr.MaxDeviceCount; i++ {
		if !sys.DeviceConnected(i) {
			continue
		}

		if c.slots[i] == "" {
			name, err := sys.DeviceString(i, vr.PropRenderModelName)
			if err != nil || name == "" {
				continue
			}
			c.FindOrLoad(loader, name)
			c.slots[i] = key(name)
		}

		model := c.models[c.slots[i]]
		if model == nil || !model.Show() {
			continue
		}

		pose := poses[i]
		if !pose.Valid {
			continue
		}

		if captured && sys.DeviceClass(i) == vr.ClassController {
			continue
		}

		model.Render(g, loader, cam, pose)
	}
}

// SetShowAll flips the show flag on every cached model.
func (c *Cache) SetShowAll(show bool) {
	for _, m := range c.models {
		m.SetShow(show)
	}
}

// ReleaseGraphicsResources deletes GPU objects for every cached model.
func (c *Cache) ReleaseGraphicsResources(g gfx.GL) {
	for _, m := range c.models {
		m.ReleaseGraphicsResources(g)
	}
}

// Clear drops every cached model and slot binding. Call after
// ReleaseGraphicsResources at shutdown.
func (c *Cache) Clear() {
	c.models = make(map[string]*Model)
	c.slots = [vr.MaxDeviceCount]string{}
}
