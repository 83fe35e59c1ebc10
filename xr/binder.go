package xr

import (
	"log/slog"

	"vr-scene/scene"
)

// Slots is the number of controller slots the binder manages.
const Slots = 2

// Binder owns the controllers and grips for both slots and routes device
// events to them. Misuse of a controller is logged, never fatal.
type Binder struct {
	Controllers [Slots]*Controller
	Grips       [Slots]*scene.Node

	// Targets holds the node each controller pointed at when its last
	// selection started, or nil when the ray hit nothing.
	Targets [Slots]*scene.Node

	root   *scene.Node
	logger *slog.Logger
}

// NewBinder creates both slots and adds their nodes to the scene root.
func NewBinder(s *scene.Scene, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Binder{root: s.Root, logger: logger}
	for slot := 0; slot < Slots; slot++ {
		b.Controllers[slot] = NewController(slot)
		b.Grips[slot] = NewGrip(slot)
		s.AddNode(b.Controllers[slot].Node)
		s.AddNode(b.Grips[slot])
	}
	return b
}

// Dispatch delivers e to the controller in slot and returns any state
// machine error after logging it.
func (b *Binder) Dispatch(slot int, e Event) error {
	if slot < 0 || slot >= Slots {
		b.logger.Warn("xr: event for unknown slot", "slot", slot, "event", e.Type)
		return ErrUnknownSlot
	}
	c := b.Controllers[slot]
	if err := c.Dispatch(e); err != nil {
		b.logger.Warn("xr: event rejected", "slot", slot, "event", e.Type, "state", c.State(), "err", err)
		return err
	}
	b.logger.Debug("xr: event", "slot", slot, "event", e.Type, "mode", e.Mode, "state", c.State())
	if e.Type == EventSelectStart {
		b.pick(slot)
	}
	return nil
}

func (b *Binder) pick(slot int) {
	c := b.Controllers[slot]
	own := make([]*scene.Node, 0, 2*Slots)
	for i := 0; i < Slots; i++ {
		own = append(own, b.Controllers[i].Node, b.Grips[i])
	}
	hit, ok := scene.Raycast(scene.RayFromNode(c.Node), b.root, own...)
	if !ok {
		b.Targets[slot] = nil
		return
	}
	b.Targets[slot] = hit.Node
	b.logger.Info("xr: selected", "slot", slot, "node", hit.Node.Name, "distance", hit.Distance)
}
