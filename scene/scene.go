package scene

import (
	"vr-scene/core"
	"vr-scene/math"
)

// Scene owns the node graph, the lights and the background.
type Scene struct {
	Root       *Node
	Lights     []*Light
	Ambient    core.Color
	ClearColor core.Color
	// Background is drawn behind all geometry when set.
	Background *CubeMap
}

// Light is a point light. Range 0 means no cutoff (inverse-square falloff only).
type Light struct {
	Position   math.Vec3
	Color      core.Color
	Intensity  float32
	Range      float32
	CastShadow bool
}

func NewPointLight(color uint32, intensity float32, position math.Vec3) *Light {
	return &Light{
		Position:  position,
		Color:     core.ColorFromHex(color),
		Intensity: intensity,
	}
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Lights:     make([]*Light, 0),
		Ambient:    core.Color{R: 0.05, G: 0.05, B: 0.05, A: 1.0},
		ClearColor: core.Color{R: 0.02, G: 0.02, B: 0.03, A: 1.0},
	}
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) RemoveNode(node *Node) {
	s.Root.RemoveChild(node)
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

// ShadowLight returns the first light that casts shadows, or nil.
func (s *Scene) ShadowLight() *Light {
	for _, l := range s.Lights {
		if l.CastShadow {
			return l
		}
	}
	return nil
}

// GetVisibleNodes returns all nodes with meshes that are visible
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil {
			visible = append(visible, n)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(s.Root)
	return visible
}
