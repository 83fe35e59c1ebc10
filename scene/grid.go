package scene

import (
	"vr-scene/core"
	"vr-scene/math"
)

// CreateGrid builds a line grid on the XZ plane spanning -size/2..size/2,
// with the centre lines highlighted. It is drawn unlit with vertex colours.
func CreateGrid(size float32, divisions int, lineColor, centerColor core.Color) *Mesh {
	if divisions < 1 {
		divisions = 1
	}
	half := size / 2
	step := size / float32(divisions)

	var vertices []core.Vertex
	var indices []uint32
	addLine := func(a, b math.Vec3, c core.Color) {
		base := uint32(len(vertices))
		vertices = append(vertices,
			core.Vertex{Position: a, Normal: math.Vec3Up, Color: c},
			core.Vertex{Position: b, Normal: math.Vec3Up, Color: c},
		)
		indices = append(indices, base, base+1)
	}

	for i := 0; i <= divisions; i++ {
		d := -half + float32(i)*step
		c := lineColor
		if i*2 == divisions {
			c = centerColor
		}
		addLine(math.Vec3{X: d, Z: -half}, math.Vec3{X: d, Z: half}, c)
		addLine(math.Vec3{X: -half, Z: d}, math.Vec3{X: half, Z: d}, c)
	}

	m := CreateMeshFromData("Grid", vertices, indices)
	m.DrawMode = DrawLines
	m.Material = NewLineMaterial("GridMaterial")
	return m
}
