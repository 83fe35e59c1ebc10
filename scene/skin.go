package scene

import "vr-scene/math"

// MaxJoints is the largest skin the renderer can deform on the GPU.
const MaxJoints = 64

// Skin binds a mesh to a joint hierarchy.
type Skin struct {
	Name                string
	Joints              []*Node
	InverseBindMatrices []math.Mat4
}

// JointMatrices returns, per joint, inverseBind * jointWorld * meshWorld^-1.
// A vertex skinned by these and then transformed by meshWorld lands where
// the joints put it, regardless of the mesh node's own transform.
func (s *Skin) JointMatrices(meshWorld math.Mat4) []math.Mat4 {
	inv := meshWorld.Inverse()
	out := make([]math.Mat4, len(s.Joints))
	for i, j := range s.Joints {
		ibm := math.Mat4Identity()
		if i < len(s.InverseBindMatrices) {
			ibm = s.InverseBindMatrices[i]
		}
		out[i] = ibm.Mul(j.GetWorldMatrix()).Mul(inv)
	}
	return out
}
