package scene

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"golang.org/x/sync/errgroup"

	"vr-scene/core"
	"vr-scene/math"
)

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// Model is the content of one .glb / .gltf file.
type Model struct {
	Roots      []*Node // top-level nodes of the default scene
	Animations []*AnimationClip
	Textures   []*Texture // need GPU upload; the renderer does it lazily
}

// LoadGLTF parses a glTF 2.0 file into nodes, meshes, PBR materials, skins
// and animation clips. Texture images are decoded in parallel; a texture that
// fails to decode is logged and left unset on its materials.
func LoadGLTF(path string, maxTextureSize int) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	model := &Model{}

	textures := loadGLTFTextures(doc, filepath.Dir(path), maxTextureSize)
	for _, tex := range textures {
		if tex != nil {
			model.Textures = append(model.Textures, tex)
		}
	}
	materials := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		materials[i] = convertGLTFMaterial(gm, textures)
	}

	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				slog.Warn("gltf: skipping primitive", "path", path, "mesh", mi, "primitive", pi, "err", err)
				continue
			}
			if prim.Material != nil && *prim.Material < len(materials) {
				m.Material = materials[*prim.Material]
			}
			meshPrims[mi] = append(meshPrims[mi], m)
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		nodes[i] = convertGLTFNode(i, gn, meshPrims)
	}
	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < len(nodes) {
				nodes[i].AddChild(nodes[childIdx])
			}
		}
	}

	skins := make([]*Skin, len(doc.Skins))
	for i, gs := range doc.Skins {
		skin, err := loadGLTFSkin(doc, gs, nodes)
		if err != nil {
			return nil, fmt.Errorf("gltf %q skin %d: %w", path, i, err)
		}
		skins[i] = skin
	}
	for i, gn := range doc.Nodes {
		if gn.Skin == nil || *gn.Skin >= len(skins) {
			continue
		}
		skin := skins[*gn.Skin]
		nodes[i].Traverse(func(n *Node) {
			if n.Mesh != nil && (n == nodes[i] || n.Parent == nodes[i]) {
				n.Mesh.Skin = skin
			}
		})
	}

	for i, ga := range doc.Animations {
		clip, err := loadGLTFAnimation(doc, i, ga, nodes)
		if err != nil {
			return nil, fmt.Errorf("gltf %q: %w", path, err)
		}
		model.Animations = append(model.Animations, clip)
	}

	model.Roots = gltfSceneRoots(doc, nodes)
	return model, nil
}

func loadGLTFTextures(doc *gltf.Document, dir string, maxSize int) []*Texture {
	textures := make([]*Texture, len(doc.Textures))
	var g errgroup.Group
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("gltf_img_%d", *gt.Source)
		}

		switch {
		case img.BufferView != nil:
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				slog.Warn("gltf: image buffer view", "image", *gt.Source, "err", err)
				continue
			}
			g.Go(func() error {
				decoded, _, err := image.Decode(bytes.NewReader(raw))
				if err != nil {
					slog.Warn("gltf: image decode", "image", name, "err", err)
					return nil
				}
				textures[i] = NewTextureFromImage(name, decoded, maxSize)
				return nil
			})
		case img.URI != "" && !img.IsEmbeddedResource():
			g.Go(func() error {
				tex, err := LoadTexture(filepath.Join(dir, img.URI), maxSize)
				if err != nil {
					slog.Warn("gltf: image load", "uri", img.URI, "err", err)
					return nil
				}
				textures[i] = tex
				return nil
			})
		}
	}
	_ = g.Wait()
	return textures
}

func convertGLTFMaterial(gm *gltf.Material, textures []*Texture) *Material {
	lookup := func(idx int) *Texture {
		if idx >= 0 && idx < len(textures) {
			return textures[idx]
		}
		return nil
	}

	mat := NewStandardMaterial(gm.Name)
	mat.DoubleSided = gm.DoubleSided
	if gm.AlphaMode == gltf.AlphaBlend {
		mat.Transparent = true
	}

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.Albedo = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
		mat.Opacity = float32(cf[3])
		mat.Metallic = float32(pbr.MetallicFactorOrDefault())
		mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
		if pbr.BaseColorTexture != nil {
			mat.AlbedoMap = lookup(pbr.BaseColorTexture.Index)
			if mat.AlbedoMap != nil {
				mat.AlbedoMap.SRGB = true
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			mr := lookup(pbr.MetallicRoughnessTexture.Index)
			mat.RoughnessMap = mr
			mat.MetalnessMap = mr
		}
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		mat.NormalMap = lookup(*gm.NormalTexture.Index)
	}
	if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
		mat.AOMap = lookup(*gm.OcclusionTexture.Index)
	}
	ef := gm.EmissiveFactor
	mat.Emissive = core.Color{R: float32(ef[0]), G: float32(ef[1]), B: float32(ef[2]), A: 1}
	if gm.EmissiveTexture != nil {
		mat.EmissiveMap = lookup(gm.EmissiveTexture.Index)
		if mat.EmissiveMap != nil {
			mat.EmissiveMap.SRGB = true
		}
	}
	return mat
}

func convertGLTFNode(i int, gn *gltf.Node, meshPrims [][]*Mesh) *Node {
	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", i)
	}
	n := NewNode(name)

	if gn.Matrix != [16]float64{} && gn.Matrix != identityMatrix {
		var s [16]float32
		for k, v := range gn.Matrix {
			s[k] = float32(v)
		}
		t, r, sc := math.Mat4FromSlice(s[:]).Decompose()
		n.Transform.Position, n.Transform.Rotation, n.Transform.Scale = t, r, sc
	} else {
		t := gn.TranslationOrDefault()
		r := gn.RotationOrDefault() // [x, y, z, w]
		sc := gn.ScaleOrDefault()
		n.Transform.Position = math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])}
		n.Transform.Rotation = math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
		n.Transform.Scale = math.Vec3{X: float32(sc[0]), Y: float32(sc[1]), Z: float32(sc[2])}
	}

	if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
		prims := meshPrims[*gn.Mesh]
		if len(prims) == 1 {
			n.Mesh = prims[0]
		} else {
			for pi, p := range prims {
				n.AddChild(NewMeshNode(fmt.Sprintf("%s_prim%d", name, pi), p))
			}
		}
	}
	return n
}

func gltfSceneRoots(doc *gltf.Document, nodes []*Node) []*Node {
	var roots []*Node
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if rootIdx < len(nodes) {
				roots = append(roots, nodes[rootIdx])
			}
		}
		return roots
	}
	for _, n := range nodes {
		if n.Parent == nil {
			roots = append(roots, n)
		}
	}
	return roots
}

// loadGLTFPrimitive converts one glTF mesh primitive into a scene.Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	var joints [][4]uint16
	var weights [][4]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes[gltf.JOINTS_0]; ok {
		if joints, err = modeler.ReadJoints(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("joints: %w", err)
		}
	}
	if idx, ok := prim.Attributes[gltf.WEIGHTS_0]; ok {
		if weights, err = modeler.ReadWeights(doc, doc.Accessors[idx], nil); err != nil {
			return nil, fmt.Errorf("weights: %w", err)
		}
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3FromArray(p),
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			v.Normal = math.Vec3FromArray(normals[i])
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		if i < len(joints) && i < len(weights) {
			for k := 0; k < 4; k++ {
				v.Joints[k] = float32(joints[i][k])
			}
			v.Weights = weights[i]
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(verts))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	m := CreateMeshFromData(name, verts, indices)
	if prim.Mode == gltf.PrimitiveLines {
		m.DrawMode = DrawLines
	} else {
		ComputeTangents(m)
	}
	return m, nil
}

func loadGLTFSkin(doc *gltf.Document, gs *gltf.Skin, nodes []*Node) (*Skin, error) {
	if len(gs.Joints) > MaxJoints {
		slog.Warn("gltf: skin exceeds joint limit, extra joints ignored by the renderer",
			"skin", gs.Name, "joints", len(gs.Joints), "max", MaxJoints)
	}
	skin := &Skin{Name: gs.Name}
	for _, j := range gs.Joints {
		if j >= len(nodes) {
			return nil, fmt.Errorf("joint node %d out of range", j)
		}
		skin.Joints = append(skin.Joints, nodes[j])
	}
	if gs.InverseBindMatrices != nil {
		data, err := modeler.ReadAccessor(doc, doc.Accessors[*gs.InverseBindMatrices], nil)
		if err != nil {
			return nil, fmt.Errorf("inverse bind matrices: %w", err)
		}
		mats, ok := data.([][4][4]float32)
		if !ok {
			return nil, fmt.Errorf("inverse bind matrices: unexpected type %T", data)
		}
		// glTF stores column-major column-vector matrices, which is the same
		// memory layout as a row-major row-vector Mat4.
		for _, m := range mats {
			skin.InverseBindMatrices = append(skin.InverseBindMatrices, math.Mat4(m))
		}
	}
	return skin, nil
}

func loadGLTFAnimation(doc *gltf.Document, idx int, ga *gltf.Animation, nodes []*Node) (*AnimationClip, error) {
	name := ga.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", idx)
	}

	var channels []*AnimationChannel
	for ci, gc := range ga.Channels {
		if gc.Target.Node == nil || *gc.Target.Node >= len(nodes) {
			continue
		}
		var path AnimationPath
		switch gc.Target.Path {
		case gltf.TRSTranslation:
			path = PathTranslation
		case gltf.TRSRotation:
			path = PathRotation
		case gltf.TRSScale:
			path = PathScale
		default:
			// morph target weights are not supported
			continue
		}
		if gc.Sampler < 0 || gc.Sampler >= len(ga.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler %d", name, ci, gc.Sampler)
		}
		gs := ga.Samplers[gc.Sampler]

		input, err := modeler.ReadAccessor(doc, doc.Accessors[gs.Input], nil)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: times: %w", name, ci, err)
		}
		times, ok := input.([]float32)
		if !ok {
			return nil, fmt.Errorf("animation %q channel %d: times have type %T", name, ci, input)
		}
		output, err := modeler.ReadAccessor(doc, doc.Accessors[gs.Output], nil)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: values: %w", name, ci, err)
		}
		values, err := flattenKeyValues(output)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: %w", name, ci, err)
		}

		interp := InterpolationLinear
		switch gs.Interpolation {
		case gltf.InterpolationStep:
			interp = InterpolationStep
		case gltf.InterpolationCubicSpline:
			interp = InterpolationCubicSpline
		}

		perKey := path.components()
		if interp == InterpolationCubicSpline {
			perKey *= 3
		}
		if len(times) == 0 || len(values) < len(times)*perKey {
			return nil, fmt.Errorf("animation %q channel %d: %d values for %d keys", name, ci, len(values), len(times))
		}

		channels = append(channels, &AnimationChannel{
			Target:        nodes[*gc.Target.Node],
			Path:          path,
			Interpolation: interp,
			Times:         times,
			Values:        values,
		})
	}
	return NewAnimationClip(name, channels), nil
}

// flattenKeyValues converts accessor output to float32s, normalizing the
// integer encodings glTF allows for rotations.
func flattenKeyValues(data any) ([]float32, error) {
	switch v := data.(type) {
	case [][3]float32:
		out := make([]float32, 0, len(v)*3)
		for _, e := range v {
			out = append(out, e[:]...)
		}
		return out, nil
	case [][4]float32:
		out := make([]float32, 0, len(v)*4)
		for _, e := range v {
			out = append(out, e[:]...)
		}
		return out, nil
	case [][4]int8:
		return normalizeKeys(v, func(c int8) float32 { return max(float32(c)/127, -1) }), nil
	case [][4]uint8:
		return normalizeKeys(v, func(c uint8) float32 { return float32(c) / 255 }), nil
	case [][4]int16:
		return normalizeKeys(v, func(c int16) float32 { return max(float32(c)/32767, -1) }), nil
	case [][4]uint16:
		return normalizeKeys(v, func(c uint16) float32 { return float32(c) / 65535 }), nil
	}
	return nil, fmt.Errorf("unsupported keyframe value type %T", data)
}

func normalizeKeys[T int8 | uint8 | int16 | uint16](keys [][4]T, norm func(T) float32) []float32 {
	out := make([]float32, 0, len(keys)*4)
	for _, k := range keys {
		for _, c := range k {
			out = append(out, norm(c))
		}
	}
	return out
}
