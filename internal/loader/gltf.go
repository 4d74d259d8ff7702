package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/normanking/heroavatar/internal/scene"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Load opens a .glb/.gltf file and imports it. onProgress may be nil.
func Load(ctx context.Context, path string, onProgress func(Progress)) (*Asset, error) {
	report := progressFunc(onProgress)
	report(Progress{Stage: StageOpen})

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	asset, err := importDocument(ctx, doc, filepath.Dir(path), report)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	asset.Path = path
	return asset, nil
}

// FromDocument imports an already parsed document. External image URIs are
// resolved against dir.
func FromDocument(ctx context.Context, doc *gltf.Document, dir string) (*Asset, error) {
	return importDocument(ctx, doc, dir, progressFunc(nil))
}

func progressFunc(fn func(Progress)) func(Progress) {
	if fn == nil {
		return func(Progress) {}
	}
	return fn
}

type importer struct {
	doc    *gltf.Document
	dir    string
	nodes  []*scene.Node
	skins  []*scene.Skin
	report func(Progress)
}

func importDocument(ctx context.Context, doc *gltf.Document, dir string, report func(Progress)) (*Asset, error) {
	if len(doc.Nodes) == 0 {
		return nil, ErrNoScene
	}

	im := &importer{doc: doc, dir: dir, report: report}

	graph, err := im.buildGraph()
	if err != nil {
		return nil, err
	}
	asset := &Asset{Graph: graph}

	steps := []struct {
		stage Stage
		run   func(*Asset) error
	}{
		{StageSkins, im.importSkins},
		{StageMeshes, im.importMeshes},
		{StageClips, im.importClips},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.run(asset); err != nil {
			return nil, fmt.Errorf("%s: %w", s.stage, err)
		}
	}

	report(Progress{Stage: StageDone, Done: 1, Total: 1})
	return asset, nil
}

func (im *importer) buildGraph() (*scene.Graph, error) {
	doc := im.doc
	im.nodes = make([]*scene.Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := scene.NewNode(name)
		n.Index = i
		applyNodeTransform(n, gn)
		im.nodes[i] = n
		im.report(Progress{Stage: StageNodes, Done: i + 1, Total: len(doc.Nodes)})
	}

	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < 0 || c >= len(im.nodes) || c == i {
				return nil, fmt.Errorf("node %d: invalid child index %d", i, c)
			}
			im.nodes[i].Add(im.nodes[c])
		}
	}

	name := "character"
	var roots []int
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		s := doc.Scenes[idx]
		if s.Name != "" {
			name = s.Name
		}
		roots = s.Nodes
	} else {
		for i, n := range im.nodes {
			if n.Parent == nil {
				roots = append(roots, i)
			}
		}
	}
	if len(roots) == 0 {
		return nil, ErrNoScene
	}

	graph := scene.NewGraph(name)
	for _, r := range roots {
		if r < 0 || r >= len(im.nodes) {
			return nil, fmt.Errorf("scene root %d out of range", r)
		}
		graph.Root.Add(im.nodes[r])
	}
	graph.Update()
	return graph, nil
}

func applyNodeTransform(n *scene.Node, gn *gltf.Node) {
	m := gn.MatrixOrDefault()
	if m != identityMatrix {
		var mat mgl32.Mat4
		for i := range m {
			mat[i] = float32(m[i])
		}
		decompose(n, mat)
		return
	}

	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	n.Translation = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	n.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	n.SetQuat(mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}})
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// decompose splits a column-major TRS matrix. Shear is discarded.
func decompose(n *scene.Node, m mgl32.Mat4) {
	n.Translation = mgl32.Vec3{m[12], m[13], m[14]}

	sx := mgl32.Vec3{m[0], m[1], m[2]}.Len()
	sy := mgl32.Vec3{m[4], m[5], m[6]}.Len()
	sz := mgl32.Vec3{m[8], m[9], m[10]}.Len()
	if m.Det() < 0 {
		sx = -sx
	}
	n.Scale = mgl32.Vec3{sx, sy, sz}

	rot := mgl32.Ident4()
	for col, s := range []float32{sx, sy, sz} {
		if s == 0 {
			continue
		}
		for row := 0; row < 3; row++ {
			rot[col*4+row] = m[col*4+row] / s
		}
	}
	n.SetQuat(mgl32.Mat4ToQuat(rot))
}

func (im *importer) importSkins(asset *Asset) error {
	doc := im.doc
	im.skins = make([]*scene.Skin, len(doc.Skins))
	for i, gs := range doc.Skins {
		skin := &scene.Skin{Name: gs.Name}
		for _, j := range gs.Joints {
			if j < 0 || j >= len(im.nodes) {
				return fmt.Errorf("skin %d: invalid joint node %d", i, j)
			}
			skin.Joints = append(skin.Joints, im.nodes[j])
		}
		if len(skin.Joints) > scene.MaxJoints {
			return fmt.Errorf("skin %d: %d joints exceeds limit of %d", i, len(skin.Joints), scene.MaxJoints)
		}

		if gs.InverseBindMatrices != nil {
			ibm, err := im.readMat4(*gs.InverseBindMatrices)
			if err != nil {
				return fmt.Errorf("skin %d inverse bind matrices: %w", i, err)
			}
			skin.InverseBind = ibm
		}

		im.skins[i] = skin
		asset.Skins = append(asset.Skins, skin)
		im.report(Progress{Stage: StageSkins, Done: i + 1, Total: len(doc.Skins)})
	}
	return nil
}

func (im *importer) readMat4(accessor int) ([]mgl32.Mat4, error) {
	acr, err := im.accessor(accessor)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(im.doc, acr, nil)
	if err != nil {
		return nil, err
	}
	raw, ok := data.([][4][4]float32)
	if !ok {
		return nil, fmt.Errorf("accessor %d: want float MAT4, got %T", accessor, data)
	}
	out := make([]mgl32.Mat4, len(raw))
	for i, cols := range raw {
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				out[i][c*4+r] = cols[c][r]
			}
		}
	}
	return out, nil
}

func (im *importer) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(im.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return im.doc.Accessors[idx], nil
}

func (im *importer) importMeshes(asset *Asset) error {
	doc := im.doc
	total := 0
	for _, gn := range doc.Nodes {
		if gn.Mesh != nil {
			total++
		}
	}

	done := 0
	for i, gn := range doc.Nodes {
		if gn.Mesh == nil {
			continue
		}
		if *gn.Mesh < 0 || *gn.Mesh >= len(doc.Meshes) {
			return fmt.Errorf("node %d: invalid mesh index %d", i, *gn.Mesh)
		}
		gm := doc.Meshes[*gn.Mesh]

		mesh := &Mesh{Name: gm.Name, Node: im.nodes[i]}
		if gn.Skin != nil && *gn.Skin >= 0 && *gn.Skin < len(im.skins) {
			mesh.Skin = im.skins[*gn.Skin]
		}

		for p, prim := range gm.Primitives {
			out, err := im.readPrimitive(prim)
			if err != nil {
				return fmt.Errorf("mesh %q primitive %d: %w", gm.Name, p, err)
			}
			mesh.Primitives = append(mesh.Primitives, out)
		}

		asset.Meshes = append(asset.Meshes, mesh)
		done++
		im.report(Progress{Stage: StageMeshes, Done: done, Total: total})
	}
	return nil
}

func (im *importer) readPrimitive(prim *gltf.Primitive) (Primitive, error) {
	doc := im.doc
	out := Primitive{BaseColor: mgl32.Vec4{1, 1, 1, 1}}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return out, fmt.Errorf("missing POSITION attribute")
	}
	acr, err := im.accessor(posIdx)
	if err != nil {
		return out, err
	}
	if out.Positions, err = modeler.ReadPosition(doc, acr, nil); err != nil {
		return out, fmt.Errorf("read positions: %w", err)
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acr, err := im.accessor(idx); err == nil {
			out.Normals, _ = modeler.ReadNormal(doc, acr, nil)
		}
	}
	if len(out.Normals) != len(out.Positions) {
		out.Normals = make([][3]float32, len(out.Positions))
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err := im.accessor(idx); err == nil {
			out.UVs, _ = modeler.ReadTextureCoord(doc, acr, nil)
		}
	}
	if len(out.UVs) != len(out.Positions) {
		out.UVs = make([][2]float32, len(out.Positions))
	}

	if idx, ok := prim.Attributes[gltf.JOINTS_0]; ok {
		if acr, err := im.accessor(idx); err == nil {
			out.Joints, _ = modeler.ReadJoints(doc, acr, nil)
		}
	}
	if idx, ok := prim.Attributes[gltf.WEIGHTS_0]; ok {
		if acr, err := im.accessor(idx); err == nil {
			out.Weights, _ = modeler.ReadWeights(doc, acr, nil)
		}
	}

	if prim.Indices != nil {
		acr, err := im.accessor(*prim.Indices)
		if err != nil {
			return out, err
		}
		if out.Indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return out, fmt.Errorf("read indices: %w", err)
		}
	}

	if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(doc.Materials) {
		im.readMaterial(doc.Materials[*prim.Material], &out)
	}
	return out, nil
}

func (im *importer) readMaterial(mat *gltf.Material, out *Primitive) {
	pbr := mat.PBRMetallicRoughness
	if pbr == nil {
		return
	}
	if f := pbr.BaseColorFactor; f != nil {
		out.BaseColor = mgl32.Vec4{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
	}
	if pbr.BaseColorTexture == nil {
		return
	}
	texIdx := pbr.BaseColorTexture.Index
	if texIdx < 0 || texIdx >= len(im.doc.Textures) {
		return
	}

	src, ok := textureSource(im.doc.Textures[texIdx])
	if !ok || src < 0 || src >= len(im.doc.Images) {
		return
	}
	img := im.doc.Images[src]
	data, err := im.imageBytes(img)
	if err != nil {
		// an untextured character still renders
		return
	}
	out.Texture = data
	out.TextureMIME = img.MimeType
}

// textureSource prefers the core source and falls back to EXT_texture_webp.
func textureSource(tex *gltf.Texture) (int, bool) {
	if tex.Source != nil {
		return *tex.Source, true
	}
	ext, ok := tex.Extensions["EXT_texture_webp"]
	if !ok {
		return 0, false
	}

	var raw []byte
	switch v := ext.(type) {
	case json.RawMessage:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return 0, false
		}
		raw = b
	}
	var webp struct {
		Source *int `json:"source"`
	}
	if err := json.Unmarshal(raw, &webp); err != nil || webp.Source == nil {
		return 0, false
	}
	return *webp.Source, true
}

func (im *importer) imageBytes(img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		idx := *img.BufferView
		if idx < 0 || idx >= len(im.doc.BufferViews) {
			return nil, fmt.Errorf("image buffer view %d out of range", idx)
		}
		bv := im.doc.BufferViews[idx]
		if bv.Buffer < 0 || bv.Buffer >= len(im.doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
		}
		data := im.doc.Buffers[bv.Buffer].Data
		start := int(bv.ByteOffset)
		end := start + int(bv.ByteLength)
		if start < 0 || end > len(data) {
			return nil, fmt.Errorf("image buffer view %d exceeds buffer", idx)
		}
		return data[start:end], nil
	}

	if img.URI == "" {
		return nil, fmt.Errorf("image has no data")
	}
	if img.IsEmbeddedResource() {
		return img.MarshalData()
	}
	if strings.Contains(img.URI, "..") {
		return nil, fmt.Errorf("image uri %q escapes asset directory", img.URI)
	}
	return os.ReadFile(filepath.Join(im.dir, filepath.FromSlash(img.URI)))
}

func (im *importer) importClips(asset *Asset) error {
	doc := im.doc
	for i, ga := range doc.Animations {
		clip, err := im.readClip(ga)
		if err != nil {
			return fmt.Errorf("animation %d: %w", i, err)
		}
		if clip.Name == "" {
			clip.Name = fmt.Sprintf("animation_%d", i)
		}
		if len(clip.Channels) > 0 {
			asset.Clips = append(asset.Clips, clip)
		}
		im.report(Progress{Stage: StageClips, Done: i + 1, Total: len(doc.Animations)})
	}
	return nil
}

func (im *importer) readClip(ga *gltf.Animation) (*scene.Clip, error) {
	clip := &scene.Clip{Name: ga.Name}

	for ci, ch := range ga.Channels {
		// morph weight channels and untargeted channels have nothing to drive
		if ch.Target.Node == nil || ch.Target.Path == gltf.TRSWeights {
			continue
		}
		node := *ch.Target.Node
		if node < 0 || node >= len(im.nodes) {
			return nil, fmt.Errorf("channel %d: invalid node %d", ci, node)
		}
		if ch.Sampler < 0 || ch.Sampler >= len(ga.Samplers) {
			return nil, fmt.Errorf("channel %d: invalid sampler %d", ci, ch.Sampler)
		}
		sampler := ga.Samplers[ch.Sampler]

		times, err := im.readScalars(sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("channel %d input: %w", ci, err)
		}
		values, err := im.readVectors(sampler.Output)
		if err != nil {
			return nil, fmt.Errorf("channel %d output: %w", ci, err)
		}

		out := scene.Channel{Node: im.nodes[node], Times: times}
		switch sampler.Interpolation {
		case gltf.InterpolationStep:
			out.Interpolation = scene.InterpStep
		case gltf.InterpolationCubicSpline:
			// keep the value of each (in-tangent, value, out-tangent) triple
			keys := make([][4]float32, 0, len(values)/3)
			for k := 1; k < len(values); k += 3 {
				keys = append(keys, values[k])
			}
			values = keys
		}
		out.Values = values

		switch ch.Target.Path {
		case gltf.TRSTranslation:
			out.Path = scene.PathTranslation
		case gltf.TRSRotation:
			out.Path = scene.PathRotation
		case gltf.TRSScale:
			out.Path = scene.PathScale
		default:
			continue
		}

		if n := len(times); n > 0 && times[n-1] > clip.Duration {
			clip.Duration = times[n-1]
		}
		clip.Channels = append(clip.Channels, out)
	}
	return clip, nil
}

func (im *importer) readScalars(idx int) ([]float32, error) {
	acr, err := im.accessor(idx)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(im.doc, acr, nil)
	if err != nil {
		return nil, err
	}
	v, ok := data.([]float32)
	if !ok {
		return nil, fmt.Errorf("want float scalars, got %T", data)
	}
	return v, nil
}

func (im *importer) readVectors(idx int) ([][4]float32, error) {
	acr, err := im.accessor(idx)
	if err != nil {
		return nil, err
	}
	data, err := modeler.ReadAccessor(im.doc, acr, nil)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case [][3]float32:
		out := make([][4]float32, len(v))
		for i, e := range v {
			out[i] = [4]float32{e[0], e[1], e[2], 0}
		}
		return out, nil
	case [][4]float32:
		return v, nil
	}
	return nil, fmt.Errorf("want float VEC3/VEC4, got %T", data)
}
