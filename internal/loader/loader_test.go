package loader

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// riggedDocument builds Armature > Hips > Head with a skinned triangle and a
// single rotation clip on Head.
func riggedDocument(t *testing.T) *gltf.Document {
	t.Helper()
	doc := gltf.NewDocument()

	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	joints := modeler.WriteJoints(doc, [][4]uint16{{0, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}})
	weights := modeler.WriteWeights(doc, [][4]float32{{1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}})
	ibm := modeler.WriteAccessor(doc, gltf.TargetNone, [][4][4]float32{
		{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}},
		{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, -1, 0, 1}},
	})
	times := modeler.WriteAccessor(doc, gltf.TargetNone, []float32{0, 1, 2})
	rots := modeler.WriteAccessor(doc, gltf.TargetNone, [][4]float32{{0, 0, 0, 1}, {0, 0.7071068, 0, 0.7071068}, {0, 0, 0, 1}})

	doc.Materials = []*gltf.Material{{
		Name: "skin",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float64{0.5, 0.25, 1, 1},
		},
	}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "Body",
		Primitives: []*gltf.Primitive{{
			Indices:  gltf.Index(idx),
			Material: gltf.Index(0),
			Attributes: map[string]int{
				gltf.POSITION:  pos,
				gltf.JOINTS_0:  joints,
				gltf.WEIGHTS_0: weights,
			},
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "Armature", Children: []int{1, 3}},
		{Name: "Hips", Translation: [3]float64{0, 1, 0}, Children: []int{2}},
		{Name: "Head", Translation: [3]float64{0, 0.5, 0}},
		{Name: "BodyMesh", Mesh: gltf.Index(0), Skin: gltf.Index(0)},
	}
	doc.Skins = []*gltf.Skin{{Name: "rig", Joints: []int{1, 2}, InverseBindMatrices: gltf.Index(ibm)}}
	doc.Animations = []*gltf.Animation{{
		Name: "Idle",
		Samplers: []*gltf.AnimationSampler{{
			Input:         times,
			Output:        rots,
			Interpolation: gltf.InterpolationLinear,
		}},
		Channels: []*gltf.AnimationChannel{{
			Sampler: 0,
			Target:  gltf.AnimationChannelTarget{Node: gltf.Index(2), Path: gltf.TRSRotation},
		}},
	}}
	doc.Scenes[0].Nodes = []int{0}
	return doc
}

func TestFromDocument_BuildsGraph(t *testing.T) {
	asset, err := FromDocument(context.Background(), riggedDocument(t), "")
	require.NoError(t, err)

	require.NotNil(t, asset.Graph)
	assert.Equal(t, 5, asset.Graph.Count(), "root plus four nodes")

	head := asset.Graph.Find("head")
	require.NotNil(t, head)
	assert.Equal(t, "Hips", head.Parent.Name)
	world := head.World()
	assert.InDelta(t, 1.5, world[13], 1e-5, "head sits on top of the hips")

	require.Len(t, asset.Skins, 1)
	skin := asset.Skins[0]
	require.Len(t, skin.Joints, 2)
	require.Len(t, skin.InverseBind, 2)
	assert.InDelta(t, -1, skin.InverseBind[1][13], 1e-6)

	require.Len(t, asset.Meshes, 1)
	mesh := asset.Meshes[0]
	assert.Same(t, skin, mesh.Skin)
	require.Len(t, mesh.Primitives, 1)
	prim := mesh.Primitives[0]
	assert.True(t, prim.Skinned())
	assert.Equal(t, []uint32{0, 1, 2}, prim.Indices)
	assert.Len(t, prim.Normals, 3, "missing normals are zero-filled")
	assert.InDelta(t, 0.25, prim.BaseColor[1], 1e-6)
	assert.Equal(t, 3, asset.VertexCount())

	require.Len(t, asset.Clips, 1)
	clip := asset.Clips[0]
	assert.Equal(t, "Idle", clip.Name)
	assert.InDelta(t, 2, clip.Duration, 1e-6)
	assert.Same(t, head, clip.Channels[0].Node)
}

func TestFromDocument_NoNodes(t *testing.T) {
	_, err := FromDocument(context.Background(), gltf.NewDocument(), "")
	assert.ErrorIs(t, err, ErrNoScene)
}

func TestFromDocument_InvalidChild(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Name: "A", Children: []int{7}}}
	doc.Scenes[0].Nodes = []int{0}
	_, err := FromDocument(context.Background(), doc, "")
	assert.Error(t, err)
}

func TestFromDocument_MatrixNode(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{
		Name:   "Offset",
		Matrix: [16]float64{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 3, 4, 5, 1},
	}}
	doc.Scenes[0].Nodes = []int{0}

	asset, err := FromDocument(context.Background(), doc, "")
	require.NoError(t, err)
	n := asset.Graph.Find("offset")
	require.NotNil(t, n)
	assert.InDeltaSlice(t, []float32{3, 4, 5}, n.Translation[:], 1e-5)
	assert.InDeltaSlice(t, []float32{2, 2, 2}, n.Scale[:], 1e-5)
}

func TestLoad_GLBRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "character.glb")
	require.NoError(t, gltf.SaveBinary(riggedDocument(t), path))

	var stages []Stage
	asset, err := Load(context.Background(), path, func(p Progress) { stages = append(stages, p.Stage) })
	require.NoError(t, err)
	assert.Equal(t, path, asset.Path)
	assert.NotNil(t, asset.Graph.Find("Hips"))
	assert.Equal(t, StageOpen, stages[0])
	assert.Equal(t, StageDone, stages[len(stages)-1])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.glb"), nil)
	assert.Error(t, err)
}

func wait(t *testing.T, j *Job) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := j.Wait(ctx)
	require.NoError(t, err)
	return res
}

func TestStart_DeliversResultOnce(t *testing.T) {
	want := &Asset{}
	j := Start(context.Background(), "x.glb", Options{
		Open: func(ctx context.Context, path string, report func(Progress)) (*Asset, error) {
			report(Progress{Stage: StageDone})
			return want, nil
		},
	})

	var res Result
	require.Eventually(t, func() bool {
		var ok bool
		res, ok = j.Poll()
		return ok
	}, 2*time.Second, 5*time.Millisecond)
	assert.NoError(t, res.Err)
	assert.Same(t, want, res.Asset)

	_, ok := j.Poll()
	assert.False(t, ok)
	assert.Equal(t, StageDone, j.Progress().Stage)
}

func TestStart_Timeout(t *testing.T) {
	j := Start(context.Background(), "slow.glb", Options{
		Timeout: 20 * time.Millisecond,
		Open: func(ctx context.Context, path string, report func(Progress)) (*Asset, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	assert.ErrorIs(t, wait(t, j).Err, ErrTimeout)
}

func TestStart_Stall(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	j := Start(context.Background(), "stuck.glb", Options{
		StallTimeout: 30 * time.Millisecond,
		Open: func(ctx context.Context, path string, report func(Progress)) (*Asset, error) {
			report(Progress{Stage: StageOpen})
			<-release
			return nil, errors.New("released")
		},
	})
	assert.ErrorIs(t, wait(t, j).Err, ErrStalled)
}

func TestStart_ProgressKeepsStallAlive(t *testing.T) {
	j := Start(context.Background(), "busy.glb", Options{
		StallTimeout: 40 * time.Millisecond,
		Open: func(ctx context.Context, path string, report func(Progress)) (*Asset, error) {
			for i := 0; i < 10; i++ {
				report(Progress{Stage: StageMeshes, Done: i, Total: 10})
				time.Sleep(10 * time.Millisecond)
			}
			return &Asset{}, nil
		},
	})
	assert.NoError(t, wait(t, j).Err)
}

func TestStart_Cancel(t *testing.T) {
	j := Start(context.Background(), "cancel.glb", Options{
		Open: func(ctx context.Context, path string, report func(Progress)) (*Asset, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	j.Cancel()
	assert.ErrorIs(t, wait(t, j).Err, context.Canceled)
}
