package loader

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vr-scene/core"
	"vr-scene/math"
	"vr-scene/scene"
)

func fakeModel(clips int) *scene.Model {
	part := scene.NewMeshNode("part", scene.CreateBox(1, 1, 1))
	m := &scene.Model{Roots: []*scene.Node{part}}
	for i := 0; i < clips; i++ {
		m.Animations = append(m.Animations, scene.NewAnimationClip("clip", nil))
	}
	return m
}

func TestLoadModelAttachesOnDrain(t *testing.T) {
	q := core.NewQueue()
	var gotPath string
	l := New(q, WithAssetRoot("/assets"), WithParser(func(path string, _ int) (*scene.Model, error) {
		gotPath = path
		return fakeModel(1), nil
	}))
	target := scene.NewNode("root")

	l.LoadModel("models/Lantern.glb", math.NewVec3(-2.5, 0, -2), 0.2, target, true)
	l.Wait()

	assert.Equal(t, filepath.Join("/assets", "models/Lantern.glb"), gotPath)
	assert.Empty(t, target.Children, "graph must not change before the queue is drained")

	require.Equal(t, 1, q.Drain())
	require.Len(t, target.Children, 1)
	model := target.Children[0]
	assert.Equal(t, "Lantern.glb", model.Name)
	assert.Equal(t, math.NewVec3(-2.5, 0, -2), model.Transform.Position)
	assert.Equal(t, math.Splat(0.2), model.Transform.Scale)
	require.NotNil(t, model.Mixer)
	require.Len(t, model.Actions, 1)
	assert.True(t, model.Actions[0].IsPlaying())
	assert.Equal(t, []*scene.Node{model}, scene.FindAnimated(target))
}

func TestLoadModelWithoutAnimation(t *testing.T) {
	for _, tc := range []struct {
		name  string
		clips int
		start bool
	}{
		{"no clips", 0, true},
		{"not started", 2, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			q := core.NewQueue()
			l := New(q, WithParser(func(string, int) (*scene.Model, error) { return fakeModel(tc.clips), nil }))
			target := scene.NewNode("root")

			l.LoadModel("m.glb", math.Vec3Zero, 1, target, tc.start)
			l.Wait()
			q.Drain()

			require.Len(t, target.Children, 1)
			assert.Nil(t, target.Children[0].Mixer)
			assert.Empty(t, scene.FindAnimated(target))
			assert.Len(t, target.Children[0].Animations, tc.clips)
		})
	}
}

func TestLoadModelFailureLeavesGraphUnchanged(t *testing.T) {
	q := core.NewQueue()
	l := New(q, WithParser(func(string, int) (*scene.Model, error) {
		return nil, errors.New("boom")
	}))
	target := scene.NewNode("root")
	target.AddChild(scene.NewNode("existing"))

	assert.NotPanics(t, func() {
		l.LoadModel("broken.glb", math.Vec3Zero, 1, target, true)
	})
	l.Wait()

	assert.Equal(t, 0, q.Drain())
	assert.Len(t, target.Children, 1)
}

func TestLoadModelUnreachablePath(t *testing.T) {
	q := core.NewQueue()
	l := New(q, WithAssetRoot(t.TempDir()))
	target := scene.NewNode("root")

	l.LoadModel("models/missing.glb", math.Vec3Zero, 1, target, true)
	l.Wait()

	assert.Equal(t, 0, q.Drain())
	assert.Empty(t, target.Children)
}
