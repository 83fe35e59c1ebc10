// Package loader attaches glTF models to the scene graph asynchronously.
//
// Parsing runs on a background goroutine; the graph mutation is posted to a
// core.Queue and happens when the render thread drains it, so the scene is
// only ever touched from one thread.
package loader

import (
	"log/slog"
	"path/filepath"
	"sync"

	"vr-scene/core"
	"vr-scene/math"
	"vr-scene/scene"
)

// ParseFunc reads a model file. scene.LoadGLTF is the default.
type ParseFunc func(path string, maxTextureSize int) (*scene.Model, error)

type Loader struct {
	queue          *core.Queue
	root           string
	maxTextureSize int
	parse          ParseFunc
	logger         *slog.Logger

	wg sync.WaitGroup
}

// Option configures a Loader in New.
type Option func(*Loader)

// WithAssetRoot resolves relative model paths against dir.
func WithAssetRoot(dir string) Option {
	return func(l *Loader) {
		l.root = dir
	}
}

// WithMaxTextureSize downscales embedded textures larger than size.
func WithMaxTextureSize(size int) Option {
	return func(l *Loader) {
		l.maxTextureSize = size
	}
}

func WithParser(parse ParseFunc) Option {
	return func(l *Loader) {
		l.parse = parse
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

func New(queue *core.Queue, options ...Option) *Loader {
	l := &Loader{
		queue:  queue,
		parse:  scene.LoadGLTF,
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// LoadModel starts one load attempt and returns immediately. On success the
// model is wrapped in a new node placed at position with uniform scale and
// added to target; when startAnimation is set and the model has clips, its
// first clip starts playing through a mixer bound to that node. On failure
// the error is logged and target is left unchanged.
func (l *Loader) LoadModel(path string, position math.Vec3, scale float32, target *scene.Node, startAnimation bool) {
	full := path
	if l.root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(l.root, path)
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		model, err := l.parse(full, l.maxTextureSize)
		if err != nil {
			l.logger.Error("model load failed", "path", full, "err", err)
			return
		}
		l.queue.Post(func() {
			root := attach(model, path, position, scale, target, startAnimation)
			l.logger.Info("model loaded", "path", full, "node", root.Name,
				"clips", len(model.Animations), "textures", len(model.Textures))
		})
	}()
}

// Wait blocks until every started load has either failed or posted its
// completion to the queue. The completions still have to be drained.
func (l *Loader) Wait() {
	l.wg.Wait()
}

func attach(model *scene.Model, path string, position math.Vec3, scale float32, target *scene.Node, startAnimation bool) *scene.Node {
	root := scene.NewNode(filepath.Base(path))
	for _, n := range model.Roots {
		root.AddChild(n)
	}
	root.Animations = model.Animations
	root.SetPosition(position)
	root.SetScale(math.Splat(scale))
	root.Traverse(func(n *scene.Node) {
		if n.Mesh != nil {
			n.CastShadow = true
			n.ReceiveShadow = true
		}
	})

	if startAnimation && len(model.Animations) > 0 {
		root.Mixer = scene.NewMixer(root)
		root.Actions = append(root.Actions, root.Mixer.ClipAction(model.Animations[0]).Play())
	}

	target.AddChild(root)
	return root
}
