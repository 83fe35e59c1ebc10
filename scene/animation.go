package scene

import (
	"sort"
	"time"

	"github.com/chewxy/math32"

	"vr-scene/math"
)

// AnimationPath is the node property a channel drives.
type AnimationPath int

const (
	PathTranslation AnimationPath = iota
	PathRotation
	PathScale
)

func (p AnimationPath) components() int {
	if p == PathRotation {
		return 4
	}
	return 3
}

type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	// InterpolationCubicSpline stores in-tangent, value and out-tangent per key.
	InterpolationCubicSpline
)

// AnimationChannel is one keyframe track. Times are in seconds, ascending.
// Values are flattened: 3 floats per key for translation and scale, 4 for
// rotation quaternions (x, y, z, w), tripled for cubic splines.
type AnimationChannel struct {
	Target        *Node
	Path          AnimationPath
	Interpolation Interpolation
	Times         []float32
	Values        []float32
}

// AnimationClip is a named set of channels. Duration is the last key time
// over all channels, in seconds.
type AnimationClip struct {
	Name     string
	Duration float32
	Channels []*AnimationChannel
}

func NewAnimationClip(name string, channels []*AnimationChannel) *AnimationClip {
	clip := &AnimationClip{Name: name, Channels: channels}
	for _, ch := range channels {
		if n := len(ch.Times); n > 0 && ch.Times[n-1] > clip.Duration {
			clip.Duration = ch.Times[n-1]
		}
	}
	return clip
}

type LoopMode int

const (
	LoopRepeat LoopMode = iota
	LoopOnce
)

// Action is the playback state of one clip inside a mixer.
type Action struct {
	Clip      *AnimationClip
	Loop      LoopMode
	TimeScale float32
	// Time is the current position in seconds.
	Time    float32
	playing bool
}

func (a *Action) Play() *Action {
	a.playing = true
	return a
}

// Stop halts playback and rewinds to the start.
func (a *Action) Stop() *Action {
	a.playing = false
	a.Time = 0
	return a
}

func (a *Action) IsPlaying() bool {
	return a.playing
}

func (a *Action) advance(dt float32) {
	if !a.playing {
		return
	}
	a.Time += dt * a.TimeScale
	d := a.Clip.Duration
	if d <= 0 {
		a.Time = 0
		return
	}
	switch a.Loop {
	case LoopOnce:
		if a.Time >= d {
			a.Time = d
			a.playing = false
		} else if a.Time < 0 {
			a.Time = 0
			a.playing = false
		}
	default:
		a.Time = math32.Mod(a.Time, d)
		if a.Time < 0 {
			a.Time += d
		}
	}
}

// Mixer plays actions on the nodes of one model.
type Mixer struct {
	Root    *Node
	actions []*Action
}

func NewMixer(root *Node) *Mixer {
	return &Mixer{Root: root}
}

// ClipAction returns the action for clip, creating it on first use.
func (m *Mixer) ClipAction(clip *AnimationClip) *Action {
	for _, a := range m.actions {
		if a.Clip == clip {
			return a
		}
	}
	a := &Action{Clip: clip, TimeScale: 1}
	m.actions = append(m.actions, a)
	return a
}

func (m *Mixer) Actions() []*Action {
	return m.actions
}

// Update advances every playing action by dt and applies the sampled
// transforms to the channel targets.
func (m *Mixer) Update(dt time.Duration) {
	seconds := float32(dt.Seconds())
	for _, a := range m.actions {
		wasPlaying := a.playing
		a.advance(seconds)
		if wasPlaying {
			a.Clip.apply(a.Time)
		}
	}
}

func (c *AnimationClip) apply(t float32) {
	for _, ch := range c.Channels {
		if ch.Target == nil || len(ch.Times) == 0 {
			continue
		}
		v := ch.Sample(t)
		switch ch.Path {
		case PathTranslation:
			ch.Target.SetPosition(math.Vec3{X: v[0], Y: v[1], Z: v[2]})
		case PathRotation:
			ch.Target.SetRotation(math.Quaternion{X: v[0], Y: v[1], Z: v[2], W: v[3]}.Normalize())
		case PathScale:
			ch.Target.SetScale(math.Vec3{X: v[0], Y: v[1], Z: v[2]})
		}
	}
}

// Sample evaluates the channel at time t (seconds). Times outside the key
// range clamp to the first or last key.
func (ch *AnimationChannel) Sample(t float32) [4]float32 {
	n := ch.Path.components()
	last := len(ch.Times) - 1

	if t <= ch.Times[0] {
		return ch.key(0, n)
	}
	if t >= ch.Times[last] {
		return ch.key(last, n)
	}

	// first key strictly after t
	next := sort.Search(len(ch.Times), func(i int) bool { return ch.Times[i] > t })
	prev := next - 1
	span := ch.Times[next] - ch.Times[prev]
	s := (t - ch.Times[prev]) / span

	switch ch.Interpolation {
	case InterpolationStep:
		return ch.key(prev, n)
	case InterpolationCubicSpline:
		return ch.hermite(prev, next, s, span, n)
	}

	a, b := ch.key(prev, n), ch.key(next, n)
	if ch.Path == PathRotation {
		q := quat(a).Slerp(quat(b), s)
		return [4]float32{q.X, q.Y, q.Z, q.W}
	}
	var out [4]float32
	for i := 0; i < n; i++ {
		out[i] = a[i] + (b[i]-a[i])*s
	}
	return out
}

// key returns the value of key i, skipping cubic-spline tangents.
func (ch *AnimationChannel) key(i, n int) [4]float32 {
	stride, offset := n, 0
	if ch.Interpolation == InterpolationCubicSpline {
		stride, offset = 3*n, n
	}
	var out [4]float32
	copy(out[:n], ch.Values[i*stride+offset:])
	return out
}

func (ch *AnimationChannel) hermite(prev, next int, s, span float32, n int) [4]float32 {
	stride := 3 * n
	v0 := ch.Values[prev*stride+n:]
	b0 := ch.Values[prev*stride+2*n:]
	a1 := ch.Values[next*stride:]
	v1 := ch.Values[next*stride+n:]

	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2

	var out [4]float32
	for i := 0; i < n; i++ {
		out[i] = h00*v0[i] + h10*span*b0[i] + h01*v1[i] + h11*span*a1[i]
	}
	if ch.Path == PathRotation {
		q := quat(out).Normalize()
		out = [4]float32{q.X, q.Y, q.Z, q.W}
	}
	return out
}

func quat(v [4]float32) math.Quaternion {
	return math.Quaternion{X: v[0], Y: v[1], Z: v[2], W: v[3]}
}
