package animator

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/Carmen-Shannon/oxy-pose/common"
	"github.com/Carmen-Shannon/oxy-pose/engine/config"
	"github.com/Carmen-Shannon/oxy-pose/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
)

// noClip marks a player without an active clip.
const noClip = -1

// clipSettings is the playback state a clip resumes with when it is re-selected.
type clipSettings struct {
	time    float32
	speed   float32
	looping bool
	playing bool
}

// Player is the per-entity animation state: which clip is active, its playback time,
// speed and loop flags, the local pose cache and the skinning matrices resolved from it.
// The bound Model is shared and never mutated. A Player is not safe for concurrent use;
// the owner drives exactly one Update per frame.
type Player struct {
	model    model.Model
	defaults config.AnimationConfig

	clip    int
	time    float32
	speed   float32
	looping bool
	playing bool

	// settings remembers every clip's playback state across clip switches.
	settings map[int]clipSettings

	pose     Pose
	skinning []mgl32.Mat4
}

// NewPlayer creates a Player bound to m with no active clip. The initial skinning
// matrices are the bind pose.
//
// Panics if m is nil.
//
// Parameters:
//   - m: the model to animate
//   - options: optional PlayerBuilderOption functions
//
// Returns:
//   - *Player: the player
func NewPlayer(m model.Model, options ...PlayerBuilderOption) *Player {
	if m == nil {
		panic("animator: NewPlayer requires a non-nil Model")
	}
	p := &Player{
		model:    m,
		defaults: config.Default().Animation,
		clip:     noClip,
		settings: make(map[int]clipSettings),
		pose:     make(Pose),
	}
	for _, opt := range options {
		opt(p)
	}
	p.speed = p.defaults.DefaultSpeed
	p.looping = p.defaults.DefaultLooping
	p.playing = p.defaults.Autoplay
	p.resolve()
	return p
}

// Model returns the model this player animates.
func (p *Player) Model() model.Model {
	return p.model
}

// ActiveClip returns the index of the active clip and whether one is set.
func (p *Player) ActiveClip() (int, bool) {
	return p.clip, p.clip != noClip
}

// AnimationNames lists the clip names of the bound model.
func (p *Player) AnimationNames() []string {
	return p.model.AnimationNames()
}

func (p *Player) Time() float32  { return p.time }
func (p *Player) Speed() float32 { return p.speed }
func (p *Player) Looping() bool  { return p.looping }
func (p *Player) Playing() bool  { return p.playing }

// SetTime moves the playhead of the active clip. It does not resample the pose until
// the next Update.
func (p *Player) SetTime(t float32) {
	p.time = t
}

// SetSpeed sets the playback rate. Negative values play backwards.
func (p *Player) SetSpeed(speed float32) {
	p.speed = speed
}

// SetLooping sets whether the active clip wraps at its end.
func (p *Player) SetLooping(looping bool) {
	p.looping = looping
}

// Pause stops advancing time without touching the pose.
func (p *Player) Pause() {
	p.playing = false
}

// Resume continues playback from the current time.
func (p *Player) Resume() {
	p.playing = true
}

// SetActiveClip switches to another clip. The outgoing clip's playback state is saved,
// the incoming clip resumes from its saved state or starts at time zero with the player
// defaults, and the pose cache is cleared so no component of the previous clip leaks
// into the new one. Selecting the active clip again is a no-op.
//
// Parameters:
//   - clip: the clip index
//
// Returns:
//   - error: ErrClipOutOfRange if clip does not name a clip of the model
func (p *Player) SetActiveClip(clip int) error {
	if clip < 0 || clip >= p.model.AnimationCount() {
		return fmt.Errorf("clip %d of %d on %q: %w", clip, p.model.AnimationCount(), p.model.Name(), common.ErrClipOutOfRange)
	}
	if clip == p.clip {
		return nil
	}
	p.switchTo(clip)
	common.LogDebug("animator: %s switched to clip %d (%s)", p.model.Name(), clip, p.model.Animation(clip).Name)
	return nil
}

// ClearActiveClip deselects the active clip and returns the pose to the bind pose.
func (p *Player) ClearActiveClip() {
	if p.clip == noClip {
		return
	}
	p.switchTo(noClip)
	p.resolve()
}

// Play selects clip and starts it from time zero.
//
// Parameters:
//   - clip: the clip index
//   - loop: whether the clip wraps at its end
//
// Returns:
//   - error: ErrClipOutOfRange if clip does not name a clip of the model
func (p *Player) Play(clip int, loop bool) error {
	if err := p.SetActiveClip(clip); err != nil {
		return err
	}
	p.time = 0
	p.looping = loop
	p.playing = true
	return nil
}

// PlayByName is Play with the clip looked up by name.
func (p *Player) PlayByName(name string, loop bool) error {
	idx := p.model.GetAnimationIndex(name)
	if idx < 0 {
		return fmt.Errorf("clip %q on %q: %w", name, p.model.Name(), common.ErrClipOutOfRange)
	}
	return p.Play(idx, loop)
}

func (p *Player) switchTo(clip int) {
	if p.clip != noClip {
		p.settings[p.clip] = clipSettings{time: p.time, speed: p.speed, looping: p.looping, playing: p.playing}
	}
	p.clip = clip
	if s, ok := p.settings[clip]; ok {
		p.time, p.speed, p.looping, p.playing = s.time, s.speed, s.looping, s.playing
	} else {
		p.time = 0
		p.speed = p.defaults.DefaultSpeed
		p.looping = p.defaults.DefaultLooping
		p.playing = p.defaults.Autoplay
	}
	clear(p.pose)
}

// Update advances the active clip by dt seconds, samples every channel into the pose
// cache and refreshes the skinning matrices. It does nothing while paused or when no
// clip is active. A one-shot clip that reaches its end stops itself.
//
// Parameters:
//   - dt: elapsed time since the last update in seconds
func (p *Player) Update(dt float32) {
	if !p.playing || p.clip == noClip {
		return
	}
	clip := p.model.Animation(p.clip)

	p.time += dt * p.speed
	if p.looping {
		if clip.Duration > 0 {
			p.time = float32(math.Mod(float64(p.time), float64(clip.Duration)))
			if p.time < 0 {
				p.time += clip.Duration
			}
		} else {
			p.time = 0
		}
	} else {
		p.time = mgl32.Clamp(p.time, 0, clip.Duration)
		if p.time >= clip.Duration {
			p.playing = false
			common.LogDebug("animator: %s finished one-shot clip %s", p.model.Name(), clip.Name)
		}
	}

	nodes := p.model.Nodes()
	for i := range clip.Channels {
		ch := &clip.Channels[i]
		if len(ch.Times) == 0 {
			continue
		}
		entry, ok := p.pose[ch.TargetNode]
		if !ok {
			entry = nodes[ch.TargetNode].Transform
		}
		SampleChannel(ch, p.time, &entry)
		p.pose[ch.TargetNode] = entry
	}

	p.resolve()
}

// ResetToBindPose drops every pose entry and recomputes the skinning matrices from the
// nodes' default transforms. Playback state is kept.
func (p *Player) ResetToBindPose() {
	clear(p.pose)
	p.resolve()
}

// Pose returns the live pose cache. Callers must not modify it.
func (p *Player) Pose() Pose {
	return p.pose
}

// NodeTransform returns the current local transform of node, taken from the pose cache
// or the node's default.
func (p *Player) NodeTransform(node int) model.NodeTransform {
	return p.pose.Local(p.model.Nodes(), node)
}

// SkinningMatrices returns one matrix per joint of the model's first skin, in joint
// order. The slice is reused across updates; copy it to keep a frame.
func (p *Player) SkinningMatrices() []mgl32.Mat4 {
	return p.skinning
}

func (p *Player) resolve() {
	skin := p.model.Skin()
	if skin == nil {
		return
	}
	p.skinning = ResolveSkinningMatrices(p.model.Nodes(), skin, p.pose, p.skinning)
}

// PlayerSnapshot is the serializable playback state of a Player. The pose cache is not
// part of it; it is rebuilt by the next Update.
type PlayerSnapshot struct {
	// Clip is the active clip index, or -1 for none.
	Clip    int     `toml:"clip"`
	Time    float32 `toml:"time"`
	Speed   float32 `toml:"speed"`
	Looping bool    `toml:"looping"`
	Playing bool    `toml:"playing"`

	// Saved holds the remembered state of the inactive clips, ordered by clip index.
	Saved []ClipState `toml:"saved,omitempty"`
}

// ClipState is the remembered playback state of one inactive clip.
type ClipState struct {
	Clip    int     `toml:"clip"`
	Time    float32 `toml:"time"`
	Speed   float32 `toml:"speed"`
	Looping bool    `toml:"looping"`
	Playing bool    `toml:"playing"`
}

// Snapshot captures the playback state.
func (p *Player) Snapshot() PlayerSnapshot {
	snap := PlayerSnapshot{
		Clip:    p.clip,
		Time:    p.time,
		Speed:   p.speed,
		Looping: p.looping,
		Playing: p.playing,
	}
	for _, idx := range slices.Sorted(maps.Keys(p.settings)) {
		s := p.settings[idx]
		snap.Saved = append(snap.Saved, ClipState{Clip: idx, Time: s.time, Speed: s.speed, Looping: s.looping, Playing: s.playing})
	}
	return snap
}

// Restore replaces the playback state with a snapshot and returns to the bind pose.
//
// Parameters:
//   - s: the snapshot to restore
//
// Returns:
//   - error: ErrClipOutOfRange if the snapshot names a clip the model does not have
func (p *Player) Restore(s PlayerSnapshot) error {
	count := p.model.AnimationCount()
	if s.Clip != noClip && (s.Clip < 0 || s.Clip >= count) {
		return fmt.Errorf("snapshot clip %d of %d: %w", s.Clip, count, common.ErrClipOutOfRange)
	}
	settings := make(map[int]clipSettings, len(s.Saved))
	for _, cs := range s.Saved {
		if cs.Clip < 0 || cs.Clip >= count {
			return fmt.Errorf("snapshot settings for clip %d of %d: %w", cs.Clip, count, common.ErrClipOutOfRange)
		}
		settings[cs.Clip] = clipSettings{time: cs.Time, speed: cs.Speed, looping: cs.Looping, playing: cs.Playing}
	}

	p.clip = s.Clip
	p.time, p.speed, p.looping, p.playing = s.Time, s.Speed, s.Looping, s.Playing
	p.settings = settings
	p.ResetToBindPose()
	return nil
}

// MarshalTOML encodes the snapshot as a TOML document.
func (s PlayerSnapshot) MarshalTOML() ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalPlayerSnapshot decodes a snapshot written by MarshalTOML.
func UnmarshalPlayerSnapshot(data []byte) (PlayerSnapshot, error) {
	s := PlayerSnapshot{Clip: noClip}
	if err := toml.Unmarshal(data, &s); err != nil {
		return PlayerSnapshot{}, fmt.Errorf("failed to unmarshal player snapshot: %w", err)
	}
	return s, nil
}
