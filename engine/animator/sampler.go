package animator

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-pose/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// SampleChannel evaluates a channel at time t and writes the result into the component
// of target that the channel animates. The other components are left untouched.
// Channels with no keyframes are ignored.
//
// Parameters:
//   - ch: the channel to sample
//   - t: the clip time in seconds
//   - target: the node transform to write into
func SampleChannel(ch *model.Channel, t float32, target *model.NodeTransform) {
	if len(ch.Times) == 0 {
		return
	}
	switch v := ch.Values.(type) {
	case model.Translations:
		target.Translation = SampleVec3(ch.Times, v, t, ch.Interpolation)
	case model.Rotations:
		target.Rotation = SampleQuat(ch.Times, v, t, ch.Interpolation)
	case model.Scales:
		target.Scale = SampleVec3(ch.Times, v, t, ch.Interpolation)
	}
}

// SampleVec3 evaluates a vector keyframe track at time t.
// Before the first keyframe the first value is held, after the last keyframe the last
// value is held. For cubic splines values holds (in-tangent, value, out-tangent) triples.
//
// Parameters:
//   - times: ascending keyframe times, at least one
//   - values: keyframe values laid out for mode
//   - t: the sample time in seconds
//   - mode: the interpolation mode
//
// Returns:
//   - mgl32.Vec3: the sampled value
func SampleVec3(times []float32, values []mgl32.Vec3, t float32, mode model.Interpolation) mgl32.Vec3 {
	prev, next, factor, inside := locate(times, t)
	if !inside {
		return keyValue(values, prev, mode)
	}

	switch mode {
	case model.InterpolationStep:
		return values[prev]
	case model.InterpolationCubicSpline:
		dt := times[next] - times[prev]
		if 3*next+1 >= len(values) {
			return values[3*prev+1]
		}
		p0 := values[3*prev+1]
		m0 := values[3*prev+2].Mul(dt)
		m1 := values[3*next].Mul(dt)
		p1 := values[3*next+1]
		h00, h10, h01, h11 := hermite(factor)
		return p0.Mul(h00).Add(m0.Mul(h10)).Add(p1.Mul(h01)).Add(m1.Mul(h11))
	default:
		a, b := values[prev], values[next]
		return a.Add(b.Sub(a).Mul(factor))
	}
}

// SampleQuat evaluates a rotation keyframe track at time t. Interpolated results are
// always unit length; boundary keyframes are returned as stored.
//
// Parameters:
//   - times: ascending keyframe times, at least one
//   - values: keyframe rotations laid out for mode
//   - t: the sample time in seconds
//   - mode: the interpolation mode
//
// Returns:
//   - mgl32.Quat: the sampled rotation
func SampleQuat(times []float32, values []mgl32.Quat, t float32, mode model.Interpolation) mgl32.Quat {
	prev, next, factor, inside := locate(times, t)
	if !inside {
		return keyValue(values, prev, mode)
	}

	switch mode {
	case model.InterpolationStep:
		return values[prev]
	case model.InterpolationCubicSpline:
		dt := times[next] - times[prev]
		if 3*next+1 >= len(values) {
			return values[3*prev+1].Normalize()
		}
		p0 := values[3*prev+1]
		m0 := values[3*prev+2].Scale(dt)
		m1 := values[3*next].Scale(dt)
		p1 := values[3*next+1]
		h00, h10, h01, h11 := hermite(factor)
		return p0.Scale(h00).Add(m0.Scale(h10)).Add(p1.Scale(h01)).Add(m1.Scale(h11)).Normalize()
	default:
		return mgl32.QuatSlerp(values[prev], values[next], factor).Normalize()
	}
}

// locate finds the keyframe segment containing t. When t lies on or outside the
// boundaries inside is false and prev is the boundary keyframe to hold.
func locate(times []float32, t float32) (prev, next int, factor float32, inside bool) {
	last := len(times) - 1
	if last == 0 || t <= times[0] {
		return 0, 0, 0, false
	}
	if t >= times[last] {
		return last, last, 0, false
	}

	next = sort.Search(len(times), func(i int) bool { return times[i] > t })
	prev = max(next-1, 0)

	dt := times[next] - times[prev]
	if dt > 0 {
		factor = (t - times[prev]) / dt
	}
	return prev, next, factor, true
}

// keyValue returns keyframe i, skipping the tangents of a cubic spline triple.
func keyValue[T any](values []T, i int, mode model.Interpolation) T {
	if mode == model.InterpolationCubicSpline {
		return values[3*i+1]
	}
	return values[i]
}

// hermite returns the cubic Hermite basis weights at s.
func hermite(s float32) (h00, h10, h01, h11 float32) {
	s2 := s * s
	s3 := s2 * s
	h00 = 2*s3 - 3*s2 + 1
	h10 = s3 - 2*s2 + s
	h01 = -2*s3 + 3*s2
	h11 = s3 - s2
	return
}
