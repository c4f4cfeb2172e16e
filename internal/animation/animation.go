// Package animation bakes a pose-library animation onto the armature's
// timeline.
package animation

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/naju-export/pkg/naju"
	"github.com/Faultbox/naju-export/pkg/scene"
)

// DefaultStep is the number of timeline frames between two keyframes.
const DefaultStep = 5

// ErrNotArmature is returned when the target object has no armature.
var ErrNotArmature = errors.New("object is not an armature")

// Target is the host capability the operator drives.
type Target interface {
	naju.Poser
	StorePose(index int) error
	ClearKeyframes(start, end int)
	InsertKeyframe(frame int)
}

// Options selects the animation and the keyframe spacing.
type Options struct {
	Filter string // must select exactly one animation
	Step   int    // DefaultStep when zero
}

// Result describes a baked animation.
type Result struct {
	Animation string
	Frames    int
	FrameEnd  int
}

// Select returns the single animation of library matched by filter.
func Select(library []*scene.PoseMarker, filter string) (*naju.Animation, error) {
	if filter == "" {
		return nil, fmt.Errorf("%w: no animation filter given", naju.ErrInvalidAnimationSelection)
	}
	parser, err := naju.NewFrameParser(filter)
	if err != nil {
		return nil, err
	}
	anims, err := naju.CollectFrames(library, parser)
	if err != nil {
		return nil, err
	}
	switch len(anims) {
	case 0:
		return nil, fmt.Errorf("%w: '%s' matches no animation", naju.ErrInvalidAnimationSelection, filter)
	case 1:
		return anims[anims.Names()[0]], nil
	default:
		return nil, fmt.Errorf("%w: '%s' matches %d animations (%s)",
			naju.ErrInvalidAnimationSelection, filter, len(anims), strings.Join(anims.Names(), ", "))
	}
}

// Apply bakes the selected animation of obj into keyframes. Mirror frames are
// resolved first and written back into their library entries, then the
// scene range becomes [0, frames*step] with one keyframe per frame and a
// closing keyframe repeating the first pose.
func Apply(s *scene.Scene, obj *scene.Object, opts Options, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if obj.Kind != scene.KindArmature || obj.Armature == nil {
		return Result{}, fmt.Errorf("%w: '%s'", ErrNotArmature, obj.Name)
	}
	anim, err := Select(obj.Armature.Library, opts.Filter)
	if err != nil {
		return Result{}, err
	}
	step := opts.Step
	if step <= 0 {
		step = DefaultStep
	}

	res, err := bake(obj.Armature, anim, s.FrameStart, s.FrameEnd, step, log)
	if err != nil {
		return Result{}, fmt.Errorf("object '%s': %w", obj.Name, err)
	}
	s.FrameStart = 0
	s.FrameEnd = res.FrameEnd

	log.Info("animation applied",
		zap.String("object", obj.Name),
		zap.String("animation", res.Animation),
		zap.Int("frames", res.Frames),
		zap.Int("frame_end", res.FrameEnd))
	return res, nil
}

func bake(t Target, anim *naju.Animation, start, end, step int, log *zap.Logger) (Result, error) {
	times := anim.Times()

	t.ClearKeyframes(start, end)

	for _, tm := range times {
		f := anim.Frames[tm]
		if !f.Mirror {
			continue
		}
		if _, err := naju.SampleFrame(t, anim, f); err != nil {
			return Result{}, err
		}
		if err := t.StorePose(f.Index); err != nil {
			return Result{}, fmt.Errorf("storing '%s': %w", f.Pose, err)
		}
		log.Debug("mirror frame stored", zap.String("pose", f.Pose), zap.Int("mirror_of", f.MirrorOf))
	}

	for i, tm := range times {
		f := anim.Frames[tm]
		if err := t.ApplyPose(f.Index); err != nil {
			return Result{}, fmt.Errorf("applying '%s': %w", f.Pose, err)
		}
		t.InsertKeyframe(i * step)
		log.Debug("keyframe inserted", zap.String("pose", f.Pose), zap.Int("frame", i*step))
	}

	n := len(times)
	first := anim.Frames[times[0]]
	if err := t.ApplyPose(first.Index); err != nil {
		return Result{}, fmt.Errorf("applying '%s': %w", first.Pose, err)
	}
	t.InsertKeyframe(n * step)

	return Result{Animation: anim.Name, Frames: n, FrameEnd: n * step}, nil
}
