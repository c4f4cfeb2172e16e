package naju

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/Faultbox/naju-export/pkg/scene"
)

// DefaultAnimationPattern matches any animation name without whitespace.
const DefaultAnimationPattern = `\S+`

// Frame is one pose-library entry interpreted as an animation frame.
type Frame struct {
	Pose      string // Pose library entry name
	Index     int    // Pose library index
	Animation string
	Time      int
	Mirror    bool // Frame is the mirror image of the frame at MirrorOf
	MirrorOf  int
}

// FrameParser interprets pose names as "<animation> <time>" or
// "<animation> <time> ... <mirror time> ...".
type FrameParser struct {
	pattern string
	primary *regexp.Regexp
	mirror  *regexp.Regexp
	prefix  *regexp.Regexp
}

// NewFrameParser compiles an animation-name filter. The filter is a regular
// expression that must match the whole animation name; an empty filter uses
// DefaultAnimationPattern.
func NewFrameParser(filter string) (*FrameParser, error) {
	if filter == "" {
		filter = DefaultAnimationPattern
	}
	anim := `^(?P<anim>` + filter + `)`
	var res [3]*regexp.Regexp
	for i, expr := range []string{
		anim + `\s+(?P<time>\d+)\s*$`,
		anim + `\s+(?P<time>\d+)\s+.*?(?P<mirror>\d+).*$`,
		`^(?:` + filter + `)(?:\s|$)`,
	} {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: bad animation filter %q: %v", ErrInvalidAnimationSelection, filter, err)
		}
		res[i] = re
	}
	return &FrameParser{pattern: filter, primary: res[0], mirror: res[1], prefix: res[2]}, nil
}

// Pattern returns the animation-name filter.
func (p *FrameParser) Pattern() string {
	return p.pattern
}

// Parse interprets one pose name. ok is false when the name does not belong
// to an animation selected by the filter. A selected name with a malformed
// time suffix fails with ErrUnparseableFrameName.
func (p *FrameParser) Parse(name string, index int) (frame Frame, ok bool, err error) {
	frame = Frame{Pose: name, Index: index}
	if m := p.primary.FindStringSubmatch(name); m != nil {
		frame.Animation = m[p.primary.SubexpIndex("anim")]
		frame.Time, err = strconv.Atoi(m[p.primary.SubexpIndex("time")])
	} else if m := p.mirror.FindStringSubmatch(name); m != nil {
		frame.Animation = m[p.mirror.SubexpIndex("anim")]
		frame.Time, err = strconv.Atoi(m[p.mirror.SubexpIndex("time")])
		if err == nil {
			frame.Mirror = true
			frame.MirrorOf, err = strconv.Atoi(m[p.mirror.SubexpIndex("mirror")])
		}
	} else if p.prefix.MatchString(name) {
		return Frame{}, true, fmt.Errorf("%w: '%s'", ErrUnparseableFrameName, name)
	} else {
		return Frame{}, false, nil
	}
	if err != nil {
		return Frame{}, true, fmt.Errorf("%w: '%s': %v", ErrUnparseableFrameName, name, err)
	}
	return frame, true, nil
}

// Animation is the set of frames of one named animation, keyed by time.
type Animation struct {
	Name   string
	Frames map[int]*Frame
}

// Times returns the frame times in ascending order.
func (a *Animation) Times() []int {
	times := make([]int, 0, len(a.Frames))
	for t := range a.Frames {
		times = append(times, t)
	}
	sort.Ints(times)
	return times
}

// Source returns the frame whose pose a frame is sampled from: the frame
// itself, or the frame it mirrors.
func (a *Animation) Source(f *Frame) (*Frame, error) {
	if !f.Mirror {
		return f, nil
	}
	src, ok := a.Frames[f.MirrorOf]
	if !ok {
		return nil, fmt.Errorf("%w: '%s' mirrors time %d", ErrMissingMirrorSource, f.Pose, f.MirrorOf)
	}
	return src, nil
}

// Animations maps animation names to their frames.
type Animations map[string]*Animation

// Names returns the animation names sorted.
func (a Animations) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CollectFrames parses every pose-library entry selected by the parser.
// When two entries share an animation and time, the later one wins.
func CollectFrames(library []*scene.PoseMarker, parser *FrameParser) (Animations, error) {
	anims := make(Animations)
	for i, marker := range library {
		frame, ok, err := parser.Parse(marker.Name, i)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		anim, exists := anims[frame.Animation]
		if !exists {
			anim = &Animation{Name: frame.Animation, Frames: make(map[int]*Frame)}
			anims[frame.Animation] = anim
		}
		f := frame
		anim.Frames[frame.Time] = &f
	}
	return anims, nil
}
