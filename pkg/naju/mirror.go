package naju

import (
	"fmt"
	"regexp"

	"github.com/Faultbox/naju-export/pkg/scene"
)

// BoneNameSeparators are the characters allowed between a bone's base name
// and its left/right marker.
const BoneNameSeparators = `[_. -]`

var sideSuffix = regexp.MustCompile(`^(.*)` + BoneNameSeparators + `([lLrR])$`)

// counterpartPattern returns the pattern matching the opposite side of a
// bone with the given base name and side marker.
func counterpartPattern(base, side string) *regexp.Regexp {
	other := "[lL]"
	if side == "l" || side == "L" {
		other = "[rR]"
	}
	return regexp.MustCompile(`^` + regexp.QuoteMeta(base) + BoneNameSeparators + other + `$`)
}

// Counterpart finds the mirror bone of b among the bones not yet processed.
// ok is false when b has no left/right marker.
func Counterpart(b *scene.PoseBone, bones []*scene.PoseBone, processed map[string]bool) (mate *scene.PoseBone, ok bool, err error) {
	m := sideSuffix.FindStringSubmatch(b.Name)
	if m == nil {
		return nil, false, nil
	}
	re := counterpartPattern(m[1], m[2])

	for _, other := range bones {
		if other == b || processed[other.Name] || !re.MatchString(other.Name) {
			continue
		}
		if mate != nil {
			return nil, true, fmt.Errorf("%w: '%s' ('%s', '%s')", ErrAmbiguousCounterpart, b.Name, mate.Name, other.Name)
		}
		mate = other
	}
	if mate == nil {
		return nil, true, fmt.Errorf("%w: '%s'", ErrMissingCounterpart, b.Name)
	}
	return mate, true, nil
}

// checkPair verifies that two mirror bones have comparable rotations and
// authored locations on both sides or neither.
func checkPair(a, b *scene.PoseBone) error {
	if a.RotationMode != b.RotationMode {
		return fmt.Errorf("%w: '%s' (%s), '%s' (%s)", ErrRotationModeMismatch, a.Name, a.RotationMode, b.Name, b.RotationMode)
	}
	if a.RotationMode != scene.RotationQuaternion && a.RotationMode != scene.RotationEulerXYZ {
		return fmt.Errorf("%w: '%s' uses %s", ErrUnsupportedRotationMode, a.Name, a.RotationMode)
	}
	if a.Location.IsZero() != b.Location.IsZero() {
		with, without := a, b
		if a.Location.IsZero() {
			with, without = b, a
		}
		return fmt.Errorf("%w: '%s' has a location but '%s' does not", ErrAsymmetricLocation, with.Name, without.Name)
	}
	return nil
}

// SwapPair exchanges the pose of two mirror bones.
func SwapPair(a, b *scene.PoseBone) error {
	if err := checkPair(a, b); err != nil {
		return err
	}
	if a.RotationMode == scene.RotationQuaternion {
		a.Quaternion, b.Quaternion = b.Quaternion, a.Quaternion
	} else {
		a.Euler, b.Euler = b.Euler, a.Euler
	}
	if !a.Location.IsZero() {
		a.Location, b.Location = b.Location, a.Location
	}
	return nil
}

// MirrorPose flips a pose left to right by trading transforms between every
// pair of mirror bones. Bones without a left/right marker are left alone.
// The pose is modified in place, and only when every pair is valid.
func MirrorPose(bones []*scene.PoseBone) error {
	type pair struct{ a, b *scene.PoseBone }

	var pairs []pair
	processed := make(map[string]bool, len(bones))
	for _, b := range bones {
		if processed[b.Name] {
			continue
		}
		mate, ok, err := Counterpart(b, bones, processed)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := checkPair(b, mate); err != nil {
			return err
		}
		processed[b.Name] = true
		processed[mate.Name] = true
		pairs = append(pairs, pair{b, mate})
	}

	for _, p := range pairs {
		if err := SwapPair(p.a, p.b); err != nil {
			return err
		}
	}
	return nil
}
