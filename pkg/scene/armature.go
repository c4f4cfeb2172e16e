package scene

import (
	"fmt"
	"sort"

	"github.com/Faultbox/naju-export/pkg/math"
)

// Rotation modes understood by pose bones.
const (
	RotationQuaternion = "QUATERNION"
	RotationEulerXYZ   = "XYZ"
)

// Bone is a rest-pose bone. Children are owned by their parent.
type Bone struct {
	Name     string
	Parent   string // Empty for roots
	Head     math.Vec3
	Tail     math.Vec3
	Children []*Bone
}

// PoseBone is the live, posed state of one bone.
type PoseBone struct {
	Name         string
	RotationMode string
	Quaternion   math.Quat
	Euler        math.Vec3
	Location     math.Vec3
}

// Rotation returns the bone rotation as a quaternion regardless of mode.
func (b *PoseBone) Rotation() math.Quat {
	if b.RotationMode == RotationQuaternion {
		return b.Quaternion
	}
	return math.QuatFromEulerXYZ(b.Euler)
}

// BoneTransform is one bone's stored state in a library pose.
type BoneTransform struct {
	Quaternion math.Quat
	Euler      math.Vec3
	Location   math.Vec3
}

// PoseMarker is a named pose library entry.
type PoseMarker struct {
	Name  string
	Frame int
	Bones map[string]BoneTransform
}

// PoseSnapshot is a captured copy of the live pose.
type PoseSnapshot []PoseBone

// Keyframe is a pose recorded on the timeline.
type Keyframe struct {
	Frame int
	Pose  PoseSnapshot
}

// Armature is a bone forest plus its live pose, pose library and timeline.
type Armature struct {
	Bones     []*Bone // Native order
	Pose      []*PoseBone
	Library   []*PoseMarker
	Keyframes []Keyframe
}

// Roots returns the bones without a parent, in native order.
func (a *Armature) Roots() []*Bone {
	var roots []*Bone
	for _, b := range a.Bones {
		if b.Parent == "" {
			roots = append(roots, b)
		}
	}
	return roots
}

// Bone returns the rest bone with the given name, or nil.
func (a *Armature) Bone(name string) *Bone {
	for _, b := range a.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// linkChildren rebuilds Children from Parent names.
func (a *Armature) linkChildren() error {
	byName := make(map[string]*Bone, len(a.Bones))
	for _, b := range a.Bones {
		b.Children = nil
		byName[b.Name] = b
	}
	for _, b := range a.Bones {
		if b.Parent == "" {
			continue
		}
		parent, ok := byName[b.Parent]
		if !ok {
			return fmt.Errorf("%w: bone '%s' parent '%s'", ErrUnknownReference, b.Name, b.Parent)
		}
		parent.Children = append(parent.Children, b)
	}
	return nil
}

// LiveBones returns the live pose bones. Mutating them changes the pose.
func (a *Armature) LiveBones() []*PoseBone {
	return a.Pose
}

// ApplyPose copies a library pose into the live pose. Bones the library entry
// does not store keep their current state.
func (a *Armature) ApplyPose(index int) error {
	if index < 0 || index >= len(a.Library) {
		return fmt.Errorf("%w: %d", ErrPoseIndex, index)
	}
	marker := a.Library[index]
	for _, pb := range a.Pose {
		tr, ok := marker.Bones[pb.Name]
		if !ok {
			continue
		}
		pb.Quaternion = tr.Quaternion
		pb.Euler = tr.Euler
		pb.Location = tr.Location
	}
	return nil
}

// StorePose overwrites a library entry with the current live pose.
func (a *Armature) StorePose(index int) error {
	if index < 0 || index >= len(a.Library) {
		return fmt.Errorf("%w: %d", ErrPoseIndex, index)
	}
	bones := make(map[string]BoneTransform, len(a.Pose))
	for _, pb := range a.Pose {
		bones[pb.Name] = BoneTransform{
			Quaternion: pb.Quaternion,
			Euler:      pb.Euler,
			Location:   pb.Location,
		}
	}
	a.Library[index].Bones = bones
	return nil
}

// CapturePose returns a copy of the live pose.
func (a *Armature) CapturePose() PoseSnapshot {
	snap := make(PoseSnapshot, len(a.Pose))
	for i, pb := range a.Pose {
		snap[i] = *pb
	}
	return snap
}

// ClearKeyframes removes keyframes in [start, end).
func (a *Armature) ClearKeyframes(start, end int) {
	kept := a.Keyframes[:0]
	for _, kf := range a.Keyframes {
		if kf.Frame >= start && kf.Frame < end {
			continue
		}
		kept = append(kept, kf)
	}
	a.Keyframes = kept
}

// InsertKeyframe records the live pose at frame, replacing any existing key.
func (a *Armature) InsertKeyframe(frame int) {
	kf := Keyframe{Frame: frame, Pose: a.CapturePose()}
	for i := range a.Keyframes {
		if a.Keyframes[i].Frame == frame {
			a.Keyframes[i] = kf
			return
		}
	}
	a.Keyframes = append(a.Keyframes, kf)
	sort.Slice(a.Keyframes, func(i, j int) bool {
		return a.Keyframes[i].Frame < a.Keyframes[j].Frame
	})
}
