package naju

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/naju-export/pkg/scene"
	"github.com/Faultbox/naju-export/pkg/xmlfile"
)

// Poser is the host pose capability used while sampling animation frames.
// The host has a single live pose; callers must not interleave other pose
// changes between ApplyPose and CapturePose.
type Poser interface {
	ApplyPose(index int) error
	LiveBones() []*scene.PoseBone
	CapturePose() scene.PoseSnapshot
}

// WriteBones writes the bone forest rooted at roots. Children are nested in
// their parent's element in native order.
func WriteBones(w *xmlfile.Writer, roots []*scene.Bone) {
	type step struct {
		bone  *scene.Bone
		close bool
	}

	stack := make([]step, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, step{bone: roots[i]})
	}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if s.close {
			w.CloseTag("bone")
			continue
		}

		b := s.bone
		w.Open("bone")
		w.Element("name", b.Name)
		writeXYZ(w, "head", b.Head.X, b.Head.Y, b.Head.Z)
		writeXYZ(w, "tail", b.Tail.X, b.Tail.Y, b.Tail.Z)

		stack = append(stack, step{bone: b, close: true})
		for i := len(b.Children) - 1; i >= 0; i-- {
			stack = append(stack, step{bone: b.Children[i]})
		}
	}
}

func writeXYZ(w *xmlfile.Writer, tag string, x, y, z float64) {
	w.Open(tag)
	w.Float("x", x)
	w.Float("y", y)
	w.Float("z", z)
	w.CloseTag(tag)
}

// WritePose writes a captured pose as a list of bone locations and
// quaternion rotations.
func WritePose(w *xmlfile.Writer, pose scene.PoseSnapshot) error {
	for i := range pose {
		pb := &pose[i]
		if pb.RotationMode != scene.RotationQuaternion && pb.RotationMode != scene.RotationEulerXYZ {
			return fmt.Errorf("%w: '%s' uses %s", ErrUnsupportedRotationMode, pb.Name, pb.RotationMode)
		}
		w.Open("bone")
		w.Element("name", pb.Name)
		writeXYZ(w, "location", pb.Location.X, pb.Location.Y, pb.Location.Z)
		q := pb.Rotation()
		w.Open("rotation")
		w.Float("w", q.W)
		w.Float("x", q.X)
		w.Float("y", q.Y)
		w.Float("z", q.Z)
		w.CloseTag("rotation")
		w.CloseTag("bone")
	}
	return nil
}

// SampleFrame puts the host into the pose of frame f and captures it. Mirror
// frames apply their source pose and flip it.
func SampleFrame(poser Poser, anim *Animation, f *Frame) (scene.PoseSnapshot, error) {
	src, err := anim.Source(f)
	if err != nil {
		return nil, err
	}
	if err := poser.ApplyPose(src.Index); err != nil {
		return nil, fmt.Errorf("applying pose '%s': %w", src.Pose, err)
	}
	if f.Mirror {
		if err := MirrorPose(poser.LiveBones()); err != nil {
			return nil, fmt.Errorf("mirroring '%s' for '%s': %w", src.Pose, f.Pose, err)
		}
	}
	return poser.CapturePose(), nil
}

// ArmatureWriter writes armature bodies: name, bone forest and animations.
type ArmatureWriter struct {
	Frames *FrameParser
	Log    *zap.Logger
}

// NewArmatureWriter returns a writer using the default animation pattern.
func NewArmatureWriter(log *zap.Logger) *ArmatureWriter {
	if log == nil {
		log = zap.NewNop()
	}
	parser, _ := NewFrameParser("")
	return &ArmatureWriter{Frames: parser, Log: log}
}

// Write writes obj's armature, sampling every animation frame through poser.
func (aw *ArmatureWriter) Write(w *xmlfile.Writer, obj *scene.Object, poser Poser) error {
	arm := obj.Armature
	anims, err := CollectFrames(arm.Library, aw.Frames)
	if err != nil {
		return err
	}

	w.Element("name", obj.Name)
	WriteBones(w, arm.Roots())

	for _, name := range anims.Names() {
		anim := anims[name]
		w.Open("animation")
		w.Element("name", name)
		for _, t := range anim.Times() {
			f := anim.Frames[t]
			if f.Mirror {
				aw.Log.Info("writing frame", zap.String("pose", f.Pose), zap.Int("mirror_of", f.MirrorOf))
			} else {
				aw.Log.Info("writing frame", zap.String("pose", f.Pose))
			}

			pose, err := SampleFrame(poser, anim, f)
			if err != nil {
				return err
			}
			w.Open("frame")
			w.Int("time", t)
			if err := WritePose(w, pose); err != nil {
				return err
			}
			w.CloseTag("frame")
		}
		w.CloseTag("animation")
	}
	return nil
}

// ArmaturePart is one armature element of a document.
type ArmaturePart struct {
	Object *scene.Object
	Sub    bool
}

// Element returns the element name for the part.
func (p ArmaturePart) Element() string {
	if p.Sub {
		return "sub-armature"
	}
	return RootArmature
}

// ArmaturePlan is the layout of an armature document.
type ArmaturePlan struct {
	Root  string // RootArmature or RootMetaArmature
	Parts []ArmaturePart
}

// PlanArmatures lays out the armature document: one armature is written
// directly under the root, several go into a meta-armature whose first entry
// is the root armature.
func PlanArmatures(armatures []*scene.Object) ArmaturePlan {
	switch len(armatures) {
	case 0:
		return ArmaturePlan{}
	case 1:
		return ArmaturePlan{Root: RootArmature, Parts: []ArmaturePart{{Object: armatures[0]}}}
	}
	plan := ArmaturePlan{Root: RootMetaArmature}
	for i, obj := range armatures {
		plan.Parts = append(plan.Parts, ArmaturePart{Object: obj, Sub: i > 0})
	}
	return plan
}

// WriteArmatureDocument writes a planned armature document. Each armature
// object is its own Poser.
func (aw *ArmatureWriter) WriteArmatureDocument(w *xmlfile.Writer, plan ArmaturePlan) error {
	WriteHeader(w)
	if plan.Root == RootArmature {
		obj := plan.Parts[0].Object
		return aw.Write(w, obj, obj.Armature)
	}
	for _, part := range plan.Parts {
		w.Open(part.Element())
		if err := aw.Write(w, part.Object, part.Object.Armature); err != nil {
			return err
		}
		w.CloseTag(part.Element())
	}
	return nil
}
