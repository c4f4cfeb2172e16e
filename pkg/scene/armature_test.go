package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/naju-export/pkg/math"
)

func newTestArmature() *Armature {
	return &Armature{
		Pose: []*PoseBone{
			{Name: "a", RotationMode: RotationQuaternion, Quaternion: math.QuatIdentity()},
			{Name: "b", RotationMode: RotationEulerXYZ},
		},
		Library: []*PoseMarker{
			{Name: "p 0", Bones: map[string]BoneTransform{
				"a": {Quaternion: math.Quat{X: 1}, Location: math.Vec3{X: 2}},
			}},
			{Name: "p 1", Bones: map[string]BoneTransform{
				"b": {Euler: math.Vec3{Z: 1}},
			}},
		},
	}
}

func TestApplyPose(t *testing.T) {
	arm := newTestArmature()

	require.NoError(t, arm.ApplyPose(0))
	assert.Equal(t, math.Quat{X: 1}, arm.Pose[0].Quaternion)
	assert.Equal(t, math.Vec3{X: 2}, arm.Pose[0].Location)
	assert.Equal(t, math.Vec3{}, arm.Pose[1].Euler)

	// Bones missing from the entry keep their state.
	require.NoError(t, arm.ApplyPose(1))
	assert.Equal(t, math.Quat{X: 1}, arm.Pose[0].Quaternion)
	assert.Equal(t, math.Vec3{Z: 1}, arm.Pose[1].Euler)

	assert.ErrorIs(t, arm.ApplyPose(2), ErrPoseIndex)
	assert.ErrorIs(t, arm.ApplyPose(-1), ErrPoseIndex)
}

func TestStorePose(t *testing.T) {
	arm := newTestArmature()
	arm.Pose[1].Euler = math.Vec3{Y: 3}

	require.NoError(t, arm.StorePose(0))
	assert.Equal(t, math.Vec3{Y: 3}, arm.Library[0].Bones["b"].Euler)
	assert.Equal(t, math.QuatIdentity(), arm.Library[0].Bones["a"].Quaternion)
	assert.ErrorIs(t, arm.StorePose(5), ErrPoseIndex)
}

func TestCapturePoseIsCopy(t *testing.T) {
	arm := newTestArmature()
	snap := arm.CapturePose()
	arm.Pose[0].Location = math.Vec3{X: 9}
	assert.Equal(t, math.Vec3{}, snap[0].Location)
}

func TestKeyframes(t *testing.T) {
	arm := newTestArmature()
	arm.InsertKeyframe(10)
	arm.InsertKeyframe(0)
	arm.InsertKeyframe(5)

	arm.Pose[0].Location = math.Vec3{X: 1}
	arm.InsertKeyframe(5)

	require.Len(t, arm.Keyframes, 3)
	assert.Equal(t, []int{0, 5, 10}, keyframeFrames(arm))
	assert.Equal(t, math.Vec3{X: 1}, arm.Keyframes[1].Pose[0].Location)

	arm.ClearKeyframes(0, 10)
	assert.Equal(t, []int{10}, keyframeFrames(arm))
}

func TestPoseBoneRotation(t *testing.T) {
	q := &PoseBone{RotationMode: RotationQuaternion, Quaternion: math.Quat{W: 0.5, X: 0.5, Y: 0.5, Z: 0.5}}
	assert.Equal(t, q.Quaternion, q.Rotation())

	e := &PoseBone{RotationMode: RotationEulerXYZ, Euler: math.Vec3{X: 0.4}}
	assert.Equal(t, math.QuatFromEulerXYZ(e.Euler), e.Rotation())
}

func keyframeFrames(a *Armature) []int {
	var frames []int
	for _, kf := range a.Keyframes {
		frames = append(frames, kf.Frame)
	}
	return frames
}
