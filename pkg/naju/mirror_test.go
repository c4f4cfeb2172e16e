package naju

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/naju-export/pkg/math"
	"github.com/Faultbox/naju-export/pkg/scene"
)

func quatBone(name string, q math.Quat) *scene.PoseBone {
	return &scene.PoseBone{Name: name, RotationMode: scene.RotationQuaternion, Quaternion: q}
}

func eulerBone(name string, e math.Vec3) *scene.PoseBone {
	return &scene.PoseBone{Name: name, RotationMode: scene.RotationEulerXYZ, Euler: e, Quaternion: math.QuatIdentity()}
}

func clonePose(bones []*scene.PoseBone) []scene.PoseBone {
	out := make([]scene.PoseBone, len(bones))
	for i, b := range bones {
		out[i] = *b
	}
	return out
}

func TestMirrorPose_SwapsPairs(t *testing.T) {
	qa := math.QuatFromEulerXYZ(math.Vec3{Z: 0.5})
	qb := math.QuatFromEulerXYZ(math.Vec3{Z: -0.25})
	bones := []*scene.PoseBone{
		quatBone("spine", math.QuatFromEulerXYZ(math.Vec3{X: 0.1})),
		quatBone("arm_l", qa),
		eulerBone("leg.L", math.Vec3{X: 1}),
		quatBone("arm_r", qb),
		eulerBone("leg.R", math.Vec3{Y: 2}),
	}
	spine := *bones[0]

	require.NoError(t, MirrorPose(bones))

	assert.Equal(t, spine, *bones[0])
	assert.Equal(t, qb, bones[1].Quaternion)
	assert.Equal(t, qa, bones[3].Quaternion)
	assert.Equal(t, math.Vec3{Y: 2}, bones[2].Euler)
	assert.Equal(t, math.Vec3{X: 1}, bones[4].Euler)
}

func TestMirrorPose_Involution(t *testing.T) {
	tests := []struct {
		name  string
		bones func() []*scene.PoseBone
	}{
		{
			name: "quaternion",
			bones: func() []*scene.PoseBone {
				l := quatBone("hand-l", math.QuatFromEulerXYZ(math.Vec3{Y: 1.2}))
				r := quatBone("hand-r", math.QuatFromEulerXYZ(math.Vec3{Y: -0.3}))
				l.Location = math.Vec3{X: 0.1}
				r.Location = math.Vec3{X: -0.2}
				return []*scene.PoseBone{l, r}
			},
		},
		{
			name: "euler xyz",
			bones: func() []*scene.PoseBone {
				return []*scene.PoseBone{
					eulerBone("foot L", math.Vec3{X: 0.3, Y: 0.2}),
					eulerBone("root", math.Vec3{Z: 1}),
					eulerBone("foot R", math.Vec3{X: -0.1}),
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bones := tt.bones()
			original := clonePose(bones)

			require.NoError(t, MirrorPose(bones))
			assert.NotEqual(t, original, clonePose(bones))

			require.NoError(t, MirrorPose(bones))
			assert.Equal(t, original, clonePose(bones))
		})
	}
}

func TestMirrorPose_SwapsLocations(t *testing.T) {
	l := quatBone("arm_l", math.QuatIdentity())
	r := quatBone("arm_r", math.QuatIdentity())
	l.Location = math.Vec3{X: 1}
	r.Location = math.Vec3{X: -1, Y: 2}

	require.NoError(t, MirrorPose([]*scene.PoseBone{l, r}))
	assert.Equal(t, math.Vec3{X: -1, Y: 2}, l.Location)
	assert.Equal(t, math.Vec3{X: 1}, r.Location)
}

func TestMirrorPose_Errors(t *testing.T) {
	tests := []struct {
		name    string
		bones   func() []*scene.PoseBone
		wantErr error
	}{
		{
			name: "missing counterpart",
			bones: func() []*scene.PoseBone {
				return []*scene.PoseBone{quatBone("arm_l", math.QuatIdentity())}
			},
			wantErr: ErrMissingCounterpart,
		},
		{
			name: "ambiguous counterpart",
			bones: func() []*scene.PoseBone {
				return []*scene.PoseBone{
					quatBone("arm_l", math.QuatIdentity()),
					quatBone("arm_r", math.QuatIdentity()),
					quatBone("arm_R", math.QuatIdentity()),
				}
			},
			wantErr: ErrAmbiguousCounterpart,
		},
		{
			name: "rotation mode mismatch",
			bones: func() []*scene.PoseBone {
				return []*scene.PoseBone{
					quatBone("arm_l", math.QuatIdentity()),
					eulerBone("arm_r", math.Vec3{}),
				}
			},
			wantErr: ErrRotationModeMismatch,
		},
		{
			name: "unsupported rotation mode",
			bones: func() []*scene.PoseBone {
				return []*scene.PoseBone{
					{Name: "arm_l", RotationMode: "ZYX"},
					{Name: "arm_r", RotationMode: "ZYX"},
				}
			},
			wantErr: ErrUnsupportedRotationMode,
		},
		{
			name: "asymmetric location",
			bones: func() []*scene.PoseBone {
				l := quatBone("arm_l", math.QuatIdentity())
				l.Location = math.Vec3{Y: 1}
				return []*scene.PoseBone{l, quatBone("arm_r", math.QuatIdentity())}
			},
			wantErr: ErrAsymmetricLocation,
		},
		{
			name: "asymmetric location on right side",
			bones: func() []*scene.PoseBone {
				r := quatBone("arm_r", math.QuatIdentity())
				r.Location = math.Vec3{Y: 1}
				return []*scene.PoseBone{quatBone("arm_l", math.QuatIdentity()), r}
			},
			wantErr: ErrAsymmetricLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MirrorPose(tt.bones())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "arm_")
		})
	}
}

func TestMirrorPose_NoChangeOnError(t *testing.T) {
	bones := []*scene.PoseBone{
		quatBone("arm_l", math.QuatFromEulerXYZ(math.Vec3{X: 1})),
		quatBone("arm_r", math.QuatIdentity()),
		quatBone("leg_l", math.QuatIdentity()),
	}
	original := clonePose(bones)

	assert.ErrorIs(t, MirrorPose(bones), ErrMissingCounterpart)
	assert.Equal(t, original, clonePose(bones))
}

func TestCounterpart(t *testing.T) {
	bones := []*scene.PoseBone{
		{Name: "spine"},
		{Name: "arm.L"},
		{Name: "arm.R"},
		{Name: "arm_rL"},
		{Name: "armR"},
		{Name: "a+b_l"},
		{Name: "a+b_r"},
		{Name: "aab_r"},
	}

	tests := []struct {
		bone     int
		wantOK   bool
		wantMate string
	}{
		{0, false, ""},
		{1, true, "arm.R"},
		{2, true, "arm.L"},
		{4, false, ""},
		{5, true, "a+b_r"},
	}

	for _, tt := range tests {
		t.Run(bones[tt.bone].Name, func(t *testing.T) {
			mate, ok, err := Counterpart(bones[tt.bone], bones, map[string]bool{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, mate)
				assert.Equal(t, tt.wantMate, mate.Name)
			}
		})
	}

	t.Run("processed bones are skipped", func(t *testing.T) {
		_, _, err := Counterpart(bones[1], bones, map[string]bool{"arm.R": true})
		assert.ErrorIs(t, err, ErrMissingCounterpart)
	})
}
