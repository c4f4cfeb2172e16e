package scene

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/naju-export/pkg/math"
)

func loadCharacter(t *testing.T) *Scene {
	t.Helper()
	s, err := Load(filepath.Join("testdata", "character.yaml"))
	require.NoError(t, err)
	return s
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		tag  string
		want Kind
	}{
		{"MESH", KindMesh},
		{"ARMATURE", KindArmature},
		{"LIGHT", KindOther},
		{"mesh", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKind(tt.tag))
		})
	}
}

func TestLoad_Character(t *testing.T) {
	s := loadCharacter(t)

	require.Len(t, s.Objects, 4)
	assert.Equal(t, 1, s.FrameStart)
	assert.Equal(t, 250, s.FrameEnd)

	body := s.Object("Body")
	require.NotNil(t, body)
	assert.Equal(t, KindMesh, body.Kind)
	require.NotNil(t, body.Mesh)
	assert.Len(t, body.Mesh.Vertices, 6)
	assert.Len(t, body.Mesh.Polygons, 2)

	lamp := s.Object("Lamp")
	require.NotNil(t, lamp)
	assert.Equal(t, KindOther, lamp.Kind)
	assert.Equal(t, "LIGHT", lamp.TypeTag)

	hat := s.Object("Hat")
	require.NotNil(t, hat)
	assert.Equal(t, math.Vec3{Z: 2}, hat.Location)

	assert.Nil(t, s.Object("Missing"))
}

func TestFaceImage(t *testing.T) {
	s := loadCharacter(t)

	body := s.Object("Body").Mesh
	img0 := body.FaceImage(&body.Polygons[0])
	img1 := body.FaceImage(&body.Polygons[1])
	require.NotNil(t, img0)
	require.NotNil(t, img1)
	assert.Equal(t, "skin", img0.Name)
	assert.Equal(t, "cloth", img1.Name)

	// Non-IMAGE texture types bind no image.
	hat := s.Object("Hat").Mesh
	assert.Nil(t, hat.FaceImage(&hat.Polygons[0]))
}

func TestArmatureRoots(t *testing.T) {
	s := loadCharacter(t)
	arm := s.Object("Rig").Armature
	require.NotNil(t, arm)

	roots := arm.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "spine", roots[0].Name)

	var children []string
	for _, c := range roots[0].Children {
		children = append(children, c.Name)
	}
	assert.Equal(t, []string{"arm_l", "neck", "arm_r"}, children)
}

func TestSelection(t *testing.T) {
	s := &Scene{Objects: []*Object{{Name: "a"}, {Name: "b", Selected: true}, {Name: "c"}}}
	sel := s.Selection()
	require.Len(t, sel, 1)
	assert.Equal(t, "b", sel[0].Name)

	s.Objects[1].Selected = false
	assert.Len(t, s.Selection(), 3)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "unknown material",
			yaml: `
objects:
  - name: A
    type: MESH
    mesh: {vertices: [[0,0,0]], materials: [nope], polygons: []}
`,
			wantErr: ErrUnknownReference,
		},
		{
			name: "unknown image",
			yaml: `
materials:
  - name: m
    texture: {type: IMAGE, image: ghost}
objects: []
`,
			wantErr: ErrUnknownReference,
		},
		{
			name: "unknown parent",
			yaml: `
objects:
  - name: R
    type: ARMATURE
    armature:
      bones:
        - {name: a, parent: b}
`,
			wantErr: ErrUnknownReference,
		},
		{
			name: "pentagon",
			yaml: `
materials: [{name: m}]
objects:
  - name: A
    type: MESH
    mesh:
      vertices: [[0,0,0],[1,0,0],[1,1,0],[0,1,0],[0,2,0]]
      materials: [m]
      polygons: [{vertices: [0,1,2,3,4], material: 0}]
`,
			wantErr: ErrInvalidScene,
		},
		{
			name: "vertex out of range",
			yaml: `
materials: [{name: m}]
objects:
  - name: A
    type: MESH
    mesh:
      vertices: [[0,0,0]]
      materials: [m]
      polygons: [{vertices: [0,1,2], material: 0}]
`,
			wantErr: ErrInvalidScene,
		},
		{
			name: "textured face without uv",
			yaml: `
images: [{name: i, filepath: i.png}]
materials: [{name: m, texture: {type: IMAGE, image: i}}]
objects:
  - name: A
    type: MESH
    mesh:
      vertices: [[0,0,0],[1,0,0],[0,1,0]]
      materials: [m]
      polygons: [{vertices: [0,1,2], material: 0}]
`,
			wantErr: ErrInvalidScene,
		},
		{
			name: "mesh without data",
			yaml: `
objects:
  - {name: A, type: MESH}
`,
			wantErr: ErrInvalidScene,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_OmittedPoseIsRestPose(t *testing.T) {
	s, err := Parse([]byte(`
objects:
  - name: R
    type: ARMATURE
    armature:
      bones:
        - {name: root}
        - {name: arm_l, parent: root}
        - {name: arm_r, parent: root}
      pose_library:
        - name: wave 0
          bones:
            arm_l: {rotation_quaternion: [0.6, 0.8, 0, 0]}
`))
	require.NoError(t, err)

	arm := s.Object("R").Armature
	require.Len(t, arm.Pose, 3)
	for i, name := range []string{"root", "arm_l", "arm_r"} {
		assert.Equal(t, name, arm.Pose[i].Name)
		assert.Equal(t, RotationQuaternion, arm.Pose[i].RotationMode)
		assert.Equal(t, math.QuatIdentity(), arm.Pose[i].Quaternion)
		assert.True(t, arm.Pose[i].Location.IsZero())
	}

	require.NoError(t, arm.ApplyPose(0))
	assert.Equal(t, math.Quat{W: 0.6, X: 0.8}, arm.Pose[1].Quaternion)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("objects: [unclosed"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	s := loadCharacter(t)
	path := filepath.Join(t.TempDir(), "out", "scene.yaml")
	require.NoError(t, s.Save(path))

	again, err := Load(path)
	require.NoError(t, err)
	require.Len(t, again.Objects, len(s.Objects))

	body := again.Object("Body").Mesh
	assert.Equal(t, s.Object("Body").Mesh.Vertices, body.Vertices)
	assert.Equal(t, "skin", body.FaceImage(&body.Polygons[0]).Name)

	rig := again.Object("Rig").Armature
	require.Len(t, rig.Library, 3)
	assert.Equal(t, "walk 10 mirror 0", rig.Library[1].Name)
	assert.Equal(t, math.Vec3{Z: 0.1}, rig.Library[0].Bones["spine"].Location)
	assert.Equal(t, "LIGHT", again.Object("Lamp").TypeTag)
}
