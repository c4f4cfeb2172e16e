package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/naju-export/pkg/math"
)

// Scene file layout. References between entries are by name.
type (
	sceneFile struct {
		FrameStart int            `yaml:"frame_start"`
		FrameEnd   int            `yaml:"frame_end"`
		Images     []imageFile    `yaml:"images,omitempty"`
		Materials  []materialFile `yaml:"materials,omitempty"`
		Objects    []objectFile   `yaml:"objects"`
	}

	imageFile struct {
		Name     string `yaml:"name"`
		Filepath string `yaml:"filepath"`
	}

	textureFile struct {
		Type  string `yaml:"type"`
		Image string `yaml:"image,omitempty"`
	}

	materialFile struct {
		Name         string       `yaml:"name"`
		Diffuse      [3]float64   `yaml:"diffuse,flow"`
		Translucency float64      `yaml:"translucency"`
		Texture      *textureFile `yaml:"texture,omitempty"`
	}

	polygonFile struct {
		Vertices []int        `yaml:"vertices,flow"`
		Material int          `yaml:"material"`
		UV       [][2]float64 `yaml:"uv,omitempty,flow"`
	}

	meshFile struct {
		Vertices  [][3]float64  `yaml:"vertices,flow"`
		Materials []string      `yaml:"materials,flow"`
		Polygons  []polygonFile `yaml:"polygons"`
	}

	boneFile struct {
		Name   string     `yaml:"name"`
		Parent string     `yaml:"parent,omitempty"`
		Head   [3]float64 `yaml:"head,flow"`
		Tail   [3]float64 `yaml:"tail,flow"`
	}

	poseBoneFile struct {
		Name         string     `yaml:"name"`
		RotationMode string     `yaml:"rotation_mode"`
		Quaternion   [4]float64 `yaml:"rotation_quaternion,flow"` // w, x, y, z
		Euler        [3]float64 `yaml:"rotation_euler,flow"`
		Location     [3]float64 `yaml:"location,flow"`
	}

	transformFile struct {
		Quaternion [4]float64 `yaml:"rotation_quaternion,flow"`
		Euler      [3]float64 `yaml:"rotation_euler,flow"`
		Location   [3]float64 `yaml:"location,flow"`
	}

	markerFile struct {
		Name  string                   `yaml:"name"`
		Frame int                      `yaml:"frame"`
		Bones map[string]transformFile `yaml:"bones"`
	}

	keyframeFile struct {
		Frame int            `yaml:"frame"`
		Pose  []poseBoneFile `yaml:"pose"`
	}

	armatureFile struct {
		Bones     []boneFile     `yaml:"bones"`
		Pose      []poseBoneFile `yaml:"pose,omitempty"`
		Library   []markerFile   `yaml:"pose_library,omitempty"`
		Keyframes []keyframeFile `yaml:"keyframes,omitempty"`
	}

	objectFile struct {
		Name     string        `yaml:"name"`
		Type     string        `yaml:"type"`
		Location [3]float64    `yaml:"location,flow"`
		Selected bool          `yaml:"selected,omitempty"`
		Mesh     *meshFile     `yaml:"mesh,omitempty"`
		Armature *armatureFile `yaml:"armature,omitempty"`
	}
)

// Parse parses a YAML scene document and resolves its references.
func Parse(data []byte) (*Scene, error) {
	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}

	s := &Scene{
		FrameStart: f.FrameStart,
		FrameEnd:   f.FrameEnd,
	}

	for _, img := range f.Images {
		s.Images = append(s.Images, &Image{Name: img.Name, Filepath: img.Filepath})
	}

	for _, mf := range f.Materials {
		mat := &Material{
			Name:         mf.Name,
			Diffuse:      mf.Diffuse,
			Translucency: mf.Translucency,
		}
		if mf.Texture != nil {
			mat.Texture = &Texture{Type: mf.Texture.Type}
			if mf.Texture.Image != "" {
				mat.Texture.Image = s.image(mf.Texture.Image)
				if mat.Texture.Image == nil {
					return nil, fmt.Errorf("%w: material '%s' image '%s'", ErrUnknownReference, mf.Name, mf.Texture.Image)
				}
			}
		}
		s.Materials = append(s.Materials, mat)
	}

	for _, of := range f.Objects {
		obj, err := s.parseObject(of)
		if err != nil {
			return nil, err
		}
		s.Objects = append(s.Objects, obj)
	}

	return s, nil
}

func (s *Scene) parseObject(of objectFile) (*Object, error) {
	obj := &Object{
		Name:     of.Name,
		Kind:     ParseKind(of.Type),
		TypeTag:  of.Type,
		Location: math.Vec3FromArray(of.Location),
		Selected: of.Selected,
	}

	switch obj.Kind {
	case KindMesh:
		if of.Mesh == nil {
			return nil, fmt.Errorf("%w: mesh object '%s' has no mesh data", ErrInvalidScene, of.Name)
		}
		mesh := &Mesh{}
		for _, v := range of.Mesh.Vertices {
			mesh.Vertices = append(mesh.Vertices, math.Vec3FromArray(v))
		}
		for _, name := range of.Mesh.Materials {
			mat := s.material(name)
			if mat == nil {
				return nil, fmt.Errorf("%w: object '%s' material '%s'", ErrUnknownReference, of.Name, name)
			}
			mesh.Materials = append(mesh.Materials, mat)
		}
		for _, pf := range of.Mesh.Polygons {
			mesh.Polygons = append(mesh.Polygons, Polygon{
				Vertices: pf.Vertices,
				Material: pf.Material,
				UV:       pf.UV,
			})
		}
		if err := mesh.validate(of.Name); err != nil {
			return nil, err
		}
		obj.Mesh = mesh

	case KindArmature:
		if of.Armature == nil {
			return nil, fmt.Errorf("%w: armature object '%s' has no armature data", ErrInvalidScene, of.Name)
		}
		arm := &Armature{}
		for _, bf := range of.Armature.Bones {
			arm.Bones = append(arm.Bones, &Bone{
				Name:   bf.Name,
				Parent: bf.Parent,
				Head:   math.Vec3FromArray(bf.Head),
				Tail:   math.Vec3FromArray(bf.Tail),
			})
		}
		if err := arm.linkChildren(); err != nil {
			return nil, fmt.Errorf("object '%s': %w", of.Name, err)
		}
		for _, pf := range of.Armature.Pose {
			pb := parsePoseBone(pf)
			arm.Pose = append(arm.Pose, &pb)
		}
		if len(arm.Pose) == 0 {
			// Every rest bone has a live pose bone; an omitted pose is the rest pose.
			for _, b := range arm.Bones {
				arm.Pose = append(arm.Pose, &PoseBone{
					Name:         b.Name,
					RotationMode: RotationQuaternion,
					Quaternion:   math.QuatIdentity(),
				})
			}
		}
		for _, mf := range of.Armature.Library {
			marker := &PoseMarker{
				Name:  mf.Name,
				Frame: mf.Frame,
				Bones: make(map[string]BoneTransform, len(mf.Bones)),
			}
			for name, tf := range mf.Bones {
				marker.Bones[name] = BoneTransform{
					Quaternion: quatOrIdentity(tf.Quaternion),
					Euler:      math.Vec3FromArray(tf.Euler),
					Location:   math.Vec3FromArray(tf.Location),
				}
			}
			arm.Library = append(arm.Library, marker)
		}
		for _, kf := range of.Armature.Keyframes {
			key := Keyframe{Frame: kf.Frame}
			for _, pf := range kf.Pose {
				key.Pose = append(key.Pose, parsePoseBone(pf))
			}
			arm.Keyframes = append(arm.Keyframes, key)
		}
		obj.Armature = arm
	}

	return obj, nil
}

func parsePoseBone(pf poseBoneFile) PoseBone {
	mode := pf.RotationMode
	if mode == "" {
		mode = RotationQuaternion
	}
	return PoseBone{
		Name:         pf.Name,
		RotationMode: mode,
		Quaternion:   quatOrIdentity(pf.Quaternion),
		Euler:        math.Vec3FromArray(pf.Euler),
		Location:     math.Vec3FromArray(pf.Location),
	}
}

// quatOrIdentity treats an omitted (all-zero) quaternion as no rotation.
func quatOrIdentity(wxyz [4]float64) math.Quat {
	if wxyz == [4]float64{} {
		return math.QuatIdentity()
	}
	return math.QuatFromWXYZ(wxyz)
}

// Load parses a YAML scene file from disk.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the scene back to YAML.
func (s *Scene) Marshal() ([]byte, error) {
	f := sceneFile{
		FrameStart: s.FrameStart,
		FrameEnd:   s.FrameEnd,
	}
	for _, img := range s.Images {
		f.Images = append(f.Images, imageFile{Name: img.Name, Filepath: img.Filepath})
	}
	for _, mat := range s.Materials {
		mf := materialFile{
			Name:         mat.Name,
			Diffuse:      mat.Diffuse,
			Translucency: mat.Translucency,
		}
		if mat.Texture != nil {
			mf.Texture = &textureFile{Type: mat.Texture.Type}
			if mat.Texture.Image != nil {
				mf.Texture.Image = mat.Texture.Image.Name
			}
		}
		f.Materials = append(f.Materials, mf)
	}
	for _, obj := range s.Objects {
		f.Objects = append(f.Objects, marshalObject(obj))
	}
	return yaml.Marshal(&f)
}

func marshalObject(obj *Object) objectFile {
	tag := obj.TypeTag
	if tag == "" {
		tag = obj.Kind.String()
	}
	of := objectFile{
		Name:     obj.Name,
		Type:     tag,
		Location: obj.Location.Array(),
		Selected: obj.Selected,
	}
	if m := obj.Mesh; m != nil {
		mf := &meshFile{}
		for _, v := range m.Vertices {
			mf.Vertices = append(mf.Vertices, v.Array())
		}
		for _, mat := range m.Materials {
			mf.Materials = append(mf.Materials, mat.Name)
		}
		for _, p := range m.Polygons {
			mf.Polygons = append(mf.Polygons, polygonFile{Vertices: p.Vertices, Material: p.Material, UV: p.UV})
		}
		of.Mesh = mf
	}
	if a := obj.Armature; a != nil {
		af := &armatureFile{}
		for _, b := range a.Bones {
			af.Bones = append(af.Bones, boneFile{
				Name:   b.Name,
				Parent: b.Parent,
				Head:   b.Head.Array(),
				Tail:   b.Tail.Array(),
			})
		}
		for _, pb := range a.Pose {
			af.Pose = append(af.Pose, marshalPoseBone(*pb))
		}
		for _, m := range a.Library {
			mf := markerFile{Name: m.Name, Frame: m.Frame, Bones: make(map[string]transformFile, len(m.Bones))}
			for name, tr := range m.Bones {
				mf.Bones[name] = transformFile{
					Quaternion: tr.Quaternion.WXYZ(),
					Euler:      tr.Euler.Array(),
					Location:   tr.Location.Array(),
				}
			}
			af.Library = append(af.Library, mf)
		}
		for _, kf := range a.Keyframes {
			kff := keyframeFile{Frame: kf.Frame}
			for _, pb := range kf.Pose {
				kff.Pose = append(kff.Pose, marshalPoseBone(pb))
			}
			af.Keyframes = append(af.Keyframes, kff)
		}
		of.Armature = af
	}
	return of
}

func marshalPoseBone(pb PoseBone) poseBoneFile {
	return poseBoneFile{
		Name:         pb.Name,
		RotationMode: pb.RotationMode,
		Quaternion:   pb.Quaternion.WXYZ(),
		Euler:        pb.Euler.Array(),
		Location:     pb.Location.Array(),
	}
}

// Save writes the scene as YAML, creating parent directories if needed.
func (s *Scene) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
