// Package scene provides the host scene model consumed by the exporter:
// objects, meshes, materials, bone forests and pose libraries.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/naju-export/pkg/math"
)

// Scene errors.
var (
	ErrUnknownReference = errors.New("unknown reference")
	ErrInvalidScene     = errors.New("invalid scene")
	ErrPoseIndex        = errors.New("pose index out of range")
)

// Kind is the resolved type of a scene object.
type Kind int

const (
	KindOther    Kind = iota // Anything the exporter does not write
	KindMesh                 // Polygon mesh
	KindArmature             // Bone hierarchy with pose library
)

// ParseKind resolves a host type tag. Unrecognized tags map to KindOther.
func ParseKind(tag string) Kind {
	switch tag {
	case "MESH":
		return KindMesh
	case "ARMATURE":
		return KindArmature
	default:
		return KindOther
	}
}

// String returns the host type tag.
func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "MESH"
	case KindArmature:
		return "ARMATURE"
	default:
		return "OTHER"
	}
}

// TextureTypeImage is the texture type that binds an image to a material.
const TextureTypeImage = "IMAGE"

// Image is a texture image referenced by materials.
type Image struct {
	Name     string
	Filepath string
}

// Texture is a material's active texture slot.
type Texture struct {
	Type  string
	Image *Image
}

// Material holds the shading inputs used for vertex colors.
type Material struct {
	Name         string
	Diffuse      [3]float64
	Translucency float64
	Texture      *Texture
}

// ActiveImage returns the image bound through an IMAGE-type active texture,
// or nil.
func (m *Material) ActiveImage() *Image {
	if m == nil || m.Texture == nil || m.Texture.Type != TextureTypeImage {
		return nil
	}
	return m.Texture.Image
}

// Polygon is a mesh face with 3 or 4 corners.
type Polygon struct {
	Vertices []int        // Indices into Mesh.Vertices
	Material int          // Index into Mesh.Materials
	UV       [][2]float64 // Per-corner UV, parallel to Vertices
}

// Mesh is face-indexed geometry with per-corner attributes.
type Mesh struct {
	Vertices  []math.Vec3
	Materials []*Material
	Polygons  []Polygon
}

// FaceImage returns the image bound to a polygon through its material, or nil.
func (m *Mesh) FaceImage(p *Polygon) *Image {
	if p.Material < 0 || p.Material >= len(m.Materials) {
		return nil
	}
	return m.Materials[p.Material].ActiveImage()
}

// Object is one entry of the scene's object list.
type Object struct {
	Name     string
	Kind     Kind
	TypeTag  string // Original host type tag
	Location math.Vec3
	Selected bool
	Mesh     *Mesh
	Armature *Armature
}

// Scene is a complete host scene.
type Scene struct {
	FrameStart int
	FrameEnd   int
	Images     []*Image
	Materials  []*Material
	Objects    []*Object
}

// Selection returns the selected objects in scene order. When nothing is
// marked selected, every object is returned.
func (s *Scene) Selection() []*Object {
	var selected []*Object
	for _, obj := range s.Objects {
		if obj.Selected {
			selected = append(selected, obj)
		}
	}
	if len(selected) == 0 {
		return s.Objects
	}
	return selected
}

// Object returns the object with the given name, or nil if not found.
func (s *Scene) Object(name string) *Object {
	for _, obj := range s.Objects {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}

// image returns the image with the given name, or nil.
func (s *Scene) image(name string) *Image {
	for _, img := range s.Images {
		if img.Name == name {
			return img
		}
	}
	return nil
}

// material returns the material with the given name, or nil.
func (s *Scene) material(name string) *Material {
	for _, mat := range s.Materials {
		if mat.Name == name {
			return mat
		}
	}
	return nil
}

// validate checks polygon indices against the mesh.
func (m *Mesh) validate(objName string) error {
	for i, p := range m.Polygons {
		if n := len(p.Vertices); n != 3 && n != 4 {
			return fmt.Errorf("%w: object '%s' polygon %d has %d corners", ErrInvalidScene, objName, i, n)
		}
		for _, v := range p.Vertices {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("%w: object '%s' polygon %d references vertex %d", ErrInvalidScene, objName, i, v)
			}
		}
		if p.Material < 0 || p.Material >= len(m.Materials) {
			return fmt.Errorf("%w: object '%s' polygon %d references material slot %d", ErrInvalidScene, objName, i, p.Material)
		}
		if m.FaceImage(&m.Polygons[i]) != nil && len(p.UV) != len(p.Vertices) {
			return fmt.Errorf("%w: object '%s' polygon %d is textured but has %d UVs for %d corners",
				ErrInvalidScene, objName, i, len(p.UV), len(p.Vertices))
		}
	}
	return nil
}
