package naju

import (
	"fmt"

	"github.com/Faultbox/naju-export/pkg/math"
	"github.com/Faultbox/naju-export/pkg/scene"
)

// CornerKey identifies the output vertex of one face corner. U and V are
// only meaningful when HasUV is set.
type CornerKey struct {
	Vertex   int
	Material int
	HasUV    bool
	U, V     float64
}

// Color is an RGBA vertex color.
type Color struct {
	R, G, B, A float64
}

// TexCoord is a texture coordinate.
type TexCoord struct {
	S, T float64
}

// Vertex is a deduplicated output vertex.
type Vertex struct {
	Index    int
	Position math.Vec3
	Color    Color
	TexCoord *TexCoord // nil when the face is not image-bound
}

// Triangle references three output vertices.
type Triangle struct {
	A, B, C int
}

// Geometry is the flat vertex buffer and triangle list for one image.
type Geometry struct {
	Vertices  []Vertex
	Triangles []Triangle
}

// cornerKey builds the key for corner c of polygon p.
func cornerKey(p *scene.Polygon, c int, textured bool) CornerKey {
	key := CornerKey{Vertex: p.Vertices[c], Material: p.Material}
	if textured {
		key.HasUV = true
		key.U = p.UV[c][0]
		key.V = p.UV[c][1]
	}
	return key
}

// checkPolygon verifies the indices the engine dereferences.
func checkPolygon(m *scene.Mesh, idx int, textured bool) error {
	p := &m.Polygons[idx]
	if n := len(p.Vertices); n != 3 && n != 4 {
		return fmt.Errorf("%w: polygon %d has %d corners", ErrInvalidPolygon, idx, n)
	}
	if p.Material < 0 || p.Material >= len(m.Materials) {
		return fmt.Errorf("%w: polygon %d material slot %d", ErrInvalidPolygon, idx, p.Material)
	}
	if m.Materials[p.Material] == nil {
		return fmt.Errorf("%w: polygon %d material slot %d is empty", ErrInvalidPolygon, idx, p.Material)
	}
	for _, v := range p.Vertices {
		if v < 0 || v >= len(m.Vertices) {
			return fmt.Errorf("%w: polygon %d vertex %d", ErrInvalidPolygon, idx, v)
		}
	}
	if textured && len(p.UV) < len(p.Vertices) {
		return fmt.Errorf("%w: polygon %d has %d UVs for %d corners", ErrInvalidPolygon, idx, len(p.UV), len(p.Vertices))
	}
	return nil
}

// Deduplicate converts the faces of m bound to image (nil selects faces with
// no image) into deduplicated vertices and triangles. Vertices are indexed in
// first-seen order. Quads are split along the v0-v2 diagonal.
func Deduplicate(m *scene.Mesh, image *scene.Image) (*Geometry, error) {
	g := &Geometry{}
	indices := make(map[CornerKey]int)

	for i := range m.Polygons {
		p := &m.Polygons[i]
		faceImage := m.FaceImage(p)
		if faceImage != image {
			continue
		}
		textured := faceImage != nil
		if err := checkPolygon(m, i, textured); err != nil {
			return nil, err
		}

		corners := make([]int, len(p.Vertices))
		for c := range p.Vertices {
			key := cornerKey(p, c, textured)
			idx, ok := indices[key]
			if !ok {
				idx = len(g.Vertices)
				indices[key] = idx
				g.Vertices = append(g.Vertices, newVertex(m, p, c, idx, textured))
			}
			corners[c] = idx
		}

		g.Triangles = append(g.Triangles, Triangle{corners[0], corners[1], corners[2]})
		if len(corners) == 4 {
			g.Triangles = append(g.Triangles, Triangle{corners[0], corners[2], corners[3]})
		}
	}

	return g, nil
}

func newVertex(m *scene.Mesh, p *scene.Polygon, c, idx int, textured bool) Vertex {
	mat := m.Materials[p.Material]
	v := Vertex{
		Index:    idx,
		Position: m.Vertices[p.Vertices[c]],
		Color: Color{
			R: mat.Diffuse[0],
			G: mat.Diffuse[1],
			B: mat.Diffuse[2],
			A: 1.0 - mat.Translucency,
		},
	}
	if textured {
		v.TexCoord = &TexCoord{S: p.UV[c][0], T: p.UV[c][1]}
	}
	return v
}

// CollectImages returns the distinct images bound to m's faces in first-seen
// order. A mesh without images yields a single nil entry.
func CollectImages(m *scene.Mesh) []*scene.Image {
	var images []*scene.Image
	seen := make(map[*scene.Image]bool)
	for i := range m.Polygons {
		img := m.FaceImage(&m.Polygons[i])
		if img == nil || seen[img] {
			continue
		}
		seen[img] = true
		images = append(images, img)
	}
	if len(images) == 0 {
		return []*scene.Image{nil}
	}
	return images
}
