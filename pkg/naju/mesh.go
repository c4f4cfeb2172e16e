package naju

import (
	"path"
	"strings"

	"github.com/Faultbox/naju-export/pkg/scene"
	"github.com/Faultbox/naju-export/pkg/xmlfile"
)

// Default texture reference settings.
const (
	DefaultTextureDir  = "gfx/textures"
	DefaultStubTexture = "stub.png"
)

// TextureOptions controls the <texture> path written for each mesh.
type TextureOptions struct {
	Dir  string // Directory prefix, e.g. "gfx/textures"
	Stub string // File used when a mesh has no image
}

// DefaultTextureOptions returns the engine's texture layout.
func DefaultTextureOptions() TextureOptions {
	return TextureOptions{Dir: DefaultTextureDir, Stub: DefaultStubTexture}
}

// TexturePath returns the engine path for image, or the stub for nil.
func (o TextureOptions) TexturePath(image *scene.Image) string {
	name := o.Stub
	if image != nil {
		name = imageBase(image.Filepath)
	}
	if o.Dir == "" {
		return name
	}
	return strings.TrimSuffix(o.Dir, "/") + "/" + name
}

// imageBase strips directories from host paths, which may use either
// separator and a leading "//" for blend-relative paths.
func imageBase(p string) string {
	return path.Base(strings.ReplaceAll(p, `\`, "/"))
}

// WriteMesh writes the body of one mesh element for the faces of obj bound
// to image. Sub-meshes also carry the object's offset.
func WriteMesh(w *xmlfile.Writer, obj *scene.Object, image *scene.Image, sub bool, tex TextureOptions) (*Geometry, error) {
	g, err := Deduplicate(obj.Mesh, image)
	if err != nil {
		return nil, err
	}

	w.Element("name", obj.Name)

	if sub {
		w.Open("offset")
		w.Float("x", obj.Location.X)
		w.Float("y", obj.Location.Y)
		w.Float("z", obj.Location.Z)
		w.CloseTag("offset")
	}

	for i := range g.Vertices {
		writeVertex(w, &g.Vertices[i])
	}

	for _, tri := range g.Triangles {
		w.Open("face")
		w.Int("a", tri.A)
		w.Int("b", tri.B)
		w.Int("c", tri.C)
		w.CloseTag("face")
	}

	w.Element("texture", tex.TexturePath(image))
	return g, nil
}

func writeVertex(w *xmlfile.Writer, v *Vertex) {
	w.Open("vertex")
	w.Open("color")
	w.Float("r", v.Color.R)
	w.Float("g", v.Color.G)
	w.Float("b", v.Color.B)
	w.Float("a", v.Color.A)
	w.CloseTag("color")
	if v.TexCoord != nil {
		w.Open("texcoord")
		w.Float("s", v.TexCoord.S)
		w.Float("t", v.TexCoord.T)
		w.CloseTag("texcoord")
	}
	w.Float("x", v.Position.X)
	w.Float("y", v.Position.Y)
	w.Float("z", v.Position.Z)
	w.CloseTag("vertex")
}

// MeshPart is one <mesh> or <submesh> element of a document.
type MeshPart struct {
	Object *scene.Object
	Image  *scene.Image
	Sub    bool
}

// Element returns the element name for the part.
func (p MeshPart) Element() string {
	if p.Sub {
		return "submesh"
	}
	return RootMesh
}

// MeshPlan is the layout of a mesh document.
type MeshPlan struct {
	Root  string // RootMesh or RootMetaMesh
	Parts []MeshPart
}

// PlanMeshes lays out the mesh document for the given mesh objects. The
// first object contributes one root mesh per distinct image; later objects
// contribute one sub-mesh per image. A single object with a single image
// produces a plain mesh document. No objects produce an empty plan.
func PlanMeshes(meshes []*scene.Object) MeshPlan {
	if len(meshes) == 0 {
		return MeshPlan{}
	}

	first := meshes[0]
	images := CollectImages(first.Mesh)
	if len(images) == 1 && len(meshes) == 1 {
		return MeshPlan{
			Root:  RootMesh,
			Parts: []MeshPart{{Object: first, Image: images[0]}},
		}
	}

	plan := MeshPlan{Root: RootMetaMesh}
	for _, img := range images {
		plan.Parts = append(plan.Parts, MeshPart{Object: first, Image: img})
	}
	for _, obj := range meshes[1:] {
		for _, img := range CollectImages(obj.Mesh) {
			plan.Parts = append(plan.Parts, MeshPart{Object: obj, Image: img, Sub: true})
		}
	}
	return plan
}

// WriteMeshDocument writes a planned mesh document. Plain mesh documents
// hold the mesh body directly under the root.
func WriteMeshDocument(w *xmlfile.Writer, plan MeshPlan, tex TextureOptions) error {
	WriteHeader(w)
	if plan.Root == RootMesh {
		part := plan.Parts[0]
		_, err := WriteMesh(w, part.Object, part.Image, false, tex)
		return err
	}
	for _, part := range plan.Parts {
		w.Open(part.Element())
		if _, err := WriteMesh(w, part.Object, part.Image, part.Sub, tex); err != nil {
			return err
		}
		w.CloseTag(part.Element())
	}
	return nil
}
