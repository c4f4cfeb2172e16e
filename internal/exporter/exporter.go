// Package exporter turns a scene selection into NajuEngine documents on disk.
package exporter

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/naju-export/internal/config"
	"github.com/Faultbox/naju-export/pkg/naju"
	"github.com/Faultbox/naju-export/pkg/scene"
	"github.com/Faultbox/naju-export/pkg/xmlfile"
)

// Options controls where and how documents are written.
type Options struct {
	OutputDir        string
	Texture          naju.TextureOptions
	AnimationPattern string // empty exports every animation
}

// OptionsFromConfig builds export options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		OutputDir: cfg.Export.OutputDir,
		Texture: naju.TextureOptions{
			Dir:  cfg.Export.TextureDir,
			Stub: cfg.Export.StubTexture,
		},
		AnimationPattern: cfg.Animation.NamePattern,
	}
}

// Exporter writes mesh and armature documents.
type Exporter struct {
	opts      Options
	log       *zap.Logger
	armatures *naju.ArmatureWriter
}

// New creates an exporter. It fails when the animation pattern does not compile.
func New(opts Options, log *zap.Logger) (*Exporter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	frames, err := naju.NewFrameParser(opts.AnimationPattern)
	if err != nil {
		return nil, err
	}
	aw := naju.NewArmatureWriter(log)
	aw.Frames = frames
	return &Exporter{opts: opts, log: log, armatures: aw}, nil
}

// Selection is a partition of objects by exportable kind.
type Selection struct {
	Meshes    []*scene.Object
	Armatures []*scene.Object
	Skipped   []*scene.Object
}

// Partition splits objects into meshes and armatures, keeping their order.
// Objects of any other kind are skipped with a warning.
func Partition(objects []*scene.Object, log *zap.Logger) Selection {
	if log == nil {
		log = zap.NewNop()
	}
	var sel Selection
	for _, obj := range objects {
		switch obj.Kind {
		case scene.KindMesh:
			sel.Meshes = append(sel.Meshes, obj)
		case scene.KindArmature:
			sel.Armatures = append(sel.Armatures, obj)
		default:
			log.Warn("skipping object of unsupported type",
				zap.String("object", obj.Name), zap.String("type", obj.TypeTag))
			sel.Skipped = append(sel.Skipped, obj)
		}
	}
	return sel
}

// OutputBase strips any extension from name and places it in dir.
func OutputBase(dir, name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if dir == "" {
		return base
	}
	return filepath.Join(dir, base)
}

// Export writes the documents for objects under the name base. It returns
// the paths written: a .mesh file when any mesh is selected and an
// .armature file when any armature is selected. A failing document is
// removed; documents finished before the failure are kept.
func (e *Exporter) Export(objects []*scene.Object, name string) ([]string, error) {
	sel := Partition(objects, e.log)
	base := OutputBase(e.opts.OutputDir, name)

	if e.opts.OutputDir != "" {
		if err := os.MkdirAll(e.opts.OutputDir, 0755); err != nil {
			return nil, errors.Wrapf(err, "creating output directory %s", e.opts.OutputDir)
		}
	}

	var written []string

	if len(sel.Meshes) > 0 {
		for _, obj := range sel.Meshes {
			e.warnDroppedFaces(obj)
		}
		plan := naju.PlanMeshes(sel.Meshes)
		path := base + naju.ExtMesh
		err := e.writeDocument(path, plan.Root, func(w *xmlfile.Writer) error {
			return naju.WriteMeshDocument(w, plan, e.opts.Texture)
		})
		if err != nil {
			return written, err
		}
		e.log.Info("mesh document written",
			zap.String("file", path), zap.Int("objects", len(sel.Meshes)), zap.Int("parts", len(plan.Parts)))
		written = append(written, path)
	}

	if len(sel.Armatures) > 0 {
		plan := naju.PlanArmatures(sel.Armatures)
		path := base + naju.ExtArmature
		err := e.writeDocument(path, plan.Root, func(w *xmlfile.Writer) error {
			return e.armatures.WriteArmatureDocument(w, plan)
		})
		if err != nil {
			return written, err
		}
		e.log.Info("armature document written",
			zap.String("file", path), zap.Int("objects", len(sel.Armatures)))
		written = append(written, path)
	}

	if len(written) == 0 {
		e.log.Warn("nothing to export", zap.Int("selected", len(objects)))
	}
	return written, nil
}

// writeDocument creates path, runs body and completes the document. Any
// failure removes the partial file.
func (e *Exporter) writeDocument(path, root string, body func(*xmlfile.Writer) error) error {
	w, err := xmlfile.Create(path, root, e.log)
	if err != nil {
		return errors.Wrapf(err, "exporting %s", path)
	}
	if err := body(w); err != nil {
		if abortErr := w.Abort(); abortErr != nil {
			e.log.Error("removing partial file", zap.String("file", path), zap.Error(abortErr))
		}
		return errors.Wrapf(err, "exporting %s", path)
	}
	if err := w.Close(); err != nil {
		_ = os.Remove(path)
		return errors.Wrapf(err, "exporting %s", path)
	}
	return nil
}

// warnDroppedFaces reports faces left out of every sub-mesh: faces without an
// image on an object whose other faces carry images.
func (e *Exporter) warnDroppedFaces(obj *scene.Object) {
	if naju.CollectImages(obj.Mesh)[0] == nil {
		return
	}
	dropped := 0
	for i := range obj.Mesh.Polygons {
		if obj.Mesh.FaceImage(&obj.Mesh.Polygons[i]) == nil {
			dropped++
		}
	}
	if dropped > 0 {
		e.log.Warn("faces without an image are not exported",
			zap.String("object", obj.Name), zap.Int("faces", dropped))
	}
}
