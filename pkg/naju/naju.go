// Package naju implements the NajuEngine .mesh / .armature interchange
// format: vertex deduplication, mesh and armature documents, pose-library
// frame naming and left/right pose mirroring.
package naju

import (
	"errors"

	"github.com/Faultbox/naju-export/pkg/xmlfile"
)

// Revision is the format revision written into every document.
const Revision = 1

// Document root elements.
const (
	RootMesh         = "mesh"
	RootMetaMesh     = "meta-mesh"
	RootArmature     = "armature"
	RootMetaArmature = "meta-armature"
)

// File extensions for the two document kinds.
const (
	ExtMesh     = ".mesh"
	ExtArmature = ".armature"
)

// Export errors. All of them abort the export.
var (
	ErrMissingCounterpart        = errors.New("bone has no mirror counterpart")
	ErrAmbiguousCounterpart      = errors.New("bone has more than one mirror counterpart")
	ErrRotationModeMismatch      = errors.New("mirrored bones have different rotation modes")
	ErrUnsupportedRotationMode   = errors.New("unsupported rotation mode")
	ErrAsymmetricLocation        = errors.New("only one mirrored bone has a location")
	ErrUnparseableFrameName      = errors.New("pose name can not be interpreted as a frame")
	ErrInvalidAnimationSelection = errors.New("invalid animation selection")
	ErrMissingMirrorSource       = errors.New("mirror frame refers to a missing frame")
	ErrInvalidPolygon            = errors.New("invalid polygon")
)

// WriteHeader writes the revision and the unit scale block.
func WriteHeader(w *xmlfile.Writer) {
	w.Int("revision", Revision)
	w.Open("scale")
	w.PrintLine("<center>0</center>", 0)
	w.PrintLine("<into>0</into>", 0)
	w.PrintLine("<x>1.0</x>", 0)
	w.PrintLine("<y>1.0</y>", 0)
	w.PrintLine("<z>1.0</z>", 0)
	w.CloseTag("scale")
}
