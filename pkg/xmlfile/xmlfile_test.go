package xmlfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriter_Document(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, "mesh", nil)
	w.Int("revision", 1)
	w.Open("scale")
	w.PrintLine("<center>0</center>", 0)
	w.CloseTag("scale")
	require.NoError(t, w.Close())

	want := `<?xml version="1.0" encoding="utf-8"?>
<mesh xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema">
  <revision>1</revision>
  <scale>
    <center>0</center>
  </scale>
</mesh>
`
	assert.Equal(t, want, buf.String())
}

func TestWriter_IndentFloorsAtZero(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, "r", nil)
	w.PrintLine("a", -5)
	w.PrintLine("b", 1)
	w.PrintLine("c", 0)
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "a", lines[2])
	assert.Equal(t, "b", lines[3])
	assert.Equal(t, "  c", lines[4])
	assert.Equal(t, "</r>", lines[5])
}

func TestWriter_Float(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, "r", nil)
	w.Float("x", 1)
	w.Float("y", -0.25)
	w.Float("z", 1.0/3.0)
	require.NoError(t, w.Close())

	out := buf.String()
	assert.Contains(t, out, "<x>1.000000</x>")
	assert.Contains(t, out, "<y>-0.250000</y>")
	assert.Contains(t, out, "<z>0.333333</z>")
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a<b", "a&lt;b"},
		{"R&D", "R&amp;D"},
		{`say "hi"`, "say &#34;hi&#34;"},
		{"it's", "it&#39;s"},
		{"x>y", "x&gt;y"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestWriter_ElementEscapes(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, "r", nil)
	w.Element("name", "<Cube & Co>")
	require.NoError(t, w.Close())
	assert.Contains(t, buf.String(), "  <name>&lt;Cube &amp; Co&gt;</name>\n")
}

func TestCreate_SavesAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	path := filepath.Join(t.TempDir(), "out.mesh")

	w, err := Create(path, "mesh", zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())
	assert.Equal(t, "mesh", w.Root())
	w.Element("name", "Cube")
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "</mesh>\n"))

	saved := logs.FilterMessage("saved").All()
	require.Len(t, saved, 1)
	assert.Equal(t, path, saved[0].ContextMap()["file"])
}

func TestCreate_BadPath(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "out.mesh"), "mesh", nil)
	assert.Error(t, err)
}

func TestAbort_RemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.armature")
	w, err := Create(path, "armature", nil)
	require.NoError(t, err)
	w.Element("name", "Rig")

	require.NoError(t, w.Abort())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Close after Abort does nothing.
	assert.NoError(t, w.Close())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriter_WriteErrorSurfacesOnClose(t *testing.T) {
	w := New(failingWriter{}, "mesh", nil)
	w.Element("name", strings.Repeat("x", 8192))
	err := w.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
