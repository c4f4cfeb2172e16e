// Package xmlfile writes indentation-tracked, line-oriented XML documents
// with a single root element.
package xmlfile

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Indent is the indent-level change used to open and close elements.
const Indent = 1

const (
	declaration = `<?xml version="1.0" encoding="utf-8"?>`
	namespaces  = `xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema"`
)

// Writer emits XML one line at a time.
type Writer struct {
	path   string
	root   string
	file   *os.File
	buf    *bufio.Writer
	indent int
	err    error
	closed bool
	log    *zap.Logger
}

// Create opens path for writing and emits the declaration and root tag.
func Create(path, root string, log *zap.Logger) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	w := newWriter(f, root, log)
	w.path = path
	w.file = f
	return w, nil
}

// New writes a document to an arbitrary writer. Close flushes but does not
// close out.
func New(out io.Writer, root string, log *zap.Logger) *Writer {
	return newWriter(out, root, log)
}

func newWriter(out io.Writer, root string, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Writer{
		root: root,
		buf:  bufio.NewWriter(out),
		log:  log,
	}
	w.PrintLine(declaration, 0)
	w.PrintLine("<"+root+" "+namespaces+">", Indent)
	return w
}

// Root returns the root element name.
func (w *Writer) Root() string {
	return w.root
}

// Path returns the output file path, empty for writers created with New.
func (w *Writer) Path() string {
	return w.path
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}

// PrintLine writes one line. A negative indentChange is applied before the
// line, a positive one after it. The indent level never drops below zero.
func (w *Writer) PrintLine(line string, indentChange int) {
	if indentChange < 0 {
		w.indent += indentChange
	}
	if w.indent < 0 {
		w.indent = 0
	}
	if w.err == nil {
		_, w.err = w.buf.WriteString(strings.Repeat("  ", w.indent) + line + "\n")
	}
	if indentChange > 0 {
		w.indent += indentChange
	}
}

// Open writes <tag> and indents.
func (w *Writer) Open(tag string) {
	w.PrintLine("<"+tag+">", Indent)
}

// CloseTag dedents and writes </tag>.
func (w *Writer) CloseTag(tag string) {
	w.PrintLine("</"+tag+">", -Indent)
}

// Element writes <tag>value</tag> with value escaped.
func (w *Writer) Element(tag, value string) {
	w.PrintLine("<"+tag+">"+Escape(value)+"</"+tag+">", 0)
}

// Float writes a float element with six decimals.
func (w *Writer) Float(tag string, v float64) {
	w.PrintLine(fmt.Sprintf("<%s>%f</%s>", tag, v, tag), 0)
}

// Int writes an integer element.
func (w *Writer) Int(tag string, v int) {
	w.PrintLine(fmt.Sprintf("<%s>%d</%s>", tag, v, tag), 0)
}

// Close writes the closing root tag, flushes and releases the file. The
// file is released even when writing fails. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.PrintLine("</"+w.root+">", -Indent)
	if w.err == nil {
		w.err = w.buf.Flush()
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil && w.err == nil {
			w.err = err
		}
	}
	if w.err != nil {
		return fmt.Errorf("writing %s: %w", w.describe(), w.err)
	}

	w.log.Info("saved", zap.String("file", w.describe()), zap.String("root", w.root))
	return nil
}

// Abort releases the file without completing the document and removes it.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.file == nil {
		return nil
	}
	w.file.Close()
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	w.log.Warn("removed partial file", zap.String("file", w.path))
	return nil
}

func (w *Writer) describe() string {
	if w.path != "" {
		return w.path
	}
	return "<" + w.root + ">"
}

// Escape replaces XML special characters in text content.
func Escape(s string) string {
	if !strings.ContainsAny(s, `<>&'"`+"\r\n\t") {
		return s
	}
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
