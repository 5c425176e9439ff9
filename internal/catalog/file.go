package catalog

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the default catalog file name.
const FileName = "library.xml"

// ErrCorrupt is returned by Update when the existing file cannot be parsed.
var ErrCorrupt = errors.New("catalog file is corrupt")

// File is the persisted catalog document. Every rewrite goes through Update
// or Rewrite, which serialize on a single mutex and replace the file with an
// atomic rename.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a File for path. The file does not need to exist.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the location of the catalog file.
func (f *File) Path() string {
	return f.path
}

// Read parses the document. A missing file yields an empty document.
func (f *File) Read() (*Document, error) {
	fh, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Document{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return decode(fh)
}

// Update applies fn to the current document and writes the result.
// Nothing is written if fn returns an error or the file is corrupt.
func (f *File) Update(fn func(doc *Document) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.Read()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := fn(doc); err != nil {
		return err
	}
	return f.write(doc)
}

// Rewrite is like Update but starts from an empty document when the existing
// content is unreadable. Used when a caller replaces whole sections.
func (f *File) Rewrite(fn func(doc *Document) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.Read()
	if err != nil {
		doc = &Document{}
	}
	if err := fn(doc); err != nil {
		return err
	}
	return f.write(doc)
}

// write encodes doc to a temp file next to the target, syncs it and renames
// it over the target.
func (f *File) write(doc *Document) (err error) {
	dir := filepath.Dir(f.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = encode(tmp, doc); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func encode(w io.Writer, doc *Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
