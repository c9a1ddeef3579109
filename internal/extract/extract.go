// Package extract turns uploaded pattern files (.docx, .pdf, .txt) into
// plain text for the normalizer and parser. It is a collaborator at the
// edge of the system (spec.md §6): the core pipeline never imports it
// directly, only cmd/stitchcheck does.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned by Extract when filename's extension has
// no registered Extractor, satisfying §6's requirement for a
// distinguishable failure kind.
var ErrUnsupportedType = errors.New("unsupported file type")

// Extractor turns a file's raw bytes into plain text.
type Extractor interface {
	// Name identifies the extractor, e.g. "docx", "pdftotext", "txt".
	Name() string
	// Extensions lists the lowercase file extensions this extractor
	// handles, without the leading dot.
	Extensions() []string
	// Extract returns the file's text content.
	Extract(ctx context.Context, content []byte) (string, error)
}

// Registry dispatches Extract calls by file extension.
type Registry struct {
	byExt map[string]Extractor
}

// NewRegistry builds a Registry with the docx, pdf, and txt extractors
// registered.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.Register(NewDOCXExtractor())
	r.Register(NewPDFExtractor())
	r.Register(NewTXTExtractor())
	return r
}

// Register adds ext to the registry, indexed by every extension it claims.
func (r *Registry) Register(ext Extractor) {
	for _, e := range ext.Extensions() {
		r.byExt[strings.ToLower(e)] = ext
	}
}

// Extract dispatches to the Extractor registered for filename's extension.
func (r *Registry) Extract(ctx context.Context, filename string, content []byte) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	extractor, ok := r.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	text, err := extractor.Extract(ctx, content)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", extractor.Name(), err)
	}
	return text, nil
}
