package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"

	"github.com/panbanda/phprune/pkg/models"
	"github.com/panbanda/phprune/pkg/parser"
)

// ErrStale is returned when a file changed on disk after it was loaded.
var ErrStale = errors.New("file changed since it was loaded")

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files through an afero filesystem.
type FilesystemSource struct {
	fs afero.Fs
}

// NewFilesystem creates a source that reads from fs. A nil fs reads the
// local filesystem.
func NewFilesystem(fs afero.Fs) *FilesystemSource {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FilesystemSource{fs: fs}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return afero.ReadFile(f.fs, path)
}

// Fingerprint returns the BLAKE3-256 hash of content.
func Fingerprint(content []byte) [32]byte {
	return blake3.Sum256(content)
}

// Verify reports ErrStale when the file at path no longer matches want.
func Verify(src ContentSource, path string, want [32]byte) error {
	content, err := src.Read(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if Fingerprint(content) != want {
		return fmt.Errorf("%s: %w", path, ErrStale)
	}
	return nil
}

// File is one discovered file to load.
type File struct {
	Path       string
	Entrypoint bool
}

// Loader reads and parses files into units.
type Loader struct {
	src    ContentSource
	opts   parser.Options
	onLoad func()
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithParserOptions sets the extraction options.
func WithParserOptions(opts parser.Options) LoaderOption {
	return func(l *Loader) {
		l.opts = opts
	}
}

// WithProgress sets a callback invoked after each file is loaded.
func WithProgress(fn func()) LoaderOption {
	return func(l *Loader) {
		l.onLoad = fn
	}
}

// NewLoader creates a loader reading from src.
func NewLoader(src ContentSource, opts ...LoaderOption) *Loader {
	l := &Loader{src: src, onLoad: func() {}}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every file once, in order, and returns one unit per file.
func (l *Loader) Load(ctx context.Context, files []File) ([]*models.Unit, error) {
	units := make([]*models.Unit, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := l.src.Read(f.Path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", f.Path, err)
		}
		u := parser.Parse(i, f.Path, string(content), f.Entrypoint, l.opts)
		u.Fingerprint = Fingerprint(content)
		units = append(units, u)
		l.onLoad()
	}
	return units, nil
}
