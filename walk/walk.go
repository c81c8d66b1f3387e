// Package walk discovers .nix files under a set of root paths, applies
// --exclude glob filtering and the --hidden flag, and reads/writes file
// content, using an afs.Service.Walk traversal driven by a storage.OnVisit
// visitor.
package walk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// File is one discovered source: its location and decoded content.
type File struct {
	Path    string
	Content []byte
}

// Options controls which files Collect visits.
type Options struct {
	// Exclude holds path.Match-style glob patterns matched against each
	// candidate file's full path and against its base name; a pattern
	// that matches either, or that occurs as a substring of the full path,
	// skips the file.
	Exclude []string
	// Hidden, when false (the default), skips files and directories whose
	// name begins with ".".
	Hidden bool
}

func (o Options) excluded(p string) bool {
	for _, pattern := range o.Exclude {
		if ok, _ := path.Match(pattern, p); ok {
			return true
		}
		if ok, _ := path.Match(pattern, path.Base(p)); ok {
			return true
		}
		if strings.Contains(p, pattern) {
			return true
		}
	}
	return false
}

func isHiddenName(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

// Collect walks each root (a file or directory path/URL) and returns every
// matching .nix file it finds, with content already loaded. roots are
// visited in order.
func Collect(ctx context.Context, fs afs.Service, roots []string, opts Options) ([]File, error) {
	var out []File
	for _, root := range roots {
		files, err := collectOne(ctx, fs, root, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func collectOne(ctx context.Context, fs afs.Service, root string, opts Options) ([]File, error) {
	var out []File
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, _ io.Reader) (bool, error) {
		name := info.Name()
		if !opts.Hidden && isHiddenName(name) {
			return false, nil
		}
		if info.IsDir() {
			return true, nil
		}
		if !strings.HasSuffix(name, ".nix") {
			return true, nil
		}
		fileURL := url.Join(baseURL, parent, name)
		if opts.excluded(fileURL) {
			return true, nil
		}
		content, err := fs.DownloadWithURL(ctx, fileURL)
		if err != nil {
			return true, fmt.Errorf("walk: read %s: %w", fileURL, err)
		}
		out = append(out, File{Path: fileURL, Content: content})
		return true, nil
	}
	if err := fs.Walk(ctx, root, visitor); err != nil {
		return nil, fmt.Errorf("walk: %s: %w", root, err)
	}
	return out, nil
}

// Write overwrites path with content, for in-place edits (--edit).
func Write(ctx context.Context, fs afs.Service, path string, content []byte) error {
	if err := fs.Upload(ctx, path, 0o644, strings.NewReader(string(content))); err != nil {
		return fmt.Errorf("walk: write %s: %w", path, err)
	}
	return nil
}

// New builds the default afs.Service used by cmd/deadnix.
func New() afs.Service { return afs.New() }
