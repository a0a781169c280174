// Package media stores uploaded blobs on the local filesystem and hands back
// path references. The core never looks inside a blob; it only carries the
// reference and asks for its release when content is removed.
package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Dir is a media store rooted at a single directory, with images/ and
// videos/ subdirectories mirroring the reference layout of the content
// documents.
type Dir struct {
	root string
	log  *log.Logger
}

// NewDir creates a media store rooted at root.
func NewDir(root string, logger *log.Logger) *Dir {
	if logger == nil {
		logger = log.Default()
	}
	return &Dir{root: root, log: logger}
}

// SaveImage stores an uploaded image and returns its path reference.
func (d *Dir) SaveImage(name string, r io.Reader) (string, error) {
	return d.save("images", name, r)
}

// SaveVideo stores an uploaded video and returns its path reference.
func (d *Dir) SaveVideo(name string, r io.Reader) (string, error) {
	return d.save("videos", name, r)
}

func (d *Dir) save(sub, name string, r io.Reader) (string, error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("save media: empty name")
	}

	dir := filepath.Join(d.root, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	full := filepath.Join(dir, name)
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close media file: %w", err)
	}

	ref := filepath.ToSlash(filepath.Join(sub, name))
	d.log.Debug("media stored", "ref", ref)
	return ref, nil
}

// Open returns a reader for a stored blob by its path reference.
func (d *Dir) Open(ref string) (io.ReadCloser, error) {
	full, err := d.resolve(ref)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Remove deletes a stored blob by its path reference. Removing an absent
// blob is not an error.
func (d *Dir) Remove(ref string) error {
	full, err := d.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove media: %w", err)
	}
	return nil
}

// resolve maps a path reference onto the root, rejecting references that
// escape it.
func (d *Dir) resolve(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("media reference %q escapes store root", ref)
	}
	return filepath.Join(d.root, clean), nil
}
