// Package output writes the rendered site into a destination filesystem.
//
// Paths are virtual ("/blog/index.html") and are mapped onto a go-billy
// filesystem rooted at the destination directory, so tests can run against
// memfs while real builds use osfs.
package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"git.home.luguber.info/inful/sitegen/internal/vpath"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// FS is the destination tree.
type FS struct {
	fs      billy.Filesystem
	diskDir string
	written int64
}

// NewDisk returns an FS rooted at dir on the host filesystem.
func NewDisk(dir string) *FS {
	return &FS{fs: osfs.New(dir), diskDir: dir}
}

// NewMemory returns an in-memory FS.
func NewMemory() *FS {
	return &FS{fs: memfs.New()}
}

// New wraps an existing billy filesystem.
func New(bfs billy.Filesystem) *FS {
	return &FS{fs: bfs}
}

// Billy exposes the underlying filesystem.
func (o *FS) Billy() billy.Filesystem { return o.fs }

// BytesWritten reports how many bytes have been written since the FS was created.
func (o *FS) BytesWritten() int64 { return o.written }

// MkdirAll creates p and any missing parents.
func (o *FS) MkdirAll(p string) error {
	name := vpath.Rel(p)
	if name == "." {
		return nil
	}
	return o.fs.MkdirAll(name, dirPerm)
}

// WriteFile creates or truncates p and writes data to it.
func (o *FS) WriteFile(p string, data []byte) error {
	f, err := o.fs.OpenFile(vpath.Rel(p), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	n, err := f.Write(data)
	o.written += int64(n)
	if err != nil {
		return err
	}
	return f.Close()
}

// CopyFile copies name from src to dst, preserving permission bits and the
// modification time. Parent directories of dst are created as needed.
func (o *FS) CopyFile(src fs.FS, name, dst string) error {
	info, err := fs.Stat(src, name)
	if err != nil {
		return err
	}
	if err := o.MkdirAll(path.Dir(path.Clean("/" + dst))); err != nil {
		return err
	}
	if err := o.copyFile(src, name, vpath.Rel(dst), info); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return nil
}

func (o *FS) copyFile(src fs.FS, name, dst string, info fs.FileInfo) error {
	in, err := src.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := o.openForCopy(dst, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	n, err := io.Copy(out, in)
	o.written += n
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return o.preserve(dst, info.Mode().Perm(), info.ModTime())
}

// openForCopy truncates dst, replacing it when a previous copy left it read-only.
func (o *FS) openForCopy(dst string, perm os.FileMode) (billy.File, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	f, err := o.fs.OpenFile(dst, flags, perm)
	if errors.Is(err, os.ErrPermission) {
		if rmErr := o.fs.Remove(dst); rmErr == nil {
			return o.fs.OpenFile(dst, flags, perm)
		}
	}
	return f, err
}

func (o *FS) preserve(name string, mode os.FileMode, mtime time.Time) error {
	if o.diskDir != "" {
		full := filepath.Join(o.diskDir, filepath.FromSlash(name))
		if err := os.Chmod(full, mode); err != nil {
			return err
		}
		return os.Chtimes(full, mtime, mtime)
	}
	if ch, ok := o.fs.(billy.Change); ok {
		if err := ch.Chmod(name, mode); err != nil && !errors.Is(err, billy.ErrNotSupported) {
			return err
		}
		if err := ch.Chtimes(name, mtime, mtime); err != nil && !errors.Is(err, billy.ErrNotSupported) {
			return err
		}
	}
	return nil
}

// Exists reports whether p exists, without following a final symlink.
func (o *FS) Exists(p string) (bool, error) {
	_, err := o.fs.Lstat(vpath.Rel(p))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// RemoveAll deletes p, file or directory.
func (o *FS) RemoveAll(p string) error {
	return util.RemoveAll(o.fs, vpath.Rel(p))
}

// CopyTree mirrors src into dst. It fails with fs.ErrExist when dst already
// exists, leaving it untouched.
func (o *FS) CopyTree(src fs.FS, dst string) error {
	exists, err := o.Exists(dst)
	if err != nil {
		return err
	}
	if exists {
		return &fs.PathError{Op: "copytree", Path: dst, Err: fs.ErrExist}
	}
	root := vpath.Rel(dst)
	return fs.WalkDir(src, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := path.Join(root, name)
		if d.IsDir() {
			return o.fs.MkdirAll(target, dirPerm)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		return o.copyFile(src, name, target, info)
	})
}
