package fsops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// File is the subset of an open file the pipeline needs: streaming writes for
// downloads and random access for archive reading.
type File interface {
	io.Reader
	io.ReaderAt
	io.Writer
	io.Closer
	Stat() (fs.FileInfo, error)
}

// FS is an abstract filesystem used across the app and tests.
type FS interface {
	Open(name string) (File, error)
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Stat(name string) (fs.FileInfo, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error
	MkdirAll(path string, perm os.FileMode) error
	WalkDir(root string, fn fs.WalkDirFunc) error

	// SameFile reports whether both paths name the same underlying file.
	SameFile(a, b string) (bool, error)
}

// ---------- OS-backed implementation ----------

type OS struct{}

func NewOS() OS { return OS{} }

func (OS) Open(name string) (File, error) { return os.Open(filepath.Clean(name)) }
func (OS) OpenFile(name string, flag int, p os.FileMode) (File, error) {
	return os.OpenFile(filepath.Clean(name), flag, p)
}
func (OS) ReadFile(name string) ([]byte, error) { return os.ReadFile(filepath.Clean(name)) }
func (OS) WriteFile(name string, b []byte, p os.FileMode) error {
	return os.WriteFile(filepath.Clean(name), b, p)
}
func (OS) Stat(name string) (fs.FileInfo, error)     { return os.Stat(filepath.Clean(name)) }
func (OS) Rename(a, b string) error                  { return os.Rename(a, b) }
func (OS) Remove(name string) error                  { return os.Remove(filepath.Clean(name)) }
func (OS) RemoveAll(path string) error               { return os.RemoveAll(filepath.Clean(path)) }
func (OS) MkdirAll(path string, p os.FileMode) error { return os.MkdirAll(filepath.Clean(path), p) }
func (OS) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(filepath.Clean(root), fn)
}

// SameFile compares device and inode (or the platform equivalent).
func (OS) SameFile(a, b string) (bool, error) {
	first, err := os.Stat(filepath.Clean(a))
	if err != nil {
		return false, err
	}
	second, err := os.Stat(filepath.Clean(b))
	if err != nil {
		return false, err
	}
	return os.SameFile(first, second), nil
}

// ---------- In-memory implementation (for tests/integration) ----------

type Mem struct{ Fs afero.Fs }

func NewMem() Mem { return Mem{Fs: afero.NewMemMapFs()} }

func (m Mem) Open(name string) (File, error) { return m.Fs.Open(filepath.Clean(name)) }
func (m Mem) OpenFile(name string, flag int, p os.FileMode) (File, error) {
	return m.Fs.OpenFile(filepath.Clean(name), flag, p)
}
func (m Mem) ReadFile(name string) ([]byte, error) { return afero.ReadFile(m.Fs, filepath.Clean(name)) }
func (m Mem) WriteFile(name string, b []byte, p os.FileMode) error {
	return afero.WriteFile(m.Fs, filepath.Clean(name), b, p)
}
func (m Mem) Stat(name string) (fs.FileInfo, error) { return m.Fs.Stat(filepath.Clean(name)) }
func (m Mem) Rename(a, b string) error {
	return m.Fs.Rename(filepath.Clean(a), filepath.Clean(b))
}
func (m Mem) Remove(name string) error    { return m.Fs.Remove(filepath.Clean(name)) }
func (m Mem) RemoveAll(path string) error { return m.Fs.RemoveAll(filepath.Clean(path)) }
func (m Mem) MkdirAll(path string, p os.FileMode) error {
	return m.Fs.MkdirAll(filepath.Clean(path), p)
}
func (m Mem) WalkDir(root string, fn fs.WalkDirFunc) error {
	root = filepath.Clean(root)
	return afero.Walk(m.Fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(p, nil, err)
		}
		de := memDirEntry{info}
		return fn(p, de, nil)
	})
}

// SameFile falls back to canonical path equality; the in-memory filesystem
// has no inode identity.
func (m Mem) SameFile(a, b string) (bool, error) {
	if _, err := m.Stat(a); err != nil {
		return false, err
	}
	if _, err := m.Stat(b); err != nil {
		return false, err
	}
	return canonicalPath(a) == canonicalPath(b), nil
}

type memDirEntry struct{ os.FileInfo }

func (d memDirEntry) Type() fs.FileMode          { return d.Mode().Type() }
func (d memDirEntry) Info() (fs.FileInfo, error) { return d.FileInfo, nil }

func canonicalPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// ---------- High-level façade used by the installer ----------

type Ops struct{ FS FS }

func NewOps(fs FS) Ops { return Ops{FS: fs} }

func (o Ops) EnsureDir(path string) error { return o.FS.MkdirAll(filepath.Dir(path), 0o755) }
func (o Ops) FileExists(p string) bool    { _, err := o.FS.Stat(p); return err == nil }

// DirExists reports whether p exists and is a directory.
func (o Ops) DirExists(p string) bool {
	info, err := o.FS.Stat(p)
	return err == nil && info.IsDir()
}

// MoveFile renames from onto to, replacing an existing file at to. When the
// rename fails (for example across devices) the file is copied and the source
// removed, which mirrors what a shell mv does.
func (o Ops) MoveFile(from, to string) error {
	renameErr := o.FS.Rename(from, to)
	if renameErr == nil {
		return nil
	}
	info, statErr := o.FS.Stat(from)
	if statErr != nil || !info.Mode().IsRegular() {
		return renameErr
	}
	if copyErr := o.copyFile(from, to, info.Mode().Perm()); copyErr != nil {
		return errors.Join(renameErr, copyErr)
	}
	if removeErr := o.FS.Remove(from); removeErr != nil {
		return fmt.Errorf("remove %s after copy: %w", from, removeErr)
	}
	return nil
}

// RemoveFile removes a single file; a missing file is not an error.
func (o Ops) RemoveFile(p string) error {
	err := o.FS.Remove(p)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (o Ops) copyFile(from, to string, perm os.FileMode) error {
	source, err := o.FS.Open(from)
	if err != nil {
		return err
	}
	defer func(closer io.Closer) { _ = closer.Close() }(source)

	destination, err := o.FS.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		return err
	}
	return destination.Close()
}
