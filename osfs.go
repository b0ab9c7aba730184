package securedata

import (
	"os"
	"path/filepath"
	"time"

	"github.com/absfs/absfs"
)

// OSFileSystem is an absfs.FileSystem over the host filesystem. Every name is
// resolved inside root, and ".." never climbs above it. An empty root leaves
// names as given, so relative names resolve against the process working
// directory.
type OSFileSystem struct {
	root string
	cwd  string
}

// NewOSFileSystem returns a filesystem rooted at root
func NewOSFileSystem(root string) *OSFileSystem {
	return &OSFileSystem{root: root}
}

func (fs *OSFileSystem) resolve(name string) string {
	if fs.cwd != "" && !filepath.IsAbs(name) {
		name = filepath.Join(fs.cwd, name)
	}
	if fs.root == "" {
		return name
	}
	return filepath.Join(fs.root, filepath.Clean(string(filepath.Separator)+name))
}

func (fs *OSFileSystem) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	path := fs.resolve(name)
	if flag&os.O_CREATE != 0 {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, flag, perm)
}

func (fs *OSFileSystem) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(fs.resolve(name), perm)
}

func (fs *OSFileSystem) MkdirAll(name string, perm os.FileMode) error {
	return os.MkdirAll(fs.resolve(name), perm)
}

func (fs *OSFileSystem) Remove(name string) error {
	return os.Remove(fs.resolve(name))
}

func (fs *OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(fs.resolve(path))
}

func (fs *OSFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(fs.resolve(oldpath), fs.resolve(newpath))
}

func (fs *OSFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(fs.resolve(name))
}

func (fs *OSFileSystem) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(fs.resolve(name), mode)
}

func (fs *OSFileSystem) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(fs.resolve(name), atime, mtime)
}

func (fs *OSFileSystem) Chown(name string, uid, gid int) error {
	return os.Chown(fs.resolve(name), uid, gid)
}

func (fs *OSFileSystem) Separator() uint8 {
	return os.PathSeparator
}

func (fs *OSFileSystem) ListSeparator() uint8 {
	return os.PathListSeparator
}

// Chdir sets the directory relative names resolve against. It does not
// change the process working directory.
func (fs *OSFileSystem) Chdir(dir string) error {
	info, err := fs.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "chdir", Path: dir, Err: os.ErrInvalid}
	}
	if fs.cwd != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(fs.cwd, dir)
	}
	if fs.root != "" {
		dir = filepath.Clean(string(filepath.Separator) + dir)
	}
	fs.cwd = dir
	return nil
}

func (fs *OSFileSystem) Getwd() (string, error) {
	if fs.cwd == "" {
		if fs.root == "" {
			return os.Getwd()
		}
		return "/", nil
	}
	return fs.cwd, nil
}

func (fs *OSFileSystem) TempDir() string {
	return os.TempDir()
}

func (fs *OSFileSystem) Open(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

func (fs *OSFileSystem) Create(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

func (fs *OSFileSystem) Truncate(name string, size int64) error {
	return os.Truncate(fs.resolve(name), size)
}

var _ absfs.FileSystem = (*OSFileSystem)(nil)
