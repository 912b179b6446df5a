package ft

import (
	"io"
	"io/fs"
)

// FilesystemManager is the filing service's view of the filesystem.
// Implementations must verify copies by size and are expected to
// refuse special files.
type FilesystemManager interface {
	// Resolve validates that path exists and returns it as an
	// absolute Path with cached metadata.
	Resolve(path string) (*Path, error)

	// Open opens path for reading.
	Open(path string) (io.ReadCloser, error)

	// Stat returns metadata for path.
	Stat(path string) (fs.FileInfo, error)

	// Exists reports whether path exists.
	Exists(path string) (bool, error)

	// ListFiles returns the names of the regular files directly in
	// dir, sorted.
	ListFiles(dir string) ([]string, error)

	// ListDirs returns the names of the directories directly in
	// dir, sorted.
	ListDirs(dir string) ([]string, error)

	// FindByName walks the tree under root and returns the
	// absolute paths of all files named name. Folders the manager
	// is configured to exclude, such as superseded folders, are
	// not descended into.
	FindByName(root, name string) ([]string, error)

	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error

	// CopyFile copies src to dst and verifies the written size
	// matches. dst must not exist.
	CopyFile(src *Path, dst string) error

	// WriteFile writes data to dst and verifies the written size
	// matches. dst must not exist.
	WriteFile(dst string, data []byte) error

	// MoveFile moves src to dst, falling back to copy-and-delete
	// when a rename is not possible.
	MoveFile(src, dst string) error

	// Rename renames src to dst on the same volume. Used where the
	// move must be atomic.
	Rename(src, dst string) error

	// Remove deletes the file at path.
	Remove(path string) error
}
