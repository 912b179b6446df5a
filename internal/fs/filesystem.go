package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"ft-go/internal/ft"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	exclude *ExcludeMatcher
}

// NewOSFilesystemManager creates a new filesystem manager that operates
// on the real filesystem with the default folder exclusions.
func NewOSFilesystemManager() *OSFilesystemManager {
	return &OSFilesystemManager{
		exclude: NewExcludeMatcher(DefaultExcludeFragments),
	}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*ft.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Lstat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	// Check for special file types we don't support
	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("symlinks not supported: %s", absPath)
	}
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return ft.NewPath(absPath, info.IsDir(), info), nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Stat returns fresh file info for a path.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Exists reports whether a path exists.
func (m *OSFilesystemManager) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return true, nil
}

// ListFiles returns the names of the regular files directly in dir, sorted.
func (m *OSFilesystemManager) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// ListDirs returns the names of the directories directly in dir, sorted.
func (m *OSFilesystemManager) ListDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// FindByName walks the tree under root and returns the absolute paths
// of all files named name. Excluded folders are not descended into.
func (m *OSFilesystemManager) FindByName(root, name string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && m.exclude.MatchDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == name {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	return paths, nil
}

// MkdirAll creates dir and any missing parents.
func (m *OSFilesystemManager) MkdirAll(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// CopyFile copies src to dst and verifies the written size matches.
// dst must not exist.
func (m *OSFilesystemManager) CopyFile(src *ft.Path, dst string) error {
	in, err := os.Open(src.String())
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	written, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("closing destination: %w", err)
	}

	if written != info.Size() {
		os.Remove(dst)
		return fmt.Errorf("copy size mismatch for %s: wrote %d bytes, want %d", dst, written, info.Size())
	}
	return nil
}

// WriteFile writes data to dst and verifies the written size matches.
// dst must not exist.
func (m *OSFilesystemManager) WriteFile(dst string, data []byte) error {
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	written, err := out.Write(data)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("writing to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("closing destination: %w", err)
	}

	if written != len(data) {
		os.Remove(dst)
		return fmt.Errorf("write size mismatch for %s: wrote %d bytes, want %d", dst, written, len(data))
	}
	return nil
}

// MoveFile moves src to dst, falling back to copy-and-delete when a
// rename is not possible. dst must not exist.
func (m *OSFilesystemManager) MoveFile(src, dst string) error {
	exists, err := m.Exists(dst)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("destination already exists: %s", dst)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// Rename failed, likely crossing volumes. Copy then delete.
	srcPath, err := m.Resolve(src)
	if err != nil {
		return fmt.Errorf("moving %s: %w", src, err)
	}
	if err := m.CopyFile(srcPath, dst); err != nil {
		return fmt.Errorf("moving %s: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("removing source after move: %w", err)
	}
	return nil
}

// Rename renames src to dst on the same volume. dst must not exist.
func (m *OSFilesystemManager) Rename(src, dst string) error {
	exists, err := m.Exists(dst)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("destination already exists: %s", dst)
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("renaming %s: %w", src, err)
	}
	return nil
}

// Remove deletes the file at path.
func (m *OSFilesystemManager) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// Compile-time check that OSFilesystemManager implements ft.FilesystemManager interface
var _ ft.FilesystemManager = (*OSFilesystemManager)(nil)
