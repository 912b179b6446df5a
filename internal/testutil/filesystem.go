package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ft-go/internal/ft"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing. Paths
// behave like absolute slash-separated paths; parent directories are
// created implicitly when files are added.
type MockFilesystemManager struct {
	files map[string]*MockFile

	// ExcludedDirNames are directory name fragments FindByName does
	// not descend into, matched case-insensitively.
	ExcludedDirNames []string

	// FailMove, FailRename, FailCopy and FailWrite inject an error
	// for a specific source or destination path.
	FailMove   map[string]error
	FailRename map[string]error
	FailCopy   map[string]error
	FailWrite  map[string]error
}

// NewMockFilesystemManager creates a new mock filesystem with the
// standard folder exclusions.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:            make(map[string]*MockFile),
		ExcludedDirNames: []string{"supersede", "filing-widget-tools"},
		FailMove:         make(map[string]error),
		FailRename:       make(map[string]error),
		FailCopy:         make(map[string]error),
		FailWrite:        make(map[string]error),
	}
}

// AddFile adds a file and its parent directories.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.AddDirectory(filepath.Dir(path))
	m.files[path] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     time.Now(),
	}
}

// AddDirectory adds a directory and its parents.
func (m *MockFilesystemManager) AddDirectory(path string) {
	for p := path; p != "/" && p != "."; p = filepath.Dir(p) {
		if f, ok := m.files[p]; ok && f.IsDirectory {
			break
		}
		m.files[p] = &MockFile{Permissions: 0755, ModTime: time.Now(), IsDirectory: true}
	}
}

// Content returns a file's bytes and whether it exists.
func (m *MockFilesystemManager) Content(path string) ([]byte, bool) {
	f, ok := m.files[path]
	if !ok || f.IsDirectory {
		return nil, false
	}
	return f.Content, true
}

// Paths returns every path in the filesystem, sorted.
func (m *MockFilesystemManager) Paths() []string {
	var out []string
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*ft.Path, error) {
	absPath := rawPath
	if !filepath.IsAbs(absPath) {
		var err error
		absPath, err = filepath.Abs(rawPath)
		if err != nil {
			return nil, err
		}
	}
	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", absPath)
	}
	return ft.NewPath(absPath, file.IsDirectory, m.infoFor(absPath, file)), nil
}

func (m *MockFilesystemManager) Open(path string) (io.ReadCloser, error) {
	file, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path)
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	file, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return m.infoFor(path, file), nil
}

func (m *MockFilesystemManager) Exists(path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

func (m *MockFilesystemManager) ListFiles(dir string) ([]string, error) {
	return m.list(dir, false)
}

func (m *MockFilesystemManager) ListDirs(dir string) ([]string, error) {
	return m.list(dir, true)
}

func (m *MockFilesystemManager) list(dir string, dirs bool) ([]string, error) {
	d, ok := m.files[dir]
	if !ok || !d.IsDirectory {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	var out []string
	for p, f := range m.files {
		if filepath.Dir(p) == dir && f.IsDirectory == dirs {
			out = append(out, filepath.Base(p))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *MockFilesystemManager) FindByName(root, name string) ([]string, error) {
	var out []string
	for p, f := range m.files {
		if f.IsDirectory || filepath.Base(p) != name {
			continue
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if m.excluded(rel) {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MockFilesystemManager) excluded(rel string) bool {
	segments := strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/")
	for _, seg := range segments {
		lower := strings.ToLower(seg)
		for _, excl := range m.ExcludedDirNames {
			if strings.Contains(lower, excl) {
				return true
			}
		}
	}
	return false
}

func (m *MockFilesystemManager) MkdirAll(dir string) error {
	m.AddDirectory(dir)
	return nil
}

func (m *MockFilesystemManager) CopyFile(src *ft.Path, dst string) error {
	if err := m.FailCopy[dst]; err != nil {
		return err
	}
	file, ok := m.files[src.String()]
	if !ok || file.IsDirectory {
		return fmt.Errorf("file not found: %s", src)
	}
	if _, exists := m.files[dst]; exists {
		return fmt.Errorf("destination already exists: %s", dst)
	}
	m.files[dst] = &MockFile{
		Content:     append([]byte(nil), file.Content...),
		Permissions: file.Permissions,
		ModTime:     time.Now(),
	}
	return nil
}

func (m *MockFilesystemManager) WriteFile(dst string, data []byte) error {
	if err := m.FailWrite[dst]; err != nil {
		return err
	}
	if _, exists := m.files[dst]; exists {
		return fmt.Errorf("destination already exists: %s", dst)
	}
	m.files[dst] = &MockFile{
		Content:     append([]byte(nil), data...),
		Permissions: 0644,
		ModTime:     time.Now(),
	}
	return nil
}

func (m *MockFilesystemManager) MoveFile(src, dst string) error {
	if err := m.FailMove[src]; err != nil {
		return err
	}
	return m.move(src, dst)
}

func (m *MockFilesystemManager) Rename(src, dst string) error {
	if err := m.FailRename[src]; err != nil {
		return err
	}
	return m.move(src, dst)
}

func (m *MockFilesystemManager) move(src, dst string) error {
	file, ok := m.files[src]
	if !ok {
		return fmt.Errorf("file not found: %s", src)
	}
	if _, exists := m.files[dst]; exists {
		return fmt.Errorf("destination already exists: %s", dst)
	}
	m.files[dst] = file
	delete(m.files, src)
	return nil
}

func (m *MockFilesystemManager) Remove(path string) error {
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("file not found: %s", path)
	}
	delete(m.files, path)
	return nil
}

func (m *MockFilesystemManager) infoFor(path string, file *MockFile) fs.FileInfo {
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(file.Content)),
		mode:    file.Permissions,
		modTime: file.ModTime,
		isDir:   file.IsDirectory,
	}
}

// mockFileInfo implements fs.FileInfo.
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ ft.FilesystemManager = (*MockFilesystemManager)(nil)
