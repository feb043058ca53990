// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// CommandCall records one ExecuteCommand invocation against the mock.
type CommandCall struct {
	Name string
	Args []string
}

// String renders the call the way it would appear on a shell line.
func (c CommandCall) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

type mockFile struct {
	data []byte
	perm os.FileMode
}

// MockFileSystem is an in-memory Service used in tests. It keeps real state
// for files, directories and links so convergence code can be exercised
// end to end. Any *Func hook overrides the stateful behaviour of its method.
type MockFileSystem struct {
	mu sync.Mutex

	files map[string]mockFile
	dirs  map[string]bool
	links map[string]string

	commands []CommandCall

	// CommandResults maps a rendered command line to its output and error.
	CommandResults map[string]CommandResult

	EnsureDirectoryFunc func(ctx context.Context, path string) error
	ReadFileFunc        func(ctx context.Context, path string) ([]byte, error)
	WriteFileFunc       func(ctx context.Context, path string, data []byte, perm os.FileMode) error
	SymlinkFunc         func(ctx context.Context, target, linkPath string) error
	RemoveAllFunc       func(ctx context.Context, path string) error
	ExecuteCommandFunc  func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// CommandResult is the canned response for a mocked command.
type CommandResult struct {
	Output []byte
	Err    error
}

// NewMockFileSystem creates an empty mock filesystem containing only "/".
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:          make(map[string]mockFile),
		dirs:           map[string]bool{"/": true},
		links:          make(map[string]string),
		CommandResults: make(map[string]CommandResult),
	}
}

// WithFile seeds a file, creating its parent directories.
func (m *MockFileSystem) WithFile(p string, data string) *MockFileSystem {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = filepath.Clean(p)
	m.mkdirAll(filepath.Dir(p))
	m.files[p] = mockFile{data: []byte(data), perm: 0644}
	return m
}

// WithDirectory seeds a directory and its parents.
func (m *MockFileSystem) WithDirectory(p string) *MockFileSystem {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(filepath.Clean(p))
	return m
}

// WithLink seeds a symlink.
func (m *MockFileSystem) WithLink(linkPath, target string) *MockFileSystem {
	m.mu.Lock()
	defer m.mu.Unlock()
	linkPath = filepath.Clean(linkPath)
	m.mkdirAll(filepath.Dir(linkPath))
	m.links[linkPath] = target
	return m
}

// WithCommandResult sets the response for the given command line.
func (m *MockFileSystem) WithCommandResult(cmdLine string, output string, err error) *MockFileSystem {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandResults[cmdLine] = CommandResult{Output: []byte(output), Err: err}
	return m
}

// Commands returns the commands executed so far, in order.
func (m *MockFileSystem) Commands() []CommandCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CommandCall, len(m.commands))
	copy(out, m.commands)
	return out
}

// CommandLines returns the executed commands rendered as strings.
func (m *MockFileSystem) CommandLines() []string {
	calls := m.Commands()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// ResetCommands clears the command log.
func (m *MockFileSystem) ResetCommands() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = nil
}

// FileContent returns the content of a seeded or written file.
func (m *MockFileSystem) FileContent(p string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filepath.Clean(p)]
	return string(f.data), ok
}

// LinkTarget returns the target of a link, if one exists at p.
func (m *MockFileSystem) LinkTarget(p string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.links[filepath.Clean(p)]
	return t, ok
}

// IsDirectory reports whether p is a directory.
func (m *MockFileSystem) IsDirectory(p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[filepath.Clean(p)]
}

func (m *MockFileSystem) mkdirAll(p string) {
	for p != "/" && p != "." && p != "" {
		m.dirs[p] = true
		p = filepath.Dir(p)
	}
}

func (m *MockFileSystem) exists(p string) bool {
	if _, ok := m.files[p]; ok {
		return true
	}
	if _, ok := m.links[p]; ok {
		return true
	}
	return m.dirs[p]
}

func notExist(op, p string) error {
	return &os.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
}

// EnsureDirectory creates a directory and its parents.
func (m *MockFileSystem) EnsureDirectory(ctx context.Context, p string) error {
	if m.EnsureDirectoryFunc != nil {
		return m.EnsureDirectoryFunc(ctx, p)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p = filepath.Clean(p)
	if _, ok := m.files[p]; ok {
		return fmt.Errorf("failed to create directory %s: not a directory", p)
	}
	m.mkdirAll(p)
	return nil
}

// ReadFile returns the stored contents of a file.
func (m *MockFileSystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(ctx, p)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[filepath.Clean(p)]
	if !ok {
		return nil, notExist("open", p)
	}
	out := make([]byte, len(f.data))
	copy(out, f.data)
	return out, nil
}

// WriteFile stores a file. The parent directory must exist.
func (m *MockFileSystem) WriteFile(ctx context.Context, p string, data []byte, perm os.FileMode) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(ctx, p, data, perm)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p = filepath.Clean(p)
	if !m.dirs[filepath.Dir(p)] {
		return fmt.Errorf("failed to write file %s: %w", p, notExist("open", p))
	}
	if m.dirs[p] {
		return fmt.Errorf("failed to write file %s: is a directory", p)
	}
	delete(m.links, p)
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[p] = mockFile{data: buf, perm: perm}
	return nil
}

// PathExists reports whether anything exists at p.
func (m *MockFileSystem) PathExists(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exists(filepath.Clean(p)), nil
}

// Lstat describes p without following links.
func (m *MockFileSystem) Lstat(ctx context.Context, p string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p = filepath.Clean(p)
	name := filepath.Base(p)
	if f, ok := m.files[p]; ok {
		return &mockFileInfo{name: name, size: int64(len(f.data)), mode: f.perm}, nil
	}
	if _, ok := m.links[p]; ok {
		return &mockFileInfo{name: name, mode: os.ModeSymlink | 0777}, nil
	}
	if m.dirs[p] {
		return &mockFileInfo{name: name, mode: os.ModeDir | 0755, isDir: true}, nil
	}
	return nil, notExist("lstat", p)
}

// Readlink returns the target of a link.
func (m *MockFileSystem) Readlink(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.links[filepath.Clean(p)]
	if !ok {
		return "", &os.PathError{Op: "readlink", Path: p, Err: fs.ErrInvalid}
	}
	return t, nil
}

// Symlink creates a link. Fails if linkPath already exists.
func (m *MockFileSystem) Symlink(ctx context.Context, target, linkPath string) error {
	if m.SymlinkFunc != nil {
		return m.SymlinkFunc(ctx, target, linkPath)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	linkPath = filepath.Clean(linkPath)
	if m.exists(linkPath) {
		return fmt.Errorf("failed to create symlink %s -> %s: %w", linkPath, target, fs.ErrExist)
	}
	if !m.dirs[filepath.Dir(linkPath)] {
		return fmt.Errorf("failed to create symlink %s -> %s: %w", linkPath, target, fs.ErrNotExist)
	}
	m.links[linkPath] = target
	return nil
}

// Remove removes a file, link or empty directory.
func (m *MockFileSystem) Remove(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p = filepath.Clean(p)
	if _, ok := m.files[p]; ok {
		delete(m.files, p)
		return nil
	}
	if _, ok := m.links[p]; ok {
		delete(m.links, p)
		return nil
	}
	if m.dirs[p] {
		if len(m.children(p)) > 0 {
			return fmt.Errorf("failed to remove %s: directory not empty", p)
		}
		delete(m.dirs, p)
		return nil
	}
	return fmt.Errorf("failed to remove %s: %w", p, notExist("remove", p))
}

// RemoveAll removes p and everything below it. Missing paths are not an error.
func (m *MockFileSystem) RemoveAll(ctx context.Context, p string) error {
	if m.RemoveAllFunc != nil {
		return m.RemoveAllFunc(ctx, p)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p = filepath.Clean(p)
	prefix := p + "/"
	for k := range m.files {
		if k == p || strings.HasPrefix(k, prefix) {
			delete(m.files, k)
		}
	}
	for k := range m.links {
		if k == p || strings.HasPrefix(k, prefix) {
			delete(m.links, k)
		}
	}
	for k := range m.dirs {
		if k == p || strings.HasPrefix(k, prefix) {
			delete(m.dirs, k)
		}
	}
	return nil
}

// Rename moves a file or link. Directories are not supported by the mock.
func (m *MockFileSystem) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	oldPath, newPath = filepath.Clean(oldPath), filepath.Clean(newPath)
	if f, ok := m.files[oldPath]; ok {
		delete(m.files, oldPath)
		m.files[newPath] = f
		return nil
	}
	if t, ok := m.links[oldPath]; ok {
		delete(m.links, oldPath)
		m.links[newPath] = t
		return nil
	}
	return fmt.Errorf("failed to rename %s to %s: %w", oldPath, newPath, fs.ErrNotExist)
}

// Glob matches pattern against every stored path.
func (m *MockFileSystem) Glob(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []string
	check := func(p string) error {
		ok, err := path.Match(pattern, p)
		if err != nil {
			return err
		}
		if ok {
			matches = append(matches, p)
		}
		return nil
	}
	for p := range m.files {
		if err := check(p); err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
	}
	for p := range m.links {
		if err := check(p); err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
	}
	for p := range m.dirs {
		if err := check(p); err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// ExecuteCommand records the call and returns the configured result, if any.
func (m *MockFileSystem) ExecuteCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	call := CommandCall{Name: name, Args: append([]string(nil), args...)}
	m.commands = append(m.commands, call)
	res, ok := m.CommandResults[call.String()]
	m.mu.Unlock()

	if m.ExecuteCommandFunc != nil {
		return m.ExecuteCommandFunc(ctx, name, args...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok {
		return res.Output, res.Err
	}
	return nil, nil
}

func (m *MockFileSystem) children(dir string) []string {
	prefix := dir + "/"
	var out []string
	for k := range m.files {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	for k := range m.links {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	for k := range m.dirs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}

type mockFileInfo struct {
	name  string
	size  int64
	mode  os.FileMode
	isDir bool
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() interface{}   { return nil }
