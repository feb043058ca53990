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

package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/billyperformance/druid/pkg/service/filesystem"
	"github.com/billyperformance/druid/pkg/service/systemd"
)

// FileRef, DirectoryRef, LinkRef, ExecRef and ServiceRef build resource refs.
func FileRef(path string) string      { return "File[" + path + "]" }
func DirectoryRef(path string) string { return FileRef(path) }
func LinkRef(path string) string      { return FileRef(path) }
func ExecRef(title string) string     { return "Exec[" + title + "]" }
func ServiceRef(name string) string   { return "Service[" + name + "]" }

// File ensures a regular file with exact content.
type File struct {
	Path    string
	Content string
	Mode    os.FileMode

	fs filesystem.Service
}

// NewFile creates a file resource with mode 0644.
func NewFile(fs filesystem.Service, path, content string) *File {
	return &File{Path: path, Content: content, Mode: 0644, fs: fs}
}

func (f *File) Ref() string  { return FileRef(f.Path) }
func (f *File) Kind() string { return "File" }

// Check compares the digest of the current content with the desired one.
func (f *File) Check(ctx context.Context) (bool, error) {
	info, err := f.fs.Lstat(ctx, f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}
	current, err := f.fs.ReadFile(ctx, f.Path)
	if err != nil {
		return false, err
	}
	return xxhash.Sum64(current) == xxhash.Sum64String(f.Content), nil
}

// Apply replaces whatever is at Path with the desired content.
func (f *File) Apply(ctx context.Context) error {
	info, err := f.fs.Lstat(ctx, f.Path)
	if err == nil && !info.Mode().IsRegular() {
		if info.IsDir() {
			return fmt.Errorf("cannot replace directory %s with a file", f.Path)
		}
		if err := f.fs.Remove(ctx, f.Path); err != nil {
			return err
		}
	}
	return f.fs.WriteFile(ctx, f.Path, []byte(f.Content), f.Mode)
}

// Directory ensures a directory exists.
type Directory struct {
	Path string

	fs filesystem.Service
}

// NewDirectory creates a directory resource.
func NewDirectory(fs filesystem.Service, path string) *Directory {
	return &Directory{Path: path, fs: fs}
}

func (d *Directory) Ref() string  { return DirectoryRef(d.Path) }
func (d *Directory) Kind() string { return "Directory" }

func (d *Directory) Check(ctx context.Context) (bool, error) {
	info, err := d.fs.Lstat(ctx, d.Path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func (d *Directory) Apply(ctx context.Context) error {
	info, err := d.fs.Lstat(ctx, d.Path)
	if err == nil && !info.IsDir() {
		if err := d.fs.Remove(ctx, d.Path); err != nil {
			return err
		}
	}
	return d.fs.EnsureDirectory(ctx, d.Path)
}

// Link ensures a symlink with a given target.
type Link struct {
	Path   string
	Target string

	fs filesystem.Service
}

// NewLink creates a link resource.
func NewLink(fs filesystem.Service, path, target string) *Link {
	return &Link{Path: path, Target: target, fs: fs}
}

func (l *Link) Ref() string  { return LinkRef(l.Path) }
func (l *Link) Kind() string { return "Link" }

func (l *Link) Check(ctx context.Context) (bool, error) {
	info, err := l.fs.Lstat(ctx, l.Path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return false, nil
	}
	target, err := l.fs.Readlink(ctx, l.Path)
	if err != nil {
		return false, err
	}
	return target == l.Target, nil
}

func (l *Link) Apply(ctx context.Context) error {
	info, err := l.fs.Lstat(ctx, l.Path)
	if err == nil {
		if info.IsDir() {
			return fmt.Errorf("cannot replace directory %s with a link", l.Path)
		}
		if err := l.fs.Remove(ctx, l.Path); err != nil {
			return err
		}
	}
	return l.fs.Symlink(ctx, l.Target, l.Path)
}

// Exec runs a command. A refresh-only Exec runs only when triggered; any
// other Exec runs every time unless Creates exists.
type Exec struct {
	Title       string
	Command     []string
	Creates     string
	Refreshonly bool

	fs filesystem.Service
}

// NewExec creates an exec resource.
func NewExec(fs filesystem.Service, title string, command ...string) *Exec {
	return &Exec{Title: title, Command: command, fs: fs}
}

func (e *Exec) Ref() string       { return ExecRef(e.Title) }
func (e *Exec) Kind() string      { return "Exec" }
func (e *Exec) RefreshOnly() bool { return e.Refreshonly }

// CommandLine renders the command as it would be typed.
func (e *Exec) CommandLine() string {
	return strings.Join(e.Command, " ")
}

func (e *Exec) Check(ctx context.Context) (bool, error) {
	if e.Creates == "" {
		return false, nil
	}
	return e.fs.PathExists(ctx, e.Creates)
}

func (e *Exec) Apply(ctx context.Context) error {
	if len(e.Command) == 0 {
		return fmt.Errorf("exec %s has no command", e.Title)
	}
	output, err := e.fs.ExecuteCommand(ctx, e.Command[0], e.Command[1:]...)
	if err != nil {
		return fmt.Errorf("%s returned an error: %w, output: %s", e.CommandLine(), err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Service ensures a systemd unit is enabled and running, and restarts it when
// refreshed.
type Service struct {
	Name string

	systemd systemd.Service
}

// NewService creates a service resource.
func NewService(sd systemd.Service, name string) *Service {
	return &Service{Name: name, systemd: sd}
}

func (s *Service) Ref() string  { return ServiceRef(s.Name) }
func (s *Service) Kind() string { return "Service" }

func (s *Service) Check(ctx context.Context) (bool, error) {
	enabled, err := s.systemd.IsEnabled(ctx, s.Name)
	if err != nil {
		return false, err
	}
	active, err := s.systemd.IsActive(ctx, s.Name)
	if err != nil {
		return false, err
	}
	return enabled && active, nil
}

func (s *Service) Apply(ctx context.Context) error {
	_, err := s.ensure(ctx)
	return err
}

// Refresh enables the unit if needed, then restarts it, or starts it when
// it was not running.
func (s *Service) Refresh(ctx context.Context) error {
	started, err := s.ensure(ctx)
	if err != nil || started {
		return err
	}
	return s.systemd.Restart(ctx, s.Name)
}

// ensure enables and starts the unit, reporting whether it had to be started.
func (s *Service) ensure(ctx context.Context) (bool, error) {
	enabled, err := s.systemd.IsEnabled(ctx, s.Name)
	if err != nil {
		return false, err
	}
	if !enabled {
		if err := s.systemd.Enable(ctx, s.Name); err != nil {
			return false, err
		}
	}
	active, err := s.systemd.IsActive(ctx, s.Name)
	if err != nil {
		return false, err
	}
	if active {
		return false, nil
	}
	return true, s.systemd.Start(ctx, s.Name)
}
