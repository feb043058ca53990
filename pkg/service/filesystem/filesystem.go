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
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/billyperformance/druid/pkg/constants"
	"github.com/billyperformance/druid/pkg/logger"
	"github.com/billyperformance/druid/pkg/metrics"
)

// DefaultService is the default implementation of Service, backed by the host.
type DefaultService struct{}

// NewDefaultService creates a new DefaultService.
func NewDefaultService() *DefaultService {
	return &DefaultService{}
}

// checkContext checks if the context is done before proceeding with an operation.
func (s *DefaultService) checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// run executes fn in a goroutine so a cancelled context returns promptly even
// when the underlying syscall blocks.
func (s *DefaultService) run(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	if err := s.checkContext(ctx); err != nil {
		return fmt.Errorf("failed to check context: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()

	select {
	case err := <-errCh:
		metrics.RecordFilesystemOp(op, err, time.Since(start))
		return err
	case <-ctx.Done():
		err := ctx.Err()
		metrics.RecordFilesystemOp(op, err, time.Since(start))
		return err
	}
}

// EnsureDirectory creates a directory if it doesn't exist.
func (s *DefaultService) EnsureDirectory(ctx context.Context, path string) error {
	err := s.run(ctx, "EnsureDirectory", func() error {
		return os.MkdirAll(path, 0755)
	})
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a file's contents respecting the context.
func (s *DefaultService) ReadFile(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	start := time.Now()
	err := s.run(ctx, "ReadFile", func() error {
		var readErr error
		data, readErr = os.ReadFile(path)
		return readErr
	})
	if err != nil {
		return nil, err
	}
	if elapsed := time.Since(start); elapsed > constants.FilesystemSlowReadThreshold {
		logger.For(logger.ComponentFilesystem).Debugw("Slow file read", "path", path, "bytes", len(data), "duration", elapsed)
	}
	return data, nil
}

// WriteFile writes to a temporary sibling and renames it over path, so readers
// never observe a partially written file.
func (s *DefaultService) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	err := s.run(ctx, "WriteFile", func() error {
		tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
		if err != nil {
			return err
		}
		tmpName := tmp.Name()
		if _, err := tmp.Write(data); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
			return err
		}
		if err := tmp.Chmod(perm); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
			return err
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(tmpName)
			return err
		}
		if err := os.Rename(tmpName, path); err != nil {
			_ = os.Remove(tmpName)
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// PathExists checks if a path exists. Dangling symlinks count as existing.
func (s *DefaultService) PathExists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := s.run(ctx, "PathExists", func() error {
		_, statErr := os.Lstat(path)
		if statErr == nil {
			exists = true
			return nil
		}
		if errors.Is(statErr, os.ErrNotExist) {
			return nil
		}
		return statErr
	})
	if err != nil {
		return false, fmt.Errorf("failed to check if path exists: %w", err)
	}
	return exists, nil
}

// Lstat returns file info without following a final symlink.
func (s *DefaultService) Lstat(ctx context.Context, path string) (os.FileInfo, error) {
	var info os.FileInfo
	err := s.run(ctx, "Lstat", func() error {
		var statErr error
		info, statErr = os.Lstat(path)
		return statErr
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Readlink returns the target of a symlink.
func (s *DefaultService) Readlink(ctx context.Context, path string) (string, error) {
	var target string
	err := s.run(ctx, "Readlink", func() error {
		var linkErr error
		target, linkErr = os.Readlink(path)
		return linkErr
	})
	if err != nil {
		return "", err
	}
	return target, nil
}

// Symlink creates a symbolic link from linkPath to target.
func (s *DefaultService) Symlink(ctx context.Context, target, linkPath string) error {
	err := s.run(ctx, "Symlink", func() error {
		return os.Symlink(target, linkPath)
	})
	if err != nil {
		return fmt.Errorf("failed to create symlink %s -> %s: %w", linkPath, target, err)
	}
	return nil
}

// Remove removes a file, link or empty directory.
func (s *DefaultService) Remove(ctx context.Context, path string) error {
	err := s.run(ctx, "Remove", func() error {
		return os.Remove(path)
	})
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// RemoveAll removes a path and any children it contains.
func (s *DefaultService) RemoveAll(ctx context.Context, path string) error {
	err := s.run(ctx, "RemoveAll", func() error {
		return os.RemoveAll(path)
	})
	if err != nil {
		return fmt.Errorf("failed to remove directory %s: %w", path, err)
	}
	return nil
}

// Rename renames (moves) a file or directory.
func (s *DefaultService) Rename(ctx context.Context, oldPath, newPath string) error {
	err := s.run(ctx, "Rename", func() error {
		return os.Rename(oldPath, newPath)
	})
	if err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

// Glob returns the paths matching pattern.
func (s *DefaultService) Glob(ctx context.Context, pattern string) ([]string, error) {
	var matches []string
	err := s.run(ctx, "Glob", func() error {
		var globErr error
		matches, globErr = filepath.Glob(pattern)
		return globErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}
	return matches, nil
}

// ExecuteCommand executes a command with context.
func (s *DefaultService) ExecuteCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	start := time.Now()
	cmdStr := name
	if len(args) > 0 {
		cmdStr = fmt.Sprintf("%s %s", name, strings.Join(args, " "))
	}

	if err := s.checkContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to check context: %w", err)
	}

	// exec.CommandContext kills the process when ctx is cancelled
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	metrics.RecordFilesystemOp("ExecuteCommand", err, time.Since(start))
	if err != nil {
		logger.For(logger.ComponentFilesystem).Debugw("Command failed", "command", cmdStr, "output", string(output))
		return output, fmt.Errorf("failed to execute command %s: %w", cmdStr, err)
	}

	return output, nil
}
