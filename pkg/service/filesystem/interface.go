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
	"os"
)

// Service provides an interface for filesystem operations
// This allows for easier testing and separation of concerns.
type Service interface {
	// EnsureDirectory creates a directory (and its parents) if it doesn't exist
	EnsureDirectory(ctx context.Context, path string) error

	// ReadFile reads a file's contents respecting the context
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile replaces a file's contents. The new content becomes visible
	// atomically.
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error

	// PathExists checks if a file, directory or link exists at the given path
	PathExists(ctx context.Context, path string) (bool, error)

	// Lstat returns file info without following a final symlink
	Lstat(ctx context.Context, path string) (os.FileInfo, error)

	// Readlink returns the target of a symlink
	Readlink(ctx context.Context, path string) (string, error)

	// Symlink creates a symbolic link at linkPath pointing at target.
	Symlink(ctx context.Context, target, linkPath string) error

	// Remove removes a file, link or empty directory
	Remove(ctx context.Context, path string) error

	// RemoveAll removes a path and all its contents
	RemoveAll(ctx context.Context, path string) error

	// Rename renames (moves) a file or directory from oldPath to newPath.
	// This operation is atomic on the same filesystem mount.
	Rename(ctx context.Context, oldPath, newPath string) error

	// Glob is a wrapper around filepath.Glob that respects the context
	Glob(ctx context.Context, pattern string) ([]string, error)

	// ExecuteCommand executes a command with context and returns its combined output
	ExecuteCommand(ctx context.Context, name string, args ...string) ([]byte, error)
}
