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

package distribution

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/billyperformance/druid/pkg/service/filesystem"
)

// ErrUnsafePath is returned for archive entries that would land outside the
// extraction directory.
var ErrUnsafePath = errors.New("archive entry escapes extraction directory")

// Extract unpacks a gzip compressed tarball into destDir through fsService.
// Regular files, directories and symlinks are restored; other entry types are
// ignored.
func Extract(ctx context.Context, fsService filesystem.Service, archive []byte, destDir string) (int, error) {
	zr, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return 0, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	if err := fsService.EnsureDirectory(ctx, destDir); err != nil {
		return 0, err
	}

	tr := tar.NewReader(zr)
	entries := 0
	for {
		if err := ctx.Err(); err != nil {
			return entries, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, fmt.Errorf("failed to read archive: %w", err)
		}

		target, err := entryPath(destDir, hdr.Name)
		if err != nil {
			return entries, err
		}
		if err := checkParents(ctx, fsService, destDir, target); err != nil {
			return entries, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := fsService.EnsureDirectory(ctx, target); err != nil {
				return entries, err
			}
		case tar.TypeReg:
			data, err := io.ReadAll(tr)
			if err != nil {
				return entries, fmt.Errorf("failed to read %s from archive: %w", hdr.Name, err)
			}
			if err := fsService.EnsureDirectory(ctx, filepath.Dir(target)); err != nil {
				return entries, err
			}
			// A link at target is replaced, never written through.
			if info, err := fsService.Lstat(ctx, target); err == nil && info.Mode()&os.ModeSymlink != 0 {
				if err := fsService.Remove(ctx, target); err != nil {
					return entries, err
				}
			}
			if err := fsService.WriteFile(ctx, target, data, os.FileMode(hdr.Mode).Perm()); err != nil {
				return entries, err
			}
		case tar.TypeSymlink:
			if err := checkLinkTarget(destDir, target, hdr.Linkname); err != nil {
				return entries, err
			}
			if err := fsService.EnsureDirectory(ctx, filepath.Dir(target)); err != nil {
				return entries, err
			}
			if exists, _ := fsService.PathExists(ctx, target); exists {
				if err := fsService.Remove(ctx, target); err != nil {
					return entries, err
				}
			}
			if err := fsService.Symlink(ctx, hdr.Linkname, target); err != nil {
				return entries, err
			}
		default:
			continue
		}
		entries++
	}
}

func entryPath(destDir, name string) (string, error) {
	clean := path.Clean(name)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(destDir, filepath.FromSlash(clean)), nil
}

// within reports whether p is destDir or lies below it.
func within(destDir, p string) bool {
	rel, err := filepath.Rel(destDir, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// checkLinkTarget rejects symlinks that point outside destDir.
func checkLinkTarget(destDir, target, linkname string) error {
	if linkname == "" || filepath.IsAbs(linkname) {
		return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, target, linkname)
	}
	resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(linkname))
	if !within(destDir, resolved) {
		return fmt.Errorf("%w: %s -> %s", ErrUnsafePath, target, linkname)
	}
	return nil
}

// checkParents refuses to write below a symlink, which could redirect the
// entry out of destDir.
func checkParents(ctx context.Context, fsService filesystem.Service, destDir, target string) error {
	rel, err := filepath.Rel(destDir, filepath.Dir(target))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnsafePath, target)
	}
	if rel == "." {
		return nil
	}
	current := destDir
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		info, err := fsService.Lstat(ctx, current)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s is below symlink %s", ErrUnsafePath, target, current)
		}
	}
	return nil
}
