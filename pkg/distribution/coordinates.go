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

// Package distribution downloads and unpacks the Druid release archive and
// points the Druid home link at it.
package distribution

import (
	"fmt"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/billyperformance/druid/pkg/config"
	"github.com/billyperformance/druid/pkg/constants"
)

// Coordinates locate one release archive and where it unpacks to.
type Coordinates struct {
	Version   *semver.Version
	Namespace config.Namespace

	// ArchiveName is the file name of the release archive
	ArchiveName string
	// URL is where the archive is downloaded from
	URL string
	// DirName is the top level directory inside the archive
	DirName string
}

// CoordinatesFor returns the coordinates of a release. Releases under the
// legacy namespace were published on static.druid.io, later ones by the
// Apache incubator.
func CoordinatesFor(version string, namespace config.Namespace) (Coordinates, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid druid version %q: %w", version, err)
	}
	// keep the version as the operator wrote it, archives are named that way
	raw := v.Original()

	c := Coordinates{Version: v, Namespace: namespace}
	switch namespace {
	case config.NamespaceLegacy:
		c.DirName = fmt.Sprintf("druid-%s", raw)
		c.ArchiveName = c.DirName + "-bin.tar.gz"
		c.URL = constants.LegacyReleaseBaseURL + "/" + c.ArchiveName
	case config.NamespaceModern:
		c.DirName = fmt.Sprintf("apache-druid-%s-incubating", raw)
		c.ArchiveName = c.DirName + "-bin.tar.gz"
		c.URL = fmt.Sprintf("%s/%s-incubating/%s", constants.ModernReleaseBaseURL, raw, c.ArchiveName)
	default:
		return Coordinates{}, fmt.Errorf("unknown package namespace %q", namespace)
	}
	return c, nil
}

// FromModel returns the coordinates of the release a model installs.
func FromModel(m *config.Model) (Coordinates, error) {
	return CoordinatesFor(m.InstallVersion, m.PackageNamespace)
}

// InstallDir is where the archive unpacks to below baseDir.
func (c Coordinates) InstallDir(baseDir string) string {
	return filepath.Join(baseDir, c.DirName)
}

// ArchivePath is where the archive is cached below cacheDir.
func (c Coordinates) ArchivePath(cacheDir string) string {
	return filepath.Join(cacheDir, c.ArchiveName)
}
