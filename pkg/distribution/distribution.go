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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/billyperformance/druid/pkg/catalog"
	"github.com/billyperformance/druid/pkg/constants"
	"github.com/billyperformance/druid/pkg/logger"
	"github.com/billyperformance/druid/pkg/metrics"
	"github.com/billyperformance/druid/pkg/service/filesystem"
	"github.com/billyperformance/druid/pkg/service/httpclient"
)

// Archive downloads a release archive into the cache and unpacks it. It is
// in sync as soon as the unpacked directory exists.
type Archive struct {
	Coordinates Coordinates
	CacheDir    string
	BaseDir     string

	// Retries bounds the download attempts after the first, RetryInterval is
	// the initial wait between them.
	Retries       uint64
	RetryInterval time.Duration

	fs     filesystem.Service
	http   httpclient.HTTPClient
	logger *zap.SugaredLogger
}

func (a *Archive) Ref() string  { return "Archive[" + a.Coordinates.ArchivePath(a.CacheDir) + "]" }
func (a *Archive) Kind() string { return "Archive" }

// InstallDir is the directory the archive unpacks to.
func (a *Archive) InstallDir() string {
	return a.Coordinates.InstallDir(a.BaseDir)
}

func (a *Archive) Check(ctx context.Context) (bool, error) {
	return a.fs.PathExists(ctx, a.InstallDir())
}

func (a *Archive) Apply(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.ObserveApplyTime(metrics.ComponentDistribution, a.Coordinates.ArchiveName, time.Since(start))
	}()

	data, err := a.fetch(ctx)
	if err != nil {
		return err
	}
	n, err := Extract(ctx, a.fs, data, a.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to extract %s: %w", a.Coordinates.ArchiveName, err)
	}
	if exists, err := a.fs.PathExists(ctx, a.InstallDir()); err != nil || !exists {
		return fmt.Errorf("archive %s did not contain %s", a.Coordinates.ArchiveName, a.Coordinates.DirName)
	}
	a.logger.Infof("Extracted %d entries from %s into %s", n, a.Coordinates.ArchiveName, a.BaseDir)

	// The cache only spans a failed extraction.
	cached := a.Coordinates.ArchivePath(a.CacheDir)
	if err := a.fs.Remove(ctx, cached); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cached archive %s: %w", cached, err)
	}
	return nil
}

// fetch returns the cached archive, downloading it first when missing.
func (a *Archive) fetch(ctx context.Context) ([]byte, error) {
	cached := a.Coordinates.ArchivePath(a.CacheDir)
	exists, err := a.fs.PathExists(ctx, cached)
	if err != nil {
		return nil, err
	}
	if exists {
		return a.fs.ReadFile(ctx, cached)
	}

	body, err := a.download(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.fs.EnsureDirectory(ctx, a.CacheDir); err != nil {
		return nil, err
	}
	if err := a.fs.WriteFile(ctx, cached, body, 0644); err != nil {
		return nil, err
	}
	a.logger.Infof("Downloaded %s (%d bytes)", a.Coordinates.URL, len(body))
	return body, nil
}

// download fetches the archive, retrying transport failures and server errors.
// Client errors such as a missing release are not retried.
func (a *Archive) download(ctx context.Context) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = a.RetryInterval
	policy.MaxElapsedTime = 0

	var body []byte
	attempt := 0
	op := func() error {
		attempt++
		resp, b, err := a.http.GetWithBody(ctx, a.Coordinates.URL)
		if err == nil {
			body = b
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if resp != nil && resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		a.logger.Warnf("Download attempt %d of %s failed: %s", attempt, a.Coordinates.URL, err)
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, a.Retries), ctx)); err != nil {
		if perm, ok := err.(*backoff.PermanentError); ok {
			err = perm.Err
		}
		metrics.IncErrorCount(metrics.ComponentDistribution, a.Coordinates.ArchiveName)
		return nil, err
	}
	return body, nil
}

// ExtensionsPurge empties the extensions directory shipped with a fresh
// distribution. It only runs when the archive was just unpacked.
type ExtensionsPurge struct {
	Dir string

	fs filesystem.Service
}

func (p *ExtensionsPurge) Ref() string       { return catalog.ExecRef("rm -rf " + p.pattern()) }
func (p *ExtensionsPurge) Kind() string      { return "Exec" }
func (p *ExtensionsPurge) RefreshOnly() bool { return true }

func (p *ExtensionsPurge) pattern() string {
	return filepath.Join(p.Dir, "extensions", "*")
}

func (p *ExtensionsPurge) Check(context.Context) (bool, error) {
	return false, nil
}

func (p *ExtensionsPurge) Apply(ctx context.Context) error {
	matches, err := p.fs.Glob(ctx, p.pattern())
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := p.fs.RemoveAll(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Distribution adds the release resources to a catalog.
type Distribution struct {
	coords Coordinates

	fs   filesystem.Service
	http httpclient.HTTPClient

	cacheDir string
	baseDir  string
	homeLink string

	retries       uint64
	retryInterval time.Duration

	logger *zap.SugaredLogger
}

// New creates a distribution using the default directories.
func New(fsService filesystem.Service, client httpclient.HTTPClient, coords Coordinates) *Distribution {
	return &Distribution{
		coords:   coords,
		fs:       fsService,
		http:     client,
		cacheDir: constants.ArchiveCacheDir,
		baseDir:  constants.DruidInstallBaseDir,
		homeLink: constants.DruidHome,
		logger:   logger.For(logger.ComponentDistribution),

		retries:       constants.DownloadRetries,
		retryInterval: constants.DownloadRetryInterval,
	}
}

// WithRetry overrides how often and how soon a failed download is retried.
func (d *Distribution) WithRetry(retries uint64, interval time.Duration) *Distribution {
	d.retries, d.retryInterval = retries, interval
	return d
}

// WithDirs overrides the archive cache, extraction base and home link.
func (d *Distribution) WithDirs(cacheDir, baseDir, homeLink string) *Distribution {
	d.cacheDir, d.baseDir, d.homeLink = cacheDir, baseDir, homeLink
	return d
}

// HomeRef is the ref of the Druid home link.
func (d *Distribution) HomeRef() string {
	return catalog.LinkRef(d.homeLink)
}

// Install adds the archive, the extensions purge and the home link to cat.
func (d *Distribution) Install(cat *catalog.Catalog) error {
	archive := &Archive{
		Coordinates: d.coords,
		CacheDir:    d.cacheDir,
		BaseDir:     d.baseDir,

		Retries:       d.retries,
		RetryInterval: d.retryInterval,

		fs:     d.fs,
		http:   d.http,
		logger: d.logger,
	}
	purge := &ExtensionsPurge{Dir: archive.InstallDir(), fs: d.fs}
	home := catalog.NewLink(d.fs, d.homeLink, archive.InstallDir())

	if err := cat.Add(archive); err != nil {
		return err
	}
	if err := cat.Add(purge, catalog.Subscribes(archive.Ref())); err != nil {
		return err
	}
	if err := cat.Add(home, catalog.Requires(archive.Ref())); err != nil {
		return err
	}
	d.logger.Debugf("Added distribution %s", d.coords.DirName)
	return nil
}
