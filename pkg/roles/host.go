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

package roles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/billyperformance/druid/pkg/catalog"
	"github.com/billyperformance/druid/pkg/compiler"
	"github.com/billyperformance/druid/pkg/config"
	"github.com/billyperformance/druid/pkg/constants"
	"github.com/billyperformance/druid/pkg/distribution"
	"github.com/billyperformance/druid/pkg/logger"
	"github.com/billyperformance/druid/pkg/metrics"
	"github.com/billyperformance/druid/pkg/service/druid"
	"github.com/billyperformance/druid/pkg/service/filesystem"
	"github.com/billyperformance/druid/pkg/service/httpclient"
)

// Plan is everything one run installs on a host.
type Plan struct {
	Catalog *catalog.Catalog
	Model   *config.Model
	Shared  string
	Log4j   string
	Roles   []Rendered
	// RoleErrors holds the roles that could not be planned. They are left
	// out of the catalog while the other roles proceed.
	RoleErrors map[config.Role]error
}

// Outcome is the result of applying a plan.
type Outcome struct {
	Report      *catalog.Report
	CommonError error
	RoleErrors  map[config.Role]error
	// OtherErrors holds failures of resources no installer step owns, such as
	// the distribution archive
	OtherErrors error
}

// Err joins every error of the outcome.
func (o *Outcome) Err() error {
	errs := []error{o.OtherErrors, o.CommonError}
	for _, role := range config.Roles {
		if err, ok := o.RoleErrors[role]; ok && err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", role, err))
		}
	}
	return errors.Join(errs...)
}

// Host plans and applies Druid installs on one host.
type Host struct {
	fsService  filesystem.Service
	httpClient httpclient.HTTPClient
	generator  *compiler.Generator
	installer  *druid.Installer
	facts      config.Facts

	distribution bool
	cacheDir     string
	logger       *zap.SugaredLogger
}

// NewHost creates a host planner that also installs the distribution.
func NewHost(fsService filesystem.Service, httpClient httpclient.HTTPClient, installer *druid.Installer, facts config.Facts) *Host {
	return &Host{
		fsService:    fsService,
		httpClient:   httpClient,
		generator:    compiler.NewGenerator(),
		installer:    installer,
		facts:        facts,
		distribution: true,
		logger:       logger.For(logger.ComponentCore),
	}
}

// WithoutDistribution leaves the release archive and home link unmanaged.
func (h *Host) WithoutDistribution() *Host {
	h.distribution = false
	return h
}

// WithArchiveCache sets the directory release archives are downloaded to.
func (h *Host) WithArchiveCache(dir string) *Host {
	h.cacheDir = dir
	return h
}

// SelectRoles returns the roles to install in install order. With no
// explicit selection, every role present in the parameters file is used.
func SelectRoles(pf *config.ParamsFile, names []string) ([]config.Role, error) {
	wanted := map[config.Role]bool{}
	if len(names) == 0 {
		names = pf.RoleOrder
	}
	for _, name := range names {
		role, err := config.ParseRole(name)
		if err != nil {
			return nil, err
		}
		wanted[role] = true
	}
	var out []config.Role
	for _, role := range config.Roles {
		if wanted[role] {
			out = append(out, role)
		}
	}
	return out, nil
}

// Plan validates the parameters, renders every document and builds the catalog.
func (h *Host) Plan(pf *config.ParamsFile, selected []config.Role) (*Plan, error) {
	model, err := config.Validate(pf.Druid)
	if err != nil {
		return nil, fmt.Errorf("invalid druid parameters: %w", err)
	}
	log4j, err := h.generator.RenderLog4j(model)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Catalog:    catalog.New("druid"),
		Model:      model,
		Shared:     h.generator.RenderShared(model),
		Log4j:      log4j,
		RoleErrors: map[config.Role]error{},
	}

	if h.distribution {
		coords, err := distribution.FromModel(model)
		if err != nil {
			return nil, err
		}
		dist := distribution.New(h.fsService, h.httpClient, coords)
		if h.cacheDir != "" {
			dist.WithDirs(h.cacheDir, constants.DruidInstallBaseDir, constants.DruidHome)
		}
		if err := dist.Install(plan.Catalog); err != nil {
			return nil, err
		}
	}
	if err := h.installer.InstallCommon(plan.Catalog, plan.Shared, plan.Log4j); err != nil {
		return nil, err
	}

	for _, role := range selected {
		rendered, err := h.planRole(plan, role, pf.Roles[string(role)])
		if err != nil {
			metrics.IncErrorCountAndLog(metrics.ComponentInstaller, string(role), err, h.logger)
			plan.RoleErrors[role] = err
			continue
		}
		plan.Roles = append(plan.Roles, rendered)
	}
	return plan, nil
}

func (h *Host) planRole(plan *Plan, role config.Role, raw config.Params) (Rendered, error) {
	driver, err := NewDriver(role, h.generator, h.installer)
	if err != nil {
		return Rendered{}, err
	}
	rc, err := driver.Configure(h.facts, raw)
	if err != nil {
		return Rendered{}, err
	}
	return driver.Install(plan.Catalog, plan.Model, rc)
}

// Apply converges the plan's catalog.
func (h *Host) Apply(ctx context.Context, plan *Plan) (*Outcome, error) {
	report, err := plan.Catalog.Apply(ctx)
	if err != nil {
		return nil, err
	}
	metrics.MarkRun(time.Now())

	out := &Outcome{
		Report:      report,
		CommonError: h.installer.CommonError(report),
		RoleErrors:  map[config.Role]error{},
	}
	var other []error
	for _, res := range report.Failed() {
		if !h.installer.Owns(res.Ref) {
			other = append(other, fmt.Errorf("%s: %w", res.Ref, res.Err))
		}
	}
	out.OtherErrors = errors.Join(other...)
	for role, err := range plan.RoleErrors {
		out.RoleErrors[role] = err
	}
	for _, r := range plan.Roles {
		if err := h.installer.ServiceError(report, string(r.Role)); err != nil {
			out.RoleErrors[r.Role] = err
		}
	}
	return out, nil
}
