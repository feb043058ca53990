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

// Package druid installs Druid configuration and services on a host by adding
// resources to a catalog. Nothing touches the host until the catalog is
// applied.
package druid

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/billyperformance/druid/pkg/catalog"
	"github.com/billyperformance/druid/pkg/config"
	"github.com/billyperformance/druid/pkg/constants"
	"github.com/billyperformance/druid/pkg/logger"
	"github.com/billyperformance/druid/pkg/service/filesystem"
	"github.com/billyperformance/druid/pkg/service/systemd"
)

// ServiceParams are the parameters of one installed Druid service.
type ServiceParams struct {
	ServiceName    string `param:"service_name" validate:"required"`
	ConfigContent  string `param:"config_content" validate:"required"`
	ServiceContent string `param:"service_content" validate:"required"`
}

// Installer adds Druid resources to catalogs.
type Installer struct {
	fsService      filesystem.Service
	systemdService systemd.Service

	configDir string
	unitDir   string
	systemctl string

	mu sync.Mutex
	// steps maps every resource this installer added to its install step
	steps map[string]string
	// roles maps a service name to the refs it added
	roles map[string][]string
	// common holds the refs added by InstallCommon
	common []string

	logger *zap.SugaredLogger
}

// NewInstaller creates an installer writing to the default locations.
func NewInstaller(fsService filesystem.Service, systemdService systemd.Service) *Installer {
	return &Installer{
		fsService:      fsService,
		systemdService: systemdService,
		configDir:      constants.DruidConfigDir,
		unitDir:        constants.SystemdUnitDir,
		systemctl:      constants.SystemctlPath,
		steps:          make(map[string]string),
		roles:          make(map[string][]string),
		logger:         logger.For(logger.ComponentInstaller),
	}
}

// WithConfigDir overrides the shared config root.
func (i *Installer) WithConfigDir(dir string) *Installer {
	i.configDir = dir
	return i
}

// WithUnitDir overrides the systemd unit directory.
func (i *Installer) WithUnitDir(dir string) *Installer {
	i.unitDir = dir
	return i
}

// WithSystemctl overrides the systemctl binary used for daemon-reload.
func (i *Installer) WithSystemctl(path string) *Installer {
	i.systemctl = path
	return i
}

// ConfigDir returns the shared config root.
func (i *Installer) ConfigDir() string {
	return i.configDir
}

// SharedConfigPath is the path of the process-wide shared property file.
func (i *Installer) SharedConfigPath() string {
	return filepath.Join(i.configDir, constants.CommonPropertiesFileName)
}

// RoleDir is the config directory of a service.
func (i *Installer) RoleDir(name string) string {
	return filepath.Join(i.configDir, name)
}

// UnitPath is where the unit file of a service is written.
func (i *Installer) UnitPath(name string) string {
	return filepath.Join(i.unitDir, systemd.UnitName(name)+".service")
}

// ReloadTitle names the daemon reload of a service.
func ReloadTitle(name string) string {
	return fmt.Sprintf("Reload systemd daemon for new %s service config", name)
}

func (i *Installer) add(cat *catalog.Catalog, owner *[]string, step string, res catalog.Resource, opts ...catalog.Option) error {
	if err := cat.Add(res, opts...); err != nil {
		return err
	}
	i.steps[res.Ref()] = step
	*owner = append(*owner, res.Ref())
	return nil
}

// InstallCommon adds the shared config directory, the shared property file
// and the log4j2 configuration to cat.
func (i *Installer) InstallCommon(cat *catalog.Catalog, sharedText, log4jText string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	dir := catalog.NewDirectory(i.fsService, i.configDir)
	shared := catalog.NewFile(i.fsService, i.SharedConfigPath(), sharedText)
	log4j := catalog.NewFile(i.fsService, filepath.Join(i.configDir, constants.Log4jFileName), log4jText)

	var refs []string
	if err := i.add(cat, &refs, StepSharedDirectory, dir); err != nil {
		return err
	}
	if err := i.add(cat, &refs, StepSharedConfig, shared, catalog.Requires(dir.Ref())); err != nil {
		return err
	}
	if err := i.add(cat, &refs, StepLog4jConfig, log4j, catalog.Requires(dir.Ref())); err != nil {
		return err
	}
	i.common = refs
	i.logger.Debugf("Added shared config resources under %s", i.configDir)
	return nil
}

// Install adds the resources of one service to cat.
func (i *Installer) Install(cat *catalog.Catalog, name, configText, serviceText string) error {
	return i.InstallService(cat, config.Params{
		"service_name":    name,
		"config_content":  configText,
		"service_content": serviceText,
	})
}

// InstallService validates raw service parameters and adds the resources of
// the service to cat. The shared config must already be part of cat.
func (i *Installer) InstallService(cat *catalog.Catalog, params config.Params) error {
	var p ServiceParams
	if err := config.Bind(params, &p, "Druid::Service"); err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	name := p.ServiceName
	sharedRef := catalog.FileRef(i.SharedConfigPath())
	if !cat.Has(sharedRef) {
		return fmt.Errorf("cannot install %s: %s is not managed by catalog %s", name, sharedRef, cat.Name())
	}
	sharedDirRef := catalog.DirectoryRef(i.configDir)

	roleDir := catalog.NewDirectory(i.fsService, i.RoleDir(name))
	runtime := catalog.NewFile(i.fsService, filepath.Join(i.RoleDir(name), constants.RuntimePropertiesFileName), p.ConfigContent)
	link := catalog.NewLink(i.fsService, filepath.Join(i.RoleDir(name), constants.CommonPropertiesFileName), i.SharedConfigPath())
	unit := catalog.NewFile(i.fsService, i.UnitPath(name), p.ServiceContent)

	reload := catalog.NewExec(i.fsService, ReloadTitle(name), i.systemctl, "daemon-reload")
	reload.Refreshonly = true

	service := catalog.NewService(i.systemdService, systemd.UnitName(name))

	var refs []string
	adds := []struct {
		step string
		res  catalog.Resource
		opts []catalog.Option
	}{
		{StepRoleDirectory, roleDir, []catalog.Option{catalog.Requires(sharedDirRef)}},
		{StepRuntimeConfig, runtime, []catalog.Option{catalog.Requires(roleDir.Ref())}},
		{StepSharedLink, link, []catalog.Option{catalog.Requires(roleDir.Ref(), sharedRef)}},
		{StepServiceUnit, unit, nil},
		{StepDaemonReload, reload, []catalog.Option{catalog.Subscribes(runtime.Ref(), link.Ref(), sharedRef, unit.Ref())}},
		{StepServiceRunning, service, []catalog.Option{catalog.Requires(unit.Ref()), catalog.Subscribes(reload.Ref())}},
	}
	for _, a := range adds {
		if err := i.add(cat, &refs, a.step, a.res, a.opts...); err != nil {
			return fmt.Errorf("cannot install %s: %w", name, err)
		}
	}
	i.roles[name] = refs
	i.logger.Debugf("Added %d resources for service %s", len(refs), name)
	return nil
}

// Owns reports whether ref was added by this installer.
func (i *Installer) Owns(ref string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, ok := i.steps[ref]
	return ok
}

// CommonError returns the step errors of the shared resources in report.
func (i *Installer) CommonError(report *catalog.Report) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return stepErrors(report, i.steps, i.common)
}

// ServiceError returns the step errors of one service in report. Services
// converge independently, so a failure here says nothing about the others.
func (i *Installer) ServiceError(report *catalog.Report, name string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return stepErrors(report, i.steps, i.roles[name])
}
