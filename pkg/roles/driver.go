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

// Package roles holds one driver per Druid node type. A driver validates the
// role parameters on top of the role defaults, renders the role documents and
// hands them to the service installer.
package roles

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/billyperformance/druid/pkg/catalog"
	"github.com/billyperformance/druid/pkg/compiler"
	"github.com/billyperformance/druid/pkg/config"
	"github.com/billyperformance/druid/pkg/logger"
	"github.com/billyperformance/druid/pkg/service/druid"
	"github.com/billyperformance/druid/pkg/service/systemd"
)

// Rendered holds the documents of one role.
type Rendered struct {
	Role    config.Role
	Runtime string
	Unit    string
}

// Driver configures and installs one role.
type Driver struct {
	role      config.Role
	generator *compiler.Generator
	installer *druid.Installer
	logger    *zap.SugaredLogger
}

func newDriver(role config.Role, generator *compiler.Generator, installer *druid.Installer) *Driver {
	return &Driver{
		role:      role,
		generator: generator,
		installer: installer,
		logger:    logger.For(logger.ComponentRoleDriver).With("role", string(role)),
	}
}

// NewDriver returns the driver of role.
func NewDriver(role config.Role, generator *compiler.Generator, installer *druid.Installer) (*Driver, error) {
	switch role {
	case config.RoleBroker:
		return NewBroker(generator, installer), nil
	case config.RoleCoordinator:
		return NewCoordinator(generator, installer), nil
	case config.RoleHistorical:
		return NewHistorical(generator, installer), nil
	case config.RoleMiddleManager:
		return NewMiddleManager(generator, installer), nil
	case config.RoleOverlord:
		return NewOverlord(generator, installer), nil
	case config.RoleRouter:
		return NewRouter(generator, installer), nil
	}
	return nil, fmt.Errorf("no driver for role %q", role)
}

// Role returns the role the driver handles.
func (d *Driver) Role() config.Role {
	return d.role
}

// ServiceName is the name the role is installed under.
func (d *Driver) ServiceName() string {
	return string(d.role)
}

// Configure validates raw role parameters merged over the role defaults.
func (d *Driver) Configure(facts config.Facts, raw config.Params) (*config.RoleConfig, error) {
	rc, err := config.ValidateRole(d.role, facts, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameters: %w", d.role, err)
	}
	return rc, nil
}

// Render produces the runtime properties and the unit file of the role.
func (d *Driver) Render(m *config.Model, rc *config.RoleConfig) (Rendered, error) {
	if rc.Role != d.role {
		return Rendered{}, fmt.Errorf("%s driver cannot render %s settings", d.role, rc.Role)
	}
	unit, err := systemd.RenderUnit(
		d.role.DisplayName(),
		rc.Node.JVMOpts,
		systemd.Classpath(d.ServiceName()),
		systemd.MainArgs(string(m.PackageNamespace), d.role.ServerArg()),
	)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{
		Role:    d.role,
		Runtime: d.generator.RenderRole(rc),
		Unit:    unit,
	}, nil
}

// Install renders the role and adds its resources to cat.
func (d *Driver) Install(cat *catalog.Catalog, m *config.Model, rc *config.RoleConfig) (Rendered, error) {
	r, err := d.Render(m, rc)
	if err != nil {
		return Rendered{}, err
	}
	if err := d.installer.Install(cat, d.ServiceName(), r.Runtime, r.Unit); err != nil {
		return Rendered{}, err
	}
	d.logger.Debugf("Added %s to catalog %s", d.ServiceName(), cat.Name())
	return r, nil
}
