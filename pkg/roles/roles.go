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
	"github.com/billyperformance/druid/pkg/compiler"
	"github.com/billyperformance/druid/pkg/config"
	"github.com/billyperformance/druid/pkg/service/druid"
)

// NewBroker returns the driver of the query broker.
func NewBroker(generator *compiler.Generator, installer *druid.Installer) *Driver {
	return newDriver(config.RoleBroker, generator, installer)
}

// NewCoordinator returns the driver of the segment coordinator.
func NewCoordinator(generator *compiler.Generator, installer *druid.Installer) *Driver {
	return newDriver(config.RoleCoordinator, generator, installer)
}

// NewHistorical returns the driver of the historical segment server.
func NewHistorical(generator *compiler.Generator, installer *druid.Installer) *Driver {
	return newDriver(config.RoleHistorical, generator, installer)
}

// NewMiddleManager returns the driver of the indexing middle manager.
func NewMiddleManager(generator *compiler.Generator, installer *druid.Installer) *Driver {
	return newDriver(config.RoleMiddleManager, generator, installer)
}

// NewOverlord returns the driver of the indexing overlord.
func NewOverlord(generator *compiler.Generator, installer *druid.Installer) *Driver {
	return newDriver(config.RoleOverlord, generator, installer)
}

// NewRouter returns the driver of the request router.
func NewRouter(generator *compiler.Generator, installer *druid.Installer) *Driver {
	return newDriver(config.RoleRouter, generator, installer)
}
