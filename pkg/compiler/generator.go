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

// Package compiler renders validated cluster and role configuration into the
// property files and log configuration Druid reads at startup.
package compiler

import (
	"github.com/billyperformance/druid/pkg/config"
	"github.com/billyperformance/druid/pkg/constants"
	"github.com/billyperformance/druid/pkg/logger"
	"github.com/billyperformance/druid/pkg/metrics"
	"github.com/billyperformance/druid/pkg/properties"
)

// Document names used in metrics.
const (
	DocumentShared = "shared"
	DocumentLog4j  = "log4j"
)

// Generator renders property documents.
type Generator struct {
	managedBy string
}

// NewGenerator creates a generator that stamps files as managed by druidctl.
func NewGenerator() *Generator {
	return &Generator{managedBy: constants.ManagedBy}
}

// RenderShared renders the common.runtime.properties file shared by every role
// on a host.
func (g *Generator) RenderShared(m *config.Model) string {
	doc := properties.Document{
		Preamble: properties.Preamble(g.managedBy),
		Sections: sharedSections(m),
	}
	out := doc.Render()
	metrics.IncRenderedDocument(DocumentShared)
	logger.For(logger.ComponentCompiler).Debugw("Rendered shared properties", "bytes", len(out))
	return out
}

// RenderRole renders the runtime.properties file of one role.
func (g *Generator) RenderRole(rc *config.RoleConfig) string {
	doc := properties.Document{
		Preamble: properties.Preamble(g.managedBy),
		Sections: roleSections(rc),
	}
	out := doc.Render()
	metrics.IncRenderedDocument(string(rc.Role))
	logger.For(logger.ComponentCompiler).Debugw("Rendered role properties", "role", rc.Role, "bytes", len(out))
	return out
}
