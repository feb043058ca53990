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

package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billyperformance/druid/pkg/config"
	"github.com/billyperformance/druid/pkg/constants"
	"github.com/billyperformance/druid/pkg/roles"
	"github.com/billyperformance/druid/pkg/service/druid"
	"github.com/billyperformance/druid/pkg/service/filesystem"
	"github.com/billyperformance/druid/pkg/service/httpclient"
	"github.com/billyperformance/druid/pkg/service/systemd"
)

func newRenderCommand(a *app) *cobra.Command {
	var (
		file      string
		roleNames []string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the documents an install would write",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.plan(file, roleNames, false)
			if err != nil {
				return err
			}
			printDocuments(cmd.OutOrStdout(), p.installer, p.Plan)
			return planErr(p.Plan)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Parameters file (YAML)")
	cmd.Flags().StringSliceVar(&roleNames, "role", nil, "Roles to render (default: every role in the file)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// newInstaller builds an installer against the real host.
func (a *app) newInstaller() (*druid.Installer, filesystem.Service) {
	fsService := filesystem.NewDefaultService()
	sd := systemd.NewDefaultService(fsService).WithSystemctl(a.settings.Systemctl)
	installer := druid.NewInstaller(fsService, sd).
		WithConfigDir(a.settings.ConfigDir).
		WithUnitDir(a.settings.UnitDir).
		WithSystemctl(a.settings.Systemctl)
	return installer, fsService
}

// planned is a plan together with the host and installer that built it.
type planned struct {
	*roles.Plan
	host      *roles.Host
	installer *druid.Installer
}

// plan validates file and builds the catalog for the selected roles. Nothing
// touches the host until the plan is applied.
func (a *app) plan(file string, roleNames []string, withDistribution bool) (*planned, error) {
	pf, err := config.LoadParamsFile(file)
	if err != nil {
		return nil, err
	}
	selected, err := roles.SelectRoles(pf, roleNames)
	if err != nil {
		return nil, err
	}
	facts, err := detectFacts(a.settings)
	if err != nil {
		return nil, err
	}

	installer, fsService := a.newInstaller()
	client := httpclient.NewDefaultHTTPClient().WithTimeout(a.settings.DownloadTimeout)
	host := roles.NewHost(fsService, client, installer, facts).WithArchiveCache(a.settings.CacheDir)
	if !withDistribution {
		host.WithoutDistribution()
	}
	plan, err := host.Plan(pf, selected)
	if err != nil {
		return nil, err
	}
	a.log.Debugw("Planned install", "roles", len(plan.Roles), "resources", len(plan.Catalog.Refs()))
	return &planned{Plan: plan, host: host, installer: installer}, nil
}

func printDocuments(w io.Writer, installer *druid.Installer, plan *roles.Plan) {
	printDocument(w, installer.SharedConfigPath(), plan.Shared)
	printDocument(w, filepath.Join(installer.ConfigDir(), constants.Log4jFileName), plan.Log4j)
	for _, r := range plan.Roles {
		name := string(r.Role)
		printDocument(w, filepath.Join(installer.RoleDir(name), constants.RuntimePropertiesFileName), r.Runtime)
		printDocument(w, installer.UnitPath(name), r.Unit)
	}
}

func printDocument(w io.Writer, path, content string) {
	fmt.Fprintf(w, "# ==> %s <==\n%s\n", path, content)
}

// planErr joins the errors of roles that were left out of the plan.
func planErr(plan *roles.Plan) error {
	var errs []error
	for _, role := range config.Roles {
		if err, ok := plan.RoleErrors[role]; ok {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
