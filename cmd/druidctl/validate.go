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

	"github.com/spf13/cobra"

	"github.com/billyperformance/druid/pkg/config"
)

func newValidateCommand(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a parameters file without rendering anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.validate(cmd, file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Parameters file (YAML)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) validate(cmd *cobra.Command, file string) error {
	pf, err := config.LoadParamsFile(file)
	if err != nil {
		return err
	}
	facts, err := detectFacts(a.settings)
	if err != nil {
		return err
	}

	var errs []error
	if _, err := config.Validate(pf.Druid); err != nil {
		errs = append(errs, fmt.Errorf("druid: %w", err))
	}
	for _, name := range pf.RoleOrder {
		role, err := config.ParseRole(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := config.ValidateRole(role, facts, pf.Roles[name]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", role, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d role(s) valid\n", file, len(pf.RoleOrder))
	return nil
}
