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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/billyperformance/druid/pkg/metrics"
	"github.com/billyperformance/druid/pkg/roles"
	"github.com/billyperformance/druid/pkg/sentry"
)

func newInstallCommand(a *app) *cobra.Command {
	var (
		file             string
		roleNames        []string
		dryRun           bool
		skipDistribution bool
	)
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Converge this host onto the parameters file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.plan(file, roleNames, !skipDistribution)
			if err != nil {
				return err
			}
			if dryRun {
				return a.printOrder(cmd, p.Plan)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.apply(ctx, cmd, p)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Parameters file (YAML)")
	cmd.Flags().StringSliceVar(&roleNames, "role", nil, "Roles to install (default: every role in the file)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the resources in apply order without changing the host")
	cmd.Flags().BoolVar(&skipDistribution, "skip-distribution", false, "Leave the Druid release and /opt/druid link unmanaged")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) printOrder(cmd *cobra.Command, plan *roles.Plan) error {
	order, err := plan.Catalog.Order()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i, ref := range order {
		fmt.Fprintf(out, "%3d %s\n", i+1, ref)
	}
	return planErr(plan)
}

func (a *app) apply(ctx context.Context, cmd *cobra.Command, p *planned) error {
	host := "unknown"
	if h, err := os.Hostname(); err == nil {
		host = h
	}

	outcome, err := p.host.Apply(ctx, p.Plan)
	if err != nil {
		sentry.ReportIssue(err, sentry.IssueTypeFatal, a.log)
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), outcome.Report.String())

	if a.settings.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(a.settings.MetricsTextfile); err != nil {
			a.log.Warnf("Failed to write metrics to %s: %s", a.settings.MetricsTextfile, err)
		}
	}

	if err := outcome.Err(); err != nil {
		sentry.ReportIssueWithContext(err, sentry.IssueTypeError, a.log, map[string]interface{}{
			"run_id":   outcome.Report.RunID,
			"hostname": host,
			"failed":   len(outcome.Report.Failed()),
			"skipped":  len(outcome.Report.Skipped()),
		})
		return err
	}
	a.log.Infof("Run %s finished: %d changed", outcome.Report.RunID, len(outcome.Report.Changed()))
	return nil
}
