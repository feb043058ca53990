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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/billyperformance/druid/pkg/logger"
	"github.com/billyperformance/druid/pkg/sentry"
	"github.com/billyperformance/druid/pkg/version"
)

// app carries what every subcommand needs once the root has parsed its flags.
type app struct {
	settings Settings
	log      *zap.SugaredLogger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "druidctl",
		Short:         "Compile and install Druid node configuration",
		Long:          "Validates Druid cluster parameters, renders per-node configuration and converges it onto a systemd host.",
		Version:       version.GetAppVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			logger.SetLevel(s.LogLevel)
			sentry.InitSentry(version.GetAppVersion(), s.SentryDSN)
			a.settings = s
			a.log = logger.For(logger.ComponentCore)
			return nil
		},
	}
	addSettingFlags(root)

	root.AddCommand(
		newValidateCommand(a),
		newRenderCommand(a),
		newInstallCommand(a),
	)
	return root
}
