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

package druid

import (
	"errors"
	"fmt"

	"github.com/billyperformance/druid/pkg/catalog"
)

// Install steps, in the order they converge.
const (
	StepSharedDirectory = "ensure shared config directory"
	StepSharedConfig    = "write shared config"
	StepLog4jConfig     = "write log4j config"
	StepRoleDirectory   = "ensure role directory"
	StepRuntimeConfig   = "write runtime config"
	StepSharedLink      = "link shared config"
	StepServiceUnit     = "write service unit"
	StepDaemonReload    = "reload systemd daemon"
	StepServiceRunning  = "ensure service running"
)

// InstallStepError reports a host level step that did not converge. Steps
// that already converged are left in place.
type InstallStepError struct {
	Resource string
	Step     string
	Err      error
}

func (e *InstallStepError) Error() string {
	return fmt.Sprintf("failed to %s (%s): %v", e.Step, e.Resource, e.Err)
}

func (e *InstallStepError) Unwrap() error {
	return e.Err
}

// stepErrors converts the failed and skipped results of refs into InstallStepErrors.
func stepErrors(report *catalog.Report, steps map[string]string, refs []string) error {
	var errs []error
	for _, ref := range refs {
		res, ok := report.Result(ref)
		if !ok || res.Err == nil {
			continue
		}
		errs = append(errs, &InstallStepError{Resource: ref, Step: steps[ref], Err: res.Err})
	}
	return errors.Join(errs...)
}
