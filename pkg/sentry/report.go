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

package sentry

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

type IssueType string

const (
	IssueTypeWarning IssueType = "warning"
	IssueTypeError   IssueType = "error"
	IssueTypeFatal   IssueType = "fatal"
)

func ReportIssue(err error, issueType IssueType, log *zap.SugaredLogger) {
	ReportIssueWithContext(err, issueType, log, nil)
}

func ReportIssuef(issueType IssueType, log *zap.SugaredLogger, template string, args ...interface{}) {
	ReportIssue(fmt.Errorf(template, args...), issueType, log)
}

// ReportIssueWithContext logs the issue and forwards it to Sentry with the context as tags.
// Unlike a long-running agent, a fatal issue does not panic: the caller decides how to exit.
func ReportIssueWithContext(err error, issueType IssueType, log *zap.SugaredLogger, context map[string]interface{}) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	level := sentry.LevelError
	switch issueType {
	case IssueTypeFatal:
		level = sentry.LevelFatal
		log.Errorf("Fatal: %s", err)
	case IssueTypeWarning:
		level = sentry.LevelWarning
		log.Warn(err)
	default:
		log.Error(err)
	}

	sendSentryEvent(createSentryEvent(level, err, context))
}

// ReportStepError reports a failed installation step of a resource.
func ReportStepError(log *zap.SugaredLogger, resource string, step string, err error) {
	ReportIssueWithContext(err, IssueTypeError, log, map[string]interface{}{
		"resource":  resource,
		"operation": step,
	})
}
