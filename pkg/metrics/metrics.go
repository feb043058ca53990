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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	// Component Labels.
	ComponentCompiler     = "compiler"
	ComponentValidator    = "validator"
	ComponentCatalog      = "catalog"
	ComponentInstaller    = "installer"
	ComponentDistribution = "distribution"
	ComponentFilesystem   = "filesystem"
	ComponentSystemd      = "systemd"
)

var (
	namespace = "druidctl"

	errorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors encountered by component",
		},
		[]string{"component", "instance"},
	)

	renderedDocuments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rendered_documents_total",
			Help:      "Number of documents rendered, by document kind",
		},
		[]string{"document"},
	)

	resourceTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resource_transitions_total",
			Help:      "Resource convergence outcomes, by resource kind and final state",
		},
		[]string{"kind", "state"},
	)

	applyTime = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "apply_duration_milliseconds",
			Help:      "Time taken to converge a catalog (in milliseconds)",
			Objectives: map[float64]float64{
				0.5:  0.01,
				0.9:  0.01,
				0.99: 0.01,
			},
		},
		[]string{"component", "instance"},
	)

	filesystemOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filesystem_ops_total",
			Help:      "Total number of filesystem operations by type and outcome",
		},
		[]string{"operation", "status"},
	)

	filesystemOpsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filesystem_ops_duration_seconds",
			Help:      "Duration of filesystem operations in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"operation"},
	)

	lastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		},
	)
)

// IncErrorCountAndLog increments the error counter and logs the error.
func IncErrorCountAndLog(component, instance string, err error, logger *zap.SugaredLogger) {
	IncErrorCount(component, instance)
	if logger != nil {
		logger.Errorf("%s/%s: %v", component, instance, err)
	}
}

// IncErrorCount increments the error counter for a component.
func IncErrorCount(component, instance string) {
	errorCounter.WithLabelValues(component, instance).Inc()
}

// IncRenderedDocument counts one rendered document of the given kind.
func IncRenderedDocument(document string) {
	renderedDocuments.WithLabelValues(document).Inc()
}

// RecordResourceState counts the final state a resource reached during a run.
func RecordResourceState(kind, state string) {
	resourceTransitions.WithLabelValues(kind, state).Inc()
}

// ObserveApplyTime records how long a catalog took to converge.
func ObserveApplyTime(component, instance string, duration time.Duration) {
	applyTime.WithLabelValues(component, instance).Observe(float64(duration.Milliseconds()))
}

// RecordFilesystemOp records one filesystem operation.
func RecordFilesystemOp(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	filesystemOpsTotal.WithLabelValues(operation, status).Inc()
	filesystemOpsDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// MarkRun stamps the end of a run.
func MarkRun(t time.Time) {
	lastRunTimestamp.Set(float64(t.Unix()))
}

// WriteTextfile exports the default registry in the text exposition format,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
