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

package systemd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/billyperformance/druid/pkg/constants"
	"github.com/billyperformance/druid/pkg/logger"
	"github.com/billyperformance/druid/pkg/metrics"
	"github.com/billyperformance/druid/pkg/service/filesystem"
)

// ErrSystemctl is returned when systemctl fails without reporting a unit state.
var ErrSystemctl = errors.New("systemctl failed")

// Service defines the interface for interacting with the systemd manager
type Service interface {
	// DaemonReload makes systemd pick up changed unit files
	DaemonReload(ctx context.Context) error
	// IsEnabled reports whether a unit starts at boot
	IsEnabled(ctx context.Context, unit string) (bool, error)
	// Enable enables a unit
	Enable(ctx context.Context, unit string) error
	// IsActive reports whether a unit is running
	IsActive(ctx context.Context, unit string) (bool, error)
	// Start starts a unit
	Start(ctx context.Context, unit string) error
	// Restart restarts a unit
	Restart(ctx context.Context, unit string) error
}

// DefaultService drives systemd through systemctl.
type DefaultService struct {
	fsService filesystem.Service
	systemctl string
	logger    *zap.SugaredLogger
}

// NewDefaultService creates a new systemctl backed service.
func NewDefaultService(fsService filesystem.Service) *DefaultService {
	return &DefaultService{
		fsService: fsService,
		systemctl: constants.SystemctlPath,
		logger:    logger.For(logger.ComponentSystemd),
	}
}

// WithSystemctl overrides the systemctl binary.
func (s *DefaultService) WithSystemctl(path string) *DefaultService {
	s.systemctl = path
	return s
}

func (s *DefaultService) run(ctx context.Context, action string, args ...string) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveApplyTime(metrics.ComponentSystemd, action, time.Since(start))
	}()

	s.logger.Debugf("Running %s %s", s.systemctl, strings.Join(args, " "))
	return s.fsService.ExecuteCommand(ctx, s.systemctl, args...)
}

// DaemonReload runs systemctl daemon-reload.
func (s *DefaultService) DaemonReload(ctx context.Context) error {
	output, err := s.run(ctx, "daemon-reload", "daemon-reload")
	if err != nil {
		return fmt.Errorf("failed to reload systemd daemon: %w, output: %s", err, string(output))
	}
	return nil
}

// query runs a systemctl query verb. systemctl exits non-zero for a negative
// answer but still prints the unit state, so only a silent failure is an error.
func (s *DefaultService) query(ctx context.Context, verb, unit, positive string) (bool, error) {
	output, err := s.run(ctx, verb, verb, unit)
	state := strings.TrimSpace(string(output))
	if err != nil {
		if state == "" {
			return false, fmt.Errorf("%w: %s %s: %w", ErrSystemctl, verb, unit, err)
		}
		return false, nil
	}
	return state == positive, nil
}

// IsEnabled runs systemctl is-enabled.
func (s *DefaultService) IsEnabled(ctx context.Context, unit string) (bool, error) {
	return s.query(ctx, "is-enabled", unit, "enabled")
}

// IsActive runs systemctl is-active.
func (s *DefaultService) IsActive(ctx context.Context, unit string) (bool, error) {
	return s.query(ctx, "is-active", unit, "active")
}

// Enable runs systemctl enable.
func (s *DefaultService) Enable(ctx context.Context, unit string) error {
	output, err := s.run(ctx, "enable", "enable", unit)
	if err != nil {
		return fmt.Errorf("failed to enable %s: %w, output: %s", unit, err, string(output))
	}
	s.logger.Debugf("Enabled %s", unit)
	return nil
}

// Start runs systemctl start.
func (s *DefaultService) Start(ctx context.Context, unit string) error {
	output, err := s.run(ctx, "start", "start", unit)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w, output: %s", unit, err, string(output))
	}
	s.logger.Debugf("Started %s", unit)
	return nil
}

// Restart runs systemctl restart.
func (s *DefaultService) Restart(ctx context.Context, unit string) error {
	output, err := s.run(ctx, "restart", "restart", unit)
	if err != nil {
		return fmt.Errorf("failed to restart %s: %w, output: %s", unit, err, string(output))
	}
	s.logger.Debugf("Restarted %s", unit)
	return nil
}
