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
	"sync"
)

// MockService is a mock implementation of the systemd Service interface for testing
type MockService struct {
	mu sync.Mutex

	// Calls records every invocation in order, e.g. "restart druid-broker".
	Calls []string

	Enabled map[string]bool
	Active  map[string]bool

	DaemonReloadError error
	EnableError       error
	StartError        error
	RestartError      error
}

// NewMockService creates a mock where every unit is disabled and stopped.
func NewMockService() *MockService {
	return &MockService{
		Enabled: make(map[string]bool),
		Active:  make(map[string]bool),
	}
}

func (m *MockService) record(call string) {
	m.Calls = append(m.Calls, call)
}

// CallLog returns a copy of the recorded calls.
func (m *MockService) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

func (m *MockService) DaemonReload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("daemon-reload")
	return m.DaemonReloadError
}

func (m *MockService) IsEnabled(ctx context.Context, unit string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Enabled[unit], nil
}

func (m *MockService) Enable(ctx context.Context, unit string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("enable " + unit)
	if m.EnableError != nil {
		return m.EnableError
	}
	m.Enabled[unit] = true
	return nil
}

func (m *MockService) IsActive(ctx context.Context, unit string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Active[unit], nil
}

func (m *MockService) Start(ctx context.Context, unit string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("start " + unit)
	if m.StartError != nil {
		return m.StartError
	}
	m.Active[unit] = true
	return nil
}

func (m *MockService) Restart(ctx context.Context, unit string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("restart " + unit)
	if m.RestartError != nil {
		return m.RestartError
	}
	m.Active[unit] = true
	return nil
}
