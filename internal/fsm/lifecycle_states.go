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

package fsm

// Resource states. Every resource starts pending and ends a run in one of the
// terminal states.
const (
	// StatePending indicates the resource has not been looked at in this run
	StatePending = "pending"
	// StateChecking indicates the resource's current state is being inspected
	StateChecking = "checking"
	// StateChanging indicates the resource is being brought to its desired state
	StateChanging = "changing"

	// StateInSync indicates nothing had to change
	StateInSync = "in_sync"
	// StateChanged indicates the resource was modified
	StateChanged = "changed"
	// StateFailed indicates inspecting or changing the resource failed
	StateFailed = "failed"
	// StateSkipped indicates a dependency failed, so the resource was not touched
	StateSkipped = "skipped"
	// StateIdle indicates a refresh-only resource that nothing triggered
	StateIdle = "idle"
)

// Events
const (
	EventCheck     = "check"
	EventInSync    = "in_sync"
	EventDrift     = "drift"
	EventApplied   = "applied"
	EventFail      = "fail"
	EventSkip      = "skip"
	EventIdle      = "idle"
	EventRefreshed = "refreshed"
)

// IsTerminalState reports whether a run is finished with a resource.
func IsTerminalState(state string) bool {
	switch state {
	case StateInSync,
		StateChanged,
		StateFailed,
		StateSkipped,
		StateIdle:
		return true
	default:
		return false
	}
}
