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

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/billyperformance/druid/pkg/sentry"
)

// minRemainingTime is the time a context must have left for a transition to start.
const minRemainingTime = 5 * time.Millisecond

// ResourceFSM tracks the convergence of one resource through a single run.
type ResourceFSM struct {
	id string

	// mu is a mutex for protecting concurrent access to fields
	mu sync.RWMutex

	fsm *fsm.FSM

	// Registered "enter_state" callbacks, purely for logging or minor side-effects.
	callbacks map[string]fsm.Callback

	lastErr error
	logger  *zap.SugaredLogger
}

// NewResourceFSM creates a state machine in StatePending.
func NewResourceFSM(id string, logger *zap.SugaredLogger) *ResourceFSM {
	r := &ResourceFSM{
		id:        id,
		callbacks: make(map[string]fsm.Callback),
		logger:    logger,
	}

	events := []fsm.EventDesc{
		{Name: EventCheck, Src: []string{StatePending}, Dst: StateChecking},
		{Name: EventInSync, Src: []string{StateChecking}, Dst: StateInSync},
		{Name: EventDrift, Src: []string{StateChecking}, Dst: StateChanging},
		{Name: EventApplied, Src: []string{StateChanging}, Dst: StateChanged},
		{Name: EventFail, Src: []string{StateChecking, StateChanging}, Dst: StateFailed},
		{Name: EventSkip, Src: []string{StatePending}, Dst: StateSkipped},
		{Name: EventIdle, Src: []string{StatePending}, Dst: StateIdle},
		// a refresh bypasses the check
		{Name: EventRefreshed, Src: []string{StatePending}, Dst: StateChanging},
	}

	r.fsm = fsm.NewFSM(
		StatePending,
		fsm.Events(events),
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				r.logger.Debugf("Resource %s: %s -> %s", r.id, e.Src, e.Dst)
				if cb, ok := r.callbacks["enter_"+e.Dst]; ok {
					cb(ctx, e)
				}
			},
		},
	)

	return r
}

// AddCallback adds a callback for a given event name, e.g. "enter_changed".
func (r *ResourceFSM) AddCallback(eventName string, callback fsm.Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[eventName] = callback
}

// GetCurrentFSMState returns the current state of the FSM
func (r *ResourceFSM) GetCurrentFSMState() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fsm.Current()
}

// GetError returns the error that moved the resource to StateFailed.
func (r *ResourceFSM) GetError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// SendEvent sends an event to the FSM.
//
// A transition is refused when the context is done or about to expire, since
// an interrupted transition leaves the FSM unable to accept further events.
func (r *ResourceFSM) SendEvent(ctx context.Context, eventName string, args ...interface{}) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) < minRemainingTime {
			return fmt.Errorf("context deadline exceeded")
		}
	}
	return r.fsm.Event(ctx, eventName, args...)
}

// fail records err and moves to StateFailed.
func (r *ResourceFSM) fail(ctx context.Context, step string, err error) error {
	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()

	sentry.ReportStepError(r.logger, r.id, step, err)
	// the run context may already be gone, the failure must still be recorded
	if evErr := r.fsm.Event(context.WithoutCancel(ctx), EventFail); evErr != nil {
		return fmt.Errorf("failed to record failure of %s: %w", r.id, evErr)
	}
	return err
}

// Converge walks the resource to a terminal state. With refresh set, the
// resource is applied without checking first. It returns whether the
// resource changed.
func (r *ResourceFSM) Converge(ctx context.Context, actions ResourceActions, refresh bool) (bool, error) {
	if refresh {
		if err := r.SendEvent(ctx, EventRefreshed); err != nil {
			return false, err
		}
	} else {
		if err := r.SendEvent(ctx, EventCheck); err != nil {
			return false, err
		}
		inSync, err := actions.Check(ctx)
		if err != nil {
			return false, r.fail(ctx, "check", err)
		}
		if inSync {
			return false, r.SendEvent(ctx, EventInSync)
		}
		if err := r.SendEvent(ctx, EventDrift); err != nil {
			return false, err
		}
	}

	if err := actions.Apply(ctx); err != nil {
		return false, r.fail(ctx, "apply", err)
	}
	if err := r.SendEvent(ctx, EventApplied); err != nil {
		return false, err
	}
	return true, nil
}

// Skip marks the resource as not attempted because a dependency failed.
func (r *ResourceFSM) Skip(ctx context.Context) error {
	return r.fsm.Event(context.WithoutCancel(ctx), EventSkip)
}

// Idle marks a refresh-only resource that nothing triggered.
func (r *ResourceFSM) Idle(ctx context.Context) error {
	return r.SendEvent(ctx, EventIdle)
}
