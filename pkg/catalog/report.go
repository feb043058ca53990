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

package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/billyperformance/druid/internal/fsm"
)

var (
	// ErrDuplicateResource is returned when two resources share a ref.
	ErrDuplicateResource = errors.New("duplicate resource")
	// ErrUnknownResource is returned when an edge points at a ref that was never added.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrDependencyCycle is returned when the edges form a cycle.
	ErrDependencyCycle = errors.New("dependency cycle")
)

// DependencyError explains why a resource was skipped.
type DependencyError struct {
	Ref        string
	Dependency string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s skipped because dependency %s did not converge", e.Ref, e.Dependency)
}

// Result is the outcome of one resource in a run.
type Result struct {
	Ref   string
	Kind  string
	State string
	Err   error
}

// Report is the outcome of one Apply.
type Report struct {
	RunID    string
	Catalog  string
	Results  []Result
	Duration time.Duration
}

// Result returns the outcome of the resource with the given ref.
func (r *Report) Result(ref string) (Result, bool) {
	for _, res := range r.Results {
		if res.Ref == ref {
			return res, true
		}
	}
	return Result{}, false
}

// State returns the final state of a resource, or "" if it was not part of the run.
func (r *Report) State(ref string) string {
	res, _ := r.Result(ref)
	return res.State
}

// Changed returns the refs that changed, in the order they were applied.
func (r *Report) Changed() []string {
	return r.refsIn(fsm.StateChanged)
}

// Failed returns the results of resources that failed.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.State == fsm.StateFailed {
			out = append(out, res)
		}
	}
	return out
}

// Skipped returns the refs skipped because of a failed dependency.
func (r *Report) Skipped() []string {
	return r.refsIn(fsm.StateSkipped)
}

func (r *Report) refsIn(state string) []string {
	var out []string
	for _, res := range r.Results {
		if res.State == state {
			out = append(out, res.Ref)
		}
	}
	return out
}

// Err joins every resource failure, or returns nil when all converged.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", res.Ref, res.Err))
	}
	return errors.Join(errs...)
}

// String renders a one line per resource summary.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s) in %s\n", r.RunID, r.Catalog, r.Duration.Round(time.Millisecond))
	for _, res := range r.Results {
		fmt.Fprintf(&b, "  %-9s %s", res.State, res.Ref)
		if res.Err != nil {
			fmt.Fprintf(&b, ": %v", res.Err)
		}
		b.WriteString("\n")
	}
	return b.String()
}
