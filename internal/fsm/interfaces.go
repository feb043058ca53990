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

import "context"

// ResourceActions is what a concrete resource provides to be converged.
type ResourceActions interface {
	// Check inspects the host and reports whether the resource already has
	// its desired state
	Check(ctx context.Context) (inSync bool, err error)

	// Apply brings the resource to its desired state. It is only called
	// after Check reported drift, or when a refresh was triggered
	Apply(ctx context.Context) error
}
