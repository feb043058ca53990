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

// Package catalog converges a host towards a declared set of resources.
//
// Resources are connected by two kinds of edges. A "requires" edge orders two
// resources and prevents the dependent from being touched when its dependency
// failed. A "subscribes" edge additionally refreshes the dependent whenever
// the dependency changed in the same run. Refresh-only resources do nothing
// unless one of their subscriptions changed, so any number of upstream changes
// trigger them at most once per run.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/billyperformance/druid/internal/fsm"
	"github.com/billyperformance/druid/pkg/logger"
	"github.com/billyperformance/druid/pkg/metrics"
)

// Resource is a piece of host state the catalog can converge.
type Resource interface {
	fsm.ResourceActions

	// Ref uniquely names the resource, e.g. "File[/etc/druid]".
	Ref() string
	// Kind is the resource type, e.g. "File".
	Kind() string
}

// RefreshOnly is implemented by resources that only act when triggered.
type RefreshOnly interface {
	RefreshOnly() bool
}

// Refreshable is implemented by resources with a dedicated action for a
// triggered refresh, such as restarting a service.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// Option configures the edges of a resource being added.
type Option func(*node)

// Requires orders the resource after refs.
func Requires(refs ...string) Option {
	return func(n *node) {
		n.requires = append(n.requires, refs...)
	}
}

// Subscribes orders the resource after refs and refreshes it when any of
// them changed.
func Subscribes(refs ...string) Option {
	return func(n *node) {
		n.subscribes = append(n.subscribes, refs...)
	}
}

type node struct {
	res        Resource
	requires   []string
	subscribes []string
	seq        int
}

func (n *node) deps() []string {
	out := make([]string, 0, len(n.requires)+len(n.subscribes))
	out = append(out, n.requires...)
	return append(out, n.subscribes...)
}

// Catalog is an ordered set of resources and the edges between them.
type Catalog struct {
	name   string
	nodes  []*node
	index  map[string]*node
	logger *zap.SugaredLogger
}

// New creates an empty catalog.
func New(name string) *Catalog {
	return &Catalog{
		name:   name,
		index:  make(map[string]*node),
		logger: logger.For(logger.ComponentCatalog),
	}
}

// Name returns the catalog name.
func (c *Catalog) Name() string {
	return c.name
}

// Add adds a resource. Refs must be unique within a catalog.
func (c *Catalog) Add(res Resource, opts ...Option) error {
	ref := res.Ref()
	if _, exists := c.index[ref]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateResource, ref)
	}
	n := &node{res: res, seq: len(c.nodes)}
	for _, opt := range opts {
		opt(n)
	}
	c.nodes = append(c.nodes, n)
	c.index[ref] = n
	return nil
}

// Has reports whether a resource with the given ref was added.
func (c *Catalog) Has(ref string) bool {
	_, ok := c.index[ref]
	return ok
}

// Refs returns every resource ref in insertion order.
func (c *Catalog) Refs() []string {
	out := make([]string, len(c.nodes))
	for i, n := range c.nodes {
		out[i] = n.res.Ref()
	}
	return out
}

// Order returns the refs in the order Apply visits them.
func (c *Catalog) Order() ([]string, error) {
	ordered, err := c.sort()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ordered))
	for i, n := range ordered {
		out[i] = n.res.Ref()
	}
	return out, nil
}

// sort orders nodes so every dependency precedes its dependents. Among
// nodes that are ready at the same time, insertion order wins.
func (c *Catalog) sort() ([]*node, error) {
	indegree := make(map[*node]int, len(c.nodes))
	dependents := make(map[*node][]*node, len(c.nodes))
	for _, n := range c.nodes {
		for _, ref := range n.deps() {
			dep, ok := c.index[ref]
			if !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownResource, n.res.Ref(), ref)
			}
			indegree[n]++
			dependents[dep] = append(dependents[dep], n)
		}
	}

	var ready []*node
	for _, n := range c.nodes {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	ordered := make([]*node, 0, len(c.nodes))
	for len(ready) > 0 {
		next := 0
		for i, n := range ready {
			if n.seq < ready[next].seq {
				next = i
			}
		}
		n := ready[next]
		ready = append(ready[:next], ready[next+1:]...)
		ordered = append(ordered, n)
		for _, d := range dependents[n] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(ordered) != len(c.nodes) {
		return nil, fmt.Errorf("%w in catalog %s", ErrDependencyCycle, c.name)
	}
	return ordered, nil
}

// Apply converges every resource once. Failed resources do not stop the run;
// only their dependents are skipped. The returned error is only set when
// the catalog itself is malformed or the context ended; resource failures
// are reported through Report.Err.
func (c *Catalog) Apply(ctx context.Context) (*Report, error) {
	start := time.Now()
	ordered, err := c.sort()
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString(), Catalog: c.name}
	log := c.logger.With("run", report.RunID, "catalog", c.name)
	log.Debugf("Applying %d resources", len(ordered))

	states := make(map[string]string, len(ordered))
	changed := make(map[string]bool, len(ordered))

	for _, n := range ordered {
		ref := n.res.Ref()
		machine := fsm.NewResourceFSM(ref, log)

		result, err := c.converge(ctx, n, machine, states, changed)
		if err != nil && !errors.Is(err, errResourceFailed) {
			return report, err
		}

		states[ref] = machine.GetCurrentFSMState()
		changed[ref] = states[ref] == fsm.StateChanged
		result.State = states[ref]
		report.Results = append(report.Results, result)

		metrics.RecordResourceState(n.res.Kind(), result.State)
		switch result.State {
		case fsm.StateChanged:
			log.Infof("%s changed", ref)
		case fsm.StateSkipped:
			log.Warnf("%s skipped: %s", ref, result.Err)
		}
	}

	report.Duration = time.Since(start)
	metrics.ObserveApplyTime(metrics.ComponentCatalog, c.name, report.Duration)
	return report, nil
}

var errResourceFailed = errors.New("resource failed")

func (c *Catalog) converge(ctx context.Context, n *node, machine *fsm.ResourceFSM, states map[string]string, changed map[string]bool) (Result, error) {
	res := n.res
	result := Result{Ref: res.Ref(), Kind: res.Kind()}

	for _, dep := range n.deps() {
		if s := states[dep]; s == fsm.StateFailed || s == fsm.StateSkipped {
			result.Err = &DependencyError{Ref: res.Ref(), Dependency: dep}
			return result, machine.Skip(ctx)
		}
	}

	triggered := false
	for _, dep := range n.subscribes {
		if changed[dep] {
			triggered = true
			break
		}
	}

	var err error
	switch {
	case triggered:
		var actions fsm.ResourceActions = res
		if r, ok := res.(Refreshable); ok {
			actions = refreshActions{r}
		}
		_, err = machine.Converge(ctx, actions, true)
	case isRefreshOnly(res):
		err = machine.Idle(ctx)
	default:
		_, err = machine.Converge(ctx, res, false)
	}

	if err != nil {
		if machine.GetCurrentFSMState() == fsm.StateFailed {
			result.Err = machine.GetError()
			return result, errResourceFailed
		}
		return result, fmt.Errorf("failed to converge %s: %w", res.Ref(), err)
	}
	return result, nil
}

func isRefreshOnly(res Resource) bool {
	r, ok := res.(RefreshOnly)
	return ok && r.RefreshOnly()
}

type refreshActions struct {
	r Refreshable
}

func (refreshActions) Check(context.Context) (bool, error) { return false, nil }
func (a refreshActions) Apply(ctx context.Context) error   { return a.r.Refresh(ctx) }
