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

package config

import (
	"fmt"
	"os"

	"github.com/tiendc/go-deepcopy"
	"gopkg.in/yaml.v3"
)

// Params is an unvalidated parameter map, keyed by parameter name. Values are
// string, bool, int64, float64, []any, *Object or nil.
type Params map[string]any

// Clone returns a deep copy of the parameter map.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	var clone Params
	if err := deepcopy.Copy(&clone, &p); err != nil {
		// deepcopy only fails on unsupported kinds, fall back to a shallow copy
		clone = make(Params, len(p))
		for k, v := range p {
			clone[k] = v
		}
	}
	return clone
}

// Merge overlays the overrides on a copy of base. Later overrides win. An override
// key with a nil value keeps the base value.
func Merge(base Params, overrides ...Params) Params {
	out := base.Clone()
	for _, o := range overrides {
		for k, v := range o {
			if v == nil {
				continue
			}
			out[k] = v
		}
	}
	return out
}

// ParamsFile is the on-disk parameter file: cluster wide parameters under "druid"
// and per role parameters under "roles".
type ParamsFile struct {
	Druid Params
	Roles map[string]Params
	// RoleOrder lists the role keys in file order.
	RoleOrder []string
}

// LoadParamsFile reads and parses a parameter file.
func LoadParamsFile(path string) (*ParamsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file %s: %w", path, err)
	}
	file, err := ParseParamsFile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse parameter file %s: %w", path, err)
	}
	return file, nil
}

// ParseParamsFile parses parameter file content.
func ParseParamsFile(data []byte) (*ParamsFile, error) {
	root, err := parseObject(data)
	if err != nil {
		return nil, err
	}

	file := &ParamsFile{Druid: Params{}, Roles: map[string]Params{}}
	for _, f := range root.Fields {
		switch f.Key {
		case "druid":
			obj, ok := f.Value.(*Object)
			if !ok && f.Value != nil {
				return nil, fmt.Errorf("section 'druid' must be a mapping")
			}
			file.Druid = objectToParams(obj)
		case "roles":
			roles, ok := f.Value.(*Object)
			if !ok && f.Value != nil {
				return nil, fmt.Errorf("section 'roles' must be a mapping")
			}
			if roles == nil {
				continue
			}
			for _, r := range roles.Fields {
				obj, ok := r.Value.(*Object)
				if !ok && r.Value != nil {
					return nil, fmt.Errorf("role '%s' must be a mapping", r.Key)
				}
				file.Roles[r.Key] = objectToParams(obj)
				file.RoleOrder = append(file.RoleOrder, r.Key)
			}
		default:
			return nil, fmt.Errorf("unknown section '%s', expected 'druid' or 'roles'", f.Key)
		}
	}
	return file, nil
}

// ParseParams parses a flat YAML mapping of parameters.
func ParseParams(data []byte) (Params, error) {
	obj, err := parseObject(data)
	if err != nil {
		return nil, err
	}
	return objectToParams(obj), nil
}

func parseObject(data []byte) (*Object, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &Object{}, nil
	}
	value, err := nodeValue(doc.Content[0])
	if err != nil {
		return nil, err
	}
	if value == nil {
		return &Object{}, nil
	}
	obj, ok := value.(*Object)
	if !ok {
		return nil, fmt.Errorf("line %d: expected a mapping at the top level", doc.Content[0].Line)
	}
	return obj, nil
}

func objectToParams(obj *Object) Params {
	p := Params{}
	if obj == nil {
		return p
	}
	for _, f := range obj.Fields {
		p[f.Key] = f.Value
	}
	return p
}

// nodeValue walks the node tree instead of decoding into map[string]any so that
// nested mappings keep their key order.
func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		obj := &Object{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			value, err := nodeValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, value)
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			value, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case yaml.ScalarNode:
		return scalarValue(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func scalarValue(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return f, nil
	default:
		return n.Value, nil
	}
}
