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
	"bytes"

	"github.com/goccy/go-json"
)

// Field is one key/value pair of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is a nested parameter value (a hash in the parameter file) that remembers
// the order its keys were supplied in. Rendering relies on that order.
type Object struct {
	Fields []Field
}

// NewObject builds an Object from alternating key/value arguments.
func NewObject(kv ...any) *Object {
	o := &Object{}
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		o.Set(key, kv[i+1])
	}
	return o
}

// Set adds or replaces a key, keeping the original position of existing keys.
func (o *Object) Set(key string, value any) *Object {
	for i := range o.Fields {
		if o.Fields[i].Key == key {
			o.Fields[i].Value = value
			return o
		}
	}
	o.Fields = append(o.Fields, Field{Key: key, Value: value})
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	for _, f := range o.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.Fields)
}

// MarshalJSON writes the object as compact JSON with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalScalar(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := MarshalCompact(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalCompact encodes a parameter value as compact JSON without HTML escaping.
// Nested Objects and lists of Objects keep their key order.
func MarshalCompact(v any) ([]byte, error) {
	switch t := v.(type) {
	case *Object:
		return t.MarshalJSON()
	case []*Object:
		items := make([]any, len(t))
		for i := range t {
			items[i] = t[i]
		}
		return MarshalCompact(items)
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := MarshalCompact(item)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return marshalScalar(v)
	}
}

// marshalScalar encodes v with '&', '<' and '>' left as they are.
func marshalScalar(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
