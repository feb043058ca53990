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
	"math"
	"reflect"
	"sort"
)

// paramTag names the struct tag that maps a field to its parameter.
const paramTag = "param"

var (
	stringType      = reflect.TypeOf("")
	int64Type       = reflect.TypeOf(int64(0))
	boolType        = reflect.TypeOf(false)
	stringSliceType = reflect.TypeOf([]string(nil))
	int64SliceType  = reflect.TypeOf([]int64(nil))
	objectPtrType   = reflect.TypeOf((*Object)(nil))
	objectSliceType = reflect.TypeOf([]*Object(nil))
)

// bind copies params into the tagged fields of target, which must be a pointer to
// a struct. Pointer fields stay nil when the parameter is absent or undef. Every
// value that cannot be converted yields a TypeMismatchError.
func bind(params Params, target any) ValidationErrors {
	var errs ValidationErrors
	walkParamFields(reflect.ValueOf(target).Elem(), func(name string, field reflect.Value) {
		raw, ok := params[name]
		if !ok || raw == nil {
			return
		}
		if err := assign(name, field, raw); err != nil {
			errs = append(errs, err)
		}
	})
	return errs
}

// paramNames returns every parameter name target declares.
func paramNames(target any) map[string]struct{} {
	names := map[string]struct{}{}
	walkParamFields(reflect.ValueOf(target).Elem(), func(name string, _ reflect.Value) {
		names[name] = struct{}{}
	})
	return names
}

// unknownParams reports every key in params that target does not declare.
func unknownParams(params Params, target any, scope string) ValidationErrors {
	known := paramNames(target)
	var unknown []string
	for k := range params {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	var errs ValidationErrors
	for _, k := range unknown {
		errs = append(errs, &UnknownParameterError{Param: k, Scope: scope})
	}
	return errs
}

func walkParamFields(v reflect.Value, fn func(name string, field reflect.Value)) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := v.Field(i)
		if name := sf.Tag.Get(paramTag); name != "" {
			fn(name, fv)
			continue
		}
		if sf.Type.Kind() == reflect.Struct && sf.IsExported() {
			walkParamFields(fv, fn)
		}
	}
}

func assign(name string, field reflect.Value, raw any) error {
	ft := field.Type()
	if ft.Kind() == reflect.Ptr && ft != objectPtrType {
		elem := reflect.New(ft.Elem())
		if err := assign(name, elem.Elem(), raw); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	switch ft {
	case stringType:
		s, ok := raw.(string)
		if !ok {
			return mismatch(name, raw, "a string")
		}
		field.SetString(s)
	case int64Type:
		n, ok := asInt64(raw)
		if !ok {
			return mismatch(name, raw, "an integer")
		}
		field.SetInt(n)
	case boolType:
		b, ok := raw.(bool)
		if !ok {
			return mismatch(name, raw, "a boolean")
		}
		field.SetBool(b)
	case stringSliceType:
		items, ok := asList(raw)
		if !ok {
			return mismatch(name, raw, "an array of strings")
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return mismatch(name, raw, "an array of strings")
			}
			out = append(out, s)
		}
		field.Set(reflect.ValueOf(out))
	case int64SliceType:
		items, ok := asList(raw)
		if !ok {
			return mismatch(name, raw, "an array of integers")
		}
		out := make([]int64, 0, len(items))
		for _, item := range items {
			n, ok := asInt64(item)
			if !ok {
				return mismatch(name, raw, "an array of integers")
			}
			out = append(out, n)
		}
		field.Set(reflect.ValueOf(out))
	case objectPtrType:
		obj, ok := asObject(raw)
		if !ok {
			return mismatch(name, raw, "a hash")
		}
		field.Set(reflect.ValueOf(obj))
	case objectSliceType:
		items, ok := asList(raw)
		if !ok {
			return mismatch(name, raw, "an array of hashes")
		}
		out := make([]*Object, 0, len(items))
		for _, item := range items {
			obj, ok := asObject(item)
			if !ok {
				return mismatch(name, raw, "an array of hashes")
			}
			out = append(out, obj)
		}
		field.Set(reflect.ValueOf(out))
	default:
		return mismatch(name, raw, "a supported value")
	}
	return nil
}

func mismatch(name string, raw any, expected string) error {
	return &TypeMismatchError{Param: name, Value: raw, Expected: expected}
}

func asInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), n <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n), true
		}
	}
	return 0, false
}

func asList(raw any) ([]any, bool) {
	switch l := raw.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case []int:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case []int64:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case []*Object:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	}
	return nil, false
}

// asObject accepts an Object or a plain map. Plain maps have no order, so their
// keys are sorted.
func asObject(raw any) (*Object, bool) {
	switch o := raw.(type) {
	case *Object:
		if o == nil {
			return nil, false
		}
		return o, true
	case map[string]any:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := &Object{}
		for _, k := range keys {
			obj.Set(k, o[k])
		}
		return obj, true
	case map[string]string:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := &Object{}
		for _, k := range keys {
			obj.Set(k, o[k])
		}
		return obj, true
	}
	return nil, false
}
