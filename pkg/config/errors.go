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
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TypeMismatchError is returned when a parameter value has the wrong type.
type TypeMismatchError struct {
	Param    string
	Value    any
	Expected string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("parameter '%s': %s is not %s", e.Param, FormatValue(e.Value), e.Expected)
}

// EnumViolationError is returned when a value is outside the allowed set.
type EnumViolationError struct {
	Param   string
	Value   any
	Allowed []string
}

func (e *EnumViolationError) Error() string {
	quoted := make([]string, len(e.Allowed))
	for i, a := range e.Allowed {
		quoted[i] = strconv.Quote(a)
	}
	return fmt.Sprintf("parameter '%s': %s is not one of [%s]", e.Param, FormatValue(e.Value), strings.Join(quoted, ", "))
}

// CompatibilityError is returned when two parameters are valid on their own but
// not together, such as a package namespace that does not fit the install version.
type CompatibilityError struct {
	Param   string
	Value   any
	Pattern string
	Reason  string
}

func (e *CompatibilityError) Error() string {
	msg := fmt.Sprintf(`parameter '%s': %s does not match ["%s"]`, e.Param, FormatValue(e.Value), e.Pattern)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// RequiredFieldMissingError is returned when a mandatory parameter has no value.
type RequiredFieldMissingError struct {
	Param   string
	Context string
}

func (e *RequiredFieldMissingError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s expects a value for parameter '%s'", e.Context, e.Param)
	}
	return fmt.Sprintf("expects a value for parameter '%s'", e.Param)
}

// UnknownParameterError is returned for parameter names nothing consumes.
type UnknownParameterError struct {
	Param string
	Scope string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("%s has no parameter named '%s'", e.Scope, e.Param)
}

// ConstraintError is returned when a value has the right type but is out of range.
type ConstraintError struct {
	Param      string
	Value      any
	Constraint string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("parameter '%s': %s violates constraint '%s'", e.Param, FormatValue(e.Value), e.Constraint)
}

// ValidationErrors aggregates every problem found in one validation pass.
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	switch len(v) {
	case 0:
		return "no validation errors"
	case 1:
		return v[0].Error()
	}
	lines := make([]string, len(v))
	for i, err := range v {
		lines[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n  %s", len(v), strings.Join(lines, "\n  "))
}

func (v ValidationErrors) Unwrap() []error {
	return v
}

// orNil keeps a typed empty ValidationErrors from turning into a non-nil error.
func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	sort.SliceStable(v, func(i, j int) bool { return paramOf(v[i]) < paramOf(v[j]) })
	return v
}

func paramOf(err error) string {
	var (
		tm *TypeMismatchError
		ev *EnumViolationError
		ce *CompatibilityError
		rf *RequiredFieldMissingError
		up *UnknownParameterError
		cn *ConstraintError
	)
	switch {
	case errors.As(err, &tm):
		return tm.Param
	case errors.As(err, &ev):
		return ev.Param
	case errors.As(err, &ce):
		return ce.Param
	case errors.As(err, &rf):
		return rf.Param
	case errors.As(err, &up):
		return up.Param
	case errors.As(err, &cn):
		return cn.Param
	}
	return ""
}

// FormatValue renders a parameter value for error messages.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "undef"
	case string:
		return strconv.Quote(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = FormatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = strconv.Quote(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Object:
		if t == nil {
			return "{}"
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = fmt.Sprintf("%q => %s", f.Key, FormatValue(f.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", t)
	}
}
