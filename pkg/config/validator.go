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
	"reflect"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"

	"github.com/billyperformance/druid/pkg/constants"
	"github.com/billyperformance/druid/pkg/logger"
)

var (
	legacyNamespacePattern = regexp.MustCompile(`^io\.druid$`)
	modernNamespacePattern = regexp.MustCompile(`^org\.apache\.druid$`)
	modernNamespaceMin     = semver.MustParse(constants.ModernNamespaceMinVersion)

	structValidator = newStructValidator()
)

func newStructValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get(paramTag); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks the cluster wide parameters, merged over DefaultInstallParams,
// and returns the model. On failure the error is a ValidationErrors listing every
// violation found.
func Validate(raw Params) (*Model, error) {
	log := logger.For(logger.ComponentValidator)

	params := Merge(DefaultInstallParams(), raw)
	var p installParams

	errs := unknownParams(params, &p, "druid")
	typeErrs := bind(params, &p)
	errs = append(errs, typeErrs...)
	errs = append(errs, checkStruct(&p, typeErrs)...)
	if len(errs) > 0 {
		log.Debugw("Cluster parameters rejected", "errors", len(errs))
		return nil, errs.orNil()
	}

	if err := CheckNamespace(p.Version, p.PackageName); err != nil {
		return nil, ValidationErrors{err}.orNil()
	}

	model, variantErrs := p.toModel()
	if len(variantErrs) > 0 {
		return nil, variantErrs.orNil()
	}
	log.Debugw("Cluster parameters validated", "version", model.InstallVersion, "namespace", model.PackageNamespace)
	return model, nil
}

// ValidateRole checks the parameters of one role, merged over the role defaults
// for the given host.
func ValidateRole(role Role, facts Facts, raw Params) (*RoleConfig, error) {
	log := logger.For(logger.ComponentValidator)

	defaults, err := DefaultRoleParams(role, facts)
	if err != nil {
		return nil, err
	}
	params := Merge(defaults, raw)

	var (
		node     NodeConfig
		settings any
		overlord overlordParams
	)
	switch role {
	case RoleBroker:
		settings = &BrokerConfig{}
	case RoleCoordinator:
		settings = &CoordinatorConfig{}
	case RoleHistorical:
		settings = &HistoricalConfig{}
	case RoleOverlord:
		settings = &overlord
	case RoleMiddleManager:
		settings = &MiddleManagerConfig{}
	case RoleRouter:
		settings = &RouterConfig{}
	}
	scope := string(role)
	var errs ValidationErrors
	errs = append(errs, unknownRoleParams(params, scope, &node, settings)...)
	typeErrs := append(bind(params, &node), bind(params, settings)...)
	errs = append(errs, typeErrs...)
	errs = append(errs, checkStruct(&node, typeErrs)...)
	errs = append(errs, checkStruct(settings, typeErrs)...)

	if b, ok := settings.(*BrokerConfig); ok && b.SelectTier == "custom" && len(b.SelectTierCustomPriorities) == 0 {
		errs = append(errs, &RequiredFieldMissingError{Param: "select_tier_custom_priorities", Context: "custom tier selection"})
	}
	if len(errs) > 0 {
		log.Debugw("Role parameters rejected", "role", role, "errors", len(errs))
		return nil, errs.orNil()
	}

	rc := &RoleConfig{Role: role, Node: node}
	if role == RoleOverlord {
		cfg := overlord.toConfig()
		rc.Settings = &cfg
	} else {
		rc.Settings = settings.(RoleSettings)
	}
	log.Debugw("Role parameters validated", "role", role, "host", node.Host)
	return rc, nil
}

// Bind fills target from params and checks its validate tags. Unknown
// parameters are reported against scope.
func Bind(params Params, target any, scope string) error {
	errs := unknownParams(params, target, scope)
	typeErrs := bind(params, target)
	errs = append(errs, typeErrs...)
	errs = append(errs, checkStruct(target, typeErrs)...)
	return errs.orNil()
}

func unknownRoleParams(params Params, scope string, targets ...any) ValidationErrors {
	known := map[string]struct{}{}
	for _, t := range targets {
		for name := range paramNames(t) {
			known[name] = struct{}{}
		}
	}
	filtered := Params{}
	for k, v := range params {
		if _, ok := known[k]; !ok {
			filtered[k] = v
		}
	}
	return unknownParams(filtered, &struct{}{}, scope)
}

// CheckNamespace enforces the package namespace that matches the install version.
func CheckNamespace(version, namespace string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return &TypeMismatchError{Param: "version", Value: version, Expected: "a semantic version"}
	}
	if v.LessThan(modernNamespaceMin) {
		if !legacyNamespacePattern.MatchString(namespace) {
			return &CompatibilityError{
				Param:   "package_name",
				Value:   namespace,
				Pattern: legacyNamespacePattern.String(),
				Reason:  fmt.Sprintf("version %s is older than %s", version, constants.ModernNamespaceMinVersion),
			}
		}
		return nil
	}
	if !modernNamespacePattern.MatchString(namespace) {
		return &CompatibilityError{
			Param:   "package_name",
			Value:   namespace,
			Pattern: modernNamespacePattern.String(),
			Reason:  fmt.Sprintf("version %s is %s or newer", version, constants.ModernNamespaceMinVersion),
		}
	}
	return nil
}

// checkStruct runs the validate tags and translates the failures. Parameters that
// already failed to bind are skipped so each problem is reported once.
func checkStruct(target any, typeErrs ValidationErrors) ValidationErrors {
	err := structValidator.Struct(target)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{err}
	}

	skip := map[string]struct{}{}
	for _, te := range typeErrs {
		skip[paramOf(te)] = struct{}{}
	}

	var errs ValidationErrors
	for _, fe := range fieldErrs {
		param := fe.Field()
		if _, ok := skip[param]; ok {
			continue
		}
		value := derefValue(fe.Value())
		switch fe.Tag() {
		case "oneof":
			errs = append(errs, &EnumViolationError{Param: param, Value: value, Allowed: strings.Fields(fe.Param())})
		case "required":
			errs = append(errs, &RequiredFieldMissingError{Param: param})
		default:
			constraint := fe.Tag()
			if fe.Param() != "" {
				constraint += "=" + fe.Param()
			}
			errs = append(errs, &ConstraintError{Param: param, Value: value, Constraint: constraint})
		}
	}
	return errs
}

func derefValue(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
