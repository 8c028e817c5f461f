// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/solarisdb/lrukit/golibs/errors"
	"github.com/solarisdb/lrukit/golibs/logging"
)

type (
	// Enricher keeps a structure value of the type T and allows to build it up step by step:
	// load it from a file, apply non-zero values of another enricher and apply environment
	// variables.
	//
	// The following contract is applied to the type T:
	// - only the exported fields are updated
	// - a field may have the JSON annotation, the JSON name is an alias for the field, for
	//   example, FieldA int `json:"abc"` may be addressed either as "fieldA" or "abc"
	// - the fields names and aliases are case-insensitive
	Enricher[T any] interface {
		// LoadFromFile loads the structure's fields from the YAML or JSON file. The format is
		// defined by the file extension (.json, .yaml or .yml). An empty fileName is ignored.
		LoadFromFile(fileName string) error

		// ApplyOther applies all non-zero values of the other enricher to the current value.
		ApplyOther(other Enricher[T]) error

		// ApplyEnvVariables applies the environment variables which names start from the
		// prefix followed by sep. The rest of the name is the path to the field, separated
		// by sep. For example, for the prefix "LRUKIT" and the sep "_" the variable
		// LRUKIT_REDIS_ADDR addresses the field Addr of the field Redis. The values are
		// JSON values, strings may be not quoted.
		ApplyEnvVariables(prefix, sep string) error

		// ApplyKeyValues applies the key-value pairs the same way as ApplyEnvVariables does
		ApplyKeyValues(prefix, sep string, keyValues map[string]string)

		// Value returns the enricher current value
		Value() T
	}

	enricher[T any] struct {
		log logging.Logger
		val T
	}
)

// NewEnricher constructs new Enricher for the struct type T
func NewEnricher[T any](val T) Enricher[T] {
	tp := reflect.TypeOf(val)
	if tp == nil || tp.Kind() != reflect.Struct {
		panic(fmt.Sprintf("only structs are acceptable in the Enricher, but got %v", tp))
	}
	return newEnricher(val)
}

func newEnricher[T any](val T) *enricher[T] {
	e := new(enricher[T])
	e.val = val
	e.log = logging.NewLogger("config.enricher." + reflect.TypeOf(val).Name())
	return e
}

func (e *enricher[T]) LoadFromFile(fileName string) error {
	if fileName == "" {
		e.log.Debugf("LoadFromFile() is called with empty file name, do nothing")
		return nil
	}
	buf, err := os.ReadFile(fileName)
	if os.IsNotExist(err) {
		return fmt.Errorf("the file %s is not found: %w", fileName, errors.ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("could not read file %s: %w", fileName, err)
	}

	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".json":
		err = json.Unmarshal(buf, &e.val)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(buf, &e.val)
	default:
		return fmt.Errorf("unsupported config file extension %q, expected .json, .yaml or .yml: %w", ext, errors.ErrInvalid)
	}
	if err != nil {
		return fmt.Errorf("could not unmarshal file %s: %w", fileName, err)
	}
	e.log.Infof("the value is loaded from %s", fileName)
	return nil
}

func (e *enricher[T]) ApplyOther(other Enricher[T]) error {
	oe, ok := other.(*enricher[T])
	if !ok {
		return fmt.Errorf("unsupported Enricher implementation %T: %w", other, errors.ErrInvalid)
	}
	applyNonZero(reflect.ValueOf(&oe.val).Elem(), reflect.ValueOf(&e.val).Elem())
	return nil
}

func (e *enricher[T]) ApplyEnvVariables(prefix, sep string) error {
	env := make(map[string]string)
	for _, v := range os.Environ() {
		parts := strings.SplitN(v, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	e.ApplyKeyValues(prefix, sep, env)
	return nil
}

func (e *enricher[T]) ApplyKeyValues(prefix, sep string, keyValues map[string]string) {
	sep = strings.ToUpper(sep)
	pfx := ""
	if prefix != "" {
		pfx = strings.ToUpper(prefix) + sep
	}
	for key, value := range keyValues {
		key = strings.ToUpper(key)
		if !strings.HasPrefix(key, pfx) {
			continue
		}
		ok, err := assign(reflect.ValueOf(&e.val).Elem(), strings.Split(key[len(pfx):], sep), value)
		if err != nil {
			e.log.Warnf("could not apply %s=%q: %v", key, value, err)
			continue
		}
		e.log.Debugf("applying variable %s: %t", key, ok)
	}
}

func (e *enricher[T]) Value() T {
	return e.val
}

// applyNonZero copies all non-zero values from the other into the target. Structures
// are merged field by field, everything else is overwritten.
func applyNonZero(other, target reflect.Value) {
	if other.IsZero() {
		return
	}
	switch other.Kind() {
	case reflect.Ptr:
		if other.Elem().Kind() != reflect.Struct {
			target.Set(other)
			return
		}
		if target.IsNil() {
			target.Set(reflect.New(target.Type().Elem()))
		}
		applyNonZero(other.Elem(), target.Elem())
	case reflect.Struct:
		for i := 0; i < other.NumField(); i++ {
			if other.Type().Field(i).IsExported() {
				applyNonZero(other.Field(i), target.Field(i))
			}
		}
	default:
		target.Set(other)
	}
}

// assign sets the field addressed by the path to the value s. The nil pointers to
// structures met on the path are created only if the field is found. It returns
// false if the path doesn't address any field.
func assign(v reflect.Value, path []string, s string) (bool, error) {
	if len(path) == 0 {
		return true, setFromString(v, s)
	}
	if path[0] == "" {
		return false, nil
	}

	if v.Kind() == reflect.Ptr {
		if v.Type().Elem().Kind() != reflect.Struct {
			return false, nil
		}
		if !v.IsNil() {
			return assign(v.Elem(), path, s)
		}
		nv := reflect.New(v.Type().Elem())
		ok, err := assign(nv.Elem(), path, s)
		if ok && err == nil {
			v.Set(nv)
		}
		return ok, err
	}
	if v.Kind() != reflect.Struct {
		return false, nil
	}

	tp := v.Type()
	for i := 0; i < tp.NumField(); i++ {
		f := tp.Field(i)
		if !f.IsExported() {
			continue
		}
		if strings.ToUpper(f.Name) == path[0] || alias(f) == path[0] {
			return assign(v.Field(i), path[1:], s)
		}
	}
	return false, nil
}

func alias(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	return strings.ToUpper(name)
}

// setFromString assigns the JSON encoded s to the field. Strings may be not quoted.
func setFromString(field reflect.Value, s string) error {
	if s == "" {
		return nil
	}
	if isString(field.Type()) && !isQuoted(s) {
		s = strconv.Quote(s)
	}
	obj := reflect.New(field.Type())
	if err := json.Unmarshal([]byte(s), obj.Interface()); err != nil {
		return err
	}
	field.Set(obj.Elem())
	return nil
}

func isQuoted(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}

func isString(tp reflect.Type) bool {
	if tp.Kind() == reflect.Ptr {
		return isString(tp.Elem())
	}
	return tp.Kind() == reflect.String
}
