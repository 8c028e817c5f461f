// Copyright 2023 The acquirecloud Authors
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

package ql

import (
	"strconv"
	"unicode/utf8"
)

const (
	// PfLValue the parameter can be on the left side of a condition
	PfLValue = 1 << 0
	// PfRValue the parameter can be on the right side of a condition
	PfRValue = 1 << 1
	// PfComparable the parameter can be compared: <, >, !=, =, >=, <=
	PfComparable = 1 << 2
	// PfInLike the IN or LIKE operations are allowed for the param
	PfInLike = 1 << 3
	// PfConstValue the parameter value doesn't depend on the evaluated object
	PfConstValue = 1 << 4
	// PfFunction the parameter must be a function, not an identifier
	PfFunction = 1 << 5
)

type (
	// ParamDialect describes how a parameter may be used in a condition, and how
	// its value is calculated for an object of T
	ParamDialect[T any] struct {
		Flags int
		// Check is an optional build time check of the param (function arguments etc.)
		Check func(p *Param) error
		// ValueF returns the param value for the object t
		ValueF func(p *Param, t T) string
	}

	// Dialect is the set of parameters known for T, the key is the Param.ID()
	Dialect[T any] map[string]ParamDialect[T]

	// Entry is a cache entry the EntryDialect is defined for
	Entry struct {
		Key   string
		Value string
	}
)

// EntryDialect allows to write conditions over the cache entries:
//
//	key = 'abc' OR value IN ['1', '2'] OR key LIKE 'user:%' OR len(value) > 10
var EntryDialect = Dialect[Entry]{
	NumberParamID: { // numbers are rvalues only
		Flags:  PfRValue | PfComparable | PfConstValue,
		ValueF: constValue[Entry],
	},
	StringParamID: { // strings are rvalues only
		Flags:  PfRValue | PfComparable | PfConstValue,
		ValueF: constValue[Entry],
	},
	ArrayParamID: { // arrays are rvalues only
		Flags: PfRValue | PfConstValue,
	},
	"key": {
		Flags:  PfLValue | PfRValue | PfComparable | PfInLike,
		ValueF: func(_ *Param, e Entry) string { return e.Key },
	},
	"value": {
		Flags:  PfLValue | PfRValue | PfComparable | PfInLike,
		ValueF: func(_ *Param, e Entry) string { return e.Value },
	},
	"len": { // len(key) or len(value) - number of characters
		Flags: PfLValue | PfRValue | PfComparable | PfFunction,
		Check: checkLen,
		ValueF: func(p *Param, e Entry) string {
			s := e.Key
			if p.Function.Params[0].ID() == "value" {
				s = e.Value
			}
			return strconv.Itoa(utf8.RuneCountInString(s))
		},
	},
}

func constValue[T any](p *Param, _ T) string {
	return p.Const.Value()
}

func checkLen(p *Param) error {
	if len(p.Function.Params) != 1 {
		return invalidf("len() expects exactly one parameter")
	}
	if id := p.Function.Params[0].ID(); id != "key" && id != "value" {
		return invalidf("len() expects key or value as the parameter, but %s is provided", p.Function.Params[0].Name(false))
	}
	return nil
}
