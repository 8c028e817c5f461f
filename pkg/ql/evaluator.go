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
	"cmp"
	"fmt"
	"github.com/gobwas/glob"
	"github.com/solarisdb/lrukit/golibs/errors"
	"strconv"
	"strings"
)

type (
	// ExprF represents the Expression function to evaluate the expression for the type T
	ExprF[T any] func(t T) bool

	// EntryF is the predicate over a cache entry, it can be passed to the cache Filter
	EntryF func(key, value string) bool

	exprBuilder[T any] struct {
		f       ExprF[T]
		dialect Dialect[T]
	}
)

func positive[T any](_ T) bool { return true }

// BuildEntryF parses the expr and returns the predicate for the cache entries. An empty
// expression matches any entry.
func BuildEntryF(expr string) (EntryF, error) {
	e, err := Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), errors.ErrInvalid)
	}
	f, err := BuildExprF[Entry](e, EntryDialect)
	if err != nil {
		return nil, err
	}
	return func(key, value string) bool { return f(Entry{Key: key, Value: value}) }, nil
}

// BuildExprF allows to build the ExprF[T] function by the expression and the dialect provided. The result
// function may be used for testing a value of T either it matches the expression or not.
func BuildExprF[T any](expr *Expression, dialect Dialect[T]) (ExprF[T], error) {
	if expr == nil {
		return positive[T], nil
	}
	var eb exprBuilder[T]
	eb.dialect = dialect
	if err := eb.buildOrConds(expr.Or); err != nil {
		return nil, err
	}
	return eb.f, nil
}

func (eb *exprBuilder[T]) buildOrConds(ocn []*OrCondition) error {
	if len(ocn) == 0 {
		eb.f = positive[T]
		return nil
	}

	err := eb.buildXConds(ocn[0].And)
	if err != nil {
		return err
	}

	if len(ocn) == 1 {
		// no need to go ahead anymore
		return nil
	}

	efd0 := eb.f
	err = eb.buildOrConds(ocn[1:])
	if err != nil {
		return err
	}
	efd1 := eb.f

	eb.f = func(t T) bool { return efd0(t) || efd1(t) }
	return nil
}

func (eb *exprBuilder[T]) buildXConds(cn []*XCondition) error {
	if len(cn) == 0 {
		eb.f = positive[T]
		return nil
	}

	if len(cn) == 1 {
		return eb.buildXCond(cn[0])
	}

	if err := eb.buildXCond(cn[0]); err != nil {
		return err
	}

	efd0 := eb.f
	if err := eb.buildXConds(cn[1:]); err != nil {
		return err
	}
	efd1 := eb.f

	eb.f = func(t T) bool { return efd0(t) && efd1(t) }
	return nil
}

func (eb *exprBuilder[T]) buildXCond(xc *XCondition) (err error) {
	if xc.Expr != nil {
		err = eb.buildOrConds(xc.Expr.Or)
	} else {
		err = eb.buildCond(xc.Cond)
	}

	if err != nil {
		return err
	}

	if xc.Not {
		efd1 := eb.f
		eb.f = func(t T) bool { return !efd1(t) }
	}

	return nil
}

func (eb *exprBuilder[T]) buildCond(cn *Condition) error {
	p1 := &cn.FirstParam
	d1, err := eb.paramDialect(p1)
	if err != nil {
		return err
	}
	if d1.Flags&PfLValue == 0 {
		return invalidf("parameter %s cannot be on the left side of the condition", p1.Name(false))
	}
	p2 := cn.SecondParam
	if cn.Op == "" || p2 == nil {
		return invalidf("parameter %s should be compared with something in a condition", p1.Name(false))
	}
	d2, err := eb.paramDialect(p2)
	if err != nil {
		return err
	}
	if d2.Flags&PfRValue == 0 {
		return invalidf("parameter %s cannot be on the right side of the condition", p2.Name(false))
	}

	v1 := valueF(d1, p1)
	op := strings.ToUpper(cn.Op)
	switch op {
	case "IN":
		if d1.Flags&PfInLike == 0 {
			return invalidf("IN is not allowed for %s", p1.Name(false))
		}
		if p2.ID() != ArrayParamID {
			return invalidf("IN expects an array on the right side, but %s is provided", p2.Name(false))
		}
		arr := make([]string, len(p2.Array))
		for i, c := range p2.Array {
			arr[i] = c.Value()
		}
		eb.f = func(t T) bool {
			v := v1(t)
			for _, a := range arr {
				if compare(v, a) == 0 {
					return true
				}
			}
			return false
		}
	case "LIKE":
		if d1.Flags&PfInLike == 0 {
			return invalidf("LIKE is not allowed for %s", p1.Name(false))
		}
		if p2.ID() != StringParamID {
			return invalidf("LIKE expects a string pattern on the right side, but %s is provided", p2.Name(false))
		}
		g, err := likeToGlob(*p2.Const.String)
		if err != nil {
			return err
		}
		eb.f = func(t T) bool { return g.Match(v1(t)) }
	default:
		if d1.Flags&PfComparable == 0 || d2.Flags&PfComparable == 0 {
			return invalidf("%s %s %s cannot be compared", p1.Name(false), cn.Op, p2.Name(false))
		}
		okF := cmpResultF(op)
		v2 := valueF(d2, p2)
		eb.f = func(t T) bool { return okF(compare(v1(t), v2(t))) }
	}
	return nil
}

func (eb *exprBuilder[T]) paramDialect(p *Param) (ParamDialect[T], error) {
	d, ok := eb.dialect[p.ID()]
	if !ok {
		return d, invalidf("unknown parameter %s", p.Name(false))
	}
	if d.Flags&PfFunction != 0 && p.Function == nil {
		return d, invalidf("%s must be called as a function", p.Name(false))
	}
	if d.Flags&PfFunction == 0 && p.Function != nil {
		return d, invalidf("%s is not a function", p.Name(false))
	}
	if d.Check != nil {
		if err := d.Check(p); err != nil {
			return d, err
		}
	}
	return d, nil
}

// valueF returns the function calculating the param value, the constants are calculated once
func valueF[T any](d ParamDialect[T], p *Param) func(t T) string {
	if d.Flags&PfConstValue != 0 {
		var zero T
		v := d.ValueF(p, zero)
		return func(_ T) string { return v }
	}
	return func(t T) string { return d.ValueF(p, t) }
}

func cmpResultF(op string) func(int) bool {
	switch op {
	case "<":
		return func(r int) bool { return r < 0 }
	case ">":
		return func(r int) bool { return r > 0 }
	case "<=":
		return func(r int) bool { return r <= 0 }
	case ">=":
		return func(r int) bool { return r >= 0 }
	case "!=":
		return func(r int) bool { return r != 0 }
	}
	return func(r int) bool { return r == 0 }
}

// compare compares a and b as numbers if both of them are numbers, and as strings otherwise
func compare(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(a, b)
}

// likeToGlob turns the LIKE pattern ('%' - any sequence, '_' - any character) into the glob
func likeToGlob(pattern string) (glob.Glob, error) {
	var sb strings.Builder
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString("*")
		case '_':
			sb.WriteString("?")
		default:
			sb.WriteString(glob.QuoteMeta(string(r)))
		}
	}
	g, err := glob.Compile(sb.String())
	if err != nil {
		return nil, invalidf("wrong LIKE pattern %q: %v", pattern, err)
	}
	return g, nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), errors.ErrInvalid)
}
