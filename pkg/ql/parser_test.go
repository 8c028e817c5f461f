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
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestParseParam(t *testing.T) {
	expr, err := Parse("1234")
	assert.Nil(t, err)

	cond := expr.Or[0].And[0].Cond
	assert.Equal(t, 1234.0, *cond.FirstParam.Const.Number)
	assert.Equal(t, NumberParamID, cond.FirstParam.ID())
	assert.Equal(t, "1234", cond.FirstParam.Name(false))

	expr, err = Parse("'1234'")
	assert.Nil(t, err)

	cond = expr.Or[0].And[0].Cond
	assert.Equal(t, "1234", *cond.FirstParam.Const.String)
	assert.Equal(t, StringParamID, cond.FirstParam.ID())

	expr, err = Parse("Lala")
	assert.Nil(t, err)

	cond = expr.Or[0].And[0].Cond
	assert.Equal(t, "Lala", cond.FirstParam.Identifier)
	assert.Equal(t, "lala", cond.FirstParam.ID())

	expr, err = Parse("lala ( )")
	assert.Nil(t, err)

	cond = expr.Or[0].And[0].Cond
	assert.Equal(t, Function{Name: "lala"}, *cond.FirstParam.Function)
	assert.Equal(t, "lala", cond.FirstParam.ID())

	expr, err = Parse("lala ( 1234)")
	assert.Nil(t, err)

	cond = expr.Or[0].And[0].Cond
	assert.Equal(t, "lala", cond.FirstParam.Function.Name)
	assert.Equal(t, 1234.0, *cond.FirstParam.Function.Params[0].Const.Number)

	expr, err = Parse("[1234, 'a', 2.5]")
	assert.Nil(t, err)
	cond = expr.Or[0].And[0].Cond
	assert.Equal(t, ArrayParamID, cond.FirstParam.ID())
	assert.Equal(t, "[1234, a, 2.5]", cond.FirstParam.Name(false))
}

func TestParseCondition(t *testing.T) {
	expr, err := Parse("1234")
	assert.Nil(t, err)
	assert.Nil(t, expr.Or[0].And[0].Cond.SecondParam)

	expr, err = Parse("f1() != f2('asdf')")
	assert.Nil(t, err)

	cond := expr.Or[0].And[0].Cond
	assert.Equal(t, "f1", cond.FirstParam.Function.Name)
	assert.Equal(t, "!=", cond.Op)
	assert.Equal(t, "f2", cond.SecondParam.Function.Name)

	expr, err = Parse("key like 'a%' AND NOT (value = 1 or value = 2)")
	assert.Nil(t, err)
	assert.Len(t, expr.Or, 1)
	assert.Len(t, expr.Or[0].And, 2)
	assert.Equal(t, "like", expr.Or[0].And[0].Cond.Op)
	assert.True(t, expr.Or[0].And[1].Not)
	assert.Len(t, expr.Or[0].And[1].Expr.Or, 2)
}

func TestParseEmpty(t *testing.T) {
	expr, err := Parse("  ")
	assert.Nil(t, err)
	assert.Empty(t, expr.Or)
}

func TestArrayName(t *testing.T) {
	expr, err := Parse("[1,2,3,4,5,6,7,8,9,10,11]")
	assert.Nil(t, err)
	assert.Equal(t, "[1, 2, 3, 4, ... and 7 more]", expr.Or[0].And[0].Cond.FirstParam.Name(false))
}

func TestExpressions(t *testing.T) {
	testOk(t, "1234.34")
	testOk(t, "'string'")
	testOk(t, "var2")
	testOk(t, "f()")
	testOk(t, "f(1)")
	testOk(t, "f(1, 2)")
	testOk(t, "1234 != 1234 and f()")
	testOk(t, "1234 != 1234 and (f(1234, var2, f2(34, f1())) or var1 = 'sdf')")
	testOk(t, "f1('abc') in [1,2,3]")

	_, err := Parse("key = ")
	assert.NotNil(t, err)
	_, err = Parse("(key = 'a'")
	assert.NotNil(t, err)
}

func testOk(t *testing.T, e string) {
	_, err := Parse(e)
	assert.Nil(t, err)
}
