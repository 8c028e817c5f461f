// Copyright 2024 The Solaris Authors
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

package ql

import (
	"fmt"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"strconv"
	"strings"
)

// The grammar of the filter expressions. NOT binds to a single condition or a group
// in parentheses, AND binds tighter than OR:
//
//	key LIKE 'user:*' AND NOT (len(value) > 10 OR value IN ['a', 'b'])
type (
	// Expression is the whole filter, the entry matches if any of Or matches
	Expression struct {
		Or []*OrCondition `@@ { "OR" @@ }`
	}

	// OrCondition matches if all of And match
	OrCondition struct {
		And []*XCondition `@@ { "AND" @@ }`
	}

	// XCondition is either a single Condition or a nested Expression, optionally negated
	XCondition struct {
		Not  bool        ` [@"NOT"] `
		Cond *Condition  `( @@`
		Expr *Expression `| "(" @@ ")")`
	}

	// Condition compares FirstParam with SecondParam. A Condition without Op is a
	// single param, which the dialect must accept as a boolean.
	Condition struct {
		FirstParam  Param  `  @@`
		Op          string ` {@("<"|">"|">="|"<="|"!="|"="|"IN"|"LIKE")`
		SecondParam *Param ` @@}`
	}

	// Param is exactly one of a constant, a function call like len(key), a name
	// like key or value, or a list of constants for IN.
	Param struct {
		Const      *Const    ` @@`
		Function   *Function ` | @@`
		Identifier string    ` | @Ident`
		Array      []*Const  `|"[" (@@ {"," @@})?"]"`
	}

	// Const is a quoted string or a number
	Const struct {
		Number *float64 ` @Number`
		String *string  ` | @String`
	}

	Function struct {
		Name   string   ` @Ident `
		Params []*Param ` "(" (@@ {"," @@})? ")"`
	}
)

// The IDs of the constant params in a Dialect, the other params are known by their names.
const (
	StringParamID = "__string__"
	NumberParamID = "__number__"
	ArrayParamID  = "__array__"
)

// arrays longer than maxArrayLen are shortened to shortArrayLen items in the messages
const (
	maxArrayLen   = 10
	shortArrayLen = 4
)

var (
	exprLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: `Keyword`, Pattern: `(?i)\b(AND|OR|NOT|IN|LIKE)\b`},
		{Name: `Ident`, Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: `Number`, Pattern: `[-+]?\d*\.?\d+([eE][-+]?\d+)?`},
		{Name: `String`, Pattern: `'[^']*'|"[^"]*"`},
		{Name: `Operators`, Pattern: `!=|<=|>=|[,()=<>\]\[]`},
		{Name: "whitespace", Pattern: `\s+`},
	})

	exprParser = participle.MustBuild[Expression](
		participle.Lexer(exprLexer),
		participle.Unquote("String"),
		participle.CaseInsensitive("Keyword"),
	)
)

// Parse builds the AST of the filter expression. An empty expr gives an empty
// Expression, which matches everything.
func Parse(expr string) (*Expression, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Expression{}, nil
	}
	e, err := exprParser.ParseString("", expr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse expression=%q: %w", expr, err)
	}
	return e, nil
}

// ID is the Dialect key of the param: one of the *ParamID constants for the
// constants and the lower-cased name for the functions and identifiers.
func (p Param) ID() string {
	switch {
	case p.Const != nil && p.Const.String != nil:
		return StringParamID
	case p.Const != nil:
		return NumberParamID
	case p.Function != nil:
		return strings.ToLower(p.Function.Name)
	case p.Identifier != "":
		return strings.ToLower(p.Identifier)
	}
	return ArrayParamID
}

// Name is the param as it is written in the expression, for the error messages.
// Long arrays are shortened unless full is true.
func (p Param) Name(full bool) string {
	switch {
	case p.Const != nil:
		return p.Const.Value()
	case p.Function != nil:
		return p.Function.Name
	case p.Identifier != "":
		return p.Identifier
	}

	items := p.Array
	more := 0
	if !full && len(items) > maxArrayLen {
		items, more = items[:shortArrayLen], len(items)-shortArrayLen
	}
	var sb strings.Builder
	sb.WriteString("[")
	for i, c := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Value())
	}
	if more > 0 {
		fmt.Fprintf(&sb, ", ... and %d more", more)
	}
	sb.WriteString("]")
	return sb.String()
}

// Value returns the string, or the shortest decimal form of the number
func (c Const) Value() string {
	if c.String != nil {
		return *c.String
	}
	return strconv.FormatFloat(*c.Number, 'f', -1, 64)
}
