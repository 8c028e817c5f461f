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

package replay

import (
	"fmt"
	"github.com/solarisdb/lrukit/golibs/errors"
	"gopkg.in/yaml.v3"
	"os"
	"time"
)

type (
	// Script is a list of operations replayed by RunCache or RunKV. It is read from
	// YAML or JSON:
	//
	//	ops:
	//	  - {op: put, key: a, value: "1"}
	//	  - {op: get, key: a}
	//	  - {op: filter, expr: "len(value) > 3"}
	Script struct {
		Ops []Op `json:"ops" yaml:"ops"`
	}

	// Op is one operation of the Script. The fields used depend on the operation.
	Op struct {
		Op      string `json:"op" yaml:"op"`
		Key     string `json:"key,omitempty" yaml:"key,omitempty"`
		Value   string `json:"value,omitempty" yaml:"value,omitempty"`
		Expr    string `json:"expr,omitempty" yaml:"expr,omitempty"`
		Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
		// TTL is the record time to live for the kv put operation, e.g. "10s"
		TTL string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	}
)

// LoadScript reads the script from the file
func LoadScript(fileName string) (*Script, error) {
	buf, err := os.ReadFile(fileName)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("the script file %s is not found: %w", fileName, errors.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read the script file %s: %w", fileName, err)
	}
	return ParseScript(buf)
}

// ParseScript parses the YAML or JSON script. YAML 1.2 rules apply, so keys and
// values like y, n, on or off stay strings.
func ParseScript(buf []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(buf, &s); err != nil {
		return nil, fmt.Errorf("could not parse the script: %v: %w", err, errors.ErrInvalid)
	}
	return &s, nil
}

func (op Op) ttl() (*time.Time, error) {
	if op.TTL == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(op.TTL)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("wrong ttl %q: %w", op.TTL, errors.ErrInvalid)
	}
	t := time.Now().Add(d)
	return &t, nil
}
