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
	"encoding/json"
	"fmt"
	"github.com/solarisdb/lrukit/golibs/config"
	"github.com/solarisdb/lrukit/golibs/errors"
	"github.com/solarisdb/lrukit/golibs/logging"
	"slices"
)

type (
	// Config defines the lructl configuration
	Config struct {
		// Capacity is the maximum number of entries in the cache, values less than 1 mean 1
		Capacity int `json:"capacity"`
		// Backend is the records storage for the kv command: inmem, buntdb or redis
		Backend string `json:"backend"`
		// BuntdbPath is the BuntDB file path, the in-memory DB is used if it is empty
		BuntdbPath string `json:"buntdbPath"`
		// RedisAddr is the redis server address host:port
		RedisAddr string `json:"redisAddr"`
		// LogLevel is one of error, warn, info, debug or trace
		LogLevel string `json:"logLevel"`
	}
)

const (
	BackendInmem  = "inmem"
	BackendBuntdb = "buntdb"
	BackendRedis  = "redis"

	// EnvPrefix is the prefix of the environment variables overriding the config, like LRUKIT_CAPACITY
	EnvPrefix = "LRUKIT"
)

// GetDefaultConfig returns the default config
func GetDefaultConfig() *Config {
	return &Config{
		Capacity:  128,
		Backend:   BackendInmem,
		RedisAddr: "localhost:6379",
		LogLevel:  "info",
	}
}

// BuildConfig builds the config from the defaults, the cfgFile (if provided) and
// the environment variables.
func BuildConfig(cfgFile string) (*Config, error) {
	log := logging.NewLogger("replay.ConfigBuilder")
	log.Debugf("trying to build config. cfgFile=%q", cfgFile)
	e := config.NewEnricher(*GetDefaultConfig())
	// the file is unmarshalled over the defaults, so explicit zero values like capacity: 0 are kept
	if err := e.LoadFromFile(cfgFile); err != nil {
		return nil, fmt.Errorf("could not read data from the file %s: %w", cfgFile, err)
	}
	_ = e.ApplyEnvVariables(EnvPrefix, "_")
	cfg := e.Value()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config values
func (c *Config) Validate() error {
	if !slices.Contains([]string{BackendInmem, BackendBuntdb, BackendRedis}, c.Backend) {
		return fmt.Errorf("unknown backend %q, expected one of inmem, buntdb or redis: %w", c.Backend, errors.ErrInvalid)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), errors.ErrInvalid)
	}
	return nil
}

// String implements fmt.Stringify interface in a pretty console form
func (c *Config) String() string {
	b, _ := json.MarshalIndent(*c, "", "  ")
	return string(b)
}
