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
	"context"
	"fmt"
	goredis "github.com/go-redis/redis/v8"
	"github.com/logrange/linker"
	"github.com/solarisdb/lrukit/golibs/container/iterable"
	"github.com/solarisdb/lrukit/golibs/container/lru"
	"github.com/solarisdb/lrukit/golibs/errors"
	"github.com/solarisdb/lrukit/golibs/kvs"
	kvsbuntdb "github.com/solarisdb/lrukit/golibs/kvs/buntdb"
	"github.com/solarisdb/lrukit/golibs/kvs/inmem"
	kvsredis "github.com/solarisdb/lrukit/golibs/kvs/redis"
	"github.com/solarisdb/lrukit/golibs/logging"
	"github.com/solarisdb/lrukit/pkg/kvcache"
	"github.com/solarisdb/lrukit/pkg/ql"
	"io"
	"sort"
	"strings"
)

type (
	kvRunner struct {
		Storage *kvcache.CachedStorage `inject:""`

		w      io.Writer
		logger logging.Logger
	}
)

const none = "<none>"

// RunCache replays the script against a new cache of the capacity provided.
// It writes one line per operation (and per evicted entry) to w.
func RunCache(s *Script, capacity int, w io.Writer) error {
	c := lru.NewWithEvict[string, string](capacity, func(k, v string) {
		fmt.Fprintf(w, "evicted %s=%s\n", k, v)
	})
	for i, op := range s.Ops {
		if err := runCacheOp(c, op, w); err != nil {
			return fmt.Errorf("op #%d %q: %w", i+1, op.Op, err)
		}
	}
	return nil
}

func runCacheOp(c *lru.Cache[string, string], op Op, w io.Writer) error {
	switch strings.ToLower(op.Op) {
	case "put":
		fmt.Fprintf(w, "put %s=%s\n", op.Key, op.Value)
		c.Put(op.Key, op.Value)
	case "get":
		v, ok := c.Get(op.Key)
		fmt.Fprintf(w, "get %s: %s\n", op.Key, valueOrNone(v, ok))
	case "peek":
		v, ok := c.Peek(op.Key)
		fmt.Fprintf(w, "peek %s: %s\n", op.Key, valueOrNone(v, ok))
	case "remove":
		v, ok := c.Remove(op.Key)
		fmt.Fprintf(w, "remove %s: %s\n", op.Key, valueOrNone(v, ok))
	case "clear":
		c.RemoveAll()
		fmt.Fprintln(w, "clear")
	case "filter":
		f, err := ql.BuildEntryF(op.Expr)
		if err != nil {
			return err
		}
		before := c.Len()
		c.Filter(func(k, v string) bool { return f(k, v) })
		fmt.Fprintf(w, "filter %q: kept %d, removed %d\n", op.Expr, c.Len(), before-c.Len())
	case "len":
		fmt.Fprintf(w, "len: %d\n", c.Len())
	case "keys":
		fmt.Fprintf(w, "keys: %s\n", strings.Join(c.Keys(), " "))
	default:
		return fmt.Errorf("unknown cache operation: %w", errors.ErrInvalid)
	}
	return nil
}

// RunKV replays the script against the records storage configured by cfg, which
// is wrapped by the records cache of cfg.Capacity.
func RunKV(ctx context.Context, cfg *Config, s *Script, w io.Writer) error {
	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}
	r := &kvRunner{w: w, logger: logging.NewLogger("replay.kvRunner")}

	inj := linker.New()
	inj.Register(linker.Component{Name: "", Value: kvcache.NewCachedStorage(backend, cfg.Capacity)})
	inj.Register(linker.Component{Name: "", Value: r})
	if err := initComponents(ctx, inj); err != nil {
		return err
	}
	defer inj.Shutdown()

	for i, op := range s.Ops {
		if err := r.runOp(ctx, op); err != nil {
			return fmt.Errorf("op #%d %q: %w", i+1, op.Op, err)
		}
	}
	return nil
}

func newBackend(cfg *Config) (kvs.Storage, error) {
	switch cfg.Backend {
	case BackendInmem:
		return inmem.New(), nil
	case BackendBuntdb:
		return kvsbuntdb.NewStorage(kvsbuntdb.Config{DBFilePath: cfg.BuntdbPath}), nil
	case BackendRedis:
		return kvsredis.New(&goredis.Options{Addr: cfg.RedisAddr}), nil
	}
	return nil, fmt.Errorf("unknown backend %q: %w", cfg.Backend, errors.ErrInvalid)
}

// initComponents runs the linker initialization, which panics if a component fails
func initComponents(ctx context.Context, inj *linker.Injector) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("could not initialize components: %v", r)
		}
	}()
	inj.Init(ctx)
	return nil
}

func (r *kvRunner) runOp(ctx context.Context, op Op) error {
	r.logger.Debugf("running %+v", op)
	switch strings.ToLower(op.Op) {
	case "put":
		eat, err := op.ttl()
		if err != nil {
			return err
		}
		if _, err := r.Storage.Put(ctx, kvs.Record{Key: op.Key, Value: []byte(op.Value), ExpiresAt: eat}); err != nil {
			return err
		}
		fmt.Fprintf(r.w, "put %s=%s\n", op.Key, op.Value)
	case "get":
		cached := r.Storage.Cached(op.Key)
		rec, err := r.Storage.Get(ctx, op.Key)
		if errors.Is(err, errors.ErrNotExist) {
			fmt.Fprintf(r.w, "get %s: %s\n", op.Key, none)
			return nil
		}
		if err != nil {
			return err
		}
		if cached {
			fmt.Fprintf(r.w, "get %s: %s (cached)\n", op.Key, rec.Value)
		} else {
			fmt.Fprintf(r.w, "get %s: %s\n", op.Key, rec.Value)
		}
	case "delete":
		err := r.Storage.Delete(ctx, op.Key)
		if errors.Is(err, errors.ErrNotExist) {
			fmt.Fprintf(r.w, "delete %s: %s\n", op.Key, none)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(r.w, "delete %s\n", op.Key)
	case "invalidate":
		n, err := r.Storage.Invalidate(op.Pattern)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.w, "invalidate %q: %d\n", op.Pattern, n)
	case "where":
		n, err := r.Storage.InvalidateWhere(op.Expr)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.w, "where %q: %d\n", op.Expr, n)
	case "keys":
		pattern := op.Pattern
		if pattern == "" {
			pattern = "*"
		}
		it, err := r.Storage.ListKeys(ctx, pattern)
		if err != nil {
			return err
		}
		keys, err := iterable.Collect(it)
		if err != nil {
			return err
		}
		sort.Strings(keys)
		fmt.Fprintf(r.w, "keys: %s\n", strings.Join(keys, " "))
	case "len":
		fmt.Fprintf(r.w, "cached: %d\n", r.Storage.Len())
	default:
		return fmt.Errorf("unknown kv operation: %w", errors.ErrInvalid)
	}
	return nil
}

func valueOrNone(v string, ok bool) string {
	if !ok {
		return none
	}
	return v
}
