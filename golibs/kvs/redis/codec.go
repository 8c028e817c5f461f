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

package redis

import (
	"fmt"
	"github.com/solarisdb/lrukit/golibs/cast"
	"github.com/solarisdb/lrukit/golibs/errors"
	"github.com/solarisdb/lrukit/golibs/kvs"
	"google.golang.org/protobuf/encoding/protowire"
	"time"
)

// record fields on the wire. The key is not stored, it is the redis key.
const (
	fldValue     protowire.Number = 1
	fldVersion   protowire.Number = 2
	fldExpiresAt protowire.Number = 3
)

// rec2db encodes the record to the protobuf wire format
func rec2db(r *kvs.Record) []byte {
	if r == nil {
		panic("rec2db: record cannot be nil")
	}
	buf := make([]byte, 0, len(r.Value)+len(r.Version)+16)
	if len(r.Value) > 0 {
		buf = protowire.AppendTag(buf, fldValue, protowire.BytesType)
		buf = protowire.AppendBytes(buf, r.Value)
	}
	if len(r.Version) > 0 {
		buf = protowire.AppendTag(buf, fldVersion, protowire.BytesType)
		buf = protowire.AppendString(buf, r.Version)
	}
	if r.ExpiresAt != nil {
		buf = protowire.AppendTag(buf, fldExpiresAt, protowire.VarintType)
		buf = protowire.AppendVarint(buf, uint64(r.ExpiresAt.UnixNano()))
	}
	return buf
}

// db2rec decodes the record from buf. Unknown fields are skipped.
func db2rec(buf []byte) (kvs.Record, error) {
	var r kvs.Record
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return kvs.Record{}, decodeErr(n)
		}
		buf = buf[n:]
		switch {
		case num == fldValue && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return kvs.Record{}, decodeErr(n)
			}
			r.Value = append([]byte(nil), v...)
			buf = buf[n:]
		case num == fldVersion && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return kvs.Record{}, decodeErr(n)
			}
			r.Version = string(v)
			buf = buf[n:]
		case num == fldExpiresAt && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return kvs.Record{}, decodeErr(n)
			}
			r.ExpiresAt = cast.Ptr(time.Unix(0, int64(v)))
			buf = buf[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return kvs.Record{}, decodeErr(n)
			}
			buf = buf[n:]
		}
	}
	return r, nil
}

func decodeErr(n int) error {
	return fmt.Errorf("could not decode record: %s: %w", protowire.ParseError(n), errors.ErrDataLoss)
}
