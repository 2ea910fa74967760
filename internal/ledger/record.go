package ledger

import (
	"encoding/json"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Record is one decoded contract struct keyed by ABI field name.
type Record map[string]any

// Get looks key up exactly and then case-insensitively, since decoders
// disagree on "Id" vs "id".
func (r Record) Get(key string) (any, bool) {
	if v, ok := r[key]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func (r Record) Uint(key string) uint64 {
	v, _ := r.Get(key)
	n, _ := ToUint64(v)
	return n
}

func (r Record) Int(key string) int64 {
	v, _ := r.Get(key)
	n, _ := ToInt64(v)
	return n
}

func (r Record) String(key string) string {
	v, ok := r.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case json.Number:
		return s.String()
	case interface{ String() string }:
		return s.String()
	}
	return ""
}

func (r Record) Bool(key string) bool {
	v, _ := r.Get(key)
	switch b := v.(type) {
	case bool:
		return b
	case string:
		ok, _ := strconv.ParseBool(b)
		return ok
	}
	n, ok := ToUint64(v)
	return ok && n != 0
}

func (r Record) Uints(key string) []uint64 {
	v, _ := r.Get(key)
	ids, _ := ToUints(v)
	return ids
}

// Time reads a unix-seconds field; zero stays the zero time.
func (r Record) Time(key string) time.Time {
	secs := r.Uint(key)
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(int64(secs), 0)
}

func (r Record) ID() uint64 {
	return r.Uint("id")
}

func (r Record) Deleted() bool {
	return r.Bool("deleted")
}

// Exists is false for the zero struct a contract mapping returns for an
// unknown key and for soft-deleted records.
func (r Record) Exists() bool {
	return r != nil && r.ID() != 0 && !r.Deleted()
}

func (r Record) CreatedAt() time.Time {
	return r.Time("createdAt")
}

func (r Record) UpdatedAt() time.Time {
	return r.Time("updatedAt")
}

// ToUint64 converts the numeric shapes produced by the supported backends
// (native ints, *big.Int from ABI decoding, json.Number and float64 from
// JSON) into a uint64.
func ToUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case uint64:
		return n, true
	case uint:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case int:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	case int32:
		return uint64(n), n >= 0
	case float64:
		return uint64(n), n >= 0
	case *big.Int:
		if n == nil || n.Sign() < 0 || !n.IsUint64() {
			return 0, false
		}
		return n.Uint64(), true
	case big.Int:
		return ToUint64(&n)
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return u, err == nil
	case string:
		u, err := strconv.ParseUint(n, 10, 64)
		return u, err == nil
	}
	return 0, false
}

func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case *big.Int:
		if n == nil || !n.IsInt64() {
			return 0, false
		}
		return n.Int64(), true
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		return i, err == nil
	case float64:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	u, ok := ToUint64(v)
	return int64(u), ok
}

// ToUints converts any slice of numbers into []uint64, preserving order.
func ToUints(v any) ([]uint64, bool) {
	switch ids := v.(type) {
	case nil:
		return nil, true
	case []uint64:
		return append([]uint64(nil), ids...), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]uint64, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		n, ok := ToUint64(rv.Index(i).Interface())
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
