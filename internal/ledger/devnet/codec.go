package devnet

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/repository"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

func filterFromArgs(params []resource.Param, args []any) (repository.ListFilter, error) {
	if len(args) > len(params) {
		return repository.ListFilter{}, fmt.Errorf("want at most %d args, got %d: %w", len(params), len(args), ledger.ErrBadArguments)
	}
	f := repository.ListFilter{
		Eq:   map[string]uint64{},
		From: map[string]uint64{},
		To:   map[string]uint64{},
	}
	for i, p := range params {
		var v uint64
		if i < len(args) {
			n, ok := numeric(args[i])
			if !ok {
				return repository.ListFilter{}, fmt.Errorf("arg %d: %w", i, ledger.ErrBadArguments)
			}
			v = n
		}
		switch p.Kind {
		case resource.ParamOffset:
			f.Offset = v
		case resource.ParamLimit:
			f.Limit = min(v, MaxLimit)
		case resource.ParamFilter:
			f.Eq[p.Key] = v
		case resource.ParamFrom:
			f.From[p.Key] = v
		case resource.ParamTo:
			f.To[p.Key] = v
		}
	}
	return f, nil
}

func idArg(args []any) (uint64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing id: %w", ledger.ErrBadArguments)
	}
	id, ok := numeric(args[0])
	if !ok {
		return 0, fmt.Errorf("id: %w", ledger.ErrBadArguments)
	}
	return id, nil
}

// numeric accepts the integer encodings that arrive in-process or over
// JSON, but never a plain string.
func numeric(v any) (uint64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return ledger.ToUint64(v)
}

func toRecord(stored *repository.StoredRecord) (ledger.Record, error) {
	vals, err := stored.Values()
	if err != nil {
		return nil, err
	}
	rec := ledger.Record(vals)
	rec["id"] = stored.ID
	rec["deleted"] = stored.Deleted
	rec["createdAt"] = uint64(stored.CreatedAt)
	rec["updatedAt"] = uint64(stored.UpdatedAt)
	return rec, nil
}

// zeroRecord is what a mapping lookup of a missing key returns.
func zeroRecord() ledger.Record {
	return ledger.Record{"id": uint64(0), "deleted": false}
}

// storable normalizes an argument to uint64, string, bool or []uint64 so
// it survives the JSON column unchanged.
func storable(v any) any {
	switch x := v.(type) {
	case nil, string, bool:
		return x
	case json.Number:
		if n, ok := ledger.ToUint64(x); ok {
			return n
		}
		return x.String()
	case *big.Int, big.Int:
		if n, ok := ledger.ToUint64(x); ok {
			return n
		}
		return fmt.Sprint(x)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if ids, ok := ledger.ToUints(v); ok {
			return ids
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if n, ok := ledger.ToUint64(v); ok {
			return n
		}
	}
	return v
}

func storableArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = storable(a)
	}
	return out
}
