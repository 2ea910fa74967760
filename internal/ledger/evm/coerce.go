package evm

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/emilianohg/spbuadmin/internal/ledger"
)

// coerceArgs converts ledger-neutral arguments to the exact Go types the
// ABI packer expects for each input.
func coerceArgs(inputs abi.Arguments, args []any) ([]any, error) {
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("want %d args, got %d: %w", len(inputs), len(args), ledger.ErrBadArguments)
	}
	out := make([]any, len(args))
	for i, in := range inputs {
		v, err := coerce(in.Type, args[i])
		if err != nil {
			name := in.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("arg %s (%s): %w", name, in.Type, err)
		}
		out[i] = v
	}
	return out, nil
}

func coerce(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.UintTy:
		if b, ok := v.(*big.Int); ok && t.Size > 64 {
			if b.Sign() < 0 {
				return nil, ledger.ErrBadArguments
			}
			return b, nil
		}
		n, ok := ledger.ToUint64(v)
		if !ok {
			return nil, fmt.Errorf("%v is not an unsigned integer: %w", v, ledger.ErrBadArguments)
		}
		return sizedUint(t.Size, n)
	case abi.IntTy:
		n, ok := ledger.ToInt64(v)
		if !ok {
			return nil, fmt.Errorf("%v is not an integer: %w", v, ledger.ErrBadArguments)
		}
		return sizedInt(t.Size, n)
	case abi.BoolTy:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%v is not a bool: %w", v, ledger.ErrBadArguments)
		}
		return b, nil
	case abi.StringTy:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%v is not a string: %w", v, ledger.ErrBadArguments)
		}
		return s, nil
	case abi.AddressTy:
		switch a := v.(type) {
		case common.Address:
			return a, nil
		case string:
			if !common.IsHexAddress(a) {
				return nil, fmt.Errorf("%q is not an address: %w", a, ledger.ErrBadArguments)
			}
			return common.HexToAddress(a), nil
		}
		return nil, fmt.Errorf("%v is not an address: %w", v, ledger.ErrBadArguments)
	case abi.BytesTy:
		switch b := v.(type) {
		case []byte:
			return b, nil
		case string:
			raw, err := hexutil.Decode(b)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", b, ledger.ErrBadArguments)
			}
			return raw, nil
		}
		return nil, fmt.Errorf("%v is not bytes: %w", v, ledger.ErrBadArguments)
	case abi.SliceTy, abi.ArrayTy:
		return coerceList(t, v)
	}
	return nil, fmt.Errorf("unsupported abi type %s: %w", t, ledger.ErrBadArguments)
}

func coerceList(t abi.Type, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if v == nil {
		rv = reflect.ValueOf([]any{})
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%v is not a list: %w", v, ledger.ErrBadArguments)
	}

	var out reflect.Value
	if t.T == abi.ArrayTy {
		if rv.Len() != t.Size {
			return nil, fmt.Errorf("want %d items, got %d: %w", t.Size, rv.Len(), ledger.ErrBadArguments)
		}
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), rv.Len(), rv.Len())
	}
	for i := 0; i < rv.Len(); i++ {
		elem, err := coerce(*t.Elem, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(elem))
	}
	return out.Interface(), nil
}

func sizedUint(size int, n uint64) (any, error) {
	switch size {
	case 8:
		if n > 1<<8-1 {
			return nil, overflow(n, size)
		}
		return uint8(n), nil
	case 16:
		if n > 1<<16-1 {
			return nil, overflow(n, size)
		}
		return uint16(n), nil
	case 32:
		if n > 1<<32-1 {
			return nil, overflow(n, size)
		}
		return uint32(n), nil
	case 64:
		return n, nil
	}
	return new(big.Int).SetUint64(n), nil
}

func sizedInt(size int, n int64) (any, error) {
	switch size {
	case 8:
		return int8(n), nil
	case 16:
		return int16(n), nil
	case 32:
		return int32(n), nil
	case 64:
		return n, nil
	}
	return big.NewInt(n), nil
}

func overflow(n uint64, size int) error {
	return fmt.Errorf("%d overflows uint%d: %w", n, size, ledger.ErrBadArguments)
}

// decodeOutputs returns a single output as is and several as a Tuple.
func decodeOutputs(outputs abi.Arguments, vals []any) any {
	switch len(vals) {
	case 0:
		return nil
	case 1:
		return vals[0]
	}
	t := ledger.Tuple{Names: make([]string, len(vals)), Values: vals}
	for i := range vals {
		if i < len(outputs) {
			t.Names[i] = outputs[i].Name
		}
	}
	return t
}
