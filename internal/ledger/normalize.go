package ledger

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Tuple is the result of a function with several named outputs, in ABI order.
type Tuple struct {
	Names  []string
	Values []any
}

// Normalize turns any read result into an ordered slice of records,
// regardless of how the backend decoded it:
//
//   - nil yields no records
//   - a Record, map or struct yields one record
//   - slices of records, maps or structs yield one record each
//   - a Tuple whose outputs are all equal-length slices (parallel arrays,
//     e.g. ids[] and names[]) yields one record per index; any other Tuple
//     is a single record
func Normalize(raw any) ([]Record, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []Record:
		return v, nil
	case Record:
		return []Record{v}, nil
	case map[string]any:
		return []Record{Record(v)}, nil
	case []map[string]any:
		out := make([]Record, len(v))
		for i, m := range v {
			out[i] = Record(m)
		}
		return out, nil
	case Tuple:
		return normalizeTuple(v)
	case *Tuple:
		if v == nil {
			return nil, nil
		}
		return normalizeTuple(*v)
	}

	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return []Record{structRecord(rv)}, nil
	case reflect.Slice, reflect.Array:
		out := make([]Record, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			rec, err := toRecord(rv.Index(i))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, rec)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnexpectedShape, raw)
}

// NormalizeOne returns the single record of a get-by-id call. ok is false
// when the result holds no record at all.
func NormalizeOne(raw any) (Record, bool, error) {
	recs, err := Normalize(raw)
	if err != nil {
		return nil, false, err
	}
	if len(recs) == 0 {
		return nil, false, nil
	}
	return recs[0], true, nil
}

// Scalar unwraps single-output results: a one-element Tuple or slice
// holding a number is reduced to that number.
func Scalar(raw any) (uint64, error) {
	if t, ok := raw.(Tuple); ok && len(t.Values) == 1 {
		raw = t.Values[0]
	}
	if n, ok := ToUint64(raw); ok {
		return n, nil
	}
	if s, ok := raw.([]any); ok && len(s) == 1 {
		if n, ok := ToUint64(s[0]); ok {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: want number, got %T", ErrUnexpectedShape, raw)
}

// IDs unwraps an ID-array result such as a relation getter.
func IDs(raw any) ([]uint64, error) {
	if t, ok := raw.(Tuple); ok && len(t.Values) == 1 {
		raw = t.Values[0]
	}
	ids, ok := ToUints(raw)
	if !ok {
		return nil, fmt.Errorf("%w: want id array, got %T", ErrUnexpectedShape, raw)
	}
	return ids, nil
}

func normalizeTuple(t Tuple) ([]Record, error) {
	if len(t.Names) != len(t.Values) {
		return nil, fmt.Errorf("%w: %d names for %d values", ErrUnexpectedShape, len(t.Names), len(t.Values))
	}
	if len(t.Values) == 1 {
		return Normalize(t.Values[0])
	}

	rows := -1
	for _, v := range t.Values {
		rv := reflect.ValueOf(v)
		if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || isBytes(rv) {
			rows = -1
			break
		}
		if rows == -1 {
			rows = rv.Len()
		} else if rows != rv.Len() {
			rows = -1
			break
		}
	}

	if rows < 0 {
		rec := make(Record, len(t.Names))
		for i, name := range t.Names {
			rec[name] = t.Values[i]
		}
		return []Record{rec}, nil
	}

	out := make([]Record, rows)
	for r := 0; r < rows; r++ {
		rec := make(Record, len(t.Names))
		for i, name := range t.Names {
			rec[singular(name)] = reflect.ValueOf(t.Values[i]).Index(r).Interface()
		}
		out[r] = rec
	}
	return out, nil
}

func toRecord(v reflect.Value) (Record, error) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return Record{}, nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return structRecord(v), nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}
		rec := make(Record, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			rec[iter.Key().String()] = iter.Value().Interface()
		}
		return rec, nil
	}
	return nil, fmt.Errorf("%w: element %s", ErrUnexpectedShape, v.Type())
}

func structRecord(v reflect.Value) Record {
	t := v.Type()
	rec := make(Record, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Tag.Get("json")
		if idx := strings.IndexByte(name, ','); idx >= 0 {
			name = name[:idx]
		}
		if name == "-" {
			continue
		}
		if name == "" {
			name = lowerFirst(f.Name)
		}
		rec[name] = v.Field(i).Interface()
	}
	return rec
}

func isBytes(v reflect.Value) bool {
	return v.Type().Elem().Kind() == reflect.Uint8
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// singular maps a parallel-array output name onto its per-row field name:
// "ids" -> "id", "names" -> "name", "statuses" -> "status",
// "quantities" -> "quantity".
func singular(name string) string {
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 3:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "ses") && len(name) > 3:
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s") && len(name) > 1:
		return name[:len(name)-1]
	}
	return name
}
