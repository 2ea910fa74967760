package resource

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/emilianohg/spbuadmin/internal/calc"
	"github.com/emilianohg/spbuadmin/internal/ledger"
)

// Values holds the raw text of every form field.
type Values map[string]string

// Input is a snapshot of a form: raw field text plus relation selections.
type Input struct {
	ID       uint64 // zero when creating
	Values   Values
	Selected map[string][]uint64
}

func (in Input) Text(key string) string {
	return strings.TrimSpace(in.Values[key])
}

func (in Input) Uint(key string) (uint64, error) {
	s := in.Text(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, calc.ErrNotANumber)
	}
	return n, nil
}

// Decimal reads a display decimal; empty reads as zero.
func (in Input) Decimal(key string) decimal.Decimal {
	d, err := calc.ParseDecimal(in.Text(key))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (in Input) Scaled(key string) (uint64, error) {
	s := in.Text(key)
	if s == "" {
		return 0, nil
	}
	raw, err := calc.ParseScaled(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return raw, nil
}

func (in Input) IDs(key string) []uint64 {
	return slices.Clone(in.Selected[key])
}

// Entry is what an edit form is populated from: the record plus the id
// sets of every relation, fetched with secondary reads.
type Entry struct {
	Record    ledger.Record
	Relations map[string][]uint64
}

// Arg converts one field's raw text into the value the contract expects.
func (f Field) Arg(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case KindNumber, KindRef:
		if raw == "" {
			return uint64(0), nil
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, calc.ErrNotANumber)
		}
		return n, nil
	case KindScaled, KindMoney:
		if raw == "" {
			return uint64(0), nil
		}
		n, err := calc.ParseScaled(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
		return n, nil
	case KindBool:
		b, _ := strconv.ParseBool(raw)
		return b, nil
	case KindClock:
		m, err := calc.ParseClock(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
		return uint64(m), nil
	case KindDate:
		if raw == "" {
			return uint64(0), nil
		}
		t, err := calc.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Key, err)
		}
		return uint64(t.Unix()), nil
	}
	return raw, nil
}

// InputText renders a stored value back into editable text.
func (f Field) InputText(rec ledger.Record) string {
	switch f.Kind {
	case KindNumber, KindRef:
		if n := rec.Uint(f.Key); n != 0 {
			return strconv.FormatUint(n, 10)
		}
		return ""
	case KindScaled, KindMoney:
		return calc.FormatScaled(rec.Int(f.Key))
	case KindBool:
		return strconv.FormatBool(rec.Bool(f.Key))
	case KindClock:
		return calc.FormatClock(int(rec.Uint(f.Key)))
	case KindDate:
		t := rec.Time(f.Key)
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	}
	return rec.String(f.Key)
}

// serialize builds the positional write arguments in WriteArgs order. Edits
// get the record id prepended.
func (r *Resource) serialize(in Input) ([]any, error) {
	var args []any
	if r.Serialize != nil {
		a, err := r.Serialize(in)
		if err != nil {
			return nil, err
		}
		args = a
	} else {
		args = make([]any, 0, len(r.WriteArgs))
		for _, key := range r.WriteArgs {
			if f, ok := r.Field(key); ok {
				v, err := f.Arg(in.Values[key])
				if err != nil {
					return nil, err
				}
				args = append(args, v)
				continue
			}
			ids := in.IDs(key)
			if ids == nil {
				ids = []uint64{}
			}
			args = append(args, ids)
		}
	}
	if in.ID != 0 {
		args = append([]any{in.ID}, args...)
	}
	return args, nil
}

// populate fills values from an entry using the resource hook when set.
func (r *Resource) populate(e Entry, v Values) {
	for _, f := range r.Fields {
		if f.Virtual {
			continue
		}
		v[f.Key] = f.InputText(e.Record)
	}
	if r.Populate != nil {
		r.Populate(e, v)
	}
}

func (r *Resource) defaults() Values {
	v := make(Values, len(r.Fields))
	for _, f := range r.Fields {
		v[f.Key] = f.Default
	}
	return v
}
