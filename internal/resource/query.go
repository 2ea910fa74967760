package resource

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emilianohg/spbuadmin/internal/calc"
)

// PageSizes are the page sizes a list offers.
var PageSizes = []int{5, 10, 20, 50, 100}

const DefaultPageSize = 10

type ParamKind int

const (
	ParamOffset ParamKind = iota
	ParamLimit
	ParamFilter // equality on Key; zero means no filter
	ParamFrom   // Key >= value, read from the "<Key>From" filter
	ParamTo     // Key <= value, read from the "<Key>To" filter
)

// Param is one positional argument of a list or count call.
type Param struct {
	Kind ParamKind
	Key  string
}

func Offset() Param { return Param{Kind: ParamOffset} }
func Limit() Param { return Param{Kind: ParamLimit} }
func Eq(key string) Param { return Param{Kind: ParamFilter, Key: key} }
func From(key string) Param { return Param{Kind: ParamFrom, Key: key} }
func To(key string) Param { return Param{Kind: ParamTo, Key: key} }
func defaultListParams() []Param { return []Param{Offset(), Limit()} }

// FilterKey is the Query.Filters key that feeds this param.
func (p Param) FilterKey() string {
	switch p.Kind {
	case ParamFrom:
		return p.Key + "From"
	case ParamTo:
		return p.Key + "To"
	}
	return p.Key
}

// Query selects one page of a list.
type Query struct {
	Page     int
	PageSize int
	Filters  map[string]uint64
}

func NewQuery() Query {
	return Query{Page: 1, PageSize: DefaultPageSize}
}

// Normalized clamps the page to >= 1 and the size to one of PageSizes.
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	valid := false
	for _, s := range PageSizes {
		if q.PageSize == s {
			valid = true
			break
		}
	}
	if !valid {
		q.PageSize = DefaultPageSize
	}
	return q
}

// Offset is (page-1)*pageSize.
func (q Query) Offset() uint64 {
	q = q.Normalized()
	return uint64(q.Page-1) * uint64(q.PageSize)
}

// WithFilter returns a copy with key set; zero removes the filter.
func (q Query) WithFilter(key string, v uint64) Query {
	filters := make(map[string]uint64, len(q.Filters)+1)
	for k, val := range q.Filters {
		filters[k] = val
	}
	if v == 0 {
		delete(filters, key)
	} else {
		filters[key] = v
	}
	q.Filters = filters
	return q
}

// Args renders the positional arguments for params.
func (q Query) Args(params []Param) []any {
	q = q.Normalized()
	args := make([]any, 0, len(params))
	for _, p := range params {
		switch p.Kind {
		case ParamOffset:
			args = append(args, q.Offset())
		case ParamLimit:
			args = append(args, uint64(q.PageSize))
		default:
			args = append(args, q.Filters[p.FilterKey()])
		}
	}
	return args
}

// NextPageSize cycles through PageSizes.
func NextPageSize(current int) int {
	for i, s := range PageSizes {
		if s == current {
			return PageSizes[(i+1)%len(PageSizes)]
		}
	}
	return DefaultPageSize
}

// Value parses the text typed for a filter; empty means no filter. A date
// filter whose key ends in "To" is moved to the last second of the day.
func (f Filter) Value(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if f.Kind == KindDate {
		t, err := calc.ParseDate(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: format tanggal YYYY-MM-DD", f.Label)
		}
		if strings.HasSuffix(f.Key, "To") {
			t = t.Add(24*time.Hour - time.Second)
		}
		return uint64(t.Unix()), nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: harus berupa angka", f.Label)
	}
	return n, nil
}
