package resource

import (
	"strconv"
	"strings"
	"time"

	"github.com/emilianohg/spbuadmin/internal/calc"
	"github.com/emilianohg/spbuadmin/internal/ledger"
)

// FormatValue renders one record field for display.
func FormatValue(kind FieldKind, lookup string, rec ledger.Record, key string, lk Lookups) string {
	switch kind {
	case KindNumber:
		return strconv.FormatUint(rec.Uint(key), 10)
	case KindScaled:
		return calc.FormatAmount(rec.Int(key))
	case KindMoney:
		return calc.FormatRupiah(rec.Int(key))
	case KindBool:
		if rec.Bool(key) {
			return "Ya"
		}
		return "Tidak"
	case KindClock:
		return calc.FormatClock(int(rec.Uint(key)))
	case KindDate:
		return calc.FormatDate(rec.Time(key))
	case KindRef:
		id := rec.Uint(key)
		if id == 0 {
			return "-"
		}
		return lk.Name(lookup, id)
	case KindIDs:
		ids := rec.Uints(key)
		if len(ids) == 0 {
			return "-"
		}
		return joinNames(lk.Names(lookup, ids))
	}
	s := rec.String(key)
	if s == "" {
		return "-"
	}
	return s
}

func formatCell(col Column, rec ledger.Record, lk Lookups) string {
	if col.Format != nil {
		return col.Format(rec, lk)
	}
	return FormatValue(col.Kind, col.Lookup, rec, col.Key, lk)
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return calc.FormatDateTime(t) + " (" + calc.FormatAgo(t) + ")"
}
