package calc

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatRupiah renders a scaled money amount the Indonesian way: "Rp 1.234.567,50".
func FormatRupiah(raw int64) string {
	return "Rp " + FormatAmount(raw)
}

// FormatAmount renders a scaled quantity with "." thousands and "," decimals.
func FormatAmount(raw int64) string {
	return FormatDecimal(Descale(raw))
}

// FormatDecimal renders d with two decimals in Indonesian notation.
func FormatDecimal(d decimal.Decimal) string {
	return humanize.FormatFloat("#.###,##", d.InexactFloat64())
}

// FormatLiters renders a scaled volume, e.g. "8.000,00 L".
func FormatLiters(raw int64) string {
	return FormatAmount(raw) + " L"
}

// FormatCount renders an integer with "." thousands separators.
func FormatCount(n uint64) string {
	return humanize.FormatInteger("#.###,", int(n))
}

// FormatDate renders a ledger timestamp as a date; zero renders as "-".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006")
}

// FormatDateTime renders a ledger timestamp with minutes.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02 Jan 2006 15:04")
}

// FormatAgo renders how long ago t happened ("3 hours ago").
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// ParseDate reads a YYYY-MM-DD date in local time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}
